package contract

import (
	"time"

	"github.com/shopspring/decimal"
)

type Contract struct {
	ID              int64           `gorm:"primaryKey"`
	TotalAmount     decimal.Decimal `gorm:"column:total_amount;type:numeric(12,2);not null"`
	RemainingAmount decimal.Decimal `gorm:"column:remaining_amount;type:numeric(12,2);not null"`
	IsSigned        bool            `gorm:"column:is_signed;not null;default:false"`
	ClientID        int64           `gorm:"column:client_id;not null;index"`
	CommercialID    int64           `gorm:"column:commercial_id;not null;index"`
	CreationDate    time.Time       `gorm:"column:creation_date;autoCreateTime"`
	UpdatedAt       time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (Contract) TableName() string {
	return "contracts"
}
