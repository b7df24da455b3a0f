package contract

import (
	"time"

	contractDatamodel "github.com/frahmantamala/epic-events-crm/internal/core/datamodel/contract"
	"github.com/shopspring/decimal"
)

type Contract struct {
	ID              int64           `json:"id"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	RemainingAmount decimal.Decimal `json:"remaining_amount"`
	IsSigned        bool            `json:"is_signed"`
	ClientID        int64           `json:"client_id"`
	CommercialID    int64           `json:"commercial_id"`
	CreationDate    time.Time       `json:"creation_date"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// Paid is the amount already settled.
func (c *Contract) Paid() decimal.Decimal {
	return c.TotalAmount.Sub(c.RemainingAmount)
}

func (c *Contract) FullyPaid() bool {
	return !c.RemainingAmount.IsPositive()
}

func ToDataModel(c *Contract) *contractDatamodel.Contract {
	return &contractDatamodel.Contract{
		ID:              c.ID,
		TotalAmount:     c.TotalAmount,
		RemainingAmount: c.RemainingAmount,
		IsSigned:        c.IsSigned,
		ClientID:        c.ClientID,
		CommercialID:    c.CommercialID,
		CreationDate:    c.CreationDate,
		UpdatedAt:       c.UpdatedAt,
	}
}

func FromDataModel(c *contractDatamodel.Contract) *Contract {
	return &Contract{
		ID:              c.ID,
		TotalAmount:     c.TotalAmount,
		RemainingAmount: c.RemainingAmount,
		IsSigned:        c.IsSigned,
		ClientID:        c.ClientID,
		CommercialID:    c.CommercialID,
		CreationDate:    c.CreationDate,
		UpdatedAt:       c.UpdatedAt,
	}
}
