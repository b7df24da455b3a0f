package client

import "time"

type Client struct {
	ID           int64     `gorm:"primaryKey"`
	FullName     string    `gorm:"column:full_name;not null"`
	Email        string    `gorm:"column:email;not null"`
	Phone        string    `gorm:"column:phone;not null"`
	CompanyName  string    `gorm:"column:company_name;not null"`
	CommercialID int64     `gorm:"column:commercial_id;not null;index"`
	CreatedDate  time.Time `gorm:"column:created_date;autoCreateTime"`
	LastContact  time.Time `gorm:"column:last_contact;not null"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Client) TableName() string {
	return "clients"
}
