package client

import (
	"time"

	clientDatamodel "github.com/frahmantamala/epic-events-crm/internal/core/datamodel/client"
)

type Client struct {
	ID           int64     `json:"id"`
	FullName     string    `json:"full_name"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone"`
	CompanyName  string    `json:"company_name"`
	CommercialID int64     `json:"commercial_id"`
	CreatedDate  time.Time `json:"created_date"`
	LastContact  time.Time `json:"last_contact"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func ToDataModel(c *Client) *clientDatamodel.Client {
	return &clientDatamodel.Client{
		ID:           c.ID,
		FullName:     c.FullName,
		Email:        c.Email,
		Phone:        c.Phone,
		CompanyName:  c.CompanyName,
		CommercialID: c.CommercialID,
		CreatedDate:  c.CreatedDate,
		LastContact:  c.LastContact,
		UpdatedAt:    c.UpdatedAt,
	}
}

func FromDataModel(c *clientDatamodel.Client) *Client {
	return &Client{
		ID:           c.ID,
		FullName:     c.FullName,
		Email:        c.Email,
		Phone:        c.Phone,
		CompanyName:  c.CompanyName,
		CommercialID: c.CommercialID,
		CreatedDate:  c.CreatedDate,
		LastContact:  c.LastContact,
		UpdatedAt:    c.UpdatedAt,
	}
}
