package client

import (
	"strings"

	"github.com/frahmantamala/epic-events-crm/internal/core/common/validation"
)

type CreateClientDTO struct {
	FullName    string `json:"full_name"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	CompanyName string `json:"company_name"`
	// CommercialID defaults to the creating salesperson.
	CommercialID int64 `json:"commercial_id,omitempty"`
}

func (d *CreateClientDTO) Normalize() {
	d.FullName = strings.TrimSpace(d.FullName)
	d.Email = strings.ToLower(strings.TrimSpace(d.Email))
	d.Phone = validation.CleanPhone(strings.TrimSpace(d.Phone))
	d.CompanyName = strings.TrimSpace(d.CompanyName)
}

func (d CreateClientDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("full_name", d.FullName).Required().MaxLength(200)
	v.Field("email", d.Email).Required().Email()
	v.Field("phone", d.Phone).Required().Phone()
	v.Field("company_name", d.CompanyName).Required().MaxLength(200)
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

type UpdateClientDTO struct {
	FullName     *string `json:"full_name,omitempty"`
	Email        *string `json:"email,omitempty"`
	Phone        *string `json:"phone,omitempty"`
	CompanyName  *string `json:"company_name,omitempty"`
	CommercialID *int64  `json:"commercial_id,omitempty"`
}

func (d *UpdateClientDTO) Normalize() {
	trim := func(p *string, f func(string) string) *string {
		if p == nil {
			return nil
		}
		s := f(strings.TrimSpace(*p))
		return &s
	}
	same := func(s string) string { return s }
	d.FullName = trim(d.FullName, same)
	d.Email = trim(d.Email, strings.ToLower)
	d.Phone = trim(d.Phone, validation.CleanPhone)
	d.CompanyName = trim(d.CompanyName, same)
}

func (d UpdateClientDTO) Validate() error {
	v := validation.NewValidator()
	if d.FullName != nil {
		v.Field("full_name", *d.FullName).Required().MaxLength(200)
	}
	if d.Email != nil {
		v.Field("email", *d.Email).Required().Email()
	}
	if d.Phone != nil {
		v.Field("phone", *d.Phone).Required().Phone()
	}
	if d.CompanyName != nil {
		v.Field("company_name", *d.CompanyName).Required().MaxLength(200)
	}
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

func (d UpdateClientDTO) Empty() bool {
	return d.FullName == nil && d.Email == nil && d.Phone == nil && d.CompanyName == nil && d.CommercialID == nil
}

// Filter narrows a client listing. Search matches name or company.
type Filter struct {
	CommercialID int64
	Search       string
}
