package user

import (
	"strings"

	"github.com/frahmantamala/epic-events-crm/internal"
	"github.com/frahmantamala/epic-events-crm/internal/auth"
	"github.com/frahmantamala/epic-events-crm/internal/core/common/validation"
)

type CreateUserDTO struct {
	EmployeeID string `json:"employee_id"`
	FullName   string `json:"full_name"`
	Email      string `json:"email"`
	Password   string `json:"password"`
	Department string `json:"department"`
}

func (d *CreateUserDTO) Normalize() {
	d.EmployeeID = strings.TrimSpace(d.EmployeeID)
	d.FullName = strings.TrimSpace(d.FullName)
	d.Email = auth.NormalizeEmail(d.Email)
}

func (d CreateUserDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("employee_id", d.EmployeeID).Required().MaxLength(50)
	v.Field("full_name", d.FullName).Required().MaxLength(200)
	v.Field("email", d.Email).Required().Email()
	v.Field("password", d.Password).Required().MinLength(8)
	v.Field("department", d.Department).Required().Custom(validDepartment)
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

// UpdateUserDTO never carries a role; see ChangeRoleDTO.
type UpdateUserDTO struct {
	EmployeeID *string `json:"employee_id,omitempty"`
	FullName   *string `json:"full_name,omitempty"`
	Email      *string `json:"email,omitempty"`
	Password   *string `json:"password,omitempty"`
}

func (d *UpdateUserDTO) Normalize() {
	if d.EmployeeID != nil {
		s := strings.TrimSpace(*d.EmployeeID)
		d.EmployeeID = &s
	}
	if d.FullName != nil {
		s := strings.TrimSpace(*d.FullName)
		d.FullName = &s
	}
	if d.Email != nil {
		s := auth.NormalizeEmail(*d.Email)
		d.Email = &s
	}
}

func (d UpdateUserDTO) Validate() error {
	v := validation.NewValidator()
	if d.EmployeeID != nil {
		v.Field("employee_id", *d.EmployeeID).Required().MaxLength(50)
	}
	if d.FullName != nil {
		v.Field("full_name", *d.FullName).Required().MaxLength(200)
	}
	if d.Email != nil {
		v.Field("email", *d.Email).Required().Email()
	}
	if d.Password != nil {
		v.Field("password", *d.Password).Required().MinLength(8)
	}
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

func (d UpdateUserDTO) Empty() bool {
	return d.EmployeeID == nil && d.FullName == nil && d.Email == nil && d.Password == nil
}

type ChangeRoleDTO struct {
	Department string `json:"department"`
}

func validDepartment(value interface{}) *internal.AppError {
	s, _ := value.(string)
	if s == "" {
		return nil
	}
	if _, err := auth.ParseRole(s); err != nil {
		return internal.NewValidationFieldError("department", "department must be one of MANAGEMENT, SALES, SUPPORT", internal.ErrCodeInvalidRole)
	}
	return nil
}
