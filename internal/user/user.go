package user

import (
	"time"

	"github.com/frahmantamala/epic-events-crm/internal/auth"
	userDatamodel "github.com/frahmantamala/epic-events-crm/internal/core/datamodel/user"
)

type User struct {
	ID           int64     `json:"id"`
	EmployeeID   string    `json:"employee_id"`
	FullName     string    `json:"full_name"`
	Email        string    `json:"email"`
	Role         auth.Role `json:"department"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (u *User) Actor() *auth.Actor {
	return &auth.Actor{
		ID:         u.ID,
		EmployeeID: u.EmployeeID,
		FullName:   u.FullName,
		Email:      u.Email,
		Role:       u.Role,
	}
}

func ToDataModel(u *User) *userDatamodel.User {
	return &userDatamodel.User{
		ID:           u.ID,
		EmployeeID:   u.EmployeeID,
		FullName:     u.FullName,
		Email:        u.Email,
		Department:   string(u.Role),
		PasswordHash: u.PasswordHash,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

func FromDataModel(u *userDatamodel.User) *User {
	return &User{
		ID:           u.ID,
		EmployeeID:   u.EmployeeID,
		FullName:     u.FullName,
		Email:        u.Email,
		Role:         auth.Role(u.Department),
		PasswordHash: u.PasswordHash,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}
