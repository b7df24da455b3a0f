package auth

import "github.com/frahmantamala/epic-events-crm/internal/core/common/validation"

// LoginDTO is the body of POST /auth/login.
type LoginDTO struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (d LoginDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("email", d.Email).Required().Email()
	v.Field("password", d.Password).Required()
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

// MeResponse describes the authenticated actor and what their role grants.
type MeResponse struct {
	Actor       *Actor       `json:"actor"`
	Permissions []Permission `json:"permissions"`
}
