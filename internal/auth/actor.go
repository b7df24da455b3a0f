package auth

import (
	"context"
	"strings"

	"github.com/frahmantamala/epic-events-crm/internal"
	"github.com/frahmantamala/epic-events-crm/internal/core/events"
)

// Role is the department an employee belongs to.
type Role string

const (
	RoleSales      Role = "SALES"
	RoleSupport    Role = "SUPPORT"
	RoleManagement Role = "MANAGEMENT"
)

var Roles = []Role{RoleManagement, RoleSales, RoleSupport}

func (r Role) String() string {
	return string(r)
}

func (r Role) Valid() bool {
	switch r {
	case RoleSales, RoleSupport, RoleManagement:
		return true
	}
	return false
}

// ParseRole accepts any casing and surrounding whitespace.
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToUpper(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", internal.NewValidationFieldError("role", "role must be one of MANAGEMENT, SALES, SUPPORT", internal.ErrCodeInvalidRole)
	}
	return r, nil
}

// Actor is the authenticated employee performing an operation.
type Actor struct {
	ID         int64  `json:"id"`
	EmployeeID string `json:"employee_id"`
	FullName   string `json:"full_name"`
	Email      string `json:"email"`
	Role       Role   `json:"role"`
}

func (a *Actor) Is(role Role) bool {
	return a != nil && a.Role == role
}

// Account is an actor together with its stored credential.
type Account struct {
	Actor
	PasswordHash string
}

type ctxKey string

const ContextActorKey ctxKey = "actor"

func ActorFromContext(ctx context.Context) (*Actor, bool) {
	a, ok := ctx.Value(ContextActorKey).(*Actor)
	return a, ok && a != nil
}

func ContextWithActor(ctx context.Context, a *Actor) context.Context {
	ctx = internal.ContextWithUserID(ctx, a.ID)
	return context.WithValue(ctx, ContextActorKey, a)
}

// Ref is the actor as it appears on audit events.
func (a *Actor) Ref() events.ActorRef {
	if a == nil {
		return events.ActorRef{}
	}
	return events.ActorRef{ID: a.ID, Email: a.Email, Role: string(a.Role)}
}
