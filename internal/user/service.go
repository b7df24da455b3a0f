package user

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/frahmantamala/epic-events-crm/internal"
	"github.com/frahmantamala/epic-events-crm/internal/auth"
	userDatamodel "github.com/frahmantamala/epic-events-crm/internal/core/datamodel/user"
	"github.com/frahmantamala/epic-events-crm/internal/core/events"
)

var (
	ErrNotFound      = errors.New("user not found")
	ErrHasDependents = errors.New("user still owns clients or contracts")
)

type RepositoryAPI interface {
	List(ctx context.Context, role auth.Role) ([]*userDatamodel.User, error)
	GetByID(ctx context.Context, id int64) (*userDatamodel.User, error)
	GetByEmail(ctx context.Context, email string) (*userDatamodel.User, error)
	GetByEmployeeID(ctx context.Context, employeeID string) (*userDatamodel.User, error)
	Create(ctx context.Context, u *userDatamodel.User) error
	Update(ctx context.Context, u *userDatamodel.User) error
	UpdateDepartment(ctx context.Context, id int64, department string) (int64, error)
	Delete(ctx context.Context, id int64) error
}

// Lookup is the slice of the repository other services need to check who an
// entity is assigned to.
type Lookup interface {
	GetByID(ctx context.Context, id int64) (*userDatamodel.User, error)
}

// EnsureRole loads user id and fails validation unless they hold role.
func EnsureRole(ctx context.Context, users Lookup, id int64, role auth.Role, field string, code internal.ErrorCode) (*User, error) {
	row, err := users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, internal.NewValidationFieldError(field, fmt.Sprintf("user %d does not exist", id), code)
		}
		return nil, internal.NewInternalError("failed to load user", err)
	}
	u := FromDataModel(row)
	if u.Role != role {
		return nil, internal.NewValidationFieldError(field, fmt.Sprintf("user %d is not in the %s department", id, role), code)
	}
	return u, nil
}

type Service struct {
	repo       RepositoryAPI
	policy     *auth.Policy
	publisher  events.Publisher
	bcryptCost int
	logger     *slog.Logger
}

func NewService(repo RepositoryAPI, policy *auth.Policy, publisher events.Publisher, bcryptCost int, logger *slog.Logger) *Service {
	return &Service{
		repo:       repo,
		policy:     policy,
		publisher:  publisher,
		bcryptCost: bcryptCost,
		logger:     logger,
	}
}

func (s *Service) List(ctx context.Context, actor *auth.Actor, department string) ([]*User, error) {
	if err := s.policy.ManageUsers(ctx, actor).Err(); err != nil {
		return nil, err
	}

	var role auth.Role
	if department != "" {
		r, err := auth.ParseRole(department)
		if err != nil {
			return nil, err
		}
		role = r
	}

	rows, err := s.repo.List(ctx, role)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to list users", "error", err)
		return nil, internal.NewInternalError("failed to list users", err)
	}
	users := make([]*User, 0, len(rows))
	for _, row := range rows {
		users = append(users, FromDataModel(row))
	}
	return users, nil
}

func (s *Service) Get(ctx context.Context, actor *auth.Actor, id int64) (*User, error) {
	if err := s.policy.ManageUsers(ctx, actor).Err(); err != nil {
		return nil, err
	}
	return s.load(ctx, id)
}

func (s *Service) load(ctx context.Context, id int64) (*User, error) {
	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, internal.ErrUserNotFound
		}
		s.logger.ErrorContext(ctx, "failed to load user", "error", err, "user_id", id)
		return nil, internal.NewInternalError("failed to load user", err)
	}
	return FromDataModel(row), nil
}

func (s *Service) Create(ctx context.Context, actor *auth.Actor, dto CreateUserDTO) (*User, error) {
	if err := s.policy.ManageUsers(ctx, actor).Err(); err != nil {
		return nil, err
	}

	dto.Normalize()
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	if err := s.ensureUnique(ctx, 0, dto.Email, dto.EmployeeID); err != nil {
		return nil, err
	}

	role, _ := auth.ParseRole(dto.Department)
	hash, err := auth.HashPassword(dto.Password, s.bcryptCost)
	if err != nil {
		return nil, internal.NewInternalError("failed to hash password", err)
	}

	u := &User{
		EmployeeID:   dto.EmployeeID,
		FullName:     dto.FullName,
		Email:        dto.Email,
		Role:         role,
		PasswordHash: hash,
	}
	row := ToDataModel(u)
	if err := s.repo.Create(ctx, row); err != nil {
		s.logger.ErrorContext(ctx, "failed to create user", "error", err, "email", dto.Email)
		return nil, internal.NewInternalError("failed to create user", err)
	}
	created := FromDataModel(row)

	s.logger.InfoContext(ctx, "user created", "user_id", created.ID, "department", created.Role, "by", actor.ID)
	events.Record(ctx, s.publisher, s.logger, events.NewAuditEvent(events.EventTypeUserCreated, actor.Ref(), "user", created.ID,
		map[string]interface{}{"employee_id": created.EmployeeID, "department": string(created.Role)}))
	return created, nil
}

func (s *Service) Update(ctx context.Context, actor *auth.Actor, id int64, dto UpdateUserDTO) (*User, error) {
	if err := s.policy.ManageUsers(ctx, actor).Err(); err != nil {
		return nil, err
	}

	existing, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	dto.Normalize()
	if dto.Empty() {
		return nil, internal.NewValidationError("nothing to update", internal.ErrCodeValidationFailed)
	}
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	email, employeeID := "", ""
	if dto.Email != nil && *dto.Email != existing.Email {
		email = *dto.Email
	}
	if dto.EmployeeID != nil && *dto.EmployeeID != existing.EmployeeID {
		employeeID = *dto.EmployeeID
	}
	if err := s.ensureUnique(ctx, id, email, employeeID); err != nil {
		return nil, err
	}

	changed := []string{}
	if dto.EmployeeID != nil {
		existing.EmployeeID = *dto.EmployeeID
		changed = append(changed, "employee_id")
	}
	if dto.FullName != nil {
		existing.FullName = *dto.FullName
		changed = append(changed, "full_name")
	}
	if dto.Email != nil {
		existing.Email = *dto.Email
		changed = append(changed, "email")
	}
	if dto.Password != nil {
		hash, err := auth.HashPassword(*dto.Password, s.bcryptCost)
		if err != nil {
			return nil, internal.NewInternalError("failed to hash password", err)
		}
		existing.PasswordHash = hash
		changed = append(changed, "password")
	}

	row := ToDataModel(existing)
	if err := s.repo.Update(ctx, row); err != nil {
		s.logger.ErrorContext(ctx, "failed to update user", "error", err, "user_id", id)
		return nil, internal.NewInternalError("failed to update user", err)
	}

	s.logger.InfoContext(ctx, "user updated", "user_id", id, "fields", changed, "by", actor.ID)
	events.Record(ctx, s.publisher, s.logger, events.NewAuditEvent(events.EventTypeUserUpdated, actor.Ref(), "user", id,
		map[string]interface{}{"fields": changed}))
	return FromDataModel(row), nil
}

// ChangeRole is the only path that moves an employee between departments.
func (s *Service) ChangeRole(ctx context.Context, actor *auth.Actor, id int64, dto ChangeRoleDTO) (*User, error) {
	if err := s.policy.ChangeRole(ctx, actor, id).Err(); err != nil {
		return nil, err
	}

	existing, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	role, err := auth.ParseRole(dto.Department)
	if err != nil {
		return nil, err
	}
	if role == existing.Role {
		return existing, nil
	}

	unassigned, err := s.repo.UpdateDepartment(ctx, id, string(role))
	if err != nil {
		switch {
		case errors.Is(err, ErrHasDependents):
			return nil, internal.NewConflictError("user still owns clients or contracts; reassign them first", internal.ErrCodeValidationFailed)
		case errors.Is(err, ErrNotFound):
			return nil, internal.ErrUserNotFound
		}
		s.logger.ErrorContext(ctx, "failed to change role", "error", err, "user_id", id)
		return nil, internal.NewInternalError("failed to change role", err)
	}

	old := existing.Role
	existing.Role = role
	s.logger.WarnContext(ctx, "user role changed", "user_id", id, "old_role", old, "new_role", role,
		"unassigned_events", unassigned, "by", actor.ID)
	events.Record(ctx, s.publisher, s.logger, events.NewAuditEvent(events.EventTypeUserRoleChanged, actor.Ref(), "user", id,
		map[string]interface{}{"old_role": string(old), "new_role": string(role), "unassigned_events": unassigned}))
	return existing, nil
}

func (s *Service) Delete(ctx context.Context, actor *auth.Actor, id int64) error {
	if err := s.policy.ManageUsers(ctx, actor).Err(); err != nil {
		return err
	}
	if actor.ID == id {
		return internal.NewValidationError("cannot delete your own account", internal.ErrCodeValidationFailed)
	}

	existing, err := s.load(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, ErrHasDependents) {
			return internal.NewConflictError("user still owns clients or contracts; reassign them first", internal.ErrCodeValidationFailed)
		}
		s.logger.ErrorContext(ctx, "failed to delete user", "error", err, "user_id", id)
		return internal.NewInternalError("failed to delete user", err)
	}

	s.logger.InfoContext(ctx, "user deleted", "user_id", id, "by", actor.ID)
	events.Record(ctx, s.publisher, s.logger, events.NewAuditEvent(events.EventTypeUserDeleted, actor.Ref(), "user", id,
		map[string]interface{}{"employee_id": existing.EmployeeID, "email": existing.Email}))
	return nil
}

// ensureUnique skips empty values and ignores the row being updated.
func (s *Service) ensureUnique(ctx context.Context, selfID int64, email, employeeID string) error {
	if email != "" {
		row, err := s.repo.GetByEmail(ctx, email)
		switch {
		case err == nil && row.ID != selfID:
			return internal.NewConflictError("email already in use", internal.ErrCodeDuplicateEmail)
		case err != nil && !errors.Is(err, ErrNotFound):
			return internal.NewInternalError("failed to check email", err)
		}
	}
	if employeeID != "" {
		row, err := s.repo.GetByEmployeeID(ctx, employeeID)
		switch {
		case err == nil && row.ID != selfID:
			return internal.NewConflictError("employee id already in use", internal.ErrCodeDuplicateEmployee)
		case err != nil && !errors.Is(err, ErrNotFound):
			return internal.NewInternalError("failed to check employee id", err)
		}
	}
	return nil
}
