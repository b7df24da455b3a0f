package event

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/frahmantamala/epic-events-crm/internal"
	"github.com/frahmantamala/epic-events-crm/internal/auth"
	"github.com/frahmantamala/epic-events-crm/internal/client"
	"github.com/frahmantamala/epic-events-crm/internal/contract"
	eventDatamodel "github.com/frahmantamala/epic-events-crm/internal/core/datamodel/event"
	"github.com/frahmantamala/epic-events-crm/internal/core/events"
	"github.com/frahmantamala/epic-events-crm/internal/user"
)

var ErrNotFound = errors.New("event not found")

type RepositoryAPI interface {
	List(ctx context.Context, filter Filter) ([]*eventDatamodel.Event, error)
	GetByID(ctx context.Context, id int64) (*eventDatamodel.Event, error)
	Create(ctx context.Context, e *eventDatamodel.Event) error
	Update(ctx context.Context, e *eventDatamodel.Event) error
	UpdateSupport(ctx context.Context, id int64, supportID *int64) error
	Delete(ctx context.Context, id int64) error
}

type ClientLoader interface {
	Load(ctx context.Context, id int64) (*client.Client, error)
}

type ContractLoader interface {
	Load(ctx context.Context, id int64) (*contract.Contract, error)
}

type Service struct {
	repo      RepositoryAPI
	clients   ClientLoader
	contracts ContractLoader
	users     user.Lookup
	policy    *auth.Policy
	publisher events.Publisher
	now       func() time.Time
	logger    *slog.Logger
}

func NewService(repo RepositoryAPI, clients ClientLoader, contracts ContractLoader, users user.Lookup, policy *auth.Policy, publisher events.Publisher, logger *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		clients:   clients,
		contracts: contracts,
		users:     users,
		policy:    policy,
		publisher: publisher,
		now:       time.Now,
		logger:    logger,
	}
}

// List returns the events the actor's role lets them see, narrowed by opts.
func (s *Service) List(ctx context.Context, actor *auth.Actor, opts ListOptions) ([]*Event, error) {
	scope, decision := s.policy.EventScope(ctx, actor)
	if err := decision.Err(); err != nil {
		return nil, err
	}

	filter := opts.Filter
	if !scope.All {
		filter.SupportID = scope.SupportID
		filter.CommercialID = scope.CommercialID
	}
	if opts.Mine {
		switch actor.Role {
		case auth.RoleSupport:
			filter.SupportID = actor.ID
		case auth.RoleSales:
			filter.CommercialID = actor.ID
		}
	}
	if opts.UpcomingDays < 0 {
		return nil, internal.NewValidationFieldError("upcoming", "upcoming days must not be negative", internal.ErrCodeValidationFailed)
	}
	if opts.UpcomingDays > 0 {
		now := s.now()
		until := now.AddDate(0, 0, opts.UpcomingDays)
		filter.From, filter.To = &now, &until
	}
	if filter.From != nil && filter.To != nil && filter.From.After(*filter.To) {
		return nil, internal.NewValidationFieldError("from", "from must not be after to", internal.ErrCodeInvalidDate)
	}

	rows, err := s.repo.List(ctx, filter)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to list events", "error", err)
		return nil, internal.NewInternalError("failed to list events", err)
	}
	out := make([]*Event, 0, len(rows))
	for _, row := range rows {
		out = append(out, FromDataModel(row))
	}
	return out, nil
}

func (s *Service) Get(ctx context.Context, actor *auth.Actor, id int64) (*Event, error) {
	e, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	var commercialID int64
	if actor.Is(auth.RoleSales) {
		c, err := s.clients.Load(ctx, e.ClientID)
		if err != nil {
			return nil, err
		}
		commercialID = c.CommercialID
	}
	if err := s.policy.ViewEvent(ctx, actor, e.SupportID, commercialID).Err(); err != nil {
		return nil, err
	}
	return e, nil
}

// Create books an event for a client. Permission is checked against the
// client's owner before the contract is examined, so a permitted actor
// always sees contract problems as validation failures.
func (s *Service) Create(ctx context.Context, actor *auth.Actor, dto CreateEventDTO) (*Event, error) {
	if dto.ClientID == 0 {
		return nil, internal.NewValidationFieldError("client_id", "client_id is required", internal.ErrCodeValidationFailed)
	}
	c, err := s.clients.Load(ctx, dto.ClientID)
	if err != nil {
		return nil, err
	}
	if err := s.policy.CreateEvent(ctx, actor, c.CommercialID).Err(); err != nil {
		return nil, err
	}
	if dto.SupportID != nil {
		if err := s.policy.AssignSupport(ctx, actor).Err(); err != nil {
			return nil, err
		}
	}

	dto.Normalize()
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	if err := s.checkContract(ctx, c, dto.ContractID); err != nil {
		return nil, err
	}
	if dto.SupportID != nil {
		if _, err := user.EnsureRole(ctx, s.users, *dto.SupportID, auth.RoleSupport, "support_id", internal.ErrCodeInvalidAssignee); err != nil {
			return nil, err
		}
	}

	e := &Event{
		Name:       dto.Name,
		StartDate:  dto.StartDate,
		EndDate:    dto.EndDate,
		Location:   dto.Location,
		Attendees:  dto.Attendees,
		Notes:      dto.Notes,
		ClientID:   c.ID,
		ContractID: dto.ContractID,
		SupportID:  dto.SupportID,
	}
	row := ToDataModel(e)
	if err := s.repo.Create(ctx, row); err != nil {
		s.logger.ErrorContext(ctx, "failed to create event", "error", err, "client_id", c.ID)
		return nil, internal.NewInternalError("failed to create event", err)
	}
	created := FromDataModel(row)

	s.logger.InfoContext(ctx, "event created", "event_id", created.ID, "contract_id", created.ContractID, "by", actor.ID)
	events.Record(ctx, s.publisher, s.logger, events.NewAuditEvent(events.EventTypeEventCreated, actor.Ref(), "event", created.ID,
		map[string]interface{}{"name": created.Name, "client_id": c.ID, "contract_id": created.ContractID}))
	return created, nil
}

func (s *Service) checkContract(ctx context.Context, c *client.Client, contractID int64) error {
	k, err := s.contracts.Load(ctx, contractID)
	if err != nil {
		if internal.IsType(err, internal.ErrorTypeNotFound) {
			return internal.NewValidationFieldError("contract_id", fmt.Sprintf("contract %d does not exist", contractID), internal.ErrCodeContractNotFound)
		}
		return err
	}
	if k.ClientID != c.ID {
		return internal.NewValidationFieldError("contract_id", "contract does not belong to this client", internal.ErrCodeContractMismatch)
	}
	if !k.IsSigned {
		return internal.NewValidationFieldError("contract_id", "contract must be signed before an event can be created", internal.ErrCodeContractNotSigned)
	}
	return nil
}

func (s *Service) Update(ctx context.Context, actor *auth.Actor, id int64, dto UpdateEventDTO) (*Event, error) {
	existing, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.policy.AccessEvent(ctx, actor, auth.EventUpdate, existing.SupportID).Err(); err != nil {
		return nil, err
	}
	if dto.Empty() {
		return nil, internal.NewValidationError("nothing to update", internal.ErrCodeValidationFailed)
	}
	updated := dto.Apply(*existing)
	if err := validateEvent(updated); err != nil {
		return nil, err
	}

	row := ToDataModel(&updated)
	if err := s.repo.Update(ctx, row); err != nil {
		return nil, s.writeErr(ctx, "update", id, err)
	}

	s.logger.InfoContext(ctx, "event updated", "event_id", id, "by", actor.ID)
	events.Record(ctx, s.publisher, s.logger, events.NewAuditEvent(events.EventTypeEventUpdated, actor.Ref(), "event", id, nil))
	return FromDataModel(row), nil
}

func (s *Service) AssignSupport(ctx context.Context, actor *auth.Actor, id int64, dto AssignSupportDTO) (*Event, error) {
	existing, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.policy.AssignSupport(ctx, actor).Err(); err != nil {
		return nil, err
	}
	if dto.SupportID != nil {
		if _, err := user.EnsureRole(ctx, s.users, *dto.SupportID, auth.RoleSupport, "support_id", internal.ErrCodeInvalidAssignee); err != nil {
			return nil, err
		}
	}

	if err := s.repo.UpdateSupport(ctx, id, dto.SupportID); err != nil {
		return nil, s.writeErr(ctx, "assign support to", id, err)
	}
	previous := existing.SupportID
	existing.SupportID = dto.SupportID

	s.logger.InfoContext(ctx, "event support assigned", "event_id", id, "by", actor.ID)
	events.Record(ctx, s.publisher, s.logger, events.NewAuditEvent(events.EventTypeEventSupportAssigned, actor.Ref(), "event", id,
		map[string]interface{}{"from_support_id": previous, "to_support_id": dto.SupportID}))
	return existing, nil
}

func (s *Service) Delete(ctx context.Context, actor *auth.Actor, id int64) error {
	existing, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if err := s.policy.AccessEvent(ctx, actor, auth.EventDelete, existing.SupportID).Err(); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return s.writeErr(ctx, "delete", id, err)
	}

	s.logger.InfoContext(ctx, "event deleted", "event_id", id, "by", actor.ID)
	events.Record(ctx, s.publisher, s.logger, events.NewAuditEvent(events.EventTypeEventDeleted, actor.Ref(), "event", id,
		map[string]interface{}{"name": existing.Name}))
	return nil
}

func (s *Service) load(ctx context.Context, id int64) (*Event, error) {
	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, internal.ErrEventNotFound
		}
		s.logger.ErrorContext(ctx, "failed to load event", "error", err, "event_id", id)
		return nil, internal.NewInternalError("failed to load event", err)
	}
	return FromDataModel(row), nil
}

func (s *Service) writeErr(ctx context.Context, op string, id int64, err error) error {
	if errors.Is(err, ErrNotFound) {
		return internal.ErrEventNotFound
	}
	s.logger.ErrorContext(ctx, "failed to "+op+" event", "error", err, "event_id", id)
	return internal.NewInternalError("failed to "+op+" event", err)
}
