package client

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/frahmantamala/epic-events-crm/internal"
	"github.com/frahmantamala/epic-events-crm/internal/auth"
	clientDatamodel "github.com/frahmantamala/epic-events-crm/internal/core/datamodel/client"
	"github.com/frahmantamala/epic-events-crm/internal/core/events"
	"github.com/frahmantamala/epic-events-crm/internal/user"
)

var ErrNotFound = errors.New("client not found")

type RepositoryAPI interface {
	List(ctx context.Context, filter Filter) ([]*clientDatamodel.Client, error)
	GetByID(ctx context.Context, id int64) (*clientDatamodel.Client, error)
	Create(ctx context.Context, c *clientDatamodel.Client) error
	Update(ctx context.Context, c *clientDatamodel.Client) error
	// Delete removes the client with its contracts and events.
	Delete(ctx context.Context, id int64) error
}

type Service struct {
	repo      RepositoryAPI
	users     user.Lookup
	policy    *auth.Policy
	publisher events.Publisher
	now       func() time.Time
	logger    *slog.Logger
}

func NewService(repo RepositoryAPI, users user.Lookup, policy *auth.Policy, publisher events.Publisher, logger *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		users:     users,
		policy:    policy,
		publisher: publisher,
		now:       time.Now,
		logger:    logger,
	}
}

// List returns clients visible to actor. mine restricts to the actor's own
// portfolio.
func (s *Service) List(ctx context.Context, actor *auth.Actor, mine bool, search string) ([]*Client, error) {
	if err := s.policy.ViewClients(ctx, actor).Err(); err != nil {
		return nil, err
	}
	filter := Filter{Search: search}
	if mine {
		filter.CommercialID = actor.ID
	}
	rows, err := s.repo.List(ctx, filter)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to list clients", "error", err)
		return nil, internal.NewInternalError("failed to list clients", err)
	}
	clients := make([]*Client, 0, len(rows))
	for _, row := range rows {
		clients = append(clients, FromDataModel(row))
	}
	return clients, nil
}

func (s *Service) Get(ctx context.Context, actor *auth.Actor, id int64) (*Client, error) {
	if err := s.policy.ViewClients(ctx, actor).Err(); err != nil {
		return nil, err
	}
	return s.Load(ctx, id)
}

// Load fetches a client without an authorization check, for callers that
// guard on the result themselves.
func (s *Service) Load(ctx context.Context, id int64) (*Client, error) {
	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, internal.ErrClientNotFound
		}
		s.logger.ErrorContext(ctx, "failed to load client", "error", err, "client_id", id)
		return nil, internal.NewInternalError("failed to load client", err)
	}
	return FromDataModel(row), nil
}

func (s *Service) Create(ctx context.Context, actor *auth.Actor, dto CreateClientDTO) (*Client, error) {
	if err := s.policy.CreateClient(ctx, actor).Err(); err != nil {
		return nil, err
	}
	if dto.CommercialID == 0 && actor.Is(auth.RoleSales) {
		dto.CommercialID = actor.ID
	}
	if dto.CommercialID != actor.ID {
		if err := s.policy.ReassignClient(ctx, actor).Err(); err != nil {
			return nil, err
		}
	}

	dto.Normalize()
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	if err := s.ensureCommercial(ctx, dto.CommercialID); err != nil {
		return nil, err
	}

	now := s.now()
	c := &Client{
		FullName:     dto.FullName,
		Email:        dto.Email,
		Phone:        dto.Phone,
		CompanyName:  dto.CompanyName,
		CommercialID: dto.CommercialID,
		CreatedDate:  now,
		LastContact:  now,
	}
	row := ToDataModel(c)
	if err := s.repo.Create(ctx, row); err != nil {
		s.logger.ErrorContext(ctx, "failed to create client", "error", err)
		return nil, internal.NewInternalError("failed to create client", err)
	}
	created := FromDataModel(row)

	s.logger.InfoContext(ctx, "client created", "client_id", created.ID, "commercial_id", created.CommercialID, "by", actor.ID)
	events.Record(ctx, s.publisher, s.logger, events.NewAuditEvent(events.EventTypeClientCreated, actor.Ref(), "client", created.ID,
		map[string]interface{}{"company_name": created.CompanyName, "commercial_id": created.CommercialID}))
	return created, nil
}

func (s *Service) Update(ctx context.Context, actor *auth.Actor, id int64, dto UpdateClientDTO) (*Client, error) {
	existing, err := s.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.policy.ModifyClient(ctx, actor, existing.CommercialID).Err(); err != nil {
		return nil, err
	}
	reassign := dto.CommercialID != nil && *dto.CommercialID != existing.CommercialID
	if reassign {
		if err := s.policy.ReassignClient(ctx, actor).Err(); err != nil {
			return nil, err
		}
	}

	dto.Normalize()
	if dto.Empty() {
		return nil, internal.NewValidationError("nothing to update", internal.ErrCodeValidationFailed)
	}
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	if reassign {
		if err := s.ensureCommercial(ctx, *dto.CommercialID); err != nil {
			return nil, err
		}
	}

	previousOwner := existing.CommercialID
	if dto.FullName != nil {
		existing.FullName = *dto.FullName
	}
	if dto.Email != nil {
		existing.Email = *dto.Email
	}
	if dto.Phone != nil {
		existing.Phone = *dto.Phone
	}
	if dto.CompanyName != nil {
		existing.CompanyName = *dto.CompanyName
	}
	if reassign {
		existing.CommercialID = *dto.CommercialID
	}
	existing.LastContact = s.now()

	row := ToDataModel(existing)
	if err := s.repo.Update(ctx, row); err != nil {
		s.logger.ErrorContext(ctx, "failed to update client", "error", err, "client_id", id)
		return nil, internal.NewInternalError("failed to update client", err)
	}

	s.logger.InfoContext(ctx, "client updated", "client_id", id, "by", actor.ID)
	events.Record(ctx, s.publisher, s.logger, events.NewAuditEvent(events.EventTypeClientUpdated, actor.Ref(), "client", id, nil))
	if reassign {
		events.Record(ctx, s.publisher, s.logger, events.NewAuditEvent(events.EventTypeClientReassigned, actor.Ref(), "client", id,
			map[string]interface{}{"from_commercial_id": previousOwner, "to_commercial_id": existing.CommercialID}))
	}
	return FromDataModel(row), nil
}

func (s *Service) Delete(ctx context.Context, actor *auth.Actor, id int64) error {
	existing, err := s.Load(ctx, id)
	if err != nil {
		return err
	}
	if err := s.policy.ModifyClient(ctx, actor, existing.CommercialID).Err(); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return internal.ErrClientNotFound
		}
		s.logger.ErrorContext(ctx, "failed to delete client", "error", err, "client_id", id)
		return internal.NewInternalError("failed to delete client", err)
	}

	s.logger.InfoContext(ctx, "client deleted", "client_id", id, "by", actor.ID)
	events.Record(ctx, s.publisher, s.logger, events.NewAuditEvent(events.EventTypeClientDeleted, actor.Ref(), "client", id,
		map[string]interface{}{"company_name": existing.CompanyName}))
	return nil
}

func (s *Service) ensureCommercial(ctx context.Context, id int64) error {
	if id == 0 {
		return internal.NewValidationFieldError("commercial_id", "commercial_id is required", internal.ErrCodeUnknownCommercial)
	}
	_, err := user.EnsureRole(ctx, s.users, id, auth.RoleSales, "commercial_id", internal.ErrCodeUnknownCommercial)
	return err
}
