package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/frahmantamala/epic-events-crm/internal"
	"github.com/frahmantamala/epic-events-crm/internal/auth"
	auditDatamodel "github.com/frahmantamala/epic-events-crm/internal/core/datamodel/audit"
	"github.com/frahmantamala/epic-events-crm/internal/core/events"
)

type RepositoryAPI interface {
	Create(ctx context.Context, row *auditDatamodel.AuditLog) error
	List(ctx context.Context, filter Filter, limit int) ([]*auditDatamodel.AuditLog, error)
}

type Service struct {
	repo   RepositoryAPI
	policy *auth.Policy
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, policy *auth.Policy, logger *slog.Logger) *Service {
	return &Service{repo: repo, policy: policy, logger: logger}
}

// Subscribe attaches the recorder to every event on bus.
func (s *Service) Subscribe(bus *events.EventBus) {
	bus.Subscribe(events.Wildcard, s.Handle)
}

// Handle persists audit events and ignores every other event type.
func (s *Service) Handle(ctx context.Context, event events.Event) error {
	ae, ok := event.(*events.AuditEvent)
	if !ok {
		return nil
	}

	data := map[string]interface{}{}
	if payload, ok := ae.Payload().(map[string]interface{}); ok {
		for k, v := range payload {
			data[k] = v
		}
	}
	if source := internal.SourceFromContext(ctx); source != "" {
		data["source"] = source
	}

	details := "{}"
	if len(data) > 0 {
		raw, err := json.Marshal(data)
		if err != nil {
			return fmt.Errorf("marshal audit details: %w", err)
		}
		details = string(raw)
	}

	row := &auditDatamodel.AuditLog{
		Timestamp:  ae.OccurredAt(),
		UserID:     ae.ActorID,
		Username:   ae.ActorEmail,
		Action:     ae.EventType(),
		EntityType: ae.EntityType,
		EntityID:   ae.EntityID,
		Details:    details,
		EventID:    ae.EventID(),
	}
	if err := s.repo.Create(ctx, row); err != nil {
		return fmt.Errorf("write audit log: %w", err)
	}
	s.logger.DebugContext(ctx, "audit event recorded", "action", row.Action, "event_id", row.EventID)
	return nil
}

func (s *Service) List(ctx context.Context, actor *auth.Actor, filter Filter) ([]*Entry, error) {
	if err := s.policy.ViewAudit(ctx, actor).Err(); err != nil {
		return nil, err
	}
	rows, err := s.repo.List(ctx, filter, filter.limit())
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to list audit log", "error", err)
		return nil, internal.NewInternalError("failed to list audit log", err)
	}
	entries := make([]*Entry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, FromDataModel(row))
	}
	return entries, nil
}
