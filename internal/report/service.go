package report

import (
	"context"
	"log/slog"
	"time"

	"github.com/frahmantamala/epic-events-crm/internal"
	"github.com/frahmantamala/epic-events-crm/internal/auth"
)

type RepositoryAPI interface {
	ContractSummary(ctx context.Context, scope auth.Scope) (*ContractSummary, error)
	EventSummary(ctx context.Context, scope auth.Scope, now time.Time) (*EventSummary, error)
	UserCounts(ctx context.Context) ([]DepartmentCount, error)
}

type Service struct {
	repo   RepositoryAPI
	policy *auth.Policy
	now    func() time.Time
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, policy *auth.Policy, logger *slog.Logger) *Service {
	return &Service{repo: repo, policy: policy, now: time.Now, logger: logger}
}

// Contracts summarizes every contract for management, own contracts for sales.
func (s *Service) Contracts(ctx context.Context, actor *auth.Actor) (*ContractSummary, error) {
	scope, decision := s.policy.ReportScope(ctx, actor, auth.ReportContracts)
	if err := decision.Err(); err != nil {
		return nil, err
	}
	summary, err := s.repo.ContractSummary(ctx, scope)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to summarize contracts", "error", err)
		return nil, internal.NewInternalError("failed to summarize contracts", err)
	}
	summary.complete()
	return summary, nil
}

// Events summarizes every event for management, assigned events for support.
func (s *Service) Events(ctx context.Context, actor *auth.Actor) (*EventSummary, error) {
	scope, decision := s.policy.ReportScope(ctx, actor, auth.ReportEvents)
	if err := decision.Err(); err != nil {
		return nil, err
	}
	summary, err := s.repo.EventSummary(ctx, scope, s.now())
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to summarize events", "error", err)
		return nil, internal.NewInternalError("failed to summarize events", err)
	}
	summary.complete()
	return summary, nil
}

func (s *Service) Users(ctx context.Context, actor *auth.Actor) (*UserSummary, error) {
	if _, decision := s.policy.ReportScope(ctx, actor, auth.ReportUsers); !decision.Allowed() {
		return nil, decision.Err()
	}
	counts, err := s.repo.UserCounts(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to summarize users", "error", err)
		return nil, internal.NewInternalError("failed to summarize users", err)
	}

	summary := &UserSummary{ByDepartment: make(map[string]int64, len(auth.Roles))}
	for _, r := range auth.Roles {
		summary.ByDepartment[string(r)] = 0
	}
	for _, c := range counts {
		summary.ByDepartment[c.Department] = c.Count
		summary.Total += c.Count
	}
	return summary, nil
}
