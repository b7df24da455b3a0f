package postgres

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/frahmantamala/epic-events-crm/internal/auth"
	"github.com/frahmantamala/epic-events-crm/internal/report"
	"github.com/jmoiron/sqlx"
)

// ReportRepository runs aggregate queries with sqlx. Queries are built with
// '?' placeholders and rebound for the connected driver.
type ReportRepository struct {
	db *sqlx.DB
}

func NewReportRepository(db *sqlx.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

var _ report.RepositoryAPI = (*ReportRepository)(nil)

func (r *ReportRepository) ContractSummary(ctx context.Context, scope auth.Scope) (*report.ContractSummary, error) {
	q := sq.Select(
		"COUNT(*) AS total",
		"COALESCE(SUM(CASE WHEN contracts.is_signed THEN 1 ELSE 0 END), 0) AS signed",
		"COALESCE(SUM(contracts.total_amount), 0) AS total_amount",
		"COALESCE(SUM(contracts.remaining_amount), 0) AS remaining_amount",
	).From("contracts")
	if !scope.All && scope.CommercialID != 0 {
		q = q.Where(sq.Eq{"contracts.commercial_id": scope.CommercialID})
	}

	var summary report.ContractSummary
	if err := r.get(ctx, &summary, q); err != nil {
		return nil, err
	}
	return &summary, nil
}

func (r *ReportRepository) EventSummary(ctx context.Context, scope auth.Scope, now time.Time) (*report.EventSummary, error) {
	q := sq.Select(
		"COUNT(*) AS total",
		"COALESCE(SUM(CASE WHEN events.support_id IS NULL THEN 1 ELSE 0 END), 0) AS without_support",
	).
		Column("COALESCE(SUM(CASE WHEN events.start_date > ? THEN 1 ELSE 0 END), 0) AS upcoming", now).
		Column("COALESCE(SUM(CASE WHEN events.end_date < ? THEN 1 ELSE 0 END), 0) AS past", now).
		From("events")
	if !scope.All {
		if scope.SupportID != 0 {
			q = q.Where(sq.Eq{"events.support_id": scope.SupportID})
		}
		if scope.CommercialID != 0 {
			q = q.Join("clients ON clients.id = events.client_id").
				Where(sq.Eq{"clients.commercial_id": scope.CommercialID})
		}
	}

	var summary report.EventSummary
	if err := r.get(ctx, &summary, q); err != nil {
		return nil, err
	}
	return &summary, nil
}

func (r *ReportRepository) UserCounts(ctx context.Context) ([]report.DepartmentCount, error) {
	query, args, err := sq.Select("department", "COUNT(*) AS count").
		From("users").
		GroupBy("department").
		OrderBy("department").
		ToSql()
	if err != nil {
		return nil, err
	}
	var counts []report.DepartmentCount
	if err := r.db.SelectContext(ctx, &counts, r.db.Rebind(query), args...); err != nil {
		return nil, err
	}
	return counts, nil
}

func (r *ReportRepository) get(ctx context.Context, dst interface{}, q sq.SelectBuilder) error {
	query, args, err := q.ToSql()
	if err != nil {
		return err
	}
	return r.db.GetContext(ctx, dst, r.db.Rebind(query), args...)
}
