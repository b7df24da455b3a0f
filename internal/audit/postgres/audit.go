package postgres

import (
	"context"
	"strings"

	"github.com/frahmantamala/epic-events-crm/internal/audit"
	auditDatamodel "github.com/frahmantamala/epic-events-crm/internal/core/datamodel/audit"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AuditRepository struct {
	db *gorm.DB
}

func NewAuditRepository(db *gorm.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

var _ audit.RepositoryAPI = (*AuditRepository)(nil)

// Create is idempotent per event id.
func (r *AuditRepository) Create(ctx context.Context, row *auditDatamodel.AuditLog) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "event_id"}}, DoNothing: true}).
		Create(row).Error
}

// List returns newest first. An Action ending in "." matches by prefix.
func (r *AuditRepository) List(ctx context.Context, filter audit.Filter, limit int) ([]*auditDatamodel.AuditLog, error) {
	var rows []*auditDatamodel.AuditLog
	q := r.db.WithContext(ctx).Order("timestamp DESC, id DESC").Limit(limit)
	if filter.UserID != 0 {
		q = q.Where("user_id = ?", filter.UserID)
	}
	if a := strings.TrimSpace(filter.Action); a != "" {
		if strings.HasSuffix(a, ".") {
			q = q.Where("action LIKE ?", a+"%")
		} else {
			q = q.Where("action = ?", a)
		}
	}
	if filter.EntityType != "" {
		q = q.Where("entity_type = ?", filter.EntityType)
	}
	if filter.Since != nil {
		q = q.Where("timestamp >= ?", *filter.Since)
	}
	err := q.Find(&rows).Error
	return rows, err
}
