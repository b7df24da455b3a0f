package postgres

import (
	"context"
	"errors"
	"strings"

	eventDatamodel "github.com/frahmantamala/epic-events-crm/internal/core/datamodel/event"
	"github.com/frahmantamala/epic-events-crm/internal/event"
	"gorm.io/gorm"
)

type EventRepository struct {
	db *gorm.DB
}

func NewEventRepository(db *gorm.DB) *EventRepository {
	return &EventRepository{db: db}
}

var _ event.RepositoryAPI = (*EventRepository)(nil)

func (r *EventRepository) List(ctx context.Context, filter event.Filter) ([]*eventDatamodel.Event, error) {
	var evts []*eventDatamodel.Event
	q := r.db.WithContext(ctx).Model(&eventDatamodel.Event{}).
		Select("events.*").
		Order("events.start_date ASC, events.id ASC")

	if filter.WithoutSupport {
		q = q.Where("events.support_id IS NULL")
	}
	if filter.SupportID != 0 {
		q = q.Where("events.support_id = ?", filter.SupportID)
	}
	if filter.ClientID != 0 {
		q = q.Where("events.client_id = ?", filter.ClientID)
	}
	if filter.CommercialID != 0 {
		q = q.Joins("JOIN clients ON clients.id = events.client_id").
			Where("clients.commercial_id = ?", filter.CommercialID)
	}
	if filter.From != nil {
		q = q.Where("events.start_date >= ?", *filter.From)
	}
	if filter.To != nil {
		q = q.Where("events.start_date <= ?", *filter.To)
	}
	if loc := strings.TrimSpace(filter.Location); loc != "" {
		q = q.Where("LOWER(events.location) LIKE ?", "%"+strings.ToLower(loc)+"%")
	}
	if name := strings.TrimSpace(filter.Name); name != "" {
		q = q.Where("LOWER(events.name) LIKE ?", "%"+strings.ToLower(name)+"%")
	}

	err := q.Find(&evts).Error
	return evts, err
}

func (r *EventRepository) GetByID(ctx context.Context, id int64) (*eventDatamodel.Event, error) {
	var e eventDatamodel.Event
	if err := r.db.WithContext(ctx).First(&e, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, event.ErrNotFound
		}
		return nil, err
	}
	return &e, nil
}

func (r *EventRepository) Create(ctx context.Context, e *eventDatamodel.Event) error {
	return r.db.WithContext(ctx).Create(e).Error
}

func (r *EventRepository) Update(ctx context.Context, e *eventDatamodel.Event) error {
	result := r.db.WithContext(ctx).Model(e).
		Select("name", "start_date", "end_date", "location", "attendees", "notes", "updated_at").
		Updates(e)
	return affected(result)
}

// UpdateSupport sets or clears the assigned agent.
func (r *EventRepository) UpdateSupport(ctx context.Context, id int64, supportID *int64) error {
	result := r.db.WithContext(ctx).Model(&eventDatamodel.Event{}).Where("id = ?", id).Update("support_id", supportID)
	return affected(result)
}

func (r *EventRepository) Delete(ctx context.Context, id int64) error {
	return affected(r.db.WithContext(ctx).Delete(&eventDatamodel.Event{}, id))
}

func affected(result *gorm.DB) error {
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return event.ErrNotFound
	}
	return nil
}
