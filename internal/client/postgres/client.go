package postgres

import (
	"context"
	"errors"
	"strings"

	"github.com/frahmantamala/epic-events-crm/internal/client"
	clientDatamodel "github.com/frahmantamala/epic-events-crm/internal/core/datamodel/client"
	contractDatamodel "github.com/frahmantamala/epic-events-crm/internal/core/datamodel/contract"
	eventDatamodel "github.com/frahmantamala/epic-events-crm/internal/core/datamodel/event"
	"gorm.io/gorm"
)

type ClientRepository struct {
	db *gorm.DB
}

func NewClientRepository(db *gorm.DB) *ClientRepository {
	return &ClientRepository{db: db}
}

var _ client.RepositoryAPI = (*ClientRepository)(nil)

func (r *ClientRepository) List(ctx context.Context, filter client.Filter) ([]*clientDatamodel.Client, error) {
	var clients []*clientDatamodel.Client
	q := r.db.WithContext(ctx).Order("company_name ASC, full_name ASC")
	if filter.CommercialID != 0 {
		q = q.Where("commercial_id = ?", filter.CommercialID)
	}
	if s := strings.TrimSpace(filter.Search); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		q = q.Where("LOWER(full_name) LIKE ? OR LOWER(company_name) LIKE ?", like, like)
	}
	err := q.Find(&clients).Error
	return clients, err
}

func (r *ClientRepository) GetByID(ctx context.Context, id int64) (*clientDatamodel.Client, error) {
	var c clientDatamodel.Client
	if err := r.db.WithContext(ctx).First(&c, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, client.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (r *ClientRepository) Create(ctx context.Context, c *clientDatamodel.Client) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *ClientRepository) Update(ctx context.Context, c *clientDatamodel.Client) error {
	result := r.db.WithContext(ctx).Model(c).
		Select("full_name", "email", "phone", "company_name", "commercial_id", "last_contact", "updated_at").
		Updates(c)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return client.ErrNotFound
	}
	return nil
}

func (r *ClientRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("client_id = ?", id).Delete(&eventDatamodel.Event{}).Error; err != nil {
			return err
		}
		if err := tx.Where("client_id = ?", id).Delete(&contractDatamodel.Contract{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&clientDatamodel.Client{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return client.ErrNotFound
		}
		return nil
	})
}
