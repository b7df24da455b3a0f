package postgres

import (
	"context"
	"errors"
	"strings"

	"github.com/frahmantamala/epic-events-crm/internal/contract"
	contractDatamodel "github.com/frahmantamala/epic-events-crm/internal/core/datamodel/contract"
	eventDatamodel "github.com/frahmantamala/epic-events-crm/internal/core/datamodel/event"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ContractRepository struct {
	db *gorm.DB
}

func NewContractRepository(db *gorm.DB) *ContractRepository {
	return &ContractRepository{db: db}
}

var _ contract.RepositoryAPI = (*ContractRepository)(nil)

func (r *ContractRepository) List(ctx context.Context, filter contract.Filter) ([]*contractDatamodel.Contract, error) {
	var contracts []*contractDatamodel.Contract
	q := r.db.WithContext(ctx).Model(&contractDatamodel.Contract{}).
		Select("contracts.*").
		Order("contracts.creation_date DESC, contracts.id DESC")

	if filter.Signed != nil {
		q = q.Where("contracts.is_signed = ?", *filter.Signed)
	}
	if filter.Unpaid {
		q = q.Where("contracts.remaining_amount > 0")
	}
	if filter.CommercialID != 0 {
		q = q.Where("contracts.commercial_id = ?", filter.CommercialID)
	}
	if filter.MinAmount != nil {
		q = q.Where("contracts.total_amount >= ?", *filter.MinAmount)
	}
	if filter.MaxAmount != nil {
		q = q.Where("contracts.total_amount <= ?", *filter.MaxAmount)
	}
	if name := strings.TrimSpace(filter.ClientName); name != "" {
		q = q.Joins("JOIN clients ON clients.id = contracts.client_id").
			Where("LOWER(clients.full_name) LIKE ?", "%"+strings.ToLower(name)+"%")
	}

	err := q.Find(&contracts).Error
	return contracts, err
}

func (r *ContractRepository) GetByID(ctx context.Context, id int64) (*contractDatamodel.Contract, error) {
	var c contractDatamodel.Contract
	if err := r.db.WithContext(ctx).First(&c, id).Error; err != nil {
		return nil, mapErr(err)
	}
	return &c, nil
}

func (r *ContractRepository) Create(ctx context.Context, c *contractDatamodel.Contract) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *ContractRepository) UpdateAmounts(ctx context.Context, id int64, total, remaining decimal.Decimal) error {
	result := r.db.WithContext(ctx).Model(&contractDatamodel.Contract{}).Where("id = ?", id).
		Updates(map[string]interface{}{"total_amount": total, "remaining_amount": remaining})
	return affected(result)
}

func (r *ContractRepository) MarkSigned(ctx context.Context, id int64) error {
	result := r.db.WithContext(ctx).Model(&contractDatamodel.Contract{}).Where("id = ?", id).Update("is_signed", true)
	return affected(result)
}

func (r *ContractRepository) RecordPayment(ctx context.Context, id int64, amount decimal.Decimal) (*contractDatamodel.Contract, error) {
	var c contractDatamodel.Contract
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		q := tx
		// sqlite serializes writers and rejects FOR UPDATE.
		if tx.Dialector.Name() == "postgres" {
			q = q.Clauses(clause.Locking{Strength: "UPDATE"})
		}
		if err := q.First(&c, id).Error; err != nil {
			return mapErr(err)
		}
		if amount.GreaterThan(c.RemainingAmount) {
			return contract.ErrPaymentExceeds
		}
		c.RemainingAmount = c.RemainingAmount.Sub(amount)
		return tx.Model(&c).Update("remaining_amount", c.RemainingAmount).Error
	})
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *ContractRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("contract_id = ?", id).Delete(&eventDatamodel.Event{}).Error; err != nil {
			return err
		}
		return affected(tx.Delete(&contractDatamodel.Contract{}, id))
	})
}

func affected(result *gorm.DB) error {
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return contract.ErrNotFound
	}
	return nil
}

func mapErr(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return contract.ErrNotFound
	}
	return err
}
