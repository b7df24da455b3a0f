package postgres

import (
	"context"
	"errors"

	"github.com/frahmantamala/epic-events-crm/internal/auth"
	userDatamodel "github.com/frahmantamala/epic-events-crm/internal/core/datamodel/user"
	"gorm.io/gorm"
)

// AccountRepository reads credentials straight from the users table.
type AccountRepository struct {
	db *gorm.DB
}

func NewAccountRepository(db *gorm.DB) auth.AccountRepository {
	return &AccountRepository{db: db}
}

func (r *AccountRepository) FindByEmail(ctx context.Context, email string) (*auth.Account, error) {
	var row userDatamodel.User
	err := r.db.WithContext(ctx).Where("LOWER(email) = ?", auth.NormalizeEmail(email)).First(&row).Error
	return toAccount(&row, err)
}

func (r *AccountRepository) FindByID(ctx context.Context, id int64) (*auth.Account, error) {
	var row userDatamodel.User
	err := r.db.WithContext(ctx).First(&row, id).Error
	return toAccount(&row, err)
}

func toAccount(row *userDatamodel.User, err error) (*auth.Account, error) {
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, auth.ErrAccountNotFound
		}
		return nil, err
	}
	return &auth.Account{
		Actor: auth.Actor{
			ID:         row.ID,
			EmployeeID: row.EmployeeID,
			FullName:   row.FullName,
			Email:      row.Email,
			Role:       auth.Role(row.Department),
		},
		PasswordHash: row.PasswordHash,
	}, nil
}
