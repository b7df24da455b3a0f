package postgres

import (
	"context"
	"errors"

	"github.com/frahmantamala/epic-events-crm/internal/auth"
	clientDatamodel "github.com/frahmantamala/epic-events-crm/internal/core/datamodel/client"
	contractDatamodel "github.com/frahmantamala/epic-events-crm/internal/core/datamodel/contract"
	eventDatamodel "github.com/frahmantamala/epic-events-crm/internal/core/datamodel/event"
	userDatamodel "github.com/frahmantamala/epic-events-crm/internal/core/datamodel/user"
	"github.com/frahmantamala/epic-events-crm/internal/user"
	"gorm.io/gorm"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

var (
	_ user.RepositoryAPI = (*UserRepository)(nil)
	_ user.Lookup        = (*UserRepository)(nil)
)

func (r *UserRepository) List(ctx context.Context, role auth.Role) ([]*userDatamodel.User, error) {
	var users []*userDatamodel.User
	q := r.db.WithContext(ctx).Order("department ASC, full_name ASC")
	if role != "" {
		q = q.Where("department = ?", string(role))
	}
	err := q.Find(&users).Error
	return users, err
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*userDatamodel.User, error) {
	var u userDatamodel.User
	if err := r.db.WithContext(ctx).First(&u, id).Error; err != nil {
		return nil, mapErr(err)
	}
	return &u, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*userDatamodel.User, error) {
	var u userDatamodel.User
	if err := r.db.WithContext(ctx).Where("LOWER(email) = ?", auth.NormalizeEmail(email)).First(&u).Error; err != nil {
		return nil, mapErr(err)
	}
	return &u, nil
}

func (r *UserRepository) GetByEmployeeID(ctx context.Context, employeeID string) (*userDatamodel.User, error) {
	var u userDatamodel.User
	if err := r.db.WithContext(ctx).Where("employee_id = ?", employeeID).First(&u).Error; err != nil {
		return nil, mapErr(err)
	}
	return &u, nil
}

func (r *UserRepository) Create(ctx context.Context, u *userDatamodel.User) error {
	return r.db.WithContext(ctx).Create(u).Error
}

// Update writes every column except department.
func (r *UserRepository) Update(ctx context.Context, u *userDatamodel.User) error {
	result := r.db.WithContext(ctx).Model(u).Select("employee_id", "full_name", "email", "password_hash", "updated_at").Updates(u)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return user.ErrNotFound
	}
	return nil
}

// UpdateDepartment refuses while the user owns clients or contracts. Leaving
// SUPPORT unassigns the user from every event they support; the number of
// unassigned events is returned.
func (r *UserRepository) UpdateDepartment(ctx context.Context, id int64, department string) (int64, error) {
	var unassigned int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := refuseOwner(tx, id); err != nil {
			return err
		}

		result := tx.Model(&userDatamodel.User{}).Where("id = ?", id).Update("department", department)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return user.ErrNotFound
		}

		if department != string(auth.RoleSupport) {
			result = tx.Model(&eventDatamodel.Event{}).Where("support_id = ?", id).Update("support_id", nil)
			if result.Error != nil {
				return result.Error
			}
			unassigned = result.RowsAffected
		}
		return nil
	})
	return unassigned, err
}

// Delete refuses while the user owns clients or contracts and unassigns
// them from any events they support.
func (r *UserRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := refuseOwner(tx, id); err != nil {
			return err
		}

		if err := tx.Model(&eventDatamodel.Event{}).Where("support_id = ?", id).Update("support_id", nil).Error; err != nil {
			return err
		}

		result := tx.Delete(&userDatamodel.User{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return user.ErrNotFound
		}
		return nil
	})
}

func refuseOwner(tx *gorm.DB, id int64) error {
	var owned int64
	if err := tx.Model(&clientDatamodel.Client{}).Where("commercial_id = ?", id).Count(&owned).Error; err != nil {
		return err
	}
	if owned == 0 {
		if err := tx.Model(&contractDatamodel.Contract{}).Where("commercial_id = ?", id).Count(&owned).Error; err != nil {
			return err
		}
	}
	if owned > 0 {
		return user.ErrHasDependents
	}
	return nil
}

func mapErr(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return user.ErrNotFound
	}
	return err
}
