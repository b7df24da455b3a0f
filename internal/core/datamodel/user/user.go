package user

import "time"

// User is an employee row. Department holds the role.
type User struct {
	ID           int64     `gorm:"primaryKey"`
	EmployeeID   string    `gorm:"column:employee_id;uniqueIndex;not null"`
	FullName     string    `gorm:"column:full_name;not null"`
	Email        string    `gorm:"column:email;uniqueIndex;not null"`
	Department   string    `gorm:"column:department;not null;index"`
	PasswordHash string    `gorm:"column:password_hash;not null"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (User) TableName() string {
	return "users"
}
