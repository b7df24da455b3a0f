package audit

import "time"

type AuditLog struct {
	ID         int64     `gorm:"primaryKey"`
	Timestamp  time.Time `gorm:"column:timestamp;not null;index"`
	UserID     int64     `gorm:"column:user_id;not null"`
	Username   string    `gorm:"column:username;not null"`
	Action     string    `gorm:"column:action;not null"`
	EntityType string    `gorm:"column:entity_type"`
	EntityID   int64     `gorm:"column:entity_id"`
	Details    string    `gorm:"column:details"`
	EventID    string    `gorm:"column:event_id;uniqueIndex"`
}

func (AuditLog) TableName() string {
	return "audit_logs"
}
