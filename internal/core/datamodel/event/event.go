package event

import "time"

type Event struct {
	ID         int64     `gorm:"primaryKey"`
	Name       string    `gorm:"column:name;not null"`
	StartDate  time.Time `gorm:"column:start_date;not null"`
	EndDate    time.Time `gorm:"column:end_date;not null"`
	Location   string    `gorm:"column:location;not null"`
	Attendees  int64     `gorm:"column:attendees;not null"`
	Notes      string    `gorm:"column:notes"`
	ClientID   int64     `gorm:"column:client_id;not null;index"`
	ContractID int64     `gorm:"column:contract_id;not null;index"`
	SupportID  *int64    `gorm:"column:support_id;index"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Event) TableName() string {
	return "events"
}
