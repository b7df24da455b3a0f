package event

import (
	"time"

	eventDatamodel "github.com/frahmantamala/epic-events-crm/internal/core/datamodel/event"
)

type Event struct {
	ID         int64     `json:"id"`
	Name       string    `json:"name"`
	StartDate  time.Time `json:"start_date"`
	EndDate    time.Time `json:"end_date"`
	Location   string    `json:"location"`
	Attendees  int64     `json:"attendees"`
	Notes      string    `json:"notes,omitempty"`
	ClientID   int64     `json:"client_id"`
	ContractID int64     `json:"contract_id"`
	SupportID  *int64    `json:"support_id"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Status places the event relative to now.
func (e *Event) Status(now time.Time) string {
	switch {
	case now.Before(e.StartDate):
		return "upcoming"
	case now.After(e.EndDate):
		return "past"
	default:
		return "ongoing"
	}
}

func ToDataModel(e *Event) *eventDatamodel.Event {
	return &eventDatamodel.Event{
		ID:         e.ID,
		Name:       e.Name,
		StartDate:  e.StartDate,
		EndDate:    e.EndDate,
		Location:   e.Location,
		Attendees:  e.Attendees,
		Notes:      e.Notes,
		ClientID:   e.ClientID,
		ContractID: e.ContractID,
		SupportID:  e.SupportID,
		CreatedAt:  e.CreatedAt,
		UpdatedAt:  e.UpdatedAt,
	}
}

func FromDataModel(e *eventDatamodel.Event) *Event {
	return &Event{
		ID:         e.ID,
		Name:       e.Name,
		StartDate:  e.StartDate,
		EndDate:    e.EndDate,
		Location:   e.Location,
		Attendees:  e.Attendees,
		Notes:      e.Notes,
		ClientID:   e.ClientID,
		ContractID: e.ContractID,
		SupportID:  e.SupportID,
		CreatedAt:  e.CreatedAt,
		UpdatedAt:  e.UpdatedAt,
	}
}
