package event

import (
	"strings"
	"time"

	"github.com/frahmantamala/epic-events-crm/internal"
	"github.com/frahmantamala/epic-events-crm/internal/core/common/validation"
)

type CreateEventDTO struct {
	Name       string    `json:"name"`
	ClientID   int64     `json:"client_id"`
	ContractID int64     `json:"contract_id"`
	StartDate  time.Time `json:"start_date"`
	EndDate    time.Time `json:"end_date"`
	Location   string    `json:"location"`
	Attendees  int64     `json:"attendees"`
	Notes      string    `json:"notes,omitempty"`
	SupportID  *int64    `json:"support_id,omitempty"`
}

func (d *CreateEventDTO) Normalize() {
	d.Name = strings.TrimSpace(d.Name)
	d.Location = strings.TrimSpace(d.Location)
	d.Notes = strings.TrimSpace(d.Notes)
}

func (d CreateEventDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("name", d.Name).Required().MaxLength(200)
	v.Field("contract_id", d.ContractID).Required()
	v.Field("location", d.Location).Required().MaxLength(300)
	v.Field("attendees", d.Attendees).MinInt(0, internal.ErrCodeValidationFailed)
	v.Field("start_date", d.StartDate).Required().Before(d.EndDate, "end_date")
	v.Field("end_date", d.EndDate).Required()
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

type UpdateEventDTO struct {
	Name      *string    `json:"name,omitempty"`
	StartDate *time.Time `json:"start_date,omitempty"`
	EndDate   *time.Time `json:"end_date,omitempty"`
	Location  *string    `json:"location,omitempty"`
	Attendees *int64     `json:"attendees,omitempty"`
	Notes     *string    `json:"notes,omitempty"`
}

func (d UpdateEventDTO) Empty() bool {
	return d.Name == nil && d.StartDate == nil && d.EndDate == nil && d.Location == nil && d.Attendees == nil && d.Notes == nil
}

// Apply merges the update into a copy of e.
func (d UpdateEventDTO) Apply(e Event) Event {
	if d.Name != nil {
		e.Name = strings.TrimSpace(*d.Name)
	}
	if d.StartDate != nil {
		e.StartDate = *d.StartDate
	}
	if d.EndDate != nil {
		e.EndDate = *d.EndDate
	}
	if d.Location != nil {
		e.Location = strings.TrimSpace(*d.Location)
	}
	if d.Attendees != nil {
		e.Attendees = *d.Attendees
	}
	if d.Notes != nil {
		e.Notes = strings.TrimSpace(*d.Notes)
	}
	return e
}

func validateEvent(e Event) error {
	v := validation.NewValidator()
	v.Field("name", e.Name).Required().MaxLength(200)
	v.Field("location", e.Location).Required().MaxLength(300)
	v.Field("attendees", e.Attendees).MinInt(0, internal.ErrCodeValidationFailed)
	v.Field("start_date", e.StartDate).Required().Before(e.EndDate, "end_date")
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

// AssignSupportDTO assigns an agent; a nil SupportID clears the assignment.
type AssignSupportDTO struct {
	SupportID *int64 `json:"support_id"`
}

type Filter struct {
	WithoutSupport bool
	SupportID      int64
	CommercialID   int64
	ClientID       int64
	From           *time.Time
	To             *time.Time
	Location       string
	Name           string
}

// ListOptions are the caller's filters before role scoping.
type ListOptions struct {
	Filter
	// UpcomingDays restricts to events starting within that many days.
	UpcomingDays int
	Mine         bool
}
