package audit

import (
	"encoding/json"
	"time"

	auditDatamodel "github.com/frahmantamala/epic-events-crm/internal/core/datamodel/audit"
)

type Entry struct {
	ID         int64                  `json:"id"`
	Timestamp  time.Time              `json:"timestamp"`
	UserID     int64                  `json:"user_id,omitempty"`
	Username   string                 `json:"username"`
	Action     string                 `json:"action"`
	EntityType string                 `json:"entity_type,omitempty"`
	EntityID   int64                  `json:"entity_id,omitempty"`
	Details    map[string]interface{} `json:"details,omitempty"`
}

func FromDataModel(row *auditDatamodel.AuditLog) *Entry {
	e := &Entry{
		ID:         row.ID,
		Timestamp:  row.Timestamp,
		UserID:     row.UserID,
		Username:   row.Username,
		Action:     row.Action,
		EntityType: row.EntityType,
		EntityID:   row.EntityID,
	}
	if row.Details != "" {
		_ = json.Unmarshal([]byte(row.Details), &e.Details)
	}
	return e
}

type Filter struct {
	UserID     int64
	Action     string
	EntityType string
	Since      *time.Time
	Limit      int
}

const (
	defaultLimit = 50
	maxLimit     = 500
)

func (f Filter) limit() int {
	switch {
	case f.Limit <= 0:
		return defaultLimit
	case f.Limit > maxLimit:
		return maxLimit
	}
	return f.Limit
}
