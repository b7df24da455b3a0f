package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTypeLoginSucceeded = "auth.login_succeeded"
	EventTypeLoginFailed    = "auth.login_failed"
	EventTypeLockedOut      = "auth.locked_out"
	EventTypeLogout         = "auth.logout"

	EventTypeUserCreated     = "user.created"
	EventTypeUserUpdated     = "user.updated"
	EventTypeUserDeleted     = "user.deleted"
	EventTypeUserRoleChanged = "user.role_changed"

	EventTypeClientCreated    = "client.created"
	EventTypeClientUpdated    = "client.updated"
	EventTypeClientReassigned = "client.reassigned"
	EventTypeClientDeleted    = "client.deleted"

	EventTypeContractCreated = "contract.created"
	EventTypeContractUpdated = "contract.updated"
	EventTypeContractSigned  = "contract.signed"
	EventTypeContractPaid    = "contract.payment_recorded"
	EventTypeContractDeleted = "contract.deleted"

	EventTypeEventCreated         = "event.created"
	EventTypeEventUpdated         = "event.updated"
	EventTypeEventSupportAssigned = "event.support_assigned"
	EventTypeEventDeleted         = "event.deleted"
)

// AuditEvent records who did what to which entity. ActorID is zero for
// anonymous events such as a failed login.
type AuditEvent struct {
	BaseEvent
	ActorID    int64  `json:"actor_id"`
	ActorEmail string `json:"actor_email"`
	ActorRole  string `json:"actor_role"`
	EntityType string `json:"entity_type"`
	EntityID   int64  `json:"entity_id"`
}

// ActorRef identifies who caused an event without importing the auth package.
type ActorRef struct {
	ID    int64
	Email string
	Role  string
}

func NewAuditEvent(eventType string, actor ActorRef, entityType string, entityID int64, data map[string]interface{}) *AuditEvent {
	if data == nil {
		data = map[string]interface{}{}
	}
	return &AuditEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      eventType,
			Timestamp: time.Now(),
			Data:      data,
		},
		ActorID:    actor.ID,
		ActorEmail: actor.Email,
		ActorRole:  actor.Role,
		EntityType: entityType,
		EntityID:   entityID,
	}
}
