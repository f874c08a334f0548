// Package events publishes contact lifecycle notifications to Kafka.
//
// Publishing is best-effort: a failed publish is logged and counted, and the
// caller's operation still succeeds. A circuit breaker stops attempts while
// the broker is unreachable.
package events

import (
	"time"

	"github.com/google/uuid"

	"crm/internal/contact/models"
)

// Action names a lifecycle transition.
type Action string

const (
	ActionCreated Action = "contact.created"
	ActionUpdated Action = "contact.updated"
	ActionDeleted Action = "contact.deleted"
)

// Event is the JSON payload written to the topic. The record key is the
// contact id so every event for one contact lands on the same partition.
type Event struct {
	EventID   uuid.UUID `json:"eventId"`
	ID        string    `json:"id"`
	Action    Action    `json:"action"`
	Version   int       `json:"version"`
	Timestamp time.Time `json:"timestamp"`
	RequestID string    `json:"requestId,omitempty"`
}

// NewEvent describes action applied to c at now.
func NewEvent(action Action, c *models.Contact, now time.Time) Event {
	return Event{
		EventID:   uuid.New(),
		ID:        c.ID.String(),
		Action:    action,
		Version:   c.Version,
		Timestamp: models.Timestamp(now),
	}
}
