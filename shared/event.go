package shared

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Routing keys of interest for the search subsystem, routing key == event type
const (
	EventPostCreated   = "post.created"
	EventPostUpdated   = "post.updated"
	EventPostPublished = "post.published"
	EventPostDeleted   = "post.deleted"

	// EventReindexCompleted emitted after a full tenant reindex finished
	EventReindexCompleted = "search.reindex.completed"
)

// EventPayload data section of the domain event envelope
type EventPayload struct {
	EntityID string                 `json:"entityId"`
	Extra    map[string]interface{} `json:"extra,omitempty"`
}

// EventEnvelope domain event wire format, immutable once published.
// Delivery is at least once, consumers must stay idempotent under duplicate EventID.
// The payload is never trusted as entity state, it only identifies what to refetch.
type EventEnvelope struct {
	EventID   string       `json:"eventId"`
	EventType string       `json:"eventType"`
	TenantID  string       `json:"tenantId"`
	Data      EventPayload `json:"data"`
	EmittedAt time.Time    `json:"emittedAt"`
}

// NewEventEnvelope construct envelope for publishing
func NewEventEnvelope(eventType, tenantID, entityID string) EventEnvelope {
	return EventEnvelope{
		EventID:   uuid.NewString(),
		EventType: eventType,
		TenantID:  tenantID,
		Data:      EventPayload{EntityID: entityID},
		EmittedAt: time.Now(),
	}
}

// DecodeEventEnvelope decode message body, reject envelope without identity fields
func DecodeEventEnvelope(body []byte) (e EventEnvelope, err error) {
	if err = json.Unmarshal(body, &e); err != nil {
		return e, err
	}
	if e.EventType == "" || e.TenantID == "" || e.Data.EntityID == "" {
		return e, ErrMalformedEvent
	}
	return e, nil
}

// PublisherArgument argument for publish message to the event bus
type PublisherArgument struct {
	// Topic is the routing key on the topic exchange
	Topic       string
	Header      map[string]interface{}
	ContentType string
	Key         string
	Data        interface{}
}
