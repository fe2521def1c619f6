package events

import (
	"time"

	"github.com/google/uuid"
)

// Priority is informational ordering metadata carried on an event. It
// never affects dispatch or delivery order.
type Priority int

const (
	PriorityLow Priority = iota
	PriorityNormal
	PriorityHigh
	PriorityCritical
)

func (p Priority) String() string {
	switch p {
	case PriorityLow:
		return "low"
	case PriorityHigh:
		return "high"
	case PriorityCritical:
		return "critical"
	default:
		return "normal"
	}
}

// Event is an immutable record of a domain occurrence. EventType is
// dot-namespaced ("store.order.created"); Payload is opaque to the bus.
type Event struct {
	EventID      string            `json:"event_id"`
	EventType    string            `json:"event_type"`
	SourceModule string            `json:"source_module"`
	Timestamp    time.Time         `json:"timestamp"`
	Priority     Priority          `json:"priority"`
	Payload      map[string]any    `json:"payload,omitempty"`
	Metadata     map[string]string `json:"metadata,omitempty"`
}

func New(eventType, sourceModule string, payload map[string]any) Event {
	return Event{
		EventID:      uuid.NewString(),
		EventType:    eventType,
		SourceModule: sourceModule,
		Timestamp:    time.Now().UTC(),
		Priority:     PriorityNormal,
		Payload:      payload,
	}
}
