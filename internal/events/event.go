// Package events is the node's event publisher (spec.md §4.G component G):
// handlers and the server post structured events that fan out to the
// dashboard feed and, for domain events, to a durable audit trail. Every
// publish path is non-blocking — a full or absent consumer drops the event.
package events

import "time"

type Type string

const (
	TypeInfo        Type = "INFO"
	TypeConnection  Type = "CONNECTION"
	TypeCommand     Type = "COMMAND"
	TypeResponse    Type = "RESPONSE"
	TypeWarning     Type = "WARNING"
	TypeError       Type = "ERROR"
	TypeAccount     Type = "ACCOUNT"
	TypeTransaction Type = "TRANSACTION"
	TypeProxy       Type = "PROXY"
)

// Event is the structured payload published to every sink.
type Event struct {
	Type      Type      `json:"type"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Publisher is implemented by anything that can accept an Event without
// blocking the caller.
type Publisher interface {
	Publish(e Event)
}

// New stamps an Event with the current time. Callers build events through
// this constructor rather than the literal so Timestamp is never left zero.
func New(t Type, content string) Event {
	return Event{Type: t, Content: content, Timestamp: time.Now()}
}
