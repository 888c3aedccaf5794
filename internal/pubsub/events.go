// Package pubsub provides a generic publish/subscribe event system.
package pubsub

import (
	"context"
	"time"
)

// EventType represents the type of event being published.
type EventType string

const (
	// LogEvent carries a formatted log line.
	LogEvent EventType = "log"

	// RegisteredEvent fires after a signature is stored in the registry.
	RegisteredEvent EventType = "registered"
	// DuplicateEvent fires when a path is declared by a second document.
	DuplicateEvent EventType = "duplicate"
	// ResolvedEvent fires for every reference that found its target.
	ResolvedEvent EventType = "resolved"
	// UnresolvedEvent fires for every reference that matched nothing.
	UnresolvedEvent EventType = "unresolved"
	// EvictedEvent fires when a document's entries are purged.
	EvictedEvent EventType = "evicted"
)

// Event represents a published event with a typed payload.
type Event[T any] struct {
	Type      EventType
	Payload   T
	Timestamp time.Time
}

// Subscriber provides a subscription channel for events.
type Subscriber[T any] interface {
	Subscribe(ctx context.Context) <-chan Event[T]
}

// Publisher allows publishing events with a typed payload.
type Publisher[T any] interface {
	Publish(eventType EventType, payload T)
}
