package interfaces

import "context"

// EventPublisher emits domain events to the message broker. Publishing is
// best-effort; flows never fail because the broker is down.
type EventPublisher interface {
	Publish(ctx context.Context, eventType string, payload interface{}) error
	Close() error
}
