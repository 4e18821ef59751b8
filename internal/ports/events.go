package ports

import "context"

// EventPublisher is the outbound lifecycle-event publish port. The
// application only ever writes through the outbox; the worker uses this to
// drain it to the broker.
type EventPublisher interface {
	Publish(ctx context.Context, eventType string, payload []byte, partitionKey string) error
}
