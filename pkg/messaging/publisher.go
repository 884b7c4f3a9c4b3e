package messaging

import (
	"context"
)

// Subjects for store lifecycle events.
const (
	ProductAddedSubject     = "store.product.added"
	ProductRestockedSubject = "store.product.restocked"
	ProductBoughtSubject    = "store.product.bought"
	ProductReturnedSubject  = "store.product.returned"
)

type Event interface {
	Subject() string
	Payload() ([]byte, error)
}

type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// NopPublisher discards events. Used when no broker is configured and in
// tests.
type NopPublisher struct{}

func (NopPublisher) Publish(_ context.Context, _ Event) error {
	return nil
}
