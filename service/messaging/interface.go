// Package messaging defines the queue abstraction notifications are handed
// to for external delivery.
package messaging

import (
	"context"
)

// Publisher hands payloads to a queue.
type Publisher[T any] interface {
	// Publish enqueues t, blocking until there is room or ctx is done.
	Publish(ctx context.Context, t *T) error
}

// NonBlockingPublisher is implemented by queues that can refuse work
// instead of waiting for room.
type NonBlockingPublisher[T any] interface {
	TryPublish(t *T) error
}

// Consumer takes payloads off a queue.
type Consumer[T any] interface {
	Consume(ctx context.Context) (Message[T], error)
}

// Queue is a publisher and consumer of one payload type.
type Queue[T any] interface {
	Publisher[T]
	Consumer[T]
}

// Message is one delivery; it must be acknowledged either way.
type Message[T any] interface {
	T() *T

	Ack() error

	// Nack returns the payload for redelivery.
	Nack(err error) error
}
