package dao

import (
	"context"
)

// Service is the persistence contract for a keyed entity. Implementations
// must not retain pointers they receive or hand out: Save stores a copy and
// Load/List return private copies.
type Service[K comparable, T any] interface {
	Save(ctx context.Context, t *T) error

	Load(ctx context.Context, id K) (*T, error)

	Delete(ctx context.Context, id K) error

	List(ctx context.Context, parameters ...*Parameter) ([]*T, error)
}
