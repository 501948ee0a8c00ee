package dao

import (
	"errors"
	"fmt"

	"github.com/viant/contentflow/model"
)

// Storage errors. ErrNotFound and ErrStale wrap the engine sentinels so a
// caller can test either one with errors.Is.
var (
	ErrNotFound = fmt.Errorf("dao: %w", model.ErrNotFound)

	// ErrStale is returned when a revision-checked write lost the race.
	ErrStale = fmt.Errorf("dao: stale revision: %w", model.ErrConcurrencyConflict)

	ErrInvalidID = errors.New("dao: invalid id")

	ErrNilEntity = errors.New("dao: nil entity")
)
