package model

import "errors"

// Error taxonomy of the engine. Callers match with errors.Is; the engine
// wraps these sentinels with context via fmt.Errorf("...: %w").
var (
	// ErrValidation reports a missing or malformed input field.
	ErrValidation = errors.New("validation error")

	// ErrNotFound reports an unknown item, version, link or comment.
	ErrNotFound = errors.New("not found")

	// ErrVersionNotFound reports a version that does not belong to the item.
	ErrVersionNotFound = fmtNotFound("version not found")

	// ErrInvalidTransition reports a status change not permitted from the
	// current status.
	ErrInvalidTransition = errors.New("invalid transition")

	// ErrTerminalState reports an attempt to advance a published item.
	ErrTerminalState = errors.New("terminal state")

	// ErrLinkInvalid is the single error surfaced for an unknown, expired,
	// deactivated or password-mismatched review link.
	ErrLinkInvalid = errors.New("review link is no longer available")

	// ErrConcurrencyConflict reports a stale revision on optimistic stores.
	ErrConcurrencyConflict = errors.New("concurrency conflict")
)

// notFoundError lets specialised not-found errors match ErrNotFound.
type notFoundError struct{ msg string }

func (e *notFoundError) Error() string        { return e.msg }
func (e *notFoundError) Is(target error) bool { return target == ErrNotFound }

func fmtNotFound(msg string) error { return &notFoundError{msg: msg} }
