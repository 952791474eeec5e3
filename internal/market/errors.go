package market

import "errors"

// Workflow failures are always one of these sentinels (possibly wrapped with
// detail via fmt.Errorf + %w). Raw storage errors never cross the package
// boundary.
var (
	ErrUnauthenticated   = errors.New("login required")
	ErrForbidden         = errors.New("forbidden")
	ErrNotFound          = errors.New("not found")
	ErrInvalidInput      = errors.New("invalid input")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrConflict covers lock timeouts, serialization failures and deadlocks.
	// Safe to retry.
	ErrConflict = errors.New("storage conflict, retry")
)
