package stock

import "errors"

var (
	// ErrInsufficientStock is the hard failure on reserve/deduct when the
	// requested quantity cannot be satisfied. Callers must abort or offer
	// partial fulfillment, never silently clamp.
	ErrInsufficientStock = errors.New("stock: insufficient stock")

	// ErrLockTimeout is transient: the per-row lock could not be acquired
	// within the bounded retry budget. Callers may retry with backoff.
	ErrLockTimeout = errors.New("stock: lock acquisition timed out")

	// ErrReferenceReversed means a deduction under this reference was applied
	// and later compensated by a rollback. Replaying it fails instead of
	// reporting a no-op success.
	ErrReferenceReversed = errors.New("stock: reference was reversed")

	// ErrInvariantViolation means a stock level failed a consistency check
	// (reserved > on-hand, or a movement delta mismatch). The level is frozen
	// and refuses further mutation until an operator intervenes.
	ErrInvariantViolation = errors.New("stock: stock level invariant violated")
)
