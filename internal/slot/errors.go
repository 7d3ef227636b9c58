package slot

import "errors"

// Domain errors for the slot package.
//
// These errors can be checked using errors.Is() for error handling:
//
//	if errors.Is(err, slot.ErrSlotNotFound) {
//	    // handle not found case
//	}
var (
	// ErrSlotNotFound is returned when no node with the requested label
	// exists anywhere in the interface tree.
	ErrSlotNotFound = errors.New("slot: not found")

	// ErrInvalidArity is returned when a colour value does not have exactly
	// 3 or 4 components.
	ErrInvalidArity = errors.New("slot: invalid colour arity")

	// ErrNotFinite is returned when a numeric input is NaN or infinite.
	// Non-finite values are rejected before clamping rather than written
	// through silently.
	ErrNotFinite = errors.New("slot: value is not finite")

	// ErrKindMismatch is returned when an operation is applied to a slot of
	// a different kind (e.g. SetColor on a float slot).
	ErrKindMismatch = errors.New("slot: kind mismatch")

	// ErrInvalidKind is returned when a kind value is not recognised.
	ErrInvalidKind = errors.New("slot: invalid kind")

	// ErrInvalidBounds is returned when a slot declares min > max.
	ErrInvalidBounds = errors.New("slot: invalid bounds")
)
