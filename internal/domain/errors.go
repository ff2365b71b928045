package domain

import "github.com/Domenick1991/flightrebooking/internal/errs"

// Sentinel failures of the rebooking core. Callers match with errors.Is;
// human-readable detail is attached at the raise site via errs.Mark.
var (
	ErrBookingNotFound        = errs.New("booking not found")
	ErrFlightNotFound         = errs.New("flight not found")
	ErrNotEligible            = errs.New("booking is not eligible for rebooking")
	ErrAlreadyRebooked        = errs.New("booking has already been rebooked")
	ErrInvalidFlightSelection = errs.New("selected flight is not a valid rebooking option")
	ErrIdempotencyKeyReused   = errs.New("idempotency key was already used for a different booking")
	ErrVersionConflict        = errs.New("booking was modified by another request")
)
