package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors shared across services. Each rejected path maps to exactly
// one of these so the delivery layer can render a distinguishable reason.
var (
	ErrNotFound         = errors.New("not found")
	ErrInvalidInput     = errors.New("invalid input")
	ErrForbidden        = errors.New("forbidden")
	ErrEventInPast      = errors.New("event is in the past")
	ErrAlreadyReserved  = errors.New("already reserved")
	ErrCapacityFull     = errors.New("event is at full capacity")
	ErrNotReserved      = errors.New("not reserved")
	ErrStoreUnavailable = errors.New("store unavailable")
)

// TooEarlyError is returned by TryReserve when the RSVP window has not
// opened yet. SecondsRemaining is rounded up to whole seconds.
type TooEarlyError struct {
	SecondsRemaining int
}

func (e *TooEarlyError) Error() string {
	return fmt.Sprintf("rsvp opens in %d seconds", e.SecondsRemaining)
}

// CapacityBelowAttendeesError is returned by an event update whose new
// capacity is lower than the number of confirmed attendees at the time the
// store applied the update.
type CapacityBelowAttendeesError struct {
	Attendees int
}

func (e *CapacityBelowAttendeesError) Error() string {
	return fmt.Sprintf("capacity cannot be less than current attendees (%d)", e.Attendees)
}
