package domain

import (
	"context"
	"time"
)

// Reservation pairs one user with one event. It is binary: it either exists
// or it does not; there is no update operation.
// swagger:model Reservation
type Reservation struct {
	ID        string    `json:"id"`
	EventID   string    `json:"event_id"`
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

// NewReservation creates a new Reservation. ID is set by the repository on insert.
func NewReservation(eventID, userID string, createdAt time.Time) *Reservation {
	return &Reservation{
		EventID:   eventID,
		UserID:    userID,
		CreatedAt: createdAt,
	}
}

// InsertOutcome reports how the store resolved a conditional reservation insert.
type InsertOutcome int

const (
	// Inserted means a new reservation row was committed.
	Inserted InsertOutcome = iota
	// DuplicateRejected means the (event, user) uniqueness constraint was hit.
	DuplicateRejected
	// CapacityRejected means the capacity guard was hit.
	CapacityRejected
)

// ReservationRepository defines storage operations for reservations.
//
// ConditionalInsert must enforce, as one atomic unit against the store, both
// the (event_id, user_id) uniqueness constraint and a count-under-capacity
// guard evaluated against the same transactional snapshot as the insert.
// A plain count-then-insert without a shared lock does not satisfy this.
type ReservationRepository interface {
	ConditionalInsert(ctx context.Context, res *Reservation) (InsertOutcome, error)
	Delete(ctx context.Context, eventID, userID string) error
	CountByEventID(ctx context.Context, eventID string) (int, error)
	ListByEventID(ctx context.Context, eventID string) ([]*Reservation, error)
	ListEventIDsByUserID(ctx context.Context, userID string) ([]string, error)
}

// AdmissionService decides, per RSVP or cancellation request, whether the
// operation is allowed and executes it against the store. It holds no
// authoritative state between requests; every decision is re-derived from
// the store's atomic primitives.
type AdmissionService interface {
	// TryReserve attempts to reserve a seat for userID on eventID.
	// On success it returns the updated event snapshot. Rejections are
	// ErrNotFound, ErrEventInPast, *TooEarlyError, ErrAlreadyReserved,
	// ErrCapacityFull, or ErrStoreUnavailable; no mutation occurred.
	TryReserve(ctx context.Context, eventID, userID string) (*EventSnapshot, error)
	// Cancel releases the seat held by userID on eventID. Returns
	// ErrNotReserved when no reservation exists; idempotent under retry.
	Cancel(ctx context.Context, eventID, userID string) (*EventSnapshot, error)
	// ListReservedEvents returns upcoming events the user holds a seat for.
	ListReservedEvents(ctx context.Context, userID string) ([]*EventSnapshot, error)
}
