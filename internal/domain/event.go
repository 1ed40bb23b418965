package domain

import (
	"context"
	"time"
)

// Event represents an event with a fixed attendance capacity.
// swagger:model Event
type Event struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Location    string     `json:"location"`
	Capacity    int        `json:"capacity"`
	StartTime   time.Time  `json:"start_time"`
	RSVPOpenAt  *time.Time `json:"rsvp_open_at,omitempty"`
	CreatorID   string     `json:"creator_id"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// NewEvent returns a new Event with the given fields. ID is set by the repository on create.
func NewEvent(title, description, location string, capacity int, startTime time.Time, rsvpOpenAt *time.Time, creatorID string, createdAt time.Time) *Event {
	return &Event{
		Title:       title,
		Description: description,
		Location:    location,
		Capacity:    capacity,
		StartTime:   startTime,
		RSVPOpenAt:  rsvpOpenAt,
		CreatorID:   creatorID,
		CreatedAt:   createdAt,
		UpdatedAt:   createdAt,
	}
}

// RSVPOpensAt returns the instant RSVPs are accepted from: the explicit
// rsvp_open_at if set, otherwise creation time plus the configured delay.
func (e *Event) RSVPOpensAt(openDelay time.Duration) time.Time {
	if e.RSVPOpenAt != nil {
		return *e.RSVPOpenAt
	}
	return e.CreatedAt.Add(openDelay)
}

// EventUpdate carries the mutable fields for an event update.
// Capacity may not drop below the current confirmed attendee count.
type EventUpdate struct {
	Title       string
	Description string
	Location    string
	Capacity    int
	StartTime   time.Time
}

// EventFilter narrows upcoming-event listings.
type EventFilter struct {
	// Search matches title, description, or location, case-insensitively.
	Search string
	// Day restricts results to events starting on this calendar day (UTC midnight).
	Day *time.Time
}

// EventSnapshot is an event together with its current reservation state,
// with creator and attendee identities resolved for display. It is read-only
// and must never be used as the basis for an admission decision.
// swagger:model EventSnapshot
type EventSnapshot struct {
	Event         *Event      `json:"event"`
	Creator       *Attendee   `json:"creator,omitempty"`
	AttendeeCount int         `json:"attendees_count"`
	Attendees     []*Attendee `json:"attendees"`
}

// EventRepository defines the interface for event storage.
//
// Update must enforce the capacity floor atomically against the store: the
// reservation count and the capacity write have to observe the same
// transactional snapshot, or a racing reservation can leave the event
// overbooked. It returns *CapacityBelowAttendeesError when the floor is hit.
type EventRepository interface {
	Create(ctx context.Context, event *Event) error
	GetByID(ctx context.Context, id string) (*Event, error)
	ListUpcoming(ctx context.Context, after time.Time, filter EventFilter) ([]*Event, error)
	ListByCreatorID(ctx context.Context, creatorID string) ([]*Event, error)
	Update(ctx context.Context, id string, upd *EventUpdate) (*Event, error)
	Delete(ctx context.Context, id string) error
}

// EventService defines event lifecycle operations outside the admission core.
type EventService interface {
	Create(ctx context.Context, event *Event) (*EventSnapshot, error)
	Get(ctx context.Context, eventID string) (*EventSnapshot, error)
	ListUpcoming(ctx context.Context, filter EventFilter) ([]*EventSnapshot, error)
	ListCreated(ctx context.Context, creatorID string) ([]*EventSnapshot, error)
	Update(ctx context.Context, eventID, callerID string, upd *EventUpdate) (*EventSnapshot, error)
	Delete(ctx context.Context, eventID, callerID string) error
}
