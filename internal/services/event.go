package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"eventrsvp/internal/domain"
)

type eventService struct {
	eventRepo       domain.EventRepository
	reservationRepo domain.ReservationRepository
	userRepo        domain.UserRepository
	now             func() time.Time
}

// NewEventService creates an EventService with the given repositories.
func NewEventService(
	eventRepo domain.EventRepository,
	reservationRepo domain.ReservationRepository,
	userRepo domain.UserRepository,
) domain.EventService {
	return &eventService{
		eventRepo:       eventRepo,
		reservationRepo: reservationRepo,
		userRepo:        userRepo,
		now:             time.Now,
	}
}

func (s *eventService) Create(ctx context.Context, event *domain.Event) (*domain.EventSnapshot, error) {
	event.Title = strings.TrimSpace(event.Title)
	if event.Title == "" {
		return nil, fmt.Errorf("%w: title is required", domain.ErrInvalidInput)
	}
	if event.CreatorID == "" {
		return nil, fmt.Errorf("%w: creator is required", domain.ErrInvalidInput)
	}
	if event.Capacity < 1 {
		return nil, fmt.Errorf("%w: capacity must be at least 1", domain.ErrInvalidInput)
	}
	if event.StartTime.Before(s.now()) {
		return nil, fmt.Errorf("%w: start time must be in the future", domain.ErrInvalidInput)
	}

	now := s.now()
	event.CreatedAt = now
	event.UpdatedAt = now
	if err := s.eventRepo.Create(ctx, event); err != nil {
		return nil, fmt.Errorf("create event: %w", err)
	}
	// The insert returns the persisted row's id; no refetch round trip and
	// never a fabricated id-less event.
	return buildSnapshot(ctx, event, s.reservationRepo, s.userRepo)
}

func (s *eventService) Get(ctx context.Context, eventID string) (*domain.EventSnapshot, error) {
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	return buildSnapshot(ctx, event, s.reservationRepo, s.userRepo)
}

func (s *eventService) ListUpcoming(ctx context.Context, filter domain.EventFilter) ([]*domain.EventSnapshot, error) {
	filter.Search = strings.TrimSpace(filter.Search)
	events, err := s.eventRepo.ListUpcoming(ctx, s.now(), filter)
	if err != nil {
		return nil, fmt.Errorf("list upcoming events: %w", err)
	}
	return s.snapshots(ctx, events)
}

func (s *eventService) ListCreated(ctx context.Context, creatorID string) ([]*domain.EventSnapshot, error) {
	events, err := s.eventRepo.ListByCreatorID(ctx, creatorID)
	if err != nil {
		return nil, fmt.Errorf("list created events: %w", err)
	}
	return s.snapshots(ctx, events)
}

func (s *eventService) snapshots(ctx context.Context, events []*domain.Event) ([]*domain.EventSnapshot, error) {
	snapshots := make([]*domain.EventSnapshot, 0, len(events))
	for _, event := range events {
		snapshot, err := buildSnapshot(ctx, event, s.reservationRepo, s.userRepo)
		if err != nil {
			return nil, err
		}
		snapshots = append(snapshots, snapshot)
	}
	return snapshots, nil
}

func (s *eventService) Update(ctx context.Context, eventID, callerID string, upd *domain.EventUpdate) (*domain.EventSnapshot, error) {
	existing, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	if existing.CreatorID != callerID {
		return nil, domain.ErrForbidden
	}

	upd.Title = strings.TrimSpace(upd.Title)
	if upd.Title == "" {
		return nil, fmt.Errorf("%w: title is required", domain.ErrInvalidInput)
	}
	if upd.Capacity < 1 {
		return nil, fmt.Errorf("%w: capacity must be at least 1", domain.ErrInvalidInput)
	}

	// The capacity floor is enforced by the repository inside the update
	// transaction; a pre-read count here would race with admissions.
	event, err := s.eventRepo.Update(ctx, eventID, upd)
	if err != nil {
		var below *domain.CapacityBelowAttendeesError
		if errors.As(err, &below) {
			return nil, fmt.Errorf("%w: capacity cannot be less than current attendees (%d)", domain.ErrInvalidInput, below.Attendees)
		}
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("update event: %w", err)
	}
	return buildSnapshot(ctx, event, s.reservationRepo, s.userRepo)
}

func (s *eventService) Delete(ctx context.Context, eventID, callerID string) error {
	existing, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("get event: %w", err)
	}
	if existing.CreatorID != callerID {
		return domain.ErrForbidden
	}
	if err := s.eventRepo.Delete(ctx, eventID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("delete event: %w", err)
	}
	return nil
}
