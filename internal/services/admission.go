package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"eventrsvp/internal/domain"
)

type admissionService struct {
	eventRepo       domain.EventRepository
	reservationRepo domain.ReservationRepository
	userRepo        domain.UserRepository
	mailer          domain.Mailer
	logger          *slog.Logger
	openDelay       time.Duration
	now             func() time.Time
}

// NewAdmissionService creates an AdmissionService. openDelay is the minimum
// time after event creation before RSVPs are accepted, unless the event
// carries an explicit rsvp_open_at.
func NewAdmissionService(
	eventRepo domain.EventRepository,
	reservationRepo domain.ReservationRepository,
	userRepo domain.UserRepository,
	mailer domain.Mailer,
	logger *slog.Logger,
	openDelay time.Duration,
) domain.AdmissionService {
	return &admissionService{
		eventRepo:       eventRepo,
		reservationRepo: reservationRepo,
		userRepo:        userRepo,
		mailer:          mailer,
		logger:          logger,
		openDelay:       openDelay,
		now:             time.Now,
	}
}

// TryReserve applies the admission policy in strict order: event lookup,
// past-event check, open-window check, then a single conditional write.
// Only the store's atomic insert gates admission; everything read before it
// is advisory.
func (s *admissionService) TryReserve(ctx context.Context, eventID, userID string) (*domain.EventSnapshot, error) {
	if eventID == "" || userID == "" {
		return nil, domain.ErrInvalidInput
	}

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}

	now := s.now()
	if !now.Before(event.StartTime) {
		return nil, domain.ErrEventInPast
	}

	if opensAt := event.RSVPOpensAt(s.openDelay); now.Before(opensAt) {
		remaining := opensAt.Sub(now)
		seconds := int(remaining / time.Second)
		if remaining%time.Second > 0 {
			seconds++
		}
		return nil, &domain.TooEarlyError{SecondsRemaining: seconds}
	}

	reservation := domain.NewReservation(eventID, userID, now)
	outcome, err := s.reservationRepo.ConditionalInsert(ctx, reservation)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			// Event deleted between the read and the conditional write.
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("conditional insert: %w", err)
	}
	switch outcome {
	case domain.DuplicateRejected:
		return nil, domain.ErrAlreadyReserved
	case domain.CapacityRejected:
		return nil, domain.ErrCapacityFull
	}

	s.sendConfirmation(ctx, userID, event)

	snapshot, err := s.buildSnapshot(ctx, event)
	if err != nil {
		return nil, fmt.Errorf("snapshot after reserve: %w", err)
	}
	return snapshot, nil
}

func (s *admissionService) Cancel(ctx context.Context, eventID, userID string) (*domain.EventSnapshot, error) {
	if eventID == "" || userID == "" {
		return nil, domain.ErrInvalidInput
	}

	if err := s.reservationRepo.Delete(ctx, eventID, userID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotReserved
		}
		return nil, fmt.Errorf("delete reservation: %w", err)
	}

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	snapshot, err := s.buildSnapshot(ctx, event)
	if err != nil {
		return nil, fmt.Errorf("snapshot after cancel: %w", err)
	}
	return snapshot, nil
}

func (s *admissionService) ListReservedEvents(ctx context.Context, userID string) ([]*domain.EventSnapshot, error) {
	eventIDs, err := s.reservationRepo.ListEventIDsByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list reservations: %w", err)
	}

	now := s.now()
	snapshots := make([]*domain.EventSnapshot, 0, len(eventIDs))
	for _, id := range eventIDs {
		event, err := s.eventRepo.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				// Event deleted but reservation remains; skip.
				continue
			}
			return nil, fmt.Errorf("get event for reservation: %w", err)
		}
		if event.StartTime.Before(now) {
			continue
		}
		snapshot, err := s.buildSnapshot(ctx, event)
		if err != nil {
			return nil, err
		}
		snapshots = append(snapshots, snapshot)
	}
	sort.Slice(snapshots, func(i, j int) bool {
		return snapshots[i].Event.StartTime.Before(snapshots[j].Event.StartTime)
	})
	return snapshots, nil
}

// buildSnapshot resolves the current reservation list and attendee
// identities for display. It is shared with the event service and must not
// be used to gate admission.
func (s *admissionService) buildSnapshot(ctx context.Context, event *domain.Event) (*domain.EventSnapshot, error) {
	return buildSnapshot(ctx, event, s.reservationRepo, s.userRepo)
}

func buildSnapshot(ctx context.Context, event *domain.Event, reservationRepo domain.ReservationRepository, userRepo domain.UserRepository) (*domain.EventSnapshot, error) {
	reservations, err := reservationRepo.ListByEventID(ctx, event.ID)
	if err != nil {
		return nil, fmt.Errorf("list reservations: %w", err)
	}

	attendees := make([]*domain.Attendee, 0, len(reservations))
	for _, res := range reservations {
		user, err := userRepo.GetByID(ctx, res.UserID)
		if err != nil {
			if errors.Is(err, domain.ErrUserNotFound) {
				// User deleted but reservation remains; skip the entry.
				continue
			}
			return nil, fmt.Errorf("resolve attendee: %w", err)
		}
		attendees = append(attendees, user.Attendee())
	}

	var creator *domain.Attendee
	if event.CreatorID != "" {
		user, err := userRepo.GetByID(ctx, event.CreatorID)
		switch {
		case err == nil:
			creator = user.Attendee()
		case errors.Is(err, domain.ErrUserNotFound):
			// Creator account deleted; the snapshot just omits it.
		default:
			return nil, fmt.Errorf("resolve creator: %w", err)
		}
	}

	return &domain.EventSnapshot{
		Event:         event,
		Creator:       creator,
		AttendeeCount: len(reservations),
		Attendees:     attendees,
	}, nil
}

func (s *admissionService) sendConfirmation(ctx context.Context, userID string, event *domain.Event) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		s.logger.Warn("skipping rsvp confirmation, user lookup failed", "user_id", userID, "err", err)
		return
	}
	// Fire and forget: mail delivery never affects the admission outcome.
	go func(ev domain.Event) {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.mailer.SendRSVPConfirmation(ctx, user.Email, user.Name, &ev); err != nil {
			s.logger.Warn("rsvp confirmation failed", "to", user.Email, "event_id", ev.ID, "err", err)
		}
	}(*event)
}
