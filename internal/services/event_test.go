package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"eventrsvp/internal/domain"
)

func newTestEventService(events map[string]*domain.Event, now time.Time) (*eventService, *fakeReservationRepo) {
	eventRepo := &fakeEventRepo{events: events}
	reservationRepo := newFakeReservationRepo(eventRepo)
	svc := &eventService{
		eventRepo:       eventRepo,
		reservationRepo: reservationRepo,
		userRepo:        &fakeUserRepo{users: map[string]*domain.User{}},
		now:             func() time.Time { return now },
	}
	return svc, reservationRepo
}

func TestEventService_Create_Validation(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		event   *domain.Event
		wantErr error
	}{
		{
			name:    "missing title",
			event:   domain.NewEvent("  ", "desc", "loc", 10, now.Add(time.Hour), nil, "u1", now),
			wantErr: domain.ErrInvalidInput,
		},
		{
			name:    "zero capacity",
			event:   domain.NewEvent("Party", "desc", "loc", 0, now.Add(time.Hour), nil, "u1", now),
			wantErr: domain.ErrInvalidInput,
		},
		{
			name:    "start time in the past",
			event:   domain.NewEvent("Party", "desc", "loc", 10, now.Add(-time.Hour), nil, "u1", now),
			wantErr: domain.ErrInvalidInput,
		},
		{
			name:    "missing creator",
			event:   domain.NewEvent("Party", "desc", "loc", 10, now.Add(time.Hour), nil, "", now),
			wantErr: domain.ErrInvalidInput,
		},
		{
			name:  "valid event",
			event: domain.NewEvent("Party", "desc", "loc", 10, now.Add(time.Hour), nil, "u1", now),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := newTestEventService(map[string]*domain.Event{}, now)
			snapshot, err := svc.Create(context.Background(), tt.event)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if snapshot.AttendeeCount != 0 || len(snapshot.Attendees) != 0 {
				t.Fatalf("new event should have no attendees, got %+v", snapshot)
			}
		})
	}
}

func TestEventService_Update_Authorization(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	event := openEvent("e1", 5, now)
	event.CreatorID = "owner"
	svc, _ := newTestEventService(map[string]*domain.Event{"e1": event}, now)

	upd := &domain.EventUpdate{Title: "New", Capacity: 5, StartTime: now.Add(time.Hour)}
	if _, err := svc.Update(context.Background(), "e1", "intruder", upd); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if _, err := svc.Update(context.Background(), "missing", "owner", upd); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestEventService_Update_CapacityFloor(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	event := openEvent("e1", 5, now)
	event.CreatorID = "owner"
	svc, reservationRepo := newTestEventService(map[string]*domain.Event{"e1": event}, now)

	reservationRepo.byEvent["e1"] = map[string]*domain.Reservation{
		"u1": {ID: "r1", EventID: "e1", UserID: "u1"},
		"u2": {ID: "r2", EventID: "e1", UserID: "u2"},
		"u3": {ID: "r3", EventID: "e1", UserID: "u3"},
	}

	upd := &domain.EventUpdate{Title: "New", Capacity: 2, StartTime: now.Add(time.Hour)}
	_, err := svc.Update(context.Background(), "e1", "owner", upd)
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput when capacity drops below attendees, got %v", err)
	}
}

func TestEventService_Update_CapacityFloorRacesAdmission(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	event := openEvent("e1", 2, now)
	event.CreatorID = "owner"
	svc, reservationRepo := newTestEventService(map[string]*domain.Event{"e1": event}, now)
	admission := &admissionService{
		eventRepo:       svc.eventRepo,
		reservationRepo: svc.reservationRepo,
		userRepo:        svc.userRepo,
		mailer:          &fakeMailer{},
		logger:          slog.New(slog.NewTextHandler(io.Discard, nil)),
		openDelay:       60 * time.Second,
		now:             func() time.Time { return now },
	}
	ctx := context.Background()

	// One of the two seats is already taken.
	if _, err := admission.TryReserve(ctx, "e1", "u1"); err != nil {
		t.Fatalf("seed reserve failed: %v", err)
	}

	// A second reservation races a capacity cut to 1. Whichever commits
	// first, the store must never end up with more attendees than capacity.
	upd := &domain.EventUpdate{Title: "Event e1", Capacity: 1, StartTime: now.Add(2 * time.Hour)}
	var wg sync.WaitGroup
	var reserveErr, updateErr error
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, reserveErr = admission.TryReserve(ctx, "e1", "u2")
	}()
	go func() {
		defer wg.Done()
		_, updateErr = svc.Update(ctx, "e1", "owner", upd)
	}()
	wg.Wait()

	if reserveErr == nil && updateErr == nil {
		t.Fatal("both the reservation and the capacity cut succeeded")
	}
	final, err := svc.eventRepo.GetByID(ctx, "e1")
	if err != nil {
		t.Fatalf("get event failed: %v", err)
	}
	count, _ := reservationRepo.CountByEventID(ctx, "e1")
	if count > final.Capacity {
		t.Fatalf("invariant broken: %d confirmed attendees > capacity %d", count, final.Capacity)
	}
}

func TestEventService_Get_ResolvesCreator(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	ctx := context.Background()

	event := openEvent("e1", 5, now)
	event.CreatorID = "owner"
	orphan := openEvent("e2", 5, now)
	orphan.CreatorID = "ghost"

	eventRepo := &fakeEventRepo{events: map[string]*domain.Event{"e1": event, "e2": orphan}}
	reservationRepo := newFakeReservationRepo(eventRepo)
	svc := &eventService{
		eventRepo:       eventRepo,
		reservationRepo: reservationRepo,
		userRepo:        &fakeUserRepo{users: usersFor("owner")},
		now:             func() time.Time { return now },
	}

	snapshot, err := svc.Get(ctx, "e1")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if snapshot.Creator == nil || snapshot.Creator.ID != "owner" {
		t.Fatalf("expected creator resolved on snapshot, got %+v", snapshot.Creator)
	}

	// A deleted creator account is omitted rather than failing the read.
	snapshot, err = svc.Get(ctx, "e2")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if snapshot.Creator != nil {
		t.Fatalf("expected no creator for deleted account, got %+v", snapshot.Creator)
	}
}

func TestEventService_Delete_Authorization(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	event := openEvent("e1", 5, now)
	event.CreatorID = "owner"
	svc, _ := newTestEventService(map[string]*domain.Event{"e1": event}, now)

	if err := svc.Delete(context.Background(), "e1", "intruder"); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if err := svc.Delete(context.Background(), "e1", "owner"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
