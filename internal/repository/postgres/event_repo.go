package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"eventrsvp/internal/domain"
)

type eventRepository struct {
	DB *sql.DB
}

func NewEventRepository(db *sql.DB) domain.EventRepository {
	return &eventRepository{
		DB: db,
	}
}

const eventColumns = `id, title, description, location, capacity, start_time, rsvp_open_at, creator_id, created_at, updated_at`

func scanEvent(row interface{ Scan(...any) error }) (*domain.Event, error) {
	e := &domain.Event{}
	var openAt sql.NullTime
	err := row.Scan(
		&e.ID, &e.Title, &e.Description, &e.Location, &e.Capacity,
		&e.StartTime, &openAt, &e.CreatorID, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if openAt.Valid {
		e.RSVPOpenAt = &openAt.Time
	}
	return e, nil
}

func (r *eventRepository) Create(ctx context.Context, e *domain.Event) error {
	query := `
		INSERT INTO events (title, description, location, capacity, start_time, rsvp_open_at, creator_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`
	var openAt sql.NullTime
	if e.RSVPOpenAt != nil {
		openAt = sql.NullTime{Time: *e.RSVPOpenAt, Valid: true}
	}
	err := r.DB.QueryRowContext(ctx, query,
		e.Title, e.Description, e.Location, e.Capacity, e.StartTime,
		openAt, e.CreatorID, e.CreatedAt, e.UpdatedAt,
	).Scan(&e.ID)
	if err != nil {
		return storeErr("create event", err)
	}
	return nil
}

func (r *eventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE id = $1`
	e, err := scanEvent(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, storeErr("get event", err)
	}
	return e, nil
}

func (r *eventRepository) ListUpcoming(ctx context.Context, after time.Time, filter domain.EventFilter) ([]*domain.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE start_time >= $1`
	args := []any{after}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		n := len(args)
		query += fmt.Sprintf(` AND (title ILIKE $%d OR description ILIKE $%d OR location ILIKE $%d)`, n, n, n)
	}
	if filter.Day != nil {
		day := *filter.Day
		args = append(args, day, day.AddDate(0, 0, 1))
		query += fmt.Sprintf(` AND start_time >= $%d AND start_time < $%d`, len(args)-1, len(args))
	}
	query += ` ORDER BY start_time`

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storeErr("list upcoming events", err)
	}
	defer rows.Close()
	return collectEvents(rows)
}

func (r *eventRepository) ListByCreatorID(ctx context.Context, creatorID string) ([]*domain.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE creator_id = $1 ORDER BY start_time`
	rows, err := r.DB.QueryContext(ctx, query, creatorID)
	if err != nil {
		return nil, storeErr("list events by creator", err)
	}
	defer rows.Close()
	return collectEvents(rows)
}

func collectEvents(rows *sql.Rows) ([]*domain.Event, error) {
	events := make([]*domain.Event, 0)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, storeErr("scan event", err)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("iterate events", err)
	}
	return events, nil
}

// Update applies the mutable fields inside one transaction. The row lock on
// the event serializes the capacity floor against racing reservation inserts,
// so the count it checks is the count the new capacity commits against.
func (r *eventRepository) Update(ctx context.Context, id string, upd *domain.EventUpdate) (*domain.Event, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, storeErr("begin event update tx", err)
	}
	defer tx.Rollback()

	var locked string
	err = tx.QueryRowContext(ctx,
		`SELECT id FROM events WHERE id = $1 FOR UPDATE`,
		id,
	).Scan(&locked)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, storeErr("lock event row", err)
	}

	var count int
	err = tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM reservations WHERE event_id = $1`,
		id,
	).Scan(&count)
	if err != nil {
		return nil, storeErr("count reservations", err)
	}
	if upd.Capacity < count {
		return nil, &domain.CapacityBelowAttendeesError{Attendees: count}
	}

	query := `
		UPDATE events
		SET title = $1, description = $2, location = $3, capacity = $4, start_time = $5, updated_at = NOW()
		WHERE id = $6
		RETURNING ` + eventColumns
	e, err := scanEvent(tx.QueryRowContext(ctx, query,
		upd.Title, upd.Description, upd.Location, upd.Capacity, upd.StartTime, id,
	))
	if err != nil {
		return nil, storeErr("update event", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, storeErr("commit event update tx", err)
	}
	return e, nil
}

func (r *eventRepository) Delete(ctx context.Context, id string) error {
	// Reservations are removed by the ON DELETE CASCADE on reservations.event_id.
	result, err := r.DB.ExecContext(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return storeErr("delete event", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}
