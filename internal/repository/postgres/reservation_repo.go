package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"eventrsvp/internal/domain"
)

type reservationRepository struct {
	DB *sql.DB
}

func NewReservationRepository(db *sql.DB) domain.ReservationRepository {
	return &reservationRepository{
		DB: db,
	}
}

// ConditionalInsert inserts a reservation only if the user holds no seat and
// the event is under capacity, as one atomic unit. The row lock taken on the
// event serializes racing inserts for the same event, so the count is
// evaluated against the same snapshot the insert commits into. The
// (event_id, user_id) unique constraint backs the duplicate check.
func (r *reservationRepository) ConditionalInsert(ctx context.Context, res *domain.Reservation) (domain.InsertOutcome, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, storeErr("begin reservation tx", err)
	}
	defer tx.Rollback()

	var capacity int
	err = tx.QueryRowContext(ctx,
		`SELECT capacity FROM events WHERE id = $1 FOR UPDATE`,
		res.EventID,
	).Scan(&capacity)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, domain.ErrNotFound
		}
		return 0, storeErr("lock event row", err)
	}

	var exists bool
	err = tx.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM reservations WHERE event_id = $1 AND user_id = $2)`,
		res.EventID, res.UserID,
	).Scan(&exists)
	if err != nil {
		return 0, storeErr("check existing reservation", err)
	}
	if exists {
		return domain.DuplicateRejected, nil
	}

	var count int
	err = tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM reservations WHERE event_id = $1`,
		res.EventID,
	).Scan(&count)
	if err != nil {
		return 0, storeErr("count reservations", err)
	}
	if count >= capacity {
		return domain.CapacityRejected, nil
	}

	err = tx.QueryRowContext(ctx,
		`INSERT INTO reservations (event_id, user_id, created_at) VALUES ($1, $2, $3) RETURNING id`,
		res.EventID, res.UserID, res.CreatedAt,
	).Scan(&res.ID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return domain.DuplicateRejected, nil
		}
		return 0, storeErr("insert reservation", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, storeErr("commit reservation tx", err)
	}
	return domain.Inserted, nil
}

func (r *reservationRepository) Delete(ctx context.Context, eventID, userID string) error {
	query := `DELETE FROM reservations WHERE event_id = $1 AND user_id = $2`
	result, err := r.DB.ExecContext(ctx, query, eventID, userID)
	if err != nil {
		return storeErr("delete reservation", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *reservationRepository) CountByEventID(ctx context.Context, eventID string) (int, error) {
	var count int
	err := r.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM reservations WHERE event_id = $1`,
		eventID,
	).Scan(&count)
	if err != nil {
		return 0, storeErr("count reservations", err)
	}
	return count, nil
}

func (r *reservationRepository) ListByEventID(ctx context.Context, eventID string) ([]*domain.Reservation, error) {
	query := `
		SELECT id, event_id, user_id, created_at
		FROM reservations
		WHERE event_id = $1
		ORDER BY created_at
	`
	rows, err := r.DB.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, storeErr("list reservations", err)
	}
	defer rows.Close()

	reservations := make([]*domain.Reservation, 0)
	for rows.Next() {
		res := &domain.Reservation{}
		if err := rows.Scan(&res.ID, &res.EventID, &res.UserID, &res.CreatedAt); err != nil {
			return nil, storeErr("scan reservation", err)
		}
		reservations = append(reservations, res)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("list reservations", err)
	}
	return reservations, nil
}

func (r *reservationRepository) ListEventIDsByUserID(ctx context.Context, userID string) ([]string, error) {
	query := `
		SELECT event_id
		FROM reservations
		WHERE user_id = $1
		ORDER BY created_at DESC
	`
	rows, err := r.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, storeErr("list reservations by user", err)
	}
	defer rows.Close()

	eventIDs := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, storeErr("scan event id", err)
		}
		eventIDs = append(eventIDs, id)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("list reservations by user", err)
	}
	return eventIDs, nil
}
