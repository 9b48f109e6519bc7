package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"eventreg/internal/domain"
)

type eventLocker struct {
	DB *sql.DB
}

// NewEventLocker returns a domain.EventLocker that serializes registrations per event
// with a row lock on the event (SELECT ... FOR UPDATE) held until commit or rollback.
// Transactions for different events lock different rows and do not block each other.
func NewEventLocker(db *sql.DB) domain.EventLocker {
	return &eventLocker{DB: db}
}

func (l *eventLocker) WithEventLock(ctx context.Context, eventID string, fn func(ctx context.Context, tx domain.RegistrationTx) error) error {
	tx, err := l.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", mapError(err))
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	lockQuery := `
		SELECT id, title, description, location, start_time, end_time, capacity, created_by, created_at
		FROM events
		WHERE id = $1
		FOR UPDATE
	`
	e := &domain.Event{}
	err = tx.QueryRowContext(ctx, lockQuery, eventID).Scan(
		&e.ID, &e.Title, &e.Description, &e.Location, &e.StartTime, &e.EndTime,
		&e.Capacity, &e.CreatedBy, &e.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("lock event row: %w", mapError(err))
	}

	err = tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM registrations WHERE event_id = $1`, eventID).
		Scan(&e.RegistrationCount)
	if err != nil {
		return fmt.Errorf("count registrations: %w", mapError(err))
	}

	if err = fn(ctx, &registrationTx{tx: tx, event: e}); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", mapError(err))
	}
	committed = true
	return nil
}

type registrationTx struct {
	tx    *sql.Tx
	event *domain.Event
}

func (t *registrationTx) Event() *domain.Event {
	return t.event
}

func (t *registrationTx) InsertIfAbsent(ctx context.Context, reg *domain.Registration) (bool, error) {
	query := `
		INSERT INTO registrations (user_id, event_id, registered_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, event_id) DO NOTHING
		RETURNING id
	`
	err := t.tx.QueryRowContext(ctx, query, reg.UserID, reg.EventID, reg.RegisteredAt).Scan(&reg.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("insert registration: %w", mapError(err))
	}
	return true, nil
}
