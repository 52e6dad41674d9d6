package repository

import (
	"context"
	"errors"
	"time"

	"github.com/andreypavlenko/scout/modules/calendar/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// EventRepository implements ports.EventRepository
type EventRepository struct {
	pool *pgxpool.Pool
}

// NewEventRepository creates a new event repository
func NewEventRepository(pool *pgxpool.Pool) *EventRepository {
	return &EventRepository{pool: pool}
}

const eventColumns = `id, title, start_at, end_at, attendees, type, category, stage, created_at, updated_at`

// Create creates a new calendar event
func (r *EventRepository) Create(ctx context.Context, event *model.CalendarEvent) error {
	query := `
		INSERT INTO calendar_events (` + eventColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	event.ID = uuid.New().String()
	now := time.Now().UTC()
	event.CreatedAt = now
	event.UpdatedAt = now

	_, err := r.pool.Exec(ctx, query,
		event.ID,
		event.Title,
		event.Start,
		event.End,
		event.Attendees,
		event.Type,
		event.Category,
		event.Stage,
		event.CreatedAt,
		event.UpdatedAt,
	)

	return err
}

// GetByID retrieves an event by ID
func (r *EventRepository) GetByID(ctx context.Context, id string) (*model.CalendarEvent, error) {
	query := `SELECT ` + eventColumns + ` FROM calendar_events WHERE id = $1`

	event, err := scanEvent(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrEventNotFound
		}
		return nil, err
	}

	return event, nil
}

// List retrieves events, optionally bounded to a time window.
func (r *EventRepository) List(ctx context.Context, from, to *time.Time) ([]*model.CalendarEvent, error) {
	query := `SELECT ` + eventColumns + ` FROM calendar_events WHERE 1=1`
	args := []any{}

	if from != nil {
		args = append(args, *from)
		query += ` AND end_at > $1`
	}
	if to != nil {
		args = append(args, *to)
		if from != nil {
			query += ` AND start_at < $2`
		} else {
			query += ` AND start_at < $1`
		}
	}
	query += ` ORDER BY start_at`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectEvents(rows)
}

// ListByAttendee retrieves events a user attends.
func (r *EventRepository) ListByAttendee(ctx context.Context, userID string) ([]*model.CalendarEvent, error) {
	query := `
		SELECT ` + eventColumns + `
		FROM calendar_events
		WHERE $1 = ANY(attendees)
		ORDER BY start_at
	`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectEvents(rows)
}

// Update updates an event
func (r *EventRepository) Update(ctx context.Context, event *model.CalendarEvent) error {
	query := `
		UPDATE calendar_events
		SET title = $2, start_at = $3, end_at = $4, attendees = $5,
		    type = $6, category = $7, stage = $8, updated_at = $9
		WHERE id = $1
	`

	event.UpdatedAt = time.Now().UTC()

	result, err := r.pool.Exec(ctx, query,
		event.ID,
		event.Title,
		event.Start,
		event.End,
		event.Attendees,
		event.Type,
		event.Category,
		event.Stage,
		event.UpdatedAt,
	)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return model.ErrEventNotFound
	}

	return nil
}

// Delete deletes an event
func (r *EventRepository) Delete(ctx context.Context, id string) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM calendar_events WHERE id = $1`, id)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return model.ErrEventNotFound
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(row rowScanner) (*model.CalendarEvent, error) {
	event := &model.CalendarEvent{}
	if err := row.Scan(
		&event.ID,
		&event.Title,
		&event.Start,
		&event.End,
		&event.Attendees,
		&event.Type,
		&event.Category,
		&event.Stage,
		&event.CreatedAt,
		&event.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return event, nil
}

func collectEvents(rows pgx.Rows) ([]*model.CalendarEvent, error) {
	var events []*model.CalendarEvent
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	return events, rows.Err()
}
