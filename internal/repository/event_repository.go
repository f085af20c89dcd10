package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/festopiya/stall-booking/internal/model"
)

// EventRepo is the SQL-backed event catalog. Events are written only by
// their organizer; the booking side reads them.
type EventRepo struct {
	db *sql.DB
}

// NewEventRepo constructs an EventRepo with the provided DB handle.
func NewEventRepo(db *sql.DB) *EventRepo {
	return &EventRepo{db: db}
}

const eventColumns = `id, organizer_id, event_name, event_date_ms, base_stall_fee_paise,
	expected_footfall, contact_phone, created_at_ms`

// Create inserts a new event. The caller assigns ID and CreatedAt.
func (r *EventRepo) Create(ctx context.Context, e *model.Event) error {
	const q = `INSERT INTO events (` + eventColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	var footfall sql.NullInt64
	if e.ExpectedFootfall != nil {
		footfall = sql.NullInt64{Int64: *e.ExpectedFootfall, Valid: true}
	}
	_, err := r.db.ExecContext(ctx, q,
		e.ID, e.OrganizerID, e.Name, toMillis(e.Date), e.BaseStallFeePaise,
		footfall, e.ContactPhone, toMillis(e.CreatedAt),
	)
	return err
}

// GetEvent fetches an event by id. It returns ErrEventNotFound if no row
// matches.
func (r *EventRepo) GetEvent(ctx context.Context, id string) (model.Event, error) {
	const q = `SELECT ` + eventColumns + ` FROM events WHERE id = ?`
	e, err := scanEvent(r.db.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Event{}, ErrEventNotFound
	}
	return e, err
}

// ListEvents returns all events, newest first. A non-empty query restricts
// the result to events whose name contains it, case-insensitively.
func (r *EventRepo) ListEvents(ctx context.Context, query string) ([]model.Event, error) {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return r.list(ctx, `SELECT `+eventColumns+` FROM events ORDER BY created_at_ms DESC, id`)
	}
	return r.list(ctx,
		`SELECT `+eventColumns+` FROM events WHERE LOWER(event_name) LIKE ? ORDER BY created_at_ms DESC, id`,
		"%"+query+"%")
}

// ListEventsByOrganizer returns the events owned by organizerID, newest first.
func (r *EventRepo) ListEventsByOrganizer(ctx context.Context, organizerID uint64) ([]model.Event, error) {
	return r.list(ctx,
		`SELECT `+eventColumns+` FROM events WHERE organizer_id = ? ORDER BY created_at_ms DESC, id`,
		organizerID)
}

// GetEvents resolves a set of ids in one round trip. Ids that do not exist
// are simply absent from the returned map.
func (r *EventRepo) GetEvents(ctx context.Context, ids []string) (map[string]model.Event, error) {
	out := make(map[string]model.Event, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	events, err := r.list(ctx,
		`SELECT `+eventColumns+` FROM events WHERE id IN (`+placeholders(len(ids))+`)`, args...)
	if err != nil {
		return nil, err
	}
	for _, e := range events {
		out[e.ID] = e
	}
	return out, nil
}

func (r *EventRepo) list(ctx context.Context, q string, args ...any) ([]model.Event, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Event{}
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func scanEvent(s rowScanner) (model.Event, error) {
	var (
		e                 model.Event
		dateMs, createdMs int64
		footfall          sql.NullInt64
	)
	if err := s.Scan(&e.ID, &e.OrganizerID, &e.Name, &dateMs, &e.BaseStallFeePaise,
		&footfall, &e.ContactPhone, &createdMs); err != nil {
		return model.Event{}, err
	}
	e.Date = fromMillis(dateMs)
	e.CreatedAt = fromMillis(createdMs)
	if footfall.Valid {
		v := footfall.Int64
		e.ExpectedFootfall = &v
	}
	return e, nil
}
