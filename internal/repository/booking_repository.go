package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/festopiya/stall-booking/internal/model"
)

// BookingRepo persists booking offers. It owns two guarantees the booking
// service relies on: the unique index on active offers per (vendor, event)
// and the conditional status update that only applies while the row still
// holds the expected status.
type BookingRepo struct {
	db *sql.DB
}

// NewBookingRepo returns a new BookingRepo bound to the given database.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

const bookingColumns = `b.id, b.event_id, b.vendor_id, b.agreed_fee_paise, b.total_amount_paise,
	b.commission_paise, b.status, b.created_at_ms, b.decided_at_ms`

// InsertBooking stores a new offer. A second active offer for the same
// vendor and event violates the unique index and yields ErrDuplicateOffer.
func (r *BookingRepo) InsertBooking(ctx context.Context, b model.Booking) (model.Booking, error) {
	const q = `INSERT INTO bookings (id, event_id, vendor_id, agreed_fee_paise, total_amount_paise,
	               commission_paise, status, created_at_ms)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, q,
		b.ID, b.EventID, b.VendorID, b.AgreedFeePaise, b.TotalAmountPaise,
		b.CommissionPaise, string(b.Status), toMillis(b.CreatedAt),
	)
	if err != nil {
		if isDuplicateKey(err) {
			return model.Booking{}, ErrDuplicateOffer
		}
		return model.Booking{}, err
	}
	// Round-trip through the millisecond column so the caller sees exactly
	// what a later read would return.
	b.CreatedAt = fromMillis(toMillis(b.CreatedAt))
	return b, nil
}

// GetBooking fetches one booking by id or returns ErrBookingNotFound.
func (r *BookingRepo) GetBooking(ctx context.Context, id string) (model.Booking, error) {
	const q = `SELECT ` + bookingColumns + ` FROM bookings b WHERE b.id = ?`
	b, err := scanBooking(r.db.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Booking{}, ErrBookingNotFound
	}
	return b, err
}

// ListBookingsByVendor returns every booking placed by vendorID, newest first.
func (r *BookingRepo) ListBookingsByVendor(ctx context.Context, vendorID uint64) ([]model.Booking, error) {
	const q = `SELECT ` + bookingColumns + ` FROM bookings b
	           WHERE b.vendor_id = ?
	           ORDER BY b.created_at_ms DESC, b.id`
	return r.list(ctx, q, vendorID)
}

// ListBookingsForOrganizerEvents returns the bookings placed on events owned
// by organizerID, newest first, plus every booking whose event row is
// missing. Those orphans cannot be attributed to any organizer; they are
// returned so the access filter flags them instead of the join hiding them.
func (r *BookingRepo) ListBookingsForOrganizerEvents(ctx context.Context, organizerID uint64) ([]model.Booking, error) {
	const q = `SELECT ` + bookingColumns + ` FROM bookings b
	           LEFT JOIN events e ON e.id = b.event_id
	           WHERE e.organizer_id = ? OR e.id IS NULL
	           ORDER BY b.created_at_ms DESC, b.id`
	return r.list(ctx, q, organizerID)
}

// ActiveEventIDsForVendor returns the ids of events on which vendorID holds a
// pending or approved offer.
func (r *BookingRepo) ActiveEventIDsForVendor(ctx context.Context, vendorID uint64) (map[string]bool, error) {
	const q = `SELECT DISTINCT event_id FROM bookings WHERE vendor_id = ? AND status <> ?`
	rows, err := r.db.QueryContext(ctx, q, vendorID, string(model.StatusDeclined))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := map[string]bool{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out[id] = true
	}
	return out, rows.Err()
}

// UpdateBookingStatus moves a booking from expected to next in one
// conditional statement. When the row exists but no longer holds expected,
// ErrPreconditionFailed is returned and nothing changes, so two concurrent
// decisions on the same booking can never both succeed.
func (r *BookingRepo) UpdateBookingStatus(ctx context.Context, id string, expected, next model.Status, at time.Time) (model.Booking, error) {
	const q = `UPDATE bookings SET status = ?, decided_at_ms = ? WHERE id = ? AND status = ?`
	res, err := r.db.ExecContext(ctx, q, string(next), toMillis(at), id, string(expected))
	if err != nil {
		return model.Booking{}, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return model.Booking{}, err
	}
	if n == 0 {
		if _, err := r.GetBooking(ctx, id); err != nil {
			return model.Booking{}, err
		}
		return model.Booking{}, ErrPreconditionFailed
	}
	return r.GetBooking(ctx, id)
}

func (r *BookingRepo) list(ctx context.Context, q string, args ...any) ([]model.Booking, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Booking{}
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func scanBooking(s rowScanner) (model.Booking, error) {
	var (
		b         model.Booking
		status    string
		total     sql.NullInt64
		createdMs int64
		decidedMs sql.NullInt64
	)
	if err := s.Scan(&b.ID, &b.EventID, &b.VendorID, &b.AgreedFeePaise, &total,
		&b.CommissionPaise, &status, &createdMs, &decidedMs); err != nil {
		return model.Booking{}, err
	}
	b.Status = model.Status(status)
	b.TotalAmountPaise = total.Int64
	b.TotalMissing = !total.Valid
	b.CreatedAt = fromMillis(createdMs)
	if decidedMs.Valid {
		t := fromMillis(decidedMs.Int64)
		b.DecidedAt = &t
	}
	return b, nil
}
