// Package repository defines the SQL-backed stores and the error values
// they share. These sentinel values allow higher layers such as the booking
// service to distinguish between different failure scenarios without
// knowing which database driver is in use.
package repository

import (
	"errors"
	"time"

	"github.com/go-sql-driver/mysql"
	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"
)

var (
	// ErrEventNotFound is returned when an event id does not resolve.
	ErrEventNotFound = errors.New("event not found")
	// ErrBookingNotFound is returned when a booking id does not resolve.
	ErrBookingNotFound = errors.New("booking not found")
	// ErrProfileNotFound is returned when a vendor has not saved a profile.
	ErrProfileNotFound = errors.New("vendor profile not found")
	// ErrDuplicateOffer is returned when the vendor already holds an active
	// (pending or approved) booking for the event.
	ErrDuplicateOffer = errors.New("active offer already exists for vendor and event")
	// ErrPreconditionFailed is returned by conditional updates when the row
	// no longer has the expected status.
	ErrPreconditionFailed = errors.New("precondition failed")
	// ErrEmailExists is returned when registering an address twice.
	ErrEmailExists = errors.New("email already exists")
)

const mysqlDuplicateEntry = 1062

// isDuplicateKey reports whether err is a unique constraint violation from
// either supported driver.
func isDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == mysqlDuplicateEntry
	}
	var liteErr *msqlite.Error
	if errors.As(err, &liteErr) {
		switch liteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	return false
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func toMillis(t time.Time) int64 {
	return t.UTC().UnixMilli()
}

func fromMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}

// placeholders returns "?, ?, ?" for n arguments.
func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	b := make([]byte, 0, n*3)
	for i := 0; i < n; i++ {
		if i > 0 {
			b = append(b, ", "...)
		}
		b = append(b, '?')
	}
	return string(b)
}
