package attendance

import (
	"context"
	"time"
)

type AttendanceRepository interface {
	// Create inserts a new attendance record and returns it with generated fields populated.
	Create(ctx context.Context, newAttendance Attendance) (Attendance, error)

	// GetByID returns the record, or ErrAttendanceNotFound.
	GetByID(ctx context.Context, id string) (Attendance, error)

	// HasCheckedInBetween reports whether the employee has a check-in in [from, to).
	HasCheckedInBetween(ctx context.Context, employeeID string, from, to time.Time) (bool, error)

	// Update persists the mutable fields of a record if its version still
	// matches, and bumps the version. A stale version yields ErrConcurrentUpdate.
	Update(ctx context.Context, att *Attendance) error

	// ListOpenBefore returns records with no check-out whose check-in is before cutoff.
	ListOpenBefore(ctx context.Context, cutoff time.Time) ([]Attendance, error)

	// List returns a filtered page of records and the total count.
	List(ctx context.Context, filter AttendanceFilter) ([]Attendance, int64, error)

	// ListByEmployee returns a filtered page of one employee's records and the total count.
	ListByEmployee(ctx context.Context, employeeID string, filter MyAttendanceFilter) ([]Attendance, int64, error)

	// ListBetween returns every record with a check-in in [from, to), oldest first.
	ListBetween(ctx context.Context, from, to time.Time, employeeID *string) ([]Attendance, error)
}
