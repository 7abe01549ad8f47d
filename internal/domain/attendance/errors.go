package attendance

import "errors"

// Attendance domain errors
var (
	// Check-in / check-out errors
	ErrAlreadyCheckedIn  = errors.New("you have already checked in today")
	ErrAlreadyCheckedOut = errors.New("you have already checked out")
	ErrNotCheckedIn      = errors.New("attendance has no check-in time")

	// Location errors
	ErrOutsideAllowedRadius = errors.New("you are outside the allowed radius")

	// General errors
	ErrAttendanceNotFound  = errors.New("attendance record not found")
	ErrAttendanceForbidden = errors.New("not allowed to access this attendance record")
	ErrConcurrentUpdate    = errors.New("attendance record was modified concurrently")
)
