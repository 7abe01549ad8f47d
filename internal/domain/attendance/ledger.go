package attendance

import (
	"math"
	"time"
)

// StandardWorkingHours is the length of a regular working day; hours beyond it are overtime.
const StandardWorkingHours = 8.0

// WorkSummary holds the metrics derived from one check-in/check-out pair.
type WorkSummary struct {
	WorkingHours    float64
	OvertimeHours   float64
	IsWeekend       bool
	ToilEligible    bool
	ToilHoursEarned float64
}

// ComputeWorkSummary derives working time, overtime and TOIL from a session.
// Weekend detection uses the weekday of checkIn in checkIn's own location, so
// callers pass times already converted to the company timezone. A checkOut
// before checkIn yields zero hours.
func ComputeWorkSummary(checkIn, checkOut time.Time) WorkSummary {
	workingHours := round2(math.Max(0, checkOut.Sub(checkIn).Hours()))
	overtimeHours := round2(math.Max(0, workingHours-StandardWorkingHours))
	weekend := IsWeekend(checkIn)

	earned := overtimeHours
	if weekend {
		earned = math.Max(overtimeHours, workingHours)
	}

	return WorkSummary{
		WorkingHours:    workingHours,
		OvertimeHours:   overtimeHours,
		IsWeekend:       weekend,
		ToilEligible:    overtimeHours > 0 || weekend,
		ToilHoursEarned: round2(earned),
	}
}

// IsWeekend reports whether t falls on Saturday or Sunday
func IsWeekend(t time.Time) bool {
	day := t.Weekday()
	return day == time.Saturday || day == time.Sunday
}

// DayBounds returns the start of t's calendar day and the start of the next one, in t's location
func DayBounds(t time.Time) (start, end time.Time) {
	start = time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return start, start.AddDate(0, 0, 1)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
