package attendance

import (
	"time"
)

type Status string

const (
	StatusPresent    Status = "present"
	StatusAbsent     Status = "absent"
	StatusLate       Status = "late"
	StatusRemote     Status = "remote"
	StatusBreak      Status = "break"
	StatusHoliday    Status = "holiday"
	StatusIncomplete Status = "incomplete"
	StatusCompleted  Status = "completed"
)

var validStatuses = []string{
	string(StatusPresent), string(StatusAbsent), string(StatusLate), string(StatusRemote),
	string(StatusBreak), string(StatusHoliday), string(StatusIncomplete), string(StatusCompleted),
}

// IsValid reports whether s is a known attendance status
func (s Status) IsValid() bool {
	for _, v := range validStatuses {
		if string(s) == v {
			return true
		}
	}
	return false
}

type Attendance struct {
	ID               string
	EmployeeID       string
	CheckIn          *time.Time
	CheckOut         *time.Time
	Latitude         *float64
	Longitude        *float64
	LocationAccuracy *float64
	Location         *string
	Notes            *string
	WorkingHours     float64
	OvertimeHours    float64
	IsToilEligible   bool
	ToilHoursEarned  float64
	IsWeekend        bool
	IsHoliday        bool
	Status           Status
	IsAutoCheckout   bool
	AdminNotes       *string
	Version          int
	CreatedAt        time.Time
	UpdatedAt        time.Time

	// DTO
	EmployeeName *string
}

// IsOpen reports whether the record has a check-in but no check-out yet
func (a *Attendance) IsOpen() bool {
	return a.CheckIn != nil && a.CheckOut == nil
}

// ApplySummary copies ledger output onto the record
func (a *Attendance) ApplySummary(s WorkSummary) {
	a.WorkingHours = s.WorkingHours
	a.OvertimeHours = s.OvertimeHours
	a.IsWeekend = s.IsWeekend
	a.IsToilEligible = s.ToilEligible
	a.ToilHoursEarned = s.ToilHoursEarned
}

// Summary returns the ledger fields currently stored on the record
func (a *Attendance) Summary() WorkSummary {
	return WorkSummary{
		WorkingHours:    a.WorkingHours,
		OvertimeHours:   a.OvertimeHours,
		IsWeekend:       a.IsWeekend,
		ToilEligible:    a.IsToilEligible,
		ToilHoursEarned: a.ToilHoursEarned,
	}
}
