package approval

import "time"

type RequestType string

const (
	TypeLeave    RequestType = "leave"
	TypeOvertime RequestType = "overtime"
	TypeTimeOff  RequestType = "time_off"
)

// ParseRequestType accepts the URL form ("time-off") as well as the stored form
func ParseRequestType(s string) (RequestType, bool) {
	switch s {
	case "leave":
		return TypeLeave, true
	case "overtime":
		return TypeOvertime, true
	case "time_off", "time-off":
		return TypeTimeOff, true
	}
	return "", false
}

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

type LeaveType string

const (
	LeaveAnnual LeaveType = "annual"
	LeaveSick   LeaveType = "sick"
	LeaveUnpaid LeaveType = "unpaid"
	LeaveOther  LeaveType = "other"
)

var validLeaveTypes = []string{string(LeaveAnnual), string(LeaveSick), string(LeaveUnpaid), string(LeaveOther)}

// Review is the approval state shared by every request kind.
// Once Status leaves pending the review is immutable.
type Review struct {
	Status          Status
	ApproverID      *string
	DecidedAt       *time.Time
	ApproverNotes   *string
	RejectionReason *string
}

type LeaveRequest struct {
	ID         string
	EmployeeID string
	LeaveType  LeaveType
	StartDate  time.Time
	EndDate    time.Time
	Reason     string
	Review
	Version   int
	CreatedAt time.Time
	UpdatedAt time.Time

	// DTO
	EmployeeName *string
}

// OvertimeRequest asks for hours worked beyond the standard day to be recognised.
// ToilHoursAwarded is set on approval and credited to the TOIL balance.
type OvertimeRequest struct {
	ID               string
	EmployeeID       string
	WorkDate         time.Time
	Hours            float64
	Reason           string
	ToilHoursAwarded *float64
	Review
	Version   int
	CreatedAt time.Time
	UpdatedAt time.Time

	// DTO
	EmployeeName *string
}

// TimeOffRequest redeems TOIL hours; approval debits the balance.
type TimeOffRequest struct {
	ID         string
	EmployeeID string
	Date       time.Time
	Hours      float64
	Reason     string
	Review
	Version   int
	CreatedAt time.Time
	UpdatedAt time.Time

	// DTO
	EmployeeName *string
}

// RequestSummary is a uniform listing row across request kinds
type RequestSummary struct {
	ID           string
	Type         RequestType
	EmployeeID   string
	EmployeeName *string
	Status       Status
	StartDate    time.Time
	EndDate      time.Time
	Hours        *float64
	Reason       string
	CreatedAt    time.Time
}

// ToilBalance is an employee's time-off-in-lieu account, in hours
type ToilBalance struct {
	EmployeeID  string
	EarnedHours float64
	UsedHours   float64
	UpdatedAt   time.Time
}

// Available returns the hours that can still be redeemed
func (b ToilBalance) Available() float64 {
	return b.EarnedHours - b.UsedHours
}
