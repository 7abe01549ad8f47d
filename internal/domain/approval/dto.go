package approval

import (
	"strings"
	"time"

	"github.com/cmlabs-hris/hris-timekeeping/internal/pkg/validator"
)

// DateRange is an inclusive range of calendar dates
type DateRange struct {
	From time.Time
	To   time.Time
}

type CreateLeaveRequest struct {
	LeaveType string `json:"leave_type"`
	StartDate string `json:"start_date"` // YYYY-MM-DD
	EndDate   string `json:"end_date"`   // YYYY-MM-DD
	Reason    string `json:"reason"`

	Start time.Time `json:"-"`
	End   time.Time `json:"-"`
}

func (r *CreateLeaveRequest) Validate() error {
	var errs validator.ValidationErrors

	if !validator.IsInSlice(r.LeaveType, validLeaveTypes) {
		errs = append(errs, validator.ValidationError{
			Field:   "leave_type",
			Message: "leave_type must be one of: " + strings.Join(validLeaveTypes, ", "),
		})
	}

	start, okStart := validator.IsValidDate(r.StartDate)
	if !okStart {
		errs = append(errs, validator.ValidationError{
			Field:   "start_date",
			Message: "start_date must be in YYYY-MM-DD format",
		})
	}
	end, okEnd := validator.IsValidDate(r.EndDate)
	if !okEnd {
		errs = append(errs, validator.ValidationError{
			Field:   "end_date",
			Message: "end_date must be in YYYY-MM-DD format",
		})
	}
	if okStart && okEnd && end.Before(start) {
		errs = append(errs, validator.ValidationError{
			Field:   "end_date",
			Message: "end_date must not be before start_date",
		})
	}
	errs = append(errs, validateReason(r.Reason)...)

	if len(errs) > 0 {
		return errs
	}
	r.Start, r.End = start, end
	return nil
}

type CreateOvertimeRequest struct {
	WorkDate string  `json:"work_date"` // YYYY-MM-DD
	Hours    float64 `json:"hours"`
	Reason   string  `json:"reason"`

	Date time.Time `json:"-"`
}

func (r *CreateOvertimeRequest) Validate() error {
	var errs validator.ValidationErrors

	date, ok := validator.IsValidDate(r.WorkDate)
	if !ok {
		errs = append(errs, validator.ValidationError{
			Field:   "work_date",
			Message: "work_date must be in YYYY-MM-DD format",
		})
	}
	if !validator.IsValidHours(r.Hours) {
		errs = append(errs, validator.ValidationError{
			Field:   "hours",
			Message: "hours must be greater than 0 and at most 24",
		})
	}
	errs = append(errs, validateReason(r.Reason)...)

	if len(errs) > 0 {
		return errs
	}
	r.Date = date
	return nil
}

type CreateTimeOffRequest struct {
	DateStr string  `json:"date"` // YYYY-MM-DD
	Hours   float64 `json:"hours"`
	Reason  string  `json:"reason"`

	Date time.Time `json:"-"`
}

func (r *CreateTimeOffRequest) Validate() error {
	var errs validator.ValidationErrors

	date, ok := validator.IsValidDate(r.DateStr)
	if !ok {
		errs = append(errs, validator.ValidationError{
			Field:   "date",
			Message: "date must be in YYYY-MM-DD format",
		})
	}
	if !validator.IsValidHours(r.Hours) {
		errs = append(errs, validator.ValidationError{
			Field:   "hours",
			Message: "hours must be greater than 0 and at most 24",
		})
	}
	errs = append(errs, validateReason(r.Reason)...)

	if len(errs) > 0 {
		return errs
	}
	r.Date = date
	return nil
}

type ApproveRequest struct {
	Type             RequestType `json:"-"`
	ID               string      `json:"-"`
	Notes            *string     `json:"notes,omitempty"`
	ToilHoursAwarded *float64    `json:"toil_hours_awarded,omitempty"`
}

func (r *ApproveRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.ID) {
		errs = append(errs, validator.ValidationError{Field: "id", Message: "id is required"})
	}
	if r.ToilHoursAwarded != nil {
		if r.Type != TypeOvertime {
			errs = append(errs, validator.ValidationError{
				Field:   "toil_hours_awarded",
				Message: "toil_hours_awarded only applies to overtime requests",
			})
		} else if *r.ToilHoursAwarded < 0 || *r.ToilHoursAwarded > 24 {
			errs = append(errs, validator.ValidationError{
				Field:   "toil_hours_awarded",
				Message: "toil_hours_awarded must be between 0 and 24",
			})
		}
	}
	if r.Notes != nil && !validator.MaxLength(*r.Notes, 1000) {
		errs = append(errs, validator.ValidationError{Field: "notes", Message: "notes must not exceed 1000 characters"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type RejectRequest struct {
	Type   RequestType `json:"-"`
	ID     string      `json:"-"`
	Reason string      `json:"reason"`
}

func (r *RejectRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.ID) {
		errs = append(errs, validator.ValidationError{Field: "id", Message: "id is required"})
	}
	if validator.IsEmpty(r.Reason) {
		errs = append(errs, validator.ValidationError{Field: "reason", Message: "reason is required when rejecting a request"})
	} else if !validator.MaxLength(r.Reason, 1000) {
		errs = append(errs, validator.ValidationError{Field: "reason", Message: "reason must not exceed 1000 characters"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type RequestFilter struct {
	EmployeeID *string `json:"employee_id,omitempty"`
	Type       *string `json:"type,omitempty"`
	Status     *string `json:"status,omitempty"`

	// Pagination
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

func (f *RequestFilter) Validate() error {
	var errs validator.ValidationErrors

	if f.Page < 0 {
		errs = append(errs, validator.ValidationError{Field: "page", Message: "page must be a positive number"})
	}
	if f.Page == 0 {
		f.Page = 1
	}
	if f.Limit < 0 || f.Limit > 100 {
		errs = append(errs, validator.ValidationError{Field: "limit", Message: "limit must be between 1 and 100"})
	}
	if f.Limit == 0 {
		f.Limit = 20
	}
	if f.Type != nil && *f.Type != "" {
		t, ok := ParseRequestType(*f.Type)
		if !ok {
			errs = append(errs, validator.ValidationError{Field: "type", Message: "type must be one of: leave, overtime, time_off"})
		} else {
			normalized := string(t)
			f.Type = &normalized
		}
	}
	if f.Status != nil && *f.Status != "" {
		if !validator.IsInSlice(*f.Status, []string{string(StatusPending), string(StatusApproved), string(StatusRejected)}) {
			errs = append(errs, validator.ValidationError{Field: "status", Message: "status must be one of: pending, approved, rejected"})
		}
	}
	if f.EmployeeID != nil && *f.EmployeeID != "" && !validator.IsValidUUID(*f.EmployeeID) {
		errs = append(errs, validator.ValidationError{Field: "employee_id", Message: "employee_id must be a valid UUID"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// RequestResponse renders any request kind; fields that do not apply are omitted
type RequestResponse struct {
	ID               string   `json:"id"`
	Type             string   `json:"type"`
	EmployeeID       string   `json:"employee_id"`
	EmployeeName     *string  `json:"employee_name,omitempty"`
	Status           string   `json:"status"`
	LeaveType        *string  `json:"leave_type,omitempty"`
	StartDate        string   `json:"start_date"`
	EndDate          string   `json:"end_date"`
	Hours            *float64 `json:"hours,omitempty"`
	ToilHoursAwarded *float64 `json:"toil_hours_awarded,omitempty"`
	Reason           string   `json:"reason"`
	ApproverID       *string  `json:"approver_id,omitempty"`
	DecidedAt        *string  `json:"decided_at,omitempty"`
	ApproverNotes    *string  `json:"approver_notes,omitempty"`
	RejectionReason  *string  `json:"rejection_reason,omitempty"`
	Version          int      `json:"version,omitempty"`
	CreatedAt        string   `json:"created_at"`
	UpdatedAt        string   `json:"updated_at,omitempty"`
}

type ListRequestResponse struct {
	TotalCount int64             `json:"total_count"`
	Page       int               `json:"page"`
	Limit      int               `json:"limit"`
	TotalPages int               `json:"total_pages"`
	Requests   []RequestResponse `json:"requests"`
}

type ToilBalanceResponse struct {
	EmployeeID     string  `json:"employee_id"`
	EarnedHours    float64 `json:"earned_hours"`
	UsedHours      float64 `json:"used_hours"`
	AvailableHours float64 `json:"available_hours"`
}

func validateReason(reason string) validator.ValidationErrors {
	if validator.IsEmpty(reason) {
		return validator.Field("reason", "reason is required")
	}
	if !validator.MaxLength(reason, 1000) {
		return validator.Field("reason", "reason must not exceed 1000 characters")
	}
	return nil
}
