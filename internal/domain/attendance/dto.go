package attendance

import (
	"strings"
	"time"

	"github.com/cmlabs-hris/hris-timekeeping/internal/pkg/validator"
)

// ========================================
// ATTENDANCE DTOs
// ========================================

type CheckInRequest struct {
	Latitude         *float64 `json:"latitude,omitempty"`
	Longitude        *float64 `json:"longitude,omitempty"`
	LocationAccuracy *float64 `json:"location_accuracy,omitempty"`
	Location         *string  `json:"location,omitempty"`
	Notes            *string  `json:"notes,omitempty"`
	IsRemote         bool     `json:"is_remote"`
}

func (r *CheckInRequest) Validate() error {
	var errs validator.ValidationErrors

	if (r.Latitude == nil) != (r.Longitude == nil) {
		errs = append(errs, validator.ValidationError{
			Field:   "latitude",
			Message: "latitude and longitude must be provided together",
		})
	}
	if r.Latitude != nil && !validator.IsValidLatitude(*r.Latitude) {
		errs = append(errs, validator.ValidationError{
			Field:   "latitude",
			Message: "latitude must be between -90 and 90",
		})
	}
	if r.Longitude != nil && !validator.IsValidLongitude(*r.Longitude) {
		errs = append(errs, validator.ValidationError{
			Field:   "longitude",
			Message: "longitude must be between -180 and 180",
		})
	}
	if r.LocationAccuracy != nil && *r.LocationAccuracy < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "location_accuracy",
			Message: "location_accuracy must not be negative",
		})
	}
	if r.Location != nil && !validator.MaxLength(*r.Location, 255) {
		errs = append(errs, validator.ValidationError{
			Field:   "location",
			Message: "location must not exceed 255 characters",
		})
	}
	if r.Notes != nil && !validator.MaxLength(*r.Notes, 500) {
		errs = append(errs, validator.ValidationError{
			Field:   "notes",
			Message: "notes must not exceed 500 characters",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type CheckOutRequest struct {
	ID    string  `json:"-"`
	Notes *string `json:"notes,omitempty"`
}

func (r *CheckOutRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.ID) {
		errs = append(errs, validator.ValidationError{
			Field:   "id",
			Message: "id is required",
		})
	}
	if r.Notes != nil && !validator.MaxLength(*r.Notes, 500) {
		errs = append(errs, validator.ValidationError{
			Field:   "notes",
			Message: "notes must not exceed 500 characters",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// UpdateAttendanceRequest is an administrative correction of a record
type UpdateAttendanceRequest struct {
	ID         string  `json:"-"`
	CheckIn    *string `json:"check_in,omitempty"`  // RFC3339
	CheckOut   *string `json:"check_out,omitempty"` // RFC3339
	Status     *string `json:"status,omitempty"`
	IsHoliday  *bool   `json:"is_holiday,omitempty"`
	AdminNotes *string `json:"admin_notes,omitempty"`
	Version    *int    `json:"version,omitempty"`

	CheckInTime  *time.Time `json:"-"`
	CheckOutTime *time.Time `json:"-"`
}

// Validate checks the request and parses its timestamps into CheckInTime and CheckOutTime
func (r *UpdateAttendanceRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.ID) {
		errs = append(errs, validator.ValidationError{
			Field:   "id",
			Message: "id is required",
		})
	}

	if r.CheckIn == nil && r.CheckOut == nil && r.Status == nil && r.IsHoliday == nil && r.AdminNotes == nil {
		errs = append(errs, validator.ValidationError{
			Field:   "body",
			Message: "at least one field must be provided",
		})
	}

	if r.CheckIn != nil {
		if t, ok := validator.IsValidDateTime(*r.CheckIn); ok {
			r.CheckInTime = &t
		} else {
			errs = append(errs, validator.ValidationError{
				Field:   "check_in",
				Message: "check_in must be an RFC3339 timestamp",
			})
		}
	}
	if r.CheckOut != nil {
		if t, ok := validator.IsValidDateTime(*r.CheckOut); ok {
			r.CheckOutTime = &t
		} else {
			errs = append(errs, validator.ValidationError{
				Field:   "check_out",
				Message: "check_out must be an RFC3339 timestamp",
			})
		}
	}
	if r.CheckInTime != nil && r.CheckOutTime != nil && r.CheckOutTime.Before(*r.CheckInTime) {
		errs = append(errs, validator.ValidationError{
			Field:   "check_out",
			Message: "check_out must not be before check_in",
		})
	}

	if r.Status != nil && !Status(*r.Status).IsValid() {
		errs = append(errs, validator.ValidationError{
			Field:   "status",
			Message: "status must be one of: " + strings.Join(validStatuses, ", "),
		})
	}
	if r.AdminNotes != nil && !validator.MaxLength(*r.AdminNotes, 1000) {
		errs = append(errs, validator.ValidationError{
			Field:   "admin_notes",
			Message: "admin_notes must not exceed 1000 characters",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type AttendanceResponse struct {
	ID               string   `json:"id"`
	EmployeeID       string   `json:"employee_id"`
	EmployeeName     *string  `json:"employee_name,omitempty"`
	Date             *string  `json:"date,omitempty"`
	CheckIn          *string  `json:"check_in,omitempty"`
	CheckOut         *string  `json:"check_out,omitempty"`
	Latitude         *float64 `json:"latitude,omitempty"`
	Longitude        *float64 `json:"longitude,omitempty"`
	LocationAccuracy *float64 `json:"location_accuracy,omitempty"`
	Location         *string  `json:"location,omitempty"`
	Notes            *string  `json:"notes,omitempty"`
	WorkingHours     float64  `json:"working_hours"`
	OvertimeHours    float64  `json:"overtime_hours"`
	IsToilEligible   bool     `json:"is_toil_eligible"`
	ToilHoursEarned  float64  `json:"toil_hours_earned"`
	IsWeekend        bool     `json:"is_weekend"`
	IsHoliday        bool     `json:"is_holiday"`
	Status           string   `json:"status"`
	IsAutoCheckout   bool     `json:"is_auto_checkout"`
	AdminNotes       *string  `json:"admin_notes,omitempty"`
	Version          int      `json:"version"`
	CreatedAt        string   `json:"created_at"`
	UpdatedAt        string   `json:"updated_at"`
}

type WorkingSummary struct {
	TotalHours    float64 `json:"total_hours"`
	OvertimeHours float64 `json:"overtime_hours"`
	ToilEarned    float64 `json:"toil_earned"`
	IsWeekendWork bool    `json:"is_weekend_work"`
}

// NewWorkingSummary converts ledger output into the check-out response shape
func NewWorkingSummary(s WorkSummary) WorkingSummary {
	return WorkingSummary{
		TotalHours:    s.WorkingHours,
		OvertimeHours: s.OvertimeHours,
		ToilEarned:    s.ToilHoursEarned,
		IsWeekendWork: s.IsWeekend,
	}
}

type CheckOutResponse struct {
	AttendanceResponse
	WorkingSummary WorkingSummary `json:"working_summary"`
}

type AttendanceFilter struct {
	// Search & Filter
	EmployeeID   *string `json:"employee_id,omitempty"`
	EmployeeName *string `json:"employee_name,omitempty"`
	StartDate    *string `json:"start_date,omitempty"` // YYYY-MM-DD
	EndDate      *string `json:"end_date,omitempty"`   // YYYY-MM-DD
	Status       *string `json:"status,omitempty"`

	// Pagination
	Page  int `json:"page"`
	Limit int `json:"limit"`

	// Sorting
	SortBy    string `json:"sort_by"`    // check_in, check_out, employee_name, status
	SortOrder string `json:"sort_order"` // asc, desc

	// Resolved check-in window, set by the service from StartDate/EndDate
	From *time.Time `json:"-"`
	To   *time.Time `json:"-"`
}

func (f *AttendanceFilter) Validate() error {
	var errs validator.ValidationErrors

	errs = append(errs, validatePage(&f.Page, &f.Limit)...)
	errs = append(errs, validateDateRange(f.StartDate, f.EndDate)...)
	errs = append(errs, validateStatus(f.Status)...)
	errs = append(errs, validateSort(&f.SortBy, &f.SortOrder, []string{"check_in", "check_out", "employee_name", "status"})...)

	if f.EmployeeID != nil && *f.EmployeeID != "" && !validator.IsValidUUID(*f.EmployeeID) {
		errs = append(errs, validator.ValidationError{
			Field:   "employee_id",
			Message: "employee_id must be a valid UUID",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type MyAttendanceFilter struct {
	StartDate *string `json:"start_date,omitempty"` // YYYY-MM-DD
	EndDate   *string `json:"end_date,omitempty"`   // YYYY-MM-DD
	Status    *string `json:"status,omitempty"`

	// Pagination
	Page  int `json:"page"`
	Limit int `json:"limit"`

	// Sorting
	SortBy    string `json:"sort_by"`    // check_in, check_out, status
	SortOrder string `json:"sort_order"` // asc, desc

	From *time.Time `json:"-"`
	To   *time.Time `json:"-"`
}

func (f *MyAttendanceFilter) Validate() error {
	var errs validator.ValidationErrors

	errs = append(errs, validatePage(&f.Page, &f.Limit)...)
	errs = append(errs, validateDateRange(f.StartDate, f.EndDate)...)
	errs = append(errs, validateStatus(f.Status)...)
	errs = append(errs, validateSort(&f.SortBy, &f.SortOrder, []string{"check_in", "check_out", "status"})...)

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type ListAttendanceResponse struct {
	TotalCount  int64                `json:"total_count"`
	Page        int                  `json:"page"`
	Limit       int                  `json:"limit"`
	TotalPages  int                  `json:"total_pages"`
	Showing     string               `json:"showing"`
	Attendances []AttendanceResponse `json:"attendances"`
}

func validatePage(page, limit *int) validator.ValidationErrors {
	var errs validator.ValidationErrors

	if *page < 0 {
		errs = append(errs, validator.ValidationError{Field: "page", Message: "page must be a positive number"})
	}
	if *page == 0 {
		*page = 1 // Default page
	}

	if *limit < 0 {
		errs = append(errs, validator.ValidationError{Field: "limit", Message: "limit must be a positive number"})
	}
	if *limit == 0 {
		*limit = 20 // Default limit
	}
	if *limit > 100 {
		errs = append(errs, validator.ValidationError{Field: "limit", Message: "limit must not exceed 100"})
	}
	return errs
}

func validateDateRange(start, end *string) validator.ValidationErrors {
	var errs validator.ValidationErrors
	var startDate, endDate time.Time
	var okStart, okEnd bool

	if start != nil && *start != "" {
		if startDate, okStart = validator.IsValidDate(*start); !okStart {
			errs = append(errs, validator.ValidationError{Field: "start_date", Message: "start_date must be in YYYY-MM-DD format"})
		}
	}
	if end != nil && *end != "" {
		if endDate, okEnd = validator.IsValidDate(*end); !okEnd {
			errs = append(errs, validator.ValidationError{Field: "end_date", Message: "end_date must be in YYYY-MM-DD format"})
		}
	}
	if okStart && okEnd && endDate.Before(startDate) {
		errs = append(errs, validator.ValidationError{Field: "end_date", Message: "end_date must not be before start_date"})
	}
	return errs
}

func validateStatus(status *string) validator.ValidationErrors {
	if status == nil || *status == "" || Status(*status).IsValid() {
		return nil
	}
	return validator.Field("status", "status must be one of: "+strings.Join(validStatuses, ", "))
}

func validateSort(sortBy, sortOrder *string, fields []string) validator.ValidationErrors {
	var errs validator.ValidationErrors

	if *sortBy != "" {
		if !validator.IsInSlice(*sortBy, fields) {
			errs = append(errs, validator.ValidationError{
				Field:   "sort_by",
				Message: "sort_by must be one of: " + strings.Join(fields, ", "),
			})
		}
	} else {
		*sortBy = "check_in" // Default sort
	}

	if *sortOrder != "" {
		if !validator.IsInSlice(strings.ToLower(*sortOrder), []string{"asc", "desc"}) {
			errs = append(errs, validator.ValidationError{
				Field:   "sort_order",
				Message: "sort_order must be one of: asc, desc",
			})
		}
	} else {
		*sortOrder = "desc" // Default descending (newest first)
	}
	return errs
}
