package report

import (
	"time"

	"github.com/cmlabs-hris/hris-timekeeping/internal/pkg/validator"
)

const maxRangeDays = 366

const (
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	ContentTypePDF  = "application/pdf"
)

// File is a generated report ready to be streamed to the client
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

// ========================================
// ATTENDANCE EXPORT
// ========================================

type AttendanceExportRequest struct {
	StartDate  string  `json:"start_date"` // YYYY-MM-DD
	EndDate    string  `json:"end_date"`   // YYYY-MM-DD
	EmployeeID *string `json:"employee_id,omitempty"`

	Start time.Time `json:"-"`
	End   time.Time `json:"-"`
}

func (r *AttendanceExportRequest) Validate() error {
	var errs validator.ValidationErrors

	errs = append(errs, validateRange(r.StartDate, r.EndDate, &r.Start, &r.End)...)
	if r.EmployeeID != nil && *r.EmployeeID != "" && !validator.IsValidUUID(*r.EmployeeID) {
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

// ========================================
// TOIL STATEMENT
// ========================================

type ToilStatementRequest struct {
	EmployeeID string `json:"employee_id"`
	StartDate  string `json:"start_date"` // YYYY-MM-DD
	EndDate    string `json:"end_date"`   // YYYY-MM-DD

	Start time.Time `json:"-"`
	End   time.Time `json:"-"`
}

func (r *ToilStatementRequest) Validate() error {
	var errs validator.ValidationErrors

	if !validator.IsValidUUID(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{
			Field:   "employee_id",
			Message: "employee_id must be a valid UUID",
		})
	}
	errs = append(errs, validateRange(r.StartDate, r.EndDate, &r.Start, &r.End)...)

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func validateRange(startStr, endStr string, start, end *time.Time) validator.ValidationErrors {
	var errs validator.ValidationErrors

	s, okStart := validator.IsValidDate(startStr)
	if !okStart {
		errs = append(errs, validator.ValidationError{Field: "start_date", Message: "start_date must be in YYYY-MM-DD format"})
	}
	e, okEnd := validator.IsValidDate(endStr)
	if !okEnd {
		errs = append(errs, validator.ValidationError{Field: "end_date", Message: "end_date must be in YYYY-MM-DD format"})
	}
	if okStart && okEnd {
		switch {
		case e.Before(s):
			errs = append(errs, validator.ValidationError{Field: "end_date", Message: "end_date must not be before start_date"})
		case e.Sub(s) > maxRangeDays*24*time.Hour:
			errs = append(errs, validator.ValidationError{Field: "end_date", Message: ErrRangeTooLarge.Error()})
		default:
			*start, *end = s, e
		}
	}
	return errs
}
