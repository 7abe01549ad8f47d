package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/hris-timekeeping/internal/domain/approval"
	"github.com/cmlabs-hris/hris-timekeeping/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-timekeeping/internal/domain/employee"
	"github.com/cmlabs-hris/hris-timekeeping/internal/domain/message"
	"github.com/cmlabs-hris/hris-timekeeping/internal/domain/report"
	"github.com/cmlabs-hris/hris-timekeeping/internal/domain/user"
	"github.com/cmlabs-hris/hris-timekeeping/internal/pkg/database"
	"github.com/cmlabs-hris/hris-timekeeping/internal/pkg/jwt"
	"github.com/cmlabs-hris/hris-timekeeping/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Authentication
	case errors.Is(err, jwt.ErrMissingClaims):
		Unauthorized(w, "Authentication required")

	// Not found
	case errors.Is(err, attendance.ErrAttendanceNotFound),
		errors.Is(err, approval.ErrLeaveRequestNotFound),
		errors.Is(err, approval.ErrOvertimeRequestNotFound),
		errors.Is(err, approval.ErrTimeOffRequestNotFound),
		errors.Is(err, message.ErrMessageNotFound),
		errors.Is(err, message.ErrGroupNotFound),
		errors.Is(err, message.ErrRecipientNotFound),
		errors.Is(err, employee.ErrEmployeeNotFound):
		NotFound(w, capitalize(err))

	// Conflicts
	case errors.Is(err, attendance.ErrAlreadyCheckedIn),
		errors.Is(err, attendance.ErrAlreadyCheckedOut),
		errors.Is(err, attendance.ErrConcurrentUpdate),
		errors.Is(err, approval.ErrRequestAlreadyProcessed),
		errors.Is(err, approval.ErrConcurrentUpdate),
		errors.Is(err, message.ErrInvalidTransition),
		errors.Is(err, message.ErrRetryLimitReached),
		errors.Is(err, message.ErrConcurrentUpdate):
		Conflict(w, capitalize(err))

	// Permissions
	case errors.Is(err, user.ErrManagerAccessRequired),
		errors.Is(err, user.ErrInsufficientPermissions),
		errors.Is(err, user.ErrEmployeeProfileRequired),
		errors.Is(err, employee.ErrEmployeeInactive),
		errors.Is(err, attendance.ErrAttendanceForbidden),
		errors.Is(err, attendance.ErrOutsideAllowedRadius),
		errors.Is(err, approval.ErrApprovalPermissionDenied),
		errors.Is(err, approval.ErrRequestForbidden),
		errors.Is(err, message.ErrMessageForbidden):
		Forbidden(w, capitalize(err))

	// Rejected input that is not a field error
	case errors.Is(err, attendance.ErrNotCheckedIn),
		errors.Is(err, approval.ErrInsufficientToilBalance),
		errors.Is(err, approval.ErrUnknownRequestType),
		errors.Is(err, approval.ErrUnknownAction),
		errors.Is(err, message.ErrGroupEmpty):
		BadRequest(w, capitalize(err), nil)

	case errors.Is(err, database.ErrStoreUnavailable):
		slog.Warn("Store unavailable", "error", err)
		ServiceUnavailable(w, "Service temporarily unavailable, please retry")

	case errors.Is(err, report.ErrReportGenerationFailed):
		slog.Error("Report generation failed", "error", err)
		InternalServerError(w, "Failed to generate report")

	// Default
	default:
		slog.Error("Unhandled error", "error", err)
		InternalServerError(w, "An unexpected error occurred")
	}
}

func capitalize(err error) string {
	msg := err.Error()
	if msg == "" {
		return msg
	}
	if c := msg[0]; c >= 'a' && c <= 'z' {
		return string(c-'a'+'A') + msg[1:]
	}
	return msg
}
