package approval

import "errors"

var (
	ErrLeaveRequestNotFound    = errors.New("leave request not found")
	ErrOvertimeRequestNotFound = errors.New("overtime request not found")
	ErrTimeOffRequestNotFound  = errors.New("time-off request not found")

	ErrRequestAlreadyProcessed  = errors.New("request has already been approved or rejected")
	ErrConcurrentUpdate         = errors.New("request was modified concurrently")
	ErrApprovalPermissionDenied = errors.New("only managers or owners can approve or reject requests")
	ErrRequestForbidden         = errors.New("not allowed to access this request")
	ErrUnknownAction            = errors.New("unknown approval action")
	ErrUnknownRequestType       = errors.New("unknown request type")
	ErrInsufficientToilBalance  = errors.New("insufficient TOIL balance")
)
