package approval

import "context"

type LeaveRequestRepository interface {
	Create(ctx context.Context, req LeaveRequest) (LeaveRequest, error)
	// GetByID returns the request, or ErrLeaveRequestNotFound.
	GetByID(ctx context.Context, id string) (LeaveRequest, error)
	// UpdateReview stores the review if the version still matches, bumping it.
	// A stale version yields ErrConcurrentUpdate.
	UpdateReview(ctx context.Context, req *LeaveRequest) error
}

type OvertimeRequestRepository interface {
	Create(ctx context.Context, req OvertimeRequest) (OvertimeRequest, error)
	GetByID(ctx context.Context, id string) (OvertimeRequest, error)
	// UpdateReview stores the review and awarded TOIL if the version still matches.
	UpdateReview(ctx context.Context, req *OvertimeRequest) error
	ListApprovedBetween(ctx context.Context, employeeID string, filter DateRange) ([]OvertimeRequest, error)
}

type TimeOffRequestRepository interface {
	Create(ctx context.Context, req TimeOffRequest) (TimeOffRequest, error)
	GetByID(ctx context.Context, id string) (TimeOffRequest, error)
	UpdateReview(ctx context.Context, req *TimeOffRequest) error
	ListApprovedBetween(ctx context.Context, employeeID string, filter DateRange) ([]TimeOffRequest, error)
}

// RequestRepository lists requests of every kind together
type RequestRepository interface {
	List(ctx context.Context, filter RequestFilter) ([]RequestSummary, int64, error)
}

type ToilBalanceRepository interface {
	// Get returns the balance, or a zero balance when the employee has none yet.
	Get(ctx context.Context, employeeID string) (ToilBalance, error)
	// Credit adds earned hours, creating the balance if needed.
	Credit(ctx context.Context, employeeID string, hours float64) (ToilBalance, error)
	// Debit consumes hours, returning ErrInsufficientToilBalance when not enough are available.
	Debit(ctx context.Context, employeeID string, hours float64) (ToilBalance, error)
}
