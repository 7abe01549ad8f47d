package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/hris-timekeeping/internal/domain/approval"
	"github.com/cmlabs-hris/hris-timekeeping/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type leaveRequestRepositoryImpl struct {
	db database.Querier
}

func NewLeaveRequestRepository(db database.Querier) approval.LeaveRequestRepository {
	return &leaveRequestRepositoryImpl{db: db}
}

// Create implements approval.LeaveRequestRepository.
func (r *leaveRequestRepositoryImpl) Create(ctx context.Context, request approval.LeaveRequest) (approval.LeaveRequest, error) {
	q := GetQuerier(ctx, r.db)

	if request.ID == "" {
		id, err := newID()
		if err != nil {
			return approval.LeaveRequest{}, err
		}
		request.ID = id
	}
	if request.Status == "" {
		request.Status = approval.StatusPending
	}

	query := `
		INSERT INTO leave_requests (id, employee_id, leave_type, start_date, end_date, reason, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING version, created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		request.ID, request.EmployeeID, request.LeaveType, request.StartDate, request.EndDate, request.Reason, request.Status,
	).Scan(&request.Version, &request.CreatedAt, &request.UpdatedAt)
	if err != nil {
		return approval.LeaveRequest{}, fmt.Errorf("failed to create leave request: %w", database.Classify(err))
	}

	return request, nil
}

// GetByID implements approval.LeaveRequestRepository.
func (r *leaveRequestRepositoryImpl) GetByID(ctx context.Context, id string) (approval.LeaveRequest, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT lr.id, lr.employee_id, lr.leave_type, lr.start_date, lr.end_date, lr.reason,
			   lr.status, lr.approver_id, lr.decided_at, lr.approver_notes, lr.rejection_reason,
			   lr.version, lr.created_at, lr.updated_at,
			   e.full_name AS employee_name
		FROM leave_requests lr
		LEFT JOIN employees e ON e.id = lr.employee_id
		WHERE lr.id = $1
	`

	var request approval.LeaveRequest
	err := q.QueryRow(ctx, query, id).Scan(
		&request.ID, &request.EmployeeID, &request.LeaveType, &request.StartDate, &request.EndDate, &request.Reason,
		&request.Status, &request.ApproverID, &request.DecidedAt, &request.ApproverNotes, &request.RejectionReason,
		&request.Version, &request.CreatedAt, &request.UpdatedAt,
		&request.EmployeeName,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return approval.LeaveRequest{}, approval.ErrLeaveRequestNotFound
		}
		return approval.LeaveRequest{}, fmt.Errorf("failed to get leave request: %w", database.Classify(err))
	}

	return request, nil
}

// UpdateReview implements approval.LeaveRequestRepository.
func (r *leaveRequestRepositoryImpl) UpdateReview(ctx context.Context, request *approval.LeaveRequest) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE leave_requests SET
			status = $1, approver_id = $2, decided_at = $3, approver_notes = $4, rejection_reason = $5,
			version = version + 1, updated_at = NOW()
		WHERE id = $6 AND version = $7 AND status = 'pending'
		RETURNING version, updated_at
	`

	err := q.QueryRow(ctx, query,
		request.Status, request.ApproverID, request.DecidedAt, request.ApproverNotes, request.RejectionReason,
		request.ID, request.Version,
	).Scan(&request.Version, &request.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return approval.ErrConcurrentUpdate
		}
		return fmt.Errorf("failed to update leave request: %w", database.Classify(err))
	}

	return nil
}
