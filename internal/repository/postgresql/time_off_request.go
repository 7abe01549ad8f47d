package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/hris-timekeeping/internal/domain/approval"
	"github.com/cmlabs-hris/hris-timekeeping/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

const timeOffRequestColumns = `
	t.id, t.employee_id, t.date, t.hours, t.reason,
	t.status, t.approver_id, t.decided_at, t.approver_notes, t.rejection_reason,
	t.version, t.created_at, t.updated_at,
	e.full_name AS employee_name`

type timeOffRequestRepositoryImpl struct {
	db database.Querier
}

func NewTimeOffRequestRepository(db database.Querier) approval.TimeOffRequestRepository {
	return &timeOffRequestRepositoryImpl{db: db}
}

func scanTimeOffRequest(row pgx.Row) (approval.TimeOffRequest, error) {
	var request approval.TimeOffRequest
	err := row.Scan(
		&request.ID, &request.EmployeeID, &request.Date, &request.Hours, &request.Reason,
		&request.Status, &request.ApproverID, &request.DecidedAt, &request.ApproverNotes, &request.RejectionReason,
		&request.Version, &request.CreatedAt, &request.UpdatedAt,
		&request.EmployeeName,
	)
	return request, err
}

// Create implements approval.TimeOffRequestRepository.
func (r *timeOffRequestRepositoryImpl) Create(ctx context.Context, request approval.TimeOffRequest) (approval.TimeOffRequest, error) {
	q := GetQuerier(ctx, r.db)

	if request.ID == "" {
		id, err := newID()
		if err != nil {
			return approval.TimeOffRequest{}, err
		}
		request.ID = id
	}
	if request.Status == "" {
		request.Status = approval.StatusPending
	}

	query := `
		INSERT INTO time_off_requests (id, employee_id, date, hours, reason, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING version, created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		request.ID, request.EmployeeID, request.Date, request.Hours, request.Reason, request.Status,
	).Scan(&request.Version, &request.CreatedAt, &request.UpdatedAt)
	if err != nil {
		return approval.TimeOffRequest{}, fmt.Errorf("failed to create time-off request: %w", database.Classify(err))
	}

	return request, nil
}

// GetByID implements approval.TimeOffRequestRepository.
func (r *timeOffRequestRepositoryImpl) GetByID(ctx context.Context, id string) (approval.TimeOffRequest, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + timeOffRequestColumns + `
		FROM time_off_requests t
		LEFT JOIN employees e ON e.id = t.employee_id
		WHERE t.id = $1`

	request, err := scanTimeOffRequest(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return approval.TimeOffRequest{}, approval.ErrTimeOffRequestNotFound
		}
		return approval.TimeOffRequest{}, fmt.Errorf("failed to get time-off request: %w", database.Classify(err))
	}
	return request, nil
}

// UpdateReview implements approval.TimeOffRequestRepository.
func (r *timeOffRequestRepositoryImpl) UpdateReview(ctx context.Context, request *approval.TimeOffRequest) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE time_off_requests SET
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
		return fmt.Errorf("failed to update time-off request: %w", database.Classify(err))
	}
	return nil
}

// ListApprovedBetween implements approval.TimeOffRequestRepository.
func (r *timeOffRequestRepositoryImpl) ListApprovedBetween(ctx context.Context, employeeID string, dates approval.DateRange) ([]approval.TimeOffRequest, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + timeOffRequestColumns + `
		FROM time_off_requests t
		LEFT JOIN employees e ON e.id = t.employee_id
		WHERE t.employee_id = $1
		  AND t.status = 'approved'
		  AND t.date >= $2
		  AND t.date <= $3
		ORDER BY t.date ASC`

	rows, err := q.Query(ctx, query, employeeID, dates.From, dates.To)
	if err != nil {
		return nil, fmt.Errorf("failed to query time-off requests: %w", database.Classify(err))
	}
	defer rows.Close()

	var requests []approval.TimeOffRequest
	for rows.Next() {
		request, err := scanTimeOffRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan time-off request: %w", err)
		}
		requests = append(requests, request)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate time-off requests: %w", database.Classify(err))
	}
	return requests, nil
}
