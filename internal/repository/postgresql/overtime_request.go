package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/hris-timekeeping/internal/domain/approval"
	"github.com/cmlabs-hris/hris-timekeeping/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

const overtimeRequestColumns = `
	o.id, o.employee_id, o.work_date, o.hours, o.reason, o.toil_hours_awarded,
	o.status, o.approver_id, o.decided_at, o.approver_notes, o.rejection_reason,
	o.version, o.created_at, o.updated_at,
	e.full_name AS employee_name`

type overtimeRequestRepositoryImpl struct {
	db database.Querier
}

func NewOvertimeRequestRepository(db database.Querier) approval.OvertimeRequestRepository {
	return &overtimeRequestRepositoryImpl{db: db}
}

func scanOvertimeRequest(row pgx.Row) (approval.OvertimeRequest, error) {
	var request approval.OvertimeRequest
	err := row.Scan(
		&request.ID, &request.EmployeeID, &request.WorkDate, &request.Hours, &request.Reason, &request.ToilHoursAwarded,
		&request.Status, &request.ApproverID, &request.DecidedAt, &request.ApproverNotes, &request.RejectionReason,
		&request.Version, &request.CreatedAt, &request.UpdatedAt,
		&request.EmployeeName,
	)
	return request, err
}

// Create implements approval.OvertimeRequestRepository.
func (r *overtimeRequestRepositoryImpl) Create(ctx context.Context, request approval.OvertimeRequest) (approval.OvertimeRequest, error) {
	q := GetQuerier(ctx, r.db)

	if request.ID == "" {
		id, err := newID()
		if err != nil {
			return approval.OvertimeRequest{}, err
		}
		request.ID = id
	}
	if request.Status == "" {
		request.Status = approval.StatusPending
	}

	query := `
		INSERT INTO overtime_requests (id, employee_id, work_date, hours, reason, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING version, created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		request.ID, request.EmployeeID, request.WorkDate, request.Hours, request.Reason, request.Status,
	).Scan(&request.Version, &request.CreatedAt, &request.UpdatedAt)
	if err != nil {
		return approval.OvertimeRequest{}, fmt.Errorf("failed to create overtime request: %w", database.Classify(err))
	}

	return request, nil
}

// GetByID implements approval.OvertimeRequestRepository.
func (r *overtimeRequestRepositoryImpl) GetByID(ctx context.Context, id string) (approval.OvertimeRequest, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + overtimeRequestColumns + `
		FROM overtime_requests o
		LEFT JOIN employees e ON e.id = o.employee_id
		WHERE o.id = $1`

	request, err := scanOvertimeRequest(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return approval.OvertimeRequest{}, approval.ErrOvertimeRequestNotFound
		}
		return approval.OvertimeRequest{}, fmt.Errorf("failed to get overtime request: %w", database.Classify(err))
	}
	return request, nil
}

// UpdateReview implements approval.OvertimeRequestRepository.
func (r *overtimeRequestRepositoryImpl) UpdateReview(ctx context.Context, request *approval.OvertimeRequest) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE overtime_requests SET
			status = $1, approver_id = $2, decided_at = $3, approver_notes = $4, rejection_reason = $5,
			toil_hours_awarded = $6, version = version + 1, updated_at = NOW()
		WHERE id = $7 AND version = $8 AND status = 'pending'
		RETURNING version, updated_at
	`

	err := q.QueryRow(ctx, query,
		request.Status, request.ApproverID, request.DecidedAt, request.ApproverNotes, request.RejectionReason,
		request.ToilHoursAwarded, request.ID, request.Version,
	).Scan(&request.Version, &request.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return approval.ErrConcurrentUpdate
		}
		return fmt.Errorf("failed to update overtime request: %w", database.Classify(err))
	}
	return nil
}

// ListApprovedBetween implements approval.OvertimeRequestRepository.
func (r *overtimeRequestRepositoryImpl) ListApprovedBetween(ctx context.Context, employeeID string, dates approval.DateRange) ([]approval.OvertimeRequest, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + overtimeRequestColumns + `
		FROM overtime_requests o
		LEFT JOIN employees e ON e.id = o.employee_id
		WHERE o.employee_id = $1
		  AND o.status = 'approved'
		  AND o.work_date >= $2
		  AND o.work_date <= $3
		ORDER BY o.work_date ASC`

	rows, err := q.Query(ctx, query, employeeID, dates.From, dates.To)
	if err != nil {
		return nil, fmt.Errorf("failed to query overtime requests: %w", database.Classify(err))
	}
	defer rows.Close()

	var requests []approval.OvertimeRequest
	for rows.Next() {
		request, err := scanOvertimeRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan overtime request: %w", err)
		}
		requests = append(requests, request)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate overtime requests: %w", database.Classify(err))
	}
	return requests, nil
}
