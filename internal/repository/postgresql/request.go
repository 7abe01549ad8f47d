package postgresql

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/hris-timekeeping/internal/domain/approval"
	"github.com/cmlabs-hris/hris-timekeeping/internal/pkg/database"
)

// requestUnion normalizes the three request tables into one row shape
const requestUnion = `
	SELECT id, 'leave' AS type, employee_id, status, start_date, end_date, NULL::numeric AS hours, reason, created_at
	FROM leave_requests
	UNION ALL
	SELECT id, 'overtime', employee_id, status, work_date, work_date, hours, reason, created_at
	FROM overtime_requests
	UNION ALL
	SELECT id, 'time_off', employee_id, status, date, date, hours, reason, created_at
	FROM time_off_requests`

type requestRepositoryImpl struct {
	db database.Querier
}

func NewRequestRepository(db database.Querier) approval.RequestRepository {
	return &requestRepositoryImpl{db: db}
}

// List implements approval.RequestRepository.
func (r *requestRepositoryImpl) List(ctx context.Context, filter approval.RequestFilter) ([]approval.RequestSummary, int64, error) {
	q := GetQuerier(ctx, r.db)

	w := newWhereBuilder()
	if filter.EmployeeID != nil && *filter.EmployeeID != "" {
		w.add("req.employee_id = $%d", *filter.EmployeeID)
	}
	if filter.Type != nil && *filter.Type != "" {
		w.add("req.type = $%d", *filter.Type)
	}
	if filter.Status != nil && *filter.Status != "" {
		w.add("req.status = $%d", *filter.Status)
	}

	countQuery := `SELECT COUNT(*) FROM (` + requestUnion + `) req` + w.clause()
	var total int64
	if err := q.QueryRow(ctx, countQuery, w.args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count requests: %w", database.Classify(err))
	}

	limit := filter.Limit
	if limit == 0 {
		limit = 20
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	args := append(w.args, limit, (page-1)*limit)

	selectQuery := fmt.Sprintf(`
		SELECT req.id, req.type, req.employee_id, e.full_name, req.status,
			   req.start_date, req.end_date, req.hours, req.reason, req.created_at
		FROM (%s) req
		LEFT JOIN employees e ON e.id = req.employee_id%s
		ORDER BY req.created_at DESC
		LIMIT $%d OFFSET $%d`, requestUnion, w.clause(), len(w.args)+1, len(w.args)+2)

	rows, err := q.Query(ctx, selectQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query requests: %w", database.Classify(err))
	}
	defer rows.Close()

	var summaries []approval.RequestSummary
	for rows.Next() {
		var s approval.RequestSummary
		if err := rows.Scan(
			&s.ID, &s.Type, &s.EmployeeID, &s.EmployeeName, &s.Status,
			&s.StartDate, &s.EndDate, &s.Hours, &s.Reason, &s.CreatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("failed to scan request: %w", err)
		}
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate requests: %w", database.Classify(err))
	}

	return summaries, total, nil
}
