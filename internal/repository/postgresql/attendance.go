package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cmlabs-hris/hris-timekeeping/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-timekeeping/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

const attendanceColumns = `
	a.id, a.employee_id, a.check_in, a.check_out,
	a.latitude, a.longitude, a.location_accuracy, a.location, a.notes,
	a.working_hours, a.overtime_hours, a.is_toil_eligible, a.toil_hours_earned,
	a.is_weekend, a.is_holiday, a.status, a.is_auto_checkout, a.admin_notes,
	a.version, a.created_at, a.updated_at`

type attendanceRepository struct {
	db database.Querier
}

func scanAttendance(row pgx.Row, withName bool) (attendance.Attendance, error) {
	var att attendance.Attendance
	dest := []any{
		&att.ID, &att.EmployeeID, &att.CheckIn, &att.CheckOut,
		&att.Latitude, &att.Longitude, &att.LocationAccuracy, &att.Location, &att.Notes,
		&att.WorkingHours, &att.OvertimeHours, &att.IsToilEligible, &att.ToilHoursEarned,
		&att.IsWeekend, &att.IsHoliday, &att.Status, &att.IsAutoCheckout, &att.AdminNotes,
		&att.Version, &att.CreatedAt, &att.UpdatedAt,
	}
	if withName {
		dest = append(dest, &att.EmployeeName)
	}
	err := row.Scan(dest...)
	return att, err
}

// Create implements attendance.AttendanceRepository.
func (a *attendanceRepository) Create(ctx context.Context, newAttendance attendance.Attendance) (attendance.Attendance, error) {
	q := GetQuerier(ctx, a.db)

	if newAttendance.ID == "" {
		id, err := newID()
		if err != nil {
			return attendance.Attendance{}, err
		}
		newAttendance.ID = id
	}

	query := `
		INSERT INTO attendances (
			id, employee_id, check_in, latitude, longitude, location_accuracy,
			location, notes, status, is_weekend
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10
		) RETURNING version, created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		newAttendance.ID,
		newAttendance.EmployeeID,
		newAttendance.CheckIn,
		newAttendance.Latitude,
		newAttendance.Longitude,
		newAttendance.LocationAccuracy,
		newAttendance.Location,
		newAttendance.Notes,
		newAttendance.Status,
		newAttendance.IsWeekend,
	).Scan(&newAttendance.Version, &newAttendance.CreatedAt, &newAttendance.UpdatedAt)
	if err != nil {
		return attendance.Attendance{}, fmt.Errorf("failed to create attendance: %w", database.Classify(err))
	}

	return newAttendance, nil
}

// GetByID implements attendance.AttendanceRepository.
func (a *attendanceRepository) GetByID(ctx context.Context, id string) (attendance.Attendance, error) {
	q := GetQuerier(ctx, a.db)

	query := `SELECT ` + attendanceColumns + `, e.full_name
		FROM attendances a
		LEFT JOIN employees e ON e.id = a.employee_id
		WHERE a.id = $1`

	att, err := scanAttendance(q.QueryRow(ctx, query, id), true)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.Attendance{}, attendance.ErrAttendanceNotFound
		}
		return attendance.Attendance{}, fmt.Errorf("failed to get attendance: %w", database.Classify(err))
	}
	return att, nil
}

// HasCheckedInBetween implements attendance.AttendanceRepository.
func (a *attendanceRepository) HasCheckedInBetween(ctx context.Context, employeeID string, from, to time.Time) (bool, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		SELECT EXISTS (
			SELECT 1
			FROM attendances
			WHERE employee_id = $1
			  AND check_in >= $2
			  AND check_in < $3
		)
	`

	var exists bool
	if err := q.QueryRow(ctx, query, employeeID, from, to).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check existing check-in: %w", database.Classify(err))
	}
	return exists, nil
}

// Update implements attendance.AttendanceRepository.
func (a *attendanceRepository) Update(ctx context.Context, att *attendance.Attendance) error {
	q := GetQuerier(ctx, a.db)

	query := `
		UPDATE attendances SET
			check_in = $1, check_out = $2, notes = $3,
			working_hours = $4, overtime_hours = $5, is_toil_eligible = $6, toil_hours_earned = $7,
			is_weekend = $8, is_holiday = $9, status = $10, is_auto_checkout = $11, admin_notes = $12,
			version = version + 1, updated_at = NOW()
		WHERE id = $13 AND version = $14
		RETURNING version, updated_at
	`

	err := q.QueryRow(ctx, query,
		att.CheckIn, att.CheckOut, att.Notes,
		att.WorkingHours, att.OvertimeHours, att.IsToilEligible, att.ToilHoursEarned,
		att.IsWeekend, att.IsHoliday, att.Status, att.IsAutoCheckout, att.AdminNotes,
		att.ID, att.Version,
	).Scan(&att.Version, &att.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.ErrConcurrentUpdate
		}
		return fmt.Errorf("failed to update attendance: %w", database.Classify(err))
	}
	return nil
}

// ListOpenBefore implements attendance.AttendanceRepository.
func (a *attendanceRepository) ListOpenBefore(ctx context.Context, cutoff time.Time) ([]attendance.Attendance, error) {
	q := GetQuerier(ctx, a.db)

	query := `SELECT ` + attendanceColumns + `
		FROM attendances a
		WHERE a.check_out IS NULL
		  AND a.check_in IS NOT NULL
		  AND a.check_in < $1
		ORDER BY a.check_in ASC`

	rows, err := q.Query(ctx, query, cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to query open attendances: %w", database.Classify(err))
	}
	return collectAttendances(rows, false)
}

// List implements attendance.AttendanceRepository.
func (a *attendanceRepository) List(ctx context.Context, filter attendance.AttendanceFilter) ([]attendance.Attendance, int64, error) {
	w := newWhereBuilder()
	if filter.EmployeeID != nil && *filter.EmployeeID != "" {
		w.add("a.employee_id = $%d", *filter.EmployeeID)
	}
	if filter.EmployeeName != nil && *filter.EmployeeName != "" {
		w.add("e.full_name ILIKE $%d", "%"+*filter.EmployeeName+"%")
	}
	return a.listPage(ctx, w, filter.From, filter.To, filter.Status, filter.SortBy, filter.SortOrder, filter.Page, filter.Limit)
}

// ListByEmployee implements attendance.AttendanceRepository.
func (a *attendanceRepository) ListByEmployee(ctx context.Context, employeeID string, filter attendance.MyAttendanceFilter) ([]attendance.Attendance, int64, error) {
	w := newWhereBuilder()
	w.add("a.employee_id = $%d", employeeID)
	return a.listPage(ctx, w, filter.From, filter.To, filter.Status, filter.SortBy, filter.SortOrder, filter.Page, filter.Limit)
}

func (a *attendanceRepository) listPage(ctx context.Context, w *whereBuilder, from, to *time.Time, status *string, sortBy, sortOrder string, page, limit int) ([]attendance.Attendance, int64, error) {
	q := GetQuerier(ctx, a.db)

	if from != nil {
		w.add("a.check_in >= $%d", *from)
	}
	if to != nil {
		w.add("a.check_in < $%d", *to)
	}
	if status != nil && *status != "" {
		w.add("a.status = $%d", *status)
	}

	// Count total (need to join employees for name filter)
	countQuery := `
		SELECT COUNT(*)
		FROM attendances a
		LEFT JOIN employees e ON e.id = a.employee_id` + w.clause()
	var total int64
	if err := q.QueryRow(ctx, countQuery, w.args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count attendances: %w", database.Classify(err))
	}

	orderByField := "a.check_in"
	switch sortBy {
	case "check_out":
		orderByField = "a.check_out"
	case "employee_name":
		orderByField = "e.full_name"
	case "status":
		orderByField = "a.status"
	}
	direction := "DESC"
	if strings.ToLower(sortOrder) == "asc" {
		direction = "ASC"
	}

	if limit == 0 {
		limit = 20
	}
	if page < 1 {
		page = 1
	}
	args := append(w.args, limit, (page-1)*limit)

	selectQuery := fmt.Sprintf(`SELECT %s, e.full_name
		FROM attendances a
		LEFT JOIN employees e ON e.id = a.employee_id%s
		ORDER BY %s %s
		LIMIT $%d OFFSET $%d`, attendanceColumns, w.clause(), orderByField, direction, len(w.args)+1, len(w.args)+2)

	rows, err := q.Query(ctx, selectQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query attendances: %w", database.Classify(err))
	}
	attendances, err := collectAttendances(rows, true)
	if err != nil {
		return nil, 0, err
	}
	return attendances, total, nil
}

// ListBetween implements attendance.AttendanceRepository.
func (a *attendanceRepository) ListBetween(ctx context.Context, from, to time.Time, employeeID *string) ([]attendance.Attendance, error) {
	q := GetQuerier(ctx, a.db)

	w := newWhereBuilder()
	w.add("a.check_in >= $%d", from)
	w.add("a.check_in < $%d", to)
	if employeeID != nil && *employeeID != "" {
		w.add("a.employee_id = $%d", *employeeID)
	}

	query := `SELECT ` + attendanceColumns + `, e.full_name
		FROM attendances a
		LEFT JOIN employees e ON e.id = a.employee_id` + w.clause() + `
		ORDER BY a.check_in ASC`

	rows, err := q.Query(ctx, query, w.args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query attendances: %w", database.Classify(err))
	}
	return collectAttendances(rows, true)
}

func collectAttendances(rows pgx.Rows, withName bool) ([]attendance.Attendance, error) {
	defer rows.Close()

	var attendances []attendance.Attendance
	for rows.Next() {
		att, err := scanAttendance(rows, withName)
		if err != nil {
			return nil, fmt.Errorf("failed to scan attendance: %w", err)
		}
		attendances = append(attendances, att)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate attendances: %w", database.Classify(err))
	}
	return attendances, nil
}

func NewAttendanceRepository(db database.Querier) attendance.AttendanceRepository {
	return &attendanceRepository{db: db}
}
