package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/hris-timekeeping/internal/domain/employee"
	"github.com/cmlabs-hris/hris-timekeeping/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type employeeRepositoryImpl struct {
	db database.Querier
}

func NewEmployeeRepository(db database.Querier) employee.EmployeeRepository {
	return &employeeRepositoryImpl{db: db}
}

// GetByID implements employee.EmployeeRepository.
func (e *employeeRepositoryImpl) GetByID(ctx context.Context, id string) (employee.Employee, error) {
	q := GetQuerier(ctx, e.db)

	query := `
		SELECT id, user_id, full_name, email, is_active, created_at, updated_at
		FROM employees
		WHERE id = $1
	`

	var found employee.Employee
	err := q.QueryRow(ctx, query, id).
		Scan(&found.ID, &found.UserID, &found.FullName, &found.Email, &found.IsActive, &found.CreatedAt, &found.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return employee.Employee{}, employee.ErrEmployeeNotFound
		}
		return employee.Employee{}, fmt.Errorf("failed to get employee: %w", database.Classify(err))
	}

	return found, nil
}

// ExistsActive implements employee.EmployeeRepository.
func (e *employeeRepositoryImpl) ExistsActive(ctx context.Context, id string) (bool, error) {
	q := GetQuerier(ctx, e.db)

	var found bool
	err := q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM employees WHERE id = $1 AND is_active)`, id).Scan(&found)
	if err != nil {
		return false, fmt.Errorf("failed to check employee: %w", database.Classify(err))
	}
	return found, nil
}

// LockActive implements employee.EmployeeRepository.
func (e *employeeRepositoryImpl) LockActive(ctx context.Context, id string) (bool, error) {
	q := GetQuerier(ctx, e.db)

	var active bool
	err := q.QueryRow(ctx, `SELECT is_active FROM employees WHERE id = $1 FOR UPDATE`, id).Scan(&active)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("failed to lock employee: %w", database.Classify(err))
	}
	return active, nil
}
