package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/hris-timekeeping/internal/domain/approval"
	"github.com/cmlabs-hris/hris-timekeeping/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type toilBalanceRepositoryImpl struct {
	db database.Querier
}

func NewToilBalanceRepository(db database.Querier) approval.ToilBalanceRepository {
	return &toilBalanceRepositoryImpl{db: db}
}

// Get implements approval.ToilBalanceRepository.
func (r *toilBalanceRepositoryImpl) Get(ctx context.Context, employeeID string) (approval.ToilBalance, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT employee_id, earned_hours, used_hours, updated_at FROM toil_balances WHERE employee_id = $1`

	var balance approval.ToilBalance
	err := q.QueryRow(ctx, query, employeeID).
		Scan(&balance.EmployeeID, &balance.EarnedHours, &balance.UsedHours, &balance.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return approval.ToilBalance{EmployeeID: employeeID}, nil
		}
		return approval.ToilBalance{}, fmt.Errorf("failed to get TOIL balance: %w", database.Classify(err))
	}
	return balance, nil
}

// Credit implements approval.ToilBalanceRepository.
func (r *toilBalanceRepositoryImpl) Credit(ctx context.Context, employeeID string, hours float64) (approval.ToilBalance, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO toil_balances (employee_id, earned_hours, used_hours)
		VALUES ($1, $2, 0)
		ON CONFLICT (employee_id) DO UPDATE
		SET earned_hours = toil_balances.earned_hours + EXCLUDED.earned_hours,
			updated_at = NOW()
		RETURNING employee_id, earned_hours, used_hours, updated_at
	`

	var balance approval.ToilBalance
	err := q.QueryRow(ctx, query, employeeID, hours).
		Scan(&balance.EmployeeID, &balance.EarnedHours, &balance.UsedHours, &balance.UpdatedAt)
	if err != nil {
		return approval.ToilBalance{}, fmt.Errorf("failed to credit TOIL balance: %w", database.Classify(err))
	}
	return balance, nil
}

// Debit implements approval.ToilBalanceRepository.
func (r *toilBalanceRepositoryImpl) Debit(ctx context.Context, employeeID string, hours float64) (approval.ToilBalance, error) {
	q := GetQuerier(ctx, r.db)

	// The guard keeps the balance from going negative under concurrent debits
	query := `
		UPDATE toil_balances
		SET used_hours = used_hours + $2, updated_at = NOW()
		WHERE employee_id = $1
		  AND earned_hours - used_hours >= $2
		RETURNING employee_id, earned_hours, used_hours, updated_at
	`

	var balance approval.ToilBalance
	err := q.QueryRow(ctx, query, employeeID, hours).
		Scan(&balance.EmployeeID, &balance.EarnedHours, &balance.UsedHours, &balance.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return approval.ToilBalance{}, approval.ErrInsufficientToilBalance
		}
		return approval.ToilBalance{}, fmt.Errorf("failed to debit TOIL balance: %w", database.Classify(err))
	}
	return balance, nil
}
