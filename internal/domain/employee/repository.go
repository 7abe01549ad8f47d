package employee

import "context"

type EmployeeRepository interface {
	// GetByID returns the employee, or ErrEmployeeNotFound.
	GetByID(ctx context.Context, id string) (Employee, error)

	// ExistsActive reports whether an active employee with id exists.
	ExistsActive(ctx context.Context, id string) (bool, error)

	// LockActive row-locks the employee for the surrounding transaction and
	// reports whether it is active. A missing employee reports false.
	LockActive(ctx context.Context, id string) (bool, error)
}
