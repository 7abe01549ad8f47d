package employee

import "time"

// Employee is the read-only view of an employee record owned by the HR core.
type Employee struct {
	ID        string
	UserID    *string
	FullName  string
	Email     *string
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
