package user

type Role string

const (
	RoleOwner    Role = "owner"    // Company owner - full access
	RoleManager  Role = "manager"  // Can approve requests and edit attendance
	RoleEmployee Role = "employee" // Regular employee
	RolePending  Role = "pending"  // Still in onboarding
)

// Actor is the authenticated caller of an operation, as carried by the access token.
type Actor struct {
	UserID     string
	EmployeeID string
	Role       Role
}

// IsManager checks if the actor is manager or owner
func (a Actor) IsManager() bool {
	return a.Role == RoleManager || a.Role == RoleOwner
}

// CanApprove checks if the actor may move a request out of pending
func (a Actor) CanApprove() bool {
	return a.IsManager()
}

// HasEmployee reports whether the actor is linked to an employee record
func (a Actor) HasEmployee() bool {
	return a.EmployeeID != ""
}
