package user

type Role string

const (
	RoleOwner    Role = "owner"    // Company owner - full access, edits statutory config
	RoleManager  Role = "manager"  // HR admin - periods, attendance entry, payroll runs
	RoleEmployee Role = "employee" // Regular employee
)

// IsManager reports whether the role may run payroll operations.
func (r Role) IsManager() bool {
	return r == RoleManager || r == RoleOwner
}
