package model

import "time"

// Staff roles.  MANAGER administers tables and menu, WAITER and
// CASHIER run the ordering and billing flow.
const (
	RoleManager = "MANAGER"
	RoleWaiter  = "WAITER"
	RoleCashier = "CASHIER"
)

// Staff mirrors the 'staff' table.  Passwords are stored as bcrypt
// hashes; refresh tokens live in their own table.
type Staff struct {
	ID           uint64    // staff.id
	Email        string    // staff.email
	PasswordHash string    // staff.password_hash
	FullName     string    // staff.full_name
	Role         string    // staff.role
	IsActive     bool      // staff.is_active
	CreatedAt    time.Time // staff.created_at
	UpdatedAt    time.Time // staff.updated_at
}

// ValidStaffRole reports whether s is a known staff role.
func ValidStaffRole(s string) bool {
	switch s {
	case RoleManager, RoleWaiter, RoleCashier:
		return true
	}
	return false
}

// CanPlaceOrders reports whether a staff role is eligible to key in
// orders.  Managers can do everything; cashiers only settle bills.
func CanPlaceOrders(role string) bool {
	return role == RoleManager || role == RoleWaiter
}
