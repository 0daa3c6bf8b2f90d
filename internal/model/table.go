package model

import "time"

// Table status values.  A table moves AVAILABLE -> RESERVED -> OCCUPIED
// -> NEEDS_CLEANING -> AVAILABLE through the guarded transitions below,
// or AVAILABLE -> OCCUPIED directly when a walk-in order is placed.
const (
	TableAvailable     = "AVAILABLE"
	TableReserved      = "RESERVED"
	TableOccupied      = "OCCUPIED"
	TableNeedsCleaning = "NEEDS_CLEANING"
)

// Table represents a physical dining table.  Tables are never deleted
// physically; DeletedAt marks logical removal so historical orders and
// reservations keep a valid reference.
//
// Fields:
//	ID               – primary key identifier.
//	Name             – unique human-readable label ("T1", "Patio 3").
//	Seats            – seating capacity, always > 0.
//	Status           – current availability state.
//	AssignedWaiterID – staff member responsible for the table, if any.
//	CreatedAt        – creation timestamp.
//	UpdatedAt        – last update timestamp.
//	DeletedAt        – soft delete marker (nil while active).
type Table struct {
	ID               uint64     `json:"id"`                 // tables.id
	Name             string     `json:"name"`               // tables.name
	Seats            int        `json:"seats"`              // tables.seats
	Status           string     `json:"status"`             // tables.status
	AssignedWaiterID *uint64    `json:"assigned_waiter_id"` // tables.assigned_waiter_id (nullable)
	CreatedAt        time.Time  `json:"created_at"`         // tables.created_at
	UpdatedAt        time.Time  `json:"updated_at"`         // tables.updated_at
	DeletedAt        *time.Time `json:"-"`                  // tables.deleted_at (nullable)
}

// CanReserve reports whether a new reservation may be taken against a
// table in the given status.  Only AVAILABLE tables accept
// reservations; RESERVED, OCCUPIED and NEEDS_CLEANING all reject.
func CanReserve(status string) bool {
	return status == TableAvailable
}

// CanSeat reports whether a fresh walk-in order may be placed against a
// table in the given status.  The same rule as CanReserve applies: the
// table must be exactly AVAILABLE.
func CanSeat(status string) bool {
	return status == TableAvailable
}

// CanCheckIn reports whether a reserved party may be seated, moving the
// table from RESERVED to OCCUPIED.
func CanCheckIn(status string) bool {
	return status == TableReserved
}

// CanFinishCleaning reports whether the table can return to AVAILABLE.
func CanFinishCleaning(status string) bool {
	return status == TableNeedsCleaning
}

// ValidTableStatus reports whether s is one of the known status values.
// Staff overrides may move a table to any valid status, bypassing the
// guards above; that path still rejects unknown states.
func ValidTableStatus(s string) bool {
	switch s {
	case TableAvailable, TableReserved, TableOccupied, TableNeedsCleaning:
		return true
	}
	return false
}
