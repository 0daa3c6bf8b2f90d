// Package repository implements MySQL persistence for the restaurant
// domain.  This file defines sentinel error values shared across the
// repositories so that handlers can translate failures into stable
// HTTP responses with errors.Is, without inspecting driver errors.
package repository

import (
	"errors"

	"github.com/go-sql-driver/mysql"
)

// Not-found sentinels, one per entity.  Repositories return these
// instead of sql.ErrNoRows so callers do not depend on driver details.
var (
	ErrTableNotFound       = errors.New("table not found")
	ErrReservationNotFound = errors.New("reservation not found")
	ErrOrderNotFound       = errors.New("order not found")
	ErrBillNotFound        = errors.New("bill not found")
	ErrMenuItemNotFound    = errors.New("menu item not found")
	ErrStaffNotFound       = errors.New("staff member not found")
)

// Conflict sentinels.  Handlers translate these into HTTP 409.
var (
	// ErrReservationOverlap signals that an ACTIVE reservation already
	// covers part of the requested interval on the same table.
	ErrReservationOverlap = errors.New("reservation overlaps an existing booking")
	// ErrTableUnavailable signals that the table's current status
	// forbids the requested transition.
	ErrTableUnavailable = errors.New("table is not available")
	// ErrTableExists signals a duplicate table name.
	ErrTableExists = errors.New("table name already exists")
	// ErrMenuItemExists signals a duplicate menu item name.
	ErrMenuItemExists = errors.New("menu item already exists")
	// ErrBillExists signals that the order already has a bill.
	ErrBillExists = errors.New("bill already exists for this order")
	// ErrBillAlreadyPaid signals a second settlement attempt on a bill.
	ErrBillAlreadyPaid = errors.New("bill already paid")
	// ErrEmailExists signals a duplicate staff email.
	ErrEmailExists = errors.New("email already exists")
)

// isDuplicate reports whether err is the MySQL duplicate-key error
// (1062).  Used to map unique constraint violations onto the sentinel
// conflict errors above.
func isDuplicate(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == 1062
}
