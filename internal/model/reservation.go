package model

import "time"

// Reservation status values.
const (
	ReservationActive    = "ACTIVE"
	ReservationCancelled = "CANCELLED"
	ReservationCompleted = "COMPLETED"
)

// DefaultReservationMinutes is the reservation length applied when the
// request does not specify a duration.
const DefaultReservationMinutes = 120

// Reservation records a guest booking for a table over a half-open
// time interval [ReservedAt, ReservedUntil).  For any table, no two
// ACTIVE reservations may have overlapping intervals; that invariant
// is enforced transactionally at creation time.
//
// Fields:
//	ID            – primary key identifier.
//	TableID       – table being reserved.
//	GuestName     – name the booking is held under.
//	GuestPhone    – optional contact number.
//	Guests        – party size, validated against the table's seats.
//	Status        – ACTIVE, CANCELLED or COMPLETED.
//	ReservedAt    – interval start (inclusive), UTC.
//	ReservedUntil – interval end (exclusive), UTC.
//	CreatedAt     – creation timestamp.
//	UpdatedAt     – last update timestamp.
//	DeletedAt     – soft delete marker, set on cancellation.
type Reservation struct {
	ID            uint64     `json:"id"`             // reservations.id
	TableID       uint64     `json:"table_id"`       // reservations.table_id
	GuestName     string     `json:"guest_name"`     // reservations.guest_name
	GuestPhone    *string    `json:"guest_phone"`    // reservations.guest_phone (nullable)
	Guests        int        `json:"guests"`         // reservations.guests
	Status        string     `json:"status"`         // reservations.status
	ReservedAt    time.Time  `json:"reserved_at"`    // reservations.reserved_at
	ReservedUntil time.Time  `json:"reserved_until"` // reservations.reserved_until
	CreatedAt     time.Time  `json:"created_at"`     // reservations.created_at
	UpdatedAt     time.Time  `json:"updated_at"`     // reservations.updated_at
	DeletedAt     *time.Time `json:"-"`              // reservations.deleted_at (nullable)
}

// IntervalsOverlap applies the standard half-open overlap test to two
// intervals [aStart, aEnd) and [bStart, bEnd).  Intervals that merely
// touch (one ends exactly when the other starts) do not overlap.
func IntervalsOverlap(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && aEnd.After(bStart)
}

// Overlaps reports whether the reservation's interval overlaps
// [start, end).
func (r Reservation) Overlaps(start, end time.Time) bool {
	return IntervalsOverlap(r.ReservedAt, r.ReservedUntil, start, end)
}
