package model

import "time"

// TableEvent is an append-only record of a table status change.  The
// kitchen display reads these to build a seating timeline.  Events are
// written in the same transaction as the change they describe and are
// never updated or deleted.
//
// Fields:
//	ID         – primary key identifier.
//	TableID    – table whose status changed.
//	OrderID    – order that triggered the change, if any.
//	FromStatus – status before the change.
//	ToStatus   – status after the change.
//	ActorID    – staff member who caused the change, if any.
//	CreatedAt  – when the change happened.
type TableEvent struct {
	ID         uint64    `json:"id"`          // table_events.id
	TableID    uint64    `json:"table_id"`    // table_events.table_id
	OrderID    *uint64   `json:"order_id"`    // table_events.order_id (nullable)
	FromStatus string    `json:"from_status"` // table_events.from_status
	ToStatus   string    `json:"to_status"`   // table_events.to_status
	ActorID    *uint64   `json:"actor_id"`    // table_events.actor_id (nullable)
	CreatedAt  time.Time `json:"created_at"`  // table_events.created_at
}
