// Package queue defines message payloads exchanged over the message broker.
package queue

// Queue names used by publishers and consumers.
const (
	AuditQueue   = "audit.activity"
	KitchenQueue = "kitchen.tickets"
)

// AuditEvent records a staff or guest action for the activity trail.
// EventID is a UUID assigned at publish time so downstream consumers
// can deduplicate redeliveries.
type AuditEvent struct {
	EventID    string  `json:"event_id"`
	Action     string  `json:"action"`
	ActorID    *uint64 `json:"actor_id,omitempty"`
	EntityType string  `json:"entity_type"`
	EntityID   uint64  `json:"entity_id"`
	Detail     string  `json:"detail,omitempty"`
	OccurredAt string  `json:"occurred_at"`
}

// KitchenTicketItem is one line of a kitchen ticket.
type KitchenTicketItem struct {
	Name  string `json:"name"`
	Qty   int    `json:"qty"`
	Notes string `json:"notes,omitempty"`
}

// KitchenTicketEvent is published when an order is placed so the
// kitchen display can print a ticket without querying the database.
type KitchenTicketEvent struct {
	OrderID   uint64              `json:"order_id"`
	TableID   uint64              `json:"table_id"`
	TableName string              `json:"table_name"`
	IsQROrder bool                `json:"is_qr_order"`
	Items     []KitchenTicketItem `json:"items"`
	PlacedAt  string              `json:"placed_at"`
}
