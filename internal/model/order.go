package model

import (
	"time"

	"github.com/iliyamo/restaurant-table-reservation/internal/money"
)

// Order status values.
const (
	OrderPending    = "PENDING"
	OrderInProgress = "IN_PROGRESS"
	OrderServed     = "SERVED"
	OrderCompleted  = "COMPLETED"
	OrderCancelled  = "CANCELLED"
)

// Order aggregates the items requested at a table.  SubTotal always
// equals the exact sum of the item subtotals captured at creation
// time; later menu price changes never affect an existing order.
//
// Fields:
//	ID        – primary key identifier.
//	TableID   – table the order was placed against.
//	Status    – kitchen progression state.
//	IsQROrder – true when the order came from the guest-facing QR flow.
//	PlacedBy  – staff member who keyed the order, if any.
//	CreatedBy – staff account that owns the session, if any.
//	SubTotal  – exact sum of item subtotals.
//	Items     – at least one order item.
//	CreatedAt – creation timestamp.
//	UpdatedAt – last update timestamp.
//	DeletedAt – soft delete marker (nil while active).
type Order struct {
	ID        uint64      `json:"id"`          // orders.id
	TableID   uint64      `json:"table_id"`    // orders.table_id
	Status    string      `json:"status"`      // orders.status
	IsQROrder bool        `json:"is_qr_order"` // orders.is_qr_order
	PlacedBy  *uint64     `json:"placed_by"`   // orders.placed_by (nullable)
	CreatedBy *uint64     `json:"created_by"`  // orders.created_by (nullable)
	SubTotal  money.Money `json:"sub_total"`   // orders.sub_total DECIMAL(12,4)
	Items     []OrderItem `json:"items"`       // joined from order_items
	CreatedAt time.Time   `json:"created_at"`  // orders.created_at
	UpdatedAt time.Time   `json:"updated_at"`  // orders.updated_at
	DeletedAt *time.Time  `json:"-"`           // orders.deleted_at (nullable)
}

// OrderItem is an immutable price snapshot of one menu line.  UnitPrice
// is captured from the menu at order time and never updated.
//
// Fields:
//	ID             – primary key identifier.
//	OrderID        – owning order.
//	MenuItemID     – menu item this line snapshots.
//	Qty            – quantity, always > 0.
//	UnitPrice      – price per unit at order time.
//	DiscountAmount – absolute per-line discount, >= 0.
//	SubTotal       – qty×unitPrice − discountAmount, always > 0.
//	Notes          – kitchen notes, optional.
//	PayerName      – who pays this line when the bill is split, optional.
type OrderItem struct {
	ID             uint64      `json:"id"`              // order_items.id
	OrderID        uint64      `json:"order_id"`        // order_items.order_id
	MenuItemID     uint64      `json:"menu_item_id"`    // order_items.menu_item_id
	Qty            int         `json:"qty"`             // order_items.qty
	UnitPrice      money.Money `json:"unit_price"`      // order_items.unit_price DECIMAL(12,4)
	DiscountAmount money.Money `json:"discount_amount"` // order_items.discount_amount DECIMAL(12,4)
	SubTotal       money.Money `json:"sub_total"`       // order_items.sub_total DECIMAL(12,4)
	Notes          *string     `json:"notes"`           // order_items.notes (nullable)
	PayerName      *string     `json:"payer_name"`      // order_items.payer_name (nullable)
	CreatedAt      time.Time   `json:"created_at"`      // order_items.created_at
}

// ValidOrderStatus reports whether s is a known order status.
func ValidOrderStatus(s string) bool {
	switch s {
	case OrderPending, OrderInProgress, OrderServed, OrderCompleted, OrderCancelled:
		return true
	}
	return false
}
