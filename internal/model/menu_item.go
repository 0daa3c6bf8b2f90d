package model

import (
	"time"

	"github.com/iliyamo/restaurant-table-reservation/internal/money"
)

// MenuItem is a sellable dish or drink.  Price is the current unit
// price; orders snapshot it at creation time so later edits never
// rewrite history.  A promotional discount percentage may be attached
// with a validity window; it affects display pricing and is resolved
// alongside the unit price when orders are placed.
//
// Fields:
//	ID           – primary key identifier.
//	Name         – unique item name.
//	Category     – grouping for the menu ("MAINS", "DRINKS", ...).
//	Price        – current unit price.
//	IsAvailable  – false hides the item from ordering without deleting it.
//	PromoPct     – optional promotional discount percentage.
//	PromoStartsAt, PromoEndsAt – validity window of the promotion.
//	CreatedAt    – creation timestamp.
//	UpdatedAt    – last update timestamp.
//	DeletedAt    – soft delete marker (nil while active).
type MenuItem struct {
	ID            uint64       `json:"id"`              // menu_items.id
	Name          string       `json:"name"`            // menu_items.name
	Category      string       `json:"category"`        // menu_items.category
	Price         money.Money  `json:"price"`           // menu_items.price DECIMAL(12,4)
	IsAvailable   bool         `json:"is_available"`    // menu_items.is_available
	PromoPct      *money.Money `json:"promo_pct"`       // menu_items.promo_pct DECIMAL(6,3) (nullable)
	PromoStartsAt *time.Time   `json:"promo_starts_at"` // menu_items.promo_starts_at (nullable)
	PromoEndsAt   *time.Time   `json:"promo_ends_at"`   // menu_items.promo_ends_at (nullable)
	CreatedAt     time.Time    `json:"created_at"`      // menu_items.created_at
	UpdatedAt     time.Time    `json:"updated_at"`      // menu_items.updated_at
	DeletedAt     *time.Time   `json:"-"`               // menu_items.deleted_at (nullable)
}

// PromoActiveAt reports whether the item's promotional discount is in
// effect at the given instant.
func (mi MenuItem) PromoActiveAt(t time.Time) bool {
	if mi.PromoPct == nil {
		return false
	}
	if mi.PromoStartsAt != nil && t.Before(*mi.PromoStartsAt) {
		return false
	}
	if mi.PromoEndsAt != nil && !t.Before(*mi.PromoEndsAt) {
		return false
	}
	return true
}
