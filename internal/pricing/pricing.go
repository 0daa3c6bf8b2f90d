// Package pricing implements the money-bearing computations of the
// ordering flow as pure functions: per-item pricing with discount
// bounds, the exact order subtotal, and the bill pipeline that turns a
// subtotal into a grand total.  All arithmetic is exact decimal; no
// intermediate value is ever rounded.  Callers round only when
// persisting or serializing results.
package pricing

import (
	"errors"
	"fmt"

	"github.com/iliyamo/restaurant-table-reservation/internal/money"
)

// Validation failures raised by the pricing functions.  Handlers map
// these to HTTP 400 responses.
var (
	ErrUnavailableItem  = errors.New("pricing: order contains unavailable items")
	ErrInvalidQty       = errors.New("pricing: item quantity must be positive")
	ErrNegativeDiscount = errors.New("pricing: discount must not be negative")
	ErrDiscountTooLarge = errors.New("pricing: discount exceeds item subtotal")
	ErrNonPositiveLine  = errors.New("pricing: item subtotal must be positive")
	ErrNoItems          = errors.New("pricing: order must contain at least one item")
	ErrUnknownDiscount  = errors.New("pricing: unknown discount type")
)

// ItemRequest is one requested order line as it arrives from the
// caller, already shape-validated upstream.
type ItemRequest struct {
	MenuItemID     uint64
	Qty            int
	DiscountAmount money.Money
	Notes          *string
	PayerName      *string
}

// PricedItem is an item request resolved against the menu snapshot,
// with the captured unit price and computed subtotal.
type PricedItem struct {
	MenuItemID     uint64
	Qty            int
	UnitPrice      money.Money
	DiscountAmount money.Money
	SubTotal       money.Money
	Notes          *string
	PayerName      *string
}

// PricedOrder is the result of pricing a full item list.
type PricedOrder struct {
	Items    []PricedItem
	SubTotal money.Money
}

// PriceItems resolves each requested line against the price snapshot
// and computes per-line and order subtotals.  The snapshot maps menu
// item id to the unit price captured by the orchestrator before the
// transaction began; any requested id missing from the snapshot makes
// the whole operation fail.  Per line:
//
//	subTotalBeforeDiscount = qty × unitPrice
//	subTotal               = subTotalBeforeDiscount − discountAmount
//
// where the discount must be non-negative, must not exceed the
// pre-discount subtotal, and the resulting subtotal must stay
// positive.  The order subtotal is the exact decimal sum of all line
// subtotals.
func PriceItems(reqs []ItemRequest, snapshot map[uint64]money.Money) (PricedOrder, error) {
	if len(reqs) == 0 {
		return PricedOrder{}, ErrNoItems
	}
	out := PricedOrder{Items: make([]PricedItem, 0, len(reqs))}
	for _, req := range reqs {
		unitPrice, ok := snapshot[req.MenuItemID]
		if !ok {
			return PricedOrder{}, fmt.Errorf("%w: id %d", ErrUnavailableItem, req.MenuItemID)
		}
		if req.Qty <= 0 {
			return PricedOrder{}, fmt.Errorf("%w: id %d", ErrInvalidQty, req.MenuItemID)
		}
		if req.DiscountAmount.IsNegative() {
			return PricedOrder{}, fmt.Errorf("%w: id %d", ErrNegativeDiscount, req.MenuItemID)
		}
		before := unitPrice.MulInt(int64(req.Qty))
		if req.DiscountAmount.Cmp(before) > 0 {
			return PricedOrder{}, fmt.Errorf("%w: id %d", ErrDiscountTooLarge, req.MenuItemID)
		}
		sub := before.Sub(req.DiscountAmount)
		if !sub.IsPositive() {
			return PricedOrder{}, fmt.Errorf("%w: id %d", ErrNonPositiveLine, req.MenuItemID)
		}
		out.Items = append(out.Items, PricedItem{
			MenuItemID:     req.MenuItemID,
			Qty:            req.Qty,
			UnitPrice:      unitPrice,
			DiscountAmount: req.DiscountAmount,
			SubTotal:       sub,
			Notes:          req.Notes,
			PayerName:      req.PayerName,
		})
		out.SubTotal = out.SubTotal.Add(sub)
	}
	return out, nil
}

// BillInput carries everything needed to settle an order.
type BillInput struct {
	SubTotal      money.Money // the order's exact subtotal
	DiscountValue money.Money // percentage points or a flat amount
	DiscountType  string      // model.DiscountPercentage or model.DiscountFlat
	ServiceCharge money.Money // fixed flat amount added before tax
	TaxPct        money.Money // tax rate in percentage points
}

// BillTotals holds every stage of the bill pipeline so callers can
// persist and expose the intermediate figures.
type BillTotals struct {
	DiscountAmount   money.Money
	AdjustedSubTotal money.Money
	TaxableAmount    money.Money
	TaxAmount        money.Money
	GrandTotal       money.Money
}

// ComputeBill runs the settlement pipeline:
//
//	discountAmount   = PERCENTAGE ? subTotal × (value/100) : value
//	adjustedSubTotal = subTotal − discountAmount
//	taxableAmount    = adjustedSubTotal + serviceCharge
//	taxAmount        = taxableAmount × (taxPct/100)
//	grandTotal       = taxableAmount + taxAmount
//
// The service charge is a fixed flat amount that joins the taxable
// base; it does not scale with order size.  The bill-level discount
// must be non-negative but, unlike item discounts, is not capped at
// the subtotal: a flat discount larger than the subtotal produces a
// negative adjusted subtotal.
func ComputeBill(in BillInput) (BillTotals, error) {
	if !ValidDiscountKind(in.DiscountType) {
		return BillTotals{}, fmt.Errorf("%w: %q", ErrUnknownDiscount, in.DiscountType)
	}
	if in.DiscountValue.IsNegative() {
		return BillTotals{}, ErrNegativeDiscount
	}

	var discount money.Money
	if in.DiscountType == "PERCENTAGE" {
		discount = in.SubTotal.PercentOf(in.DiscountValue)
	} else {
		discount = in.DiscountValue
	}

	adjusted := in.SubTotal.Sub(discount)
	taxable := adjusted.Add(in.ServiceCharge)
	tax := taxable.PercentOf(in.TaxPct)

	return BillTotals{
		DiscountAmount:   discount,
		AdjustedSubTotal: adjusted,
		TaxableAmount:    taxable,
		TaxAmount:        tax,
		GrandTotal:       taxable.Add(tax),
	}, nil
}

// ValidDiscountKind reports whether s is a supported discount type.
// Duplicated from the model constants to keep this package free of
// domain imports.
func ValidDiscountKind(s string) bool {
	return s == "PERCENTAGE" || s == "FLAT"
}
