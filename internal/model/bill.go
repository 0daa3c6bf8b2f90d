package model

import (
	"time"

	"github.com/iliyamo/restaurant-table-reservation/internal/money"
)

// Bill discount types.
const (
	DiscountPercentage = "PERCENTAGE"
	DiscountFlat       = "FLAT"
)

// Payment modes recorded on a bill.  Payment capture itself happens
// outside this system; only the mode and paid flag are stored.
const (
	PaymentCash   = "CASH"
	PaymentCard   = "CARD"
	PaymentMobile = "MOBILE"
)

// Bill is the priced settlement of one order (1:1).  GrandTotal is
// always recomputed through the pricing pipeline, never set directly.
// Once created a bill is immutable except for IsPaid/PaidAt and the
// artifact URL attached after PDF generation.
//
// Fields:
//	ID            – primary key identifier.
//	OrderID       – the order being billed, unique.
//	SubTotal      – the order subtotal at billing time, before discount.
//	DiscountValue – raw discount input (percentage points or flat amount).
//	DiscountType  – PERCENTAGE or FLAT.
//	ServiceCharge – flat service charge added before tax.
//	TaxPct        – tax rate in percentage points.
//	TaxAmount     – tax computed on subtotal-after-discount + service charge.
//	GrandTotal    – final payable amount.
//	PaymentMode   – CASH, CARD or MOBILE.
//	IsPaid        – settlement flag.
//	PaidAt        – when the bill was settled, nil until paid.
//	PDFURL        – generated receipt artifact, attached post-commit.
type Bill struct {
	ID            uint64      `json:"id"`             // bills.id
	OrderID       uint64      `json:"order_id"`       // bills.order_id (unique)
	SubTotal      money.Money `json:"sub_total"`      // bills.sub_total DECIMAL(12,4)
	DiscountValue money.Money `json:"discount_value"` // bills.discount_value DECIMAL(12,4)
	DiscountType  string      `json:"discount_type"`  // bills.discount_type
	ServiceCharge money.Money `json:"service_charge"` // bills.service_charge DECIMAL(12,4)
	TaxPct        money.Money `json:"tax_pct"`        // bills.tax_pct DECIMAL(6,3)
	TaxAmount     money.Money `json:"tax_amount"`     // bills.tax_amount DECIMAL(12,4)
	GrandTotal    money.Money `json:"grand_total"`    // bills.grand_total DECIMAL(12,4)
	PaymentMode   string      `json:"payment_mode"`   // bills.payment_mode
	IsPaid        bool        `json:"is_paid"`        // bills.is_paid
	PaidAt        *time.Time  `json:"paid_at"`        // bills.paid_at (nullable)
	PDFURL        *string     `json:"pdf_url"`        // bills.pdf_url (nullable)
	CreatedAt     time.Time   `json:"created_at"`     // bills.created_at
	UpdatedAt     time.Time   `json:"updated_at"`     // bills.updated_at
}

// ValidDiscountType reports whether s is a known discount type.
func ValidDiscountType(s string) bool {
	return s == DiscountPercentage || s == DiscountFlat
}

// ValidPaymentMode reports whether s is a known payment mode.
func ValidPaymentMode(s string) bool {
	switch s {
	case PaymentCash, PaymentCard, PaymentMobile:
		return true
	}
	return false
}
