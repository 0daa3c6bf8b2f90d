package pricing

import (
	"errors"
	"testing"

	"github.com/iliyamo/restaurant-table-reservation/internal/money"
)

func m(s string) money.Money { return money.MustFromString(s) }

func TestPriceItemsBasicLine(t *testing.T) {
	snapshot := map[uint64]money.Money{7: m("15.00")}

	order, err := PriceItems([]ItemRequest{{MenuItemID: 7, Qty: 2}}, snapshot)
	if err != nil {
		t.Fatalf("PriceItems: %v", err)
	}
	if got := order.Items[0].SubTotal; !got.Equal(m("30.00")) {
		t.Fatalf("line subtotal = %s, want 30.00", got)
	}
	if !order.SubTotal.Equal(m("30.00")) {
		t.Fatalf("order subtotal = %s, want 30.00", order.SubTotal)
	}
}

func TestPriceItemsDiscountExceedingLineIsRejected(t *testing.T) {
	snapshot := map[uint64]money.Money{7: m("15.00")}

	_, err := PriceItems([]ItemRequest{
		{MenuItemID: 7, Qty: 2, DiscountAmount: m("31.00")},
	}, snapshot)
	if !errors.Is(err, ErrDiscountTooLarge) {
		t.Fatalf("err = %v, want ErrDiscountTooLarge", err)
	}

	// A discount consuming the full line leaves a zero subtotal, which
	// is rejected as well: every line must carry a positive amount.
	_, err = PriceItems([]ItemRequest{
		{MenuItemID: 7, Qty: 2, DiscountAmount: m("30.00")},
	}, snapshot)
	if !errors.Is(err, ErrNonPositiveLine) {
		t.Fatalf("err = %v, want ErrNonPositiveLine", err)
	}
}

func TestPriceItemsValidation(t *testing.T) {
	snapshot := map[uint64]money.Money{1: m("10.00")}

	cases := []struct {
		name string
		reqs []ItemRequest
		want error
	}{
		{"empty order", nil, ErrNoItems},
		{"unknown item", []ItemRequest{{MenuItemID: 99, Qty: 1}}, ErrUnavailableItem},
		{"zero qty", []ItemRequest{{MenuItemID: 1, Qty: 0}}, ErrInvalidQty},
		{"negative qty", []ItemRequest{{MenuItemID: 1, Qty: -2}}, ErrInvalidQty},
		{"negative discount", []ItemRequest{{MenuItemID: 1, Qty: 1, DiscountAmount: m("-1")}}, ErrNegativeDiscount},
	}
	for _, tt := range cases {
		if _, err := PriceItems(tt.reqs, snapshot); !errors.Is(err, tt.want) {
			t.Errorf("%s: err = %v, want %v", tt.name, err, tt.want)
		}
	}
}

func TestOrderSubTotalIsExactSum(t *testing.T) {
	snapshot := map[uint64]money.Money{
		1: m("15.00"),
		2: m("15.50"),
	}
	order, err := PriceItems([]ItemRequest{
		{MenuItemID: 1, Qty: 2}, // 30.00
		{MenuItemID: 2, Qty: 1}, // 15.50
	}, snapshot)
	if err != nil {
		t.Fatalf("PriceItems: %v", err)
	}
	if !order.SubTotal.Equal(m("45.50")) {
		t.Fatalf("order subtotal = %s, want exactly 45.50", order.SubTotal)
	}
}

// The reference settlement: 45.50 with a 10% discount, 5.00 service
// charge and 13% tax.  Intermediate figures stay exact; only the
// final presentation rounds (half-up) to 51.92.
func TestComputeBillPipeline(t *testing.T) {
	got, err := ComputeBill(BillInput{
		SubTotal:      m("45.50"),
		DiscountValue: m("10"),
		DiscountType:  "PERCENTAGE",
		ServiceCharge: m("5.00"),
		TaxPct:        m("13.00"),
	})
	if err != nil {
		t.Fatalf("ComputeBill: %v", err)
	}

	steps := []struct {
		name string
		got  money.Money
		want string
	}{
		{"discountAmount", got.DiscountAmount, "4.55"},
		{"adjustedSubTotal", got.AdjustedSubTotal, "40.95"},
		{"taxableAmount", got.TaxableAmount, "45.95"},
		{"taxAmount", got.TaxAmount, "5.9735"},
		{"grandTotal", got.GrandTotal, "51.9235"},
	}
	for _, s := range steps {
		if !s.got.Equal(m(s.want)) {
			t.Errorf("%s = %s, want %s", s.name, s.got, s.want)
		}
	}
	if rounded := got.GrandTotal.RoundCurrency().StringFixed(); rounded != "51.92" {
		t.Errorf("rounded grand total = %s, want 51.92", rounded)
	}
}

func TestComputeBillFlatDiscount(t *testing.T) {
	got, err := ComputeBill(BillInput{
		SubTotal:      m("100.00"),
		DiscountValue: m("20.00"),
		DiscountType:  "FLAT",
		ServiceCharge: m("5.00"),
		TaxPct:        m("13.00"),
	})
	if err != nil {
		t.Fatalf("ComputeBill: %v", err)
	}
	if !got.AdjustedSubTotal.Equal(m("80.00")) {
		t.Errorf("adjusted subtotal = %s, want 80.00", got.AdjustedSubTotal)
	}
	if !got.GrandTotal.Equal(m("96.05")) {
		t.Errorf("grand total = %s, want 96.05", got.GrandTotal)
	}
}

// The service charge is a fixed flat amount: it is identical for a
// tiny order and a banquet, and it is taxed.  This mirrors current
// billing policy.
func TestComputeBillServiceChargeIsFlatAndTaxed(t *testing.T) {
	small, _ := ComputeBill(BillInput{
		SubTotal: m("10.00"), DiscountValue: m("0"), DiscountType: "FLAT",
		ServiceCharge: m("5.00"), TaxPct: m("13.00"),
	})
	large, _ := ComputeBill(BillInput{
		SubTotal: m("1000.00"), DiscountValue: m("0"), DiscountType: "FLAT",
		ServiceCharge: m("5.00"), TaxPct: m("13.00"),
	})

	smallCharge := small.TaxableAmount.Sub(small.AdjustedSubTotal)
	largeCharge := large.TaxableAmount.Sub(large.AdjustedSubTotal)
	if !smallCharge.Equal(largeCharge) || !smallCharge.Equal(m("5.00")) {
		t.Fatalf("service charge varies with order size: %s vs %s", smallCharge, largeCharge)
	}
	// Tax applies to the subtotal plus the service charge.
	if !small.TaxAmount.Equal(m("15.00").PercentOf(m("13.00"))) {
		t.Fatalf("tax = %s, want 13%% of 15.00", small.TaxAmount)
	}
}

// Bill-level discounts are intentionally NOT capped at the subtotal;
// only item-level discounts are bounds-checked.  A flat discount above
// the subtotal therefore drives the adjusted subtotal negative.
func TestComputeBillDiscountNotCapped(t *testing.T) {
	got, err := ComputeBill(BillInput{
		SubTotal:      m("10.00"),
		DiscountValue: m("15.00"),
		DiscountType:  "FLAT",
		ServiceCharge: m("0"),
		TaxPct:        m("0"),
	})
	if err != nil {
		t.Fatalf("ComputeBill: %v", err)
	}
	if !got.AdjustedSubTotal.Equal(m("-5.00")) {
		t.Fatalf("adjusted subtotal = %s, want -5.00 (permissive policy)", got.AdjustedSubTotal)
	}
}

func TestComputeBillRejectsBadInput(t *testing.T) {
	if _, err := ComputeBill(BillInput{
		SubTotal: m("10"), DiscountValue: m("-1"), DiscountType: "FLAT",
	}); !errors.Is(err, ErrNegativeDiscount) {
		t.Errorf("negative discount: err = %v, want ErrNegativeDiscount", err)
	}
	if _, err := ComputeBill(BillInput{
		SubTotal: m("10"), DiscountValue: m("1"), DiscountType: "COUPON",
	}); !errors.Is(err, ErrUnknownDiscount) {
		t.Errorf("unknown type: err = %v, want ErrUnknownDiscount", err)
	}
}
