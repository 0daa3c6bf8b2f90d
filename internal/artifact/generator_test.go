package artifact

import (
	"os"
	"strings"
	"testing"

	"github.com/iliyamo/restaurant-table-reservation/internal/model"
	"github.com/iliyamo/restaurant-table-reservation/internal/money"
)

func TestFileGeneratorWritesReceipt(t *testing.T) {
	dir := t.TempDir()
	g := NewFileGenerator(dir)

	notes := "no onions"
	order := model.Order{
		ID:      7,
		TableID: 3,
		Items: []model.OrderItem{
			{MenuItemID: 1, Qty: 2, UnitPrice: money.MustFromString("15.00"), SubTotal: money.MustFromString("30.00"), Notes: &notes},
			{MenuItemID: 2, Qty: 1, UnitPrice: money.MustFromString("15.50"), DiscountAmount: money.MustFromString("1.55"), SubTotal: money.MustFromString("13.95")},
		},
	}
	bill := model.Bill{
		ID:            11,
		OrderID:       7,
		SubTotal:      money.MustFromString("43.95"),
		DiscountValue: money.MustFromString("10"),
		DiscountType:  model.DiscountPercentage,
		ServiceCharge: money.MustFromString("5.00"),
		TaxPct:        money.MustFromString("13.00"),
		TaxAmount:     money.MustFromString("5.79"),
		GrandTotal:    money.MustFromString("50.35"),
	}

	path, err := g.Generate(bill, order, map[uint64]string{1: "Margherita", 2: "Pad Thai"})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	body, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read receipt: %v", err)
	}
	text := string(body)

	for _, want := range []string{
		"RECEIPT #11",
		"Order #7 | Table #3",
		"Margherita",
		"Pad Thai",
		"promo discount        -1.55",
		"Service charge",
		"50.35",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("receipt missing %q\n%s", want, text)
		}
	}
}

func TestFileGeneratorUnknownItemName(t *testing.T) {
	g := NewFileGenerator(t.TempDir())
	order := model.Order{
		ID:      1,
		TableID: 1,
		Items: []model.OrderItem{
			{MenuItemID: 99, Qty: 1, UnitPrice: money.MustFromString("9.00"), SubTotal: money.MustFromString("9.00")},
		},
	}
	bill := model.Bill{
		ID:            2,
		OrderID:       1,
		SubTotal:      money.MustFromString("9.00"),
		DiscountType:  model.DiscountFlat,
		ServiceCharge: money.MustFromString("5.00"),
		TaxPct:        money.MustFromString("13.00"),
		TaxAmount:     money.MustFromString("1.82"),
		GrandTotal:    money.MustFromString("15.82"),
	}

	path, err := g.Generate(bill, order, nil)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	body, _ := os.ReadFile(path)
	if !strings.Contains(string(body), "item #99") {
		t.Errorf("expected placeholder name for unknown item, got:\n%s", body)
	}
}
