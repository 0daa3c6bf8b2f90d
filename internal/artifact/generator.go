// Package artifact renders printable receipts for settled bills.
package artifact

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/iliyamo/restaurant-table-reservation/internal/model"
)

// Generator renders a receipt for a bill and returns a URL or path
// where the artifact can be fetched.  Generation happens after the
// billing transaction commits; a failure leaves the bill valid with no
// artifact attached.
type Generator interface {
	Generate(bill model.Bill, order model.Order, itemNames map[uint64]string) (string, error)
}

// FileGenerator writes plain-text receipts under a local directory.
// Swapping in a PDF service means implementing Generator and wiring it
// in main.
type FileGenerator struct {
	Dir string
}

// NewFileGenerator returns a FileGenerator rooted at dir, defaulting
// to "receipts".
func NewFileGenerator(dir string) *FileGenerator {
	if dir == "" {
		dir = "receipts"
	}
	return &FileGenerator{Dir: dir}
}

// Generate renders the receipt and returns its relative path.
func (g *FileGenerator) Generate(bill model.Bill, order model.Order, itemNames map[uint64]string) (string, error) {
	if err := os.MkdirAll(g.Dir, 0o755); err != nil {
		return "", fmt.Errorf("mkdir receipts: %w", err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "RECEIPT #%d\n", bill.ID)
	fmt.Fprintf(&b, "Order #%d | Table #%d\n", order.ID, order.TableID)
	fmt.Fprintf(&b, "Issued %s\n", time.Now().UTC().Format("2006-01-02 15:04:05 MST"))
	b.WriteString(strings.Repeat("-", 40) + "\n")
	for _, it := range order.Items {
		name := itemNames[it.MenuItemID]
		if name == "" {
			name = fmt.Sprintf("item #%d", it.MenuItemID)
		}
		fmt.Fprintf(&b, "%-24s %2dx %8s\n", name, it.Qty, it.SubTotal.StringFixed())
		if !it.DiscountAmount.IsZero() {
			fmt.Fprintf(&b, "  promo discount        -%s\n", it.DiscountAmount.StringFixed())
		}
	}
	b.WriteString(strings.Repeat("-", 40) + "\n")
	fmt.Fprintf(&b, "%-28s %10s\n", "Subtotal", bill.SubTotal.StringFixed())
	if !bill.DiscountValue.IsZero() {
		label := "Discount"
		if bill.DiscountType == model.DiscountPercentage {
			label = fmt.Sprintf("Discount (%s%%)", bill.DiscountValue.StringFixed())
		}
		fmt.Fprintf(&b, "%-28s %10s\n", label, bill.DiscountValue.StringFixed())
	}
	fmt.Fprintf(&b, "%-28s %10s\n", "Service charge", bill.ServiceCharge.StringFixed())
	fmt.Fprintf(&b, "%-28s %10s\n", fmt.Sprintf("Tax (%s%%)", bill.TaxPct.StringFixed()), bill.TaxAmount.StringFixed())
	fmt.Fprintf(&b, "%-28s %10s\n", "TOTAL", bill.GrandTotal.StringFixed())

	name := fmt.Sprintf("receipt-%d-%d.txt", bill.ID, time.Now().UTC().Unix())
	fpath := filepath.Join(g.Dir, name)
	if err := os.WriteFile(fpath, []byte(b.String()), 0o644); err != nil {
		return "", fmt.Errorf("write receipt: %w", err)
	}
	return fpath, nil
}
