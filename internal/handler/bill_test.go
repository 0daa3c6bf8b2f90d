package handler

import (
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/iliyamo/restaurant-table-reservation/internal/config"
	"github.com/iliyamo/restaurant-table-reservation/internal/repository"
)

// Settling a bill twice is a conflict, not a missing bill.  The paid
// flag is read through the settlement transaction's own row lock.
func TestPayBillAlreadyPaidConflicts(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	now := time.Now().UTC()
	cols := []string{"id", "order_id", "sub_total", "discount_value", "discount_type",
		"service_charge", "tax_pct", "tax_amount", "grand_total", "payment_mode",
		"is_paid", "paid_at", "pdf_url", "created_at", "updated_at"}
	mock.ExpectBegin()
	mock.ExpectQuery("FROM bills").
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow(5, 7, []byte("40.00"), []byte("0.00"), "FLAT", []byte("5.00"),
				[]byte("13.00"), []byte("5.85"), []byte("50.85"), "CASH", true, now, nil, now, now))
	mock.ExpectRollback()

	h := NewBillHandler(config.Config{},
		repository.NewTableRepo(db),
		repository.NewOrderRepo(db),
		repository.NewBillRepo(db),
		repository.NewMenuRepo(db),
		repository.NewTableEventRepo(db),
		nil,
	)
	c, rec := newTestContext(t, http.MethodPost, "/v1/bills/5/pay", `{"payment_mode":"CASH"}`)
	c.SetParamNames("id")
	c.SetParamValues("5")
	c.Set("staff_id", uint64(3))

	if err := h.Pay(c); err != nil {
		t.Fatalf("Pay returned %v", err)
	}
	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusConflict)
	}
	if !strings.Contains(rec.Body.String(), "bill already paid") {
		t.Fatalf("body = %s, want already-paid rejection", rec.Body.String())
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
