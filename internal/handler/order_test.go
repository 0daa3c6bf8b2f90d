package handler

import (
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/iliyamo/restaurant-table-reservation/internal/model"
	"github.com/iliyamo/restaurant-table-reservation/internal/repository"
)

// A table that is mid-service takes no further orders; guests at an
// OCCUPIED table get a conflict, not a second seating.
func TestPlaceOrderRejectsOccupiedTable(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	now := time.Now().UTC()
	mock.ExpectQuery("FROM menu_items").
		WillReturnRows(sqlmock.NewRows([]string{"id", "price", "promo_pct", "promo_starts_at", "promo_ends_at"}).
			AddRow(1, []byte("15.00"), nil, nil, nil))
	mock.ExpectBegin()
	mock.ExpectQuery("FROM tables").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "seats", "status", "assigned_waiter_id", "created_at", "updated_at", "deleted_at"}).
			AddRow(1, "T1", 4, model.TableOccupied, nil, now, now, nil))
	mock.ExpectRollback()

	h := NewOrderHandler(
		repository.NewTableRepo(db),
		repository.NewOrderRepo(db),
		repository.NewMenuRepo(db),
		repository.NewStaffRepo(db),
		repository.NewTableEventRepo(db),
	)
	c, rec := newTestContext(t, http.MethodPost, "/v1/qr/orders",
		`{"table_id":1,"items":[{"menu_item_id":1,"qty":1}]}`)

	if err := h.PlaceQR(c); err != nil {
		t.Fatalf("PlaceQR returned %v", err)
	}
	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusConflict)
	}
	if !strings.Contains(rec.Body.String(), "cannot take orders") {
		t.Fatalf("body = %s, want occupied-table rejection", rec.Body.String())
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
