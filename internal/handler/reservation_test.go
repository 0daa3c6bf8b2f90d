package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
)

func newTestContext(t *testing.T, method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return echo.New().NewContext(req, rec), rec
}

func TestCreateReservationRejectsPastStart(t *testing.T) {
	h := NewReservationHandler(nil, nil, nil)
	past := time.Now().UTC().Add(-2 * time.Hour).Format(time.RFC3339)
	c, rec := newTestContext(t, http.MethodPost, "/v1/reservations",
		`{"table_id":1,"guest_name":"Dana","guests":2,"reserved_at":"`+past+`"}`)

	if err := h.Create(c); err != nil {
		t.Fatalf("Create returned %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
	if !strings.Contains(rec.Body.String(), "reserved_at must be in the future") {
		t.Fatalf("body = %s, want past-start rejection", rec.Body.String())
	}
}

func TestCreateReservationRejectsNegativeDuration(t *testing.T) {
	h := NewReservationHandler(nil, nil, nil)
	future := time.Now().UTC().Add(3 * time.Hour).Format(time.RFC3339)
	c, rec := newTestContext(t, http.MethodPost, "/v1/reservations",
		`{"table_id":1,"guest_name":"Dana","guests":2,"reserved_at":"`+future+`","duration_minutes":-30}`)

	if err := h.Create(c); err != nil {
		t.Fatalf("Create returned %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
	if !strings.Contains(rec.Body.String(), "duration_minutes") {
		t.Fatalf("body = %s, want duration rejection", rec.Body.String())
	}
}
