package middleware

import (
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/restaurant-table-reservation/internal/config"
)

func newTestContext(t *testing.T) echo.Context {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest("GET", "/v1/tables", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/v1/tables")
	return c
}

func TestCallerID(t *testing.T) {
	cases := []struct {
		name string
		set  interface{}
		want string
	}{
		{"absent", nil, "guest"},
		{"float64 claim", float64(42), "42"},
		{"string claim", "7", "7"},
		{"uint64", uint64(9), "9"},
		{"empty string", "", "guest"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := newTestContext(t)
			if tc.set != nil {
				c.Set("staff_id", tc.set)
			}
			if got := callerID(c); got != tc.want {
				t.Errorf("callerID = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestBuildRateKeyStrategies(t *testing.T) {
	cfg := config.RateLimitConfig{Prefix: "rl", KeyStrategy: "route"}
	c := newTestContext(t)
	if got := buildRateKey(cfg, c); got != "rl:route:GET /v1/tables" {
		t.Errorf("route key = %q", got)
	}

	cfg.KeyStrategy = "user"
	c.Set("staff_id", float64(5))
	if got := buildRateKey(cfg, c); got != "rl:user:5" {
		t.Errorf("user key = %q", got)
	}
}

func TestTokenBucketDisabledIsPassThrough(t *testing.T) {
	mw := NewTokenBucket(config.RateLimitConfig{Enabled: false}, nil)
	called := false
	h := mw(func(c echo.Context) error {
		called = true
		return nil
	})
	if err := h(newTestContext(t)); err != nil {
		t.Fatalf("handler: %v", err)
	}
	if !called {
		t.Error("next handler not invoked")
	}
}
