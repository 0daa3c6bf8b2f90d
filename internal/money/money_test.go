package money

import (
	"encoding/json"
	"testing"
)

func TestArithmeticIsExact(t *testing.T) {
	// 0.1 + 0.2 must be exactly 0.3, which rules out binary floats.
	a := MustFromString("0.1")
	b := MustFromString("0.2")
	if got := a.Add(b); !got.Equal(MustFromString("0.3")) {
		t.Fatalf("0.1 + 0.2 = %s, want 0.3", got)
	}

	unit := MustFromString("15.00")
	if got := unit.MulInt(2); !got.Equal(MustFromString("30.00")) {
		t.Fatalf("2 x 15.00 = %s, want 30.00", got)
	}

	sub := MustFromString("45.50")
	if got := sub.PercentOf(MustFromString("10")); !got.Equal(MustFromString("4.55")) {
		t.Fatalf("10%% of 45.50 = %s, want 4.55", got)
	}
}

// The rounding rule for the whole codebase is half-up: halves round
// away from zero, applied only at currency (2dp) boundaries.
func TestRoundCurrencyHalfUp(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"51.9235", "51.92"},
		{"5.9735", "5.97"},
		{"1.005", "1.01"},
		{"1.004", "1.00"},
		{"-1.005", "-1.01"},
		{"2.675", "2.68"},
	}
	for _, tt := range cases {
		got := MustFromString(tt.in).RoundCurrency().StringFixed()
		if got != tt.want {
			t.Errorf("RoundCurrency(%s) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestJSONRoundTrip(t *testing.T) {
	out, err := json.Marshal(MustFromString("51.9235"))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(out) != `"51.92"` {
		t.Fatalf("marshal = %s, want \"51.92\"", out)
	}

	var m Money
	if err := json.Unmarshal([]byte(`"45.50"`), &m); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !m.Equal(MustFromString("45.5")) {
		t.Fatalf("unmarshal = %s, want 45.50", m)
	}
}

func TestScanDecimalColumn(t *testing.T) {
	var m Money
	if err := m.Scan([]byte("123.4500")); err != nil {
		t.Fatalf("scan bytes: %v", err)
	}
	if !m.Equal(MustFromString("123.45")) {
		t.Fatalf("scan = %s, want 123.45", m)
	}

	v, err := m.Value()
	if err != nil {
		t.Fatalf("value: %v", err)
	}
	if v != "123.45" {
		t.Fatalf("value = %v, want 123.45", v)
	}
}
