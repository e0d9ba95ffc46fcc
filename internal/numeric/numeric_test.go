package numeric

import (
	"errors"
	"testing"
)

func TestCoerce(t *testing.T) {
	tests := []struct {
		name        string
		raw         string
		want        float64
		wantCoerced bool
	}{
		{name: "plain integer", raw: "120", want: 120},
		{name: "decimal", raw: "1.25", want: 1.25},
		{name: "surrounding spaces", raw: "  42 ", want: 42},
		{name: "negative", raw: "-3.5", want: -3.5},
		{name: "exponent", raw: "1e3", want: 1000},
		{name: "explicit zero is not coerced", raw: "0", want: 0},
		{name: "blank", raw: "", want: 0, wantCoerced: true},
		{name: "garbage", raw: "abc", want: 0, wantCoerced: true},
		{name: "numeric prefix", raw: "12abc", want: 12, wantCoerced: true},
		{name: "leading dot prefix", raw: ".5x", want: 0.5, wantCoerced: true},
		{name: "NaN literal", raw: "NaN", want: 0, wantCoerced: true},
		{name: "infinity", raw: "Inf", want: 0, wantCoerced: true},
		{name: "comma decimal keeps prefix", raw: "1,5", want: 1, wantCoerced: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, coerced := Coerce(tt.raw)
			if got != tt.want {
				t.Errorf("Coerce(%q) value = %v, want %v", tt.raw, got, tt.want)
			}
			if coerced != tt.wantCoerced {
				t.Errorf("Coerce(%q) coerced = %v, want %v", tt.raw, coerced, tt.wantCoerced)
			}
		})
	}
}

func TestParseIntOrZero(t *testing.T) {
	cases := map[string]int{
		"24":   24,
		"6.9":  6,
		"-2.5": -2,
		"":     0,
		"x":    0,
	}
	for raw, want := range cases {
		if got := ParseIntOrZero(raw); got != want {
			t.Errorf("ParseIntOrZero(%q) = %d, want %d", raw, got, want)
		}
	}
}

func TestParseStrict(t *testing.T) {
	if v, err := Parse(" 3.75 "); err != nil || v != 3.75 {
		t.Fatalf("Parse(3.75) = %v, %v", v, err)
	}
	for _, raw := range []string{"", "12abc", "NaN", "+Inf"} {
		if _, err := Parse(raw); !errors.Is(err, ErrInvalidNumber) {
			t.Errorf("Parse(%q) error = %v, want ErrInvalidNumber", raw, err)
		}
	}
	if _, err := ParseInt("2026"); err != nil {
		t.Errorf("ParseInt(2026) error = %v", err)
	}
	if _, err := ParseInt("2026.5"); !errors.Is(err, ErrInvalidNumber) {
		t.Errorf("ParseInt(2026.5) error = %v, want ErrInvalidNumber", err)
	}
}
