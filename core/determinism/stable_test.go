package determinism

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestFormatMoney(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"0", "$0.00"},
		{"12.345", "$12.35"},
		{"999.994", "$999.99"},
		{"1234567.891", "$1,234,567.89"},
		{"-4500", "-$4,500.00"},
	}
	for _, tt := range tests {
		if got := FormatMoney(decimal.RequireFromString(tt.in)); got != tt.want {
			t.Errorf("FormatMoney(%s) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatPercent(t *testing.T) {
	if got := FormatPercent(decimal.RequireFromString("38")); got != "+38.0%" {
		t.Errorf("got %q", got)
	}
	if got := FormatPercent(decimal.Zero); got != "0.0%" {
		t.Errorf("got %q", got)
	}
}

func TestSortSliceIsStable(t *testing.T) {
	type entry struct {
		name  string
		score int
	}
	in := []entry{{"a", 80}, {"b", 90}, {"c", 80}, {"d", 90}}
	SortSlice(in, func(x, y entry) bool { return x.score > y.score })

	want := []string{"b", "d", "a", "c"}
	for i, e := range in {
		if e.name != want[i] {
			t.Fatalf("order = %v, want %v", in, want)
		}
	}
}

func TestFingerprintOf(t *testing.T) {
	type input struct {
		Category string
		Size     float64
	}
	a, err := FingerprintOf("project", input{"commercial", 15000})
	if err != nil {
		t.Fatal(err)
	}
	b, _ := FingerprintOf("project", input{"commercial", 15000})
	c, _ := FingerprintOf("project", input{"commercial", 15001})

	if a != b {
		t.Errorf("equal inputs gave %s and %s", a, b)
	}
	if a == c {
		t.Errorf("different inputs collided: %s", a)
	}
	if len(a) != 16 {
		t.Errorf("fingerprint length = %d, want 16", len(a))
	}
}
