// Package determinism provides primitives for deterministic estimation:
// presentation-only rounding, stable ordering and input fingerprints.
package determinism

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// Cents rounds an amount to two decimals. Use it only when presenting a value;
// intermediate aggregation stays at full precision.
func Cents(amount decimal.Decimal) decimal.Decimal {
	return amount.Round(2)
}

// FormatMoney renders an amount as $1,234,567.89
func FormatMoney(amount decimal.Decimal) string {
	s := amount.StringFixed(2)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")

	whole, frac, _ := strings.Cut(s, ".")
	var b strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}

	out := "$" + b.String() + "." + frac
	if neg {
		return "-" + out
	}
	return out
}

// FormatPercent renders a percentage with one decimal and an explicit sign
func FormatPercent(pct decimal.Decimal) string {
	s := pct.StringFixed(1) + "%"
	if pct.IsPositive() {
		return "+" + s
	}
	return s
}

// SortSlice sorts a slice in a stable, deterministic manner. Elements that
// compare equal keep their input order.
func SortSlice[T any](slice []T, less func(a, b T) bool) {
	sort.SliceStable(slice, func(i, j int) bool {
		return less(slice[i], slice[j])
	})
}

// Fingerprint is a content hash of an estimation input
type Fingerprint string

// FingerprintOf hashes the JSON encoding of v under a namespace. Struct field
// order is fixed, so equal inputs always produce equal fingerprints.
func FingerprintOf(namespace string, v any) (Fingerprint, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	h := sha256.New()
	h.Write([]byte(namespace))
	h.Write([]byte{0})
	h.Write(data)
	return Fingerprint(hex.EncodeToString(h.Sum(nil))[:16]), nil
}
