package format

import (
	"strings"

	"inventoritoko/internal/models"

	"github.com/shopspring/decimal"
)

// AmountSource says where a coerced amount came from.
type AmountSource int

const (
	// AmountParsed means the raw text was numeric.
	AmountParsed AmountSource = iota
	// AmountAbsent means there was no value at all.
	AmountAbsent
	// AmountInvalid means a value was present but not numeric; the amount is a
	// fallback zero.
	AmountInvalid
)

func (s AmountSource) String() string {
	switch s {
	case AmountParsed:
		return "parsed"
	case AmountAbsent:
		return "absent"
	case AmountInvalid:
		return "invalid"
	default:
		return "unknown"
	}
}

// ParseAmount converts a raw monetary string into a decimal. It never fails:
// absent or non-numeric input yields zero together with the reason, so callers
// can log a fallback zero differently from a real zero.
func ParseAmount(raw models.NullString) (decimal.Decimal, AmountSource) {
	if !raw.Valid {
		return decimal.Zero, AmountAbsent
	}
	d, err := decimal.NewFromString(strings.TrimSpace(raw.String))
	if err != nil {
		return decimal.Zero, AmountInvalid
	}
	return d, AmountParsed
}

// CoerceAmount is ParseAmount without the diagnostics.
func CoerceAmount(raw models.NullString) decimal.Decimal {
	d, _ := ParseAmount(raw)
	return d
}

// LooksLikeZero reports whether the raw text spells a zero amount in a form
// the parser rejects, like "0,00", "Rp0" or "Rp 0,00". Such values are
// coerced to zero without being suspicious.
func LooksLikeZero(raw string) bool {
	s := strings.TrimSpace(raw)
	s = strings.TrimLeft(s, "+-")
	if len(s) >= len(CurrencySymbol) && strings.EqualFold(s[:len(CurrencySymbol)], CurrencySymbol) {
		s = strings.TrimSpace(s[len(CurrencySymbol):])
	}
	s = strings.NewReplacer(".", "", ",", "").Replace(s)
	return s != "" && strings.Trim(s, "0") == ""
}
