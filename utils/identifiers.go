package utils

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/radhian/billing-reconciliation/consts"
)

var accountSeparators = strings.NewReplacer(" ", "", "\u00a0", "", "-", "", "'", "")

// NormalizeAccountID converts a numeric or free-text account number into the
// canonical zero-padded form. It reports false when the value is blank, not an
// integer, negative, or wider than the canonical width.
func NormalizeAccountID(raw string) (string, bool) {
	clean := accountSeparators.Replace(strings.TrimSpace(raw))
	if clean == "" {
		return "", false
	}
	n, ok := parseWhole(clean)
	if !ok {
		return "", false
	}
	digits := n.String()
	if len(digits) > consts.AccountIDWidth {
		return "", false
	}
	return strings.Repeat("0", consts.AccountIDWidth-len(digits)) + digits, true
}

// IsCanonicalAccountID reports whether s is exactly twelve ASCII digits.
func IsCanonicalAccountID(s string) bool {
	if len(s) != consts.AccountIDWidth {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

var maxSapID = decimal.NewFromInt(math.MaxInt64)

// ParseSapID parses an integer SAP identifier, accepting float renderings like "123.0".
// Values that do not fit in an int64 are rejected.
func ParseSapID(raw string) (int64, bool) {
	clean := strings.TrimSpace(raw)
	if clean == "" {
		return 0, false
	}
	n, ok := parseWhole(clean)
	if !ok || n.GreaterThan(maxSapID) {
		return 0, false
	}
	return n.IntPart(), true
}

// ParseAmount parses a currency amount. Blank cells are zero.
func ParseAmount(raw string) (decimal.Decimal, error) {
	clean := strings.TrimSpace(raw)
	if clean == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(clean)
}

// RoundCost applies the half-even rounding used for every persisted amount.
func RoundCost(d decimal.Decimal) decimal.Decimal {
	return d.RoundBank(consts.CostPrecision)
}

// FormatCost renders an amount with the fixed cost precision.
func FormatCost(d decimal.Decimal) string {
	return RoundCost(d).StringFixed(consts.CostPrecision)
}

func parseWhole(s string) (decimal.Decimal, bool) {
	n, err := decimal.NewFromString(s)
	if err != nil || n.IsNegative() || !n.Equal(n.Truncate(0)) {
		return decimal.Zero, false
	}
	return n.Truncate(0), true
}

// StringPtr returns nil for blank values.
func StringPtr(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func Int64Ptr(v int64) *int64 {
	return &v
}

func Deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
