package report

import (
	"encoding/json"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount coerces an upstream cell value into a non-negative magnitude.
// Grouping separators are stripped, the sign is discarded, and anything that
// does not parse becomes 0. The source platforms encode debit/credit via row
// semantics rather than numeric sign, so the absolute value is the contract.
func ParseAmount(v any) float64 {
	switch x := v.(type) {
	case nil:
		return 0
	case float64:
		return math.Abs(x)
	case float32:
		return math.Abs(float64(x))
	case int:
		return math.Abs(float64(x))
	case int64:
		return math.Abs(float64(x))
	case json.Number:
		return parseAmountString(x.String())
	case string:
		return parseAmountString(x)
	default:
		return 0
	}
}

// IsParseableAmount reports whether a raw cell value carries a numeric
// magnitude at all. Detail-row inclusion treats an explicit "0" as present,
// unlike ParseAmount which maps both "0" and garbage to 0.
func IsParseableAmount(v string) bool {
	s := normalizeNumericString(v)
	if s == "" {
		return false
	}
	_, err := decimal.NewFromString(s)
	return err == nil
}

func parseAmountString(v string) float64 {
	s := normalizeNumericString(v)
	if s == "" {
		return 0
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0
	}
	f, _ := d.Abs().Float64()
	return f
}

func normalizeNumericString(v string) string {
	return strings.ReplaceAll(strings.TrimSpace(v), ",", "")
}
