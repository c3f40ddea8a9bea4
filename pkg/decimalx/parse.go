package decimalx

import (
	"strings"

	"github.com/shopspring/decimal"
)

// FromStringOr 空串或无法解析时返回 fallback
func FromStringOr(s string, fallback decimal.Decimal) decimal.Decimal {
	s = strings.TrimSpace(s)
	if s == "" {
		return fallback
	}
	res, err := decimal.NewFromString(s)
	if err != nil {
		return fallback
	}
	return res
}
