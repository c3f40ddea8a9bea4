package decimalx

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// Price 价格统一保留两位小数展示
func Price(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// ChangePct (cur - base) / base * 100, base 为 0 时返回 0
func ChangePct(cur, base decimal.Decimal) decimal.Decimal {
	if base.IsZero() {
		return decimal.Zero
	}
	return cur.Sub(base).Div(base).Mul(hundred).Round(2)
}
