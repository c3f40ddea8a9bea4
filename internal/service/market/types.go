package market

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrQuoteNotFound  = errors.New("quote not found")
	ErrMalformedQuote = errors.New("malformed quote payload")
)

// Quote 单只股票的实时行情, 每轮重新获取, 不落盘
type Quote struct {
	Code         string          `json:"code"`
	Name         string          `json:"name"`
	CurrentPrice decimal.Decimal `json:"current_price"`
	OpenPrice    decimal.Decimal `json:"open_price"`
	PrevClose    decimal.Decimal `json:"prev_close"`
	MA5          decimal.Decimal `json:"ma5"`
	MA10         decimal.Decimal `json:"ma10"`
	TurnoverRate decimal.Decimal `json:"turnover_rate"` // 换手率 %
	Volume       decimal.Decimal `json:"volume"`        // 成交量 手
	Amount       decimal.Decimal `json:"amount"`        // 成交额 万元
	ChangePct    decimal.Decimal `json:"change_pct"`    // 今日涨跌幅 %
	// YesterdayChangePct 昨日涨跌幅 %, 前日收盘价缺失时为 0
	YesterdayChangePct decimal.Decimal `json:"yesterday_change_pct"`
	FetchedAt          time.Time       `json:"fetched_at"`
}

type Fetcher interface {
	Fetch(ctx context.Context, code string) (Quote, error)
}

// ExchangeSymbol 6/9/5 开头为沪市, 4/8 开头为北交所, 其余按深市处理.
// 已带 sh/sz/bj 前缀的代码原样返回.
func ExchangeSymbol(code string) string {
	code = strings.ToLower(strings.TrimSpace(code))
	if code == "" {
		return code
	}
	for _, prefix := range []string{"sh", "sz", "bj"} {
		if strings.HasPrefix(code, prefix) {
			return code
		}
	}
	switch code[0] {
	case '6', '9', '5':
		return "sh" + code
	case '4', '8':
		return "bj" + code
	default:
		return "sz" + code
	}
}
