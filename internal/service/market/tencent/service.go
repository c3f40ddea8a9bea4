package tencent

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/KNICEX/stock-monitor/internal/service/market"
	"github.com/KNICEX/stock-monitor/pkg/decimalx"
	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/simplifiedchinese"
)

const (
	DefaultBaseURL = "http://qt.gtimg.cn"

	noneMatchSentinel = "v_pv_none_match"
	minFields         = 46
)

// 接口成交额单位为元
var tenThousand = decimal.NewFromInt(10000)

// 行情字段下标, 以 ~ 分隔
const (
	fieldName      = 1
	fieldCurrent   = 3
	fieldPrevClose = 4
	fieldOpen      = 5
	fieldPrevPrev  = 33 // 前日收盘价
	fieldVolume    = 36
	fieldAmount    = 37
	fieldTurnover  = 38
	fieldMA5       = 48
	fieldMA10      = 49
)

var _ market.Fetcher = (*QuoteService)(nil)

// QuoteService 腾讯行情接口, 返回 GBK 编码的 ~ 分隔文本
type QuoteService struct {
	cli     *resty.Client
	baseURL string
	now     func() time.Time
}

type Option func(s *QuoteService)

func WithBaseURL(url string) Option {
	return func(s *QuoteService) {
		s.baseURL = strings.TrimRight(url, "/")
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *QuoteService) {
		s.now = now
	}
}

func NewQuoteService(cli *resty.Client, opts ...Option) *QuoteService {
	svc := &QuoteService{
		cli:     cli,
		baseURL: DefaultBaseURL,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

func (s *QuoteService) Fetch(ctx context.Context, code string) (market.Quote, error) {
	symbol := market.ExchangeSymbol(code)
	if symbol == "" {
		return market.Quote{}, fmt.Errorf("%w: empty code", market.ErrQuoteNotFound)
	}

	resp, err := s.cli.R().
		SetContext(ctx).
		Get(fmt.Sprintf("%s/q=%s", s.baseURL, symbol))
	if err != nil {
		return market.Quote{}, fmt.Errorf("fetch quote %s: %w", code, err)
	}
	if resp.IsError() {
		return market.Quote{}, fmt.Errorf("fetch quote %s: unexpected status %d", code, resp.StatusCode())
	}

	body, err := simplifiedchinese.GBK.NewDecoder().Bytes(resp.Body())
	if err != nil {
		return market.Quote{}, fmt.Errorf("%w: decode gbk: %v", market.ErrMalformedQuote, err)
	}
	return parseQuote(code, string(body), s.now())
}

func parseQuote(code, payload string, at time.Time) (market.Quote, error) {
	if strings.Contains(payload, noneMatchSentinel) {
		return market.Quote{}, fmt.Errorf("%w: %s", market.ErrQuoteNotFound, code)
	}
	parts := strings.Split(payload, "~")
	if len(parts) < minFields {
		return market.Quote{}, fmt.Errorf("%w: %s has %d fields", market.ErrMalformedQuote, code, len(parts))
	}

	current, err := requiredField(parts, fieldCurrent)
	if err != nil {
		return market.Quote{}, fmt.Errorf("%w: %s current price: %v", market.ErrMalformedQuote, code, err)
	}
	if !current.IsPositive() {
		// 停牌或无成交时接口返回 0
		return market.Quote{}, fmt.Errorf("%w: %s current price %s", market.ErrMalformedQuote, code, current)
	}
	prevClose, err := requiredField(parts, fieldPrevClose)
	if err != nil {
		return market.Quote{}, fmt.Errorf("%w: %s prev close: %v", market.ErrMalformedQuote, code, err)
	}

	quote := market.Quote{
		Code:         code,
		Name:         strings.TrimSpace(parts[fieldName]),
		CurrentPrice: current.Round(2),
		OpenPrice:    optionalField(parts, fieldOpen, decimal.Zero).Round(2),
		PrevClose:    prevClose.Round(2),
		TurnoverRate: optionalField(parts, fieldTurnover, decimal.Zero).Round(2),
		Volume:       optionalField(parts, fieldVolume, decimal.Zero),
		Amount:       optionalField(parts, fieldAmount, decimal.Zero).Div(tenThousand).Round(2),
		// 均线字段缺失时退回当前价, 不会触发均线预警
		MA5:                optionalField(parts, fieldMA5, current).Round(2),
		MA10:               optionalField(parts, fieldMA10, current).Round(2),
		ChangePct:          decimalx.ChangePct(current, prevClose),
		YesterdayChangePct: decimalx.ChangePct(prevClose, optionalField(parts, fieldPrevPrev, prevClose)),
		FetchedAt:          at,
	}
	return quote, nil
}

func requiredField(parts []string, idx int) (decimal.Decimal, error) {
	return decimal.NewFromString(strings.TrimSpace(parts[idx]))
}

func optionalField(parts []string, idx int, fallback decimal.Decimal) decimal.Decimal {
	if idx >= len(parts) {
		return fallback
	}
	return decimalx.FromStringOr(parts[idx], fallback)
}
