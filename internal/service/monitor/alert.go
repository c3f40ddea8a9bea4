package monitor

import (
	"fmt"
	"time"

	"github.com/KNICEX/stock-monitor/internal/entity"
	"github.com/KNICEX/stock-monitor/internal/service/market"
	"github.com/KNICEX/stock-monitor/internal/service/notification"
	"github.com/KNICEX/stock-monitor/pkg/decimalx"
	"github.com/shopspring/decimal"
)

// Alert 一次满足条件的预警, 是否真正发出由 Tracker 决定
type Alert struct {
	Kind  AlertKind
	Key   AlertKey
	Entry entity.WatchEntry
	Quote market.Quote
	// Reference 监控价或均线值
	Reference decimal.Decimal
}

func (a Alert) Channel() string {
	if a.Kind == KindPriceBelow {
		return notification.ChannelPrice
	}
	return notification.ChannelMA
}

// Delta 低于参考值的幅度
func (a Alert) Delta() decimal.Decimal {
	return a.Reference.Sub(a.Quote.CurrentPrice).Round(2)
}

func (a Alert) Message(at time.Time) string {
	switch a.Kind {
	case KindPriceBelow:
		return fmt.Sprintf("⚠️ 价格预警\n股票: %s\n当前价格: %s\n监控价格: %s\n低于监控价: %s\n时间: %s",
			a.Entry.DisplayName(), decimalx.Price(a.Quote.CurrentPrice), decimalx.Price(a.Reference),
			decimalx.Price(a.Delta()), at.Format(time.TimeOnly))
	default:
		label := maLabel(a.Kind)
		return fmt.Sprintf("📉 均线预警\n股票: %s\n当前价格: %s\n%s: %s\n低于%s: %s\n时间: %s",
			a.Entry.DisplayName(), decimalx.Price(a.Quote.CurrentPrice), label, decimalx.Price(a.Reference),
			label, decimalx.Price(a.Delta()), at.Format(time.TimeOnly))
	}
}

// Event 送达后写入历史的记录
func (a Alert) Event(text string, at time.Time) entity.AlertEvent {
	return entity.AlertEvent{
		Code:      a.Entry.Code,
		Name:      a.Entry.Name,
		Kind:      string(a.Kind),
		Channel:   a.Channel(),
		Price:     decimalx.Price(a.Quote.CurrentPrice),
		Reference: decimalx.Price(a.Reference),
		Message:   text,
		CreatedAt: at,
	}
}

func maLabel(kind AlertKind) string {
	if kind == KindBelowMA10 {
		return "10日均线"
	}
	return "5日均线"
}

// PriceAlert 当前价严格低于监控价时触发, 未设置监控价的条目不会触发
func PriceAlert(entry entity.WatchEntry, quote market.Quote) (Alert, bool) {
	if !entry.HasThreshold() {
		return Alert{}, false
	}
	threshold := *entry.MonitorPrice
	if !quote.CurrentPrice.LessThan(threshold) {
		return Alert{}, false
	}
	return Alert{
		Kind:      KindPriceBelow,
		Key:       PriceKey(entry.Code, threshold),
		Entry:     entry,
		Quote:     quote,
		Reference: threshold,
	}, true
}

// MAAlerts 当前价低于 5 日/10 日均线时各触发一条, 均线非正数时忽略
func MAAlerts(entry entity.WatchEntry, quote market.Quote, day string) []Alert {
	var alerts []Alert
	for _, rule := range []struct {
		kind AlertKind
		ma   decimal.Decimal
	}{
		{KindBelowMA5, quote.MA5},
		{KindBelowMA10, quote.MA10},
	} {
		if !rule.ma.IsPositive() || !quote.CurrentPrice.LessThan(rule.ma) {
			continue
		}
		alerts = append(alerts, Alert{
			Kind:      rule.kind,
			Key:       MAKey(entry.Code, rule.kind, day),
			Entry:     entry,
			Quote:     quote,
			Reference: rule.ma,
		})
	}
	return alerts
}
