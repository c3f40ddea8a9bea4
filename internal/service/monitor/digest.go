package monitor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/KNICEX/stock-monitor/internal/entity"
	"github.com/KNICEX/stock-monitor/internal/schedule"
	"github.com/KNICEX/stock-monitor/internal/service/market"
	"github.com/KNICEX/stock-monitor/internal/service/notification"
	"github.com/KNICEX/stock-monitor/pkg/decimalx"
)

var _ schedule.Task = (*Digest)(nil)

// Digest 收盘后推送两个监控列表的行情汇总, 复用 Task 的数据源和通知, 不经过 Tracker
type Digest struct {
	task *Task
}

func NewDigest(task *Task) *Digest {
	return &Digest{task: task}
}

func (d *Digest) Name() string {
	return "daily digest"
}

func (d *Digest) Run(ctx context.Context) error {
	now := d.task.now()
	if !d.task.hours.TradingDay(now) {
		slog.Debug("not a trading day, digest skipped")
		return nil
	}
	priceEntries, maEntries, err := d.task.Watchlists(ctx)
	if err != nil {
		return err
	}

	var errs []error
	if len(priceEntries) > 0 {
		text := d.priceSummary(ctx, now, priceEntries)
		if err = d.task.notifier.Send(ctx, notification.ChannelPrice, text); err != nil {
			errs = append(errs, fmt.Errorf("send price digest: %w", err))
		}
	}
	if len(maEntries) > 0 {
		text := d.maSummary(ctx, now, maEntries)
		if err = d.task.notifier.Send(ctx, notification.ChannelMA, text); err != nil {
			errs = append(errs, fmt.Errorf("send ma digest: %w", err))
		}
	}
	return errors.Join(errs...)
}

func (d *Digest) priceSummary(ctx context.Context, now time.Time, entries []entity.WatchEntry) string {
	var sb strings.Builder
	sb.WriteString("📋 价格监控收盘汇总 " + now.Format(time.DateOnly) + "\n")
	for _, e := range entries {
		q, ok := d.quote(ctx, e)
		sb.WriteString("- " + e.DisplayName())
		if !ok {
			sb.WriteString(" 获取行情失败\n")
			continue
		}
		sb.WriteString(fmt.Sprintf(" %s (%s%%)", decimalx.Price(q.CurrentPrice), signed(q.ChangePct.StringFixed(2))))
		if e.HasThreshold() {
			distance := decimalx.ChangePct(q.CurrentPrice, *e.MonitorPrice)
			sb.WriteString(fmt.Sprintf(" 监控价 %s 距离 %s%%", decimalx.Price(*e.MonitorPrice), signed(distance.StringFixed(2))))
		}
		sb.WriteString("\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}

func (d *Digest) maSummary(ctx context.Context, now time.Time, entries []entity.WatchEntry) string {
	var sb strings.Builder
	sb.WriteString("📋 均线监控收盘汇总 " + now.Format(time.DateOnly) + "\n")
	for _, e := range entries {
		q, ok := d.quote(ctx, e)
		sb.WriteString("- " + e.DisplayName())
		if !ok {
			sb.WriteString(" 获取行情失败\n")
			continue
		}
		sb.WriteString(fmt.Sprintf(" %s (%s%%) MA5 %s MA10 %s\n",
			decimalx.Price(q.CurrentPrice), signed(q.ChangePct.StringFixed(2)),
			decimalx.Price(q.MA5), decimalx.Price(q.MA10)))
	}
	return strings.TrimRight(sb.String(), "\n")
}

func (d *Digest) quote(ctx context.Context, e entity.WatchEntry) (market.Quote, bool) {
	q, err := d.task.fetch(ctx, e.Code)
	if err != nil {
		slog.Warn("digest fetch quote failed", "code", e.Code, "error", err)
		return market.Quote{}, false
	}
	return q, true
}

func signed(s string) string {
	if strings.HasPrefix(s, "-") {
		return s
	}
	return "+" + s
}
