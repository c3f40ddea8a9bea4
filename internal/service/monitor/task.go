package monitor

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/KNICEX/stock-monitor/internal/entity"
	"github.com/KNICEX/stock-monitor/internal/metrics"
	"github.com/KNICEX/stock-monitor/internal/repo"
	"github.com/KNICEX/stock-monitor/internal/schedule"
	"github.com/KNICEX/stock-monitor/internal/service/market"
	"github.com/KNICEX/stock-monitor/internal/service/notification"
)

const defaultFetchTimeout = 10 * time.Second

var _ schedule.Task = (*Task)(nil)

// CycleReport 一轮检查的统计
type CycleReport struct {
	At           time.Time
	Skipped      bool
	Entries      int
	Fetched      int
	FetchFailed  int
	Sent         int
	Suppressed   int
	Throttled    int
	NotifyFailed int
	Err          error
}

func (r CycleReport) result() string {
	switch {
	case r.Err != nil:
		return "failed"
	case r.Skipped:
		return "skipped"
	default:
		return "ok"
	}
}

// Task 一轮监控检查: 读取监控列表, 拉取行情, 判断并发送预警
type Task struct {
	priceRepo repo.WatchlistRepo
	maRepo    repo.WatchlistRepo
	alertRepo repo.AlertRepo

	fetcher  market.Fetcher
	notifier notification.Notifier
	tracker  *Tracker
	hours    schedule.Hours

	fetchTimeout time.Duration
	now          func() time.Time
}

type TaskOption func(t *Task)

func WithPriceWatchlist(r repo.WatchlistRepo) TaskOption {
	return func(t *Task) {
		t.priceRepo = r
	}
}

func WithMAWatchlist(r repo.WatchlistRepo) TaskOption {
	return func(t *Task) {
		t.maRepo = r
	}
}

// WithAlertRepo 送达的预警写入历史表
func WithAlertRepo(r repo.AlertRepo) TaskOption {
	return func(t *Task) {
		t.alertRepo = r
	}
}

func WithPolicy(p Policy) TaskOption {
	return func(t *Task) {
		t.tracker = NewTracker(p)
	}
}

func WithHours(h schedule.Hours) TaskOption {
	return func(t *Task) {
		t.hours = h
	}
}

func WithFetchTimeout(d time.Duration) TaskOption {
	return func(t *Task) {
		if d > 0 {
			t.fetchTimeout = d
		}
	}
}

func WithClock(now func() time.Time) TaskOption {
	return func(t *Task) {
		t.now = now
	}
}

func NewTask(fetcher market.Fetcher, notifier notification.Notifier, opts ...TaskOption) *Task {
	t := &Task{
		fetcher:      fetcher,
		notifier:     notifier,
		tracker:      NewTracker(DefaultPolicy()),
		hours:        schedule.NewHours(nil),
		fetchTimeout: defaultFetchTimeout,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *Task) Name() string {
	return "stock monitor cycle"
}

func (t *Task) Run(ctx context.Context) error {
	report := t.Cycle(ctx)
	metrics.CyclesTotal.WithLabelValues(report.result()).Inc()
	if report.Skipped {
		slog.Debug("not trading time, cycle skipped", "at", report.At)
		return nil
	}
	if report.Err == nil {
		slog.Info("monitor cycle done",
			"entries", report.Entries,
			"fetched", report.Fetched,
			"fetch_failed", report.FetchFailed,
			"sent", report.Sent,
			"suppressed", report.Suppressed,
			"throttled", report.Throttled,
			"notify_failed", report.NotifyFailed,
		)
	}
	return report.Err
}

func (t *Task) Tracker() *Tracker {
	return t.tracker
}

// Watchlists 读取已启用的监控列表, 未配置的列表返回空
func (t *Task) Watchlists(ctx context.Context) (priceEntries, maEntries []entity.WatchEntry, err error) {
	if t.priceRepo != nil {
		if priceEntries, err = t.priceRepo.List(ctx); err != nil {
			return nil, nil, fmt.Errorf("load price watchlist: %w", err)
		}
	}
	if t.maRepo != nil {
		if maEntries, err = t.maRepo.List(ctx); err != nil {
			return nil, nil, fmt.Errorf("load ma watchlist: %w", err)
		}
	}
	return priceEntries, maEntries, nil
}

func (t *Task) Cycle(ctx context.Context) CycleReport {
	now := t.now()
	report := CycleReport{At: now}

	priceEntries, maEntries, err := t.Watchlists(ctx)
	if err != nil {
		report.Err = err
		return report
	}
	report.Entries = len(priceEntries) + len(maEntries)

	if !t.hours.Open(now) {
		report.Skipped = true
		return report
	}

	day := t.hours.Day(now)
	if pruned := t.tracker.Rollover(day); pruned > 0 {
		slog.Info("previous day ma alert records pruned", "day", day, "count", pruned)
	}

	quotes := newQuoteCache(t, &report)
	for _, entry := range priceEntries {
		quote, ok := quotes.get(ctx, entry)
		if !ok {
			continue
		}
		if alert, ok := PriceAlert(entry, quote); ok {
			t.dispatch(ctx, alert, &report)
		}
	}
	for _, entry := range maEntries {
		quote, ok := quotes.get(ctx, entry)
		if !ok {
			continue
		}
		for _, alert := range MAAlerts(entry, quote, day) {
			t.dispatch(ctx, alert, &report)
		}
	}
	return report
}

func (t *Task) fetch(ctx context.Context, code string) (market.Quote, error) {
	ctx, cancel := context.WithTimeout(ctx, t.fetchTimeout)
	defer cancel()
	return t.fetcher.Fetch(ctx, code)
}

func (t *Task) dispatch(ctx context.Context, alert Alert, report *CycleReport) {
	now := t.now()
	switch t.tracker.Check(alert.Key, now) {
	case DecisionSuppressed:
		report.Suppressed++
		metrics.AlertsDroppedTotal.WithLabelValues(DecisionSuppressed.String()).Inc()
		return
	case DecisionThrottled:
		report.Throttled++
		metrics.AlertsDroppedTotal.WithLabelValues(DecisionThrottled.String()).Inc()
		slog.Info("alert throttled, last message sent too recently",
			"code", alert.Entry.Code, "kind", alert.Kind, "last_sent_at", t.tracker.LastSentAt())
		return
	}

	text := alert.Message(now)
	if err := t.notifier.Send(ctx, alert.Channel(), text); err != nil {
		report.NotifyFailed++
		metrics.AlertsDroppedTotal.WithLabelValues("notify_failed").Inc()
		slog.Error("send alert failed", "code", alert.Entry.Code, "kind", alert.Kind, "error", err)
		return
	}
	t.tracker.MarkSent(alert.Key, now)
	report.Sent++
	metrics.AlertsSentTotal.WithLabelValues(string(alert.Kind)).Inc()
	slog.Info("alert sent", "code", alert.Entry.Code, "kind", alert.Kind,
		"price", alert.Quote.CurrentPrice, "reference", alert.Reference)

	if t.alertRepo != nil {
		if _, err := t.alertRepo.Create(ctx, alert.Event(text, now)); err != nil {
			slog.Error("save alert event failed", "code", alert.Entry.Code, "error", err)
		}
	}
}

// quoteCache 同一轮内同一代码只拉取一次, 失败的代码本轮不再重试
type quoteCache struct {
	task   *Task
	report *CycleReport
	quotes map[string]market.Quote
	failed map[string]struct{}
}

func newQuoteCache(task *Task, report *CycleReport) *quoteCache {
	return &quoteCache{
		task:   task,
		report: report,
		quotes: make(map[string]market.Quote),
		failed: make(map[string]struct{}),
	}
}

func (c *quoteCache) get(ctx context.Context, entry entity.WatchEntry) (market.Quote, bool) {
	if q, ok := c.quotes[entry.Code]; ok {
		return q, true
	}
	if _, ok := c.failed[entry.Code]; ok {
		return market.Quote{}, false
	}
	q, err := c.task.fetch(ctx, entry.Code)
	if err != nil {
		c.failed[entry.Code] = struct{}{}
		c.report.FetchFailed++
		metrics.FetchFailuresTotal.Inc()
		slog.Warn("fetch quote failed", "code", entry.Code, "name", entry.Name, "error", err)
		return market.Quote{}, false
	}
	c.quotes[entry.Code] = q
	c.report.Fetched++
	return q, true
}
