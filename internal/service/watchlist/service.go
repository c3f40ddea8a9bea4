package watchlist

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/KNICEX/stock-monitor/internal/entity"
	"github.com/KNICEX/stock-monitor/internal/repo"
	"github.com/KNICEX/stock-monitor/internal/service/market"
	"github.com/KNICEX/stock-monitor/internal/service/notification"
	"github.com/KNICEX/stock-monitor/pkg/decimalx"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

var (
	ErrInvalidEntry = errors.New("invalid watch entry")
	ErrNameMismatch = errors.New("stock name does not match code")
)

type Mode string

const (
	ModePrice Mode = "price"
	ModeMA    Mode = "ma"
)

func (m Mode) Channel() string {
	if m == ModeMA {
		return notification.ChannelMA
	}
	return notification.ChannelPrice
}

func (m Mode) label() string {
	if m == ModeMA {
		return "均线监控"
	}
	return "价格监控"
}

// StockData 列表条目加实时行情
type StockData struct {
	market.Quote
	Note         string           `json:"note,omitempty"`
	MonitorPrice *decimal.Decimal `json:"monitor_price,omitempty"`
}

// Service 单个监控列表的增删改查, 修改成功后通知对应的机器人
type Service struct {
	mode     Mode
	repo     repo.WatchlistRepo
	fetcher  market.Fetcher
	notifier notification.Notifier

	verifyName   bool
	concurrency  int
	fetchTimeout time.Duration
}

type Option func(s *Service)

// WithNameVerification 添加时用行情接口返回的名称校验代码和名称是否匹配
func WithNameVerification(enabled bool) Option {
	return func(s *Service) {
		s.verifyName = enabled
	}
}

func WithSnapshotConcurrency(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

func WithFetchTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.fetchTimeout = d
		}
	}
}

func NewService(mode Mode, r repo.WatchlistRepo, fetcher market.Fetcher, notifier notification.Notifier, opts ...Option) *Service {
	s := &Service{
		mode:         mode,
		repo:         r,
		fetcher:      fetcher,
		notifier:     notifier,
		concurrency:  4,
		fetchTimeout: 10 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) Mode() Mode {
	return s.mode
}

func (s *Service) List(ctx context.Context) ([]entity.WatchEntry, error) {
	return s.repo.List(ctx)
}

func (s *Service) Add(ctx context.Context, entry entity.WatchEntry) (entity.WatchEntry, error) {
	entry.Code = strings.TrimSpace(entry.Code)
	entry.Name = strings.TrimSpace(entry.Name)
	entry.Note = strings.TrimSpace(entry.Note)
	if entry.Code == "" || entry.Name == "" {
		return entity.WatchEntry{}, fmt.Errorf("%w: code and name are required", ErrInvalidEntry)
	}
	switch s.mode {
	case ModePrice:
		if !entry.HasThreshold() {
			return entity.WatchEntry{}, fmt.Errorf("%w: monitor_price must be positive", ErrInvalidEntry)
		}
	case ModeMA:
		entry.MonitorPrice = nil
	}
	if s.verifyName {
		if err := s.verify(ctx, entry); err != nil {
			return entity.WatchEntry{}, err
		}
	}

	if err := s.repo.Add(ctx, entry); err != nil {
		return entity.WatchEntry{}, err
	}
	slog.Info("watch entry added", "mode", s.mode, "code", entry.Code, "name", entry.Name)

	text := fmt.Sprintf("➕ 添加%s股票\n股票: %s", s.mode.label(), entry.DisplayName())
	if entry.MonitorPrice != nil {
		text += "\n监控价格: " + decimalx.Price(*entry.MonitorPrice)
	}
	s.notify(ctx, text)
	return entry, nil
}

func (s *Service) verify(ctx context.Context, entry entity.WatchEntry) error {
	ctx, cancel := context.WithTimeout(ctx, s.fetchTimeout)
	defer cancel()
	quote, err := s.fetcher.Fetch(ctx, entry.Code)
	if errors.Is(err, market.ErrQuoteNotFound) {
		return fmt.Errorf("%w: unknown code %s", ErrInvalidEntry, entry.Code)
	}
	if err != nil {
		return fmt.Errorf("verify %s: %w", entry.Code, err)
	}
	if quote.Name != "" && quote.Name != entry.Name {
		return fmt.Errorf("%w: %s is %s, not %s", ErrNameMismatch, entry.Code, quote.Name, entry.Name)
	}
	return nil
}

// Remove 不存在的代码返回 ok=false, 不发送通知
func (s *Service) Remove(ctx context.Context, code string) (entity.WatchEntry, bool, error) {
	removed, ok, err := s.repo.Remove(ctx, code)
	if err != nil || !ok {
		return removed, ok, err
	}
	slog.Info("watch entry removed", "mode", s.mode, "code", code)
	s.notify(ctx, fmt.Sprintf("➖ 删除%s股票\n股票: %s", s.mode.label(), removed.DisplayName()))
	return removed, true, nil
}

func (s *Service) Update(ctx context.Context, code string, upd entity.WatchUpdate) (entity.WatchEntry, error) {
	if upd.Name != nil {
		name := strings.TrimSpace(*upd.Name)
		if name == "" {
			return entity.WatchEntry{}, fmt.Errorf("%w: name must not be empty", ErrInvalidEntry)
		}
		upd.Name = &name
	}
	if upd.MonitorPrice != nil {
		if s.mode == ModeMA {
			return entity.WatchEntry{}, fmt.Errorf("%w: ma watchlist has no monitor_price", ErrInvalidEntry)
		}
		if !upd.MonitorPrice.IsPositive() {
			return entity.WatchEntry{}, fmt.Errorf("%w: monitor_price must be positive", ErrInvalidEntry)
		}
	}

	before, after, err := s.repo.Update(ctx, code, upd)
	if err != nil {
		return entity.WatchEntry{}, err
	}
	slog.Info("watch entry updated", "mode", s.mode, "code", code)

	if thresholdChanged(before, after) {
		s.notify(ctx, thresholdNotice(before, after))
	} else {
		s.notify(ctx, fmt.Sprintf("🔄 更新%s股票\n股票: %s", s.mode.label(), after.DisplayName()))
	}
	return after, nil
}

// UpdateThreshold 只修改监控价, 通知中带上新旧监控价
func (s *Service) UpdateThreshold(ctx context.Context, code string, price decimal.Decimal) (entity.WatchEntry, error) {
	if s.mode != ModePrice {
		return entity.WatchEntry{}, fmt.Errorf("%w: ma watchlist has no monitor_price", ErrInvalidEntry)
	}
	if !price.IsPositive() {
		return entity.WatchEntry{}, fmt.Errorf("%w: monitor_price must be positive", ErrInvalidEntry)
	}
	before, after, err := s.repo.Update(ctx, code, entity.WatchUpdate{MonitorPrice: &price})
	if err != nil {
		return entity.WatchEntry{}, err
	}
	slog.Info("monitor price updated", "code", code, "price", price)
	s.notify(ctx, thresholdNotice(before, after))
	return after, nil
}

func thresholdChanged(before, after entity.WatchEntry) bool {
	if before.MonitorPrice == nil || after.MonitorPrice == nil {
		return before.MonitorPrice != after.MonitorPrice
	}
	return !before.MonitorPrice.Equal(*after.MonitorPrice)
}

func thresholdNotice(before, after entity.WatchEntry) string {
	old := "-"
	if before.MonitorPrice != nil {
		old = decimalx.Price(*before.MonitorPrice)
	}
	cur := "-"
	if after.MonitorPrice != nil {
		cur = decimalx.Price(*after.MonitorPrice)
	}
	return fmt.Sprintf("🔄 更新价格监控\n股票: %s\n旧监控价格: %s\n新监控价格: %s", after.DisplayName(), old, cur)
}

// Snapshot 并发拉取列表中所有股票的行情, 拉取失败的股票不返回
func (s *Service) Snapshot(ctx context.Context) ([]StockData, error) {
	entries, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	results := make([]*StockData, len(entries))
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(s.concurrency)
	for i, entry := range entries {
		i, entry := i, entry
		eg.Go(func() error {
			fetchCtx, cancel := context.WithTimeout(egCtx, s.fetchTimeout)
			defer cancel()
			quote, err := s.fetcher.Fetch(fetchCtx, entry.Code)
			if err != nil {
				slog.Warn("snapshot fetch quote failed", "code", entry.Code, "error", err)
				return nil
			}
			if quote.Name == "" {
				quote.Name = entry.Name
			}
			results[i] = &StockData{
				Quote:        quote,
				Note:         entry.Note,
				MonitorPrice: entry.MonitorPrice,
			}
			return nil
		})
	}
	if err = eg.Wait(); err != nil {
		return nil, err
	}

	data := lo.FilterMap(results, func(item *StockData, _ int) (StockData, bool) {
		if item == nil {
			return StockData{}, false
		}
		return *item, true
	})
	return data, nil
}

func (s *Service) notify(ctx context.Context, text string) {
	if err := s.notifier.Send(ctx, s.mode.Channel(), text); err != nil {
		slog.Error("send watchlist notice failed", "mode", s.mode, "error", err)
	}
}
