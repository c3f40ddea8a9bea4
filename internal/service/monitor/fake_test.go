package monitor

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/KNICEX/stock-monitor/internal/entity"
	"github.com/KNICEX/stock-monitor/internal/repo"
	"github.com/KNICEX/stock-monitor/internal/service/market"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

var cst = time.FixedZone("CST", 8*3600)

// 2024-01-02 周二 10:00
var tuesdayMorning = time.Date(2024, 1, 2, 10, 0, 0, 0, cst)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock(t time.Time) *fakeClock {
	return &fakeClock{t: t}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type fakeFetcher struct {
	mu     sync.Mutex
	quotes map[string]market.Quote
	errs   map[string]error
	calls  map[string]int
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{
		quotes: make(map[string]market.Quote),
		errs:   make(map[string]error),
		calls:  make(map[string]int),
	}
}

func (f *fakeFetcher) Set(q market.Quote) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.quotes[q.Code] = q
}

func (f *fakeFetcher) Fail(code string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errs[code] = err
}

func (f *fakeFetcher) Calls(code string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[code]
}

func (f *fakeFetcher) TotalCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	total := 0
	for _, n := range f.calls {
		total += n
	}
	return total
}

func (f *fakeFetcher) Fetch(ctx context.Context, code string) (market.Quote, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[code]++
	if err, ok := f.errs[code]; ok {
		return market.Quote{}, err
	}
	q, ok := f.quotes[code]
	if !ok {
		return market.Quote{}, market.ErrQuoteNotFound
	}
	return q, nil
}

type sentMessage struct {
	Channel string
	Text    string
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []sentMessage
	err  error
}

func (n *fakeNotifier) Send(ctx context.Context, channel, text string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return n.err
	}
	n.sent = append(n.sent, sentMessage{Channel: channel, Text: text})
	return nil
}

func (n *fakeNotifier) SetErr(err error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.err = err
}

func (n *fakeNotifier) Messages() []sentMessage {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]sentMessage(nil), n.sent...)
}

// Containing 正文包含 substr 的消息
func (n *fakeNotifier) Containing(substr string) []sentMessage {
	var res []sentMessage
	for _, m := range n.Messages() {
		if strings.Contains(m.Text, substr) {
			res = append(res, m)
		}
	}
	return res
}

type fakeAlertRepo struct {
	mu     sync.Mutex
	events []entity.AlertEvent
}

func (r *fakeAlertRepo) Create(ctx context.Context, event entity.AlertEvent) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return int64(len(r.events)), nil
}

func (r *fakeAlertRepo) FindRecent(ctx context.Context, limit int) ([]entity.AlertEvent, error) {
	return nil, errors.New("not implemented")
}

func (r *fakeAlertRepo) FindByCode(ctx context.Context, code string, limit int) ([]entity.AlertEvent, error) {
	return nil, errors.New("not implemented")
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func quoteOf(code, price, ma5, ma10 string) market.Quote {
	return market.Quote{
		Code:         code,
		CurrentPrice: dec(price),
		PrevClose:    dec(price),
		MA5:          dec(ma5),
		MA10:         dec(ma10),
	}
}

func priceEntry(code, name, threshold string) entity.WatchEntry {
	p := dec(threshold)
	return entity.WatchEntry{Code: code, Name: name, MonitorPrice: &p}
}

func newWatchlist(t *testing.T, name string, entries ...entity.WatchEntry) repo.WatchlistRepo {
	r := repo.NewFileWatchlistRepo(filepath.Join(t.TempDir(), name))
	for _, e := range entries {
		require.NoError(t, r.Add(context.Background(), e))
	}
	return r
}
