package monitor

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/KNICEX/stock-monitor/internal/metrics"
	"github.com/KNICEX/stock-monitor/internal/schedule"
	"github.com/KNICEX/stock-monitor/internal/service/notification"
)

const DefaultInterval = 30 * time.Second

var (
	ErrAlreadyRunning = errors.New("monitor already running")
	ErrNotRunning     = errors.New("monitor not running")
)

type Status struct {
	Running   bool       `json:"running"`
	StartedAt *time.Time `json:"started_at,omitempty"`
}

// Service 控制监控循环的启停, 同一时间最多一个循环在跑
type Service struct {
	task     *Task
	notifier notification.Notifier
	interval time.Duration
	// shutdownChannels 关闭通知发往的通道
	shutdownChannels []string
	now              func() time.Time

	mu        sync.Mutex
	running   bool
	stopping  bool
	startedAt time.Time
	stop      chan struct{}
	done      chan struct{}
}

type ServiceOption func(s *Service)

func WithInterval(d time.Duration) ServiceOption {
	return func(s *Service) {
		if d > 0 {
			s.interval = d
		}
	}
}

func WithShutdownChannels(channels ...string) ServiceOption {
	return func(s *Service) {
		s.shutdownChannels = channels
	}
}

func WithServiceClock(now func() time.Time) ServiceOption {
	return func(s *Service) {
		s.now = now
	}
}

func NewService(task *Task, notifier notification.Notifier, opts ...ServiceOption) *Service {
	s := &Service{
		task:             task,
		notifier:         notifier,
		interval:         DefaultInterval,
		shutdownChannels: []string{notification.ChannelPrice, notification.ChannelMA},
		now:              time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start 启动后台循环后立即返回, 循环不随 ctx 取消而结束, 需调用 Stop
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return ErrAlreadyRunning
	}
	s.running = true
	s.stopping = false
	s.startedAt = s.now()
	s.stop = make(chan struct{})
	s.done = make(chan struct{})
	metrics.MonitorRunning.Set(1)

	go s.run(context.WithoutCancel(ctx), s.stop, s.done)
	slog.Info("monitor started", "interval", s.interval)
	return nil
}

func (s *Service) run(ctx context.Context, stop <-chan struct{}, done chan<- struct{}) {
	defer func() {
		s.mu.Lock()
		s.running = false
		s.stopping = false
		s.mu.Unlock()
		metrics.MonitorRunning.Set(0)
		close(done)
	}()

	s.announce(ctx)
	schedule.Loop(ctx, s.task, s.interval, stop, s.observe)
}

func (s *Service) announce(ctx context.Context) {
	priceEntries, maEntries, err := s.task.Watchlists(ctx)
	if err != nil {
		slog.Error("load watchlists for startup notice failed", "error", err)
	}
	// 只发到价格通道, 避免机器人频率限制
	text := StartupMessage(s.now(), priceEntries, maEntries)
	if err = s.notifier.Send(ctx, notification.ChannelPrice, text); err != nil {
		slog.Error("send startup notice failed", "error", err)
	}
}

func (s *Service) observe(res schedule.Result) {
	metrics.CycleDuration.Observe(res.Duration.Seconds())
	if res.Err == nil {
		return
	}
	if res.Panicked() {
		metrics.CyclesTotal.WithLabelValues("panic").Inc()
	}
	slog.Error("monitor cycle failed", "error", res.Err, "duration", res.Duration)
}

// Stop 通知循环退出, 等待当前一轮结束 (受 ctx 限制), 然后向所有预警通道发送关闭通知
func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.running || s.stopping {
		s.mu.Unlock()
		return ErrNotRunning
	}
	s.stopping = true
	close(s.stop)
	done := s.done
	s.mu.Unlock()

	select {
	case <-done:
	case <-ctx.Done():
		slog.Warn("monitor loop still finishing current cycle", "error", ctx.Err())
	}

	text := ShutdownMessage(s.now())
	sent := notification.Broadcast(context.WithoutCancel(ctx), s.notifier, text, s.shutdownChannels...)
	slog.Info("monitor stopped", "shutdown_notices", sent)
	return nil
}

func (s *Service) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return Status{}
	}
	startedAt := s.startedAt
	return Status{Running: true, StartedAt: &startedAt}
}
