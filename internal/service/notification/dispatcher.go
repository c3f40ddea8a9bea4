package notification

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/KNICEX/stock-monitor/internal/metrics"
	"github.com/samber/lo"
)

var _ Notifier = (*Dispatcher)(nil)

// Dispatcher 把通道路由到对应的 Sender
type Dispatcher struct {
	senders map[string]Sender
}

func NewDispatcher(senders map[string]Sender) *Dispatcher {
	return &Dispatcher{senders: senders}
}

func (d *Dispatcher) Send(ctx context.Context, channel, text string) error {
	sender, ok := d.senders[channel]
	if !ok {
		metrics.NotifyFailuresTotal.WithLabelValues(channel).Inc()
		return fmt.Errorf("%w: %s", ErrUnknownChannel, channel)
	}
	if err := sender.Send(ctx, channel, text); err != nil {
		metrics.NotifyFailuresTotal.WithLabelValues(channel).Inc()
		return err
	}
	return nil
}

func (d *Dispatcher) Channels() []string {
	channels := lo.Keys(d.senders)
	sort.Strings(channels)
	return channels
}

// Broadcast 尽力投递到多个通道, 失败只记录日志, 返回成功数
func Broadcast(ctx context.Context, n Notifier, text string, channels ...string) int {
	sent := 0
	for _, channel := range channels {
		if err := n.Send(ctx, channel, text); err != nil {
			slog.Error("broadcast notification failed", "channel", channel, "error", err)
			continue
		}
		sent++
	}
	return sent
}
