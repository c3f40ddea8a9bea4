package notification

import (
	"context"
	"log/slog"
)

// logSender 只写日志, 未配置机器人时使用
type logSender struct{}

func NewLogSender() Sender {
	return logSender{}
}

func (logSender) Send(ctx context.Context, channel, text string) error {
	slog.InfoContext(ctx, "notification", "channel", channel, "text", text)
	return nil
}
