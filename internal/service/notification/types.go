package notification

import (
	"context"
	"errors"
)

// 预警通道
const (
	ChannelPrice = "price" // 价格监控机器人
	ChannelMA    = "ma"    // 均线监控机器人
)

var ErrUnknownChannel = errors.New("unknown notification channel")

// Notifier 按通道投递文本消息, 返回 nil 表示投递成功
type Notifier interface {
	Send(ctx context.Context, channel, text string) error
}

// Sender 具体的投递方式, 如企业微信机器人, kafka
type Sender interface {
	Send(ctx context.Context, channel, text string) error
}
