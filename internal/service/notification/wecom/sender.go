package wecom

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/KNICEX/stock-monitor/internal/service/notification"
	"github.com/go-resty/resty/v2"
)

var _ notification.Sender = (*WebhookSender)(nil)

type textMessage struct {
	MsgType string      `json:"msgtype"`
	Text    textContent `json:"text"`
}

type textContent struct {
	Content string `json:"content"`
}

// webhookResult 没有 errcode 的回复视为发送失败
type webhookResult struct {
	ErrCode *int   `json:"errcode"`
	ErrMsg  string `json:"errmsg"`
}

// WebhookSender 企业微信群机器人
type WebhookSender struct {
	cli *resty.Client
	url string
}

func NewWebhookSender(cli *resty.Client, url string) *WebhookSender {
	return &WebhookSender{
		cli: cli,
		url: url,
	}
}

func (s *WebhookSender) Send(ctx context.Context, channel, text string) error {
	resp, err := s.cli.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(textMessage{MsgType: "text", Text: textContent{Content: text}}).
		Post(s.url)
	if err != nil {
		return fmt.Errorf("wecom webhook %s: %w", channel, err)
	}
	if resp.IsError() {
		return fmt.Errorf("wecom webhook %s: unexpected status %d", channel, resp.StatusCode())
	}

	// 不依赖响应的 Content-Type, 直接解析 body
	var result webhookResult
	if err = json.Unmarshal(resp.Body(), &result); err != nil {
		return fmt.Errorf("wecom webhook %s: decode reply %q: %w", channel, preview(string(resp.Body())), err)
	}
	if result.ErrCode == nil {
		return fmt.Errorf("wecom webhook %s: reply without errcode: %s", channel, preview(string(resp.Body())))
	}
	if *result.ErrCode != 0 {
		return fmt.Errorf("wecom webhook %s: errcode %d: %s", channel, *result.ErrCode, result.ErrMsg)
	}
	slog.Debug("wecom message sent", "channel", channel, "preview", preview(text))
	return nil
}

func preview(text string) string {
	r := []rune(text)
	if len(r) <= 50 {
		return text
	}
	return string(r[:50]) + "..."
}
