package ioc

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/KNICEX/stock-monitor/internal/service/notification"
	"github.com/KNICEX/stock-monitor/internal/service/notification/kafka"
	"github.com/KNICEX/stock-monitor/internal/service/notification/wecom"
	"github.com/go-resty/resty/v2"
	"github.com/spf13/viper"
)

// InitNotifier 按通道配置选择投递方式, 返回的 cleanup 用于退出时关闭 kafka writer
func InitNotifier() (*notification.Dispatcher, func()) {
	type ChannelConfig struct {
		Driver  string `mapstructure:"driver"` // wecom, kafka, log
		Webhook string `mapstructure:"webhook"`
	}
	type Config struct {
		Timeout  time.Duration            `mapstructure:"timeout"`
		Channels map[string]ChannelConfig `mapstructure:"channels"`
		Kafka    struct {
			Brokers []string `mapstructure:"brokers"`
			Topic   string   `mapstructure:"topic"`
		} `mapstructure:"kafka"`
	}

	cfg := Config{Timeout: 10 * time.Second}
	if err := viper.UnmarshalKey("notify", &cfg); err != nil {
		panic(err)
	}

	cli := resty.New().SetTimeout(cfg.Timeout)
	var kafkaSender *kafka.Sender
	senders := make(map[string]notification.Sender)
	for _, channel := range []string{notification.ChannelPrice, notification.ChannelMA} {
		chCfg, ok := cfg.Channels[channel]
		if !ok {
			chCfg.Driver = "log"
		}
		switch chCfg.Driver {
		case "wecom":
			if chCfg.Webhook == "" {
				panic(fmt.Sprintf("notify channel %s: webhook is required", channel))
			}
			senders[channel] = wecom.NewWebhookSender(cli, chCfg.Webhook)
		case "kafka":
			if kafkaSender == nil {
				if len(cfg.Kafka.Brokers) == 0 || cfg.Kafka.Topic == "" {
					panic("notify kafka: brokers and topic are required")
				}
				kafkaSender = kafka.NewSender(kafka.NewWriter(cfg.Kafka.Brokers, cfg.Kafka.Topic))
			}
			senders[channel] = kafkaSender
		case "log", "":
			senders[channel] = notification.NewLogSender()
		default:
			panic(fmt.Sprintf("notify channel %s: unknown driver %s", channel, chCfg.Driver))
		}
		slog.Info("notify channel configured", "channel", channel, "driver", chCfg.Driver)
	}

	cleanup := func() {
		if kafkaSender == nil {
			return
		}
		if err := kafkaSender.Close(); err != nil {
			slog.Error("close kafka sender failed", "error", err)
		}
	}
	return notification.NewDispatcher(senders), cleanup
}
