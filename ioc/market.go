package ioc

import (
	"time"

	"github.com/KNICEX/stock-monitor/internal/service/market"
	"github.com/KNICEX/stock-monitor/internal/service/market/tencent"
	"github.com/go-resty/resty/v2"
	"github.com/spf13/viper"
)

func InitQuoteService() market.Fetcher {
	type Config struct {
		BaseURL string        `mapstructure:"base_url"`
		Timeout time.Duration `mapstructure:"timeout"`
	}

	cfg := Config{BaseURL: tencent.DefaultBaseURL, Timeout: 10 * time.Second}
	if err := viper.UnmarshalKey("market", &cfg); err != nil {
		panic(err)
	}

	cli := resty.New().
		SetTimeout(cfg.Timeout).
		SetHeader("User-Agent", "Mozilla/5.0")
	return tencent.NewQuoteService(cli, tencent.WithBaseURL(cfg.BaseURL))
}
