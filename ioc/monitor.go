package ioc

import (
	"time"

	"github.com/KNICEX/stock-monitor/internal/repo"
	"github.com/KNICEX/stock-monitor/internal/schedule"
	"github.com/KNICEX/stock-monitor/internal/service/market"
	"github.com/KNICEX/stock-monitor/internal/service/monitor"
	"github.com/KNICEX/stock-monitor/internal/service/notification"
	"github.com/spf13/viper"
)

type MonitorConfig struct {
	AutoStart    bool          `mapstructure:"auto_start"`
	Interval     time.Duration `mapstructure:"interval"`
	Timezone     string        `mapstructure:"timezone"`
	FetchTimeout time.Duration `mapstructure:"fetch_timeout"`
	StopTimeout  time.Duration `mapstructure:"stop_timeout"`
	PriceCap     int           `mapstructure:"price_cap"`
	MADailyCap   int           `mapstructure:"ma_daily_cap"`
	Cooldown     time.Duration `mapstructure:"cooldown"`
}

func LoadMonitorConfig() MonitorConfig {
	policy := monitor.DefaultPolicy()
	cfg := MonitorConfig{
		AutoStart:    true,
		Interval:     monitor.DefaultInterval,
		Timezone:     "Asia/Shanghai",
		FetchTimeout: 10 * time.Second,
		StopTimeout:  30 * time.Second,
		PriceCap:     policy.PriceCap,
		MADailyCap:   policy.DailyCap,
		Cooldown:     policy.Cooldown,
	}
	if err := viper.UnmarshalKey("monitor", &cfg); err != nil {
		panic(err)
	}
	return cfg
}

func InitTradingHours(cfg MonitorConfig) schedule.Hours {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		panic(err)
	}
	return schedule.NewHours(loc, schedule.AShareWindows...)
}

func InitMonitorTask(cfg MonitorConfig, hours schedule.Hours, repos WatchlistRepos,
	fetcher market.Fetcher, notifier notification.Notifier, alerts repo.AlertRepo) *monitor.Task {
	opts := []monitor.TaskOption{
		monitor.WithPriceWatchlist(repos.Price),
		monitor.WithMAWatchlist(repos.MA),
		monitor.WithHours(hours),
		monitor.WithFetchTimeout(cfg.FetchTimeout),
		monitor.WithPolicy(monitor.Policy{
			PriceCap: cfg.PriceCap,
			DailyCap: cfg.MADailyCap,
			Cooldown: cfg.Cooldown,
		}),
	}
	if alerts != nil {
		opts = append(opts, monitor.WithAlertRepo(alerts))
	}
	return monitor.NewTask(fetcher, notifier, opts...)
}

func InitMonitorService(cfg MonitorConfig, task *monitor.Task, notifier notification.Notifier) *monitor.Service {
	return monitor.NewService(task, notifier, monitor.WithInterval(cfg.Interval))
}
