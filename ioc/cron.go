package ioc

import (
	"context"
	"log/slog"

	"github.com/KNICEX/stock-monitor/internal/schedule"
	"github.com/KNICEX/stock-monitor/internal/service/monitor"
	"github.com/go-co-op/gocron"
	"github.com/spf13/viper"
)

// InitDigestScheduler 收盘汇总定时任务, 未启用时返回 nil
func InitDigestScheduler(ctx context.Context, hours schedule.Hours, task *monitor.Task) *gocron.Scheduler {
	type Config struct {
		Enabled bool   `mapstructure:"enabled"`
		At      string `mapstructure:"at"`
	}

	cfg := Config{Enabled: true, At: "15:05"}
	if err := viper.UnmarshalKey("digest", &cfg); err != nil {
		panic(err)
	}
	if !cfg.Enabled {
		return nil
	}

	digest := monitor.NewDigest(task)
	cron := gocron.NewScheduler(hours.Location())
	_, err := cron.Every(1).Day().At(cfg.At).Do(func() {
		res := schedule.RunOnce(ctx, digest)
		if res.Err != nil {
			slog.Error("daily digest failed", "error", res.Err)
			return
		}
		slog.Info("daily digest pushed", "duration", res.Duration)
	})
	if err != nil {
		panic(err)
	}
	return cron
}
