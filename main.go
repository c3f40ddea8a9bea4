package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/KNICEX/stock-monitor/internal/web"
	"github.com/KNICEX/stock-monitor/ioc"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"
)

func initViper() {
	// --config=./config/xxx.yaml
	file := pflag.String("config", "./config/config.dev.yaml", "specify config file")
	pflag.Parse()

	viper.SetConfigFile(*file)
	err := viper.ReadInConfig()
	if err != nil {
		panic(fmt.Errorf("fatal error config file: %s \n", err))
	}
}

func main() {
	initViper()
	ioc.InitLogger()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db := ioc.InitDB()
	alertRepo := ioc.InitAlertRepo(db)
	fetcher := ioc.InitQuoteService()
	notifier, closeNotifier := ioc.InitNotifier()
	defer closeNotifier()

	repos := ioc.InitWatchlistRepos()
	priceSvc, maSvc := ioc.InitWatchlistServices(repos, fetcher, notifier)

	monitorCfg := ioc.LoadMonitorConfig()
	hours := ioc.InitTradingHours(monitorCfg)
	task := ioc.InitMonitorTask(monitorCfg, hours, repos, fetcher, notifier, alertRepo)
	monitorSvc := ioc.InitMonitorService(monitorCfg, task, notifier)

	server := ioc.InitWebServer(
		web.NewMonitorHandler(monitorSvc, notifier, alertRepo, monitorCfg.StopTimeout),
		web.NewWatchlistHandler(priceSvc),
		web.NewWatchlistHandler(maSvc),
	)

	cron := ioc.InitDigestScheduler(ctx, hours, task)
	if cron != nil {
		cron.StartAsync()
	}

	if monitorCfg.AutoStart {
		if err := monitorSvc.Start(ctx); err != nil {
			panic(err)
		}
	}

	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		slog.Info("http server listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	eg.Go(func() error {
		<-egCtx.Done()
		slog.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), monitorCfg.StopTimeout+5*time.Second)
		defer cancel()
		if cron != nil {
			cron.Stop()
		}
		if monitorSvc.Status().Running {
			stopCtx, stopCancel := context.WithTimeout(shutdownCtx, monitorCfg.StopTimeout)
			defer stopCancel()
			if err := monitorSvc.Stop(stopCtx); err != nil {
				slog.Warn("stop monitor failed", "error", err)
			}
		}
		return server.Shutdown(shutdownCtx)
	})

	if err := eg.Wait(); err != nil {
		slog.Error("server exited", "error", err)
	}
}
