package ioc

import (
	"time"

	"github.com/KNICEX/stock-monitor/internal/repo"
	"github.com/KNICEX/stock-monitor/internal/service/market"
	"github.com/KNICEX/stock-monitor/internal/service/notification"
	"github.com/KNICEX/stock-monitor/internal/service/watchlist"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

type WatchlistRepos struct {
	Price repo.WatchlistRepo
	MA    repo.WatchlistRepo
}

func InitWatchlistRepos() WatchlistRepos {
	type Config struct {
		PricePath string `mapstructure:"price_path"`
		MAPath    string `mapstructure:"ma_path"`
	}

	cfg := Config{PricePath: "data/stocks.json", MAPath: "data/ma_stocks.json"}
	if err := viper.UnmarshalKey("watchlist", &cfg); err != nil {
		panic(err)
	}
	// 监控价以数字写入 json 文件
	decimal.MarshalJSONWithoutQuotes = true

	return WatchlistRepos{
		Price: repo.NewFileWatchlistRepo(cfg.PricePath),
		MA:    repo.NewFileWatchlistRepo(cfg.MAPath),
	}
}

func InitWatchlistServices(repos WatchlistRepos, fetcher market.Fetcher, notifier notification.Notifier) (price, ma *watchlist.Service) {
	type Config struct {
		VerifyName  bool          `mapstructure:"verify_name"`
		Concurrency int           `mapstructure:"snapshot_concurrency"`
		Timeout     time.Duration `mapstructure:"fetch_timeout"`
	}

	var cfg Config
	if err := viper.UnmarshalKey("watchlist", &cfg); err != nil {
		panic(err)
	}
	opts := []watchlist.Option{
		watchlist.WithNameVerification(cfg.VerifyName),
		watchlist.WithSnapshotConcurrency(cfg.Concurrency),
		watchlist.WithFetchTimeout(cfg.Timeout),
	}
	price = watchlist.NewService(watchlist.ModePrice, repos.Price, fetcher, notifier, opts...)
	ma = watchlist.NewService(watchlist.ModeMA, repos.MA, fetcher, notifier, opts...)
	return price, ma
}
