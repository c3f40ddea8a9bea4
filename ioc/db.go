package ioc

import (
	"os"
	"path/filepath"

	"github.com/KNICEX/stock-monitor/internal/repo"
	"github.com/spf13/viper"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// InitDB 预警历史库, 未启用时返回 nil
func InitDB() *gorm.DB {
	type Config struct {
		Enabled bool   `mapstructure:"enabled"`
		Path    string `mapstructure:"path"`
	}

	cfg := Config{Enabled: true, Path: "data/alerts.db"}
	if err := viper.UnmarshalKey("db", &cfg); err != nil {
		panic(err)
	}
	if !cfg.Enabled {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(cfg.Path), 0755); err != nil {
		panic(err)
	}

	db, err := gorm.Open(sqlite.Open(cfg.Path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		panic(err)
	}
	if err = repo.InitTables(db); err != nil {
		panic(err)
	}
	return db
}

func InitAlertRepo(db *gorm.DB) repo.AlertRepo {
	if db == nil {
		return nil
	}
	return repo.NewAlertRepo(db)
}
