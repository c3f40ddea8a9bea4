package ioc

import (
	"net/http"
	"time"

	"github.com/KNICEX/stock-monitor/internal/web"
	"github.com/gin-gonic/gin"
	"github.com/spf13/viper"
)

func InitWebServer(handlers ...web.RouteRegister) *http.Server {
	type Config struct {
		Addr string `mapstructure:"addr"`
		Mode string `mapstructure:"mode"`
	}

	cfg := Config{Addr: ":5000", Mode: gin.ReleaseMode}
	if err := viper.UnmarshalKey("http", &cfg); err != nil {
		panic(err)
	}
	gin.SetMode(cfg.Mode)

	return &http.Server{
		Addr:              cfg.Addr,
		Handler:           web.NewEngine(handlers...),
		ReadHeaderTimeout: 10 * time.Second,
	}
}
