package web

import (
	"net/http"

	"github.com/KNICEX/stock-monitor/internal/metrics"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type RouteRegister interface {
	RegisterRoutes(g *gin.RouterGroup)
}

// NewEngine 业务接口统一挂在 /api 下, /health 和 /metrics 在根路径
func NewEngine(handlers ...RouteRegister) *gin.Engine {
	engine := gin.New()
	engine.Use(gin.Recovery(), metrics.GinMiddleware())

	engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := engine.Group("/api")
	for _, h := range handlers {
		h.RegisterRoutes(api)
	}
	return engine
}
