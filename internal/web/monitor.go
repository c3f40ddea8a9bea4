package web

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/KNICEX/stock-monitor/internal/entity"
	"github.com/KNICEX/stock-monitor/internal/repo"
	"github.com/KNICEX/stock-monitor/internal/service/monitor"
	"github.com/KNICEX/stock-monitor/internal/service/notification"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// MonitorController 监控循环的启停控制
type MonitorController interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
	Status() monitor.Status
}

type MonitorHandler struct {
	ctrl        MonitorController
	notifier    notification.Notifier
	alerts      repo.AlertRepo
	stopTimeout time.Duration
}

// NewMonitorHandler alerts 可以为 nil, 此时预警历史为空
func NewMonitorHandler(ctrl MonitorController, notifier notification.Notifier, alerts repo.AlertRepo, stopTimeout time.Duration) *MonitorHandler {
	if stopTimeout <= 0 {
		stopTimeout = 30 * time.Second
	}
	return &MonitorHandler{
		ctrl:        ctrl,
		notifier:    notifier,
		alerts:      alerts,
		stopTimeout: stopTimeout,
	}
}

func (h *MonitorHandler) RegisterRoutes(g *gin.RouterGroup) {
	mg := g.Group("/monitor")
	mg.POST("/start", h.Start)
	mg.POST("/stop", h.Stop)
	mg.GET("/status", h.Status)
	mg.GET("/alerts", h.Alerts)

	g.POST("/alert", h.ManualAlert)
}

func (h *MonitorHandler) Start(c *gin.Context) {
	if err := h.ctrl.Start(c.Request.Context()); err != nil {
		fail(c, statusOf(err), "监控已在运行中")
		return
	}
	ok(c, "监控已启动", nil)
}

func (h *MonitorHandler) Stop(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.stopTimeout)
	defer cancel()
	if err := h.ctrl.Stop(ctx); err != nil {
		fail(c, statusOf(err), "监控未在运行")
		return
	}
	ok(c, "监控已停止", nil)
}

func (h *MonitorHandler) Status(c *gin.Context) {
	c.JSON(http.StatusOK, h.ctrl.Status())
}

func (h *MonitorHandler) Alerts(c *gin.Context) {
	if h.alerts == nil {
		c.JSON(http.StatusOK, []entity.AlertEvent{})
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	var (
		events []entity.AlertEvent
		err    error
	)
	if code := c.Query("code"); code != "" {
		events, err = h.alerts.FindByCode(c.Request.Context(), code, limit)
	} else {
		events, err = h.alerts.FindRecent(c.Request.Context(), limit)
	}
	if err != nil {
		failErr(c, err)
		return
	}
	if events == nil {
		events = []entity.AlertEvent{}
	}
	c.JSON(http.StatusOK, events)
}

type manualAlertReq struct {
	Name         string           `json:"name" binding:"required"`
	Note         string           `json:"note"`
	Price        *decimal.Decimal `json:"price" binding:"required"`
	MonitorPrice *decimal.Decimal `json:"monitor_price" binding:"required"`
}

func (h *MonitorHandler) ManualAlert(c *gin.Context) {
	var req manualAlertReq
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}
	text := monitor.ManualAlertMessage(req.Name, req.Note, *req.Price, *req.MonitorPrice)
	if err := h.notifier.Send(c.Request.Context(), notification.ChannelPrice, text); err != nil {
		fail(c, http.StatusBadGateway, "发送预警失败")
		return
	}
	ok(c, "", nil)
}
