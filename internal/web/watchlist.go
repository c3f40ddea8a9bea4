package web

import (
	"net/http"

	"github.com/KNICEX/stock-monitor/internal/entity"
	"github.com/KNICEX/stock-monitor/internal/service/watchlist"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type WatchlistHandler struct {
	svc *watchlist.Service
}

func NewWatchlistHandler(svc *watchlist.Service) *WatchlistHandler {
	return &WatchlistHandler{svc: svc}
}

// RegisterRoutes 价格监控挂在 /stocks, 均线监控挂在 /ma_stocks
func (h *WatchlistHandler) RegisterRoutes(g *gin.RouterGroup) {
	prefix := "/stocks"
	if h.svc.Mode() == watchlist.ModeMA {
		prefix = "/ma_stocks"
	}
	sg := g.Group(prefix)
	sg.GET("", h.List)
	sg.POST("", h.Add)
	sg.GET("/data", h.Data)
	sg.DELETE("/:code", h.Remove)
	sg.PUT("/:code", h.Update)
	if h.svc.Mode() == watchlist.ModePrice {
		sg.PUT("/:code/threshold", h.UpdateThreshold)
		sg.PUT("/:code/monitor-price", h.UpdateThreshold)
	}
}

func (h *WatchlistHandler) List(c *gin.Context) {
	entries, err := h.svc.List(c.Request.Context())
	if err != nil {
		failErr(c, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}

func (h *WatchlistHandler) Add(c *gin.Context) {
	var entry entity.WatchEntry
	if err := c.ShouldBindJSON(&entry); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}
	added, err := h.svc.Add(c.Request.Context(), entry)
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, "添加成功", added)
}

func (h *WatchlistHandler) Remove(c *gin.Context) {
	removed, found, err := h.svc.Remove(c.Request.Context(), c.Param("code"))
	if err != nil {
		failErr(c, err)
		return
	}
	if !found {
		fail(c, http.StatusNotFound, "股票不存在")
		return
	}
	ok(c, "删除成功", removed)
}

func (h *WatchlistHandler) Update(c *gin.Context) {
	var upd entity.WatchUpdate
	if err := c.ShouldBindJSON(&upd); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}
	updated, err := h.svc.Update(c.Request.Context(), c.Param("code"), upd)
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, "更新成功", updated)
}

type thresholdReq struct {
	MonitorPrice *decimal.Decimal `json:"monitor_price" binding:"required"`
}

func (h *WatchlistHandler) UpdateThreshold(c *gin.Context) {
	var req thresholdReq
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}
	updated, err := h.svc.UpdateThreshold(c.Request.Context(), c.Param("code"), *req.MonitorPrice)
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, "更新成功", updated)
}

func (h *WatchlistHandler) Data(c *gin.Context) {
	data, err := h.svc.Snapshot(c.Request.Context())
	if err != nil {
		failErr(c, err)
		return
	}
	c.JSON(http.StatusOK, data)
}
