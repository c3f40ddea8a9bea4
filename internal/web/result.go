package web

import (
	"errors"
	"net/http"

	"github.com/KNICEX/stock-monitor/internal/repo"
	"github.com/KNICEX/stock-monitor/internal/service/monitor"
	"github.com/KNICEX/stock-monitor/internal/service/watchlist"
	"github.com/gin-gonic/gin"
)

type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

func ok(c *gin.Context, msg string, data any) {
	c.JSON(http.StatusOK, Result{Success: true, Message: msg, Data: data})
}

func fail(c *gin.Context, status int, msg string) {
	c.JSON(status, Result{Success: false, Message: msg})
}

// failErr 按错误类型映射状态码
func failErr(c *gin.Context, err error) {
	fail(c, statusOf(err), err.Error())
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, repo.ErrDuplicateEntry),
		errors.Is(err, monitor.ErrAlreadyRunning),
		errors.Is(err, monitor.ErrNotRunning):
		return http.StatusConflict
	case errors.Is(err, repo.ErrEntryNotFound):
		return http.StatusNotFound
	case errors.Is(err, watchlist.ErrInvalidEntry),
		errors.Is(err, watchlist.ErrNameMismatch):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
