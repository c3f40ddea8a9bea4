package monitor

import (
	"fmt"
	"strings"
	"time"

	"github.com/KNICEX/stock-monitor/internal/entity"
	"github.com/KNICEX/stock-monitor/pkg/decimalx"
	"github.com/shopspring/decimal"
)

// StartupMessage 启动通知, 附带当前两个监控列表
func StartupMessage(at time.Time, priceEntries, maEntries []entity.WatchEntry) string {
	var sb strings.Builder
	sb.WriteString("📢 股票监控系统已启动\n")
	sb.WriteString("⏰ 启动时间: " + at.Format(time.DateTime) + "\n")

	if len(priceEntries) > 0 {
		sb.WriteString("\n🔍 价格监控股票列表:\n")
		for _, e := range priceEntries {
			sb.WriteString("- " + e.DisplayName())
			if e.MonitorPrice != nil {
				sb.WriteString(" 监控价格: " + decimalx.Price(*e.MonitorPrice))
			}
			sb.WriteString("\n")
		}
	}
	if len(maEntries) > 0 {
		sb.WriteString("\n📊 均线监控股票列表:\n")
		for _, e := range maEntries {
			sb.WriteString("- " + e.DisplayName() + "\n")
		}
	}
	return strings.TrimRight(sb.String(), "\n")
}

func ShutdownMessage(at time.Time) string {
	return "📢 股票监控系统已关闭\n⏰ 关闭时间: " + at.Format(time.DateTime)
}

// ManualAlertMessage 手动预警, 不经过去重和限流
func ManualAlertMessage(name, note string, price, monitorPrice decimal.Decimal) string {
	display := entity.WatchEntry{Name: name, Note: note}.DisplayName()
	return fmt.Sprintf("⚠️ 手动预警\n股票: %s\n当前价格: %s\n监控价格: %s",
		display, decimalx.Price(price), decimalx.Price(monitorPrice))
}
