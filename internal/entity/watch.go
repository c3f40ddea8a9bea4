package entity

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// WatchEntry 自选股监控条目, 对应 stocks.json / ma_stocks.json 中的一项
type WatchEntry struct {
	Code string `json:"code"`
	Name string `json:"name"`
	Note string `json:"note,omitempty"`
	// MonitorPrice 价格监控模式下的监控价, 均线模式为空
	MonitorPrice *decimal.Decimal `json:"monitor_price,omitempty"`
}

// DisplayName 名称加上括号备注
func (e WatchEntry) DisplayName() string {
	if e.Note == "" {
		return e.Name
	}
	return fmt.Sprintf("%s（%s）", e.Name, e.Note)
}

// HasThreshold 是否设置了有效的监控价
func (e WatchEntry) HasThreshold() bool {
	return e.MonitorPrice != nil && e.MonitorPrice.IsPositive()
}

// WatchUpdate 部分更新, nil 字段保持不变
type WatchUpdate struct {
	Name         *string          `json:"name"`
	Note         *string          `json:"note"`
	MonitorPrice *decimal.Decimal `json:"monitor_price"`
}

func (u WatchUpdate) Apply(e WatchEntry) WatchEntry {
	if u.Name != nil {
		e.Name = *u.Name
	}
	if u.Note != nil {
		e.Note = *u.Note
	}
	if u.MonitorPrice != nil {
		p := *u.MonitorPrice
		e.MonitorPrice = &p
	}
	return e
}
