package entity

import (
	"time"
)

// AlertEvent 已送达的预警记录, 仅用于审计与查询, 不参与去重判断
type AlertEvent struct {
	Id        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Code      string    `gorm:"index" json:"code"`
	Name      string    `json:"name"`
	Kind      string    `gorm:"index" json:"kind"`
	Channel   string    `json:"channel"`
	Price     string    `json:"price"`
	Reference string    `json:"reference"` // 监控价或均线值
	Message   string    `json:"message"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}
