package repo

import (
	"github.com/KNICEX/stock-monitor/internal/entity"
	"gorm.io/gorm"
)

func InitTables(db *gorm.DB) error {
	return db.AutoMigrate(&entity.AlertEvent{})
}
