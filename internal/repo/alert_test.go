package repo

import (
	"context"
	"testing"
	"time"

	"github.com/KNICEX/stock-monitor/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	// 内存库每个连接独立, 限制为单连接
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, InitTables(db))
	return db
}

func TestAlertRepo_CreateAndFind(t *testing.T) {
	r := NewAlertRepo(newTestDB(t))
	ctx := context.Background()
	base := time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC)

	events := []entity.AlertEvent{
		{Code: "000001", Name: "平安银行", Kind: "price_below", Channel: "price", Price: "9.50", Reference: "10.00", CreatedAt: base},
		{Code: "600519", Name: "贵州茅台", Kind: "below_ma5", Channel: "ma", Price: "1500.00", Reference: "1520.00", CreatedAt: base.Add(time.Minute)},
		{Code: "000001", Name: "平安银行", Kind: "below_ma10", Channel: "ma", Price: "9.40", Reference: "9.90", CreatedAt: base.Add(2 * time.Minute)},
	}
	for _, e := range events {
		id, err := r.Create(ctx, e)
		require.NoError(t, err)
		assert.Positive(t, id)
	}

	recent, err := r.FindRecent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "below_ma10", recent[0].Kind)
	assert.Equal(t, "600519", recent[1].Code)

	byCode, err := r.FindByCode(ctx, "000001", 0)
	require.NoError(t, err)
	require.Len(t, byCode, 2)
	assert.Equal(t, "below_ma10", byCode[0].Kind)
	assert.Equal(t, "price_below", byCode[1].Kind)
}

func TestNormalizeLimit(t *testing.T) {
	assert.Equal(t, defaultAlertLimit, normalizeLimit(0))
	assert.Equal(t, defaultAlertLimit, normalizeLimit(-1))
	assert.Equal(t, defaultAlertLimit, normalizeLimit(10000))
	assert.Equal(t, 20, normalizeLimit(20))
}
