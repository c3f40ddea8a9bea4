package monitor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/KNICEX/stock-monitor/internal/entity"
	"github.com/KNICEX/stock-monitor/internal/service/notification"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDigest_Run(t *testing.T) {
	stocks := newWatchlist(t, "stocks.json",
		priceEntry("000001", "平安银行", "10.00"),
		priceEntry("000002", "万科A", "8.00"),
	)
	maStocks := newWatchlist(t, "ma_stocks.json", entity.WatchEntry{Code: "600519", Name: "贵州茅台", Note: "长线"})
	f := newTaskFixture(stocks, maStocks)
	f.clock = newFakeClock(time.Date(2024, 1, 2, 15, 5, 0, 0, cst))
	f.task.now = f.clock.Now

	q := quoteOf("000001", "9.50", "9.60", "9.70")
	q.PrevClose = dec("10.00")
	q.ChangePct = dec("-5")
	f.fetcher.Set(q)
	f.fetcher.Fail("000002", errors.New("timeout"))
	ma := quoteOf("600519", "1500", "1510", "1490")
	ma.ChangePct = dec("0.67")
	f.fetcher.Set(ma)

	require.NoError(t, NewDigest(f.task).Run(context.Background()))

	msgs := f.notifier.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, notification.ChannelPrice, msgs[0].Channel)
	assert.Contains(t, msgs[0].Text, "2024-01-02")
	assert.Contains(t, msgs[0].Text, "- 平安银行 9.50 (-5.00%) 监控价 10.00 距离 -5.00%")
	assert.Contains(t, msgs[0].Text, "- 万科A 获取行情失败")

	assert.Equal(t, notification.ChannelMA, msgs[1].Channel)
	assert.Contains(t, msgs[1].Text, "- 贵州茅台（长线） 1500.00 (+0.67%) MA5 1510.00 MA10 1490.00")

	// 收盘汇总不影响盘中预警状态
	assert.True(t, f.task.Tracker().LastSentAt().IsZero())
}

func TestDigest_SkipNonTradingDay(t *testing.T) {
	stocks := newWatchlist(t, "stocks.json", priceEntry("000001", "平安银行", "10.00"))
	f := newTaskFixture(stocks, nil)
	f.clock = newFakeClock(time.Date(2024, 1, 6, 15, 5, 0, 0, cst))
	f.task.now = f.clock.Now

	require.NoError(t, NewDigest(f.task).Run(context.Background()))
	assert.Empty(t, f.notifier.Messages())
	assert.Equal(t, 0, f.fetcher.TotalCalls())
}

func TestDigest_SendError(t *testing.T) {
	stocks := newWatchlist(t, "stocks.json", priceEntry("000001", "平安银行", "10.00"))
	f := newTaskFixture(stocks, nil)
	f.fetcher.Set(quoteOf("000001", "9.50", "9.50", "9.50"))
	f.notifier.SetErr(errors.New("webhook down"))

	assert.Error(t, NewDigest(f.task).Run(context.Background()))
}
