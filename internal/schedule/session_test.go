package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestHours_Open(t *testing.T) {
	loc := time.FixedZone("CST", 8*3600)
	h := NewHours(loc)

	testCases := []struct {
		name string
		at   time.Time
		want bool
	}{
		{name: "周二上午开盘", at: time.Date(2024, 3, 5, 9, 30, 0, 0, loc), want: true},
		{name: "周二开盘前", at: time.Date(2024, 3, 5, 9, 29, 59, 0, loc), want: false},
		{name: "上午收盘整分钟", at: time.Date(2024, 3, 5, 11, 30, 59, 0, loc), want: true},
		{name: "午休", at: time.Date(2024, 3, 5, 12, 0, 0, 0, loc), want: false},
		{name: "下午开盘", at: time.Date(2024, 3, 5, 13, 0, 0, 0, loc), want: true},
		{name: "下午收盘", at: time.Date(2024, 3, 5, 15, 0, 0, 0, loc), want: true},
		{name: "收盘后", at: time.Date(2024, 3, 5, 15, 1, 0, 0, loc), want: false},
		{name: "周六", at: time.Date(2024, 3, 9, 10, 0, 0, 0, loc), want: false},
		{name: "周日", at: time.Date(2024, 3, 10, 10, 0, 0, 0, loc), want: false},
		// UTC 02:00 即北京时间 10:00
		{name: "跨时区换算", at: time.Date(2024, 3, 5, 2, 0, 0, 0, time.UTC), want: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, h.Open(tc.at))
		})
	}
}

func TestHours_TradingDayAndDay(t *testing.T) {
	loc := time.FixedZone("CST", 8*3600)
	h := NewHours(loc)

	// UTC 周五 20:00 是北京时间周六 04:00
	at := time.Date(2024, 3, 8, 20, 0, 0, 0, time.UTC)
	assert.False(t, h.TradingDay(at))
	assert.Equal(t, "20240309", h.Day(at))
	assert.True(t, h.TradingDay(time.Date(2024, 3, 8, 10, 0, 0, 0, loc)))
}

func TestIsTradingTime(t *testing.T) {
	assert.True(t, IsTradingTime(time.Date(2024, 3, 5, 10, 0, 0, 0, time.Local)))
	assert.False(t, IsTradingTime(time.Date(2024, 3, 5, 20, 0, 0, 0, time.Local)))
}

func TestWindow_String(t *testing.T) {
	assert.Equal(t, "09:30-11:30", AShareWindows[0].String())
}
