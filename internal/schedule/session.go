package schedule

import (
	"fmt"
	"time"
)

// Window 交易时段, 以当日分钟数表示, 两端均包含
type Window struct {
	Start int
	End   int
}

func (w Window) contains(minute int) bool {
	return minute >= w.Start && minute <= w.End
}

func (w Window) String() string {
	return fmt.Sprintf("%02d:%02d-%02d:%02d", w.Start/60, w.Start%60, w.End/60, w.End%60)
}

// AShareWindows A股连续竞价时段 9:30-11:30, 13:00-15:00
var AShareWindows = []Window{
	{Start: 9*60 + 30, End: 11*60 + 30},
	{Start: 13 * 60, End: 15 * 60},
}

// Hours 判断给定时刻是否处于交易时间
type Hours struct {
	loc     *time.Location
	windows []Window
}

func NewHours(loc *time.Location, windows ...Window) Hours {
	if loc == nil {
		loc = time.Local
	}
	if len(windows) == 0 {
		windows = AShareWindows
	}
	return Hours{loc: loc, windows: windows}
}

func (h Hours) Location() *time.Location {
	if h.loc == nil {
		return time.Local
	}
	return h.loc
}

// TradingDay 周六周日不交易, 不考虑节假日
func (h Hours) TradingDay(t time.Time) bool {
	wd := t.In(h.Location()).Weekday()
	return wd != time.Saturday && wd != time.Sunday
}

// Open 精确到分钟, 15:00 整分钟内仍视为交易时间
func (h Hours) Open(t time.Time) bool {
	if !h.TradingDay(t) {
		return false
	}
	local := t.In(h.Location())
	minute := local.Hour()*60 + local.Minute()
	windows := h.windows
	if len(windows) == 0 {
		windows = AShareWindows
	}
	for _, w := range windows {
		if w.contains(minute) {
			return true
		}
	}
	return false
}

// Day 当地日历日, 用作按天去重的 key
func (h Hours) Day(t time.Time) string {
	return t.In(h.Location()).Format("20060102")
}

// IsTradingTime 使用本地时区和A股时段的便捷判断
func IsTradingTime(t time.Time) bool {
	return NewHours(t.Location()).Open(t)
}
