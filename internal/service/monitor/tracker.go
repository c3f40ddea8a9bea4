package monitor

import (
	"time"

	"github.com/shopspring/decimal"
)

type AlertKind string

const (
	KindPriceBelow AlertKind = "price_below"
	KindBelowMA5   AlertKind = "below_ma5"
	KindBelowMA10  AlertKind = "below_ma10"
)

// Daily 均线预警按自然日计数, 价格预警按监控价计数
func (k AlertKind) Daily() bool {
	return k != KindPriceBelow
}

// AlertKey 去重计数的维度.
// 价格预警 Scope 为监控价, 修改监控价即得到新的 key;
// 均线预警 Scope 为日期 20060102.
type AlertKey struct {
	Code  string
	Kind  AlertKind
	Scope string
}

func PriceKey(code string, threshold decimal.Decimal) AlertKey {
	return AlertKey{Code: code, Kind: KindPriceBelow, Scope: threshold.String()}
}

func MAKey(code string, kind AlertKind, day string) AlertKey {
	return AlertKey{Code: code, Kind: kind, Scope: day}
}

type AlertRecord struct {
	Key        AlertKey
	Count      int
	LastSentAt time.Time
}

type Decision int

const (
	DecisionSend Decision = iota
	DecisionSuppressed
	DecisionThrottled
)

func (d Decision) String() string {
	switch d {
	case DecisionSend:
		return "send"
	case DecisionSuppressed:
		return "suppressed"
	case DecisionThrottled:
		return "throttled"
	default:
		return "unknown"
	}
}

// Policy 去重与限流策略
type Policy struct {
	// PriceCap 同一监控价最多提醒次数
	PriceCap int
	// DailyCap 同一均线预警每天最多提醒次数
	DailyCap int
	// Cooldown 全局两条预警之间的最小间隔, 不区分股票和通道
	Cooldown time.Duration
}

func DefaultPolicy() Policy {
	return Policy{
		PriceCap: 1,
		DailyCap: 3,
		Cooldown: time.Minute,
	}
}

// Tracker 预警状态, 进程内只创建一次, 监控重启后仍然保留.
// 同一时间只有一个监控循环读写, 不加锁
type Tracker struct {
	policy     Policy
	records    map[AlertKey]*AlertRecord
	lastSentAt time.Time
	day        string
}

func NewTracker(policy Policy) *Tracker {
	if policy.PriceCap <= 0 {
		policy.PriceCap = 1
	}
	if policy.DailyCap <= 0 {
		policy.DailyCap = 1
	}
	return &Tracker{
		policy:  policy,
		records: make(map[AlertKey]*AlertRecord),
	}
}

func (t *Tracker) Policy() Policy {
	return t.policy
}

func (t *Tracker) cap(kind AlertKind) int {
	if kind.Daily() {
		return t.policy.DailyCap
	}
	return t.policy.PriceCap
}

// Check 先判断是否超过次数上限, 再判断全局冷却; 被限流的预警直接丢弃, 不计数
func (t *Tracker) Check(key AlertKey, now time.Time) Decision {
	if rec, ok := t.records[key]; ok && rec.Count >= t.cap(key.Kind) {
		return DecisionSuppressed
	}
	if !t.lastSentAt.IsZero() && now.Sub(t.lastSentAt) < t.policy.Cooldown {
		return DecisionThrottled
	}
	return DecisionSend
}

// MarkSent 仅在消息成功送达后调用
func (t *Tracker) MarkSent(key AlertKey, now time.Time) {
	rec, ok := t.records[key]
	if !ok {
		rec = &AlertRecord{Key: key}
		t.records[key] = rec
	}
	rec.Count++
	rec.LastSentAt = now
	t.lastSentAt = now
}

func (t *Tracker) Record(key AlertKey) (AlertRecord, bool) {
	rec, ok := t.records[key]
	if !ok {
		return AlertRecord{}, false
	}
	return *rec, true
}

func (t *Tracker) LastSentAt() time.Time {
	return t.lastSentAt
}

// Rollover 日期变化时清理前一天的均线记录, 返回清理条数
func (t *Tracker) Rollover(day string) int {
	if day == t.day {
		return 0
	}
	t.day = day
	pruned := 0
	for key := range t.records {
		if key.Kind.Daily() && key.Scope != day {
			delete(t.records, key)
			pruned++
		}
	}
	return pruned
}
