package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// MonitorRunning 监控循环是否在运行
	MonitorRunning = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "stock_monitor_running",
		Help: "Whether the monitor loop is running (1) or stopped (0).",
	})

	// CyclesTotal 按结果统计的轮询次数: ok, skipped, failed, panic
	CyclesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "stock_monitor_cycles_total",
		Help: "The total number of monitor cycles by result.",
	}, []string{"result"})

	CycleDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "stock_monitor_cycle_duration_seconds",
		Help:    "Duration of one monitor cycle.",
		Buckets: prometheus.DefBuckets,
	})

	FetchFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "stock_monitor_fetch_failures_total",
		Help: "The total number of failed quote fetches.",
	})

	AlertsSentTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "stock_monitor_alerts_sent_total",
		Help: "The total number of alerts delivered, by alert kind.",
	}, []string{"kind"})

	// AlertsDroppedTotal reason: suppressed, throttled, notify_failed
	AlertsDroppedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "stock_monitor_alerts_dropped_total",
		Help: "The total number of alert occurrences not delivered, by reason.",
	}, []string{"reason"})

	NotifyFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "stock_monitor_notify_failures_total",
		Help: "The total number of failed notification deliveries, by channel.",
	}, []string{"channel"})

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "stock_monitor_http_request_duration_seconds",
			Help: "Duration of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)
)
