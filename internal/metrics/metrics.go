// Package metrics 定义采集与发送相关的 Prometheus 指标
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "jobalert"

// Metrics 所有组件共用一份，nil 时各组件跳过上报
type Metrics struct {
	FetchTotal     *prometheus.CounterVec
	LinksHarvested *prometheus.CounterVec
	HarvestSeconds prometheus.Histogram
	RunsTotal      *prometheus.CounterVec
	EmailsTotal    *prometheus.CounterVec
	LastRunUnix    prometheus.Gauge
}

// New 注册到给定的 Registerer；传 nil 使用默认注册表
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		FetchTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "harvest",
			Name:      "fetch_total",
			Help:      "Source page fetches by source and result",
		}, []string{"source", "result"}),
		LinksHarvested: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "harvest",
			Name:      "links_total",
			Help:      "Job links accepted per source",
		}, []string{"source"}),
		HarvestSeconds: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "harvest",
			Name:      "cycle_duration_seconds",
			Help:      "Wall-clock duration of one pass over the catalog",
			Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600},
		}),
		RunsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scheduler",
			Name:      "runs_total",
			Help:      "Scheduled runs by outcome",
		}, []string{"status"}),
		EmailsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "notifier",
			Name:      "emails_total",
			Help:      "Digest emails by result",
		}, []string{"result"}),
		LastRunUnix: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "scheduler",
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time of the last fired run",
		}),
	}
}

func (m *Metrics) ObserveFetch(source string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.FetchTotal.WithLabelValues(source, result).Inc()
}

func (m *Metrics) ObserveLinks(source string, n int) {
	if m == nil || n == 0 {
		return
	}
	m.LinksHarvested.WithLabelValues(source).Add(float64(n))
}

func (m *Metrics) ObserveHarvest(d time.Duration) {
	if m == nil {
		return
	}
	m.HarvestSeconds.Observe(d.Seconds())
}

func (m *Metrics) ObserveRun(status string, at time.Time) {
	if m == nil {
		return
	}
	m.RunsTotal.WithLabelValues(status).Inc()
	m.LastRunUnix.Set(float64(at.Unix()))
}

func (m *Metrics) ObserveEmail(err error) {
	if m == nil {
		return
	}
	result := "sent"
	if err != nil {
		result = "failed"
	}
	m.EmailsTotal.WithLabelValues(result).Inc()
}
