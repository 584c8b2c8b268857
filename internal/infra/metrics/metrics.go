package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics: счётчики обращений к бэкенду склада и обновлений списка.
// Нулевой указатель допустим: методы ничего не делают.
type Metrics struct {
	requests   *prometheus.CounterVec
	latency    *prometheus.HistogramVec
	refreshes  *prometheus.CounterVec
	supplies   prometheus.Gauge
	adjustment *prometheus.CounterVec
}

func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "supplybot",
			Name:      "backend_requests_total",
			Help:      "Inventory backend calls by operation and outcome.",
		}, []string{"operation", "outcome"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "supplybot",
			Name:      "backend_request_duration_seconds",
			Help:      "Inventory backend call latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		refreshes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "supplybot",
			Name:      "inventory_refresh_total",
			Help:      "Supply list refreshes by outcome.",
		}, []string{"outcome"}),
		supplies: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "supplybot",
			Name:      "inventory_supplies",
			Help:      "Supply rows (one per color variant) in the last loaded list.",
		}),
		adjustment: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "supplybot",
			Name:      "stock_adjustments_total",
			Help:      "Stock add/subtract operations by action and outcome.",
		}, []string{"action", "outcome"}),
	}
	if reg != nil {
		reg.MustRegister(m.requests, m.latency, m.refreshes, m.supplies, m.adjustment)
	}
	return m
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

func (m *Metrics) ObserveRequest(operation string, started time.Time, err error) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(operation, outcome(err)).Inc()
	m.latency.WithLabelValues(operation).Observe(time.Since(started).Seconds())
}

func (m *Metrics) ObserveRefresh(rows int, err error) {
	if m == nil {
		return
	}
	m.refreshes.WithLabelValues(outcome(err)).Inc()
	if err == nil {
		m.supplies.Set(float64(rows))
	}
}

func (m *Metrics) ObserveAdjustment(action string, err error) {
	if m == nil {
		return
	}
	m.adjustment.WithLabelValues(action, outcome(err)).Inc()
}
