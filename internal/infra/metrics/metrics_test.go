package metrics

import (
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveRequest(t *testing.T) {
	m := New(prometheus.NewRegistry())
	started := time.Now()

	m.ObserveRequest("list_supplies", started, nil)
	m.ObserveRequest("list_supplies", started, nil)
	m.ObserveRequest("list_supplies", started, errors.New("timeout"))

	testCases := []struct {
		outcome string
		want    float64
	}{
		{"ok", 2},
		{"error", 1},
	}
	for _, tc := range testCases {
		got := testutil.ToFloat64(m.requests.WithLabelValues("list_supplies", tc.outcome))
		if got != tc.want {
			t.Errorf("outcome %s: expected %v, got %v", tc.outcome, tc.want, got)
		}
	}
	if n := testutil.CollectAndCount(m.latency); n != 1 {
		t.Errorf("Expected one latency series, got %d", n)
	}
}

func TestObserveRefresh_GaugeOnlyOnSuccess(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveRefresh(42, nil)
	if got := testutil.ToFloat64(m.supplies); got != 42 {
		t.Fatalf("Expected 42 supplies, got %v", got)
	}

	m.ObserveRefresh(0, errors.New("backend down"))
	if got := testutil.ToFloat64(m.supplies); got != 42 {
		t.Errorf("Expected failed refresh to keep 42, got %v", got)
	}
	if got := testutil.ToFloat64(m.refreshes.WithLabelValues("ok")); got != 1 {
		t.Errorf("Expected 1 ok refresh, got %v", got)
	}
	if got := testutil.ToFloat64(m.refreshes.WithLabelValues("error")); got != 1 {
		t.Errorf("Expected 1 failed refresh, got %v", got)
	}
}

func TestObserveAdjustment(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveAdjustment("add", nil)
	m.ObserveAdjustment("subtract", errors.New("insufficient stock"))
	m.ObserveAdjustment("subtract", nil)

	testCases := []struct {
		action, outcome string
		want            float64
	}{
		{"add", "ok", 1},
		{"add", "error", 0},
		{"subtract", "ok", 1},
		{"subtract", "error", 1},
	}
	for _, tc := range testCases {
		got := testutil.ToFloat64(m.adjustment.WithLabelValues(tc.action, tc.outcome))
		if got != tc.want {
			t.Errorf("%s/%s: expected %v, got %v", tc.action, tc.outcome, tc.want, got)
		}
	}
}

func TestNew_RegistersAll(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)
	m.ObserveRequest("get_stock", time.Now(), nil)
	m.ObserveRefresh(1, nil)
	m.ObserveAdjustment("add", nil)

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Expected gather to succeed: %v", err)
	}
	var names []string
	for _, f := range families {
		names = append(names, f.GetName())
	}
	sort.Strings(names)
	want := []string{
		"supplybot_backend_request_duration_seconds",
		"supplybot_backend_requests_total",
		"supplybot_inventory_refresh_total",
		"supplybot_inventory_supplies",
		"supplybot_stock_adjustments_total",
	}
	if len(names) != len(want) {
		t.Fatalf("Expected %v, got %v", want, names)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("Expected %s, got %s", want[i], names[i])
		}
	}
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	m.ObserveRequest("list_supplies", time.Now(), nil)
	m.ObserveRefresh(3, nil)
	m.ObserveAdjustment("add", errors.New("x"))
}
