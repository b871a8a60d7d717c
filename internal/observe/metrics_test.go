package observe_test

import (
	"context"
	"testing"
	"time"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/yogeshsharma140781/Lingoa/internal/observe"
)

// newTestMetrics builds Metrics against a manual reader so recorded values
// can be collected and asserted.
func newTestMetrics(t *testing.T) (*observe.Metrics, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	m, err := observe.NewMetrics(mp)
	if err != nil {
		t.Fatalf("NewMetrics: %v", err)
	}
	return m, reader
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) metricdata.ResourceMetrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("collect: %v", err)
	}
	return rm
}

func findMetric(rm metricdata.ResourceMetrics, name string) (metricdata.Metrics, bool) {
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name == name {
				return m, true
			}
		}
	}
	return metricdata.Metrics{}, false
}

// TestRecordTurn increments the counter and histogram together.
func TestRecordTurn(t *testing.T) {
	t.Parallel()

	m, reader := newTestMetrics(t)
	m.RecordTurn(context.Background(), "es", "conversation", 1200*time.Millisecond)

	rm := collect(t, reader)
	turns, ok := findMetric(rm, "lingoa.turns")
	if !ok {
		t.Fatal("lingoa.turns not recorded")
	}
	sum, ok := turns.Data.(metricdata.Sum[int64])
	if !ok || len(sum.DataPoints) != 1 || sum.DataPoints[0].Value != 1 {
		t.Errorf("unexpected turns data: %+v", turns.Data)
	}
	if _, ok := findMetric(rm, "lingoa.turn.duration"); !ok {
		t.Error("lingoa.turn.duration not recorded")
	}
}

// TestRecordGuard tags stage and outcome.
func TestRecordGuard(t *testing.T) {
	t.Parallel()

	m, reader := newTestMetrics(t)
	m.RecordGuard(context.Background(), "validation", "degraded")
	m.RecordGuard(context.Background(), "validation", "degraded")

	rm := collect(t, reader)
	guards, ok := findMetric(rm, "lingoa.guard.outcomes")
	if !ok {
		t.Fatal("lingoa.guard.outcomes not recorded")
	}
	sum, ok := guards.Data.(metricdata.Sum[int64])
	if !ok || len(sum.DataPoints) != 1 {
		t.Fatalf("unexpected guard data: %+v", guards.Data)
	}
	if sum.DataPoints[0].Value != 2 {
		t.Errorf("guard count = %d, want 2", sum.DataPoints[0].Value)
	}
}

// TestActiveSessions goes up and down.
func TestActiveSessions(t *testing.T) {
	t.Parallel()

	m, reader := newTestMetrics(t)
	ctx := context.Background()
	m.ActiveSessions.Add(ctx, 1)
	m.ActiveSessions.Add(ctx, 1)
	m.ActiveSessions.Add(ctx, -1)

	rm := collect(t, reader)
	sessions, ok := findMetric(rm, "lingoa.active_sessions")
	if !ok {
		t.Fatal("lingoa.active_sessions not recorded")
	}
	sum, ok := sessions.Data.(metricdata.Sum[int64])
	if !ok || len(sum.DataPoints) != 1 || sum.DataPoints[0].Value != 1 {
		t.Errorf("unexpected sessions data: %+v", sessions.Data)
	}
}
