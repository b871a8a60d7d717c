// Package observe provides application-wide observability: OpenTelemetry
// metrics with a Prometheus scrape bridge, tracing helpers, and trace-aware
// structured logging.
//
// A package-level default [Metrics] instance ([DefaultMetrics]) exists for
// convenience; tests should use [NewMetrics] with their own
// [metric.MeterProvider] to avoid cross-test pollution.
package observe

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// meterName is the instrumentation scope name for all Lingoa metrics.
const meterName = "github.com/yogeshsharma140781/Lingoa"

// Metrics holds all OpenTelemetry metric instruments for the application.
// The underlying OTel types are safe for concurrent use.
type Metrics struct {
	// TurnDuration tracks end-to-end turn latency, utterance in to reply
	// complete.
	TurnDuration metric.Float64Histogram

	// STTDuration tracks speech-to-text latency.
	STTDuration metric.Float64Histogram

	// LLMDuration tracks LLM call latency.
	LLMDuration metric.Float64Histogram

	// TTSDuration tracks speech synthesis latency.
	TTSDuration metric.Float64Histogram

	// Turns counts processed turns. Attributes: language, intent.
	Turns metric.Int64Counter

	// GuardOutcomes counts auxiliary-stage outcomes. Attributes:
	// stage (validation, intent, inference, translation, enforcement),
	// outcome (ok, triggered, degraded).
	GuardOutcomes metric.Int64Counter

	// ProviderRequests counts provider API calls. Attributes: provider,
	// kind, status.
	ProviderRequests metric.Int64Counter

	// ProviderErrors counts provider errors. Attributes: provider, kind.
	ProviderErrors metric.Int64Counter

	// ActiveSessions tracks live conversation sessions.
	ActiveSessions metric.Int64UpDownCounter

	// HTTPRequestDuration tracks HTTP latency. Attributes: method, path.
	HTTPRequestDuration metric.Float64Histogram
}

// latencyBuckets are histogram boundaries (seconds) sized for a voice
// pipeline: guards in tens of milliseconds, full turns in seconds.
var latencyBuckets = []float64{
	0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10,
}

// NewMetrics creates a fully initialised [Metrics] using the given meter
// provider.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	histogram := func(name, desc string) metric.Float64Histogram {
		if err != nil {
			return nil
		}
		var h metric.Float64Histogram
		h, err = m.Float64Histogram(name,
			metric.WithDescription(desc),
			metric.WithUnit("s"),
			metric.WithExplicitBucketBoundaries(latencyBuckets...),
		)
		return h
	}
	counter := func(name, desc string) metric.Int64Counter {
		if err != nil {
			return nil
		}
		var c metric.Int64Counter
		c, err = m.Int64Counter(name, metric.WithDescription(desc))
		return c
	}

	met.TurnDuration = histogram("lingoa.turn.duration", "End-to-end turn latency.")
	met.STTDuration = histogram("lingoa.stt.duration", "Speech-to-text latency.")
	met.LLMDuration = histogram("lingoa.llm.duration", "LLM call latency.")
	met.TTSDuration = histogram("lingoa.tts.duration", "Speech synthesis latency.")
	met.Turns = counter("lingoa.turns", "Processed turns by language and intent.")
	met.GuardOutcomes = counter("lingoa.guard.outcomes", "Auxiliary-stage outcomes by stage and outcome.")
	met.ProviderRequests = counter("lingoa.provider.requests", "Provider API requests by provider, kind, and status.")
	met.ProviderErrors = counter("lingoa.provider.errors", "Provider errors by provider and kind.")
	if err != nil {
		return nil, err
	}

	if met.ActiveSessions, err = m.Int64UpDownCounter("lingoa.active_sessions",
		metric.WithDescription("Number of live conversation sessions."),
	); err != nil {
		return nil, err
	}
	if met.HTTPRequestDuration, err = m.Float64Histogram("lingoa.http.request.duration",
		metric.WithDescription("HTTP request latency by method and path."),
		metric.WithUnit("s"),
	); err != nil {
		return nil, err
	}

	return met, nil
}

var (
	defaultMetrics     *Metrics
	defaultMetricsOnce sync.Once
)

// DefaultMetrics returns the package-level [Metrics], created on first call
// from the global meter provider. Panics only if instrument creation fails,
// which cannot happen with the default no-op provider.
func DefaultMetrics() *Metrics {
	defaultMetricsOnce.Do(func() {
		var err error
		defaultMetrics, err = NewMetrics(otel.GetMeterProvider())
		if err != nil {
			panic("observe: create default metrics: " + err.Error())
		}
	})
	return defaultMetrics
}

// RecordTurn records one processed turn with its duration.
func (m *Metrics) RecordTurn(ctx context.Context, language, intent string, d time.Duration) {
	attrs := metric.WithAttributes(
		attribute.String("language", language),
		attribute.String("intent", intent),
	)
	m.Turns.Add(ctx, 1, attrs)
	m.TurnDuration.Record(ctx, d.Seconds(), attrs)
}

// RecordGuard records the outcome of one auxiliary stage.
func (m *Metrics) RecordGuard(ctx context.Context, stage, outcome string) {
	m.GuardOutcomes.Add(ctx, 1, metric.WithAttributes(
		attribute.String("stage", stage),
		attribute.String("outcome", outcome),
	))
}

// RecordProviderRequest records one provider API call.
func (m *Metrics) RecordProviderRequest(ctx context.Context, provider, kind, status string) {
	m.ProviderRequests.Add(ctx, 1, metric.WithAttributes(
		attribute.String("provider", provider),
		attribute.String("kind", kind),
		attribute.String("status", status),
	))
}

// RecordProviderError records one provider failure.
func (m *Metrics) RecordProviderError(ctx context.Context, provider, kind string) {
	m.ProviderErrors.Add(ctx, 1, metric.WithAttributes(
		attribute.String("provider", provider),
		attribute.String("kind", kind),
	))
}
