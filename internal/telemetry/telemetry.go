// Package telemetry wires the ambient observability stack: structured
// logging via log/slog backed by the OpenTelemetry log bridge, a meter for
// handle/request counters, and a tracer for per-script and per-handler
// spans — the same OTel chain already present in the teacher's go.mod,
// generalized from underused to load-bearing.
package telemetry

import (
	"context"
	"log/slog"
	"os"

	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploggrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/metric"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

// Providers bundles the constructed SDK providers so the host binary can
// shut them down cleanly on exit.
type Providers struct {
	Logger  *slog.Logger
	Meter   metric.Meter
	Tracer  trace.Tracer
	Metrics *Metrics

	loggerProvider *sdklog.LoggerProvider
	meterProvider  *sdkmetric.MeterProvider
	tracerProvider *sdktrace.TracerProvider
}

// Metrics bundles the counters the runtime and its bridges report through:
// handle registrations (by kind), web requests dispatched to the evaluator,
// and timer callbacks posted. Every increment method is nil-safe so a
// caller never needs to check whether a collector was reachable at
// startup — telemetry stays ambient, never load-bearing.
type Metrics struct {
	Tracer trace.Tracer

	handleRegistrations metric.Int64Counter
	webRequests         metric.Int64Counter
	timerFires          metric.Int64Counter
}

func newMetrics(meter metric.Meter, tracer trace.Tracer) *Metrics {
	m := &Metrics{Tracer: tracer}
	m.handleRegistrations, _ = meter.Int64Counter(
		"flowlang.handles.registered",
		metric.WithDescription("count of async handles registered, by kind"),
	)
	m.webRequests, _ = meter.Int64Counter(
		"flowlang.web.requests",
		metric.WithDescription("count of web requests dispatched to the evaluator"),
	)
	m.timerFires, _ = meter.Int64Counter(
		"flowlang.timer.fires",
		metric.WithDescription("count of timer callbacks posted by interval/timeout handles"),
	)
	return m
}

func (m *Metrics) IncHandleRegistered(kind string) {
	if m == nil || m.handleRegistrations == nil {
		return
	}
	m.handleRegistrations.Add(context.Background(), 1, metric.WithAttributes(attribute.String("kind", kind)))
}

func (m *Metrics) IncWebRequest() {
	if m == nil || m.webRequests == nil {
		return
	}
	m.webRequests.Add(context.Background(), 1)
}

func (m *Metrics) IncTimerFire() {
	if m == nil || m.timerFires == nil {
		return
	}
	m.timerFires.Add(context.Background(), 1)
}

// StartSpan starts a span on the shared tracer, a no-op span if no
// collector was reachable at startup (otel.Tracer always returns a usable
// no-op implementation in that case).
func (m *Metrics) StartSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	if m == nil || m.Tracer == nil {
		return ctx, trace.SpanFromContext(ctx)
	}
	return m.Tracer.Start(ctx, name)
}

// Setup constructs the full OTLP-over-gRPC log/metric/trace pipeline. If
// any exporter fails to dial (no collector reachable), Setup still returns
// a working Providers whose logger falls back to stdout JSON — telemetry
// is ambient, never load-bearing for script execution.
func Setup(ctx context.Context, serviceName string) *Providers {
	p := &Providers{}

	if exp, err := otlploggrpc.New(ctx); err == nil {
		processor := sdklog.NewBatchProcessor(exp)
		p.loggerProvider = sdklog.NewLoggerProvider(sdklog.WithProcessor(processor))
		p.Logger = otelslog.NewLogger(serviceName, otelslog.WithLoggerProvider(p.loggerProvider))
	} else {
		p.Logger = slog.New(slog.NewJSONHandler(os.Stdout, nil))
	}

	if exp, err := otlpmetricgrpc.New(ctx); err == nil {
		p.meterProvider = sdkmetric.NewMeterProvider(sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exp)))
		otel.SetMeterProvider(p.meterProvider)
	}
	p.Meter = otel.Meter(serviceName)

	if exp, err := otlptracegrpc.New(ctx); err == nil {
		p.tracerProvider = sdktrace.NewTracerProvider(sdktrace.WithBatcher(exp))
		otel.SetTracerProvider(p.tracerProvider)
	}
	p.Tracer = otel.Tracer(serviceName)

	p.Metrics = newMetrics(p.Meter, p.Tracer)

	return p
}

// Shutdown flushes and closes every provider that was successfully
// constructed.
func (p *Providers) Shutdown(ctx context.Context) {
	if p.loggerProvider != nil {
		p.loggerProvider.Shutdown(ctx)
	}
	if p.meterProvider != nil {
		p.meterProvider.Shutdown(ctx)
	}
	if p.tracerProvider != nil {
		p.tracerProvider.Shutdown(ctx)
	}
}
