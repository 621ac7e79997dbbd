package observe

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/jonwraymond/nodeops/pool"
)

// Metrics records execution metrics for fleet operations and for the
// connections that carry them.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Context: must honor cancellation/deadlines and return quickly.
// - Errors: implementations must not panic.
type Metrics interface {
	// RecordOp records one operation against one destination with its
	// duration and error status.
	RecordOp(ctx context.Context, meta OpMeta, duration time.Duration, err error)

	// RecordConnect records one connection attempt to a destination.
	RecordConnect(ctx context.Context, dest string, duration time.Duration, err error)

	// RecordDisconnect records one connection teardown.
	RecordDisconnect(ctx context.Context, dest string, duration time.Duration, err error)
}

// metricsImpl is the concrete implementation of Metrics.
type metricsImpl struct {
	meter metric.Meter

	opTotal    metric.Int64Counter
	opErrors   metric.Int64Counter
	opDuration metric.Float64Histogram

	connectTotal    metric.Int64Counter
	connectErrors   metric.Int64Counter
	connectDuration metric.Float64Histogram

	disconnectTotal  metric.Int64Counter
	disconnectErrors metric.Int64Counter
}

// newMetrics creates a new Metrics instance with the given meter.
func newMetrics(meter metric.Meter) (*metricsImpl, error) {
	opTotal, err := meter.Int64Counter(
		"node.op.total",
		metric.WithDescription("Total number of operations run against destinations"),
		metric.WithUnit("{call}"),
	)
	if err != nil {
		return nil, err
	}

	opErrors, err := meter.Int64Counter(
		"node.op.errors",
		metric.WithDescription("Total number of failed operations"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, err
	}

	opDuration, err := meter.Float64Histogram(
		"node.op.duration_ms",
		metric.WithDescription("Operation duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	connectTotal, err := meter.Int64Counter(
		"node.connect.total",
		metric.WithDescription("Total number of connection attempts"),
		metric.WithUnit("{call}"),
	)
	if err != nil {
		return nil, err
	}

	connectErrors, err := meter.Int64Counter(
		"node.connect.errors",
		metric.WithDescription("Total number of failed connection attempts"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, err
	}

	connectDuration, err := meter.Float64Histogram(
		"node.connect.duration_ms",
		metric.WithDescription("Connection establishment duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	disconnectTotal, err := meter.Int64Counter(
		"node.disconnect.total",
		metric.WithDescription("Total number of connection teardowns"),
		metric.WithUnit("{call}"),
	)
	if err != nil {
		return nil, err
	}

	disconnectErrors, err := meter.Int64Counter(
		"node.disconnect.errors",
		metric.WithDescription("Total number of failed connection teardowns"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, err
	}

	return &metricsImpl{
		meter:            meter,
		opTotal:          opTotal,
		opErrors:         opErrors,
		opDuration:       opDuration,
		connectTotal:     connectTotal,
		connectErrors:    connectErrors,
		connectDuration:  connectDuration,
		disconnectTotal:  disconnectTotal,
		disconnectErrors: disconnectErrors,
	}, nil
}

// RecordOp records metrics for one operation execution.
func (m *metricsImpl) RecordOp(ctx context.Context, meta OpMeta, duration time.Duration, err error) {
	attrs := []attribute.KeyValue{
		attribute.String("op.name", meta.Op),
	}
	if meta.Dest != "" {
		attrs = append(attrs, attribute.String("op.dest", meta.Dest))
	}
	opt := metric.WithAttributes(attrs...)

	m.opTotal.Add(ctx, 1, opt)
	if err != nil {
		m.opErrors.Add(ctx, 1, opt)
	}
	m.opDuration.Record(ctx, float64(duration.Milliseconds()), opt)
}

// RecordConnect records metrics for one connection attempt.
func (m *metricsImpl) RecordConnect(ctx context.Context, dest string, duration time.Duration, err error) {
	opt := metric.WithAttributes(attribute.String("op.dest", dest))

	m.connectTotal.Add(ctx, 1, opt)
	if err != nil {
		m.connectErrors.Add(ctx, 1, opt)
	}
	m.connectDuration.Record(ctx, float64(duration.Milliseconds()), opt)
}

// RecordDisconnect records metrics for one connection teardown.
func (m *metricsImpl) RecordDisconnect(ctx context.Context, dest string, duration time.Duration, err error) {
	opt := metric.WithAttributes(attribute.String("op.dest", dest))

	m.disconnectTotal.Add(ctx, 1, opt)
	if err != nil {
		m.disconnectErrors.Add(ctx, 1, opt)
	}
}

// noopMetrics is a metrics implementation that does nothing.
type noopMetrics struct{}

func (m *noopMetrics) RecordOp(ctx context.Context, meta OpMeta, duration time.Duration, err error) {
}

func (m *noopMetrics) RecordConnect(ctx context.Context, dest string, duration time.Duration, err error) {
}

func (m *noopMetrics) RecordDisconnect(ctx context.Context, dest string, duration time.Duration, err error) {
}

// RegisterPoolMetrics registers observable gauges that report p's state on
// every collection: pool.outstanding, pool.idle, and pool.waiting. The
// returned Registration unregisters the callback; unregister before closing
// a pool for good if the meter outlives it.
func RegisterPoolMetrics[C comparable](meter metric.Meter, p *pool.Pool[C]) (metric.Registration, error) {
	outstanding, err := meter.Int64ObservableGauge(
		"pool.outstanding",
		metric.WithDescription("Connections issued and not yet disconnected"),
		metric.WithUnit("{connection}"),
	)
	if err != nil {
		return nil, err
	}

	idle, err := meter.Int64ObservableGauge(
		"pool.idle",
		metric.WithDescription("Released connections available for reuse"),
		metric.WithUnit("{connection}"),
	)
	if err != nil {
		return nil, err
	}

	waiting, err := meter.Int64ObservableGauge(
		"pool.waiting",
		metric.WithDescription("Acquire calls parked waiting for capacity"),
		metric.WithUnit("{call}"),
	)
	if err != nil {
		return nil, err
	}

	return meter.RegisterCallback(func(ctx context.Context, o metric.Observer) error {
		m := p.Metrics()
		o.ObserveInt64(outstanding, int64(m.Outstanding))
		o.ObserveInt64(idle, int64(m.Idle))
		o.ObserveInt64(waiting, int64(m.Waiting))
		return nil
	}, outstanding, idle, waiting)
}
