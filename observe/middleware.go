package observe

import (
	"context"
	"time"

	"github.com/jonwraymond/nodeops/fanout"
	"github.com/jonwraymond/nodeops/pool"
)

// Middleware wraps fleet operations and connectors with observability
// (tracing, metrics, logging).
//
// Contract:
//   - Concurrency: wrapped ops and connectors are safe for concurrent use if
//     the originals are.
//   - Context: propagates context through tracing spans.
//   - Errors: errors from the wrapped op or connector are recorded and
//     propagated unchanged.
//   - Ownership: connections and results are passed through without
//     modification.
type Middleware struct {
	tracer  Tracer
	metrics Metrics
	logger  Logger
}

// NewMiddleware creates a new Middleware with the given observability components.
func NewMiddleware(tracer Tracer, metrics Metrics, logger Logger) *Middleware {
	return &Middleware{
		tracer:  tracer,
		metrics: metrics,
		logger:  logger,
	}
}

// MiddlewareFromObserver creates a Middleware from an Observer.
// This is a convenience function for common use cases.
func MiddlewareFromObserver(obs Observer) (*Middleware, error) {
	if obs == nil {
		return nil, ErrNilObserver
	}

	tracer := newTracer(obs.Tracer())

	metrics, err := newMetrics(obs.Meter())
	if err != nil {
		return nil, err
	}

	return NewMiddleware(tracer, metrics, obs.Logger()), nil
}

// WrapOp wraps op with tracing, metrics, and logging under the given
// operation name. Each invocation produces one span named "node.op.<name>",
// one metrics record, and one log entry scoped to the destination.
//
// WrapOp is a function rather than a method so the wrapped op keeps its
// connection and result types.
func WrapOp[C comparable, R any](m *Middleware, name string, op fanout.Op[C, R]) fanout.Op[C, R] {
	return func(ctx context.Context, dest string, conn C) (R, error) {
		meta := OpMeta{Op: name, Dest: dest}

		ctx, span := m.tracer.StartSpan(ctx, meta)

		start := time.Now()
		result, err := op(ctx, dest, conn)
		duration := time.Since(start)

		// End span (records error status if err != nil)
		m.tracer.EndSpan(span, err)

		m.metrics.RecordOp(ctx, meta, duration, err)

		destLogger := m.logger.WithDest(dest)
		fields := []Field{
			{Key: "op", Value: name},
			{Key: "duration_ms", Value: float64(duration.Milliseconds())},
		}

		if err != nil {
			fields = append(fields, Field{Key: "error", Value: err.Error()})
			destLogger.Error(ctx, "operation failed", fields...)
		} else {
			destLogger.Info(ctx, "operation completed", fields...)
		}

		return result, err
	}
}

// WrapConnector wraps connector with metrics and logging on every Connect
// and Disconnect. Connector calls do not get their own spans; they show up
// in the node.connect.* and node.disconnect.* instruments instead.
func WrapConnector[C comparable](m *Middleware, connector pool.Connector[C]) pool.Connector[C] {
	return &instrumentedConnector[C]{
		mw:   m,
		next: connector,
	}
}

// instrumentedConnector decorates a Connector with metrics and logging.
type instrumentedConnector[C comparable] struct {
	mw   *Middleware
	next pool.Connector[C]
}

func (c *instrumentedConnector[C]) Connect(ctx context.Context, dest string) (C, error) {
	start := time.Now()
	conn, err := c.next.Connect(ctx, dest)
	duration := time.Since(start)

	c.mw.metrics.RecordConnect(ctx, dest, duration, err)

	destLogger := c.mw.logger.WithDest(dest)
	if err != nil {
		destLogger.Error(ctx, "connect failed",
			Field{Key: "duration_ms", Value: float64(duration.Milliseconds())},
			Field{Key: "error", Value: err.Error()},
		)
	} else {
		destLogger.Debug(ctx, "connected",
			Field{Key: "duration_ms", Value: float64(duration.Milliseconds())},
		)
	}

	return conn, err
}

func (c *instrumentedConnector[C]) Disconnect(ctx context.Context, conn C) error {
	start := time.Now()
	err := c.next.Disconnect(ctx, conn)
	duration := time.Since(start)

	// Disconnect may run with a pool's internal lock held, so this path
	// must not call back into the pool.
	c.mw.metrics.RecordDisconnect(ctx, "", duration, err)

	if err != nil {
		c.mw.logger.Error(ctx, "disconnect failed",
			Field{Key: "error", Value: err.Error()},
		)
	} else {
		c.mw.logger.Debug(ctx, "disconnected")
	}

	return err
}
