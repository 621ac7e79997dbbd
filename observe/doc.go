// Package observe provides observability primitives for fleet operations.
//
// It is a pure instrumentation library: no pooling, no transport, no I/O
// beyond exporter setup. Consumers wrap their pool connectors and fan-out
// operations with the middleware in this package and register pool gauges
// against the configured meter.
package observe
