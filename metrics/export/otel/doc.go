// Package otel exposes sessionauth metrics through an OpenTelemetry Meter.
//
// [NewExporter] registers one observable counter per engine counter and one gauge per
// cumulative latency bucket; a single callback reads the engine snapshot on every
// collection. The caller owns the MeterProvider.
package otel
