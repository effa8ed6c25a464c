// Package prometheus adapts sessionauth metrics to client_golang.
//
// [NewCollector] returns a prometheus.Collector that reads the engine snapshot at scrape
// time. Counters are published as sessionauth_*_total and the verification latency as the
// sessionauth_verify_latency_seconds histogram. Nothing is registered globally.
package prometheus
