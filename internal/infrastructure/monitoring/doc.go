/*
Package monitoring provides request metrics collection.

# Overview

This package implements Prometheus-based metrics for the request manager,
tracking completed lifecycles by method, outcome and status code along
with duration and body sizes.

# Features

- Lifecycle metrics (latency, outcome, status)
- Request and response body size histograms
- In-flight gauge and auth challenge counter
- Requests refused before dispatch, by reason
- Snapshot of running totals for summaries

# Usage

	// Create metrics on a dedicated registry
	reg := prometheus.NewRegistry()
	metrics := monitoring.NewMetrics(reg)

	// Time a lifecycle
	timer := monitoring.NewTimer(metrics, "GET", 0)
	// ... perform request ...
	timer.Stop("success", 200, 512)

# Metrics Endpoint

Expose metrics via the standard Prometheus handler:

	http.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
*/
package monitoring
