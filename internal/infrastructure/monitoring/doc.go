/*
Package monitoring provides Prometheus metrics for browser activity.

# Overview

Every HTTP round trip a browser performs is counted and timed by host,
method and status. Page loads are counted separately by outcome, so redirect
hops followed inside one navigation show up as extra dispatches.

# Usage

	reg := prometheus.NewRegistry()
	metrics := monitoring.NewMetrics(reg)

	// wrap any transport
	client := &http.Client{Transport: monitoring.Transport(metrics, http.DefaultTransport)}

	// or install the browser plugin
	b, err := browser.New(browser.WithPlugins(metricsplugin.New(metrics)))

	fmt.Println(metrics.Snapshot().TotalFetches)

# Metrics Endpoint

Callers that run a long-lived process can expose reg with promhttp:

	http.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
*/
package monitoring
