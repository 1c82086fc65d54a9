// Package metrics records generation metrics.
//
// Components receive a Recorder and default to NoopRecorder, so nothing has to
// check for nil:
//
//	recorder := metrics.NewPrometheusRecorder(nil)
//	pipeline := build.New(opts).WithRecorder(recorder)
//
// Runs are short-lived, so the Prometheus recorder is exported as a
// node_exporter textfile (WriteTextfile) instead of being scraped.
package metrics
