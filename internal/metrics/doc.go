// Package metrics provides build metrics behind the Recorder interface.
//
// Components default to NoopRecorder, so metrics collection needs no nil checks
// in the pipeline. A PrometheusRecorder is injected when the user asks for
// metrics:
//
//	reg := prometheus.NewRegistry()
//	svc := build.NewBuildService().WithRecorder(metrics.NewPrometheusRecorder(reg))
//
// The registry is then exported with WriteTextfile (build --metrics-file) or
// served with HTTPHandler (watch --metrics-addr).
package metrics
