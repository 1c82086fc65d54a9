package metrics

import (
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	registry         *prom.Registry
	stageDuration    *prom.GaugeVec
	stageResults     *prom.CounterVec
	buildDuration    prom.Gauge
	buildOutcome     *prom.CounterVec
	lastSuccess      prom.Gauge
	files            *prom.CounterVec
	validationIssues *prom.GaugeVec
}

// NewPrometheusRecorder constructs and registers the generation metrics on reg
// (a fresh registry when nil).
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		registry: reg,
		stageDuration: prom.NewGaugeVec(prom.GaugeOpts{
			Namespace: "labdocs",
			Name:      "stage_duration_seconds",
			Help:      "Duration of the last run of each generation stage",
		}, []string{"stage"}),
		stageResults: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "labdocs",
			Name:      "stage_results_total",
			Help:      "Stage result counts by outcome",
		}, []string{"stage", "result"}),
		buildDuration: prom.NewGauge(prom.GaugeOpts{
			Namespace: "labdocs",
			Name:      "build_duration_seconds",
			Help:      "Duration of the last generation run",
		}),
		buildOutcome: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "labdocs",
			Name:      "build_outcomes_total",
			Help:      "Generation outcomes by final status",
		}, []string{"outcome"}),
		lastSuccess: prom.NewGauge(prom.GaugeOpts{
			Namespace: "labdocs",
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last successful generation run",
		}),
		files: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "labdocs",
			Name:      "files_total",
			Help:      "Files written to the output directory by kind",
		}, []string{"kind"}),
		validationIssues: prom.NewGaugeVec(prom.GaugeOpts{
			Namespace: "labdocs",
			Name:      "validation_issues",
			Help:      "Validation findings of the last run by severity",
		}, []string{"severity"}),
	}
	reg.MustRegister(pr.stageDuration, pr.stageResults, pr.buildDuration, pr.buildOutcome,
		pr.lastSuccess, pr.files, pr.validationIssues)
	return pr
}

// Registry returns the registry the metrics are registered on.
func (p *PrometheusRecorder) Registry() *prom.Registry { return p.registry }

func (p *PrometheusRecorder) ObserveStageDuration(stage string, d time.Duration) {
	p.stageDuration.WithLabelValues(stage).Set(d.Seconds())
}

func (p *PrometheusRecorder) IncStageResult(stage string, result ResultLabel) {
	p.stageResults.WithLabelValues(stage, string(result)).Inc()
}

func (p *PrometheusRecorder) ObserveBuildDuration(d time.Duration) {
	p.buildDuration.Set(d.Seconds())
}

func (p *PrometheusRecorder) IncBuildOutcome(outcome string) {
	p.buildOutcome.WithLabelValues(outcome).Inc()
	if outcome == "success" {
		p.lastSuccess.SetToCurrentTime()
	}
}

func (p *PrometheusRecorder) AddFiles(kind FileKind, n int) {
	p.files.WithLabelValues(string(kind)).Add(float64(n))
}

func (p *PrometheusRecorder) SetValidationIssues(errors, warnings int) {
	p.validationIssues.WithLabelValues("error").Set(float64(errors))
	p.validationIssues.WithLabelValues("warning").Set(float64(warnings))
}

// WriteTextfile writes the current metrics in the text exposition format for
// the node_exporter textfile collector. The file is replaced atomically.
func (p *PrometheusRecorder) WriteTextfile(path string) error {
	return prom.WriteToTextfile(path, p.registry)
}
