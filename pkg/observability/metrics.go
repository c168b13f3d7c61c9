package observability

import (
	"errors"

	"github.com/ethpandaops/semlook/pkg/models"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

//nolint:gochecknoglobals // Prometheus metrics must be global for registration
var (
	// DocumentsLoadedTotal counts parsed YAML documents
	DocumentsLoadedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "semlook_documents_loaded_total",
			Help: "Total number of semantic model documents loaded",
		},
	)

	// ModelsBuiltTotal counts semantic models by build outcome
	ModelsBuiltTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "semlook_models_built_total",
			Help: "Total number of semantic models built",
		},
		[]string{"status"}, // status: built, disabled, filtered
	)

	// MetricsBuiltTotal counts metrics by kind and ownership
	MetricsBuiltTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "semlook_metrics_built_total",
			Help: "Total number of metrics built",
		},
		[]string{"type", "owned"},
	)

	// BuildErrorsTotal counts skipped elements by error class
	BuildErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "semlook_build_errors_total",
			Help: "Total number of elements rejected while building",
		},
		[]string{"kind"}, // kind: structural, field, reference, other
	)

	// ValidationIssuesTotal counts connectivity issues
	ValidationIssuesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "semlook_validation_issues_total",
			Help: "Total number of validation issues found",
		},
		[]string{"type", "severity"},
	)

	// JoinsInferredTotal counts inferred explore joins
	JoinsInferredTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "semlook_joins_inferred_total",
			Help: "Total number of explore joins inferred",
		},
		[]string{"relationship", "expose"},
	)

	// FilesGeneratedTotal counts rendered output files
	FilesGeneratedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "semlook_files_generated_total",
			Help: "Total number of LookML files generated",
		},
		[]string{"kind"}, // kind: view, explore
	)

	// StageDuration measures pipeline stage duration in seconds
	StageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "semlook_stage_duration_seconds",
			Help:    "Pipeline stage duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"stage"}, // stage: load, build, validate, render, write
	)
)

// RecordDocumentsLoaded records loaded documents
func RecordDocumentsLoaded(count int) {
	DocumentsLoadedTotal.Add(float64(count))
}

// RecordModels records model counts for a build outcome
func RecordModels(status string, count int) {
	ModelsBuiltTotal.WithLabelValues(status).Add(float64(count))
}

// RecordMetric records one built metric
func RecordMetric(metricType models.MetricType, owned bool) {
	label := "false"
	if owned {
		label = "true"
	}

	MetricsBuiltTotal.WithLabelValues(string(metricType), label).Inc()
}

// RecordBuildError classifies and records a builder error
func RecordBuildError(err error) {
	kind := "other"

	switch {
	case errors.Is(err, models.ErrStructural):
		kind = "structural"
	case errors.Is(err, models.ErrField):
		kind = "field"
	case errors.Is(err, models.ErrReference):
		kind = "reference"
	}

	BuildErrorsTotal.WithLabelValues(kind).Inc()
}

// RecordValidationIssue records one validation issue
func RecordValidationIssue(issueType, severity string) {
	ValidationIssuesTotal.WithLabelValues(issueType, severity).Inc()
}

// RecordJoin records one inferred join
func RecordJoin(relationship, expose string) {
	JoinsInferredTotal.WithLabelValues(relationship, expose).Inc()
}

// RecordFileGenerated records one generated file
func RecordFileGenerated(kind string) {
	FilesGeneratedTotal.WithLabelValues(kind).Inc()
}

// RecordStage records the duration of a pipeline stage
func RecordStage(stage string, duration float64) {
	StageDuration.WithLabelValues(stage).Observe(duration)
}
