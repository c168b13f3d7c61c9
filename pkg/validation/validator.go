// Package validation checks that every metric's measures can be joined from
// the model of its primary entity
package validation

import (
	"errors"
	"fmt"
	"sort"

	"github.com/ethpandaops/semlook/pkg/dependencies"
	"github.com/ethpandaops/semlook/pkg/models"
	"github.com/ethpandaops/semlook/pkg/observability"
	"github.com/sirupsen/logrus"
)

// Validator defines the interface for semantic model validation
type Validator interface {
	// Validate checks every metric against the join graph of modelList.
	// metrics should include unowned metrics.
	Validate(modelList []*models.ProcessedModel, metrics []*models.Metric) *Result
}

// connectivityValidator implements the Validator interface
type connectivityValidator struct {
	log logrus.FieldLogger
}

// NewConnectivityValidator creates a new entity connectivity validator
func NewConnectivityValidator(log logrus.FieldLogger) Validator {
	return &connectivityValidator{
		log: log.WithField("service", "validator"),
	}
}

// validationRun holds the indexes shared by the checks of one Validate call
type validationRun struct {
	graph         *dependencies.JoinGraph
	resolve       models.MetricResolver
	metricOwners  map[string]string
	measureOwners map[string][]string
	ambiguous     map[string][]string
	result        *Result
}

// Validate checks every metric against the join graph of modelList
func (v *connectivityValidator) Validate(modelList []*models.ProcessedModel, metrics []*models.Metric) *Result {
	run := newValidationRun(modelList, metrics)

	v.checkAmbiguousEntities(run)
	v.checkMetricReferences(run, metrics)

	for _, metric := range metrics {
		v.checkMetric(run, metric)
	}

	for _, issue := range run.result.Issues {
		observability.RecordValidationIssue(string(issue.Type), string(issue.Severity))

		v.log.WithFields(logrus.Fields{
			"metric": issue.Metric,
			"model":  issue.Model,
			"type":   issue.Type,
		}).Debug(issue.Message)
	}

	v.log.WithFields(logrus.Fields{
		"models":   len(modelList),
		"metrics":  len(metrics),
		"errors":   len(run.result.Errors()),
		"warnings": len(run.result.Warnings()),
	}).Info("Validated entity connectivity")

	return run.result
}

func newValidationRun(modelList []*models.ProcessedModel, metrics []*models.Metric) *validationRun {
	graph := dependencies.NewJoinGraph()
	graph.BuildGraph(modelList)

	byName := make(map[string]*models.Metric, len(metrics))
	for _, metric := range metrics {
		if _, exists := byName[metric.Name]; !exists {
			byName[metric.Name] = metric
		}
	}

	run := &validationRun{
		graph: graph,
		resolve: func(name string) (*models.Metric, bool) {
			metric, ok := byName[name]

			return metric, ok
		},
		metricOwners:  make(map[string]string),
		measureOwners: make(map[string][]string),
		ambiguous:     graph.AmbiguousEntities(),
		result:        &Result{},
	}

	for _, model := range modelList {
		for _, metric := range model.Metrics {
			run.metricOwners[metric.Name] = model.Name
		}

		for _, measure := range model.Measures {
			run.measureOwners[measure.Name] = append(run.measureOwners[measure.Name], model.Name)
		}
	}

	return run
}

func (v *connectivityValidator) checkAmbiguousEntities(run *validationRun) {
	entities := make([]string, 0, len(run.ambiguous))
	for entity := range run.ambiguous {
		entities = append(entities, entity)
	}

	sort.Strings(entities)

	for _, entity := range entities {
		owners := run.ambiguous[entity]

		run.result.add(Issue{
			Severity:      SeverityError,
			Type:          IssueAmbiguousPrimaryEntity,
			PrimaryEntity: entity,
			Message:       fmt.Sprintf("entity %s is the primary entity of %d models: %v", entity, len(owners), owners),
			Suggestion:    fmt.Sprintf("rename the primary entity on all but one of %v so joins on %s have a single target", owners, entity),
		})
	}
}

// checkMetricReferences reports dangling and cyclic derived metric references
func (v *connectivityValidator) checkMetricReferences(run *validationRun, metrics []*models.Metric) {
	err := models.NewMetricGraph().BuildGraph(metrics)
	if err == nil {
		return
	}

	errs := []error{err}
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		errs = joined.Unwrap()
	}

	for _, e := range errs {
		var refErr *models.MetricReferenceError
		if !errors.As(e, &refErr) {
			v.log.WithError(e).Warn("Could not index metric references")

			continue
		}

		issue := Issue{
			Metric: refErr.Metric,
			Model:  run.metricOwners[refErr.Metric],
		}

		if errors.Is(refErr, models.ErrMetricCycle) {
			issue.Severity = SeverityError
			issue.Type = IssueMetricCycle
			issue.Message = fmt.Sprintf("metric %s references %s, which closes a reference cycle", refErr.Metric, refErr.Reference)
			issue.Suggestion = fmt.Sprintf("remove %s from the metrics of %s", refErr.Reference, refErr.Metric)
		} else {
			issue.Severity = SeverityWarning
			issue.Type = IssueMissingMetric
			issue.Message = fmt.Sprintf("metric %s references unknown metric %s", refErr.Metric, refErr.Reference)
			issue.Suggestion = fmt.Sprintf("define metric %s or fix the reference", refErr.Reference)
		}

		run.result.add(issue)
	}
}

func (v *connectivityValidator) checkMetric(run *validationRun, metric *models.Metric) {
	owner := run.metricOwners[metric.Name]

	entity := metric.Entity
	if params, ok := metric.Params.(models.ConversionParams); ok && entity == "" {
		entity = params.Entity
	}

	base := owner

	if entity != "" {
		if _, ambiguous := run.ambiguous[entity]; ambiguous {
			// already reported once per entity; no single base model to check from
			return
		}

		model, ok := run.graph.ModelForEntity(entity)
		if !ok {
			run.result.add(Issue{
				Severity:      SeverityError,
				Type:          IssueInvalidPrimaryEntity,
				Metric:        metric.Name,
				Model:         owner,
				PrimaryEntity: entity,
				Message:       fmt.Sprintf("metric %s declares entity %s, which is not the primary entity of any model", metric.Name, entity),
				Suggestion:    fmt.Sprintf("declare %s as the primary entity of a model or change the metric entity", entity),
			})

			return
		}

		base = model
	}

	// conversion metrics count events per entity and have no joinable measures
	if metric.Type() == models.MetricConversion {
		return
	}

	required := metric.RequiredMeasures(run.resolve)

	if base == "" {
		for _, measure := range required {
			if owners := run.measureOwners[measure]; len(owners) > 0 {
				base = owners[0]

				break
			}
		}
	}

	primary := ""
	if model, ok := run.graph.Model(base); ok {
		primary = model.PrimaryEntityName()
	}

	for _, measure := range required {
		owners := run.measureOwners[measure]
		if len(owners) == 0 {
			run.result.add(Issue{
				Severity:      SeverityError,
				Type:          IssueMissingMeasure,
				Metric:        metric.Name,
				Model:         owner,
				PrimaryEntity: primary,
				Measure:       measure,
				Message:       fmt.Sprintf("metric %s requires measure %s, which no model defines", metric.Name, measure),
				Suggestion:    fmt.Sprintf("define measure %s on a semantic model or fix the reference", measure),
			})

			continue
		}

		if base == "" || reachableFromAny(run.graph, base, owners) {
			continue
		}

		target := owners[0]

		run.result.add(Issue{
			Severity:      SeverityError,
			Type:          IssueUnreachableMeasure,
			Metric:        metric.Name,
			Model:         owner,
			PrimaryEntity: primary,
			Measure:       measure,
			MeasureModel:  target,
			Message: fmt.Sprintf(
				"metric %s requires measure %s on model %s, which cannot be joined from model %s",
				metric.Name, measure, target, base,
			),
			Suggestion: connectSuggestion(run.graph, base, target),
		})
	}
}

func reachableFromAny(graph *dependencies.JoinGraph, base string, targets []string) bool {
	for _, target := range targets {
		if graph.Reachable(base, target) {
			return true
		}
	}

	return false
}

func connectSuggestion(graph *dependencies.JoinGraph, base, target string) string {
	model, ok := graph.Model(target)
	if !ok || model.PrimaryEntityName() == "" {
		return fmt.Sprintf("declare a primary entity on model %s and add it as a foreign entity on model %s", target, base)
	}

	return fmt.Sprintf(
		"add a foreign entity %s on model %s (or on a model joined to it) to link %s to %s",
		model.PrimaryEntityName(), base, base, target,
	)
}
