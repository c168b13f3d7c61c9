// Package builder turns raw semantic-model documents into resolved domain
// models. Documents are collected first and resolved together, so data models,
// semantic models and metrics may be declared in any file.
package builder

import (
	"errors"
	"fmt"
	"io"

	"github.com/ethpandaops/semlook/pkg/models"
	"github.com/sirupsen/logrus"
)

// Top-level document sections
const (
	SectionDataModels     = "data_models"
	SectionSemanticModels = "semantic_models"
	SectionMetrics        = "metrics"
)

var (
	// ErrAlreadyBuilt is returned when a Builder is used after Build
	ErrAlreadyBuilt = errors.New("builder already consumed")
)

// Option configures a Builder
type Option func(*Builder)

// WithStrict makes the first error abort collection or build
func WithStrict(strict bool) Option {
	return func(b *Builder) {
		b.strict = strict
	}
}

// WithLoadErrors seeds the error list with problems found before collection,
// e.g. files the loader skipped
func WithLoadErrors(errs []error) Option {
	return func(b *Builder) {
		b.errs = append(b.errs, errs...)
	}
}

// WithLogger sets the logger used for lenient-mode warnings
func WithLogger(log logrus.FieldLogger) Option {
	return func(b *Builder) {
		b.log = log.WithField("component", "builder")
	}
}

type pendingElement struct {
	source string
	path   string
	raw    map[string]any
}

// Builder accumulates documents and resolves them once. It is not safe for
// concurrent use.
type Builder struct {
	log    logrus.FieldLogger
	strict bool

	dataModels     map[string]*models.DataModel
	semanticModels []pendingElement
	metrics        []pendingElement

	errs     []error
	warnings []error
	built    bool
}

// New creates an empty Builder
func New(opts ...Option) *Builder {
	discard := logrus.New()
	discard.SetOutput(io.Discard)

	b := &Builder{
		log:        discard,
		dataModels: make(map[string]*models.DataModel),
	}

	for _, opt := range opts {
		opt(b)
	}

	return b
}

// Build is a convenience wrapper collecting docs into a fresh Builder
func Build(docs []models.Document, opts ...Option) (*Project, error) {
	b := New(opts...)

	for _, doc := range docs {
		if err := b.Collect(doc); err != nil {
			return nil, err
		}
	}

	return b.Build()
}

// Collect records the sections of one document. Data models are parsed
// immediately; semantic models and metrics wait for Build. In lenient mode
// problems are recorded and nil is returned.
func (b *Builder) Collect(doc models.Document) error {
	if b.built {
		return ErrAlreadyBuilt
	}

	source := doc.Path
	if doc.Index > 0 {
		source = fmt.Sprintf("%s#%d", doc.Path, doc.Index)
	}

	for _, section := range []string{SectionDataModels, SectionSemanticModels, SectionMetrics} {
		raw, ok := doc.Data[section]
		if !ok || raw == nil {
			continue
		}

		items, ok := raw.([]any)
		if !ok {
			err := &models.StructuralError{Path: source, Reason: fmt.Sprintf("%s must be a list", section)}
			if failErr := b.fail(err); failErr != nil {
				return failErr
			}

			continue
		}

		for i, item := range items {
			path := fmt.Sprintf("%s: %s[%d]", source, section, i)

			mapping, ok := models.NormalizeMapping(item)
			if !ok {
				err := &models.StructuralError{Path: path, Reason: "entry must be a mapping"}
				if failErr := b.fail(err); failErr != nil {
					return failErr
				}

				continue
			}

			if err := b.collectElement(section, pendingElement{source: source, path: path, raw: mapping}); err != nil {
				return err
			}
		}
	}

	return nil
}

func (b *Builder) collectElement(section string, pending pendingElement) error {
	switch section {
	case SectionDataModels:
		dataModel, err := b.parseDataModel(pending.path, pending.raw)
		if err != nil {
			return b.fail(err)
		}

		if _, exists := b.dataModels[dataModel.Name]; exists {
			return b.fail(&models.FieldError{
				Path:  pending.path,
				Name:  dataModel.Name,
				Field: "name",
				Err:   fmt.Errorf("%w: data model", models.ErrDuplicateName),
			})
		}

		b.dataModels[dataModel.Name] = dataModel
	case SectionSemanticModels:
		b.semanticModels = append(b.semanticModels, pending)
	case SectionMetrics:
		b.metrics = append(b.metrics, pending)
	}

	return nil
}

// Build resolves everything collected so far into a Project. The Builder is
// consumed; later calls return ErrAlreadyBuilt.
func (b *Builder) Build() (*Project, error) {
	if b.built {
		return nil, ErrAlreadyBuilt
	}

	b.built = true

	processed := make([]*models.ProcessedModel, 0, len(b.semanticModels))
	seenModels := make(map[string]bool, len(b.semanticModels))
	seenMetrics := make(map[string]bool)
	allMetrics := make([]*models.Metric, 0)

	for _, pending := range b.semanticModels {
		model, err := b.parseSemanticModel(pending, seenModels)
		if err != nil {
			if failErr := b.fail(err); failErr != nil {
				return nil, failErr
			}

			continue
		}

		owned := make([]*models.Metric, 0, len(model.Metrics))

		for _, metric := range model.Metrics {
			if err := b.claimMetricName(seenMetrics, pending.path, metric); err != nil {
				if failErr := b.fail(err); failErr != nil {
					return nil, failErr
				}

				continue
			}

			owned = append(owned, metric)
		}

		model.Metrics = owned
		allMetrics = append(allMetrics, owned...)
		processed = append(processed, model)
	}

	topLevel := make([]*models.Metric, 0, len(b.metrics))

	for _, pending := range b.metrics {
		metric, err := b.parseMetric(pending.path, pending.raw)
		if err != nil {
			if failErr := b.fail(err); failErr != nil {
				return nil, failErr
			}

			continue
		}

		if err := b.claimMetricName(seenMetrics, pending.path, metric); err != nil {
			if failErr := b.fail(err); failErr != nil {
				return nil, failErr
			}

			continue
		}

		topLevel = append(topLevel, metric)
	}

	allMetrics = append(allMetrics, topLevel...)

	for _, metric := range allMetrics {
		metric.ExpandVariants()
	}

	graph := models.NewMetricGraph()
	if err := graph.BuildGraph(allMetrics); err != nil {
		b.warn(err, logrus.Fields{})
	}

	unowned := b.assignOwners(processed, topLevel, graph.Resolver())

	return &Project{
		Models:   processed,
		Metrics:  allMetrics,
		Unowned:  unowned,
		Errors:   b.errs,
		Warnings: b.warnings,
		Graph:    graph,
	}, nil
}

func (b *Builder) parseSemanticModel(pending pendingElement, seen map[string]bool) (*models.ProcessedModel, error) {
	var spec rawSemanticModel
	if err := decode(pending.raw, &spec); err != nil {
		return nil, &models.FieldError{Path: pending.path, Err: err}
	}

	if spec.Name == "" {
		return nil, &models.FieldError{Path: pending.path, Field: "name", Err: models.ErrMissingField}
	}

	if seen[spec.Name] {
		return nil, &models.FieldError{
			Path:  pending.path,
			Name:  spec.Name,
			Field: "name",
			Err:   fmt.Errorf("%w: semantic model", models.ErrDuplicateName),
		}
	}

	seen[spec.Name] = true

	path := fmt.Sprintf("%s[%s]", SectionSemanticModels, spec.Name)

	model := &models.ProcessedModel{
		Name:         spec.Name,
		Label:        spec.Label,
		Description:  spec.Description,
		DateSelector: parseDateSelector(spec.DateSelector),
		Meta:         spec.Meta,
		Source:       pending.source,
	}

	ref := spec.Model
	if ref == "" {
		ref = spec.Name
	}

	if dataModel, ok := b.dataModels[ref]; ok {
		model.DataModel = dataModel
	} else {
		b.warn(&models.ReferenceError{Kind: "data_model", From: spec.Name, To: ref}, logrus.Fields{"model": spec.Name})
	}

	if err := b.parseMembers(path, model, spec); err != nil {
		return nil, err
	}

	return model, nil
}

// parseMembers fills entities, dimensions, measures and inline metrics. In
// lenient mode a bad element is recorded and skipped.
func (b *Builder) parseMembers(path string, model *models.ProcessedModel, spec rawSemanticModel) error {
	hasPrimary := false

	for i, raw := range spec.Entities {
		elementPath := fmt.Sprintf("%s.entities[%d]", path, i)

		entity, err := b.parseEntity(elementPath, raw)
		if err == nil && entity.IsPrimary() && hasPrimary {
			err = &models.FieldError{Path: elementPath, Name: entity.Name, Field: "type", Err: models.ErrMultiplePrimary}
		}

		if err != nil {
			if failErr := b.fail(err); failErr != nil {
				return failErr
			}

			continue
		}

		hasPrimary = hasPrimary || entity.IsPrimary()
		model.Entities = append(model.Entities, entity)
	}

	dimensionNames := make(map[string]bool, len(spec.Dimensions))

	for i, raw := range spec.Dimensions {
		elementPath := fmt.Sprintf("%s.dimensions[%d]", path, i)

		dim, err := b.parseDimension(elementPath, raw)
		if err == nil && dimensionNames[dim.Name] {
			err = &models.FieldError{Path: elementPath, Name: dim.Name, Field: "name", Err: models.ErrDuplicateName}
		}

		if err != nil {
			if failErr := b.fail(err); failErr != nil {
				return failErr
			}

			continue
		}

		dimensionNames[dim.Name] = true
		model.Dimensions = append(model.Dimensions, dim)
	}

	measureNames := make(map[string]bool, len(spec.Measures))

	for i, raw := range spec.Measures {
		elementPath := fmt.Sprintf("%s.measures[%d]", path, i)

		measure, err := b.parseMeasure(elementPath, raw)
		if err == nil && measureNames[measure.Name] {
			err = &models.FieldError{Path: elementPath, Name: measure.Name, Field: "name", Err: models.ErrDuplicateName}
		}

		if err != nil {
			if failErr := b.fail(err); failErr != nil {
				return failErr
			}

			continue
		}

		measureNames[measure.Name] = true
		model.Measures = append(model.Measures, measure)
	}

	for i, raw := range spec.Metrics {
		metric, err := b.parseMetric(fmt.Sprintf("%s.metrics[%d]", path, i), raw)
		if err != nil {
			if failErr := b.fail(err); failErr != nil {
				return failErr
			}

			continue
		}

		model.Metrics = append(model.Metrics, metric)
	}

	return nil
}

func (b *Builder) claimMetricName(seen map[string]bool, path string, metric *models.Metric) error {
	if seen[metric.Name] {
		return &models.FieldError{
			Path:  path,
			Name:  metric.Name,
			Field: "name",
			Err:   fmt.Errorf("%w: metric", models.ErrDuplicateName),
		}
	}

	seen[metric.Name] = true

	return nil
}

// fail records err in lenient mode and returns it in strict mode
func (b *Builder) fail(err error) error {
	if b.strict {
		return err
	}

	b.log.WithError(err).Warn("Skipping invalid element")
	b.errs = append(b.errs, err)

	return nil
}

func (b *Builder) warn(err error, fields logrus.Fields) {
	b.log.WithFields(fields).WithError(err).Warn("Recoverable problem in semantic models")
	b.warnings = append(b.warnings, err)
}

func (b *Builder) warnEnum(path, name, field, raw, fallback string) {
	b.log.WithFields(logrus.Fields{
		"path":     path,
		"name":     name,
		"field":    field,
		"value":    raw,
		"fallback": fallback,
	}).Warn("Unknown value, using fallback")
}
