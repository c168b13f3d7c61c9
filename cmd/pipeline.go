package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/ethpandaops/semlook/pkg/builder"
	"github.com/ethpandaops/semlook/pkg/explore"
	"github.com/ethpandaops/semlook/pkg/models"
	"github.com/ethpandaops/semlook/pkg/observability"
	"github.com/ethpandaops/semlook/pkg/rendering"
	"github.com/ethpandaops/semlook/pkg/validation"
	"github.com/sirupsen/logrus"
)

// pipeline runs load, build, select, validate, infer and render in order
type pipeline struct {
	log       logrus.FieldLogger
	cfg       *CLIConfig
	validator validation.Validator
}

// buildOutput is everything produced up to validation
type buildOutput struct {
	project    *builder.Project
	models     []*models.ProcessedModel
	metrics    []*models.Metric
	validation *validation.Result
}

func newPipeline(log logrus.FieldLogger, cfg *CLIConfig) *pipeline {
	return &pipeline{
		log:       log,
		cfg:       cfg,
		validator: validation.NewConnectivityValidator(log),
	}
}

func (p *pipeline) stage(name string, fn func() error) error {
	start := time.Now()
	err := fn()

	observability.RecordStage(name, time.Since(start).Seconds())
	p.log.WithFields(logrus.Fields{
		"stage":    name,
		"duration": time.Since(start),
	}).Debug("Stage finished")

	return err
}

// build loads and resolves the semantic models, applies overrides and tag
// selection and validates the result
func (p *pipeline) build(ctx context.Context) (*buildOutput, error) {
	out := &buildOutput{}

	var loaded *models.LoadResult

	if err := p.stage("load", func() error {
		var err error

		loaded, err = models.NewLoader(p.log, p.cfg.Input, models.WithStrictLoading(p.cfg.Strict)).Load(ctx)

		return err
	}); err != nil {
		return nil, err
	}

	docs := loaded.Documents

	observability.RecordDocumentsLoaded(len(docs))

	if err := p.stage("build", func() error {
		var err error

		out.project, err = builder.Build(
			docs,
			builder.WithStrict(p.cfg.Strict),
			builder.WithLogger(p.log),
			builder.WithLoadErrors(loaded.Skipped),
		)

		return err
	}); err != nil {
		observability.RecordBuildError(err)

		return nil, err
	}

	project := out.project

	for _, err := range project.Errors {
		observability.RecordBuildError(err)
	}

	for _, metric := range project.Metrics {
		_, owned := project.MetricOwner(metric.Name)
		observability.RecordMetric(metric.Type(), owned)
	}

	observability.RecordModels("built", len(project.Models))

	selected := models.ApplyOverrides(project.Models, p.cfg.Overrides, p.cfg.Output.Schema)
	selected = models.NewModelSelector(p.log).Select(selected, &p.cfg.Models.Tags)

	observability.RecordModels("selected", len(selected))

	out.models = selected

	// metrics of deselected models are out of scope; unowned ones are still
	// validated so they get reported
	for _, model := range selected {
		out.metrics = append(out.metrics, model.Metrics...)
	}

	out.metrics = append(out.metrics, project.Unowned...)

	p.log.WithFields(logrus.Fields{
		"documents": len(docs),
		"models":    len(selected),
		"metrics":   len(out.metrics),
		"errors":    len(project.Errors),
		"warnings":  len(project.Warnings),
	}).Info("Semantic models built")

	if err := p.stage("validate", func() error {
		out.validation = p.validator.Validate(out.models, out.metrics)

		return out.validation.Err(p.cfg.Validation.Strict)
	}); err != nil {
		return out, err
	}

	return out, nil
}

// explores infers one explore per configured or default fact
func (p *pipeline) explores(modelList []*models.ProcessedModel) ([]*explore.Explore, error) {
	overrides, err := p.cfg.ExposeOverrides()
	if err != nil {
		return nil, err
	}

	var explores []*explore.Explore

	err = p.stage("explore", func() error {
		registry, err := explore.NewRegistry(modelList)
		if err != nil {
			return err
		}

		facts := p.cfg.Explores.Facts
		if len(facts) == 0 {
			facts = registry.DefaultFacts()
		}

		opts := explore.Options{
			ReverseJoins:  p.cfg.Explores.ReverseJoins,
			Calendar:      p.cfg.Explores.Calendar,
			Overrides:     overrides,
			ViewPrefix:    p.cfg.Output.ViewPrefix,
			ExplorePrefix: p.cfg.Output.ExplorePrefix,
		}

		for _, fact := range facts {
			e, err := explore.Infer(fact, registry, opts)
			if err != nil {
				return fmt.Errorf("failed to infer explore for %s: %w", fact, err)
			}

			p.log.WithFields(logrus.Fields{
				"explore": e.Name,
				"joins":   e.JoinedModels(),
			}).Debug("Inferred explore")

			explores = append(explores, e)
		}

		return nil
	})

	return explores, err
}

// render renders and writes every view and explore, returning the paths
func (p *pipeline) render(modelList []*models.ProcessedModel, explores []*explore.Explore) ([]string, error) {
	var paths []string

	err := p.stage("render", func() error {
		renderer, err := rendering.NewRenderer(p.log, p.cfg.RenderConfig(), modelList)
		if err != nil {
			return err
		}

		files, err := renderer.RenderProject(modelList, explores)
		if err != nil {
			return err
		}

		if warnings := renderer.Warnings(); len(warnings) > 0 {
			p.log.WithField("count", len(warnings)).Warn("Some fields could not be rendered")
		}

		paths, err = rendering.WriteFiles(p.log, p.cfg.Output.Dir, files, p.cfg.Output.DryRun)

		return err
	})

	return paths, err
}

// finish exports the pipeline counters when a textfile is configured
func (p *pipeline) finish() {
	if err := observability.WriteTextfile(p.log, p.cfg.Metrics.Textfile); err != nil {
		p.log.WithError(err).Warn("Failed to write metrics textfile")
	}
}
