package rendering

import (
	"fmt"
	"sort"

	"github.com/ethpandaops/semlook/pkg/models"
	"github.com/sirupsen/logrus"
)

const (
	templatePoP     = "pop"
	templateVariant = "variant"
	templateHeader  = "header"
)

// Renderer renders processed models. Measure and metric references across
// views are resolved through indexes built from every rendered model.
type Renderer struct {
	log       logrus.FieldLogger
	config    Config
	templates *TemplateEngine

	// measureViews and metricViews map a field name to the view defining it
	measureViews map[string]string
	metricViews  map[string]string
	// referenced holds model/measure pairs used by any metric
	referenced map[string]bool
	warnings   []string
}

// NewRenderer creates a renderer for modelList
func NewRenderer(log logrus.FieldLogger, cfg Config, modelList []*models.ProcessedModel) (*Renderer, error) {
	cfg.SetDefaults()

	if _, err := ParsePoPStrategy(string(cfg.PoPStrategy)); err != nil {
		return nil, err
	}

	templates := NewTemplateEngine()

	for name, content := range map[string]string{
		templatePoP:     cfg.Labels.PoP,
		templateVariant: cfg.Labels.Variant,
		templateHeader:  cfg.Labels.Header,
	} {
		if err := templates.Register(name, content); err != nil {
			return nil, err
		}
	}

	r := &Renderer{
		log:          log.WithField("component", "renderer"),
		config:       cfg,
		templates:    templates,
		measureViews: make(map[string]string),
		metricViews:  make(map[string]string),
		referenced:   make(map[string]bool),
	}

	r.index(modelList)

	return r, nil
}

func (r *Renderer) index(modelList []*models.ProcessedModel) {
	metrics := make(map[string]*models.Metric)

	for _, model := range modelList {
		view := r.config.ViewName(model.Name)

		for _, measure := range model.Measures {
			if _, exists := r.measureViews[measure.Name]; !exists {
				r.measureViews[measure.Name] = view
			}
		}

		for _, metric := range model.Metrics {
			r.metricViews[metric.Name] = view
			metrics[metric.Name] = metric
		}
	}

	resolve := func(name string) (*models.Metric, bool) {
		metric, ok := metrics[name]

		return metric, ok
	}

	for _, metric := range metrics {
		measures := metric.RequiredMeasures(resolve)
		if params, ok := metric.Params.(models.ConversionParams); ok {
			measures = append(measures, params.BaseMeasure, params.ConversionMeasure)
		}

		for _, measure := range measures {
			if view, ok := r.measureViews[measure]; ok {
				r.referenced[view+"."+measure] = true
			}
		}
	}
}

// Warnings returns the problems rendering worked around, sorted
func (r *Renderer) Warnings() []string {
	out := append([]string(nil), r.warnings...)
	sort.Strings(out)

	return out
}

func (r *Renderer) warn(fields logrus.Fields, format string, args ...any) {
	message := fmt.Sprintf(format, args...)

	r.log.WithFields(fields).Warn(message)
	r.warnings = append(r.warnings, message)
}

// measureRef references a measure from view, qualified when it lives on
// another view
func (r *Renderer) measureRef(view, measure string) string {
	owner, ok := r.measureViews[measure]
	if !ok || owner == view {
		return fmt.Sprintf("${%s}", MeasureFieldName(measure))
	}

	return fmt.Sprintf("${%s.%s}", owner, MeasureFieldName(measure))
}

// metricRef references a metric from view
func (r *Renderer) metricRef(view, metric string) (string, bool) {
	owner, ok := r.metricViews[metric]
	if !ok {
		return "", false
	}

	if owner == view {
		return fmt.Sprintf("${%s}", metric), true
	}

	return fmt.Sprintf("${%s.%s}", owner, metric), true
}
