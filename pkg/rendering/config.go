package rendering

import (
	"fmt"
	"strings"
)

// PoPStrategyName selects how period-over-period variants are rendered
type PoPStrategyName string

const (
	// PoPNative uses the BI tool's period_over_period measure type
	PoPNative PoPStrategyName = "native"
	// PoPDynamic renders one measure per output driven by a comparison parameter
	PoPDynamic PoPStrategyName = "dynamic"
)

// ParsePoPStrategy parses a strategy name; empty means native
func ParsePoPStrategy(raw string) (PoPStrategyName, error) {
	switch PoPStrategyName(strings.ToLower(strings.TrimSpace(raw))) {
	case "", PoPNative:
		return PoPNative, nil
	case PoPDynamic:
		return PoPDynamic, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownStrategy, raw)
	}
}

// LabelTemplates overrides the generated label formats
type LabelTemplates struct {
	PoP     string `yaml:"pop"`
	Variant string `yaml:"variant"`
	Header  string `yaml:"header"`
}

// Config contains rendering settings
type Config struct {
	ViewPrefix             string
	ExplorePrefix          string
	PoPStrategy            PoPStrategyName
	HideNonPrimaryVariants bool
	Labels                 LabelTemplates
}

// SetDefaults fills empty label templates and strategy
func (c *Config) SetDefaults() {
	if c.PoPStrategy == "" {
		c.PoPStrategy = PoPNative
	}

	if c.Labels.PoP == "" {
		c.Labels.PoP = DefaultPoPLabelTemplate
	}

	if c.Labels.Variant == "" {
		c.Labels.Variant = DefaultVariantLabelTemplate
	}

	if c.Labels.Header == "" {
		c.Labels.Header = DefaultHeaderTemplate
	}
}

// ViewName returns the view name of a model
func (c *Config) ViewName(model string) string {
	return c.ViewPrefix + model
}
