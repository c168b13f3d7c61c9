package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/creasty/defaults"
	"github.com/ethpandaops/semlook/pkg/explore"
	"github.com/ethpandaops/semlook/pkg/models"
	"github.com/ethpandaops/semlook/pkg/rendering"
	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is read when --config is not given
const DefaultConfigFile = "semlook.yaml"

var (
	// ErrInvalidOverride is returned when a model override is malformed
	ErrInvalidOverride = errors.New("invalid model override")
	// ErrInvalidPathFlag is returned when --path is not "from,to"
	ErrInvalidPathFlag = errors.New("path must be from,to")
	// ErrNoJoinPath is returned when two models are not connected
	ErrNoJoinPath = errors.New("no join path")
)

// OutputConfig controls where and how LookML is written
type OutputConfig struct {
	Dir           string `yaml:"dir" default:"lookml"`
	ViewPrefix    string `yaml:"view_prefix"`
	ExplorePrefix string `yaml:"explore_prefix"`
	// Schema replaces the schema of every bound data model
	Schema string `yaml:"schema"`
	DryRun bool   `yaml:"dry_run"`
}

// ExploresConfig controls join inference
type ExploresConfig struct {
	ReverseJoins bool `yaml:"reverse_joins" default:"true"`
	Calendar     bool `yaml:"calendar"`
	// Facts lists the models to build explores for; empty means every model
	// with a primary entity and measures or metrics
	Facts []string `yaml:"facts"`
}

// CLIConfig is the semlook configuration file
type CLIConfig struct {
	// Logging level
	Logging string `yaml:"logging" default:"info" validate:"oneof=panic fatal warn info debug trace"`

	Input  models.InputConfig `yaml:"input"`
	Output OutputConfig       `yaml:"output"`

	// Strict aborts the build on the first invalid element
	Strict bool `yaml:"strict"`

	Validation struct {
		// Strict fails the run on error-severity validation issues
		Strict bool `yaml:"strict"`
	} `yaml:"validation"`

	Explores ExploresConfig `yaml:"explores"`

	PoP struct {
		Strategy string `yaml:"strategy" default:"native"`
	} `yaml:"pop"`

	Dimensions struct {
		HideNonPrimaryVariants bool `yaml:"hide_non_primary_variants"`
	} `yaml:"dimensions"`

	Labels rendering.LabelTemplates `yaml:"labels"`

	Models struct {
		Tags models.ModelTags `yaml:"tags"`
	} `yaml:"models"`

	Overrides map[string]*models.ModelOverride `yaml:"overrides"`

	Metrics struct {
		// Textfile receives the pipeline counters in Prometheus text format
		Textfile string `yaml:"textfile"`
	} `yaml:"metrics"`
}

// Validate validates the CLI configuration
func (c *CLIConfig) Validate() error {
	c.Input.SetDefaults()

	if _, err := rendering.ParsePoPStrategy(c.PoP.Strategy); err != nil {
		return err
	}

	if _, err := c.ExposeOverrides(); err != nil {
		return err
	}

	return nil
}

// ExposeOverrides collects the per-model expose levels
func (c *CLIConfig) ExposeOverrides() (map[string]explore.ExposeLevel, error) {
	out := make(map[string]explore.ExposeLevel)

	for name, override := range c.Overrides {
		if override == nil || override.Expose == nil {
			continue
		}

		level, err := explore.ParseExposeLevel(*override.Expose)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrInvalidOverride, name, err)
		}

		if level != "" {
			out[name] = level
		}
	}

	return out, nil
}

// RenderConfig maps the file settings onto the renderer configuration
func (c *CLIConfig) RenderConfig() rendering.Config {
	strategy, _ := rendering.ParsePoPStrategy(c.PoP.Strategy)

	return rendering.Config{
		ViewPrefix:             c.Output.ViewPrefix,
		ExplorePrefix:          c.Output.ExplorePrefix,
		PoPStrategy:            strategy,
		HideNonPrimaryVariants: c.Dimensions.HideNonPrimaryVariants,
		Labels:                 c.Labels,
	}
}

// LoadCLIConfig loads CLI configuration from a YAML file
func LoadCLIConfig(path string) (*CLIConfig, error) {
	if path == "" {
		path = DefaultConfigFile
	}

	config := &CLIConfig{}

	if err := defaults.Set(config); err != nil {
		return nil, err
	}

	// Try to read the file, but allow it to not exist
	yamlFile, err := os.ReadFile(path) //nolint:gosec // User-provided config file path
	if err != nil {
		if os.IsNotExist(err) {
			return config, nil
		}

		return nil, err
	}

	if err := yaml.Unmarshal(yamlFile, config); err != nil {
		return nil, err
	}

	return config, nil
}
