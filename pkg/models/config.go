package models

// DefaultInputPath is scanned when no input path is configured
const DefaultInputPath = "semantic_models"

// InputConfig defines where semantic model documents are discovered
type InputConfig struct {
	Paths []string `yaml:"paths"`
	// Concurrency bounds parallel file reads; 0 means a sensible default
	Concurrency int `yaml:"concurrency" default:"8"`
}

// SetDefaults sets default paths if not configured
func (c *InputConfig) SetDefaults() {
	if len(c.Paths) == 0 {
		c.Paths = []string{DefaultInputPath}
	}

	if c.Concurrency <= 0 {
		c.Concurrency = 8
	}
}
