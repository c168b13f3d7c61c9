// Package rendering maps processed semantic models onto LookML views and
// explores
package rendering

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig/v3"
)

// Default label templates. Both are executed with sprig functions available.
const (
	DefaultPoPLabelTemplate = `{{ .Label }} ({{ .Comparison | replace "_" " " | title }}` +
		`{{ if eq .Output "change" }} Change{{ else if eq .Output "percent_change" }} % Change{{ end }})`
	DefaultVariantLabelTemplate = `{{ .Label }} ({{ .Variant | upper }})`
	DefaultHeaderTemplate       = `Generated by semlook{{ with .Sources }} from {{ join ", " . }}{{ end }}. Do not edit.`
)

// TemplateEngine provides template rendering with Sprig functions
type TemplateEngine struct {
	funcMap   template.FuncMap
	templates map[string]*template.Template
}

// NewTemplateEngine creates a new template engine with Sprig functions
func NewTemplateEngine() *TemplateEngine {
	return &TemplateEngine{
		funcMap:   sprig.TxtFuncMap(),
		templates: make(map[string]*template.Template),
	}
}

// Register parses content under name so it can be executed repeatedly
func (t *TemplateEngine) Register(name, content string) error {
	tmpl, err := template.New(name).Funcs(t.funcMap).Option("missingkey=error").Parse(content)
	if err != nil {
		return fmt.Errorf("failed to parse template %s: %w", name, err)
	}

	t.templates[name] = tmpl

	return nil
}

// Execute runs a registered template
func (t *TemplateEngine) Execute(name string, data any) (string, error) {
	tmpl, ok := t.templates[name]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownTemplate, name)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template %s: %w", name, err)
	}

	return strings.TrimSpace(buf.String()), nil
}

// PoPLabelData is passed to the PoP label template
type PoPLabelData struct {
	Label      string
	Metric     string
	Comparison string
	Output     string
}

// VariantLabelData is passed to the timezone variant label template
type VariantLabelData struct {
	Label     string
	Dimension string
	Variant   string
	Primary   bool
}

// HeaderData is passed to the file header template
type HeaderData struct {
	Name    string
	Kind    string
	Sources []string
}
