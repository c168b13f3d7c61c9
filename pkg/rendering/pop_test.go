package rendering_test

import (
	"regexp"
	"strings"
	"testing"

	"github.com/ethpandaops/semlook/internal/testutil"
	"github.com/ethpandaops/semlook/pkg/rendering"
	"github.com/ethpandaops/semlook/pkg/rendering/lookml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNativePoP(t *testing.T) {
	project := buildProject(t, testutil.RentalsYAML)
	view := renderView(t, rendering.Config{}, project, "rentals")

	tests := []struct {
		name   string
		period string
		kind   string
		label  string
		format string
	}{
		{name: "total_revenue_py", period: "year", kind: "previous", label: "Total Revenue (Prior Year)"},
		{name: "total_revenue_py_pct_change", period: "year", kind: "relative_change", label: "Total Revenue (Prior Year % Change)", format: "percent_1"},
		{name: "total_revenue_pm", period: "month", kind: "previous", label: "Total Revenue (Prior Month)"},
		{name: "total_revenue_pm_pct_change", period: "month", kind: "relative_change", label: "Total Revenue (Prior Month % Change)", format: "percent_1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			measure := child(t, view, "measure", tt.name)
			assert.Equal(t, "period_over_period", attr(measure, "type"))
			assert.Equal(t, "total_revenue", attr(measure, "based_on"))
			assert.Equal(t, "created_at_date", attr(measure, "based_on_time"))
			assert.Equal(t, tt.period, attr(measure, "period"))
			assert.Equal(t, tt.kind, attr(measure, "kind"))
			assert.Equal(t, tt.label, attr(measure, "label"))
			assert.Equal(t, tt.format, attr(measure, "value_format_name"))
		})
	}

	_, ok := view.Child("parameter", rendering.PoPComparisonParameter)
	assert.False(t, ok)
}

func TestPoPLabelTemplate(t *testing.T) {
	project := buildProject(t, testutil.RentalsYAML)
	cfg := rendering.Config{Labels: rendering.LabelTemplates{PoP: "{{ .Metric }} vs {{ .Comparison }}"}}
	view := renderView(t, cfg, project, "rentals")

	assert.Equal(t, "total_revenue vs prior_year", attr(child(t, view, "measure", "total_revenue_py"), "label"))
	assert.Equal(t, "Created At (UTC)", attr(child(t, view, "dimension_group", "created_at_utc"), "label"))
}

func TestDynamicPoP(t *testing.T) {
	project := buildProject(t, testutil.RentalsYAML)
	view := renderView(t, rendering.Config{PoPStrategy: rendering.PoPDynamic}, project, "rentals")

	previous := child(t, view, "measure", "total_revenue_pop")
	assert.Equal(t, "sum", attr(previous, "type"))
	assert.Equal(t, "Total Revenue (Prior Period)", attr(previous, "label"))
	assert.False(t, hasAttr(previous, "hidden"))
	assert.Contains(t, attr(previous, "sql"), "${TABLE}.created_at >= DATEADD({% parameter pop_comparison %}, -1, {% date_start pop_window %})")
	assert.Contains(t, attr(previous, "sql"), "THEN CASE WHEN ${TABLE}.status = 'completed' THEN ${TABLE}.amount END END")

	pct := child(t, view, "measure", "total_revenue_pop_pct_change")
	assert.Equal(t, "(${total_revenue} - ${total_revenue_pop}) / NULLIF(${total_revenue_pop}, 0)", attr(pct, "sql"))
	assert.Equal(t, "percent_1", attr(pct, "value_format_name"))

	// one field per output kind, not per comparison
	assert.Equal(t, 1, countChildren(view, "measure", "total_revenue_pop"))
	assert.Equal(t, 1, countChildren(view, "measure", "total_revenue_pop_pct_change"))
	_, ok := view.Child("measure", "total_revenue_py")
	assert.False(t, ok)

	parameter := child(t, view, "parameter", rendering.PoPComparisonParameter)
	assert.Equal(t, "unquoted", attr(parameter, "type"))
	assert.Equal(t, "year", attr(parameter, "default_value"))
	assert.Equal(t, []string{"year", "month"}, allowedValues(parameter))

	window := child(t, view, "filter", rendering.PoPWindowFilter)
	assert.Equal(t, "date", attr(window, "type"))
}

func TestDynamicPoPOutputOrder(t *testing.T) {
	tests := []struct {
		name    string
		outputs string
		fields  []string
	}{
		{name: "previous first", outputs: "[previous, percent_change]", fields: []string{"order_total_pop", "order_total_pop_pct_change"}},
		{name: "previous last", outputs: "[change, previous]", fields: []string{"order_total_pop", "order_total_pop_change"}},
		{name: "previous only", outputs: "[previous]", fields: []string{"order_total_pop"}},
		{name: "no previous", outputs: "[percent_change, change]", fields: []string{"order_total_pop", "order_total_pop_pct_change", "order_total_pop_change"}},
	}

	reference := regexp.MustCompile(`\$\{([a-z0-9_]+)\}`)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			project := buildProject(t, `
semantic_models:
  - name: orders
    entities:
      - name: order
        type: primary
    dimensions:
      - name: ordered_at
        type: time
    measures:
      - name: order_count
        agg: count
    metrics:
      - name: order_total
        measure: order_count
        pop:
          comparisons: [prior_year, prior_month]
          outputs: `+tt.outputs+`
`)
			view := renderView(t, rendering.Config{PoPStrategy: rendering.PoPDynamic}, project, "orders")

			for _, field := range tt.fields {
				assert.Equal(t, 1, countChildren(view, "measure", field), field)
			}

			previous := child(t, view, "measure", "order_total_pop")
			assert.Equal(t, !strings.Contains(tt.outputs, "previous"), hasAttr(previous, "hidden"))

			for _, field := range view.Children {
				if field.Type != "measure" || !strings.HasPrefix(field.Name, "order_total_pop") {
					continue
				}

				for _, match := range reference.FindAllStringSubmatch(attr(field, "sql"), -1) {
					_, ok := view.Child("measure", match[1])
					assert.True(t, ok, "%s references undefined %s", field.Name, match[1])
				}
			}
		})
	}
}

const dynamicYAML = `
semantic_models:
  - name: orders
    entities:
      - name: order
        type: primary
    dimensions:
      - name: ordered_at
        type: time
    measures:
      - name: order_count
        agg: count
      - name: revenue
        agg: sum
        expr: amount
    metrics:
      - name: order_total
        measure: order_count
        pop:
          comparisons: [prior_year, prior_week]
          outputs: [change]
      - name: aov
        type: ratio
        numerator: revenue
        denominator: order_count
        pop:
          comparisons: [prior_year]
          outputs: [previous]
`

func TestDynamicPoPHelperAndUnsupported(t *testing.T) {
	project := buildProject(t, dynamicYAML)

	model, ok := project.Model("orders")
	require.True(t, ok)

	r := newRenderer(t, rendering.Config{PoPStrategy: rendering.PoPDynamic}, project.Models)
	view, err := r.RenderView(model)
	require.NoError(t, err)

	helper := child(t, view, "measure", "order_total_pop")
	assert.True(t, hasAttr(helper, "hidden"), "previous was not requested")
	assert.Equal(t, "sum", attr(helper, "type"))
	assert.Contains(t, attr(helper, "sql"), "THEN 1 END")

	change := child(t, view, "measure", "order_total_pop_change")
	assert.Equal(t, "${order_total} - ${order_total_pop}", attr(change, "sql"))
	assert.Equal(t, "Order Total (Prior Period Change)", attr(change, "label"))

	child(t, view, "measure", "aov")
	_, ok = view.Child("measure", "aov_pop")
	assert.False(t, ok)

	require.Len(t, r.Warnings(), 1)
	assert.Contains(t, r.Warnings()[0], "aov")

	assert.Equal(t, []string{"year", "week"}, allowedValues(child(t, view, "parameter", rendering.PoPComparisonParameter)))
}

func TestNativePoPWithoutTimeDimension(t *testing.T) {
	project := buildProject(t, `
semantic_models:
  - name: orders
    entities:
      - name: order
        type: primary
    measures:
      - name: order_count
        agg: count
    metrics:
      - name: order_total
        measure: order_count
        pop:
          comparisons: [prior_year]
          outputs: [previous]
`)

	model, ok := project.Model("orders")
	require.True(t, ok)

	r := newRenderer(t, rendering.Config{}, project.Models)
	view, err := r.RenderView(model)
	require.NoError(t, err)

	child(t, view, "measure", "order_total")
	_, ok = view.Child("measure", "order_total_py")
	assert.False(t, ok)
	assert.Len(t, r.Warnings(), 1)
}

func countChildren(block *lookml.Block, blockType, name string) int {
	count := 0

	for _, c := range block.Children {
		if c.Type == blockType && c.Name == name {
			count++
		}
	}

	return count
}

func allowedValues(parameter *lookml.Block) []string {
	values := make([]string, 0, len(parameter.Children))

	for _, c := range parameter.Children {
		if c.Type == "allowed_value" {
			values = append(values, attr(c, "value"))
		}
	}

	return values
}
