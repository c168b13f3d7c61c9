package validation_test

import (
	"errors"
	"testing"

	"github.com/ethpandaops/semlook/internal/testutil"
	"github.com/ethpandaops/semlook/pkg/builder"
	"github.com/ethpandaops/semlook/pkg/validation"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validate(t *testing.T, content string) *validation.Result {
	t.Helper()

	project, err := builder.Build(testutil.Documents(t, content))
	require.NoError(t, err)
	require.Empty(t, project.Errors)

	return validation.NewConnectivityValidator(logrus.New()).Validate(project.Models, project.Metrics)
}

func TestValidateConnected(t *testing.T) {
	result := validate(t, testutil.ConversionYAML)

	assert.False(t, result.HasErrors())
	assert.Empty(t, result.Issues)
	require.NoError(t, result.Err(true))
	assert.Contains(t, result.Report(), "no issues found")
}

func TestValidateDisconnected(t *testing.T) {
	result := validate(t, testutil.DisconnectedConversionYAML)

	require.Len(t, result.Errors(), 1)

	unreachable := result.ByType(validation.IssueUnreachableMeasure)
	require.Len(t, unreachable, 1)
	assert.Equal(t, "conversion_rate", unreachable[0].Metric)
	assert.Equal(t, "orders", unreachable[0].Model)
	assert.Equal(t, "total_searches", unreachable[0].Measure)
	assert.Equal(t, "searches", unreachable[0].MeasureModel)
	assert.Equal(t, "order", unreachable[0].PrimaryEntity)
	assert.Contains(t, unreachable[0].Suggestion, "search")

	report := result.Report()
	assert.Contains(t, report, "conversion_rate")
	assert.Contains(t, report, "searches")
	assert.Contains(t, report, "suggestion:")

	err := result.Err(true)
	require.ErrorIs(t, err, validation.ErrValidationFailed)

	var validationErr *validation.ValidationError
	require.True(t, errors.As(err, &validationErr))
	assert.Same(t, result, validationErr.Result)

	require.NoError(t, result.Err(false))
}

func TestValidateReverseDirection(t *testing.T) {
	content := testutil.ConversionYAML + `
  - name: orders_per_search
    type: ratio
    entity: search
    numerator: completed_orders
    denominator: total_searches
`

	result := validate(t, content)
	assert.Empty(t, result.Issues)
}

func TestValidateRentals(t *testing.T) {
	result := validate(t, testutil.RentalsYAML)
	assert.Empty(t, result.Issues, result.Report())
}

func TestValidateIssueTypes(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		expected validation.IssueType
		severity validation.Severity
		metric   string
	}{
		{
			name: "invalid primary entity",
			content: `
semantic_models:
  - name: orders
    entities:
      - {name: order, type: primary}
    measures:
      - {name: order_count, agg: count}
metrics:
  - {name: orders_total, measure: order_count, entity: customer}
`,
			expected: validation.IssueInvalidPrimaryEntity,
			severity: validation.SeverityError,
			metric:   "orders_total",
		},
		{
			name: "missing measure",
			content: `
semantic_models:
  - name: orders
    entities:
      - {name: order, type: primary}
    measures:
      - {name: order_count, agg: count}
    metrics:
      - {name: bad_ratio, type: ratio, numerator: order_count, denominator: refunds}
`,
			expected: validation.IssueMissingMeasure,
			severity: validation.SeverityError,
			metric:   "bad_ratio",
		},
		{
			name: "ambiguous primary entity",
			content: `
semantic_models:
  - name: customers
    entities:
      - {name: customer, type: primary}
  - name: customers_v2
    entities:
      - {name: customer, type: primary}
`,
			expected: validation.IssueAmbiguousPrimaryEntity,
			severity: validation.SeverityError,
		},
		{
			name: "metric cycle",
			content: `
semantic_models:
  - name: orders
    entities:
      - {name: order, type: primary}
    measures:
      - {name: order_count, agg: count}
metrics:
  - {name: a, type: derived, expr: b + 1, metrics: [b]}
  - {name: b, type: derived, expr: a + 1, metrics: [a]}
`,
			expected: validation.IssueMetricCycle,
			severity: validation.SeverityError,
			metric:   "b",
		},
		{
			name: "missing metric",
			content: `
semantic_models:
  - name: orders
    entities:
      - {name: order, type: primary}
    measures:
      - {name: order_count, agg: count}
    metrics:
      - {name: orders_total, measure: order_count}
      - {name: growth, type: derived, expr: orders_total / ghost, metrics: [orders_total, ghost]}
`,
			expected: validation.IssueMissingMetric,
			severity: validation.SeverityWarning,
			metric:   "growth",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := validate(t, tt.content)

			issues := result.ByType(tt.expected)
			require.Len(t, issues, 1, result.Report())
			assert.Equal(t, tt.severity, issues[0].Severity)
			assert.Equal(t, tt.metric, issues[0].Metric)
			assert.NotEmpty(t, issues[0].Suggestion)
		})
	}
}

func TestMockValidator(t *testing.T) {
	project, err := builder.Build(testutil.Documents(t, testutil.ConversionYAML))
	require.NoError(t, err)

	mock := validation.NewMockValidator()
	result := mock.Validate(project.Models, project.Metrics)

	assert.Empty(t, result.Issues)
	require.Len(t, mock.ValidateCalls, 1)
	assert.Equal(t, []string{"orders", "searches"}, mock.ValidateCalls[0].Models)
	assert.Equal(t, []string{"conversion_rate"}, mock.ValidateCalls[0].Metrics)
}
