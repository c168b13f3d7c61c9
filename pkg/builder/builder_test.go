package builder_test

import (
	"errors"
	"testing"

	"github.com/ethpandaops/semlook/internal/testutil"
	"github.com/ethpandaops/semlook/pkg/builder"
	"github.com/ethpandaops/semlook/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildRentals(t *testing.T) {
	project, err := builder.Build(testutil.Documents(t, testutil.RentalsYAML))
	require.NoError(t, err)
	require.Empty(t, project.Errors)
	require.Empty(t, project.Warnings)

	require.Len(t, project.Models, 3)
	assert.Equal(t, "rentals", project.Models[0].Name)
	assert.Equal(t, "facilities", project.Models[1].Name)
	assert.Equal(t, "reviews", project.Models[2].Name)

	rentals, ok := project.Model("rentals")
	require.True(t, ok)
	assert.Equal(t, "rental", rentals.PrimaryEntityName())
	assert.Equal(t, "analytics.rentals", rentals.DataModel.TableRef())
	require.Len(t, rentals.ForeignEntities(), 1)
	assert.Equal(t, "facility", rentals.ForeignEntities()[0].Name)
	require.NotNil(t, rentals.DateSelector)
	assert.True(t, rentals.DateSelector.Enabled)

	reviews, ok := project.Model("reviews")
	require.True(t, ok)
	assert.Equal(t, "warehouse.analytics.reviews", reviews.DataModel.TableRef())

	rental, ok := reviews.ForeignEntity("rental")
	require.True(t, ok)
	assert.True(t, rental.Complete)

	avg, ok := reviews.Measure("avg_rating")
	require.True(t, ok)
	assert.Equal(t, models.AggregationAverage, avg.Agg)

	revenue, ok := rentals.Measure("revenue")
	require.True(t, ok)
	assert.Equal(t, "CASE WHEN ${TABLE}.status = 'completed' THEN ${TABLE}.amount END", revenue.SQL())

	created, ok := rentals.Dimension("created_at")
	require.True(t, ok)
	assert.Equal(t, "utc", created.PrimaryVariant)
	assert.Len(t, created.ExpandVariants(), 2)

	status, ok := rentals.Dimension("status")
	require.True(t, ok)
	assert.Equal(t, "Rentals", status.Labels.ViewLabel())
	assert.Equal(t, "Status", status.Labels.GroupLabel())

	facilities, ok := project.Model("facilities")
	require.True(t, ok)

	city, ok := facilities.Dimension("city")
	require.True(t, ok)
	assert.Equal(t, "Facility", city.Labels.ViewLabel())
	assert.Equal(t, "City", city.Labels.GroupLabel())
}

func TestBuildMetricOwnership(t *testing.T) {
	project, err := builder.Build(testutil.Documents(t, testutil.RentalsYAML))
	require.NoError(t, err)

	tests := []struct {
		metric string
		owner  string
	}{
		{metric: "total_revenue", owner: "rentals"},
		{metric: "reviews_per_rental", owner: "rentals"},
		{metric: "facility_total", owner: "facilities"},
		{metric: "revenue_per_facility", owner: "rentals"},
	}

	for _, tt := range tests {
		t.Run(tt.metric, func(t *testing.T) {
			owner, ok := project.MetricOwner(tt.metric)
			require.True(t, ok)
			assert.Equal(t, tt.owner, owner.Name)
		})
	}

	assert.Empty(t, project.Unowned)
	assert.Len(t, project.Metrics, 4)
}

func TestBuildMetricParams(t *testing.T) {
	project, err := builder.Build(testutil.Documents(t, testutil.RentalsYAML))
	require.NoError(t, err)

	total, ok := project.Metric("total_revenue")
	require.True(t, ok)
	assert.True(t, total.IsExpanded())
	assert.Len(t, total.Variants(), 5)
	assert.Equal(t, "Total Revenue", total.Label)

	facilityTotal, ok := project.Metric("facility_total")
	require.True(t, ok)
	assert.Equal(t, models.SimpleParams{Measure: "facility_count"}, facilityTotal.Params)

	derived, ok := project.Metric("revenue_per_facility")
	require.True(t, ok)

	params, ok := derived.Params.(models.DerivedParams)
	require.True(t, ok)
	assert.Equal(t, []models.MetricRef{
		{Name: "total_revenue"},
		{Name: "facility_total", Alias: "facilities"},
	}, params.Metrics)
	assert.Equal(t, []string{"revenue", "facility_count"}, derived.RequiredMeasures(project.Resolver()))
	assert.Equal(t, []string{"facility_total", "total_revenue"}, project.Graph.GetDependencies("revenue_per_facility"))
}

func TestBuildIsDeterministic(t *testing.T) {
	first, err := builder.Build(testutil.Documents(t, testutil.RentalsYAML))
	require.NoError(t, err)

	second, err := builder.Build(testutil.Documents(t, testutil.RentalsYAML))
	require.NoError(t, err)

	require.Len(t, second.Models, len(first.Models))

	for i, model := range first.Models {
		other := second.Models[i]
		assert.Equal(t, model.Name, other.Name)
		assert.Equal(t, model.Entities, other.Entities)
		assert.Equal(t, model.Dimensions, other.Dimensions)
		assert.Equal(t, model.Measures, other.Measures)
		require.Len(t, other.Metrics, len(model.Metrics))

		for j, metric := range model.Metrics {
			assert.Equal(t, metric.Name, other.Metrics[j].Name)
			assert.Equal(t, metric.Variants(), other.Metrics[j].Variants())
		}
	}
}

func TestBuildConsumesBuilder(t *testing.T) {
	b := builder.New()
	for _, doc := range testutil.Documents(t, testutil.ConversionYAML) {
		require.NoError(t, b.Collect(doc))
	}

	_, err := b.Build()
	require.NoError(t, err)

	_, err = b.Build()
	require.ErrorIs(t, err, builder.ErrAlreadyBuilt)
	require.ErrorIs(t, b.Collect(models.Document{}), builder.ErrAlreadyBuilt)
}

func TestBuildAcrossDocuments(t *testing.T) {
	docs := append(
		testutil.Documents(t, "metrics:\n  - name: searches_total\n    measure: total_searches\n"),
		testutil.Documents(t, testutil.ConversionYAML)...,
	)

	project, err := builder.Build(docs)
	require.NoError(t, err)

	owner, ok := project.MetricOwner("searches_total")
	require.True(t, ok)
	assert.Equal(t, "searches", owner.Name)
}

const invalidYAML = `
semantic_models:
  - name: orders
    entities:
      - name: order
        type: primary
      - name: other
        type: primary
    dimensions:
      - name: created_at
        type: time
        primary_variant: missing
        variants:
          utc: created_at
    measures:
      - name: revenue
        agg: sum
      - name: order_count
        agg: count
  - name: orders
    measures:
      - name: duplicate
        agg: count
metrics:
  - name: orphan
    measure: nowhere
  - name: broken_ratio
    type: ratio
    numerator: order_count
`

func TestBuildLenient(t *testing.T) {
	project, err := builder.Build(testutil.Documents(t, invalidYAML))
	require.NoError(t, err)

	require.Len(t, project.Models, 1)
	orders := project.Models[0]

	assert.Len(t, orders.Entities, 1)
	assert.Empty(t, orders.Dimensions)
	require.Len(t, orders.Measures, 1)
	assert.Equal(t, "order_count", orders.Measures[0].Name)

	require.Len(t, project.Unowned, 1)
	assert.Equal(t, "orphan", project.Unowned[0].Name)

	sentinels := []error{
		models.ErrMultiplePrimary,
		models.ErrPrimaryVariant,
		models.ErrDuplicateName,
	}
	for _, sentinel := range sentinels {
		assert.ErrorIs(t, project.Err(), sentinel)
	}

	require.Len(t, project.Errors, 5)

	for _, err := range project.Errors {
		var fieldErr *models.FieldError
		assert.True(t, errors.As(err, &fieldErr), "expected FieldError, got %v", err)
	}

	// orders has no data model binding
	require.Len(t, project.Warnings, 1)

	var refErr *models.ReferenceError
	require.ErrorAs(t, project.Warnings[0], &refErr)
	assert.Equal(t, "data_model", refErr.Kind)
}

func TestBuildStrict(t *testing.T) {
	_, err := builder.Build(testutil.Documents(t, invalidYAML), builder.WithStrict(true))
	require.Error(t, err)
	require.ErrorIs(t, err, models.ErrField)
	require.ErrorIs(t, err, models.ErrMultiplePrimary)
}

func TestCollectStructuralErrors(t *testing.T) {
	tests := []struct {
		name   string
		data   map[string]any
		strict bool
	}{
		{name: "section is not a list", data: map[string]any{"semantic_models": "orders"}},
		{name: "entry is not a mapping", data: map[string]any{"metrics": []any{"orders"}}},
		{name: "strict section is not a list", data: map[string]any{"data_models": 3}, strict: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := builder.New(builder.WithStrict(tt.strict))
			err := b.Collect(models.Document{Path: "x.yaml", Data: tt.data})

			if tt.strict {
				require.ErrorIs(t, err, models.ErrStructural)

				return
			}

			require.NoError(t, err)

			project, err := b.Build()
			require.NoError(t, err)
			require.Len(t, project.Errors, 1)
			assert.ErrorIs(t, project.Errors[0], models.ErrStructural)
		})
	}
}

func TestBuildWithLoadErrors(t *testing.T) {
	skipped := &models.StructuralError{Path: "bad.yml", Reason: "root must be a mapping"}

	project, err := builder.Build(testutil.Documents(t, testutil.ConversionYAML), builder.WithLoadErrors([]error{skipped}))
	require.NoError(t, err)

	require.Len(t, project.Errors, 1)
	assert.Same(t, skipped, project.Errors[0])
	require.ErrorIs(t, project.Err(), models.ErrStructural)
}
