package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func boolPtr(b bool) *bool {
	return &b
}

func stringPtr(s string) *string {
	return &s
}

func TestModelOverrideIsDisabled(t *testing.T) {
	tests := []struct {
		name     string
		override *ModelOverride
		expected bool
	}{
		{name: "nil override", override: nil, expected: false},
		{name: "enabled unset", override: &ModelOverride{}, expected: false},
		{name: "enabled true", override: &ModelOverride{Enabled: boolPtr(true)}, expected: false},
		{name: "enabled false", override: &ModelOverride{Enabled: boolPtr(false)}, expected: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.override.IsDisabled())
		})
	}
}

func TestApplyOverrides(t *testing.T) {
	orders := &ProcessedModel{
		Name:      "orders",
		DataModel: &DataModel{Name: "orders", Schema: "analytics", Table: "orders"},
		Measures:  []Measure{{Name: "order_count", Agg: AggregationCount}},
	}
	customers := &ProcessedModel{
		Name:      "customers",
		DataModel: &DataModel{Name: "customers", Schema: "analytics", Table: "customers"},
	}
	unbound := &ProcessedModel{Name: "unbound"}

	overrides := map[string]*ModelOverride{
		"orders":    {Schema: stringPtr("staging"), Label: stringPtr("All Orders")},
		"customers": {Enabled: boolPtr(false)},
	}

	out := ApplyOverrides([]*ProcessedModel{orders, customers, unbound}, overrides, "reporting")
	require.Len(t, out, 2)

	assert.Equal(t, "orders", out[0].Name)
	assert.Equal(t, "staging.orders", out[0].DataModel.TableRef())
	assert.Equal(t, "All Orders", out[0].Label)
	assert.Equal(t, orders.Measures, out[0].Measures)

	assert.Same(t, unbound, out[1])
	assert.Nil(t, out[1].DataModel)

	// inputs are untouched
	assert.Equal(t, "analytics.orders", orders.DataModel.TableRef())
	assert.Empty(t, orders.Label)
}

func TestApplyOverridesGlobalSchema(t *testing.T) {
	orders := &ProcessedModel{
		Name:      "orders",
		DataModel: &DataModel{Name: "orders", Catalog: "warehouse", Schema: "analytics", Table: "orders"},
	}

	out := ApplyOverrides([]*ProcessedModel{orders}, nil, "reporting")
	require.Len(t, out, 1)
	assert.Equal(t, "warehouse.reporting.orders", out[0].DataModel.TableRef())
	assert.NotSame(t, orders, out[0])

	out = ApplyOverrides([]*ProcessedModel{orders}, nil, "")
	assert.Same(t, orders, out[0])
}
