package models

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func derived(name string, refs ...string) *Metric {
	metricRefs := make([]MetricRef, 0, len(refs))
	for _, ref := range refs {
		metricRefs = append(metricRefs, MetricRef{Name: ref})
	}

	return &Metric{Name: name, Params: DerivedParams{Expr: name, Metrics: metricRefs}}
}

func simple(name, measure string) *Metric {
	return &Metric{Name: name, Params: SimpleParams{Measure: measure}}
}

func TestMetricGraph_BuildGraph(t *testing.T) {
	graph := NewMetricGraph()
	require.NoError(t, graph.BuildGraph([]*Metric{
		simple("revenue", "amount"),
		simple("orders", "order_count"),
		derived("aov", "revenue", "orders"),
		derived("aov_growth", "aov"),
	}))

	assert.Equal(t, []string{"orders", "revenue"}, graph.GetDependencies("aov"))
	assert.Equal(t, []string{"aov"}, graph.GetDependents("revenue"))
	assert.Equal(t, []string{"aov", "orders", "revenue"}, graph.GetAllDependencies("aov_growth"))
	assert.True(t, graph.IsPathBetween("revenue", "aov_growth"))
	assert.False(t, graph.IsPathBetween("aov_growth", "revenue"))
	assert.Nil(t, graph.GetDependencies("unknown"))

	metric, ok := graph.Resolver()("aov")
	require.True(t, ok)
	assert.Equal(t, "aov", metric.Name)
}

func TestMetricGraph_ReferenceErrors(t *testing.T) {
	graph := NewMetricGraph()
	err := graph.BuildGraph([]*Metric{
		derived("a", "b"),
		derived("b", "a"),
		derived("c", "ghost"),
		derived("self", "self"),
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMetricCycle)
	assert.ErrorIs(t, err, ErrNonExistentMetric)

	joined, ok := err.(interface{ Unwrap() []error })
	require.True(t, ok)

	refs := make(map[string]error)
	for _, e := range joined.Unwrap() {
		var refErr *MetricReferenceError
		require.True(t, errors.As(e, &refErr))
		refs[refErr.Metric+"->"+refErr.Reference] = refErr.Err
	}

	assert.Equal(t, map[string]error{
		"b->a":       ErrMetricCycle,
		"c->ghost":   ErrNonExistentMetric,
		"self->self": ErrMetricCycle,
	}, refs)

	// every metric is still indexed
	_, ok = graph.Metric("c")
	assert.True(t, ok)
}

func TestMetricGraph_DuplicateName(t *testing.T) {
	err := NewMetricGraph().BuildGraph([]*Metric{simple("a", "x"), simple("a", "y")})
	require.ErrorIs(t, err, ErrDuplicateName)
}

func TestMetricGraph_ConcurrentAccess(t *testing.T) {
	graph := NewMetricGraph()
	require.NoError(t, graph.BuildGraph([]*Metric{simple("revenue", "amount"), derived("total", "revenue")}))

	var wg sync.WaitGroup

	for i := 0; i < 10; i++ {
		wg.Add(1)

		go func() {
			defer wg.Done()

			assert.Equal(t, []string{"revenue"}, graph.GetAllDependencies("total"))
			assert.True(t, graph.IsPathBetween("revenue", "total"))
		}()
	}

	wg.Wait()
}
