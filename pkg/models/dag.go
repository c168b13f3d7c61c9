package models

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/heimdalr/dag"
)

// MetricGraphReader provides read-only access to the metric dependency graph
type MetricGraphReader interface {
	// Metric retrieves a metric by name
	Metric(name string) (*Metric, bool)

	// GetDependencies returns the metrics a derived metric references directly
	GetDependencies(name string) []string

	// GetDependents returns metrics that reference the given metric
	GetDependents(name string) []string

	// GetAllDependencies returns all transitive references
	GetAllDependencies(name string) []string

	// IsPathBetween checks if from is (transitively) referenced by to
	IsPathBetween(from, to string) bool
}

// MetricGraph tracks references between metrics (derived metrics pointing at
// the metrics they combine). Edges run from the referenced metric to the
// derived one, so a cycle is rejected when it is added.
type MetricGraph struct {
	dag     *dag.DAG
	metrics map[string]*Metric
	mutex   sync.RWMutex
}

// NewMetricGraph creates an empty metric graph
func NewMetricGraph() *MetricGraph {
	return &MetricGraph{
		dag:     dag.NewDAG(),
		metrics: make(map[string]*Metric),
	}
}

// BuildGraph rebuilds the graph. Every metric is added as a vertex even when
// some of its references are broken; all reference problems are returned
// joined, each a *MetricReferenceError.
func (g *MetricGraph) BuildGraph(metrics []*Metric) error {
	g.mutex.Lock()
	defer g.mutex.Unlock()

	g.dag = dag.NewDAG()
	g.metrics = make(map[string]*Metric, len(metrics))

	for _, metric := range metrics {
		if metric == nil {
			continue
		}

		if _, exists := g.metrics[metric.Name]; exists {
			return fmt.Errorf("%w: metric %s", ErrDuplicateName, metric.Name)
		}

		// The name is the vertex value; Metric itself is not hashable by value
		if err := g.dag.AddVertexByID(metric.Name, metric.Name); err != nil {
			return fmt.Errorf("failed to add vertex %s: %w", metric.Name, err)
		}

		g.metrics[metric.Name] = metric
	}

	var errs []error

	for _, metric := range metrics {
		if metric == nil {
			continue
		}

		added := make(map[string]bool)

		for _, ref := range metric.ReferencedMetrics() {
			if added[ref] {
				continue
			}

			added[ref] = true

			if _, exists := g.metrics[ref]; !exists {
				errs = append(errs, &MetricReferenceError{Metric: metric.Name, Reference: ref, Err: ErrNonExistentMetric})
				continue
			}

			if err := g.dag.AddEdge(ref, metric.Name); err != nil {
				errs = append(errs, &MetricReferenceError{Metric: metric.Name, Reference: ref, Err: ErrMetricCycle})
			}
		}
	}

	return errors.Join(errs...)
}

// Metric retrieves a metric by name
func (g *MetricGraph) Metric(name string) (*Metric, bool) {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	metric, ok := g.metrics[name]

	return metric, ok
}

// Resolver adapts the graph to a MetricResolver
func (g *MetricGraph) Resolver() MetricResolver {
	return g.Metric
}

// GetDependencies returns the direct references of a metric
func (g *MetricGraph) GetDependencies(name string) []string {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	parents, err := g.dag.GetParents(name)
	if err != nil {
		return nil
	}

	return sortedKeys(parents)
}

// GetDependents returns the metrics directly referencing the given one
func (g *MetricGraph) GetDependents(name string) []string {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	children, err := g.dag.GetChildren(name)
	if err != nil {
		return nil
	}

	return sortedKeys(children)
}

// GetAllDependencies returns all transitive references of a metric
func (g *MetricGraph) GetAllDependencies(name string) []string {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	ancestors, err := g.dag.GetAncestors(name)
	if err != nil {
		return nil
	}

	return sortedKeys(ancestors)
}

// IsPathBetween checks if there's a reference path from one metric to another
func (g *MetricGraph) IsPathBetween(from, to string) bool {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	descendants, err := g.dag.GetDescendants(from)
	if err != nil {
		return false
	}

	_, exists := descendants[to]

	return exists
}

func sortedKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for id := range m {
		keys = append(keys, id)
	}

	sort.Strings(keys)

	return keys
}

// Ensure MetricGraph implements MetricGraphReader
var _ MetricGraphReader = (*MetricGraph)(nil)
