// Package dependencies manages the join graph between semantic models
package dependencies

import (
	"errors"
	"sort"
	"sync"

	"github.com/ethpandaops/semlook/pkg/models"
)

var (
	// ErrModelNotInGraph is returned when a model name is not a graph vertex
	ErrModelNotInGraph = errors.New("model not in join graph")
)

// JoinEdge is one foreign-key declaration: From declares a foreign entity
// that is the primary entity of To
type JoinEdge struct {
	From   string
	To     string
	Entity string
}

// JoinGraph connects models through entity declarations. Edges are stored in
// both directions because joins may be traversed either way; FK graphs can
// contain cycles, so this is an adjacency structure rather than a DAG.
type JoinGraph struct {
	models    map[string]*models.ProcessedModel
	order     []string
	adjacency map[string]map[string]bool
	edges     []JoinEdge
	// primaries maps a primary entity name to every model declaring it
	primaries map[string][]string
	dangling  []JoinEdge
	mutex     sync.RWMutex
}

// NewJoinGraph creates an empty join graph
func NewJoinGraph() *JoinGraph {
	return &JoinGraph{
		models:    make(map[string]*models.ProcessedModel),
		adjacency: make(map[string]map[string]bool),
		primaries: make(map[string][]string),
	}
}

// BuildGraph rebuilds the graph from the given models. A foreign entity
// whose name is primary on several models links to all of them; the
// ambiguity is reported by AmbiguousEntities.
func (g *JoinGraph) BuildGraph(modelList []*models.ProcessedModel) {
	g.mutex.Lock()
	defer g.mutex.Unlock()

	g.models = make(map[string]*models.ProcessedModel, len(modelList))
	g.order = make([]string, 0, len(modelList))
	g.adjacency = make(map[string]map[string]bool, len(modelList))
	g.primaries = make(map[string][]string)
	g.edges = nil
	g.dangling = nil

	for _, model := range modelList {
		if _, exists := g.models[model.Name]; exists {
			continue
		}

		g.models[model.Name] = model
		g.order = append(g.order, model.Name)
		g.adjacency[model.Name] = make(map[string]bool)

		if primary := model.PrimaryEntityName(); primary != "" {
			g.primaries[primary] = append(g.primaries[primary], model.Name)
		}
	}

	for _, name := range g.order {
		for _, entity := range g.models[name].ForeignEntities() {
			targets := g.primaries[entity.Name]
			if len(targets) == 0 {
				g.dangling = append(g.dangling, JoinEdge{From: name, Entity: entity.Name})
				continue
			}

			for _, target := range targets {
				if target == name {
					continue
				}

				g.edges = append(g.edges, JoinEdge{From: name, To: target, Entity: entity.Name})
				g.adjacency[name][target] = true
				g.adjacency[target][name] = true
			}
		}
	}
}

// Model returns a model by name
func (g *JoinGraph) Model(name string) (*models.ProcessedModel, bool) {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	model, ok := g.models[name]

	return model, ok
}

// ModelForEntity returns the only model declaring entity as primary
func (g *JoinGraph) ModelForEntity(entity string) (string, bool) {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	owners := g.primaries[entity]
	if len(owners) != 1 {
		return "", false
	}

	return owners[0], true
}

// AmbiguousEntities returns primary entity names declared by more than one
// model, mapped to those models
func (g *JoinGraph) AmbiguousEntities() map[string][]string {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	out := make(map[string][]string)

	for entity, owners := range g.primaries {
		if len(owners) > 1 {
			out[entity] = append([]string(nil), owners...)
		}
	}

	return out
}

// DanglingForeignEntities returns foreign entities no model declares as
// primary. To is empty on every returned edge.
func (g *JoinGraph) DanglingForeignEntities() []JoinEdge {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	return append([]JoinEdge(nil), g.dangling...)
}

// Edges returns the resolved FK declarations in declaration order
func (g *JoinGraph) Edges() []JoinEdge {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	return append([]JoinEdge(nil), g.edges...)
}

// Neighbours returns the models directly joined to name, either direction
func (g *JoinGraph) Neighbours(name string) []string {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	return sortedSet(g.adjacency[name])
}

// Reachable reports whether to can be joined from from through any chain of
// entity links. A model is always reachable from itself.
func (g *JoinGraph) Reachable(from, to string) bool {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	if _, ok := g.models[from]; !ok {
		return false
	}

	if from == to {
		return true
	}

	_, ok := g.distances(from)[to]

	return ok
}

// Path returns the shortest chain of models from from to to, both included
func (g *JoinGraph) Path(from, to string) ([]string, error) {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	if _, ok := g.models[from]; !ok {
		return nil, ErrModelNotInGraph
	}

	if _, ok := g.models[to]; !ok {
		return nil, ErrModelNotInGraph
	}

	parent := map[string]string{from: ""}
	queue := []string{from}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		if current == to {
			break
		}

		for _, next := range sortedSet(g.adjacency[current]) {
			if _, seen := parent[next]; !seen {
				parent[next] = current
				queue = append(queue, next)
			}
		}
	}

	if _, ok := parent[to]; !ok {
		return nil, nil
	}

	path := []string{to}
	for node := to; node != from; {
		node = parent[node]
		path = append([]string{node}, path...)
	}

	return path, nil
}

// ModelNames returns every model name in declaration order
func (g *JoinGraph) ModelNames() []string {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	return append([]string(nil), g.order...)
}

// distances runs a BFS from start and returns the hop count to every
// reachable model. Caller holds the read lock.
func (g *JoinGraph) distances(start string) map[string]int {
	dist := map[string]int{start: 0}
	queue := []string{start}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		for next := range g.adjacency[current] {
			if _, seen := dist[next]; !seen {
				dist[next] = dist[current] + 1
				queue = append(queue, next)
			}
		}
	}

	return dist
}

func sortedSet(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for key := range set {
		out = append(out, key)
	}

	sort.Strings(out)

	return out
}
