package dependencies

import (
	"fmt"
	"sort"
	"strings"
)

// GraphInfo contains join graph visualization information
type GraphInfo struct {
	// Components are the connected groups of models, largest first
	Components [][]string
	Neighbours map[string][]string
	// Isolated lists models without any join
	Isolated    []string
	TotalModels int
	TotalEdges  int
}

// GetGraphInfo returns join graph visualization information
func (g *JoinGraph) GetGraphInfo() *GraphInfo {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	neighbours := make(map[string][]string, len(g.order))
	isolated := []string{}

	for _, name := range g.order {
		neighbours[name] = sortedSet(g.adjacency[name])
		if len(neighbours[name]) == 0 {
			isolated = append(isolated, name)
		}
	}

	return &GraphInfo{
		Components:  g.components(),
		Neighbours:  neighbours,
		Isolated:    isolated,
		TotalModels: len(g.order),
		TotalEdges:  len(g.edges),
	}
}

// Levels groups the models reachable from fact by join distance
func (g *JoinGraph) Levels(fact string) (map[int][]string, error) {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	if _, ok := g.models[fact]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrModelNotInGraph, fact)
	}

	levels := make(map[int][]string)
	for name, level := range g.distances(fact) {
		levels[level] = append(levels[level], name)
	}

	for level := range levels {
		sort.Strings(levels[level])
	}

	return levels, nil
}

// components finds connected components. Caller holds the read lock.
func (g *JoinGraph) components() [][]string {
	seen := make(map[string]bool, len(g.order))
	components := [][]string{}

	for _, name := range g.order {
		if seen[name] {
			continue
		}

		component := make([]string, 0)
		for member := range g.distances(name) {
			seen[member] = true
			component = append(component, member)
		}

		sort.Strings(component)
		components = append(components, component)
	}

	sort.SliceStable(components, func(i, j int) bool {
		return len(components[i]) > len(components[j])
	})

	return components
}

// GenerateDOTFormat generates a DOT format representation of the join graph.
// Edges point along the FK declaration and are labelled with the entity.
func (g *JoinGraph) GenerateDOTFormat() string {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	var sb strings.Builder
	sb.WriteString("digraph joins {\n")
	sb.WriteString("  rankdir=LR;\n")

	for _, name := range g.order {
		if g.models[name].PrimaryEntityName() == "" {
			fmt.Fprintf(&sb, "  \"%s\" [shape=box, style=dashed];\n", name)
		} else {
			fmt.Fprintf(&sb, "  \"%s\";\n", name)
		}
	}

	for _, edge := range g.edges {
		fmt.Fprintf(&sb, "  \"%s\" -> \"%s\" [label=\"%s\"];\n", edge.From, edge.To, edge.Entity)
	}

	for _, edge := range g.dangling {
		fmt.Fprintf(&sb, "  \"%s\" -> \"?%s\" [style=dotted, label=\"%s\"];\n", edge.From, edge.Entity, edge.Entity)
	}

	sb.WriteString("}")

	return sb.String()
}
