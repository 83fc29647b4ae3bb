// Package dag builds the dependency graph from resolved catalog entries
// and evaluates subgraph selectors over it (spec.md §4.4).
package dag

import (
	"sort"

	"github.com/lewisthorpe1994/DataPipelineFoundry/pkg/diagnostics"
)

// NodeKind classifies a DAG node.
type NodeKind string

const (
	KindModel       NodeKind = "model"
	KindSourceTable NodeKind = "source_table"
	KindConnector   NodeKind = "connector"
	KindJob         NodeKind = "job"
	KindPipeline    NodeKind = "pipeline"
	KindSmt         NodeKind = "smt"
	KindPredicate   NodeKind = "predicate"
	KindSourceDB    NodeKind = "source_db"
	KindWarehouse   NodeKind = "warehouse"
)

// Node is a vertex in the execution DAG.
type Node struct {
	Name       string
	Kind       NodeKind
	DependsOn  []string
	Dependents []string
	Executable bool
}

// Graph encapsulates the DAG structure and its topological levels.
type Graph struct {
	Nodes  map[string]*Node
	Levels [][]string
}

// NewGraph creates an empty graph.
func NewGraph() *Graph {
	return &Graph{Nodes: make(map[string]*Node)}
}

// AddNode inserts a node and returns it. If a node with that name already
// exists, the existing node is returned unchanged (its kind and
// executable flag are kept) and no diagnostic is produced.
func (g *Graph) AddNode(name string, kind NodeKind, executable bool) *Node {
	if n, ok := g.Nodes[name]; ok {
		return n
	}
	n := &Node{Name: name, Kind: kind, Executable: executable}
	g.Nodes[name] = n
	return n
}

// AddEdge records that `to` depends on `from` (from must complete before
// to may run).
func (g *Graph) AddEdge(from, to string) *diagnostics.Diagnostic {
	source, ok := g.Nodes[from]
	if !ok {
		return diagnostics.New(diagnostics.KindUnknownRef, diagnostics.Span{}, from,
			"dependency edge references a node absent from the manifest")
	}
	target, ok := g.Nodes[to]
	if !ok {
		return diagnostics.New(diagnostics.KindUnknownRef, diagnostics.Span{}, to,
			"dependency edge references a node absent from the manifest")
	}
	for _, dep := range target.DependsOn {
		if dep == from {
			return nil // already recorded
		}
	}
	target.DependsOn = append(target.DependsOn, from)
	source.Dependents = append(source.Dependents, to)
	return nil
}

// TopologicalSort computes the DAG's levels using Kahn's algorithm. A
// non-nil DagCycle diagnostic is returned when the graph is cyclic (I2).
func (g *Graph) TopologicalSort() *diagnostics.Diagnostic {
	indegree := make(map[string]int, len(g.Nodes))
	for name := range g.Nodes {
		indegree[name] = 0
	}
	for _, n := range g.Nodes {
		indegree[n.Name] = len(n.DependsOn)
	}

	var queue []string
	for name, deg := range indegree {
		if deg == 0 {
			queue = append(queue, name)
		}
	}
	sort.Strings(queue)

	processed := 0
	var levels [][]string

	for len(queue) > 0 {
		level := append([]string(nil), queue...)
		sort.Strings(level)
		levels = append(levels, level)

		var next []string
		for _, name := range level {
			processed++
			for _, dependent := range g.Nodes[name].Dependents {
				indegree[dependent]--
				if indegree[dependent] == 0 {
					next = append(next, dependent)
				}
			}
		}
		sort.Strings(next)
		queue = next
	}

	if processed != len(g.Nodes) {
		return diagnostics.New(diagnostics.KindDagCycle, diagnostics.Span{}, "", cycleDescription(g, indegree))
	}

	g.Levels = levels
	return nil
}

// cycleDescription names every node still unresolved after Kahn's
// algorithm stalls, which is exactly the set participating in (or
// downstream of) a cycle.
func cycleDescription(g *Graph, indegree map[string]int) string {
	var remaining []string
	for name, deg := range indegree {
		if deg > 0 {
			remaining = append(remaining, name)
		}
	}
	sort.Strings(remaining)
	out := "cycle detected among nodes: "
	for i, name := range remaining {
		if i > 0 {
			out += ", "
		}
		out += name
	}
	return out
}
