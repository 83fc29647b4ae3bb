package dag

import (
	"fmt"
	"sort"
	"strings"
)

// Select evaluates a selector expression (spec.md §4.4):
//
//	N     the node itself
//	<N    every ancestor of N (transitively upstream), excluding N
//	N>    every descendant of N (transitively downstream), excluding N
//	<N>   the union of the above three
func Select(g *Graph, expr string) (map[string]bool, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return nil, fmt.Errorf("empty selector")
	}

	wantAncestors := strings.HasPrefix(expr, "<")
	if wantAncestors {
		expr = expr[1:]
	}
	wantDescendants := strings.HasSuffix(expr, ">")
	if wantDescendants {
		expr = expr[:len(expr)-1]
	}

	name := expr
	if _, ok := g.Nodes[name]; !ok {
		return nil, fmt.Errorf("selector references unknown node %q", name)
	}

	out := map[string]bool{name: true}
	if wantAncestors {
		for n := range ancestors(g, name) {
			out[n] = true
		}
	}
	if wantDescendants {
		for n := range descendants(g, name) {
			out[n] = true
		}
	}
	return out, nil
}

// ancestors returns every node transitively upstream of name (i.e. every
// node name depends on, directly or indirectly), excluding name itself.
func ancestors(g *Graph, name string) map[string]bool {
	seen := make(map[string]bool)
	var walk func(string)
	walk = func(n string) {
		node, ok := g.Nodes[n]
		if !ok {
			return
		}
		for _, dep := range node.DependsOn {
			if !seen[dep] {
				seen[dep] = true
				walk(dep)
			}
		}
	}
	walk(name)
	return seen
}

// descendants returns every node transitively downstream of name (i.e.
// every node that depends on name, directly or indirectly), excluding
// name itself.
func descendants(g *Graph, name string) map[string]bool {
	seen := make(map[string]bool)
	var walk func(string)
	walk = func(n string) {
		node, ok := g.Nodes[n]
		if !ok {
			return
		}
		for _, dep := range node.Dependents {
			if !seen[dep] {
				seen[dep] = true
				walk(dep)
			}
		}
	}
	walk(name)
	return seen
}

// ExecutionOrder filters the graph's topological levels down to the
// selected subset, preserving dependency order and dropping non-
// executable lineage-only nodes (pipelines, SMTs, predicates, leaves).
func ExecutionOrder(g *Graph, selected map[string]bool) []string {
	var out []string
	for _, level := range g.Levels {
		names := append([]string(nil), level...)
		sort.Strings(names)
		for _, name := range names {
			if !selected[name] {
				continue
			}
			if node := g.Nodes[name]; node != nil && node.Executable {
				out = append(out, name)
			}
		}
	}
	return out
}
