package dag

import (
	"strings"

	"github.com/lewisthorpe1994/DataPipelineFoundry/internal/catalog"
	"github.com/lewisthorpe1994/DataPipelineFoundry/internal/resolver"
	"github.com/lewisthorpe1994/DataPipelineFoundry/pkg/diagnostics"
)

// Build assembles the execution DAG from a resolved catalog plus the
// model-level edges the resolver computed. Connector/pipeline/SMT/
// predicate edges are derived directly from the catalog here, since they
// don't require macro substitution.
func Build(cat *catalog.Catalog, edges []resolver.Edge) (*Graph, *diagnostics.Bag) {
	bag := &diagnostics.Bag{}
	g := NewGraph()

	for _, m := range catalog.All[*catalog.Model](cat, catalog.KindModel) {
		g.AddNode(m.ID(), KindModel, true)
	}
	for _, st := range catalog.All[*catalog.SourceTable](cat, catalog.KindSourceTable) {
		g.AddNode(st.FQN, KindSourceTable, false)
	}
	for _, j := range catalog.All[*catalog.JobDecl](cat, catalog.KindJob) {
		g.AddNode(j.Name, KindJob, true)
	}

	for _, e := range edges {
		if diag := g.AddEdge(e.From, e.To); diag != nil {
			bag.Add(diag)
		}
	}

	addConnectorSubgraphs(cat, g, bag)

	if diag := g.TopologicalSort(); diag != nil {
		bag.Add(diag)
	}

	return g, bag
}

// addConnectorSubgraphs wires connector -> pipeline -> SMT -> predicate
// chains. Built-in presets never get their own node: they're config
// templates merged at compile time, not separately executable lineage.
func addConnectorSubgraphs(cat *catalog.Catalog, g *Graph, bag *diagnostics.Bag) {
	for _, conn := range catalog.All[*catalog.KafkaConnector](cat, catalog.KindConnector) {
		g.AddNode(conn.Name, KindConnector, conn.DagExecutable)

		leaf, leafKind := connectorLeaf(conn)
		if leaf != "" {
			g.AddNode(leaf, leafKind, false)
			if diag := g.AddEdge(leaf, conn.Name); diag != nil {
				bag.Add(diag)
			}
		}

		for _, pipelineName := range conn.Pipelines {
			pipe, ok := catalog.Get[*catalog.PipelineDecl](cat, catalog.KindPipeline, pipelineName)
			if !ok {
				continue // already diagnosed by the resolver
			}
			addPipelineSubgraph(cat, g, pipe, bag)
			if diag := g.AddEdge(pipelineName, conn.Name); diag != nil {
				bag.Add(diag)
			}
		}
	}
}

func connectorLeaf(conn *catalog.KafkaConnector) (string, NodeKind) {
	if conn.ConnectionName == "" {
		return "", ""
	}
	if isSinkKind(conn.Kind) {
		return "warehouse:" + conn.ConnectionName, KindWarehouse
	}
	return "source_db:" + conn.ConnectionName, KindSourceDB
}

func isSinkKind(kind catalog.ConnectorKind) bool {
	return strings.HasSuffix(string(kind), "sink")
}

func addPipelineSubgraph(cat *catalog.Catalog, g *Graph, pipe *catalog.PipelineDecl, bag *diagnostics.Bag) {
	g.AddNode(pipe.Name, KindPipeline, false)

	if pipe.PipelinePredicate != "" {
		if pred, ok := catalog.Get[*catalog.PredicateDecl](cat, catalog.KindPredicate, pipe.PipelinePredicate); ok {
			g.AddNode(pred.Name, KindPredicate, false)
			if diag := g.AddEdge(pred.Name, pipe.Name); diag != nil {
				bag.Add(diag)
			}
		}
	}

	for _, step := range pipe.Steps {
		smt, ok := catalog.Get[*catalog.SmtDecl](cat, catalog.KindSmt, step.SmtName)
		if !ok {
			continue // built-in preset or already diagnosed as unknown
		}
		g.AddNode(smt.Name, KindSmt, false)
		if diag := g.AddEdge(smt.Name, pipe.Name); diag != nil {
			bag.Add(diag)
		}
		if smt.PredicateRef != nil {
			if pred, ok := catalog.Get[*catalog.PredicateDecl](cat, catalog.KindPredicate, smt.PredicateRef.Name); ok {
				g.AddNode(pred.Name, KindPredicate, false)
				if diag := g.AddEdge(pred.Name, smt.Name); diag != nil {
					bag.Add(diag)
				}
			}
		}
	}
}
