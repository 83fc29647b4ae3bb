package main

import (
	"context"

	"github.com/lewisthorpe1994/DataPipelineFoundry/internal/compiler"
	"github.com/lewisthorpe1994/DataPipelineFoundry/internal/dag"
	"github.com/lewisthorpe1994/DataPipelineFoundry/internal/logging"
	"github.com/lewisthorpe1994/DataPipelineFoundry/internal/project"
	"github.com/lewisthorpe1994/DataPipelineFoundry/internal/resolver"
	"github.com/lewisthorpe1994/DataPipelineFoundry/pkg/diagnostics"
)

// compileResult bundles the output of every phase so compile, run, and
// graph can share one code path instead of three slightly different
// copies of it.
type compileResult struct {
	Project  *project.Project
	Graph    *dag.Graph
	Manifest *compiler.Manifest
}

// runCompile drives load -> resolve -> build -> compile, logging each
// phase boundary. It returns the first fatal diagnostic as an error;
// warnings are logged but never abort the pipeline.
func runCompile(ctx context.Context, log logging.Logger, projectDir string) (*compileResult, error) {
	proj, loadBag := project.Load(projectDir)
	logWarnings(ctx, log, "load", loadBag)
	if loadBag.Fatal() {
		return nil, loadBag.Err()
	}

	resolved, resolveBag := resolver.Resolve(proj.Catalog)
	logWarnings(ctx, log, "resolve", resolveBag)
	if resolveBag.Fatal() {
		return nil, resolveBag.Err()
	}

	graph, dagBag := dag.Build(proj.Catalog, resolved.Edges)
	logWarnings(ctx, log, "dag", dagBag)
	if dagBag.Fatal() {
		return nil, dagBag.Err()
	}

	manifest, compileBag := compiler.Build(proj.Catalog, graph)
	logWarnings(ctx, log, "compile", compileBag)
	if compileBag.Fatal() {
		return nil, compileBag.Err()
	}

	log.Info(ctx, "compile finished", "project", proj.Config.Name, "nodes", len(manifest.Nodes), "digest", manifest.Digest)
	return &compileResult{Project: proj, Graph: graph, Manifest: manifest}, nil
}

func logWarnings(ctx context.Context, log logging.Logger, phase string, bag *diagnostics.Bag) {
	for _, d := range bag.Warnings() {
		log.Warn(ctx, d.Message, "phase", phase, "kind", string(d.Kind), "identifier", d.Identifier)
	}
}
