// Package resolver implements the two-pass resolution described in
// spec.md §4.3: pass 1 substitutes model macros and materializes source
// tables; pass 2 validates every Kafka cross-reference and checks SMT
// preset chains for cycles. Both passes run to completion and report all
// diagnostics together via pkg/diagnostics.Bag rather than failing fast.
package resolver

import (
	"sort"
	"strings"

	"github.com/lewisthorpe1994/DataPipelineFoundry/internal/ast"
	"github.com/lewisthorpe1994/DataPipelineFoundry/internal/catalog"
	"github.com/lewisthorpe1994/DataPipelineFoundry/internal/parser"
	"github.com/lewisthorpe1994/DataPipelineFoundry/pkg/diagnostics"
)

// Edge records that To depends on From (From must be built/run first).
type Edge struct {
	From string
	To   string
}

// Result is everything downstream DAG construction needs once resolution
// completes.
type Result struct {
	Edges []Edge
}

// Resolve mutates cat in place (Model.CompiledSQL, materialized
// SourceTable entries) and returns the dependency edges implied by model
// macros, plus every diagnostic raised along the way. Edges between
// connectors, pipelines, SMTs and predicates are not produced here;
// dag.Build derives them from the catalog. Callers should check bag.Err() before proceeding to DAG
// construction.
func Resolve(cat *catalog.Catalog) (*Result, *diagnostics.Bag) {
	bag := &diagnostics.Bag{}
	result := &Result{}

	resolveModels(cat, result, bag)
	resolveKafka(cat, result, bag)

	return result, bag
}

// resolveModels is pass 1: substitute ref()/source() macros in every
// model's RawSQL with resolved identifiers, materializing SourceTable
// catalog entries and dependency edges as it goes.
func resolveModels(cat *catalog.Catalog, result *Result, bag *diagnostics.Bag) {
	for _, m := range catalog.All[*catalog.Model](cat, catalog.KindModel) {
		parsed, diag := parser.ParseModel(m.SourceFile, m.RawSQL)
		if diag != nil {
			bag.Add(diag)
			continue
		}

		compiled, edges := substituteMacros(cat, m, parsed, bag)
		m.CompiledSQL = compiled
		result.Edges = append(result.Edges, edges...)
	}
}

// substituteMacros applies every macro span in parsed against m.RawSQL,
// processing them in reverse source order so earlier offsets stay valid
// as the text is rebuilt (spec.md §9: span-based text replacement, not
// AST pretty-print). Macro offsets are rune offsets, so the text is
// rebuilt as a rune slice.
func substituteMacros(cat *catalog.Catalog, m *catalog.Model, parsed *ast.Model, bag *diagnostics.Bag) (string, []Edge) {
	var edges []Edge
	out := []rune(m.RawSQL)

	macros := append([]ast.MacroCall(nil), parsed.Macros...)
	sort.Slice(macros, func(i, j int) bool { return macros[i].Start > macros[j].Start })

	for _, call := range macros {
		var replacement string
		switch call.Name {
		case ast.MacroRef:
			replacement, edges = applyRefMacro(call, m, edges, bag)
		case ast.MacroSource:
			replacement, edges = applySourceMacro(cat, call, m, edges, bag)
		}
		if replacement == "" {
			continue
		}
		rest := append([]rune(replacement), out[call.End:]...)
		out = append(out[:call.Start], rest...)
	}

	return string(out), edges
}

func applyRefMacro(call ast.MacroCall, m *catalog.Model, edges []Edge, bag *diagnostics.Bag) (string, []Edge) {
	if len(call.Args) != 2 {
		bag.Addf(diagnostics.KindParseError, call.Span, "", "ref() takes exactly two arguments (layer, name)")
		return "", edges
	}
	layer, name := call.Args[0], call.Args[1]
	targetID := layer + "_" + name

	edges = append(edges, Edge{From: targetID, To: m.ID()})
	return quoteIdent(targetID), edges
}

func applySourceMacro(cat *catalog.Catalog, call ast.MacroCall, m *catalog.Model, edges []Edge, bag *diagnostics.Bag) (string, []Edge) {
	var fqn string
	switch len(call.Args) {
	case 2:
		resolved, warn, err := cat.ResolveSourceFQN(call.Args[0], call.Args[1])
		if warn != nil {
			bag.Add(warn)
		}
		if err != nil {
			bag.Add(err)
			return "", edges
		}
		fqn = resolved
	case 3:
		fqn = catalog.ResolveSourceFQNExplicit(call.Args[0], call.Args[1], call.Args[2])
	default:
		bag.Addf(diagnostics.KindParseError, call.Span, "", "source() takes two or three arguments")
		return "", edges
	}

	st := materializeSourceTable(cat, fqn)
	edges = append(edges, Edge{From: st.FQN, To: m.ID()})
	return quoteFQN(fqn), edges
}

// materializeSourceTable inserts a SourceTable node into the catalog the
// first time its FQN is referenced, reusing the existing entry on
// subsequent references.
func materializeSourceTable(cat *catalog.Catalog, fqn string) *catalog.SourceTable {
	if existing, ok := catalog.Get[*catalog.SourceTable](cat, catalog.KindSourceTable, fqn); ok {
		return existing
	}
	parts := strings.SplitN(fqn, ".", 3)
	st := &catalog.SourceTable{FQN: fqn}
	if len(parts) == 3 {
		st.SourceDB, st.Schema, st.Table = parts[0], parts[1], parts[2]
	}
	_ = cat.Insert(catalog.KindSourceTable, fqn, st) // always unique per fqn
	return st
}

func quoteIdent(id string) string {
	return `"` + id + `"`
}

func quoteFQN(fqn string) string {
	parts := strings.Split(fqn, ".")
	for i, p := range parts {
		parts[i] = `"` + p + `"`
	}
	return strings.Join(parts, ".")
}

// resolveKafka is pass 2: validate every Kafka DDL cross-reference and
// detect preset-chain cycles. It records no edges; dag.Build derives the
// Kafka edges from the catalog.
func resolveKafka(cat *catalog.Catalog, result *Result, bag *diagnostics.Bag) {
	for _, conn := range catalog.All[*catalog.KafkaConnector](cat, catalog.KindConnector) {
		validateConnector(cat, conn, result, bag)
	}
	for _, smt := range catalog.All[*catalog.SmtDecl](cat, catalog.KindSmt) {
		validatePresetChain(cat, smt, bag)
		validateSmtPredicate(cat, smt, bag)
	}
	for _, pipe := range catalog.All[*catalog.PipelineDecl](cat, catalog.KindPipeline) {
		validatePipeline(cat, pipe, bag)
	}
	for _, pred := range catalog.All[*catalog.PredicateDecl](cat, catalog.KindPredicate) {
		validatePredicate(pred, bag)
	}
}

// validatePredicate enforces I6: TopicNameMatches and HasHeaderKey
// require a pattern; RecordIsTombstone forbids one.
func validatePredicate(pred *catalog.PredicateDecl, bag *diagnostics.Bag) {
	switch pred.Kind {
	case catalog.PredicateTopicNameMatches, catalog.PredicateHasHeaderKey:
		if pred.Pattern == "" {
			bag.Addf(diagnostics.KindInvalidPredicate, diagnostics.Span{}, pred.Name,
				"predicate %q of kind %s requires a pattern", pred.Name, pred.Kind)
		}
	case catalog.PredicateRecordIsTombstone:
		if pred.Pattern != "" {
			bag.Addf(diagnostics.KindInvalidPredicate, diagnostics.Span{}, pred.Name,
				"predicate %q of kind %s must not declare a pattern", pred.Name, pred.Kind)
		}
	}
}

func validateConnector(cat *catalog.Catalog, conn *catalog.KafkaConnector, result *Result, bag *diagnostics.Bag) {
	if _, ok := cat.KafkaCluster(conn.ClusterName); !ok {
		bag.Addf(diagnostics.KindUnknownCluster, diagnostics.Span{}, conn.ClusterName,
			"connector %q references unknown Kafka cluster %q", conn.Name, conn.ClusterName)
	}
	if conn.ConnectionName != "" {
		if _, ok := cat.Connection(conn.ConnectionName); !ok {
			bag.Addf(diagnostics.KindUnknownConnection, diagnostics.Span{}, conn.ConnectionName,
				"connector %q references unknown connection %q", conn.Name, conn.ConnectionName)
		}
	}

	for _, pipelineName := range conn.Pipelines {
		if _, ok := catalog.Get[*catalog.PipelineDecl](cat, catalog.KindPipeline, pipelineName); !ok {
			bag.Addf(diagnostics.KindUnknownPipeline, diagnostics.Span{}, pipelineName,
				"connector %q references unknown pipeline %q", conn.Name, pipelineName)
		}
	}

	if isSinkKind(conn.Kind) && conn.TargetSchema == "" {
		bag.Addf(diagnostics.KindMissingTargetSchema, diagnostics.Span{}, conn.Name,
			"sink connector %q must declare USING SCHEMA", conn.Name)
	}
}

func isSinkKind(kind catalog.ConnectorKind) bool {
	return strings.HasSuffix(string(kind), "sink")
}

func validateSmtPredicate(cat *catalog.Catalog, smt *catalog.SmtDecl, bag *diagnostics.Bag) {
	if smt.PredicateRef == nil {
		return
	}
	if _, ok := catalog.Get[*catalog.PredicateDecl](cat, catalog.KindPredicate, smt.PredicateRef.Name); !ok {
		bag.Addf(diagnostics.KindUnknownPredicate, diagnostics.Span{}, smt.PredicateRef.Name,
			"SMT %q references unknown predicate %q", smt.Name, smt.PredicateRef.Name)
	}
}

func validatePipeline(cat *catalog.Catalog, pipe *catalog.PipelineDecl, bag *diagnostics.Bag) {
	for _, step := range pipe.Steps {
		_, declared := catalog.Get[*catalog.SmtDecl](cat, catalog.KindSmt, step.SmtName)
		_, builtin := cat.BuiltinPreset(step.SmtName)
		if !declared && !builtin {
			bag.Addf(diagnostics.KindUnknownSmt, diagnostics.Span{}, step.SmtName,
				"pipeline %q references unknown SMT %q", pipe.Name, step.SmtName)
		}
	}
	if pipe.PipelinePredicate != "" {
		if _, ok := catalog.Get[*catalog.PredicateDecl](cat, catalog.KindPredicate, pipe.PipelinePredicate); !ok {
			bag.Addf(diagnostics.KindUnknownPredicate, diagnostics.Span{}, pipe.PipelinePredicate,
				"pipeline %q references unknown predicate %q", pipe.Name, pipe.PipelinePredicate)
		}
	}
}

// validatePresetChain walks smt.PresetRef, which may name either a
// built-in preset (a chain terminator) or another catalog SMT whose own
// PresetRef continues the chain. A name revisited during the walk is a
// PresetCycle.
func validatePresetChain(cat *catalog.Catalog, smt *catalog.SmtDecl, bag *diagnostics.Bag) {
	if smt.PresetRef == "" {
		return
	}
	visited := map[string]bool{smt.Name: true}
	chain := []string{smt.Name}
	current := smt.PresetRef

	for {
		if _, ok := cat.BuiltinPreset(current); ok {
			return
		}
		next, ok := catalog.Get[*catalog.SmtDecl](cat, catalog.KindSmt, current)
		if !ok {
			bag.Addf(diagnostics.KindUnknownSmt, diagnostics.Span{}, current,
				"SMT %q presets unknown SMT %q", smt.Name, current)
			return
		}
		if visited[current] {
			chain = append(chain, current)
			bag.Addf(diagnostics.KindPresetCycle, diagnostics.Span{}, smt.Name,
				"preset chain cycles back on itself: %s", strings.Join(chain, " -> "))
			return
		}
		visited[current] = true
		chain = append(chain, current)

		if next.PresetRef == "" {
			return
		}
		current = next.PresetRef
	}
}
