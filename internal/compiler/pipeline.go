package compiler

import (
	"fmt"
	"strings"

	"github.com/lewisthorpe1994/DataPipelineFoundry/internal/catalog"
	"github.com/lewisthorpe1994/DataPipelineFoundry/pkg/diagnostics"
)

// renderTransforms walks conn.Pipelines in declaration order and, within
// each, conn's pipeline steps in declaration order, emitting the
// transforms/predicates keys described in spec.md §4.5. A connector with
// no pipelines compiles with no transforms key at all (boundary case).
func renderTransforms(cat *catalog.Catalog, conn *catalog.KafkaConnector, props map[string]string, bag *diagnostics.Bag) {
	var aliases []string
	var predicateOrder []string
	seenPredicate := make(map[string]bool)

	for _, pipelineName := range conn.Pipelines {
		pipe, ok := catalog.Get[*catalog.PipelineDecl](cat, catalog.KindPipeline, pipelineName)
		if !ok {
			continue // already diagnosed by the resolver
		}
		if pipe.PipelinePredicate != "" {
			bag.Warnf(diagnostics.KindInvalidPredicate, diagnostics.Span{}, pipe.PipelinePredicate,
				"pipeline %q declares a pipeline-level predicate; per-step binding is not yet applied", pipe.Name)
		}

		for _, step := range pipe.Steps {
			alias := step.Alias
			if alias == "" {
				alias = pipe.Name + "_" + step.SmtName
			}
			aliases = append(aliases, alias)

			predName, bound := renderStep(cat, conn, pipe, step, alias, props)
			if bound && !seenPredicate[predName] {
				seenPredicate[predName] = true
				predicateOrder = append(predicateOrder, predName)
			}
		}
	}

	if len(aliases) > 0 {
		props["transforms"] = strings.Join(aliases, ",")
	}
	if len(predicateOrder) > 0 {
		renderPredicates(cat, predicateOrder, props, bag)
		props["predicates"] = strings.Join(predicateOrder, ",")
	}
}

// renderStep emits every transforms.<alias>.* key for one pipeline step
// and returns the predicate name bound to it, if any.
func renderStep(cat *catalog.Catalog, conn *catalog.KafkaConnector, pipe *catalog.PipelineDecl, step catalog.PipelineStep, alias string, props map[string]string) (string, bool) {
	smt, ok := catalog.Get[*catalog.SmtDecl](cat, catalog.KindSmt, step.SmtName)
	var effective map[string]string
	var predicateRef *catalog.PredicateRef

	if ok {
		effective = effectiveSmtConfig(cat, smt)
		predicateRef = smt.PredicateRef
	} else if builtin, isBuiltin := cat.BuiltinPreset(step.SmtName); isBuiltin {
		effective = make(map[string]string, len(builtin.Config))
		mergeInto(effective, builtin.Config)
	} else {
		effective = make(map[string]string)
	}

	mergeInto(effective, step.Overrides)

	if class, ok := effective["type"]; ok {
		props[fmt.Sprintf("transforms.%s.type", alias)] = class
		_ = isKnownTransformClass(class)
	}
	for k, v := range effective {
		props[fmt.Sprintf("transforms.%s.%s", alias, k)] = v
	}

	if predicateRef != nil {
		props[fmt.Sprintf("transforms.%s.predicate", alias)] = predicateRef.Name
		if predicateRef.Negate {
			props[fmt.Sprintf("transforms.%s.negate", alias)] = "true"
		}
		return predicateRef.Name, true
	}
	return "", false
}

func renderPredicates(cat *catalog.Catalog, names []string, props map[string]string, bag *diagnostics.Bag) {
	for _, name := range names {
		pred, ok := catalog.Get[*catalog.PredicateDecl](cat, catalog.KindPredicate, name)
		if !ok {
			continue // already diagnosed by the resolver
		}
		props[fmt.Sprintf("predicates.%s.type", name)] = string(pred.Kind)
		if pred.Pattern != "" {
			props[fmt.Sprintf("predicates.%s.pattern", name)] = pred.Pattern
		}
	}
}
