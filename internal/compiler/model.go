// Package compiler renders resolved catalog entries into the concrete
// artifacts a manifest carries: model SQL strings and Kafka Connect
// configuration maps (spec.md §4.5).
package compiler

import "github.com/lewisthorpe1994/DataPipelineFoundry/internal/catalog"

// RenderModel returns a model's compiled artifact. The resolver already
// performed macro substitution into CompiledSQL; the compiler carries it
// through unchanged.
func RenderModel(m *catalog.Model) string {
	return m.CompiledSQL
}
