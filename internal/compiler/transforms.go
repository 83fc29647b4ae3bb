package compiler

import (
	"strings"

	"github.com/lewisthorpe1994/DataPipelineFoundry/internal/catalog"
)

// recognizedTransformClasses are the Debezium SMT classes the compiler
// knows by name (spec.md §4.5, "Known transform classes"). Recognition
// is presentational only: the effective config for both known and
// unknown classes is emitted identically as flat transforms.<alias>.<k>
// keys, since the Kafka Connect REST surface has no separate typed
// encoding.
var recognizedTransformClasses = map[string]bool{
	"io.debezium.transforms.ExtractNewRecordState":            true,
	"io.debezium.transforms.ByLogicalTableRouter":              true,
	"io.debezium.transforms.outbox.EventRouter":                true,
	"io.debezium.transforms.partitions.PartitionRouting":       true,
	"io.debezium.transforms.TimezoneConverter":                 true,
	"io.debezium.transforms.ContentBasedRouter":                 true,
	"io.debezium.transforms.HeaderToValue":                      true,
	"io.debezium.transforms.DecodeLogicalDecodingMessageContent": true,
	"org.apache.kafka.connect.transforms.Filter":                true,
}

func isKnownTransformClass(class string) bool {
	return recognizedTransformClasses[strings.TrimSpace(class)]
}

// effectiveSmtConfig resolves a single SMT's effective configuration per
// spec.md §4.5: builtin/catalog preset chain, base to specific, then the
// SMT's own inline config, then its EXTEND block. The resolver has
// already rejected cyclic chains, but the walk still guards against
// revisits defensively rather than looping forever.
func effectiveSmtConfig(cat *catalog.Catalog, smt *catalog.SmtDecl) map[string]string {
	var chain []map[string]string
	visited := map[string]bool{smt.Name: true}
	current := smt.PresetRef

	for current != "" {
		if builtin, ok := cat.BuiltinPreset(current); ok {
			chain = append(chain, builtin.Config)
			break
		}
		next, ok := catalog.Get[*catalog.SmtDecl](cat, catalog.KindSmt, current)
		if !ok || visited[current] {
			break
		}
		visited[current] = true
		chain = append(chain, next.Config)
		current = next.PresetRef
	}

	merged := make(map[string]string)
	for i := len(chain) - 1; i >= 0; i-- {
		mergeInto(merged, chain[i])
	}
	mergeInto(merged, smt.Config)
	mergeInto(merged, smt.Extend)
	return merged
}

func mergeInto(dst, src map[string]string) {
	for k, v := range src {
		dst[k] = v
	}
}
