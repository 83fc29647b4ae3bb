package ast

import (
	"fmt"
	"strings"
)

// Print renders a Statement back to source text in the canonical form the
// parser accepts. Used by the round-trip test property (P7: parsing a
// pretty-printed statement yields an AST equal to the original). Only the
// four Kafka DDL forms are printed; any other Statement yields "".
func Print(stmt Statement) string {
	switch s := stmt.(type) {
	case *ConnectorStmt:
		return printConnector(s)
	case *SmtStmt:
		return printSmt(s)
	case *PipelineStmt:
		return printPipeline(s)
	case *PredicateStmt:
		return printPredicate(s)
	default:
		return ""
	}
}

func printIfNotExists(b *strings.Builder, ifNotExists bool) {
	if ifNotExists {
		b.WriteString("IF NOT EXISTS ")
	}
}

func printKVList(kvs []KV) string {
	parts := make([]string, len(kvs))
	for i, kv := range kvs {
		parts[i] = fmt.Sprintf("%s=%s", kv.Key, quoteIfNeeded(kv.Value))
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// quoteIfNeeded mirrors the parser's acceptance of bare identifiers as
// config values; any value that would not re-tokenize as one identifier
// is emitted as a quoted string literal instead.
func quoteIfNeeded(v string) string {
	if v == "" {
		return "''"
	}
	for i, r := range v {
		isLetter := r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
		isDigit := r >= '0' && r <= '9'
		if !(isLetter || (i > 0 && isDigit)) {
			return "'" + strings.ReplaceAll(v, "'", "''") + "'"
		}
	}
	return v
}

func printConnector(s *ConnectorStmt) string {
	var b strings.Builder
	b.WriteString("CREATE KAFKA CONNECTOR ")
	printIfNotExists(&b, s.IfNotExists)
	fmt.Fprintf(&b, "KIND %s %s %s %s ", s.Vendor, s.Engine, s.Direction, s.Name)
	fmt.Fprintf(&b, "USING KAFKA CLUSTER '%s' %s ", s.ClusterName, printKVList(s.Properties))
	fmt.Fprintf(&b, "WITH CONNECTOR VERSION '%s'", s.Version)
	if len(s.Pipelines) > 0 {
		fmt.Fprintf(&b, " AND PIPELINES(%s)", strings.Join(s.Pipelines, ", "))
	}
	switch s.Direction {
	case DirectionSource:
		fmt.Fprintf(&b, " FROM SOURCE DATABASE '%s'", s.ConnectionName)
	case DirectionSink:
		fmt.Fprintf(&b, " INTO WAREHOUSE DATABASE '%s' USING SCHEMA '%s'", s.ConnectionName, s.TargetSchema)
	}
	b.WriteString(";")
	return b.String()
}

func printSmt(s *SmtStmt) string {
	var b strings.Builder
	b.WriteString("CREATE KAFKA SIMPLE MESSAGE TRANSFORM ")
	printIfNotExists(&b, s.IfNotExists)
	b.WriteString(s.Name)
	if len(s.Config) > 0 {
		b.WriteString(" ")
		b.WriteString(printKVList(s.Config))
	}
	if s.PresetRef != "" {
		fmt.Fprintf(&b, " PRESET %s", s.PresetRef)
	}
	if len(s.Extend) > 0 {
		fmt.Fprintf(&b, " EXTEND %s", printKVList(s.Extend))
	}
	if s.Predicate != nil {
		fmt.Fprintf(&b, " WITH PREDICATE '%s'", s.Predicate.Name)
		if s.Predicate.Negate {
			b.WriteString(" NEGATE")
		}
	}
	b.WriteString(";")
	return b.String()
}

func printPipeline(s *PipelineStmt) string {
	var b strings.Builder
	b.WriteString("CREATE KAFKA SIMPLE MESSAGE TRANSFORM PIPELINE ")
	printIfNotExists(&b, s.IfNotExists)
	b.WriteString(s.Name)
	b.WriteString(" (")
	parts := make([]string, len(s.Steps))
	for i, step := range s.Steps {
		var sb strings.Builder
		sb.WriteString(step.SmtName)
		if len(step.Overrides) > 0 {
			sb.WriteString(printKVList(step.Overrides))
		}
		if step.Alias != "" {
			fmt.Fprintf(&sb, " AS %s", step.Alias)
		}
		parts[i] = sb.String()
	}
	b.WriteString(strings.Join(parts, ", "))
	b.WriteString(")")
	if s.PipelinePredicate != "" {
		fmt.Fprintf(&b, " WITH PIPELINE PREDICATE '%s'", s.PipelinePredicate)
	}
	b.WriteString(";")
	return b.String()
}

func printPredicate(s *PredicateStmt) string {
	var b strings.Builder
	b.WriteString("CREATE KAFKA SIMPLE MESSAGE TRANSFORM PREDICATE ")
	printIfNotExists(&b, s.IfNotExists)
	b.WriteString(s.Name)
	if s.Pattern != "" {
		fmt.Fprintf(&b, " USING PATTERN '%s'", s.Pattern)
	}
	fmt.Fprintf(&b, " FROM KIND %s", s.Kind)
	b.WriteString(";")
	return b.String()
}
