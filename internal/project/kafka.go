package project

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/lewisthorpe1994/DataPipelineFoundry/internal/ast"
	"github.com/lewisthorpe1994/DataPipelineFoundry/internal/catalog"
	"github.com/lewisthorpe1994/DataPipelineFoundry/internal/config"
	"github.com/lewisthorpe1994/DataPipelineFoundry/pkg/diagnostics"
)

// insertKafkaStatement converts one parsed Kafka DDL statement into its
// catalog declaration.
func insertKafkaStatement(path string, stmt ast.Statement, cat *catalog.Catalog, bag *diagnostics.Bag) {
	switch s := stmt.(type) {
	case *ast.ConnectorStmt:
		insertConnector(path, s, cat, bag)
	case *ast.SmtStmt:
		insertSmt(path, s, cat, bag)
	case *ast.PipelineStmt:
		insertPipeline(path, s, cat, bag)
	case *ast.PredicateStmt:
		insertPredicate(path, s, cat, bag)
	}
}

// insertConnector builds a catalog.KafkaConnector from the DDL plus an
// optional sibling include-list YAML (same file stem, `.yml`). The
// connector's catalog name is the sibling YAML's declared name when
// present, else the DDL's own identifier (spec.md §6 node-naming
// convention falls back to "the SQL stem", which for connector DDL is
// the name carried on the statement itself since this grammar has no
// anonymous connector form).
func insertConnector(path string, s *ast.ConnectorStmt, cat *catalog.Catalog, bag *diagnostics.Bag) {
	kind, ok := mapConnectorKind(s.Vendor, s.Engine, s.Direction)
	if !ok {
		bag.Addf(diagnostics.KindParseError, s.Span, s.Name,
			"connector %q declares unsupported kind %s/%s/%s", s.Name, s.Vendor, s.Engine, s.Direction)
		return
	}

	conn := &catalog.KafkaConnector{
		Name:           s.Name,
		Kind:           kind,
		ClusterName:    s.ClusterName,
		ConnectionName: s.ConnectionName,
		Version:        s.Version,
		Properties:     kvToMap(s.Properties),
		Pipelines:      append([]string(nil), s.Pipelines...),
		TargetSchema:   s.TargetSchema,
		SourceFile:     path,
	}

	siblingPath := strings.TrimSuffix(path, filepath.Ext(path)) + ".yml"
	if schema, schemaErr := config.LoadConnectorSchema(siblingPath); schemaErr == nil {
		if schema.Name != "" {
			conn.Name = schema.Name
		}
		conn.SchemaInclude = config.ToCatalogConnectorSchema(schema)
		conn.DagExecutable = schema.DagExecutable
	}

	if diag := cat.Insert(catalog.KindConnector, conn.Name, conn); diag != nil {
		bag.Add(diag)
	}
}

// mapConnectorKind maps a connector's (vendor, engine, direction) triple
// onto the fixed ConnectorKind enum spec.md §3 declares.
func mapConnectorKind(vendor, engine string, direction ast.ConnectorDirection) (catalog.ConnectorKind, bool) {
	kind := catalog.ConnectorKind(fmt.Sprintf("%s_%s_%s", vendor, engine, direction))
	switch kind {
	case catalog.ConnectorDebeziumPgSource, catalog.ConnectorDebeziumPgSink,
		catalog.ConnectorConfluentPgSource, catalog.ConnectorConfluentPgSink:
		return kind, true
	default:
		return "", false
	}
}

func insertSmt(path string, s *ast.SmtStmt, cat *catalog.Catalog, bag *diagnostics.Bag) {
	smt := &catalog.SmtDecl{
		Name:       s.Name,
		PresetRef:  s.PresetRef,
		Config:     kvToMap(s.Config),
		Extend:     kvToMap(s.Extend),
		SourceFile: path,
	}
	if s.Predicate != nil {
		smt.PredicateRef = &catalog.PredicateRef{Name: s.Predicate.Name, Negate: s.Predicate.Negate}
	}
	if diag := cat.Insert(catalog.KindSmt, smt.Name, smt); diag != nil {
		bag.Add(diag)
	}
}

func insertPipeline(path string, s *ast.PipelineStmt, cat *catalog.Catalog, bag *diagnostics.Bag) {
	pipe := &catalog.PipelineDecl{
		Name:              s.Name,
		PipelinePredicate: s.PipelinePredicate,
		SourceFile:        path,
	}
	for _, step := range s.Steps {
		pipe.Steps = append(pipe.Steps, catalog.PipelineStep{
			SmtName:   step.SmtName,
			Overrides: kvToMap(step.Overrides),
			Alias:     step.Alias,
		})
	}
	if diag := cat.Insert(catalog.KindPipeline, pipe.Name, pipe); diag != nil {
		bag.Add(diag)
	}
}

func insertPredicate(path string, s *ast.PredicateStmt, cat *catalog.Catalog, bag *diagnostics.Bag) {
	pred := &catalog.PredicateDecl{
		Name:       s.Name,
		Kind:       catalog.PredicateKind(s.Kind),
		Pattern:    s.Pattern,
		SourceFile: path,
	}
	if diag := cat.Insert(catalog.KindPredicate, pred.Name, pred); diag != nil {
		bag.Add(diag)
	}
}

func kvToMap(kvs []ast.KV) map[string]string {
	if len(kvs) == 0 {
		return nil
	}
	out := make(map[string]string, len(kvs))
	for _, kv := range kvs {
		out[kv.Key] = kv.Value
	}
	return out
}
