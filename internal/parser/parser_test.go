package parser

import (
	"testing"

	"github.com/lewisthorpe1994/DataPipelineFoundry/internal/ast"
	"github.com/stretchr/testify/require"
)

func TestParseConnectorSource(t *testing.T) {
	t.Parallel()

	src := `CREATE KAFKA CONNECTOR KIND debezium pg source orders_src
USING KAFKA CLUSTER 'main' (slot.name=orders_slot, plugin.name=pgoutput)
WITH CONNECTOR VERSION '2.4' AND PIPELINES(pipe)
FROM SOURCE DATABASE 'pg_main';`

	stmt, diag := ParseKafkaStatement("connectors/orders.sql", src)
	require.Nil(t, diag)

	conn, ok := stmt.(*ast.ConnectorStmt)
	require.True(t, ok)
	require.Equal(t, "orders_src", conn.Name)
	require.Equal(t, "debezium", conn.Vendor)
	require.Equal(t, "pg", conn.Engine)
	require.Equal(t, ast.DirectionSource, conn.Direction)
	require.Equal(t, "main", conn.ClusterName)
	require.Equal(t, "2.4", conn.Version)
	require.Equal(t, []string{"pipe"}, conn.Pipelines)
	require.Equal(t, "pg_main", conn.ConnectionName)
	require.Equal(t, []ast.KV{{Key: "slot.name", Value: "orders_slot"}, {Key: "plugin.name", Value: "pgoutput"}}, conn.Properties)
}

func TestParseConnectorSink(t *testing.T) {
	t.Parallel()

	src := `CREATE KAFKA CONNECTOR IF NOT EXISTS KIND confluent pg sink orders_sink
USING KAFKA CLUSTER 'main' ()
WITH CONNECTOR VERSION '1.0'
INTO WAREHOUSE DATABASE 'wh_main' USING SCHEMA 'public';`

	stmt, diag := ParseKafkaStatement("connectors/orders_sink.sql", src)
	require.Nil(t, diag)

	conn, ok := stmt.(*ast.ConnectorStmt)
	require.True(t, ok)
	require.True(t, conn.IfNotExists)
	require.Equal(t, ast.DirectionSink, conn.Direction)
	require.Equal(t, "wh_main", conn.ConnectionName)
	require.Equal(t, "public", conn.TargetSchema)
	require.Empty(t, conn.Properties)
}

func TestParseSmtWithPresetExtendAndPredicate(t *testing.T) {
	t.Parallel()

	src := `CREATE KAFKA SIMPLE MESSAGE TRANSFORM route (topic.regex='postgres-(.*)', topic.replacement='$1')
PRESET debezium.by_logical_table_router
EXTEND (drop.tombstones=false)
WITH PREDICATE 'p' NEGATE;`

	stmt, diag := ParseKafkaStatement("smts/route.sql", src)
	require.Nil(t, diag)

	smt, ok := stmt.(*ast.SmtStmt)
	require.True(t, ok)
	require.Equal(t, "route", smt.Name)
	require.Equal(t, "debezium.by_logical_table_router", smt.PresetRef)
	require.Equal(t, []ast.KV{{Key: "drop.tombstones", Value: "false"}}, smt.Extend)
	require.NotNil(t, smt.Predicate)
	require.Equal(t, "p", smt.Predicate.Name)
	require.True(t, smt.Predicate.Negate)
}

func TestParsePipelineWithAliasAndOverrides(t *testing.T) {
	t.Parallel()

	src := `CREATE KAFKA SIMPLE MESSAGE TRANSFORM PIPELINE pipe (
  unwrap,
  route(topic.replacement='$2') AS r
) WITH PIPELINE PREDICATE 'gate';`

	stmt, diag := ParseKafkaStatement("pipelines/pipe.sql", src)
	require.Nil(t, diag)

	pipe, ok := stmt.(*ast.PipelineStmt)
	require.True(t, ok)
	require.Equal(t, "pipe", pipe.Name)
	require.Len(t, pipe.Steps, 2)
	require.Equal(t, "unwrap", pipe.Steps[0].SmtName)
	require.Empty(t, pipe.Steps[0].Alias)
	require.Equal(t, "route", pipe.Steps[1].SmtName)
	require.Equal(t, "r", pipe.Steps[1].Alias)
	require.Equal(t, []ast.KV{{Key: "topic.replacement", Value: "$2"}}, pipe.Steps[1].Overrides)
	require.Equal(t, "gate", pipe.PipelinePredicate)
}

func TestParsePredicateTopicNameMatches(t *testing.T) {
	t.Parallel()

	src := `CREATE KAFKA SIMPLE MESSAGE TRANSFORM PREDICATE p USING PATTERN '^postgres-.+$' FROM KIND TopicNameMatches;`

	stmt, diag := ParseKafkaStatement("predicates/p.sql", src)
	require.Nil(t, diag)

	pred, ok := stmt.(*ast.PredicateStmt)
	require.True(t, ok)
	require.Equal(t, "p", pred.Name)
	require.Equal(t, "^postgres-.+$", pred.Pattern)
	require.Equal(t, "TopicNameMatches", pred.Kind)
}

func TestParsePredicateWithoutPattern(t *testing.T) {
	t.Parallel()

	src := `CREATE KAFKA SIMPLE MESSAGE TRANSFORM PREDICATE tombstone FROM KIND RecordIsTombstone;`
	stmt, diag := ParseKafkaStatement("predicates/tombstone.sql", src)
	require.Nil(t, diag)
	pred := stmt.(*ast.PredicateStmt)
	require.Empty(t, pred.Pattern)
}

func TestParseRejectsMalformedStatement(t *testing.T) {
	t.Parallel()

	_, diag := ParseKafkaStatement("bad.sql", `CREATE KAFKA BOGUS x;`)
	require.NotNil(t, diag)
}

func TestRoundTripPrintAndReparse(t *testing.T) {
	t.Parallel()

	sources := []string{
		`CREATE KAFKA CONNECTOR KIND debezium pg source orders_src USING KAFKA CLUSTER 'main' (slot.name=orders_slot) WITH CONNECTOR VERSION '2.4' AND PIPELINES(pipe) FROM SOURCE DATABASE 'pg_main';`,
		`CREATE KAFKA SIMPLE MESSAGE TRANSFORM unwrap PRESET debezium.unwrap_default;`,
		`CREATE KAFKA SIMPLE MESSAGE TRANSFORM PIPELINE pipe (unwrap, route AS r) WITH PIPELINE PREDICATE 'gate';`,
		`CREATE KAFKA SIMPLE MESSAGE TRANSFORM PREDICATE p USING PATTERN '^postgres-.+$' FROM KIND TopicNameMatches;`,
	}

	for _, src := range sources {
		stmt, diag := ParseKafkaStatement("rt.sql", src)
		require.Nil(t, diag)

		printed := ast.Print(stmt)
		reparsed, diag2 := ParseKafkaStatement("rt.sql", printed)
		require.Nil(t, diag2)

		zeroSpans(stmt)
		zeroSpans(reparsed)
		require.Equal(t, stmt, reparsed)
	}
}

func zeroSpans(stmt ast.Statement) {
	switch s := stmt.(type) {
	case *ast.ConnectorStmt:
		s.Span = ast.Span{}
	case *ast.SmtStmt:
		s.Span = ast.Span{}
	case *ast.PipelineStmt:
		s.Span = ast.Span{}
	case *ast.PredicateStmt:
		s.Span = ast.Span{}
	}
}
