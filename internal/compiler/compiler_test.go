package compiler

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/lewisthorpe1994/DataPipelineFoundry/internal/catalog"
	"github.com/lewisthorpe1994/DataPipelineFoundry/internal/dag"
	"github.com/lewisthorpe1994/DataPipelineFoundry/internal/resolver"
	"github.com/stretchr/testify/require"
)

func TestRenderModelReturnsCompiledSQL(t *testing.T) {
	t.Parallel()

	m := &catalog.Model{CompiledSQL: "select 1"}
	require.Equal(t, "select 1", RenderModel(m))
}

func sourceConnector() (*catalog.Catalog, *catalog.KafkaConnector) {
	cat := catalog.New()
	cat.AddKafkaCluster(&catalog.KafkaCluster{Name: "main", BootstrapServers: "kafka:9092"})
	cat.SetConnectionProfile(&catalog.ConnectionProfile{
		Connections: map[string]catalog.ConnectionSpec{
			"pg": {Host: "db.internal", Port: 5432, User: "svc", Password: "secret", Database: "orders"},
		},
	})
	conn := &catalog.KafkaConnector{
		Name: "orders_src", Kind: catalog.ConnectorDebeziumPgSource,
		ClusterName: "main", ConnectionName: "pg", Properties: map[string]string{},
	}
	return cat, conn
}

func TestRenderConnectorInjectsConnectionAndClusterMetadata(t *testing.T) {
	t.Parallel()

	cat, conn := sourceConnector()
	props, bag := RenderConnector(cat, conn)
	require.Empty(t, bag.Items())

	require.Equal(t, "io.debezium.connector.postgresql.PostgresConnector", props["connector.class"])
	require.Equal(t, "1", props["tasks.max"])
	require.Equal(t, "db.internal", props["database.hostname"])
	require.Equal(t, "orders", props["database.dbname"])
	require.Equal(t, "kafka:9092", props["bootstrap.servers"])
	require.Equal(t, "orders_src", props["topic.prefix"])
}

func TestRenderConnectorDoesNotOverwriteUserKeyAndWarns(t *testing.T) {
	t.Parallel()

	cat, conn := sourceConnector()
	conn.Properties["database.hostname"] = "custom-host"

	props, bag := RenderConnector(cat, conn)
	require.Equal(t, "custom-host", props["database.hostname"])
	require.NotEmpty(t, bag.Warnings())
}

func TestRenderConnectorEmptyPipelinesHaveNoTransformsKey(t *testing.T) {
	t.Parallel()

	cat, conn := sourceConnector()
	props, _ := RenderConnector(cat, conn)
	_, hasTransforms := props["transforms"]
	require.False(t, hasTransforms)
}

func TestRenderConnectorPipelineAliasAndPredicate(t *testing.T) {
	t.Parallel()

	cat, conn := sourceConnector()

	require.Nil(t, cat.Insert(catalog.KindPredicate, "p", &catalog.PredicateDecl{
		Name: "p", Kind: catalog.PredicateTopicNameMatches, Pattern: "^postgres-.+$",
	}))
	require.Nil(t, cat.Insert(catalog.KindSmt, "unwrap", &catalog.SmtDecl{
		Name: "unwrap", PresetRef: "debezium.unwrap_default",
	}))
	require.Nil(t, cat.Insert(catalog.KindSmt, "route", &catalog.SmtDecl{
		Name: "route",
		Config: map[string]string{
			"type":             "io.debezium.transforms.ByLogicalTableRouter",
			"topic.regex":      "postgres-(.*)",
			"topic.replacement": "$1",
		},
		PredicateRef: &catalog.PredicateRef{Name: "p", Negate: true},
	}))
	require.Nil(t, cat.Insert(catalog.KindPipeline, "pipe", &catalog.PipelineDecl{
		Name: "pipe",
		Steps: []catalog.PipelineStep{
			{SmtName: "unwrap"},
			{SmtName: "route", Alias: "r"},
		},
	}))
	conn.Pipelines = []string{"pipe"}

	props, _ := RenderConnector(cat, conn)

	require.Equal(t, "pipe_unwrap,r", props["transforms"])
	require.Equal(t, "io.debezium.transforms.ByLogicalTableRouter", props["transforms.r.type"])
	require.Equal(t, "postgres-(.*)", props["transforms.r.topic.regex"])
	require.Equal(t, "p", props["transforms.r.predicate"])
	require.Equal(t, "true", props["transforms.r.negate"])
	require.Equal(t, "p", props["predicates"])
	require.Equal(t, string(catalog.PredicateTopicNameMatches), props["predicates.p.type"])
	require.Equal(t, "^postgres-.+$", props["predicates.p.pattern"])
}

func TestRenderConnectorSinkIncludeListAndTableNameFormat(t *testing.T) {
	t.Parallel()

	cat := catalog.New()
	cat.AddKafkaCluster(&catalog.KafkaCluster{Name: "main", BootstrapServers: "kafka:9092"})
	cat.SetConnectionProfile(&catalog.ConnectionProfile{
		Connections: map[string]catalog.ConnectionSpec{
			"wh": {Host: "wh.internal", Port: 5432, User: "svc", Password: "secret", Database: "analytics"},
		},
	})
	conn := &catalog.KafkaConnector{
		Name: "orders_sink", Kind: catalog.ConnectorDebeziumPgSink,
		ClusterName: "main", ConnectionName: "wh", TargetSchema: "public",
		Properties: map[string]string{},
		SchemaInclude: &catalog.ConnectorSchema{
			Schemas: map[string]catalog.ConnectorSchemaEntry{
				"public": {Tables: map[string]catalog.ConnectorTableEntry{
					"orders": {Columns: []string{"id", "total"}},
				}},
			},
		},
	}

	props, _ := RenderConnector(cat, conn)
	require.Equal(t, "id,total", props["field.include.list"])
	require.Equal(t, "public.orders", props["table.name.format"])
	require.Equal(t, "jdbc:postgresql://wh.internal:5432/analytics", props["connection.url"])
}

func TestManifestBuildIsAtomicAndStable(t *testing.T) {
	t.Parallel()

	cat := catalog.New()
	require.Nil(t, cat.Insert(catalog.KindModel, "bronze_a", &catalog.Model{Layer: "bronze", Name: "a", RawSQL: "select 1"}))
	require.Nil(t, cat.Insert(catalog.KindModel, "silver_b", &catalog.Model{Layer: "silver", Name: "b", RawSQL: "select * from ref('bronze','a')"}))

	result, bag := resolver.Resolve(cat)
	require.Nil(t, bag.Err())

	g, bag2 := dag.Build(cat, result.Edges)
	require.Nil(t, bag2.Err())

	m1, bag3 := Build(cat, g)
	require.Empty(t, bag3.Items())
	m2, _ := Build(cat, g)

	require.Equal(t, m1.Digest, m2.Digest)
	require.Len(t, m1.Nodes, 2)

	encoded, err := json.Marshal(m1)
	require.NoError(t, err)
	require.True(t, strings.Contains(string(encoded), `"bronze_a"`))
}
