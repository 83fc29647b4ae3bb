package project

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lewisthorpe1994/DataPipelineFoundry/internal/catalog"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func fixtureProject(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	writeFile(t, filepath.Join(dir, "foundry-project.yml"), `
name: demo
version: "1"
compile_path: build
models:
  dir: models
  layers:
    bronze: bronze
    silver: silver
sources:
  warehouse:
    specifications: warehouse_specs
  kafka:
    specifications: kafka_clusters
    definitions: kafka_defs
connection_profile:
  profile: dev
  path: connections.yml
`)

	writeFile(t, filepath.Join(dir, "connections.yml"), `
dev:
  wh:
    adapter_type: postgres
    host: localhost
    port: 5432
    user: u
    password: p
    database: db
`)

	writeFile(t, filepath.Join(dir, "warehouse_specs", "db1.yml"), `
name: db1
schemas:
  raw:
    tables: [t]
`)

	writeFile(t, filepath.Join(dir, "kafka_clusters", "cluster1.yml"), `
name: cluster1
bootstrap.servers: localhost:9092
connect.host: localhost
connect.port: 8083
`)

	writeFile(t, filepath.Join(dir, "models", "bronze", "_a.sql"), `SELECT * FROM source('db1','t')`)
	writeFile(t, filepath.Join(dir, "models", "silver", "_b.sql"), `SELECT * FROM ref('bronze','a')`)
	writeFile(t, filepath.Join(dir, "models", "silver", "_b.yml"), `
name: b
materialization: table
`)

	writeFile(t, filepath.Join(dir, "kafka_defs", "conn1.sql"), `
CREATE KAFKA CONNECTOR KIND debezium pg source conn1
USING KAFKA CLUSTER 'cluster1' ()
WITH CONNECTOR VERSION '2.0'
FROM SOURCE DATABASE 'wh';
`)

	return dir
}

func TestLoadPopulatesModelsAndConnectors(t *testing.T) {
	t.Parallel()

	proj, bag := Load(fixtureProject(t))
	require.False(t, bag.Fatal(), "unexpected diagnostics: %v", bag.Items())
	require.NotNil(t, proj)

	a, ok := catalog.Get[*catalog.Model](proj.Catalog, catalog.KindModel, "bronze_a")
	require.True(t, ok)
	require.Contains(t, a.RawSQL, "source('db1','t')")
	require.Equal(t, catalog.MaterializationView, a.Materialization)

	b, ok := catalog.Get[*catalog.Model](proj.Catalog, catalog.KindModel, "silver_b")
	require.True(t, ok)
	require.Equal(t, catalog.MaterializationTable, b.Materialization, "sidecar materialization override")

	conn, ok := catalog.Get[*catalog.KafkaConnector](proj.Catalog, catalog.KindConnector, "conn1")
	require.True(t, ok)
	require.Equal(t, catalog.ConnectorDebeziumPgSource, conn.Kind)
	require.Equal(t, "cluster1", conn.ClusterName)
	require.Equal(t, "wh", conn.ConnectionName)

	_, ok = proj.Catalog.KafkaCluster("cluster1")
	require.True(t, ok)

	_, ok = proj.Catalog.Connection("wh")
	require.True(t, ok)
}

func TestLoadMissingProjectFileIsFatal(t *testing.T) {
	t.Parallel()

	_, bag := Load(t.TempDir())
	require.True(t, bag.Fatal())
}
