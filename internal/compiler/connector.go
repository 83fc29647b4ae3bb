package compiler

import (
	"fmt"
	"sort"
	"strings"

	"github.com/lewisthorpe1994/DataPipelineFoundry/internal/catalog"
	"github.com/lewisthorpe1994/DataPipelineFoundry/pkg/diagnostics"
)

// connectorClasses maps a declared connector kind to its Kafka Connect
// class name.
var connectorClasses = map[catalog.ConnectorKind]string{
	catalog.ConnectorDebeziumPgSource:  "io.debezium.connector.postgresql.PostgresConnector",
	catalog.ConnectorDebeziumPgSink:    "io.debezium.connector.jdbc.JdbcSinkConnector",
	catalog.ConnectorConfluentPgSource: "io.confluent.connect.jdbc.JdbcSourceConnector",
	catalog.ConnectorConfluentPgSink:   "io.confluent.connect.jdbc.JdbcSinkConnector",
}

func isSinkKind(kind catalog.ConnectorKind) bool {
	return strings.HasSuffix(string(kind), "sink")
}

// RenderConnector produces the flat Kafka Connect configuration map for a
// connector, per spec.md §4.5. Diagnostics collected along the way
// (connection-key overrides, pipeline-level predicate usage) are
// warnings; they never prevent the map from being returned.
func RenderConnector(cat *catalog.Catalog, conn *catalog.KafkaConnector) (map[string]string, *diagnostics.Bag) {
	bag := &diagnostics.Bag{}
	props := make(map[string]string, len(conn.Properties))
	for k, v := range conn.Properties {
		props[k] = v
	}

	props["connector.class"] = connectorClasses[conn.Kind]
	injectIfAbsent(props, "tasks.max", "1", bag, conn.Name)

	injectConnectionMetadata(cat, conn, props, bag)
	injectClusterMetadata(cat, conn, props, bag)

	if isSinkKind(conn.Kind) {
		injectIfAbsent(props, "table.name.format", sinkTableNameFormat(conn), bag, conn.Name)
		if conn.SchemaInclude != nil {
			props["field.include.list"] = sinkFieldIncludeList(conn.SchemaInclude)
		}
	} else {
		if conn.SchemaInclude != nil {
			props["table.include.list"] = sourceTableIncludeList(conn.SchemaInclude)
			props["column.include.list"] = sourceColumnIncludeList(conn.SchemaInclude)
		}
	}

	renderTransforms(cat, conn, props, bag)

	return props, bag
}

func injectIfAbsent(props map[string]string, key, value string, bag *diagnostics.Bag, connectorName string) {
	if _, exists := props[key]; exists {
		return
	}
	props[key] = value
}

func injectConnectionMetadata(cat *catalog.Catalog, conn *catalog.KafkaConnector, props map[string]string, bag *diagnostics.Bag) {
	if conn.ConnectionName == "" {
		return
	}
	spec, ok := cat.Connection(conn.ConnectionName)
	if !ok {
		return // already diagnosed by the resolver as UnknownConnection
	}

	if isSinkKind(conn.Kind) {
		url := fmt.Sprintf("jdbc:postgresql://%s:%d/%s", spec.Host, spec.Port, spec.Database)
		injectWithWarning(props, "connection.url", url, bag, conn.Name)
		injectWithWarning(props, "connection.user", spec.User, bag, conn.Name)
		injectWithWarning(props, "connection.password", spec.Password, bag, conn.Name)
		return
	}

	injectWithWarning(props, "database.hostname", spec.Host, bag, conn.Name)
	injectWithWarning(props, "database.port", fmt.Sprintf("%d", spec.Port), bag, conn.Name)
	injectWithWarning(props, "database.user", spec.User, bag, conn.Name)
	injectWithWarning(props, "database.password", spec.Password, bag, conn.Name)
	injectWithWarning(props, "database.dbname", spec.Database, bag, conn.Name)
}

// injectWithWarning implements the design note in spec.md §9: connection
// metadata never silently overwrites a user-declared key; an attempted
// override is surfaced as a warning instead.
func injectWithWarning(props map[string]string, key, value string, bag *diagnostics.Bag, connectorName string) {
	if _, exists := props[key]; exists {
		bag.Warnf(diagnostics.KindDuplicateDecl, diagnostics.Span{}, key,
			"connector %q already declares %q; connection metadata for it was not injected", connectorName, key)
		return
	}
	props[key] = value
}

func injectClusterMetadata(cat *catalog.Catalog, conn *catalog.KafkaConnector, props map[string]string, bag *diagnostics.Bag) {
	if cluster, ok := cat.KafkaCluster(conn.ClusterName); ok {
		injectIfAbsent(props, "bootstrap.servers", cluster.BootstrapServers, bag, conn.Name)
	}
	injectIfAbsent(props, "topic.prefix", conn.Name, bag, conn.Name)
}

// sinkTableNameFormat derives `<target_schema>.<table>` when the sink's
// schema include-list names exactly one table; with zero or several
// tables there's no single name to pick, so it falls back to the runtime
// topic placeholder Kafka Connect's JDBC sink understands natively.
func sinkTableNameFormat(conn *catalog.KafkaConnector) string {
	table := "${topic}"
	if conn.SchemaInclude != nil {
		if only, ok := singleTable(conn.SchemaInclude); ok {
			table = only
		}
	}
	return fmt.Sprintf("%s.%s", conn.TargetSchema, table)
}

func singleTable(schema *catalog.ConnectorSchema) (string, bool) {
	var table string
	count := 0
	for _, entry := range schema.Schemas {
		for name := range entry.Tables {
			table = name
			count++
		}
	}
	if count == 1 {
		return table, true
	}
	return "", false
}

func sourceTableIncludeList(schema *catalog.ConnectorSchema) string {
	var out []string
	for schemaName, entry := range schema.Schemas {
		for tableName := range entry.Tables {
			out = append(out, fmt.Sprintf("%s.%s", schemaName, tableName))
		}
	}
	sort.Strings(out)
	return strings.Join(out, ",")
}

func sourceColumnIncludeList(schema *catalog.ConnectorSchema) string {
	var out []string
	for schemaName, entry := range schema.Schemas {
		for tableName, table := range entry.Tables {
			for _, col := range table.Columns {
				out = append(out, fmt.Sprintf("%s.%s.%s", schemaName, tableName, col))
			}
		}
	}
	sort.Strings(out)
	return strings.Join(out, ",")
}

func sinkFieldIncludeList(schema *catalog.ConnectorSchema) string {
	seen := make(map[string]bool)
	var out []string
	for _, entry := range schema.Schemas {
		for _, table := range entry.Tables {
			for _, col := range table.Columns {
				if !seen[col] {
					seen[col] = true
					out = append(out, col)
				}
			}
		}
	}
	sort.Strings(out)
	return strings.Join(out, ",")
}
