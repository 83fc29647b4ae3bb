package config

import (
	"sort"

	"github.com/lewisthorpe1994/DataPipelineFoundry/internal/catalog"
)

// ToCatalogExternalDBSpec converts a decoded warehouse/source-db YAML
// spec into the catalog's representation. Schema declaration order is
// not recoverable from a YAML map, so schemas are ordered alphabetically.
// For a spec loaded this way, AmbiguousSource tie-breaking therefore picks
// the alphabetically first schema that declares the table, not the first
// one written in the file.
func ToCatalogExternalDBSpec(spec *ExternalDBSpec) *catalog.ExternalDBSpec {
	names := make([]string, 0, len(spec.Schemas))
	for name := range spec.Schemas {
		names = append(names, name)
	}
	sort.Strings(names)

	out := &catalog.ExternalDBSpec{Name: spec.Name}
	for _, name := range names {
		tables := append([]string(nil), spec.Schemas[name].Tables...)
		out.Schemas = append(out.Schemas, catalog.SchemaEntry{Name: name, Tables: tables})
	}
	return out
}

// ToCatalogKafkaCluster converts a decoded Kafka cluster spec.
func ToCatalogKafkaCluster(spec *KafkaClusterSpec) *catalog.KafkaCluster {
	return &catalog.KafkaCluster{
		Name:             spec.Name,
		BootstrapServers: spec.BootstrapServers,
		ConnectHost:      spec.ConnectHost,
		ConnectPort:      spec.ConnectPort,
	}
}

// ToCatalogAPISource converts a decoded API source spec.
func ToCatalogAPISource(spec *APISourceSpec) *catalog.APISourceSpec {
	return &catalog.APISourceSpec{Name: spec.Name, BaseURL: spec.BaseURL}
}

// ToCatalogConnectionProfile flattens one profile's connections into the
// catalog's representation.
func ToCatalogConnectionProfile(profile string, cf ConnectionsFile) *catalog.ConnectionProfile {
	conns := cf[profile]
	out := &catalog.ConnectionProfile{Profile: profile, Connections: make(map[string]catalog.ConnectionSpec, len(conns))}
	for name, spec := range conns {
		out.Connections[name] = catalog.ConnectionSpec{
			AdapterType: spec.AdapterType,
			Host:        spec.Host,
			Port:        spec.Port,
			User:        spec.User,
			Password:    spec.Password,
			Database:    spec.Database,
		}
	}
	return out
}

// ToCatalogConnectorSchema converts a connector's sibling include-list
// YAML into the catalog's representation.
func ToCatalogConnectorSchema(f *ConnectorSchemaFile) *catalog.ConnectorSchema {
	out := &catalog.ConnectorSchema{Schemas: make(map[string]catalog.ConnectorSchemaEntry, len(f.Schema))}
	for schemaName, schema := range f.Schema {
		entry := catalog.ConnectorSchemaEntry{Tables: make(map[string]catalog.ConnectorTableEntry, len(schema.Tables))}
		for tableName, table := range schema.Tables {
			cols := make([]string, 0, len(table.Columns))
			for _, c := range table.Columns {
				cols = append(cols, c.Name)
			}
			entry.Tables[tableName] = catalog.ConnectorTableEntry{Columns: cols}
		}
		out.Schemas[schemaName] = entry
	}
	return out
}
