// Package catalog implements the in-memory, typed key/value store described
// in spec.md §4.2: a discriminated union keyed by (kind, name) holding
// parsed declarations, plus read-only handles onto external specifications.
package catalog

// Kind discriminates the declaration namespaces the catalog stores.
type Kind string

const (
	KindModel       Kind = "model"
	KindSmt         Kind = "smt"
	KindPipeline    Kind = "pipeline"
	KindPredicate   Kind = "predicate"
	KindConnector   Kind = "connector"
	KindJob         Kind = "job"
	KindSourceTable Kind = "source_table"
)

// Materialization is a model's rendered form in the warehouse.
type Materialization string

const (
	MaterializationView  Materialization = "view"
	MaterializationTable Materialization = "table"
)

// Model is a declarative SELECT query representing a node of the
// analytics DAG. Identity is "<layer>_<name>". RawSQL is immutable after
// parse; CompiledSQL is populated by the resolver during pass 1 and is the
// only field that mutates after construction.
type Model struct {
	Layer           string
	Name            string
	RawSQL          string
	CompiledSQL     string
	Materialization Materialization
	Metadata        map[string]interface{}
	SourceFile      string
}

// ID returns the model's catalog/manifest identity, "<layer>_<name>".
func (m *Model) ID() string {
	return m.Layer + "_" + m.Name
}

// SourceTable is a non-executable DAG leaf materialized lazily the first
// time a model's source(db,table) macro is resolved.
type SourceTable struct {
	SourceDB string
	Schema   string
	Table    string
	FQN      string
}

// KafkaCluster is loaded from an external spec and referenced by name from
// connector declarations.
type KafkaCluster struct {
	Name             string
	BootstrapServers string
	ConnectHost      string
	ConnectPort      int
}

// ConnectorKind is the concrete Kafka Connect connector family.
type ConnectorKind string

const (
	ConnectorDebeziumPgSource  ConnectorKind = "debezium_pg_source"
	ConnectorDebeziumPgSink    ConnectorKind = "debezium_pg_sink"
	ConnectorConfluentPgSource ConnectorKind = "confluent_pg_source"
	ConnectorConfluentPgSink   ConnectorKind = "confluent_pg_sink"
)

// KafkaConnector is a declared Kafka Connect connector.
type KafkaConnector struct {
	Name           string
	Kind           ConnectorKind
	ClusterName    string
	ConnectionName string
	Version        string
	Properties     map[string]string
	Pipelines      []string
	SchemaInclude  *ConnectorSchema
	DagExecutable  bool
	TargetSchema   string // sinks only
	SourceFile     string
}

// ConnectorSchema is the sibling-YAML include-list source for a connector:
// `{name, schema: {<schema>: {tables: {<table>: {columns: [...]}}}}}`.
type ConnectorSchema struct {
	Schemas map[string]ConnectorSchemaEntry
}

// ConnectorSchemaEntry lists the tables (and their columns) included for
// one schema in a connector's sibling YAML.
type ConnectorSchemaEntry struct {
	Tables map[string]ConnectorTableEntry
}

// ConnectorTableEntry lists included columns for one table.
type ConnectorTableEntry struct {
	Columns []string
}

// PredicateRef names a predicate an SMT is gated by.
type PredicateRef struct {
	Name   string
	Negate bool
}

// SmtDecl is a Simple Message Transform declaration.
type SmtDecl struct {
	Name        string
	PresetRef   string // empty when absent
	Config      map[string]string
	Extend      map[string]string
	PredicateRef *PredicateRef
	KnownType   string // empty unless the config names a recognized Debezium class
	SourceFile  string
}

// PipelineStep is one SMT invocation inside a pipeline, in declaration
// order.
type PipelineStep struct {
	SmtName   string
	Overrides map[string]string
	Alias     string // empty when absent
}

// PipelineDecl is an ordered list of SMT invocations.
type PipelineDecl struct {
	Name              string
	Steps             []PipelineStep
	PipelinePredicate string // empty when absent
	SourceFile        string
}

// PredicateKind enumerates the supported Kafka Connect predicate types.
type PredicateKind string

const (
	PredicateTopicNameMatches  PredicateKind = "TopicNameMatches"
	PredicateRecordIsTombstone PredicateKind = "RecordIsTombstone"
	PredicateHasHeaderKey      PredicateKind = "HasHeaderKey"
)

// PredicateDecl is a named Kafka Connect predicate.
type PredicateDecl struct {
	Name       string
	Kind       PredicateKind
	Pattern    string // empty when absent
	SourceFile string
}

// JobDecl is a declarative job descriptor consumed by an external runner.
type JobDecl struct {
	Name           string
	Workspace      string
	ModuleOrPath   string
	SourceFile     string
}

// ConnectionSpec is one named connection's credentials.
type ConnectionSpec struct {
	AdapterType string
	Host        string
	Port        int
	User        string
	Password    string
	Database    string
}

// ConnectionProfile is the active set of named connections, loaded from
// connections.yml.
type ConnectionProfile struct {
	Profile     string
	Connections map[string]ConnectionSpec
}

// SchemaEntry is one schema's table list within a warehouse/source-db
// spec, kept as an ordered slice so "first schema in declaration order"
// tie-breaking (I-AmbiguousSource) is well defined.
type SchemaEntry struct {
	Name   string
	Tables []string
}

// ExternalDBSpec is a warehouse or source-db declaration:
// `{name, schemas: {<schema>: {tables: [<name>...]}}}`.
type ExternalDBSpec struct {
	Name    string
	Schemas []SchemaEntry
}

// APISourceSpec is a minimal external API source declaration.
type APISourceSpec struct {
	Name    string
	BaseURL string
}
