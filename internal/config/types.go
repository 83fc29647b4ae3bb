// Package config loads the YAML project configuration and external
// specification files consumed by a compile session (spec.md §6,
// "External Interfaces"). It is the ambient configuration layer: it
// imports internal/catalog only to convert decoded values into catalog
// types (convert.go), never imports internal/resolver|dag|compiler, and is
// read by internal/project rather than by the core packages.
package config

// ProjectConfig is the decoded form of foundry-project.yml.
type ProjectConfig struct {
	Name                  string            `yaml:"name" validate:"required,min=1"`
	Version               string            `yaml:"version" validate:"required"`
	CompilePath           string            `yaml:"compile_path" validate:"required"`
	Models                ModelsConfig      `yaml:"models" validate:"required"`
	Sources               SourcesConfig     `yaml:"sources"`
	ConnectionProfileRef  ConnectionProfile `yaml:"connection_profile" validate:"required"`
	Python                *PythonConfig     `yaml:"python,omitempty"`
	ModellingArchitecture string            `yaml:"modelling_architecture,omitempty"`
	Jobs                  []JobSpec         `yaml:"jobs,omitempty"`
}

// JobSpec is a declarative out-of-process job descriptor, inlined
// directly into foundry-project.yml since spec.md gives it no dedicated
// DDL or sibling-file shape of its own.
type JobSpec struct {
	Name         string `yaml:"name" validate:"required"`
	Workspace    string `yaml:"workspace" validate:"required"`
	ModuleOrPath string `yaml:"module_or_path" validate:"required"`
}

// ModelsConfig locates model source directories and per-layer paths.
type ModelsConfig struct {
	Dir                string                      `yaml:"dir" validate:"required"`
	AnalyticsProjects   map[string]AnalyticsProject `yaml:"analytics_projects,omitempty"`
	Layers              map[string]string           `yaml:"layers" validate:"required,min=1"`
}

// AnalyticsProject names the connection a project's materializations run against.
type AnalyticsProject struct {
	TargetConnection string `yaml:"target_connection" validate:"required"`
}

// SourcesConfig groups the external specification roots by family.
type SourcesConfig struct {
	Warehouse SourceGroup `yaml:"warehouse,omitempty"`
	Kafka     SourceGroup `yaml:"kafka,omitempty"`
	SourceDB  SourceGroup `yaml:"source_db,omitempty"`
	API       SourceGroup `yaml:"api,omitempty"`
}

// SourceGroup is one family's on-disk layout.
type SourceGroup struct {
	Specifications string `yaml:"specifications,omitempty"`
	SourceRoot     string `yaml:"source_root,omitempty"`
	Definitions    string `yaml:"definitions,omitempty"`
}

// ConnectionProfile names the active profile and where connections.yml lives.
type ConnectionProfile struct {
	Profile string `yaml:"profile" validate:"required"`
	Path    string `yaml:"path" validate:"required"`
}

// PythonConfig is the optional Python workspace integration block.
type PythonConfig struct {
	WorkspaceDir string `yaml:"workspace_dir,omitempty"`
}

// ConnectionsFile is the decoded form of connections.yml:
// `{<profile>: {<name>: {...}}}`.
type ConnectionsFile map[string]map[string]ConnectionSpec

// ConnectionSpec is one named connection's credentials.
type ConnectionSpec struct {
	AdapterType string `yaml:"adapter_type" validate:"required,oneof=postgres mysql"`
	Host        string `yaml:"host" validate:"required"`
	Port        int    `yaml:"port" validate:"required,min=1,max=65535"`
	User        string `yaml:"user" validate:"required"`
	Password    string `yaml:"password"`
	Database    string `yaml:"database" validate:"required"`
}

// ExternalDBSpec is a warehouse or source-db declaration:
// `{name, schemas: {<schema>: {tables: [<name>...]}}}`.
type ExternalDBSpec struct {
	Name    string                `yaml:"name" validate:"required"`
	Schemas map[string]SchemaSpec `yaml:"schemas" validate:"required,min=1"`
}

// SchemaSpec lists the tables declared in one schema.
type SchemaSpec struct {
	Tables []string `yaml:"tables" validate:"required,min=1"`
}

// KafkaClusterSpec is a declarative Kafka cluster endpoint record.
type KafkaClusterSpec struct {
	Name             string `yaml:"name" validate:"required"`
	BootstrapServers string `yaml:"bootstrap.servers" validate:"required"`
	ConnectHost      string `yaml:"connect.host" validate:"required"`
	ConnectPort      int    `yaml:"connect.port" validate:"required,min=1,max=65535"`
}

// APISourceSpec is a minimal external API source declaration.
type APISourceSpec struct {
	Name    string `yaml:"name" validate:"required"`
	BaseURL string `yaml:"base_url" validate:"required,url"`
}

// ModelSidecar is a model's optional sibling `_<name>.yml` metadata file.
type ModelSidecar struct {
	Name            string                 `yaml:"name"`
	Materialization string                 `yaml:"materialization,omitempty" validate:"omitempty,oneof=view table"`
	Description     string                 `yaml:"description,omitempty"`
	Columns         []string               `yaml:"columns,omitempty"`
	Meta            map[string]interface{} `yaml:"meta,omitempty"`
}

// ConnectorSchemaFile is a connector's sibling YAML: name, include-list
// schema, and the dag_executable flag.
type ConnectorSchemaFile struct {
	Name          string                             `yaml:"name" validate:"required"`
	Schema        map[string]ConnectorSchemaYAML     `yaml:"schema,omitempty"`
	DagExecutable bool                               `yaml:"dag_executable,omitempty"`
}

// ConnectorSchemaYAML is one schema's table/column include-list.
type ConnectorSchemaYAML struct {
	Tables map[string]ConnectorTableYAML `yaml:"tables"`
}

// ConnectorTableYAML lists the included columns for one table.
type ConnectorTableYAML struct {
	Columns []ColumnYAML `yaml:"columns"`
}

// ColumnYAML names one included column.
type ColumnYAML struct {
	Name string `yaml:"name"`
}
