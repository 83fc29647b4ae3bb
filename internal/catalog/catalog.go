package catalog

import (
	"fmt"
	"sort"

	"github.com/lewisthorpe1994/DataPipelineFoundry/pkg/diagnostics"
)

// Catalog is the single-writer, single-compile-session store. It is owned
// exclusively by a compile session; entities are constructed during parse,
// mutated only during resolution, and read-only thereafter (spec.md §3
// Lifecycle).
type Catalog struct {
	entries map[Kind]map[string]interface{}

	warehouseDBs      map[string]*ExternalDBSpec
	sourceDBs         map[string]*ExternalDBSpec
	kafkaClusters     map[string]*KafkaCluster
	apiSources        map[string]*APISourceSpec
	connectionProfile *ConnectionProfile
}

// New creates an empty catalog.
func New() *Catalog {
	return &Catalog{
		entries:       make(map[Kind]map[string]interface{}),
		warehouseDBs:  make(map[string]*ExternalDBSpec),
		sourceDBs:     make(map[string]*ExternalDBSpec),
		kafkaClusters: make(map[string]*KafkaCluster),
		apiSources:    make(map[string]*APISourceSpec),
	}
}

// Insert adds a declaration under (kind, name). It fails with a
// DuplicateDecl diagnostic if the name is already present for that kind
// (I7: model identity is unique; the same rule extends to every kind).
func (c *Catalog) Insert(kind Kind, name string, decl interface{}) *diagnostics.Diagnostic {
	if c.entries[kind] == nil {
		c.entries[kind] = make(map[string]interface{})
	}
	if _, exists := c.entries[kind][name]; exists {
		return diagnostics.New(diagnostics.KindDuplicateDecl, diagnostics.Span{}, name,
			fmt.Sprintf("duplicate %s declaration %q", kind, name))
	}
	c.entries[kind][name] = decl
	return nil
}

// Get retrieves a raw declaration by (kind, name).
func (c *Catalog) Get(kind Kind, name string) (interface{}, bool) {
	m := c.entries[kind]
	if m == nil {
		return nil, false
	}
	v, ok := m[name]
	return v, ok
}

// Names returns every declared name for a kind, sorted for deterministic
// iteration.
func (c *Catalog) Names(kind Kind) []string {
	m := c.entries[kind]
	out := make([]string, 0, len(m))
	for name := range m {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Get is a generic typed accessor over Catalog.Get, avoiding a type
// assertion at every call site while the catalog itself stays a uniform
// discriminated union underneath.
func Get[T any](c *Catalog, kind Kind, name string) (T, bool) {
	var zero T
	v, ok := c.Get(kind, name)
	if !ok {
		return zero, false
	}
	t, ok := v.(T)
	return t, ok
}

// All returns every declaration of kind, in name order.
func All[T any](c *Catalog, kind Kind) []T {
	names := c.Names(kind)
	out := make([]T, 0, len(names))
	for _, name := range names {
		if v, ok := Get[T](c, kind, name); ok {
			out = append(out, v)
		}
	}
	return out
}

// --- external specifications -------------------------------------------

// AddWarehouseDB registers a warehouse spec by name.
func (c *Catalog) AddWarehouseDB(spec *ExternalDBSpec) { c.warehouseDBs[spec.Name] = spec }

// AddSourceDB registers a source-db spec by name.
func (c *Catalog) AddSourceDB(spec *ExternalDBSpec) { c.sourceDBs[spec.Name] = spec }

// AddKafkaCluster registers a Kafka cluster spec by name.
func (c *Catalog) AddKafkaCluster(spec *KafkaCluster) { c.kafkaClusters[spec.Name] = spec }

// AddAPISource registers an API source spec by name.
func (c *Catalog) AddAPISource(spec *APISourceSpec) { c.apiSources[spec.Name] = spec }

// SetConnectionProfile installs the active connection profile.
func (c *Catalog) SetConnectionProfile(p *ConnectionProfile) { c.connectionProfile = p }

// KafkaCluster looks up a cluster spec by name.
func (c *Catalog) KafkaCluster(name string) (*KafkaCluster, bool) {
	v, ok := c.kafkaClusters[name]
	return v, ok
}

// Connection looks up a named connection in the active profile.
func (c *Catalog) Connection(name string) (ConnectionSpec, bool) {
	if c.connectionProfile == nil {
		return ConnectionSpec{}, false
	}
	spec, ok := c.connectionProfile.Connections[name]
	return spec, ok
}

// ResolveSourceFQN implements spec.md §4.2: consult the named warehouse
// spec first, then the named source-db spec, scanning declared schemas in
// order for the first one containing table. Returns the fully-qualified
// name plus an optional AmbiguousSource warning when more than one schema
// in the same db declares the table.
func (c *Catalog) ResolveSourceFQN(db, table string) (string, *diagnostics.Diagnostic, *diagnostics.Diagnostic) {
	spec, ok := c.warehouseDBs[db]
	if !ok {
		spec, ok = c.sourceDBs[db]
	}
	if !ok {
		return "", nil, diagnostics.New(diagnostics.KindUnknownRef, diagnostics.Span{}, db,
			fmt.Sprintf("no warehouse or source database named %q is declared", db))
	}

	var matches []string
	for _, schema := range spec.Schemas {
		for _, t := range schema.Tables {
			if t == table {
				matches = append(matches, schema.Name)
				break
			}
		}
	}

	if len(matches) == 0 {
		return "", nil, unknownSourceErr(db, table)
	}

	fqn := fmt.Sprintf("%s.%s.%s", db, matches[0], table)
	if len(matches) > 1 {
		warn := diagnostics.Warning(diagnostics.KindAmbiguousSource, diagnostics.Span{}, fmt.Sprintf("%s.%s", db, table),
			fmt.Sprintf("table %q is declared in multiple schemas (%v) of %q; using %q (first in declaration order)", table, matches, db, matches[0]))
		return fqn, warn, nil
	}
	return fqn, nil, nil
}

// ResolveSourceFQNExplicit implements the three-part source('D','S','T')
// form (SPEC_FULL §4): schema discovery is bypassed entirely.
func ResolveSourceFQNExplicit(db, schema, table string) string {
	return fmt.Sprintf("%s.%s.%s", db, schema, table)
}

func unknownSourceErr(db, table string) *diagnostics.Diagnostic {
	return diagnostics.New(diagnostics.KindUnknownRef, diagnostics.Span{}, fmt.Sprintf("%s.%s", db, table),
		fmt.Sprintf("no schema in database %q declares table %q", db, table))
}
