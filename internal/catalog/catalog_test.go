package catalog

import (
	"testing"

	"github.com/lewisthorpe1994/DataPipelineFoundry/pkg/diagnostics"
	"github.com/stretchr/testify/require"
)

func TestInsertRejectsDuplicateNameForSameKind(t *testing.T) {
	t.Parallel()

	c := New()
	require.Nil(t, c.Insert(KindModel, "bronze_a", &Model{Layer: "bronze", Name: "a"}))

	diag := c.Insert(KindModel, "bronze_a", &Model{Layer: "bronze", Name: "a"})
	require.NotNil(t, diag)
	require.Equal(t, diagnostics.KindDuplicateDecl, diag.Kind)
}

func TestInsertAllowsSameNameAcrossDifferentKinds(t *testing.T) {
	t.Parallel()

	c := New()
	require.Nil(t, c.Insert(KindModel, "orders", &Model{Layer: "bronze", Name: "orders"}))
	require.Nil(t, c.Insert(KindJob, "orders", &JobDecl{Name: "orders"}))
}

func TestGetGenericTypedAccessor(t *testing.T) {
	t.Parallel()

	c := New()
	want := &Model{Layer: "bronze", Name: "a"}
	require.Nil(t, c.Insert(KindModel, "bronze_a", want))

	got, ok := Get[*Model](c, KindModel, "bronze_a")
	require.True(t, ok)
	require.Same(t, want, got)

	_, ok = Get[*Model](c, KindModel, "missing")
	require.False(t, ok)
}

func TestResolveSourceFQNFirstSchemaWins(t *testing.T) {
	t.Parallel()

	c := New()
	c.AddSourceDB(&ExternalDBSpec{
		Name: "db1",
		Schemas: []SchemaEntry{
			{Name: "raw", Tables: []string{"orders", "customers"}},
			{Name: "staging", Tables: []string{"orders"}},
		},
	})

	fqn, warn, err := c.ResolveSourceFQN("db1", "orders")
	require.Nil(t, err)
	require.NotNil(t, warn)
	require.Equal(t, diagnostics.KindAmbiguousSource, warn.Kind)
	require.Equal(t, "db1.raw.orders", fqn)
}

func TestResolveSourceFQNUnambiguous(t *testing.T) {
	t.Parallel()

	c := New()
	c.AddWarehouseDB(&ExternalDBSpec{
		Name:    "wh",
		Schemas: []SchemaEntry{{Name: "public", Tables: []string{"orders"}}},
	})

	fqn, warn, err := c.ResolveSourceFQN("wh", "orders")
	require.Nil(t, err)
	require.Nil(t, warn)
	require.Equal(t, "wh.public.orders", fqn)
}

func TestResolveSourceFQNUnknownDatabase(t *testing.T) {
	t.Parallel()

	c := New()
	_, _, err := c.ResolveSourceFQN("nope", "orders")
	require.NotNil(t, err)
	require.Equal(t, diagnostics.KindUnknownRef, err.Kind)
}

func TestResolveSourceFQNUnknownTable(t *testing.T) {
	t.Parallel()

	c := New()
	c.AddWarehouseDB(&ExternalDBSpec{Name: "wh", Schemas: []SchemaEntry{{Name: "public", Tables: []string{"customers"}}}})

	_, _, err := c.ResolveSourceFQN("wh", "orders")
	require.NotNil(t, err)
}

func TestBuiltinPresetResolvesAliases(t *testing.T) {
	t.Parallel()

	c := New()
	canonical, ok := c.BuiltinPreset("debezium.unwrap_default")
	require.True(t, ok)

	alias, ok := c.BuiltinPreset("debezium.extract_new_record_state")
	require.True(t, ok)
	require.Equal(t, canonical.Name, alias.Name)

	_, ok = c.BuiltinPreset("not.a.preset")
	require.False(t, ok)
}
