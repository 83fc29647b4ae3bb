package parser

import (
	"testing"

	"github.com/lewisthorpe1994/DataPipelineFoundry/internal/ast"
	"github.com/stretchr/testify/require"
)

func TestParseModelFindsRefAndSourceMacros(t *testing.T) {
	t.Parallel()

	sql := `SELECT a.id, b.total
FROM ref('bronze','orders') a
JOIN source('db1','customers') b ON a.customer_id = b.id`

	model, diag := ParseModel("bronze/silver_orders.sql", sql)
	require.Nil(t, diag)
	require.Len(t, model.Macros, 2)

	require.Equal(t, ast.MacroRef, model.Macros[0].Name)
	require.Equal(t, []string{"bronze", "orders"}, model.Macros[0].Args)

	require.Equal(t, ast.MacroSource, model.Macros[1].Name)
	require.Equal(t, []string{"db1", "customers"}, model.Macros[1].Args)

	// Spans must point at the exact substring to replace.
	call := model.Macros[0]
	require.Equal(t, "ref('bronze','orders')", sql[call.Start:call.End])
}

func TestParseModelSupportsThreePartSourceForm(t *testing.T) {
	t.Parallel()

	sql := `SELECT * FROM source('db1','raw','orders')`
	model, diag := ParseModel("x.sql", sql)
	require.Nil(t, diag)
	require.Len(t, model.Macros, 1)
	require.Equal(t, []string{"db1", "raw", "orders"}, model.Macros[0].Args)
}

func TestParseModelIgnoresNonMacroFunctionCalls(t *testing.T) {
	t.Parallel()

	sql := `SELECT ref_count('a','b') FROM orders`
	model, diag := ParseModel("x.sql", sql)
	require.Nil(t, diag)
	require.Empty(t, model.Macros)
}

func TestParseModelIgnoresShapeMatchOutsideFromPosition(t *testing.T) {
	t.Parallel()

	// Same shape as a macro call but used as a plain scalar expression,
	// not in FROM/JOIN position and not followed by AS.
	sql := `SELECT CASE WHEN status = ref('a','b') THEN 1 ELSE 0 END FROM orders`
	model, diag := ParseModel("x.sql", sql)
	require.Nil(t, diag)
	require.Empty(t, model.Macros)
}

func TestParseModelHandlesMacroInsideCTE(t *testing.T) {
	t.Parallel()

	sql := `WITH base AS (
  SELECT * FROM ref('bronze','orders')
)
SELECT * FROM base`

	model, diag := ParseModel("x.sql", sql)
	require.Nil(t, diag)
	require.Len(t, model.Macros, 1)
	require.Equal(t, ast.MacroRef, model.Macros[0].Name)
}

func TestParseModelMacroBeforeAS(t *testing.T) {
	t.Parallel()

	sql := `SELECT * FROM ref('bronze','orders') AS o`
	model, diag := ParseModel("x.sql", sql)
	require.Nil(t, diag)
	require.Len(t, model.Macros, 1)
}
