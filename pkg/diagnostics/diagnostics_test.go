package diagnostics

import (
	stdErrors "errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDiagnosticErrorIncludesSpanAndIdentifier(t *testing.T) {
	t.Parallel()

	d := New(KindUnknownRef, Span{File: "bronze/a.sql", Line: 3, Col: 12}, "bronze.missing", "model not found")
	require.Contains(t, d.Error(), "bronze/a.sql:3:12")
	require.Contains(t, d.Error(), "bronze.missing")
	require.True(t, d.IsFatal())
}

func TestWarningIsNotFatal(t *testing.T) {
	t.Parallel()

	d := Warning(KindAmbiguousSource, Span{}, "db1.t", "multiple schemas contain table")
	require.False(t, d.IsFatal())
}

func TestBagCollectsAllFatalsBeforeFailing(t *testing.T) {
	t.Parallel()

	var bag Bag
	bag.Addf(KindDuplicateDecl, Span{File: "a.sql"}, "bronze_a", "duplicate model %q", "bronze_a")
	bag.Addf(KindUnknownRef, Span{File: "b.sql"}, "silver_b", "missing dependency %q", "bronze_c")
	bag.Warnf(KindAmbiguousSource, Span{}, "db1.t", "tie-break applied")

	require.True(t, bag.Fatal())
	require.Len(t, bag.Items(), 3)
	require.Len(t, bag.Warnings(), 1)

	err := bag.Err()
	require.Error(t, err)

	var multi *MultiError
	require.True(t, stdErrors.As(err, &multi))
	require.Len(t, multi.Diagnostics, 2)
}

func TestBagErrNilWhenOnlyWarnings(t *testing.T) {
	t.Parallel()

	var bag Bag
	bag.Warnf(KindAmbiguousSource, Span{}, "db1.t", "tie-break applied")
	require.NoError(t, bag.Err())
}

func TestSingleFatalUnwrapsToDiagnostic(t *testing.T) {
	t.Parallel()

	var bag Bag
	bag.Addf(KindPresetCycle, Span{}, "a", "preset cycle: %v", []string{"a", "b", "a"})

	err := bag.Err()
	var d *Diagnostic
	require.True(t, stdErrors.As(err, &d))
	require.Equal(t, KindPresetCycle, d.Kind)
}
