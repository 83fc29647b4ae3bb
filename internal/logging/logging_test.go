package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewJSONWritesStructuredFields(t *testing.T) {
	buf := &bytes.Buffer{}
	log, err := New(Options{Writer: buf, Level: "debug", Component: "test"})
	require.NoError(t, err)

	log.Info(context.Background(), "hello", "model", "bronze_a")

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &decoded))
	require.Equal(t, "hello", decoded["msg"])
	require.Equal(t, "test", decoded["component"])
	require.Equal(t, "bronze_a", decoded["model"])
}

func TestLevelFiltersBelowThreshold(t *testing.T) {
	buf := &bytes.Buffer{}
	log, err := New(Options{Writer: buf, Level: "warn"})
	require.NoError(t, err)

	log.Info(context.Background(), "should not appear")
	require.Empty(t, buf.String())

	log.Warn(context.Background(), "should appear")
	require.NotEmpty(t, buf.String())
}

func TestWithAppendsAndOverridesFields(t *testing.T) {
	buf := &bytes.Buffer{}
	base, err := New(Options{Writer: buf, Level: "debug"})
	require.NoError(t, err)

	scoped := base.With("phase", "compile")
	scoped.Info(context.Background(), "done", "phase", "resolve")

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &decoded))
	require.Equal(t, "resolve", decoded["phase"])
}

func TestCorrelationIDPropagatesIntoLogLine(t *testing.T) {
	buf := &bytes.Buffer{}
	log, err := New(Options{Writer: buf, Level: "debug"})
	require.NoError(t, err)

	ctx := WithCorrelationID(context.Background(), "abc-123")
	log.Info(ctx, "traced")

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &decoded))
	require.Equal(t, "abc-123", decoded["correlation_id"])
}

func TestCorrelationIDEmptyWithoutContextValue(t *testing.T) {
	require.Equal(t, "", CorrelationID(context.Background()))
}

func TestNoOpDiscardsEverything(t *testing.T) {
	log := NoOp()
	log.Info(context.Background(), "ignored")
	log.With("k", "v").Error(context.Background(), "also ignored")
}

func TestNewRejectsInvalidLevel(t *testing.T) {
	_, err := New(Options{Level: "not-a-level"})
	require.Error(t, err)
}
