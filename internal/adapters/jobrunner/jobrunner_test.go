package jobrunner

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lewisthorpe1994/DataPipelineFoundry/internal/catalog"
)

func TestRunSucceedsForExitingCommand(t *testing.T) {
	t.Parallel()

	job := &catalog.JobDecl{Name: "smoke", Workspace: ".", ModuleOrPath: "/bin/true"}
	result, err := Run(context.Background(), job)
	require.NoError(t, err)
	require.Equal(t, 0, result.ExitCode)
}

func TestRunReportsNonZeroExit(t *testing.T) {
	t.Parallel()

	job := &catalog.JobDecl{Name: "smoke", Workspace: ".", ModuleOrPath: "/bin/false"}
	result, err := Run(context.Background(), job)
	require.Error(t, err)
	require.Equal(t, 1, result.ExitCode)
}
