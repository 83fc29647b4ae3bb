// Package jobrunner launches a JobDecl's module_or_path as an
// out-of-process command, the minimal concrete form of the external
// process runner spec.md leaves unspecified.
package jobrunner

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"

	"github.com/lewisthorpe1994/DataPipelineFoundry/internal/catalog"
)

// Result captures a job's exit status and captured output.
type Result struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// Run executes a job's module_or_path in its declared workspace
// directory and waits for completion. Timeouts and retries are left to
// the caller via ctx, matching the core's stance that per-node execution
// policy belongs to the collaborator, not the compiler.
func Run(ctx context.Context, job *catalog.JobDecl) (*Result, error) {
	cmd := exec.CommandContext(ctx, job.ModuleOrPath)
	cmd.Dir = job.Workspace

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	result := &Result{Stdout: stdout.String(), Stderr: stderr.String()}

	if exitErr, ok := err.(*exec.ExitError); ok {
		result.ExitCode = exitErr.ExitCode()
		return result, fmt.Errorf("job %q exited with status %d: %s", job.Name, result.ExitCode, stderr.String())
	}
	if err != nil {
		return result, fmt.Errorf("run job %q: %w", job.Name, err)
	}
	return result, nil
}
