package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/lewisthorpe1994/DataPipelineFoundry/internal/logging"
)

// AppContext bundles the long-lived logger every subcommand shares.
type AppContext struct {
	Logger logging.Logger
}

// CommandContext returns the command's context (falling back to
// Background) together with a component-scoped logger.
func (a *AppContext) CommandContext(cmd *cobra.Command, component string) (context.Context, logging.Logger) {
	ctx := context.Background()
	if cmd != nil && cmd.Context() != nil {
		ctx = cmd.Context()
	}
	if a == nil || a.Logger == nil {
		return ctx, logging.NoOp()
	}
	return ctx, a.Logger.With("component", component)
}
