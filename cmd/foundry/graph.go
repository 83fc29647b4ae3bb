package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lewisthorpe1994/DataPipelineFoundry/internal/catalog"
	"github.com/lewisthorpe1994/DataPipelineFoundry/internal/compiler"
)

func newGraphCmd(root *rootFlags, app *AppContext) *cobra.Command {
	var explain string

	cmd := &cobra.Command{
		Use:   "graph <project>",
		Short: "Print the compiled DAG as Graphviz DOT, or explain one model's substituted SQL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGraphCmd(cmd, app, args[0], explain)
		},
	}

	cmd.Flags().StringVar(&explain, "explain", "", "print the substituted SQL for the named model instead of the DOT graph")
	return cmd
}

func runGraphCmd(cmd *cobra.Command, app *AppContext, projectDir, explain string) error {
	ctx, log := app.CommandContext(cmd, "graph")

	result, err := runCompile(ctx, log, projectDir)
	if err != nil {
		return newCommandError("compile project", err, "fix the reported diagnostics and recompile")
	}

	if explain != "" {
		model, ok := catalog.Get[*catalog.Model](result.Project.Catalog, catalog.KindModel, explain)
		if !ok {
			return newCommandError("explain model", fmt.Errorf("no model named %q", explain), "run 'foundry graph <project>' to list node names")
		}
		fmt.Fprintln(cmd.OutOrStdout(), compiler.RenderModel(model))
		return nil
	}

	fmt.Fprint(cmd.OutOrStdout(), compiler.DOT(result.Manifest))
	return nil
}
