package main

import (
	"context"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/lewisthorpe1994/DataPipelineFoundry/internal/adapters/jobrunner"
	"github.com/lewisthorpe1994/DataPipelineFoundry/internal/adapters/kafkaconnect"
	"github.com/lewisthorpe1994/DataPipelineFoundry/internal/adapters/warehouse"
	"github.com/lewisthorpe1994/DataPipelineFoundry/internal/catalog"
	"github.com/lewisthorpe1994/DataPipelineFoundry/internal/compiler"
	"github.com/lewisthorpe1994/DataPipelineFoundry/internal/dag"
	"github.com/lewisthorpe1994/DataPipelineFoundry/internal/logging"
	"github.com/lewisthorpe1994/DataPipelineFoundry/internal/project"
)

func newRunCmd(root *rootFlags, app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <project> <selector>",
		Short: "Compile a project and execute the selected nodes in topological order",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRunCmd(cmd, app, args[0], args[1])
		},
	}
	return cmd
}

func runRunCmd(cmd *cobra.Command, app *AppContext, projectDir, selectorExpr string) error {
	ctx, log := app.CommandContext(cmd, "run")

	result, err := runCompile(ctx, log, projectDir)
	if err != nil {
		return newCommandError("compile project", err, "fix the reported diagnostics and recompile")
	}

	selected, err := dag.Select(result.Graph, selectorExpr)
	if err != nil {
		return newCommandError("evaluate selector", err, "use a literal node name or the <N, N>, <N> forms")
	}

	order := dag.ExecutionOrder(result.Graph, selected)
	if len(order) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "selector matched no executable node")
		return nil
	}

	exec := &executor{project: result.Project, log: log}
	for _, name := range order {
		node := result.Graph.Nodes[name]
		start := fmt.Sprintf("running %s (%s)", name, node.Kind)
		log.Info(ctx, start)
		if err := exec.run(ctx, node); err != nil {
			return newCommandError(fmt.Sprintf("run node %q", name), err, "rerun with the same selector after fixing the underlying target")
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%-40s OK\n", name)
	}
	return nil
}

// executor dispatches one DAG node to its backend adapter. Non-executable
// nodes never reach here: dag.ExecutionOrder already filters them out.
type executor struct {
	project *project.Project
	log     logging.Logger
}

func (e *executor) run(ctx context.Context, node *dag.Node) error {
	switch node.Kind {
	case dag.KindModel:
		return e.runModel(ctx, node.Name)
	case dag.KindConnector:
		return e.runConnector(ctx, node.Name)
	case dag.KindJob:
		return e.runJob(ctx, node.Name)
	default:
		return fmt.Errorf("node kind %q has no execution backend", node.Kind)
	}
}

// runModel executes a model against the connection named by the
// target_connection of the analytics project whose name sorts first
// (the YAML map does not keep declaration order). Multi-project
// composition is out of scope, so a single warehouse target for every
// model is the documented simplification.
func (e *executor) runModel(ctx context.Context, id string) error {
	model, ok := catalog.Get[*catalog.Model](e.project.Catalog, catalog.KindModel, id)
	if !ok {
		return fmt.Errorf("model %q not found", id)
	}

	connName := e.warehouseConnectionName()
	spec, ok := e.project.Catalog.Connection(connName)
	if !ok {
		return fmt.Errorf("no connection named %q configured for model execution", connName)
	}

	pool, err := warehouse.Connect(ctx, spec, warehouse.Config{})
	if err != nil {
		return err
	}
	defer pool.Close()

	return pool.ExecuteModel(ctx, model)
}

func (e *executor) warehouseConnectionName() string {
	projects := e.project.Config.Models.AnalyticsProjects
	names := make([]string, 0, len(projects))
	for name := range projects {
		names = append(names, name)
	}
	if len(names) == 0 {
		return ""
	}
	sort.Strings(names)
	return projects[names[0]].TargetConnection
}

func (e *executor) runConnector(ctx context.Context, name string) error {
	conn, ok := catalog.Get[*catalog.KafkaConnector](e.project.Catalog, catalog.KindConnector, name)
	if !ok {
		return fmt.Errorf("connector %q not found", name)
	}
	cluster, ok := e.project.Catalog.KafkaCluster(conn.ClusterName)
	if !ok {
		return fmt.Errorf("connector %q references unknown cluster %q", name, conn.ClusterName)
	}

	props, bag := compiler.RenderConnector(e.project.Catalog, conn)
	if bag.Fatal() {
		return bag.Err()
	}

	client := kafkaconnect.NewClient(cluster.ConnectHost, cluster.ConnectPort)
	if err := client.Deploy(ctx, name, props); err != nil {
		return err
	}
	state, err := client.Status(ctx, name)
	if err != nil {
		return err
	}
	e.log.Info(ctx, "connector deployed", "connector", name, "state", state)
	return nil
}

func (e *executor) runJob(ctx context.Context, name string) error {
	job, ok := catalog.Get[*catalog.JobDecl](e.project.Catalog, catalog.KindJob, name)
	if !ok {
		return fmt.Errorf("job %q not found", name)
	}
	result, err := jobrunner.Run(ctx, job)
	if err != nil {
		return err
	}
	e.log.Info(ctx, "job finished", "job", name, "exit_code", result.ExitCode)
	return nil
}
