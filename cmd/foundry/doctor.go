package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lewisthorpe1994/DataPipelineFoundry/internal/adapters/kafkaconnect"
	"github.com/lewisthorpe1994/DataPipelineFoundry/internal/adapters/warehouse"
	"github.com/lewisthorpe1994/DataPipelineFoundry/internal/catalog"
	"github.com/lewisthorpe1994/DataPipelineFoundry/internal/logging"
	"github.com/lewisthorpe1994/DataPipelineFoundry/internal/project"
)

func newDoctorCmd(root *rootFlags, app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "doctor <project>",
		Short: "Check connectivity to the Kafka clusters and connections referenced by declared connectors, without compiling",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDoctorCmd(cmd, app, args[0])
		},
	}
	return cmd
}

// runDoctorCmd loads the project (no resolve/compile) and probes the
// Kafka cluster and the connection referenced by each declared connector,
// reporting reachability. An unreachable target does not stop the
// remaining probes; once all have run, the command returns an error if
// any target was unreachable.
func runDoctorCmd(cmd *cobra.Command, app *AppContext, projectDir string) error {
	ctx, log := app.CommandContext(cmd, "doctor")

	proj, bag := project.Load(projectDir)
	if bag.Fatal() {
		return newCommandError("load project", bag.Err(), "fix the reported configuration errors")
	}

	healthy := true
	for _, name := range proj.Catalog.Names(catalog.KindConnector) {
		conn, ok := catalog.Get[*catalog.KafkaConnector](proj.Catalog, catalog.KindConnector, name)
		if !ok {
			continue
		}
		cluster, ok := proj.Catalog.KafkaCluster(conn.ClusterName)
		if !ok {
			continue
		}
		healthy = probeKafka(ctx, cmd, log, cluster) && healthy
	}

	for _, name := range dedupeConnectionNames(proj.Catalog) {
		spec, ok := proj.Catalog.Connection(name)
		if !ok {
			continue
		}
		healthy = probeWarehouse(ctx, cmd, log, name, spec) && healthy
	}

	if !healthy {
		return newCommandError("doctor", fmt.Errorf("one or more targets unreachable"), "check network access and credentials")
	}
	fmt.Fprintln(cmd.OutOrStdout(), "all declared targets reachable")
	return nil
}

func probeKafka(ctx context.Context, cmd *cobra.Command, log logging.Logger, cluster *catalog.KafkaCluster) bool {
	err := kafkaconnect.ProbeCluster(ctx, cluster.BootstrapServers)
	if err != nil {
		log.Warn(ctx, "kafka cluster unreachable", "cluster", cluster.Name, "error", err)
		fmt.Fprintf(cmd.OutOrStdout(), "kafka cluster %-20s UNREACHABLE: %v\n", cluster.Name, err)
		return false
	}
	fmt.Fprintf(cmd.OutOrStdout(), "kafka cluster %-20s OK\n", cluster.Name)
	return true
}

func probeWarehouse(ctx context.Context, cmd *cobra.Command, log logging.Logger, name string, spec catalog.ConnectionSpec) bool {
	if spec.AdapterType != "postgres" {
		fmt.Fprintf(cmd.OutOrStdout(), "connection %-20s SKIPPED (adapter %q not probed)\n", name, spec.AdapterType)
		return true
	}
	pool, err := warehouse.Connect(ctx, spec, warehouse.Config{})
	if err != nil {
		log.Warn(ctx, "connection unreachable", "connection", name, "error", err)
		fmt.Fprintf(cmd.OutOrStdout(), "connection %-20s UNREACHABLE: %v\n", name, err)
		return false
	}
	defer pool.Close()
	if err := pool.Ping(ctx); err != nil {
		fmt.Fprintf(cmd.OutOrStdout(), "connection %-20s UNREACHABLE: %v\n", name, err)
		return false
	}
	fmt.Fprintf(cmd.OutOrStdout(), "connection %-20s OK\n", name)
	return true
}

// dedupeConnectionNames collects every connection name referenced by a
// declared connector, since the catalog only exposes lookups by name,
// not a full listing of the active profile.
func dedupeConnectionNames(cat *catalog.Catalog) []string {
	seen := map[string]bool{}
	var out []string
	for _, name := range cat.Names(catalog.KindConnector) {
		conn, ok := catalog.Get[*catalog.KafkaConnector](cat, catalog.KindConnector, name)
		if !ok || conn.ConnectionName == "" || seen[conn.ConnectionName] {
			continue
		}
		seen[conn.ConnectionName] = true
		out = append(out, conn.ConnectionName)
	}
	return out
}
