//go:build integration

package warehouse

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/lewisthorpe1994/DataPipelineFoundry/internal/catalog"
)

// TestExecuteModelAgainstRealPostgres spins up a disposable Postgres
// container and runs a compiled model's SQL against it end to end.
func TestExecuteModelAgainstRealPostgres(t *testing.T) {
	ctx := context.Background()

	container, err := postgres.Run(ctx, "postgres:16-alpine",
		postgres.WithDatabase("foundry"),
		postgres.WithUsername("foundry"),
		postgres.WithPassword("foundry"),
		postgres.BasicWaitStrategies(),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	require.NoError(t, wait.ForListeningPort("5432/tcp").WithStartupTimeout(30*time.Second).
		WaitUntilReady(ctx, container))

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)

	spec := catalog.ConnectionSpec{
		AdapterType: "postgres", Host: host, Port: port.Int(),
		User: "foundry", Password: "foundry", Database: "foundry",
	}

	pool, err := Connect(ctx, spec, Config{MaxConnections: 2})
	require.NoError(t, err)
	defer pool.Close()

	model := &catalog.Model{
		Layer: "bronze", Name: "smoke",
		CompiledSQL: `CREATE TABLE bronze_smoke AS SELECT 1 AS id`,
	}
	require.NoError(t, pool.ExecuteModel(ctx, model))

	var count int
	row := pool.Pool.QueryRow(ctx, "SELECT count(*) FROM bronze_smoke")
	require.NoError(t, row.Scan(&count))
	require.Equal(t, 1, count)
}
