// Package warehouse executes a compiled model's SQL against a relational
// backend. It is an external collaborator in spec.md's terms: the core
// packages never import it, and it only ever receives a compiled model
// (whose CompiledSQL it executes) plus a connection spec, never the
// catalog itself.
package warehouse

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lewisthorpe1994/DataPipelineFoundry/internal/catalog"
)

// Pool wraps a pgxpool connection pool for one connection profile entry.
type Pool struct {
	*pgxpool.Pool
}

// Config tunes the pool beyond what ConnectionSpec carries.
type Config struct {
	MaxConnections  int32
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// Connect opens a pool against a warehouse connection spec.
func Connect(ctx context.Context, spec catalog.ConnectionSpec, cfg Config) (*Pool, error) {
	url := fmt.Sprintf("postgres://%s:%s@%s:%d/%s", spec.User, spec.Password, spec.Host, spec.Port, spec.Database)

	poolConfig, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("parse warehouse connection string: %w", err)
	}

	poolConfig.MaxConns = cfg.MaxConnections
	if poolConfig.MaxConns == 0 {
		poolConfig.MaxConns = 10
	}
	poolConfig.MaxConnLifetime = cfg.MaxConnLifetime
	if poolConfig.MaxConnLifetime == 0 {
		poolConfig.MaxConnLifetime = time.Hour
	}
	poolConfig.MaxConnIdleTime = cfg.MaxConnIdleTime
	if poolConfig.MaxConnIdleTime == 0 {
		poolConfig.MaxConnIdleTime = 30 * time.Minute
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("open warehouse connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping warehouse: %w", err)
	}
	return &Pool{Pool: pool}, nil
}

// Close releases the pool.
func (p *Pool) Close() {
	p.Pool.Close()
}

// ExecuteModel runs a model's compiled_sql as a single statement. For a
// materialization of "table" the caller is expected to have wrapped
// compiledSQL in the appropriate CREATE/INSERT form during compilation;
// the adapter itself is materialization-agnostic and just executes text.
func (p *Pool) ExecuteModel(ctx context.Context, m *catalog.Model) error {
	if m.CompiledSQL == "" {
		return fmt.Errorf("model %q has no compiled SQL to execute", m.ID())
	}
	_, err := p.Pool.Exec(ctx, m.CompiledSQL)
	if err != nil {
		return fmt.Errorf("execute model %q: %w", m.ID(), err)
	}
	return nil
}

// Ping is used by foundry doctor to check reachability without running
// any model SQL.
func (p *Pool) Ping(ctx context.Context) error {
	return p.Pool.Ping(ctx)
}
