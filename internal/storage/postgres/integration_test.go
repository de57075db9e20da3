//go:build integration

package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/JakeFAU/pgrapher/internal/store"
)

func startPostgres(t *testing.T) *Pool {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:15-alpine"),
		tcpostgres.WithDatabase("pgrapher"),
		tcpostgres.WithUsername("pgrapher"),
		tcpostgres.WithPassword("password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = container.Terminate(ctx)
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := NewPool(ctx, PoolConfig{DSN: dsn, MaxConns: 4})
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	require.NoError(t, pool.EnsureSchema(ctx))
	// A second run must be a no-op.
	require.NoError(t, pool.EnsureSchema(ctx))
	return pool
}

func TestIntegrationAggregatesAverageResults(t *testing.T) {
	pool := startPostgres(t)
	ctx := context.Background()

	session, err := pool.Acquire(ctx)
	require.NoError(t, err)
	defer session.Release()

	inputs := []store.TestResult{
		{Hostname: "node1", Test: "cpu", Threads: 4, Run: 1, Result: 12.5},
		{Hostname: "node1", Test: "cpu", Threads: 4, Run: 2, Result: 13.5},
		{Hostname: "node1", Test: "cpu", Threads: 8, Run: 1, Result: 20},
		{Hostname: "node2", Test: "cpu", Threads: 4, Run: 1, Result: 10},
		{Hostname: "node2", Test: "cpu", Threads: 4, Run: 1, Result: 11},
	}
	for _, in := range inputs {
		require.NoError(t, session.InsertTest(ctx, in))
	}

	results, err := session.ListAggregatedTests(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []store.AggregatedResult{
		{Hostname: "node1", Test: "cpu", Threads: 4, AverageResult: 13},
		{Hostname: "node1", Test: "cpu", Threads: 8, AverageResult: 20},
		{Hostname: "node2", Test: "cpu", Threads: 4, AverageResult: 10.5},
	}, results)

	hosts, err := session.ListHosts(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"node1", "node2"}, hosts)

	_, err = session.ListHostAggregatedTests(ctx, "ghost")
	require.ErrorIs(t, err, store.ErrNotFound)

	affected, err := session.DeleteTest(ctx, 1)
	require.NoError(t, err)
	assert.EqualValues(t, 1, affected)
	affected, err = session.DeleteTest(ctx, 1)
	require.NoError(t, err)
	assert.Zero(t, affected)

	require.NoError(t, pool.Ping(ctx))
}

func TestIntegrationKeepsDoublePrecision(t *testing.T) {
	pool := startPostgres(t)
	ctx := context.Background()

	session, err := pool.Acquire(ctx)
	require.NoError(t, err)
	defer session.Release()

	require.NoError(t, session.InsertTest(ctx, store.TestResult{Hostname: "node1", Test: "lat", Threads: 1, Run: 1, Result: 0.1}))

	results, err := session.ListHostAggregatedTests(ctx, "node1")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, 0.1, results[0].AverageResult)
}
