// Package postgres provides the Postgres-backed result store.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/JakeFAU/pgrapher/internal/store"
)

// querier is the slice of a pgx connection the queries need. Both
// *pgxpool.Conn and pgxmock connections satisfy it.
type querier interface {
	Exec(context.Context, string, ...any) (pgconn.CommandTag, error)
	Query(context.Context, string, ...any) (pgx.Rows, error)
}

// Session runs result queries on one exclusively held connection.
type Session struct {
	conn    querier
	release func()
	once    sync.Once
}

var _ store.Session = (*Session)(nil)

// NewSession wraps conn. release is invoked at most once, by Release.
func NewSession(conn querier, release func()) *Session {
	return &Session{conn: conn, release: release}
}

// Release hands the connection back. Calls after the first are no-ops.
func (s *Session) Release() {
	s.once.Do(func() {
		if s.release != nil {
			s.release()
		}
	})
}

// ListHosts returns every distinct hostname.
func (s *Session) ListHosts(ctx context.Context) ([]string, error) {
	rows, err := s.conn.Query(ctx, selectHosts)
	if err != nil {
		return nil, fmt.Errorf("failed to list hosts: %w", err)
	}
	hosts, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("failed to scan host row: %w", err)
	}
	return hosts, nil
}

// ListAggregatedTests averages results per (hostname, test, threads).
func (s *Session) ListAggregatedTests(ctx context.Context) ([]store.AggregatedResult, error) {
	rows, err := s.conn.Query(ctx, selectAggregatedTests)
	if err != nil {
		return nil, fmt.Errorf("failed to list tests: %w", err)
	}
	results, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (store.AggregatedResult, error) {
		var r store.AggregatedResult
		err := row.Scan(&r.Hostname, &r.Test, &r.Threads, &r.AverageResult)
		return r, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan test row: %w", err)
	}
	return results, nil
}

// ListHostAggregatedTests averages one host's results per (test, threads).
// It returns store.ErrNotFound when the host has no rows.
func (s *Session) ListHostAggregatedTests(ctx context.Context, hostname string) ([]store.AggregatedResult, error) {
	rows, err := s.conn.Query(ctx, selectHostAggregatedTests, hostname)
	if err != nil {
		return nil, fmt.Errorf("failed to list tests for host: %w", err)
	}
	results, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (store.AggregatedResult, error) {
		r := store.AggregatedResult{Hostname: hostname}
		err := row.Scan(&r.Test, &r.Threads, &r.AverageResult)
		return r, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan host test row: %w", err)
	}
	if len(results) == 0 {
		return nil, store.ErrNotFound
	}
	return results, nil
}

// DeleteTest removes the row with the given id and reports rows affected.
func (s *Session) DeleteTest(ctx context.Context, id int32) (int64, error) {
	tag, err := s.conn.Exec(ctx, deleteTest, id)
	if err != nil {
		return 0, fmt.Errorf("failed to delete test: %w", err)
	}
	return tag.RowsAffected(), nil
}

// InsertTest appends one result row.
func (s *Session) InsertTest(ctx context.Context, result store.TestResult) error {
	if result.Hostname == "" || result.Test == "" {
		return errors.New("hostname and test are required")
	}
	_, err := s.conn.Exec(ctx, insertTest,
		result.Hostname,
		result.Test,
		result.Threads,
		result.Run,
		result.Result,
	)
	if err != nil {
		return fmt.Errorf("failed to insert test: %w", err)
	}
	return nil
}

// EnsureSchema creates the tests relation if it does not exist yet.
func EnsureSchema(ctx context.Context, conn querier) error {
	if _, err := conn.Exec(ctx, createTestsTable); err != nil {
		return fmt.Errorf("failed to create tests table: %w", err)
	}
	return nil
}
