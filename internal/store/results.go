package store

import (
	"context"
	"errors"
)

// ErrNotFound signals that a specifically requested resource has no rows.
var ErrNotFound = errors.New("result not found")

// TestResult is one recorded benchmark run, a row of the tests relation.
type TestResult struct {
	// ID is assigned by the store on insert and is only used for deletion.
	ID int32
	// Hostname identifies the machine that produced the result.
	Hostname string
	// Test names the benchmark.
	Test string
	// Threads is the thread count used for the run.
	Threads int32
	// Run is the run index; repeated runs of the same test/threads are allowed.
	Run int32
	// Result is the measured value (throughput, latency, ...).
	Result float64
}

// AggregatedResult is the mean result of every run sharing
// (hostname, test, threads). It is recomputed on every read.
type AggregatedResult struct {
	Hostname      string
	Test          string
	Threads       int32
	AverageResult float64
}

// ResultRepository runs the fixed set of result queries.
type ResultRepository interface {
	// ListHosts returns every distinct hostname.
	ListHosts(ctx context.Context) ([]string, error)
	// ListAggregatedTests averages results per (hostname, test, threads), ordered by test.
	ListAggregatedTests(ctx context.Context) ([]AggregatedResult, error)
	// ListHostAggregatedTests averages one host's results per (test, threads), ordered by test.
	// It returns ErrNotFound when the host has no rows.
	ListHostAggregatedTests(ctx context.Context, hostname string) ([]AggregatedResult, error)
	// DeleteTest removes the row with the given id and reports rows affected.
	DeleteTest(ctx context.Context, id int32) (int64, error)
	// InsertTest appends one row; ID on the argument is ignored.
	InsertTest(ctx context.Context, result TestResult) error
}

// Session is a ResultRepository bound to one exclusively held connection.
// Release returns the connection and must be called exactly once.
type Session interface {
	ResultRepository
	Release()
}

// Sessions hands out request-scoped sessions from a shared pool.
type Sessions interface {
	// Acquire borrows one connection for the caller's exclusive use.
	Acquire(ctx context.Context) (Session, error)
	// Ping reports whether the backing store is reachable.
	Ping(ctx context.Context) error
}
