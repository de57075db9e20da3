// Package memory provides in-memory implementations for development/testing.
package memory

import (
	"cmp"
	"context"
	"errors"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/JakeFAU/pgrapher/internal/store"
)

// ResultStore keeps result rows in memory and hands out sessions over them.
type ResultStore struct {
	mu     sync.RWMutex
	rows   []store.TestResult
	nextID int32
	leased atomic.Int64
}

var _ store.Sessions = (*ResultStore)(nil)

// NewResultStore constructs an empty ResultStore.
func NewResultStore() *ResultStore {
	return &ResultStore{nextID: 1}
}

// Acquire returns a session over the shared rows.
func (s *ResultStore) Acquire(ctx context.Context) (store.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.leased.Add(1)
	return &session{store: s}, nil
}

// Ping always succeeds.
func (s *ResultStore) Ping(context.Context) error { return nil }

// EnsureSchema is a no-op; the rows slice is the schema.
func (s *ResultStore) EnsureSchema(context.Context) error { return nil }

// Close is a no-op.
func (s *ResultStore) Close() {}

// Leased reports how many sessions are acquired and not yet released.
func (s *ResultStore) Leased() int64 {
	return s.leased.Load()
}

// Rows returns a copy of every stored row in insertion order.
func (s *ResultStore) Rows() []store.TestResult {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.rows)
}

type session struct {
	store *ResultStore
	once  sync.Once
}

func (c *session) Release() {
	c.once.Do(func() {
		c.store.leased.Add(-1)
	})
}

func (c *session) ListHosts(context.Context) ([]string, error) {
	s := c.store
	s.mu.RLock()
	defer s.mu.RUnlock()
	seen := make(map[string]struct{}, len(s.rows))
	hosts := make([]string, 0)
	for _, row := range s.rows {
		if _, ok := seen[row.Hostname]; ok {
			continue
		}
		seen[row.Hostname] = struct{}{}
		hosts = append(hosts, row.Hostname)
	}
	slices.Sort(hosts)
	return hosts, nil
}

func (c *session) ListAggregatedTests(context.Context) ([]store.AggregatedResult, error) {
	s := c.store
	s.mu.RLock()
	defer s.mu.RUnlock()
	return aggregate(s.rows, func(store.TestResult) bool { return true }), nil
}

func (c *session) ListHostAggregatedTests(_ context.Context, hostname string) ([]store.AggregatedResult, error) {
	s := c.store
	s.mu.RLock()
	defer s.mu.RUnlock()
	results := aggregate(s.rows, func(r store.TestResult) bool { return r.Hostname == hostname })
	if len(results) == 0 {
		return nil, store.ErrNotFound
	}
	return results, nil
}

func (c *session) DeleteTest(_ context.Context, id int32) (int64, error) {
	s := c.store
	s.mu.Lock()
	defer s.mu.Unlock()
	before := len(s.rows)
	s.rows = slices.DeleteFunc(s.rows, func(r store.TestResult) bool { return r.ID == id })
	return int64(before - len(s.rows)), nil
}

func (c *session) InsertTest(_ context.Context, result store.TestResult) error {
	if result.Hostname == "" || result.Test == "" {
		return errors.New("hostname and test are required")
	}
	s := c.store
	s.mu.Lock()
	defer s.mu.Unlock()
	result.ID = s.nextID
	s.nextID++
	s.rows = append(s.rows, result)
	return nil
}

type aggregateKey struct {
	hostname string
	test     string
	threads  int32
}

// aggregate averages the matching rows per (hostname, test, threads), ordered
// by test, then hostname, then threads.
func aggregate(rows []store.TestResult, keep func(store.TestResult) bool) []store.AggregatedResult {
	type acc struct {
		sum   float64
		count int
	}
	groups := make(map[aggregateKey]*acc)
	for _, row := range rows {
		if !keep(row) {
			continue
		}
		key := aggregateKey{hostname: row.Hostname, test: row.Test, threads: row.Threads}
		a, ok := groups[key]
		if !ok {
			a = &acc{}
			groups[key] = a
		}
		a.sum += row.Result
		a.count++
	}
	out := make([]store.AggregatedResult, 0, len(groups))
	for key, a := range groups {
		out = append(out, store.AggregatedResult{
			Hostname:      key.hostname,
			Test:          key.test,
			Threads:       key.threads,
			AverageResult: a.sum / float64(a.count),
		})
	}
	slices.SortFunc(out, func(a, b store.AggregatedResult) int {
		return cmp.Or(
			cmp.Compare(a.Test, b.Test),
			cmp.Compare(a.Hostname, b.Hostname),
			cmp.Compare(a.Threads, b.Threads),
		)
	})
	return out
}
