package memory

import (
	"context"
	"testing"

	"github.com/JakeFAU/pgrapher/internal/store"
)

func TestResultStoreLifecycle(t *testing.T) {
	t.Parallel()

	rs := NewResultStore()
	ctx := context.Background()

	sess, err := rs.Acquire(ctx)
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	if rs.Leased() != 1 {
		t.Fatalf("expected 1 leased session, got %d", rs.Leased())
	}

	hosts, err := sess.ListHosts(ctx)
	if err != nil || len(hosts) != 0 || hosts == nil {
		t.Fatalf("expected empty non-nil host list, got %v err=%v", hosts, err)
	}

	inputs := []store.TestResult{
		{Hostname: "node2", Test: "io", Threads: 1, Run: 1, Result: 3},
		{Hostname: "node1", Test: "cpu", Threads: 4, Run: 1, Result: 12.5},
		{Hostname: "node1", Test: "cpu", Threads: 4, Run: 2, Result: 13.5},
	}
	for _, in := range inputs {
		if err := sess.InsertTest(ctx, in); err != nil {
			t.Fatalf("InsertTest() error = %v", err)
		}
	}

	results, err := sess.ListAggregatedTests(ctx)
	if err != nil {
		t.Fatalf("ListAggregatedTests() error = %v", err)
	}
	want := []store.AggregatedResult{
		{Hostname: "node1", Test: "cpu", Threads: 4, AverageResult: 13},
		{Hostname: "node2", Test: "io", Threads: 1, AverageResult: 3},
	}
	if len(results) != len(want) {
		t.Fatalf("expected %d results, got %v", len(want), results)
	}
	for i := range want {
		if results[i] != want[i] {
			t.Fatalf("result[%d] = %+v; want %+v", i, results[i], want[i])
		}
	}

	hosts, _ = sess.ListHosts(ctx)
	if len(hosts) != 2 || hosts[0] != "node1" || hosts[1] != "node2" {
		t.Fatalf("unexpected hosts %v", hosts)
	}

	if _, err := sess.ListHostAggregatedTests(ctx, "ghost"); err != store.ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	rows := rs.Rows()
	affected, err := sess.DeleteTest(ctx, rows[0].ID)
	if err != nil || affected != 1 {
		t.Fatalf("DeleteTest() = %d, %v", affected, err)
	}
	affected, _ = sess.DeleteTest(ctx, rows[0].ID)
	if affected != 0 {
		t.Fatalf("expected second delete to affect 0 rows, got %d", affected)
	}

	sess.Release()
	sess.Release()
	if rs.Leased() != 0 {
		t.Fatalf("expected no leased sessions, got %d", rs.Leased())
	}
}

func TestResultStoreAcquireCanceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewResultStore().Acquire(ctx); err == nil {
		t.Fatal("expected error for canceled context")
	}
}

func TestResultStoreAssignsUniqueIDs(t *testing.T) {
	t.Parallel()

	rs := NewResultStore()
	sess, _ := rs.Acquire(context.Background())
	defer sess.Release()
	for i := 0; i < 3; i++ {
		if err := sess.InsertTest(context.Background(), store.TestResult{Hostname: "h", Test: "t"}); err != nil {
			t.Fatalf("InsertTest() error = %v", err)
		}
	}
	seen := map[int32]bool{}
	for _, row := range rs.Rows() {
		if seen[row.ID] {
			t.Fatalf("duplicate id %d", row.ID)
		}
		seen[row.ID] = true
	}
}
