package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestInit(t *testing.T) {
	// Call Init multiple times to test idempotency.
	Init()
	Init()

	if httpRequestsTotal == nil || httpRequestDurationSeconds == nil ||
		dbSessionsInUse == nil || dbAcquireFailuresTotal == nil ||
		resultsInsertedTotal == nil || resultsDeletedTotal == nil {
		t.Fatal("Init() did not initialize metrics collectors")
	}
}

func TestSessionGauge(t *testing.T) {
	Init()
	before := testutil.ToFloat64(dbSessionsInUse)

	IncSessionsInUse()
	IncSessionsInUse()
	if got := testutil.ToFloat64(dbSessionsInUse); got != before+2 {
		t.Errorf("expected gauge %f, got %f", before+2, got)
	}
	DecSessionsInUse()
	DecSessionsInUse()
	if got := testutil.ToFloat64(dbSessionsInUse); got != before {
		t.Errorf("expected gauge back at %f, got %f", before, got)
	}
}

func TestResultCounters(t *testing.T) {
	Init()
	inserted := testutil.ToFloat64(resultsInsertedTotal)
	deleted := testutil.ToFloat64(resultsDeletedTotal)
	failures := testutil.ToFloat64(dbAcquireFailuresTotal)

	ObserveInsert()
	ObserveDelete(0)
	ObserveDelete(2)
	ObserveAcquireFailure()

	if got := testutil.ToFloat64(resultsInsertedTotal); got != inserted+1 {
		t.Errorf("expected inserted %f, got %f", inserted+1, got)
	}
	if got := testutil.ToFloat64(resultsDeletedTotal); got != deleted+2 {
		t.Errorf("expected deleted %f, got %f", deleted+2, got)
	}
	if got := testutil.ToFloat64(dbAcquireFailuresTotal); got != failures+1 {
		t.Errorf("expected failures %f, got %f", failures+1, got)
	}
}
