package policy_test

import (
	"errors"
	"testing"

	"github.com/justapithecus/objext/policy"
)

func TestStrictPolicy_Ingest_ImmediateWrite(t *testing.T) {
	sink := policy.NewStubSink()
	pol := policy.NewStrictPolicy(sink)

	if err := pol.Ingest(t.Context(), eventRecords(1, 3)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	sinkStats := sink.Stats()
	if sinkStats.RecordsWritten != 3 {
		t.Errorf("expected 3 records written immediately, got %d", sinkStats.RecordsWritten)
	}
	if sinkStats.Batches != 1 {
		t.Errorf("expected 1 batch, got %d", sinkStats.Batches)
	}

	stats := pol.Stats()
	if stats.TotalBatches != 1 || stats.TotalRecords != 3 || stats.RecordsPersisted != 3 {
		t.Errorf("unexpected stats: %+v", stats)
	}
}

func TestStrictPolicy_EmptyBatchNotWritten(t *testing.T) {
	sink := policy.NewStubSink()
	pol := policy.NewStrictPolicy(sink)

	if err := pol.Ingest(t.Context(), nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sink.Stats().Batches != 0 {
		t.Errorf("expected no sink write for empty batch, got %d", sink.Stats().Batches)
	}
	if pol.Stats().TotalBatches != 1 {
		t.Errorf("expected empty batch to be counted, got %d", pol.Stats().TotalBatches)
	}
}

func TestStrictPolicy_PreservesOrder(t *testing.T) {
	sink := policy.NewStubSink()
	pol := policy.NewStrictPolicy(sink)

	for ev := uint64(1); ev <= 3; ev++ {
		if err := pol.Ingest(t.Context(), eventRecords(ev, 2)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	if len(sink.Written) != 6 {
		t.Fatalf("expected 6 records, got %d", len(sink.Written))
	}
	for i, rec := range sink.Written {
		wantEvent := uint64(i/2 + 1)
		if rec.Event != wantEvent || rec.Index != i%2 {
			t.Errorf("record %d = event %d index %d, want event %d index %d",
				i, rec.Event, rec.Index, wantEvent, i%2)
		}
	}
}

func TestStrictPolicy_SinkError(t *testing.T) {
	sink := policy.NewStubSink()
	sinkErr := errors.New("disk full")
	sink.ErrorOnWrite = sinkErr
	pol := policy.NewStrictPolicy(sink)

	err := pol.Ingest(t.Context(), eventRecords(1, 1))
	if !errors.Is(err, sinkErr) {
		t.Fatalf("expected sink error, got %v", err)
	}

	stats := pol.Stats()
	if stats.Errors != 1 {
		t.Errorf("expected Errors=1, got %d", stats.Errors)
	}
	if stats.RecordsPersisted != 0 {
		t.Errorf("expected RecordsPersisted=0, got %d", stats.RecordsPersisted)
	}
}

func TestStrictPolicy_CloseClosesSink(t *testing.T) {
	sink := policy.NewStubSink()
	pol := policy.NewStrictPolicy(sink)

	if err := pol.Flush(t.Context()); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if err := pol.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if !sink.Stats().Closed {
		t.Error("expected sink to be closed")
	}
	if pol.Stats().FlushCount != 1 {
		t.Errorf("expected FlushCount=1, got %d", pol.Stats().FlushCount)
	}
}
