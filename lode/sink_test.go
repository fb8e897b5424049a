package lode

import (
	"testing"
	"time"

	"github.com/justapithecus/objext/metrics"
	"github.com/justapithecus/objext/types"
)

func TestSink_WriteRecords(t *testing.T) {
	client := NewStubClient()
	sink := NewSink(testSchema(), client)

	batch := []types.AttributeRecord{testRecord(1, 0, 1, 1), testRecord(1, 1, 2, -1)}
	if err := sink.WriteRecords(t.Context(), batch); err != nil {
		t.Fatalf("WriteRecords failed: %v", err)
	}
	if err := sink.WriteRecords(t.Context(), nil); err != nil {
		t.Fatalf("empty WriteRecords failed: %v", err)
	}

	if len(client.Batches) != 1 {
		t.Fatalf("expected 1 batch forwarded, got %d", len(client.Batches))
	}
	if len(client.Batches[0]) != 2 || client.Batches[0][1].Index != 1 {
		t.Errorf("batch not forwarded in order: %+v", client.Batches[0])
	}
}

func TestSink_WriteMetricsAndClose(t *testing.T) {
	client := NewStubClient()
	sink := NewSink(testSchema(), client)

	if err := sink.WriteMetrics(t.Context(), metrics.Snapshot{EventsRead: 3}, time.Now()); err != nil {
		t.Fatalf("WriteMetrics failed: %v", err)
	}
	if len(client.Metrics) != 1 || client.Metrics[0].EventsRead != 3 {
		t.Errorf("metrics not forwarded: %+v", client.Metrics)
	}

	if err := sink.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if !client.Closed {
		t.Error("expected client to be closed")
	}
}
