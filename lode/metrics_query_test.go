package lode

import (
	"errors"
	"testing"
	"time"

	"github.com/justapithecus/lode/lode"

	"github.com/justapithecus/objext/metrics"
	"github.com/justapithecus/objext/types"
)

func TestQueryLatestMetrics_WriteAndRead(t *testing.T) {
	store := lode.NewMemory()
	factory := sharedFactory(store)
	cfg := testConfig("job-001")

	client, err := NewLodeClientWithFactory(cfg, factory)
	if err != nil {
		t.Fatalf("NewLodeClientWithFactory failed: %v", err)
	}

	// Object records must not be mistaken for metrics.
	if err := client.WriteRecords(t.Context(), testSchema(), []types.AttributeRecord{testRecord(1, 0, 2, 1)}); err != nil {
		t.Fatalf("WriteRecords failed: %v", err)
	}

	snap := metrics.Snapshot{
		JobsStarted:      1,
		JobsCompleted:    1,
		EventsRead:       42,
		EventsProcessed:  42,
		RecordsExtracted: 40,
		RecordsPersisted: 40,
		SinkWriteSuccess: 3,
		Policy:           "strict",
		SinkMode:         "lode",
		StorageBackend:   "memory",
		JobID:            "job-001",
	}
	completedAt := time.Date(2026, 10, 16, 15, 0, 0, 0, time.UTC)
	if err := client.WriteMetrics(t.Context(), snap, completedAt); err != nil {
		t.Fatalf("WriteMetrics failed: %v", err)
	}

	ds, err := NewReadDataset(cfg.Dataset, factory)
	if err != nil {
		t.Fatalf("NewReadDataset failed: %v", err)
	}

	record, err := QueryLatestMetrics(t.Context(), ds, "", "")
	if err != nil {
		t.Fatalf("QueryLatestMetrics failed: %v", err)
	}
	if toInt64(record["events_read"]) != 42 {
		t.Errorf("events_read = %v, want 42", record["events_read"])
	}
	if toInt64(record["records_persisted"]) != 40 {
		t.Errorf("records_persisted = %v, want 40", record["records_persisted"])
	}
	if record["policy"] != "strict" {
		t.Errorf("policy = %v, want strict", record["policy"])
	}
}

func TestQueryLatestMetrics_FiltersByJobAndAnalyzer(t *testing.T) {
	store := lode.NewMemory()
	factory := sharedFactory(store)

	write := func(cfg Config, events int64) {
		t.Helper()
		client, err := NewLodeClientWithFactory(cfg, factory)
		if err != nil {
			t.Fatalf("NewLodeClientWithFactory failed: %v", err)
		}
		if err := client.WriteMetrics(t.Context(), metrics.Snapshot{EventsRead: events}, time.Now()); err != nil {
			t.Fatalf("WriteMetrics failed: %v", err)
		}
	}

	cfg1 := testConfig("job-1")
	cfg10 := testConfig("job-10")
	cfgMuon := testConfig("job-2")
	cfgMuon.Analyzer = "muon"
	cfgMuon.Collection = "muons"

	write(cfg1, 1)
	write(cfg10, 10)
	write(cfgMuon, 2)

	ds, err := NewReadDataset("objext", factory)
	if err != nil {
		t.Fatalf("NewReadDataset failed: %v", err)
	}

	tests := []struct {
		name     string
		jobID    string
		analyzer string
		want     int64
	}{
		{"latest overall", "", "", 2},
		{"exact job id", "job-1", "", 1},
		{"job id prefix does not match", "job-10", "", 10},
		{"analyzer only", "", "electron", 10},
		{"job and analyzer", "job-2", "muon", 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			record, err := QueryLatestMetrics(t.Context(), ds, tt.jobID, tt.analyzer)
			if err != nil {
				t.Fatalf("QueryLatestMetrics failed: %v", err)
			}
			if got := toInt64(record["events_read"]); got != tt.want {
				t.Errorf("events_read = %d, want %d", got, tt.want)
			}
		})
	}

	_, err = QueryLatestMetrics(t.Context(), ds, "job-2", "electron")
	if !errors.Is(err, ErrNoMetricsFound) {
		t.Errorf("expected ErrNoMetricsFound, got %v", err)
	}
}

func TestQueryLatestMetrics_Empty(t *testing.T) {
	ds, err := NewReadDataset("objext", lode.NewMemoryFactory())
	if err != nil {
		t.Fatalf("NewReadDataset failed: %v", err)
	}
	if _, err := QueryLatestMetrics(t.Context(), ds, "", ""); !errors.Is(err, ErrNoMetricsFound) {
		t.Errorf("expected ErrNoMetricsFound, got %v", err)
	}
}
