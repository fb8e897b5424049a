package reader

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"testing"
	"time"

	lodelib "github.com/justapithecus/lode/lode"

	"github.com/justapithecus/objext/lode"
	"github.com/justapithecus/objext/metrics"
	"github.com/justapithecus/objext/store"
	"github.com/justapithecus/objext/types"
)

type memOpener map[string][]byte

func (o memOpener) Open(_ context.Context, uri string) (io.ReadCloser, error) {
	data, ok := o[uri]
	if !ok {
		return nil, fmt.Errorf("open %s: not found", uri)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func writeStore(t *testing.T, header bool, events ...*types.Event) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := store.NewWriter(&buf)
	if header {
		if err := w.WriteHeader("reader-test"); err != nil {
			t.Fatalf("write header: %v", err)
		}
	}
	for _, ev := range events {
		if err := w.WriteEvent(ev); err != nil {
			t.Fatalf("write event: %v", err)
		}
	}
	return buf.Bytes()
}

func event(run, num uint64, muons, electrons int) *types.Event {
	ev := &types.Event{Run: run, Lumi: 1, Event: num, Collections: map[string]types.Collection{}}
	if muons >= 0 {
		objs := make([]types.PhysicsObject, muons)
		for i := range objs {
			objs[i] = types.PhysicsObject{Px: 1, IsGlobal: i%2 == 0}
		}
		ev.Collections["muons"] = types.Collection{Kind: types.KindMuon, Objects: objs}
	}
	if electrons >= 0 {
		ev.Collections["electrons"] = types.Collection{
			Kind:    types.KindElectron,
			Objects: make([]types.PhysicsObject, electrons),
		}
	}
	return ev
}

func TestInspectStore_Summary(t *testing.T) {
	opener := memOpener{"events.objs": writeStore(t, true,
		event(2, 10, 3, 1),
		event(1, 11, 0, -1),
		event(2, 12, 1, 2),
	)}

	resp, err := InspectStore(t.Context(), opener, "events.objs", 0)
	if err != nil {
		t.Fatalf("InspectStore: %v", err)
	}

	if resp.Events != 3 || resp.Truncated {
		t.Errorf("events=%d truncated=%v", resp.Events, resp.Truncated)
	}
	if resp.Producer != "reader-test" || resp.FormatVersion != types.StoreFormatVersion {
		t.Errorf("unexpected header: producer=%q version=%d", resp.Producer, resp.FormatVersion)
	}
	if len(resp.Runs) != 2 || resp.Runs[0] != 1 || resp.Runs[1] != 2 {
		t.Errorf("runs = %v, want [1 2]", resp.Runs)
	}
	if resp.FirstEvent.Event != 10 || resp.LastEvent.Event != 12 {
		t.Errorf("first=%+v last=%+v", resp.FirstEvent, resp.LastEvent)
	}

	if len(resp.Collections) != 2 {
		t.Fatalf("collections = %d, want 2", len(resp.Collections))
	}
	el, mu := resp.Collections[0], resp.Collections[1]
	if el.Name != "electrons" || el.Events != 2 || el.Objects != 3 || el.MaxPerEvent != 2 {
		t.Errorf("unexpected electrons summary: %+v", el)
	}
	if mu.Name != "muons" || mu.Kind != "muon" || mu.Events != 3 || mu.Objects != 4 || mu.MaxPerEvent != 3 {
		t.Errorf("unexpected muons summary: %+v", mu)
	}
	if mu.Global != 3 {
		t.Errorf("global muons = %d, want 3", mu.Global)
	}
	if got := el.MeanPerEvent(); got != 1.5 {
		t.Errorf("mean = %v, want 1.5", got)
	}
}

func TestInspectStore_Limit(t *testing.T) {
	opener := memOpener{"events.objs": writeStore(t, false,
		event(1, 1, 1, -1), event(1, 2, 1, -1), event(1, 3, 1, -1),
	)}

	resp, err := InspectStore(t.Context(), opener, "events.objs", 2)
	if err != nil {
		t.Fatalf("InspectStore: %v", err)
	}
	if resp.Events != 2 || !resp.Truncated {
		t.Errorf("events=%d truncated=%v, want 2 true", resp.Events, resp.Truncated)
	}
	if resp.FormatVersion != 0 {
		t.Errorf("headerless store should report version 0, got %d", resp.FormatVersion)
	}
}

func TestInspectStore_EmptyStore(t *testing.T) {
	opener := memOpener{"empty.objs": nil}

	resp, err := InspectStore(t.Context(), opener, "empty.objs", 0)
	if err != nil {
		t.Fatalf("InspectStore: %v", err)
	}
	if resp.Events != 0 || len(resp.Collections) != 0 || resp.FirstEvent != nil {
		t.Errorf("unexpected summary for empty store: %+v", resp)
	}
}

func TestInspectStore_OpenError(t *testing.T) {
	if _, err := InspectStore(t.Context(), memOpener{}, "missing.objs", 0); err == nil {
		t.Fatal("expected open error")
	}
}

func TestInspectStore_TruncatedFrame(t *testing.T) {
	data := writeStore(t, false, event(1, 1, 2, -1))
	opener := memOpener{"bad.objs": data[:len(data)-3]}

	_, err := InspectStore(t.Context(), opener, "bad.objs", 0)
	if err == nil {
		t.Fatal("expected decode error")
	}
	if !store.IsFatalFrameError(err) {
		t.Errorf("expected frame error, got %v", err)
	}
}

func TestStatsMetrics_ReadsLatest(t *testing.T) {
	mem := lodelib.NewMemory()
	factory := func() (lodelib.Store, error) { return mem, nil }

	for i, jobID := range []string{"job-a", "job-b"} {
		client, err := lode.NewLodeClientWithFactory(lode.Config{
			Dataset:    "objext",
			Analyzer:   "muon",
			Collection: "muons",
			Day:        "2026-02-07",
			JobID:      jobID,
		}, factory)
		if err != nil {
			t.Fatalf("client: %v", err)
		}
		snap := metrics.Snapshot{
			JobsStarted:     1,
			JobsCompleted:   1,
			EventsRead:      int64(10 * (i + 1)),
			ResolveErrors:   map[string]int64{"not_found": int64(i)},
			Analyzer:        "muon",
			Policy:          "strict",
			SinkMode:        "lode",
			StorageBackend:  "fs",
			JobID:           jobID,
			EventsProcessed: int64(10 * (i + 1)),
		}
		if err := client.WriteMetrics(t.Context(), snap, time.Date(2026, 2, 7, 12, i, 0, 0, time.UTC)); err != nil {
			t.Fatalf("write metrics: %v", err)
		}
	}

	ds, err := lode.NewReadDataset("objext", factory)
	if err != nil {
		t.Fatalf("read dataset: %v", err)
	}

	latest, err := StatsMetrics(t.Context(), ds, "", "")
	if err != nil {
		t.Fatalf("StatsMetrics: %v", err)
	}
	if latest.JobID != "job-b" || latest.EventsRead != 20 {
		t.Errorf("unexpected latest snapshot: %+v", latest)
	}

	first, err := StatsMetrics(t.Context(), ds, "job-a", "muon")
	if err != nil {
		t.Fatalf("StatsMetrics(job-a): %v", err)
	}
	if first.EventsRead != 10 || first.Collection != "muons" {
		t.Errorf("unexpected job-a snapshot: %+v", first)
	}

	if _, err := StatsMetrics(t.Context(), ds, "job-z", ""); !errors.Is(err, lode.ErrNoMetricsFound) {
		t.Errorf("expected ErrNoMetricsFound, got %v", err)
	}
}
