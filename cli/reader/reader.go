// Package reader loads the read-only views behind inspect and stats:
// event store summaries and job metrics read back from a lode dataset.
package reader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"

	lodelib "github.com/justapithecus/lode/lode"

	"github.com/justapithecus/objext/iox"
	"github.com/justapithecus/objext/lode"
	"github.com/justapithecus/objext/source"
	"github.com/justapithecus/objext/store"
	"github.com/justapithecus/objext/types"
)

// InspectStore reads a store file and summarizes its collections.
// A positive limit stops after that many events and marks the result truncated.
func InspectStore(ctx context.Context, opener source.Opener, uri string, limit int64) (*InspectStoreResponse, error) {
	rc, err := opener.Open(ctx, uri)
	if err != nil {
		return nil, err
	}
	defer iox.DiscardClose(rc)

	resp := &InspectStoreResponse{Input: uri, Runs: []uint64{}, Collections: []CollectionSummary{}}
	byName := make(map[string]*CollectionSummary)
	var order []string

	r := store.NewReader(rc)
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if limit > 0 && resp.Events >= limit {
			resp.Truncated = true
			break
		}

		ev, err := r.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read %s after %d events: %w", uri, resp.Events, err)
		}

		resp.Events++
		ref := &EventRef{Run: ev.Run, Lumi: ev.Lumi, Event: ev.Event}
		if resp.FirstEvent == nil {
			resp.FirstEvent = ref
		}
		resp.LastEvent = ref
		if !slices.Contains(resp.Runs, ev.Run) {
			resp.Runs = append(resp.Runs, ev.Run)
		}

		for name, coll := range ev.Collections {
			s, ok := byName[name]
			if !ok {
				s = &CollectionSummary{Name: name, Kind: string(coll.Kind)}
				byName[name] = s
				order = append(order, name)
			}
			s.Events++
			s.Objects += int64(len(coll.Objects))
			s.MaxPerEvent = max(s.MaxPerEvent, len(coll.Objects))
			if coll.Kind == types.KindMuon {
				for _, obj := range coll.Objects {
					if obj.IsGlobal {
						s.Global++
					}
				}
			}
		}
	}

	if h := r.Header(); h != nil {
		resp.FormatVersion = h.FormatVersion
		resp.Producer = h.Producer
	}

	slices.Sort(order)
	for _, name := range order {
		resp.Collections = append(resp.Collections, *byName[name])
	}
	slices.Sort(resp.Runs)
	return resp, nil
}

// StatsMetrics returns the latest metrics snapshot in the dataset, optionally
// filtered by job ID and analyzer.
func StatsMetrics(ctx context.Context, ds lodelib.Dataset, jobID, analyzer string) (*MetricsSnapshot, error) {
	record, err := lode.QueryLatestMetrics(ctx, ds, jobID, analyzer)
	if err != nil {
		return nil, err
	}
	return ParseMetricsRecord(record)
}
