package policy

import (
	"context"

	"github.com/justapithecus/objext/types"
)

// StrictPolicy implements synchronous, unbuffered persistence.
//
//   - No buffering: each event's records are written immediately
//   - Backpressure: caller blocks on sink latency
//   - Sink errors fail the job
type StrictPolicy struct {
	sink  Sink
	stats *statsRecorder
}

// NewStrictPolicy creates a new strict policy writing to the given sink.
func NewStrictPolicy(sink Sink) *StrictPolicy {
	return &StrictPolicy{
		sink:  sink,
		stats: newStatsRecorder(),
	}
}

// Ingest writes the batch immediately to the sink.
func (p *StrictPolicy) Ingest(ctx context.Context, records []types.AttributeRecord) error {
	p.stats.incBatch(len(records))
	if len(records) == 0 {
		return nil
	}

	if err := p.sink.WriteRecords(ctx, records); err != nil {
		p.stats.incErrors()
		return err
	}
	p.stats.incPersisted(len(records))
	return nil
}

// Flush is a no-op for strict policy (nothing buffered).
func (p *StrictPolicy) Flush(_ context.Context) error {
	p.stats.incFlush()
	return nil
}

// Close closes the sink.
func (p *StrictPolicy) Close() error {
	return p.sink.Close()
}

// Stats returns policy statistics.
func (p *StrictPolicy) Stats() Stats {
	return p.stats.snapshot()
}
