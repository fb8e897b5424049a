package policy

import (
	"context"
	"sync"

	"github.com/justapithecus/objext/types"
)

// NoopPolicy accepts all records without persisting them.
// Used for dry runs, where records are counted as persisted so stats
// match what a real sink would have received.
type NoopPolicy struct {
	mu    sync.Mutex
	stats Stats
}

// NewNoopPolicy creates a new no-op policy.
func NewNoopPolicy() *NoopPolicy {
	return &NoopPolicy{}
}

// Ingest counts the batch.
func (p *NoopPolicy) Ingest(_ context.Context, records []types.AttributeRecord) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.stats.TotalBatches++
	p.stats.TotalRecords += int64(len(records))
	p.stats.RecordsPersisted += int64(len(records))
	return nil
}

// Flush is a no-op.
func (p *NoopPolicy) Flush(_ context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.stats.FlushCount++
	return nil
}

// Close is a no-op.
func (p *NoopPolicy) Close() error {
	return nil
}

// Stats returns policy statistics.
func (p *NoopPolicy) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.stats
}
