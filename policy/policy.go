// Package policy controls how per-event record batches reach a sink.
package policy

import (
	"context"
	"sync"

	"github.com/justapithecus/objext/types"
)

// Policy names accepted in configuration.
const (
	NameStrict   = "strict"
	NameBuffered = "buffered"
)

// Policy defines the delivery policy interface.
//
// Invariants:
//   - Records are never dropped or reordered
//   - One Ingest call carries the records of exactly one event
//   - An event's batch is never split across sink writes
//   - Sink failure is returned to the caller and terminates the job
type Policy interface {
	// Ingest accepts the records of one event. An empty batch is counted
	// but never written.
	Ingest(ctx context.Context, records []types.AttributeRecord) error

	// Flush writes any buffered records.
	// Called at job end, on every exit path.
	Flush(ctx context.Context) error

	// Close releases the policy and its sink.
	Close() error

	// Stats returns an atomic snapshot of policy metrics.
	Stats() Stats
}

// Stats represents policy observability metrics.
type Stats struct {
	// TotalBatches is the number of Ingest calls.
	TotalBatches int64
	// TotalRecords is the number of records received.
	TotalRecords int64
	// RecordsPersisted is the number of records accepted by the sink.
	RecordsPersisted int64
	// BufferSize is the number of records currently buffered.
	BufferSize int64
	// FlushCount is the number of flush operations.
	FlushCount int64
	// Errors is the count of sink errors encountered.
	Errors int64
}

// statsRecorder is an internal helper for thread-safe stats management.
//
// Lock discipline:
//   - StrictPolicy uses the locking methods (incBatch, snapshot, etc.)
//   - BufferedPolicy uses the Locked methods only while holding
//     BufferedPolicy.mu, keeping buffer state and counters consistent.
type statsRecorder struct {
	mu    sync.Mutex
	stats Stats
}

func newStatsRecorder() *statsRecorder {
	return &statsRecorder{}
}

func (r *statsRecorder) incBatch(records int) {
	r.mu.Lock()
	r.stats.TotalBatches++
	r.stats.TotalRecords += int64(records)
	r.mu.Unlock()
}

func (r *statsRecorder) incPersisted(n int) {
	r.mu.Lock()
	r.stats.RecordsPersisted += int64(n)
	r.mu.Unlock()
}

func (r *statsRecorder) incErrors() {
	r.mu.Lock()
	r.stats.Errors++
	r.mu.Unlock()
}

func (r *statsRecorder) incFlush() {
	r.mu.Lock()
	r.stats.FlushCount++
	r.mu.Unlock()
}

func (r *statsRecorder) snapshot() Stats {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stats
}

// --- Locked methods for BufferedPolicy ---
// Caller must hold BufferedPolicy.mu.

func (r *statsRecorder) incBatchLocked(records int) {
	r.stats.TotalBatches++
	r.stats.TotalRecords += int64(records)
}

func (r *statsRecorder) incPersistedLocked(n int) {
	r.stats.RecordsPersisted += int64(n)
}

func (r *statsRecorder) incErrorsLocked() {
	r.stats.Errors++
}

func (r *statsRecorder) incFlushLocked() {
	r.stats.FlushCount++
}

// snapshotLocked returns an atomic snapshot of stats with the given bufferSize.
func (r *statsRecorder) snapshotLocked(bufferSize int64) Stats {
	s := r.stats
	s.BufferSize = bufferSize
	return s
}
