package policy

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/justapithecus/objext/log"
	"github.com/justapithecus/objext/types"
)

// BufferedConfig configures a BufferedPolicy.
type BufferedConfig struct {
	// MaxBufferRecords is the number of records that triggers a flush.
	// Must be positive.
	MaxBufferRecords int

	// Logger is an optional logger for policy observability.
	// If nil, no logging is emitted.
	Logger *log.Logger

	// CloseTimeout bounds the final flush in Close. Zero means no bound.
	CloseTimeout time.Duration
}

// DefaultBufferedConfig returns sensible defaults for buffered policy.
func DefaultBufferedConfig() BufferedConfig {
	return BufferedConfig{
		MaxBufferRecords: 1000,
	}
}

// ErrInvalidConfig is returned when BufferedConfig is invalid.
var ErrInvalidConfig = errors.New("invalid config: MaxBufferRecords must be positive")

// BufferedPolicy accumulates records and writes them in batches.
//
//   - Bounded buffer: a batch that would exceed MaxBufferRecords first
//     flushes the buffer
//   - A single event larger than the limit is buffered whole, never split
//   - Flush at job end and on every exit path
//   - At-least-once: the buffer is kept intact when a write fails
//   - Close does not retry a flush that already failed
type BufferedPolicy struct {
	sink   Sink
	config BufferedConfig
	logger *log.Logger

	mu     sync.Mutex // guards buffer state only
	buffer []types.AttributeRecord
	failed bool // last flush failed
	stats  *statsRecorder
}

// NewBufferedPolicy creates a new buffered policy.
// Returns error if config is invalid.
func NewBufferedPolicy(sink Sink, config BufferedConfig) (*BufferedPolicy, error) {
	if config.MaxBufferRecords <= 0 {
		return nil, ErrInvalidConfig
	}

	return &BufferedPolicy{
		sink:   sink,
		config: config,
		logger: config.Logger,
		buffer: make([]types.AttributeRecord, 0, min(config.MaxBufferRecords, 4096)),
		stats:  newStatsRecorder(),
	}, nil
}

// Ingest buffers the batch, flushing first when it would not fit.
func (p *BufferedPolicy) Ingest(ctx context.Context, records []types.AttributeRecord) error {
	p.mu.Lock()
	p.stats.incBatchLocked(len(records))
	full := len(p.buffer) > 0 && len(p.buffer)+len(records) > p.config.MaxBufferRecords
	p.mu.Unlock()

	if len(records) == 0 {
		return nil
	}

	if full {
		if err := p.Flush(ctx); err != nil {
			return err
		}
	}

	p.mu.Lock()
	p.buffer = append(p.buffer, records...)
	p.mu.Unlock()
	return nil
}

// Flush writes all buffered records to the sink in one batch.
// On failure the buffer is preserved.
func (p *BufferedPolicy) Flush(ctx context.Context) error {
	p.mu.Lock()
	p.stats.incFlushLocked()
	records := p.buffer
	p.mu.Unlock()

	if len(records) == 0 {
		return nil
	}

	if err := p.sink.WriteRecords(ctx, records); err != nil {
		p.mu.Lock()
		p.stats.incErrorsLocked()
		p.failed = true
		p.mu.Unlock()
		p.logFlushFailure(len(records), err)
		return err
	}

	p.mu.Lock()
	p.stats.incPersistedLocked(len(records))
	p.buffer = make([]types.AttributeRecord, 0, cap(records))
	p.failed = false
	p.mu.Unlock()

	return nil
}

// Close flushes remaining records and closes the sink. When the last
// flush failed the sink is closed without another write; the records
// stay counted in BufferSize. Returns the flush error joined with the
// close error.
func (p *BufferedPolicy) Close() error {
	p.mu.Lock()
	failed := p.failed
	p.mu.Unlock()

	var flushErr error
	if !failed {
		ctx, cancel := p.closeContext()
		flushErr = p.Flush(ctx)
		cancel()
	}
	return errors.Join(flushErr, p.sink.Close())
}

func (p *BufferedPolicy) closeContext() (context.Context, context.CancelFunc) {
	if p.config.CloseTimeout <= 0 {
		return context.Background(), func() {}
	}
	return context.WithTimeout(context.Background(), p.config.CloseTimeout)
}

// Stats returns an atomic snapshot of policy statistics.
func (p *BufferedPolicy) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.stats.snapshotLocked(int64(len(p.buffer)))
}

func (p *BufferedPolicy) logFlushFailure(records int, err error) {
	if p.logger == nil {
		return
	}
	p.logger.Error("flush failed", map[string]any{
		"records": records,
		"error":   err.Error(),
		"policy":  "buffered",
	})
}
