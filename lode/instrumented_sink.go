package lode

import (
	"context"

	"github.com/justapithecus/objext/metrics"
	"github.com/justapithecus/objext/policy"
	"github.com/justapithecus/objext/types"
)

// InstrumentedSink wraps a policy.Sink and records write outcomes.
// Each WriteRecords call increments sink_write_success or
// sink_write_failure on the metrics collector.
type InstrumentedSink struct {
	inner     policy.Sink
	collector *metrics.Collector
}

// NewInstrumentedSink wraps a sink with metrics instrumentation.
func NewInstrumentedSink(inner policy.Sink, collector *metrics.Collector) *InstrumentedSink {
	return &InstrumentedSink{inner: inner, collector: collector}
}

// WriteRecords delegates to the inner sink and records success or failure.
func (s *InstrumentedSink) WriteRecords(ctx context.Context, records []types.AttributeRecord) error {
	err := s.inner.WriteRecords(ctx, records)
	if err != nil {
		s.collector.IncSinkWriteFailure()
	} else {
		s.collector.IncSinkWriteSuccess()
	}
	return err
}

// Close delegates to the inner sink.
func (s *InstrumentedSink) Close() error {
	return s.inner.Close()
}

// Verify InstrumentedSink implements policy.Sink.
var _ policy.Sink = (*InstrumentedSink)(nil)
