// Package lode provides Lode-backed dataset storage for extracted records.
package lode

import (
	"context"
	"sync"
	"time"

	"github.com/justapithecus/objext/metrics"
	"github.com/justapithecus/objext/policy"
	"github.com/justapithecus/objext/types"
)

// DefaultDataset is the dataset ID used when none is configured.
const DefaultDataset = "objext"

// DeriveDay computes the partition day from job start time.
// Format: YYYY-MM-DD in UTC.
func DeriveDay(startTime time.Time) string {
	return startTime.UTC().Format("2006-01-02")
}

// Config holds Lode sink configuration.
// All partition keys are required.
type Config struct {
	// Dataset is the Lode dataset ID.
	Dataset string
	// Analyzer is the partition key for the analyzer name.
	Analyzer string
	// Collection is the partition key for the input collection tag.
	Collection string
	// Day is the partition key derived from job start time (YYYY-MM-DD UTC).
	Day string
	// JobID is the partition key for the job identifier.
	JobID string
}

// Client abstracts the Lode storage client.
type Client interface {
	// WriteRecords writes a batch of records described by schema.
	// Must preserve ordering within the batch.
	WriteRecords(ctx context.Context, schema types.Schema, records []types.AttributeRecord) error

	// WriteMetrics writes a job metrics snapshot.
	WriteMetrics(ctx context.Context, snap metrics.Snapshot, completedAt time.Time) error

	// Close releases client resources.
	Close() error
}

// Sink is a Lode-backed implementation of policy.Sink.
type Sink struct {
	schema types.Schema
	client Client
}

// NewSink creates a new Lode sink for records of the given schema.
func NewSink(schema types.Schema, client Client) *Sink {
	return &Sink{
		schema: schema,
		client: client,
	}
}

// WriteRecords implements policy.Sink.
func (s *Sink) WriteRecords(ctx context.Context, records []types.AttributeRecord) error {
	if len(records) == 0 {
		return nil
	}
	return s.client.WriteRecords(ctx, s.schema, records)
}

// WriteMetrics forwards a metrics snapshot to the client.
func (s *Sink) WriteMetrics(ctx context.Context, snap metrics.Snapshot, completedAt time.Time) error {
	return s.client.WriteMetrics(ctx, snap, completedAt)
}

// Close implements policy.Sink.
func (s *Sink) Close() error {
	return s.client.Close()
}

// Verify Sink implements policy.Sink.
var _ policy.Sink = (*Sink)(nil)

// StubClient is a test client that accepts writes without persisting.
type StubClient struct {
	mu      sync.Mutex
	Batches [][]types.AttributeRecord
	Metrics []metrics.Snapshot
	Closed  bool
}

// NewStubClient creates a new stub client.
func NewStubClient() *StubClient {
	return &StubClient{}
}

// WriteRecords implements Client.
func (c *StubClient) WriteRecords(_ context.Context, _ types.Schema, records []types.AttributeRecord) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Batches = append(c.Batches, records)
	return nil
}

// WriteMetrics implements Client.
func (c *StubClient) WriteMetrics(_ context.Context, snap metrics.Snapshot, _ time.Time) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Metrics = append(c.Metrics, snap)
	return nil
}

// Close implements Client.
func (c *StubClient) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Closed = true
	return nil
}

// Verify StubClient implements Client.
var _ Client = (*StubClient)(nil)
