// Package metrics provides per-job metrics collection.
//
// The Collector accumulates counters during a single job. It is a leaf package
// with no internal dependencies. Policy metrics are absorbed from policy.Stats
// at job completion rather than recorded live, avoiding double-counting.
package metrics

import "sync"

// Snapshot is an immutable point-in-time view of all job metrics.
// Returned by Collector.Snapshot(). Safe to read concurrently after creation.
type Snapshot struct {
	// Job lifecycle
	JobsStarted   int64 `json:"jobs_started"`
	JobsCompleted int64 `json:"jobs_completed"`
	JobsFailed    int64 `json:"jobs_failed"`
	JobsCanceled  int64 `json:"jobs_canceled"`

	// Input
	InputFilesOpened  int64 `json:"input_files_opened"`
	EventsRead        int64 `json:"events_read"`
	StoreDecodeErrors int64 `json:"store_decode_errors"`

	// Per-event pipeline
	EventsProcessed  int64            `json:"events_processed"`
	EventsWithErrors int64            `json:"events_with_errors"`
	ResolveErrors    map[string]int64 `json:"resolve_errors"`
	ObjectsResolved  int64            `json:"objects_resolved"`
	RecordsExtracted int64            `json:"records_extracted"`
	RecordsTruncated int64            `json:"records_truncated"`

	// Delivery (absorbed from policy.Stats at job completion)
	RecordsReceived  int64 `json:"records_received"`
	RecordsPersisted int64 `json:"records_persisted"`

	// Sink / Storage
	SinkWriteSuccess int64 `json:"sink_write_success"`
	SinkWriteFailure int64 `json:"sink_write_failure"`

	// Dimensions (informational, set at construction)
	Analyzer       string `json:"analyzer"`
	Policy         string `json:"policy"`
	SinkMode       string `json:"sink_mode"`
	StorageBackend string `json:"storage_backend"`
	JobID          string `json:"job_id"`
}

// Collector accumulates metrics during a single job.
// Thread-safe via sync.Mutex. All increment methods are nil-receiver safe.
type Collector struct {
	mu sync.Mutex

	jobsStarted   int64
	jobsCompleted int64
	jobsFailed    int64
	jobsCanceled  int64

	inputFilesOpened  int64
	eventsRead        int64
	storeDecodeErrors int64

	eventsProcessed  int64
	eventsWithErrors int64
	resolveErrors    map[string]int64
	objectsResolved  int64
	recordsExtracted int64
	recordsTruncated int64

	// set once via AbsorbPolicyStats
	recordsReceived  int64
	recordsPersisted int64

	sinkWriteSuccess int64
	sinkWriteFailure int64

	analyzer       string
	policy         string
	sinkMode       string
	storageBackend string
	jobID          string
}

// Dimensions labels a collector.
type Dimensions struct {
	Analyzer       string
	Policy         string
	SinkMode       string
	StorageBackend string
	JobID          string
}

// NewCollector creates a Collector with dimension labels.
func NewCollector(d Dimensions) *Collector {
	return &Collector{
		resolveErrors:  make(map[string]int64),
		analyzer:       d.Analyzer,
		policy:         d.Policy,
		sinkMode:       d.SinkMode,
		storageBackend: d.StorageBackend,
		jobID:          d.JobID,
	}
}

// --- Job lifecycle ---

// IncJobStarted records a job start.
func (c *Collector) IncJobStarted() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.jobsStarted++
	c.mu.Unlock()
}

// IncJobCompleted records a successful job completion.
func (c *Collector) IncJobCompleted() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.jobsCompleted++
	c.mu.Unlock()
}

// IncJobFailed records a job failure (input, sink or config error).
func (c *Collector) IncJobFailed() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.jobsFailed++
	c.mu.Unlock()
}

// IncJobCanceled records a job stopped by cancellation.
func (c *Collector) IncJobCanceled() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.jobsCanceled++
	c.mu.Unlock()
}

// --- Input ---

// IncInputFileOpened records an opened input file.
func (c *Collector) IncInputFileOpened() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.inputFilesOpened++
	c.mu.Unlock()
}

// IncEventsRead records an event delivered by the store.
func (c *Collector) IncEventsRead() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.eventsRead++
	c.mu.Unlock()
}

// IncStoreDecodeErrors records a store frame error.
func (c *Collector) IncStoreDecodeErrors() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.storeDecodeErrors++
	c.mu.Unlock()
}

// --- Per-event pipeline ---

// RecordEvent records a processed event: objects resolved, records
// extracted, and records removed by the emission limit.
func (c *Collector) RecordEvent(resolved, extracted, truncated int) {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.eventsProcessed++
	c.objectsResolved += int64(resolved)
	c.recordsExtracted += int64(extracted)
	c.recordsTruncated += int64(truncated)
	c.mu.Unlock()
}

// IncResolveError records a recoverable per-event resolution error.
// kind is a short label such as "collection_not_found".
func (c *Collector) IncResolveError(kind string) {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.eventsProcessed++
	c.eventsWithErrors++
	c.resolveErrors[kind]++
	c.mu.Unlock()
}

// --- Sink / Storage ---
// Sink counters are per-call, not per-record. A single WriteRecords call
// with N records counts as 1 success.

// IncSinkWriteSuccess records a successful sink write operation (per-call).
func (c *Collector) IncSinkWriteSuccess() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.sinkWriteSuccess++
	c.mu.Unlock()
}

// IncSinkWriteFailure records a failed sink write operation (per-call).
func (c *Collector) IncSinkWriteFailure() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.sinkWriteFailure++
	c.mu.Unlock()
}

// --- Delivery (absorbed from policy.Stats) ---

// AbsorbPolicyStats copies delivery counters from policy.Stats into the collector.
// Called once after job completion with the final policy stats snapshot.
func (c *Collector) AbsorbPolicyStats(received, persisted int64) {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.recordsReceived = received
	c.recordsPersisted = persisted
	c.mu.Unlock()
}

// --- Snapshot ---

// Snapshot returns an immutable point-in-time view of all metrics.
func (c *Collector) Snapshot() Snapshot {
	if c == nil {
		return Snapshot{}
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	resolveErrors := make(map[string]int64, len(c.resolveErrors))
	for k, v := range c.resolveErrors {
		resolveErrors[k] = v
	}

	return Snapshot{
		JobsStarted:   c.jobsStarted,
		JobsCompleted: c.jobsCompleted,
		JobsFailed:    c.jobsFailed,
		JobsCanceled:  c.jobsCanceled,

		InputFilesOpened:  c.inputFilesOpened,
		EventsRead:        c.eventsRead,
		StoreDecodeErrors: c.storeDecodeErrors,

		EventsProcessed:  c.eventsProcessed,
		EventsWithErrors: c.eventsWithErrors,
		ResolveErrors:    resolveErrors,
		ObjectsResolved:  c.objectsResolved,
		RecordsExtracted: c.recordsExtracted,
		RecordsTruncated: c.recordsTruncated,

		RecordsReceived:  c.recordsReceived,
		RecordsPersisted: c.recordsPersisted,

		SinkWriteSuccess: c.sinkWriteSuccess,
		SinkWriteFailure: c.sinkWriteFailure,

		Analyzer:       c.analyzer,
		Policy:         c.policy,
		SinkMode:       c.sinkMode,
		StorageBackend: c.storageBackend,
		JobID:          c.jobID,
	}
}
