package reader

import "fmt"

// InspectStoreResponse summarizes one event store file.
type InspectStoreResponse struct {
	Input         string              `json:"input" yaml:"input"`
	FormatVersion int                 `json:"format_version" yaml:"format_version"`
	Producer      string              `json:"producer,omitempty" yaml:"producer,omitempty"`
	Events        int64               `json:"events" yaml:"events"`
	Truncated     bool                `json:"truncated" yaml:"truncated"`
	Runs          []uint64            `json:"runs" yaml:"runs"`
	FirstEvent    *EventRef           `json:"first_event,omitempty" yaml:"first_event,omitempty"`
	LastEvent     *EventRef           `json:"last_event,omitempty" yaml:"last_event,omitempty"`
	Collections   []CollectionSummary `json:"collections" yaml:"collections"`
}

// EventRef identifies an event.
type EventRef struct {
	Run   uint64 `json:"run" yaml:"run"`
	Lumi  uint64 `json:"lumi" yaml:"lumi"`
	Event uint64 `json:"event" yaml:"event"`
}

// String formats the reference as run:lumi:event.
func (r EventRef) String() string {
	return fmt.Sprintf("%d:%d:%d", r.Run, r.Lumi, r.Event)
}

// CollectionSummary aggregates one named collection across a store file.
type CollectionSummary struct {
	Name string `json:"name" yaml:"name"`
	Kind string `json:"kind" yaml:"kind"`
	// Events is the number of events that carry the collection.
	Events int64 `json:"events" yaml:"events"`
	// Objects is the total object count.
	Objects int64 `json:"objects" yaml:"objects"`
	// MaxPerEvent is the largest collection seen in one event.
	MaxPerEvent int `json:"max_per_event" yaml:"max_per_event"`
	// Global is the number of muons with a global track.
	Global int64 `json:"global,omitempty" yaml:"global,omitempty"`
}

// MeanPerEvent is Objects / Events, or 0 when no event carries the collection.
func (c CollectionSummary) MeanPerEvent() float64 {
	if c.Events == 0 {
		return 0
	}
	return float64(c.Objects) / float64(c.Events)
}

// MetricsSnapshot is the last metrics record of a job, read back from lode.
type MetricsSnapshot struct {
	CompletedAt string `json:"completed_at" yaml:"completed_at"`

	// Job lifecycle
	JobsStarted   int64 `json:"jobs_started" yaml:"jobs_started"`
	JobsCompleted int64 `json:"jobs_completed" yaml:"jobs_completed"`
	JobsFailed    int64 `json:"jobs_failed" yaml:"jobs_failed"`
	JobsCanceled  int64 `json:"jobs_canceled" yaml:"jobs_canceled"`

	// Input
	InputFilesOpened  int64 `json:"input_files_opened" yaml:"input_files_opened"`
	EventsRead        int64 `json:"events_read" yaml:"events_read"`
	StoreDecodeErrors int64 `json:"store_decode_errors" yaml:"store_decode_errors"`

	// Per-event pipeline
	EventsProcessed  int64            `json:"events_processed" yaml:"events_processed"`
	EventsWithErrors int64            `json:"events_with_errors" yaml:"events_with_errors"`
	ResolveErrors    map[string]int64 `json:"resolve_errors,omitempty" yaml:"resolve_errors,omitempty"`
	ObjectsResolved  int64            `json:"objects_resolved" yaml:"objects_resolved"`
	RecordsExtracted int64            `json:"records_extracted" yaml:"records_extracted"`
	RecordsTruncated int64            `json:"records_truncated" yaml:"records_truncated"`

	// Delivery
	RecordsReceived  int64 `json:"records_received" yaml:"records_received"`
	RecordsPersisted int64 `json:"records_persisted" yaml:"records_persisted"`
	SinkWriteSuccess int64 `json:"sink_write_success" yaml:"sink_write_success"`
	SinkWriteFailure int64 `json:"sink_write_failure" yaml:"sink_write_failure"`

	// Dimensions
	Analyzer       string `json:"analyzer" yaml:"analyzer"`
	Collection     string `json:"collection" yaml:"collection"`
	Policy         string `json:"policy" yaml:"policy"`
	SinkMode       string `json:"sink_mode" yaml:"sink_mode"`
	StorageBackend string `json:"storage_backend,omitempty" yaml:"storage_backend,omitempty"`
	JobID          string `json:"job_id" yaml:"job_id"`
}

// Details returns the per-collection rows shown below the summary in table output.
func (r *InspectStoreResponse) Details() any {
	return r.Collections
}
