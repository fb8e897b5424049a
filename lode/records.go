package lode

import (
	"math"
	"time"

	"github.com/justapithecus/objext/metrics"
	"github.com/justapithecus/objext/types"
)

// RecordKind discriminator values. record_kind is also the last partition key.
const (
	RecordKindObject  = "object"
	RecordKindMetrics = "metrics"
)

// PartitionKeys is the Hive layout of the objext dataset.
var PartitionKeys = []string{"analyzer", "collection", "day", "job_id", "record_kind"}

// toObjectRecordMap converts an attribute record to a map for Lode storage.
// Schema fields are stored under their own names next to the partition keys.
// Lode HiveLayout requires records as map[string]any.
// JSON has no encoding for NaN or ±Inf, so those floats are stored as
// their text form.
func toObjectRecordMap(rec types.AttributeRecord, schema types.Schema, cfg Config) map[string]any {
	m := rec.Map(schema)
	for k, v := range m {
		if f, ok := v.(float64); ok && (math.IsNaN(f) || math.IsInf(f, 0)) {
			m[k] = types.Float(f).Format()
		}
	}
	m["record_kind"] = RecordKindObject
	m["analyzer"] = cfg.Analyzer
	m["collection"] = cfg.Collection
	m["day"] = cfg.Day
	m["job_id"] = cfg.JobID
	return m
}

// toMetricsRecordMap converts a metrics snapshot to a map for Lode storage.
func toMetricsRecordMap(snap metrics.Snapshot, cfg Config, completedAt time.Time) map[string]any {
	resolveErrors := make(map[string]int64, len(snap.ResolveErrors))
	for k, v := range snap.ResolveErrors {
		resolveErrors[k] = v
	}

	m := map[string]any{
		"record_kind":  RecordKindMetrics,
		"completed_at": completedAt.UTC().Format(time.RFC3339Nano),

		"jobs_started":   snap.JobsStarted,
		"jobs_completed": snap.JobsCompleted,
		"jobs_failed":    snap.JobsFailed,
		"jobs_canceled":  snap.JobsCanceled,

		"input_files_opened":  snap.InputFilesOpened,
		"events_read":         snap.EventsRead,
		"store_decode_errors": snap.StoreDecodeErrors,

		"events_processed":   snap.EventsProcessed,
		"events_with_errors": snap.EventsWithErrors,
		"resolve_errors":     resolveErrors,
		"objects_resolved":   snap.ObjectsResolved,
		"records_extracted":  snap.RecordsExtracted,
		"records_truncated":  snap.RecordsTruncated,

		"records_received":  snap.RecordsReceived,
		"records_persisted": snap.RecordsPersisted,

		"sink_write_success": snap.SinkWriteSuccess,
		"sink_write_failure": snap.SinkWriteFailure,

		"policy":          snap.Policy,
		"sink_mode":       snap.SinkMode,
		"storage_backend": snap.StorageBackend,

		"analyzer":   cfg.Analyzer,
		"collection": cfg.Collection,
		"day":        cfg.Day,
		"job_id":     cfg.JobID,
	}
	return m
}
