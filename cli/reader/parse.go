package reader

import "errors"

// ParseMetricsRecord converts a lode metrics record to a MetricsSnapshot.
// Numeric fields may be int64 (direct writes) or float64 (JSON round-trips).
func ParseMetricsRecord(record map[string]any) (*MetricsSnapshot, error) {
	if record == nil {
		return nil, errors.New("nil record")
	}

	snap := &MetricsSnapshot{
		CompletedAt: toString(record["completed_at"]),

		JobsStarted:   toInt64(record["jobs_started"]),
		JobsCompleted: toInt64(record["jobs_completed"]),
		JobsFailed:    toInt64(record["jobs_failed"]),
		JobsCanceled:  toInt64(record["jobs_canceled"]),

		InputFilesOpened:  toInt64(record["input_files_opened"]),
		EventsRead:        toInt64(record["events_read"]),
		StoreDecodeErrors: toInt64(record["store_decode_errors"]),

		EventsProcessed:  toInt64(record["events_processed"]),
		EventsWithErrors: toInt64(record["events_with_errors"]),
		ObjectsResolved:  toInt64(record["objects_resolved"]),
		RecordsExtracted: toInt64(record["records_extracted"]),
		RecordsTruncated: toInt64(record["records_truncated"]),

		RecordsReceived:  toInt64(record["records_received"]),
		RecordsPersisted: toInt64(record["records_persisted"]),
		SinkWriteSuccess: toInt64(record["sink_write_success"]),
		SinkWriteFailure: toInt64(record["sink_write_failure"]),

		Analyzer:       toString(record["analyzer"]),
		Collection:     toString(record["collection"]),
		Policy:         toString(record["policy"]),
		SinkMode:       toString(record["sink_mode"]),
		StorageBackend: toString(record["storage_backend"]),
		JobID:          toString(record["job_id"]),
	}

	if re, ok := record["resolve_errors"]; ok && re != nil {
		snap.ResolveErrors = parseCounterMap(re)
	}

	// The write path always populates these.
	if snap.CompletedAt == "" {
		return nil, errors.New("metrics record missing required field: completed_at")
	}
	if snap.JobID == "" {
		return nil, errors.New("metrics record missing required field: job_id")
	}
	if snap.Analyzer == "" {
		return nil, errors.New("metrics record missing required field: analyzer")
	}

	return snap, nil
}

// toInt64 converts a value to int64, handling float64 from JSON and int64 from direct writes.
func toInt64(v any) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case float64:
		return int64(n)
	case int:
		return int64(n)
	default:
		return 0
	}
}

// toString converts a value to string, returning empty string for nil/non-string.
func toString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

// parseCounterMap handles map[string]int64 (direct) and map[string]any (JSON round-trip).
func parseCounterMap(v any) map[string]int64 {
	switch m := v.(type) {
	case map[string]int64:
		return m
	case map[string]any:
		result := make(map[string]int64, len(m))
		for k, val := range m {
			result[k] = toInt64(val)
		}
		return result
	default:
		return nil
	}
}
