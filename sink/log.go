package sink

import (
	"context"

	"go.uber.org/zap"

	"github.com/justapithecus/objext/log"
	"github.com/justapithecus/objext/policy"
	"github.com/justapithecus/objext/types"
)

// RecordMessage is the log message of every emitted record.
const RecordMessage = "object"

// LogSink writes one structured log line per record.
type LogSink struct {
	logger *log.Logger
	schema types.Schema
}

// NewLogSink creates a log sink over the job logger's output. Records are
// written at info level but bypass the logger's level threshold.
// A nil logger discards records.
func NewLogSink(logger *log.Logger, schema types.Schema) *LogSink {
	if logger == nil {
		logger = log.NewNop()
	}
	return &LogSink{logger: logger.ForRecords(), schema: schema}
}

// WriteRecords logs each record with its fields in schema order.
// It never fails.
func (s *LogSink) WriteRecords(_ context.Context, records []types.AttributeRecord) error {
	for _, rec := range records {
		s.logger.Emit(RecordMessage, recordFields(s.schema, rec)...)
	}
	return nil
}

// Close flushes buffered log output. Sync errors on terminals are ignored.
func (s *LogSink) Close() error {
	_ = s.logger.Sync()
	return nil
}

func recordFields(schema types.Schema, rec types.AttributeRecord) []zap.Field {
	fields := make([]zap.Field, 0, len(rec.Values))
	for i, v := range rec.Values {
		if i >= len(schema.Fields) {
			break
		}
		name := schema.Fields[i].Name
		switch v.Kind {
		case types.ValueFloat:
			fields = append(fields, zap.Float64(name, v.F))
		case types.ValueInt:
			fields = append(fields, zap.Int64(name, v.I))
		default:
			fields = append(fields, zap.String(name, v.S))
		}
	}
	return fields
}

// Verify LogSink implements policy.Sink.
var _ policy.Sink = (*LogSink)(nil)
