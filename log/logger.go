// Package log provides structured logging with job context.
//
// Three logger variants are available:
//   - Logger: Non-sugared zap.Logger for the event loop and sinks (structured fields)
//   - Logger.ForRecords: the log sink's view, written regardless of level
//   - SugaredLogger: Printf-style logging for CLI surfaces (convenience over performance)
//
// Use Logger.Sugar() to obtain a SugaredLogger when needed.
package log

import (
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/justapithecus/objext/types"
)

// Output formats.
const (
	FormatJSON    = "json"
	FormatConsole = "console"
)

// Options configures a Logger.
type Options struct {
	// Level is the minimum level: debug, info, warn or error. Default info.
	Level string
	// Format is json (default) or console.
	Format string
	// Output is the destination. Default os.Stderr.
	Output io.Writer
}

// Logger provides structured logging with job context.
// All entries include the job identity fields.
//
// For CLI surfaces, use Sugar() to get a SugaredLogger.
type Logger struct {
	zap *zap.Logger
}

// SugaredLogger provides printf-style logging for CLI surfaces.
type SugaredLogger struct {
	sugar *zap.SugaredLogger
}

// NewLogger creates a JSON logger at debug level writing to os.Stderr.
func NewLogger(meta *types.JobMeta) *Logger {
	return newLoggerWithWriter(meta, os.Stderr)
}

// New creates a logger from options.
func New(meta *types.JobMeta, opts Options) (*Logger, error) {
	level, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, err
	}
	enc, err := newEncoder(opts.Format)
	if err != nil {
		return nil, err
	}
	w := opts.Output
	if w == nil {
		w = os.Stderr
	}
	core := zapcore.NewCore(enc, zapcore.AddSync(w), level)
	return &Logger{zap: zap.New(core).With(contextFields(meta)...)}, nil
}

// NewNop returns a logger that discards everything.
func NewNop() *Logger {
	return &Logger{zap: zap.NewNop()}
}

// ParseLevel converts a level name to a zap level. Empty means info.
func ParseLevel(s string) (zapcore.Level, error) {
	if s == "" {
		return zapcore.InfoLevel, nil
	}
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return level, fmt.Errorf("invalid log level %q: %w", s, err)
	}
	switch level {
	case zapcore.DebugLevel, zapcore.InfoLevel, zapcore.WarnLevel, zapcore.ErrorLevel:
		return level, nil
	default:
		return level, fmt.Errorf("invalid log level %q", s)
	}
}

func encoderConfig() zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		TimeKey:     "timestamp",
		LevelKey:    "level",
		MessageKey:  "message",
		EncodeTime:  zapcore.RFC3339NanoTimeEncoder,
		EncodeLevel: zapcore.LowercaseLevelEncoder,
	}
}

func newEncoder(format string) (zapcore.Encoder, error) {
	switch format {
	case "", FormatJSON:
		return zapcore.NewJSONEncoder(encoderConfig()), nil
	case FormatConsole:
		return zapcore.NewConsoleEncoder(encoderConfig()), nil
	default:
		return nil, fmt.Errorf("invalid log format %q (expected json or console)", format)
	}
}

// ForRecords returns a logger for emitted records. It shares the encoder,
// writer and context fields of l but ignores the level threshold, so record
// lines are written whatever the diagnostic log level is.
func (l *Logger) ForRecords() *Logger {
	return &Logger{zap: l.zap.WithOptions(zap.WrapCore(func(c zapcore.Core) zapcore.Core {
		return recordCore{Core: c}
	}))}
}

// recordCore enables every level of the wrapped core.
type recordCore struct {
	zapcore.Core
}

func (recordCore) Enabled(zapcore.Level) bool { return true }

func (c recordCore) With(fields []zapcore.Field) zapcore.Core {
	return recordCore{Core: c.Core.With(fields)}
}

func (c recordCore) Check(ent zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	return ce.AddCore(ent, c)
}

// newLoggerWithWriter creates a logger writing to the specified writer.
func newLoggerWithWriter(meta *types.JobMeta, w io.Writer) *Logger {
	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderConfig()),
		zapcore.AddSync(w),
		zapcore.DebugLevel,
	)
	return &Logger{zap: zap.New(core).With(contextFields(meta)...)}
}

func contextFields(meta *types.JobMeta) []zap.Field {
	if meta == nil {
		return nil
	}
	fields := []zap.Field{zap.String("job_id", meta.JobID)}
	if meta.Process != "" {
		fields = append(fields, zap.String("process", meta.Process))
	}
	return fields
}

// With returns a logger with additional context fields.
func (l *Logger) With(fields ...zap.Field) *Logger {
	return &Logger{zap: l.zap.With(fields...)}
}

// Emit logs an info entry with the given fields at the top level of the entry,
// in the order given.
func (l *Logger) Emit(message string, fields ...zap.Field) {
	l.zap.Info(message, fields...)
}

// Debug logs a debug message.
func (l *Logger) Debug(message string, fields map[string]any) {
	l.zap.Debug(message, zap.Any("fields", fields))
}

// Info logs an info message.
func (l *Logger) Info(message string, fields map[string]any) {
	l.zap.Info(message, zap.Any("fields", fields))
}

// Warn logs a warning message.
func (l *Logger) Warn(message string, fields map[string]any) {
	l.zap.Warn(message, zap.Any("fields", fields))
}

// Error logs an error message.
func (l *Logger) Error(message string, fields map[string]any) {
	l.zap.Error(message, zap.Any("fields", fields))
}

// Sync flushes buffered entries.
func (l *Logger) Sync() error {
	return l.zap.Sync()
}

// Sugar returns a SugaredLogger for printf-style logging.
func (l *Logger) Sugar() *SugaredLogger {
	return &SugaredLogger{sugar: l.zap.Sugar()}
}

// Debugf logs a debug message with printf-style formatting.
func (s *SugaredLogger) Debugf(template string, args ...any) {
	s.sugar.Debugf(template, args...)
}

// Infof logs an info message with printf-style formatting.
func (s *SugaredLogger) Infof(template string, args ...any) {
	s.sugar.Infof(template, args...)
}

// Warnf logs a warning message with printf-style formatting.
func (s *SugaredLogger) Warnf(template string, args ...any) {
	s.sugar.Warnf(template, args...)
}

// With returns a SugaredLogger with additional context fields.
func (s *SugaredLogger) With(args ...any) *SugaredLogger {
	return &SugaredLogger{sugar: s.sugar.With(args...)}
}
