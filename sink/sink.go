// Package sink implements the record sinks that terminate the pipeline:
// structured log lines, CSV files and lode datasets.
package sink

import (
	"errors"
	"fmt"

	"github.com/justapithecus/objext/lode"
	"github.com/justapithecus/objext/log"
	"github.com/justapithecus/objext/policy"
	"github.com/justapithecus/objext/types"
)

// Output modes.
const (
	ModeLog  = "log"
	ModeCSV  = "csv"
	ModeLode = "lode"
)

// CSV layouts.
const (
	// LayoutLong writes one row per record.
	LayoutLong = "long"
	// LayoutWide writes one row per event with a fixed number of object slots.
	LayoutWide = "wide"
)

// DefaultWideMaxObjects is the slot count used by the wide layout when no
// per-event maximum is configured.
const DefaultWideMaxObjects = 5

var (
	// ErrUnknownMode is returned by Open for an unrecognized mode.
	ErrUnknownMode = errors.New("unknown output mode")
	// ErrUnknownLayout is returned by OpenCSV for an unrecognized layout.
	ErrUnknownLayout = errors.New("unknown csv layout")
)

// Config selects and parameterizes a sink.
type Config struct {
	// Mode is one of ModeLog, ModeCSV, ModeLode.
	Mode string
	// CSVPath is the output file for ModeCSV.
	CSVPath string
	// CSVLayout is LayoutLong (default) or LayoutWide.
	CSVLayout string
	// MaxObjects is the per-event maximum; the wide layout uses it as slot count.
	MaxObjects int
	// Logger receives records in ModeLog.
	Logger *log.Logger
	// Lode is the dataset client for ModeLode.
	Lode lode.Client
}

// Open creates the sink selected by cfg.Mode for records of schema.
// CSV open failures are returned as *IOError before any record is written.
func Open(cfg Config, schema types.Schema) (policy.Sink, error) {
	switch cfg.Mode {
	case ModeLog, "":
		return NewLogSink(cfg.Logger, schema), nil
	case ModeCSV:
		return OpenCSV(cfg.CSVPath, schema, cfg.CSVLayout, cfg.MaxObjects)
	case ModeLode:
		if cfg.Lode == nil {
			return nil, errors.New("lode mode requires a dataset client")
		}
		return lode.NewSink(schema, cfg.Lode), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMode, cfg.Mode)
	}
}

// IOError is a failure to open, write or close the output file.
// Kind is one of the lode storage sentinels (lode.ErrPermissionDenied,
// lode.ErrNotFound, lode.ErrDiskFull, ...).
type IOError struct {
	Op   string
	Path string
	Kind error
	Err  error
}

func newIOError(op, path string, err error) *IOError {
	return &IOError{Op: op, Path: path, Kind: lode.Classify(err), Err: err}
}

// Error implements error.
func (e *IOError) Error() string {
	return fmt.Sprintf("sink %s %s: %v", e.Op, e.Path, e.Err)
}

// Unwrap returns the underlying cause.
func (e *IOError) Unwrap() error {
	return e.Err
}

// Is matches the classification kind, so errors.Is(err, lode.ErrDiskFull) works.
func (e *IOError) Is(target error) bool {
	return e.Kind != nil && errors.Is(e.Kind, target)
}
