package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/justapithecus/objext/extract"
	"github.com/justapithecus/objext/lode"
	"github.com/justapithecus/objext/log"
	"github.com/justapithecus/objext/policy"
	"github.com/justapithecus/objext/sink"
)

// Storage backends.
const (
	BackendFS = "fs"
	BackendS3 = "s3"
)

// Adapter types.
const (
	AdapterWebhook = "webhook"
	AdapterRedis   = "redis"
)

// DefaultBufferRecords is the buffered policy capacity when none is configured.
const DefaultBufferRecords = 1000

// Error is a configuration error. It is fatal at start-up.
type Error struct {
	// Field is the dotted YAML path of the offending key.
	Field string
	// Msg describes the problem.
	Msg string
}

func (e *Error) Error() string {
	return fmt.Sprintf("config: %s: %s", e.Field, e.Msg)
}

// IsError reports whether err contains a configuration error.
func IsError(err error) bool {
	var cfgErr *Error
	return errors.As(err, &cfgErr)
}

// ApplyDefaults fills unset optional fields.
func (c *Config) ApplyDefaults() {
	if c.LogFormat == "" {
		c.LogFormat = log.FormatJSON
	}
	if c.Output.Mode == "" {
		c.Output.Mode = sink.ModeLog
	}
	if c.Output.CSVLayout == "" {
		c.Output.CSVLayout = sink.LayoutLong
	}
	if c.Output.CSVLayout == sink.LayoutWide && c.Analyzer.MaxObjectsPerEvent == 0 {
		c.Analyzer.MaxObjectsPerEvent = sink.DefaultWideMaxObjects
	}
	if c.Policy.Name == "" {
		c.Policy.Name = policy.NameStrict
	}
	if c.Policy.Name == policy.NameBuffered && c.Policy.BufferRecords == 0 {
		c.Policy.BufferRecords = DefaultBufferRecords
	}
	if c.Storage.Dataset == "" {
		c.Storage.Dataset = lode.DefaultDataset
	}
	if c.Storage.Backend == "" {
		c.Storage.Backend = BackendFS
	}
}

// Validate checks the configuration and returns every problem found, joined.
// Each problem is an *Error. Call ApplyDefaults first.
func (c *Config) Validate() error {
	var errs []error
	fail := func(field, format string, args ...any) {
		errs = append(errs, &Error{Field: field, Msg: fmt.Sprintf(format, args...)})
	}

	if len(c.InputFiles) == 0 {
		fail("input_files", "at least one input file is required")
	}
	for i, in := range c.InputFiles {
		if strings.TrimSpace(in) == "" {
			fail(fmt.Sprintf("input_files[%d]", i), "must not be empty")
		}
	}
	if c.MaxEvents < 0 {
		fail("max_events", "must be >= 0, got %d", c.MaxEvents)
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		fail("log_level", "%v", err)
	}
	if c.LogFormat != log.FormatJSON && c.LogFormat != log.FormatConsole {
		fail("log_format", "must be %q or %q, got %q", log.FormatJSON, log.FormatConsole, c.LogFormat)
	}

	if _, err := extract.Lookup(c.Analyzer.Name); err != nil {
		fail("analyzer.name", "must be one of %s, got %q", strings.Join(extract.Names(), ", "), c.Analyzer.Name)
	}
	if strings.TrimSpace(c.Analyzer.InputCollection) == "" {
		fail("analyzer.input_collection", "collection tag is required")
	}
	if c.Analyzer.MaxObjectsPerEvent < 0 {
		fail("analyzer.max_objects_per_event", "must be >= 0, got %d", c.Analyzer.MaxObjectsPerEvent)
	}

	switch c.Output.Mode {
	case sink.ModeLog, sink.ModeLode:
	case sink.ModeCSV:
		if c.Output.CSVPath == "" {
			fail("output.csv_path", "required when output.mode is csv")
		}
	default:
		fail("output.mode", "must be log, csv or lode, got %q", c.Output.Mode)
	}
	switch c.Output.CSVLayout {
	case sink.LayoutLong:
	case sink.LayoutWide:
		if c.Analyzer.MaxObjectsPerEvent <= 0 {
			fail("analyzer.max_objects_per_event", "wide csv layout needs a positive slot count")
		}
	default:
		fail("output.csv_layout", "must be long or wide, got %q", c.Output.CSVLayout)
	}

	switch c.Policy.Name {
	case policy.NameStrict:
	case policy.NameBuffered:
		if c.Policy.BufferRecords <= 0 {
			fail("policy.buffer_records", "must be > 0 for buffered policy, got %d", c.Policy.BufferRecords)
		}
	default:
		fail("policy.name", "must be strict or buffered, got %q", c.Policy.Name)
	}

	if c.Output.Mode == sink.ModeLode {
		c.validateStorage(fail)
	}
	c.validateAdapter(fail)

	return errors.Join(errs...)
}

func (c *Config) validateStorage(fail func(field, format string, args ...any)) {
	if !slices.Contains([]string{BackendFS, BackendS3}, c.Storage.Backend) {
		fail("storage.backend", "must be fs or s3, got %q", c.Storage.Backend)
		return
	}
	if c.Storage.Path == "" {
		fail("storage.path", "required for the %s backend", c.Storage.Backend)
	}
	if c.Storage.Backend == BackendFS && (c.Storage.Region != "" || c.Storage.Endpoint != "" || c.Storage.S3PathStyle) {
		fail("storage", "region, endpoint and s3_path_style only apply to the s3 backend")
	}
}

func (c *Config) validateAdapter(fail func(field, format string, args ...any)) {
	switch c.Adapter.Type {
	case "":
		if c.Adapter.URL != "" {
			fail("adapter.type", "required when adapter.url is set")
		}
		return
	case AdapterWebhook, AdapterRedis:
	default:
		fail("adapter.type", "must be webhook or redis, got %q", c.Adapter.Type)
		return
	}
	if c.Adapter.URL == "" {
		fail("adapter.url", "required for the %s adapter", c.Adapter.Type)
	}
	if c.Adapter.Retries != nil && *c.Adapter.Retries < 0 {
		fail("adapter.retries", "must be >= 0, got %d", *c.Adapter.Retries)
	}
	if c.Adapter.Type == AdapterWebhook && c.Adapter.Channel != "" {
		fail("adapter.channel", "only applies to the redis adapter")
	}
}
