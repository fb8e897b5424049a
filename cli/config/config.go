package config

import (
	"fmt"
	"time"
)

// Config represents an objext.yaml process configuration.
// CLI flags on objext run override config values.
type Config struct {
	Process    string         `yaml:"process"`
	JobID      string         `yaml:"job_id"`
	InputFiles []string       `yaml:"input_files"`
	MaxEvents  int64          `yaml:"max_events"`
	LogLevel   string         `yaml:"log_level"`
	LogFormat  string         `yaml:"log_format"`
	Analyzer   AnalyzerConfig `yaml:"analyzer"`
	Output     OutputConfig   `yaml:"output"`
	Policy     PolicyConfig   `yaml:"policy"`
	Storage    StorageConfig  `yaml:"storage"`
	Adapter    AdapterConfig  `yaml:"adapter"`
}

// AnalyzerConfig selects the extractor and the collection it reads.
type AnalyzerConfig struct {
	Name               string `yaml:"name"`
	InputCollection    string `yaml:"input_collection"`
	MaxObjectsPerEvent int    `yaml:"max_objects_per_event"`
}

// OutputConfig selects the record sink.
type OutputConfig struct {
	Mode      string `yaml:"mode"`
	CSVPath   string `yaml:"csv_path"`
	CSVLayout string `yaml:"csv_layout"`
}

// StorageConfig holds lode dataset settings used by the lode output mode.
type StorageConfig struct {
	Dataset     string `yaml:"dataset"`
	Backend     string `yaml:"backend"`
	Path        string `yaml:"path"`
	Region      string `yaml:"region"`
	Endpoint    string `yaml:"endpoint"`
	S3PathStyle bool   `yaml:"s3_path_style"`
}

// PolicyConfig holds delivery policy settings.
type PolicyConfig struct {
	Name          string `yaml:"name"`
	BufferRecords int    `yaml:"buffer_records"`
}

// AdapterConfig holds job-completed notification settings.
type AdapterConfig struct {
	Type    string            `yaml:"type"`
	URL     string            `yaml:"url"`
	Channel string            `yaml:"channel,omitempty"`
	Headers map[string]string `yaml:"headers,omitempty"`
	Timeout Duration          `yaml:"timeout,omitempty"`
	Retries *int              `yaml:"retries,omitempty"`
}

// Duration wraps time.Duration for YAML string parsing (e.g. "10s", "5m").
type Duration struct {
	time.Duration
}

// UnmarshalYAML parses a duration string like "10s" or "5m30s".
func (d *Duration) UnmarshalYAML(unmarshal func(any) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	if s == "" {
		return nil
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	d.Duration = parsed
	return nil
}
