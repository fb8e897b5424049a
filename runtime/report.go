package runtime

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/justapithecus/objext/metrics"
	"github.com/justapithecus/objext/types"
)

// JobReport is the structured JSON report written by --report.
type JobReport struct {
	JobID      string              `json:"job_id"`
	Process    string              `json:"process,omitempty"`
	Analyzer   string              `json:"analyzer"`
	Collection string              `json:"collection"`
	Outcome    types.OutcomeStatus `json:"outcome"`
	Message    string              `json:"message"`
	ExitCode   int                 `json:"exit_code"`
	DurationMs int64               `json:"duration_ms"`

	EventsRead       int64 `json:"events_read"`
	EventsWithErrors int64 `json:"events_with_errors"`
	RecordsEmitted   int64 `json:"records_emitted"`

	Policy  *ReportPolicy     `json:"policy"`
	Metrics *metrics.Snapshot `json:"metrics"`
}

// ReportPolicy holds policy stats in the report.
type ReportPolicy struct {
	Name             string `json:"name"`
	RecordsReceived  int64  `json:"records_received"`
	RecordsPersisted int64  `json:"records_persisted"`
	Batches          int64  `json:"batches"`
	Flushes          int64  `json:"flushes"`
	Errors           int64  `json:"errors"`
}

// BuildJobReport composes a JobReport from a JobResult.
// The exitCode is the process exit code that will be returned to the caller.
func BuildJobReport(result *JobResult, cfg *JobConfig, exitCode int) *JobReport {
	snap := result.Metrics
	report := &JobReport{
		JobID:            result.Meta.JobID,
		Process:          result.Meta.Process,
		Collection:       cfg.Collection,
		Outcome:          result.Outcome.Status,
		Message:          result.Outcome.Message,
		ExitCode:         exitCode,
		DurationMs:       result.Duration.Milliseconds(),
		EventsRead:       result.EventsRead,
		EventsWithErrors: result.EventsWithErrors,
		RecordsEmitted:   result.RecordsEmitted,
		Policy: &ReportPolicy{
			Name:             policyName(cfg),
			RecordsReceived:  result.PolicyStats.TotalRecords,
			RecordsPersisted: result.PolicyStats.RecordsPersisted,
			Batches:          result.PolicyStats.TotalBatches,
			Flushes:          result.PolicyStats.FlushCount,
			Errors:           result.PolicyStats.Errors,
		},
		Metrics: &snap,
	}
	if cfg.Extractor != nil {
		report.Analyzer = cfg.Extractor.Name()
	}
	return report
}

func policyName(cfg *JobConfig) string {
	switch {
	case cfg.DryRun:
		return "noop"
	case cfg.Policy == "":
		return "strict"
	default:
		return cfg.Policy
	}
}

// WriteJobReport writes the report as JSON to the specified path.
// If path is "-", writes to stderr.
func WriteJobReport(report *JobReport, path string) error {
	if path == "" {
		return errors.New("report path must not be empty")
	}

	if path == "-" {
		if err := writeJobReportTo(report, os.Stderr); err != nil {
			return fmt.Errorf("failed to write report to stderr: %w", err)
		}
		return nil
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to write report to %s: %w", path, err)
	}
	if err := writeJobReportTo(report, f); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to write report to %s: %w", path, err)
	}
	return f.Close()
}

// writeJobReportTo writes report JSON to any writer.
func writeJobReportTo(report *JobReport, w io.Writer) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}
