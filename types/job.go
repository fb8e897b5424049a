package types //nolint:revive // types is a valid package name

import (
	"errors"
)

// JobMeta contains job identity metadata.
type JobMeta struct {
	// JobID identifies one execution of a process. Must be unique per run.
	JobID string
	// Process is the informational process name from configuration.
	Process string
}

// Validate checks that the job identity is usable.
func (m *JobMeta) Validate() error {
	if m.JobID == "" {
		return errors.New("job_id must be non-empty")
	}
	return nil
}

// OutcomeStatus represents the final status of a job.
type OutcomeStatus string

const (
	// OutcomeSuccess indicates the event cap was reached or input was exhausted.
	// Recoverable per-event errors do not change the outcome.
	OutcomeSuccess OutcomeStatus = "success"
	// OutcomeConfigError indicates invalid configuration detected at start-up.
	OutcomeConfigError OutcomeStatus = "config_error"
	// OutcomeInputError indicates an input file could not be opened or decoded.
	OutcomeInputError OutcomeStatus = "input_error"
	// OutcomeSinkFailure indicates the record sink failed.
	OutcomeSinkFailure OutcomeStatus = "sink_failure"
	// OutcomeCanceled indicates the job was interrupted.
	OutcomeCanceled OutcomeStatus = "canceled"
)

// JobOutcome represents the final outcome of a job.
type JobOutcome struct {
	// Status is the outcome classification.
	Status OutcomeStatus
	// Message is a human-readable description.
	Message string
}
