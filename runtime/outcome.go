package runtime

import (
	"context"
	"errors"

	"github.com/justapithecus/objext/types"
)

// Process exit codes.
const (
	ExitCodeSuccess     = 0 // event cap reached or input exhausted
	ExitCodeConfigError = 1 // invalid configuration
	ExitCodeInputError  = 2 // input could not be opened or decoded
	ExitCodeSinkFailure = 3 // record sink failed
	ExitCodeCanceled    = 4 // interrupted by signal
)

// ExitCode maps an outcome status to the process exit code.
func ExitCode(status types.OutcomeStatus) int {
	switch status {
	case types.OutcomeSuccess:
		return ExitCodeSuccess
	case types.OutcomeConfigError:
		return ExitCodeConfigError
	case types.OutcomeInputError:
		return ExitCodeInputError
	case types.OutcomeSinkFailure:
		return ExitCodeSinkFailure
	case types.OutcomeCanceled:
		return ExitCodeCanceled
	default:
		return ExitCodeConfigError
	}
}

// JobErrorKind classifies fatal job errors for outcome determination.
type JobErrorKind int

const (
	// JobErrorInput indicates an input open or frame decode failure.
	JobErrorInput JobErrorKind = iota
	// JobErrorSink indicates a sink or policy failure.
	JobErrorSink
	// JobErrorCanceled indicates context cancellation.
	JobErrorCanceled
)

// String returns the outcome name of the kind.
func (k JobErrorKind) String() string {
	return string(k.status())
}

func (k JobErrorKind) status() types.OutcomeStatus {
	switch k {
	case JobErrorInput:
		return types.OutcomeInputError
	case JobErrorSink:
		return types.OutcomeSinkFailure
	default:
		return types.OutcomeCanceled
	}
}

// JobError is a fatal error that ends a job.
type JobError struct {
	Kind JobErrorKind
	Err  error
}

func (e *JobError) Error() string {
	return e.Err.Error()
}

func (e *JobError) Unwrap() error {
	return e.Err
}

// IsSinkError reports whether err is a sink failure.
func IsSinkError(err error) bool {
	var jobErr *JobError
	return errors.As(err, &jobErr) && jobErr.Kind == JobErrorSink
}

// IsInputError reports whether err is an input failure.
func IsInputError(err error) bool {
	var jobErr *JobError
	return errors.As(err, &jobErr) && jobErr.Kind == JobErrorInput
}

// IsCanceledError reports whether err is due to context cancellation.
func IsCanceledError(err error) bool {
	var jobErr *JobError
	if errors.As(err, &jobErr) {
		return jobErr.Kind == JobErrorCanceled
	}
	return errors.Is(err, context.Canceled)
}

// outcomeFor builds the job outcome for a terminal error. A nil error is success.
func outcomeFor(err error) *types.JobOutcome {
	if err == nil {
		return &types.JobOutcome{
			Status:  types.OutcomeSuccess,
			Message: "job completed successfully",
		}
	}
	var jobErr *JobError
	if errors.As(err, &jobErr) {
		return &types.JobOutcome{Status: jobErr.Kind.status(), Message: err.Error()}
	}
	return &types.JobOutcome{Status: types.OutcomeSinkFailure, Message: err.Error()}
}
