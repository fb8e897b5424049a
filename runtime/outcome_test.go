package runtime

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/justapithecus/objext/types"
)

func TestExitCode(t *testing.T) {
	tests := map[types.OutcomeStatus]int{
		types.OutcomeSuccess:     0,
		types.OutcomeConfigError: 1,
		types.OutcomeInputError:  2,
		types.OutcomeSinkFailure: 3,
		types.OutcomeCanceled:    4,
	}
	for status, want := range tests {
		if got := ExitCode(status); got != want {
			t.Errorf("ExitCode(%s) = %d, want %d", status, got, want)
		}
	}
}

func TestOutcomeFor(t *testing.T) {
	if got := outcomeFor(nil).Status; got != types.OutcomeSuccess {
		t.Errorf("nil error = %s", got)
	}

	wrapped := fmt.Errorf("outer: %w", &JobError{Kind: JobErrorInput, Err: errors.New("bad frame")})
	if got := outcomeFor(wrapped).Status; got != types.OutcomeInputError {
		t.Errorf("input error = %s", got)
	}
	if !IsInputError(wrapped) || IsSinkError(wrapped) {
		t.Error("classification helpers disagree with kind")
	}

	canceled := &JobError{Kind: JobErrorCanceled, Err: context.Canceled}
	if got := outcomeFor(canceled).Status; got != types.OutcomeCanceled {
		t.Errorf("canceled = %s", got)
	}
	if !IsCanceledError(canceled) || !IsCanceledError(context.Canceled) {
		t.Error("IsCanceledError mismatch")
	}
	if JobErrorSink.String() != "sink_failure" {
		t.Errorf("JobErrorSink.String() = %q", JobErrorSink.String())
	}
}
