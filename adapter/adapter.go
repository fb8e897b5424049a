// Package adapter publishes job completion notifications to downstream
// systems (webhooks, Redis pub/sub).
//
// Adapters run after the extraction pipeline has finished; a failed
// notification never changes the job outcome.
package adapter

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// EventTypeJobCompleted is the event_type of every notification.
const EventTypeJobCompleted = "job_completed"

// SchemaVersion is the version of the JobCompletedEvent payload.
const SchemaVersion = "1"

// DefaultBackoff is the delay before the first retry. Each further retry doubles it.
const DefaultBackoff = 500 * time.Millisecond

// JobCompletedEvent is the payload published when a job finishes.
type JobCompletedEvent struct {
	SchemaVersion  string `json:"schema_version"`
	EventType      string `json:"event_type"`
	JobID          string `json:"job_id"`
	Process        string `json:"process,omitempty"`
	Analyzer       string `json:"analyzer"`
	Collection     string `json:"collection"`
	Outcome        string `json:"outcome"`
	Message        string `json:"message,omitempty"`
	SinkMode       string `json:"sink_mode"`
	OutputPath     string `json:"output_path,omitempty"`
	Timestamp      string `json:"timestamp"`
	EventsRead     int64  `json:"events_read"`
	RecordsEmitted int64  `json:"records_emitted"`
	DurationMs     int64  `json:"duration_ms"`
}

// Adapter publishes job completion events to a downstream system.
type Adapter interface {
	// Publish sends a job completion event to the downstream system.
	// Must respect context cancellation and deadlines.
	Publish(ctx context.Context, event *JobCompletedEvent) error

	// Close releases adapter resources.
	Close() error
}

// PermanentError marks a failure that retrying cannot fix.
type PermanentError struct {
	Err error
}

func (e *PermanentError) Error() string { return e.Err.Error() }

func (e *PermanentError) Unwrap() error { return e.Err }

// Retry calls fn up to 1+retries times with exponential backoff starting at
// base (DefaultBackoff when zero). A *PermanentError stops retrying.
// The name prefixes returned errors.
func Retry(ctx context.Context, name string, retries int, base time.Duration, fn func(context.Context) error) error {
	if base <= 0 {
		base = DefaultBackoff
	}
	attempts := 1 + retries

	var lastErr error
	for i := range attempts {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("%s: context canceled: %w", name, err)
		}

		if i > 0 {
			backoff := time.Duration(1<<uint(i-1)) * base
			timer := time.NewTimer(backoff)
			select {
			case <-ctx.Done():
				timer.Stop()
				return fmt.Errorf("%s: context canceled during backoff: %w", name, ctx.Err())
			case <-timer.C:
			}
		}

		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}

		var perm *PermanentError
		if errors.As(lastErr, &perm) {
			return fmt.Errorf("%s: non-retriable error: %w", name, perm.Err)
		}
	}

	return fmt.Errorf("%s: failed after %d attempts: %w", name, attempts, lastErr)
}
