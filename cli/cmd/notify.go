package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/justapithecus/objext/adapter"
	"github.com/justapithecus/objext/adapter/redis"
	"github.com/justapithecus/objext/adapter/webhook"
	objextconfig "github.com/justapithecus/objext/cli/config"
	"github.com/justapithecus/objext/log"
	"github.com/justapithecus/objext/runtime"
)

// notifyTimeout bounds job-completed publishing, retries included.
const notifyTimeout = 30 * time.Second

// buildAdapter creates the configured notification adapter.
// Returns nil when no adapter is configured.
func buildAdapter(cfg objextconfig.AdapterConfig) (adapter.Adapter, error) {
	switch cfg.Type {
	case "":
		return nil, nil
	case objextconfig.AdapterWebhook:
		retries := webhook.DefaultRetries
		if cfg.Retries != nil {
			retries = *cfg.Retries
		}
		return webhook.New(webhook.Config{
			URL:     cfg.URL,
			Headers: cfg.Headers,
			Timeout: cfg.Timeout.Duration,
			Retries: retries,
		})
	case objextconfig.AdapterRedis:
		retries := redis.DefaultRetries
		if cfg.Retries != nil {
			retries = *cfg.Retries
		}
		return redis.New(redis.Config{
			URL:     cfg.URL,
			Channel: cfg.Channel,
			Timeout: cfg.Timeout.Duration,
			Retries: retries,
		})
	default:
		return nil, fmt.Errorf("unknown adapter type %q (must be webhook or redis)", cfg.Type)
	}
}

// buildJobCompletedEvent maps a job result onto the notification payload.
func buildJobCompletedEvent(result *runtime.JobResult, cfg *objextconfig.Config, output string, now time.Time) *adapter.JobCompletedEvent {
	return &adapter.JobCompletedEvent{
		SchemaVersion:  adapter.SchemaVersion,
		EventType:      adapter.EventTypeJobCompleted,
		JobID:          result.Meta.JobID,
		Process:        result.Meta.Process,
		Analyzer:       cfg.Analyzer.Name,
		Collection:     cfg.Analyzer.InputCollection,
		Outcome:        string(result.Outcome.Status),
		Message:        result.Outcome.Message,
		SinkMode:       cfg.Output.Mode,
		OutputPath:     output,
		Timestamp:      now.UTC().Format(time.RFC3339),
		EventsRead:     result.EventsRead,
		RecordsEmitted: result.RecordsEmitted,
		DurationMs:     result.Duration.Milliseconds(),
	}
}

// publishJobCompleted publishes the event, logging failures. The job outcome
// is already final, so a notification failure never changes the exit code.
func publishJobCompleted(ctx context.Context, a adapter.Adapter, event *adapter.JobCompletedEvent, logger *log.Logger) {
	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notifyTimeout)
	defer cancel()

	sugar := logger.Sugar().With("event_type", event.EventType, "outcome", event.Outcome)
	if err := a.Publish(pubCtx, event); err != nil {
		sugar.Warnf("job completed notification failed: %v", err)
		return
	}
	sugar.Debugf("job completed notification sent for %d records", event.RecordsEmitted)
}
