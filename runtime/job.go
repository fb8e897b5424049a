package runtime

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/justapithecus/objext/extract"
	"github.com/justapithecus/objext/iox"
	"github.com/justapithecus/objext/lode"
	"github.com/justapithecus/objext/log"
	"github.com/justapithecus/objext/metrics"
	"github.com/justapithecus/objext/policy"
	"github.com/justapithecus/objext/sink"
	"github.com/justapithecus/objext/source"
	"github.com/justapithecus/objext/store"
	"github.com/justapithecus/objext/types"
)

// DefaultCloseTimeout bounds the buffered policy's final flush.
const DefaultCloseTimeout = 30 * time.Second

// MetricsWriter persists the final metrics snapshot of a job.
type MetricsWriter interface {
	WriteMetrics(ctx context.Context, snap metrics.Snapshot, completedAt time.Time) error
}

// JobConfig configures a single job.
type JobConfig struct {
	// Meta is the job identity.
	Meta *types.JobMeta
	// Inputs are input URIs, processed in order.
	Inputs []string
	// MaxEvents stops the job after this many events. 0 reads all input.
	MaxEvents int64
	// Collection is the collection tag resolved in every event.
	Collection string
	// Extractor is the analyzer variant.
	Extractor extract.Extractor
	// MaxObjects caps records per event. 0 is unbounded.
	MaxObjects int
	// Sink selects the record sink. The job opens it and closes it on
	// every exit path.
	Sink sink.Config
	// Policy is policy.NameStrict (default) or policy.NameBuffered.
	Policy string
	// BufferRecords is the buffered policy capacity.
	BufferRecords int
	// DryRun processes events without opening a sink.
	DryRun bool
	// Opener resolves input URIs. Nil uses a default source.Resolver.
	Opener source.Opener
	// Logger is the job logger. Nil creates a JSON logger on stderr.
	Logger *log.Logger
	// Collector is the metrics collector for this job.
	// If nil, no metrics are recorded (all Collector methods are nil-safe).
	Collector *metrics.Collector
	// Metrics, when set, receives the final metrics snapshot (best effort).
	Metrics MetricsWriter
	// CloseTimeout bounds the buffered policy's final flush. Zero uses
	// DefaultCloseTimeout.
	CloseTimeout time.Duration
}

// JobResult represents the result of a job.
type JobResult struct {
	// Meta is the job identity.
	Meta *types.JobMeta
	// Outcome is the job outcome.
	Outcome *types.JobOutcome
	// Duration is the total job duration.
	Duration time.Duration
	// EventsRead is the number of events decoded from input.
	EventsRead int64
	// EventsWithErrors is the number of events whose collection did not resolve.
	EventsWithErrors int64
	// RecordsEmitted is the number of records handed to the policy.
	RecordsEmitted int64
	// PolicyStats is the policy statistics.
	PolicyStats policy.Stats
	// Metrics is the final metrics snapshot.
	Metrics metrics.Snapshot
}

// Job runs the per-event driver over all inputs.
type Job struct {
	config    *JobConfig
	logger    *log.Logger
	opener    source.Opener
	startTime time.Time

	policy     policy.Policy
	driver     *Driver
	eventsRead int64
}

// NewJob validates the job configuration.
func NewJob(config *JobConfig) (*Job, error) {
	if config.Meta == nil {
		return nil, errors.New("job metadata is required")
	}
	if err := config.Meta.Validate(); err != nil {
		return nil, fmt.Errorf("invalid job metadata: %w", err)
	}
	if config.Collection == "" {
		return nil, errors.New("collection tag must be non-empty")
	}
	if config.Extractor == nil {
		return nil, errors.New("extractor is required")
	}
	if config.MaxEvents < 0 {
		return nil, fmt.Errorf("max events must be >= 0, got %d", config.MaxEvents)
	}

	logger := config.Logger
	if logger == nil {
		logger = log.NewLogger(config.Meta)
	}
	opener := config.Opener
	if opener == nil {
		opener = source.NewResolver(lode.S3Config{})
	}

	return &Job{
		config: config,
		logger: logger.With(zap.String("analyzer", config.Extractor.Name())),
		opener: opener,
	}, nil
}

// Execute runs the job end-to-end.
//
// Execution flow:
//  1. Open the sink and build the policy (failure ends the job before any event)
//  2. Read every input in order, processing each event
//  3. Stop at MaxEvents, end of input, a fatal error or cancellation
//  4. Close the policy (flush + sink close) on every path
//  5. Determine outcome and record metrics
//
// The returned error is always nil; failures are reported in the outcome.
func (j *Job) Execute(ctx context.Context) (*JobResult, error) {
	j.startTime = time.Now()
	j.config.Collector.IncJobStarted()

	j.logger.Info("starting job", map[string]any{
		"analyzer":   j.config.Extractor.Name(),
		"collection": j.config.Collection,
		"inputs":     len(j.config.Inputs),
		"max_events": j.config.MaxEvents,
		"sink":       j.sinkMode(),
	})

	if err := j.openPipeline(ctx); err != nil {
		j.logger.Error("failed to open sink", map[string]any{"error": err.Error()})
		return j.buildResult(ctx, &JobError{Kind: JobErrorSink, Err: err}), nil
	}

	runErr := j.readInputs(ctx)

	closeErr := j.policy.Close()
	if closeErr != nil {
		j.logger.Error("policy close failed", map[string]any{"error": closeErr.Error()})
		if runErr == nil {
			runErr = &JobError{Kind: JobErrorSink, Err: fmt.Errorf("flush records: %w", closeErr)}
		}
	}

	return j.buildResult(ctx, runErr), nil
}

func (j *Job) sinkMode() string {
	if j.config.DryRun {
		return "dry-run"
	}
	if j.config.Sink.Mode == "" {
		return sink.ModeLog
	}
	return j.config.Sink.Mode
}

// openPipeline opens the sink, wraps it with metrics and builds the policy
// and driver.
func (j *Job) openPipeline(ctx context.Context) error {
	schema := j.config.Extractor.Schema()

	if j.config.DryRun {
		j.policy = policy.NewNoopPolicy()
	} else {
		cfg := j.config.Sink
		if cfg.Logger == nil {
			cfg.Logger = j.logger
		}
		if cfg.MaxObjects == 0 {
			cfg.MaxObjects = j.config.MaxObjects
		}

		s, err := sink.Open(cfg, schema)
		if err != nil {
			return err
		}
		if fw, ok := cfg.Lode.(lode.FileWriter); ok && cfg.Mode == sink.ModeLode {
			if err := lode.WriteSchema(ctx, fw, schema); err != nil {
				iox.DiscardClose(s)
				return err
			}
		}

		pol, err := j.newPolicy(lode.NewInstrumentedSink(s, j.config.Collector))
		if err != nil {
			iox.DiscardClose(s)
			return err
		}
		j.policy = pol
	}

	driver, err := NewDriver(DriverConfig{
		Collection: j.config.Collection,
		Extractor:  j.config.Extractor,
		MaxObjects: j.config.MaxObjects,
		Policy:     j.policy,
		Logger:     j.logger,
		Collector:  j.config.Collector,
	})
	if err != nil {
		iox.DiscardClose(j.policy)
		return err
	}
	j.driver = driver
	return nil
}

func (j *Job) newPolicy(s policy.Sink) (policy.Policy, error) {
	switch j.config.Policy {
	case policy.NameStrict, "":
		return policy.NewStrictPolicy(s), nil
	case policy.NameBuffered:
		cfg := policy.DefaultBufferedConfig()
		if j.config.BufferRecords > 0 {
			cfg.MaxBufferRecords = j.config.BufferRecords
		}
		cfg.Logger = j.logger
		cfg.CloseTimeout = j.config.CloseTimeout
		if cfg.CloseTimeout <= 0 {
			cfg.CloseTimeout = DefaultCloseTimeout
		}
		return policy.NewBufferedPolicy(s, cfg)
	default:
		return nil, fmt.Errorf("unknown policy %q", j.config.Policy)
	}
}

// readInputs processes inputs until the event cap, end of input or a fatal error.
func (j *Job) readInputs(ctx context.Context) error {
	for _, uri := range j.config.Inputs {
		done, err := j.readInput(ctx, uri)
		if err != nil || done {
			return err
		}
	}
	return nil
}

// readInput processes one input. done reports that the event cap was reached.
func (j *Job) readInput(ctx context.Context, uri string) (done bool, err error) {
	if err := ctx.Err(); err != nil {
		return false, &JobError{Kind: JobErrorCanceled, Err: err}
	}

	rc, err := j.opener.Open(ctx, uri)
	if err != nil {
		return false, &JobError{Kind: JobErrorInput, Err: err}
	}
	defer iox.DiscardClose(rc)
	j.config.Collector.IncInputFileOpened()

	j.logger.Debug("reading input", map[string]any{"input": uri})

	reader := store.NewReader(rc)
	for {
		if j.capReached() {
			return true, nil
		}
		if err := ctx.Err(); err != nil {
			return false, &JobError{Kind: JobErrorCanceled, Err: err}
		}

		ev, err := reader.Next()
		if errors.Is(err, io.EOF) {
			return false, nil
		}
		if err != nil {
			j.config.Collector.IncStoreDecodeErrors()
			return false, &JobError{Kind: JobErrorInput, Err: fmt.Errorf("%s: %w", uri, err)}
		}

		j.eventsRead++
		j.config.Collector.IncEventsRead()

		if err := j.driver.ProcessEvent(ctx, ev); err != nil {
			if IsRecoverable(err) {
				continue
			}
			return false, &JobError{Kind: JobErrorSink, Err: err}
		}
	}
}

func (j *Job) capReached() bool {
	return j.config.MaxEvents > 0 && j.eventsRead >= j.config.MaxEvents
}

// buildResult constructs the final job result and records outcome metrics.
func (j *Job) buildResult(ctx context.Context, runErr error) *JobResult {
	outcome := outcomeFor(runErr)

	result := &JobResult{
		Meta:       j.config.Meta,
		Outcome:    outcome,
		Duration:   time.Since(j.startTime),
		EventsRead: j.eventsRead,
	}
	if j.driver != nil {
		result.EventsWithErrors = j.driver.EventsWithErrors()
		result.RecordsEmitted = j.driver.RecordsEmitted()
	}
	if j.policy != nil {
		result.PolicyStats = j.policy.Stats()
	}

	switch outcome.Status {
	case types.OutcomeSuccess:
		j.config.Collector.IncJobCompleted()
	case types.OutcomeCanceled:
		j.config.Collector.IncJobCanceled()
	default:
		j.config.Collector.IncJobFailed()
	}
	ps := result.PolicyStats
	j.config.Collector.AbsorbPolicyStats(ps.TotalRecords, ps.RecordsPersisted)
	result.Metrics = j.config.Collector.Snapshot()

	fields := map[string]any{
		"outcome":            outcome.Status,
		"events_read":        result.EventsRead,
		"events_with_errors": result.EventsWithErrors,
		"records_emitted":    result.RecordsEmitted,
		"duration":           result.Duration.String(),
	}
	if outcome.Status == types.OutcomeSuccess {
		j.logger.Info("job completed", fields)
	} else {
		fields["message"] = outcome.Message
		j.logger.Error("job failed", fields)
	}

	if j.config.Metrics != nil {
		writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), DefaultCloseTimeout)
		defer cancel()
		if err := j.config.Metrics.WriteMetrics(writeCtx, result.Metrics, time.Now()); err != nil {
			j.logger.Warn("metrics write failed (best effort)", map[string]any{"error": err.Error()})
		}
	}

	return result
}
