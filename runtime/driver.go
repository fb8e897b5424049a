package runtime

import (
	"context"
	"errors"
	"fmt"

	"github.com/justapithecus/objext/extract"
	"github.com/justapithecus/objext/limit"
	"github.com/justapithecus/objext/log"
	"github.com/justapithecus/objext/metrics"
	"github.com/justapithecus/objext/policy"
	"github.com/justapithecus/objext/resolve"
	"github.com/justapithecus/objext/types"
)

// State is the driver's processing state.
type State int

const (
	// StateIdle means no event is being processed.
	StateIdle State = iota
	// StateProcessing means an event callback is in progress.
	StateProcessing
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateProcessing:
		return "processing"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// EventError reports a failure while processing one event.
// Recoverable errors leave the job running; the event contributes no records.
type EventError struct {
	Run         uint64
	Event       uint64
	Recoverable bool
	Err         error
}

func (e *EventError) Error() string {
	return fmt.Sprintf("run %d event %d: %v", e.Run, e.Event, e.Err)
}

func (e *EventError) Unwrap() error {
	return e.Err
}

// IsRecoverable reports whether err is a recoverable per-event error.
func IsRecoverable(err error) bool {
	var evErr *EventError
	return errors.As(err, &evErr) && evErr.Recoverable
}

// DriverConfig configures a Driver.
type DriverConfig struct {
	// Collection is the tag of the collection to resolve in every event.
	Collection string
	// Extractor maps resolved objects to records.
	Extractor extract.Extractor
	// MaxObjects caps records per event. limit.Unbounded (0) disables the cap.
	MaxObjects int
	// Policy receives each event's records.
	Policy policy.Policy
	// Logger receives recoverable error reports. Nil discards them.
	Logger *log.Logger
	// Collector records per-event metrics. Nil is allowed.
	Collector *metrics.Collector
}

// Driver runs the per-event pipeline: resolve, extract, select, limit, deliver.
// A Driver is used from a single goroutine.
type Driver struct {
	config DriverConfig
	logger *log.Logger
	state  State

	eventsProcessed  int64
	eventsWithErrors int64
	recordsEmitted   int64
}

// NewDriver validates cfg and returns an idle driver.
func NewDriver(cfg DriverConfig) (*Driver, error) {
	if cfg.Collection == "" {
		return nil, errors.New("collection tag must be non-empty")
	}
	if cfg.Extractor == nil {
		return nil, errors.New("extractor is required")
	}
	if cfg.Policy == nil {
		return nil, errors.New("policy is required")
	}
	if cfg.MaxObjects < 0 {
		return nil, fmt.Errorf("max objects per event must be >= 0, got %d", cfg.MaxObjects)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.NewNop()
	}
	return &Driver{config: cfg, logger: logger}, nil
}

// State returns the current processing state.
func (d *Driver) State() State { return d.state }

// EventsProcessed returns the number of events handed to ProcessEvent.
func (d *Driver) EventsProcessed() int64 { return d.eventsProcessed }

// EventsWithErrors returns the number of events that failed to resolve.
func (d *Driver) EventsWithErrors() int64 { return d.eventsWithErrors }

// RecordsEmitted returns the number of records handed to the policy.
func (d *Driver) RecordsEmitted() int64 { return d.recordsEmitted }

// ProcessEvent runs the pipeline for ev. The driver is Idle again when it
// returns, whatever the result.
//
// Returns:
//   - nil: records (possibly none) were delivered
//   - *EventError with Recoverable=true: the collection could not be resolved
//   - *EventError with Recoverable=false: the policy or sink failed
func (d *Driver) ProcessEvent(ctx context.Context, ev *types.Event) error {
	d.state = StateProcessing
	defer func() { d.state = StateIdle }()

	d.eventsProcessed++
	run, num := eventKey(ev)

	objs, err := resolve.Resolve(ev, d.config.Collection, d.config.Extractor.Kind())
	if err != nil {
		d.eventsWithErrors++
		d.config.Collector.IncResolveError(resolveErrorKind(err))
		d.logger.Warn("collection not resolved", map[string]any{
			"run":        run,
			"event":      num,
			"collection": d.config.Collection,
			"error":      err.Error(),
		})
		return &EventError{Run: run, Event: num, Recoverable: true, Err: err}
	}

	records := extract.Run(d.config.Extractor, ev, objs)
	for i := range records {
		records[i].Seq = uint64(d.eventsProcessed)
	}
	emitted := limit.Apply(records, d.config.MaxObjects)
	d.config.Collector.RecordEvent(len(objs), len(records), len(records)-len(emitted))

	if err := d.config.Policy.Ingest(ctx, emitted); err != nil {
		return &EventError{Run: run, Event: num, Err: fmt.Errorf("deliver records: %w", err)}
	}
	d.recordsEmitted += int64(len(emitted))
	return nil
}

func eventKey(ev *types.Event) (run, event uint64) {
	if ev == nil {
		return 0, 0
	}
	return ev.Run, ev.Event
}

// resolveErrorKind names a resolver error for metrics.
func resolveErrorKind(err error) string {
	switch {
	case errors.Is(err, resolve.ErrCollectionNotFound):
		return "not_found"
	case errors.Is(err, resolve.ErrTypeMismatch):
		return "type_mismatch"
	default:
		return "other"
	}
}
