package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/urfave/cli/v2"

	objextconfig "github.com/justapithecus/objext/cli/config"
	"github.com/justapithecus/objext/extract"
	"github.com/justapithecus/objext/iox"
	"github.com/justapithecus/objext/lode"
	"github.com/justapithecus/objext/log"
	"github.com/justapithecus/objext/metrics"
	"github.com/justapithecus/objext/runtime"
	"github.com/justapithecus/objext/sink"
	"github.com/justapithecus/objext/source"
	"github.com/justapithecus/objext/types"
)

// RunCommand returns the run command.
// It is the only command that writes records.
func RunCommand() *cli.Command {
	return &cli.Command{
		Name:  "run",
		Usage: "Extract object attributes from event store files",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "config",
				Usage: "Path to YAML process configuration (CLI flags override)",
			},
			// Job flags
			&cli.StringFlag{Name: "job-id", Usage: "Job ID (generated when empty)"},
			&cli.StringFlag{Name: "process", Usage: "Informational process name"},
			&cli.StringSliceFlag{
				Name:    "input",
				Aliases: []string{"i"},
				Usage:   "Input URI (path, file:, s3://, http(s)://); repeatable, replaces input_files",
			},
			&cli.Int64Flag{Name: "max-events", Usage: "Stop after N events (0 = all)"},
			&cli.StringFlag{Name: "log-level", Usage: "Log level: debug, info, warn, error"},
			&cli.StringFlag{Name: "log-format", Usage: "Log format: json or console"},
			// Analyzer flags
			&cli.StringFlag{
				Name:  "analyzer",
				Usage: "Analyzer: " + strings.Join(extract.Names(), ", "),
			},
			&cli.StringFlag{Name: "collection", Usage: "Input collection tag"},
			&cli.IntFlag{Name: "max-objects", Usage: "Maximum records per event (0 = unbounded)"},
			// Output flags
			&cli.StringFlag{Name: "output", Usage: "Output mode: log, csv or lode"},
			&cli.StringFlag{Name: "csv-path", Usage: "CSV output file (csv mode)"},
			&cli.StringFlag{Name: "csv-layout", Usage: "CSV layout: long or wide"},
			// Policy flags
			&cli.StringFlag{Name: "policy", Usage: "Delivery policy: strict or buffered"},
			&cli.IntFlag{Name: "buffer-records", Usage: "Max buffered records (buffered policy)"},
			// Storage flags
			&cli.StringFlag{Name: "storage-dataset", Usage: "Lode dataset ID"},
			&cli.StringFlag{Name: "storage-backend", Usage: "Lode storage backend: fs or s3"},
			&cli.StringFlag{Name: "storage-path", Usage: "Storage path (fs: directory, s3: bucket/prefix)"},
			&cli.StringFlag{Name: "storage-region", Usage: "AWS region for the S3 backend and s3:// inputs"},
			&cli.StringFlag{Name: "storage-endpoint", Usage: "Custom S3 endpoint URL (MinIO, R2)"},
			&cli.BoolFlag{Name: "storage-s3-path-style", Usage: "Force S3 path-style addressing"},
			// Adapter flags
			&cli.StringFlag{Name: "adapter", Usage: "Job-completed notification: webhook or redis"},
			&cli.StringFlag{Name: "adapter-url", Usage: "Adapter endpoint URL"},
			&cli.StringFlag{Name: "adapter-channel", Usage: "Redis pub/sub channel"},
			&cli.StringSliceFlag{Name: "adapter-header", Usage: "Webhook header as Key=Value; repeatable"},
			&cli.DurationFlag{Name: "adapter-timeout", Usage: "Per-request adapter timeout"},
			&cli.IntFlag{Name: "adapter-retries", Usage: "Adapter retry attempts"},
			// Output control
			&cli.BoolFlag{Name: "dry-run", Usage: "Process events without writing records"},
			&cli.StringFlag{Name: "report", Usage: "Write a JSON job report to this path (- for stderr)"},
			&cli.BoolFlag{Name: "quiet", Aliases: []string{"q"}, Usage: "Suppress the result summary"},
		},
		Action: runAction,
	}
}

func runAction(c *cli.Context) error {
	cfg, err := resolveConfig(c)
	if err != nil {
		return cli.Exit(err.Error(), runtime.ExitCodeConfigError)
	}

	ext, err := extract.Lookup(cfg.Analyzer.Name)
	if err != nil {
		return cli.Exit(err.Error(), runtime.ExitCodeConfigError)
	}

	meta := &types.JobMeta{JobID: cfg.JobID, Process: cfg.Process}
	if meta.JobID == "" {
		meta.JobID = uuid.NewString()
	}

	logger, err := log.New(meta, log.Options{Level: cfg.LogLevel, Format: cfg.LogFormat})
	if err != nil {
		return cli.Exit(fmt.Sprintf("invalid logging config: %v", err), runtime.ExitCodeConfigError)
	}
	defer iox.DiscardErr(logger.Sync)

	notifier, err := buildAdapter(cfg.Adapter)
	if err != nil {
		return cli.Exit(fmt.Sprintf("invalid adapter config: %v", err), runtime.ExitCodeConfigError)
	}
	if notifier != nil {
		defer iox.DiscardClose(notifier)
	}

	ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dryRun := c.Bool("dry-run")
	startTime := time.Now()

	jobCfg := &runtime.JobConfig{
		Meta:       meta,
		Inputs:     cfg.InputFiles,
		MaxEvents:  cfg.MaxEvents,
		Collection: cfg.Analyzer.InputCollection,
		Extractor:  ext,
		MaxObjects: cfg.Analyzer.MaxObjectsPerEvent,
		Sink: sink.Config{
			Mode:      cfg.Output.Mode,
			CSVPath:   cfg.Output.CSVPath,
			CSVLayout: cfg.Output.CSVLayout,
		},
		Policy:        cfg.Policy.Name,
		BufferRecords: cfg.Policy.BufferRecords,
		DryRun:        dryRun,
		Opener:        source.NewResolver(inputS3Config(cfg.Storage)),
		Logger:        logger,
		Collector: metrics.NewCollector(metrics.Dimensions{
			Analyzer:       ext.Name(),
			Policy:         cfg.Policy.Name,
			SinkMode:       cfg.Output.Mode,
			StorageBackend: storageBackend(cfg),
			JobID:          meta.JobID,
		}),
	}

	if cfg.Output.Mode == sink.ModeLode && !dryRun {
		client, err := buildLodeClient(ctx, cfg, meta.JobID, startTime)
		if err != nil {
			return cli.Exit(fmt.Sprintf("failed to open lode dataset: %v", err), runtime.ExitCodeSinkFailure)
		}
		jobCfg.Sink.Lode = client
		jobCfg.Metrics = client
	}

	job, err := runtime.NewJob(jobCfg)
	if err != nil {
		return cli.Exit(fmt.Sprintf("invalid job: %v", err), runtime.ExitCodeConfigError)
	}

	result, err := job.Execute(ctx)
	if err != nil {
		return fmt.Errorf("execution failed: %w", err)
	}
	exitCode := runtime.ExitCode(result.Outcome.Status)

	if path := c.String("report"); path != "" {
		report := runtime.BuildJobReport(result, jobCfg, exitCode)
		if err := runtime.WriteJobReport(report, path); err != nil {
			logger.Sugar().Warnf("failed to write job report: %v", err)
		} else {
			logger.Sugar().Infof("job report written to %s", path)
		}
	}

	if notifier != nil && !dryRun {
		event := buildJobCompletedEvent(result, cfg, outputPath(cfg), time.Now())
		publishJobCompleted(ctx, notifier, event, logger)
	}

	if !c.Bool("quiet") {
		printJobResult(c.App.Writer, result, cfg, dryRun)
	}

	return cli.Exit("", exitCode)
}

// resolveConfig loads --config (if any), applies CLI overrides and defaults
// and validates the result.
func resolveConfig(c *cli.Context) (*objextconfig.Config, error) {
	cfg := &objextconfig.Config{}
	if path := c.String("config"); path != "" {
		loaded, err := objextconfig.Load(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if err := applyFlags(c, cfg); err != nil {
		return nil, err
	}
	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration:\n%w", err)
	}
	return cfg, nil
}

// applyFlags overlays explicitly set CLI flags onto cfg.
func applyFlags(c *cli.Context, cfg *objextconfig.Config) error {
	cfg.JobID = resolveString(c, "job-id", cfg.JobID)
	cfg.Process = resolveString(c, "process", cfg.Process)
	if c.IsSet("input") {
		cfg.InputFiles = c.StringSlice("input")
	}
	cfg.MaxEvents = resolveInt64(c, "max-events", cfg.MaxEvents)
	cfg.LogLevel = resolveString(c, "log-level", cfg.LogLevel)
	cfg.LogFormat = resolveString(c, "log-format", cfg.LogFormat)

	cfg.Analyzer.Name = resolveString(c, "analyzer", cfg.Analyzer.Name)
	cfg.Analyzer.InputCollection = resolveString(c, "collection", cfg.Analyzer.InputCollection)
	cfg.Analyzer.MaxObjectsPerEvent = resolveInt(c, "max-objects", cfg.Analyzer.MaxObjectsPerEvent)

	cfg.Output.Mode = resolveString(c, "output", cfg.Output.Mode)
	cfg.Output.CSVPath = resolveString(c, "csv-path", cfg.Output.CSVPath)
	cfg.Output.CSVLayout = resolveString(c, "csv-layout", cfg.Output.CSVLayout)

	cfg.Policy.Name = resolveString(c, "policy", cfg.Policy.Name)
	cfg.Policy.BufferRecords = resolveInt(c, "buffer-records", cfg.Policy.BufferRecords)

	cfg.Storage.Dataset = resolveString(c, "storage-dataset", cfg.Storage.Dataset)
	cfg.Storage.Backend = resolveString(c, "storage-backend", cfg.Storage.Backend)
	cfg.Storage.Path = resolveString(c, "storage-path", cfg.Storage.Path)
	cfg.Storage.Region = resolveString(c, "storage-region", cfg.Storage.Region)
	cfg.Storage.Endpoint = resolveString(c, "storage-endpoint", cfg.Storage.Endpoint)
	cfg.Storage.S3PathStyle = resolveBool(c, "storage-s3-path-style", cfg.Storage.S3PathStyle)

	return applyAdapterFlags(c, &cfg.Adapter)
}

func applyAdapterFlags(c *cli.Context, a *objextconfig.AdapterConfig) error {
	a.Type = resolveString(c, "adapter", a.Type)
	a.URL = resolveString(c, "adapter-url", a.URL)
	a.Channel = resolveString(c, "adapter-channel", a.Channel)
	a.Timeout.Duration = resolveDuration(c, "adapter-timeout", a.Timeout.Duration)
	if c.IsSet("adapter-retries") {
		retries := c.Int("adapter-retries")
		a.Retries = &retries
	}

	for _, h := range c.StringSlice("adapter-header") {
		key, value, ok := strings.Cut(h, "=")
		if !ok || strings.TrimSpace(key) == "" {
			return fmt.Errorf("invalid --adapter-header %q: expected Key=Value", h)
		}
		if a.Headers == nil {
			a.Headers = make(map[string]string)
		}
		a.Headers[strings.TrimSpace(key)] = value
	}
	return nil
}

// resolveString returns the CLI value if explicitly set, otherwise the config
// value, otherwise the flag default.
func resolveString(c *cli.Context, name, cfgVal string) string {
	if c.IsSet(name) {
		return c.String(name)
	}
	if cfgVal != "" {
		return cfgVal
	}
	return c.String(name)
}

func resolveInt(c *cli.Context, name string, cfgVal int) int {
	if c.IsSet(name) {
		return c.Int(name)
	}
	return cfgVal
}

func resolveInt64(c *cli.Context, name string, cfgVal int64) int64 {
	if c.IsSet(name) {
		return c.Int64(name)
	}
	return cfgVal
}

func resolveBool(c *cli.Context, name string, cfgVal bool) bool {
	if c.IsSet(name) {
		return c.Bool(name)
	}
	return cfgVal
}

func resolveDuration(c *cli.Context, name string, cfgVal time.Duration) time.Duration {
	if c.IsSet(name) {
		return c.Duration(name)
	}
	return cfgVal
}

// buildLodeClient opens the lode dataset for the job's partition.
func buildLodeClient(ctx context.Context, cfg *objextconfig.Config, jobID string, startTime time.Time) (*lode.LodeClient, error) {
	lcfg := lode.Config{
		Dataset:    cfg.Storage.Dataset,
		Analyzer:   cfg.Analyzer.Name,
		Collection: cfg.Analyzer.InputCollection,
		Day:        lode.DeriveDay(startTime),
		JobID:      jobID,
	}

	switch cfg.Storage.Backend {
	case objextconfig.BackendS3:
		bucket, prefix := lode.ParseS3Path(cfg.Storage.Path)
		return lode.NewLodeS3Client(ctx, lcfg, lode.S3Config{
			Bucket:       bucket,
			Prefix:       prefix,
			Region:       cfg.Storage.Region,
			Endpoint:     cfg.Storage.Endpoint,
			UsePathStyle: cfg.Storage.S3PathStyle,
		})
	default:
		if err := os.MkdirAll(cfg.Storage.Path, 0o755); err != nil {
			return nil, lode.WrapInitError(err, cfg.Storage.Dataset)
		}
		return lode.NewLodeClient(lcfg, cfg.Storage.Path)
	}
}

// inputS3Config carries the storage region and endpoint over to s3:// inputs.
func inputS3Config(s objextconfig.StorageConfig) lode.S3Config {
	return lode.S3Config{
		Region:       s.Region,
		Endpoint:     s.Endpoint,
		UsePathStyle: s.S3PathStyle,
	}
}

func storageBackend(cfg *objextconfig.Config) string {
	if cfg.Output.Mode != sink.ModeLode {
		return ""
	}
	return cfg.Storage.Backend
}

// outputPath describes where records went, for notifications.
func outputPath(cfg *objextconfig.Config) string {
	switch cfg.Output.Mode {
	case sink.ModeCSV:
		return cfg.Output.CSVPath
	case sink.ModeLode:
		return buildStoragePath(cfg.Storage)
	default:
		return ""
	}
}

// buildStoragePath renders the dataset root as a URI.
func buildStoragePath(s objextconfig.StorageConfig) string {
	switch s.Backend {
	case objextconfig.BackendS3:
		bucket, prefix := lode.ParseS3Path(s.Path)
		if prefix == "" {
			return fmt.Sprintf("s3://%s/datasets/%s", bucket, s.Dataset)
		}
		return fmt.Sprintf("s3://%s/%s/datasets/%s", bucket, prefix, s.Dataset)
	default:
		return fmt.Sprintf("file://%s/datasets/%s", s.Path, s.Dataset)
	}
}

func printJobResult(w io.Writer, result *runtime.JobResult, cfg *objextconfig.Config, dryRun bool) {
	if w == nil {
		w = os.Stdout
	}
	mode := cfg.Output.Mode
	if dryRun {
		mode = "dry-run"
	}

	_, _ = fmt.Fprintf(w, "\njob_id=%s, outcome=%s, duration=%s\n",
		result.Meta.JobID,
		result.Outcome.Status,
		result.Duration.Round(time.Millisecond),
	)
	_, _ = fmt.Fprintf(w, "analyzer=%s, collection=%s, output=%s, policy=%s\n",
		cfg.Analyzer.Name, cfg.Analyzer.InputCollection, mode, cfg.Policy.Name)

	_, _ = fmt.Fprintf(w, "\n=== Job Result ===\n")
	_, _ = fmt.Fprintf(w, "Events Read:        %d\n", result.EventsRead)
	_, _ = fmt.Fprintf(w, "Events With Errors: %d\n", result.EventsWithErrors)
	_, _ = fmt.Fprintf(w, "Records Emitted:    %d\n", result.RecordsEmitted)
	if result.Outcome.Message != "" {
		_, _ = fmt.Fprintf(w, "Message:            %s\n", result.Outcome.Message)
	}

	_, _ = fmt.Fprintf(w, "\n=== Policy Stats ===\n")
	_, _ = fmt.Fprintf(w, "Records Total:     %d\n", result.PolicyStats.TotalRecords)
	_, _ = fmt.Fprintf(w, "Records Persisted: %d\n", result.PolicyStats.RecordsPersisted)
	_, _ = fmt.Fprintf(w, "Batches:           %d\n", result.PolicyStats.TotalBatches)
	_, _ = fmt.Fprintf(w, "Flushes:           %d\n", result.PolicyStats.FlushCount)
}
