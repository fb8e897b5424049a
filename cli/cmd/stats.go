package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	lodelibrary "github.com/justapithecus/lode/lode"
	"github.com/urfave/cli/v2"

	objextconfig "github.com/justapithecus/objext/cli/config"
	"github.com/justapithecus/objext/cli/reader"
	"github.com/justapithecus/objext/cli/render"
	"github.com/justapithecus/objext/cli/tui"
	"github.com/justapithecus/objext/lode"
	"github.com/justapithecus/objext/runtime"
)

// statsTimeout bounds the dataset scan behind stats.
const statsTimeout = 30 * time.Second

// StatsCommand returns the stats command.
// Stats reads back the metrics record a lode-mode job wrote on completion.
func StatsCommand() *cli.Command {
	return &cli.Command{
		Name:  "stats",
		Usage: "Show the metrics of a completed job from a lode dataset",
		Flags: append(TUIReadOnlyFlags(),
			&cli.StringFlag{Name: "storage-dataset", Usage: "Lode dataset ID", Value: lode.DefaultDataset},
			&cli.StringFlag{Name: "storage-backend", Usage: "Storage backend: fs or s3", Value: objextconfig.BackendFS},
			&cli.StringFlag{Name: "storage-path", Usage: "Storage path (fs: directory, s3: bucket/prefix)", Required: true},
			&cli.StringFlag{Name: "storage-region", Usage: "AWS region for S3 backend"},
			&cli.StringFlag{Name: "storage-endpoint", Usage: "Custom S3 endpoint URL (MinIO, R2)"},
			&cli.BoolFlag{Name: "storage-s3-path-style", Usage: "Force S3 path-style addressing"},
			&cli.StringFlag{Name: "job-id", Usage: "Read metrics for a specific job (default: latest)"},
			&cli.StringFlag{Name: "analyzer", Usage: "Filter by analyzer partition"},
		),
		Action: statsAction,
	}
}

func statsAction(c *cli.Context) error {
	r, err := render.NewRenderer(c)
	if err != nil {
		return cli.Exit(err.Error(), runtime.ExitCodeConfigError)
	}

	ctx := c.Context
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, statsTimeout)
	defer cancel()

	ds, err := buildReadDataset(ctx, c)
	if err != nil {
		return cli.Exit(fmt.Sprintf("failed to initialize storage reader: %v", err), runtime.ExitCodeConfigError)
	}

	snapshot, err := reader.StatsMetrics(ctx, ds, c.String("job-id"), c.String("analyzer"))
	if errors.Is(err, lode.ErrNoMetricsFound) {
		return cli.Exit("no metrics found (was the job run with --output lode?)", runtime.ExitCodeInputError)
	}
	if err != nil {
		return cli.Exit(fmt.Sprintf("failed to read metrics: %v", err), runtime.ExitCodeInputError)
	}

	if c.Bool("tui") {
		if !isTerminal(os.Stdout) {
			_, err := fmt.Fprintln(c.App.Writer, tui.RenderStatsStatic(tui.ViewStatsMetrics, snapshot))
			return err
		}
		return r.RenderTUI(tui.ViewStatsMetrics, snapshot)
	}

	return r.Render(snapshot)
}

// buildReadDataset creates a Lode Dataset for reading based on CLI flags.
func buildReadDataset(ctx context.Context, c *cli.Context) (lodelibrary.Dataset, error) {
	dataset := c.String("storage-dataset")
	path := c.String("storage-path")

	switch backend := c.String("storage-backend"); backend {
	case objextconfig.BackendFS:
		return lode.NewReadDatasetFS(dataset, path)
	case objextconfig.BackendS3:
		bucket, prefix := lode.ParseS3Path(path)
		return lode.NewReadDatasetS3(ctx, dataset, lode.S3Config{
			Bucket:       bucket,
			Prefix:       prefix,
			Region:       c.String("storage-region"),
			Endpoint:     c.String("storage-endpoint"),
			UsePathStyle: c.Bool("storage-s3-path-style"),
		})
	default:
		return nil, fmt.Errorf("unsupported storage-backend: %s (must be fs or s3)", backend)
	}
}
