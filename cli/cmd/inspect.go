package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/justapithecus/objext/cli/reader"
	"github.com/justapithecus/objext/cli/render"
	"github.com/justapithecus/objext/cli/tui"
	"github.com/justapithecus/objext/lode"
	"github.com/justapithecus/objext/runtime"
	"github.com/justapithecus/objext/source"
)

// InspectCommand returns the inspect command.
// Inspect summarizes the collections carried by one event store file.
func InspectCommand() *cli.Command {
	return &cli.Command{
		Name:  "inspect",
		Usage: "Summarize the collections in an event store file",
		Flags: append(TUIReadOnlyFlags(),
			&cli.StringFlag{
				Name:     "input",
				Aliases:  []string{"i"},
				Usage:    "Event store URI (path, file:, s3:// or http(s)://)",
				Required: true,
			},
			&cli.Int64Flag{Name: "limit", Usage: "Stop after N events (0 = all)"},
			&cli.StringFlag{Name: "storage-region", Usage: "AWS region for s3:// inputs"},
			&cli.StringFlag{Name: "storage-endpoint", Usage: "Custom S3 endpoint URL (MinIO, R2)"},
			&cli.BoolFlag{Name: "storage-s3-path-style", Usage: "Force S3 path-style addressing"},
		),
		Action: inspectAction,
	}
}

func inspectAction(c *cli.Context) error {
	if c.Int64("limit") < 0 {
		return cli.Exit("--limit must be >= 0", runtime.ExitCodeConfigError)
	}

	r, err := render.NewRenderer(c)
	if err != nil {
		return cli.Exit(err.Error(), runtime.ExitCodeConfigError)
	}

	opener := source.NewResolver(lode.S3Config{
		Region:       c.String("storage-region"),
		Endpoint:     c.String("storage-endpoint"),
		UsePathStyle: c.Bool("storage-s3-path-style"),
	})

	ctx := c.Context
	if ctx == nil {
		ctx = context.Background()
	}

	resp, err := reader.InspectStore(ctx, opener, c.String("input"), c.Int64("limit"))
	if err != nil {
		return cli.Exit(fmt.Sprintf("inspect failed: %v", err), runtime.ExitCodeInputError)
	}

	if c.Bool("tui") {
		// Without a terminal there is nothing to drive; print the static view.
		if !isTerminal(os.Stdout) {
			_, err := fmt.Fprintln(c.App.Writer, tui.RenderInspectStatic(tui.ViewInspectStore, resp))
			return err
		}
		return r.RenderTUI(tui.ViewInspectStore, resp)
	}

	return r.Render(resp)
}
