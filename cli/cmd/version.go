package cmd

import (
	"github.com/urfave/cli/v2"

	"github.com/justapithecus/objext/cli/render"
	"github.com/justapithecus/objext/types"
)

// VersionResponse is the response for the version command.
type VersionResponse struct {
	Version     string `json:"version"`
	Commit      string `json:"commit"`
	StoreFormat int    `json:"store_format"`
}

// VersionCommand returns the version command.
// It reports the binary version along with the event store format it reads.
func VersionCommand(_, commit string) *cli.Command {
	return &cli.Command{
		Name:   "version",
		Usage:  "Show version information",
		Flags:  ReadOnlyFlags(),
		Action: versionAction(commit),
	}
}

func versionAction(commit string) cli.ActionFunc {
	return func(c *cli.Context) error {
		r, err := render.NewRenderer(c)
		if err != nil {
			return err
		}

		// TUI not supported for version command
		if c.Bool("tui") {
			return cli.Exit("--tui is not supported for version command", 1)
		}

		resp := VersionResponse{
			Version:     types.Version,
			Commit:      commit,
			StoreFormat: types.StoreFormatVersion,
		}

		return r.Render(resp)
	}
}
