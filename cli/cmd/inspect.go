package cmd

import (
	"encoding/json"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/arrowbench/banditbench/cli/render"
	"github.com/arrowbench/banditbench/report"
)

// InspectCommand returns the inspect command with subcommands.
func InspectCommand() *cli.Command {
	return &cli.Command{
		Name:  "inspect",
		Usage: "Inspect a previously written run report",
		Subcommands: []*cli.Command{
			inspectReportCommand(),
		},
	}
}

func inspectReportCommand() *cli.Command {
	return &cli.Command{
		Name:  "report",
		Usage: "Show the full contents of a --report JSON file",
		Flags: append(ReadOnlyFlags(),
			&cli.StringFlag{Name: "path", Aliases: []string{"p"}, Required: true, Usage: "Path to a report JSON file"},
		),
		Action: inspectReportAction,
	}
}

func inspectReportAction(c *cli.Context) error {
	data, err := os.ReadFile(c.String("path"))
	if err != nil {
		return cli.Exit(err.Error(), exitConfigError)
	}

	var run report.Run
	if err := json.Unmarshal(data, &run); err != nil {
		return cli.Exit(err.Error(), exitConfigError)
	}

	r, err := render.NewRenderer(c)
	if err != nil {
		return err
	}
	return r.Render(run)
}
