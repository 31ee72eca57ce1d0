package cmd

import (
	"github.com/urfave/cli/v2"

	"github.com/arrowbench/banditbench/cli/config"
	"github.com/arrowbench/banditbench/cli/render"
)

// simulationSummary is the thin, read-only view list emits for one
// configured simulation — the config equivalent of the teacher's thin
// "list runs" slices.
type simulationSummary struct {
	Index  int    `json:"index"`
	Type   string `json:"type"`
	Format string `json:"from_format"`
	Lazy   bool   `json:"lazy"`
}

// ListCommand returns the list command with subcommands.
func ListCommand() *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "List entities described by a benchmark config",
		Subcommands: []*cli.Command{
			listSimulationsCommand(),
		},
	}
}

func listSimulationsCommand() *cli.Command {
	return &cli.Command{
		Name:  "simulations",
		Usage: "List the simulations a config file describes",
		Flags: append(ReadOnlyFlags(),
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Required: true, Usage: "Path to the benchmark YAML config"},
		),
		Action: listSimulationsAction,
	}
}

func listSimulationsAction(c *cli.Context) error {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return cli.Exit(err.Error(), exitConfigError)
	}

	r, err := render.NewRenderer(c)
	if err != nil {
		return err
	}

	summaries := make([]simulationSummary, len(cfg.Simulations))
	for i, sim := range cfg.Simulations {
		summaries[i] = simulationSummary{
			Index:  i,
			Type:   sim.Type,
			Format: sim.From.Format,
			Lazy:   sim.LazyOrDefault(),
		}
	}

	return r.Render(summaries)
}
