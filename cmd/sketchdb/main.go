package main

import (
	"os";

	"github.com/sketchdb/sketchdb/cmd/sketchdb/commands";

	"github.com/urfave/cli/v2";
	log "github.com/sirupsen/logrus";
)

func main() {
	app := &cli.App {
		Name: "sketchdb",
		Usage: "Query and build signature indexes",
		Commands: []*cli.Command {
			{
				Name: "search",
				Usage: "Find signatures similar to the query",
				ArgsUsage: "<query.sig> <index>",
				Flags: []cli.Flag {
					&cli.Float64Flag{Name: "threshold", Aliases: []string{"t"}, Value: 0.08},
					&cli.BoolFlag{Name: "containment"},
					&cli.BoolFlag{Name: "max-containment"},
					&cli.BoolFlag{Name: "ignore-abundance"},
					&cli.UintFlag{Name: "ksize", Aliases: []string{"k"}},
					&cli.StringFlag{Name: "moltype"},
				},
				Action: commands.Search,
			},
			{
				Name: "gather",
				Usage: "Decompose the query into index signatures",
				ArgsUsage: "<query.sig> <index>",
				Flags: []cli.Flag {
					&cli.Uint64Flag{Name: "threshold-bp", Value: 50000},
					&cli.BoolFlag{Name: "best-only", Usage: "Report overlaps without greedy decomposition"},
					&cli.UintFlag{Name: "ksize", Aliases: []string{"k"}},
					&cli.StringFlag{Name: "moltype"},
				},
				Action: commands.Gather,
			},
			{
				Name: "sigs",
				Usage: "Inspect signature collections",
				Subcommands: []*cli.Command {
					{
						Name: "describe",
						Usage: "List the signatures in an index",
						ArgsUsage: "<index> [<index> ...]",
						Action: commands.DescribeSignatures,
					},
				},
			},
			{
				Name: "index",
				Usage: "Build a persistent index from signature files",
				ArgsUsage: "<output-dir> <path> [<path> ...]",
				Flags: []cli.Flag {
					&cli.BoolFlag{Name: "force", Aliases: []string{"f"}, Usage: "Keep going past unreadable files"},
				},
				Action: commands.BuildIndex,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
