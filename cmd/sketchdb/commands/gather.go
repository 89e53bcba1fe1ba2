package commands

import (
	"os";
	"fmt";
	"errors";

	"github.com/sketchdb/sketchdb/index";

	"github.com/urfave/cli/v2";
	"github.com/olekukonko/tablewriter";
)

func Gather(c *cli.Context) error {
	if c.NArg() < 2 {
		return errors.New("Missing query signature or index path")
	}

	query, err := loadQuerySignature(c.Args().Get(0))
	if err != nil {
		return err
	}

	idx, err := loadSelectedIndex(c, c.Args().Get(1))
	if err != nil {
		return err
	}

	var results index.GatherResults
	if c.Bool("best-only") {
		results, err = index.Gather(idx, query, c.Uint64("threshold-bp"))
	} else {
		results, err = index.CounterGather(idx, query, c.Uint64("threshold-bp"))
	}
	if err != nil {
		return err
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"containment", "name", "location"})

	for _, result := range results {
		table.Append([]string {
			fmt.Sprintf("%.3f", result.Containment),
			result.Signature.Name(),
			result.Location,
		})
	}

	table.Render()
	return nil
}
