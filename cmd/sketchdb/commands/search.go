package commands

import (
	"os";
	"fmt";
	"errors";

	"github.com/sketchdb/sketchdb/index";

	"github.com/urfave/cli/v2";
	"github.com/olekukonko/tablewriter";
)

func Search(c *cli.Context) error {
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

	options := make([]index.SearchOption, 0)
	if c.Bool("containment") {
		options = append(options, index.SearchWithContainment())
	}
	if c.Bool("max-containment") {
		options = append(options, index.SearchWithMaxContainment())
	}
	if c.Bool("ignore-abundance") {
		options = append(options, index.SearchIgnoreAbundance())
	}

	results, err := index.Search(idx, query, c.Float64("threshold"), options...)
	if err != nil {
		return err
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"score", "name", "location"})

	for _, result := range results {
		table.Append([]string {
			fmt.Sprintf("%.3f", result.Score),
			result.Signature.Name(),
			result.Location,
		})
	}

	table.Render()
	fmt.Printf("%d matches above threshold %.3f\n", len(results), c.Float64("threshold"))
	return nil
}
