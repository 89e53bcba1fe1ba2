package commands

import (
	"os";
	"fmt";
	"errors";

	"github.com/sketchdb/sketchdb/index";

	"github.com/urfave/cli/v2";
	"github.com/olekukonko/tablewriter";
)

func DescribeSignatures(c *cli.Context) error {
	if c.NArg() == 0 {
		return errors.New("No index paths provided")
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"name", "ksize", "moltype", "policy", "hashes", "fingerprint", "location"})

	total := 0
	for i := 0; i < c.NArg(); i++ {
		idx, err := index.LoadIndex(c.Args().Get(i))
		if err != nil {
			return err
		}

		it := idx.Signatures()
		for sig, ok := it.Next(); ok; sig, ok = it.Next() {
			mh := sig.Sketch()
			policy := fmt.Sprintf("scaled=%d", mh.Scaled())
			if mh.Num() > 0 {
				policy = fmt.Sprintf("num=%d", mh.Num())
			}
			table.Append([]string {
				sig.Name(),
				fmt.Sprintf("%d", mh.Ksize()),
				string(mh.Moltype()),
				policy,
				fmt.Sprintf("%d", mh.Len()),
				sig.Fingerprint(),
				idx.Location(),
			})
			total++
		}
	}

	table.Render()
	fmt.Printf("%d signatures total\n", total)
	return nil
}
