package commands

import (
	"errors";

	"github.com/sketchdb/sketchdb/index";

	"github.com/urfave/cli/v2";
	log "github.com/sirupsen/logrus";
)

func BuildIndex(c *cli.Context) error {
	if c.NArg() < 2 {
		return errors.New("Missing output directory or input paths")
	}

	out, err := index.OpenBadgerIndex(c.Args().Get(0))
	if err != nil {
		return err
	}
	defer out.Close()

	total := 0
	for i := 1; i < c.NArg(); i++ {
		path := c.Args().Get(i)
		src, err := index.MultiIndexFromPath(path, c.Bool("force"))
		if err != nil {
			return err
		}

		sigs := index.Collect(src.Signatures())
		if err := out.InsertMany(sigs); err != nil {
			return err
		}

		log.Infof("Indexed %d signatures from %s", len(sigs), path)
		total += len(sigs)
	}

	log.Infof("Done. %d signatures, %d stored", total, out.Len())
	return nil
}
