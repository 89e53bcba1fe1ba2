package commands

import (
	"errors";

	"github.com/sketchdb/sketchdb/index";
	"github.com/sketchdb/sketchdb/signature";
	"github.com/sketchdb/sketchdb/sketch";

	"github.com/urfave/cli/v2";
)

func loadQuerySignature(path string) (*signature.Signature, error) {
	sigs, err := signature.LoadFile(path)
	if err != nil {
		return nil, err
	}
	if len(sigs) == 0 {
		return nil, errors.New("No signatures in query file")
	}
	return sigs[0], nil
}

func selectionFromContext(c *cli.Context) index.Selection {
	return index.Selection {
		Ksize: uint32(c.Uint("ksize")),
		Moltype: sketch.Moltype(c.String("moltype")),
	}
}

func loadSelectedIndex(c *cli.Context, path string) (index.Index, error) {
	idx, err := index.LoadIndex(path)
	if err != nil {
		return nil, err
	}

	sel := selectionFromContext(c)
	if sel.Empty() {
		return idx, nil
	}
	return idx.Select(sel)
}
