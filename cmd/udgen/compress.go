package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/boutros/udgen/compress"
	"github.com/boutros/udgen/dict"
)

func runCompress(args []string) error {
	fs := flag.NewFlagSet("compress", flag.ExitOnError)
	dedup := fs.Bool("dedup", false, "suppress duplicate triples within this compressor's lifetime")
	noParse := fs.Bool("no-parse", false, "split lines with a raw tokenizer instead of the N-Triples parser")
	recursive := fs.Bool("recursive", false, "walk directory arguments recursively")
	prevState := fs.String("previous-compressor-state", "", "dictionary file to promote into a mutable compressor before compressing")
	stateOut := fs.String("compressor-state-out", "", "path to write the final dictionary state (required)")
	fs.Parse(args)

	if *stateOut == "" {
		return fmt.Errorf("compress: -compressor-state-out is required")
	}
	if fs.NArg() == 0 {
		return fmt.Errorf("compress: no input files or directories given")
	}

	var c *compress.Compressor
	if *prevState != "" {
		frozen, err := dict.LoadFrozen(*prevState)
		if err != nil {
			return err
		}
		c = compress.FromFrozen(frozen)
		frozen.Close()
	} else {
		c = compress.New()
	}

	inputs, err := findFiles(fs.Args(), compress.UncompressedExt, *recursive)
	if err != nil {
		return err
	}

	for _, path := range inputs {
		if err := c.CompressFile(path, *dedup, !*noParse, compress.Diag(log.Printf)); err != nil {
			return err
		}
		log.Printf("compressed %s", path)
	}

	return c.SaveState(*stateOut)
}
