package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/boutros/udgen/decompress"
	"github.com/boutros/udgen/triplestore"
)

func runDecompress(args []string) error {
	fs := flag.NewFlagSet("decompress", flag.ExitOnError)
	dictPath := fs.String("dict", "", "dictionary file (required)")
	fs.Parse(args)

	if *dictPath == "" {
		return fmt.Errorf("decompress: -dict is required")
	}
	if fs.NArg() == 0 {
		return fmt.Errorf("decompress: no compressed triple files given")
	}

	d, err := decompress.Load(*dictPath)
	if err != nil {
		return err
	}
	defer d.Close()

	for _, path := range fs.Args() {
		store, err := triplestore.LoadReadOnly(path)
		if err != nil {
			return err
		}
		n := store.Len()
		for i := 0; i < n; i++ {
			if err := d.WriteTriple(os.Stdout, store.At(i)); err != nil {
				store.Close()
				return err
			}
		}
		store.Close()
	}

	return nil
}
