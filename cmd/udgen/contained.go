package main

import (
	"flag"
	"fmt"

	"github.com/boutros/udgen/analytics"
	"github.com/boutros/udgen/triplestore"
)

func runContained(args []string) error {
	fs := flag.NewFlagSet("contained", flag.ExitOnError)
	datasetPath := fs.String("dataset", "", "sorted reference compressed triple file (required)")
	fs.Parse(args)

	if *datasetPath == "" {
		return fmt.Errorf("contained: -dataset is required")
	}
	if fs.NArg() == 0 {
		return fmt.Errorf("contained: no compressed triple files given")
	}

	dataset, err := triplestore.LoadReadOnly(*datasetPath)
	if err != nil {
		return err
	}
	defer dataset.Close()

	for _, path := range fs.Args() {
		file, err := triplestore.LoadReadOnly(path)
		if err != nil {
			return err
		}
		res, err := analytics.Contained(dataset, file)
		file.Close()
		if err != nil {
			return err
		}
		fmt.Printf("%s: %d/%d contained (%.2f%%)\n", path, res.Contained, res.Total, res.Percentage())
	}

	return nil
}
