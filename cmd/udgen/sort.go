package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/boutros/udgen/analytics"
)

func runSort(args []string) error {
	fs := flag.NewFlagSet("sort", flag.ExitOnError)
	fs.Parse(args)

	if fs.NArg() == 0 {
		return fmt.Errorf("sort: no compressed triple files given")
	}

	for _, path := range fs.Args() {
		if err := analytics.Sort(path); err != nil {
			return err
		}
		log.Printf("sorted %s", path)
	}
	return nil
}
