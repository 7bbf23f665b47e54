package main

import (
	"flag"
	"fmt"

	"github.com/boutros/udgen/analytics"
	"github.com/boutros/udgen/triplestore"
)

func runStats(args []string) error {
	fs := flag.NewFlagSet("stats", flag.ExitOnError)
	fs.Parse(args)

	if fs.NArg() == 0 {
		return fmt.Errorf("stats: no compressed triple files given")
	}

	var all []analytics.Stats
	for _, path := range fs.Args() {
		store, err := triplestore.LoadReadOnly(path)
		if err != nil {
			return err
		}
		s := analytics.ComputeStats(store)
		store.Close()
		all = append(all, s)

		fmt.Printf("%s: %d triples, %d distinct subjects, %d distinct predicates, %d distinct objects\n",
			path, s.Triples, s.DistinctSubjects, s.DistinctPredicates, s.DistinctObjects)
	}

	total := analytics.SumStats(all)
	fmt.Printf("total: %d triples, %d distinct subjects, %d distinct predicates, %d distinct objects\n",
		total.Triples, total.DistinctSubjects, total.DistinctPredicates, total.DistinctObjects)

	return nil
}
