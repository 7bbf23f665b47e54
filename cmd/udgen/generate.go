package main

import (
	"flag"
	"fmt"
	"log"
	"math/rand"
	"path/filepath"
	"strings"
	"time"

	"github.com/boutros/udgen/decompress"
	"github.com/boutros/udgen/generator"
	"github.com/boutros/udgen/sparql"
	"github.com/boutros/udgen/triplestore"
)

func runGenerate(args []string) error {
	fs := flag.NewFlagSet("generate", flag.ExitOnError)
	dictPath := fs.String("dict", "", "dictionary file (required)")
	datasetPath := fs.String("dataset", "", "main compressed triple file (required)")
	outPath := fs.String("out", "", "output query file (required)")
	strategy := fs.String("strategy", "random-distinct", "random-distinct|random-replacement|changeset-as-is|changeset-fixed-size")
	order := fs.String("order", "as-specified", "as-specified|randomized|size-asc|size-desc|alternate")
	appendFlag := fs.Bool("append", false, "append instead of truncating output files")
	prepareOut := fs.String("prepare-out", "", "output prepare-query file")
	prepareFormat := fs.String("prepare-format", "query", "query|ntriples")
	var specStrs stringList
	fs.Var(&specStrs, "spec", "query spec, e.g. i3x50% (repeatable)")
	var changesetPaths stringList
	fs.Var(&changesetPaths, "changeset", "compressed changeset file, for changeset-* strategies (repeatable)")
	fs.Parse(args)

	if *dictPath == "" || *datasetPath == "" || *outPath == "" {
		return fmt.Errorf("generate: -dict, -dataset and -out are required")
	}
	if len(specStrs) == 0 {
		return fmt.Errorf("generate: at least one -spec is required")
	}

	dec, err := decompress.Load(*dictPath)
	if err != nil {
		return err
	}
	defer dec.Close()

	dataset, err := triplestore.LoadReadOnly(*datasetPath)
	if err != nil {
		return err
	}
	defer dataset.Close()

	specs := make([]sparql.QuerySpec, 0, len(specStrs))
	for _, s := range specStrs {
		qs, err := sparql.ParseQuerySpec(s, dataset.Len())
		if err != nil {
			return err
		}
		specs = append(specs, qs)
	}

	outputOrder, err := parseOutputOrder(*order)
	if err != nil {
		return err
	}
	format, err := parsePrepareFormat(*prepareFormat)
	if err != nil {
		return err
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	gen, err := buildGenerator(*strategy, rng, dataset, changesetPaths, specs)
	if err != nil {
		return err
	}

	return sparql.GenerateQueries(specs, outputOrder, gen, dec, *outPath, *prepareOut, format, *appendFlag, rng, sparql.Diag(log.Printf))
}

func buildGenerator(strategy string, rng *rand.Rand, dataset *triplestore.Store, changesetPaths []string, specs []sparql.QuerySpec) (generator.Generator, error) {
	switch strategy {
	case "random-distinct":
		total := 0
		for _, sp := range specs {
			total += sp.NQueries * sp.NTriples
		}
		return generator.NewRandomDistinct(rng, dataset, total)
	case "random-replacement":
		return generator.NewRandomWithReplacement(rng, dataset), nil
	case "changeset-as-is", "changeset-fixed-size":
		changesets, err := loadChangesets(changesetPaths)
		if err != nil {
			return nil, err
		}
		if strategy == "changeset-as-is" {
			return generator.NewAsIsChangeset(changesets), nil
		}
		return generator.NewFixedSizeChangeset(rng, changesets, dataset)
	default:
		return nil, fmt.Errorf("generate: unknown strategy %q", strategy)
	}
}

func loadChangesets(paths []string) ([]generator.Changeset, error) {
	changesets := make([]generator.Changeset, 0, len(paths))
	for _, p := range paths {
		store, err := triplestore.LoadReadOnly(p)
		if err != nil {
			return nil, err
		}
		changesets = append(changesets, generator.Changeset{
			Name:    strings.TrimSuffix(filepath.Base(p), ".compressed_nt"),
			Triples: store.All(),
		})
		store.Close()
	}
	return changesets, nil
}

func parseOutputOrder(s string) (sparql.OutputOrder, error) {
	switch s {
	case "as-specified":
		return sparql.AsSpecified, nil
	case "randomized":
		return sparql.Randomized, nil
	case "size-asc":
		return sparql.SortedSizeAsc, nil
	case "size-desc":
		return sparql.SortedSizeDesc, nil
	case "alternate":
		return sparql.SortedSizeAscAlternateInsertDelete, nil
	default:
		return 0, fmt.Errorf("generate: unknown order %q", s)
	}
}

func parsePrepareFormat(s string) (sparql.PrepareFormat, error) {
	switch s {
	case "query":
		return sparql.PrepareQuery, nil
	case "ntriples":
		return sparql.PrepareNTriples, nil
	default:
		return 0, fmt.Errorf("generate: unknown prepare format %q", s)
	}
}
