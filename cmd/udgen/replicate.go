package main

import (
	"flag"
	"fmt"
	"log"
	"path/filepath"

	"github.com/boutros/udgen/decompress"
	"github.com/boutros/udgen/sparql"
	"github.com/boutros/udgen/triplestore"
)

func runReplicate(args []string) error {
	fs := flag.NewFlagSet("replicate", flag.ExitOnError)
	dictPath := fs.String("dict", "", "dictionary file (required)")
	outPath := fs.String("out", "", "output query file (required)")
	excludePath := fs.String("exclude-dataset", "", "sorted compressed triple file to filter input triples against")
	appendFlag := fs.Bool("append", false, "append instead of truncating the output file")
	ntriples := fs.Bool("ntriples", false, "write plain N-Triples instead of SPARQL query text")
	fs.Parse(args)

	if *dictPath == "" || *outPath == "" {
		return fmt.Errorf("replicate: -dict and -out are required")
	}
	if fs.NArg() == 0 {
		return fmt.Errorf("replicate: no changeset files given")
	}

	dec, err := decompress.Load(*dictPath)
	if err != nil {
		return err
	}
	defer dec.Close()

	var exclude *triplestore.Store
	if *excludePath != "" {
		exclude, err = triplestore.LoadReadOnly(*excludePath)
		if err != nil {
			return err
		}
		defer exclude.Close()
	}

	var inputs []sparql.ReplicateInput
	for _, path := range fs.Args() {
		typ, ok := sparql.ClassifyChangeset(filepath.Base(path))
		if !ok {
			log.Printf("replicate: %s: filename matches neither *added nor *removed, skipping", path)
			continue
		}
		store, err := triplestore.LoadReadOnly(path)
		if err != nil {
			return err
		}
		inputs = append(inputs, sparql.ReplicateInput{
			Name:    path,
			Type:    typ,
			Triples: store.All(),
		})
		store.Close()
	}

	return sparql.GenerateLinearNoSizeHint(inputs, exclude, dec, *outPath, *appendFlag, *ntriples)
}
