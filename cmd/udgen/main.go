// Command udgen compresses N-Triples datasets into fixed-width binary
// triple files and synthesizes SPARQL update workloads over them.
package main

import (
	"fmt"
	"log"
	"os"
)

func main() {
	log.SetFlags(0)
	log.SetPrefix("udgen: ")

	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "compress":
		err = runCompress(os.Args[2:])
	case "generate":
		err = runGenerate(os.Args[2:])
	case "replicate":
		err = runReplicate(os.Args[2:])
	case "decompress":
		err = runDecompress(os.Args[2:])
	case "stats":
		err = runStats(os.Args[2:])
	case "sort":
		err = runSort(os.Args[2:])
	case "contained":
		err = runContained(os.Args[2:])
	case "-h", "--help", "help":
		usage()
		return
	default:
		fmt.Fprintf(os.Stderr, "udgen: unknown subcommand %q\n", os.Args[1])
		usage()
		os.Exit(1)
	}

	if err != nil {
		log.Fatal(err)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `Usage: udgen <subcommand> <flags>

Subcommands:
  compress    compress N-Triples files into fixed-width binary triples
  generate    synthesize a SPARQL update workload over a compressed dataset
  replicate   replay pre-classified added/removed changesets as queries
  decompress  write compressed triple files back out as N-Triples
  stats       print triple and distinct-term counts
  sort        sort a compressed triple file in place
  contained   measure containment of files against a reference dataset`)
}
