package sparql

import (
	"bufio"
	"math/rand"
	"os"
	"strings"

	"github.com/boutros/udgen/decompress"
	"github.com/boutros/udgen/generator"
	"github.com/boutros/udgen/triplestore"
	"github.com/boutros/udgen/udgenerr"
)

// PrepareFormat selects how an InsertData slot's undo companion is written.
type PrepareFormat int

const (
	// PrepareQuery mirrors each INSERT DATA with a DELETE DATA of the same
	// triples.
	PrepareQuery PrepareFormat = iota
	// PrepareNTriples writes the triples in plain N-Triples form instead.
	PrepareNTriples
)

// Diag receives a non-fatal diagnostic, e.g. a short-batch warning.
type Diag func(format string, args ...any)

func (d Diag) emit(format string, args ...any) {
	if d != nil {
		d(format, args...)
	}
}

func openOutput(path string, append bool) (*os.File, error) {
	flags := os.O_WRONLY | os.O_CREATE
	if append {
		flags |= os.O_APPEND
	} else {
		flags |= os.O_TRUNC
	}
	f, err := os.OpenFile(path, flags, 0o644)
	if err != nil {
		return nil, udgenerr.Of(udgenerr.IO, err)
	}
	return f, nil
}

// GenerateQueries expands specs, reorders the resulting slots per
// outputOrder, and for each slot pulls a batch from gen, decompresses it via
// dec, and writes the query text to outPath. InsertData slots additionally
// write a mirrored or N-Triples companion to prepareOutPath, if non-empty,
// in prepareFormat. append controls whether outPath/prepareOutPath are
// truncated or appended to. rng seeds the Randomized order and is otherwise
// unused here (generators carry their own entropy).
func GenerateQueries(
	specs []QuerySpec,
	outputOrder OutputOrder,
	gen generator.Generator,
	dec *decompress.Decompressor,
	outPath string,
	prepareOutPath string,
	prepareFormat PrepareFormat,
	append bool,
	rng *rand.Rand,
	diag Diag,
) error {
	slots, err := order(outputOrder, expand(specs), rng)
	if err != nil {
		return err
	}

	out, err := openOutput(outPath, append)
	if err != nil {
		return err
	}
	defer out.Close()
	bw := bufio.NewWriter(out)
	defer bw.Flush()

	var pbw *bufio.Writer
	if prepareOutPath != "" {
		pf, err := openOutput(prepareOutPath, append)
		if err != nil {
			return err
		}
		defer pf.Close()
		pbw = bufio.NewWriter(pf)
		defer pbw.Flush()
	}

	for _, sl := range slots {
		batch, err := gen.Next(sl.size)
		if err != nil {
			return err
		}
		if len(batch) < sl.size {
			diag.emit("sparql: slot requested %d triples, got %d", sl.size, len(batch))
		}

		if err := writeSlot(bw, dec, sl.typ, batch); err != nil {
			return err
		}
		if sl.typ == InsertData && pbw != nil {
			if err := writePrepare(pbw, dec, prepareFormat, batch); err != nil {
				return err
			}
		}
	}

	return nil
}

func writeSlot(w *bufio.Writer, dec *decompress.Decompressor, typ QueryType, batch []triplestore.Triple) error {
	var keyword string
	if typ == InsertData {
		keyword = "INSERT DATA"
	} else {
		keyword = "DELETE DATA"
	}
	if _, err := w.WriteString(keyword); err != nil {
		return udgenerr.Of(udgenerr.IO, err)
	}
	if _, err := w.WriteString(" { "); err != nil {
		return udgenerr.Of(udgenerr.IO, err)
	}
	if err := writeTripleList(w, dec, batch); err != nil {
		return err
	}
	if _, err := w.WriteString("}\n"); err != nil {
		return udgenerr.Of(udgenerr.IO, err)
	}
	return nil
}

func writePrepare(w *bufio.Writer, dec *decompress.Decompressor, format PrepareFormat, batch []triplestore.Triple) error {
	if format == PrepareNTriples {
		for _, t := range batch {
			if err := dec.WriteTriple(w, t); err != nil {
				return err
			}
		}
		return nil
	}
	if _, err := w.WriteString("DELETE DATA { "); err != nil {
		return udgenerr.Of(udgenerr.IO, err)
	}
	if err := writeTripleList(w, dec, batch); err != nil {
		return err
	}
	if _, err := w.WriteString("}\n"); err != nil {
		return udgenerr.Of(udgenerr.IO, err)
	}
	return nil
}

// writeTripleList writes "S1 P1 O1 . S2 P2 O2 . " for every triple, each
// terminated by " . " (including the last), so callers append the closing
// brace immediately.
func writeTripleList(w *bufio.Writer, dec *decompress.Decompressor, batch []triplestore.Triple) error {
	for _, t := range batch {
		s, p, o, err := dec.Triple(t)
		if err != nil {
			return err
		}
		if _, err := w.Write(s); err != nil {
			return udgenerr.Of(udgenerr.IO, err)
		}
		if _, err := w.WriteString(" "); err != nil {
			return udgenerr.Of(udgenerr.IO, err)
		}
		if _, err := w.Write(p); err != nil {
			return udgenerr.Of(udgenerr.IO, err)
		}
		if _, err := w.WriteString(" "); err != nil {
			return udgenerr.Of(udgenerr.IO, err)
		}
		if _, err := w.Write(o); err != nil {
			return udgenerr.Of(udgenerr.IO, err)
		}
		if _, err := w.WriteString(" . "); err != nil {
			return udgenerr.Of(udgenerr.IO, err)
		}
	}
	return nil
}

// ReplicateInput is one source for GenerateLinearNoSizeHint: a classified
// changeset's type and its full triple sequence.
type ReplicateInput struct {
	Name    string
	Type    QueryType
	Triples []triplestore.Triple
}

// ClassifyChangeset derives the QueryType from a compressed changeset's
// filename by suffix convention, or ok=false if the name matches neither
// suffix (the caller should skip it with a diagnostic).
func ClassifyChangeset(filename string) (typ QueryType, ok bool) {
	base := strings.TrimSuffix(filename, ".compressed_nt")
	switch {
	case strings.HasSuffix(base, "added"):
		return InsertData, true
	case strings.HasSuffix(base, "removed"):
		return DeleteData, true
	default:
		return 0, false
	}
}

// GenerateLinearNoSizeHint is the "replicate" writer: one query per input,
// with no generator or size hint involved. Triples present in
// excludeDataset (nil to disable) are filtered out of each input before it
// is emitted. Output is either SPARQL text (writeNTriples = false) or plain
// concatenated N-Triples (writeNTriples = true).
func GenerateLinearNoSizeHint(
	inputs []ReplicateInput,
	excludeDataset *triplestore.Store,
	dec *decompress.Decompressor,
	outPath string,
	append bool,
	writeNTriples bool,
) error {
	if excludeDataset != nil && !excludeDataset.IsSorted() {
		return udgenerr.Ofm(udgenerr.Invariant, "sparql: exclude dataset must be sorted")
	}

	out, err := openOutput(outPath, append)
	if err != nil {
		return err
	}
	defer out.Close()
	bw := bufio.NewWriter(out)
	defer bw.Flush()

	for _, in := range inputs {
		triples := in.Triples
		if excludeDataset != nil {
			filtered := triples[:0:0]
			for _, t := range triples {
				if !excludeDataset.Contains(t) {
					filtered = append(filtered, t)
				}
			}
			triples = filtered
		}

		if writeNTriples {
			for _, t := range triples {
				if err := dec.WriteTriple(bw, t); err != nil {
					return err
				}
			}
			continue
		}

		if err := writeSlot(bw, dec, in.Type, triples); err != nil {
			return err
		}
	}

	return nil
}
