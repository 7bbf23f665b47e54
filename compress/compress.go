// Package compress implements the compressor pipeline: it reads one input
// file, interns every accepted triple's terms in a term dictionary, and
// writes the resulting [TermId; 3] stream to a sibling *.compressed_nt file,
// overlapping parsing and disk writing with a producer/consumer pair of
// goroutines.
package compress

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"strings"

	"github.com/RoaringBitmap/roaring/roaring64"
	"github.com/cespare/xxhash/v2"
	"golang.org/x/sync/errgroup"

	"github.com/boutros/udgen/dict"
	"github.com/boutros/udgen/ntriples"
	"github.com/boutros/udgen/triplestore"
	"github.com/boutros/udgen/udgenerr"
)

// CompressedExt and UncompressedExt are the file extensions the compressor
// and its callers use to derive output paths and recognize input datasets.
const (
	CompressedExt   = "compressed_nt"
	UncompressedExt = "nt"
)

// Diag receives a non-fatal diagnostic message, e.g. a per-record parser
// error. A nil Diag is a no-op; callers typically wire this to log.Printf.
type Diag func(format string, args ...any)

func (d Diag) emit(format string, args ...any) {
	if d != nil {
		d(format, args...)
	}
}

// Compressor owns a mutable term dictionary and, when deduplication is
// requested, a set of triple hashes seen so far in this compressor's lifetime
// (spanning every file compressed by this instance, not just the current
// one).
type Compressor struct {
	dict  *dict.Dict
	dedup *roaring64.Bitmap
}

// New returns an empty compressor.
func New() *Compressor {
	return &Compressor{dict: dict.New()}
}

// FromFrozen promotes a previously frozen dictionary (e.g. loaded by a prior
// run) into a fresh, mutable compressor, copying every term's bytes out of
// the memory mapping so the mapping can be safely closed afterwards.
func FromFrozen(frozen *dict.Frozen) *Compressor {
	return &Compressor{dict: dict.FromFrozen(frozen)}
}

// Dict returns the compressor's dictionary, for inspection or for SaveState
// to be called on the dictionary directly by advanced callers.
func (c *Compressor) Dict() *dict.Dict { return c.dict }

// SaveState freezes the dictionary to path. Callers typically compress many
// files and save once at the end of a run.
func (c *Compressor) SaveState(path string) error {
	return c.dict.FreezeTo(path)
}

// OutputPath returns the *.compressed_nt sibling path CompressFile writes
// for a given input.
func OutputPath(inputPath string) string {
	ext := filepath.Ext(inputPath)
	return strings.TrimSuffix(inputPath, ext) + "." + CompressedExt
}

// CompressFile reads inputPath and writes OutputPath(inputPath), which must
// not already exist. When parse is true, terms are obtained from the
// ntriples parser collaborator, keeping only triples whose subject is a
// named node and whose object is a named node or a literal; parse errors
// are reported to diag and recovered at record granularity. When parse is
// false, each line is split on the first two ASCII spaces, blank-node
// subjects/objects and comment/empty lines are skipped, and the rest is
// accepted byte-for-byte. When dedup is true, a triple already seen by this
// Compressor instance (in this file or an earlier one) is suppressed.
func (c *Compressor) CompressFile(inputPath string, dedup, parse bool, diag Diag) error {
	outPath := OutputPath(inputPath)

	outF, err := os.OpenFile(outPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return udgenerr.Of(udgenerr.IO, err)
	}

	inF, err := os.Open(inputPath)
	if err != nil {
		outF.Close()
		os.Remove(outPath)
		return udgenerr.Of(udgenerr.IO, err)
	}

	if dedup && c.dedup == nil {
		c.dedup = roaring64.New()
	}

	ch := make(chan triplestore.Triple, 1024)

	var g errgroup.Group

	g.Go(func() error {
		defer inF.Close()
		var produceErr error
		if parse {
			produceErr = c.produceParsed(inF, dedup, ch, diag)
		} else {
			produceErr = c.produceRaw(inF, dedup, ch, diag)
		}
		close(ch)
		return produceErr
	})

	g.Go(func() error {
		defer outF.Close()
		bw := bufio.NewWriter(outF)
		buf := make([]byte, triplestore.RecordSize)
		for t := range ch {
			binary.NativeEndian.PutUint64(buf[0:8], t[0])
			binary.NativeEndian.PutUint64(buf[8:16], t[1])
			binary.NativeEndian.PutUint64(buf[16:24], t[2])
			if _, err := bw.Write(buf); err != nil {
				// Drain so the producer is never left blocked on a send.
				for range ch {
				}
				return udgenerr.Of(udgenerr.IO, err)
			}
		}
		return bw.Flush()
	})

	if err := g.Wait(); err != nil {
		os.Remove(outPath)
		return err
	}
	return nil
}

// foundNewTriple consults the dedup set, if any, and reports whether this
// triple should be forwarded. With dedup disabled every triple is new.
func (c *Compressor) foundNewTriple(t triplestore.Triple) bool {
	if c.dedup == nil {
		return true
	}
	h := hashTriple(t)
	return c.dedup.CheckedAdd(h)
}

func hashTriple(t triplestore.Triple) uint64 {
	var b [24]byte
	binary.NativeEndian.PutUint64(b[0:8], t[0])
	binary.NativeEndian.PutUint64(b[8:16], t[1])
	binary.NativeEndian.PutUint64(b[16:24], t[2])
	return xxhash.Sum64(b[:])
}

func (c *Compressor) produceParsed(r *os.File, dedup bool, ch chan<- triplestore.Triple, diag Diag) error {
	p := ntriples.NewParser(r)
	for {
		s, pr, o, ok, err := p.Next()
		if err != nil {
			if _, isParseErr := err.(*ntriples.ParseError); !isParseErr {
				return udgenerr.Of(udgenerr.IO, err)
			}
			diag.emit("%s", err)
			continue
		}
		if !ok {
			return nil
		}
		if s.Kind != ntriples.NamedNode {
			continue
		}
		if o.Kind != ntriples.NamedNode && o.Kind != ntriples.Literal {
			continue
		}

		t := triplestore.Triple{c.dict.Intern(s.Bytes), c.dict.Intern(pr.Bytes), c.dict.Intern(o.Bytes)}
		if !dedup || c.foundNewTriple(t) {
			ch <- t
		}
	}
}

func (c *Compressor) produceRaw(r *os.File, dedup bool, ch chan<- triplestore.Triple, diag Diag) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 64*1024*1024)

	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := sc.Bytes()
		if len(line) > 0 && line[len(line)-1] == '\r' {
			line = line[:len(line)-1]
		}
		if len(line) == 0 || line[0] == '#' {
			continue
		}

		s, p, o, ok := splitRaw(line)
		if !ok {
			diag.emit("ntriples: line %d: malformed raw triple, skipping", lineNo)
			continue
		}
		if len(s) > 0 && s[0] == '_' {
			continue
		}
		if len(o) > 0 && o[0] == '_' {
			continue
		}

		t := triplestore.Triple{c.dict.Intern(s), c.dict.Intern(p), c.dict.Intern(o)}
		if !dedup || c.foundNewTriple(t) {
			ch <- t
		}
	}
	return sc.Err()
}

// splitRaw implements the "primitive" raw-line splitter: split on the first
// two ASCII spaces, require the remainder to end with " .", and strip that
// trailing delimiter.
func splitRaw(line []byte) (subject, predicate, object []byte, ok bool) {
	i := bytes.IndexByte(line, ' ')
	if i < 0 {
		return nil, nil, nil, false
	}
	subject = line[:i]
	rest := line[i+1:]

	j := bytes.IndexByte(rest, ' ')
	if j < 0 {
		return nil, nil, nil, false
	}
	predicate = rest[:j]
	object = rest[j+1:]

	if !bytes.HasSuffix(object, []byte(" .")) {
		return nil, nil, nil, false
	}
	object = object[:len(object)-2]

	return subject, predicate, object, true
}
