// Package decompress reverses a compressed triple stream back into
// N-Triples text, resolving each TermId through a frozen term dictionary.
package decompress

import (
	"bufio"
	"io"
	"os"

	"github.com/boutros/udgen/dict"
	"github.com/boutros/udgen/triplestore"
	"github.com/boutros/udgen/udgenerr"
)

// Decompressor resolves TermIds against a frozen dictionary.
type Decompressor struct {
	dict *dict.Frozen
}

// Load memory-maps the dictionary at path for resolution.
func Load(path string) (*Decompressor, error) {
	fr, err := dict.LoadFrozen(path)
	if err != nil {
		return nil, err
	}
	return &Decompressor{dict: fr}, nil
}

// Close unmaps the dictionary.
func (d *Decompressor) Close() error { return d.dict.Close() }

// Resolve returns the bytes for id, or an Invariant error if the dictionary
// has no entry for it — a compressed triple stream should never reference
// an id its sibling dictionary doesn't contain.
func (d *Decompressor) Resolve(id dict.TermId) ([]byte, error) {
	b, ok := d.dict.Resolve(id)
	if !ok {
		return nil, udgenerr.Ofm(udgenerr.Invariant, "decompress: unresolvable TermId %d", id)
	}
	return b, nil
}

// Triple resolves every term of t, returning the three raw surface-syntax
// byte slices (subject, predicate, object), borrowed from the dictionary's
// mapping.
func (d *Decompressor) Triple(t triplestore.Triple) (s, p, o []byte, err error) {
	s, err = d.Resolve(t[0])
	if err != nil {
		return nil, nil, nil, err
	}
	p, err = d.Resolve(t[1])
	if err != nil {
		return nil, nil, nil, err
	}
	o, err = d.Resolve(t[2])
	if err != nil {
		return nil, nil, nil, err
	}
	return s, p, o, nil
}

// WriteTriple writes t to w in "S P O .\n" form.
func (d *Decompressor) WriteTriple(w io.Writer, t triplestore.Triple) error {
	s, p, o, err := d.Triple(t)
	if err != nil {
		return err
	}
	bw, ok := w.(*bufio.Writer)
	if !ok {
		bw = bufio.NewWriter(w)
		defer bw.Flush()
	}
	if _, err := bw.Write(s); err != nil {
		return udgenerr.Of(udgenerr.IO, err)
	}
	if _, err := bw.WriteString(" "); err != nil {
		return udgenerr.Of(udgenerr.IO, err)
	}
	if _, err := bw.Write(p); err != nil {
		return udgenerr.Of(udgenerr.IO, err)
	}
	if _, err := bw.WriteString(" "); err != nil {
		return udgenerr.Of(udgenerr.IO, err)
	}
	if _, err := bw.Write(o); err != nil {
		return udgenerr.Of(udgenerr.IO, err)
	}
	if _, err := bw.WriteString(" .\n"); err != nil {
		return udgenerr.Of(udgenerr.IO, err)
	}
	return nil
}

// File decompresses every triple in store, in file order, to outPath.
func (d *Decompressor) File(store *triplestore.Store, outPath string) error {
	f, err := os.OpenFile(outPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return udgenerr.Of(udgenerr.IO, err)
	}
	defer f.Close()

	bw := bufio.NewWriter(f)
	n := store.Len()
	for i := 0; i < n; i++ {
		if err := d.WriteTriple(bw, store.At(i)); err != nil {
			return err
		}
	}
	return bw.Flush()
}
