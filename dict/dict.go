// Package dict implements the string-interning term dictionary: a bijective
// map between arbitrary RDF term bytes and a fixed 64-bit TermId, with a
// mutable in-memory form that can be frozen to (and loaded back from) a
// memory-mappable on-disk layout.
//
// On-disk layout (native endian throughout):
//
//	[ u64 header_byte_size ]
//	[ header: (u64 id, u64 start, u64 end) × N ]   // N = header_byte_size / 24
//	[ data_segment : bytes ]                       // length = last record's end
//
// header_byte_size is a byte count, not a record count, so the loader's
// offset arithmetic is fixed: the header starts at byte 8, and the data
// segment starts at byte 8+header_byte_size.
package dict

import (
	"bufio"
	"encoding/binary"
	"os"
	"sort"

	"github.com/zeebo/xxh3"

	"github.com/boutros/udgen/internal/mmapfile"
	"github.com/boutros/udgen/udgenerr"
)

// TermId is the 64-bit identifier a term hashes to.
type TermId = uint64

const (
	headerSizeField = 8  // size of the leading header_byte_size field
	recordSize      = 24 // id(8) + start(8) + end(8)
)

// Hash computes the TermId for a term's bytes. It is not a counter: two
// distinct terms that hash to the same value are indistinguishable once
// interned. That collision is assumed negligible for realistic corpora;
// this function is the single place that assumption lives.
func Hash(term []byte) TermId {
	return xxh3.Hash(term)
}

// Dict is a mutable, in-memory term dictionary. Terms are kept in a map
// rather than a maintained ordered container; FreezeTo collects and sorts
// the keys once instead of paying the ordering cost on every insert, which
// is the same "ascending by TermId at freeze time" guarantee an ordered map
// gives, applied just in time.
type Dict struct {
	terms map[TermId][]byte
}

// New returns an empty dictionary.
func New() *Dict {
	return &Dict{terms: make(map[TermId][]byte)}
}

// Intern returns the TermId for term, inserting it if absent. Re-interning
// previously seen bytes is idempotent: the first bytes stored for an id win.
func (d *Dict) Intern(term []byte) TermId {
	id := Hash(term)
	if _, ok := d.terms[id]; ok {
		return id
	}
	owned := make([]byte, len(term))
	copy(owned, term)
	d.terms[id] = owned
	return id
}

// Resolve returns the bytes stored for id, if any.
func (d *Dict) Resolve(id TermId) ([]byte, bool) {
	b, ok := d.terms[id]
	return b, ok
}

// Len returns the number of distinct terms interned so far.
func (d *Dict) Len() int { return len(d.terms) }

// sortedIds returns the interned TermIds in ascending order.
func (d *Dict) sortedIds() []TermId {
	ids := make([]TermId, 0, len(d.terms))
	for id := range d.terms {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// FreezeTo writes the on-disk layout described in the package doc to path,
// truncating and creating it as needed.
func (d *Dict) FreezeTo(path string) error {
	ids := d.sortedIds()

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return udgenerr.Of(udgenerr.IO, err)
	}
	defer f.Close()

	bw := bufio.NewWriter(f)

	headerByteSize := uint64(len(ids)) * recordSize
	if err := binary.Write(bw, binary.NativeEndian, headerByteSize); err != nil {
		return udgenerr.Of(udgenerr.IO, err)
	}

	var dataOff uint64
	for _, id := range ids {
		start := dataOff
		dataOff += uint64(len(d.terms[id]))

		rec := [3]uint64{id, start, dataOff}
		if err := binary.Write(bw, binary.NativeEndian, rec); err != nil {
			return udgenerr.Of(udgenerr.IO, err)
		}
	}

	for _, id := range ids {
		if _, err := bw.Write(d.terms[id]); err != nil {
			return udgenerr.Of(udgenerr.IO, err)
		}
	}

	if err := bw.Flush(); err != nil {
		return udgenerr.Of(udgenerr.IO, err)
	}
	return nil
}

// FromFrozen reconstructs a mutable dictionary by copying every term's bytes
// out of frozen's memory mapping into owned storage. This is required before
// frozen can be discarded (or before the process goes on to write more data
// through the result), since the mapping's lifetime and the mutable
// dictionary's lifetime would otherwise conflict.
func FromFrozen(frozen *Frozen) *Dict {
	d := New()
	frozen.forEach(func(id TermId, term []byte) {
		owned := make([]byte, len(term))
		copy(owned, term)
		d.terms[id] = owned
	})
	return d
}
