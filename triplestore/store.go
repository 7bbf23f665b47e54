// Package triplestore implements CompressedTripleFile: a flat,
// memory-mapped array of [TermId; 3] records with random access, sorted
// containment lookup, and in-place sort.
package triplestore

import (
	"encoding/binary"
	"sort"

	"github.com/boutros/udgen/dict"
	"github.com/boutros/udgen/internal/mmapfile"
	"github.com/boutros/udgen/udgenerr"
)

// RecordSize is the on-disk size, in bytes, of one compressed triple: three
// native-endian uint64 term ids.
const RecordSize = 24

// Triple is a compressed (subject, predicate, object) record.
type Triple [3]dict.TermId

// Store is a memory-mapped, headerless flat array of Triple records. It may
// be backed by a read-only or a read-write ("shared") mapping; only a
// read-write Store may be sorted in place.
type Store struct {
	mm     *mmapfile.File
	shared bool
}

func validateSize(n int) error {
	if n%RecordSize != 0 {
		return udgenerr.Ofm(udgenerr.Format, "triplestore: file size %d is not a multiple of %d", n, RecordSize)
	}
	return nil
}

// LoadReadOnly memory-maps path for read-only access.
func LoadReadOnly(path string) (*Store, error) {
	mm, err := mmapfile.OpenReadOnly(path, 0)
	if err != nil {
		return nil, udgenerr.Of(udgenerr.IO, err)
	}
	if err := validateSize(len(mm.Bytes())); err != nil {
		mm.Close()
		return nil, err
	}
	return &Store{mm: mm}, nil
}

// LoadShared memory-maps path for read-write access, required by
// SortInPlace. No other mapping of the same file should be open while the
// store is being sorted.
func LoadShared(path string) (*Store, error) {
	mm, err := mmapfile.OpenShared(path)
	if err != nil {
		return nil, udgenerr.Of(udgenerr.IO, err)
	}
	if err := validateSize(len(mm.Bytes())); err != nil {
		mm.Close()
		return nil, err
	}
	return &Store{mm: mm, shared: true}, nil
}

// Close unmaps the backing file.
func (s *Store) Close() error { return s.mm.Close() }

// Len returns the number of triples.
func (s *Store) Len() int { return len(s.mm.Bytes()) / RecordSize }

// At returns the i'th triple.
func (s *Store) At(i int) Triple {
	b := s.mm.Bytes()[i*RecordSize : (i+1)*RecordSize]
	return Triple{
		binary.NativeEndian.Uint64(b[0:8]),
		binary.NativeEndian.Uint64(b[8:16]),
		binary.NativeEndian.Uint64(b[16:24]),
	}
}

func (s *Store) set(i int, t Triple) {
	b := s.mm.Bytes()[i*RecordSize : (i+1)*RecordSize]
	binary.NativeEndian.PutUint64(b[0:8], t[0])
	binary.NativeEndian.PutUint64(b[8:16], t[1])
	binary.NativeEndian.PutUint64(b[16:24], t[2])
}

// All returns an iterator-friendly slice of every triple in file order. For
// very large stores prefer Len/At to avoid allocating the whole slice.
func (s *Store) All() []Triple {
	n := s.Len()
	out := make([]Triple, n)
	for i := 0; i < n; i++ {
		out[i] = s.At(i)
	}
	return out
}

func less(a, b Triple) bool {
	if a[0] != b[0] {
		return a[0] < b[0]
	}
	if a[1] != b[1] {
		return a[1] < b[1]
	}
	return a[2] < b[2]
}

// IsSorted reports whether the store is in non-decreasing lexicographic
// (s, p, o) order. It is a full O(n) scan; callers that need the sortedness
// guarantee repeatedly (contains, changeset generation) should check once
// and trust the contract afterwards, as Contains itself does.
func (s *Store) IsSorted() bool {
	n := s.Len()
	for i := 1; i < n; i++ {
		if less(s.At(i), s.At(i-1)) {
			return false
		}
	}
	return true
}

// Contains reports whether t appears in the store, via binary search. It
// assumes the store is sorted (IsSorted) and gives meaningless results
// otherwise — the same "caller's responsibility" contract the original
// toolchain's contains() has, sortedness is checked once at the call sites
// that require it (generate, contained), not on every lookup.
func (s *Store) Contains(t Triple) bool {
	n := s.Len()
	i := sort.Search(n, func(i int) bool { return !less(s.At(i), t) })
	return i < n && s.At(i) == t
}

// sortAdapter adapts a shared Store to sort.Interface, swapping directly in
// the mapped bytes.
type sortAdapter struct{ s *Store }

func (a sortAdapter) Len() int           { return a.s.Len() }
func (a sortAdapter) Less(i, j int) bool { return less(a.s.At(i), a.s.At(j)) }
func (a sortAdapter) Swap(i, j int) {
	ti, tj := a.s.At(i), a.s.At(j)
	a.s.set(i, tj)
	a.s.set(j, ti)
}

// SortInPlace performs an unstable lexicographic sort of the mapped array,
// mutating the backing file on disk. The store must have been opened with
// LoadShared.
func (s *Store) SortInPlace() error {
	if !s.shared {
		return udgenerr.Ofm(udgenerr.Invariant, "triplestore: SortInPlace requires a store opened with LoadShared")
	}
	sort.Sort(sortAdapter{s})
	return s.mm.Sync()
}
