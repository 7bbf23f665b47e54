package triplestore

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"testing/quick"
)

func writeStore(t *testing.T, triples []Triple) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "triples.bin")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	buf := make([]byte, RecordSize)
	for _, tr := range triples {
		binary.NativeEndian.PutUint64(buf[0:8], tr[0])
		binary.NativeEndian.PutUint64(buf[8:16], tr[1])
		binary.NativeEndian.PutUint64(buf[16:24], tr[2])
		if _, err := f.Write(buf); err != nil {
			t.Fatal(err)
		}
	}
	return path
}

func TestLoadReadOnlyRejectsBadSize(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.bin")
	if err := os.WriteFile(path, make([]byte, 23), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadReadOnly(path); err == nil {
		t.Fatal("expected error for non-multiple-of-24 file size")
	}
}

func TestAtAndLen(t *testing.T) {
	triples := []Triple{{1, 2, 3}, {4, 5, 6}, {7, 8, 9}}
	path := writeStore(t, triples)

	s, err := LoadReadOnly(path)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	if s.Len() != len(triples) {
		t.Fatalf("Len() = %d, want %d", s.Len(), len(triples))
	}
	for i, want := range triples {
		if got := s.At(i); got != want {
			t.Fatalf("At(%d) = %v, want %v", i, got, want)
		}
	}
}

func TestIsSorted(t *testing.T) {
	sorted := writeStore(t, []Triple{{1, 1, 1}, {1, 1, 2}, {2, 0, 0}})
	s, err := LoadReadOnly(sorted)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	if !s.IsSorted() {
		t.Fatal("expected sorted store to report IsSorted() == true")
	}

	unsorted := writeStore(t, []Triple{{2, 0, 0}, {1, 1, 1}})
	u, err := LoadReadOnly(unsorted)
	if err != nil {
		t.Fatal(err)
	}
	defer u.Close()
	if u.IsSorted() {
		t.Fatal("expected unsorted store to report IsSorted() == false")
	}
}

func TestContains(t *testing.T) {
	path := writeStore(t, []Triple{{1, 1, 1}, {1, 2, 3}, {5, 5, 5}})
	s, err := LoadReadOnly(path)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	if !s.Contains(Triple{1, 2, 3}) {
		t.Fatal("Contains({1,2,3}) = false, want true")
	}
	if s.Contains(Triple{9, 9, 9}) {
		t.Fatal("Contains({9,9,9}) = true, want false")
	}
}

func TestSortInPlaceRequiresShared(t *testing.T) {
	path := writeStore(t, []Triple{{2, 0, 0}, {1, 1, 1}})
	s, err := LoadReadOnly(path)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	if err := s.SortInPlace(); err == nil {
		t.Fatal("expected SortInPlace to fail on a read-only store")
	}
}

func TestSortInPlacePreservesMultisetAndSorts(t *testing.T) {
	original := []Triple{{3, 0, 0}, {1, 1, 1}, {2, 2, 2}, {1, 1, 1}}
	path := writeStore(t, original)

	s, err := LoadShared(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.SortInPlace(); err != nil {
		t.Fatal(err)
	}
	if !s.IsSorted() {
		t.Fatal("expected store to be sorted after SortInPlace")
	}
	if s.Len() != len(original) {
		t.Fatalf("Len() = %d, want %d", s.Len(), len(original))
	}
	got := s.All()
	s.Close()

	sort.Slice(original, func(i, j int) bool { return less(original[i], original[j]) })
	for i := range original {
		if got[i] != original[i] {
			t.Fatalf("multiset mismatch at %d: got %v, want %v", i, got[i], original[i])
		}
	}
}

// TestContainsFindsStoredTriples is a property check of invariant 4: for a
// random sorted store, Contains reports every triple it holds as present,
// and a triple outside the generated value range as absent.
func TestContainsFindsStoredTriples(t *testing.T) {
	f := func(raw []uint16) bool {
		if len(raw) == 0 {
			return true
		}
		triples := make([]Triple, len(raw))
		for i, v := range raw {
			triples[i] = Triple{uint64(v), uint64(v), uint64(v)}
		}
		sort.Slice(triples, func(i, j int) bool { return less(triples[i], triples[j]) })

		path := filepath.Join(os.TempDir(), "quick-store-test.bin")
		f, err := os.Create(path)
		if err != nil {
			return false
		}
		buf := make([]byte, RecordSize)
		for _, tr := range triples {
			binary.NativeEndian.PutUint64(buf[0:8], tr[0])
			binary.NativeEndian.PutUint64(buf[8:16], tr[1])
			binary.NativeEndian.PutUint64(buf[16:24], tr[2])
			f.Write(buf)
		}
		f.Close()
		defer os.Remove(path)

		s, err := LoadReadOnly(path)
		if err != nil {
			return false
		}
		defer s.Close()

		for _, tr := range triples {
			if !s.Contains(tr) {
				return false
			}
		}
		if s.Contains(Triple{70000, 70000, 70000}) {
			return false
		}
		return true
	}
	if err := quick.Check(f, &quick.Config{MaxCount: 50}); err != nil {
		t.Error(err)
	}
}
