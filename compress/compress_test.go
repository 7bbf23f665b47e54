package compress

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"testing/quick"

	"github.com/boutros/udgen/decompress"
	"github.com/boutros/udgen/triplestore"
)

func writeInput(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestOutputPath(t *testing.T) {
	if got, want := OutputPath("/data/a.nt"), "/data/a.compressed_nt"; got != want {
		t.Fatalf("OutputPath() = %q, want %q", got, want)
	}
}

// TestRoundTripRawSplit is scenario S1: compressing and decompressing with
// parse=false, dedup=false reproduces the input modulo whitespace
// normalization.
func TestRoundTripRawSplit(t *testing.T) {
	dir := t.TempDir()
	input := "<http://x> <http://p> <http://y> .\n<http://x> <http://p> \"lit\" .\n"
	path := writeInput(t, dir, "a.nt", input)

	c := New()
	if err := c.CompressFile(path, false, false, nil); err != nil {
		t.Fatal(err)
	}
	dictPath := filepath.Join(dir, "dict.bin")
	if err := c.SaveState(dictPath); err != nil {
		t.Fatal(err)
	}

	store, err := triplestore.LoadReadOnly(OutputPath(path))
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()
	if store.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", store.Len())
	}

	dec, err := decompress.Load(dictPath)
	if err != nil {
		t.Fatal(err)
	}
	defer dec.Close()

	var buf bytes.Buffer
	for i := 0; i < store.Len(); i++ {
		if err := dec.WriteTriple(&buf, store.At(i)); err != nil {
			t.Fatal(err)
		}
	}
	if buf.String() != input {
		t.Fatalf("round trip = %q, want %q", buf.String(), input)
	}
}

// TestBlankNodeSkip is scenario S2.
func TestBlankNodeSkip(t *testing.T) {
	dir := t.TempDir()
	path := writeInput(t, dir, "a.nt", "_:b1 <http://p> <http://y> .\n")

	c := New()
	if err := c.CompressFile(path, false, false, nil); err != nil {
		t.Fatal(err)
	}

	store, err := triplestore.LoadReadOnly(OutputPath(path))
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()
	if store.Len() != 0 {
		t.Fatalf("Len() = %d, want 0", store.Len())
	}
}

// TestDedup is scenario S3.
func TestDedup(t *testing.T) {
	dir := t.TempDir()
	line := "<http://x> <http://p> <http://y> .\n"
	var sb bytes.Buffer
	for i := 0; i < 5; i++ {
		sb.WriteString(line)
	}
	path := writeInput(t, dir, "a.nt", sb.String())

	withDedup := New()
	if err := withDedup.CompressFile(path, true, false, nil); err != nil {
		t.Fatal(err)
	}
	store, err := triplestore.LoadReadOnly(OutputPath(path))
	if err != nil {
		t.Fatal(err)
	}
	if store.Len() != 1 {
		t.Fatalf("dedup=true Len() = %d, want 1", store.Len())
	}
	store.Close()
	os.Remove(OutputPath(path))

	noDedup := New()
	if err := noDedup.CompressFile(path, false, false, nil); err != nil {
		t.Fatal(err)
	}
	store2, err := triplestore.LoadReadOnly(OutputPath(path))
	if err != nil {
		t.Fatal(err)
	}
	defer store2.Close()
	if store2.Len() != 5 {
		t.Fatalf("dedup=false Len() = %d, want 5", store2.Len())
	}
}

func TestCompressFileFailsOnExistingOutput(t *testing.T) {
	dir := t.TempDir()
	path := writeInput(t, dir, "a.nt", "<http://x> <http://p> <http://y> .\n")
	if err := os.WriteFile(OutputPath(path), nil, 0o644); err != nil {
		t.Fatal(err)
	}

	c := New()
	if err := c.CompressFile(path, false, false, nil); err == nil {
		t.Fatal("expected error when output already exists")
	}
}

func TestDedupAcrossFilesInSameCompressorInstance(t *testing.T) {
	dir := t.TempDir()
	pathA := writeInput(t, dir, "a.nt", "<http://x> <http://p> <http://y> .\n")
	pathB := writeInput(t, dir, "b.nt", "<http://x> <http://p> <http://y> .\n")

	c := New()
	if err := c.CompressFile(pathA, true, false, nil); err != nil {
		t.Fatal(err)
	}
	if err := c.CompressFile(pathB, true, false, nil); err != nil {
		t.Fatal(err)
	}

	storeB, err := triplestore.LoadReadOnly(OutputPath(pathB))
	if err != nil {
		t.Fatal(err)
	}
	defer storeB.Close()
	if storeB.Len() != 0 {
		t.Fatalf("second file Len() = %d, want 0 (already seen in first file)", storeB.Len())
	}
}

func TestParsedModeSkipsUnacceptedPositions(t *testing.T) {
	dir := t.TempDir()
	// Literal subjects aren't valid N-Triples, but a blank-node object must
	// be rejected under parse=true just as it is under parse=false.
	input := "<http://x> <http://p> _:b1 .\n<http://x> <http://p> <http://y> .\n"
	path := writeInput(t, dir, "a.nt", input)

	c := New()
	if err := c.CompressFile(path, false, true, nil); err != nil {
		t.Fatal(err)
	}
	store, err := triplestore.LoadReadOnly(OutputPath(path))
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()
	if store.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", store.Len())
	}
}

func TestSplitRaw(t *testing.T) {
	s, p, o, ok := splitRaw([]byte("<http://x> <http://p> <http://y> ."))
	if !ok {
		t.Fatal("splitRaw failed to parse a well-formed line")
	}
	if string(s) != "<http://x>" || string(p) != "<http://p>" || string(o) != "<http://y>" {
		t.Fatalf("got %q %q %q", s, p, o)
	}

	if _, _, _, ok := splitRaw([]byte("<http://x> <http://p>")); ok {
		t.Fatal("expected failure on a line missing the object field")
	}
	if _, _, _, ok := splitRaw([]byte("<http://x> <http://p> <http://y>")); ok {
		t.Fatal("expected failure on a line missing the trailing ' .'")
	}
}

// TestDedupCountMatchesDistinctFirstOccurrenceProperty is a property check
// of invariant 2: with dedup=true, the number of surviving compressed
// triples equals the number of distinct accepted triples in the input, in
// first-occurrence order. ids is folded into a small pool of five synthetic
// triples so duplicates actually occur.
func TestDedupCountMatchesDistinctFirstOccurrenceProperty(t *testing.T) {
	f := func(ids []uint8) bool {
		if len(ids) == 0 {
			return true
		}

		var input bytes.Buffer
		var wantOrder []int
		seen := make(map[int]bool)
		for _, id := range ids {
			n := int(id % 5)
			fmt.Fprintf(&input, "<http://x%d> <http://p> <http://y%d> .\n", n, n)
			if !seen[n] {
				seen[n] = true
				wantOrder = append(wantOrder, n)
			}
		}

		dir := t.TempDir()
		path := writeInput(t, dir, "a.nt", input.String())

		c := New()
		if err := c.CompressFile(path, true, false, nil); err != nil {
			return false
		}
		dictPath := filepath.Join(dir, "dict.bin")
		if err := c.SaveState(dictPath); err != nil {
			return false
		}

		store, err := triplestore.LoadReadOnly(OutputPath(path))
		if err != nil {
			return false
		}
		defer store.Close()

		if store.Len() != len(wantOrder) {
			return false
		}

		dec, err := decompress.Load(dictPath)
		if err != nil {
			return false
		}
		defer dec.Close()

		for i, n := range wantOrder {
			var buf bytes.Buffer
			if err := dec.WriteTriple(&buf, store.At(i)); err != nil {
				return false
			}
			want := fmt.Sprintf("<http://x%d> <http://p> <http://y%d> .\n", n, n)
			if buf.String() != want {
				return false
			}
		}
		return true
	}
	if err := quick.Check(f, &quick.Config{MaxCount: 30}); err != nil {
		t.Error(err)
	}
}
