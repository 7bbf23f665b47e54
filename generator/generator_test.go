package generator

import (
	"encoding/binary"
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/boutros/udgen/triplestore"
)

func buildStore(t *testing.T, n int) *triplestore.Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "store.bin")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	buf := make([]byte, triplestore.RecordSize)
	for i := 0; i < n; i++ {
		binary.NativeEndian.PutUint64(buf[0:8], uint64(i))
		binary.NativeEndian.PutUint64(buf[8:16], uint64(i))
		binary.NativeEndian.PutUint64(buf[16:24], uint64(i))
		if _, err := f.Write(buf); err != nil {
			t.Fatal(err)
		}
	}
	f.Close()
	s, err := triplestore.LoadReadOnly(path)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// TestRandomDistinctNeverRepeats is invariant 7: random_distinct never
// emits the same triple twice across a workload whose total size is <=
// dataset size.
func TestRandomDistinctNeverRepeats(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	store := buildStore(t, 100)

	gen, err := NewRandomDistinct(rng, store, 40)
	if err != nil {
		t.Fatal(err)
	}

	seen := make(map[triplestore.Triple]bool)
	for i := 0; i < 4; i++ {
		batch, err := gen.Next(10)
		if err != nil {
			t.Fatal(err)
		}
		for _, tr := range batch {
			if seen[tr] {
				t.Fatalf("triple %v emitted twice", tr)
			}
			seen[tr] = true
		}
	}
	if len(seen) != 40 {
		t.Fatalf("emitted %d distinct triples, want 40", len(seen))
	}
}

func TestRandomDistinctRejectsOversizedTotal(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	store := buildStore(t, 5)
	if _, err := NewRandomDistinct(rng, store, 6); err == nil {
		t.Fatal("expected error when total exceeds dataset size")
	}
}

func TestRandomDistinctShortTail(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	store := buildStore(t, 10)
	gen, err := NewRandomDistinct(rng, store, 5)
	if err != nil {
		t.Fatal(err)
	}
	batch, err := gen.Next(3)
	if err != nil || len(batch) != 3 {
		t.Fatalf("first batch: len=%d err=%v", len(batch), err)
	}
	batch, err = gen.Next(3)
	if err != nil || len(batch) != 2 {
		t.Fatalf("tail batch: len=%d err=%v, want 2", len(batch), err)
	}
	batch, err = gen.Next(3)
	if err != nil || len(batch) != 0 {
		t.Fatalf("exhausted batch: len=%d err=%v, want 0", len(batch), err)
	}
}

func TestRandomWithReplacementBatchIsDistinct(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	store := buildStore(t, 50)
	gen := NewRandomWithReplacement(rng, store)

	batch, err := gen.Next(20)
	if err != nil {
		t.Fatal(err)
	}
	seen := make(map[triplestore.Triple]bool)
	for _, tr := range batch {
		if seen[tr] {
			t.Fatalf("triple %v repeated within one batch", tr)
		}
		seen[tr] = true
	}
}

func TestAsIsChangesetSelectsClosestSize(t *testing.T) {
	changesets := []Changeset{
		{Name: "small", Triples: make([]triplestore.Triple, 2)},
		{Name: "close", Triples: make([]triplestore.Triple, 9)},
		{Name: "big", Triples: make([]triplestore.Triple, 100)},
	}
	gen := NewAsIsChangeset(changesets)

	batch, err := gen.Next(10)
	if err != nil {
		t.Fatal(err)
	}
	if len(batch) != 9 {
		t.Fatalf("selected changeset length = %d, want 9 (closest to 10)", len(batch))
	}
}

func TestAsIsChangesetFailsWhenExhausted(t *testing.T) {
	changesets := []Changeset{{Name: "only", Triples: make([]triplestore.Triple, 3)}}
	gen := NewAsIsChangeset(changesets)

	if _, err := gen.Next(3); err != nil {
		t.Fatal(err)
	}
	if _, err := gen.Next(3); err == nil {
		t.Fatal("expected error once all changesets are used")
	}
}

func TestFixedSizeChangesetFiltersByContainment(t *testing.T) {
	dataset := buildStore(t, 10) // triples {0,0,0}..{9,9,9}

	changesets := []Changeset{
		{Name: "a", Triples: []triplestore.Triple{{0, 0, 0}, {100, 100, 100}}},
		{Name: "b", Triples: []triplestore.Triple{{1, 1, 1}}},
	}
	rng := rand.New(rand.NewSource(3))
	gen, err := NewFixedSizeChangeset(rng, changesets, dataset)
	if err != nil {
		t.Fatal(err)
	}

	batch, err := gen.Next(10)
	if err != nil {
		t.Fatal(err)
	}
	for _, tr := range batch {
		if tr == (triplestore.Triple{100, 100, 100}) {
			t.Fatal("expected triple not present in dataset to be filtered out")
		}
	}
	if len(batch) != 2 {
		t.Fatalf("len(batch) = %d, want 2", len(batch))
	}
}

func TestFixedSizeChangesetRejectsUnsortedDataset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "unsorted.bin")
	f, _ := os.Create(path)
	buf := make([]byte, triplestore.RecordSize)
	binary.NativeEndian.PutUint64(buf[0:8], 5)
	f.Write(buf)
	binary.NativeEndian.PutUint64(buf[0:8], 1)
	f.Write(buf)
	f.Close()

	dataset, err := triplestore.LoadReadOnly(path)
	if err != nil {
		t.Fatal(err)
	}
	defer dataset.Close()

	rng := rand.New(rand.NewSource(1))
	if _, err := NewFixedSizeChangeset(rng, nil, dataset); err == nil {
		t.Fatal("expected error for unsorted dataset")
	}
}
