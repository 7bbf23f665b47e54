// Package analytics implements the small per-file analytic drivers: stats
// (triple and distinct-term counts), contained (containment rate against a
// reference dataset), and sort (delegating to triplestore's in-place sort).
package analytics

import (
	"github.com/RoaringBitmap/roaring/roaring64"

	"github.com/boutros/udgen/triplestore"
	"github.com/boutros/udgen/udgenerr"
)

// Stats holds one file's triple count and exact distinct-term counts,
// computed with a roaring64 bitmap per column rather than a generic hash
// set: term ids are already 64-bit integers, so a bitmap is both a more
// compact and a faster set than a Go map for this column-of-uint64 shape.
type Stats struct {
	Triples            int
	DistinctSubjects   uint64
	DistinctPredicates uint64
	DistinctObjects    uint64
}

// ComputeStats scans store once, accumulating the three distinct-term
// bitmaps.
func ComputeStats(store *triplestore.Store) Stats {
	subjects := roaring64.New()
	predicates := roaring64.New()
	objects := roaring64.New()

	n := store.Len()
	for i := 0; i < n; i++ {
		t := store.At(i)
		subjects.Add(t[0])
		predicates.Add(t[1])
		objects.Add(t[2])
	}

	return Stats{
		Triples:            n,
		DistinctSubjects:   subjects.GetCardinality(),
		DistinctPredicates: predicates.GetCardinality(),
		DistinctObjects:    objects.GetCardinality(),
	}
}

// SumStats accumulates per-file Stats into a running total. Distinct counts
// are summed per file, not deduplicated across files (matching the "sum
// across all files" wording: a term repeated in two files counts in both
// files' distinct sets).
func SumStats(stats []Stats) Stats {
	var total Stats
	for _, s := range stats {
		total.Triples += s.Triples
		total.DistinctSubjects += s.DistinctSubjects
		total.DistinctPredicates += s.DistinctPredicates
		total.DistinctObjects += s.DistinctObjects
	}
	return total
}

// ContainedResult reports how many of a file's triples appear in a
// reference dataset.
type ContainedResult struct {
	Total     int
	Contained int
}

// Percentage returns Contained as a percentage of Total, or 0 if Total is 0.
func (r ContainedResult) Percentage() float64 {
	if r.Total == 0 {
		return 0
	}
	return float64(r.Contained) / float64(r.Total) * 100.0
}

// Contained counts how many of file's triples are present in dataset, which
// must be sorted (Contains' precondition).
func Contained(dataset, file *triplestore.Store) (ContainedResult, error) {
	if !dataset.IsSorted() {
		return ContainedResult{}, udgenerr.Ofm(udgenerr.Invariant, "analytics: contained: reference dataset must be sorted")
	}
	n := file.Len()
	var hit int
	for i := 0; i < n; i++ {
		if dataset.Contains(file.At(i)) {
			hit++
		}
	}
	return ContainedResult{Total: n, Contained: hit}, nil
}

// Sort loads path for shared (read-write) access and sorts it in place,
// matching the `sort` subcommand's per-file operation.
func Sort(path string) error {
	store, err := triplestore.LoadShared(path)
	if err != nil {
		return err
	}
	defer store.Close()
	return store.SortInPlace()
}
