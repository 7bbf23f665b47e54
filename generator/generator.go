// Package generator implements the four triple-sampling strategies the
// query writer pulls batches from: random sampling (with and without
// cross-batch replacement) and changeset-driven sampling (as-is and
// fixed-size). Each strategy is a stateful factory queried once per query in
// a workload.
package generator

import (
	"math/rand"

	"github.com/boutros/udgen/triplestore"
	"github.com/boutros/udgen/udgenerr"
)

// Generator produces the next batch of up to sizeHint triples for one
// query. Implementations are not safe for concurrent use; the query writer
// drives a single generator sequentially.
type Generator interface {
	Next(sizeHint int) ([]triplestore.Triple, error)
}

// RandomDistinct samples, at construction, `total` distinct indices without
// replacement from the dataset, sorted ascending so repeated Next calls
// read the backing (possibly memory-mapped) file sequentially. No triple it
// returns is ever repeated across the lifetime of the generator.
type RandomDistinct struct {
	triples *triplestore.Store
	indices []int
	pos     int
}

// NewRandomDistinct samples total distinct indices from triples. total may
// not exceed triples.Len().
func NewRandomDistinct(rng *rand.Rand, triples *triplestore.Store, total int) (*RandomDistinct, error) {
	n := triples.Len()
	if total > n {
		return nil, udgenerr.Ofm(udgenerr.Invariant, "generator: random_distinct total %d exceeds dataset size %d", total, n)
	}
	indices := sampleDistinct(rng, n, total)
	return &RandomDistinct{triples: triples, indices: indices}, nil
}

// Next consumes the next sizeHint indices in order, dereferencing them. When
// the sample is exhausted it returns whatever is left, possibly an empty or
// short slice.
func (g *RandomDistinct) Next(sizeHint int) ([]triplestore.Triple, error) {
	end := g.pos + sizeHint
	if end > len(g.indices) {
		end = len(g.indices)
	}
	batch := make([]triplestore.Triple, 0, end-g.pos)
	for ; g.pos < end; g.pos++ {
		batch = append(batch, g.triples.At(g.indices[g.pos]))
	}
	return batch, nil
}

// RandomWithReplacement samples sizeHint distinct indices uniformly from the
// whole dataset on every call. Distinctness is guaranteed only within a
// single batch: the same triple may recur in a later batch.
type RandomWithReplacement struct {
	rng     *rand.Rand
	triples *triplestore.Store
}

// NewRandomWithReplacement returns a generator drawing from triples.
func NewRandomWithReplacement(rng *rand.Rand, triples *triplestore.Store) *RandomWithReplacement {
	return &RandomWithReplacement{rng: rng, triples: triples}
}

// Next samples min(sizeHint, len) distinct indices for this batch.
func (g *RandomWithReplacement) Next(sizeHint int) ([]triplestore.Triple, error) {
	n := g.triples.Len()
	if sizeHint > n {
		sizeHint = n
	}
	indices := sampleDistinct(g.rng, n, sizeHint)
	batch := make([]triplestore.Triple, len(indices))
	for i, idx := range indices {
		batch[i] = g.triples.At(idx)
	}
	return batch, nil
}

// sampleDistinct returns k distinct indices in [0, n), sorted ascending, via
// partial Fisher-Yates over a scratch permutation array, which guarantees no
// duplicates. The scratch array holds all n indices, so memory and setup
// cost are proportional to n; only the shuffle steps are proportional to k.
func sampleDistinct(rng *rand.Rand, n, k int) []int {
	if k <= 0 {
		return nil
	}
	perm := make([]int, n)
	for i := range perm {
		perm[i] = i
	}
	for i := 0; i < k; i++ {
		j := i + rng.Intn(n-i)
		perm[i], perm[j] = perm[j], perm[i]
	}
	out := append([]int(nil), perm[:k]...)
	sortInts(out)
	return out
}

func sortInts(a []int) {
	for i := 1; i < len(a); i++ {
		v := a[i]
		j := i - 1
		for j >= 0 && a[j] > v {
			a[j+1] = a[j]
			j--
		}
		a[j+1] = v
	}
}

// Changeset is one named collection of triples (an added/removed file's
// contents), used by the two changeset-driven generators.
type Changeset struct {
	Name    string
	Triples []triplestore.Triple
}

// AsIsChangeset hands back whole, unused changesets, chosen by closeness of
// their length to each call's size hint.
type AsIsChangeset struct {
	changesets []Changeset
	used       []bool
}

// NewAsIsChangeset returns a generator over changesets. changesets is not
// copied; callers should not mutate it afterwards.
func NewAsIsChangeset(changesets []Changeset) *AsIsChangeset {
	return &AsIsChangeset{changesets: changesets, used: make([]bool, len(changesets))}
}

// Next marks and returns the unused changeset whose length is closest to
// sizeHint (ties go to the first one encountered in slice order). It is not
// truncated or padded to sizeHint. Fails once every changeset has been used.
func (g *AsIsChangeset) Next(sizeHint int) ([]triplestore.Triple, error) {
	best := -1
	bestDelta := 0
	for i, used := range g.used {
		if used {
			continue
		}
		delta := abs(len(g.changesets[i].Triples) - sizeHint)
		if best == -1 || delta < bestDelta {
			best, bestDelta = i, delta
		}
	}
	if best == -1 {
		return nil, udgenerr.Ofm(udgenerr.Invariant, "generator: as_is_changeset: no unused changesets remain")
	}
	g.used[best] = true
	return g.changesets[best].Triples, nil
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// FixedSizeChangeset concatenates changesets starting from a fixed random
// offset, wrapping forward then back to the start of the slice, filters the
// result against dataset membership, and serves the first sizeHint triples
// of that filtered, order-preserving concatenation on every call.
type FixedSizeChangeset struct {
	flat []triplestore.Triple
}

// NewFixedSizeChangeset picks a uniform random starting index into
// changesets, concatenates starting there and wrapping around (forward from
// start, then the remainder in reverse order down to index 0), and filters
// every triple through dataset.Contains. dataset must be sorted.
func NewFixedSizeChangeset(rng *rand.Rand, changesets []Changeset, dataset *triplestore.Store) (*FixedSizeChangeset, error) {
	if !dataset.IsSorted() {
		return nil, udgenerr.Ofm(udgenerr.Invariant, "generator: fixed_size_changeset: dataset must be sorted")
	}
	if len(changesets) == 0 {
		return &FixedSizeChangeset{}, nil
	}
	start := rng.Intn(len(changesets))

	order := make([]int, 0, len(changesets))
	for i := start; i < len(changesets); i++ {
		order = append(order, i)
	}
	for i := start - 1; i >= 0; i-- {
		order = append(order, i)
	}

	var flat []triplestore.Triple
	for _, idx := range order {
		for _, t := range changesets[idx].Triples {
			if dataset.Contains(t) {
				flat = append(flat, t)
			}
		}
	}
	return &FixedSizeChangeset{flat: flat}, nil
}

// Next returns the first min(sizeHint, len(flat)) triples. The starting
// offset into the concatenation never advances between calls: every call
// serves from the same fixed-size prefix.
func (g *FixedSizeChangeset) Next(sizeHint int) ([]triplestore.Triple, error) {
	if sizeHint > len(g.flat) {
		sizeHint = len(g.flat)
	}
	return g.flat[:sizeHint], nil
}
