package sparql

import (
	"math/rand"
	"sort"

	"github.com/boutros/udgen/udgenerr"
)

// OutputOrder selects how expanded query slots are sequenced before
// emission.
type OutputOrder int

const (
	AsSpecified OutputOrder = iota
	Randomized
	SortedSizeAsc
	SortedSizeDesc
	SortedSizeAscAlternateInsertDelete
)

// order applies o to slots, returning a new, reordered slice. slots is not
// mutated.
func order(o OutputOrder, slots []slot, rng *rand.Rand) ([]slot, error) {
	out := append([]slot(nil), slots...)

	switch o {
	case AsSpecified:
		return out, nil

	case Randomized:
		rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
		return out, nil

	case SortedSizeAsc:
		sort.SliceStable(out, func(i, j int) bool { return out[i].size < out[j].size })
		return out, nil

	case SortedSizeDesc:
		sort.SliceStable(out, func(i, j int) bool { return out[i].size > out[j].size })
		return out, nil

	case SortedSizeAscAlternateInsertDelete:
		if len(out)%2 != 0 {
			return nil, udgenerr.Ofm(udgenerr.Invariant, "sparql: alternate ordering requires an even number of queries, got %d", len(out))
		}
		sort.SliceStable(out, func(i, j int) bool {
			if out[i].typ != out[j].typ {
				return out[i].typ < out[j].typ
			}
			return out[i].size < out[j].size
		})
		var inserts, deletes []slot
		for _, s := range out {
			if s.typ == InsertData {
				inserts = append(inserts, s)
			} else {
				deletes = append(deletes, s)
			}
		}
		// zip-truncate at the shorter list, as the original does; any excess
		// on the longer side is silently dropped rather than appended.
		n := len(inserts)
		if len(deletes) < n {
			n = len(deletes)
		}
		interleaved := make([]slot, 0, 2*n)
		for i := 0; i < n; i++ {
			interleaved = append(interleaved, inserts[i], deletes[i])
		}
		return interleaved, nil

	default:
		return nil, udgenerr.Ofm(udgenerr.ArgSpec, "sparql: unknown output order %d", int(o))
	}
}
