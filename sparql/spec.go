// Package sparql turns triple batches into SPARQL INSERT DATA / DELETE DATA
// update text, selecting and ordering query slots from a declarative list of
// size/type specifications, and writing a mirrored "prepare" file alongside
// the main output.
package sparql

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/boutros/udgen/udgenerr"
)

// QueryType distinguishes an INSERT DATA slot from a DELETE DATA slot.
type QueryType int

const (
	InsertData QueryType = iota
	DeleteData
)

func (t QueryType) String() string {
	if t == InsertData {
		return "InsertData"
	}
	return "DeleteData"
}

// QuerySpec describes a run of identically-shaped queries: NQueries queries,
// each drawing NTriples triples, all of QueryType Type.
type QuerySpec struct {
	NQueries int
	NTriples int
	Type     QueryType
}

// ParseQuerySpec parses one spec string of the grammar
//
//	spec  := type count 'x' size
//	type  := 'i' | 'd'
//	count := integer
//	size  := integer | float '%'
//
// A percentage size is resolved against datasetSize via floor(datasetSize *
// pct/100).
func ParseQuerySpec(s string, datasetSize int) (QuerySpec, error) {
	if len(s) < 3 {
		return QuerySpec{}, udgenerr.Ofm(udgenerr.ArgSpec, "sparql: query spec %q too short", s)
	}

	var qtype QueryType
	switch s[0] {
	case 'i':
		qtype = InsertData
	case 'd':
		qtype = DeleteData
	default:
		return QuerySpec{}, udgenerr.Ofm(udgenerr.ArgSpec, "sparql: query spec %q: unknown type byte %q", s, s[0])
	}

	rest := s[1:]
	xi := strings.IndexByte(rest, 'x')
	if xi < 0 {
		return QuerySpec{}, udgenerr.Ofm(udgenerr.ArgSpec, "sparql: query spec %q: missing 'x' separator", s)
	}

	countStr, sizeStr := rest[:xi], rest[xi+1:]
	count, err := strconv.Atoi(countStr)
	if err != nil || count < 0 {
		return QuerySpec{}, udgenerr.Ofm(udgenerr.ArgSpec, "sparql: query spec %q: bad count %q", s, countStr)
	}

	size, err := parseSize(sizeStr, datasetSize)
	if err != nil {
		return QuerySpec{}, udgenerr.Ofm(udgenerr.ArgSpec, "sparql: query spec %q: %s", s, err)
	}

	return QuerySpec{NQueries: count, NTriples: size, Type: qtype}, nil
}

func parseSize(s string, datasetSize int) (int, error) {
	if strings.HasSuffix(s, "%") {
		pctStr := strings.TrimSuffix(s, "%")
		pct, err := strconv.ParseFloat(pctStr, 64)
		if err != nil {
			return 0, fmt.Errorf("bad percentage %q", pctStr)
		}
		return int(math.Floor(float64(datasetSize) * pct / 100.0)), nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("bad size %q", s)
	}
	return n, nil
}

// slot is one expanded (size, type) query request.
type slot struct {
	size int
	typ  QueryType
}

// expand flattens a list of specs into one slot per query.
func expand(specs []QuerySpec) []slot {
	var slots []slot
	for _, sp := range specs {
		for i := 0; i < sp.NQueries; i++ {
			slots = append(slots, slot{size: sp.NTriples, typ: sp.Type})
		}
	}
	return slots
}
