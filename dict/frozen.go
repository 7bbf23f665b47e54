package dict

import (
	"encoding/binary"
	"fmt"
	"os"
	"sort"

	"github.com/boutros/udgen/internal/mmapfile"
	"github.com/boutros/udgen/udgenerr"
)

// Frozen is a memory-mapped, read-only term dictionary. Resolve never
// allocates: it returns a slice borrowed directly from the mapping.
type Frozen struct {
	header *mmapfile.File // raw (id,start,end) records
	data   *mmapfile.File // concatenated term bytes
	n      int            // number of header records
}

// LoadFrozen memory-maps the header and data segment of a dictionary file
// written by (*Dict).FreezeTo.
func LoadFrozen(path string) (*Frozen, error) {
	sizeBuf := make([]byte, headerSizeField)
	f, err := os.Open(path)
	if err != nil {
		return nil, udgenerr.Of(udgenerr.IO, err)
	}
	_, err = f.ReadAt(sizeBuf, 0)
	f.Close()
	if err != nil {
		return nil, udgenerr.Of(udgenerr.IO, err)
	}

	headerByteSize := binary.NativeEndian.Uint64(sizeBuf)
	if headerByteSize%recordSize != 0 {
		return nil, udgenerr.Ofm(udgenerr.Format, "dict: header size %d is not a multiple of %d", headerByteSize, recordSize)
	}

	header, err := mmapfile.OpenReadOnly(path, headerSizeField)
	if err != nil {
		return nil, udgenerr.Of(udgenerr.IO, err)
	}
	if uint64(len(header.Bytes())) < headerByteSize {
		header.Close()
		return nil, udgenerr.Ofm(udgenerr.Format, "dict: file truncated before end of header")
	}

	data, err := mmapfile.OpenReadOnly(path, headerSizeField+int64(headerByteSize))
	if err != nil {
		header.Close()
		return nil, udgenerr.Of(udgenerr.IO, err)
	}

	return &Frozen{header: header, data: data, n: int(headerByteSize / recordSize)}, nil
}

// Close unmaps the dictionary's backing files.
func (fr *Frozen) Close() error {
	err1 := fr.header.Close()
	err2 := fr.data.Close()
	if err1 != nil {
		return err1
	}
	return err2
}

// Len returns the number of distinct terms stored.
func (fr *Frozen) Len() int { return fr.n }

func (fr *Frozen) record(i int) (id TermId, start, end uint64) {
	b := fr.header.Bytes()[i*recordSize : (i+1)*recordSize]
	return binary.NativeEndian.Uint64(b[0:8]), binary.NativeEndian.Uint64(b[8:16]), binary.NativeEndian.Uint64(b[16:24])
}

// Resolve returns, without allocating, the bytes stored for id, found by
// binary search over the (sorted) header.
func (fr *Frozen) Resolve(id TermId) ([]byte, bool) {
	n := fr.n
	i := sort.Search(n, func(i int) bool {
		rid, _, _ := fr.record(i)
		return rid >= id
	})
	if i >= n {
		return nil, false
	}
	rid, start, end := fr.record(i)
	if rid != id {
		return nil, false
	}
	data := fr.data.Bytes()
	if end > uint64(len(data)) || start > end {
		return nil, false
	}
	return data[start:end], true
}

// forEach visits every (id, term) pair in ascending id order.
func (fr *Frozen) forEach(fn func(id TermId, term []byte)) {
	data := fr.data.Bytes()
	for i := 0; i < fr.n; i++ {
		id, start, end := fr.record(i)
		fn(id, data[start:end])
	}
}

// Validate checks the dictionary ordering invariant: header records are
// strictly ascending by TermId, and consecutive records abut
// (end[i] == start[i+1]).
func (fr *Frozen) Validate() error {
	var prevEnd uint64
	var prevID TermId
	for i := 0; i < fr.n; i++ {
		id, start, end := fr.record(i)
		if i > 0 {
			if id <= prevID {
				return udgenerr.Ofm(udgenerr.Format, "dict: header not strictly ascending at record %d", i)
			}
			if start != prevEnd {
				return udgenerr.Ofm(udgenerr.Format, "dict: record %d start %d does not abut previous end %d", i, start, prevEnd)
			}
		}
		if end < start {
			return udgenerr.Ofm(udgenerr.Format, "dict: record %d has end < start", i)
		}
		prevID, prevEnd = id, end
	}
	if prevEnd > uint64(len(fr.data.Bytes())) {
		return udgenerr.Ofm(udgenerr.Format, "dict: data segment shorter than header implies")
	}
	return nil
}

func (fr *Frozen) String() string {
	return fmt.Sprintf("dict.Frozen{terms=%d}", fr.n)
}
