// Package mmapfile wraps github.com/dolthub/mmap-go with the two access
// modes the dictionary and triple-store formats need: a read-only mapping
// shared across readers, and a read-write mapping used exclusively by the
// in-place sort.
package mmapfile

import (
	"os"

	"github.com/dolthub/mmap-go"
)

// File is a memory-mapped view of a file, offset by byteOffset bytes from
// the start of the underlying file.
type File struct {
	f *os.File
	m mmap.MMap
}

// OpenReadOnly memory-maps the region of path starting at byteOffset and
// running to the end of the file, for read-only access.
func OpenReadOnly(path string, byteOffset int64) (*File, error) {
	return open(path, byteOffset, os.O_RDONLY, mmap.RDONLY)
}

// OpenShared memory-maps the entire file for read-write access. Writes
// through the returned slice are visible to other mappings of the same file
// and are eventually flushed to disk; callers that need durability should
// call Sync.
func OpenShared(path string) (*File, error) {
	return open(path, 0, os.O_RDWR, mmap.RDWR)
}

func open(path string, byteOffset int64, flag int, prot int) (*File, error) {
	f, err := os.OpenFile(path, flag, 0)
	if err != nil {
		return nil, err
	}

	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}

	length := int(fi.Size() - byteOffset)
	if length < 0 {
		f.Close()
		return nil, os.ErrInvalid
	}
	if length == 0 {
		// mmap.MapRegion rejects a zero-length region; an empty file maps
		// to an empty, but still usable, view.
		return &File{f: f, m: mmap.MMap{}}, nil
	}

	m, err := mmap.MapRegion(f, length, prot, 0, byteOffset)
	if err != nil {
		f.Close()
		return nil, err
	}

	return &File{f: f, m: m}, nil
}

// Bytes returns the mapped region.
func (mf *File) Bytes() []byte { return []byte(mf.m) }

// Sync flushes the mapped region to the backing file (msync).
func (mf *File) Sync() error {
	if len(mf.m) == 0 {
		return nil
	}
	return mf.m.Flush()
}

// Close unmaps the region and closes the underlying file.
func (mf *File) Close() error {
	var unmapErr error
	if len(mf.m) != 0 {
		unmapErr = mf.m.Unmap()
	}
	closeErr := mf.f.Close()
	if unmapErr != nil {
		return unmapErr
	}
	return closeErr
}
