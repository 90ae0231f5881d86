// Package bytesource implements C1: positioned reads against either a
// memory-mapped file or an in-memory buffer, behind one Source interface.
package bytesource

import "github.com/pstkit/pstkit/pkg/types"

// Source is a positioned byte source: a file or an in-memory buffer.
// Implementations must support concurrent ReadAt calls (spec.md §5: derived
// objects are read-only views over borrowed bytes).
type Source interface {
	// ReadAt returns the n bytes at [offset, offset+n). It is an error for
	// the range to exceed Length().
	ReadAt(offset int64, n int) ([]byte, error)

	// Length returns the total addressable byte length.
	Length() int64

	// Close releases any OS resources (file descriptor, mapping). Closing
	// an in-memory source is a no-op.
	Close() error
}

// memSource wraps a []byte directly; ReadAt is a zero-copy sub-slice.
type memSource struct {
	buf []byte
}

// OpenBytes returns a Source backed directly by buf. The caller must not
// mutate buf for the lifetime of the Source.
func OpenBytes(buf []byte) Source {
	return &memSource{buf: buf}
}

func (m *memSource) ReadAt(offset int64, n int) ([]byte, error) {
	if offset < 0 || n < 0 || offset+int64(n) > int64(len(m.buf)) {
		return nil, types.Wrapf(types.ErrKindIO, nil,
			"read out of range: offset=%d n=%d len=%d", offset, n, len(m.buf))
	}
	return m.buf[offset : offset+int64(n)], nil
}

func (m *memSource) Length() int64 { return int64(len(m.buf)) }

func (m *memSource) Close() error { return nil }
