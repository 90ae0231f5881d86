//go:build !unix

package bytesource

import (
	"io"
	"os"

	"github.com/pstkit/pstkit/pkg/types"
)

// fileSource is a plain ReadAt-based file source, used on platforms with no
// unix mmap syscall. Slower than the mmap path but portable.
type fileSource struct {
	f    *os.File
	size int64
}

// OpenFile opens path for positioned reads and returns a Source over it.
func OpenFile(path string) (Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, types.Wrapf(types.ErrKindIO, err, "open %s", path)
	}
	st, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, types.Wrapf(types.ErrKindIO, err, "stat %s", path)
	}
	return &fileSource{f: f, size: st.Size()}, nil
}

func (s *fileSource) ReadAt(offset int64, n int) ([]byte, error) {
	if offset < 0 || n < 0 || offset+int64(n) > s.size {
		return nil, types.Wrapf(types.ErrKindIO, nil,
			"read out of range: offset=%d n=%d len=%d", offset, n, s.size)
	}
	buf := make([]byte, n)
	if _, err := s.f.ReadAt(buf, offset); err != nil && err != io.EOF {
		return nil, types.Wrapf(types.ErrKindIO, err, "readat offset=%d n=%d", offset, n)
	}
	return buf, nil
}

func (s *fileSource) Length() int64 { return s.size }

func (s *fileSource) Close() error { return s.f.Close() }
