package pst

import (
	"sync"

	"github.com/pstkit/pstkit/internal/bytesource"
	"github.com/pstkit/pstkit/pkg/types"
)

// FileHandle is an open PST/OST file: the byte source, validated header, and
// the NBT/BBT roots needed to resolve every other request. It is read-only
// shared state (spec.md §5); every value derived from it borrows its bytes
// rather than copying them, unless the caller requested a copy.
type FileHandle struct {
	src    bytesource.Source
	opts   types.OpenOptions
	header header
	closed bool

	nameIDMap *NameToIDMap

	fallbackOnce sync.Once
	fallbackMap  map[types.NID][]types.NID
	fallbackErr  error
}

// Open opens the PST/OST file at path, memory-mapping it for zero-copy
// reads, validates its header, and eagerly builds the name-to-ID map.
func Open(path string, opts types.OpenOptions) (*FileHandle, error) {
	src, err := bytesource.OpenFile(path)
	if err != nil {
		return nil, err
	}
	fh, err := newFileHandle(src, opts)
	if err != nil {
		src.Close()
		return nil, err
	}
	return fh, nil
}

// OpenBytes opens a PST/OST already held in memory. Unless opts.ZeroCopy is
// set, buf is copied first; with ZeroCopy the caller must not mutate buf
// while the returned FileHandle is in use.
func OpenBytes(buf []byte, opts types.OpenOptions) (*FileHandle, error) {
	if !opts.ZeroCopy {
		buf = append([]byte(nil), buf...)
	}
	return newFileHandle(bytesource.OpenBytes(buf), opts)
}

func newFileHandle(src bytesource.Source, opts types.OpenOptions) (*FileHandle, error) {
	opts = opts.WithDefaults()

	raw, err := src.ReadAt(0, headerReadSize(src.Length()))
	if err != nil {
		return nil, err
	}
	hdr, err := parseHeader(raw)
	if err != nil {
		return nil, err
	}

	fh := &FileHandle{src: src, opts: opts, header: hdr}

	nameIDMap, err := fh.loadNameToIDMap()
	if err != nil {
		return nil, err
	}
	fh.nameIDMap = nameIDMap

	return fh, nil
}

func headerReadSize(fileLen int64) int {
	if fileLen < 564 {
		return int(fileLen)
	}
	return 564
}

func (fh *FileHandle) ensureOpen() error {
	if fh == nil || fh.closed {
		return types.Wrapf(types.ErrKindIO, nil, "file handle is closed")
	}
	return nil
}

// Close releases the underlying file descriptor/mapping. Safe to call more
// than once.
func (fh *FileHandle) Close() error {
	if fh.closed {
		return nil
	}
	fh.closed = true
	return fh.src.Close()
}

// Variant reports the on-disk format generation (14, 23, or 36; 15 is
// normalized to 14 at parse time).
func (fh *FileHandle) Variant() int { return int(fh.header.variant) }

// IsUnicode reports whether this file uses the 64-bit Unicode layout.
func (fh *FileHandle) IsUnicode() bool { return fh.header.unicode }

// IsEncrypted reports whether compressible encryption is in effect.
func (fh *FileHandle) IsEncrypted() bool { return fh.header.encryption == 1 }

// fallbackChildren returns the lazily-built, memoized parentNid->childNid[]
// map (spec.md §4.5, §5: "lazily built on first access and memoized").
func (fh *FileHandle) fallbackChildren(parent types.NID) ([]types.NID, error) {
	fh.fallbackOnce.Do(func() {
		fh.fallbackMap, fh.fallbackErr = fh.buildFallbackMap()
	})
	if fh.fallbackErr != nil {
		return nil, fh.fallbackErr
	}
	return fh.fallbackMap[parent], nil
}
