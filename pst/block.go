package pst

import (
	"github.com/pstkit/pstkit/internal/buf"
	"github.com/pstkit/pstkit/internal/crypt"
	"github.com/pstkit/pstkit/internal/format"
	"github.com/pstkit/pstkit/pkg/types"
)

// leafRegion is one data-leaf's on-disk location, trailer already excluded.
type leafRegion struct {
	fileOffset int64
	length     int
}

// blockStream is the logical byte stream produced by openNode (C6): the
// concatenation of every data leaf reachable from a BID, with compressible
// decoding applied on delivery.
type blockStream struct {
	fh     *FileHandle
	leaves []leafRegion
	total  int64
	pos    int64
}

// openNode resolves bid through the BBT and returns its logical byte
// stream, expanding XBlock/XXBlock arrays as needed (spec.md §4.6).
func (fh *FileHandle) openNode(bid types.BID) (*blockStream, error) {
	if bid == 0 {
		return &blockStream{fh: fh}, nil
	}
	leaves, err := fh.expandBID(bid, 0)
	if err != nil {
		return nil, err
	}
	var total int64
	for _, l := range leaves {
		total += int64(l.length)
	}
	return &blockStream{fh: fh, leaves: leaves, total: total}, nil
}

// expandBID resolves bid to its data-leaf region(s). depth guards against a
// corrupt file describing an XBlock chain deeper than the two levels
// [MS-PST] allows (XBlock -> XXBlock -> data).
func (fh *FileHandle) expandBID(bid types.BID, depth int) ([]leafRegion, error) {
	if depth > 2 {
		return nil, types.Wrapf(types.ErrKindCorruptNode, nil, "xblock nesting too deep for bid=%s", bid)
	}

	entry, err := fh.lookupBBT(bid)
	if err != nil {
		return nil, err
	}

	if !bid.IsInternal() {
		return []leafRegion{{fileOffset: entry.fileOffset, length: int(entry.size)}}, nil
	}

	allocated := format.Align64(int(entry.size)) + format.BlockTrailerSize
	raw, err := fh.src.ReadAt(entry.fileOffset, allocated)
	if err != nil {
		return nil, types.Wrapf(types.ErrKindIO, err, "read xblock bid=%s", bid)
	}
	if len(raw) < format.XBlockHeaderSize {
		return nil, types.Wrapf(types.ErrKindCorruptNode, nil, "xblock header truncated bid=%s", bid)
	}

	btype := raw[format.XBlockOffBType]
	if btype != format.XBlockBType {
		return nil, types.Wrapf(types.ErrKindCorruptNode, nil,
			"bad xblock btype 0x%02x for bid=%s", btype, bid)
	}
	cLevel := raw[format.XBlockOffCLevel]
	cEnt := int(format.ReadU16(raw, format.XBlockOffCEnt))
	lcbTotal := int64(format.ReadU32(raw, format.XBlockOffLcbTotal))

	width := format.FieldWidth(fh.header.unicode)
	if _, err := buf.CheckListBounds(len(raw), format.XBlockHeaderSize, cEnt, width); err != nil {
		return nil, types.Wrapf(types.ErrKindCorruptNode, err, "xblock child array out of bounds bid=%s", bid)
	}

	var leaves []leafRegion
	for i := 0; i < cEnt; i++ {
		off := format.XBlockHeaderSize + i*width
		var child types.BID
		if fh.header.unicode {
			child = types.BID(format.ReadU64(raw, off))
		} else {
			child = types.BID(format.ReadU32(raw, off))
		}

		switch cLevel {
		case 1:
			sub, err := fh.expandBID(child, depth+1)
			if err != nil {
				return nil, err
			}
			leaves = append(leaves, sub...)
		case 2:
			sub, err := fh.expandBID(child, depth+1)
			if err != nil {
				return nil, err
			}
			leaves = append(leaves, sub...)
		default:
			return nil, types.Wrapf(types.ErrKindCorruptNode, nil,
				"bad xblock cLevel=%d for bid=%s", cLevel, bid)
		}
	}

	var sum int64
	for _, l := range leaves {
		sum += int64(l.length)
	}
	if sum != lcbTotal {
		if fh.opts.Tolerant {
			logger().Warn("xblock declared size mismatch", "bid", bid, "declared", lcbTotal, "actual", sum)
		} else {
			return nil, types.Wrapf(types.ErrKindCorruptNode, nil,
				"xblock bid=%s: leaf sizes sum to %d, declared lcbTotal=%d", bid, sum, lcbTotal)
		}
	}

	return leaves, nil
}

// Pages returns each data leaf's decoded bytes as a separate slice, without
// concatenating them. The Heap-on-Node (C7) treats each of a node's data
// blocks as one heap page, rather than as a position within a flattened
// stream, so table readers consult Pages instead of ReadCompletely.
func (s *blockStream) Pages() ([][]byte, error) {
	pages := make([][]byte, 0, len(s.leaves))
	for _, leaf := range s.leaves {
		chunk, err := s.fh.src.ReadAt(leaf.fileOffset, leaf.length)
		if err != nil {
			return nil, types.Wrapf(types.ErrKindIO, err, "read data leaf at %d", leaf.fileOffset)
		}
		decoded := append([]byte(nil), chunk...)
		if s.fh.header.encryption == format.EncryptCompressible {
			crypt.Decode(decoded)
		}
		pages = append(pages, decoded)
	}
	return pages, nil
}

// Length returns the total logical byte length of the stream.
func (s *blockStream) Length() int64 { return s.total }

// Seek repositions the stream's read cursor.
func (s *blockStream) Seek(pos int64) {
	if pos < 0 {
		pos = 0
	}
	if pos > s.total {
		pos = s.total
	}
	s.pos = pos
}

// Read reads up to n bytes starting at the current cursor, advancing it.
func (s *blockStream) Read(n int) ([]byte, error) {
	if n < 0 {
		n = 0
	}
	remaining := s.total - s.pos
	if int64(n) > remaining {
		n = int(remaining)
	}
	out, err := s.ReadAt(s.pos, n)
	if err != nil {
		return nil, err
	}
	s.pos += int64(len(out))
	return out, nil
}

// ReadCompletely reads and returns the entire logical stream.
func (s *blockStream) ReadCompletely() ([]byte, error) {
	return s.ReadAt(0, int(s.total))
}

// ReadAt reads n bytes of logical stream content starting at pos, without
// disturbing the cursor used by Read/Seek.
func (s *blockStream) ReadAt(pos int64, n int) ([]byte, error) {
	if pos < 0 || n < 0 || pos+int64(n) > s.total {
		return nil, types.Wrapf(types.ErrKindIO, nil,
			"stream read out of range: pos=%d n=%d total=%d", pos, n, s.total)
	}
	out := make([]byte, 0, n)
	remaining := n
	cursor := pos
	for _, leaf := range s.leaves {
		if remaining == 0 {
			break
		}
		if cursor >= int64(leaf.length) {
			cursor -= int64(leaf.length)
			continue
		}
		take := leaf.length - int(cursor)
		if take > remaining {
			take = remaining
		}
		chunk, err := s.fh.src.ReadAt(leaf.fileOffset+cursor, take)
		if err != nil {
			return nil, types.Wrapf(types.ErrKindIO, err, "read data leaf at %d", leaf.fileOffset+cursor)
		}
		decoded := append([]byte(nil), chunk...)
		if s.fh.header.encryption == format.EncryptCompressible {
			crypt.Decode(decoded)
		}
		out = append(out, decoded...)
		remaining -= take
		cursor = 0
	}
	return out, nil
}
