package pst

import (
	"github.com/pstkit/pstkit/internal/buf"
	"github.com/pstkit/pstkit/internal/format"
	"github.com/pstkit/pstkit/pkg/types"
)

// subNodeEntry is one entry of a node's private sub-node descriptor map
// (spec.md §4.10): a local NID (meaningful only within the owning node)
// mapped to its own data BID and, recursively, its own sub-node BID.
type subNodeEntry struct {
	dataBID    types.BID
	subNodeBID types.BID
}

// loadSubNodes resolves subNodeBID into a flat map of every local NID it
// (possibly transitively, through SIBLOCK indirection) describes. A zero
// BID yields an empty, non-nil map.
func (fh *FileHandle) loadSubNodes(subNodeBID types.BID) (map[types.NID]subNodeEntry, error) {
	result := make(map[types.NID]subNodeEntry)
	if subNodeBID == 0 {
		return result, nil
	}
	stream, err := fh.openNode(subNodeBID)
	if err != nil {
		return nil, err
	}
	raw, err := stream.ReadCompletely()
	if err != nil {
		return nil, err
	}
	if err := fh.collectSubNodes(raw, result, 0); err != nil {
		return nil, err
	}
	return result, nil
}

func (fh *FileHandle) collectSubNodes(raw []byte, out map[types.NID]subNodeEntry, depth int) error {
	if depth > 8 {
		return types.Wrapf(types.ErrKindCorruptNode, nil, "sub-node block nesting too deep")
	}
	if len(raw) < format.SubNodeHeaderSize {
		return types.Wrapf(types.ErrKindCorruptNode, nil, "sub-node block header truncated")
	}

	btype := raw[format.SubNodeOffBType]
	cEnt := int(format.ReadU16(raw, format.SubNodeOffCEnt))
	width := format.FieldWidth(fh.header.unicode)

	switch btype {
	case format.SLBlockBType:
		entrySize := 4 + 2*width
		if _, err := buf.CheckListBounds(len(raw), format.SubNodeHeaderSize, cEnt, entrySize); err != nil {
			return types.Wrapf(types.ErrKindCorruptNode, err, "sub-node leaf array out of bounds")
		}
		for i := 0; i < cEnt; i++ {
			off := format.SubNodeHeaderSize + i*entrySize
			localNID := types.NID(format.ReadU32(raw, off))
			dataBID, subBID := readBIDPair(raw, off+4, width)
			out[localNID] = subNodeEntry{dataBID: dataBID, subNodeBID: subBID}
		}
		return nil

	case format.SIBlockBType:
		entrySize := 4 + width
		if _, err := buf.CheckListBounds(len(raw), format.SubNodeHeaderSize, cEnt, entrySize); err != nil {
			return types.Wrapf(types.ErrKindCorruptNode, err, "sub-node branch array out of bounds")
		}
		for i := 0; i < cEnt; i++ {
			off := format.SubNodeHeaderSize + i*entrySize
			var childBID types.BID
			if fh.header.unicode {
				childBID = types.BID(format.ReadU64(raw, off+4))
			} else {
				childBID = types.BID(format.ReadU32(raw, off+4))
			}
			childStream, err := fh.openNode(childBID)
			if err != nil {
				return err
			}
			childRaw, err := childStream.ReadCompletely()
			if err != nil {
				return err
			}
			if err := fh.collectSubNodes(childRaw, out, depth+1); err != nil {
				return err
			}
		}
		return nil

	default:
		return types.Wrapf(types.ErrKindCorruptNode, nil, "unrecognized sub-node block type 0x%02x", btype)
	}
}

func readBIDPair(raw []byte, off, width int) (a, b types.BID) {
	if width == 8 {
		return types.BID(format.ReadU64(raw, off)), types.BID(format.ReadU64(raw, off+8))
	}
	return types.BID(format.ReadU32(raw, off)), types.BID(format.ReadU32(raw, off+4))
}
