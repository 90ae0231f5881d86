package pst

import (
	"github.com/pstkit/pstkit/internal/format"
	"github.com/pstkit/pstkit/pkg/types"
)

// valueContext bundles what a property-value dereference needs, shared by
// the BC table (C8) and the TC table (C9): the Heap-on-Node to resolve HIDs
// against, the sub-node map to resolve external NID references against, the
// owning file handle (for opening external data streams), and the 8-bit
// codepage selected for PtypString8 values.
type valueContext struct {
	fh       *FileHandle
	hn       *heapOnNode
	subNodes map[types.NID]subNodeEntry
	codepage uint32
}

// resolveHNID implements the low-two-bits HID/NID discriminator shared by
// every variable-length property dereference (spec.md §4.8, §9).
func (vc *valueContext) resolveHNID(value uint32) ([]byte, error) {
	if value&format.HNIDDiscriminatorMask == 0 {
		return vc.hn.resolve(value)
	}
	nid := types.NID(value)
	entry, ok := vc.subNodes[nid]
	if !ok {
		return nil, types.Wrapf(types.ErrKindExternalRefMissing, nil,
			"sub-node %s referenced but not present in descriptor map", nid)
	}
	stream, err := vc.fh.openNode(entry.dataBID)
	if err != nil {
		return nil, err
	}
	return stream.ReadCompletely()
}

// decodeFixed decodes a fixed-width scalar already in hand as raw bytes
// (inline row bytes for TC, or HID-resolved bytes for BC's 8-byte fields).
func decodeFixed(t format.PropType, raw []byte) (PropValue, error) {
	switch format.WidthOf(t) {
	case 2:
		v := format.ReadU16(raw, 0)
		if t == format.PtypBoolean {
			return PropValue{Type: t, val: v != 0}, nil
		}
		return PropValue{Type: t, val: int64(int16(v))}, nil
	case 4:
		return PropValue{Type: t, val: int64(int32(format.ReadU32(raw, 0)))}, nil
	case 8:
		u := format.ReadU64(raw, 0)
		if t == format.PtypTime {
			return PropValue{Type: t, val: format.FiletimeU64ToTime(u)}, nil
		}
		return PropValue{Type: t, val: int64(u)}, nil
	case 16:
		return PropValue{Type: t, val: append([]byte(nil), raw...)}, nil
	default:
		return PropValue{}, types.Wrapf(types.ErrKindCorruptNode, nil, "decodeFixed: unexpected width for type 0x%x", t)
	}
}

// decodeVariable dereferences value through vc and decodes it according to
// t's base (non-multi) type (spec.md §4.8).
func (vc *valueContext) decodeVariable(t format.PropType, value uint32) (PropValue, error) {
	raw, err := vc.resolveHNID(value)
	if err != nil {
		return PropValue{}, err
	}

	base := t &^ format.PtypMultiValueFlag
	multi := t&format.PtypMultiValueFlag != 0

	switch base {
	case format.PtypString:
		if multi {
			strs := decodeMultiString16(raw)
			out := make([][]byte, len(strs))
			for i, s := range strs {
				out[i] = []byte(s)
			}
			return PropValue{Type: t, val: out}, nil
		}
		return PropValue{Type: t, val: decodeUTF16LE(raw)}, nil

	case format.PtypString8:
		return PropValue{Type: t, val: decode8Bit(raw, vc.codepage)}, nil

	case format.PtypBinary:
		if multi {
			return PropValue{Type: t, val: [][]byte{raw}}, nil
		}
		return PropValue{Type: t, val: raw}, nil

	default:
		return PropValue{Type: t, val: raw}, nil
	}
}

// decode dispatches a raw {propType, dwValueHnid}-style reference to the
// fixed or variable decoder as appropriate.
func (vc *valueContext) decode(t format.PropType, value uint32) (PropValue, error) {
	if w := format.WidthOf(t); w > 0 && w <= 4 {
		var buf4 [4]byte
		format.PutU32(buf4[:], 0, value)
		return decodeFixed(t, buf4[:])
	}
	if format.WidthOf(t) == 8 || t == format.PtypGuid {
		raw, err := vc.hn.resolve(value)
		if err != nil {
			return PropValue{}, err
		}
		return decodeFixed(t, raw)
	}
	return vc.decodeVariable(t, value)
}
