package pst

import (
	"github.com/pstkit/pstkit/internal/buf"
	"github.com/pstkit/pstkit/internal/format"
	"github.com/pstkit/pstkit/pkg/types"
)

// bcRawEntry is one undereferenced BTH leaf entry: {propType, dwValueHnid}.
type bcRawEntry struct {
	propType format.PropType
	value    uint32
}

// bcTable is a parsed property-context table (C8): a property-id-keyed map
// of typed values, dereferencing external values through the owning node's
// Heap-on-Node or, failing that, its sub-node descriptor map.
type bcTable struct {
	vc      *valueContext
	entries map[uint16]bcRawEntry
}

// openBCTable parses the property-context table for the node described by
// nbt (spec.md §4.8).
func (fh *FileHandle) openBCTable(nbt nbtEntry) (*bcTable, error) {
	hn, err := fh.openHeapOnNode(nbt.dataBID)
	if err != nil {
		return nil, err
	}

	root, err := hn.userRootBytes()
	if err != nil {
		return nil, types.Wrapf(types.ErrKindCorruptNode, err, "bc: resolve user root for nid=%s", nbt.nid)
	}
	if len(root) < format.BCHeaderSize {
		return nil, types.Wrapf(types.ErrKindCorruptNode, nil, "bc: header truncated for nid=%s", nbt.nid)
	}
	if root[format.BCOffBType] != format.BCBType {
		return nil, types.Wrapf(types.ErrKindCorruptNode, nil,
			"bc: bad bType 0x%02x for nid=%s", root[format.BCOffBType], nbt.nid)
	}
	hidRoot := format.ReadU32(root, format.BCOffHidRoot)

	arr, err := hn.resolve(hidRoot)
	if err != nil {
		return nil, types.Wrapf(types.ErrKindCorruptNode, err, "bc: resolve entry array for nid=%s", nbt.nid)
	}
	count := len(arr) / format.BCEntrySize
	if _, err := buf.CheckListBounds(len(arr), 0, count, format.BCEntrySize); err != nil {
		return nil, types.Wrapf(types.ErrKindCorruptNode, err, "bc: entry array out of bounds for nid=%s", nbt.nid)
	}

	subNodes, err := fh.loadSubNodes(nbt.subNodeBID)
	if err != nil {
		return nil, err
	}

	entries := make(map[uint16]bcRawEntry, count)
	for i := 0; i < count; i++ {
		off := i * format.BCEntrySize
		propTag := format.ReadU16(arr, off+format.BCEntryOffPropID)
		propType := format.PropType(format.ReadU16(arr, off+format.BCEntryOffType))
		value := format.ReadU32(arr, off+format.BCEntryOffValue)
		entries[propTag] = bcRawEntry{propType: propType, value: value}
	}

	bc := &bcTable{
		vc:      &valueContext{fh: fh, hn: hn, subNodes: subNodes, codepage: 1252},
		entries: entries,
	}
	bc.vc.codepage = bc.resolveCodepage()
	return bc, nil
}

// resolveCodepage reads property 0x3FDE (internet) or 0x3FFD (message) to
// pick the 8-bit codepage for PtypString8 values, defaulting to 1252.
func (bc *bcTable) resolveCodepage() uint32 {
	if v, ok, err := bc.Get(format.PropInternetCPID); err == nil && ok {
		if n, ok := v.AsInt64(); ok {
			return uint32(n)
		}
	}
	if v, ok, err := bc.Get(format.PropMessageCodepage); err == nil && ok {
		if n, ok := v.AsInt64(); ok {
			return uint32(n)
		}
	}
	return 1252
}

// Get dereferences property id per spec.md §4.8, returning ok=false if the
// property is absent.
func (bc *bcTable) Get(propID uint16) (PropValue, bool, error) {
	e, ok := bc.entries[propID]
	if !ok {
		return PropValue{}, false, nil
	}
	v, err := bc.vc.decode(e.propType, e.value)
	if err != nil {
		return PropValue{}, false, err
	}
	return v, true, nil
}

// GetAll returns every property successfully decoded from the table.
// Undecodable entries are skipped with a logged diagnostic whatever the
// Tolerant setting; GetAll never aborts the read or returns an error.
func (bc *bcTable) GetAll() map[uint16]PropValue {
	out := make(map[uint16]PropValue, len(bc.entries))
	for id, e := range bc.entries {
		v, err := bc.vc.decode(e.propType, e.value)
		if err != nil {
			logger().Warn("skipping undecodable property", "prop", id, "err", err)
			continue
		}
		out[id] = v
	}
	return out
}
