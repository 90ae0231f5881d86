package pst

import (
	"sort"

	"github.com/pstkit/pstkit/internal/buf"
	"github.com/pstkit/pstkit/internal/format"
	"github.com/pstkit/pstkit/pkg/types"
)

// tcColumn is one parsed column descriptor of a table-context table.
type tcColumn struct {
	propID  uint16
	propTag format.PropType
	ibData  int
	cbData  int
	iBit    int
}

// tcTable is a parsed table-context table (C9): a row-keyed, column-tagged
// grid, used for folder contents tables, attachment tables and recipient
// tables (spec.md §4.9).
type tcTable struct {
	vc       *valueContext
	columns  []tcColumn
	rowSize  int
	bitmapOff int
	rowIDs   []uint32 // in row-index order
	rowOff   map[uint32]int
	rows     []byte
}

// openTCTable parses the table-context table for the node described by nbt.
func (fh *FileHandle) openTCTable(nbt nbtEntry) (*tcTable, error) {
	hn, err := fh.openHeapOnNode(nbt.dataBID)
	if err != nil {
		return nil, err
	}

	root, err := hn.userRootBytes()
	if err != nil {
		return nil, types.Wrapf(types.ErrKindCorruptNode, err, "tc: resolve user root for nid=%s", nbt.nid)
	}
	if len(root) < format.TCHeaderSize {
		return nil, types.Wrapf(types.ErrKindCorruptNode, nil, "tc: header truncated for nid=%s", nbt.nid)
	}
	if root[format.TCOffBType] != format.TCBType {
		return nil, types.Wrapf(types.ErrKindCorruptNode, nil,
			"tc: bad bType 0x%02x for nid=%s", root[format.TCOffBType], nbt.nid)
	}

	cCols := int(root[format.TCOffCCols])
	rgib := [4]int{
		int(format.ReadU16(root, format.TCOffRgib)),
		int(format.ReadU16(root, format.TCOffRgib+2)),
		int(format.ReadU16(root, format.TCOffRgib+4)),
		int(format.ReadU16(root, format.TCOffRgib+6)),
	}
	hidRowIndex := format.ReadU32(root, format.TCOffHidRowIdx)
	hnidRows := format.ReadU32(root, format.TCOffHnidRows)

	colsRaw := root[format.TCHeaderSize:]
	if _, err := buf.CheckListBounds(len(colsRaw), 0, cCols, format.TCColumnDescSize); err != nil {
		return nil, types.Wrapf(types.ErrKindCorruptNode, err, "tc: column descriptor array out of bounds for nid=%s", nbt.nid)
	}
	columns := make([]tcColumn, cCols)
	for i := 0; i < cCols; i++ {
		off := i * format.TCColumnDescSize
		columns[i] = tcColumn{
			propTag: format.PropType(format.ReadU16(colsRaw, off+format.TCColOffPropType)),
			propID:  format.ReadU16(colsRaw, off+format.TCColOffPropID),
			ibData:  int(format.ReadU16(colsRaw, off+format.TCColOffIbData)),
			cbData:  int(colsRaw[off+format.TCColOffCbData]),
			iBit:    int(colsRaw[off+format.TCColOffIBit]),
		}
	}

	subNodes, err := fh.loadSubNodes(nbt.subNodeBID)
	if err != nil {
		return nil, err
	}
	vc := &valueContext{fh: fh, hn: hn, subNodes: subNodes, codepage: 1252}

	rowSize := rgib[3]

	rowIndexRaw, err := hn.resolve(hidRowIndex)
	if err != nil {
		return nil, types.Wrapf(types.ErrKindCorruptNode, err, "tc: resolve row index for nid=%s", nbt.nid)
	}
	const rowIndexEntrySize = 8 // {dwRowID u32, dwRowIndex u32}
	rowCount := len(rowIndexRaw) / rowIndexEntrySize
	if _, err := buf.CheckListBounds(len(rowIndexRaw), 0, rowCount, rowIndexEntrySize); err != nil {
		return nil, types.Wrapf(types.ErrKindCorruptNode, err, "tc: row index array out of bounds for nid=%s", nbt.nid)
	}

	rowOff := make(map[uint32]int, rowCount)
	rowIDs := make([]uint32, 0, rowCount)
	for i := 0; i < rowCount; i++ {
		off := i * rowIndexEntrySize
		rowID := format.ReadU32(rowIndexRaw, off)
		rowIdx := format.ReadU32(rowIndexRaw, off+4)
		rowIDs = append(rowIDs, rowID)
		rowOff[rowID] = int(rowIdx) * rowSize
	}
	sort.Slice(rowIDs, func(i, j int) bool { return rowOff[rowIDs[i]] < rowOff[rowIDs[j]] })

	var rows []byte
	if rowCount > 0 {
		rows, err = vc.resolveHNID(hnidRows)
		if err != nil {
			return nil, types.Wrapf(types.ErrKindCorruptNode, err, "tc: resolve rows blob for nid=%s", nbt.nid)
		}
	}

	return &tcTable{
		vc:        vc,
		columns:   columns,
		rowSize:   rowSize,
		bitmapOff: rgib[2],
		rowIDs:    rowIDs,
		rowOff:    rowOff,
		rows:      rows,
	}, nil
}

// RowIDs returns every row id, ordered by row-index position (spec.md §4.9).
func (tc *tcTable) RowIDs() []uint32 {
	return tc.rowIDs
}

func (tc *tcTable) rowBytes(rowID uint32) ([]byte, bool) {
	off, ok := tc.rowOff[rowID]
	if !ok || off < 0 || off+tc.rowSize > len(tc.rows) {
		return nil, false
	}
	return tc.rows[off : off+tc.rowSize], true
}

func (tc *tcTable) present(row []byte, iBit int) bool {
	byteOff := tc.bitmapOff + iBit/8
	if byteOff >= len(row) {
		return false
	}
	return row[byteOff]&(1<<uint(iBit%8)) != 0
}

// Get dereferences column propID of rowID, returning ok=false if the row is
// absent, the column doesn't exist, or the presence bit is clear.
func (tc *tcTable) Get(rowID uint32, propID uint16) (PropValue, bool, error) {
	row, ok := tc.rowBytes(rowID)
	if !ok {
		return PropValue{}, false, nil
	}
	var col *tcColumn
	for i := range tc.columns {
		if tc.columns[i].propID == propID {
			col = &tc.columns[i]
			break
		}
	}
	if col == nil || !tc.present(row, col.iBit) {
		return PropValue{}, false, nil
	}
	if col.ibData+col.cbData > len(row) {
		return PropValue{}, false, types.Wrapf(types.ErrKindCorruptNode, nil, "tc: column data out of row bounds")
	}
	field := row[col.ibData : col.ibData+col.cbData]

	w := format.WidthOf(col.propTag)
	if w > 0 && w <= col.cbData && col.propTag != format.PtypGuid {
		v, err := decodeFixed(col.propTag, field)
		return v, err == nil, err
	}
	if col.propTag == format.PtypGuid || w == 16 {
		hid := format.ReadU32(field, 0)
		raw, err := tc.vc.hn.resolve(hid)
		if err != nil {
			return PropValue{}, false, err
		}
		v, err := decodeFixed(col.propTag, raw)
		return v, err == nil, err
	}

	value := format.ReadU32(field, 0)
	v, err := tc.vc.decodeVariable(col.propTag, value)
	if err != nil {
		return PropValue{}, false, err
	}
	return v, true, nil
}

// GetRow dereferences every present column of rowID.
func (tc *tcTable) GetRow(rowID uint32) map[uint16]PropValue {
	out := make(map[uint16]PropValue, len(tc.columns))
	for _, col := range tc.columns {
		if v, ok, err := tc.Get(rowID, col.propID); err == nil && ok {
			out[col.propID] = v
		} else if err != nil {
			logger().Warn("skipping undecodable column", "row", rowID, "prop", col.propID, "err", err)
		}
	}
	return out
}
