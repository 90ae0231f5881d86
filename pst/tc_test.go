package pst

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pstkit/pstkit/internal/format"
	"github.com/pstkit/pstkit/pkg/types"
)

// buildTCInfoRoot builds a one-column TCINFO header plus its column
// descriptor array, the single heap allocation a TC table's userRoot HID
// resolves to (spec.md §4.9).
func buildTCInfoRoot(hidRowIdx, hnidRows uint32, rowSize, bitmapOff int, propID uint16, propType format.PropType) []byte {
	root := make([]byte, format.TCHeaderSize+format.TCColumnDescSize)
	root[format.TCOffBType] = format.TCBType
	root[format.TCOffCCols] = 1
	format.PutU16(root, format.TCOffRgib+4, uint16(bitmapOff)) // rgib[2]
	format.PutU16(root, format.TCOffRgib+6, uint16(rowSize))   // rgib[3]
	format.PutU32(root, format.TCOffHidRowIdx, hidRowIdx)
	format.PutU32(root, format.TCOffHnidRows, hnidRows)

	col := root[format.TCHeaderSize:]
	format.PutU16(col, format.TCColOffPropType, uint16(propType))
	format.PutU16(col, format.TCColOffPropID, propID)
	format.PutU16(col, format.TCColOffIbData, 0)
	col[format.TCColOffCbData] = byte(bitmapOff)
	col[format.TCColOffIBit] = 0
	return root
}

func TestOpenTCTableAndGet(t *testing.T) {
	const (
		propID   = uint16(0x5678)
		rowID    = uint32(555)
		rowSize  = 5 // 4-byte Integer32 + 1-byte presence bitmap
		bmapOff  = 4
	)

	row := make([]byte, rowSize)
	format.PutU32(row, 0, 99)
	row[bmapOff] = 0x01 // bit 0 set: column present

	rowIndex := make([]byte, 8)
	format.PutU32(rowIndex, 0, rowID)
	format.PutU32(rowIndex, 4, 0)

	root := buildTCInfoRoot(hidFor(0, 2), hidFor(0, 3), rowSize, bmapOff, propID, format.PtypInteger32)
	page := buildHNPageMulti(hidFor(0, 1), [][]byte{root, rowIndex, row})

	raw := buildFileWithDataBlock(types.NID(101), types.BID(201), page)

	fh, err := OpenBytes(raw, types.OpenOptions{})
	require.NoError(t, err)
	defer fh.Close()

	nbt, err := fh.lookupNBT(types.NID(101))
	require.NoError(t, err)

	tc, err := fh.openTCTable(nbt)
	require.NoError(t, err)

	assert.Equal(t, []uint32{rowID}, tc.RowIDs())

	v, ok, err := tc.Get(rowID, propID)
	require.NoError(t, err)
	require.True(t, ok)
	n, ok := v.AsInt64()
	require.True(t, ok)
	assert.EqualValues(t, 99, n)

	_, ok, err = tc.Get(rowID, 0x9999)
	require.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = tc.Get(404, propID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestOpenTCTablePresenceBitClear(t *testing.T) {
	const (
		propID  = uint16(0x5678)
		rowID   = uint32(555)
		rowSize = 5
		bmapOff = 4
	)

	row := make([]byte, rowSize) // presence byte left at 0: column absent
	format.PutU32(row, 0, 99)

	rowIndex := make([]byte, 8)
	format.PutU32(rowIndex, 0, rowID)
	format.PutU32(rowIndex, 4, 0)

	root := buildTCInfoRoot(hidFor(0, 2), hidFor(0, 3), rowSize, bmapOff, propID, format.PtypInteger32)
	page := buildHNPageMulti(hidFor(0, 1), [][]byte{root, rowIndex, row})

	raw := buildFileWithDataBlock(types.NID(101), types.BID(201), page)
	fh, err := OpenBytes(raw, types.OpenOptions{})
	require.NoError(t, err)
	defer fh.Close()

	nbt, err := fh.lookupNBT(types.NID(101))
	require.NoError(t, err)
	tc, err := fh.openTCTable(nbt)
	require.NoError(t, err)

	_, ok, err := tc.Get(rowID, propID)
	require.NoError(t, err)
	assert.False(t, ok)
}
