package pst

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pstkit/pstkit/internal/format"
	"github.com/pstkit/pstkit/pkg/types"
)

// buildHNPageMulti lays out an arbitrary number of allocations back-to-back
// after the page-0 header and builds a matching page map, generalizing
// buildHNPage0 (hn_test.go) to the multi-allocation case a real BC/TC table
// needs (header allocation plus entry-array allocation).
func buildHNPageMulti(userRootHID uint32, allocs [][]byte) []byte {
	offsets := make([]int, len(allocs)+1)
	cursor := format.HNPage0HeaderSize
	offsets[0] = cursor
	for i, a := range allocs {
		cursor += len(a)
		offsets[i+1] = cursor
	}
	ibHnpm := cursor
	mapSize := 4 + len(offsets)*2
	page := make([]byte, ibHnpm+mapSize)

	page[format.HNOffBSig] = format.HNSigByte
	page[format.HNOffBClientSig] = format.BCBType
	format.PutU32(page, format.HNOffHidUserRoot, userRootHID)
	format.PutU16(page, format.HNOffIbHnpm, uint16(ibHnpm))

	pos := format.HNPage0HeaderSize
	for _, a := range allocs {
		copy(page[pos:], a)
		pos += len(a)
	}

	format.PutU16(page, ibHnpm, uint16(len(allocs))) // cAlloc
	for i, off := range offsets {
		format.PutU16(page, ibHnpm+4+i*2, uint16(off))
	}
	return page
}

// buildBCHeader builds the 8-byte BC table header {bType, padding, hidRoot}.
func buildBCHeader(hidRoot uint32) []byte {
	h := make([]byte, format.BCHeaderSize)
	h[format.BCOffBType] = format.BCBType
	format.PutU32(h, format.BCOffHidRoot, hidRoot)
	return h
}

// buildBCEntry builds one 8-byte BTH leaf entry {propID, propType, value}.
func buildBCEntry(propID uint16, propType format.PropType, value uint32) []byte {
	e := make([]byte, format.BCEntrySize)
	format.PutU16(e, format.BCEntryOffPropID, propID)
	format.PutU16(e, format.BCEntryOffType, uint16(propType))
	format.PutU32(e, format.BCEntryOffValue, value)
	return e
}

// buildFileWithDataBlock assembles header + single-entry NBT root page +
// single-entry BBT root page + one raw data block, enough to exercise
// openBCTable end to end through a real FileHandle.
func buildFileWithDataBlock(nid types.NID, dataBID types.BID, data []byte) []byte {
	nbtOffset := int64(format.HeaderSize)
	bbtOffset := nbtOffset + int64(format.PageSizeANSI)
	dataOffset := bbtOffset + int64(format.PageSizeANSI)

	nbtEntryBytes := make([]byte, format.NBTEntrySizeANSI)
	format.PutU32(nbtEntryBytes, 0, uint32(nid))
	format.PutU32(nbtEntryBytes, 4, uint32(dataBID))

	bbtEntryBytes := make([]byte, format.BBTEntrySizeANSI)
	format.PutU32(bbtEntryBytes, 0, uint32(dataBID))
	format.PutU32(bbtEntryBytes, 4, uint32(dataOffset))
	format.PutU16(bbtEntryBytes, 8, uint16(len(data)))
	format.PutU16(bbtEntryBytes, 10, 1)

	raw := make([]byte, dataOffset+int64(len(data)))
	copy(raw, newSyntheticANSIHeader(14, uint32(nbtOffset), uint32(bbtOffset)))
	copy(raw[nbtOffset:], buildSyntheticANSIPage(treeNBT, nbtEntryBytes))
	copy(raw[bbtOffset:], buildSyntheticANSIPage(treeBBT, bbtEntryBytes))
	copy(raw[dataOffset:], data)
	return raw
}

func TestOpenBCTableAndGet(t *testing.T) {
	const propID = uint16(0x1234)

	entry := buildBCEntry(propID, format.PtypInteger32, 42)
	bcHeader := buildBCHeader(hidFor(0, 2))
	page := buildHNPageMulti(hidFor(0, 1), [][]byte{bcHeader, entry})

	raw := buildFileWithDataBlock(types.NID(100), types.BID(200), page)

	fh, err := OpenBytes(raw, types.OpenOptions{})
	require.NoError(t, err)
	defer fh.Close()

	nbt, err := fh.lookupNBT(types.NID(100))
	require.NoError(t, err)

	bc, err := fh.openBCTable(nbt)
	require.NoError(t, err)

	v, ok, err := bc.Get(propID)
	require.NoError(t, err)
	require.True(t, ok)
	n, ok := v.AsInt64()
	require.True(t, ok)
	assert.EqualValues(t, 42, n)

	_, ok, err = bc.Get(0x9999)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestOpenBCTableBadBType(t *testing.T) {
	entry := buildBCEntry(0x1234, format.PtypInteger32, 42)
	bcHeader := buildBCHeader(hidFor(0, 2))
	bcHeader[format.BCOffBType] = 0x00
	page := buildHNPageMulti(hidFor(0, 1), [][]byte{bcHeader, entry})

	raw := buildFileWithDataBlock(types.NID(100), types.BID(200), page)
	fh, err := OpenBytes(raw, types.OpenOptions{})
	require.NoError(t, err)
	defer fh.Close()

	nbt, err := fh.lookupNBT(types.NID(100))
	require.NoError(t, err)

	_, err = fh.openBCTable(nbt)
	require.Error(t, err)
}
