package pst

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pstkit/pstkit/internal/format"
	"github.com/pstkit/pstkit/pkg/types"
)

// buildSyntheticANSIPage builds one 512-byte ANSI B-tree leaf page holding a
// single entry, with a valid trailer marker.
func buildSyntheticANSIPage(want treeKind, entry []byte) []byte {
	page := make([]byte, format.PageSizeANSI)
	copy(page, entry)

	metaOff := format.PagePayloadSizeANSI
	page[metaOff+format.PageMetaOffCEnt] = 1
	page[metaOff+format.PageMetaOffCEntMax] = 1
	page[metaOff+format.PageMetaOffCbEnt] = byte(len(entry))
	page[metaOff+format.PageMetaOffCLevel] = 0 // leaf

	trailerOff := metaOff + format.PageMetaSizeANSI
	page[trailerOff+format.TrailerOffPtype] = byte(want)
	page[trailerOff+format.TrailerOffPtypeRepeat] = byte(want)
	return page
}

// buildSyntheticANSIFile assembles a minimal header + NBT root page + BBT
// root page, with a single NBT entry {nid, dataBID} and matching BBT entry
// {dataBID, fileOffset}, enough to exercise lookupNBT/lookupBBT end to end.
func buildSyntheticANSIFile(nid types.NID, dataBID types.BID, dataOffset int64) []byte {
	nbtOffset := int64(format.HeaderSize)
	bbtOffset := nbtOffset + int64(format.PageSizeANSI)

	nbtEntryBytes := make([]byte, format.NBTEntrySizeANSI)
	format.PutU32(nbtEntryBytes, 0, uint32(nid))
	format.PutU32(nbtEntryBytes, 4, uint32(dataBID))

	bbtEntryBytes := make([]byte, format.BBTEntrySizeANSI)
	format.PutU32(bbtEntryBytes, 0, uint32(dataBID))
	format.PutU32(bbtEntryBytes, 4, uint32(dataOffset))
	format.PutU16(bbtEntryBytes, 8, 16)
	format.PutU16(bbtEntryBytes, 10, 1)

	raw := make([]byte, bbtOffset+int64(format.PageSizeANSI))
	copy(raw, newSyntheticANSIHeader(14, uint32(nbtOffset), uint32(bbtOffset)))
	copy(raw[nbtOffset:], buildSyntheticANSIPage(treeNBT, nbtEntryBytes))
	copy(raw[bbtOffset:], buildSyntheticANSIPage(treeBBT, bbtEntryBytes))
	return raw
}

func TestBTreeLookupRoundTrip(t *testing.T) {
	const (
		nid     = types.NID(33)
		dataBID = types.BID(100)
		offset  = int64(2048)
	)
	raw := buildSyntheticANSIFile(nid, dataBID, offset)

	fh, err := OpenBytes(raw, types.OpenOptions{})
	require.NoError(t, err)
	defer fh.Close()

	nbt, err := fh.lookupNBT(nid)
	require.NoError(t, err)
	assert.Equal(t, dataBID, nbt.dataBID)

	bbt, err := fh.lookupBBT(dataBID)
	require.NoError(t, err)
	assert.Equal(t, offset, bbt.fileOffset)
	assert.EqualValues(t, 16, bbt.size)
}

func TestBTreeLookupMiss(t *testing.T) {
	raw := buildSyntheticANSIFile(types.NID(33), types.BID(100), 2048)
	fh, err := OpenBytes(raw, types.OpenOptions{})
	require.NoError(t, err)
	defer fh.Close()

	_, err = fh.lookupNBT(types.NID(9999))
	require.Error(t, err)
	e, ok := types.AsError(err)
	require.True(t, ok)
	assert.Equal(t, types.ErrKindNotFound, e.Kind)
}
