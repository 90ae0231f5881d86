package pst

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pstkit/pstkit/internal/format"
	"github.com/pstkit/pstkit/pkg/types"
)

// buildSyntheticANSIPageMulti generalizes buildSyntheticANSIPage (btree_test.go)
// to an arbitrary number of equal-width entries, needed once a synthetic file
// has more than one node.
func buildSyntheticANSIPageMulti(want treeKind, entries [][]byte) []byte {
	page := make([]byte, format.PageSizeANSI)
	entrySize := len(entries[0])
	for i, e := range entries {
		copy(page[i*entrySize:], e)
	}

	metaOff := format.PagePayloadSizeANSI
	page[metaOff+format.PageMetaOffCEnt] = byte(len(entries))
	page[metaOff+format.PageMetaOffCEntMax] = byte(len(entries))
	page[metaOff+format.PageMetaOffCbEnt] = byte(entrySize)
	page[metaOff+format.PageMetaOffCLevel] = 0 // leaf

	trailerOff := metaOff + format.PageMetaSizeANSI
	page[trailerOff+format.TrailerOffPtype] = byte(want)
	page[trailerOff+format.TrailerOffPtypeRepeat] = byte(want)
	return page
}

// syntheticNode is one {nid, dataBID, raw data block} triple contributed to
// a multi-node synthetic file.
type syntheticNode struct {
	nid  types.NID
	bid  types.BID
	data []byte
}

// buildMultiNodeANSIFile generalizes buildFileWithDataBlock (bc_test.go) to
// several nodes sharing one NBT/BBT root leaf page, enough to exercise the
// object factory (C12/C13) against a folder hierarchy instead of a single
// bare table.
func buildMultiNodeANSIFile(nodes []syntheticNode) []byte {
	nbtOffset := int64(format.HeaderSize)
	bbtOffset := nbtOffset + int64(format.PageSizeANSI)
	dataStart := bbtOffset + int64(format.PageSizeANSI)

	offsets := make([]int64, len(nodes))
	cursor := dataStart
	for i, n := range nodes {
		offsets[i] = cursor
		cursor += int64(len(n.data))
	}

	nbtEntries := make([][]byte, len(nodes))
	bbtEntries := make([][]byte, len(nodes))
	for i, n := range nodes {
		e := make([]byte, format.NBTEntrySizeANSI)
		format.PutU32(e, 0, uint32(n.nid))
		format.PutU32(e, 4, uint32(n.bid))
		nbtEntries[i] = e

		be := make([]byte, format.BBTEntrySizeANSI)
		format.PutU32(be, 0, uint32(n.bid))
		format.PutU32(be, 4, uint32(offsets[i]))
		format.PutU16(be, 8, uint16(len(n.data)))
		format.PutU16(be, 10, 1)
		bbtEntries[i] = be
	}

	raw := make([]byte, cursor)
	copy(raw, newSyntheticANSIHeader(14, uint32(nbtOffset), uint32(bbtOffset)))
	copy(raw[nbtOffset:], buildSyntheticANSIPageMulti(treeNBT, nbtEntries))
	copy(raw[bbtOffset:], buildSyntheticANSIPageMulti(treeBBT, bbtEntries))
	for i, n := range nodes {
		copy(raw[offsets[i]:], n.data)
	}
	return raw
}

// utf16LE encodes s as the UTF-16LE bytes a PtypString value resolves to.
func utf16LE(s string) []byte {
	out := make([]byte, 0, len(s)*2)
	for _, r := range s {
		out = append(out, byte(r), byte(r>>8))
	}
	return out
}

// buildFolderPC builds a folder/message BC table page holding exactly the
// string properties given in props, in order.
func buildFolderPC(props []struct {
	propID uint16
	text   string
}) []byte {
	allocs := make([][]byte, 0, 2+len(props))

	entries := make([]byte, format.BCEntrySize*len(props))
	for i, p := range props {
		off := i * format.BCEntrySize
		format.PutU16(entries, off+format.BCEntryOffPropID, p.propID)
		format.PutU16(entries, off+format.BCEntryOffType, uint16(format.PtypString))
		// string allocation i lands at 1-based index 3+i (1=header, 2=entries).
		format.PutU32(entries, off+format.BCEntryOffValue, hidFor(0, 3+i))
	}

	header := make([]byte, format.BCHeaderSize)
	header[format.BCOffBType] = format.BCBType
	format.PutU32(header, format.BCOffHidRoot, hidFor(0, 2))

	allocs = append(allocs, header, entries)
	for _, p := range props {
		allocs = append(allocs, utf16LE(p.text))
	}
	return buildHNPageMulti(hidFor(0, 1), allocs)
}

// buildContentsTC builds a bare hierarchy/contents table whose row ids are
// exactly childNIDs, in row-index order; no columns, since folder.NewCursor
// only needs RowIDs().
func buildContentsTC(childNIDs []types.NID) []byte {
	const rowSize = 1

	header := make([]byte, format.TCHeaderSize)
	header[format.TCOffBType] = format.TCBType
	header[format.TCOffCCols] = 0
	format.PutU16(header, format.TCOffRgib+4, 0)       // bitmapOff
	format.PutU16(header, format.TCOffRgib+6, rowSize) // rowSize
	format.PutU32(header, format.TCOffHidRowIdx, hidFor(0, 2))
	format.PutU32(header, format.TCOffHnidRows, hidFor(0, 3))

	rowIndex := make([]byte, 8*len(childNIDs))
	for i, nid := range childNIDs {
		format.PutU32(rowIndex, i*8, uint32(nid))
		format.PutU32(rowIndex, i*8+4, uint32(i))
	}
	rows := make([]byte, rowSize*len(childNIDs))

	return buildHNPageMulti(hidFor(0, 1), [][]byte{header, rowIndex, rows})
}

// TestOpenRootFolderAndWalkContents is an end-to-end C12/C13 integration
// test: a synthetic file with a root folder, its contents table, and one
// IPM.Note message, opened and walked entirely through OpenBytes/
// RootFolder/NewCursor/openItem rather than unit-testing any one layer in
// isolation.
func TestOpenRootFolderAndWalkContents(t *testing.T) {
	const (
		rootNID    = types.NID(format.NIDRootFolder)
		messageNID = types.NID(356)

		rootBID     = types.BID(400)
		contentsBID = types.BID(404)
		messageBID  = types.BID(408)
	)
	contentsNID := rootNID.WithType(uint8(format.NIDSubTypeContentsTable))

	rootPC := buildFolderPC([]struct {
		propID uint16
		text   string
	}{
		{format.PropDisplayName, "Inbox"},
	})
	contentsTC := buildContentsTC([]types.NID{messageNID})
	messagePC := buildFolderPC([]struct {
		propID uint16
		text   string
	}{
		{format.PropMessageClass, "IPM.Note"},
		{format.PropSubject, "hello"},
	})

	raw := buildMultiNodeANSIFile([]syntheticNode{
		{nid: rootNID, bid: rootBID, data: rootPC},
		{nid: contentsNID, bid: contentsBID, data: contentsTC},
		{nid: messageNID, bid: messageBID, data: messagePC},
	})

	fh, err := OpenBytes(raw, types.OpenOptions{})
	require.NoError(t, err)
	defer fh.Close()

	root, err := fh.RootFolder()
	require.NoError(t, err)
	assert.Equal(t, "Inbox", root.DisplayName())

	cursor, err := root.NewCursor()
	require.NoError(t, err)

	item, err := cursor.GetNextChild()
	require.NoError(t, err)
	require.NotNil(t, item)

	msg, ok := item.(*Message)
	require.True(t, ok, "expected a generic Message for class IPM.Note, got %T", item)
	assert.Equal(t, "hello", msg.Subject())

	next, err := cursor.GetNextChild()
	require.NoError(t, err)
	assert.Nil(t, next)
}

// TestOpenContactResolvesNamedEmailProperty exercises the C11/C12 seam the
// hardcoded-tag bug in Contact.Email1EmailAddress missed: the message's
// class routes it to the Contact typed view, and PidLidEmail1EmailAddress
// is only readable because the file's own Name-to-ID map (NID 97) resolves
// PSETID_Address/lid 0x8084 to this file's actual on-disk tag.
func TestOpenContactResolvesNamedEmailProperty(t *testing.T) {
	const (
		messageNID   = types.NID(356)
		messageBID   = types.BID(408)
		nameIDMapNID = types.NID(format.NIDNameToIDMap)
		nameIDMapBID = types.BID(412)

		resolvedTag = uint16(format.NameIDNumericBase) // propIndex 0
	)

	guidBlob, err := psetidAddress.MarshalBinary()
	require.NoError(t, err)

	entryBlob := make([]byte, format.NameIDEntrySize)
	format.PutU32(entryBlob, format.NameIDEntryOffID, lidEmail1EmailAddress)
	format.PutU16(entryBlob, format.NameIDEntryOffGUID, 3<<1) // first custom GUID, numeric
	format.PutU16(entryBlob, format.NameIDEntryOffIndex, 0)

	nameIDEntries := make([]byte, format.BCEntrySize*2)
	format.PutU16(nameIDEntries, 0*format.BCEntrySize+format.BCEntryOffPropID, propGUIDStream)
	format.PutU16(nameIDEntries, 0*format.BCEntrySize+format.BCEntryOffType, uint16(format.PtypBinary))
	format.PutU32(nameIDEntries, 0*format.BCEntrySize+format.BCEntryOffValue, hidFor(0, 3))
	format.PutU16(nameIDEntries, 1*format.BCEntrySize+format.BCEntryOffPropID, propEntryStream)
	format.PutU16(nameIDEntries, 1*format.BCEntrySize+format.BCEntryOffType, uint16(format.PtypBinary))
	format.PutU32(nameIDEntries, 1*format.BCEntrySize+format.BCEntryOffValue, hidFor(0, 4))

	nameIDHeader := make([]byte, format.BCHeaderSize)
	nameIDHeader[format.BCOffBType] = format.BCBType
	format.PutU32(nameIDHeader, format.BCOffHidRoot, hidFor(0, 2))

	nameIDPage := buildHNPageMulti(hidFor(0, 1), [][]byte{nameIDHeader, nameIDEntries, guidBlob, entryBlob})

	messageEntries := make([]byte, format.BCEntrySize*2)
	format.PutU16(messageEntries, 0*format.BCEntrySize+format.BCEntryOffPropID, format.PropMessageClass)
	format.PutU16(messageEntries, 0*format.BCEntrySize+format.BCEntryOffType, uint16(format.PtypString))
	format.PutU32(messageEntries, 0*format.BCEntrySize+format.BCEntryOffValue, hidFor(0, 3))
	format.PutU16(messageEntries, 1*format.BCEntrySize+format.BCEntryOffPropID, resolvedTag)
	format.PutU16(messageEntries, 1*format.BCEntrySize+format.BCEntryOffType, uint16(format.PtypString))
	format.PutU32(messageEntries, 1*format.BCEntrySize+format.BCEntryOffValue, hidFor(0, 4))

	messageHeader := make([]byte, format.BCHeaderSize)
	messageHeader[format.BCOffBType] = format.BCBType
	format.PutU32(messageHeader, format.BCOffHidRoot, hidFor(0, 2))

	messagePage := buildHNPageMulti(hidFor(0, 1), [][]byte{
		messageHeader, messageEntries, utf16LE("IPM.Contact"), utf16LE("alice@example.com"),
	})

	raw := buildMultiNodeANSIFile([]syntheticNode{
		{nid: nameIDMapNID, bid: nameIDMapBID, data: nameIDPage},
		{nid: messageNID, bid: messageBID, data: messagePage},
	})

	fh, err := OpenBytes(raw, types.OpenOptions{})
	require.NoError(t, err)
	defer fh.Close()

	item, err := fh.openItem(messageNID)
	require.NoError(t, err)

	contact, ok := item.(*Contact)
	require.True(t, ok, "expected a Contact for class IPM.Contact, got %T", item)
	assert.Equal(t, "alice@example.com", contact.Email1EmailAddress())
}
