package pst

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pstkit/pstkit/internal/format"
)

// buildHNPage0 builds a single-page heap-on-node: page-0 header, one
// allocation holding payload, and a page map with two offsets (offset 0 is
// the payload's start, offset 1 its end).
func buildHNPage0(userRootHID uint32, payload []byte) []byte {
	ibHnpm := format.HNPage0HeaderSize + len(payload)
	// page map: cAlloc(u16) + reserved(u16) + offsets[cAlloc+1](u16 each)
	page := make([]byte, ibHnpm+4+4)

	page[format.HNOffBSig] = format.HNSigByte
	page[format.HNOffBClientSig] = format.BCBType
	format.PutU32(page, format.HNOffHidUserRoot, userRootHID)
	format.PutU16(page, format.HNOffIbHnpm, uint16(ibHnpm))

	copy(page[format.HNPage0HeaderSize:], payload)

	format.PutU16(page, ibHnpm, 1) // cAlloc = 1 -> one allocation
	format.PutU16(page, ibHnpm+4, uint16(format.HNPage0HeaderSize))
	format.PutU16(page, ibHnpm+6, uint16(format.HNPage0HeaderSize+len(payload)))
	return page
}

func hidFor(pageNum, index int) uint32 {
	return uint32(index<<format.HIDIndexShift) | uint32(pageNum<<format.HIDPageShift)
}

func TestParseHeapOnNodeAndResolve(t *testing.T) {
	payload := []byte("hello heap")
	hid := hidFor(0, 1)
	page := buildHNPage0(hid, payload)

	hn, err := parseHeapOnNode([][]byte{page})
	require.NoError(t, err)

	got, err := hn.resolve(hid)
	require.NoError(t, err)
	assert.Equal(t, payload, got)

	root, err := hn.userRootBytes()
	require.NoError(t, err)
	assert.Equal(t, payload, root)
}

func TestParseHeapOnNodeBadSignature(t *testing.T) {
	page := buildHNPage0(hidFor(0, 1), []byte("x"))
	page[format.HNOffBSig] = 0x00

	_, err := parseHeapOnNode([][]byte{page})
	require.Error(t, err)
}

func TestHeapOnNodeResolveOutOfRangePage(t *testing.T) {
	page := buildHNPage0(hidFor(0, 1), []byte("x"))
	hn, err := parseHeapOnNode([][]byte{page})
	require.NoError(t, err)

	_, err = hn.resolve(hidFor(5, 1))
	require.Error(t, err)
}

func TestHeapOnNodeResolveZeroIndex(t *testing.T) {
	page := buildHNPage0(hidFor(0, 1), []byte("x"))
	hn, err := parseHeapOnNode([][]byte{page})
	require.NoError(t, err)

	_, err = hn.resolve(hidFor(0, 0))
	require.Error(t, err)
}

func TestParseHeapOnNodeNoPages(t *testing.T) {
	_, err := parseHeapOnNode(nil)
	require.Error(t, err)
}
