package pst

import (
	"github.com/pstkit/pstkit/internal/buf"
	"github.com/pstkit/pstkit/internal/format"
	"github.com/pstkit/pstkit/pkg/types"
)

// heapOnNode is a parsed Heap-on-Node (C7): one page per data block of the
// owning node, each with its own allocation (page) map, plus the page-0
// user-root HID that every table format (BC, TC) anchors on.
type heapOnNode struct {
	pages    [][]byte // decoded bytes of each data block, one per HN page
	allocMap [][]int  // per page, rgibAlloc offsets (cAlloc+1 entries)
	userRoot uint32
}

// parseHeapOnNode parses the HN page header and page map of every page in
// pages (spec.md §4.7).
func parseHeapOnNode(pages [][]byte) (*heapOnNode, error) {
	if len(pages) == 0 {
		return nil, types.Wrapf(types.ErrKindCorruptNode, nil, "heap-on-node has no pages")
	}

	hn := &heapOnNode{pages: pages, allocMap: make([][]int, len(pages))}

	for i, p := range pages {
		headerSize := format.HNPageNHeaderSize
		if i == 0 {
			headerSize = format.HNPage0HeaderSize
		}
		if len(p) < headerSize {
			return nil, types.Wrapf(types.ErrKindCorruptNode, nil, "hn page %d header truncated", i)
		}
		if i == 0 {
			if p[format.HNOffBSig] != format.HNSigByte {
				return nil, types.Wrapf(types.ErrKindCorruptNode, nil,
					"hn page 0 bad signature 0x%02x", p[format.HNOffBSig])
			}
			hn.userRoot = format.ReadU32(p, format.HNOffHidUserRoot)
		}

		ibHnpm := int(format.ReadU16(p, format.HNOffIbHnpm))
		if ibHnpm < headerSize || ibHnpm+4 > len(p) {
			return nil, types.Wrapf(types.ErrKindCorruptNode, nil, "hn page %d bad page-map offset %d", i, ibHnpm)
		}
		mapBuf := p[ibHnpm:]
		cAlloc := int(format.ReadU16(mapBuf, 0))
		count := cAlloc + 1
		end, err := buf.CheckListBounds(len(mapBuf), 4, count, 2)
		if err != nil {
			return nil, types.Wrapf(types.ErrKindCorruptNode, err, "hn page %d allocation table out of bounds", i)
		}
		_ = end

		offsets := make([]int, count)
		for j := 0; j < count; j++ {
			offsets[j] = int(format.ReadU16(mapBuf, 4+j*2))
		}
		hn.allocMap[i] = offsets
	}

	return hn, nil
}

// resolve resolves a Heap Id to the byte slice it designates (spec.md §4.7).
func (hn *heapOnNode) resolve(hid uint32) ([]byte, error) {
	index := int((hid >> format.HIDIndexShift) & format.HIDIndexMask)
	pageNum := int((hid >> format.HIDPageShift) & format.HIDPageMask)

	if index == 0 {
		return nil, types.Wrapf(types.ErrKindCorruptNode, nil, "hid 0x%x has zero index", hid)
	}
	if pageNum >= len(hn.pages) {
		return nil, types.Wrapf(types.ErrKindNotFound, nil, "hid 0x%x references page %d, have %d", hid, pageNum, len(hn.pages))
	}
	offsets := hn.allocMap[pageNum]
	if index >= len(offsets) {
		return nil, types.Wrapf(types.ErrKindNotFound, nil, "hid 0x%x index %d out of range (page has %d allocations)", hid, index, len(offsets)-1)
	}

	start, end := offsets[index-1], offsets[index]
	page := hn.pages[pageNum]
	if start < 0 || end < start || end > len(page) {
		return nil, types.Wrapf(types.ErrKindCorruptNode, nil, "hid 0x%x allocation [%d:%d] invalid for page of %d bytes", hid, start, end, len(page))
	}
	return page[start:end], nil
}

// userRootBytes resolves the page-0 user-root HID, the anchor every BC/TC
// table header hangs off of.
func (hn *heapOnNode) userRootBytes() ([]byte, error) {
	return hn.resolve(hn.userRoot)
}

// openHeapOnNode opens the node's data stream and parses it as an HN.
func (fh *FileHandle) openHeapOnNode(dataBID types.BID) (*heapOnNode, error) {
	stream, err := fh.openNode(dataBID)
	if err != nil {
		return nil, err
	}
	pages, err := stream.Pages()
	if err != nil {
		return nil, err
	}
	return parseHeapOnNode(pages)
}
