package pst

import (
	"github.com/pstkit/pstkit/internal/buf"
	"github.com/pstkit/pstkit/internal/format"
	"github.com/pstkit/pstkit/pkg/types"
)

// treeKind selects which of the two B-trees a page belongs to, purely for
// trailer-marker validation and error messages; the entry layout is
// otherwise driven by isNBT below.
type treeKind int

const (
	treeNBT treeKind = format.PtypeNBT
	treeBBT treeKind = format.PtypeBBT
)

// btpage is a parsed, bounds-checked view over one B-tree page (C5).
type btpage struct {
	buf          []byte
	unicode      bool
	fourK        bool
	count        int
	entrySize    int
	levelsToLeaf int
}

// parseBTPage validates the page trailer marker and metadata, and slices out
// the entry array. leafEntrySize and branchEntrySize are the entry widths
// appropriate to the tree and variant (see entrySizes); the page's level
// picks which one applies.
func parseBTPage(raw []byte, unicode, fourK bool, want treeKind, leafEntrySize, branchEntrySize int) (*btpage, error) {
	pageSize, metaOff, metaSize, trailerSize := pageLayout(unicode, fourK)
	if len(raw) < pageSize {
		return nil, types.Wrapf(types.ErrKindCorruptNode, nil,
			"page truncated: have %d bytes, need %d", len(raw), pageSize)
	}

	var count, cEntMax, cLevel int
	var ptype byte
	if fourK {
		count = int(format.ReadU16(raw, metaOff+format.PageMeta4KOffCEnt))
		cEntMax = int(format.ReadU16(raw, metaOff+format.PageMeta4KOffCEntMax))
		cLevel = int(raw[metaOff+format.PageMeta4KOffCLevel])
	} else {
		count = int(raw[metaOff+format.PageMetaOffCEnt])
		cEntMax = int(raw[metaOff+format.PageMetaOffCEntMax])
		cLevel = int(raw[metaOff+format.PageMetaOffCLevel])
	}
	_ = cEntMax

	trailerOff := metaOff + metaSize
	ptype = raw[trailerOff+format.TrailerOffPtype]
	if ptype != byte(want) {
		return nil, types.Wrapf(types.ErrKindCorruptNode, nil,
			"bad page marker: got 0x%02x, want 0x%02x", ptype, byte(want))
	}
	_ = trailerSize

	entrySize := leafEntrySize
	if cLevel > 0 {
		entrySize = branchEntrySize
	}
	if _, err := buf.CheckListBounds(metaOff, 0, count, entrySize); err != nil {
		return nil, types.Wrapf(types.ErrKindCorruptNode, err, "page entry array out of bounds")
	}

	return &btpage{
		buf:          raw[:metaOff],
		unicode:      unicode,
		fourK:        fourK,
		count:        count,
		entrySize:    entrySize,
		levelsToLeaf: cLevel,
	}, nil
}

// pageLayout returns {pageSize, metaOffset, metaSize, trailerSize} for a
// variant, per the DESIGN.md byte-shape reconstruction.
func pageLayout(unicode, fourK bool) (pageSize, metaOff, metaSize, trailerSize int) {
	switch {
	case fourK:
		return format.PageSizeUnicode4K, format.PageMetaOffsetUnicode4K, format.PageMetaSizeUnicode4K, format.PageTrailerSizeUnicode
	case unicode:
		metaOff = format.PagePayloadSizeUnicode
		return format.PageSizeUnicode, metaOff, format.PageMetaSizeUnicode, format.PageTrailerSizeUnicode
	default:
		metaOff = format.PagePayloadSizeANSI
		return format.PageSizeANSI, metaOff, format.PageMetaSizeANSI, format.PageTrailerSizeANSI
	}
}

func (p *btpage) entry(i int) []byte {
	off := i * p.entrySize
	return p.buf[off : off+p.entrySize]
}

// branchKey reads the key field of a branch entry (NID for NBT, BID for
// BBT), widened to a uint64: 4 bytes wide in ANSI files, 8 in Unicode.
func branchKey(e []byte, unicode bool) uint64 {
	if unicode {
		return format.ReadU64(e, format.BranchKeyOffsetUnicode)
	}
	return uint64(format.ReadU32(e, format.BranchKeyOffsetANSI))
}

// branchChild reads the child-page file offset of a branch entry.
func branchChild(e []byte, unicode bool) int64 {
	if unicode {
		return int64(format.ReadU64(e, format.BranchChildOffsetUnicode))
	}
	return int64(format.ReadU32(e, format.BranchChildOffsetANSI))
}

// leafKey reads the key field of a leaf entry (NID for NBT, BID for BBT),
// widened to a uint64.
func leafKey(e []byte, unicode bool) uint64 {
	if unicode {
		return format.ReadU64(e, 0)
	}
	return uint64(format.ReadU32(e, 0))
}

// entrySizes returns the {leaf, branch} entry sizes for the requested tree
// and variant, per spec.md §4.5.
func entrySizes(isNBT, unicode bool) (leaf, branch int) {
	branch = format.BranchEntrySizeANSI
	if unicode {
		branch = format.BranchEntrySizeUnicode
	}
	if isNBT {
		if unicode {
			return format.NBTEntrySizeUnicode, branch
		}
		return format.NBTEntrySizeANSI, branch
	}
	if unicode {
		return format.BBTEntrySizeUnicode, branch
	}
	return format.BBTEntrySizeANSI, branch
}

// readBTPageAt reads and parses the page at the given absolute file offset.
func (fh *FileHandle) readBTPageAt(offset int64, isNBT bool) (*btpage, error) {
	pageSize, _, _, _ := pageLayout(fh.header.unicode, fh.header.fourK)
	raw, err := fh.src.ReadAt(offset, pageSize)
	if err != nil {
		return nil, types.Wrapf(types.ErrKindIO, err, "read page at offset %d", offset)
	}
	want := treeBBT
	if isNBT {
		want = treeNBT
	}
	leaf, branch := entrySizes(isNBT, fh.header.unicode)
	return parseBTPage(raw, fh.header.unicode, fh.header.fourK, want, leaf, branch)
}

// btreeLookup implements spec.md §4.5's findEntry algorithm: descend from
// root to leaf, choosing at each branch level the last entry whose key is
// <= target, then linear-scan the leaf for an exact match.
func (fh *FileHandle) btreeLookup(rootOffset int64, isNBT bool, key uint64) ([]byte, error) {
	offset := rootOffset
	for {
		page, err := fh.readBTPageAt(offset, isNBT)
		if err != nil {
			return nil, err
		}
		if page.levelsToLeaf == 0 {
			for i := 0; i < page.count; i++ {
				e := page.entry(i)
				if leafKey(e, fh.header.unicode) == key {
					return e, nil
				}
			}
			return nil, types.Wrapf(types.ErrKindNotFound, nil, "key 0x%x not found in leaf page", key)
		}

		// Descend into the last entry whose key <= target; if none
		// qualifies, descend into the first entry (smallest subtree).
		chosen := -1
		for i := 0; i < page.count; i++ {
			e := page.entry(i)
			if branchKey(e, fh.header.unicode) <= key {
				chosen = i
			}
		}
		if chosen == -1 {
			chosen = 0
		}
		if page.count == 0 {
			return nil, types.Wrapf(types.ErrKindCorruptNode, nil, "empty branch page at offset %d", offset)
		}
		offset = branchChild(page.entry(chosen), fh.header.unicode)
	}
}

// btreeWalkLeaves visits every leaf entry in the tree rooted at rootOffset,
// in page order, calling fn for each raw entry slice. Used both for direct
// full-table scans and to build the NBT parent->children fallback map.
func (fh *FileHandle) btreeWalkLeaves(rootOffset int64, isNBT bool, fn func(entry []byte) error) error {
	var walk func(offset int64) error
	walk = func(offset int64) error {
		page, err := fh.readBTPageAt(offset, isNBT)
		if err != nil {
			return err
		}
		if page.levelsToLeaf == 0 {
			for i := 0; i < page.count; i++ {
				if err := fn(page.entry(i)); err != nil {
					return err
				}
			}
			return nil
		}
		for i := 0; i < page.count; i++ {
			if err := walk(branchChild(page.entry(i), fh.header.unicode)); err != nil {
				return err
			}
		}
		return nil
	}
	return walk(rootOffset)
}

// nbtEntry is a decoded NBT leaf entry (spec.md §3).
type nbtEntry struct {
	nid       types.NID
	dataBID   types.BID
	subNodeBID types.BID
	parentNID types.NID
}

func decodeNBTEntry(e []byte, unicode bool) nbtEntry {
	w := format.FieldWidth(unicode)
	read := func(off int) uint64 {
		if unicode {
			return format.ReadU64(e, off)
		}
		return uint64(format.ReadU32(e, off))
	}
	return nbtEntry{
		nid:        types.NID(read(0 * w)),
		dataBID:    types.BID(read(1 * w)),
		subNodeBID: types.BID(read(2 * w)),
		parentNID:  types.NID(read(3 * w)),
	}
}

// bbtEntry is a decoded BBT leaf entry (spec.md §3).
type bbtEntry struct {
	bid        types.BID
	fileOffset int64
	size       uint16
	refCount   uint16
}

func decodeBBTEntry(e []byte, unicode bool) bbtEntry {
	if unicode {
		return bbtEntry{
			bid:        types.BID(format.ReadU64(e, 0)),
			fileOffset: int64(format.ReadU64(e, 8)),
			size:       format.ReadU16(e, 16),
			refCount:   format.ReadU16(e, 18),
		}
	}
	return bbtEntry{
		bid:        types.BID(format.ReadU32(e, 0)),
		fileOffset: int64(format.ReadU32(e, 4)),
		size:       format.ReadU16(e, 8),
		refCount:   format.ReadU16(e, 10),
	}
}

// lookupNBT returns the NBT entry for nid.
func (fh *FileHandle) lookupNBT(nid types.NID) (nbtEntry, error) {
	e, err := fh.btreeLookup(fh.header.nbtRoot, true, uint64(nid))
	if err != nil {
		return nbtEntry{}, types.Wrapf(types.ErrKindNotFound, err, "nbt lookup nid=%s", nid)
	}
	return decodeNBTEntry(e, fh.header.unicode), nil
}

// lookupBBT returns the BBT entry for bid.
func (fh *FileHandle) lookupBBT(bid types.BID) (bbtEntry, error) {
	e, err := fh.btreeLookup(fh.header.bbtRoot, false, uint64(bid))
	if err != nil {
		return bbtEntry{}, types.Wrapf(types.ErrKindNotFound, err, "bbt lookup bid=%s", bid)
	}
	return decodeBBTEntry(e, fh.header.unicode), nil
}

// buildFallbackMap performs a full NBT traversal, building the
// parentNid->childNid[] map used when a folder's hierarchy table is broken
// (spec.md §4.5, §9). Duplicate entries and self-parent cycles are skipped
// with a logged diagnostic, per spec.md §4.13.
func (fh *FileHandle) buildFallbackMap() (map[types.NID][]types.NID, error) {
	m := make(map[types.NID][]types.NID)
	seen := make(map[types.NID]bool)
	err := fh.btreeWalkLeaves(fh.header.nbtRoot, true, func(raw []byte) error {
		e := decodeNBTEntry(raw, fh.header.unicode)
		if e.nid == e.parentNID {
			logger().Warn("skipping self-parented NBT entry", "nid", e.nid)
			return nil
		}
		if seen[e.nid] {
			logger().Warn("skipping duplicate NBT entry", "nid", e.nid)
			return nil
		}
		seen[e.nid] = true
		m[e.parentNID] = append(m[e.parentNID], e.nid)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}
