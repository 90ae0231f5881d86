package pst

import (
	"github.com/pstkit/pstkit/internal/format"
	"github.com/pstkit/pstkit/pkg/types"
)

// Folder is a hierarchy node: a container for sub-folders and a contents
// table of messages (spec.md §4.12, §6).
type Folder struct {
	*item
}

// DisplayName is the folder's PidTagDisplayName property.
func (f *Folder) DisplayName() string { return f.getString(format.PropDisplayName) }

// SubFolders returns this folder's child folders, preferring the hierarchy
// table (NID|0x0D) and falling back to the NBT-fallback map filtered to
// folder-typed NIDs when the hierarchy table is absent or unreadable
// (spec.md §4.12, testable property 7).
func (f *Folder) SubFolders() ([]*Folder, error) {
	children, err := f.hierarchyChildren()
	if err != nil {
		children, err = f.fallbackFolderChildren()
		if err != nil {
			return nil, err
		}
	}

	out := make([]*Folder, 0, len(children))
	for _, nid := range children {
		it, err := newItem(f.fh, nid)
		if err != nil {
			logger().Warn("skipping unreadable sub-folder", "nid", nid, "err", err)
			continue
		}
		out = append(out, &Folder{item: it})
	}
	return out, nil
}

// hierarchyChildren reads the hierarchy table (TC at NID|0x0D) and returns
// every row's NID.
func (f *Folder) hierarchyChildren() ([]types.NID, error) {
	tableNID := f.nbt.nid.WithType(uint8(format.NIDTypeHierarchyTable))
	nbt, err := f.fh.lookupNBT(tableNID)
	if err != nil {
		return nil, err
	}
	tc, err := f.fh.openTCTable(nbt)
	if err != nil {
		return nil, err
	}
	rows := tc.RowIDs()
	out := make([]types.NID, len(rows))
	for i, rid := range rows {
		out[i] = types.NID(rid)
	}
	return out, nil
}

// fallbackFolderChildren consults the NBT-fallback parent map, filtering to
// folder-typed NIDs (spec.md §4.12: "filtering by NID type ∈ {2,3}").
func (f *Folder) fallbackFolderChildren() ([]types.NID, error) {
	all, err := f.fh.fallbackChildren(f.nbt.nid)
	if err != nil {
		return nil, err
	}
	out := make([]types.NID, 0, len(all))
	for _, nid := range all {
		if nid.Type() == uint8(format.NIDTypeNormalFolder) || nid.Type() == uint8(format.NIDTypeSearchFolder) {
			out = append(out, nid)
		}
	}
	return out, nil
}

// contentsRows opens this folder's contents table (TC at NID|0x0E).
func (f *Folder) contentsRows() (*tcTable, error) {
	tableNID := f.nbt.nid.WithType(uint8(format.NIDSubTypeContentsTable))
	nbt, err := f.fh.lookupNBT(tableNID)
	if err != nil {
		return nil, err
	}
	return f.fh.openTCTable(nbt)
}

// contentsCursor walks a folder's contents table, instantiating each row
// via the object factory as it is consumed.
type contentsCursor struct {
	folder *Folder
	tc     *tcTable
	rows   []uint32
	pos    int
}

// NewCursor returns a cursor over this folder's contents, suitable for
// repeated GetNextChild calls (spec.md §6's `getNextChild()`).
func (f *Folder) NewCursor() (*contentsCursor, error) {
	tc, err := f.contentsRows()
	if err != nil {
		return nil, err
	}
	return &contentsCursor{folder: f, tc: tc, rows: tc.RowIDs()}, nil
}

// GetNextChild advances the cursor and returns the next content item, or
// nil when exhausted.
func (c *contentsCursor) GetNextChild() (Item, error) {
	for c.pos < len(c.rows) {
		nid := types.NID(c.rows[c.pos])
		c.pos++
		obj, err := c.folder.fh.openItem(nid)
		if err != nil {
			logger().Warn("skipping unreadable content row", "nid", nid, "err", err)
			continue
		}
		return obj, nil
	}
	return nil, nil
}

// RootFolder opens the message store's root folder (NID 290, spec.md §3).
func (fh *FileHandle) RootFolder() (*Folder, error) {
	it, err := newItem(fh, types.NID(format.NIDRootFolder))
	if err != nil {
		return nil, err
	}
	return &Folder{item: it}, nil
}
