package pst

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/pstkit/pstkit/internal/format"
	"github.com/pstkit/pstkit/pkg/types"
)

// Named property reference properties on the Name-to-ID map's PC table
// (spec.md §4.11).
const (
	propGUIDStream   uint16 = 0x0002
	propEntryStream  uint16 = 0x0003
	propStringStream uint16 = 0x0004
)

// numericKey identifies a named property by GUID index and numeric id.
type numericKey struct {
	guidIndex int
	propID    uint32
}

// NameToIDMap is the file's global table of named-property resolutions
// (C11), built once at open and immutable thereafter.
type NameToIDMap struct {
	guids      []uuid.UUID // index 0 unused; reserved indices per spec.md §4.11
	byNumeric  map[numericKey]uint16
	byString   map[string]uint16 // keyed by fmt("%d:%s", guidIndex, name)
	numericRev map[uint16]numericKey
	stringRev  map[uint16]string
}

// loadNameToIDMap parses NID 97's PC table into a NameToIDMap. A file
// lacking the name-to-id node (malformed or pathologically minimal), or
// whose node is unreadable, yields an empty, usable map rather than a fatal
// error; named-property accessors such as Contact.Email1EmailAddress then
// return their zero value.
func (fh *FileHandle) loadNameToIDMap() (*NameToIDMap, error) {
	nid := types.NID(format.NIDNameToIDMap)
	nbt, err := fh.lookupNBT(nid)
	if err != nil {
		logger().Warn("name-to-id map node not found, proceeding without named properties", "err", err)
		return newEmptyNameToIDMap(), nil
	}

	pc, err := fh.openBCTable(nbt)
	if err != nil {
		logger().Warn("name-to-id map PC table unreadable, proceeding without named properties", "err", err)
		return newEmptyNameToIDMap(), nil
	}

	guidBlob, _, _ := pc.Get(propGUIDStream)
	entryBlob, _, _ := pc.Get(propEntryStream)
	stringBlob, _, _ := pc.Get(propStringStream)

	guidBytes, _ := guidBlob.AsBinary()
	entryBytes, _ := entryBlob.AsBinary()
	stringBytes, _ := stringBlob.AsBinary()

	return parseNameToIDMap(guidBytes, entryBytes, stringBytes), nil
}

func newEmptyNameToIDMap() *NameToIDMap {
	return &NameToIDMap{
		byNumeric:  map[numericKey]uint16{},
		byString:   map[string]uint16{},
		numericRev: map[uint16]numericKey{},
		stringRev:  map[uint16]string{},
	}
}

// parseNameToIDMap implements spec.md §4.11's entry decoding rule literally.
func parseNameToIDMap(guidBytes, entryBytes, stringBytes []byte) *NameToIDMap {
	m := newEmptyNameToIDMap()

	guidCount := len(guidBytes) / format.NameIDGUIDSize
	m.guids = make([]uuid.UUID, guidCount+format.GUIDFirstCustomIndex)
	for i := 0; i < guidCount; i++ {
		g, err := uuid.FromBytes(guidBytes[i*format.NameIDGUIDSize : (i+1)*format.NameIDGUIDSize])
		if err == nil {
			m.guids[i+format.GUIDFirstCustomIndex] = g
		}
	}

	entryCount := len(entryBytes) / format.NameIDEntrySize
	for i := 0; i < entryCount; i++ {
		off := i * format.NameIDEntrySize
		id := format.ReadU32(entryBytes, off+format.NameIDEntryOffID)
		guidRef := format.ReadU16(entryBytes, off+format.NameIDEntryOffGUID)
		propIndex := format.ReadU16(entryBytes, off+format.NameIDEntryOffIndex)
		propID := uint16(format.NameIDNumericBase) + propIndex

		if guidRef&1 == 0 {
			guidIndex := int(guidRef >> 1)
			key := numericKey{guidIndex: resolveGUIDIndex(guidIndex), propID: id}
			m.byNumeric[key] = propID
			m.numericRev[propID] = key
			continue
		}

		name := readNameIDString(stringBytes, int(id))
		guidIndex := int(guidRef >> 1)
		strKey := stringMapKey(resolveGUIDIndex(guidIndex), name)
		m.byString[strKey] = propID
		m.stringRev[propID] = name
	}

	return m
}

// resolveGUIDIndex maps a raw guidRef>>1 value to the PS_MAPI/PS_PUBLIC_STRINGS
// reserved indices or a custom GUID table index, per spec.md §4.11.
func resolveGUIDIndex(ref int) int {
	switch ref {
	case 1:
		return format.GUIDIndexPSMAPI
	case 2:
		return format.GUIDIndexPSPublicStrings
	default:
		return ref - 3 + format.GUIDFirstCustomIndex
	}
}

// readNameIDString reads a {len(u32), bytes[len]} UTF-16LE name at byte
// offset off within the string stream.
func readNameIDString(stream []byte, off int) string {
	if off < 0 || off+4 > len(stream) {
		return ""
	}
	n := int(format.ReadU32(stream, off))
	start := off + 4
	if start+n > len(stream) {
		return ""
	}
	return decodeUTF16LE(stream[start : start+n])
}

func stringMapKey(guidIndex int, name string) string {
	return fmt.Sprintf("%d:%s", guidIndex, name)
}

// LookupNumeric resolves a numeric named property, per spec.md §4.11.
func (m *NameToIDMap) LookupNumeric(guidIndex int, propID uint32) (uint16, bool) {
	id, ok := m.byNumeric[numericKey{guidIndex: guidIndex, propID: propID}]
	return id, ok
}

// LookupString resolves a string named property, per spec.md §4.11.
func (m *NameToIDMap) LookupString(guidIndex int, name string) (uint16, bool) {
	id, ok := m.byString[stringMapKey(guidIndex, name)]
	return id, ok
}

// GUID returns the GUID registered at guidIndex, or the zero UUID if out of
// range (unknown GUIDs resolve to index -1 per spec.md §4.11).
func (m *NameToIDMap) GUID(guidIndex int) uuid.UUID {
	if guidIndex < 0 || guidIndex >= len(m.guids) {
		return uuid.UUID{}
	}
	return m.guids[guidIndex]
}

// GUIDIndex finds the custom GUID's registered index, the reverse of GUID.
// Named-property sets like PSETID_Address land at a file-specific custom
// index, so callers resolving a well-known property set must look it up by
// value rather than assume a fixed index.
func (m *NameToIDMap) GUIDIndex(guid uuid.UUID) (int, bool) {
	for i := format.GUIDFirstCustomIndex; i < len(m.guids); i++ {
		if m.guids[i] == guid {
			return i, true
		}
	}
	return 0, false
}
