// Package format holds the on-disk byte layout constants for the PST/OST
// container format: header field offsets, page-trailer shapes, B-tree entry
// sizes, and property-type tags, plus the little/big-endian integer codec
// and FILETIME conversion helpers used throughout pstkit.
package format

// ---------------------------------------------------------------------------
// Header layout (ANSI 32-bit, Unicode 64-bit, and 2013 Unicode 4K-page
// variants). All offsets are absolute byte positions within the first 514
// bytes of the file, per [MS-PST] §2.2.2.6.
// ---------------------------------------------------------------------------

// HeaderSize is the number of leading bytes a header parse must have available.
const HeaderSize = 564

// Magic is the fixed 4-byte signature at offset 0.
var Magic = []byte{'!', 'B', 'D', 'N'}

const (
	MagicOffset = 0
	MagicSize   = 4

	// WVer (file format version) lives at offset 10; this is the "variant" byte.
	VariantOffset = 10

	// Encryption type (bCryptMethod) offsets differ between ANSI and Unicode headers.
	EncryptionOffsetANSI     = 461
	EncryptionOffsetUnicode  = 513

	// NBT/BBT root page offsets differ between ANSI and Unicode headers.
	NBTRootOffsetANSI    = 188
	BBTRootOffsetANSI    = 196
	NBTRootOffsetUnicode = 224
	BBTRootOffsetUnicode = 240
)

// Variant identifies the on-disk format generation.
type Variant uint8

const (
	VariantANSI          Variant = 14 // 32-bit, "ANSI"
	VariantUnicode        Variant = 23 // 64-bit, "Unicode"
	VariantUnicode4K      Variant = 36 // 64-bit, 4KiB pages, 2013+
	variantANSILegacy     Variant = 15 // normalized to VariantANSI
)

// NormalizeVariant maps the legacy ANSI sub-version (15) onto VariantANSI (14),
// per spec S5: "A file whose header byte 10 is 15 is treated identically to
// one with 14."
func NormalizeVariant(b byte) Variant {
	if b == byte(variantANSILegacy) {
		return VariantANSI
	}
	return Variant(b)
}

// EncryptionType is the header's bCryptMethod field.
type EncryptionType uint8

const (
	EncryptNone         EncryptionType = 0
	EncryptCompressible EncryptionType = 1
	EncryptHigh         EncryptionType = 2 // rejected: non-goal
)

// ---------------------------------------------------------------------------
// Node Id (NID) bit layout.
// ---------------------------------------------------------------------------

const (
	NIDTypeBits  = 5
	NIDTypeMask  = (1 << NIDTypeBits) - 1
	NIDIndexBits = 32 - NIDTypeBits
)

// Node type tag (low 5 bits of a NID).
type NIDType uint8

const (
	NIDTypeHT               NIDType = 0x0 // heap table
	NIDTypeInternal         NIDType = 0x1
	NIDTypeNormalFolder     NIDType = 0x2
	NIDTypeSearchFolder     NIDType = 0x3
	NIDTypeNormalMessage    NIDType = 0x4
	NIDTypeAttachment       NIDType = 0x5
	NIDTypeSearchUpdateQue  NIDType = 0x6
	NIDTypeSearchCriteria   NIDType = 0x7
	NIDTypeAssocMessage     NIDType = 0x8
	NIDTypeContentsTableIdx NIDType = 0xA
	NIDTypeInboxTableIdx    NIDType = 0xB
	NIDTypeOutgoingQueue    NIDType = 0xC
	NIDTypeHierarchyTable   NIDType = 0xD
	NIDTypeContentsTable    NIDType = 0xE
	NIDTypeAssocContents    NIDType = 0xF
	NIDTypeSearchContents   NIDType = 0x10
	NIDTypeAttachmentTable  NIDType = 0x11
	NIDTypeRecipientTable   NIDType = 0x12
	NIDTypeSearchTable      NIDType = 0x13
	NIDTypeLTP              NIDType = 0x1F
)

// Well-known NIDs, per spec.md §3.
const (
	NIDMessageStore    uint32 = 33
	NIDRootFolder      uint32 = 290
	NIDNameToIDMap     uint32 = 97
)

// NIDSubTypeContentsTable is the low-5-bit suffix used to locate a folder's
// contents table: the folder's own NID with type bits replaced by 0x0E.
const NIDSubTypeContentsTable = uint32(NIDTypeContentsTable)

// ---------------------------------------------------------------------------
// Block Id (BID) bit layout.
// ---------------------------------------------------------------------------

// BIDInternalBit is bit value 0x2: when set, the referenced block is an
// "internal" block (XBlock/XXBlock array of child BIDs) rather than a data
// leaf. See DESIGN.md "Open Question resolutions".
const BIDInternalBit = 0x2

// ---------------------------------------------------------------------------
// Page trailer layout. Two B-trees (NBT, BBT) share one page structure:
// a payload region followed by metadata/trailer fields. Sizes differ by
// variant; see DESIGN.md for the literal byte-shape reconstruction.
// ---------------------------------------------------------------------------

const (
	// Page marker ("bt" field of the trailer).
	PtypeNBT = 0x80
	PtypeBBT = 0x81

	// ANSI: 496-byte payload + {cEnt,cEntMax,cbEnt,cLevel}(4) + trailer(12) = 512.
	PagePayloadSizeANSI = 496
	PageMetaSizeANSI    = 4
	PageTrailerSizeANSI = 12
	PageSizeANSI        = PagePayloadSizeANSI + PageMetaSizeANSI + PageTrailerSizeANSI

	// Unicode: 488-byte payload + meta(4) + trailer(16) = 508... padded to 512.
	PagePayloadSizeUnicode = 488
	PageMetaSizeUnicode    = 4
	PageTrailerSizeUnicode = 16
	PageSizeUnicode        = PagePayloadSizeUnicode + PageMetaSizeUnicode + PageTrailerSizeUnicode + 4 // pad

	// 2013 Unicode: fixed 4KiB pages; metadata begins at offset 4096-24.
	PageSizeUnicode4K     = 4096
	PageMetaOffsetUnicode4K = PageSizeUnicode4K - 24
	// 2013 4K page meta widens cEnt/cEntMax to 2 bytes each plus cbEnt/cLevel
	// (1 byte each) and padding, followed by the 16-byte Unicode trailer.
	PageMetaSizeUnicode4K = 8

	// Page-meta field offsets, relative to the start of the metadata region.
	PageMetaOffCEnt    = 0
	PageMetaOffCEntMax = 1
	PageMetaOffCbEnt   = 2
	PageMetaOffCLevel  = 3

	// Page-meta field offsets for 2013 4K pages (2-byte cEnt/cEntMax).
	PageMeta4KOffCEnt    = 0
	PageMeta4KOffCEntMax = 2
	PageMeta4KOffCbEnt   = 4
	PageMeta4KOffCLevel  = 5

	// Trailer field offsets, relative to the start of the trailer region.
	TrailerOffPtype       = 0
	TrailerOffPtypeRepeat = 1
	TrailerOffSignature   = 2
	TrailerOffCRC_ANSI    = 4
	TrailerOffBID_ANSI    = 8
	TrailerOffCRC_Unicode = 4
	TrailerOffBID_Unicode = 8
)

// ---------------------------------------------------------------------------
// B-tree entry sizes (leaf and branch), by variant.
// ---------------------------------------------------------------------------

const (
	// NBT leaf entry: {NID, dataBID, subNodeBID, parentNID}.
	NBTEntrySizeANSI    = 16
	NBTEntrySizeUnicode = 32

	// BBT leaf entry: {BID, fileOffset, size(u16), refCount(u16)}.
	BBTEntrySizeANSI    = 12
	BBTEntrySizeUnicode = 24

	// Branch entry: {key, childPageOffset}.
	BranchEntrySizeANSI       = 12
	BranchEntrySizeUnicode    = 24
	BranchKeyOffsetANSI       = 0
	BranchChildOffsetANSI     = 8
	BranchKeyOffsetUnicode    = 0
	BranchChildOffsetUnicode  = 16

	// NBT leaf field offsets (ANSI: 4-byte fields; Unicode: 8-byte fields
	// with the low 4/8 bytes holding the value, per [MS-PST] padding rules).
	NBTOffNID      = 0
	NBTOffDataBID  = 4 // *widthOf(variant)... see width consts below
)

// FieldWidth returns the byte width of a NID/BID-sized field for the variant.
func FieldWidth(unicode bool) int {
	if unicode {
		return 8
	}
	return 4
}

// Data-leaf trailer: every allocated block is padded to a 64-byte boundary
// and followed by a 16-byte trailer {cb(u16), sig(u16), CRC(u32), BID(u64)}.
const (
	BlockAlignment    = 64
	BlockTrailerSize  = 16
	BlockTrailerOffCb  = 0
	BlockTrailerOffSig = 2
	BlockTrailerOffCRC = 4
	BlockTrailerOffBID = 8
)

// Align64 rounds n up to the next 64-byte boundary.
func Align64(n int) int {
	return (n + BlockAlignment - 1) &^ (BlockAlignment - 1)
}

// ---------------------------------------------------------------------------
// XBlock / XXBlock layout ([MS-PST] §2.2.2.8.3).
// ---------------------------------------------------------------------------

const (
	XBlockBType      = 0x01
	XBlockOffBType   = 0
	XBlockOffCLevel  = 1
	XBlockOffCEnt    = 2
	XBlockOffLcbTotal = 4
	XBlockHeaderSize = 8
)

// ---------------------------------------------------------------------------
// Sub-node descriptor map block layout (C10). A node's subNodeBID points at
// either a leaf block (SLBLOCK) of {localNid, dataBid, subSubBid} entries,
// or an intermediate block (SIBLOCK) of {nid, childBid} entries indexing
// further SLBLOCKs, mirroring the main B-tree's branch/leaf split but over
// a single node's private sub-node space.
// ---------------------------------------------------------------------------

const (
	SLBlockBType = 0x02
	SIBlockBType = 0x01

	SubNodeHeaderSize  = 8 // {btype(1), cLevel(1), cEnt(u16), padding(4)}
	SubNodeOffBType    = 0
	SubNodeOffCLevel   = 1
	SubNodeOffCEnt     = 2
)

// ---------------------------------------------------------------------------
// Heap-on-Node (HN) layout ([MS-PST] §2.3.1).
// ---------------------------------------------------------------------------

const (
	HNSigByte       = 0xEC
	HNOffIbHnpm     = 0 // u16, page-0 only: offset of the page map
	HNOffBSig       = 2 // page-0 only
	HNOffBClientSig = 3 // page-0 only
	HNOffHidUserRoot = 4 // u32, page-0 only
	HNOffRgbFillLevel = 8 // 4 bytes, page-0 only
	HNPage0HeaderSize = 12

	// Non-zero pages carry only {ibHnpm(u16), rgbFillLevel(4)}.
	HNOffIbHnpmN  = 0
	HNPageNHeaderSize = 6
)

// HID bit layout: index in bits [5:16), page number in bits [16:27).
const (
	HIDIndexShift = 5
	HIDIndexMask  = 0x7FF
	HIDPageShift  = 16
	HIDPageMask   = 0x7FF
)

// ---------------------------------------------------------------------------
// PC (BC) table ([MS-PST] §2.3.3).
// ---------------------------------------------------------------------------

const (
	BCBType       = 0xBC
	BCOffBType    = 0
	BCOffHidRoot  = 4
	BCHeaderSize  = 8

	// BTH leaf entry (property): {propTag(u16), propType(u16), dwValueHnid(u32)}.
	BCEntrySize      = 8
	BCEntryOffPropID = 0
	BCEntryOffType   = 2
	BCEntryOffValue  = 4

	// Low two bits of dwValueHnid disambiguate HID (0) vs NID-in-subnode (nonzero).
	HNIDDiscriminatorMask = 0x3
)

// ---------------------------------------------------------------------------
// TC table ([MS-PST] §2.3.4).
// ---------------------------------------------------------------------------

const (
	TCBType        = 0x7C
	TCOffBType     = 0
	TCOffCCols     = 1
	TCOffRgib      = 2 // 4x u16
	TCOffHidRowIdx = 10
	TCOffHnidRows  = 14
	TCOffHidIndex  = 18
	TCHeaderSize   = 22

	// Column descriptor: {propType(u16), propID(u16), ibData(u16), cbData(u8),
	// iBit(u8)} = 8 bytes.
	TCColumnDescSize = 8
	TCColOffPropType = 0
	TCColOffPropID   = 2
	TCColOffIbData   = 4
	TCColOffCbData   = 6
	TCColOffIBit     = 7
)

// rgib section indices: 4-byte, 2-byte, 1-byte, and presence-bit boundaries.
const (
	TCRgibCEB = 0 // end of 8-byte-aligned (actually 4-byte fixed) columns
	TCRgibCEB1 = 1
	TCRgibCEB2 = 2
	TCRgibCEB3 = 3
)

// ---------------------------------------------------------------------------
// Property type tags ([MS-OXCDATA] §2.11.1).
// ---------------------------------------------------------------------------

type PropType uint16

const (
	PtypInteger16      PropType = 0x0002
	PtypInteger32      PropType = 0x0003
	PtypFloating32     PropType = 0x0004
	PtypFloating64     PropType = 0x0005
	PtypCurrency       PropType = 0x0006
	PtypFloatingTime   PropType = 0x0007
	PtypErrorCode      PropType = 0x000A
	PtypBoolean        PropType = 0x000B
	PtypInteger64      PropType = 0x0014
	PtypString8        PropType = 0x001E
	PtypString         PropType = 0x001F
	PtypTime           PropType = 0x0040
	PtypGuid           PropType = 0x0048
	PtypServerID       PropType = 0x00FB
	PtypRestriction    PropType = 0x00FD
	PtypRuleAction     PropType = 0x00FE
	PtypBinary         PropType = 0x0102

	// Multi-value flag: OR'd onto the base scalar type.
	PtypMultiValueFlag PropType = 0x1000

	PtypMultiInteger16 PropType = PtypInteger16 | PtypMultiValueFlag
	PtypMultiInteger32 PropType = PtypInteger32 | PtypMultiValueFlag
	PtypMultiBinary    PropType = PtypBinary | PtypMultiValueFlag
	PtypMultiString8   PropType = PtypString8 | PtypMultiValueFlag
	PtypMultiString    PropType = PtypString | PtypMultiValueFlag
	PtypMultiTime      PropType = PtypTime | PtypMultiValueFlag
	PtypMultiGuid      PropType = PtypGuid | PtypMultiValueFlag
)

// WidthOf returns the fixed on-heap width of a scalar property type, or 0 if
// the type is variable-length (string/binary/multi-value/etc).
func WidthOf(t PropType) int {
	switch t {
	case PtypInteger16, PtypBoolean:
		return 2
	case PtypInteger32, PtypFloating32, PtypErrorCode:
		return 4
	case PtypFloating64, PtypCurrency, PtypFloatingTime, PtypInteger64, PtypTime:
		return 8
	case PtypGuid:
		return 16
	default:
		return 0
	}
}

// Well-known property tags used by the object layer.
const (
	PropMessageClass          uint16 = 0x001A
	PropSubject               uint16 = 0x0037
	PropBody                  uint16 = 0x1000
	PropBodyHTML              uint16 = 0x1013
	PropRTFCompressed         uint16 = 0x1009
	PropDisplayName           uint16 = 0x3001
	PropSenderName            uint16 = 0x0C1A
	PropTransportHeaders      uint16 = 0x007D
	PropAttachFilename        uint16 = 0x3704
	PropAttachLongFilename    uint16 = 0x3707
	PropAttachMimeTag         uint16 = 0x370E
	PropAttachSize            uint16 = 0x0E20
	PropAttachDataBin         uint16 = 0x3701
	PropCreationTime          uint16 = 0x3007
	PropInternetCPID          uint16 = 0x3FDE
	PropMessageCodepage       uint16 = 0x3FFD
)

// Name-to-ID map reserved GUID indices ([MS-OXPROPS]/[MS-PST] §2.4.7).
const (
	GUIDIndexPSMAPI           = 1
	GUIDIndexPSPublicStrings  = 2
	GUIDFirstCustomIndex      = 3
)

// Name-to-ID entry layout: {id(u32), guidRef(u16), propIndex(u16)} = 8 bytes.
const (
	NameIDEntrySize     = 8
	NameIDEntryOffID    = 0
	NameIDEntryOffGUID  = 4
	NameIDEntryOffIndex = 6

	NameIDGUIDSize = 16

	// Numeric property base, per spec.md §3/§4.11.
	NameIDNumericBase uint32 = 0x8000
)
