package pst

import (
	"time"
	"unicode/utf16"

	"golang.org/x/text/encoding/charmap"

	"github.com/pstkit/pstkit/internal/format"
)

// PropValue is a decoded property value, tagged with its on-disk type. It is
// the "Item" referred to by spec.md §4.8/§9's `get(propertyId) -> Item?`.
type PropValue struct {
	Type format.PropType
	val  any
}

func (v PropValue) AsString() (string, bool)    { s, ok := v.val.(string); return s, ok }
func (v PropValue) AsInt64() (int64, bool)      { i, ok := v.val.(int64); return i, ok }
func (v PropValue) AsBool() (bool, bool)        { b, ok := v.val.(bool); return b, ok }
func (v PropValue) AsTime() (time.Time, bool)   { t, ok := v.val.(time.Time); return t, ok }
func (v PropValue) AsBinary() ([]byte, bool)    { b, ok := v.val.([]byte); return b, ok }
func (v PropValue) AsMulti() ([][]byte, bool)   { m, ok := v.val.([][]byte); return m, ok }

// decodeUTF16LE decodes a UTF-16LE byte slice (PtypString, 0x001F) to a Go
// string, stripping a trailing null terminator if present.
func decodeUTF16LE(b []byte) string {
	if len(b) >= 2 && b[len(b)-2] == 0 && b[len(b)-1] == 0 {
		b = b[:len(b)-2]
	}
	units := make([]uint16, 0, len(b)/2)
	for i := 0; i+1 < len(b); i += 2 {
		units = append(units, format.ReadU16(b, i))
	}
	return string(utf16.Decode(units))
}

// decodeMultiString16 splits a double-null-terminated UTF-16LE multi-string
// blob (PtypMultiString) into its component strings.
func decodeMultiString16(b []byte) []string {
	var out []string
	start := 0
	for i := 0; i+1 < len(b); i += 2 {
		if b[i] == 0 && b[i+1] == 0 {
			if i > start {
				out = append(out, decodeUTF16LE(b[start:i]))
			}
			start = i + 2
		}
	}
	if start < len(b) {
		out = append(out, decodeUTF16LE(b[start:]))
	}
	return out
}

// codepageCharmap maps a Windows codepage identifier (as stored in property
// 0x3FDE/0x3FFD) to the matching charmap.Charmap, defaulting to Windows-1252
// per spec.md §4.8.
func codepageCharmap(cpid uint32) *charmap.Charmap {
	switch cpid {
	case 1250:
		return charmap.Windows1250
	case 1251:
		return charmap.Windows1251
	case 1253:
		return charmap.Windows1253
	case 1254:
		return charmap.Windows1254
	case 1257:
		return charmap.Windows1257
	case 850:
		return charmap.CodePage850
	case 437:
		return charmap.CodePage437
	case 1252:
		fallthrough
	default:
		return charmap.Windows1252
	}
}

// decode8Bit decodes an 8-bit codepage string (PtypString8, 0x001E) using
// the given codepage, with an ASCII fast path mirroring the teacher's
// internal/reader/value.go DecodeValueName.
func decode8Bit(b []byte, cpid uint32) string {
	if isASCII(b) {
		return string(b)
	}
	out, err := codepageCharmap(cpid).NewDecoder().Bytes(b)
	if err != nil {
		return string(b)
	}
	return string(out)
}

func isASCII(b []byte) bool {
	for _, c := range b {
		if c >= 0x80 {
			return false
		}
	}
	return true
}
