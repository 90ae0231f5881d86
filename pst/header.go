package pst

import (
	"bytes"

	"github.com/pstkit/pstkit/internal/format"
	"github.com/pstkit/pstkit/pkg/types"
)

// header is the parsed and validated file header (C4).
type header struct {
	variant    format.Variant
	unicode    bool
	fourK      bool
	encryption format.EncryptionType
	nbtRoot    int64
	bbtRoot    int64
}

// parseHeader validates the magic and derives the variant, encryption mode,
// and B-tree root offsets from the first bytes of the file, per spec.md §4.4.
func parseHeader(raw []byte) (header, error) {
	if len(raw) < format.HeaderSize {
		return header{}, types.Wrapf(types.ErrKindBadHeader, nil,
			"header truncated: have %d bytes, need %d", len(raw), format.HeaderSize)
	}
	if !bytes.Equal(raw[format.MagicOffset:format.MagicOffset+format.MagicSize], format.Magic) {
		return header{}, types.Wrapf(types.ErrKindBadHeader, nil,
			"bad magic %q", raw[format.MagicOffset:format.MagicOffset+format.MagicSize])
	}

	variant := format.NormalizeVariant(raw[format.VariantOffset])
	var h header
	h.variant = variant

	switch variant {
	case format.VariantANSI:
		h.unicode = false
		h.fourK = false
	case format.VariantUnicode:
		h.unicode = true
		h.fourK = false
	case format.VariantUnicode4K:
		h.unicode = true
		h.fourK = true
	default:
		return header{}, types.Wrapf(types.ErrKindUnsupportedVariant, nil,
			"unsupported variant byte %d at offset %d", raw[format.VariantOffset], format.VariantOffset)
	}

	encOff := format.EncryptionOffsetANSI
	nbtOff := format.NBTRootOffsetANSI
	bbtOff := format.BBTRootOffsetANSI
	rootWidth := 4
	if h.unicode {
		encOff = format.EncryptionOffsetUnicode
		nbtOff = format.NBTRootOffsetUnicode
		bbtOff = format.BBTRootOffsetUnicode
		rootWidth = 8
	}

	h.encryption = format.EncryptionType(raw[encOff])
	if h.encryption == format.EncryptHigh {
		return header{}, types.Wrapf(types.ErrKindEncrypted, nil,
			"high-encryption variant is not supported (non-goal)")
	}
	if h.encryption != format.EncryptNone && h.encryption != format.EncryptCompressible {
		return header{}, types.Wrapf(types.ErrKindEncrypted, nil,
			"unrecognized encryption type %d", h.encryption)
	}

	if rootWidth == 8 {
		h.nbtRoot = int64(format.ReadU64(raw, nbtOff))
		h.bbtRoot = int64(format.ReadU64(raw, bbtOff))
	} else {
		h.nbtRoot = int64(format.ReadU32(raw, nbtOff))
		h.bbtRoot = int64(format.ReadU32(raw, bbtOff))
	}

	return h, nil
}
