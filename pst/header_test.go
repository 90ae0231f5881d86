package pst

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pstkit/pstkit/internal/format"
	"github.com/pstkit/pstkit/pkg/types"
)

// newSyntheticANSIHeader builds a minimal, otherwise-zeroed 564-byte ANSI
// header with a valid magic, variant, encryption byte, and NBT/BBT root
// offsets, for exercising parseHeader without a real sample file.
func newSyntheticANSIHeader(variantByte byte, nbtRoot, bbtRoot uint32) []byte {
	raw := make([]byte, format.HeaderSize)
	copy(raw[format.MagicOffset:], format.Magic)
	raw[format.VariantOffset] = variantByte
	raw[format.EncryptionOffsetANSI] = byte(format.EncryptNone)
	format.PutU32(raw, format.NBTRootOffsetANSI, nbtRoot)
	format.PutU32(raw, format.BBTRootOffsetANSI, bbtRoot)
	return raw
}

func TestParseHeaderValid(t *testing.T) {
	raw := newSyntheticANSIHeader(14, 0x1000, 0x2000)
	h, err := parseHeader(raw)
	require.NoError(t, err)
	assert.Equal(t, format.VariantANSI, h.variant)
	assert.False(t, h.unicode)
	assert.EqualValues(t, 0x1000, h.nbtRoot)
	assert.EqualValues(t, 0x2000, h.bbtRoot)
}

// TestParseHeaderVariantNormalization is scenario S5: a header byte of 15 is
// treated identically to 14.
func TestParseHeaderVariantNormalization(t *testing.T) {
	raw := newSyntheticANSIHeader(15, 0x1000, 0x2000)
	h, err := parseHeader(raw)
	require.NoError(t, err)
	assert.Equal(t, format.VariantANSI, h.variant)
}

func TestParseHeaderBadMagic(t *testing.T) {
	raw := newSyntheticANSIHeader(14, 0x1000, 0x2000)
	raw[0] = 'X'
	_, err := parseHeader(raw)
	require.Error(t, err)
	e, ok := types.AsError(err)
	require.True(t, ok)
	assert.Equal(t, types.ErrKindBadHeader, e.Kind)
}

func TestParseHeaderTruncated(t *testing.T) {
	_, err := parseHeader(make([]byte, 10))
	require.Error(t, err)
}

func TestParseHeaderUnsupportedVariant(t *testing.T) {
	raw := newSyntheticANSIHeader(99, 0, 0)
	_, err := parseHeader(raw)
	require.Error(t, err)
}

func TestParseHeaderHighEncryptionRejected(t *testing.T) {
	raw := newSyntheticANSIHeader(14, 0x1000, 0x2000)
	raw[format.EncryptionOffsetANSI] = byte(format.EncryptHigh)
	_, err := parseHeader(raw)
	require.Error(t, err)
}

func TestParseHeaderUnicodeRootWidths(t *testing.T) {
	raw := make([]byte, format.HeaderSize)
	copy(raw[format.MagicOffset:], format.Magic)
	raw[format.VariantOffset] = 23
	raw[format.EncryptionOffsetUnicode] = byte(format.EncryptCompressible)
	format.PutU64(raw, format.NBTRootOffsetUnicode, 0xDEADBEEF)
	format.PutU64(raw, format.BBTRootOffsetUnicode, 0xCAFEBABE)

	h, err := parseHeader(raw)
	require.NoError(t, err)
	assert.True(t, h.unicode)
	assert.False(t, h.fourK)
	assert.EqualValues(t, 0xDEADBEEF, h.nbtRoot)
	assert.EqualValues(t, 0xCAFEBABE, h.bbtRoot)
}
