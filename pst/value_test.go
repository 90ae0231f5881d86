package pst

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func utf16le(s string) []byte {
	var b []byte
	for _, r := range s {
		b = append(b, byte(r), byte(r>>8))
	}
	return b
}

func TestDecodeUTF16LE(t *testing.T) {
	b := append(utf16le("Pfromer"), 0, 0)
	assert.Equal(t, "Pfromer", decodeUTF16LE(b))
}

func TestDecodeUTF16LENoTerminator(t *testing.T) {
	b := utf16le("Ed")
	assert.Equal(t, "Ed", decodeUTF16LE(b))
}

func TestDecodeMultiString16(t *testing.T) {
	var b []byte
	b = append(b, utf16le("alpha")...)
	b = append(b, 0, 0)
	b = append(b, utf16le("beta")...)
	b = append(b, 0, 0)

	got := decodeMultiString16(b)
	assert.Equal(t, []string{"alpha", "beta"}, got)
}

func TestDecode8BitASCIIFastPath(t *testing.T) {
	assert.Equal(t, "hello", decode8Bit([]byte("hello"), 1252))
}

func TestIsASCII(t *testing.T) {
	assert.True(t, isASCII([]byte("hello")))
	assert.False(t, isASCII([]byte{0xFF, 0x01}))
}

func TestCodepageCharmapDefault(t *testing.T) {
	assert.NotNil(t, codepageCharmap(9999))
}
