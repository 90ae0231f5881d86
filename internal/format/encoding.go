package format

import "encoding/binary"

// Little/big-endian integer decoding. Benchmarked against unsafe-pointer
// casts during development of the hive-reading ancestor of this package;
// encoding/binary was found to already compile down to the same load-and-byte-
// swap instructions on every supported platform, so there is no reason to
// bypass it.

func ReadU16(buf []byte, off int) uint16 {
	return binary.LittleEndian.Uint16(buf[off : off+2])
}

func ReadU32(buf []byte, off int) uint32 {
	return binary.LittleEndian.Uint32(buf[off : off+4])
}

func ReadU64(buf []byte, off int) uint64 {
	return binary.LittleEndian.Uint64(buf[off : off+8])
}

func ReadI32(buf []byte, off int) int32 {
	return int32(ReadU32(buf, off))
}

func ReadU16BE(buf []byte, off int) uint16 {
	return binary.BigEndian.Uint16(buf[off : off+2])
}

func ReadU32BE(buf []byte, off int) uint32 {
	return binary.BigEndian.Uint32(buf[off : off+4])
}

func PutU16(buf []byte, off int, v uint16) {
	binary.LittleEndian.PutUint16(buf[off:off+2], v)
}

func PutU32(buf []byte, off int, v uint32) {
	binary.LittleEndian.PutUint32(buf[off:off+4], v)
}

func PutU64(buf []byte, off int, v uint64) {
	binary.LittleEndian.PutUint64(buf[off:off+8], v)
}
