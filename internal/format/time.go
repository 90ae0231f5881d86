package format

import "time"

// Windows FILETIME: a 64-bit count of 100-nanosecond intervals since
// 1601-01-01 00:00:00 UTC. filetimeEpochDeltaMs is the gap between that
// epoch and the Unix epoch, in milliseconds, per spec.md §4.2.
const (
	filetimeEpochDeltaMs int64 = 11644473600000
	filetimeUnitsPerMs   int64 = 10000
)

// FiletimeToTime converts a split {hi,lo} FILETIME pair into a time.Time.
// hi and lo are the high and low 32 bits of the 64-bit FILETIME value, as
// they are laid out on disk in a PtypTime property.
func FiletimeToTime(hi, lo uint32) time.Time {
	return FiletimeU64ToTime(uint64(hi)<<32 | uint64(lo))
}

// FiletimeU64ToTime converts a combined 64-bit FILETIME value.
func FiletimeU64ToTime(ft uint64) time.Time {
	ms := int64(ft)/filetimeUnitsPerMs - filetimeEpochDeltaMs
	return time.UnixMilli(ms).UTC()
}

// TimeToFiletime converts a time.Time back into a combined 64-bit FILETIME
// value (test/round-trip helper; pstkit never writes FILETIMEs to disk).
func TimeToFiletime(t time.Time) uint64 {
	ms := t.UTC().UnixMilli() + filetimeEpochDeltaMs
	return uint64(ms * filetimeUnitsPerMs)
}
