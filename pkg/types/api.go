// Package types holds the public data types and error taxonomy shared across
// pstkit: node/block handles, the typed error used everywhere instead of bare
// fmt.Errorf, and the options accepted by Open/OpenBytes.
package types

import (
	"errors"
	"fmt"
)

// ErrKind enumerates the error taxonomy from spec.md §6.
type ErrKind int

const (
	ErrKindUnknown ErrKind = iota
	ErrKindBadHeader
	ErrKindUnsupportedVariant
	ErrKindEncrypted
	ErrKindNotFound
	ErrKindCorruptNode
	ErrKindExternalRefMissing
	ErrKindIO
)

func (k ErrKind) String() string {
	switch k {
	case ErrKindBadHeader:
		return "BadHeader"
	case ErrKindUnsupportedVariant:
		return "UnsupportedVariant"
	case ErrKindEncrypted:
		return "Encrypted"
	case ErrKindNotFound:
		return "NotFound"
	case ErrKindCorruptNode:
		return "CorruptNode"
	case ErrKindExternalRefMissing:
		return "ExternalRefMissing"
	case ErrKindIO:
		return "IoError"
	default:
		return "Unknown"
	}
}

// Error is the typed error pstkit returns from every fallible operation.
// Msg describes the failure and names the offending nid, bid or file offset
// where the failing reader has one at hand; several structural errors (heap
// page, sub-node block and B-tree page-marker errors) carry none of them.
// Err, when present, is the wrapped lower-level cause.
type Error struct {
	Kind ErrKind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("pstkit: %s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("pstkit: %s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

// Is allows errors.Is(err, ErrNotFound) to match any *Error of the same Kind,
// regardless of Msg/Err, mirroring the teacher's sentinel-by-Kind comparison.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// Sentinel errors for errors.Is checks without constructing a Kind by hand.
var (
	ErrBadHeader          = &Error{Kind: ErrKindBadHeader, Msg: "invalid PST/OST header"}
	ErrUnsupportedVariant = &Error{Kind: ErrKindUnsupportedVariant, Msg: "unsupported file variant"}
	ErrEncrypted          = &Error{Kind: ErrKindEncrypted, Msg: "unsupported encryption mode"}
	ErrNotFound           = &Error{Kind: ErrKindNotFound, Msg: "not found"}
	ErrCorruptNode        = &Error{Kind: ErrKindCorruptNode, Msg: "corrupt node"}
	ErrExternalRefMissing = &Error{Kind: ErrKindExternalRefMissing, Msg: "external reference missing"}
	ErrIO                 = &Error{Kind: ErrKindIO, Msg: "io error"}
)

// NewError constructs an *Error with the given kind, message, and cause.
func NewError(kind ErrKind, msg string, cause error) *Error {
	return &Error{Kind: kind, Msg: msg, Err: cause}
}

// Wrapf builds an *Error with a formatted message.
func Wrapf(kind ErrKind, cause error, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...), Err: cause}
}

// AsError reports whether err is (or wraps) a *Error, returning it.
func AsError(err error) (*Error, bool) {
	var e *Error
	ok := errors.As(err, &e)
	return e, ok
}

// NID is a 32-bit node identifier (spec.md §3).
type NID uint32

// Type returns the low-5-bit node type tag.
func (n NID) Type() uint8 { return uint8(n) & 0x1F }

// Index returns the high-27-bit instance value.
func (n NID) Index() uint32 { return uint32(n) >> 5 }

// WithType returns a NID with the same Index but a different type tag, used
// to locate a folder's hierarchy/contents/search tables which share the
// folder's instance number under different type suffixes.
func (n NID) WithType(t uint8) NID {
	return NID(n.Index()<<5 | uint32(t&0x1F))
}

func (n NID) String() string { return fmt.Sprintf("NID(0x%08X)", uint32(n)) }

// BID is a 32- or 64-bit block identifier (spec.md §3). Always stored widened
// to 64 bits; ANSI files only ever populate the low 32.
type BID uint64

// IsInternal reports whether this BID designates an XBlock/XXBlock array
// rather than a data leaf (bit value 0x2; see DESIGN.md Open Questions).
func (b BID) IsInternal() bool { return uint64(b)&0x2 != 0 }

func (b BID) String() string { return fmt.Sprintf("BID(0x%X)", uint64(b)) }

// OpenOptions configures Open/OpenBytes (SPEC_FULL.md §4.16).
type OpenOptions struct {
	// ZeroCopy wraps the source in a borrowing view instead of copying;
	// the default (false) only matters for OpenBytes, since file-backed
	// opens are always zero-copy over the mmap.
	ZeroCopy bool

	// Tolerant, when true, lets an XBlock whose data-leaf sizes do not add
	// up to its declared total be read with a logged diagnostic instead of
	// failing with a CorruptNode error. Undecodable values met while reading
	// a whole property or table row are skipped with a logged diagnostic
	// whatever this setting.
	Tolerant bool

	// MaxCellSize is a size limit for a single heap/value allocation. Zero
	// selects the default (64 MiB). WithDefaults fills it in; pstkit's
	// readers do not check allocation sizes against it.
	MaxCellSize int

	// MaxPageSize is a size limit for a single B-tree/HN page. Zero selects
	// the default (4 MiB, comfortably above the 4KiB 2013-variant page
	// size). WithDefaults fills it in; pstkit's readers do not check page
	// sizes against it.
	MaxPageSize int
}

// DefaultMaxCellSize is used when OpenOptions.MaxCellSize is zero.
const DefaultMaxCellSize = 64 << 20

// DefaultMaxPageSize is used when OpenOptions.MaxPageSize is zero.
const DefaultMaxPageSize = 4 << 20

// WithDefaults returns a copy of o with zero-valued size limits replaced by
// their defaults.
func (o OpenOptions) WithDefaults() OpenOptions {
	if o.MaxCellSize == 0 {
		o.MaxCellSize = DefaultMaxCellSize
	}
	if o.MaxPageSize == 0 {
		o.MaxPageSize = DefaultMaxPageSize
	}
	return o
}
