// Package adbval defines the 32-bit tagged value handle used throughout the
// ADB core. A Handle never carries a pointer: it is an opaque token that only
// means something together with the Database that produced it, the same way
// a page ID only means something together with its page manager.
package adbval

import "fmt"

// Kind is the 4-bit tag stored in a Handle's high bits.
type Kind uint8

const (
	KindNull Kind = iota
	KindError
	KindInt
	KindBlob
	KindObject
	KindArray
	KindADB
	KindIntRef
)

// String renders the kind name, used by error messages and debug dumps.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindError:
		return "error"
	case KindInt:
		return "int"
	case KindBlob:
		return "blob"
	case KindObject:
		return "object"
	case KindArray:
		return "array"
	case KindADB:
		return "adb"
	case KindIntRef:
		return "intref"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

const (
	kindShift   = 28
	kindMask    = 0xF
	payloadMask = (1 << kindShift) - 1
)

// Handle is a tagged 32-bit reference: 4 bits of Kind plus a 28-bit payload.
// For KindInt the payload is the value itself; for KindBlob/KindObject/
// KindArray/KindADB/KindIntRef it is an index into the owning Database's
// corresponding pool (KindIntRef indexes the int pool, for values too large
// to fit inline); for KindError it is a non-zero ErrorCode; KindNull's
// payload is always zero.
type Handle uint32

// Null is the single canonical null handle.
const Null Handle = Handle(KindNull) << kindShift

// New builds a handle from a kind and a payload, truncating the payload to
// 28 bits. Callers are expected to have already range-checked the payload;
// New does not itself fail.
func New(kind Kind, payload uint32) Handle {
	return Handle(uint32(kind)<<kindShift | (payload & payloadMask))
}

// NewError builds an ERROR handle carrying the given error code. A zero
// code is promoted to ErrUnknown since ERROR payloads must be non-zero
// (spec.md §4.1).
func NewError(code ErrorCode) Handle {
	if code == 0 {
		code = ErrUnknown
	}
	return New(KindError, uint32(code))
}

// Kind extracts the handle's kind tag.
func (h Handle) Kind() Kind {
	return Kind((uint32(h) >> kindShift) & kindMask)
}

// Payload extracts the handle's 28-bit payload.
func (h Handle) Payload() uint32 {
	return uint32(h) & payloadMask
}

// IsNull reports whether h is the null handle.
func (h Handle) IsNull() bool {
	return h == Null
}

// IsError reports whether h carries an error.
func (h Handle) IsError() bool {
	return h.Kind() == KindError
}

// ErrorCode returns the error code carried by h, or 0 if h is not an error
// handle.
func (h Handle) ErrorCode() ErrorCode {
	if !h.IsError() {
		return 0
	}
	return ErrorCode(h.Payload())
}

// Int returns the inline integer payload of an INT handle. Callers must
// check Kind() == KindInt first; Int does not itself validate the kind.
func (h Handle) Int() uint32 {
	return h.Payload()
}

// Index returns the pool index carried by a BLOB/OBJECT/ARRAY/ADB/IntRef handle.
func (h Handle) Index() uint32 {
	return h.Payload()
}

// String renders a handle for debugging/logging; it never touches a
// Database, so blob/object contents are not resolved here.
func (h Handle) String() string {
	switch h.Kind() {
	case KindNull:
		return "<null>"
	case KindError:
		return fmt.Sprintf("<error %s>", h.ErrorCode())
	case KindInt:
		return fmt.Sprintf("<int %d>", h.Int())
	default:
		return fmt.Sprintf("<%s #%d>", h.Kind(), h.Index())
	}
}
