// Package adbscalar provides the concrete ScalarSchema values used
// throughout the package database: plain strings, multi-line strings,
// Alpine versions, decimal and octal integers, human-readable sizes, and
// hex dumps of fixed-size checksums (spec.md §4.3).
package adbscalar

import (
	"strconv"

	"github.com/alpinelinux/goadb/internal/adbschema"
	"github.com/alpinelinux/goadb/internal/adbval"
	"github.com/alpinelinux/goadb/internal/version"
)

// String is a plain blob scalar compared byte-for-byte (lexicographic).
var String = adbschema.ScalarSchema{
	ScalarKind: adbval.KindBlob,
	ToString:   blobToString,
	FromString: blobFromString,
	Compare:    blobCompare,
}

// MString is String with a hint that multi-line rendering is acceptable
// (e.g. package descriptions), per spec.md §4.3.
var MString = adbschema.ScalarSchema{
	ScalarKind: adbval.KindBlob,
	Multiline:  true,
	ToString:   blobToString,
	FromString: blobFromString,
	Compare:    blobCompare,
}

func blobToString(r adbschema.Reader, h adbval.Handle, buf []byte) []byte {
	return r.Blob(h)
}

func blobFromString(w adbschema.Writer, text []byte) adbval.Handle {
	return w.WriteBlob(text)
}

func blobCompare(r1 adbschema.Reader, h1 adbval.Handle, r2 adbschema.Reader, h2 adbval.Handle) int {
	a, b := r1.Blob(h1), r2.Blob(h2)
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			if a[i] < b[i] {
				return -1
			}
			return 1
		}
	}
	switch {
	case len(a) < len(b):
		return -1
	case len(a) > len(b):
		return 1
	default:
		return 0
	}
}

// Version stores the version text verbatim (as a blob) but orders and
// renders it using the Alpine version algorithm, not lexicographically
// (spec.md §3, "Version comparison is domain-specific").
var Version = adbschema.ScalarSchema{
	ScalarKind: adbval.KindBlob,
	ToString:   blobToString,
	FromString: blobFromString,
	Compare:    versionCompare,
}

func versionCompare(r1 adbschema.Reader, h1 adbval.Handle, r2 adbschema.Reader, h2 adbval.Handle) int {
	return version.Compare(string(r1.Blob(h1)), string(r2.Blob(h2)))
}

// HexBlob renders a fixed-size binary blob (typically a checksum) as
// lowercase hex. It has no FromString or Compare: it is write-once via the
// object's own special field handling and never used for ordering
// (spec.md §4.3, mirroring original_source's hexblob_tostring having no
// fromstring/compare counterpart).
var HexBlob = adbschema.ScalarSchema{
	ScalarKind: adbval.KindBlob,
	ToString:   hexBlobToString,
}

const hexDigits = "0123456789abcdef"

func hexBlobToString(r adbschema.Reader, h adbval.Handle, buf []byte) []byte {
	b := r.Blob(h)
	if b == nil {
		return nil
	}
	need := len(b) * 2
	if cap(buf) < need {
		// Buffer too small for a full hex dump: fall back to a
		// human-readable byte count, as original_source's
		// hexblob_tostring does via its snprintf fallback.
		return []byte("(" + strconv.Itoa(len(b)) + " bytes)")
	}
	out := buf[:0]
	for _, c := range b {
		out = append(out, hexDigits[c>>4], hexDigits[c&0xf])
	}
	return out
}

// Int is a decimal integer scalar stored inline in the handle payload or,
// if it doesn't fit, out-of-line in the int pool.
var Int = adbschema.ScalarSchema{
	ScalarKind: adbval.KindInt,
	ToString:   intToString,
	FromString: intFromString,
	Compare:    intCompare,
}

func intToString(r adbschema.Reader, h adbval.Handle, buf []byte) []byte {
	return strconv.AppendUint(buf[:0], uint64(r.Int(h)), 10)
}

func intFromString(w adbschema.Writer, text []byte) adbval.Handle {
	n, err := strconv.ParseUint(string(text), 10, 32)
	if err != nil {
		return adbval.NewError(adbval.ErrBadFormat)
	}
	return w.WriteInt(uint32(n))
}

func intCompare(r1 adbschema.Reader, h1 adbval.Handle, r2 adbschema.Reader, h2 adbval.Handle) int {
	a, b := r1.Int(h1), r2.Int(h2)
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// Oct renders an integer in base-8 for textual output (file modes). It has
// no FromString or Compare: original_source's scalar_oct is render-only,
// since file modes are always read from octal but compared/written as
// plain ints via the file schema's own int fields.
var Oct = adbschema.ScalarSchema{
	ScalarKind: adbval.KindInt,
	ToString:   octToString,
}

func octToString(r adbschema.Reader, h adbval.Handle, buf []byte) []byte {
	return strconv.AppendUint(buf[:0], uint64(r.Int(h)), 8)
}

// HSize renders an integer as a human-scaled size in whole units
// ("5 MiB"; the remainder below one unit is dropped) but parses
// and compares it as a plain decimal byte count (spec.md §4.3).
var HSize = adbschema.ScalarSchema{
	ScalarKind: adbval.KindInt,
	ToString:   hsizeToString,
	FromString: intFromString,
	Compare:    intCompare,
}

var sizeUnits = []string{"B", "KiB", "MiB", "GiB", "TiB", "PiB"}

func hsizeToString(r adbschema.Reader, h adbval.Handle, buf []byte) []byte {
	v := uint64(r.Int(h))
	unit := 0
	// Scale by 1024 until the value fits one unit, mirroring
	// apk_get_human_size's progressive div-by-1024.
	scaled := v
	for unit < len(sizeUnits)-1 && scaled >= 1024 {
		scaled /= 1024
		unit++
	}
	out := strconv.AppendUint(buf[:0], scaled, 10)
	out = append(out, ' ')
	out = append(out, sizeUnits[unit]...)
	return out
}
