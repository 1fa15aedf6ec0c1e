// Package adbschema is the declarative description of how domain entities
// are laid out (spec.md §4.2). It performs no I/O: a schema value only
// says how to parse, print, compare, and order values of one entity.
// Drivers elsewhere (internal/adbbuilder, internal/adbdb, internal/pkgschema)
// walk a schema tree together with either an input or a handle.
package adbschema

import (
	"sort"

	"github.com/alpinelinux/goadb/internal/adbval"
)

// Reader is the read side of a database a scalar schema needs to dereference
// a handle: blob/int lookups by pool index. adbdb.Database satisfies this.
type Reader interface {
	Blob(h adbval.Handle) []byte
	Int(h adbval.Handle) uint32
	// ObjectView resolves an OBJECT handle (typically one just read out of
	// a field) to a FieldReader over its own fields, mirroring
	// original_source's adb_ro_obj: an object field's value is itself
	// addressed field-by-field, not just rendered as a blob.
	ObjectView(h adbval.Handle) FieldReader
}

// Writer is the write side a scalar's FromString needs to intern new blobs
// or ints. adbdb.Database satisfies this.
type Writer interface {
	Reader
	WriteBlob(b []byte) adbval.Handle
	WriteInt(v uint32) adbval.Handle
}

// Schema is implemented by ScalarSchema, *ObjectSchema, *ArraySchema, and
// *EmbeddedSchema: anything that can appear as a field's sub-schema.
type Schema interface {
	Kind() adbval.Kind
}

// ToStringFunc renders a handle's value as text into buf, returning the
// slice of buf actually used. A nil func means "not convertible to text."
type ToStringFunc func(r Reader, h adbval.Handle, buf []byte) []byte

// FromStringFunc parses text into a handle. A nil func means "not
// convertible from text." Errors are returned as adbval error handles,
// never as a Go error, so that a fromstring failure behaves the same way
// in a builder chain as any other error-producing write (spec.md §7).
type FromStringFunc func(w Writer, text []byte) adbval.Handle

// CompareFunc induces the schema's total order across two (possibly
// different) databases (spec.md §3, "Ordering functions are total").
type CompareFunc func(r1 Reader, h1 adbval.Handle, r2 Reader, h2 adbval.Handle) int

// GetDefaultFunc returns the default inline-int value for a field index, or
// the field's zero value when the field has no special default. It is used
// during commit to elide fields holding their default (spec.md §4.5).
type GetDefaultFunc func(fieldIndex int) uint32

// ScalarSchema describes a leaf value: either an inline INT or a pooled
// BLOB, with optional text conversion and comparison behavior.
type ScalarSchema struct {
	ScalarKind adbval.Kind // KindInt or KindBlob
	Multiline  bool        // hints to printers that multi-line rendering is OK
	ToString   ToStringFunc
	FromString FromStringFunc
	Compare    CompareFunc
}

// Kind implements Schema.
func (s ScalarSchema) Kind() adbval.Kind { return s.ScalarKind }

// FieldDef is one entry in an ObjectSchema's field table: "field N of
// object of kind K has name X and uses sub-schema S" (spec.md §4.2).
type FieldDef struct {
	Index  int
	Name   string
	Schema Schema
}

// PreCommitFunc runs exactly once when an array is committed; it must be idempotent (spec.md §3, "Array pre-commit rules").
type PreCommitFunc func(elements []adbval.Handle, r Reader, cmp func(i, j int) int) []adbval.Handle

// Sort orders elements by cmp, matching original_source's adb_wa_sort.
func Sort(elements []adbval.Handle, r Reader, cmp func(i, j int) int) []adbval.Handle {
	sort.SliceStable(elements, func(i, j int) bool { return cmp(i, j) < 0 })
	return elements
}

// SortUnique orders elements by cmp and then drops adjacent duplicates,
// matching original_source's adb_wa_sort_unique (used by dependency
// arrays, where the same name may be named twice across a package's
// depends/provides list).
func SortUnique(elements []adbval.Handle, r Reader, cmp func(i, j int) int) []adbval.Handle {
	elements = Sort(elements, r, cmp)
	out := elements[:0]
	for i, h := range elements {
		if i > 0 && cmp(i-1, i) == 0 {
			continue
		}
		out = append(out, h)
	}
	return out
}

// FieldReader is the read side of one already-committed object: "give me
// the handle stored at field index N," independent of how that object is
// actually stored (pool vector, in-progress builder, ...). Object schema
// Compare/ToString funcs only ever need this much.
type FieldReader interface {
	Reader
	Field(index int) adbval.Handle
}

// FieldWriter is the write side an object's FromString needs: write text
// into a specific field (invoking that field's own scalar/object
// FromString), or set a field directly from an already-built handle.
type FieldWriter interface {
	Writer
	SetField(index int, h adbval.Handle)
	SetFieldFromString(index int, text []byte) adbval.Handle
}

// ObjectCompareFunc induces an object schema's total order by comparing
// specific fields of two (possibly cross-database) object views, cascading
// from primary to secondary keys (spec.md §3: "Ties on primary keys cascade
// to secondary keys").
type ObjectCompareFunc func(o1 FieldReader, o2 FieldReader) int

// ObjectToStringFunc renders a whole object's canonical text form (used by
// Dependency's "name OP version" rendering).
type ObjectToStringFunc func(o FieldReader, buf []byte) []byte

// FieldFromStringFunc intercepts text assigned to one specific field index
// before the field's own sub-schema gets a chance at it, for the rare
// fields whose textual form isn't just their stored form (spec.md §4.2,
// PkgInfo's unique-id/repo-commit special casing). It returns handled =
// false to fall through to the field's ordinary FromString.
type FieldFromStringFunc func(w FieldWriter, fieldIndex int, text []byte) (h adbval.Handle, handled bool)

// ObjectSchema describes a composite record: a fixed field-index
// enumeration plus optional whole-object behaviors.
type ObjectSchema struct {
	NumFields  int
	Fields     []FieldDef
	Compare    ObjectCompareFunc
	ToString   ObjectToStringFunc
	FromString FieldFromStringFunc
	GetDefault GetDefaultFunc

	// FieldCode maps a single ASCII letter to a canonical field index, for
	// legacy textual field selection (spec.md §4.2, PkgInfo's `C/P/V/...`
	// table). Nil means the object has no single-character field codes.
	FieldCode map[byte]int
}

// Kind implements Schema.
func (s *ObjectSchema) Kind() adbval.Kind { return adbval.KindObject }

// FieldByCode looks up the canonical field index for a legacy single-letter
// code. The second return is false for any code the schema does not map.
func (s *ObjectSchema) FieldByCode(c byte) (int, bool) {
	if s.FieldCode == nil {
		return 0, false
	}
	idx, ok := s.FieldCode[c]
	return idx, ok
}

// Field returns the field definition at the given index, or false if out of
// range.
func (s *ObjectSchema) Field(index int) (FieldDef, bool) {
	for _, f := range s.Fields {
		if f.Index == index {
			return f, true
		}
	}
	return FieldDef{}, false
}

// ArraySchema describes a homogeneous sequence whose elements all use the
// same sub-schema.
type ArraySchema struct {
	Element   Schema
	MaxFields int
	PreCommit PreCommitFunc
	// FromString, when set, parses a whole textual list (e.g. a
	// whitespace/comma separated dependency list) directly into element
	// handles, rather than splitting generically. A nil func means
	// "elements are parsed one at a time by Element's own FromString."
	FromString func(w Writer, text []byte, appendElem func(h adbval.Handle)) adbval.Handle
}

// Kind implements Schema.
func (s *ArraySchema) Kind() adbval.Kind { return adbval.KindArray }

// EmbeddedSchema marks a contained object schema as independently
// addressable: it is serialized as its own nested sub-database with its
// own magic (spec.md §4.2, "Embedded-DB schema").
type EmbeddedSchema struct {
	SchemaID  uint32
	Contained *ObjectSchema
}

// Kind implements Schema.
func (s *EmbeddedSchema) Kind() adbval.Kind { return adbval.KindADB }
