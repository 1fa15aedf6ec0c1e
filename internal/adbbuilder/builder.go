// Package adbbuilder implements the object and array builders through
// which new values enter a database: open a builder against a schema, set
// or append fields, then commit (spec.md §4.5). A builder that ever
// receives an ERROR handle stays tainted: its commit yields the first
// error it saw, rather than a partially-built value (spec.md §7,
// "errors are values, not control flow").
package adbbuilder

import (
	"bytes"
	"sort"

	"github.com/alpinelinux/goadb/internal/adbdb"
	"github.com/alpinelinux/goadb/internal/adbio"
	"github.com/alpinelinux/goadb/internal/adbpool"
	"github.com/alpinelinux/goadb/internal/adbschema"
	"github.com/alpinelinux/goadb/internal/adbval"
)

// Database is what a builder needs from its owning database: the
// adbschema read/write accessors, the ability to intern a finished
// object, array, or embedded sub-database into the pools, and a way to
// view an already-committed object (by handle) as a FieldReader so array
// pre_commit hooks can compare elements field-by-field.
type Database interface {
	adbschema.Writer
	WriteObject(obj adbpool.Object) adbval.Handle
	WriteArray(arr adbpool.Array) adbval.Handle
	WriteADB(data []byte) adbval.Handle
	ObjectView(h adbval.Handle) adbschema.FieldReader
	Embedded(h adbval.Handle) []byte
}

// ObjectBuilder accumulates fields for one object before it is committed
// into the owning database's object pool.
type ObjectBuilder struct {
	schema *adbschema.ObjectSchema
	db     Database
	fields map[int]adbval.Handle
	err    adbval.Handle
}

// OpenObject starts building a new object of the given schema.
func OpenObject(schema *adbschema.ObjectSchema, db Database) *ObjectBuilder {
	return &ObjectBuilder{schema: schema, db: db, fields: make(map[int]adbval.Handle)}
}

// EmbeddedBuilder builds one object against a fresh, self-contained
// nested database and, on Commit, serializes that database and interns
// the result into the parent database's embedded-sub-database pool,
// yielding a KindADB handle (spec.md §4.6, "Embedded databases ... are
// nested blocks with their own magic"). Field access otherwise behaves
// exactly like ObjectBuilder, since EmbeddedBuilder embeds one scoped to
// the nested database.
type EmbeddedBuilder struct {
	*ObjectBuilder
	nested *adbdb.Database
	parent Database
}

// OpenEmbedded starts building a new embedded sub-database of the given
// schema, to be committed into parent.
func OpenEmbedded(schema *adbschema.EmbeddedSchema, parent Database) *EmbeddedBuilder {
	nested := adbdb.New(adbdb.SchemaID(schema.SchemaID))
	return &EmbeddedBuilder{
		ObjectBuilder: OpenObject(schema.Contained, nested),
		nested:        nested,
		parent:        parent,
	}
}

// Nested exposes the embedded object's own database, so that its
// sub-objects and sub-arrays (a Package's PkgInfo, Paths, Scripts, ...)
// can be opened against the right pools before the outer fields are set.
func (b *EmbeddedBuilder) Nested() Database { return b.nested }

// Commit finalizes the embedded object, serializes its nested database,
// and interns the resulting bytes into the parent database, returning a
// KindADB handle. A tainted inner object still short-circuits to its
// first error, same as ObjectBuilder.Commit.
func (b *EmbeddedBuilder) Commit() adbval.Handle {
	objH := b.ObjectBuilder.Commit()
	if objH.IsError() {
		return objH
	}
	b.nested.SetRoot(objH)
	var buf bytes.Buffer
	if err := adbio.Write(&buf, b.nested); err != nil {
		return adbval.NewError(adbval.ErrIO)
	}
	return b.parent.WriteADB(buf.Bytes())
}

// Blob implements adbschema.Reader by delegating to the owning database.
func (b *ObjectBuilder) Blob(h adbval.Handle) []byte { return b.db.Blob(h) }

// Int implements adbschema.Reader by delegating to the owning database.
func (b *ObjectBuilder) Int(h adbval.Handle) uint32 { return b.db.Int(h) }

// ObjectView implements adbschema.Reader by delegating to the owning database.
func (b *ObjectBuilder) ObjectView(h adbval.Handle) adbschema.FieldReader { return b.db.ObjectView(h) }

// WriteBlob implements adbschema.Writer by delegating to the owning database.
func (b *ObjectBuilder) WriteBlob(v []byte) adbval.Handle { return b.db.WriteBlob(v) }

// WriteInt implements adbschema.Writer by delegating to the owning database.
func (b *ObjectBuilder) WriteInt(v uint32) adbval.Handle { return b.db.WriteInt(v) }

// Field implements adbschema.FieldReader: the handle currently set at
// index, or Null if unset.
func (b *ObjectBuilder) Field(index int) adbval.Handle {
	if h, ok := b.fields[index]; ok {
		return h
	}
	return adbval.Null
}

// taint records the first error handle seen; subsequent errors do not
// overwrite it (spec.md §7, "commit yields the first error").
func (b *ObjectBuilder) taint(h adbval.Handle) {
	if h.IsError() && !b.err.IsError() {
		b.err = h
	}
}

// SetField sets field index to h. Set is idempotent: setting the same
// field again simply replaces the prior value (spec.md §4.5).
func (b *ObjectBuilder) SetField(index int, h adbval.Handle) {
	b.taint(h)
	b.fields[index] = h
}

// Set is the public spelling of SetField used by callers outside the
// adbschema.FieldWriter contract.
func (b *ObjectBuilder) Set(index int, h adbval.Handle) { b.SetField(index, h) }

// SetFieldFromString parses text into field index, consulting the
// schema's FieldFromString override first (if any), then falling back to
// the field's own sub-schema FromString.
func (b *ObjectBuilder) SetFieldFromString(index int, text []byte) adbval.Handle {
	if b.schema.FromString != nil {
		if h, handled := b.schema.FromString(b, index, text); handled {
			b.SetField(index, h)
			return h
		}
	}
	fd, ok := b.schema.Field(index)
	if !ok {
		h := adbval.NewError(adbval.ErrBadFormat)
		b.SetField(index, h)
		return h
	}
	h := fromStringForSchema(fd.Schema, b.db, text)
	b.SetField(index, h)
	return h
}

// SetFromCode is SetFieldFromString addressed by the schema's legacy
// single-letter field code, used by text-format readers (spec.md §4.2).
func (b *ObjectBuilder) SetFromCode(code byte, text []byte) adbval.Handle {
	idx, ok := b.schema.FieldByCode(code)
	if !ok {
		h := adbval.NewError(adbval.ErrBadFormat)
		b.taint(h)
		return h
	}
	return b.SetFieldFromString(idx, text)
}

// fromStringForSchema dispatches text parsing to whichever concrete
// Schema kind s uses. Nested object/array fields get their own
// sub-builder so that their own commit rules (sorting, default elision,
// pre_commit) apply uniformly.
func fromStringForSchema(s adbschema.Schema, db Database, text []byte) adbval.Handle {
	switch sch := s.(type) {
	case adbschema.ScalarSchema:
		if sch.FromString == nil {
			return adbval.NewError(adbval.ErrBadFormat)
		}
		return sch.FromString(db, text)
	case *adbschema.ObjectSchema:
		if sch.FromString == nil {
			return adbval.NewError(adbval.ErrBadFormat)
		}
		sub := OpenObject(sch, db)
		h, handled := sch.FromString(sub, -1, text)
		if !handled {
			return adbval.NewError(adbval.ErrBadFormat)
		}
		if h.IsError() {
			return h
		}
		return sub.Commit()
	case *adbschema.ArraySchema:
		if sch.FromString == nil {
			return adbval.NewError(adbval.ErrBadFormat)
		}
		sub := OpenArray(sch, db)
		h := sch.FromString(db, text, func(h adbval.Handle) { sub.Append(h) })
		if h.IsError() {
			return h
		}
		return sub.Commit()
	default:
		return adbval.NewError(adbval.ErrBadFormat)
	}
}

// Commit finalizes the object: if tainted, returns the first error seen;
// otherwise sorts fields by index, elides any field equal to its schema
// default, and interns the result (spec.md §4.5, "Default elision").
func (b *ObjectBuilder) Commit() adbval.Handle {
	if b.err.IsError() {
		return b.err
	}

	indices := make([]int, 0, len(b.fields))
	for idx := range b.fields {
		indices = append(indices, idx)
	}
	sort.Ints(indices)

	obj := adbpool.Object{Fields: make([]adbpool.Field, 0, len(indices))}
	for _, idx := range indices {
		h := b.fields[idx]
		if isDefault(b.schema, idx, h) {
			continue
		}
		obj.Fields = append(obj.Fields, adbpool.Field{Index: idx, Handle: h})
	}
	return b.db.WriteObject(obj)
}

func isDefault(schema *adbschema.ObjectSchema, index int, h adbval.Handle) bool {
	if schema.GetDefault == nil {
		return h.IsNull()
	}
	if h.Kind() != adbval.KindInt {
		return h.IsNull()
	}
	return h.Int() == schema.GetDefault(index)
}

// ArrayBuilder accumulates elements for one array before it is committed
// into the owning database's array pool.
type ArrayBuilder struct {
	schema   *adbschema.ArraySchema
	db       Database
	elements []adbval.Handle
	err      adbval.Handle
}

// OpenArray starts building a new array of the given schema.
func OpenArray(schema *adbschema.ArraySchema, db Database) *ArrayBuilder {
	return &ArrayBuilder{schema: schema, db: db}
}

// Blob implements adbschema.Reader by delegating to the owning database.
func (b *ArrayBuilder) Blob(h adbval.Handle) []byte { return b.db.Blob(h) }

// Int implements adbschema.Reader by delegating to the owning database.
func (b *ArrayBuilder) Int(h adbval.Handle) uint32 { return b.db.Int(h) }

// ObjectView implements adbschema.Reader by delegating to the owning database.
func (b *ArrayBuilder) ObjectView(h adbval.Handle) adbschema.FieldReader { return b.db.ObjectView(h) }

// WriteBlob implements adbschema.Writer by delegating to the owning database.
func (b *ArrayBuilder) WriteBlob(v []byte) adbval.Handle { return b.db.WriteBlob(v) }

// WriteInt implements adbschema.Writer by delegating to the owning database.
func (b *ArrayBuilder) WriteInt(v uint32) adbval.Handle { return b.db.WriteInt(v) }

func (b *ArrayBuilder) taint(h adbval.Handle) {
	if h.IsError() && !b.err.IsError() {
		b.err = h
	}
}

// Append adds one element handle. Appending past MaxFields (when set)
// taints the builder with ErrBadFormat (spec.md §4.2, "up to max_fields").
func (b *ArrayBuilder) Append(h adbval.Handle) {
	if b.schema.MaxFields > 0 && len(b.elements) >= b.schema.MaxFields {
		b.taint(adbval.NewError(adbval.ErrBadFormat))
		return
	}
	b.taint(h)
	b.elements = append(b.elements, h)
}

// AppendFromString parses one textual element using the array's element
// sub-schema and appends it, returning a non-nil error handle on failure.
func (b *ArrayBuilder) AppendFromString(text []byte) adbval.Handle {
	h := fromStringForSchema(b.schema.Element, b.db, text)
	b.Append(h)
	if h.IsError() {
		return h
	}
	return adbval.Null
}

// Commit finalizes the array: if tainted, returns the first error seen;
// otherwise runs the schema's pre_commit hook (if any) and interns the
// resulting element vector (spec.md §3, "Array pre-commit rules").
func (b *ArrayBuilder) Commit() adbval.Handle {
	if b.err.IsError() {
		return b.err
	}

	elements := b.elements
	if b.schema.PreCommit != nil {
		elements = b.schema.PreCommit(elements, b, elementCompare(b))
	}
	return b.db.WriteArray(adbpool.Array{Elements: elements})
}

// elementCompare returns a comparator over b.elements' indices using the
// array's element schema, for use by sort-based pre_commit hooks.
func elementCompare(b *ArrayBuilder) func(i, j int) int {
	cmp := elementCompareFunc(b.db, b.schema.Element)
	return func(i, j int) int {
		if cmp == nil {
			return 0
		}
		return cmp(b.elements[i], b.elements[j])
	}
}

func elementCompareFunc(db Database, s adbschema.Schema) func(h1, h2 adbval.Handle) int {
	switch sch := s.(type) {
	case adbschema.ScalarSchema:
		if sch.Compare == nil {
			return nil
		}
		return func(h1, h2 adbval.Handle) int { return sch.Compare(db, h1, db, h2) }
	case *adbschema.ObjectSchema:
		if sch.Compare == nil {
			return nil
		}
		return func(h1, h2 adbval.Handle) int {
			return sch.Compare(db.ObjectView(h1), db.ObjectView(h2))
		}
	case *adbschema.EmbeddedSchema:
		if sch.Contained == nil || sch.Contained.Compare == nil {
			return nil
		}
		return func(h1, h2 adbval.Handle) int {
			return sch.Contained.Compare(decodeEmbedded(db, sch, h1), decodeEmbedded(db, sch, h2))
		}
	default:
		return nil
	}
}

// decodeEmbedded reads back the nested sub-database an EmbeddedSchema
// handle points at and returns a FieldReader over its root object, for
// use by a PreCommit comparator. A handle that fails to decode (it was
// never produced by OpenEmbedded) reads as an all-zero object rather
// than panicking, consistent with errors-as-values elsewhere in this
// package.
func decodeEmbedded(db Database, sch *adbschema.EmbeddedSchema, h adbval.Handle) adbschema.FieldReader {
	data := db.Embedded(h)
	if data == nil {
		return emptyFieldReader{}
	}
	nested, err := adbio.Read(bytes.NewReader(data), adbdb.SchemaID(sch.SchemaID))
	if err != nil {
		return emptyFieldReader{}
	}
	return nested.ObjectView(nested.Root())
}

// emptyFieldReader is the zero-valued fallback FieldReader decodeEmbedded
// returns when a handle cannot be resolved.
type emptyFieldReader struct{}

func (emptyFieldReader) Blob(adbval.Handle) []byte { return nil }
func (emptyFieldReader) Int(adbval.Handle) uint32  { return 0 }
func (emptyFieldReader) ObjectView(adbval.Handle) adbschema.FieldReader {
	return emptyFieldReader{}
}
func (emptyFieldReader) Field(int) adbval.Handle { return adbval.Null }
