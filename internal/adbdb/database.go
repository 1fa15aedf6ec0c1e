// Package adbdb is the database container: it owns the content pools
// (blobs, ints, objects, arrays, embedded sub-databases), a root handle,
// and implements the read/write accessor interfaces that adbschema and
// adbbuilder consume (spec.md §3, §4.1).
package adbdb

import (
	"github.com/alpinelinux/goadb/internal/adbpool"
	"github.com/alpinelinux/goadb/internal/adbschema"
	"github.com/alpinelinux/goadb/internal/adbval"
)

// SchemaID identifies which concrete schema a database (or an embedded
// sub-database) was built against, stored alongside the magic in its
// serialized header (spec.md §4.6).
type SchemaID uint32

// Database is a single ADB container: a blob pool, an int pool, an object
// pool, an array pool, an embedded-sub-database pool, and a root handle
// pointing at the top-level value. Handles are only meaningful together
// with the Database that produced them (spec.md §4.1).
type Database struct {
	SchemaID SchemaID

	blobs   *adbpool.BlobPool
	ints    *adbpool.IntPool
	objects *adbpool.ObjectPool
	arrays  *adbpool.ArrayPool
	adbs    *adbpool.ADBPool

	root adbval.Handle
}

// New returns an empty database for the given schema id.
func New(schemaID SchemaID) *Database {
	return &Database{
		SchemaID: schemaID,
		blobs:    adbpool.NewBlobPool(),
		ints:     adbpool.NewIntPool(),
		objects:  adbpool.NewObjectPool(),
		arrays:   adbpool.NewArrayPool(),
		adbs:     adbpool.NewADBPool(),
		root:     adbval.Null,
	}
}

// Root returns the database's root handle.
func (db *Database) Root() adbval.Handle { return db.root }

// SetRoot sets the database's root handle, usually the result of
// committing the top-level object or array builder.
func (db *Database) SetRoot(h adbval.Handle) { db.root = h }

// Blob implements adbschema.Reader.
func (db *Database) Blob(h adbval.Handle) []byte {
	if h.Kind() != adbval.KindBlob || h.IsNull() {
		return nil
	}
	return db.blobs.Get(h.Index())
}

// Int implements adbschema.Reader: inline INT handles return their payload
// directly; KindIntRef handles index into the int pool, for values that
// did not fit the 28-bit inline payload (spec.md §4.1, "Out-of-line ints").
func (db *Database) Int(h adbval.Handle) uint32 {
	switch h.Kind() {
	case adbval.KindInt:
		return h.Int()
	case adbval.KindIntRef:
		return db.ints.Get(h.Index())
	default:
		return 0
	}
}

// WriteBlob implements adbschema.Writer.
func (db *Database) WriteBlob(b []byte) adbval.Handle {
	return adbval.New(adbval.KindBlob, db.blobs.Intern(b))
}

// WriteInt implements adbschema.Writer. Values that fit in 28 bits are
// stored inline in the handle itself; larger values spill to the int pool
// and come back tagged KindIntRef so Int can tell them apart from an
// inline value that happens to equal a pool index (spec.md §4.1,
// "Out-of-line ints").
func (db *Database) WriteInt(v uint32) adbval.Handle {
	const inlineMax = 1<<28 - 1
	if v <= inlineMax {
		return adbval.New(adbval.KindInt, v)
	}
	return adbval.New(adbval.KindIntRef, db.ints.Intern(v))
}

// WriteObject interns a committed object into the object pool.
func (db *Database) WriteObject(obj adbpool.Object) adbval.Handle {
	if len(obj.Fields) == 0 {
		return adbval.Null
	}
	return adbval.New(adbval.KindObject, db.objects.Intern(obj))
}

// WriteArray interns a committed array into the array pool.
func (db *Database) WriteArray(arr adbpool.Array) adbval.Handle {
	return adbval.New(adbval.KindArray, db.arrays.Intern(arr))
}

// Object returns the committed object stored at h.
func (db *Database) Object(h adbval.Handle) adbpool.Object {
	if h.Kind() != adbval.KindObject {
		return adbpool.Object{}
	}
	return db.objects.Get(h.Index())
}

// Array returns the committed array stored at h.
func (db *Database) Array(h adbval.Handle) adbpool.Array {
	if h.Kind() != adbval.KindArray {
		return adbpool.Array{}
	}
	return db.arrays.Get(h.Index())
}

// WriteADB interns the serialized bytes of a nested sub-database (already
// written out by adbio.Write against its own header and pools) and
// returns a KindADB handle referencing it (spec.md §4.6, "Embedded
// databases ... are nested blocks with their own magic").
func (db *Database) WriteADB(data []byte) adbval.Handle {
	return adbval.New(adbval.KindADB, db.adbs.Intern(data))
}

// Embedded returns the raw serialized bytes of the nested sub-database
// referenced by an ADB handle, for the caller to decode with adbio.Read.
func (db *Database) Embedded(h adbval.Handle) []byte {
	if h.Kind() != adbval.KindADB {
		return nil
	}
	return db.adbs.Get(h.Index())
}

// ObjectView implements adbbuilder.Database: a FieldReader scoped to one
// already-committed object, for use by array pre_commit comparators.
func (db *Database) ObjectView(h adbval.Handle) adbschema.FieldReader {
	return &objectView{db: db, obj: db.Object(h)}
}

// Field looks up field index within an already-committed object handle,
// returning Null if the field was elided (i.e. held its schema default)
// or never set.
func (db *Database) Field(h adbval.Handle, index int) adbval.Handle {
	return db.ObjectView(h).Field(index)
}

// Counts reports the size of each pool, useful for serialization headers
// and tests.
func (db *Database) Counts() (blobs, ints, objects, arrays, adbs int) {
	return db.blobs.Len(), db.ints.Len(), db.objects.Len(), db.arrays.Len(), db.adbs.Len()
}

// BlobPool, IntPool, ObjectPool, ArrayPool, and ADBPool give adbio
// read-only access to the underlying pools for serialization.
func (db *Database) BlobPool() *adbpool.BlobPool     { return db.blobs }
func (db *Database) IntPool() *adbpool.IntPool       { return db.ints }
func (db *Database) ObjectPool() *adbpool.ObjectPool { return db.objects }
func (db *Database) ArrayPool() *adbpool.ArrayPool   { return db.arrays }
func (db *Database) ADBPool() *adbpool.ADBPool       { return db.adbs }

type objectView struct {
	db  *Database
	obj adbpool.Object
}

func (v *objectView) Blob(h adbval.Handle) []byte { return v.db.Blob(h) }
func (v *objectView) Int(h adbval.Handle) uint32   { return v.db.Int(h) }

func (v *objectView) ObjectView(h adbval.Handle) adbschema.FieldReader {
	return v.db.ObjectView(h)
}

func (v *objectView) Field(index int) adbval.Handle {
	for _, f := range v.obj.Fields {
		if f.Index == index {
			return f.Handle
		}
	}
	return adbval.Null
}

// FieldDefault resolves a field's effective value: the stored handle if
// present, otherwise the schema's default for that field (an inline INT
// handle, or Null if the schema declares no default), per spec.md §4.5.
func FieldDefault(schema *adbschema.ObjectSchema, view adbschema.FieldReader, index int) adbval.Handle {
	h := view.Field(index)
	if !h.IsNull() {
		return h
	}
	if schema.GetDefault == nil {
		return adbval.Null
	}
	return adbval.New(adbval.KindInt, schema.GetDefault(index))
}
