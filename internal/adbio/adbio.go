// Package adbio serializes and deserializes a Database to the on-disk ADB
// block format: a magic-tagged header that also carries the root handle,
// then length-prefixed pool blocks in blob/int/object/array/
// embedded-database order (spec.md §4.6). Each embedded-database block is itself the complete
// output of a nested Write call, decodable by feeding it back through
// Read (spec.md §4.6, "nested blocks with their own magic").
//
// Field widths follow original_source/apk_adb.c's wire layout, so this
// package uses encoding/binary.BigEndian throughout rather than the
// teacher's little-endian convention in storage/btree/serialize.go -
// see DESIGN.md. The block-framing *shape* (fixed header, then a run of
// length-prefixed variable blocks) is taken directly from
// internal/storage/header.go and storage/btree/serialize.go.
package adbio

import (
	"encoding/binary"
	"errors"
	"io"

	"github.com/alpinelinux/goadb/internal/adbdb"
	"github.com/alpinelinux/goadb/internal/adbpool"
	"github.com/alpinelinux/goadb/internal/adbval"
)

// Magic identifies the file as an ADB container. The header's SchemaID
// field further identifies which schema (package index, installed-db, ...) the root
// object conforms to (spec.md §4.6).
const Magic uint32 = 0x41444221 // "ADB!"

// Header layout:
//
//	bytes 0-3:   Magic (uint32)
//	bytes 4-7:   SchemaID (uint32)
//	bytes 8-11:  BlobCount (uint32)
//	bytes 12-15: IntCount (uint32)
//	bytes 16-19: ObjectCount (uint32)
//	bytes 20-23: ArrayCount (uint32)
//	bytes 24-27: ADBCount (uint32, nested embedded-database blocks)
//	bytes 28-31: Root (uint32, the adbval.Handle bit pattern)
const HeaderSize = 32

// Sentinel errors describing why a byte stream could not be read back as
// a database (spec.md §7).
var (
	ErrTruncated   = errors.New("adbio: truncated input")
	ErrBadMagic    = errors.New("adbio: bad magic")
	ErrBlobTooLong = errors.New("adbio: blob length exceeds remaining input")
)

// Write serializes db to w in the canonical block layout. Identical
// logical content always produces byte-identical output, since every
// pool is already deduped and stored in a fixed insertion order
// (spec.md §8, "Deterministic serialization").
func Write(w io.Writer, db *adbdb.Database) error {
	blobN, intN, objN, arrN, adbN := db.Counts()

	var header [HeaderSize]byte
	binary.BigEndian.PutUint32(header[0:4], Magic)
	binary.BigEndian.PutUint32(header[4:8], uint32(db.SchemaID))
	binary.BigEndian.PutUint32(header[8:12], uint32(blobN))
	binary.BigEndian.PutUint32(header[12:16], uint32(intN))
	binary.BigEndian.PutUint32(header[16:20], uint32(objN))
	binary.BigEndian.PutUint32(header[20:24], uint32(arrN))
	binary.BigEndian.PutUint32(header[24:28], uint32(adbN))
	binary.BigEndian.PutUint32(header[28:32], uint32(db.Root()))
	if _, err := w.Write(header[:]); err != nil {
		return err
	}

	for _, b := range db.BlobPool().All() {
		if err := writeBlob(w, b); err != nil {
			return err
		}
	}
	for _, v := range db.IntPool().All() {
		if err := writeUint32(w, v); err != nil {
			return err
		}
	}
	for _, obj := range db.ObjectPool().All() {
		if err := writeObject(w, obj); err != nil {
			return err
		}
	}
	for _, arr := range db.ArrayPool().All() {
		if err := writeArray(w, arr); err != nil {
			return err
		}
	}
	for _, block := range db.ADBPool().All() {
		if err := writeBlob(w, block); err != nil {
			return err
		}
	}
	return nil
}

func writeBlob(w io.Writer, b []byte) error {
	if err := writeUint32(w, uint32(len(b))); err != nil {
		return err
	}
	_, err := w.Write(b)
	return err
}

func writeUint32(w io.Writer, v uint32) error {
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], v)
	_, err := w.Write(buf[:])
	return err
}

// Object block layout: FieldCount(uint32), then FieldCount *
// (Index uint32, Handle uint32) pairs.
func writeObject(w io.Writer, obj adbpool.Object) error {
	if err := writeUint32(w, uint32(len(obj.Fields))); err != nil {
		return err
	}
	for _, f := range obj.Fields {
		if err := writeUint32(w, uint32(f.Index)); err != nil {
			return err
		}
		if err := writeUint32(w, uint32(f.Handle)); err != nil {
			return err
		}
	}
	return nil
}

// Array block layout: ElementCount(uint32), then ElementCount handles.
func writeArray(w io.Writer, arr adbpool.Array) error {
	if err := writeUint32(w, uint32(len(arr.Elements))); err != nil {
		return err
	}
	for _, h := range arr.Elements {
		if err := writeUint32(w, uint32(h)); err != nil {
			return err
		}
	}
	return nil
}

// Read deserializes a database previously written by Write.
func Read(r io.Reader, schemaID adbdb.SchemaID) (*adbdb.Database, error) {
	var header [HeaderSize]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
			return nil, ErrTruncated
		}
		return nil, err
	}
	magic := binary.BigEndian.Uint32(header[0:4])
	if magic != Magic {
		return nil, ErrBadMagic
	}
	gotSchema := binary.BigEndian.Uint32(header[4:8])
	blobN := binary.BigEndian.Uint32(header[8:12])
	intN := binary.BigEndian.Uint32(header[12:16])
	objN := binary.BigEndian.Uint32(header[16:20])
	arrN := binary.BigEndian.Uint32(header[20:24])
	adbN := binary.BigEndian.Uint32(header[24:28])
	root := binary.BigEndian.Uint32(header[28:32])

	db := adbdb.New(adbdb.SchemaID(gotSchema))

	for i := uint32(0); i < blobN; i++ {
		b, err := readBlob(r)
		if err != nil {
			return nil, err
		}
		db.WriteBlob(b)
	}
	for i := uint32(0); i < intN; i++ {
		v, err := readUint32(r)
		if err != nil {
			return nil, err
		}
		db.WriteInt(v)
	}
	for i := uint32(0); i < objN; i++ {
		obj, err := readObject(r)
		if err != nil {
			return nil, err
		}
		db.WriteObject(obj)
	}
	for i := uint32(0); i < arrN; i++ {
		arr, err := readArray(r)
		if err != nil {
			return nil, err
		}
		db.WriteArray(arr)
	}
	for i := uint32(0); i < adbN; i++ {
		block, err := readBlob(r)
		if err != nil {
			return nil, err
		}
		db.WriteADB(block)
	}

	db.SetRoot(adbval.Handle(root))
	return db, nil
}

func readUint32(r io.Reader) (uint32, error) {
	var buf [4]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, ErrTruncated
	}
	return binary.BigEndian.Uint32(buf[:]), nil
}

func readBlob(r io.Reader) ([]byte, error) {
	n, err := readUint32(r)
	if err != nil {
		return nil, err
	}
	const maxReasonableBlob = 1 << 30
	if n > maxReasonableBlob {
		return nil, ErrBlobTooLong
	}
	b := make([]byte, n)
	if _, err := io.ReadFull(r, b); err != nil {
		return nil, ErrTruncated
	}
	return b, nil
}

func readObject(r io.Reader) (adbpool.Object, error) {
	n, err := readUint32(r)
	if err != nil {
		return adbpool.Object{}, err
	}
	obj := adbpool.Object{Fields: make([]adbpool.Field, n)}
	for i := range obj.Fields {
		idx, err := readUint32(r)
		if err != nil {
			return adbpool.Object{}, err
		}
		h, err := readUint32(r)
		if err != nil {
			return adbpool.Object{}, err
		}
		obj.Fields[i] = adbpool.Field{Index: int(idx), Handle: adbval.Handle(h)}
	}
	return obj, nil
}

func readArray(r io.Reader) (adbpool.Array, error) {
	n, err := readUint32(r)
	if err != nil {
		return adbpool.Array{}, err
	}
	arr := adbpool.Array{Elements: make([]adbval.Handle, n)}
	for i := range arr.Elements {
		h, err := readUint32(r)
		if err != nil {
			return adbpool.Array{}, err
		}
		arr.Elements[i] = adbval.Handle(h)
	}
	return arr, nil
}
