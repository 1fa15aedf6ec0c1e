// Package adbpool implements the content-addressed pools owned by a
// database: blobs, out-of-line ints, committed objects, committed arrays,
// and embedded sub-databases. Every pool dedups on insert so identical
// content always maps to the same index (spec.md §3, "Dedup").
//
// The original's hlist-threaded hash table in apk_database.h is replaced
// here with a plain Go map keyed by the content's string form, per
// spec.md §9's own design note ("replace with the idiomatic associative
// container in the target language").
package adbpool

import "github.com/alpinelinux/goadb/internal/adbval"

// Field is one (field-index, handle) pair inside a committed object.
type Field struct {
	Index  int
	Handle adbval.Handle
}

// Object is a committed object: its fields sorted by Index, with no entry
// equal to that field's schema default (spec.md §4.5, "Default elision").
type Object struct {
	Fields []Field
}

// Array is a committed array: an ordered vector of element handles, already
// passed through whatever pre_commit hook its schema declared.
type Array struct {
	Elements []adbval.Handle
}

// BlobPool is the content-addressed store for raw byte blobs.
type BlobPool struct {
	blobs [][]byte
	index map[string]uint32
}

// NewBlobPool returns an empty blob pool.
func NewBlobPool() *BlobPool {
	return &BlobPool{index: make(map[string]uint32)}
}

// Intern inserts b if not already present and returns its pool index.
// Identical byte sequences always return the same index (content
// addressing / dedup, spec.md §8 property 2).
func (p *BlobPool) Intern(b []byte) uint32 {
	key := string(b)
	if idx, ok := p.index[key]; ok {
		return idx
	}
	idx := uint32(len(p.blobs))
	cp := make([]byte, len(b))
	copy(cp, b)
	p.blobs = append(p.blobs, cp)
	p.index[key] = idx
	return idx
}

// Get returns the blob stored at idx.
func (p *BlobPool) Get(idx uint32) []byte {
	if int(idx) >= len(p.blobs) {
		return nil
	}
	return p.blobs[idx]
}

// Len reports how many distinct blobs are interned.
func (p *BlobPool) Len() int { return len(p.blobs) }

// All returns the pool's blobs in index order, for serialization.
func (p *BlobPool) All() [][]byte { return p.blobs }

// ADBPool is the content-addressed store for serialized embedded
// sub-databases: each entry is the raw bytes of one nested ADB block,
// complete with its own header and magic (spec.md §4.6, "Embedded
// databases ... are nested blocks with their own magic").
type ADBPool struct {
	blocks [][]byte
	index  map[string]uint32
}

// NewADBPool returns an empty embedded-database pool.
func NewADBPool() *ADBPool {
	return &ADBPool{index: make(map[string]uint32)}
}

// Intern inserts the serialized block b if not already present and
// returns its pool index.
func (p *ADBPool) Intern(b []byte) uint32 {
	key := string(b)
	if idx, ok := p.index[key]; ok {
		return idx
	}
	idx := uint32(len(p.blocks))
	cp := make([]byte, len(b))
	copy(cp, b)
	p.blocks = append(p.blocks, cp)
	p.index[key] = idx
	return idx
}

// Get returns the serialized block stored at idx.
func (p *ADBPool) Get(idx uint32) []byte {
	if int(idx) >= len(p.blocks) {
		return nil
	}
	return p.blocks[idx]
}

// Len reports how many distinct embedded databases are interned.
func (p *ADBPool) Len() int { return len(p.blocks) }

// All returns the pool's blocks in index order, for serialization.
func (p *ADBPool) All() [][]byte { return p.blocks }

// IntPool is the content-addressed store for integers that did not fit
// inline in a handle's 28-bit payload.
type IntPool struct {
	ints  []uint32
	index map[uint32]uint32
}

// NewIntPool returns an empty int pool.
func NewIntPool() *IntPool {
	return &IntPool{index: make(map[uint32]uint32)}
}

// Intern returns the pool index for v, reusing an existing slot if v was
// already interned.
func (p *IntPool) Intern(v uint32) uint32 {
	if idx, ok := p.index[v]; ok {
		return idx
	}
	idx := uint32(len(p.ints))
	p.ints = append(p.ints, v)
	p.index[v] = idx
	return idx
}

// Get returns the integer stored at idx.
func (p *IntPool) Get(idx uint32) uint32 {
	if int(idx) >= len(p.ints) {
		return 0
	}
	return p.ints[idx]
}

// Len reports how many distinct integers are interned.
func (p *IntPool) Len() int { return len(p.ints) }

// All returns the pool's integers in index order, for serialization.
func (p *IntPool) All() []uint32 { return p.ints }

// ObjectPool is the content-addressed store for committed objects.
type ObjectPool struct {
	objects []Object
	index   map[string]uint32
}

// NewObjectPool returns an empty object pool.
func NewObjectPool() *ObjectPool {
	return &ObjectPool{index: make(map[string]uint32)}
}

// Intern inserts obj (already sorted and default-elided by the caller) and
// returns its pool index, reusing an existing slot on an identical
// field-vector.
func (p *ObjectPool) Intern(obj Object) uint32 {
	key := objectKey(obj)
	if idx, ok := p.index[key]; ok {
		return idx
	}
	idx := uint32(len(p.objects))
	p.objects = append(p.objects, obj)
	p.index[key] = idx
	return idx
}

// Get returns the object stored at idx.
func (p *ObjectPool) Get(idx uint32) Object {
	if int(idx) >= len(p.objects) {
		return Object{}
	}
	return p.objects[idx]
}

// Len reports how many distinct objects are interned.
func (p *ObjectPool) Len() int { return len(p.objects) }

// All returns the pool's objects in index order, for serialization.
func (p *ObjectPool) All() []Object { return p.objects }

func objectKey(obj Object) string {
	buf := make([]byte, 0, len(obj.Fields)*8)
	for _, f := range obj.Fields {
		h := uint32(f.Handle)
		buf = append(buf,
			byte(f.Index>>24), byte(f.Index>>16), byte(f.Index>>8), byte(f.Index),
			byte(h>>24), byte(h>>16), byte(h>>8), byte(h),
		)
	}
	return string(buf)
}

// ArrayPool is the content-addressed store for committed arrays.
type ArrayPool struct {
	arrays []Array
	index  map[string]uint32
}

// NewArrayPool returns an empty array pool.
func NewArrayPool() *ArrayPool {
	return &ArrayPool{index: make(map[string]uint32)}
}

// Intern inserts arr (already pre_commit-processed by the caller) and
// returns its pool index, reusing an existing slot on an identical element
// vector.
func (p *ArrayPool) Intern(arr Array) uint32 {
	key := arrayKey(arr)
	if idx, ok := p.index[key]; ok {
		return idx
	}
	idx := uint32(len(p.arrays))
	p.arrays = append(p.arrays, arr)
	p.index[key] = idx
	return idx
}

// Get returns the array stored at idx.
func (p *ArrayPool) Get(idx uint32) Array {
	if int(idx) >= len(p.arrays) {
		return Array{}
	}
	return p.arrays[idx]
}

// Len reports how many distinct arrays are interned.
func (p *ArrayPool) Len() int { return len(p.arrays) }

// All returns the pool's arrays in index order, for serialization.
func (p *ArrayPool) All() []Array { return p.arrays }

func arrayKey(arr Array) string {
	buf := make([]byte, 0, len(arr.Elements)*4)
	for _, eh := range arr.Elements {
		h := uint32(eh)
		buf = append(buf, byte(h>>24), byte(h>>16), byte(h>>8), byte(h))
	}
	return string(buf)
}
