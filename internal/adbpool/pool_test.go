package adbpool

import (
	"testing"

	"github.com/alpinelinux/goadb/internal/adbval"
)

func TestBlobPoolDedup(t *testing.T) {
	p := NewBlobPool()
	a := p.Intern([]byte("hello"))
	b := p.Intern([]byte("hello"))
	c := p.Intern([]byte("world"))

	if a != b {
		t.Errorf("identical blobs got different indices: %d != %d", a, b)
	}
	if a == c {
		t.Errorf("distinct blobs got the same index: %d", a)
	}
	if p.Len() != 2 {
		t.Errorf("Len() = %d, want 2", p.Len())
	}
	if string(p.Get(a)) != "hello" {
		t.Errorf("Get(a) = %q, want %q", p.Get(a), "hello")
	}
}

func TestBlobPoolMutationIsolation(t *testing.T) {
	p := NewBlobPool()
	src := []byte("mutate-me")
	idx := p.Intern(src)
	src[0] = 'X'
	if got := string(p.Get(idx)); got != "mutate-me" {
		t.Errorf("pool blob mutated through caller's slice: got %q", got)
	}
}

func TestIntPoolDedup(t *testing.T) {
	p := NewIntPool()
	a := p.Intern(100000)
	b := p.Intern(100000)
	c := p.Intern(5)

	if a != b {
		t.Errorf("identical ints got different indices: %d != %d", a, b)
	}
	if a == c {
		t.Error("distinct ints got the same index")
	}
	if p.Get(a) != 100000 {
		t.Errorf("Get(a) = %d, want 100000", p.Get(a))
	}
}

func TestObjectPoolDedup(t *testing.T) {
	p := NewObjectPool()
	o1 := Object{Fields: []Field{{Index: 0, Handle: adbval.New(adbval.KindInt, 1)}}}
	o2 := Object{Fields: []Field{{Index: 0, Handle: adbval.New(adbval.KindInt, 1)}}}
	o3 := Object{Fields: []Field{{Index: 0, Handle: adbval.New(adbval.KindInt, 2)}}}

	a := p.Intern(o1)
	b := p.Intern(o2)
	c := p.Intern(o3)

	if a != b {
		t.Errorf("identical field-vectors got different indices: %d != %d", a, b)
	}
	if a == c {
		t.Error("distinct field-vectors got the same index")
	}
}

func TestArrayPoolDedup(t *testing.T) {
	p := NewArrayPool()
	a1 := Array{Elements: []adbval.Handle{adbval.New(adbval.KindInt, 1), adbval.New(adbval.KindInt, 2)}}
	a2 := Array{Elements: []adbval.Handle{adbval.New(adbval.KindInt, 1), adbval.New(adbval.KindInt, 2)}}
	a3 := Array{Elements: []adbval.Handle{adbval.New(adbval.KindInt, 2), adbval.New(adbval.KindInt, 1)}}

	a := p.Intern(a1)
	b := p.Intern(a2)
	c := p.Intern(a3)

	if a != b {
		t.Errorf("identical arrays got different indices: %d != %d", a, b)
	}
	if a == c {
		t.Error("differently-ordered arrays got the same index (order must matter)")
	}
}

func TestPoolGetOutOfRange(t *testing.T) {
	if got := NewBlobPool().Get(0); got != nil {
		t.Errorf("Get on empty pool = %v, want nil", got)
	}
	if got := NewIntPool().Get(0); got != 0 {
		t.Errorf("Get on empty pool = %d, want 0", got)
	}
}
