package adbscalar

import (
	"testing"

	"github.com/alpinelinux/goadb/internal/adbschema"
	"github.com/alpinelinux/goadb/internal/adbval"
)

// fakeDB is a minimal adbschema.Reader/Writer for exercising scalar
// converters in isolation, without pulling in adbpool/adbdb.
type fakeDB struct {
	blobs [][]byte
	ints  []uint32
}

func (f *fakeDB) Blob(h adbval.Handle) []byte {
	if h.IsNull() {
		return nil
	}
	idx := int(h.Index())
	if idx >= len(f.blobs) {
		return nil
	}
	return f.blobs[idx]
}

func (f *fakeDB) Int(h adbval.Handle) uint32 {
	if h.Kind() == adbval.KindInt {
		return h.Int()
	}
	idx := int(h.Index())
	if idx >= len(f.ints) {
		return 0
	}
	return f.ints[idx]
}

func (f *fakeDB) WriteBlob(b []byte) adbval.Handle {
	f.blobs = append(f.blobs, append([]byte(nil), b...))
	return adbval.New(adbval.KindBlob, uint32(len(f.blobs)-1))
}

func (f *fakeDB) WriteInt(v uint32) adbval.Handle {
	if v <= 0x0FFFFFFF {
		return adbval.New(adbval.KindInt, v)
	}
	f.ints = append(f.ints, v)
	return adbval.New(adbval.KindInt, uint32(len(f.ints)-1))
}

// ObjectView is unused by these scalar-only tests; no fixture here ever
// builds an object pool.
func (f *fakeDB) ObjectView(h adbval.Handle) adbschema.FieldReader { return nil }

func TestStringRoundTrip(t *testing.T) {
	db := &fakeDB{}
	h := String.FromString(db, []byte("hello world"))
	if got := String.ToString(db, h, nil); string(got) != "hello world" {
		t.Errorf("ToString = %q, want %q", got, "hello world")
	}
}

func TestStringCompare(t *testing.T) {
	db := &fakeDB{}
	a := String.FromString(db, []byte("abc"))
	b := String.FromString(db, []byte("abd"))
	if String.Compare(db, a, db, b) >= 0 {
		t.Error("expected abc < abd")
	}
	if String.Compare(db, a, db, a) != 0 {
		t.Error("expected equal handle to compare equal")
	}
}

func TestVersionCompareOrdersByAlpineRules(t *testing.T) {
	db := &fakeDB{}
	older := Version.FromString(db, []byte("1.2.3"))
	newer := Version.FromString(db, []byte("1.2.3-r1"))
	if Version.Compare(db, older, db, newer) >= 0 {
		t.Error("expected 1.2.3 < 1.2.3-r1 under version compare")
	}
	// Lexicographically "1.2.3-r1" < "1.2.30" but numerically it's the
	// other way; version compare must not fall back to byte ordering.
	a := Version.FromString(db, []byte("1.2.3"))
	b := Version.FromString(db, []byte("1.2.30"))
	if Version.Compare(db, a, db, b) >= 0 {
		t.Error("expected 1.2.3 < 1.2.30")
	}
}

func TestIntRoundTrip(t *testing.T) {
	db := &fakeDB{}
	h := Int.FromString(db, []byte("12345"))
	if got := string(Int.ToString(db, h, nil)); got != "12345" {
		t.Errorf("ToString = %q, want %q", got, "12345")
	}
}

func TestIntFromStringRejectsGarbage(t *testing.T) {
	db := &fakeDB{}
	h := Int.FromString(db, []byte("123abc"))
	if !h.IsError() {
		t.Error("expected error handle for trailing garbage")
	}
}

func TestIntCompare(t *testing.T) {
	db := &fakeDB{}
	a := Int.FromString(db, []byte("5"))
	b := Int.FromString(db, []byte("100000"))
	if Int.Compare(db, a, db, b) >= 0 {
		t.Error("expected 5 < 100000")
	}
}

func TestOctToString(t *testing.T) {
	db := &fakeDB{}
	h := db.WriteInt(0o644)
	if got := string(Oct.ToString(db, h, nil)); got != "644" {
		t.Errorf("ToString = %q, want %q", got, "644")
	}
}

func TestHSizeToString(t *testing.T) {
	db := &fakeDB{}
	h := db.WriteInt(100)
	if got := string(HSize.ToString(db, h, nil)); got != "100 B" {
		t.Errorf("ToString(100) = %q, want %q", got, "100 B")
	}
	h2 := db.WriteInt(5 * 1024 * 1024)
	if got := string(HSize.ToString(db, h2, nil)); got != "5 MiB" {
		t.Errorf("ToString(5MiB) = %q, want %q", got, "5 MiB")
	}
}

func TestHexBlobToString(t *testing.T) {
	db := &fakeDB{}
	h := db.WriteBlob([]byte{0xde, 0xad, 0xbe, 0xef})
	buf := make([]byte, 0, 16)
	if got := string(HexBlob.ToString(db, h, buf)); got != "deadbeef" {
		t.Errorf("ToString = %q, want %q", got, "deadbeef")
	}
}

func TestHexBlobToStringFallsBackWhenBufferTooSmall(t *testing.T) {
	db := &fakeDB{}
	h := db.WriteBlob([]byte{0xde, 0xad, 0xbe, 0xef})
	buf := make([]byte, 0, 2)
	if got := string(HexBlob.ToString(db, h, buf)); got != "(4 bytes)" {
		t.Errorf("ToString = %q, want %q", got, "(4 bytes)")
	}
}
