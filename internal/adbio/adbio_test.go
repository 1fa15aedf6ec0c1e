package adbio

import (
	"bytes"
	"testing"

	"github.com/alpinelinux/goadb/internal/adbdb"
	"github.com/alpinelinux/goadb/internal/adbpool"
	"github.com/alpinelinux/goadb/internal/adbval"
)

func buildSampleDB() *adbdb.Database {
	db := adbdb.New(7)
	nameH := db.WriteBlob([]byte("busybox"))
	verH := db.WriteBlob([]byte("1.36.1-r2"))
	obj := adbpool.Object{Fields: []adbpool.Field{
		{Index: 0, Handle: nameH},
		{Index: 1, Handle: verH},
	}}
	objH := db.WriteObject(obj)
	arr := adbpool.Array{Elements: []adbval.Handle{objH}}
	arrH := db.WriteArray(arr)
	db.SetRoot(arrH)
	return db
}

func TestWriteReadRoundTrip(t *testing.T) {
	db := buildSampleDB()

	var buf bytes.Buffer
	if err := Write(&buf, db); err != nil {
		t.Fatalf("Write: %v", err)
	}

	back, err := Read(&buf, 0)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if back.SchemaID != db.SchemaID {
		t.Errorf("SchemaID = %d, want %d", back.SchemaID, db.SchemaID)
	}
	if back.Root() != db.Root() {
		t.Errorf("Root = %v, want %v", back.Root(), db.Root())
	}

	arr := back.Array(back.Root())
	if len(arr.Elements) != 1 {
		t.Fatalf("expected 1 element, got %d", len(arr.Elements))
	}
	obj := back.Object(arr.Elements[0])
	view := back.ObjectView(arr.Elements[0])
	if got := string(back.Blob(view.Field(0))); got != "busybox" {
		t.Errorf("field 0 = %q, want %q", got, "busybox")
	}
	if got := string(back.Blob(view.Field(1))); got != "1.36.1-r2" {
		t.Errorf("field 1 = %q, want %q", got, "1.36.1-r2")
	}
	if len(obj.Fields) != 2 {
		t.Errorf("expected 2 fields, got %d", len(obj.Fields))
	}
}

func TestWriteIsDeterministic(t *testing.T) {
	db1 := buildSampleDB()
	db2 := buildSampleDB()

	var buf1, buf2 bytes.Buffer
	if err := Write(&buf1, db1); err != nil {
		t.Fatal(err)
	}
	if err := Write(&buf2, db2); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(buf1.Bytes(), buf2.Bytes()) {
		t.Error("expected identical logical content to serialize byte-identically")
	}
}

func TestReadRejectsBadMagic(t *testing.T) {
	buf := bytes.Repeat([]byte{0}, HeaderSize)
	_, err := Read(bytes.NewReader(buf), 0)
	if err != ErrBadMagic {
		t.Errorf("got %v, want ErrBadMagic", err)
	}
}

func TestReadRejectsTruncatedInput(t *testing.T) {
	db := buildSampleDB()
	var buf bytes.Buffer
	if err := Write(&buf, db); err != nil {
		t.Fatal(err)
	}
	truncated := buf.Bytes()[:buf.Len()-4]
	_, err := Read(bytes.NewReader(truncated), 0)
	if err == nil {
		t.Error("expected an error reading truncated input")
	}
}
