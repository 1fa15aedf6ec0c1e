package pkgschema

import (
	"bytes"
	"testing"

	"github.com/alpinelinux/goadb/internal/adbbuilder"
	"github.com/alpinelinux/goadb/internal/adbdb"
	"github.com/alpinelinux/goadb/internal/adbio"
	"github.com/alpinelinux/goadb/internal/adbval"
)

func TestDependencyRoundTrip(t *testing.T) {
	cases := []string{
		"busybox",
		"!busybox",
		"foo=1.2.3",
		"foo>=1.2",
		"foo<2.0",
		"foo~1.2",
		"!foo>=1.2",
	}
	for _, text := range cases {
		t.Run(text, func(t *testing.T) {
			db := adbdb.New(1)
			b := adbbuilder.OpenObject(Dependency, db)
			h, handled := Dependency.FromString(b, -1, []byte(text))
			if !handled {
				t.Fatalf("FromString(%q) not handled", text)
			}
			if h.IsError() {
				t.Fatalf("FromString(%q): unexpected error %v", text, h.ErrorCode())
			}
			objH := b.Commit()
			if objH.IsError() {
				t.Fatalf("Commit(%q): unexpected error %v", text, objH.ErrorCode())
			}
			view := db.ObjectView(objH)
			got := string(Dependency.ToString(view, nil))
			if got != text {
				t.Errorf("round trip = %q, want %q", got, text)
			}
		})
	}
}

func TestDependencyFromStringRejectsBadVersion(t *testing.T) {
	db := adbdb.New(1)
	b := adbbuilder.OpenObject(Dependency, db)
	h, handled := Dependency.FromString(b, -1, []byte("foo>=not-a-version"))
	if !handled {
		t.Fatal("expected handled=true")
	}
	if !h.IsError() {
		t.Fatal("expected an error handle for a malformed version operand")
	}
}

func TestDependencyCompareOrdersByName(t *testing.T) {
	db := adbdb.New(1)
	mk := func(text string) adbval.Handle {
		b := adbbuilder.OpenObject(Dependency, db)
		Dependency.FromString(b, -1, []byte(text))
		return b.Commit()
	}
	a := db.ObjectView(mk("alpha=1.0"))
	z := db.ObjectView(mk("zulu=1.0"))
	if Dependency.Compare(a, z) >= 0 {
		t.Error("expected alpha < zulu")
	}
}

func TestDependencyArrayFromStringSortsAndDedups(t *testing.T) {
	db := adbdb.New(1)
	b := adbbuilder.OpenObject(PkgInfo, db)
	h := b.SetFieldFromString(PIDepends, []byte("zebra mango>=1.0 apple mango>=1.0"))
	if h.IsError() {
		t.Fatalf("unexpected error: %v", h.ErrorCode())
	}
	objH := b.Commit()
	if objH.IsError() {
		t.Fatalf("unexpected commit error: %v", objH.ErrorCode())
	}
	view := db.ObjectView(objH)
	arrH := view.Field(PIDepends)
	arr := db.Array(arrH)
	if len(arr.Elements) != 3 {
		t.Fatalf("expected 3 unique deps, got %d", len(arr.Elements))
	}
	var names []string
	for _, e := range arr.Elements {
		ev := db.ObjectView(e)
		names = append(names, string(ev.Blob(ev.Field(DepName))))
	}
	want := []string{"apple", "mango", "zebra"}
	for i, n := range want {
		if names[i] != n {
			t.Errorf("names = %v, want %v", names, want)
			break
		}
	}
}

func TestPkgInfoFieldCodeDispatch(t *testing.T) {
	db := adbdb.New(1)
	b := adbbuilder.OpenObject(PkgInfo, db)
	b.SetFromCode('P', []byte("busybox"))
	b.SetFromCode('V', []byte("1.36.1-r2"))
	b.SetFromCode('D', []byte("musl so:libc.so"))
	h := b.Commit()
	if h.IsError() {
		t.Fatalf("unexpected error: %v", h.ErrorCode())
	}
	view := db.ObjectView(h)
	if got := string(view.Blob(view.Field(PIName))); got != "busybox" {
		t.Errorf("name = %q, want busybox", got)
	}
	if got := string(db.Blob(view.Field(PIVersion))); got != "1.36.1-r2" {
		t.Errorf("version = %q, want 1.36.1-r2", got)
	}
	arr := db.Array(view.Field(PIDepends))
	if len(arr.Elements) != 2 {
		t.Fatalf("expected 2 depends entries, got %d", len(arr.Elements))
	}
}

func TestPkgInfoUniqueIDFromRawBytes(t *testing.T) {
	db := adbdb.New(1)
	b := adbbuilder.OpenObject(PkgInfo, db)
	h := b.SetFieldFromString(PIUniqueID, []byte{0x01, 0x02, 0x03, 0xFF})
	if h.IsError() {
		t.Fatalf("unexpected error: %v", h.ErrorCode())
	}
	if h.Kind() != adbval.KindInt {
		t.Fatalf("expected an inline int handle, got kind %v", h.Kind())
	}
	// top 4 bits of the 4th byte are masked off to fit the 28-bit payload.
	want := uint32(0x01) | uint32(0x02)<<8 | uint32(0x03)<<16 | uint32(0x0F)<<24
	if h.Int() != want {
		t.Errorf("unique-id = %#x, want %#x", h.Int(), want)
	}
}

func TestPkgInfoRepoCommitFromHex(t *testing.T) {
	db := adbdb.New(1)
	b := adbbuilder.OpenObject(PkgInfo, db)
	hexStr := "0123456789abcdef0123456789abcdef01234567"
	h := b.SetFieldFromString(PIRepoCommit, []byte(hexStr))
	if h.IsError() {
		t.Fatalf("unexpected error: %v", h.ErrorCode())
	}
	blob := db.Blob(h)
	if len(blob) != 20 {
		t.Fatalf("expected a 20-byte commit hash, got %d bytes", len(blob))
	}
	if blob[0] != 0x01 || blob[19] != 0x67 {
		t.Errorf("unexpected decode: %x", blob)
	}
}

func TestPkgInfoRepoCommitRejectsShortInput(t *testing.T) {
	db := adbdb.New(1)
	b := adbbuilder.OpenObject(PkgInfo, db)
	h := b.SetFieldFromString(PIRepoCommit, []byte("deadbeef"))
	if !h.IsError() {
		t.Fatal("expected an error for a too-short repo-commit")
	}
}

func TestPkgInfoCompareOrdersByNameThenVersion(t *testing.T) {
	db := adbdb.New(1)
	mk := func(name, version string) adbval.Handle {
		b := adbbuilder.OpenObject(PkgInfo, db)
		b.SetFromCode('P', []byte(name))
		b.SetFromCode('V', []byte(version))
		return b.Commit()
	}
	older := db.ObjectView(mk("busybox", "1.0"))
	newer := db.ObjectView(mk("busybox", "2.0"))
	if PkgInfo.Compare(older, newer) >= 0 {
		t.Error("expected busybox-1.0 < busybox-2.0")
	}
	a := db.ObjectView(mk("alpha", "9.0"))
	z := db.ObjectView(mk("zulu", "1.0"))
	if PkgInfo.Compare(a, z) >= 0 {
		t.Error("expected alpha to sort before zulu regardless of version")
	}
}

func TestPackageCompareDescendsIntoPkgInfo(t *testing.T) {
	db := adbdb.New(1)
	mkPackage := func(name, version string) adbval.Handle {
		info := adbbuilder.OpenObject(PkgInfo, db)
		info.SetFromCode('P', []byte(name))
		info.SetFromCode('V', []byte(version))
		infoH := info.Commit()

		pkg := adbbuilder.OpenObject(Package, db)
		pkg.SetField(PkgInfoField, infoH)
		return pkg.Commit()
	}
	a := db.ObjectView(mkPackage("alpha", "1.0"))
	b := db.ObjectView(mkPackage("zulu", "1.0"))
	if Package.Compare(a, b) >= 0 {
		t.Error("expected package alpha to sort before package zulu")
	}
}

func TestPackageArrayPreCommitSortsByPkgInfo(t *testing.T) {
	db := adbdb.New(1)
	mkPackageADB := func(name string) adbval.Handle {
		pkg := adbbuilder.OpenEmbedded(PackageADB, db)
		info := adbbuilder.OpenObject(PkgInfo, pkg.Nested())
		info.SetFromCode('P', []byte(name))
		info.SetFromCode('V', []byte("1.0"))
		pkg.SetField(PkgInfoField, info.Commit())
		return pkg.Commit()
	}

	idb := adbbuilder.OpenObject(InstalledDB, db)
	arr := adbbuilder.OpenArray(PackageArray, db)
	arr.Append(mkPackageADB("zulu"))
	arr.Append(mkPackageADB("alpha"))
	arr.Append(mkPackageADB("mango"))
	arrH := arr.Commit()
	if arrH.IsError() {
		t.Fatalf("unexpected error: %v", arrH.ErrorCode())
	}
	idb.SetField(IdbPackages, arrH)
	idbH := idb.Commit()
	if idbH.IsError() {
		t.Fatalf("unexpected error: %v", idbH.ErrorCode())
	}

	view := db.ObjectView(idbH)
	packages := db.Array(view.Field(IdbPackages))
	var names []string
	for _, e := range packages.Elements {
		nested, err := adbio.Read(bytes.NewReader(db.Embedded(e)), adbdb.SchemaID(SchemaPackage))
		if err != nil {
			t.Fatalf("decoding embedded package: %v", err)
		}
		pv := nested.ObjectView(nested.Root())
		info := pv.ObjectView(pv.Field(PkgInfoField))
		names = append(names, string(info.Blob(info.Field(PIName))))
	}
	want := []string{"alpha", "mango", "zulu"}
	for i, n := range want {
		if names[i] != n {
			t.Errorf("names = %v, want %v", names, want)
			break
		}
	}
}
