package adblayout

import (
	"os"
	"path/filepath"
	"testing"
)

func TestOpenCreatesLayout(t *testing.T) {
	root := filepath.Join(t.TempDir(), "apkroot")
	l, err := Open(DefaultOptions(root))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	for _, dir := range []string{l.Root(), l.KeysDir(), l.CacheDir()} {
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			t.Errorf("expected directory %s to exist", dir)
		}
	}
}

func TestOpenRejectsMissingRootWithoutCreate(t *testing.T) {
	root := filepath.Join(t.TempDir(), "missing")
	_, err := Open(Options{Root: root, CreateIfNotExists: false})
	if err != ErrNotExist {
		t.Fatalf("expected ErrNotExist, got %v", err)
	}
}

func TestRepoURLHashStableAndDistinct(t *testing.T) {
	a := RepoURLHash("https://dl-cdn.alpinelinux.org/alpine/v3.19/main")
	b := RepoURLHash("https://dl-cdn.alpinelinux.org/alpine/v3.19/community")
	if a == b {
		t.Error("expected distinct repo URLs to hash differently")
	}
	if a != RepoURLHash("https://dl-cdn.alpinelinux.org/alpine/v3.19/main") {
		t.Error("expected RepoURLHash to be deterministic")
	}
	if len(a) != 8 {
		t.Errorf("expected an 8-character hash, got %d chars", len(a))
	}
}

func TestLayerIDConstants(t *testing.T) {
	if LayerRoot != 0 || LayerUvol != 1 {
		t.Errorf("unexpected layer ids: root=%d uvol=%d", LayerRoot, LayerUvol)
	}
}
