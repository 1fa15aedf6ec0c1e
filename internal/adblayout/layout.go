// Package adblayout defines the persisted layout of a managed apk root
// (spec.md §6): a lock file, a keys directory, an installed-db file, a
// cache directory keyed by repository URL hash, and per-repository
// index files, plus the fixed layer-id scheme from apk_database.h
// (root=0, uvol=1, further layers contiguous).
//
// It is grounded on the teacher's internal/storage.EngineOptions (the
// DataDir/CreateIfNotExists directory-layout knobs) and internal/config's
// path defaults, retargeted from a page-file storage engine's working
// directory to apk's on-disk root layout.
package adblayout

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
)

// LayerID identifies one filesystem layer of a managed root.
// apk_database.h fixes the first two: root=0, uvol=1; any further
// layers occupy contiguous ids starting at 2.
type LayerID int

const (
	LayerRoot LayerID = 0
	LayerUvol LayerID = 1
)

// Options configures a managed root, mirroring the shape of the
// teacher's EngineOptions (DataDir/CreateIfNotExists) narrowed to what
// an apk root actually needs.
type Options struct {
	// Root is the managed root directory.
	Root string
	// CreateIfNotExists creates Root and its subdirectories if missing.
	// Default: true.
	CreateIfNotExists bool
}

// DefaultOptions returns Options with CreateIfNotExists enabled.
func DefaultOptions(root string) Options {
	return Options{Root: root, CreateIfNotExists: true}
}

// ErrNotExist is returned when Root is missing and CreateIfNotExists is
// false.
var ErrNotExist = errors.New("adblayout: managed root does not exist")

// Layout resolves every well-known path under a managed root.
type Layout struct {
	opts Options
}

// Open resolves (and, if requested, creates) the directory layout under
// opts.Root.
func Open(opts Options) (*Layout, error) {
	l := &Layout{opts: opts}
	info, err := os.Stat(opts.Root)
	switch {
	case err == nil && !info.IsDir():
		return nil, errors.New("adblayout: root exists and is not a directory")
	case os.IsNotExist(err):
		if !opts.CreateIfNotExists {
			return nil, ErrNotExist
		}
		if err := l.ensureDirs(); err != nil {
			return nil, err
		}
	case err != nil:
		return nil, err
	default:
		if opts.CreateIfNotExists {
			if err := l.ensureDirs(); err != nil {
				return nil, err
			}
		}
	}
	return l, nil
}

func (l *Layout) ensureDirs() error {
	for _, dir := range []string{l.opts.Root, l.KeysDir(), l.CacheDir()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return nil
}

// Root returns the managed root directory.
func (l *Layout) Root() string { return l.opts.Root }

// LockFile is the advisory lock taken for the duration of a write
// transaction against the managed root.
func (l *Layout) LockFile() string { return filepath.Join(l.opts.Root, "lib", "apk", "db", "lock") }

// KeysDir holds trusted public keys (see internal/adbsign.KeyRing).
func (l *Layout) KeysDir() string { return filepath.Join(l.opts.Root, "etc", "apk", "keys") }

// InstalledDBFile holds the serialized InstalledDB.
func (l *Layout) InstalledDBFile() string {
	return filepath.Join(l.opts.Root, "lib", "apk", "db", "installed")
}

// CacheDir is the root of the repository cache.
func (l *Layout) CacheDir() string { return filepath.Join(l.opts.Root, "etc", "apk", "cache") }

// RepoCacheDir returns the cache subdirectory for one repository URL,
// keyed by a content hash of the URL so arbitrary repo URLs map to a
// filesystem-safe directory name.
func (l *Layout) RepoCacheDir(repoURL string) string {
	return filepath.Join(l.CacheDir(), RepoURLHash(repoURL))
}

// RepoIndexFile returns the cached index file path for one repository URL.
func (l *Layout) RepoIndexFile(repoURL string) string {
	return filepath.Join(l.RepoCacheDir(repoURL), "APKINDEX.tar.gz")
}

// RepoURLHash returns the filesystem-safe cache key for a repository URL:
// the hex-encoded SHA-256 digest, truncated to apk-tools' convention of
// an 8-character prefix (collisions are acceptable for a cache key, not
// for content addressing).
func RepoURLHash(repoURL string) string {
	sum := sha256.Sum256([]byte(repoURL))
	return hex.EncodeToString(sum[:])[:8]
}
