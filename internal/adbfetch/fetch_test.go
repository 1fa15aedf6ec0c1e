package adbfetch

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestOpenFileNotFound(t *testing.T) {
	f := New()
	_, err := f.Open(filepath.Join(t.TempDir(), "missing"), time.Time{})
	if err != ErrnoFor(CodeNotFound) {
		t.Fatalf("expected ENOENT-equivalent, got %v", err)
	}
}

func TestOpenFileUnchangedSince(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "index")
	if err := os.WriteFile(path, []byte("data"), 0o644); err != nil {
		t.Fatal(err)
	}
	f := New()
	_, err := f.Open(path, time.Now().Add(time.Hour))
	if err != ErrnoFor(CodeUnchanged) {
		t.Fatalf("expected EALREADY-equivalent, got %v", err)
	}
}

func TestOpenFileReadsContent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "index")
	if err := os.WriteFile(path, []byte("hello"), 0o644); err != nil {
		t.Fatal(err)
	}
	f := New()
	s, err := f.Open(path, time.Time{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer s.Close()
	buf := make([]byte, 5)
	n, _ := s.Read(buf)
	if string(buf[:n]) != "hello" {
		t.Errorf("read %q, want hello", buf[:n])
	}
}

func TestOpenBadURL(t *testing.T) {
	f := New()
	_, err := f.Open("ftp://[bad", time.Time{})
	if err != ErrBadURL {
		t.Fatalf("expected ErrBadURL, got %v", err)
	}
}

func TestOpenHTTPNotModified(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotModified)
	}))
	defer srv.Close()

	f := New()
	_, err := f.Open(srv.URL, time.Now())
	if err != ErrnoFor(CodeUnchanged) {
		t.Fatalf("expected unchanged, got %v", err)
	}
}

func TestOpenHTTPOK(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("remote-data"))
	}))
	defer srv.Close()

	f := New()
	s, err := f.Open(srv.URL, time.Time{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer s.Close()
	buf := make([]byte, 32)
	n, _ := s.Read(buf)
	if string(buf[:n]) != "remote-data" {
		t.Errorf("read %q, want remote-data", buf[:n])
	}
}
