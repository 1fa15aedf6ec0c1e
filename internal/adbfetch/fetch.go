// Package adbfetch defines the fetch-layer interface the ADB core's
// consumer side uses to turn a URL into a byte stream (spec.md §6):
// "open(url, since) -> stream", with file: URLs opened locally and
// http(s) URLs fetched remotely honoring If-Modified-Since, and a
// fixed table normalizing fetch failures to POSIX errno values. ftp:
// URLs are not fetched; Open rejects them as BAD-URL.
package adbfetch

import (
	"errors"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"
)

// Code is one of apk-tools' FETCH_* result codes, kept as a named type
// so the errno mapping table (ErrnoFor) is exhaustive and switchable.
type Code int

const (
	CodeOK Code = iota
	CodeAuth
	CodeDown
	CodeUnavailable
	CodeNotFound
	CodeUnchanged
)

// ErrnoFor normalizes a fetch Code to the POSIX errno apk-tools reports
// it as, per spec.md §6's fixed table.
func ErrnoFor(c Code) error {
	switch c {
	case CodeOK:
		return nil
	case CodeAuth:
		return os.ErrPermission // EACCES
	case CodeDown:
		return errConnRefused
	case CodeUnavailable:
		return errUnavailable
	case CodeNotFound:
		return os.ErrNotExist // ENOENT
	case CodeUnchanged:
		return errAlready // EALREADY
	default:
		return errUnavailable
	}
}

var (
	errConnRefused = errors.New("adbfetch: connection refused")
	errUnavailable = errors.New("adbfetch: service unavailable")
	errAlready     = errors.New("adbfetch: unchanged since last fetch")

	// ErrBadURL is returned when url fails to parse (spec.md §7, BAD-URL).
	ErrBadURL = errors.New("adbfetch: URL does not parse")
)

// Stream is a fetched byte stream with the mtime metadata the ADB
// consumer-side contract exposes alongside read/close.
type Stream interface {
	io.ReadCloser
	ModTime() time.Time
}

// Fetcher opens a byte stream for a URL, optionally skipping the fetch
// entirely (CodeUnchanged/EALREADY) when the resource has not changed
// since the given time.
type Fetcher struct {
	Client *http.Client
}

// New creates a Fetcher with a default HTTP client.
func New() *Fetcher {
	return &Fetcher{Client: http.DefaultClient}
}

// Open opens url, honoring If-Modified-Since when since is non-zero.
// file: URLs (and bare paths) are opened locally; http/https URLs are
// fetched remotely; any other scheme is rejected as BAD-URL.
func (f *Fetcher) Open(rawURL string, since time.Time) (Stream, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, ErrBadURL
	}
	switch u.Scheme {
	case "", "file":
		return f.openFile(u.Path, since)
	case "http", "https":
		return f.openHTTP(rawURL, since)
	default:
		return nil, ErrBadURL
	}
}

func (f *Fetcher) openFile(path string, since time.Time) (Stream, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrnoFor(CodeNotFound)
		}
		if os.IsPermission(err) {
			return nil, ErrnoFor(CodeAuth)
		}
		return nil, err
	}
	if !since.IsZero() && !info.ModTime().After(since) {
		return nil, ErrnoFor(CodeUnchanged)
	}
	file, err := os.Open(path)
	if err != nil {
		if os.IsPermission(err) {
			return nil, ErrnoFor(CodeAuth)
		}
		return nil, err
	}
	return &fileStream{File: file, modTime: info.ModTime()}, nil
}

type fileStream struct {
	*os.File
	modTime time.Time
}

func (s *fileStream) ModTime() time.Time { return s.modTime }

func (f *Fetcher) openHTTP(rawURL string, since time.Time) (Stream, error) {
	req, err := http.NewRequest(http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, ErrBadURL
	}
	if !since.IsZero() {
		req.Header.Set("If-Modified-Since", since.UTC().Format(http.TimeFormat))
	}
	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, ErrnoFor(CodeDown)
	}
	switch resp.StatusCode {
	case http.StatusOK:
		modTime := since
		if lm := resp.Header.Get("Last-Modified"); lm != "" {
			if t, err := http.ParseTime(lm); err == nil {
				modTime = t
			}
		}
		return &httpStream{ReadCloser: resp.Body, modTime: modTime}, nil
	case http.StatusNotModified:
		resp.Body.Close()
		return nil, ErrnoFor(CodeUnchanged)
	case http.StatusUnauthorized, http.StatusForbidden:
		resp.Body.Close()
		return nil, ErrnoFor(CodeAuth)
	case http.StatusNotFound:
		resp.Body.Close()
		return nil, ErrnoFor(CodeNotFound)
	default:
		resp.Body.Close()
		return nil, ErrnoFor(CodeUnavailable)
	}
}

type httpStream struct {
	io.ReadCloser
	modTime time.Time
}

func (s *httpStream) ModTime() time.Time { return s.modTime }
