// Package adbstream models the seam of a multipart upstream byte stream:
// the typed boundary events a tar/gzip-like container exposes as it is
// read, and a publish/subscribe dispatcher for them (spec.md §6).
//
// It does not decode gzip or tar itself - those containers stay opaque
// upstream streams (see SPEC_FULL.md §11 Non-goals); this package only
// gives callers (signature verification, CLI progress) a seam to observe
// as bytes flow past.
package adbstream

import "time"

// Kind identifies a point in a multipart stream, mirroring
// original_source's gunzip.c boundary callback taxonomy.
type Kind uint8

const (
	// Boundary marks the start of a new member (e.g. a tar entry header).
	Boundary Kind = iota + 1
	// Data marks a chunk of the current member's payload.
	Data
	// End marks the end of the whole stream.
	End
)

func (k Kind) String() string {
	switch k {
	case Boundary:
		return "boundary"
	case Data:
		return "data"
	case End:
		return "end"
	default:
		return "unknown"
	}
}

// Event is a single multipart boundary event.
type Event struct {
	// Token is a monotonically increasing sequence number assigned by
	// Dispatcher.Publish.
	Token uint64
	Kind  Kind
	// Member is the current member name, set on Boundary events.
	Member string
	// Chunk is the raw bytes delivered by a Data event. Callers must not
	// retain it past the callback; the underlying array is reused.
	Chunk []byte
	// Timestamp is when the event was published.
	Timestamp time.Time
}

// Clone makes a copy of the event safe to retain past the callback that
// received it, copying Chunk's backing array.
func (e *Event) Clone() *Event {
	clone := &Event{
		Token:     e.Token,
		Kind:      e.Kind,
		Member:    e.Member,
		Timestamp: e.Timestamp,
	}
	if e.Chunk != nil {
		clone.Chunk = append([]byte(nil), e.Chunk...)
	}
	return clone
}
