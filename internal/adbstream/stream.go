package adbstream

import "io"

// Stream is an opaque upstream byte stream - a fetched repository index,
// a signed package tarball - read member by member. Callers never see
// gzip/tar internals, only the boundary events Pipe publishes as it
// copies bytes through (spec.md §6, §11 Non-goals).
type Stream interface {
	io.ReadCloser
}

// BoundaryFunc observes one event and may cancel the pipe by returning a
// non-nil error, which Pipe then wraps as ErrCanceled - mirroring
// original_source's gunzip.c convention of a positive callback return
// aborting decompression with ECANCELED.
type BoundaryFunc func(Event) error

// Pipe copies src to dst, calling onEvent at each Boundary/Data/End
// event and publishing the same events on disp (if non-nil) for any
// other interested subscriber (e.g. adbsign). next supplies the member
// name for the next Boundary event and whether more members follow; it
// is called once per Boundary. A member returned with more == false is
// the last one read; returning "" with more == false ends the pipe
// without another Boundary. Each member reads src until EOF, so all of
// src's bytes arrive as Data events of the first member.
func Pipe(dst io.Writer, src io.Reader, next func() (member string, more bool), disp *Dispatcher, onEvent BoundaryFunc) error {
	buf := make([]byte, 32*1024)
	for {
		member, more := next()
		if !more && member == "" {
			break
		}
		if err := emit(Event{Kind: Boundary, Member: member}, disp, onEvent); err != nil {
			return err
		}
		for {
			n, err := src.Read(buf)
			if n > 0 {
				if _, werr := dst.Write(buf[:n]); werr != nil {
					return werr
				}
				if eerr := emit(Event{Kind: Data, Chunk: buf[:n]}, disp, onEvent); eerr != nil {
					return eerr
				}
			}
			if err == io.EOF {
				break
			}
			if err != nil {
				return err
			}
		}
		if !more {
			break
		}
	}
	return emit(Event{Kind: End}, disp, onEvent)
}

func emit(e Event, disp *Dispatcher, onEvent BoundaryFunc) error {
	if disp != nil {
		disp.Publish(e)
	}
	if onEvent == nil {
		return nil
	}
	if err := onEvent(e); err != nil {
		return ErrCanceled
	}
	return nil
}
