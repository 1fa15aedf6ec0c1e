package adbstream

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestPipeDeliversBoundaryAndDataEvents(t *testing.T) {
	var kinds []Kind
	var dst bytes.Buffer
	src := strings.NewReader("hello")
	err := Pipe(&dst, src, func() (string, bool) { return "only-member", false }, nil, func(e Event) error {
		kinds = append(kinds, e.Kind)
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dst.String() != "hello" {
		t.Errorf("copied %q, want %q", dst.String(), "hello")
	}
	if len(kinds) < 2 || kinds[0] != Boundary || kinds[len(kinds)-1] != End {
		t.Errorf("unexpected event sequence: %v", kinds)
	}
}

func TestPipeCancellation(t *testing.T) {
	var dst bytes.Buffer
	src := strings.NewReader("hello")
	cancel := errors.New("stop")
	err := Pipe(&dst, src, func() (string, bool) { return "m", false }, nil, func(e Event) error {
		return cancel
	})
	if err != ErrCanceled {
		t.Fatalf("expected ErrCanceled, got %v", err)
	}
}

func TestDispatcherPublishMatchesFilter(t *testing.T) {
	d := NewDispatcher()
	sub := d.Subscribe(MatchKinds(Boundary))
	d.Publish(Event{Kind: Boundary, Member: "x"})
	d.Publish(Event{Kind: Data})

	select {
	case e := <-sub.Channel:
		if e.Kind != Boundary {
			t.Errorf("expected Boundary, got %v", e.Kind)
		}
	default:
		t.Fatal("expected a buffered boundary event")
	}
	select {
	case e := <-sub.Channel:
		t.Fatalf("did not expect a second event, got %v", e.Kind)
	default:
	}
}

func TestDispatcherCloseStopsSubscribe(t *testing.T) {
	d := NewDispatcher()
	d.Close()
	if sub := d.Subscribe(MatchAll()); sub != nil {
		t.Error("expected Subscribe to return nil once closed")
	}
}
