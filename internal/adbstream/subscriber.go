package adbstream

import (
	"sync/atomic"
	"time"
)

// SubscriberID is a unique identifier for a subscription.
type SubscriberID uint64

// DefaultBufferSize is the subscriber channel's default capacity.
const DefaultBufferSize = 64

// Subscriber receives the boundary events a Dispatcher publishes that
// match its Filter, e.g. the adbsign verifier watching Boundary/End
// events while data streams past.
type Subscriber struct {
	ID      SubscriberID
	Filter  KindFilter
	Channel chan Event
	Created time.Time

	dropped atomic.Uint64
	closed  atomic.Bool
}

// NewSubscriber creates a subscriber with the given filter and buffer size.
func NewSubscriber(id SubscriberID, filter KindFilter, bufferSize int) *Subscriber {
	if bufferSize <= 0 {
		bufferSize = DefaultBufferSize
	}
	return &Subscriber{
		ID:      id,
		Filter:  filter,
		Channel: make(chan Event, bufferSize),
		Created: time.Now(),
	}
}

// Send attempts to deliver event, returning false under backpressure (the
// channel is full) rather than blocking the publisher.
func (s *Subscriber) Send(event Event) bool {
	if s.closed.Load() {
		return false
	}
	select {
	case s.Channel <- event:
		return true
	default:
		s.dropped.Add(1)
		return false
	}
}

// Close closes the subscriber's channel. Safe to call multiple times.
func (s *Subscriber) Close() {
	if s.closed.CompareAndSwap(false, true) {
		close(s.Channel)
	}
}

// IsClosed reports whether Close has been called.
func (s *Subscriber) IsClosed() bool { return s.closed.Load() }

// DroppedCount returns the number of events dropped under backpressure.
func (s *Subscriber) DroppedCount() uint64 { return s.dropped.Load() }
