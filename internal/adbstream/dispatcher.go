package adbstream

import (
	"errors"
	"sync"
	"sync/atomic"
)

// ErrDispatcherClosed describes a dispatcher on which Close has run.
// Subscribe does not return it; it returns a nil *Subscriber instead.
var ErrDispatcherClosed = errors.New("adbstream: dispatcher is closed")

// ErrCanceled is returned when a boundary callback requests cancellation
// by returning a non-nil error, mirroring original_source's gunzip.c
// convention of turning a positive callback return into ECANCELED.
var ErrCanceled = errors.New("adbstream: canceled by boundary callback")

// Dispatcher fans out stream events to subscribers, grounded on the
// teacher's stream.Broker - the same publish/subscribe shape, retargeted
// from LDAP change events to multipart boundary events.
type Dispatcher struct {
	subscribers     sync.Map // map[SubscriberID]*Subscriber
	nextID          atomic.Uint64
	subscriberCount atomic.Int64
	nextToken       atomic.Uint64
	closed          atomic.Bool
}

// NewDispatcher creates an empty dispatcher.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{}
}

// Subscribe registers a new subscription filtered by filter. Returns nil
// once the dispatcher is closed.
func (d *Dispatcher) Subscribe(filter KindFilter) *Subscriber {
	if d.closed.Load() {
		return nil
	}
	id := SubscriberID(d.nextID.Add(1))
	sub := NewSubscriber(id, filter, DefaultBufferSize)
	d.subscribers.Store(id, sub)
	d.subscriberCount.Add(1)
	return sub
}

// Unsubscribe removes and closes a subscription.
func (d *Dispatcher) Unsubscribe(id SubscriberID) {
	if val, ok := d.subscribers.LoadAndDelete(id); ok {
		val.(*Subscriber).Close()
		d.subscriberCount.Add(-1)
	}
}

// Publish assigns event a token and broadcasts it to every subscriber
// whose filter matches.
func (d *Dispatcher) Publish(event Event) {
	if d.closed.Load() {
		return
	}
	event.Token = d.nextToken.Add(1)
	d.subscribers.Range(func(_, value interface{}) bool {
		sub := value.(*Subscriber)
		if sub.Filter.Matches(&event) {
			sub.Send(event)
		}
		return true
	})
}

// HasSubscribers reports whether any subscription is active.
func (d *Dispatcher) HasSubscribers() bool { return d.subscriberCount.Load() > 0 }

// Close closes the dispatcher and every subscriber.
func (d *Dispatcher) Close() {
	if !d.closed.CompareAndSwap(false, true) {
		return
	}
	d.subscribers.Range(func(key, value interface{}) bool {
		value.(*Subscriber).Close()
		d.subscribers.Delete(key)
		return true
	})
	d.subscriberCount.Store(0)
}
