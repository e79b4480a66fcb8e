// Package widget is a small headless window toolkit: windows with a
// hidden/loading/shown lifecycle, tab pages, form controls and an event
// emitter. Widgets are single-threaded; every method is expected to run on
// the goroutine of the Dispatcher they were built with.
package widget

import "sync"

type Event string

const (
	EventLoaded     Event = "loaded"
	EventBeforeShow Event = "beforeShow"
	EventShow       Event = "show"
	EventHide       Event = "hide"
	EventChange     Event = "change"
	EventClick      Event = "click"
	EventError      Event = "error"
)

type Listener func(arg interface{})

type listener struct {
	id uint64
	fn Listener
}

// Emitter keeps listeners per event. The zero value is ready to use.
type Emitter struct {
	mu        sync.Mutex
	nextID    uint64
	listeners map[Event][]listener
}

// Subscription identifies one registered listener.
type Subscription struct {
	e     *Emitter
	event Event
	id    uint64
}

// Remove deregisters the listener. Removing twice is harmless.
func (s Subscription) Remove() {
	if s.e != nil {
		s.e.off(s.event, s.id)
	}
}

func (e *Emitter) On(event Event, fn Listener) Subscription {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.listeners == nil {
		e.listeners = map[Event][]listener{}
	}
	e.nextID++
	e.listeners[event] = append(e.listeners[event], listener{id: e.nextID, fn: fn})
	return Subscription{e: e, event: event, id: e.nextID}
}

// Once registers fn for the next emission of event only.
func (e *Emitter) Once(event Event, fn Listener) Subscription {
	var sub Subscription
	sub = e.On(event, func(arg interface{}) {
		sub.Remove()
		fn(arg)
	})
	return sub
}

func (e *Emitter) off(event Event, id uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	ls := e.listeners[event]
	for i, l := range ls {
		if l.id == id {
			e.listeners[event] = append(ls[:i:i], ls[i+1:]...)
			return
		}
	}
}

// Emit calls the listeners registered for event at the time of the call,
// in registration order.
func (e *Emitter) Emit(event Event, arg interface{}) {
	e.mu.Lock()
	ls := make([]listener, len(e.listeners[event]))
	copy(ls, e.listeners[event])
	e.mu.Unlock()
	for _, l := range ls {
		l.fn(arg)
	}
}

func (e *Emitter) Listeners(event Event) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.listeners[event])
}

func (e *Emitter) RemoveAll() {
	e.mu.Lock()
	e.listeners = nil
	e.mu.Unlock()
}
