// Package event is a synchronous publish/subscribe dispatcher for editor
// lifecycle notifications.
package event

import (
	"fmt"
	"log/slog"
	"slices"
	"sync"
)

// Type identifies a lifecycle notification.
type Type int

const (
	BufEnter Type = iota
	BufLeave
	BufHidden
	WinEnter
	WinLeave
	WinClosed
	FocusGained
	FocusLost
	Resized
	Exiting
	FileChanged
)

var typeNames = [...]string{
	BufEnter:    "BufEnter",
	BufLeave:    "BufLeave",
	BufHidden:   "BufHidden",
	WinEnter:    "WinEnter",
	WinLeave:    "WinLeave",
	WinClosed:   "WinClosed",
	FocusGained: "FocusGained",
	FocusLost:   "FocusLost",
	Resized:     "Resized",
	Exiting:     "Exiting",
	FileChanged: "FileChanged",
}

func (t Type) String() string {
	if t < 0 || int(t) >= len(typeNames) {
		return fmt.Sprintf("Type(%d)", int(t))
	}
	return typeNames[t]
}

// Event is a single notification. Buffer and Window are host handles (zero
// when not applicable); Path is set for FileChanged.
type Event struct {
	Type   Type
	Buffer int
	Window int
	Path   string
}

// Filter selects events. A zero Buffer matches every buffer; otherwise only
// events carrying that buffer are delivered.
type Filter struct {
	Types  []Type
	Buffer int
}

func (f Filter) matches(ev Event) bool {
	if !slices.Contains(f.Types, ev.Type) {
		return false
	}
	return f.Buffer == 0 || f.Buffer == ev.Buffer
}

// Handler receives matching events.
type Handler func(Event)

// Subscription identifies a registered handler.
type Subscription uint64

type subscriber struct {
	id      Subscription
	filter  Filter
	handler Handler
}

// Dispatcher delivers events synchronously, in subscription order.
type Dispatcher struct {
	mu     sync.Mutex
	subs   []subscriber
	nextID Subscription
	closed bool
	logger *slog.Logger
}

// New creates a dispatcher that logs to slog.Default.
func New() *Dispatcher {
	return NewWithLogger(slog.Default())
}

// NewWithLogger creates a dispatcher with the given logger.
func NewWithLogger(logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{logger: logger}
}

// Subscribe registers handler for events matching filter.
func (d *Dispatcher) Subscribe(filter Filter, handler Handler) Subscription {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.nextID++
	d.subs = append(d.subs, subscriber{id: d.nextID, filter: filter, handler: handler})
	return d.nextID
}

// Unsubscribe removes a subscription. Unknown ids are ignored.
func (d *Dispatcher) Unsubscribe(id Subscription) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.subs = slices.DeleteFunc(d.subs, func(s subscriber) bool { return s.id == id })
}

// DropBuffer removes every subscription scoped to buf.
func (d *Dispatcher) DropBuffer(buf int) {
	if buf == 0 {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	d.subs = slices.DeleteFunc(d.subs, func(s subscriber) bool { return s.filter.Buffer == buf })
}

// Emit delivers ev to every matching subscriber before returning. Handlers
// may subscribe, unsubscribe or emit; they see the subscriber list as it was
// when Emit started.
func (d *Dispatcher) Emit(ev Event) {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	snapshot := slices.Clone(d.subs)
	d.mu.Unlock()

	d.logger.Debug("event", "type", ev.Type, "buffer", ev.Buffer, "window", ev.Window, "path", ev.Path)
	for _, s := range snapshot {
		if s.filter.matches(ev) {
			d.deliver(s, ev)
		}
	}
}

func (d *Dispatcher) deliver(s subscriber, ev Event) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("event handler panicked", "type", ev.Type, "subscription", s.id, "panic", r)
		}
	}()
	s.handler(ev)
}

// Close stops delivery and drops all subscriptions.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.closed = true
	d.subs = nil
}
