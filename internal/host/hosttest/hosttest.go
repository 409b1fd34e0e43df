// Package hosttest provides a scripted in-memory host for tests.
package hosttest

import (
	"errors"
	"fmt"
	"slices"
	"sort"
	"time"

	"github.com/marcus/scratchpad/internal/event"
	"github.com/marcus/scratchpad/internal/host"
)

// ErrInjected is returned by operations configured to fail.
var ErrInjected = errors.New("injected failure")

// Buffer is the fake state of one buffer.
type Buffer struct {
	Name        string
	Lines       []string
	Modified    bool
	Filetype    string
	UndoEnabled bool
	// UndoToggles records every SetUndoEnabled call in order.
	UndoToggles []bool
	Keys        map[string]func()
}

// Window is the fake state of one window.
type Window struct {
	Buffer  host.BufferID
	Float   *host.FloatConfig
	Split   *host.SplitConfig
	Size    host.Size
	Options host.WindowOptions
}

// Note is a recorded notification.
type Note struct {
	Level   host.Level
	Message string
}

type timer struct {
	at  time.Duration
	seq int
	fn  func()
}

// Failures selects operations that return ErrInjected.
type Failures struct {
	CreateBuffer  bool
	SetBufferName bool
	OpenFloat     bool
	OpenSplit     bool
	CloseWindow   bool
	Edit          bool
}

// Host is an in-memory host.Host. Scheduled work only runs when the test
// calls Advance or Flush.
type Host struct {
	Buffers map[host.BufferID]*Buffer
	Windows map[host.WindowID]*Window
	Focused host.WindowID

	Display    host.Size
	HasDisplay bool

	Fail Failures

	Notes   []Note
	Emitted []event.Event
	Edited  []string
	Watched []string

	dispatcher *event.Dispatcher
	nextBuf    host.BufferID
	nextWin    host.WindowID
	now        time.Duration
	seq        int
	timers     []timer
	deferred   []func()
}

var _ host.Host = (*Host)(nil)

// New returns a host with a 200x50 display.
func New() *Host {
	return &Host{
		Buffers:    make(map[host.BufferID]*Buffer),
		Windows:    make(map[host.WindowID]*Window),
		Display:    host.Size{Width: 200, Height: 50},
		HasDisplay: true,
		dispatcher: event.New(),
	}
}

// CreateBuffer implements host.Buffers.
func (h *Host) CreateBuffer() (host.BufferID, error) {
	if h.Fail.CreateBuffer {
		return 0, ErrInjected
	}
	h.nextBuf++
	h.Buffers[h.nextBuf] = &Buffer{Lines: []string{""}, UndoEnabled: true, Keys: make(map[string]func())}
	return h.nextBuf, nil
}

// DeleteBuffer implements host.Buffers. Windows showing the buffer close.
func (h *Host) DeleteBuffer(buf host.BufferID) error {
	if _, ok := h.Buffers[buf]; !ok {
		return host.ErrInvalidBuffer
	}
	for _, win := range h.windowIDs() {
		if h.Windows[win].Buffer == buf {
			h.closeWindow(win)
		}
	}
	delete(h.Buffers, buf)
	h.dispatcher.DropBuffer(int(buf))
	return nil
}

// BufferValid implements host.Buffers.
func (h *Host) BufferValid(buf host.BufferID) bool {
	_, ok := h.Buffers[buf]
	return ok
}

// BufferName implements host.Buffers.
func (h *Host) BufferName(buf host.BufferID) string {
	if b, ok := h.Buffers[buf]; ok {
		return b.Name
	}
	return ""
}

// SetBufferName implements host.Buffers.
func (h *Host) SetBufferName(buf host.BufferID, name string) error {
	b, ok := h.Buffers[buf]
	if !ok {
		return host.ErrInvalidBuffer
	}
	if h.Fail.SetBufferName {
		return ErrInjected
	}
	b.Name = name
	return nil
}

// Lines implements host.Buffers.
func (h *Host) Lines(buf host.BufferID) ([]string, error) {
	b, ok := h.Buffers[buf]
	if !ok {
		return nil, host.ErrInvalidBuffer
	}
	return slices.Clone(b.Lines), nil
}

// SetLines implements host.Buffers. Like the terminal host it does not
// change the modified flag.
func (h *Host) SetLines(buf host.BufferID, lines []string) error {
	b, ok := h.Buffers[buf]
	if !ok {
		return host.ErrInvalidBuffer
	}
	b.Lines = slices.Clone(lines)
	return nil
}

// Modified implements host.Buffers.
func (h *Host) Modified(buf host.BufferID) bool {
	if b, ok := h.Buffers[buf]; ok {
		return b.Modified
	}
	return false
}

// SetModified implements host.Buffers.
func (h *Host) SetModified(buf host.BufferID, modified bool) error {
	b, ok := h.Buffers[buf]
	if !ok {
		return host.ErrInvalidBuffer
	}
	b.Modified = modified
	return nil
}

// SetFiletype implements host.Buffers.
func (h *Host) SetFiletype(buf host.BufferID, filetype string) error {
	b, ok := h.Buffers[buf]
	if !ok {
		return host.ErrInvalidBuffer
	}
	b.Filetype = filetype
	return nil
}

// SetUndoEnabled implements host.Buffers.
func (h *Host) SetUndoEnabled(buf host.BufferID, enabled bool) error {
	b, ok := h.Buffers[buf]
	if !ok {
		return host.ErrInvalidBuffer
	}
	b.UndoEnabled = enabled
	b.UndoToggles = append(b.UndoToggles, enabled)
	return nil
}

// OpenFloat implements host.Windows. The window size is the requested size.
func (h *Host) OpenFloat(buf host.BufferID, cfg host.FloatConfig) (host.WindowID, error) {
	if h.Fail.OpenFloat {
		return 0, ErrInjected
	}
	if !h.BufferValid(buf) {
		return 0, host.ErrInvalidBuffer
	}
	c := cfg
	return h.openWindow(&Window{Buffer: buf, Float: &c, Size: host.Size{Width: cfg.Width, Height: cfg.Height}}), nil
}

// OpenSplit implements host.Windows. The window spans the display along the
// dimension it does not control.
func (h *Host) OpenSplit(buf host.BufferID, cfg host.SplitConfig) (host.WindowID, error) {
	if h.Fail.OpenSplit {
		return 0, ErrInjected
	}
	if !h.BufferValid(buf) {
		return 0, host.ErrInvalidBuffer
	}
	size := host.Size{Width: h.Display.Width, Height: cfg.Size}
	if cfg.Vertical {
		size = host.Size{Width: cfg.Size, Height: h.Display.Height}
	}
	c := cfg
	return h.openWindow(&Window{Buffer: buf, Split: &c, Size: size}), nil
}

func (h *Host) openWindow(w *Window) host.WindowID {
	h.nextWin++
	h.Windows[h.nextWin] = w
	return h.nextWin
}

// CloseWindow implements host.Windows and emits WinClosed.
func (h *Host) CloseWindow(win host.WindowID) error {
	if _, ok := h.Windows[win]; !ok {
		return host.ErrInvalidWindow
	}
	if h.Fail.CloseWindow {
		return ErrInjected
	}
	h.closeWindow(win)
	return nil
}

func (h *Host) closeWindow(win host.WindowID) {
	w := h.Windows[win]
	delete(h.Windows, win)
	if h.Focused == win {
		h.Focused = 0
	}
	h.Emit(event.Event{Type: event.WinClosed, Window: int(win), Buffer: int(w.Buffer)})
}

// WindowValid implements host.Windows.
func (h *Host) WindowValid(win host.WindowID) bool {
	_, ok := h.Windows[win]
	return ok
}

// WindowBuffer implements host.Windows.
func (h *Host) WindowBuffer(win host.WindowID) (host.BufferID, error) {
	w, ok := h.Windows[win]
	if !ok {
		return 0, host.ErrInvalidWindow
	}
	return w.Buffer, nil
}

// WindowSize implements host.Windows.
func (h *Host) WindowSize(win host.WindowID) (host.Size, error) {
	w, ok := h.Windows[win]
	if !ok {
		return host.Size{}, host.ErrInvalidWindow
	}
	return w.Size, nil
}

// FocusWindow implements host.Windows.
func (h *Host) FocusWindow(win host.WindowID) error {
	if _, ok := h.Windows[win]; !ok {
		return host.ErrInvalidWindow
	}
	h.Focused = win
	return nil
}

// SetWindowOptions implements host.Windows.
func (h *Host) SetWindowOptions(win host.WindowID, opts host.WindowOptions) error {
	w, ok := h.Windows[win]
	if !ok {
		return host.ErrInvalidWindow
	}
	w.Options = opts
	return nil
}

// DisplaySize implements host.Windows.
func (h *Host) DisplaySize() (host.Size, bool) {
	return h.Display, h.HasDisplay
}

// MapKey implements host.Keymaps.
func (h *Host) MapKey(buf host.BufferID, key, _ string, action func()) error {
	b, ok := h.Buffers[buf]
	if !ok {
		return host.ErrInvalidBuffer
	}
	b.Keys[key] = action
	return nil
}

// UnmapKey implements host.Keymaps.
func (h *Host) UnmapKey(buf host.BufferID, key string) error {
	b, ok := h.Buffers[buf]
	if !ok {
		return host.ErrInvalidBuffer
	}
	delete(b.Keys, key)
	return nil
}

// Subscribe implements host.Events.
func (h *Host) Subscribe(filter event.Filter, handler event.Handler) event.Subscription {
	return h.dispatcher.Subscribe(filter, handler)
}

// Unsubscribe implements host.Events.
func (h *Host) Unsubscribe(sub event.Subscription) {
	h.dispatcher.Unsubscribe(sub)
}

// Emit implements host.Events and records the event.
func (h *Host) Emit(ev event.Event) {
	h.Emitted = append(h.Emitted, ev)
	h.dispatcher.Emit(ev)
}

// After implements host.Scheduler on the virtual clock.
func (h *Host) After(d time.Duration, fn func()) {
	h.seq++
	h.timers = append(h.timers, timer{at: h.now + d, seq: h.seq, fn: fn})
}

// Defer implements host.Scheduler.
func (h *Host) Defer(fn func()) {
	h.deferred = append(h.deferred, fn)
}

// Notify implements host.Notifier.
func (h *Host) Notify(level host.Level, message string) {
	h.Notes = append(h.Notes, Note{Level: level, Message: message})
}

// Edit implements host.Editor.
func (h *Host) Edit(path string) error {
	if h.Fail.Edit {
		return ErrInjected
	}
	h.Edited = append(h.Edited, path)
	return nil
}

// WatchFile implements host.Watcher.
func (h *Host) WatchFile(path string) error {
	h.Watched = append(h.Watched, path)
	return nil
}

// Flush runs deferred work queued so far, including work queued by it.
func (h *Host) Flush() {
	for len(h.deferred) > 0 {
		queue := h.deferred
		h.deferred = nil
		for _, fn := range queue {
			fn()
		}
	}
}

// Advance moves the virtual clock forward by d, running deferred work and
// every timer that comes due, in order.
func (h *Host) Advance(d time.Duration) {
	h.Flush()
	end := h.now + d
	for {
		sort.SliceStable(h.timers, func(i, j int) bool {
			if h.timers[i].at != h.timers[j].at {
				return h.timers[i].at < h.timers[j].at
			}
			return h.timers[i].seq < h.timers[j].seq
		})
		if len(h.timers) == 0 || h.timers[0].at > end {
			break
		}
		t := h.timers[0]
		h.timers = h.timers[1:]
		h.now = t.at
		t.fn()
		h.Flush()
	}
	h.now = end
}

// PendingTimers returns the number of scheduled timers not yet run.
func (h *Host) PendingTimers() int { return len(h.timers) }

// Press runs the action bound to key in buf.
func (h *Host) Press(buf host.BufferID, key string) error {
	b, ok := h.Buffers[buf]
	if !ok {
		return host.ErrInvalidBuffer
	}
	action, ok := b.Keys[key]
	if !ok {
		return fmt.Errorf("no mapping for %q", key)
	}
	action()
	return nil
}

// Type replaces buf's content the way a user edit would, marking it modified.
func (h *Host) Type(buf host.BufferID, lines ...string) {
	b := h.Buffers[buf]
	b.Lines = slices.Clone(lines)
	b.Modified = true
}

// Resize changes a window's size as if the user dragged it.
func (h *Host) Resize(win host.WindowID, size host.Size) {
	h.Windows[win].Size = size
}

// EmittedTypes returns the types of every recorded event.
func (h *Host) EmittedTypes() []event.Type {
	types := make([]event.Type, len(h.Emitted))
	for i, ev := range h.Emitted {
		types[i] = ev.Type
	}
	return types
}

// NotesAt returns recorded notifications with the given level.
func (h *Host) NotesAt(level host.Level) []Note {
	var out []Note
	for _, n := range h.Notes {
		if n.Level == level {
			out = append(out, n)
		}
	}
	return out
}

func (h *Host) windowIDs() []host.WindowID {
	ids := make([]host.WindowID, 0, len(h.Windows))
	for id := range h.Windows {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}
