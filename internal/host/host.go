// Package host defines what the scratchpad needs from the editor it runs in.
//
// The scratchpad core never touches a terminal or a screen directly; it drives
// buffers, windows, key bindings and lifecycle events through these
// interfaces. internal/termhost is the terminal implementation and
// internal/host/hosttest a scripted fake for tests.
package host

import (
	"errors"
	"time"

	"github.com/marcus/scratchpad/internal/event"
)

// BufferID identifies an editable text surface. Zero is never a valid buffer.
type BufferID int

// WindowID identifies an on-screen presentation surface. Zero is never valid.
type WindowID int

var (
	ErrInvalidBuffer = errors.New("invalid buffer")
	ErrInvalidWindow = errors.New("invalid window")
)

// Size is a width/height pair in cells.
type Size struct {
	Width  int
	Height int
}

// FloatConfig positions a floating overlay. Width and Height exclude the
// border; Row and Col are the top-left corner of the content area.
type FloatConfig struct {
	Width    int
	Height   int
	Row      int
	Col      int
	Border   string
	Title    string
	TitlePos string
}

// SplitConfig describes a side split. Size is rows for a horizontal split and
// columns for a vertical one.
type SplitConfig struct {
	Vertical bool
	Size     int
}

// WindowOptions are the per-window display options.
type WindowOptions struct {
	Wrap           bool
	LineBreak      bool
	CursorLine     bool
	Number         bool
	RelativeNumber bool
	SignColumn     bool
	FoldColumn     bool
}

// Level is a notification severity.
type Level int

const (
	LevelInfo Level = iota
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	default:
		return "info"
	}
}

// Buffers allocates and edits text surfaces.
type Buffers interface {
	CreateBuffer() (BufferID, error)
	// DeleteBuffer destroys the buffer, discarding unsaved content.
	DeleteBuffer(buf BufferID) error
	BufferValid(buf BufferID) bool
	BufferName(buf BufferID) string
	SetBufferName(buf BufferID, name string) error
	Lines(buf BufferID) ([]string, error)
	SetLines(buf BufferID, lines []string) error
	Modified(buf BufferID) bool
	SetModified(buf BufferID, modified bool) error
	SetFiletype(buf BufferID, filetype string) error
	// SetUndoEnabled toggles undo history recording for buf.
	SetUndoEnabled(buf BufferID, enabled bool) error
}

// Windows creates and inspects presentation surfaces.
type Windows interface {
	OpenFloat(buf BufferID, cfg FloatConfig) (WindowID, error)
	OpenSplit(buf BufferID, cfg SplitConfig) (WindowID, error)
	CloseWindow(win WindowID) error
	WindowValid(win WindowID) bool
	WindowBuffer(win WindowID) (BufferID, error)
	WindowSize(win WindowID) (Size, error)
	FocusWindow(win WindowID) error
	SetWindowOptions(win WindowID, opts WindowOptions) error
	// DisplaySize reports the available display area; ok is false when no
	// display is attached.
	DisplaySize() (size Size, ok bool)
}

// Keymaps binds key sequences to actions scoped to one buffer.
type Keymaps interface {
	MapKey(buf BufferID, key, desc string, action func()) error
	// UnmapKey removes a mapping; an unmapped key is not an error.
	UnmapKey(buf BufferID, key string) error
}

// Events subscribes to and emits lifecycle notifications.
type Events interface {
	Subscribe(filter event.Filter, handler event.Handler) event.Subscription
	Unsubscribe(sub event.Subscription)
	Emit(ev event.Event)
}

// Scheduler defers work onto the host's event loop.
type Scheduler interface {
	// After runs fn on the event loop once d has elapsed.
	After(d time.Duration, fn func())
	// Defer runs fn on the next iteration of the event loop.
	Defer(fn func())
}

// Notifier is the single user-facing message channel.
type Notifier interface {
	Notify(level Level, message string)
}

// Editor opens files in the caller's current window.
type Editor interface {
	Edit(path string) error
}

// Watcher reports external changes to files as event.FileChanged.
type Watcher interface {
	WatchFile(path string) error
}

// Host is the full collaborator surface.
type Host interface {
	Buffers
	Windows
	Keymaps
	Events
	Scheduler
	Notifier
	Editor
	Watcher
}
