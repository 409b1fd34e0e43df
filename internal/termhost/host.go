// Package termhost is a terminal editor that hosts the scratchpad. It keeps
// buffers in bubbles textareas, lays windows out as a main pane with side
// splits and floating overlays, and runs every callback on the bubbletea
// event loop.
package termhost

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/marcus/scratchpad/internal/event"
	"github.com/marcus/scratchpad/internal/host"
	"github.com/marcus/scratchpad/internal/keymap"
	"github.com/marcus/scratchpad/internal/mouse"
	"github.com/marcus/scratchpad/internal/msg"
	"github.com/marcus/scratchpad/internal/styles"
	"github.com/marcus/scratchpad/internal/watch"
)

const (
	undoLimit   = 200
	noName      = "[No Name]"
	editSaveKey = "ctrl+s"
)

var errMainWindow = errors.New("the main window cannot be closed")

type buffer struct {
	name     string
	area     textarea.Model
	modified bool
	filetype string
	undo     bool
	history  []string
	keys     map[string]func()
}

func (b *buffer) pushHistory(value string) {
	b.history = append(b.history, value)
	if len(b.history) > undoLimit {
		b.history = b.history[len(b.history)-undoLimit:]
	}
}

type windowKind int

const (
	kindMain windowKind = iota
	kindFloat
	kindHSplit
	kindVSplit
)

type window struct {
	buf   host.BufferID
	kind  windowKind
	float host.FloatConfig
	size  int // rows for an hsplit, columns for a vsplit
	opts  host.WindowOptions
}

// Host implements host.Host and tea.Model.
type Host struct {
	logger *slog.Logger
	keys   *keymap.Registry
	events *event.Dispatcher

	buffers map[host.BufferID]*buffer
	windows map[host.WindowID]*window
	order   []host.WindowID // creation order, main first
	main    host.WindowID
	focused host.WindowID
	nextBuf host.BufferID
	nextWin host.WindowID

	width   int
	height  int
	ready   bool
	onReady []func()

	// pending collects commands produced outside a message handler, e.g.
	// timers scheduled during setup. They go out with the next Init or
	// Update.
	pending []tea.Cmd

	prompt     textinput.Model
	prompting  bool
	runCommand func(line string) (string, error)

	toast    *msg.ToastMsg
	toastSeq int
	help     help.Model

	mouse   *mouse.Handler
	dragWin host.WindowID

	watcher *watch.Watcher
}

var (
	_ host.Host = (*Host)(nil)
	_ tea.Model = (*Host)(nil)
)

// New creates a host with an empty main window.
func New(logger *slog.Logger) *Host {
	if logger == nil {
		logger = slog.Default()
	}
	h := &Host{
		logger:  logger,
		keys:    keymap.NewRegistry(),
		events:  event.NewWithLogger(logger),
		buffers: make(map[host.BufferID]*buffer),
		windows: make(map[host.WindowID]*window),
		mouse:   mouse.NewHandler(),
	}
	keymap.RegisterDefaults(h.keys)
	h.registerHandlers()

	h.help = help.New()
	h.help.Styles.ShortKey = styles.KeyHint
	h.help.Styles.ShortDesc = styles.Muted
	h.help.Styles.ShortSeparator = styles.Muted

	h.prompt = textinput.New()
	h.prompt.Prompt = ":"
	h.prompt.Width = 48

	buf, _ := h.CreateBuffer()
	h.main = h.addWindow(&window{buf: buf, kind: kindMain})
	h.focused = h.main
	h.syncFocus()
	return h
}

// Keymap exposes the global key registry so callers can attach handlers.
func (h *Host) Keymap() *keymap.Registry { return h.keys }

// SetCommandRunner installs the handler for lines typed at the prompt. The
// returned text, if any, is shown as a toast.
func (h *Host) SetCommandRunner(run func(line string) (string, error)) {
	h.runCommand = run
}

// OnReady runs fn once the terminal size is known.
func (h *Host) OnReady(fn func()) {
	if h.ready {
		fn()
		return
	}
	h.onReady = append(h.onReady, fn)
}

// Close stops file watching and event delivery.
func (h *Host) Close() error {
	h.events.Close()
	if h.watcher != nil {
		return h.watcher.Close()
	}
	return nil
}

func newArea() textarea.Model {
	ta := textarea.New()
	ta.Prompt = ""
	ta.Placeholder = ""
	ta.ShowLineNumbers = false
	ta.CharLimit = 0
	ta.MaxHeight = 0
	ta.FocusedStyle.CursorLine = lipgloss.NewStyle()
	ta.BlurredStyle.CursorLine = lipgloss.NewStyle()
	return ta
}

// CreateBuffer implements host.Buffers.
func (h *Host) CreateBuffer() (host.BufferID, error) {
	h.nextBuf++
	h.buffers[h.nextBuf] = &buffer{
		area: newArea(),
		undo: true,
		keys: make(map[string]func()),
	}
	return h.nextBuf, nil
}

// DeleteBuffer implements host.Buffers. Windows showing the buffer close;
// the main window gets a fresh empty buffer instead.
func (h *Host) DeleteBuffer(id host.BufferID) error {
	if _, ok := h.buffers[id]; !ok {
		return host.ErrInvalidBuffer
	}
	for _, win := range slices.Clone(h.order) {
		w := h.windows[win]
		if w.buf != id {
			continue
		}
		if win == h.main {
			w.buf, _ = h.CreateBuffer()
			continue
		}
		h.closeWindow(win)
	}
	delete(h.buffers, id)
	h.events.DropBuffer(int(id))
	h.syncFocus()
	return nil
}

// BufferValid implements host.Buffers.
func (h *Host) BufferValid(id host.BufferID) bool {
	_, ok := h.buffers[id]
	return ok
}

// BufferName implements host.Buffers.
func (h *Host) BufferName(id host.BufferID) string {
	if b, ok := h.buffers[id]; ok {
		return b.name
	}
	return ""
}

// SetBufferName implements host.Buffers.
func (h *Host) SetBufferName(id host.BufferID, name string) error {
	b, ok := h.buffers[id]
	if !ok {
		return host.ErrInvalidBuffer
	}
	b.name = name
	return nil
}

// Lines implements host.Buffers.
func (h *Host) Lines(id host.BufferID) ([]string, error) {
	b, ok := h.buffers[id]
	if !ok {
		return nil, host.ErrInvalidBuffer
	}
	return strings.Split(b.area.Value(), "\n"), nil
}

// SetLines implements host.Buffers. The modified flag is left alone.
func (h *Host) SetLines(id host.BufferID, lines []string) error {
	b, ok := h.buffers[id]
	if !ok {
		return host.ErrInvalidBuffer
	}
	if b.undo {
		b.pushHistory(b.area.Value())
	}
	b.area.SetValue(strings.Join(lines, "\n"))
	return nil
}

// Modified implements host.Buffers.
func (h *Host) Modified(id host.BufferID) bool {
	if b, ok := h.buffers[id]; ok {
		return b.modified
	}
	return false
}

// SetModified implements host.Buffers.
func (h *Host) SetModified(id host.BufferID, modified bool) error {
	b, ok := h.buffers[id]
	if !ok {
		return host.ErrInvalidBuffer
	}
	b.modified = modified
	return nil
}

// SetFiletype implements host.Buffers.
func (h *Host) SetFiletype(id host.BufferID, filetype string) error {
	b, ok := h.buffers[id]
	if !ok {
		return host.ErrInvalidBuffer
	}
	b.filetype = filetype
	return nil
}

// SetUndoEnabled implements host.Buffers.
func (h *Host) SetUndoEnabled(id host.BufferID, enabled bool) error {
	b, ok := h.buffers[id]
	if !ok {
		return host.ErrInvalidBuffer
	}
	b.undo = enabled
	return nil
}

func (h *Host) addWindow(w *window) host.WindowID {
	h.nextWin++
	h.windows[h.nextWin] = w
	h.order = append(h.order, h.nextWin)
	return h.nextWin
}

// OpenFloat implements host.Windows.
func (h *Host) OpenFloat(buf host.BufferID, cfg host.FloatConfig) (host.WindowID, error) {
	if !h.BufferValid(buf) {
		return 0, host.ErrInvalidBuffer
	}
	if cfg.Width < 1 || cfg.Height < 1 {
		return 0, fmt.Errorf("float size %dx%d", cfg.Width, cfg.Height)
	}
	return h.addWindow(&window{buf: buf, kind: kindFloat, float: cfg}), nil
}

// OpenSplit implements host.Windows.
func (h *Host) OpenSplit(buf host.BufferID, cfg host.SplitConfig) (host.WindowID, error) {
	if !h.BufferValid(buf) {
		return 0, host.ErrInvalidBuffer
	}
	if cfg.Size < 1 {
		return 0, fmt.Errorf("split size %d", cfg.Size)
	}
	kind := kindHSplit
	if cfg.Vertical {
		kind = kindVSplit
	}
	return h.addWindow(&window{buf: buf, kind: kind, size: cfg.Size}), nil
}

// CloseWindow implements host.Windows and emits WinClosed.
func (h *Host) CloseWindow(win host.WindowID) error {
	if _, ok := h.windows[win]; !ok {
		return host.ErrInvalidWindow
	}
	if win == h.main {
		return errMainWindow
	}
	h.closeWindow(win)
	h.syncFocus()
	return nil
}

func (h *Host) closeWindow(win host.WindowID) {
	w := h.windows[win]
	delete(h.windows, win)
	h.order = slices.DeleteFunc(h.order, func(id host.WindowID) bool { return id == win })
	if h.focused == win {
		h.focused = h.main
	}
	h.Emit(event.Event{Type: event.WinClosed, Window: int(win), Buffer: int(w.buf)})
}

// WindowValid implements host.Windows.
func (h *Host) WindowValid(win host.WindowID) bool {
	_, ok := h.windows[win]
	return ok
}

// WindowBuffer implements host.Windows.
func (h *Host) WindowBuffer(win host.WindowID) (host.BufferID, error) {
	w, ok := h.windows[win]
	if !ok {
		return 0, host.ErrInvalidWindow
	}
	return w.buf, nil
}

// WindowSize implements host.Windows. Once the terminal size is known this
// is the size actually laid out, which may be smaller than requested.
func (h *Host) WindowSize(win host.WindowID) (host.Size, error) {
	w, ok := h.windows[win]
	if !ok {
		return host.Size{}, host.ErrInvalidWindow
	}
	if !h.ready {
		switch w.kind {
		case kindFloat:
			return host.Size{Width: w.float.Width, Height: w.float.Height}, nil
		case kindHSplit:
			return host.Size{Height: w.size}, nil
		case kindVSplit:
			return host.Size{Width: w.size}, nil
		}
		return host.Size{}, nil
	}
	r := h.layout()[win]
	return host.Size{Width: r.W, Height: r.H}, nil
}

// FocusWindow implements host.Windows. The window losing focus gets
// WinLeave and BufLeave; announcing the new focus is up to the caller.
func (h *Host) FocusWindow(win host.WindowID) error {
	if _, ok := h.windows[win]; !ok {
		return host.ErrInvalidWindow
	}
	h.moveFocus(win, false)
	return nil
}

func (h *Host) moveFocus(win host.WindowID, announce bool) {
	prev := h.focused
	if prev == win {
		h.syncFocus()
		return
	}
	if w, ok := h.windows[prev]; ok {
		h.Emit(event.Event{Type: event.WinLeave, Window: int(prev), Buffer: int(w.buf)})
		h.Emit(event.Event{Type: event.BufLeave, Window: int(prev), Buffer: int(w.buf)})
	}
	h.focused = win
	h.syncFocus()
	if announce {
		w := h.windows[win]
		h.Emit(event.Event{Type: event.WinEnter, Window: int(win), Buffer: int(w.buf)})
		h.Emit(event.Event{Type: event.BufEnter, Window: int(win), Buffer: int(w.buf)})
	}
}

// syncFocus gives keyboard focus to the focused window's textarea only.
func (h *Host) syncFocus() {
	if _, ok := h.windows[h.focused]; !ok {
		h.focused = h.main
	}
	active := h.windows[h.focused].buf
	for id, b := range h.buffers {
		if id == active && !h.prompting {
			b.area.Focus()
		} else {
			b.area.Blur()
		}
	}
}

// SetWindowOptions implements host.Windows.
func (h *Host) SetWindowOptions(win host.WindowID, opts host.WindowOptions) error {
	w, ok := h.windows[win]
	if !ok {
		return host.ErrInvalidWindow
	}
	w.opts = opts
	return nil
}

// DisplaySize implements host.Windows. The status line is not part of the
// display.
func (h *Host) DisplaySize() (host.Size, bool) {
	if !h.ready {
		return host.Size{}, false
	}
	return host.Size{Width: h.width, Height: h.viewHeight()}, true
}

// MapKey implements host.Keymaps. Buffer keys win over global keys.
func (h *Host) MapKey(buf host.BufferID, key, desc string, action func()) error {
	b, ok := h.buffers[buf]
	if !ok {
		return host.ErrInvalidBuffer
	}
	b.keys[key] = action
	h.logger.Debug("map key", "buffer", buf, "key", key, "desc", desc)
	return nil
}

// UnmapKey implements host.Keymaps.
func (h *Host) UnmapKey(buf host.BufferID, key string) error {
	b, ok := h.buffers[buf]
	if !ok {
		return host.ErrInvalidBuffer
	}
	delete(b.keys, key)
	return nil
}

// Subscribe implements host.Events.
func (h *Host) Subscribe(filter event.Filter, handler event.Handler) event.Subscription {
	return h.events.Subscribe(filter, handler)
}

// Unsubscribe implements host.Events.
func (h *Host) Unsubscribe(sub event.Subscription) {
	h.events.Unsubscribe(sub)
}

// Emit implements host.Events.
func (h *Host) Emit(ev event.Event) {
	h.events.Emit(ev)
}

// After implements host.Scheduler with a bubbletea tick.
func (h *Host) After(d time.Duration, fn func()) {
	h.pending = append(h.pending, tea.Tick(d, func(time.Time) tea.Msg {
		return msg.RunMsg{Fn: fn}
	}))
}

// Defer implements host.Scheduler.
func (h *Host) Defer(fn func()) {
	h.pending = append(h.pending, func() tea.Msg {
		return msg.RunMsg{Fn: fn}
	})
}

// Notify implements host.Notifier with a toast.
func (h *Host) Notify(level host.Level, message string) {
	switch level {
	case host.LevelError:
		h.logger.Error(message)
	case host.LevelWarn:
		h.logger.Warn(message)
	default:
		h.logger.Info(message)
	}
	h.showToast(msg.ToastMsg{Message: message, Duration: msg.ToastDuration(level), Level: level})
}

func (h *Host) showToast(t msg.ToastMsg) {
	h.toastSeq++
	h.toast = &t
	seq := h.toastSeq
	h.pending = append(h.pending, tea.Tick(t.Duration, func(time.Time) tea.Msg {
		return msg.ClearToastMsg{Seq: seq}
	}))
}

// Edit implements host.Editor: path opens in the main window, reusing any
// buffer already named path.
func (h *Host) Edit(path string) error {
	buf, ok := h.bufferNamed(path)
	if !ok {
		var err error
		if buf, err = h.loadFile(path); err != nil {
			return err
		}
	}
	h.windows[h.main].buf = buf
	h.moveFocus(h.main, true)
	return nil
}

func (h *Host) bufferNamed(name string) (host.BufferID, bool) {
	var found host.BufferID
	for id, b := range h.buffers {
		if b.name == name && (found == 0 || id < found) {
			found = id
		}
	}
	return found, found != 0
}

func (h *Host) loadFile(path string) (host.BufferID, error) {
	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return 0, fmt.Errorf("read %s: %w", path, err)
	}

	buf, _ := h.CreateBuffer()
	b := h.buffers[buf]
	b.name = path
	b.undo = false
	b.area.SetValue(string(data))
	b.undo = true
	b.keys[editSaveKey] = func() { h.writeBuffer(buf) }
	return buf, nil
}

// writeBuffer saves a buffer opened with Edit back to its file.
func (h *Host) writeBuffer(buf host.BufferID) {
	b, ok := h.buffers[buf]
	if !ok {
		return
	}
	if err := os.MkdirAll(filepath.Dir(b.name), 0755); err != nil {
		h.Notify(host.LevelError, fmt.Sprintf("write %s: %v", b.name, err))
		return
	}
	if err := os.WriteFile(b.name, []byte(b.area.Value()), 0644); err != nil {
		h.Notify(host.LevelError, fmt.Sprintf("write %s: %v", b.name, err))
		return
	}
	b.modified = false
	h.Notify(host.LevelInfo, "Wrote "+b.name)
}

// WatchFile implements host.Watcher. The parent directory is created so a
// note that does not exist yet can still be watched.
func (h *Host) WatchFile(path string) error {
	if h.watcher == nil {
		w, err := watch.New(h.logger)
		if err != nil {
			return err
		}
		h.watcher = w
		h.pending = append(h.pending, h.waitForChange())
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return h.watcher.Add(path)
}

// waitForChange blocks on the watcher and turns the next change into a
// message. It yields nothing once the watcher is closed.
func (h *Host) waitForChange() tea.Cmd {
	events := h.watcher.Events()
	return func() tea.Msg {
		path, ok := <-events
		if !ok {
			return nil
		}
		return msg.FileChangedMsg{Path: path}
	}
}

func (h *Host) viewHeight() int {
	return max(h.height-1, 0)
}

func (h *Host) focusedBuffer() *buffer {
	w, ok := h.windows[h.focused]
	if !ok {
		return nil
	}
	return h.buffers[w.buf]
}
