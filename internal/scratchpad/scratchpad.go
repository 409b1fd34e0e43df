// Package scratchpad is the user-facing service: it reconciles the requested
// display mode and note path with what is on screen, and keeps note content
// saved as windows come and go.
//
// A Scratchpad runs on the host's event loop and is not safe for concurrent
// use.
package scratchpad

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/atotto/clipboard"

	"github.com/marcus/scratchpad/internal/buffers"
	"github.com/marcus/scratchpad/internal/config"
	"github.com/marcus/scratchpad/internal/event"
	"github.com/marcus/scratchpad/internal/host"
	"github.com/marcus/scratchpad/internal/notestore"
	"github.com/marcus/scratchpad/internal/state"
	"github.com/marcus/scratchpad/internal/window"
)

// ErrNotSetup is reported when an operation runs before Setup.
var ErrNotSetup = errors.New("scratchpad is not set up")

// Scratchpad owns the session state and the components built from it.
type Scratchpad struct {
	host   host.Host
	logger *slog.Logger
	base   *config.Config
	copy   func(string) error

	cfg     *config.Config
	session *state.Session
	store   *notestore.Store
	buffers *buffers.Registry
	windows *window.Controller
	saver   *saveCoalescer
	subs    []event.Subscription

	// set while Hide emits its leave events after saving the note itself
	savedOnHide bool
}

// Option configures a Scratchpad.
type Option func(*Scratchpad)

// WithBase sets the configuration Setup overrides are merged over. The
// default is config.Default().
func WithBase(cfg *config.Config) Option {
	return func(s *Scratchpad) {
		if cfg != nil {
			s.base = cfg
		}
	}
}

// WithClipboard replaces the system clipboard used by the yank key.
func WithClipboard(write func(string) error) Option {
	return func(s *Scratchpad) {
		if write != nil {
			s.copy = write
		}
	}
}

// New creates a Scratchpad bound to h. Nothing works until Setup.
func New(h host.Host, logger *slog.Logger, opts ...Option) *Scratchpad {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Scratchpad{
		host:   h,
		logger: logger,
		base:   config.Default(),
		copy:   clipboard.WriteAll,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.cfg = s.base
	s.session = state.NewSession(s.base)
	s.saver = newSaveCoalescer(h, s.base.AutoSave.Debounce, s.autoSave)
	return s
}

// Setup resolves o over the base configuration, builds the components and
// installs the global event hooks. Validation problems are reported as
// warnings; Setup itself never fails. Calling it again hides the window,
// re-seeds mode and sizes from the new configuration and keeps existing
// buffers, rebinding their note keys.
func (s *Scratchpad) Setup(o *config.Overrides) bool {
	cfg, warnings := config.Resolve(s.base, o)
	for _, w := range warnings {
		s.host.Notify(host.LevelWarn, "scratchpad: "+w)
	}

	rebind := s.session.IsSetup()
	if rebind {
		s.Hide()
		s.unsubscribe()
	}

	oldKeys := s.cfg.Keymaps
	s.cfg = cfg
	s.session.Reseed(cfg)
	s.store = notestore.New(s.host, cfg)
	s.buffers = buffers.New(s.host, s.store, s.session, cfg, s.logger)
	s.buffers.OnCreate = s.installBufferHooks
	s.buffers.BeforeEvict = func(buf host.BufferID, _ string) { s.rememberIfShowing(buf) }
	s.windows = window.New(s.host, s.session, cfg)
	s.saver.window = cfg.AutoSave.Debounce
	if rebind {
		s.rebindNoteKeys(oldKeys)
	}

	s.subscribe(event.Resized, s.onResized)
	s.subscribe(event.FocusLost, s.onHostFocusLost)
	s.subscribe(event.WinClosed, s.onWinClosed)
	s.subscribe(event.Exiting, s.onExiting)
	s.subscribe(event.FileChanged, s.onFileChanged)

	s.session.MarkSetup()
	s.logger.Info("scratchpad ready", "mode", cfg.DisplayMode, "path", cfg.FilePath)
	return true
}

// Config returns the active configuration.
func (s *Scratchpad) Config() *config.Config { return s.cfg }

// Save writes the current note if it has unsaved changes.
func (s *Scratchpad) Save() bool {
	if !s.requireSetup() {
		return false
	}
	path, ok := s.currentPath()
	if !ok {
		return false
	}
	buf, ok := s.session.Buffer(path)
	if !ok || !s.host.BufferValid(buf) {
		s.logger.Debug("save: no buffer", "path", path)
		return true
	}
	return s.saveNow(path, buf)
}

// Edit opens the note at path (or the configured note) in the host's current
// window. The scratchpad window and mode are not touched.
func (s *Scratchpad) Edit(path string) bool {
	if !s.requireSetup() {
		return false
	}
	p, err := s.store.ResolvePath(path)
	if err != nil {
		s.fail(err)
		return false
	}
	if err := s.host.Edit(p); err != nil {
		s.fail(fmt.Errorf("edit %s: %w", p, err))
		return false
	}
	return true
}

// Status describes the session.
type Status struct {
	IsSetup     bool
	BufferValid bool
	WindowValid bool
	DisplayMode config.DisplayMode
	FilePath    string
	Sizes       state.Sizes
	DefaultMode config.DisplayMode
	Buffers     []string
}

// Status reports the current session without changing it.
func (s *Scratchpad) Status() Status {
	st := Status{
		IsSetup:     s.session.IsSetup(),
		DisplayMode: s.session.Mode(),
		FilePath:    s.session.Path(),
		Sizes:       s.session.Sizes(),
		DefaultMode: s.cfg.DisplayMode,
	}
	if win, ok := s.session.Window(); ok {
		st.WindowValid = s.host.WindowValid(win)
	}
	path := st.FilePath
	if path == "" && s.store != nil {
		path, _ = s.store.ResolvePath("")
	}
	if buf, ok := s.session.Buffer(path); ok {
		st.BufferValid = s.host.BufferValid(buf)
	}
	for p := range s.session.Buffers() {
		st.Buffers = append(st.Buffers, p)
	}
	slices.Sort(st.Buffers)
	return st
}

// Close removes the global hooks and drops pending auto-saves.
func (s *Scratchpad) Close() {
	s.unsubscribe()
	s.saver.Stop()
}

func (s *Scratchpad) subscribe(t event.Type, fn func(event.Event)) {
	sub := s.host.Subscribe(event.Filter{Types: []event.Type{t}}, fn)
	s.subs = append(s.subs, sub)
}

func (s *Scratchpad) unsubscribe() {
	for _, sub := range s.subs {
		s.host.Unsubscribe(sub)
	}
	s.subs = nil
}

func (s *Scratchpad) requireSetup() bool {
	if s.session.IsSetup() {
		return true
	}
	s.fail(ErrNotSetup)
	return false
}

// fail reports err once on the notification channel.
func (s *Scratchpad) fail(err error) {
	s.logger.Error("scratchpad", "error", err)
	s.host.Notify(host.LevelError, "scratchpad: "+err.Error())
}

// currentPath is the note behind the window, or the configured note.
func (s *Scratchpad) currentPath() (string, bool) {
	if p := s.session.Path(); p != "" {
		return p, true
	}
	p, err := s.store.ResolvePath("")
	if err != nil {
		s.fail(err)
		return "", false
	}
	return p, true
}

// saveNow is an explicit save: the user hears about it when a write happened.
func (s *Scratchpad) saveNow(path string, buf host.BufferID) bool {
	dirty := s.host.Modified(buf)
	if err := s.store.Save(path, buf); err != nil {
		s.fail(fmt.Errorf("save %s: %w", path, err))
		return false
	}
	if dirty {
		s.host.Notify(host.LevelInfo, "Saved "+path)
	}
	return true
}

// autoSave is a background save: silent unless it fails. The buffer may have
// been destroyed since the save was scheduled.
func (s *Scratchpad) autoSave(path string, buf host.BufferID) {
	if !s.host.BufferValid(buf) {
		return
	}
	if err := s.store.Save(path, buf); err != nil {
		s.fail(fmt.Errorf("auto-save %s: %w", path, err))
	}
}
