package scratchpad

import (
	"fmt"

	"github.com/marcus/scratchpad/internal/config"
	"github.com/marcus/scratchpad/internal/event"
	"github.com/marcus/scratchpad/internal/host"
)

// Show makes the note at path visible in mode. Empty arguments mean the
// current mode and the configured note. An existing window already showing
// that note in that mode is focused, not recreated. On failure the session
// keeps its previous mode and the tracked window is whatever is really on
// screen.
func (s *Scratchpad) Show(mode, path string) bool {
	if !s.requireSetup() {
		return false
	}

	m := s.resolveMode(mode)
	p, err := s.store.ResolvePath(path)
	if err != nil {
		s.fail(err)
		return false
	}

	buf, err := s.buffers.GetOrCreate(p)
	if err != nil {
		s.fail(fmt.Errorf("open %s: %w", p, err))
		return false
	}

	win, visible := s.visibleWindow()
	if visible && s.session.Mode() == m && s.session.Path() == p {
		s.focus(win, buf)
		return true
	}

	// A floating window needs a display. Check before tearing anything down
	// so a headless request leaves the current window alone.
	if m == config.Floating {
		if _, err := s.windows.FloatingGeometry(); err != nil {
			s.fail(err)
			return false
		}
	}

	if visible {
		s.Hide()
	}

	// Hide may have run handlers; make sure the buffer survived them.
	if !s.host.BufferValid(buf) {
		if buf, err = s.buffers.GetOrCreate(p); err != nil {
			s.fail(fmt.Errorf("open %s: %w", p, err))
			return false
		}
	}

	win, err = s.windows.Open(buf, m)
	if err != nil {
		s.fail(err)
		return false
	}

	s.session.SetMode(m)
	s.session.SetPath(p)
	s.session.TrackWindow(win)
	if err := s.windows.ApplyOptions(win); err != nil {
		s.logger.Warn("apply window options", "window", win, "error", err)
	}
	s.focus(win, buf)

	s.logger.Debug("shown", "mode", m, "path", p, "window", win, "buffer", buf)
	return true
}

// Hide remembers the window's geometry, saves the note and closes the
// window. Hiding when nothing is visible succeeds without side effects.
func (s *Scratchpad) Hide() bool {
	if !s.requireSetup() {
		return false
	}

	win, ok := s.visibleWindow()
	if !ok {
		return true
	}

	s.windows.RememberSize()

	path := s.session.Path()
	buf, err := s.host.WindowBuffer(win)
	if err != nil {
		buf, _ = s.session.Buffer(path)
	}

	saved := s.cfg.AutoSave.OnHide && s.host.BufferValid(buf)
	if saved {
		// This save replaces any queued one, failed or not.
		s.saver.Drop(path)
		if err := s.store.Save(path, buf); err != nil {
			s.fail(fmt.Errorf("save %s: %w", path, err))
		}
	}

	if s.host.BufferValid(buf) {
		s.savedOnHide = saved
		s.emit(event.BufLeave, buf, win)
		s.emit(event.BufHidden, buf, win)
		s.emit(event.WinLeave, buf, win)
		s.savedOnHide = false
	}

	// Forget the window before closing it so WinClosed handlers, and any
	// nested call they make, already see the hidden state.
	s.session.ClearWindow()
	if err := s.host.CloseWindow(win); err != nil {
		s.logger.Warn("close window", "window", win, "error", err)
		s.host.Notify(host.LevelWarn, fmt.Sprintf("scratchpad: could not close window: %v", err))
	}

	s.logger.Debug("hidden", "window", win, "path", path)
	return true
}

// Toggle hides a visible window unless a mode is requested, in which case it
// behaves like Show.
func (s *Scratchpad) Toggle(mode, path string) bool {
	if !s.requireSetup() {
		return false
	}
	if _, visible := s.visibleWindow(); visible && mode == "" {
		return s.Hide()
	}
	return s.Show(mode, path)
}

// Visible reports whether the scratchpad window is on screen.
func (s *Scratchpad) Visible() bool {
	_, ok := s.visibleWindow()
	return ok
}

// visibleWindow returns the tracked window if it is still valid. A tracked
// handle the host already destroyed is dropped.
func (s *Scratchpad) visibleWindow() (host.WindowID, bool) {
	win, ok := s.session.Window()
	if !ok {
		return 0, false
	}
	if !s.host.WindowValid(win) {
		s.session.ClearWindow()
		return 0, false
	}
	return win, true
}

// resolveMode turns an optional requested mode into a DisplayMode. Unknown
// names fall back to the current mode with a warning.
func (s *Scratchpad) resolveMode(mode string) config.DisplayMode {
	if mode == "" {
		return s.session.Mode()
	}
	m, warning := config.ValidateMode(mode, s.session.Mode())
	if warning != "" {
		s.host.Notify(host.LevelWarn, "scratchpad: "+warning)
	}
	return m
}

func (s *Scratchpad) focus(win host.WindowID, buf host.BufferID) {
	if err := s.host.FocusWindow(win); err != nil {
		s.logger.Warn("focus window", "window", win, "error", err)
		return
	}
	s.emit(event.WinEnter, buf, win)
	s.emit(event.BufEnter, buf, win)
}

func (s *Scratchpad) emit(t event.Type, buf host.BufferID, win host.WindowID) {
	s.host.Emit(event.Event{Type: t, Buffer: int(buf), Window: int(win)})
}
