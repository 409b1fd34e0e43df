package scratchpad

import (
	"fmt"
	"maps"
	"slices"

	"github.com/marcus/scratchpad/internal/config"
	"github.com/marcus/scratchpad/internal/event"
	"github.com/marcus/scratchpad/internal/host"
	"github.com/marcus/scratchpad/internal/notestore"
)

// installBufferHooks binds the note keys and focus-loss hooks on a freshly
// created buffer.
func (s *Scratchpad) installBufferHooks(buf host.BufferID, path string) {
	s.mapNoteKeys(buf, path)

	s.host.Subscribe(event.Filter{
		Types:  []event.Type{event.BufLeave, event.BufHidden, event.WinLeave},
		Buffer: int(buf),
	}, func(event.Event) { s.onBufferLeft(path, buf) })

	if s.cfg.WatchFile {
		if err := s.host.WatchFile(path); err != nil {
			s.logger.Warn("watch note", "path", path, "error", err)
		}
	}
}

// mapNoteKeys binds the configured quit, save and yank keys on buf.
func (s *Scratchpad) mapNoteKeys(buf host.BufferID, path string) {
	km := s.cfg.Keymaps
	s.mapKey(buf, km.Quit, "Hide scratchpad", func() { s.Hide() })
	s.mapKey(buf, km.Save, "Save scratchpad", func() {
		if s.host.BufferValid(buf) {
			s.saveNow(path, buf)
		}
	})
	s.mapKey(buf, km.Yank, "Copy note to clipboard", func() { s.yank(buf) })
}

// rebindNoteKeys moves every live note buffer from the old key set to the
// current one.
func (s *Scratchpad) rebindNoteKeys(old config.KeymapConfig) {
	registered := s.session.Buffers()
	for _, path := range slices.Sorted(maps.Keys(registered)) {
		buf := registered[path]
		if !s.host.BufferValid(buf) {
			continue
		}
		for _, key := range []string{old.Quit, old.Save, old.Yank} {
			if key == "" {
				continue
			}
			if err := s.host.UnmapKey(buf, key); err != nil {
				s.logger.Warn("unmap key", "key", key, "buffer", buf, "error", err)
			}
		}
		s.mapNoteKeys(buf, path)
	}
}

func (s *Scratchpad) mapKey(buf host.BufferID, key, desc string, action func()) {
	if key == "" {
		return
	}
	if err := s.host.MapKey(buf, key, desc, action); err != nil {
		s.logger.Warn("map key", "key", key, "buffer", buf, "error", err)
	}
}

func (s *Scratchpad) yank(buf host.BufferID) {
	lines, err := s.host.Lines(buf)
	if err != nil {
		s.fail(fmt.Errorf("copy note: %w", err))
		return
	}
	if err := s.copy(notestore.Join(lines)); err != nil {
		s.fail(fmt.Errorf("copy note: %w", err))
		return
	}
	s.host.Notify(host.LevelInfo, "Copied note to clipboard")
}

// onBufferLeft runs when a note buffer loses focus or is hidden. Geometry is
// recorded right away; the save waits for the churn to settle.
func (s *Scratchpad) onBufferLeft(path string, buf host.BufferID) {
	s.rememberIfShowing(buf)
	if s.cfg.AutoSave.OnFocusLost && !s.savedOnHide {
		s.saver.Add(path, buf)
	}
}

// rememberIfShowing records the scratchpad window's geometry when it shows
// buf.
func (s *Scratchpad) rememberIfShowing(buf host.BufferID) {
	win, ok := s.visibleWindow()
	if !ok {
		return
	}
	if shown, err := s.host.WindowBuffer(win); err == nil && shown == buf {
		s.windows.RememberSize()
	}
}

func (s *Scratchpad) onResized(event.Event) {
	s.windows.RememberSize()
}

// onHostFocusLost handles the whole host losing focus, e.g. the terminal
// window being switched away from.
func (s *Scratchpad) onHostFocusLost(event.Event) {
	win, ok := s.visibleWindow()
	if !ok {
		return
	}
	s.windows.RememberSize()
	if !s.cfg.AutoSave.OnFocusLost {
		return
	}
	if buf, err := s.host.WindowBuffer(win); err == nil {
		s.saver.Add(s.session.Path(), buf)
	}
}

// onWinClosed notices the scratchpad window being closed by something other
// than Hide.
func (s *Scratchpad) onWinClosed(ev event.Event) {
	win, ok := s.session.Window()
	if !ok || int(win) != ev.Window {
		return
	}
	s.session.ClearWindow()
	s.logger.Debug("window closed by host", "window", win)
	if s.cfg.AutoSave.OnHide && ev.Buffer != 0 {
		s.saver.Add(s.session.Path(), host.BufferID(ev.Buffer))
	}
}

// onExiting saves every registered note before the host goes away.
func (s *Scratchpad) onExiting(event.Event) {
	s.windows.RememberSize()
	s.saver.Stop()
	if !s.cfg.AutoSave.OnExit {
		return
	}
	registered := s.session.Buffers()
	for _, path := range slices.Sorted(maps.Keys(registered)) {
		s.autoSave(path, registered[path])
	}
}

// onFileChanged reloads a note edited outside the scratchpad. Unsaved edits
// win over the disk copy.
func (s *Scratchpad) onFileChanged(ev event.Event) {
	buf, ok := s.session.Buffer(ev.Path)
	if !ok || !s.host.BufferValid(buf) {
		return
	}
	changed, err := s.store.ChangedOnDisk(ev.Path)
	if err != nil {
		s.logger.Warn("check note on disk", "path", ev.Path, "error", err)
		return
	}
	if !changed {
		return
	}
	if s.host.Modified(buf) {
		what := "changed on disk"
		if st, err := s.store.CompareWithDisk(ev.Path, buf); err == nil {
			what = fmt.Sprintf("changed on disk (%s)", st)
		}
		s.host.Notify(host.LevelWarn, fmt.Sprintf("scratchpad: %s %s; keeping unsaved edits", ev.Path, what))
		return
	}
	reloaded, err := s.buffers.Reload(ev.Path)
	if err != nil {
		s.fail(fmt.Errorf("reload %s: %w", ev.Path, err))
		return
	}
	if reloaded {
		s.host.Notify(host.LevelInfo, "Reloaded "+ev.Path)
	}
}
