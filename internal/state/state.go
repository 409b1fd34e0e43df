// Package state holds the per-session scratchpad state: which buffer backs
// which note path, the one tracked window, the current display mode and the
// geometry remembered for each mode.
//
// A Session is owned by the host's event loop and is not safe for concurrent
// use.
package state

import (
	"maps"

	"github.com/marcus/scratchpad/internal/config"
	"github.com/marcus/scratchpad/internal/host"
)

// Sizes is the remembered geometry for every display mode.
type Sizes struct {
	Floating     host.Size `json:"floating"`
	HSplitHeight int       `json:"hsplitHeight"`
	VSplitWidth  int       `json:"vsplitWidth"`
}

// Session is the mutable state of one editing session.
type Session struct {
	buffers map[string]host.BufferID
	window  host.WindowID
	mode    config.DisplayMode
	path    string
	sizes   Sizes
	setup   bool
}

// NewSession returns a session seeded from cfg. It is not marked set up.
func NewSession(cfg *config.Config) *Session {
	return &Session{
		buffers: make(map[string]host.BufferID),
		mode:    cfg.DisplayMode,
		sizes:   SizesFromConfig(cfg),
	}
}

// Reseed replaces mode and remembered sizes with cfg's defaults. Buffers,
// the tracked window and the setup flag are kept.
func (s *Session) Reseed(cfg *config.Config) {
	s.mode = cfg.DisplayMode
	s.sizes = SizesFromConfig(cfg)
}

// SizesFromConfig returns the configured default geometry.
func SizesFromConfig(cfg *config.Config) Sizes {
	return Sizes{
		Floating:     host.Size{Width: cfg.Floating.Width, Height: cfg.Floating.Height},
		HSplitHeight: cfg.Split.HSplitHeight,
		VSplitWidth:  cfg.Split.VSplitWidth,
	}
}

// IsSetup reports whether setup completed.
func (s *Session) IsSetup() bool { return s.setup }

// MarkSetup flips the setup gate.
func (s *Session) MarkSetup() { s.setup = true }

// Buffer returns the buffer registered for path.
func (s *Session) Buffer(path string) (host.BufferID, bool) {
	buf, ok := s.buffers[path]
	return buf, ok
}

// BindBuffer registers buf as the buffer for path.
func (s *Session) BindBuffer(path string, buf host.BufferID) {
	s.buffers[path] = buf
}

// UnbindBuffer forgets the buffer for path.
func (s *Session) UnbindBuffer(path string) {
	delete(s.buffers, path)
}

// Buffers returns a copy of the path → buffer registry.
func (s *Session) Buffers() map[string]host.BufferID {
	return maps.Clone(s.buffers)
}

// Window returns the tracked window, if any.
func (s *Session) Window() (host.WindowID, bool) {
	return s.window, s.window != 0
}

// TrackWindow records win as the one visible scratchpad window.
func (s *Session) TrackWindow(win host.WindowID) { s.window = win }

// ClearWindow forgets the tracked window and returns what was tracked.
func (s *Session) ClearWindow() host.WindowID {
	win := s.window
	s.window = 0
	return win
}

// Mode returns the current display mode.
func (s *Session) Mode() config.DisplayMode { return s.mode }

// SetMode commits the current display mode.
func (s *Session) SetMode(m config.DisplayMode) { s.mode = m }

// Path returns the note path associated with the current window.
func (s *Session) Path() string { return s.path }

// SetPath records the note path associated with the current window.
func (s *Session) SetPath(p string) { s.path = p }

// Sizes returns the remembered geometry.
func (s *Session) Sizes() Sizes { return s.sizes }

// Remember stores an observed window size in the slot for mode. Split modes
// only use the dimension they control.
func (s *Session) Remember(mode config.DisplayMode, size host.Size) {
	switch mode {
	case config.Floating:
		s.sizes.Floating = size
	case config.HSplit:
		s.sizes.HSplitHeight = size.Height
	case config.VSplit:
		s.sizes.VSplitWidth = size.Width
	}
}
