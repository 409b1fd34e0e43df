// Package window opens, measures and decorates the scratchpad window, and
// records observed geometry back into the session.
package window

import (
	"errors"
	"fmt"

	"github.com/marcus/scratchpad/internal/config"
	"github.com/marcus/scratchpad/internal/host"
	"github.com/marcus/scratchpad/internal/state"
)

var (
	// ErrNoDisplay means no display is attached, so no floating window can be
	// shown right now.
	ErrNoDisplay = errors.New("no display available for a floating window")
	// ErrInvalidMode means a split was requested with a non-split mode.
	ErrInvalidMode = errors.New("invalid split mode")
)

// viewportMargin keeps a floating window off the display edges.
const viewportMargin = 4

// noteOptions is the fixed presentation for note taking.
var noteOptions = host.WindowOptions{
	Wrap:       true,
	LineBreak:  true,
	CursorLine: true,
}

// Controller manages the single scratchpad window.
type Controller struct {
	host    host.Windows
	session *state.Session
	cfg     *config.Config
}

// New creates a Controller.
func New(h host.Windows, session *state.Session, cfg *config.Config) *Controller {
	return &Controller{host: h, session: session, cfg: cfg}
}

// RememberSize copies the tracked window's live size into the slot for the
// current mode. It does nothing without a valid tracked window.
func (c *Controller) RememberSize() {
	win, ok := c.session.Window()
	if !ok || !c.host.WindowValid(win) {
		return
	}
	size, err := c.host.WindowSize(win)
	if err != nil {
		return
	}
	c.session.Remember(c.session.Mode(), size)
}

// FloatingGeometry centers the remembered floating size on the display,
// clamped so the window never exceeds the viewport.
func (c *Controller) FloatingGeometry() (*host.FloatConfig, error) {
	display, ok := c.host.DisplaySize()
	if !ok {
		return nil, ErrNoDisplay
	}

	want := c.session.Sizes().Floating
	width := min(want.Width, display.Width-viewportMargin)
	height := min(want.Height, display.Height-viewportMargin)
	if width < 1 || height < 1 {
		return nil, ErrNoDisplay
	}

	return &host.FloatConfig{
		Width:    width,
		Height:   height,
		Row:      (display.Height - height) / 2,
		Col:      (display.Width - width) / 2,
		Border:   c.cfg.Floating.Border,
		Title:    c.cfg.Floating.Title,
		TitlePos: c.cfg.Floating.TitlePos,
	}, nil
}

// CreateSplit opens buf in a split sized from the remembered geometry.
func (c *Controller) CreateSplit(buf host.BufferID, mode config.DisplayMode) (host.WindowID, error) {
	sizes := c.session.Sizes()

	var split host.SplitConfig
	switch mode {
	case config.HSplit:
		split = host.SplitConfig{Size: sizes.HSplitHeight}
	case config.VSplit:
		split = host.SplitConfig{Vertical: true, Size: sizes.VSplitWidth}
	default:
		return 0, fmt.Errorf("%w: %s", ErrInvalidMode, mode)
	}

	win, err := c.host.OpenSplit(buf, split)
	if err != nil {
		return 0, fmt.Errorf("open %s: %w", mode, err)
	}
	return win, nil
}

// Open creates a window for buf in mode. Nothing is tracked; the caller
// commits the result.
func (c *Controller) Open(buf host.BufferID, mode config.DisplayMode) (host.WindowID, error) {
	if mode != config.Floating {
		return c.CreateSplit(buf, mode)
	}

	geom, err := c.FloatingGeometry()
	if err != nil {
		return 0, err
	}
	win, err := c.host.OpenFloat(buf, *geom)
	if err != nil {
		return 0, fmt.Errorf("open floating: %w", err)
	}
	return win, nil
}

// ApplyOptions sets the note-taking presentation on win.
func (c *Controller) ApplyOptions(win host.WindowID) error {
	return c.host.SetWindowOptions(win, noteOptions)
}
