package termhost

import (
	"github.com/marcus/scratchpad/internal/host"
	"github.com/marcus/scratchpad/internal/styles"
)

// rect is a content area in screen cells.
type rect struct {
	X, Y, W, H int
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	return min(max(v, lo), hi)
}

// layout places every window. Splits are carved out of the remaining tiled
// area in creation order: vertical splits from the right edge, horizontal
// ones from the bottom, each with a one-cell separator. The main window gets
// what is left. Floats sit on top and are clamped to the display.
func (h *Host) layout() map[host.WindowID]rect {
	out := make(map[host.WindowID]rect, len(h.windows))
	vh := h.viewHeight()
	area := rect{W: h.width, H: vh}

	for _, id := range h.order {
		w := h.windows[id]
		switch w.kind {
		case kindVSplit:
			if area.W < 3 {
				out[id] = rect{X: area.X, Y: area.Y}
				continue
			}
			size := clamp(w.size, 1, area.W-2)
			out[id] = rect{X: area.X + area.W - size, Y: area.Y, W: size, H: area.H}
			area.W -= size + 1
		case kindHSplit:
			if area.H < 3 {
				out[id] = rect{X: area.X, Y: area.Y}
				continue
			}
			size := clamp(w.size, 1, area.H-2)
			out[id] = rect{X: area.X, Y: area.Y + area.H - size, W: area.W, H: size}
			area.H -= size + 1
		}
	}
	out[h.main] = area

	for _, id := range h.order {
		w := h.windows[id]
		if w.kind != kindFloat {
			continue
		}
		pad := framePad(w)
		fw := clamp(w.float.Width, 1, h.width-2*pad)
		fh := clamp(w.float.Height, 1, vh-2*pad)
		out[id] = rect{
			X: clamp(w.float.Col, pad, h.width-pad-fw),
			Y: clamp(w.float.Row, pad, vh-pad-fh),
			W: fw,
			H: fh,
		}
	}
	return out
}

// framePad is the border thickness around a float's content.
func framePad(w *window) int {
	if w.kind != kindFloat {
		return 0
	}
	if _, ok := styles.BorderFor(w.float.Border); !ok {
		return 0
	}
	return 1
}

// resizeFocused grows or shrinks the focused window by delta cells along
// one axis. It reports whether anything changed.
func (h *Host) resizeFocused(dw, dh int) bool {
	w, ok := h.windows[h.focused]
	if !ok {
		return false
	}
	cur := h.layout()[h.focused]
	switch w.kind {
	case kindFloat:
		if dw == 0 && dh == 0 {
			return false
		}
		w.float.Width = max(cur.W+dw, 1)
		w.float.Height = max(cur.H+dh, 1)
		// keep the window centered on the same point
		w.float.Col = cur.X - dw/2
		w.float.Row = cur.Y - dh/2
	case kindHSplit:
		if dh == 0 {
			return false
		}
		w.size = max(cur.H+dh, 1)
	case kindVSplit:
		if dw == 0 {
			return false
		}
		w.size = max(cur.W+dw, 1)
	default:
		return false
	}
	return h.layout()[h.focused] != cur
}
