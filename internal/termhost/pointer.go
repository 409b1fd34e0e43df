package termhost

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/marcus/scratchpad/internal/event"
	"github.com/marcus/scratchpad/internal/host"
	"github.com/marcus/scratchpad/internal/mouse"
)

const (
	regionWindow  = "window"
	regionDivider = "divider"
)

// buildHitMap registers every window, split divider and float frame for
// the laid-out rects. Floats go last so they are on top. It runs per mouse
// event since windows open and close between renders.
func (h *Host) buildHitMap(rects map[host.WindowID]rect) {
	h.mouse.Clear()
	for _, id := range h.order {
		w := h.windows[id]
		if w.kind == kindFloat {
			continue
		}
		r := rects[id]
		h.mouse.HitMap.AddRect(regionWindow, r.X, r.Y, r.W, r.H, id)
		switch w.kind {
		case kindHSplit:
			h.mouse.HitMap.AddRect(regionDivider, r.X, r.Y-1, r.W, 1, id)
		case kindVSplit:
			h.mouse.HitMap.AddRect(regionDivider, r.X-1, r.Y, 1, r.H, id)
		}
	}
	for _, id := range h.order {
		w := h.windows[id]
		if w.kind != kindFloat {
			continue
		}
		r := rects[id]
		pad := framePad(w)
		h.mouse.HitMap.AddRect(regionWindow, r.X-pad, r.Y-pad, r.W+2*pad, r.H+2*pad, id)
	}
}

// handleMouse focuses a clicked window and resizes a split whose divider
// is dragged.
func (h *Host) handleMouse(m tea.MouseMsg) {
	h.buildHitMap(h.layout())
	a := h.mouse.HandleMouse(m)
	switch a.Type {
	case mouse.ActionClick:
		id, ok := a.Region.Data.(host.WindowID)
		if !ok || !h.WindowValid(id) {
			return
		}
		if a.Region.ID == regionDivider {
			r := h.layout()[id]
			size := r.H
			if h.windows[id].kind == kindVSplit {
				size = r.W
			}
			h.dragWin = id
			h.mouse.StartDrag(a.X, a.Y, regionDivider, size)
			return
		}
		h.moveFocus(id, true)

	case mouse.ActionDrag, mouse.ActionDragEnd:
		w, ok := h.windows[h.dragWin]
		if !ok {
			return
		}
		before := h.layout()[h.dragWin]
		// dividers sit above and left of their split, so dragging toward
		// the origin grows it
		if w.kind == kindVSplit {
			w.size = max(h.mouse.DragStartValue()-a.DragDX, 1)
		} else {
			w.size = max(h.mouse.DragStartValue()-a.DragDY, 1)
		}
		if h.layout()[h.dragWin] != before {
			h.Emit(event.Event{Type: event.Resized, Window: int(h.dragWin)})
		}
	}
}
