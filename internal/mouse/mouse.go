// Package mouse maps terminal mouse events onto screen regions.
package mouse

import tea "github.com/charmbracelet/bubbletea"

// Rect is a screen rectangle in cells.
type Rect struct {
	X, Y, W, H int
}

// Contains reports whether (x, y) is inside r. Right and bottom edges are
// exclusive.
func (r Rect) Contains(x, y int) bool {
	return r.W > 0 && r.H > 0 &&
		x >= r.X && x < r.X+r.W &&
		y >= r.Y && y < r.Y+r.H
}

// Region is a named clickable area.
type Region struct {
	ID   string
	Rect Rect
	Data any
}

// HitMap holds regions in paint order; later regions are on top.
type HitMap struct {
	regions []Region
}

func NewHitMap() *HitMap {
	return &HitMap{}
}

// Add registers a region above the existing ones.
func (m *HitMap) Add(id string, r Rect, data any) {
	m.regions = append(m.regions, Region{ID: id, Rect: r, Data: data})
}

// AddRect is Add with the rectangle spelled out.
func (m *HitMap) AddRect(id string, x, y, w, h int, data any) {
	m.Add(id, Rect{X: x, Y: y, W: w, H: h}, data)
}

// Test returns the topmost region containing (x, y), or nil.
func (m *HitMap) Test(x, y int) *Region {
	for i := len(m.regions) - 1; i >= 0; i-- {
		if m.regions[i].Rect.Contains(x, y) {
			r := m.regions[i]
			return &r
		}
	}
	return nil
}

func (m *HitMap) Clear() {
	m.regions = m.regions[:0]
}

// Regions returns a copy of the registered regions.
func (m *HitMap) Regions() []Region {
	out := make([]Region, len(m.regions))
	copy(out, m.regions)
	return out
}

// ActionType is what a mouse event amounted to.
type ActionType int

const (
	ActionNone ActionType = iota
	ActionClick
	ActionDrag
	ActionDragEnd
)

// Action is the result of HandleMouse.
type Action struct {
	Type   ActionType
	Region *Region
	X, Y   int
	DragDX int
	DragDY int
}

// Handler tracks the hit map and an in-progress drag.
type Handler struct {
	HitMap *HitMap

	dragging   bool
	dragRegion string
	dragStartX int
	dragStartY int
	dragValue  int
}

func NewHandler() *Handler {
	return &Handler{HitMap: NewHitMap()}
}

// StartDrag begins a drag of region at (x, y). value is whatever the caller
// wants back when the drag moves, typically the size being dragged.
func (h *Handler) StartDrag(x, y int, region string, value int) {
	h.dragging = true
	h.dragRegion = region
	h.dragStartX = x
	h.dragStartY = y
	h.dragValue = value
}

// DragDelta is the offset from the drag start.
func (h *Handler) DragDelta(x, y int) (dx, dy int) {
	return x - h.dragStartX, y - h.dragStartY
}

func (h *Handler) EndDrag() {
	h.dragging = false
	h.dragRegion = ""
}

func (h *Handler) IsDragging() bool    { return h.dragging }
func (h *Handler) DragRegion() string  { return h.dragRegion }
func (h *Handler) DragStartValue() int { return h.dragValue }

// Clear drops all regions. A drag in progress survives.
func (h *Handler) Clear() {
	h.HitMap.Clear()
}

// HandleMouse classifies msg. Left presses become clicks on the region
// under the pointer; motion and release report an active drag.
func (h *Handler) HandleMouse(msg tea.MouseMsg) Action {
	base := Action{X: msg.X, Y: msg.Y}

	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft {
			return base
		}
		if r := h.HitMap.Test(msg.X, msg.Y); r != nil {
			base.Type = ActionClick
			base.Region = r
		}
	case tea.MouseActionMotion:
		if h.dragging {
			base.Type = ActionDrag
			base.DragDX, base.DragDY = h.DragDelta(msg.X, msg.Y)
		}
	case tea.MouseActionRelease:
		if h.dragging {
			base.Type = ActionDragEnd
			base.DragDX, base.DragDY = h.DragDelta(msg.X, msg.Y)
			h.EndDrag()
		}
	}
	return base
}
