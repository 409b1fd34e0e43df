package mouse

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func TestRect_Contains(t *testing.T) {
	r := Rect{X: 10, Y: 5, W: 20, H: 4}

	tests := []struct {
		name string
		x, y int
		want bool
	}{
		{"top-left corner", 10, 5, true},
		{"last cell", 29, 8, true},
		{"right edge exclusive", 30, 6, false},
		{"bottom edge exclusive", 12, 9, false},
		{"left of rect", 9, 6, false},
		{"above rect", 12, 4, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := r.Contains(tt.x, tt.y); got != tt.want {
				t.Errorf("Contains(%d, %d) = %v, want %v", tt.x, tt.y, got, tt.want)
			}
		})
	}

	if (Rect{X: 0, Y: 0, W: 0, H: 3}).Contains(0, 0) {
		t.Error("empty rect should contain nothing")
	}
}

func TestHitMap_TopmostWins(t *testing.T) {
	hm := NewHitMap()
	hm.Add("pane", Rect{W: 80, H: 24}, 1)
	hm.AddRect("float", 10, 5, 20, 10, 2)

	if r := hm.Test(15, 7); r == nil || r.ID != "float" || r.Data != 2 {
		t.Errorf("Test(15, 7) = %+v, want float", r)
	}
	if r := hm.Test(0, 0); r == nil || r.ID != "pane" {
		t.Errorf("Test(0, 0) = %+v, want pane", r)
	}
	if r := hm.Test(100, 100); r != nil {
		t.Errorf("Test outside = %+v", r)
	}
}

func TestHitMap_ClearAndRegions(t *testing.T) {
	hm := NewHitMap()
	hm.Add("a", Rect{W: 5, H: 5}, nil)

	regions := hm.Regions()
	regions[0].ID = "mutated"
	if hm.Regions()[0].ID != "a" {
		t.Error("Regions should return a copy")
	}

	hm.Clear()
	if hm.Test(1, 1) != nil || len(hm.Regions()) != 0 {
		t.Error("Clear should drop every region")
	}
}

func TestHandleMouse_Click(t *testing.T) {
	h := NewHandler()
	h.HitMap.Add("btn", Rect{W: 10, H: 10}, nil)

	hit := h.HandleMouse(tea.MouseMsg{Action: tea.MouseActionPress, Button: tea.MouseButtonLeft, X: 5, Y: 5})
	if hit.Type != ActionClick || hit.Region == nil || hit.Region.ID != "btn" {
		t.Errorf("click = %+v", hit)
	}

	miss := h.HandleMouse(tea.MouseMsg{Action: tea.MouseActionPress, Button: tea.MouseButtonLeft, X: 50, Y: 50})
	if miss.Type != ActionNone {
		t.Errorf("miss = %+v", miss)
	}

	right := h.HandleMouse(tea.MouseMsg{Action: tea.MouseActionPress, Button: tea.MouseButtonRight, X: 5, Y: 5})
	if right.Type != ActionNone {
		t.Errorf("right button = %+v", right)
	}
}

func TestHandleMouse_Drag(t *testing.T) {
	h := NewHandler()

	if a := h.HandleMouse(tea.MouseMsg{Action: tea.MouseActionMotion, X: 3, Y: 3}); a.Type != ActionNone {
		t.Errorf("motion without drag = %+v", a)
	}

	h.StartDrag(10, 20, "divider", 15)
	if !h.IsDragging() || h.DragRegion() != "divider" || h.DragStartValue() != 15 {
		t.Fatal("drag not started")
	}

	move := h.HandleMouse(tea.MouseMsg{Action: tea.MouseActionMotion, X: 12, Y: 17})
	if move.Type != ActionDrag || move.DragDX != 2 || move.DragDY != -3 {
		t.Errorf("drag = %+v", move)
	}

	end := h.HandleMouse(tea.MouseMsg{Action: tea.MouseActionRelease, X: 8, Y: 21})
	if end.Type != ActionDragEnd || end.DragDX != -2 || end.DragDY != 1 {
		t.Errorf("release = %+v", end)
	}
	if h.IsDragging() || h.DragRegion() != "" {
		t.Error("release should end the drag")
	}
}
