package termhost

import (
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/marcus/scratchpad/internal/host"
	"github.com/marcus/scratchpad/internal/keymap"
	"github.com/marcus/scratchpad/internal/styles"
	"github.com/marcus/scratchpad/internal/ui"
)

// statusHints are the commands advertised in the status line.
var statusHints = []string{keymap.CmdToggle, keymap.CmdPrompt, keymap.CmdFocusNext, keymap.CmdQuit}

// applyLayout sizes each textarea to its window and applies the window
// options. Floats go last so they win when a buffer is shown twice.
func (h *Host) applyLayout(rects map[host.WindowID]rect) {
	apply := func(id host.WindowID) {
		w := h.windows[id]
		r := rects[id]
		b := h.buffers[w.buf]
		if b == nil || r.W <= 0 || r.H <= 0 {
			return
		}
		b.area.ShowLineNumbers = w.opts.Number || w.opts.RelativeNumber
		if w.opts.CursorLine {
			b.area.FocusedStyle.CursorLine = styles.CursorLine
		} else {
			b.area.FocusedStyle.CursorLine = lipgloss.NewStyle()
		}
		b.area.SetWidth(r.W)
		b.area.SetHeight(r.H)
	}
	for _, id := range h.order {
		if h.windows[id].kind != kindFloat {
			apply(id)
		}
	}
	for _, id := range h.order {
		if h.windows[id].kind == kindFloat {
			apply(id)
		}
	}
}

// View renders the tiled windows, floats on top of them, the prompt when
// open, and the status line.
func (h *Host) View() string {
	if !h.ready {
		return ""
	}
	vh := h.viewHeight()
	rects := h.layout()

	canvas := ui.Blank(h.width, vh)
	for _, id := range h.order {
		w := h.windows[id]
		r := rects[id]
		if w.kind == kindFloat || r.W <= 0 || r.H <= 0 {
			continue
		}
		content := styles.Fit(h.buffers[w.buf].area.View(), r.W, r.H)
		canvas = ui.OverlayAt(canvas, content, r.X, r.Y, h.width, vh, false)

		edge := lipgloss.NewStyle().Foreground(styles.BorderColor(id == h.focused))
		switch w.kind {
		case kindVSplit:
			sep := strings.TrimSuffix(strings.Repeat("│\n", r.H), "\n")
			canvas = ui.OverlayAt(canvas, edge.Render(sep), r.X-1, r.Y, h.width, vh, false)
		case kindHSplit:
			rule := styles.TitleLine("─", r.W, " "+h.displayName(w.buf)+" ", "left")
			canvas = ui.OverlayAt(canvas, edge.Render(rule), r.X, r.Y-1, h.width, vh, false)
		}
	}

	for _, id := range h.order {
		w := h.windows[id]
		if w.kind != kindFloat {
			continue
		}
		r := rects[id]
		pad := framePad(w)
		canvas = ui.OverlayAt(canvas, h.renderFloat(id, r), r.X-pad, r.Y-pad, h.width, vh, id == h.focused)
	}

	if h.prompting {
		canvas = ui.OverlayModal(canvas, styles.Prompt.Render(h.prompt.View()), h.width, vh)
	}

	if vh == 0 {
		return h.statusLine()
	}
	return canvas + "\n" + h.statusLine()
}

func (h *Host) renderFloat(id host.WindowID, r rect) string {
	w := h.windows[id]
	content := h.buffers[w.buf].area.View()
	border, ok := styles.BorderFor(w.float.Border)
	if !ok {
		return styles.Fit(content, r.W, r.H)
	}
	return styles.RenderFrame(content, r.W, r.H, border, w.float.Title, w.float.TitlePos, id == h.focused)
}

func (h *Host) displayName(buf host.BufferID) string {
	b, ok := h.buffers[buf]
	if !ok || b.name == "" {
		return noName
	}
	return filepath.Base(b.name)
}

// statusLine shows the focused buffer on the left and a toast or key hints
// on the right.
func (h *Host) statusLine() string {
	var left string
	if w, ok := h.windows[h.focused]; ok {
		left = " " + styles.Title.Render(h.displayName(w.buf))
		if h.buffers[w.buf].modified {
			left += " " + styles.StatusModified.Render("[+]")
		}
	}

	right := h.hints()
	if h.toast != nil {
		right = toastStyle(h.toast.Level).Render(strings.ReplaceAll(h.toast.Message, "\n", " "))
	}

	room := h.width - ansi.StringWidth(left) - 1
	if room <= 0 {
		return ansi.Truncate(left, h.width, "")
	}
	right = ansi.Truncate(right, room, "…")
	gap := h.width - ansi.StringWidth(left) - ansi.StringWidth(right)
	return left + strings.Repeat(" ", max(gap, 1)) + right
}

func (h *Host) hints() string {
	var bindings []key.Binding
	for _, id := range statusHints {
		if kb, ok := h.keys.Binding(keymap.ContextGlobal, id); ok {
			bindings = append(bindings, kb)
		}
	}
	return h.help.ShortHelpView(bindings)
}

func toastStyle(level host.Level) lipgloss.Style {
	switch level {
	case host.LevelError:
		return styles.ToastError
	case host.LevelWarn:
		return styles.ToastWarning
	default:
		return styles.ToastSuccess
	}
}
