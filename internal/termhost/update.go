package termhost

import (
	"slices"

	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/marcus/scratchpad/internal/event"
	"github.com/marcus/scratchpad/internal/host"
	"github.com/marcus/scratchpad/internal/keymap"
	"github.com/marcus/scratchpad/internal/msg"
)

// registerHandlers wires the commands the host implements itself. The
// toggle command is left for the caller.
func (h *Host) registerHandlers() {
	h.keys.SetHandler(keymap.CmdPrompt, h.openPrompt)
	h.keys.SetHandler(keymap.CmdFocusNext, func() tea.Cmd {
		h.focusNext()
		return nil
	})
	resize := func(dw, dh int) func() tea.Cmd {
		return func() tea.Cmd {
			if h.resizeFocused(dw, dh) {
				h.Emit(event.Event{Type: event.Resized, Window: int(h.focused)})
			}
			return nil
		}
	}
	h.keys.SetHandler(keymap.CmdGrowHeight, resize(0, 1))
	h.keys.SetHandler(keymap.CmdShrinkHeight, resize(0, -1))
	h.keys.SetHandler(keymap.CmdGrowWidth, resize(1, 0))
	h.keys.SetHandler(keymap.CmdShrinkWidth, resize(-1, 0))
	h.keys.SetHandler(keymap.CmdUndo, func() tea.Cmd {
		h.undo()
		return nil
	})
	h.keys.SetHandler(keymap.CmdQuit, h.quit)
	h.keys.SetHandler(keymap.CmdRun, h.runPrompt)
	h.keys.SetHandler(keymap.CmdCancel, func() tea.Cmd {
		h.closePrompt()
		return nil
	})
}

// Init implements tea.Model.
func (h *Host) Init() tea.Cmd {
	return h.flush(textarea.Blink)
}

// Update implements tea.Model.
func (h *Host) Update(m tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch m := m.(type) {
	case tea.WindowSizeMsg:
		h.width, h.height = m.Width, m.Height
		first := !h.ready
		h.ready = true
		h.Emit(event.Event{Type: event.Resized})
		if first {
			ready := h.onReady
			h.onReady = nil
			for _, fn := range ready {
				fn()
			}
		}

	case tea.FocusMsg:
		h.Emit(event.Event{Type: event.FocusGained})

	case tea.BlurMsg:
		h.Emit(event.Event{Type: event.FocusLost})

	case tea.KeyMsg:
		cmd = h.handleKey(m)

	case tea.MouseMsg:
		if !h.prompting {
			h.handleMouse(m)
		}

	case msg.RunMsg:
		if m.Fn != nil {
			m.Fn()
		}

	case msg.ToastMsg:
		h.showToast(m)

	case msg.ClearToastMsg:
		if m.Seq == h.toastSeq {
			h.toast = nil
		}

	case msg.FileChangedMsg:
		h.Emit(event.Event{Type: event.FileChanged, Path: m.Path})
		if h.watcher != nil {
			h.pending = append(h.pending, h.waitForChange())
		}

	default:
		// cursor blink and other component messages
		if h.prompting {
			h.prompt, cmd = h.prompt.Update(m)
		} else if b := h.focusedBuffer(); b != nil {
			b.area, cmd = b.area.Update(m)
		}
	}

	if h.ready {
		h.applyLayout(h.layout())
	}
	return h, h.flush(cmd)
}

// flush returns the pending commands together with cmd.
func (h *Host) flush(cmd tea.Cmd) tea.Cmd {
	cmds := append(h.pending, cmd)
	h.pending = nil
	return tea.Batch(cmds...)
}

// handleKey routes a key press: the open prompt first, then keys mapped on
// the focused buffer, then global commands, then the focused textarea.
func (h *Host) handleKey(k tea.KeyMsg) tea.Cmd {
	if h.prompting {
		if c, ok := h.keys.Match(k, keymap.ContextPrompt); ok && c.Handler != nil {
			return c.Handler()
		}
		var cmd tea.Cmd
		h.prompt, cmd = h.prompt.Update(k)
		return cmd
	}

	if b := h.focusedBuffer(); b != nil {
		if action, ok := b.keys[k.String()]; ok {
			action()
			return nil
		}
	}

	if c, ok := h.keys.Match(k, keymap.ContextGlobal); ok && c.Handler != nil {
		return c.Handler()
	}

	b := h.focusedBuffer()
	if b == nil {
		return nil
	}
	if h.ready {
		h.applyLayout(h.layout())
	}
	before := b.area.Value()
	var cmd tea.Cmd
	b.area, cmd = b.area.Update(k)
	if b.area.Value() != before {
		b.modified = true
		if b.undo {
			b.pushHistory(before)
		}
	}
	return cmd
}

func (h *Host) undo() {
	b := h.focusedBuffer()
	if b == nil || len(b.history) == 0 {
		return
	}
	prev := b.history[len(b.history)-1]
	b.history = b.history[:len(b.history)-1]
	b.area.SetValue(prev)
	b.modified = true
}

// focusNext cycles focus through the windows in creation order.
func (h *Host) focusNext() {
	if len(h.order) < 2 {
		return
	}
	i := slices.Index(h.order, h.focused)
	h.moveFocus(h.order[(i+1)%len(h.order)], true)
}

func (h *Host) quit() tea.Cmd {
	h.closePrompt()
	h.Emit(event.Event{Type: event.Exiting})
	return tea.Quit
}

func (h *Host) openPrompt() tea.Cmd {
	h.prompting = true
	h.prompt.SetValue("")
	h.syncFocus()
	return h.prompt.Focus()
}

func (h *Host) closePrompt() {
	if !h.prompting {
		return
	}
	h.prompting = false
	h.prompt.Blur()
	h.prompt.SetValue("")
	h.syncFocus()
}

// runPrompt hands the typed line to the command runner and reports the
// result as a toast.
func (h *Host) runPrompt() tea.Cmd {
	line := h.prompt.Value()
	h.closePrompt()
	if line == "" {
		return nil
	}
	if h.runCommand == nil {
		h.Notify(host.LevelWarn, "no command runner")
		return nil
	}
	out, err := h.runCommand(line)
	if err != nil {
		h.Notify(host.LevelError, err.Error())
		return nil
	}
	if out != "" {
		h.Notify(host.LevelInfo, out)
	}
	return nil
}
