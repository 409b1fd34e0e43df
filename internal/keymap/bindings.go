package keymap

// Contexts.
const (
	ContextGlobal = "global"
	ContextPrompt = "prompt"
)

// Command IDs handled by the terminal host.
const (
	CmdToggle       = "toggle-scratchpad"
	CmdPrompt       = "command-prompt"
	CmdFocusNext    = "focus-next"
	CmdGrowHeight   = "grow-height"
	CmdShrinkHeight = "shrink-height"
	CmdGrowWidth    = "grow-width"
	CmdShrinkWidth  = "shrink-width"
	CmdUndo         = "undo"
	CmdQuit         = "quit"
	CmdRun          = "run"
	CmdCancel       = "cancel"
)

// DefaultBindings returns the default key bindings.
func DefaultBindings() []Binding {
	return []Binding{
		// Global bindings
		{Key: "ctrl+t", Command: CmdToggle, Context: ContextGlobal},
		{Key: "ctrl+p", Command: CmdPrompt, Context: ContextGlobal},
		{Key: "ctrl+o", Command: CmdFocusNext, Context: ContextGlobal},
		{Key: "alt+down", Command: CmdGrowHeight, Context: ContextGlobal},
		{Key: "alt+up", Command: CmdShrinkHeight, Context: ContextGlobal},
		{Key: "alt+right", Command: CmdGrowWidth, Context: ContextGlobal},
		{Key: "alt+left", Command: CmdShrinkWidth, Context: ContextGlobal},
		{Key: "ctrl+z", Command: CmdUndo, Context: ContextGlobal},
		{Key: "ctrl+q", Command: CmdQuit, Context: ContextGlobal},
		{Key: "ctrl+c", Command: CmdQuit, Context: ContextGlobal},

		// Command prompt
		{Key: "enter", Command: CmdRun, Context: ContextPrompt},
		{Key: "esc", Command: CmdCancel, Context: ContextPrompt},
		{Key: "ctrl+c", Command: CmdCancel, Context: ContextPrompt},
	}
}

// DefaultCommands describes the commands the default bindings refer to.
func DefaultCommands() []Command {
	return []Command{
		{ID: CmdToggle, Name: "toggle", Description: "Show or hide the scratchpad", Context: ContextGlobal},
		{ID: CmdPrompt, Name: "cmd", Description: "Open the command prompt", Context: ContextGlobal},
		{ID: CmdFocusNext, Name: "next", Description: "Focus the next window", Context: ContextGlobal},
		{ID: CmdGrowHeight, Name: "taller", Description: "Grow the focused window", Context: ContextGlobal},
		{ID: CmdShrinkHeight, Name: "shorter", Description: "Shrink the focused window", Context: ContextGlobal},
		{ID: CmdGrowWidth, Name: "wider", Description: "Widen the focused window", Context: ContextGlobal},
		{ID: CmdShrinkWidth, Name: "narrower", Description: "Narrow the focused window", Context: ContextGlobal},
		{ID: CmdUndo, Name: "undo", Description: "Undo the last edit", Context: ContextGlobal},
		{ID: CmdQuit, Name: "quit", Description: "Save notes and exit", Context: ContextGlobal},
		{ID: CmdRun, Name: "run", Description: "Run the command", Context: ContextPrompt},
		{ID: CmdCancel, Name: "cancel", Description: "Close the prompt", Context: ContextPrompt},
	}
}

// RegisterDefaults registers all default commands and bindings with the
// registry.
func RegisterDefaults(r *Registry) {
	for _, c := range DefaultCommands() {
		r.RegisterCommand(c)
	}
	for _, b := range DefaultBindings() {
		r.RegisterBinding(b)
	}
}
