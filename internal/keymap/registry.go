// Package keymap maps key presses to named commands per input context.
package keymap

import (
	"slices"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// Binding maps a key to a command in a context.
type Binding struct {
	Key     string
	Command string
	Context string
}

// Command is a named action. Handler may be nil until the host wires it.
type Command struct {
	ID          string
	Name        string
	Description string
	Context     string
	Handler     func() tea.Cmd
}

// Registry holds commands and their key bindings.
type Registry struct {
	commands map[string]Command
	bindings []Binding
	keys     map[string]map[string]key.Binding // context -> command -> keys
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		commands: make(map[string]Command),
		keys:     make(map[string]map[string]key.Binding),
	}
}

// RegisterCommand adds or replaces a command.
func (r *Registry) RegisterCommand(c Command) {
	r.commands[c.ID] = c
	r.rebuild()
}

// SetHandler attaches a handler to a registered command.
func (r *Registry) SetHandler(id string, handler func() tea.Cmd) bool {
	c, ok := r.commands[id]
	if !ok {
		return false
	}
	c.Handler = handler
	r.commands[id] = c
	return true
}

// RegisterBinding adds a key binding. A key already bound in the same
// context is rebound.
func (r *Registry) RegisterBinding(b Binding) {
	r.bindings = slices.DeleteFunc(r.bindings, func(old Binding) bool {
		return old.Key == b.Key && old.Context == b.Context
	})
	r.bindings = append(r.bindings, b)
	r.rebuild()
}

// GetCommand looks up a command by ID.
func (r *Registry) GetCommand(id string) (Command, bool) {
	c, ok := r.commands[id]
	return c, ok
}

// BindingsForContext returns the bindings of a context in registration order.
func (r *Registry) BindingsForContext(context string) []Binding {
	var out []Binding
	for _, b := range r.bindings {
		if b.Context == context {
			out = append(out, b)
		}
	}
	return out
}

// Match returns the command bound to msg in context.
func (r *Registry) Match(msg tea.KeyMsg, context string) (Command, bool) {
	for _, b := range r.BindingsForContext(context) {
		kb, ok := r.keys[context][b.Command]
		if !ok || !key.Matches(msg, kb) {
			continue
		}
		c, ok := r.commands[b.Command]
		return c, ok
	}
	return Command{}, false
}

// Handle runs the handler bound to msg in context. It returns nil when no
// handler is bound.
func (r *Registry) Handle(msg tea.KeyMsg, context string) tea.Cmd {
	c, ok := r.Match(msg, context)
	if !ok || c.Handler == nil {
		return nil
	}
	return c.Handler()
}

// Binding returns the key.Binding for command id in context.
func (r *Registry) Binding(context, id string) (key.Binding, bool) {
	kb, ok := r.keys[context][id]
	return kb, ok
}

// Help returns one key.Binding per command in context, for help rendering.
func (r *Registry) Help(context string) []key.Binding {
	var out []key.Binding
	seen := make(map[string]bool)
	for _, b := range r.BindingsForContext(context) {
		if seen[b.Command] {
			continue
		}
		seen[b.Command] = true
		if kb, ok := r.keys[context][b.Command]; ok {
			out = append(out, kb)
		}
	}
	return out
}

// rebuild regenerates the key.Binding index from bindings and commands.
func (r *Registry) rebuild() {
	r.keys = make(map[string]map[string]key.Binding)
	grouped := make(map[string]map[string][]string)
	for _, b := range r.bindings {
		if grouped[b.Context] == nil {
			grouped[b.Context] = make(map[string][]string)
		}
		grouped[b.Context][b.Command] = append(grouped[b.Context][b.Command], b.Key)
	}
	for context, byCmd := range grouped {
		r.keys[context] = make(map[string]key.Binding)
		for id, keys := range byCmd {
			name := id
			if c, ok := r.commands[id]; ok {
				name = c.Name
			}
			r.keys[context][id] = key.NewBinding(key.WithKeys(keys...), key.WithHelp(keys[0], name))
		}
	}
}
