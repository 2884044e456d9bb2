// Package keymap maps key presses to command identifiers per input
// context, so bindings live in one table instead of scattered
// switches in the update loop.
package keymap

// Binding associates a key with a command in one context. Context ""
// applies everywhere.
type Binding struct {
	Key     string // bubbletea key string, e.g. "ctrl+c", "f2", "up"
	Command string
	Context string
}

// Registry resolves keys to commands, most specific context first.
type Registry struct {
	byContext map[string]map[string]string
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{byContext: map[string]map[string]string{}}
}

// RegisterBinding adds or replaces one binding.
func (r *Registry) RegisterBinding(b Binding) {
	m, ok := r.byContext[b.Context]
	if !ok {
		m = map[string]string{}
		r.byContext[b.Context] = m
	}
	m[b.Key] = b.Command
}

// Lookup resolves key in context, falling back to the global context.
// The empty string means unbound.
func (r *Registry) Lookup(context, key string) string {
	if m, ok := r.byContext[context]; ok {
		if cmd, ok := m[key]; ok {
			return cmd
		}
	}
	if context != "" {
		if m, ok := r.byContext[""]; ok {
			return m[key]
		}
	}
	return ""
}

// Bindings returns all bindings for help rendering, global first.
func (r *Registry) Bindings() []Binding {
	var out []Binding
	appendCtx := func(ctx string) {
		for key, cmd := range r.byContext[ctx] {
			out = append(out, Binding{Key: key, Command: cmd, Context: ctx})
		}
	}
	appendCtx("")
	for ctx := range r.byContext {
		if ctx != "" {
			appendCtx(ctx)
		}
	}
	return out
}

// DefaultBindings returns the default key bindings.
func DefaultBindings() []Binding {
	return []Binding{
		// Global
		{Key: "ctrl+c", Command: "quit"},
		{Key: "ctrl+d", Command: "quit"},
		{Key: "f1", Command: "tab-combined"},
		{Key: "f2", Command: "tab-shell"},
		{Key: "f3", Command: "tab-messages"},
		{Key: "ctrl+l", Command: "clear-screen"},
		{Key: "ctrl+t", Command: "cycle-theme"},
		{Key: "ctrl+y", Command: "yank-line"},
		{Key: "ctrl+g", Command: "toggle-help"},
		{Key: "pgup", Command: "scroll-up"},
		{Key: "pgdown", Command: "scroll-down"},

		// Input line context
		{Key: "enter", Command: "submit", Context: "input"},
		{Key: "tab", Command: "complete", Context: "input"},
		{Key: "up", Command: "history-prev", Context: "input"},
		{Key: "down", Command: "history-next", Context: "input"},
	}
}

// RegisterDefaults registers all default bindings with the registry.
func RegisterDefaults(r *Registry) {
	for _, b := range DefaultBindings() {
		r.RegisterBinding(b)
	}
}
