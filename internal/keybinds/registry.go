package keybinds

import (
	"sort"
	"strings"
)

type binding struct {
	context Context
	key     string
}

// Registry maps (context, key) pairs to actions
type Registry struct {
	actions map[binding]Action
}

func NewRegistry() *Registry {
	return &Registry{actions: make(map[binding]Action)}
}

// Register binds key to action in context, replacing any earlier binding
func (r *Registry) Register(context Context, key string, action Action) {
	r.actions[binding{context, key}] = action
}

func (r *Registry) RegisterMultiple(context Context, keys []string, action Action) {
	for _, key := range keys {
		r.Register(context, key, action)
	}
}

// Match resolves key in context, falling back to global bindings.
// A key bound to ActionNone in the context hides the global binding.
func (r *Registry) Match(context Context, key string) (Action, bool) {
	action, ok := r.actions[binding{context, key}]
	if !ok && context != ContextGlobal {
		action, ok = r.actions[binding{ContextGlobal, key}]
	}
	if !ok || action == ActionNone {
		return "", false
	}
	return action, true
}

// GetBinding lists the keys for action in context, or in global when the
// context has none
func (r *Registry) GetBinding(context Context, action Action) []string {
	keys := r.keysFor(context, action)
	if len(keys) == 0 && context != ContextGlobal {
		keys = r.keysFor(ContextGlobal, action)
	}
	sort.Strings(keys)
	return keys
}

func (r *Registry) keysFor(context Context, action Action) []string {
	var keys []string
	for b, a := range r.actions {
		if b.context == context && a == action {
			keys = append(keys, b.key)
		}
	}
	return keys
}

// GetBindingString joins GetBinding for help text
func (r *Registry) GetBindingString(context Context, action Action) string {
	if keys := r.GetBinding(context, action); len(keys) > 0 {
		return strings.Join(keys, ", ")
	}
	return "unbound"
}
