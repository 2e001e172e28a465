package keybinds

// NewDefaultRegistry creates a registry with all default keybindings
func NewDefaultRegistry() *Registry {
	r := NewRegistry()

	registerGlobalBindings(r)
	registerEditorBindings(r)
	registerHistoryBindings(r)
	registerQueryBindings(r)

	return r
}

func registerGlobalBindings(r *Registry) {
	r.Register(ContextGlobal, "ctrl+c", ActionQuitForce)
}

// Editor keys must not shadow printable characters, the text area needs them
func registerEditorBindings(r *Registry) {
	r.Register(ContextEditor, "esc", ActionQuit)
	r.RegisterMultiple(ContextEditor, []string{"ctrl+s", "alt+enter"}, ActionSubmit)
	r.Register(ContextEditor, "ctrl+l", ActionClearInput)
	r.Register(ContextEditor, "ctrl+y", ActionCopyResult)
	r.Register(ContextEditor, "ctrl+r", ActionOpenHistory)
	r.Register(ContextEditor, "ctrl+f", ActionEditQuery)
	r.Register(ContextEditor, "pgup", ActionPageUp)
	r.Register(ContextEditor, "pgdown", ActionPageDown)
	r.Register(ContextEditor, "ctrl+up", ActionScrollUp)
	r.Register(ContextEditor, "ctrl+down", ActionScrollDown)
}

func registerHistoryBindings(r *Registry) {
	r.RegisterMultiple(ContextHistory, []string{"up", "k"}, ActionNavigateUp)
	r.RegisterMultiple(ContextHistory, []string{"down", "j"}, ActionNavigateDown)
	r.RegisterMultiple(ContextHistory, []string{"home", "g"}, ActionGoToTop)
	r.RegisterMultiple(ContextHistory, []string{"end", "G"}, ActionGoToBottom)
	r.Register(ContextHistory, "enter", ActionLoadEntry)
	r.Register(ContextHistory, "d", ActionDeleteEntry)
	r.Register(ContextHistory, "/", ActionSearch)
	r.RegisterMultiple(ContextHistory, []string{"esc", "q"}, ActionCancel)
}

func registerQueryBindings(r *Registry) {
	r.Register(ContextQuery, "enter", ActionConfirm)
	r.Register(ContextQuery, "esc", ActionCancel)
}
