package keybinds

// Action represents a user action that can be triggered by a keybinding
type Action string

// Context represents the context in which keybindings are active
type Context string

const (
	ContextGlobal  Context = "global"  // Available everywhere
	ContextEditor  Context = "editor"  // Main form with the text area focused
	ContextHistory Context = "history" // History browser
	ContextQuery   Context = "query"   // JMESPath query input
)

const (
	ActionNone Action = "none" // Explicitly unbound

	// Global actions
	ActionQuit      Action = "quit"
	ActionQuitForce Action = "quit_force"

	// Form actions
	ActionSubmit      Action = "submit"
	ActionClearInput  Action = "clear_input"
	ActionCopyResult  Action = "copy_result"
	ActionOpenHistory Action = "open_history"
	ActionEditQuery   Action = "edit_query"
	ActionScrollUp    Action = "scroll_up"
	ActionScrollDown  Action = "scroll_down"
	ActionPageUp      Action = "page_up"
	ActionPageDown    Action = "page_down"

	// List navigation
	ActionNavigateUp   Action = "navigate_up"
	ActionNavigateDown Action = "navigate_down"
	ActionGoToTop      Action = "go_to_top"
	ActionGoToBottom   Action = "go_to_bottom"

	// History browser
	ActionLoadEntry   Action = "load_entry"
	ActionDeleteEntry Action = "delete_entry"
	ActionSearch      Action = "search"

	// Modal/input
	ActionConfirm Action = "confirm"
	ActionCancel  Action = "cancel"
)

// AllActions lists every bindable action, used for config validation
var AllActions = []Action{
	ActionNone, ActionQuit, ActionQuitForce,
	ActionSubmit, ActionClearInput, ActionCopyResult, ActionOpenHistory, ActionEditQuery,
	ActionScrollUp, ActionScrollDown, ActionPageUp, ActionPageDown,
	ActionNavigateUp, ActionNavigateDown, ActionGoToTop, ActionGoToBottom,
	ActionLoadEntry, ActionDeleteEntry, ActionSearch,
	ActionConfirm, ActionCancel,
}

// IsValidAction reports whether a is a known action
func IsValidAction(a Action) bool {
	for _, known := range AllActions {
		if a == known {
			return true
		}
	}
	return false
}
