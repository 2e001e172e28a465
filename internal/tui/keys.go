package tui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/studiowebux/insightcli/internal/keybinds"
)

// handleKeyPress routes key presses based on current mode
func (m *Model) handleKeyPress(msg tea.KeyMsg) tea.Cmd {
	switch m.mode {
	case ModeHistory:
		return m.handleHistoryKeys(msg)
	case ModeQuery:
		return m.handleQueryKeys(msg)
	default:
		return m.handleEditorKeys(msg)
	}
}

// handleEditorKeys handles the main form. Unbound keys go to the text area.
func (m *Model) handleEditorKeys(msg tea.KeyMsg) tea.Cmd {
	action, ok := m.keybinds.Match(keybinds.ContextEditor, msg.String())
	if !ok {
		return m.updateInput(msg)
	}

	switch action {
	case keybinds.ActionQuit, keybinds.ActionQuitForce:
		m.Cleanup()
		return tea.Quit

	case keybinds.ActionSubmit:
		cmd := m.Submit()
		if cmd == nil {
			return nil
		}
		return tea.Batch(cmd, m.spinner.Tick)

	case keybinds.ActionClearInput:
		m.EditText("")
		m.statusMsg = "Input cleared"

	case keybinds.ActionCopyResult:
		m.copyResult()

	case keybinds.ActionOpenHistory:
		m.openHistory()

	case keybinds.ActionEditQuery:
		m.mode = ModeQuery
		m.input.Blur()
		m.queryInput.SetValue(m.query)
		m.queryInput.CursorEnd()
		return m.queryInput.Focus()

	case keybinds.ActionScrollUp:
		m.resultView.ScrollUp(1)
	case keybinds.ActionScrollDown:
		m.resultView.ScrollDown(1)
	case keybinds.ActionPageUp:
		m.resultView.PageUp()
	case keybinds.ActionPageDown:
		m.resultView.PageDown()
	}

	return nil
}

// handleQueryKeys handles the JMESPath query input
func (m *Model) handleQueryKeys(msg tea.KeyMsg) tea.Cmd {
	action, ok := m.keybinds.Match(keybinds.ContextQuery, msg.String())
	if !ok {
		var cmd tea.Cmd
		m.queryInput, cmd = m.queryInput.Update(msg)
		return cmd
	}

	switch action {
	case keybinds.ActionQuitForce:
		m.Cleanup()
		return tea.Quit

	case keybinds.ActionConfirm:
		m.applyQuery(m.queryInput.Value())
		if m.queryError != "" {
			return nil
		}
		return m.closeQuery()

	case keybinds.ActionCancel:
		m.queryError = ""
		m.statusMsg = "Query unchanged"
		return m.closeQuery()
	}

	return nil
}

func (m *Model) closeQuery() tea.Cmd {
	m.mode = ModeNormal
	m.queryInput.Blur()
	return m.input.Focus()
}
