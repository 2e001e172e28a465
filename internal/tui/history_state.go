package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/studiowebux/insightcli/internal/history"
	"github.com/studiowebux/insightcli/internal/keybinds"
)

// historyLimit caps how many submissions the modal loads
const historyLimit = 200

// openHistory loads stored submissions and shows the history modal
func (m *Model) openHistory() {
	if m.historyManager == nil {
		m.statusMsg = "History is disabled"
		return
	}

	entries, err := m.historyManager.Load(historyLimit)
	if err != nil {
		m.statusMsg = fmt.Sprintf("Failed to load history: %v", err)
		return
	}

	m.historyAllEntries = entries
	m.historyEntries = entries
	m.historyIndex = 0
	m.historySearchActive = false
	m.historySearchQuery = ""
	m.mode = ModeHistory
	m.input.Blur()
	m.statusMsg = fmt.Sprintf("%d submissions", len(entries))
}

// filterHistoryEntries narrows the list to entries matching the search query
func (m *Model) filterHistoryEntries() {
	m.historyEntries = history.Filter(m.historyAllEntries, m.historySearchQuery)
	m.historyIndex = 0
}

// loadHistoryEntry restores a stored submission into the form
func (m *Model) loadHistoryEntry(index int) tea.Cmd {
	if index < 0 || index >= len(m.historyEntries) {
		return nil
	}
	entry := m.historyEntries[index]

	m.EditText(entry.Input)
	if entry.Succeeded() {
		m.result = entry.Result
		m.setError("")
	} else {
		m.setError(entry.Error)
	}
	m.updateResultView()

	m.statusMsg = fmt.Sprintf("Loaded submission from %s", entry.Timestamp)
	return m.closeHistory()
}

// deleteHistoryEntry removes the selected entry from the store and the list
func (m *Model) deleteHistoryEntry(index int) {
	if index < 0 || index >= len(m.historyEntries) {
		return
	}
	id := m.historyEntries[index].ID

	if err := m.historyManager.Delete(id); err != nil {
		m.statusMsg = fmt.Sprintf("Failed to delete entry: %v", err)
		return
	}

	for i, e := range m.historyAllEntries {
		if e.ID == id {
			m.historyAllEntries = append(m.historyAllEntries[:i:i], m.historyAllEntries[i+1:]...)
			break
		}
	}
	m.historyEntries = append(m.historyEntries[:index:index], m.historyEntries[index+1:]...)
	if m.historyIndex >= len(m.historyEntries) && m.historyIndex > 0 {
		m.historyIndex--
	}
	m.statusMsg = "Entry deleted"
}

func (m *Model) closeHistory() tea.Cmd {
	m.mode = ModeNormal
	m.historySearchActive = false
	return m.input.Focus()
}

// handleHistoryKeys handles the history modal
func (m *Model) handleHistoryKeys(msg tea.KeyMsg) tea.Cmd {
	// If search is active, handle search input first
	if m.historySearchActive {
		switch msg.String() {
		case "esc":
			m.historySearchActive = false
			m.historySearchQuery = ""
			m.historyEntries = m.historyAllEntries
			m.historyIndex = 0
			m.statusMsg = "Search cleared"
			return nil
		case "enter":
			m.historySearchActive = false
			m.statusMsg = fmt.Sprintf("Filtered to %d entries", len(m.historyEntries))
			return nil
		case "backspace":
			if len(m.historySearchQuery) > 0 {
				runes := []rune(m.historySearchQuery)
				m.historySearchQuery = string(runes[:len(runes)-1])
				m.filterHistoryEntries()
			}
			return nil
		default:
			switch msg.Type {
			case tea.KeyRunes:
				m.historySearchQuery += string(msg.Runes)
				m.filterHistoryEntries()
			case tea.KeySpace:
				m.historySearchQuery += " "
				m.filterHistoryEntries()
			}
			return nil
		}
	}

	action, ok := m.keybinds.Match(keybinds.ContextHistory, msg.String())
	if !ok {
		return nil
	}

	switch action {
	case keybinds.ActionQuitForce:
		m.Cleanup()
		return tea.Quit

	case keybinds.ActionCancel:
		m.statusMsg = "Ready"
		return m.closeHistory()

	case keybinds.ActionSearch:
		m.historySearchActive = true
		m.historySearchQuery = ""
		m.statusMsg = "Search history (ESC to cancel, Enter to apply)"

	case keybinds.ActionNavigateUp:
		if m.historyIndex > 0 {
			m.historyIndex--
		}

	case keybinds.ActionNavigateDown:
		if m.historyIndex < len(m.historyEntries)-1 {
			m.historyIndex++
		}

	case keybinds.ActionGoToTop:
		m.historyIndex = 0

	case keybinds.ActionGoToBottom:
		if len(m.historyEntries) > 0 {
			m.historyIndex = len(m.historyEntries) - 1
		}

	case keybinds.ActionLoadEntry:
		return m.loadHistoryEntry(m.historyIndex)

	case keybinds.ActionDeleteEntry:
		m.deleteHistoryEntry(m.historyIndex)
	}

	return nil
}
