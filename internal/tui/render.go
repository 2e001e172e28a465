package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/studiowebux/insightcli/internal/filter"
	"github.com/studiowebux/insightcli/internal/keybinds"
)

const (
	defaultWidth        = 80
	inputHeight         = 6
	defaultResultHeight = 12
	// title, button, result title, status bar and spacing
	chromeHeight = 8

	resultTitle   = "Key Insights"
	submitLabel   = "Extract Insights"
	loadingLabel  = "Extracting..."
	staleSuffix   = " (previous)"
	noResultLabel = "No insights yet"
)

// Adaptive color definitions for light/dark terminal support
var (
	colorGreen  = lipgloss.AdaptiveColor{Light: "#006400", Dark: "#00ff00"}
	colorRed    = lipgloss.AdaptiveColor{Light: "#8b0000", Dark: "#ff0000"}
	colorYellow = lipgloss.AdaptiveColor{Light: "#b8860b", Dark: "#ffff00"}
	colorGray   = lipgloss.AdaptiveColor{Light: "#555555", Dark: "#888888"}
	colorCyan   = lipgloss.AdaptiveColor{Light: "#008b8b", Dark: "#00ffff"}
)

var (
	styleTitle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorCyan)

	styleSelected = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorGreen)

	styleSuccess = lipgloss.NewStyle().
			Foreground(colorGreen)

	styleError = lipgloss.NewStyle().
			Foreground(colorRed)

	styleWarning = lipgloss.NewStyle().
			Foreground(colorYellow)

	styleSubtle = lipgloss.NewStyle().
			Foreground(colorGray)

	styleButton = lipgloss.NewStyle().
			Bold(true).
			Padding(0, 2).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorGreen)

	styleButtonDisabled = lipgloss.NewStyle().
				Padding(0, 2).
				Border(lipgloss.RoundedBorder()).
				BorderForeground(colorGray).
				Foreground(colorGray)

	styleBanner = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorRed).
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(colorRed).
			PaddingLeft(1)
)

// updateLayout resizes components after a window size change
func (m *Model) updateLayout() {
	m.input.SetWidth(max(m.width-2, 20))

	resultHeight := m.height - inputHeight - chromeHeight
	if m.errorMsg != "" {
		resultHeight--
	}
	if resultHeight < 3 {
		resultHeight = 3
	}
	m.resultView.Width = m.width
	m.resultView.Height = resultHeight
	m.queryInput.Width = max(m.width-10, 10)
	m.updateResultView()
}

// updateResultView regenerates the result viewport content from state
func (m *Model) updateResultView() {
	m.resultView.SetContent(m.resultContent())
}

// resultContent renders the displayed result as indented JSON
func (m *Model) resultContent() string {
	if !m.hasResult() {
		return styleSubtle.Render(noResultLabel)
	}

	shown, err := m.displayedResult()
	if err != nil {
		return styleError.Render(err.Error())
	}

	text, err := filter.Format(shown)
	if err != nil {
		return styleError.Render(err.Error())
	}
	if m.config.Highlight {
		text = filter.Highlight(text, m.config.Theme)
	}
	return text
}

// resultIsStale reports whether the shown result predates the current state
func (m *Model) resultIsStale() bool {
	return m.hasResult() && (m.loading || m.errorMsg != "")
}

// render is a pure function of the model state
func (m *Model) render() string {
	if m.mode == ModeHistory {
		return m.renderHistory()
	}

	var b strings.Builder

	b.WriteString(styleTitle.Render("Insight Extractor"))
	b.WriteString(styleSubtle.Render("  " + m.client.Endpoint()))
	b.WriteString("\n\n")

	b.WriteString(m.input.View())
	b.WriteString("\n")
	b.WriteString(m.renderSubmit())
	b.WriteString("\n")

	if m.errorMsg != "" {
		b.WriteString(styleBanner.Render(m.errorMsg))
		b.WriteString("\n")
	}

	if m.hasResult() {
		title := resultTitle
		if m.query != "" {
			title += " [" + m.query + "]"
		}
		if m.resultIsStale() {
			title += staleSuffix
		}
		b.WriteString(styleTitle.Render(title))
		b.WriteString("\n")
		b.WriteString(m.resultView.View())
		b.WriteString("\n")
	}

	if m.mode == ModeQuery {
		b.WriteString(m.queryInput.View())
		if m.queryError != "" {
			b.WriteString("  " + styleError.Render(m.queryError))
		}
		b.WriteString("\n")
	}

	b.WriteString(m.renderStatusBar())
	return b.String()
}

// renderSubmit draws the submit control, disabled while loading
func (m *Model) renderSubmit() string {
	if !m.SubmitEnabled() {
		return styleButtonDisabled.Render(m.spinner.View() + " " + loadingLabel)
	}
	hint := m.keybinds.GetBindingString(keybinds.ContextEditor, keybinds.ActionSubmit)
	return styleButton.Render(submitLabel) + styleSubtle.Render("  "+hint)
}

// renderStatusBar draws the status message and key hints
func (m *Model) renderStatusBar() string {
	status := styleSuccess.Render(m.statusMsg)
	if m.errorMsg != "" {
		status = styleWarning.Render(m.statusMsg)
	}

	hints := []string{
		m.hint(keybinds.ActionCopyResult, "copy"),
		m.hint(keybinds.ActionOpenHistory, "history"),
		m.hint(keybinds.ActionEditQuery, "query"),
		m.hint(keybinds.ActionClearInput, "clear"),
		m.hint(keybinds.ActionQuit, "quit"),
	}
	return status + "\n" + styleSubtle.Render(strings.Join(hints, " | "))
}

func (m *Model) hint(action keybinds.Action, label string) string {
	return m.keybinds.GetBindingString(keybinds.ContextEditor, action) + " " + label
}

// renderHistory draws the history modal
func (m *Model) renderHistory() string {
	var b strings.Builder

	b.WriteString(styleTitle.Render(fmt.Sprintf("History (%d)", len(m.historyEntries))))
	b.WriteString("\n")
	if m.historySearchActive || m.historySearchQuery != "" {
		b.WriteString(styleWarning.Render("Search: " + m.historySearchQuery))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	if len(m.historyEntries) == 0 {
		b.WriteString(styleSubtle.Render("No submissions"))
		b.WriteString("\n")
	}

	visible := max(m.height-8, 5)
	offset := 0
	if m.historyIndex >= visible {
		offset = m.historyIndex - visible + 1
	}

	lineWidth := max(m.width-4, 20)
	for i := offset; i < len(m.historyEntries) && i < offset+visible; i++ {
		entry := m.historyEntries[i]

		outcome := styleSuccess.Render("ok  ")
		detail := filter.Summary(entry.Result)
		if !entry.Succeeded() {
			outcome = styleError.Render("fail")
			detail = entry.Error
		}

		preview := strings.Join(strings.Fields(entry.Input), " ")
		if detail != "" {
			preview += " -> " + detail
		}
		line := fmt.Sprintf("%s %s %s", entry.Timestamp, outcome, truncate(preview, lineWidth-26))

		if i == m.historyIndex {
			line = styleSelected.Render("> ") + line
		} else {
			line = "  " + line
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(styleSubtle.Render(strings.Join([]string{
		m.keybinds.GetBindingString(keybinds.ContextHistory, keybinds.ActionLoadEntry) + " load",
		m.keybinds.GetBindingString(keybinds.ContextHistory, keybinds.ActionSearch) + " search",
		m.keybinds.GetBindingString(keybinds.ContextHistory, keybinds.ActionDeleteEntry) + " delete",
		m.keybinds.GetBindingString(keybinds.ContextHistory, keybinds.ActionCancel) + " close",
	}, " | ")))
	b.WriteString("\n")
	b.WriteString(styleSuccess.Render(m.statusMsg))
	return b.String()
}

// truncate shortens s to n runes, appending an ellipsis when cut
func truncate(s string, n int) string {
	runes := []rune(s)
	if n <= 3 || len(runes) <= n {
		return s
	}
	return string(runes[:n-3]) + "..."
}
