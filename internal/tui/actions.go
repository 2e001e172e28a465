package tui

import (
	"context"
	"fmt"
	"time"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/studiowebux/insightcli/internal/client"
	"github.com/studiowebux/insightcli/internal/filter"
	"github.com/studiowebux/insightcli/internal/history"
	"github.com/studiowebux/insightcli/internal/types"
)

// insightsExtractedMsg is sent when a submission succeeds
type insightsExtractedMsg struct {
	generation int
	result     types.InsightResult
	duration   time.Duration
}

// extractFailedMsg is sent when a submission fails
type extractFailedMsg struct {
	generation int
	err        error
	duration   time.Duration
}

// Submit starts an extraction of the current input. It returns nil and
// leaves the state untouched when a request is already in flight.
func (m *Model) Submit() tea.Cmd {
	if m.loading {
		m.statusMsg = "Request already in progress"
		return nil
	}

	m.loading = true
	m.setError("")
	m.generation++
	m.statusMsg = "Extracting insights..."
	m.updateResultView()

	var store *history.Manager
	if m.config.HistoryEnabled {
		store = m.historyManager
	}

	return extractInsights(m.client, store, m.log, m.generation, m.InputText())
}

// extractInsights runs one request off the UI goroutine. It captures its
// collaborators by value and never touches the model.
func extractInsights(c *client.Client, store *history.Manager, log zerolog.Logger, generation int, text string) tea.Cmd {
	return func() tea.Msg {
		ctx := log.WithContext(context.Background())

		start := time.Now()
		result, err := c.ExtractInsights(ctx, text)
		duration := time.Since(start)

		if store != nil {
			saveSubmission(store, log, c.Endpoint(), text, result, err, duration)
		}

		if err != nil {
			log.Warn().Err(err).Int("generation", generation).Msg("extraction failed")
			return extractFailedMsg{generation: generation, err: err, duration: duration}
		}
		return insightsExtractedMsg{generation: generation, result: result, duration: duration}
	}
}

// saveSubmission records a submission; failures are logged, never surfaced
func saveSubmission(store *history.Manager, log zerolog.Logger, endpoint, text string, result types.InsightResult, err error, duration time.Duration) {
	entry := history.NewEntry(endpoint, text, result, err, duration)
	if _, saveErr := store.Save(entry); saveErr != nil {
		log.Error().Err(saveErr).Msg("failed to save submission to history")
	}
}

// displayedResult is the result after the active query, if any
func (m *Model) displayedResult() (types.InsightResult, error) {
	if !m.hasResult() || m.query == "" {
		return m.result, nil
	}
	return filter.Apply(m.result, m.query)
}

// copyResult copies the displayed result to the system clipboard
func (m *Model) copyResult() {
	if !m.hasResult() {
		m.statusMsg = "No result to copy"
		return
	}

	shown, err := m.displayedResult()
	if err != nil {
		shown = m.result
	}
	text, err := filter.Format(shown)
	if err != nil {
		m.statusMsg = fmt.Sprintf("Copy failed: %v", err)
		return
	}

	if err := clipboard.WriteAll(text); err != nil {
		m.statusMsg = fmt.Sprintf("Copy failed: %v", err)
		return
	}
	m.statusMsg = "Result copied to clipboard"
}

// applyQuery validates and activates a JMESPath expression
func (m *Model) applyQuery(expr string) {
	if expr == "" {
		m.query = ""
		m.queryError = ""
		m.statusMsg = "Query cleared"
		m.updateResultView()
		return
	}

	if m.hasResult() {
		if _, err := filter.Apply(m.result, expr); err != nil {
			m.queryError = err.Error()
			m.statusMsg = "Invalid query"
			return
		}
	}

	m.query = expr
	m.queryError = ""
	m.statusMsg = fmt.Sprintf("Query applied: %s", expr)
	m.updateResultView()
}
