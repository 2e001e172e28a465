package tui

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/studiowebux/insightcli/internal/client"
	"github.com/studiowebux/insightcli/internal/config"
	"github.com/studiowebux/insightcli/internal/filter"
	"github.com/studiowebux/insightcli/internal/history"
	"github.com/studiowebux/insightcli/internal/keybinds"
	"github.com/studiowebux/insightcli/internal/types"
)

// Mode represents the current TUI mode
type Mode int

const (
	ModeNormal Mode = iota
	ModeHistory
	ModeQuery
)

// Options are the collaborators a Model needs. Client is required.
type Options struct {
	Client   *client.Client
	Config   *config.Config
	History  *history.Manager  // nil disables history
	Keybinds *keybinds.Registry // nil uses the defaults
	Logger   zerolog.Logger
}

// Model represents the TUI state
type Model struct {
	client         *client.Client
	config         *config.Config
	historyManager *history.Manager
	keybinds       *keybinds.Registry
	log            zerolog.Logger
	mode           Mode

	// Form state. inputText is authoritative; the textarea only displays
	// it, and its sanitised value is copied back only when the user edits.
	input      textarea.Model
	inputText  string
	result     types.InsightResult
	loading    bool
	errorMsg   string // Shown verbatim in the error banner
	generation int    // Incremented per submission; older completions are dropped

	// Result view
	resultView viewport.Model
	spinner    spinner.Model

	// Query state
	queryInput textinput.Model
	query      string // Applied JMESPath expression, empty for none
	queryError string

	// History state
	historyAllEntries   []types.HistoryEntry
	historyEntries      []types.HistoryEntry
	historyIndex        int
	historySearchActive bool
	historySearchQuery  string

	// UI state
	width     int
	height    int
	statusMsg string
}

// New creates a new TUI model
func New(opts Options) (Model, error) {
	if opts.Client == nil {
		return Model{}, fmt.Errorf("client is required")
	}
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	registry := opts.Keybinds
	if registry == nil {
		registry = keybinds.NewDefaultRegistry()
	}

	input := textarea.New()
	input.Placeholder = "Paste the text to analyse..."
	input.ShowLineNumbers = false
	input.CharLimit = 0
	input.MaxHeight = 0
	input.SetWidth(defaultWidth - 2)
	input.SetHeight(inputHeight)
	input.Focus()

	query := textinput.New()
	query.Prompt = "query> "
	query.Placeholder = "e.g. top_keywords[0:3]"

	spin := spinner.New()
	spin.Spinner = spinner.Dot
	spin.Style = styleWarning

	m := Model{
		client:         opts.Client,
		config:         cfg,
		historyManager: opts.History,
		keybinds:       registry,
		log:            opts.Logger,
		mode:           ModeNormal,
		input:          input,
		resultView:     viewport.New(defaultWidth, defaultResultHeight),
		spinner:        spin,
		queryInput:     query,
		width:          defaultWidth,
		statusMsg:      "Ready",
	}
	m.updateResultView()

	return m, nil
}

// Init initializes the TUI
func (m *Model) Init() tea.Cmd {
	return textarea.Blink
}

// Cleanup closes database connections and cleans up resources
func (m *Model) Cleanup() {
	if m.historyManager != nil {
		if err := m.historyManager.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "error closing history database: %v\n", err)
		}
		m.historyManager = nil
	}
}

// InputText returns the text that Submit sends
func (m *Model) InputText() string {
	return m.inputText
}

// Result returns the last successful result, nil before the first success
func (m *Model) Result() types.InsightResult {
	return m.result
}

// Loading reports whether a request is in flight
func (m *Model) Loading() bool {
	return m.loading
}

// ErrorMessage returns the banner text, empty when there is no error
func (m *Model) ErrorMessage() string {
	return m.errorMsg
}

// SubmitEnabled reports whether the submit control accepts input
func (m *Model) SubmitEnabled() bool {
	return !m.loading
}

// EditText replaces the input text exactly. Nothing else changes.
func (m *Model) EditText(s string) {
	m.inputText = s
	m.input.SetValue(strings.ReplaceAll(s, "\r\n", "\n"))
}

// updateInput forwards msg to the text area and picks up user edits
func (m *Model) updateInput(msg tea.Msg) tea.Cmd {
	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if after := m.input.Value(); after != before {
		m.inputText = after
	}
	return cmd
}

// hasResult reports whether there is a result worth showing
func (m *Model) hasResult() bool {
	return !m.result.IsNull()
}

// setError changes the banner text. The banner takes a line from the
// result view, so the layout is recomputed when it appears or clears.
func (m *Model) setError(msg string) {
	changed := (msg == "") != (m.errorMsg == "")
	m.errorMsg = msg
	if changed && m.height > 0 {
		m.updateLayout()
	}
}

// Update handles messages and updates the model
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		cmd = m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateLayout()

	case spinner.TickMsg:
		if m.loading {
			m.spinner, cmd = m.spinner.Update(msg)
		}

	case insightsExtractedMsg:
		if msg.generation != m.generation {
			m.log.Debug().Int("generation", msg.generation).Msg("discarding stale result")
			return m, nil
		}
		m.loading = false
		m.result = msg.result
		m.setError("")
		m.queryError = ""
		m.statusMsg = fmt.Sprintf("Insights extracted in %s", client.FormatDuration(msg.duration))
		if headline := filter.Summary(msg.result); headline != "" {
			m.statusMsg += " | " + headline
		}
		m.updateResultView()

	case extractFailedMsg:
		if msg.generation != m.generation {
			m.log.Debug().Int("generation", msg.generation).Msg("discarding stale failure")
			return m, nil
		}
		m.loading = false
		m.setError(msg.err.Error())
		m.statusMsg = categorizeError(msg.err)
		m.updateResultView()

	default:
		// Cursor blink and other textarea internals
		if m.mode == ModeNormal {
			cmd = m.updateInput(msg)
		}
	}

	return m, cmd
}

// View renders the TUI
func (m *Model) View() string {
	return m.render()
}
