package tui

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/studiowebux/insightcli/internal/client"
	"github.com/studiowebux/insightcli/internal/filter"
)

// backend is a scripted extraction service
type backend struct {
	mu     sync.Mutex
	status int
	body   string
	bodies []string
}

func newBackend(t *testing.T, status int, body string) (*backend, *httptest.Server) {
	t.Helper()
	b := &backend{status: status, body: body}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		b.mu.Lock()
		b.bodies = append(b.bodies, string(data))
		status, body := b.status, b.body
		b.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		io.WriteString(w, body)
	}))
	t.Cleanup(server.Close)
	return b, server
}

func (b *backend) set(status int, body string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.status, b.body = status, body
}

// submit runs a full Submit round trip synchronously
func submit(t *testing.T, m *Model) {
	t.Helper()
	cmd := m.Submit()
	if cmd == nil {
		t.Fatal("Submit() returned nil command")
	}
	m.Update(cmd())
}

func decode(t *testing.T, data []byte) interface{} {
	t.Helper()
	var v interface{}
	if err := json.Unmarshal(data, &v); err != nil {
		t.Fatalf("invalid JSON %q: %v", data, err)
	}
	return v
}

func TestNew_InitialState(t *testing.T) {
	m := CreateTestModel(t, "http://localhost:5000")

	AssertModelField(t, "InputText", m.InputText(), "")
	AssertModelField(t, "Result == nil", m.Result() == nil, true)
	AssertModelField(t, "Loading", m.Loading(), false)
	AssertModelField(t, "ErrorMessage", m.ErrorMessage(), "")
	AssertModelField(t, "SubmitEnabled", m.SubmitEnabled(), true)

	view := m.View()
	if strings.Contains(view, resultTitle) {
		t.Error("result block should not render before the first success")
	}
	if !strings.Contains(view, submitLabel) {
		t.Error("submit control should render enabled")
	}
}

func TestNew_RequiresClient(t *testing.T) {
	_, err := New(Options{})
	AssertError(t, err)
}

func TestEditText(t *testing.T) {
	m := CreateTestModel(t, "http://localhost:5000")
	before := m.generation

	m.EditText("hello world")

	AssertModelField(t, "InputText", m.InputText(), "hello world")
	AssertModelField(t, "Loading", m.Loading(), false)
	AssertModelField(t, "ErrorMessage", m.ErrorMessage(), "")
	AssertModelField(t, "Result == nil", m.Result() == nil, true)
	AssertModelField(t, "generation", m.generation, before)

	if !strings.Contains(m.View(), "hello world") {
		t.Error("view should show the edited text")
	}
}

func TestEditText_WhileLoading(t *testing.T) {
	m := CreateTestModel(t, "http://localhost:5000")
	m.loading = true

	m.EditText("typed during request")

	AssertModelField(t, "InputText", m.InputText(), "typed during request")
	AssertModelField(t, "Loading", m.Loading(), true)
}

func TestEditText_ExactText(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"empty", ""},
		{"tab", "a\tb"},
		{"crlf", "line1\r\nline2"},
		{"control character", "x\x00y"},
		{"unicode", "naïve café ✓"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, server := newBackend(t, http.StatusOK, `{}`)
			m := CreateTestModel(t, server.URL)

			m.EditText(tt.text)
			AssertModelField(t, "InputText", m.InputText(), tt.text)

			// Cursor blinks and other textarea messages must not rewrite it
			m.Update(tea.WindowSizeMsg{Width: 80, Height: 30})
			m.Update(struct{}{})
			AssertModelField(t, "InputText after update", m.InputText(), tt.text)

			submit(t, m)
			if len(b.bodies) != 1 {
				t.Fatalf("requests = %d, want 1", len(b.bodies))
			}
			sent, _ := decode(t, []byte(b.bodies[0])).(map[string]interface{})
			AssertModelField(t, "sent text", sent["text"], interface{}(tt.text))
		})
	}
}

func TestEditText_ThenTyping(t *testing.T) {
	m := CreateTestModel(t, "http://localhost:5000")
	m.EditText("a\tb")

	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("!")})

	if got := m.InputText(); got == "a\tb" || !strings.HasSuffix(got, "!") {
		t.Errorf("InputText() = %q, want the edited text area content", got)
	}
}

func TestSubmit_Success(t *testing.T) {
	_, server := newBackend(t, http.StatusOK, `{"score": 0.9}`)
	m := CreateTestModel(t, server.URL)
	m.EditText("great product")

	cmd := m.Submit()
	AssertModelField(t, "Loading after Submit", m.Loading(), true)
	m.Update(cmd())

	AssertModelField(t, "Loading", m.Loading(), false)
	AssertModelField(t, "ErrorMessage", m.ErrorMessage(), "")
	want := map[string]interface{}{"score": 0.9}
	if got := decode(t, m.Result()); !reflect.DeepEqual(got, want) {
		t.Errorf("Result = %v, want %v", got, want)
	}

	view := m.View()
	if !strings.Contains(view, resultTitle) {
		t.Error("view should show the result block")
	}
	if strings.Contains(view, staleSuffix) {
		t.Error("fresh result should not be marked stale")
	}
	if !strings.Contains(view, `"score": 0.9`) {
		t.Errorf("view should show indented JSON, got:\n%s", view)
	}
}

func TestSubmit_ServerErrorKeepsResult(t *testing.T) {
	b, server := newBackend(t, http.StatusOK, `{"score": 0.9}`)
	m := CreateTestModel(t, server.URL)
	m.EditText("first")
	submit(t, m)
	previous := string(m.Result())

	b.set(http.StatusInternalServerError, `{"detail": "boom"}`)
	m.EditText("second")
	submit(t, m)

	AssertModelField(t, "Loading", m.Loading(), false)
	AssertModelField(t, "ErrorMessage", m.ErrorMessage(), client.RequestFailedMessage)
	AssertModelField(t, "Result", string(m.Result()), previous)

	view := m.View()
	if !strings.Contains(view, client.RequestFailedMessage) {
		t.Error("view should show the error banner")
	}
	if strings.Contains(view, "boom") {
		t.Error("error response body must not be surfaced")
	}
	if !strings.Contains(view, resultTitle+staleSuffix) {
		t.Error("result shown after a failure should be marked stale")
	}
	if !strings.Contains(m.statusMsg, "500 Internal Server Error") {
		t.Errorf("statusMsg = %q, want the HTTP status", m.statusMsg)
	}
}

func TestSubmit_ErrorWithoutPreviousResult(t *testing.T) {
	_, server := newBackend(t, http.StatusBadGateway, "")
	m := CreateTestModel(t, server.URL)

	submit(t, m)

	AssertModelField(t, "ErrorMessage", m.ErrorMessage(), client.RequestFailedMessage)
	AssertModelField(t, "Result == nil", m.Result() == nil, true)
	if strings.Contains(m.View(), resultTitle) {
		t.Error("result block should stay hidden without a result")
	}
}

func TestSubmit_TransportError(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	m := CreateTestModel(t, url)
	submit(t, m)

	AssertModelField(t, "Loading", m.Loading(), false)
	if m.ErrorMessage() == "" {
		t.Fatal("ErrorMessage should be set")
	}
	if m.ErrorMessage() == client.RequestFailedMessage {
		t.Error("transport failures should show the network error text")
	}
}

func TestSubmit_NeverResolvingBackend(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	m := CreateTestModel(t, server.URL)
	m.EditText("slow")

	cmd := m.Submit()
	done := make(chan tea.Msg, 1)
	go func() { done <- cmd() }()

	AssertModelField(t, "Loading", m.Loading(), true)
	AssertModelField(t, "SubmitEnabled", m.SubmitEnabled(), false)
	AssertModelField(t, "ErrorMessage", m.ErrorMessage(), "")

	view := m.View()
	if !strings.Contains(view, loadingLabel) {
		t.Error("submit control should render in its disabled state")
	}
	if strings.Contains(view, submitLabel) {
		t.Error("enabled submit label should not render while loading")
	}

	close(release)
	<-done
}

func TestSubmit_IgnoredWhileLoading(t *testing.T) {
	m := CreateTestModel(t, "http://localhost:5000")
	m.loading = true
	m.generation = 3

	cmd := m.Submit()

	if cmd != nil {
		t.Error("Submit() while loading should return nil")
	}
	AssertModelField(t, "generation", m.generation, 3)
	AssertModelField(t, "statusMsg", m.statusMsg, "Request already in progress")
}

func TestSubmit_ClearsErrorAtStart(t *testing.T) {
	m := CreateTestModel(t, "http://localhost:5000")
	m.errorMsg = "old failure"

	m.Submit()

	AssertModelField(t, "ErrorMessage", m.ErrorMessage(), "")
	AssertModelField(t, "Loading", m.Loading(), true)
}

func TestUpdate_DiscardsStaleCompletions(t *testing.T) {
	m := CreateTestModel(t, "http://localhost:5000")
	m.loading = true
	m.generation = 2

	m.Update(insightsExtractedMsg{generation: 1, result: []byte(`{"old":true}`)})
	AssertModelField(t, "Loading", m.Loading(), true)
	AssertModelField(t, "Result == nil", m.Result() == nil, true)

	m.Update(extractFailedMsg{generation: 1, err: &client.Error{Kind: client.KindHTTP, Status: 500}})
	AssertModelField(t, "ErrorMessage", m.ErrorMessage(), "")

	m.Update(insightsExtractedMsg{generation: 2, result: []byte(`{"new":true}`)})
	AssertModelField(t, "Loading", m.Loading(), false)
	AssertModelField(t, "Result", string(m.Result()), `{"new":true}`)
}

func TestSubmit_Repeatable(t *testing.T) {
	_, server := newBackend(t, http.StatusOK, `{"summary_sentence":"Good","ai_score":7.5}`)
	m := CreateTestModel(t, server.URL)
	m.EditText("same input")

	submit(t, m)
	first := string(m.Result())
	submit(t, m)

	AssertModelField(t, "Result", string(m.Result()), first)
	AssertModelField(t, "ErrorMessage", m.ErrorMessage(), "")
}

func TestSubmit_RequestBodyAndRoundTrip(t *testing.T) {
	body := `{"top_keywords":["battery","screen"],"ai_score":8,"nested":{"b":1,"a":2}}`
	b, server := newBackend(t, http.StatusOK, body)
	m := CreateTestModel(t, server.URL)
	m.EditText("hello")

	submit(t, m)

	if len(b.bodies) != 1 || b.bodies[0] != `{"text":"hello"}` {
		t.Fatalf("request bodies = %q, want exactly {\"text\":\"hello\"}", b.bodies)
	}

	rendered, err := filter.Format(m.Result())
	AssertNoError(t, err)
	if !reflect.DeepEqual(decode(t, []byte(rendered)), decode(t, []byte(body))) {
		t.Errorf("rendered result does not re-parse to the response:\n%s", rendered)
	}
	if strings.Index(rendered, `"b"`) > strings.Index(rendered, `"a"`) {
		t.Error("key order should be preserved")
	}
}

func TestSubmit_SavesHistory(t *testing.T) {
	b, server := newBackend(t, http.StatusOK, `{"score":1}`)
	m := CreateTestModel(t, server.URL)

	m.EditText("saved")
	submit(t, m)
	b.set(http.StatusServiceUnavailable, "")
	submit(t, m)

	entries, err := m.historyManager.Load(10)
	AssertNoError(t, err)
	if len(entries) != 2 {
		t.Fatalf("history has %d entries, want 2", len(entries))
	}
	AssertModelField(t, "latest.Status", entries[0].Status, http.StatusServiceUnavailable)
	AssertModelField(t, "latest.ErrorKind", entries[0].ErrorKind, string(client.KindHTTP))
	AssertModelField(t, "first.Succeeded", entries[1].Succeeded(), true)
}

func TestSubmit_HistoryDisabled(t *testing.T) {
	_, server := newBackend(t, http.StatusOK, `{"score":1}`)
	m := CreateTestModel(t, server.URL)
	m.config.HistoryEnabled = false

	submit(t, m)

	count, err := m.historyManager.GetCount()
	AssertNoError(t, err)
	AssertModelField(t, "history count", count, 0)
}

func TestKeys_TypingAndSubmit(t *testing.T) {
	_, server := newBackend(t, http.StatusOK, `{"score":1}`)
	m := CreateTestModel(t, server.URL)

	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("hi")})
	AssertModelField(t, "InputText", m.InputText(), "hi")

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	if cmd == nil {
		t.Fatal("ctrl+s should return a command")
	}
	AssertModelField(t, "Loading", m.Loading(), true)

	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	if cmd != nil {
		t.Error("second ctrl+s while loading should be ignored")
	}
	AssertModelField(t, "generation", m.generation, 1)
}

func TestKeys_ClearInput(t *testing.T) {
	m := CreateTestModel(t, "http://localhost:5000")
	m.EditText("something")

	m.Update(tea.KeyMsg{Type: tea.KeyCtrlL})

	AssertModelField(t, "InputText", m.InputText(), "")
}

func TestQuery(t *testing.T) {
	_, server := newBackend(t, http.StatusOK, `{"score":0.9,"top_keywords":["a","b"]}`)
	m := CreateTestModel(t, server.URL)
	submit(t, m)

	m.applyQuery("top_keywords[0]")
	AssertModelField(t, "query", m.query, "top_keywords[0]")
	AssertModelField(t, "queryError", m.queryError, "")

	shown, err := m.displayedResult()
	AssertNoError(t, err)
	AssertModelField(t, "displayed", string(shown), `"a"`)
	if !strings.Contains(m.View(), resultTitle+" [top_keywords[0]]") {
		t.Error("result title should show the active query")
	}

	m.applyQuery("top_keywords[")
	if m.queryError == "" {
		t.Error("invalid query should set queryError")
	}
	AssertModelField(t, "query kept", m.query, "top_keywords[0]")

	m.applyQuery("")
	AssertModelField(t, "query cleared", m.query, "")
}

func TestQuery_Keys(t *testing.T) {
	m := CreateTestModel(t, "http://localhost:5000")

	m.Update(tea.KeyMsg{Type: tea.KeyCtrlF})
	AssertModelField(t, "mode", m.mode, ModeQuery)

	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("score")})
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	AssertModelField(t, "mode", m.mode, ModeNormal)
	AssertModelField(t, "query", m.query, "score")

	m.Update(tea.KeyMsg{Type: tea.KeyCtrlF})
	m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	AssertModelField(t, "mode after cancel", m.mode, ModeNormal)
	AssertModelField(t, "query after cancel", m.query, "score")
}

func TestSubmit_NullResultIsNotShown(t *testing.T) {
	_, server := newBackend(t, http.StatusOK, `null`)
	m := CreateTestModel(t, server.URL)
	m.EditText("nothing to say")

	submit(t, m)

	AssertModelField(t, "ErrorMessage", m.ErrorMessage(), "")
	AssertModelField(t, "Loading", m.Loading(), false)
	AssertModelField(t, "Result.IsNull", m.Result().IsNull(), true)
	if strings.Contains(m.View(), resultTitle) {
		t.Error("a null document should not render the result block")
	}
}

func TestSubmit_NullResultReplacesPrevious(t *testing.T) {
	b, server := newBackend(t, http.StatusOK, `{"score": 0.9}`)
	m := CreateTestModel(t, server.URL)
	submit(t, m)

	b.set(http.StatusOK, `null`)
	submit(t, m)

	if strings.Contains(m.View(), resultTitle) {
		t.Error("result block should be hidden after a null response")
	}
}

func TestErrorBanner_ResizesResultView(t *testing.T) {
	b, server := newBackend(t, http.StatusInternalServerError, `{}`)
	m := CreateTestModel(t, server.URL)
	m.Update(tea.WindowSizeMsg{Width: 80, Height: 40})
	full := m.resultView.Height

	submit(t, m)
	AssertModelField(t, "ErrorMessage", m.ErrorMessage(), "Failed to extract insights")
	AssertModelField(t, "result height with banner", m.resultView.Height, full-1)

	b.set(http.StatusOK, `{"score": 0.9}`)
	submit(t, m)
	AssertModelField(t, "ErrorMessage", m.ErrorMessage(), "")
	AssertModelField(t, "result height without banner", m.resultView.Height, full)
}
