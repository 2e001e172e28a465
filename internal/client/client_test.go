package client

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func newTestClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	c, err := New(Options{BaseURL: baseURL})
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}
	return c
}

func TestExtractInsights_SendsExactRequest(t *testing.T) {
	var gotMethod, gotPath, gotContentType, gotBody string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		gotContentType = r.Header.Get("Content-Type")
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	c := newTestClient(t, server.URL)
	if _, err := c.ExtractInsights(context.Background(), "hello"); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if gotMethod != http.MethodPost {
		t.Errorf("method = %q, want POST", gotMethod)
	}
	if gotPath != "/extract-insights" {
		t.Errorf("path = %q, want /extract-insights", gotPath)
	}
	if gotContentType != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", gotContentType)
	}
	if gotBody != `{"text":"hello"}` {
		t.Errorf("body = %q, want %q", gotBody, `{"text":"hello"}`)
	}
}

func TestEncodePayload(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"simple", "hello", `{"text":"hello"}`},
		{"empty", "", `{"text":""}`},
		{"html is not escaped", "a < b & c", `{"text":"a < b & c"}`},
		{"quotes and newlines", "say \"hi\"\nbye", `{"text":"say \"hi\"\nbye"}`},
		{"unicode", "crème ✨", `{"text":"crème ✨"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := EncodePayload(tt.text)
			if err != nil {
				t.Fatalf("EncodePayload(%q) error: %v", tt.text, err)
			}
			if string(got) != tt.want {
				t.Errorf("EncodePayload(%q) = %s, want %s", tt.text, got, tt.want)
			}
		})
	}
}

func TestExtractInsights_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"score": 0.9, "b": [1, 2], "a": null}`))
	}))
	defer server.Close()

	c := newTestClient(t, server.URL)
	result, err := c.ExtractInsights(context.Background(), "text")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	// Key order and number text are preserved
	want := `{"score":0.9,"b":[1,2],"a":null}`
	if result.String() != want {
		t.Errorf("result = %s, want %s", result, want)
	}
}

func TestExtractInsights_NonSuccessStatus(t *testing.T) {
	statuses := []int{http.StatusBadRequest, http.StatusNotFound, http.StatusInternalServerError, http.StatusBadGateway, http.StatusMultipleChoices}

	for _, status := range statuses {
		t.Run(http.StatusText(status), func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(status)
				w.Write([]byte(`{"detail":"secret server detail"}`))
			}))
			defer server.Close()

			c := newTestClient(t, server.URL)
			result, err := c.ExtractInsights(context.Background(), "text")
			if err == nil {
				t.Fatal("Expected error but got nil")
			}
			if result != nil {
				t.Errorf("result = %s, want nil", result)
			}

			var cerr *Error
			if !errors.As(err, &cerr) {
				t.Fatalf("error type = %T, want *Error", err)
			}
			if cerr.Kind != KindHTTP {
				t.Errorf("Kind = %q, want %q", cerr.Kind, KindHTTP)
			}
			if cerr.Status != status {
				t.Errorf("Status = %d, want %d", cerr.Status, status)
			}
			if err.Error() != "Failed to extract insights" {
				t.Errorf("message = %q, want %q", err.Error(), "Failed to extract insights")
			}
			if strings.Contains(err.Error(), "secret") {
				t.Error("response body leaked into error message")
			}
		})
	}
}

func TestExtractInsights_TransportError(t *testing.T) {
	// Grab a free port and close it so the dial is refused
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Failed to listen: %v", err)
	}
	addr := ln.Addr().String()
	ln.Close()

	c := newTestClient(t, "http://"+addr)
	_, err = c.ExtractInsights(context.Background(), "text")
	if err == nil {
		t.Fatal("Expected error but got nil")
	}

	var cerr *Error
	if !errors.As(err, &cerr) {
		t.Fatalf("error type = %T, want *Error", err)
	}
	if cerr.Kind != KindTransport {
		t.Errorf("Kind = %q, want %q", cerr.Kind, KindTransport)
	}
	if errors.Unwrap(err) == nil {
		t.Error("transport error should unwrap to its cause")
	}
	if err.Error() == RequestFailedMessage {
		t.Error("transport error should carry the network error text")
	}
}

func TestExtractInsights_InvalidJSONBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>not json</html>`))
	}))
	defer server.Close()

	c := newTestClient(t, server.URL)
	_, err := c.ExtractInsights(context.Background(), "text")

	var cerr *Error
	if !errors.As(err, &cerr) {
		t.Fatalf("error type = %T, want *Error", err)
	}
	if cerr.Kind != KindDecode {
		t.Errorf("Kind = %q, want %q", cerr.Kind, KindDecode)
	}
}

func TestExtractInsights_Timeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer server.Close()
	defer close(release)

	c, err := New(Options{BaseURL: server.URL, Timeout: 50 * time.Millisecond})
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}

	_, err = c.ExtractInsights(context.Background(), "text")
	var cerr *Error
	if !errors.As(err, &cerr) || cerr.Kind != KindTransport {
		t.Fatalf("err = %v, want transport error", err)
	}
}

func TestExtractInsights_EmptyText(t *testing.T) {
	var gotBody string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	c := newTestClient(t, server.URL)
	result, err := c.ExtractInsights(context.Background(), "")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if gotBody != `{"text":""}` {
		t.Errorf("body = %q, want %q", gotBody, `{"text":""}`)
	}
	if result.String() != `[]` {
		t.Errorf("result = %s, want []", result)
	}
}

func TestNew_ValidatesBaseURL(t *testing.T) {
	tests := []struct {
		name     string
		baseURL  string
		wantErr  bool
		endpoint string
	}{
		{"default", "http://localhost:5000", false, "http://localhost:5000/extract-insights"},
		{"trailing slash", "http://localhost:5000/", false, "http://localhost:5000/extract-insights"},
		{"path prefix", "https://api.example.com/v1", false, "https://api.example.com/v1/extract-insights"},
		{"empty", "", true, ""},
		{"no scheme", "localhost:5000", true, ""},
		{"unsupported scheme", "ftp://example.com", true, ""},
		{"missing host", "http://", true, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := New(Options{BaseURL: tt.baseURL})
			if tt.wantErr {
				if err == nil {
					t.Errorf("New(%q) expected error", tt.baseURL)
				}
				return
			}
			if err != nil {
				t.Fatalf("New(%q) error: %v", tt.baseURL, err)
			}
			if c.Endpoint() != tt.endpoint {
				t.Errorf("Endpoint() = %q, want %q", c.Endpoint(), tt.endpoint)
			}
		})
	}
}

func TestError_StatusText(t *testing.T) {
	e := &Error{Kind: KindHTTP, Status: 503}
	if got := e.StatusText(); got != "503 Service Unavailable" {
		t.Errorf("StatusText() = %q", got)
	}
	e = &Error{Kind: KindTransport, Err: errors.New("boom")}
	if got := e.StatusText(); got != "" {
		t.Errorf("StatusText() = %q, want empty", got)
	}
	if e.Error() != "boom" {
		t.Errorf("Error() = %q, want boom", e.Error())
	}
}
