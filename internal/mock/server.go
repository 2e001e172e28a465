package mock

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/studiowebux/insightcli/internal/types"
)

// maxLogs bounds the in-memory request log
const maxLogs = 1000

// maxBodyBytes caps how much of a request body is read
const maxBodyBytes = 4 << 20

// Server is a scripted stand-in for the insight extraction service
type Server struct {
	config     *Config
	log        zerolog.Logger
	workdir    string // BodyFile paths are relative to this
	httpServer *http.Server
	listener   net.Listener

	mu   sync.RWMutex
	logs []RequestLog
}

// NewServer creates a new mock server
func NewServer(config *Config, workdir string, log zerolog.Logger) *Server {
	if config.Host == "" {
		config.Host = "localhost"
	}
	return &Server{
		config:  config,
		log:     log.With().Str("component", "mock").Logger(),
		workdir: workdir,
	}
}

// Handler returns the route-matching handler, usable without Start
func (s *Server) Handler() http.Handler {
	return http.HandlerFunc(s.serve)
}

// Start binds the listener and serves in the background.
// Port 0 picks a free port; Address reports the bound one.
func (s *Server) Start() error {
	addr := net.JoinHostPort(s.config.Host, fmt.Sprint(s.config.Port))
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	s.listener = ln
	s.httpServer = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error().Err(err).Msg("mock server stopped unexpectedly")
		}
	}()

	s.log.Info().Str("address", s.Address()).Int("routes", len(s.config.Routes)).Msg("mock server started")
	return nil
}

// Stop gracefully shuts the server down
func (s *Server) Stop(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

// Address returns the server base URL
func (s *Server) Address() string {
	if s.listener != nil {
		return "http://" + s.listener.Addr().String()
	}
	return fmt.Sprintf("http://%s:%d", s.config.Host, s.config.Port)
}

// reply is what a route decided to send
type reply struct {
	status  int
	headers map[string]string
	body    []byte
}

func (s *Server) serve(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	entry := RequestLog{Timestamp: start, Method: r.Method, Path: r.URL.Path, Route: "none"}

	var payload types.RequestPayload
	payloadErr := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&payload)
	entry.Text = payload.Text

	var out reply
	route := s.match(r.Method, r.URL.Path)
	switch {
	case route == nil:
		out = jsonReply(http.StatusNotFound, map[string]string{
			"error": fmt.Sprintf("no route configured for %s %s", r.Method, r.URL.Path),
		})
	case (route.RequireText || route.Mode == ModeAnalyze) && payloadErr != nil:
		entry.Route = route.label()
		out = jsonReply(http.StatusUnprocessableEntity, map[string]string{
			"error": `request body must be {"text": string}`,
		})
	default:
		entry.Route = route.label()
		if !sleep(r.Context(), time.Duration(route.DelayMs)*time.Millisecond) {
			return
		}
		out = s.respond(route, payload.Text)
	}

	for key, value := range out.headers {
		w.Header().Set(key, value)
	}
	w.WriteHeader(out.status)
	w.Write(out.body)

	entry.Status = out.status
	entry.Duration = time.Since(start)
	if s.config.Logging {
		s.record(entry)
	}
}

// respond builds the reply for a matched route
func (s *Server) respond(route *Route, text string) reply {
	out := reply{status: route.Status, headers: route.Headers}
	if out.status == 0 {
		out.status = http.StatusOK
	}

	switch {
	case route.Mode == ModeAnalyze:
		analyzed := jsonReply(out.status, Analyze(text))
		for k, v := range route.Headers {
			analyzed.headers[k] = v
		}
		return analyzed

	case route.BodyFile != "":
		path := route.BodyFile
		if !filepath.IsAbs(path) {
			path = filepath.Join(s.workdir, path)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			s.log.Error().Err(err).Str("route", route.label()).Msg("body file unreadable")
			return jsonReply(http.StatusInternalServerError, map[string]string{"error": "body file unreadable"})
		}
		out.body = data

	default:
		out.body = []byte(route.Body)
	}
	return out
}

// match returns the first route for method and path, or nil
func (s *Server) match(method, path string) *Route {
	for i := range s.config.Routes {
		route := &s.config.Routes[i]
		if !strings.EqualFold(route.Method, method) {
			continue
		}

		var ok bool
		switch route.Match {
		case "prefix":
			ok = strings.HasPrefix(path, route.Path)
		case "regex":
			re, err := regexp.Compile(route.Path)
			ok = err == nil && re.MatchString(path)
		default:
			ok = route.Path == path
		}
		if ok {
			return route
		}
	}
	return nil
}

func jsonReply(status int, v interface{}) reply {
	body, _ := json.Marshal(v)
	return reply{
		status:  status,
		headers: map[string]string{"Content-Type": "application/json"},
		body:    body,
	}
}

// sleep waits for d and reports false if the client went away first
func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}

func (s *Server) record(entry RequestLog) {
	s.log.Info().
		Str("method", entry.Method).
		Str("path", entry.Path).
		Str("route", entry.Route).
		Int("status", entry.Status).
		Int("text_length", len(entry.Text)).
		Dur("duration", entry.Duration).
		Msg("mock request")

	s.mu.Lock()
	defer s.mu.Unlock()
	s.logs = append(s.logs, entry)
	if len(s.logs) > maxLogs {
		s.logs = s.logs[len(s.logs)-maxLogs:]
	}
}

// GetLogs returns a copy of the logged requests
func (s *Server) GetLogs() []RequestLog {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]RequestLog(nil), s.logs...)
}

// ClearLogs clears all logged requests
func (s *Server) ClearLogs() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logs = nil
}
