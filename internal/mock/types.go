package mock

import "time"

// Response modes for a route
const (
	ModeStatic  = "static"  // serve Body or BodyFile
	ModeAnalyze = "analyze" // compute an insight from the submitted text
)

// Config describes the mock extraction service
type Config struct {
	Port    int     `json:"port" yaml:"port"`
	Host    string  `json:"host" yaml:"host"`
	Routes  []Route `json:"routes" yaml:"routes"`
	Logging bool    `json:"logging" yaml:"logging"`
}

// Route is one scripted endpoint. Routes are tried in order.
type Route struct {
	Name     string            `json:"name,omitempty" yaml:"name,omitempty"`
	Method   string            `json:"method" yaml:"method"`
	Path     string            `json:"path" yaml:"path"`
	Match    string            `json:"match,omitempty" yaml:"match,omitempty"` // exact (default), prefix, regex
	Mode     string            `json:"mode,omitempty" yaml:"mode,omitempty"`   // static (default), analyze
	Status   int               `json:"status,omitempty" yaml:"status,omitempty"`
	Headers  map[string]string `json:"headers,omitempty" yaml:"headers,omitempty"`
	Body     string            `json:"body,omitempty" yaml:"body,omitempty"`
	BodyFile string            `json:"bodyFile,omitempty" yaml:"bodyFile,omitempty"`
	DelayMs  int               `json:"delayMs,omitempty" yaml:"delayMs,omitempty"`

	// RequireText rejects requests whose body is not {"text": string} with 422
	RequireText bool `json:"requireText,omitempty" yaml:"requireText,omitempty"`
}

// label names the route in logs
func (r *Route) label() string {
	if r.Name != "" {
		return r.Name
	}
	return r.Method + " " + r.Path
}

// RequestLog records one request the mock served
type RequestLog struct {
	Timestamp time.Time     `json:"timestamp"`
	Method    string        `json:"method"`
	Path      string        `json:"path"`
	Text      string        `json:"text,omitempty"`
	Route     string        `json:"route"`
	Status    int           `json:"status"`
	Duration  time.Duration `json:"duration"`
}
