package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/studiowebux/insightcli/internal/types"
)

// ExtractPath is appended to the base URL for every call
const ExtractPath = "/extract-insights"

// Options configures a Client
type Options struct {
	// BaseURL is the scheme, host and port of the service, e.g. http://localhost:5000
	BaseURL string
	// Timeout bounds the whole call; zero means none
	Timeout time.Duration
	// HTTPClient overrides the default transport (tests, proxies)
	HTTPClient *http.Client
}

// Client is stateless between calls and safe for concurrent use
type Client struct {
	endpoint string
	http     *http.Client
}

// New validates the base URL and builds a Client
func New(opts Options) (*Client, error) {
	base := strings.TrimSpace(opts.BaseURL)
	if base == "" {
		return nil, fmt.Errorf("base URL is required")
	}
	u, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL %q: %w", base, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid base URL %q: scheme must be http or https", base)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("invalid base URL %q: missing host", base)
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: opts.Timeout}
	}

	return &Client{
		endpoint: strings.TrimRight(base, "/") + ExtractPath,
		http:     httpClient,
	}, nil
}

// Endpoint returns the full extraction URL
func (c *Client) Endpoint() string {
	return c.endpoint
}

// ExtractInsights posts text to the service and returns its JSON response
func (c *Client) ExtractInsights(ctx context.Context, text string) (types.InsightResult, error) {
	log := zerolog.Ctx(ctx)
	start := time.Now()

	body, err := EncodePayload(text)
	if err != nil {
		return nil, &Error{Kind: KindTransport, Err: fmt.Errorf("failed to encode request: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, &Error{Kind: KindTransport, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		log.Debug().Err(err).Str("url", c.endpoint).Dur("duration", time.Since(start)).Msg("extract request failed")
		return nil, &Error{Kind: KindTransport, Err: err}
	}
	defer resp.Body.Close()

	if !IsSuccessStatus(resp.StatusCode) {
		// Drain so the connection can be reused; the body is not surfaced
		_, _ = io.Copy(io.Discard, resp.Body)
		log.Debug().Int("status", resp.StatusCode).Dur("duration", time.Since(start)).Msg("extract request rejected")
		return nil, &Error{Kind: KindHTTP, Status: resp.StatusCode}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{Kind: KindTransport, Err: fmt.Errorf("failed to read response body: %w", err)}
	}

	result, err := types.NewInsightResult(data)
	if err != nil {
		return nil, &Error{Kind: KindDecode, Err: err}
	}

	log.Debug().
		Int("status", resp.StatusCode).
		Int("request_size", len(body)).
		Int("response_size", len(data)).
		Dur("duration", time.Since(start)).
		Msg("extract request completed")

	return result, nil
}

// EncodePayload renders the request body exactly as {"text":"..."},
// without HTML escaping or a trailing newline.
func EncodePayload(text string) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(types.RequestPayload{Text: text}); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// FormatDuration formats a duration to a human-readable string
func FormatDuration(d time.Duration) string {
	ms := d.Milliseconds()
	if ms < 1000 {
		return fmt.Sprintf("%dms", ms)
	}
	return fmt.Sprintf("%.2fs", float64(ms)/1000.0)
}
