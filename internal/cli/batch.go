package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/studiowebux/insightcli/internal/client"
	"github.com/studiowebux/insightcli/internal/filter"
	"github.com/studiowebux/insightcli/internal/history"
	"github.com/studiowebux/insightcli/internal/types"
	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency is the number of files extracted at once
const DefaultConcurrency = 4

// BatchOptions contains options for extracting many files
type BatchOptions struct {
	Files       []string
	Concurrency int
	Query       string
	History     *history.Manager
	Stdout      io.Writer
}

// BatchLine is one JSON line of batch output
type BatchLine struct {
	File   string              `json:"file"`
	Result types.InsightResult `json:"result,omitempty"`
	Error  string              `json:"error,omitempty"`
	Kind   string              `json:"kind,omitempty"`
}

// ErrBatchFailed is returned when at least one file failed
var ErrBatchFailed = errors.New("batch had failures")

// Batch extracts every file concurrently and prints one JSON line per
// file in input order. A failing file does not stop the others.
func Batch(ctx context.Context, c *client.Client, opts BatchOptions) error {
	log := zerolog.Ctx(ctx)
	stdout, _ := writers(opts.Stdout, nil)

	concurrency := opts.Concurrency
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}

	lines := make([]BatchLine, len(opts.Files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i, path := range opts.Files {
		g.Go(func() error {
			lines[i] = extractFile(gctx, c, path, opts)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	enc := json.NewEncoder(stdout)
	enc.SetEscapeHTML(false)
	failed := 0
	for _, line := range lines {
		if line.Error != "" {
			failed++
		}
		if err := enc.Encode(line); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}

	log.Info().Int("files", len(lines)).Int("failed", failed).Msg("batch complete")
	if failed > 0 {
		return fmt.Errorf("%w: %d of %d files failed", ErrBatchFailed, failed, len(lines))
	}
	return nil
}

// extractFile runs one file of a batch; errors are reported in the line
func extractFile(ctx context.Context, c *client.Client, path string, opts BatchOptions) BatchLine {
	line := BatchLine{File: path}

	data, err := os.ReadFile(path)
	if err != nil {
		line.Error = err.Error()
		line.Kind = "io"
		return line
	}
	text := string(data)

	start := time.Now()
	result, err := c.ExtractInsights(ctx, text)
	duration := time.Since(start)

	if opts.History != nil {
		if _, saveErr := opts.History.Save(history.NewEntry(c.Endpoint(), text, result, err, duration)); saveErr != nil {
			zerolog.Ctx(ctx).Warn().Err(saveErr).Str("file", path).Msg("failed to save submission to history")
		}
	}

	if err != nil {
		line.Error = err.Error()
		var clientErr *client.Error
		if errors.As(err, &clientErr) {
			line.Kind = string(clientErr.Kind)
		}
		return line
	}

	if opts.Query != "" {
		result, err = filter.Apply(result, opts.Query)
		if err != nil {
			line.Error = err.Error()
			line.Kind = "query"
			return line
		}
	}

	line.Result = result
	return line
}
