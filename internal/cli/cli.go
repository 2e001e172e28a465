package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/studiowebux/insightcli/internal/client"
	"github.com/studiowebux/insightcli/internal/config"
	"github.com/studiowebux/insightcli/internal/filter"
	"github.com/studiowebux/insightcli/internal/history"
	"github.com/studiowebux/insightcli/internal/types"
)

// ExtractOptions contains options for a one-shot extraction
type ExtractOptions struct {
	Text         string
	TextSet      bool      // Text was given explicitly, possibly empty
	FilePath     string    // read text from file instead of Text
	Stdin        io.Reader // read text from here when Text and FilePath are empty
	OutputFormat string    // json, yaml, body
	Query        string    // JMESPath expression
	SavePath     string
	Highlight    bool
	Theme        string
	History      *history.Manager // nil disables history
	Stdout       io.Writer
	Stderr       io.Writer
}

// isInteractive checks if stdin is a terminal (not piped)
func isInteractive() bool {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return true
	}
	return (stat.Mode() & os.ModeCharDevice) != 0
}

// IsTerminal reports whether f is attached to a terminal
func IsTerminal(f *os.File) bool {
	stat, err := f.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) != 0
}

// PipedStdin returns os.Stdin when data is piped in, nil otherwise
func PipedStdin() io.Reader {
	if isInteractive() {
		return nil
	}
	return os.Stdin
}

// ResolveText picks the input text: argument, then file, then stdin
func ResolveText(opts ExtractOptions) (string, error) {
	switch {
	case opts.TextSet || opts.Text != "":
		return opts.Text, nil
	case opts.FilePath != "":
		data, err := os.ReadFile(opts.FilePath)
		if err != nil {
			return "", fmt.Errorf("failed to read %s: %w", opts.FilePath, err)
		}
		return string(data), nil
	case opts.Stdin != nil:
		data, err := io.ReadAll(opts.Stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read from stdin: %w", err)
		}
		return string(data), nil
	}
	return "", fmt.Errorf("no text provided (pass it as an argument, use --file, or pipe it)")
}

// Extract sends one text to the service and prints the result.
// Any client failure is returned so the command exits non-zero.
func Extract(ctx context.Context, c *client.Client, opts ExtractOptions) error {
	log := zerolog.Ctx(ctx)
	stdout, stderr := writers(opts.Stdout, opts.Stderr)

	text, err := ResolveText(opts)
	if err != nil {
		return err
	}

	start := time.Now()
	result, err := c.ExtractInsights(ctx, text)
	duration := time.Since(start)

	if opts.History != nil {
		if _, saveErr := opts.History.Save(history.NewEntry(c.Endpoint(), text, result, err, duration)); saveErr != nil {
			log.Warn().Err(saveErr).Msg("failed to save submission to history")
		}
	}

	if err != nil {
		return err
	}
	log.Debug().Str("duration", client.FormatDuration(duration)).Msg("insights extracted")

	if opts.Query != "" {
		result, err = filter.Apply(result, opts.Query)
		if err != nil {
			return err
		}
	}

	output, err := formatOutput(result, opts.OutputFormat)
	if err != nil {
		return fmt.Errorf("failed to format output: %w", err)
	}

	// Save to file if specified
	if opts.SavePath != "" {
		if err := os.WriteFile(opts.SavePath, []byte(output), config.FilePermissions); err != nil {
			return fmt.Errorf("failed to save result: %w", err)
		}
		fmt.Fprintf(stderr, "Result saved to %s\n", opts.SavePath)
		return nil
	}

	if opts.Highlight && opts.OutputFormat != "body" {
		lang := "json"
		if opts.OutputFormat == "yaml" {
			lang = "yaml"
		}
		output = filter.HighlightAs(output, lang, opts.Theme)
	}
	fmt.Fprint(stdout, output)
	return nil
}

// formatOutput renders a result in the requested format, newline terminated
func formatOutput(result types.InsightResult, format string) (string, error) {
	var out string
	var err error

	switch format {
	case "yaml":
		out, err = filter.ToYAML(result)
	case "body":
		out = result.String()
		if result.IsZero() {
			out = "null"
		}
	case "json", "":
		out, err = filter.Format(result)
	default:
		return "", fmt.Errorf("unknown output format %q (expected json, yaml or body)", format)
	}
	if err != nil {
		return "", err
	}

	if !strings.HasSuffix(out, "\n") {
		out += "\n"
	}
	return out, nil
}

func writers(stdout, stderr io.Writer) (io.Writer, io.Writer) {
	if stdout == nil {
		stdout = os.Stdout
	}
	if stderr == nil {
		stderr = os.Stderr
	}
	return stdout, stderr
}
