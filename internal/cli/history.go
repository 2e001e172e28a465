package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/studiowebux/insightcli/internal/filter"
	"github.com/studiowebux/insightcli/internal/history"
)

// HistoryOptions contains options for listing stored submissions
type HistoryOptions struct {
	Limit  int
	Search string
	JSON   bool
	Stdout io.Writer
}

// ListHistory prints stored submissions, newest first or best match first
func ListHistory(store *history.Manager, opts HistoryOptions) error {
	stdout, _ := writers(opts.Stdout, nil)

	entries, err := store.Search(opts.Search, opts.Limit)
	if err != nil {
		return err
	}

	if opts.JSON {
		data, err := json.MarshalIndent(entries, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode history: %w", err)
		}
		fmt.Fprintln(stdout, string(data))
		return nil
	}

	if len(entries) == 0 {
		fmt.Fprintln(stdout, "No submissions")
		return nil
	}

	for _, e := range entries {
		outcome := "ok  "
		detail := filter.Summary(e.Result)
		if !e.Succeeded() {
			outcome = "fail"
			detail = e.Error
		}
		input := strings.Join(strings.Fields(e.Input), " ")
		if len([]rune(input)) > 50 {
			input = string([]rune(input)[:47]) + "..."
		}
		fmt.Fprintf(stdout, "%s  %s  %s  %-50s  %s\n", shortID(e.ID), e.Timestamp, outcome, input, detail)
	}
	return nil
}

// ClearHistory deletes every stored submission
func ClearHistory(store *history.Manager, stdout io.Writer) error {
	stdout, _ = writers(stdout, nil)

	count, err := store.GetCount()
	if err != nil {
		return err
	}
	if err := store.Clear(); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Deleted %d submissions\n", count)
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
