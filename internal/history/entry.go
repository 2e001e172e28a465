package history

import (
	"errors"
	"net/http"
	"time"

	"github.com/studiowebux/insightcli/internal/client"
	"github.com/studiowebux/insightcli/internal/types"
)

// NewEntry builds the record of one extraction attempt
func NewEntry(endpoint, text string, result types.InsightResult, err error, duration time.Duration) types.HistoryEntry {
	entry := types.HistoryEntry{
		BaseURL:    endpoint,
		Input:      text,
		Result:     result,
		DurationMs: duration.Milliseconds(),
	}

	var clientErr *client.Error
	switch {
	case err == nil:
		entry.Status = http.StatusOK
	case errors.As(err, &clientErr):
		entry.Status = clientErr.Status
		entry.ErrorKind = string(clientErr.Kind)
		entry.Error = clientErr.Error()
		entry.Result = nil
	default:
		entry.Error = err.Error()
		entry.Result = nil
	}

	return entry
}
