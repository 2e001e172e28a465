package types

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// RequestPayload is the body sent to the extraction endpoint
type RequestPayload struct {
	Text string `json:"text"`
}

// InsightResult is the raw JSON document returned by the backend.
// It is kept as bytes so that field order and number formatting
// survive a round trip to the screen unchanged.
type InsightResult json.RawMessage

// NewInsightResult validates data as JSON and returns a compacted copy
func NewInsightResult(data []byte) (InsightResult, error) {
	if !json.Valid(data) {
		return nil, fmt.Errorf("invalid JSON document")
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, data); err != nil {
		return nil, err
	}
	return InsightResult(buf.Bytes()), nil
}

// IsZero reports whether no result has been received yet
func (r InsightResult) IsZero() bool {
	return len(r) == 0
}

// IsNull reports whether there is nothing to show: no result, or a
// document that is the JSON literal null
func (r InsightResult) IsNull() bool {
	trimmed := bytes.TrimSpace(r)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

// String returns the compact JSON text
func (r InsightResult) String() string {
	return string(r)
}

// MarshalJSON emits the stored document as-is
func (r InsightResult) MarshalJSON() ([]byte, error) {
	if len(r) == 0 {
		return []byte("null"), nil
	}
	return r, nil
}

// UnmarshalJSON stores a copy of data
func (r *InsightResult) UnmarshalJSON(data []byte) error {
	if r == nil {
		return fmt.Errorf("types.InsightResult: UnmarshalJSON on nil pointer")
	}
	*r = append((*r)[0:0], data...)
	return nil
}

// Decode unmarshals the result into a generic Go value
func (r InsightResult) Decode() (interface{}, error) {
	if len(r) == 0 {
		return nil, nil
	}
	var v interface{}
	dec := json.NewDecoder(bytes.NewReader(r))
	dec.UseNumber()
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}

// HistoryEntry is one stored submission
type HistoryEntry struct {
	ID         string        `json:"id"`
	Timestamp  string        `json:"timestamp"`
	BaseURL    string        `json:"baseUrl"`
	Input      string        `json:"input"`
	Status     int           `json:"status,omitempty"`
	ErrorKind  string        `json:"errorKind,omitempty"`
	Error      string        `json:"error,omitempty"`
	Result     InsightResult `json:"result,omitempty"`
	DurationMs int64         `json:"durationMs"`
}

// Succeeded reports whether the submission produced a result
func (e HistoryEntry) Succeeded() bool {
	return e.Error == "" && !e.Result.IsZero()
}
