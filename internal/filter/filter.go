package filter

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/alecthomas/chroma/v2/quick"
	"github.com/jmespath/go-jmespath"
	"github.com/studiowebux/insightcli/internal/types"
	"gopkg.in/yaml.v3"
)

// Indent is the indentation used when displaying results
const Indent = "  "

// Format renders a result as indented JSON. Key order and number
// literals are kept exactly as the backend sent them.
func Format(result types.InsightResult) (string, error) {
	if result.IsZero() {
		return "null", nil
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, result, "", Indent); err != nil {
		return "", fmt.Errorf("failed to format result: %w", err)
	}
	return buf.String(), nil
}

// Apply runs a JMESPath expression against the result.
// An empty expression returns the result unchanged.
func Apply(result types.InsightResult, expression string) (types.InsightResult, error) {
	expression = strings.TrimSpace(expression)
	if expression == "" {
		return result, nil
	}

	var data interface{}
	if !result.IsZero() {
		if err := json.Unmarshal(result, &data); err != nil {
			return nil, fmt.Errorf("invalid JSON: %w", err)
		}
	}

	jp, err := jmespath.Compile(expression)
	if err != nil {
		return nil, fmt.Errorf("invalid JMESPath expression '%s': %w", expression, err)
	}

	out, err := jp.Search(data)
	if err != nil {
		return nil, fmt.Errorf("JMESPath search failed: %w", err)
	}

	// Handle null result
	if out == nil {
		return types.InsightResult("null"), nil
	}

	encoded, err := json.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal result: %w", err)
	}
	return types.InsightResult(encoded), nil
}

// Highlight colours JSON text for a 256-colour terminal.
// The input is returned unchanged if highlighting fails.
func Highlight(text, style string) string {
	return HighlightAs(text, "json", style)
}

// HighlightAs is Highlight for another chroma lexer, e.g. "yaml"
func HighlightAs(text, lexer, style string) string {
	if style == "" {
		style = "monokai"
	}
	var buf bytes.Buffer
	if err := quick.Highlight(&buf, text, lexer, "terminal256", style); err != nil {
		return text
	}
	return buf.String()
}

// ToYAML renders the result as block-style YAML, keeping key order
func ToYAML(result types.InsightResult) (string, error) {
	if result.IsZero() {
		return "null\n", nil
	}

	// JSON is a YAML flow document, so parse it into a node tree and
	// re-emit it in block style.
	var node yaml.Node
	if err := yaml.Unmarshal(result, &node); err == nil {
		plainStyle(&node)
		out, err := yaml.Marshal(&node)
		if err == nil {
			return string(out), nil
		}
	}

	// Fallback for documents yaml cannot read directly
	var data interface{}
	if err := json.Unmarshal(result, &data); err != nil {
		return "", fmt.Errorf("invalid JSON: %w", err)
	}
	out, err := yaml.Marshal(data)
	if err != nil {
		return "", fmt.Errorf("failed to marshal YAML: %w", err)
	}
	return string(out), nil
}

// plainStyle drops JSON's flow collections and quoting. The encoder
// still quotes strings that would otherwise read as another type.
func plainStyle(n *yaml.Node) {
	n.Style &^= yaml.FlowStyle | yaml.DoubleQuotedStyle | yaml.SingleQuotedStyle
	for _, c := range n.Content {
		plainStyle(c)
	}
}
