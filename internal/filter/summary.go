package filter

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/studiowebux/insightcli/internal/types"
)

// Summary returns a one-line headline for result shapes produced by the
// review insight backend, or "" when the shape is not recognised.
//
// Recognised shapes:
//
//	{"summary_sentence": "...", "ai_score": 7.1, "top_keywords": [...]}
//	[{"asin": "...", "summary_sentence": ...}, ...]
//	{"sentences": [...], "summary": {"avg_polarity": 0.3, "avg_subjectivity": 0.5}}
//	{"polarity": 0.4, "subjectivity": 0.6}
func Summary(result types.InsightResult) string {
	if result.IsZero() {
		return ""
	}

	data, err := result.Decode()
	if err != nil {
		return ""
	}

	switch v := data.(type) {
	case map[string]interface{}:
		return summarizeObject(v)
	case []interface{}:
		if len(v) == 0 {
			return "No insights returned"
		}
		if first, ok := v[0].(map[string]interface{}); ok {
			if _, ok := first["asin"]; ok {
				return fmt.Sprintf("%d products analysed", len(v))
			}
		}
		return fmt.Sprintf("%d items", len(v))
	}
	return ""
}

func summarizeObject(obj map[string]interface{}) string {
	var parts []string

	if s, ok := obj["summary_sentence"].(string); ok && s != "" {
		parts = append(parts, s)
	}
	if score, ok := number(obj["ai_score"]); ok {
		parts = append(parts, fmt.Sprintf("score %.2f", score))
	}
	if kws, ok := obj["top_keywords"].([]interface{}); ok && len(kws) > 0 {
		var words []string
		for _, k := range kws {
			if s, ok := k.(string); ok {
				words = append(words, s)
			}
			if len(words) == 3 {
				break
			}
		}
		if len(words) > 0 {
			parts = append(parts, "keywords: "+strings.Join(words, ", "))
		}
	}

	if summary, ok := obj["summary"].(map[string]interface{}); ok {
		if p, ok := number(summary["avg_polarity"]); ok {
			parts = append(parts, fmt.Sprintf("%s (polarity %.3f)", polarityLabel(p), p))
		}
		if sents, ok := obj["sentences"].([]interface{}); ok {
			parts = append(parts, fmt.Sprintf("%d sentences", len(sents)))
		}
	} else if p, ok := number(obj["polarity"]); ok {
		parts = append(parts, fmt.Sprintf("%s (polarity %.3f)", polarityLabel(p), p))
	}

	return strings.Join(parts, " | ")
}

func number(v interface{}) (float64, bool) {
	n, ok := v.(json.Number)
	if !ok {
		return 0, false
	}
	f, err := n.Float64()
	return f, err == nil
}

// polarityLabel uses the same +-0.2 bands as the backend's summary sentence
func polarityLabel(p float64) string {
	switch {
	case p > 0.2:
		return "mostly positive"
	case p > -0.2:
		return "mixed"
	default:
		return "mostly negative"
	}
}
