package mock

import (
	"math"
	"sort"
	"strings"
	"unicode"
)

// Insight is the document the analyze mode returns
type Insight struct {
	SummarySentence string   `json:"summary_sentence"`
	AIScore         float64  `json:"ai_score"`
	TopKeywords     []string `json:"top_keywords"`
	Polarity        float64  `json:"polarity"`
	Subjectivity    float64  `json:"subjectivity"`
}

// opinion words and their polarity
var lexicon = map[string]float64{
	"amazing": 0.9, "awesome": 0.9, "excellent": 1, "fantastic": 0.9, "perfect": 1,
	"love": 0.8, "loved": 0.8, "great": 0.8, "good": 0.7, "nice": 0.6, "happy": 0.8,
	"recommend": 0.5, "best": 1, "soft": 0.3, "fast": 0.3, "easy": 0.4, "beautiful": 0.85,
	"bad": -0.7, "poor": -0.4, "terrible": -1, "awful": -1, "worst": -1, "hate": -0.8,
	"broken": -0.6, "broke": -0.6, "disappointed": -0.75, "cheap": -0.3, "slow": -0.3,
	"waste": -0.8, "return": -0.2, "returned": -0.3, "refund": -0.3, "smell": -0.2,
}

var stopwords = map[string]bool{
	"the": true, "and": true, "for": true, "this": true, "that": true, "with": true,
	"was": true, "are": true, "but": true, "not": true, "have": true, "has": true,
	"you": true, "its": true, "it's": true, "very": true, "just": true, "they": true,
	"from": true, "after": true, "would": true, "all": true, "one": true, "too": true,
	"really": true, "our": true, "use": true, "used": true, "will": true, "can": true,
}

// Analyze computes a deterministic insight from text with a small
// opinion lexicon. Scores use the same bands as the real service:
// ai_score = 5 + 4*polarity - 2*subjectivity, summary bands at +-0.2.
func Analyze(text string) Insight {
	words := tokenize(text)

	var sum float64
	var opinions int
	counts := make(map[string]int)
	firstSeen := make(map[string]int)
	negate := false

	for i, w := range words {
		if p, ok := lexicon[w]; ok {
			if negate {
				p = -p / 2
			}
			sum += p
			opinions++
		} else if len(w) >= 3 && !stopwords[w] {
			if _, ok := firstSeen[w]; !ok {
				firstSeen[w] = i
			}
			counts[w]++
		}
		negate = w == "not" || w == "never" || w == "no"
	}

	var polarity, subjectivity float64
	if opinions > 0 {
		polarity = sum / float64(opinions)
		subjectivity = math.Min(1, float64(opinions)*3/float64(len(words)))
	}

	keywords := make([]string, 0, len(counts))
	for w := range counts {
		keywords = append(keywords, w)
	}
	sort.Slice(keywords, func(i, j int) bool {
		a, b := keywords[i], keywords[j]
		if counts[a] != counts[b] {
			return counts[a] > counts[b]
		}
		return firstSeen[a] < firstSeen[b]
	})
	if len(keywords) > 5 {
		keywords = keywords[:5]
	}

	summary := "Reviews are mixed."
	switch {
	case polarity > 0.2:
		summary = "Reviews are mostly positive."
	case polarity <= -0.2:
		summary = "Reviews are mostly negative."
	}
	if len(keywords) > 0 {
		summary += " Users often mention " + strings.Join(keywords[:min(2, len(keywords))], ", ") + "."
	}

	return Insight{
		SummarySentence: summary,
		AIScore:         round(5+4*polarity-2*subjectivity, 2),
		TopKeywords:     keywords,
		Polarity:        round(polarity, 3),
		Subjectivity:    round(subjectivity, 3),
	}
}

// tokenize lowercases and splits on anything but letters and apostrophes
func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && r != '\''
	})
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
