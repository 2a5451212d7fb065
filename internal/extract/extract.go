// Package extract parses free-form reply text into structured negotiation
// signals. Everything here is deterministic and side-effect-free so the
// heuristics can be tuned without touching the transition logic.
package extract

import (
	"regexp"
	"strconv"
	"strings"
)

// Terms is the structured result of parsing one reply.
type Terms struct {
	ProposedRates     []float64 `json:"proposed_rates"`
	HighestRate       float64   `json:"highest_rate"`
	LowestRate        float64   `json:"lowest_rate"`
	Timeline          string    `json:"timeline,omitempty"`
	Requirements      []string  `json:"requirements,omitempty"`
	Sentiment         string    `json:"sentiment"`
	OpenToNegotiation bool      `json:"open_to_negotiation"`
}

var (
	ratePattern        = regexp.MustCompile(`[$€£]\s?(\d+(?:,\d{3})*(?:\.\d+)?)`)
	timelinePattern    = regexp.MustCompile(`(?i)\b(within|in|about|around)\s+(\d+)[\s-]*(days?|weeks?|months?)\b`)
	requirementPattern = regexp.MustCompile(`(?i)\b(\d+)\s+(videos?|posts?|reels?|stories|streams?|mentions?)\b`)
)

var negotiationKeywords = []string{
	"flexible",
	"negotiate",
	"negotiable",
	"open to discussion",
	"open to discussing",
	"willing to discuss",
	"counter offer",
	"counter-offer",
	"instead",
}

var positiveWords = []string{
	"great", "love", "loves", "excited", "interested", "happy", "perfect",
	"awesome", "yes", "definitely", "sounds good", "thanks", "thank you",
}

var negativeWords = []string{
	"no", "not", "unfortunately", "decline", "declined", "pass", "can't",
	"cannot", "won't", "never", "disappointed", "wrong fit",
}

var (
	positivePattern = keywordPattern(positiveWords)
	negativePattern = keywordPattern(negativeWords)
)

// keywordPattern compiles words into one boundary-anchored alternation, so
// "no" never matches inside "know" or "now".
func keywordPattern(words []string) *regexp.Regexp {
	quoted := make([]string, len(words))
	for i, w := range words {
		quoted[i] = regexp.QuoteMeta(w)
	}
	return regexp.MustCompile(`(?i)\b(?:` + strings.Join(quoted, "|") + `)\b`)
}

// Extract parses text into Terms.
func Extract(text string) Terms {
	t := Terms{
		ProposedRates:     Rates(text),
		Timeline:          Timeline(text),
		Requirements:      Requirements(text),
		Sentiment:         Sentiment(text),
		OpenToNegotiation: OpenToNegotiation(text),
	}
	for i, r := range t.ProposedRates {
		if i == 0 || r > t.HighestRate {
			t.HighestRate = r
		}
		if i == 0 || r < t.LowestRate {
			t.LowestRate = r
		}
	}
	return t
}

// Rates returns every currency-prefixed amount found in the text, in order.
func Rates(text string) []float64 {
	var rates []float64
	for _, m := range ratePattern.FindAllStringSubmatch(text, -1) {
		raw := strings.ReplaceAll(m[1], ",", "")
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			continue
		}
		rates = append(rates, v)
	}
	return rates
}

// Timeline returns the first bounded timeline phrase, e.g. "2 weeks".
func Timeline(text string) string {
	m := timelinePattern.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return m[2] + " " + strings.ToLower(m[3])
}

// Requirements returns deliverable phrases like "3 videos".
func Requirements(text string) []string {
	var reqs []string
	for _, m := range requirementPattern.FindAllStringSubmatch(text, -1) {
		reqs = append(reqs, m[1]+" "+strings.ToLower(m[2]))
	}
	return reqs
}

// OpenToNegotiation reports whether any negotiation-willingness keyword
// appears, case-insensitive.
func OpenToNegotiation(text string) bool {
	lower := strings.ToLower(text)
	for _, kw := range negotiationKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// Sentiment classifies by keyword-count majority over whole words only.
// Ties resolve to neutral.
func Sentiment(text string) string {
	pos := len(positivePattern.FindAllString(text, -1))
	neg := len(negativePattern.FindAllString(text, -1))
	switch {
	case pos > neg:
		return "positive"
	case neg > pos:
		return "negative"
	default:
		return "neutral"
	}
}
