// Package reward implements Engram's feedback-detection and
// reward-modulated update rule (spec.md §4.6): polarity detection from a
// fixed wordlist, and discounted strength/importance adjustment of the
// most-recently-accessed memories.
package reward

import (
	"math"
	"strings"

	"github.com/engramhq/engram/internal/model"
)

// Polarity is the detected sentiment of a feedback utterance.
type Polarity string

const (
	Positive Polarity = "positive"
	Negative Polarity = "negative"
	Neutral  Polarity = "neutral"
)

var defaultPositive = []string{
	"great", "thanks", "thank you", "perfect", "correct", "right", "good", "helpful", "exactly", "yes",
}

var defaultNegative = []string{
	"wrong", "no", "not right", "incorrect", "bad", "useless", "never mind", "unhelpful", "nope",
}

// Wordlists lets a host override the fixed polarity vocabularies.
type Wordlists struct {
	Positive []string
	Negative []string
}

// DefaultWordlists returns Engram's built-in positive/negative vocabularies.
func DefaultWordlists() Wordlists {
	return Wordlists{Positive: defaultPositive, Negative: defaultNegative}
}

// DetectFeedback matches lowercased substrings of text against the
// wordlists and returns the detected polarity plus a confidence that grows
// with the number of matches (spec.md §4.6).
func DetectFeedback(text string, w Wordlists) (Polarity, float64) {
	lower := strings.ToLower(text)

	posMatches := countMatches(lower, w.Positive)
	negMatches := countMatches(lower, w.Negative)

	switch {
	case posMatches > negMatches:
		return Positive, confidenceFor(posMatches)
	case negMatches > posMatches:
		return Negative, confidenceFor(negMatches)
	case posMatches > 0: // tie with matches on both sides: ambiguous
		return Neutral, 0.1
	default:
		return Neutral, 0
	}
}

func countMatches(lower string, words []string) int {
	n := 0
	for _, w := range words {
		if strings.Contains(lower, w) {
			n++
		}
	}
	return n
}

func confidenceFor(matches int) float64 {
	c := 0.3 + 0.2*float64(matches)
	if c > 0.95 {
		c = 0.95
	}
	return c
}

// Discount returns the i-th (0-indexed) recency discount factor.
func Discount(i int) float64 {
	return 1 / (1 + 0.5*float64(i))
}

// Apply updates the importance and working_strength of entries in
// last-accessed-descending order (the caller is responsible for that
// ordering and for passing at most recent_n entries). Reward never fires
// on Neutral and never touches core_strength (spec.md §4.6).
func Apply(entries []*model.Entry, polarity Polarity, magnitude float64) {
	if polarity == Neutral {
		return
	}
	for i, e := range entries {
		discount := Discount(i)
		switch polarity {
		case Positive:
			e.Importance = math.Min(1, e.Importance+magnitude*discount)
			e.WorkingStrength += 0.05 * discount
		case Negative:
			e.Importance = math.Max(0, e.Importance-magnitude*discount)
			e.WorkingStrength *= 1 - 0.1*discount
		}
	}
}
