package completion

import (
	"math"

	"github.com/sahilm/fuzzy"
)

// NoMatchScore is the score of a label the pattern does not match.
const NoMatchScore = math.MinInt32

// Scorer scores how well label matches pattern. Higher is better and the
// result must be stable across calls.
type Scorer interface {
	Score(pattern, label string) int
}

// ScorerFunc adapts a function to Scorer.
type ScorerFunc func(pattern, label string) int

func (f ScorerFunc) Score(pattern, label string) int { return f(pattern, label) }

// FuzzyScorer scores labels with subsequence matching that rewards
// contiguous runs, word starts and first-character matches.
type FuzzyScorer struct{}

func (FuzzyScorer) Score(pattern, label string) int {
	if pattern == "" {
		return 0
	}
	matches := fuzzy.Find(pattern, []string{label})
	if len(matches) == 0 {
		return NoMatchScore
	}
	return matches[0].Score
}
