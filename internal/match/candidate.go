package match

import (
	"slices"
	"strings"
)

// Suggestion thresholds.
const (
	// DefaultMinScore is the minimum score of a suggestion.
	DefaultMinScore = 0.6
	// DefaultMaxSuggestions bounds the suggestions attached to one diagnostic.
	DefaultMaxSuggestions = 3
)

// Candidate is a known name scored against a near-miss.
type Candidate struct {
	Name string
	// Score is the best of the raw and normalized similarities (0-1).
	Score float64
	// Normalized is the normalized form of Name.
	Normalized string
}

// CandidateList is a list of candidates, best first.
type CandidateList []Candidate

// RankCandidates scores every name against target. The list is sorted by
// score descending, then by name for determinism.
func RankCandidates(target string, names []string) CandidateList {
	targetNorm := NormalizeProperty(target)

	out := make(CandidateList, 0, len(names))

	for _, name := range names {
		if name == target {
			continue
		}

		norm := NormalizeProperty(name)
		score := max(
			Similarity(strings.ToLower(target), strings.ToLower(name)),
			Similarity(targetNorm, norm),
		)

		out = append(out, Candidate{Name: name, Score: score, Normalized: norm})
	}

	slices.SortStableFunc(out, func(a, b Candidate) int {
		switch {
		case a.Score > b.Score:
			return -1
		case a.Score < b.Score:
			return 1
		default:
			return strings.Compare(a.Name, b.Name)
		}
	})

	return out
}

// Top returns the first n candidates.
func (c CandidateList) Top(n int) CandidateList {
	if n >= len(c) {
		return c
	}

	return c[:n]
}

// AboveThreshold returns the candidates scoring at least threshold.
func (c CandidateList) AboveThreshold(threshold float64) CandidateList {
	var result CandidateList

	for _, cand := range c {
		if cand.Score >= threshold {
			result = append(result, cand)
		}
	}

	return result
}

// Names returns the candidate names.
func (c CandidateList) Names() []string {
	out := make([]string, 0, len(c))
	for _, cand := range c {
		out = append(out, cand.Name)
	}

	return out
}

// Suggest returns up to DefaultMaxSuggestions names similar to target.
func Suggest(target string, names []string) []string {
	return RankCandidates(target, names).
		AboveThreshold(DefaultMinScore).
		Top(DefaultMaxSuggestions).
		Names()
}
