// Package match ranks identifiers by similarity to build "did you mean"
// suggestions for diagnostics.
//
// Key functions:
//   - NormalizeIdent: normalizes identifiers for fuzzy matching
//   - Levenshtein: computes edit distance between strings
//   - RankCandidates: ranks known names against a near-miss
//   - Suggest: picks the confident suggestions out of a ranking
package match
