/*
Copyright 2024 Inlet Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package inlet

import (
	"strings"
	"unicode"

	"github.com/inlethq/inlet/model"
)

// Confidence thresholds for bucketing similarity scores. Boundaries are
// exclusive on the lower tier: a score of exactly 0.8 is medium, not high.
// These values are load-bearing for the bulk-update gate; do not tune them.
const (
	HighConfidenceThreshold   = 0.8
	MediumConfidenceThreshold = 0.6
	LowConfidenceThreshold    = 0.4
)

// Scores assigned by the two shortcut paths of the fuzzy scorer.
const (
	exactMatchScore  = 1.0
	containmentScore = 0.85
)

// NormalizeKey lowers the string and strips every non-alphanumeric rune.
// Both the input key and every candidate field are normalized identically
// before scoring, which makes the scorer case- and punctuation-insensitive.
func NormalizeKey(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// TierForScore derives the confidence tier from a similarity score.
func TierForScore(score float64) model.ConfidenceTier {
	switch {
	case score > HighConfidenceThreshold:
		return model.TierHigh
	case score > MediumConfidenceThreshold:
		return model.TierMedium
	case score > LowConfidenceThreshold:
		return model.TierLow
	default:
		return model.TierNone
	}
}

// Similarity computes a normalized score in [0,1] between two strings.
//
// Exact match after normalization scores 1.0 and substring containment in
// either direction scores 0.85. Anything else falls back to a word-overlap
// ratio over the original whitespace tokens: the number of input tokens that
// have a counterpart token in the candidate (either containing the other as a
// substring) divided by the larger word count. The function is deterministic;
// the same pair always yields the same score.
func Similarity(input, candidate string) float64 {
	normInput := NormalizeKey(input)
	normCandidate := NormalizeKey(candidate)
	if normInput == "" || normCandidate == "" {
		return 0
	}
	if normInput == normCandidate {
		return exactMatchScore
	}
	if strings.Contains(normInput, normCandidate) || strings.Contains(normCandidate, normInput) {
		return containmentScore
	}
	return wordOverlap(input, candidate)
}

// wordOverlap splits both strings on whitespace and counts input tokens that
// have a corresponding candidate token where either token contains the other.
func wordOverlap(input, candidate string) float64 {
	inputWords := strings.Fields(strings.ToLower(input))
	candidateWords := strings.Fields(strings.ToLower(candidate))
	if len(inputWords) == 0 || len(candidateWords) == 0 {
		return 0
	}

	matched := 0
	for _, iw := range inputWords {
		for _, cw := range candidateWords {
			if strings.Contains(iw, cw) || strings.Contains(cw, iw) {
				matched++
				break
			}
		}
	}

	longer := len(inputWords)
	if len(candidateWords) > longer {
		longer = len(candidateWords)
	}
	return float64(matched) / float64(longer)
}

// Match scores an identity key against every candidate's comparable fields,
// keeping the maximum across fields and candidates, and buckets the best
// score into a confidence tier. A TierNone result means no usable match even
// though the best candidate is still returned for reporting.
func Match(identityKey string, candidates []model.Candidate) model.MatchResult {
	var best *model.Candidate
	bestScore := 0.0

	for i := range candidates {
		for _, field := range candidates[i].CompareFields {
			score := Similarity(identityKey, field)
			if score > bestScore {
				bestScore = score
				best = &candidates[i]
			}
		}
	}

	return model.MatchResult{
		Candidate: best,
		Score:     bestScore,
		Tier:      TierForScore(bestScore),
	}
}

// MatchExact resolves identity by full equality against any of a candidate's
// aliases, normalized to lower-case and trimmed only. The first equality hit
// wins with score 1.0 and tier high. There is no fuzzy fallback: exact
// identity (contact e-mails, vision-model SKUs) must never be approximated.
func MatchExact(identityKey string, candidates []model.Candidate) model.MatchResult {
	key := strings.ToLower(strings.TrimSpace(identityKey))
	if key == "" {
		return model.MatchResult{Tier: model.TierNone}
	}

	for i := range candidates {
		for _, alias := range candidates[i].Aliases {
			if strings.ToLower(strings.TrimSpace(alias)) == key {
				return model.MatchResult{
					Candidate: &candidates[i],
					Score:     exactMatchScore,
					Tier:      model.TierHigh,
				}
			}
		}
	}

	return model.MatchResult{Tier: model.TierNone}
}
