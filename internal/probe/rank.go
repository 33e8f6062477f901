package probe

import "sort"

// rankHits sorts hits under the given policy and truncates to maxHits.
// The sort is a total order, so equal inputs always produce equal output.
func rankHits(hits []ScoredHit, policy RankPolicy, maxHits int) []ScoredHit {
	sorted := make([]ScoredHit, len(hits))
	copy(sorted, hits)

	sort.Slice(sorted, func(i, j int) bool {
		return less(sorted[i], sorted[j], policy)
	})

	if maxHits > 0 && len(sorted) > maxHits {
		sorted = sorted[:maxHits]
	}
	return sorted
}

// less orders a before b: descending (score, match_len), then the policy's
// tie-break, then ascending identifier for determinism.
func less(a, b ScoredHit, policy RankPolicy) bool {
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	if a.MatchLen != b.MatchLen {
		return a.MatchLen > b.MatchLen
	}
	if policy == RankPreferEarly && a.At != b.At {
		return a.At < b.At
	}
	return a.ID < b.ID
}
