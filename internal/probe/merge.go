package probe

// mergeHits deduplicates scored hits from multiple sources by identifier.
// When the same identifier appears more than once, the hit with the higher
// (score, match_len) wins; exact ties prefer the online source. The merge
// is commutative and idempotent, so provider completion order never
// affects the outcome.
func mergeHits(sets ...[]ScoredHit) []ScoredHit {
	merged := make(map[string]ScoredHit)
	for _, set := range sets {
		for _, h := range set {
			prev, seen := merged[h.ID]
			if !seen || better(h, prev) {
				merged[h.ID] = h
			}
		}
	}

	out := make([]ScoredHit, 0, len(merged))
	for _, h := range merged {
		out = append(out, h)
	}
	return out
}

// better reports whether a should replace b for the same identifier.
func better(a, b ScoredHit) bool {
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	if a.MatchLen != b.MatchLen {
		return a.MatchLen > b.MatchLen
	}
	return a.Source == SourceOnline && b.Source != SourceOnline
}

// filterByMatchLen drops hits whose match length is below the floor.
// A floor of zero keeps everything.
func filterByMatchLen(hits []ScoredHit, minMatchLen int) []ScoredHit {
	if minMatchLen <= 0 {
		return hits
	}
	out := hits[:0:0]
	for _, h := range hits {
		if h.MatchLen >= minMatchLen {
			out = append(out, h)
		}
	}
	return out
}
