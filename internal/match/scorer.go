// Package match scores candidate term sequences against a probe query.
//
// Matching is anchored at the query's beginning: for a candidate offset o,
// the match length is the longest k with terms[o+i] == query[i] for all
// i < k. The scorer reports the maximum such k over all offsets and the
// earliest offset achieving it. It is not a general longest-common-substring
// search; only prefixes of the query can match.
package match

// Result is the outcome of scoring one candidate against a query.
type Result struct {
	// MatchLen is the length of the longest query prefix found as a
	// contiguous run inside the candidate's terms.
	MatchLen int

	// At is the offset within the candidate's terms where the best match
	// begins. Zero when MatchLen is zero.
	At int

	// Score is MatchLen divided by the query length, in [0,1].
	Score float64
}

// Best finds the best-aligned consecutive match of the query prefix inside
// terms. Ties on length are broken toward the earliest candidate offset.
// Pure function; runs in O(len(terms)+len(query)) using a prefix automaton.
func Best(queryTerms, terms []int64) Result {
	if len(queryTerms) == 0 || len(terms) == 0 {
		return Result{}
	}

	fail := failureTable(queryTerms)

	bestLen := 0
	bestAt := 0
	j := 0 // length of the query prefix matched so far
	for i, v := range terms {
		for j > 0 && v != queryTerms[j] {
			j = fail[j-1]
		}
		if v == queryTerms[j] {
			j++
		}
		if j > bestLen {
			// j grows by at most one per step, so the first time a length
			// is reached is at the earliest offset achieving it.
			bestLen = j
			bestAt = i - j + 1
		}
		if j == len(queryTerms) {
			break // full query matched, nothing longer exists
		}
	}

	return Result{
		MatchLen: bestLen,
		At:       bestAt,
		Score:    clamp01(float64(bestLen) / float64(len(queryTerms))),
	}
}

// failureTable computes the KMP failure function for the query terms:
// fail[i] is the length of the longest proper prefix of query[:i+1] that
// is also a suffix of it.
func failureTable(q []int64) []int {
	fail := make([]int, len(q))
	k := 0
	for i := 1; i < len(q); i++ {
		for k > 0 && q[i] != q[k] {
			k = fail[k-1]
		}
		if q[i] == q[k] {
			k++
		}
		fail[i] = k
	}
	return fail
}

func clamp01(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}
