package probe

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func idsOf(hits []ScoredHit) []string {
	ids := make([]string, len(hits))
	for i, h := range hits {
		ids[i] = h.ID
	}
	sort.Strings(ids)
	return ids
}

func TestMergeHits_KeepsHigherScore(t *testing.T) {
	a := []ScoredHit{{ID: "A000045", Score: 0.5, MatchLen: 5, Source: SourceOffline}}
	b := []ScoredHit{{ID: "A000045", Score: 0.9, MatchLen: 9, Source: SourceOnline}}

	merged := mergeHits(a, b)

	require.Len(t, merged, 1)
	assert.Equal(t, 0.9, merged[0].Score)
	assert.Equal(t, SourceOnline, merged[0].Source)
}

func TestMergeHits_IsCommutative(t *testing.T) {
	a := []ScoredHit{
		{ID: "A000045", Score: 0.5, Source: SourceOffline},
		{ID: "A000217", Score: 1.0, Source: SourceOffline},
	}
	b := []ScoredHit{
		{ID: "A000045", Score: 0.9, Source: SourceOnline},
		{ID: "A000079", Score: 0.3, Source: SourceOnline},
	}

	ab := mergeHits(a, b)
	ba := mergeHits(b, a)

	assert.ElementsMatch(t, ab, ba)
	assert.Equal(t, []string{"A000045", "A000079", "A000217"}, idsOf(ab))
}

func TestMergeHits_NoDuplicateIdentifiers(t *testing.T) {
	a := []ScoredHit{
		{ID: "A000045", Score: 0.5},
		{ID: "A000045", Score: 0.6},
	}
	b := []ScoredHit{{ID: "A000045", Score: 0.4}}

	merged := mergeHits(a, b)

	assert.Len(t, merged, 1)
	assert.Equal(t, 0.6, merged[0].Score)
}

func TestMergeHits_ExactTiePrefersOnline(t *testing.T) {
	off := []ScoredHit{{ID: "A000045", Score: 1.0, MatchLen: 8, Source: SourceOffline, Name: "offline name"}}
	on := []ScoredHit{{ID: "A000045", Score: 1.0, MatchLen: 8, Source: SourceOnline, Name: "online name"}}

	for _, merged := range [][]ScoredHit{mergeHits(off, on), mergeHits(on, off)} {
		require.Len(t, merged, 1)
		assert.Equal(t, SourceOnline, merged[0].Source)
	}
}

func TestMergeHits_EqualScoreHigherMatchLenWins(t *testing.T) {
	// Equal score can only pair with differing match_len when the hits come
	// from different query lengths; the merger still honors the tuple order.
	a := []ScoredHit{{ID: "A000045", Score: 0.5, MatchLen: 5, Source: SourceOnline}}
	b := []ScoredHit{{ID: "A000045", Score: 0.5, MatchLen: 6, Source: SourceOffline}}

	merged := mergeHits(a, b)

	require.Len(t, merged, 1)
	assert.Equal(t, 6, merged[0].MatchLen)
}

func TestMergeHits_EmptyInputs(t *testing.T) {
	assert.Empty(t, mergeHits())
	assert.Empty(t, mergeHits(nil, nil))
	assert.Len(t, mergeHits(nil, []ScoredHit{{ID: "A000001"}}), 1)
}

func TestFilterByMatchLen(t *testing.T) {
	hits := []ScoredHit{
		{ID: "A000001", MatchLen: 3},
		{ID: "A000002", MatchLen: 10},
		{ID: "A000003", MatchLen: 9},
	}

	assert.Len(t, filterByMatchLen(hits, 0), 3)
	assert.Equal(t, []string{"A000002"}, idsOf(filterByMatchLen(hits, 10)))
	assert.Empty(t, filterByMatchLen(hits, 11))
}
