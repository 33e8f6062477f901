package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExplain_FullPrefixMatch(t *testing.T) {
	q := []int64{0, 1, 1, 2, 3}
	terms := []int64{0, 1, 1, 2, 3, 5, 8}

	assert.Nil(t, Explain(q, terms))
}

func TestExplain_ExactEqual(t *testing.T) {
	q := []int64{4, 5, 6}

	assert.Nil(t, Explain(q, []int64{4, 5, 6}))
}

func TestExplain_MismatchAtFinalIndex(t *testing.T) {
	// Last query term corrupted: 26 observed where the catalog has 25.
	q := []int64{1, 4, 9, 16, 24, 8, 26}
	terms := []int64{1, 4, 9, 16, 24, 8, 25, 27}

	e := Explain(q, terms)

	require.NotNil(t, e)
	assert.Equal(t, len(q)-1, e.MismatchIndex)
	assert.Equal(t, int64(26), e.QueryValue)
	assert.Equal(t, int64(25), e.ExpectedValue)
	assert.False(t, e.SequenceEnded)
}

func TestExplain_MismatchAtIndexZero(t *testing.T) {
	e := Explain([]int64{9, 1, 2}, []int64{1, 1, 2})

	require.NotNil(t, e)
	assert.Equal(t, 0, e.MismatchIndex)
	assert.Equal(t, int64(9), e.QueryValue)
	assert.Equal(t, int64(1), e.ExpectedValue)
}

func TestExplain_CandidateEndsFirst(t *testing.T) {
	e := Explain([]int64{1, 2, 3, 4}, []int64{1, 2})

	require.NotNil(t, e)
	assert.Equal(t, 2, e.MismatchIndex)
	assert.Equal(t, int64(3), e.QueryValue)
	assert.True(t, e.SequenceEnded)
}

func TestExplain_EmptyCandidate(t *testing.T) {
	e := Explain([]int64{1}, nil)

	require.NotNil(t, e)
	assert.Equal(t, 0, e.MismatchIndex)
	assert.True(t, e.SequenceEnded)
}
