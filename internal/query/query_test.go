package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	seqerrors "github.com/probelabs/seqprobe/internal/errors"
)

func TestParse_AcceptedSeparators(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []int64
	}{
		{"commas", "1,2,3", []int64{1, 2, 3}},
		{"spaces", "1 2 3", []int64{1, 2, 3}},
		{"comma space", "1, 2, 3", []int64{1, 2, 3}},
		{"mixed", " 1,2 3 ,4 ", []int64{1, 2, 3, 4}},
		{"negative terms", "-1,0,-2,5", []int64{-1, 0, -2, 5}},
		{"single term", "42", []int64{42}},
		{"large values", "9223372036854775807,-9223372036854775808",
			[]int64{9223372036854775807, -9223372036854775808}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := Parse(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, q.Terms())
		})
	}
}

func TestParse_Rejections(t *testing.T) {
	tests := []struct {
		name string
		in   string
		code string
	}{
		{"empty", "", seqerrors.ErrCodeQueryEmpty},
		{"whitespace only", "   ", seqerrors.ErrCodeQueryEmpty},
		{"commas only", ",,,", seqerrors.ErrCodeQueryEmpty},
		{"non-integer token", "1,2,x", seqerrors.ErrCodeQueryParse},
		{"float token", "1,2.5,3", seqerrors.ErrCodeQueryParse},
		{"hex token", "0x1f", seqerrors.ErrCodeQueryParse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.in)
			require.Error(t, err)
			assert.Equal(t, tt.code, seqerrors.GetCode(err))
			assert.True(t, seqerrors.IsFatal(err), "parse errors are fatal")
		})
	}
}

func TestNew_CopiesInput(t *testing.T) {
	terms := []int64{1, 2, 3}
	q, err := New(terms)
	require.NoError(t, err)

	terms[0] = 99
	assert.Equal(t, int64(1), q.At(0), "Query must not alias the caller's slice")
}

func TestNew_RejectsEmpty(t *testing.T) {
	_, err := New(nil)
	assert.Error(t, err)
}

func TestTerms_ReturnsCopy(t *testing.T) {
	q, err := Parse("1,2,3")
	require.NoError(t, err)

	out := q.Terms()
	out[0] = 99
	assert.Equal(t, int64(1), q.At(0))
}

func TestShorten_DropsLastTerm(t *testing.T) {
	q, err := Parse("1,2,3,4")
	require.NoError(t, err)

	s := q.Shorten()
	assert.Equal(t, []int64{1, 2, 3}, s.Terms())
	assert.Equal(t, 4, q.Len(), "original query unchanged")
}

func TestShorten_PanicsOnSingleTerm(t *testing.T) {
	q, err := Parse("7")
	require.NoError(t, err)

	assert.Panics(t, func() { q.Shorten() })
}

func TestTruncate(t *testing.T) {
	q, err := Parse("1,2,3,4,5")
	require.NoError(t, err)

	assert.Equal(t, []int64{1, 2, 3}, q.Truncate(3).Terms())
	assert.Equal(t, 5, q.Truncate(10).Len())
	assert.Equal(t, 5, q.Truncate(0).Len())
	assert.Equal(t, 5, q.Truncate(-1).Len())
}

func TestString_CommaJoined(t *testing.T) {
	q, err := Parse("0, 1, -1, 2")
	require.NoError(t, err)

	assert.Equal(t, "0,1,-1,2", q.String())
}
