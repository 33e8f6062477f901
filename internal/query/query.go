// Package query models the user-supplied integer sequence being probed.
package query

import (
	"strconv"
	"strings"

	"github.com/probelabs/seqprobe/internal/errors"
)

// Query is an immutable, ordered sequence of signed integers.
// The zero value is invalid; construct via Parse or New.
type Query struct {
	terms []int64
}

// Parse parses text like "1,2,3", "1 2 3" or "1, 2, 3" into a Query.
// It fails when any token is not a base-10 integer or the result is empty.
func Parse(text string) (Query, error) {
	raw := strings.TrimSpace(text)
	if raw == "" {
		return Query{}, errors.New(errors.ErrCodeQueryEmpty, "empty terms string", nil).
			WithSuggestion(`provide terms like "1,1,2,3,5,8"`)
	}

	fields := strings.Fields(strings.ReplaceAll(raw, ",", " "))
	terms := make([]int64, 0, len(fields))
	for _, f := range fields {
		n, err := strconv.ParseInt(f, 10, 64)
		if err != nil {
			return Query{}, errors.ParseError("bad term "+strconv.Quote(f)+" (expected integer)", err)
		}
		terms = append(terms, n)
	}
	if len(terms) == 0 {
		return Query{}, errors.New(errors.ErrCodeQueryEmpty, "empty terms string", nil)
	}

	return Query{terms: terms}, nil
}

// New constructs a Query from a term slice. The slice is copied.
// Returns an error for empty input.
func New(terms []int64) (Query, error) {
	if len(terms) == 0 {
		return Query{}, errors.New(errors.ErrCodeQueryEmpty, "query must have at least one term", nil)
	}
	q := Query{terms: make([]int64, len(terms))}
	copy(q.terms, terms)
	return q, nil
}

// Len returns the number of terms.
func (q Query) Len() int {
	return len(q.terms)
}

// At returns the term at index i.
func (q Query) At(i int) int64 {
	return q.terms[i]
}

// Terms returns a copy of the term slice.
func (q Query) Terms() []int64 {
	out := make([]int64, len(q.terms))
	copy(out, q.terms)
	return out
}

// Shorten returns a new Query with the last term dropped.
// The receiver is unchanged. Panics if the query has a single term,
// so callers must check Len first; the relaxation controller does.
func (q Query) Shorten() Query {
	if len(q.terms) <= 1 {
		panic("query: cannot shorten below one term")
	}
	s := Query{terms: make([]int64, len(q.terms)-1)}
	copy(s.terms, q.terms[:len(q.terms)-1])
	return s
}

// Truncate returns a Query limited to the first n terms.
// If n >= Len or n <= 0 the receiver is returned unchanged.
func (q Query) Truncate(n int) Query {
	if n <= 0 || n >= len(q.terms) {
		return q
	}
	t := Query{terms: make([]int64, n)}
	copy(t.terms, q.terms[:n])
	return t
}

// String renders the query as comma-joined terms, the catalog's wire form.
func (q Query) String() string {
	var sb strings.Builder
	for i, t := range q.terms {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(strconv.FormatInt(t, 10))
	}
	return sb.String()
}
