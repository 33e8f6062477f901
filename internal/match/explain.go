package match

// Explanation describes the first point where a query diverges from a
// candidate's terms under positional comparison from index 0.
type Explanation struct {
	// MismatchIndex is the 0-based position in the query where the
	// divergence occurs.
	MismatchIndex int `json:"mismatch_index"`

	// QueryValue is the query term observed at MismatchIndex.
	QueryValue int64 `json:"query_value"`

	// ExpectedValue is the candidate term at the same index. Meaningless
	// when SequenceEnded is true.
	ExpectedValue int64 `json:"expected_value,omitempty"`

	// SequenceEnded is true when the candidate ran out of terms before the
	// query did, so there is no expected value to report.
	SequenceEnded bool `json:"sequence_ended,omitempty"`
}

// Explain scans query and terms position by position from index 0 and
// reports the first divergence. Returns nil when the query is a literal
// prefix of terms. Purely diagnostic; never needed for ranking.
func Explain(queryTerms, terms []int64) *Explanation {
	for i, qv := range queryTerms {
		if i >= len(terms) {
			return &Explanation{
				MismatchIndex: i,
				QueryValue:    qv,
				SequenceEnded: true,
			}
		}
		if qv != terms[i] {
			return &Explanation{
				MismatchIndex: i,
				QueryValue:    qv,
				ExpectedValue: terms[i],
			}
		}
	}
	return nil
}
