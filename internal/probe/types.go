// Package probe implements the sequence identification pipeline: candidate
// lookup, scoring, merging, ranking, relaxation and explanation.
package probe

import (
	"context"

	"github.com/probelabs/seqprobe/internal/match"
	"github.com/probelabs/seqprobe/internal/query"
)

// Source identifies which candidate provider produced a hit.
type Source string

const (
	// SourceOnline is the remote catalog JSON API.
	SourceOnline Source = "online"
	// SourceOffline is the locally indexed catalog dump.
	SourceOffline Source = "offline"
)

// Candidate is one catalogued sequence as handed over by a provider.
// The pipeline only reads it; ownership stays with the provider.
type Candidate struct {
	// ID is the catalog identifier, e.g. "A000045".
	ID string

	// Terms are the catalogued sequence terms, in order.
	Terms []int64

	// Name is the catalogued description. Optional.
	Name string
}

// Provider returns candidate sequences for a query. Online and offline
// lookups implement the same capability; the pipeline is source-agnostic.
type Provider interface {
	// Source identifies the provider for merging and error isolation.
	Source() Source

	// Lookup returns zero or more candidates for the query. Errors degrade
	// to an empty candidate set unless the engine runs in strict mode.
	Lookup(ctx context.Context, q query.Query) ([]Candidate, error)
}

// ScoredHit is one candidate scored against the query.
type ScoredHit struct {
	ID       string  `json:"id"`
	Name     string  `json:"name,omitempty"`
	Terms    []int64 `json:"-"`
	Score    float64 `json:"score"`
	MatchLen int     `json:"match_len"`
	At       int     `json:"at"`
	Source   Source  `json:"source"`
}

// RankPolicy selects the hit ordering.
type RankPolicy string

const (
	// RankStrict orders by descending (score, match_len), ties broken by
	// ascending identifier. The default.
	RankStrict RankPolicy = "strict"

	// RankPreferEarly additionally prefers the smaller alignment offset
	// when score and match_len are equal: a match at the start of the
	// catalogued sequence is a stronger signal than one deep inside it.
	RankPreferEarly RankPolicy = "prefer-early"
)

// ParseRankPolicy validates a rank policy name.
func ParseRankPolicy(s string) (RankPolicy, bool) {
	switch RankPolicy(s) {
	case RankStrict, RankPreferEarly:
		return RankPolicy(s), true
	case "":
		return RankStrict, true
	default:
		return "", false
	}
}

// Result is the outcome of one probe run.
type Result struct {
	// Hits is the ranked hit list, at most MaxHits long.
	Hits []ScoredHit `json:"hits"`

	// Dropped is the number of query terms removed by the relaxation
	// controller before hits were found. Zero when relaxation did not run
	// or was not needed.
	Dropped int `json:"dropped"`

	// Relaxed reports whether the relaxation controller ran at all.
	Relaxed bool `json:"relaxed"`

	// Explanation locates the first divergence between the original query
	// and the top hit. Only set when explanation was requested and at
	// least one hit exists; nil also means "query is a literal prefix".
	Explanation *match.Explanation `json:"explanation,omitempty"`

	// SourceErrors records per-source failures that were degraded to empty
	// candidate sets. Keyed by source; empty in strict mode (the first
	// failure aborts instead).
	SourceErrors map[Source]error `json:"-"`
}
