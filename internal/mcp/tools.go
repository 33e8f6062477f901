package mcp

import (
	"github.com/probelabs/seqprobe/internal/match"
	"github.com/probelabs/seqprobe/internal/probe"
)

// ProbeInput defines the input schema for the probe_sequence tool.
type ProbeInput struct {
	Terms       string `json:"terms" jsonschema:"the integer sequence to identify, comma or space separated"`
	MaxHits     int    `json:"max_hits,omitempty" jsonschema:"maximum number of ranked hits, default 10"`
	MinMatchLen int    `json:"min_match_len,omitempty" jsonschema:"drop hits whose consecutive match is shorter than this"`
	Rank        string `json:"rank,omitempty" jsonschema:"ranking policy: strict or prefer-early"`
	Relax       bool   `json:"relax,omitempty" jsonschema:"retry with a shortened query when nothing matches"`
	Explain     bool   `json:"explain,omitempty" jsonschema:"report where the query first diverges from the top hit"`
}

// ProbeOutput defines the output schema for the probe_sequence tool.
type ProbeOutput struct {
	Hits        []HitOutput        `json:"hits" jsonschema:"ranked matches"`
	Relaxed     bool               `json:"relaxed,omitempty" jsonschema:"true when the query was shortened to find matches"`
	Dropped     int                `json:"dropped,omitempty" jsonschema:"how many trailing terms were dropped"`
	Explanation *ExplanationOutput `json:"explanation,omitempty" jsonschema:"first divergence against the top hit"`
}

// HitOutput is one ranked match.
type HitOutput struct {
	ID       string  `json:"id" jsonschema:"catalog identifier, e.g. A000045"`
	Name     string  `json:"name,omitempty" jsonschema:"sequence name"`
	Score    float64 `json:"score" jsonschema:"match quality between 0 and 1"`
	MatchLen int     `json:"match_len" jsonschema:"length of the matched run"`
	At       int     `json:"at" jsonschema:"offset of the match inside the candidate"`
	Source   string  `json:"source" jsonschema:"which source produced the hit: online or offline"`
}

// ExplanationOutput describes the first divergence from the top hit.
type ExplanationOutput struct {
	MismatchIndex int   `json:"mismatch_index" jsonschema:"query index of the first divergence"`
	QueryValue    int64 `json:"query_value" jsonschema:"query term at that index"`
	ExpectedValue int64 `json:"expected_value,omitempty" jsonschema:"candidate term at that index"`
	SequenceEnded bool  `json:"sequence_ended,omitempty" jsonschema:"true when the candidate ends before the query"`
}

// LookupInput defines the input schema for the lookup_identifier tool.
type LookupInput struct {
	ID string `json:"id" jsonschema:"catalog identifier, e.g. A000045"`
}

// LookupOutput defines the output schema for the lookup_identifier tool.
type LookupOutput struct {
	ID    string  `json:"id" jsonschema:"catalog identifier"`
	Name  string  `json:"name,omitempty" jsonschema:"sequence name"`
	Terms []int64 `json:"terms" jsonschema:"leading terms of the sequence"`
}

func toProbeOutput(res *probe.Result) ProbeOutput {
	out := ProbeOutput{
		Hits:    make([]HitOutput, 0, len(res.Hits)),
		Relaxed: res.Relaxed,
		Dropped: res.Dropped,
	}
	for _, h := range res.Hits {
		out.Hits = append(out.Hits, HitOutput{
			ID:       h.ID,
			Name:     h.Name,
			Score:    h.Score,
			MatchLen: h.MatchLen,
			At:       h.At,
			Source:   string(h.Source),
		})
	}
	if res.Explanation != nil {
		out.Explanation = toExplanationOutput(res.Explanation)
	}
	return out
}

func toExplanationOutput(e *match.Explanation) *ExplanationOutput {
	return &ExplanationOutput{
		MismatchIndex: e.MismatchIndex,
		QueryValue:    e.QueryValue,
		ExpectedValue: e.ExpectedValue,
		SequenceEnded: e.SequenceEnded,
	}
}
