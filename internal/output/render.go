package output

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/probelabs/seqprobe/internal/index"
	"github.com/probelabs/seqprobe/internal/match"
	"github.com/probelabs/seqprobe/internal/probe"
)

// maxTermsShown limits how many candidate terms the text view prints.
const maxTermsShown = 12

// resultView is the JSON shape for a probe result.
type resultView struct {
	Hits        []probe.ScoredHit  `json:"hits"`
	Relaxed     bool               `json:"relaxed"`
	Dropped     int                `json:"dropped"`
	Explanation *match.Explanation `json:"explanation,omitempty"`
	Errors      map[string]string  `json:"source_errors,omitempty"`
}

// RenderResultJSON writes the probe result as indented JSON.
func (w *Writer) RenderResultJSON(res *probe.Result) error {
	view := resultView{
		Hits:        res.Hits,
		Relaxed:     res.Relaxed,
		Dropped:     res.Dropped,
		Explanation: res.Explanation,
	}
	if view.Hits == nil {
		view.Hits = []probe.ScoredHit{}
	}
	if len(res.SourceErrors) > 0 {
		view.Errors = make(map[string]string, len(res.SourceErrors))
		for src, err := range res.SourceErrors {
			view.Errors[string(src)] = err.Error()
		}
	}

	enc := json.NewEncoder(w.out)
	enc.SetIndent("", "  ")
	return enc.Encode(view)
}

// RenderResult writes the probe result as a readable text listing.
func (w *Writer) RenderResult(res *probe.Result) {
	if res.Relaxed && res.Dropped > 0 {
		w.Status("", w.styles.Dim.Render(
			fmt.Sprintf("relaxed: dropped %d trailing term(s)", res.Dropped)))
	}
	for src, err := range res.SourceErrors {
		w.Warningf("%s source unavailable: %v", src, err)
	}

	if len(res.Hits) == 0 {
		w.Status("", w.styles.Dim.Render("no matches"))
		return
	}

	for i, h := range res.Hits {
		head := fmt.Sprintf("%2d. %s  score=%.3f  match_len=%d  at=%d  [%s]",
			i+1, w.styles.ID.Render(h.ID), h.Score, h.MatchLen, h.At, h.Source)
		w.Status("", head)
		if h.Name != "" {
			w.Status("", "    "+w.styles.Name.Render(h.Name))
		}
		if len(h.Terms) > 0 {
			w.Status("", "    "+w.styles.Dim.Render(formatTerms(h.Terms)))
		}
	}

	if res.Explanation != nil {
		w.Newline()
		w.RenderExplanation(res.Explanation)
	}
}

// RenderExplanation describes the first divergence against the top hit.
func (w *Writer) RenderExplanation(e *match.Explanation) {
	if e.SequenceEnded {
		w.Statusf("", "diverges at index %d: query has %d but the candidate ends there",
			e.MismatchIndex, e.QueryValue)
		return
	}
	w.Statusf("", "diverges at index %d: query has %d, candidate has %d",
		e.MismatchIndex, e.QueryValue, e.ExpectedValue)
}

// RenderCandidate prints one fetched sequence.
func (w *Writer) RenderCandidate(c probe.Candidate) {
	w.Status("", w.styles.ID.Render(c.ID))
	if c.Name != "" {
		w.Status("", "  "+w.styles.Name.Render(c.Name))
	}
	w.Status("", "  "+formatTerms(c.Terms))
}

// RenderCandidateJSON prints one fetched sequence as JSON.
func (w *Writer) RenderCandidateJSON(c probe.Candidate) error {
	view := struct {
		ID    string  `json:"id"`
		Name  string  `json:"name,omitempty"`
		Terms []int64 `json:"terms"`
	}{ID: c.ID, Name: c.Name, Terms: c.Terms}

	enc := json.NewEncoder(w.out)
	enc.SetIndent("", "  ")
	return enc.Encode(view)
}

// RenderNameHits prints full-text name search results.
func (w *Writer) RenderNameHits(hits []index.NameHit) {
	if len(hits) == 0 {
		w.Status("", w.styles.Dim.Render("no matches"))
		return
	}
	for i, h := range hits {
		w.Statusf("", "%2d. %s  %s", i+1, w.styles.ID.Render(h.ID), w.styles.Name.Render(h.Name))
	}
}

// formatTerms renders leading terms, eliding the rest.
func formatTerms(terms []int64) string {
	n := len(terms)
	shown := n
	if shown > maxTermsShown {
		shown = maxTermsShown
	}

	parts := make([]string, 0, shown+1)
	for _, t := range terms[:shown] {
		parts = append(parts, strconv.FormatInt(t, 10))
	}
	if n > shown {
		parts = append(parts, "…")
	}
	return strings.Join(parts, ", ")
}
