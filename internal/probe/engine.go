package probe

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	seqerrors "github.com/probelabs/seqprobe/internal/errors"
	"github.com/probelabs/seqprobe/internal/match"
	"github.com/probelabs/seqprobe/internal/query"
)

// Config holds the tunables for one probe run. Invalid combinations are
// rejected by New before any provider is invoked.
type Config struct {
	// MaxHits is the maximum number of ranked hits to return (default: 10).
	MaxHits int

	// Rank selects the ranking policy (default: strict).
	Rank RankPolicy

	// MinMatchLen drops hits with a shorter consecutive match before the
	// result set is considered (default: 0, keep everything).
	MinMatchLen int

	// Relax enables query shortening when the filtered result set is empty.
	Relax bool

	// RelaxMinTerms is the minimum viable query length the relaxation
	// controller will not shorten below (default: 3).
	RelaxMinTerms int

	// Explain computes the first divergence between the original query and
	// the top hit.
	Explain bool

	// StrictErrors propagates provider failures instead of degrading them
	// to an empty candidate set.
	StrictErrors bool
}

// DefaultConfig returns the default probe configuration.
func DefaultConfig() Config {
	return Config{
		MaxHits:       10,
		Rank:          RankStrict,
		MinMatchLen:   0,
		RelaxMinTerms: 3,
	}
}

// Engine runs the probe pipeline over a fixed set of providers.
type Engine struct {
	cfg       Config
	providers []Provider
	logger    *slog.Logger
}

// New creates an Engine after validating the configuration.
func New(cfg Config, providers ...Provider) (*Engine, error) {
	if cfg.MaxHits <= 0 {
		return nil, seqerrors.ConfigError(
			fmt.Sprintf("max_hits must be positive, got %d", cfg.MaxHits), nil)
	}
	if cfg.MinMatchLen < 0 {
		return nil, seqerrors.ConfigError(
			fmt.Sprintf("min_match_len must be non-negative, got %d", cfg.MinMatchLen), nil)
	}
	if _, ok := ParseRankPolicy(string(cfg.Rank)); !ok {
		return nil, seqerrors.ConfigError(
			fmt.Sprintf("unknown rank policy %q", cfg.Rank), nil).
			WithSuggestion(`use "strict" or "prefer-early"`)
	}
	if cfg.Rank == "" {
		cfg.Rank = RankStrict
	}
	if cfg.RelaxMinTerms < 1 {
		return nil, seqerrors.ConfigError(
			fmt.Sprintf("relax minimum terms must be at least 1, got %d", cfg.RelaxMinTerms), nil)
	}
	if len(providers) == 0 {
		return nil, seqerrors.ConfigError("at least one candidate source is required", nil).
			WithSuggestion("enable the online source or point --offline-stripped at a dump file")
	}

	return &Engine{
		cfg:       cfg,
		providers: providers,
		logger:    slog.Default(),
	}, nil
}

// Probe runs the full pipeline for one query: provider lookups, scoring,
// merging, filtering, ranking, then the optional relaxation loop and
// explanation. An empty hit list is a normal outcome, not an error.
func (e *Engine) Probe(ctx context.Context, q query.Query) (*Result, error) {
	hits, srcErrs, err := e.runOnce(ctx, q)
	if err != nil {
		return nil, err
	}

	result := &Result{Hits: hits, SourceErrors: srcErrs}

	if e.cfg.Relax && len(hits) == 0 {
		if err := e.relax(ctx, q, result); err != nil {
			return nil, err
		}
	}

	if e.cfg.Explain && len(result.Hits) > 0 {
		// Always explain against the original, un-shortened query.
		result.Explanation = match.Explain(q.Terms(), result.Hits[0].Terms)
	}

	return result, nil
}

// runOnce executes one provider → scorer → merge → filter → rank pass.
// Providers are queried concurrently; both complete (or fail) before
// merging begins, and merge order never affects the outcome.
func (e *Engine) runOnce(ctx context.Context, q query.Query) ([]ScoredHit, map[Source]error, error) {
	queryTerms := q.Terms()

	var mu sync.Mutex
	sets := make([][]ScoredHit, 0, len(e.providers))
	srcErrs := make(map[Source]error)

	g, gctx := errgroup.WithContext(ctx)
	for _, p := range e.providers {
		g.Go(func() error {
			candidates, err := p.Lookup(gctx, q)
			if err != nil {
				if e.cfg.StrictErrors {
					return err
				}
				// Degrade to zero candidates from this source; the other
				// source's lookup continues unaffected.
				e.logger.Warn("provider_lookup_failed",
					slog.String("source", string(p.Source())),
					slog.String("error", err.Error()))
				mu.Lock()
				srcErrs[p.Source()] = err
				mu.Unlock()
				return nil
			}

			scored := scoreCandidates(queryTerms, candidates, p.Source())
			mu.Lock()
			sets = append(sets, scored)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	merged := mergeHits(sets...)
	filtered := filterByMatchLen(merged, e.cfg.MinMatchLen)
	ranked := rankHits(filtered, e.cfg.Rank, e.cfg.MaxHits)

	e.logger.Debug("probe_pass",
		slog.Int("query_len", q.Len()),
		slog.Int("merged", len(merged)),
		slog.Int("ranked", len(ranked)))

	return ranked, srcErrs, nil
}

// scoreCandidates scores every candidate from one source against the query.
// Candidates are discarded after scoring; only the hit survives.
func scoreCandidates(queryTerms []int64, candidates []Candidate, src Source) []ScoredHit {
	hits := make([]ScoredHit, 0, len(candidates))
	for _, c := range candidates {
		r := match.Best(queryTerms, c.Terms)
		hits = append(hits, ScoredHit{
			ID:       c.ID,
			Name:     c.Name,
			Terms:    c.Terms,
			Score:    r.Score,
			MatchLen: r.MatchLen,
			At:       r.At,
			Source:   src,
		})
	}
	return hits
}
