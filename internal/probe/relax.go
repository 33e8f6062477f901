package probe

import (
	"context"
	"log/slog"

	"github.com/probelabs/seqprobe/internal/query"
)

// relax retries the pipeline with a progressively shortened query until a
// non-empty filtered result appears or the query would fall below the
// minimum viable length. Attempts are strictly sequential: each shortening
// only happens because the previous attempt came back empty. Exhausting
// the budget is a normal empty outcome, never an error.
func (e *Engine) relax(ctx context.Context, q query.Query, result *Result) error {
	result.Relaxed = true

	shortened := q
	for shortened.Len()-1 >= e.cfg.RelaxMinTerms {
		shortened = shortened.Shorten()
		result.Dropped++

		hits, srcErrs, err := e.runOnce(ctx, shortened)
		if err != nil {
			return err
		}
		for src, serr := range srcErrs {
			result.SourceErrors[src] = serr
		}

		if len(hits) > 0 {
			e.logger.Debug("relaxation_hit",
				slog.Int("dropped", result.Dropped),
				slog.Int("query_len", shortened.Len()))
			result.Hits = hits
			return nil
		}
	}

	e.logger.Debug("relaxation_exhausted", slog.Int("dropped", result.Dropped))
	return nil
}
