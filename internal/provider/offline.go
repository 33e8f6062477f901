package provider

import (
	"context"

	"github.com/probelabs/seqprobe/internal/index"
	"github.com/probelabs/seqprobe/internal/probe"
	"github.com/probelabs/seqprobe/internal/query"
)

// DefaultMaxScan caps how many pre-filtered dump entries one lookup may
// return. Zero means unbounded.
const DefaultMaxScan = 1000

// Offline serves candidates from the local dump files. The dump's
// substring pre-filter does the heavy lifting; names are attached when a
// names dump was loaded.
type Offline struct {
	dump    *index.Dump
	names   *index.Names
	maxScan int
}

var _ probe.Provider = (*Offline)(nil)

// NewOffline creates the offline provider. names may be nil.
func NewOffline(dump *index.Dump, names *index.Names, maxScan int) *Offline {
	if maxScan < 0 {
		maxScan = DefaultMaxScan
	}
	return &Offline{dump: dump, names: names, maxScan: maxScan}
}

// Source identifies this provider's hits.
func (o *Offline) Source() probe.Source { return probe.SourceOffline }

// Lookup scans the dump for entries containing the query terms as a
// contiguous run. The scan never fails once the dump is loaded, so the
// returned error is always nil; the signature belongs to the interface.
func (o *Offline) Lookup(ctx context.Context, q query.Query) ([]probe.Candidate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	entries := o.dump.Scan(q.Terms(), o.maxScan)
	candidates := make([]probe.Candidate, 0, len(entries))
	for _, e := range entries {
		c := probe.Candidate{ID: e.ID, Terms: e.Terms}
		if o.names != nil {
			c.Name = o.names.Get(e.ID)
		}
		candidates = append(candidates, c)
	}
	return candidates, nil
}

// FetchByID returns the dump entry for an identifier, mirroring the
// online FetchByID for fully offline setups.
func (o *Offline) FetchByID(id string) (probe.Candidate, bool) {
	e, ok := o.dump.Lookup(id)
	if !ok {
		return probe.Candidate{}, false
	}
	c := probe.Candidate{ID: e.ID, Terms: e.Terms}
	if o.names != nil {
		c.Name = o.names.Get(e.ID)
	}
	return c, true
}
