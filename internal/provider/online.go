// Package provider implements the two candidate sources the probe engine
// draws from: the online catalog API and the local dump files.
package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	seqerrors "github.com/probelabs/seqprobe/internal/errors"
	"github.com/probelabs/seqprobe/internal/probe"
	"github.com/probelabs/seqprobe/internal/query"
	"github.com/probelabs/seqprobe/internal/store"
)

const (
	// DefaultBaseURL is the catalog search endpoint.
	DefaultBaseURL = "https://oeis.org"

	// DefaultMaxQueryTerms caps how many leading terms are sent upstream.
	DefaultMaxQueryTerms = 40

	// DefaultTimeout bounds one HTTP round trip.
	DefaultTimeout = 10 * time.Second

	// maxTermsPerRow caps how many terms are parsed from one response row.
	maxTermsPerRow = 400

	// hotCacheSize is the in-process LRU tier in front of the SQLite cache.
	hotCacheSize = 256
)

var identifierPattern = regexp.MustCompile(`^A\d{6,7}$`)

// OnlineConfig configures the online provider.
type OnlineConfig struct {
	BaseURL       string
	MaxQueryTerms int
	Timeout       time.Duration
	UserAgent     string
}

// Online queries the catalog's JSON search endpoint. Responses pass
// through two cache tiers: a small in-process LRU for repeat lookups
// within one run, and the persistent SQLite TTL cache across runs.
type Online struct {
	cfg    OnlineConfig
	client *http.Client
	hot    *lru.Cache[string, []byte]
	cache  *store.Cache
	logger *slog.Logger
}

var _ probe.Provider = (*Online)(nil)

// NewOnline creates the online provider. cache may be nil to disable the
// persistent tier.
func NewOnline(cfg OnlineConfig, cache *store.Cache) *Online {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.MaxQueryTerms <= 0 {
		cfg.MaxQueryTerms = DefaultMaxQueryTerms
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	hot, _ := lru.New[string, []byte](hotCacheSize)
	return &Online{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		hot:    hot,
		cache:  cache,
		logger: slog.Default(),
	}
}

// Source identifies this provider's hits.
func (o *Online) Source() probe.Source { return probe.SourceOnline }

// Lookup searches the catalog for sequences containing the query terms.
// The query is truncated to MaxQueryTerms before serialization; scoring
// against the full query happens downstream.
func (o *Online) Lookup(ctx context.Context, q query.Query) ([]probe.Candidate, error) {
	sent := q
	if sent.Len() > o.cfg.MaxQueryTerms {
		sent = sent.Truncate(o.cfg.MaxQueryTerms)
	}
	return o.search(ctx, sent.String())
}

// FetchByID retrieves a single sequence by its catalog identifier.
func (o *Online) FetchByID(ctx context.Context, id string) (probe.Candidate, error) {
	if !identifierPattern.MatchString(id) {
		return probe.Candidate{}, seqerrors.New(seqerrors.ErrCodeBadOptions,
			fmt.Sprintf("invalid identifier %q", id), nil).
			WithSuggestion("identifiers look like A000045")
	}

	candidates, err := o.search(ctx, "id:"+id)
	if err != nil {
		return probe.Candidate{}, err
	}
	for _, c := range candidates {
		if c.ID == id {
			return c, nil
		}
	}
	return probe.Candidate{}, seqerrors.New(seqerrors.ErrCodeProviderMalformed,
		fmt.Sprintf("catalog returned no row for %s", id), nil)
}

func (o *Online) search(ctx context.Context, term string) ([]probe.Candidate, error) {
	reqURL := fmt.Sprintf("%s/search?q=%s&fmt=json",
		strings.TrimRight(o.cfg.BaseURL, "/"), url.QueryEscape(term))

	payload, err := o.fetch(ctx, reqURL)
	if err != nil {
		return nil, err
	}
	return decodeSearchResponse(payload)
}

// fetch returns the response body for reqURL, consulting the hot LRU and
// the persistent cache before going to the network.
func (o *Online) fetch(ctx context.Context, reqURL string) ([]byte, error) {
	key := store.CacheKey(reqURL)

	if payload, ok := o.hot.Get(key); ok {
		return payload, nil
	}
	if o.cache != nil {
		if payload, ok := o.cache.Get(ctx, key); ok {
			o.hot.Add(key, payload)
			return payload, nil
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, seqerrors.NetworkError("cannot build request", err)
	}
	if o.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", o.cfg.UserAgent)
	}

	resp, err := o.client.Do(req)
	if err != nil {
		return nil, seqerrors.NetworkError("catalog request failed", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, seqerrors.RateLimitedError("catalog rate limit hit", nil).
			WithSuggestion("wait a moment and retry, or use the offline dump")
	case resp.StatusCode != http.StatusOK:
		return nil, seqerrors.NetworkError(
			fmt.Sprintf("catalog returned HTTP %d", resp.StatusCode), nil)
	}

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, seqerrors.NetworkError("cannot read catalog response", err)
	}

	o.hot.Add(key, payload)
	if o.cache != nil {
		if err := o.cache.Put(ctx, key, payload); err != nil {
			// Cache write failure never fails the lookup.
			o.logger.Warn("cache_write_failed", slog.String("error", err.Error()))
		}
	}
	return payload, nil
}

type searchResponse struct {
	Results []searchRow `json:"results"`
	Count   int         `json:"count"`
}

type searchRow struct {
	Number int    `json:"number"`
	Name   string `json:"name"`
	Data   string `json:"data"`
}

func decodeSearchResponse(payload []byte) ([]probe.Candidate, error) {
	var sr searchResponse
	if err := json.Unmarshal(payload, &sr); err != nil {
		return nil, seqerrors.MalformedError("catalog response is not valid JSON", err)
	}

	candidates := make([]probe.Candidate, 0, len(sr.Results))
	for _, row := range sr.Results {
		terms, err := parseRowData(row.Data)
		if err != nil {
			return nil, seqerrors.MalformedError(
				fmt.Sprintf("bad term data in row A%06d", row.Number), err)
		}
		if len(terms) == 0 {
			continue
		}
		candidates = append(candidates, probe.Candidate{
			ID:    fmt.Sprintf("A%06d", row.Number),
			Name:  row.Name,
			Terms: terms,
		})
	}
	return candidates, nil
}

// parseRowData parses a comma-separated term string, keeping at most
// maxTermsPerRow leading terms.
func parseRowData(data string) ([]int64, error) {
	data = strings.TrimSpace(data)
	if data == "" {
		return nil, nil
	}

	q, err := query.Parse(data)
	if err != nil {
		return nil, err
	}
	terms := q.Terms()
	if len(terms) > maxTermsPerRow {
		terms = terms[:maxTermsPerRow]
	}
	return terms, nil
}
