package provider

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	seqerrors "github.com/probelabs/seqprobe/internal/errors"
	"github.com/probelabs/seqprobe/internal/query"
	"github.com/probelabs/seqprobe/internal/store"
)

const fibResponse = `{
	"results": [
		{"number": 45, "name": "Fibonacci numbers", "data": "0,1,1,2,3,5,8,13,21,34"}
	],
	"count": 1
}`

func mustParse(t *testing.T, text string) query.Query {
	t.Helper()
	q, err := query.Parse(text)
	require.NoError(t, err)
	return q
}

func newOnline(t *testing.T, handler http.HandlerFunc) (*Online, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewOnline(OnlineConfig{BaseURL: srv.URL}, nil), srv
}

func TestOnline_LookupDecodesResults(t *testing.T) {
	var gotQuery atomic.Value
	o, _ := newOnline(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery.Store(r.URL.Query().Get("q"))
		assert.Equal(t, "json", r.URL.Query().Get("fmt"))
		_, _ = w.Write([]byte(fibResponse))
	})

	candidates, err := o.Lookup(context.Background(), mustParse(t, "0,1,1,2,3"))
	require.NoError(t, err)

	assert.Equal(t, "0,1,1,2,3", gotQuery.Load())
	require.Len(t, candidates, 1)
	assert.Equal(t, "A000045", candidates[0].ID)
	assert.Equal(t, "Fibonacci numbers", candidates[0].Name)
	assert.Equal(t, []int64{0, 1, 1, 2, 3, 5, 8, 13, 21, 34}, candidates[0].Terms)
}

func TestOnline_LookupTruncatesLongQueries(t *testing.T) {
	var gotQuery atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery.Store(r.URL.Query().Get("q"))
		_, _ = w.Write([]byte(`{"results":[],"count":0}`))
	}))
	defer srv.Close()

	o := NewOnline(OnlineConfig{BaseURL: srv.URL, MaxQueryTerms: 3}, nil)

	_, err := o.Lookup(context.Background(), mustParse(t, "1,2,3,4,5,6"))
	require.NoError(t, err)

	assert.Equal(t, "1,2,3", gotQuery.Load(), "only the leading terms go upstream")
}

func TestOnline_RateLimitMapsToRateLimited(t *testing.T) {
	o, _ := newOnline(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})

	_, err := o.Lookup(context.Background(), mustParse(t, "1,2,3"))
	require.Error(t, err)
	assert.Equal(t, seqerrors.ErrCodeProviderRateLimited, seqerrors.GetCode(err))
	assert.True(t, seqerrors.IsRetryable(err))
}

func TestOnline_ServerErrorMapsToNetwork(t *testing.T) {
	o, _ := newOnline(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := o.Lookup(context.Background(), mustParse(t, "1,2,3"))
	require.Error(t, err)
	assert.Equal(t, seqerrors.ErrCodeProviderNetwork, seqerrors.GetCode(err))
}

func TestOnline_UnreachableHostMapsToNetwork(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	o := NewOnline(OnlineConfig{BaseURL: srv.URL}, nil)

	_, err := o.Lookup(context.Background(), mustParse(t, "1,2,3"))
	require.Error(t, err)
	assert.Equal(t, seqerrors.ErrCodeProviderNetwork, seqerrors.GetCode(err))
	assert.True(t, seqerrors.IsProviderError(err))
}

func TestOnline_BadJSONMapsToMalformed(t *testing.T) {
	o, _ := newOnline(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"results": [truncated`))
	})

	_, err := o.Lookup(context.Background(), mustParse(t, "1,2,3"))
	require.Error(t, err)
	assert.Equal(t, seqerrors.ErrCodeProviderMalformed, seqerrors.GetCode(err))
}

func TestOnline_BadRowDataMapsToMalformed(t *testing.T) {
	o, _ := newOnline(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"results":[{"number":1,"data":"1,banana,3"}],"count":1}`))
	})

	_, err := o.Lookup(context.Background(), mustParse(t, "1,2,3"))
	require.Error(t, err)
	assert.Equal(t, seqerrors.ErrCodeProviderMalformed, seqerrors.GetCode(err))
}

func TestOnline_HotCacheSkipsSecondRequest(t *testing.T) {
	var calls atomic.Int32
	o, _ := newOnline(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte(fibResponse))
	})

	q := mustParse(t, "0,1,1,2,3")
	_, err := o.Lookup(context.Background(), q)
	require.NoError(t, err)
	_, err = o.Lookup(context.Background(), q)
	require.NoError(t, err)

	assert.Equal(t, int32(1), calls.Load(), "second lookup served from the hot tier")
}

func TestOnline_PersistentCacheSurvivesNewProvider(t *testing.T) {
	cache, err := store.OpenCache("", store.DefaultCacheTTL)
	require.NoError(t, err)
	defer cache.Close()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte(fibResponse))
	}))
	defer srv.Close()

	q := mustParse(t, "0,1,1,2,3")

	first := NewOnline(OnlineConfig{BaseURL: srv.URL}, cache)
	_, err = first.Lookup(context.Background(), q)
	require.NoError(t, err)

	// Fresh provider, empty hot tier, same persistent cache.
	second := NewOnline(OnlineConfig{BaseURL: srv.URL}, cache)
	candidates, err := second.Lookup(context.Background(), q)
	require.NoError(t, err)

	assert.Equal(t, int32(1), calls.Load(), "second provider served from SQLite")
	require.Len(t, candidates, 1)
	assert.Equal(t, "A000045", candidates[0].ID)
}

func TestOnline_FetchByID(t *testing.T) {
	o, _ := newOnline(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "id:A000045", r.URL.Query().Get("q"))
		_, _ = w.Write([]byte(fibResponse))
	})

	c, err := o.FetchByID(context.Background(), "A000045")
	require.NoError(t, err)
	assert.Equal(t, "A000045", c.ID)
	assert.Equal(t, "Fibonacci numbers", c.Name)
}

func TestOnline_FetchByIDRejectsBadIdentifier(t *testing.T) {
	o := NewOnline(OnlineConfig{BaseURL: "http://unused.invalid"}, nil)

	for _, id := range []string{"", "45", "A45", "a000045", "A000045x"} {
		_, err := o.FetchByID(context.Background(), id)
		require.Error(t, err, "id %q", id)
		assert.Equal(t, seqerrors.ErrCodeBadOptions, seqerrors.GetCode(err))
	}
}

func TestOnline_FetchByIDMissingRow(t *testing.T) {
	o, _ := newOnline(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"results":[],"count":0}`))
	})

	_, err := o.FetchByID(context.Background(), "A999999")
	require.Error(t, err)
	assert.Equal(t, seqerrors.ErrCodeProviderMalformed, seqerrors.GetCode(err))
}

func TestParseRowData_CapsTerms(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 500; i++ {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString("7")
	}

	terms, err := parseRowData(b.String())
	require.NoError(t, err)
	assert.Len(t, terms, maxTermsPerRow)
}

func TestParseRowData_Empty(t *testing.T) {
	terms, err := parseRowData("")
	require.NoError(t, err)
	assert.Empty(t, terms)
}
