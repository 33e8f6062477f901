package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	seqerrors "github.com/probelabs/seqprobe/internal/errors"
)

func newTestCache(t *testing.T) *Cache {
	t.Helper()
	c, err := OpenCache("", DefaultCacheTTL)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestCacheKey_StableAndDistinct(t *testing.T) {
	a := CacheKey("https://example.org/search?q=1,2,3")
	b := CacheKey("https://example.org/search?q=1,2,3")
	c := CacheKey("https://example.org/search?q=1,2,4")

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Len(t, a, 64)
}

func TestCache_PutThenGet(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Put(ctx, CacheKey("url-a"), []byte(`{"count":1}`)))

	payload, ok := c.Get(ctx, CacheKey("url-a"))
	require.True(t, ok)
	assert.Equal(t, []byte(`{"count":1}`), payload)
}

func TestCache_MissReturnsFalse(t *testing.T) {
	c := newTestCache(t)

	_, ok := c.Get(context.Background(), CacheKey("never-stored"))
	assert.False(t, ok)
}

func TestCache_PutReplacesExisting(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()
	key := CacheKey("url-a")

	require.NoError(t, c.Put(ctx, key, []byte("old")))
	require.NoError(t, c.Put(ctx, key, []byte("new")))

	payload, ok := c.Get(ctx, key)
	require.True(t, ok)
	assert.Equal(t, []byte("new"), payload)

	stats, err := c.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Entries)
}

func TestCache_ExpiredEntryIsAMiss(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()
	key := CacheKey("url-a")

	require.NoError(t, c.Put(ctx, key, []byte("payload")))

	// Jump the clock past the TTL.
	c.now = func() time.Time { return time.Now().Add(DefaultCacheTTL + time.Hour) }

	_, ok := c.Get(ctx, key)
	assert.False(t, ok)
}

func TestCache_PruneRemovesOnlyExpired(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	base := time.Now()
	c.now = func() time.Time { return base.Add(-DefaultCacheTTL - time.Hour) }
	require.NoError(t, c.Put(ctx, CacheKey("stale"), []byte("x")))

	c.now = func() time.Time { return base }
	require.NoError(t, c.Put(ctx, CacheKey("fresh"), []byte("y")))

	removed, err := c.Prune(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	_, ok := c.Get(ctx, CacheKey("fresh"))
	assert.True(t, ok)
	_, ok = c.Get(ctx, CacheKey("stale"))
	assert.False(t, ok)
}

func TestCache_ClearAndStats(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Put(ctx, CacheKey("a"), []byte("12345")))
	require.NoError(t, c.Put(ctx, CacheKey("b"), []byte("678")))

	stats, err := c.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Entries)
	assert.Equal(t, int64(8), stats.Bytes)

	require.NoError(t, c.Clear(ctx))

	stats, err = c.Stats(ctx)
	require.NoError(t, err)
	assert.Zero(t, stats.Entries)
	assert.Zero(t, stats.Bytes)
}

func TestOpenCache_BadDirectory(t *testing.T) {
	// Parent path is a regular file, so the directory cannot be created.
	blocker := filepath.Join(t.TempDir(), "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))

	_, err := OpenCache(filepath.Join(blocker, "cache.db"), time.Hour)
	require.Error(t, err)
	assert.Equal(t, seqerrors.ErrCodeCacheOpen, seqerrors.GetCode(err))

	var pe *seqerrors.ProbeError
	require.ErrorAs(t, err, &pe)
	assert.Error(t, pe.Cause, "filesystem error kept as the cause")
}

func TestOpenCache_CreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "cache.db")

	c, err := OpenCache(path, time.Hour)
	require.NoError(t, err)
	defer c.Close()

	require.NoError(t, c.Put(context.Background(), CacheKey("a"), []byte("x")))

	reopened, err := OpenCache(path, time.Hour)
	require.NoError(t, err)
	defer reopened.Close()

	_, ok := reopened.Get(context.Background(), CacheKey("a"))
	assert.True(t, ok, "entries survive reopen")
}
