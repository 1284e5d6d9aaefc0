package fetch

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestCache(t *testing.T, ttl time.Duration) *Cache {
	t.Helper()
	c, err := OpenCache(filepath.Join(t.TempDir(), "cache", "pages.db"), ttl)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestCache_PutGet(t *testing.T) {
	ctx := context.Background()
	c := openTestCache(t, 0)

	_, ok, err := c.Get(ctx, "http://mtb-bg.com/a")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Put(ctx, "http://mtb-bg.com/a", []byte("first")))
	require.NoError(t, c.Put(ctx, "http://mtb-bg.com/a", []byte("second")))

	body, ok, err := c.Get(ctx, "http://mtb-bg.com/a")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "second", string(body))

	n, err := c.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	require.NoError(t, c.Delete(ctx, "http://mtb-bg.com/a"))
	_, ok, err = c.Get(ctx, "http://mtb-bg.com/a")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCache_RejectsEmptyBody(t *testing.T) {
	c := openTestCache(t, 0)
	err := c.Put(context.Background(), "http://mtb-bg.com/a", nil)
	assert.ErrorIs(t, err, ErrEmptyBody)
}

func TestCache_TTL(t *testing.T) {
	ctx := context.Background()
	c := openTestCache(t, time.Hour)

	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }
	require.NoError(t, c.Put(ctx, "u", []byte("body")))

	now = now.Add(30 * time.Minute)
	_, ok, err := c.Get(ctx, "u")
	require.NoError(t, err)
	assert.True(t, ok, "entry within ttl should be served")

	now = now.Add(time.Hour)
	_, ok, err = c.Get(ctx, "u")
	require.NoError(t, err)
	assert.False(t, ok, "expired entry should be a miss")
}

func TestClient_FetchUsesCache(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		assert.Equal(t, "test-agent", r.Header.Get("User-Agent"))
		fmt.Fprint(w, "<html>route</html>") // nolint:errcheck
	}))
	defer srv.Close()

	client := New(Options{UserAgent: "test-agent", Cache: openTestCache(t, 0)})

	for range 3 {
		body, err := client.Fetch(context.Background(), srv.URL+"/page")
		require.NoError(t, err)
		assert.Equal(t, "<html>route</html>", string(body))
	}
	assert.Equal(t, int32(1), hits.Load())
}

func TestClient_EmptyBodyNotCached(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) == 1 {
			return
		}
		fmt.Fprint(w, "content") // nolint:errcheck
	}))
	defer srv.Close()

	cache := openTestCache(t, 0)
	client := New(Options{Cache: cache})

	_, err := client.Fetch(context.Background(), srv.URL)
	require.ErrorIs(t, err, ErrEmptyBody)

	n, err := cache.Len(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)

	body, err := client.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "content", string(body))
}

func TestClient_StatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := New(Options{}).Fetch(context.Background(), srv.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}

type fakeFetcher struct {
	inFlight atomic.Int32
	peak     atomic.Int32
	fail     map[string]bool
}

func (f *fakeFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	n := f.inFlight.Add(1)
	defer f.inFlight.Add(-1)
	for {
		p := f.peak.Load()
		if n <= p || f.peak.CompareAndSwap(p, n) {
			break
		}
	}
	time.Sleep(5 * time.Millisecond)
	if f.fail[url] {
		return nil, errors.New("boom")
	}
	return []byte(url), nil
}

func TestPrefetch(t *testing.T) {
	urls := make([]string, 20)
	for i := range urls {
		urls[i] = fmt.Sprintf("http://mtb-bg.com/%d", i)
	}
	f := &fakeFetcher{fail: map[string]bool{urls[3]: true, urls[7]: true}}

	failures, err := Prefetch(context.Background(), f, urls, 4)
	require.NoError(t, err)
	assert.Len(t, failures, 2)
	assert.Contains(t, failures, urls[3])
	assert.Contains(t, failures, urls[7])
	assert.LessOrEqual(t, f.peak.Load(), int32(4))
}

func TestPrefetch_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Prefetch(ctx, &fakeFetcher{}, []string{"a", "b"}, 2)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestClient_CacheDeleteRefetches(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, "v%d", hits.Add(1)) // nolint:errcheck
	}))
	defer srv.Close()

	ctx := context.Background()
	client := New(Options{Cache: openTestCache(t, 0)})

	body, err := client.Fetch(ctx, srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "v1", string(body))
	body, err = client.Fetch(ctx, srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "v1", string(body), "second fetch is served from the cache")

	require.NoError(t, client.Cache().Delete(ctx, srv.URL))
	body, err = client.Fetch(ctx, srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "v2", string(body))
}

func TestClient_NoCache(t *testing.T) {
	client := New(Options{})
	require.Nil(t, client.Cache())

	n, err := client.Cache().Len(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.NoError(t, client.Cache().Delete(context.Background(), "http://x"))
}
