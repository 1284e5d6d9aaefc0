package fetch

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/pfrederiksen/mtb-routes/internal/logger"
)

// Fetcher returns the body of a page.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// Prefetch fetches urls with at most workers requests in flight, warming
// the cache for a sequential scan. Individual failures do not stop the
// others; they are returned keyed by URL. The returned error is non-nil
// only when ctx is cancelled.
func Prefetch(ctx context.Context, f Fetcher, urls []string, workers int) (map[string]error, error) {
	if workers < 1 {
		workers = 1
	}

	var (
		mu       sync.Mutex
		failures = make(map[string]error)
	)

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, u := range urls {
		if gCtx.Err() != nil {
			break
		}
		g.Go(func() error {
			if _, err := f.Fetch(gCtx, u); err != nil {
				if gCtx.Err() != nil {
					return gCtx.Err()
				}
				logger.Warn("prefetch failed", logger.Fields{"url": u, "error": err.Error()})
				mu.Lock()
				failures[u] = err
				mu.Unlock()
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return failures, err
	}
	return failures, ctx.Err()
}
