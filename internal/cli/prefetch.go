package cli

import (
	"context"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/pfrederiksen/mtb-routes/internal/fetch"
	"github.com/pfrederiksen/mtb-routes/internal/logger"
	"github.com/pfrederiksen/mtb-routes/internal/storage"
)

func newPrefetchCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "prefetch",
		Short: "Download every listed page into the cache",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runPrefetch(cmd.Context())
		},
	}
}

func (a *app) runPrefetch(ctx context.Context) error {
	if a.cfg.CacheDB == "" {
		return fmt.Errorf("prefetch needs a page cache; set cache_db")
	}

	exceptions, err := storage.LoadExceptions(a.cfg.ExceptionsFile)
	if err != nil {
		return err
	}
	pages, err := storage.LoadPageList(a.cfg.PagesFile)
	if err != nil {
		return err
	}

	client, closeCache, err := a.newClient(true)
	if err != nil {
		return err
	}
	defer closeCache()

	urls := pageURLs(a.cfg, pages, exceptions)
	failures, err := fetch.Prefetch(ctx, client, urls, a.cfg.FetchWorkers)
	if err != nil {
		return fmt.Errorf("prefetching: %w", err)
	}

	cached, err := client.Cache().Len(ctx)
	if err != nil {
		return err
	}

	metrics := logger.DefaultMetrics()
	rows := [][]string{
		{"pages", fmt.Sprint(len(urls))},
		{"downloaded", fmt.Sprint(metrics.Counter("pages.fetched"))},
		{"from cache", fmt.Sprint(metrics.Counter("pages.cached"))},
		{"failed", fmt.Sprint(len(failures))},
		{"cached pages", fmt.Sprint(cached)},
	}
	fmt.Fprintln(a.out, renderTable([]string{"Prefetch", "Count"}, rows, []columnAlignment{alignLeft, alignRight})) // nolint:errcheck

	if len(failures) > 0 {
		failed := make([]string, 0, len(failures))
		for u := range failures {
			failed = append(failed, u)
		}
		sort.Strings(failed)
		rows := make([][]string, 0, len(failed))
		for _, u := range failed {
			rows = append(rows, []string{u, failures[u].Error()})
		}
		fmt.Fprintln(a.out, renderTable([]string{"URL", "Error"}, rows, nil)) // nolint:errcheck
	}
	return nil
}
