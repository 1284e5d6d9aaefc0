package cli

import (
	"bytes"
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pfrederiksen/mtb-routes/internal/scraper"
	"github.com/pfrederiksen/mtb-routes/internal/storage"
)

func newIndexCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "index",
		Short: "Rebuild the page list from the site's route index",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runIndex(cmd.Context())
		},
	}
}

func (a *app) runIndex(ctx context.Context) error {
	// The index changes whenever a route is published; never serve it from cache.
	client, closeCache, err := a.newClient(false)
	if err != nil {
		return err
	}
	defer closeCache()

	indexURL := a.cfg.PageURL(a.cfg.IndexPath)
	body, err := client.Fetch(ctx, indexURL)
	if err != nil {
		return fmt.Errorf("fetching index: %w", err)
	}

	pages, err := scraper.DiscoverPages(bytes.NewReader(body), scraper.RoutePagePrefix)
	if err != nil {
		return err
	}
	if err := storage.SavePageList(a.cfg.PagesFile, pages); err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Found %d links\n", len(pages)) // nolint:errcheck
	return nil
}
