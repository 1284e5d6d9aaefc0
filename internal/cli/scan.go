package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"github.com/pfrederiksen/mtb-routes/internal/config"
	"github.com/pfrederiksen/mtb-routes/internal/fetch"
	"github.com/pfrederiksen/mtb-routes/internal/logger"
	"github.com/pfrederiksen/mtb-routes/internal/patch"
	"github.com/pfrederiksen/mtb-routes/internal/reconcile"
	"github.com/pfrederiksen/mtb-routes/internal/route"
	"github.com/pfrederiksen/mtb-routes/internal/scraper"
	"github.com/pfrederiksen/mtb-routes/internal/storage"
)

var (
	flagDryRun   bool
	flagYes      bool
	flagPrefetch bool
	flagNoCache  bool
)

func newScanCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Scrape every listed page and review differences with the dataset",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runScan(cmd.Context())
		},
	}

	cmd.Flags().BoolVar(&flagDryRun, "dry-run", false, "Print fixes without prompting or writing")
	cmd.Flags().BoolVar(&flagYes, "yes", false, "Accept every fix without prompting")
	cmd.Flags().BoolVar(&flagPrefetch, "prefetch", false, "Fetch pages in parallel before scanning")
	cmd.Flags().BoolVar(&flagNoCache, "no-cache", false, "Bypass the page cache")

	return cmd
}

// scanStats counts what happened to the listed pages.
type scanStats struct {
	Pages    int
	Ignored  int
	Parsed   int
	Failed   int
	Warnings int
}

// scanner turns a page list into a fresh dataset.
type scanner struct {
	cfg       *config.Config
	fetcher   fetch.Fetcher
	assembler *scraper.Assembler
	out       io.Writer
}

// scan fetches and assembles every page that is not ignored. Page-level
// failures are logged and counted; only cancellation aborts the scan.
func (s *scanner) scan(ctx context.Context, pages []string, exceptions storage.Exceptions) (*route.Dataset, scanStats, error) {
	online := route.NewDataset()
	stats := scanStats{Pages: len(pages)}
	sources := make(map[string]string)

	for _, rel := range pages {
		if err := ctx.Err(); err != nil {
			return nil, stats, err
		}

		exception := exceptions.Get(rel)
		if exception == storage.Ignore {
			stats.Ignored++
			continue
		}
		relax := exception == storage.Include
		link := s.cfg.PageURL(rel)

		body, err := s.fetcher.Fetch(ctx, link)
		if err != nil {
			if ctx.Err() != nil {
				return nil, stats, ctx.Err()
			}
			stats.Failed++
			if errors.Is(err, fetch.ErrEmptyBody) {
				logger.Error("empty page from fetcher", logger.Fields{"url": link}, err)
			} else {
				logger.Warn("fetch failed", logger.Fields{"url": link, "error": err.Error()})
			}
			continue
		}

		start := time.Now()
		rec, warnings, err := s.assembler.Assemble(string(body), link, relax)
		logger.RecordTiming("assemble", time.Since(start))
		stats.Warnings += len(warnings)
		s.reportWarnings(link, warnings, relax)

		if err != nil {
			stats.Failed++
			logger.IncrCounter("pages.failed")
			var serr *scraper.StructuralError
			if errors.As(err, &serr) && serr.Kind == scraper.EmptyContent {
				logger.Error("page has no content, check the fetcher cache", logger.Fields{"url": link}, err)
			} else {
				logger.Warn("page skipped", logger.Fields{"url": link, "error": err.Error()})
			}
			continue
		}

		stats.Parsed++
		logger.IncrCounter("pages.parsed")
		if prev, dup := sources[rec.Name]; dup {
			logger.Warn("duplicate route name, later page wins", logger.Fields{
				"name":     rec.Name,
				"previous": prev,
				"url":      link,
			})
		}
		sources[rec.Name] = link
		online.Put(rec)
	}

	return online, stats, nil
}

func (s *scanner) reportWarnings(link string, warnings []string, relax bool) {
	if len(warnings) == 0 {
		return
	}
	if relax {
		for _, w := range warnings {
			logger.Debug("warning on included page", logger.Fields{"url": link, "warning": w})
		}
		return
	}
	fmt.Fprintf(s.out, "On route %s:\n", link) // nolint:errcheck
	for _, w := range warnings {
		fmt.Fprintf(s.out, " - %s\n", w) // nolint:errcheck
	}
}

// ignoredKeys lists the ignored pages both as relative paths and as the
// absolute links stored in records.
func ignoredKeys(cfg *config.Config, exceptions storage.Exceptions) reconcile.Ignored {
	ignored := make(reconcile.Ignored)
	for _, rel := range exceptions.Ignored() {
		ignored[rel] = true
		ignored[cfg.PageURL(rel)] = true
	}
	return ignored
}

func (a *app) runScan(ctx context.Context) error {
	store, err := storage.New(a.cfg.DataFile)
	if err != nil {
		return fmt.Errorf("initializing storage: %w", err)
	}

	lock := flock.New(store.Path() + ".lock")
	locked, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("locking dataset: %w", err)
	}
	if !locked {
		return fmt.Errorf("dataset %s is in use by another mtb-routes process", store.Path())
	}
	defer lock.Unlock() // nolint:errcheck

	saved, err := store.Load()
	if err != nil {
		return fmt.Errorf("loading dataset: %w", err)
	}
	reportDuplicates(saved)
	logger.SetGauge("routes.saved", float64(saved.Len()))

	exceptions, err := storage.LoadExceptions(a.cfg.ExceptionsFile)
	if err != nil {
		return err
	}
	pages, err := storage.LoadPageList(a.cfg.PagesFile)
	if err != nil {
		return err
	}

	client, closeCache, err := a.newClient(!flagNoCache)
	if err != nil {
		return err
	}
	defer closeCache()

	if flagPrefetch {
		if _, err := fetch.Prefetch(ctx, client, pageURLs(a.cfg, pages, exceptions), a.cfg.FetchWorkers); err != nil {
			return fmt.Errorf("prefetching: %w", err)
		}
	}

	s := &scanner{cfg: a.cfg, fetcher: client, assembler: newAssembler(), out: a.out}
	online, stats, err := s.scan(ctx, pages, exceptions)
	if err != nil {
		return fmt.Errorf("scanning pages: %w", err)
	}
	logger.SetGauge("routes.online", float64(online.Len()))

	fixes := reconcile.ComputeDiff(saved, online, ignoredKeys(a.cfg, exceptions))
	logger.Info("scan finished", logger.Fields{
		"pages":  stats.Pages,
		"parsed": stats.Parsed,
		"failed": stats.Failed,
		"fixes":  len(fixes),
	})

	if flagDryRun {
		writeFixes(a.out, fixes)
		writeScanSummary(a.out, stats, len(fixes), nil, logger.MetricsSnapshot())
		if len(fixes) > 0 {
			return errPending
		}
		return nil
	}

	var prompter patch.Prompter = patch.NewLinePrompter(a.in, a.out)
	if flagYes {
		prompter = patch.AcceptAll{}
	}

	session := patch.NewSession(saved, prompter, store, a.out)
	sum, err := session.Run(ctx, fixes)
	logger.SetGauge("routes.saved", float64(session.Dataset().Len()))
	logger.Info("review finished", logger.Fields{
		"session":  session.ID(),
		"accepted": sum.Accepted,
		"rejected": sum.Rejected,
		"pending":  sum.Pending,
	})
	writeScanSummary(a.out, stats, len(fixes), &sum, logger.MetricsSnapshot())
	if err != nil && !errors.Is(err, patch.ErrAborted) {
		return err
	}
	return nil
}

func reportDuplicates(d *route.Dataset) {
	for _, name := range d.DuplicateNames() {
		logger.Warn("duplicate route name in dataset", logger.Fields{"name": name})
	}
}

func pageURLs(cfg *config.Config, pages []string, exceptions storage.Exceptions) []string {
	urls := make([]string, 0, len(pages))
	for _, rel := range pages {
		if exceptions.Get(rel) == storage.Ignore {
			continue
		}
		urls = append(urls, cfg.PageURL(rel))
	}
	return urls
}
