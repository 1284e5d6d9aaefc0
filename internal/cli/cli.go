package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/pfrederiksen/mtb-routes/internal/config"
	"github.com/pfrederiksen/mtb-routes/internal/fetch"
	"github.com/pfrederiksen/mtb-routes/internal/fieldparse"
	"github.com/pfrederiksen/mtb-routes/internal/logger"
	"github.com/pfrederiksen/mtb-routes/internal/metablock"
	"github.com/pfrederiksen/mtb-routes/internal/scraper"
	"github.com/pfrederiksen/mtb-routes/internal/storage"
)

const (
	ExitSuccess = 0
	ExitError   = 1
	// ExitPending is returned by a dry run that found fixes, and by check
	// when the dataset holds duplicate names.
	ExitPending = 2
)

// errPending maps to ExitPending without printing an error.
var errPending = errors.New("pending changes")

var (
	flagConfig     string
	flagDataFile   string
	flagPagesFile  string
	flagExceptions string
	flagCacheDB    string
	flagLogLevel   string
	flagWorkers    int
	flagVerbose    bool
)

// flagBindings ties config keys to the root's persistent flags.
var flagBindings = map[string]string{
	config.KeyDataFile:       "data",
	config.KeyPagesFile:      "pages",
	config.KeyExceptionsFile: "exceptions",
	config.KeyCacheDB:        "cache-db",
	config.KeyLogLevel:       "log-level",
	config.KeyFetchWorkers:   "workers",
}

// app carries what the subcommands share once flags are parsed.
type app struct {
	cfg *config.Config
	out io.Writer
	in  io.Reader
}

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	return newRootCmd(os.Stdout, os.Stdin)
}

func newRootCmd(out io.Writer, in io.Reader) *cobra.Command {
	a := &app{out: out, in: in}

	cmd := &cobra.Command{
		Use:   "mtb-routes",
		Short: "Keep a local dataset of mtb-bg.com GPS routes in sync",
		Long: `Scrapes route pages from mtb-bg.com, compares them with the local
routes dataset and lets you accept or reject each difference.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}
	cmd.SetOut(a.out)

	pf := cmd.PersistentFlags()
	pf.StringVar(&flagConfig, "config", "", "Config file (default ./mtb-routes.{yaml,toml})")
	pf.StringVar(&flagDataFile, "data", "", "Routes dataset file (default routes.json)")
	pf.StringVar(&flagPagesFile, "pages", "", "Page list file (default pages.txt)")
	pf.StringVar(&flagExceptions, "exceptions", "", "Page exceptions file (default pages_exceptions.txt)")
	pf.StringVar(&flagCacheDB, "cache-db", "", "Page cache database, empty string in config disables caching")
	pf.StringVar(&flagLogLevel, "log-level", "", "Log level: debug, info, warn, error")
	pf.IntVar(&flagWorkers, "workers", 0, "Parallel fetches for prefetch (default 4)")
	pf.BoolVar(&flagVerbose, "verbose", false, "Enable verbose logging")

	scan := newScanCmd(a)
	cmd.AddCommand(scan, newIndexCmd(a), newPrefetchCmd(a), newParseCmd(a), newCheckCmd(a))
	// Running without a subcommand performs a scan.
	cmd.RunE = scan.RunE
	cmd.Flags().AddFlagSet(scan.Flags())

	return cmd
}

func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(flagConfig, cmd.Flags(), flagBindings)
	if err != nil {
		return err
	}
	a.cfg = cfg

	level := logger.ParseLevel(cfg.LogLevel)
	if flagVerbose {
		level = logger.LevelDebug
	}
	if isTerminal(os.Stderr) {
		logger.SetDefault(logger.NewConsole(level, os.Stderr))
	} else {
		logger.SetDefault(logger.New(level, os.Stderr))
	}

	logger.Debug("configuration loaded", logger.Fields{
		"data_file": cfg.DataFile,
		"base_url":  cfg.BaseURL,
		"cache_db":  cfg.CacheDB,
	})
	return nil
}

// newClient builds a fetch client, with the page cache unless disabled.
// The returned cleanup closes the cache.
func (a *app) newClient(useCache bool) (*fetch.Client, func(), error) {
	opts := fetch.Options{
		UserAgent:         a.cfg.UserAgent,
		Timeout:           a.cfg.Timeout,
		RequestsPerSecond: a.cfg.RequestsPerSecond,
	}
	cleanup := func() {}

	if useCache && a.cfg.CacheDB != "" {
		path, err := storage.ExpandHome(a.cfg.CacheDB)
		if err != nil {
			return nil, nil, err
		}
		cache, err := fetch.OpenCache(path, a.cfg.CacheTTL)
		if err != nil {
			return nil, nil, fmt.Errorf("opening page cache: %w", err)
		}
		opts.Cache = cache
		cleanup = func() {
			if err := cache.Close(); err != nil {
				logger.Warn("closing page cache", logger.Fields{"error": err.Error()})
			}
		}
	}

	return fetch.New(opts), cleanup, nil
}

func newAssembler() *scraper.Assembler {
	return scraper.NewAssembler(fieldparse.NewRegistry(), metablock.New())
}

func isTerminal(f *os.File) bool {
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// Execute runs the CLI
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err := NewRootCmd().ExecuteContext(ctx)
	switch {
	case err == nil:
		return
	case errors.Is(err, errPending):
		stop()
		os.Exit(ExitPending)
	case errors.Is(err, context.Canceled):
		// Accepted fixes are already saved.
		fmt.Fprintln(os.Stderr, "Interrupted") // nolint:errcheck
		stop()
		os.Exit(ExitError)
	default:
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(ExitError)
	}
}
