package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pfrederiksen/mtb-routes/internal/filter"
	"github.com/pfrederiksen/mtb-routes/internal/route"
	"github.com/pfrederiksen/mtb-routes/internal/scraper"
	"github.com/pfrederiksen/mtb-routes/internal/storage"
)

var (
	flagSort       string
	flagDates      string
	flagName       []string
	flagTrailhead  []string
	flagDifficulty string
	flagMinLength  string
	flagMaxLength  string
)

func newCheckCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Validate the dataset and list its routes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runCheck()
		},
	}

	cmd.Flags().StringVar(&flagSort, "sort", string(SortByDate), "Sort order: date, name or length")
	cmd.Flags().StringVar(&flagDates, "dates", "", "Publication dates: 2014, 2014-05 or 2014-05-01..2014-06-15")
	cmd.Flags().StringSliceVar(&flagName, "name", nil, "Only routes whose name contains one of these")
	cmd.Flags().StringSliceVar(&flagTrailhead, "trailhead", nil, "Only routes whose trailhead contains one of these")
	cmd.Flags().StringVar(&flagDifficulty, "difficulty", "", "Only routes with one of these difficulty codes (e.g. T4,T5)")
	cmd.Flags().StringVar(&flagMinLength, "min-length", "", "Minimum length in km")
	cmd.Flags().StringVar(&flagMaxLength, "max-length", "", "Maximum length in km")

	return cmd
}

func (a *app) runCheck() error {
	order := SortOrder(strings.ToLower(flagSort))
	if order != SortByDate && order != SortByName && order != SortByLength {
		return fmt.Errorf("invalid sort order: %s (must be 'date', 'name' or 'length')", flagSort)
	}

	f, err := buildFilter()
	if err != nil {
		return err
	}

	store, err := storage.New(a.cfg.DataFile)
	if err != nil {
		return fmt.Errorf("initializing storage: %w", err)
	}
	d, err := store.Load()
	if err != nil {
		return fmt.Errorf("loading dataset: %w", err)
	}

	routes := f.Apply(append([]*route.Record{}, d.Routes...))
	sortRoutes(routes, order)
	writeRouteTable(a.out, routes)

	dups := d.DuplicateNames()
	reportDuplicates(d)
	if !f.IsEmpty() {
		fmt.Fprintf(a.out, "\nFilter: %s\nShowing %d of %d routes\n", f, len(routes), d.Len()) // nolint:errcheck
	}
	fmt.Fprintf(a.out, "\nTotal: %d routes, %d duplicate names\n", d.Len(), len(dups)) // nolint:errcheck
	if len(dups) > 0 {
		return errPending
	}
	return nil
}

func buildFilter() (*filter.Filter, error) {
	f := filter.NewFilter()
	f.Names = flagName
	f.Trailheads = flagTrailhead

	if flagDates != "" {
		from, to, err := filter.ParseDateRange(flagDates, scraper.Location)
		if err != nil {
			return nil, fmt.Errorf("invalid --dates: %w", err)
		}
		f.DateFrom, f.DateTo = from, to
	}

	if flagDifficulty != "" {
		codes, err := filter.ParseDifficulties(flagDifficulty)
		if err != nil {
			return nil, fmt.Errorf("invalid --difficulty: %w", err)
		}
		f.Difficulties = codes
	}

	var err error
	if flagMinLength != "" {
		if f.MinLength, err = filter.ParseLengthBound(flagMinLength); err != nil {
			return nil, fmt.Errorf("invalid --min-length: %w", err)
		}
	}
	if flagMaxLength != "" {
		if f.MaxLength, err = filter.ParseLengthBound(flagMaxLength); err != nil {
			return nil, fmt.Errorf("invalid --max-length: %w", err)
		}
	}

	return f, nil
}
