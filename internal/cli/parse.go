package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	flagParseFile    string
	flagParseRelax   bool
	flagParseRefresh bool
)

func newParseCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "parse <page>",
		Short: "Parse a single route page and print the record",
		Long: `Parses one route page and prints the resulting record as JSON,
followed by any field warnings. <page> is a URL or a path relative to the
site. With --file the content is read from disk and <page> is only used as
the record's link.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runParse(cmd, args[0])
		},
	}

	cmd.Flags().StringVar(&flagParseFile, "file", "", "Read page content from a local file")
	cmd.Flags().BoolVar(&flagParseRelax, "relax", false, "Accept pages without exactly one metadata block")
	cmd.Flags().BoolVar(&flagParseRefresh, "refresh", false, "Drop the cached copy and download the page again")

	return cmd
}

func (a *app) runParse(cmd *cobra.Command, page string) error {
	link := a.cfg.PageURL(page)

	var content []byte
	if flagParseFile != "" {
		data, err := os.ReadFile(flagParseFile)
		if err != nil {
			return fmt.Errorf("reading page: %w", err)
		}
		content = data
	} else {
		client, closeCache, err := a.newClient(true)
		if err != nil {
			return err
		}
		defer closeCache()

		if flagParseRefresh {
			if err := client.Cache().Delete(cmd.Context(), link); err != nil {
				return err
			}
		}

		data, err := client.Fetch(cmd.Context(), link)
		if err != nil {
			return err
		}
		content = data
	}

	rec, warnings, err := newAssembler().Assemble(string(content), link, flagParseRelax)
	for _, w := range warnings {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s\n", w) // nolint:errcheck
	}
	if err != nil {
		return err
	}

	enc := json.NewEncoder(a.out)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(rec); err != nil {
		return fmt.Errorf("encoding record: %w", err)
	}
	return nil
}
