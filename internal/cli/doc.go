// Package cli implements the command-line interface for mtb-routes.
//
// The root command (and its scan subcommand) reads the page list, fetches
// and parses every route page, diffs the result against the local dataset
// and walks the operator through each difference, saving after every
// accepted fix. The index, prefetch, parse and check subcommands cover
// page discovery, cache warming, single-page debugging and dataset
// validation. Settings come from the config package; tables are rendered
// with go-pretty.
package cli
