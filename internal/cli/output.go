package cli

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/pfrederiksen/mtb-routes/internal/logger"
	"github.com/pfrederiksen/mtb-routes/internal/patch"
	"github.com/pfrederiksen/mtb-routes/internal/reconcile"
	"github.com/pfrederiksen/mtb-routes/internal/route"
	"github.com/pfrederiksen/mtb-routes/internal/scraper"
)

type columnAlignment int

const (
	alignLeft columnAlignment = iota
	alignRight
)

// renderTable draws the rounded go-pretty tables every command prints.
// Short rows are padded; aligns may be shorter than headers.
func renderTable(headers []string, rows [][]string, aligns []columnAlignment) string {
	columns := len(headers)
	if columns == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, columns)
	for i := range columns {
		header[i] = headers[i]
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, columns)
		for i := range columns {
			if i < len(row) {
				r[i] = row[i]
			} else {
				r[i] = ""
			}
		}
		tw.AppendRow(r)
	}

	columnConfigs := make([]table.ColumnConfig, 0, columns)
	for i := range columns {
		align := text.AlignLeft
		if i < len(aligns) && aligns[i] == alignRight {
			align = text.AlignRight
		}
		columnConfigs = append(columnConfigs, table.ColumnConfig{
			Number:      i + 1,
			Align:       align,
			AlignHeader: text.AlignLeft,
		})
	}
	tw.SetColumnConfigs(columnConfigs)

	return tw.Render()
}

// writeFixes prints fixes grouped under their route, as a session would.
func writeFixes(w io.Writer, fixes []reconcile.Fix) {
	if len(fixes) == 0 {
		fmt.Fprintln(w, "No differences found.") // nolint:errcheck
		return
	}
	last := ""
	for i, f := range fixes {
		if i == 0 || f.Route != last {
			fmt.Fprintf(w, "On route %s\n", f.Route) // nolint:errcheck
			last = f.Route
		}
		fmt.Fprintf(w, " - %s\n", f.Description()) // nolint:errcheck
	}
}

// gaugeLabels names the gauges shown in the scan summary.
var gaugeLabels = []struct{ gauge, label string }{
	{"routes.saved", "routes in dataset"},
	{"routes.online", "routes online"},
}

// writeScanSummary prints page and fix counts followed by timing statistics
// from snap. sum is nil for dry runs.
func writeScanSummary(w io.Writer, stats scanStats, fixes int, sum *patch.Summary, snap logger.Snapshot) {
	var rows [][]string
	for _, g := range gaugeLabels {
		if v, ok := snap.Gauges[g.gauge]; ok {
			rows = append(rows, []string{g.label, fmt.Sprint(v)})
		}
	}
	rows = append(rows, [][]string{
		{"pages listed", fmt.Sprint(stats.Pages)},
		{"pages ignored", fmt.Sprint(stats.Ignored)},
		{"routes parsed", fmt.Sprint(stats.Parsed)},
		{"pages failed", fmt.Sprint(stats.Failed)},
		{"field warnings", fmt.Sprint(stats.Warnings)},
		{"fixes found", fmt.Sprint(fixes)},
	}...)
	if sum != nil {
		rows = append(rows,
			[]string{"fixes accepted", fmt.Sprint(sum.Accepted)},
			[]string{"fixes rejected", fmt.Sprint(sum.Rejected)},
			[]string{"fixes pending", fmt.Sprint(sum.Pending)},
		)
	}
	fmt.Fprintln(w, renderTable([]string{"Scan", "Count"}, rows, []columnAlignment{alignLeft, alignRight})) // nolint:errcheck

	if len(snap.Timings) == 0 {
		return
	}
	names := slices.Sorted(maps.Keys(snap.Timings))
	timing := make([][]string, 0, len(names))
	for _, name := range names {
		st := snap.Timings[name]
		timing = append(timing, []string{
			name,
			fmt.Sprint(st.Count),
			st.Average.Round(time.Millisecond).String(),
			st.Max.Round(time.Millisecond).String(),
			st.Total.Round(time.Millisecond).String(),
		})
	}
	headers := []string{"Timing", "Count", "Average", "Max", "Total"}
	aligns := []columnAlignment{alignLeft, alignRight, alignRight, alignRight, alignRight}
	fmt.Fprintln(w, renderTable(headers, timing, aligns)) // nolint:errcheck
}

// writeRouteTable lists routes with their headline figures.
func writeRouteTable(w io.Writer, routes []*route.Record) {
	rows := make([][]string, 0, len(routes))
	for _, r := range routes {
		rows = append(rows, []string{
			r.Date.In(scraper.Location).Format("2006-01-02"),
			r.Name,
			optional(r, route.FieldLength),
			optional(r, route.FieldAscent),
			optional(r, route.FieldDifficulty),
			fmt.Sprint(len(r.Traces)),
		})
	}
	headers := []string{"Date", "Name", "Length", "Ascent", "Difficulty", "Traces"}
	aligns := []columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignLeft, alignRight}
	fmt.Fprintln(w, renderTable(headers, rows, aligns)) // nolint:errcheck
}

func optional(r *route.Record, f route.Field) string {
	v, ok := r.Value(f)
	if !ok {
		return ""
	}
	return strings.Trim(route.FormatValue(v), "[]")
}
