package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/goccy/go-json"

	"datapulse/internal/exporter"
	"datapulse/internal/services"
	"datapulse/pkg/contracts/domain"
)

// printJSON writes v as indented JSON followed by a newline
func printJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	_, err = fmt.Fprintf(w, "%s\n", data)
	return err
}

func printPriceReport(w io.Writer, r *services.PriceResult) error {
	fmt.Fprintf(w, "== %s\n", r.Source)
	if r.Symbol != "" {
		fmt.Fprintf(w, "symbol: %s\n", r.Symbol)
	}

	if len(r.Missing) > 0 {
		fmt.Fprintln(w, "\nMissing values:")
		tw := newTable(w)
		fmt.Fprintln(tw, "column\tmissing\tpercent\t")
		for _, m := range r.Missing {
			fmt.Fprintf(tw, "%s\t%d\t%s\t\n", m.Column, m.MissingValues, strconv.FormatFloat(m.MissingPercentage, 'f', 2, 64))
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}

	if err := printSummary(w, r.Summary); err != nil {
		return err
	}
	printDiagnostics(w, r.Diagnostics)
	return nil
}

func printLogReport(w io.Writer, r *services.LogResult) error {
	fmt.Fprintf(w, "== %s\n", strings.Join(r.Walk.Archives, ", "))
	fmt.Fprintf(w, "lines read: %d, records: %d, malformed: %d\n",
		r.Walk.LinesRead, len(r.Walk.Records), r.Walk.Malformed)

	if err := printSummary(w, r.Summary); err != nil {
		return err
	}
	printDiagnostics(w, r.Diagnostics)
	return nil
}

// printSummary renders the group table in summary order
func printSummary(w io.Writer, s domain.Summary) error {
	fmt.Fprintf(w, "\nSummary of %s by %s:\n", s.ValueColumn, s.GroupColumn)
	if s.IsEmpty() {
		fmt.Fprintln(w, "  (no groups)")
		return nil
	}

	tw := newTable(w)
	fmt.Fprintln(tw, strings.Join(exporter.SummaryHeaders(s), "\t")+"\t")
	for _, row := range exporter.SummaryRows(s) {
		fmt.Fprintln(tw, strings.Join(row, "\t")+"\t")
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	if s.UngroupedRows > 0 {
		fmt.Fprintf(w, "  %d rows without a %s value\n", s.UngroupedRows, s.GroupColumn)
	}
	return nil
}

func printDiagnostics(w io.Writer, lines []string) {
	if len(lines) == 0 {
		return
	}
	fmt.Fprintln(w, "\nDiagnostics:")
	for _, l := range lines {
		fmt.Fprintf(w, "  %s\n", l)
	}
}

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}
