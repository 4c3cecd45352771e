// Package report prints the human-readable run summary and exports it as JSON.
package report

import (
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/pkg/errors"

	"ecommerce-clv-report/internal/aggregate"
	"ecommerce-clv-report/internal/numfmt"
)

const width = 80

// Print writes the console summary: dataset overview, RFM statistics and the
// per-segment breakdown, followed by the charts saved under outputDir.
func Print(w io.Writer, summary aggregate.Summary, outputDir string, saved []string) {
	rule := strings.Repeat("=", width)
	line := strings.Repeat("-", width)

	fmt.Fprintln(w, rule)
	fmt.Fprintln(w, "E-COMMERCE CLV ANALYSIS - DETAILED SUMMARY")
	fmt.Fprintln(w, rule)
	fmt.Fprintln(w)

	overview := summary.Overview
	fmt.Fprintln(w, "DATASET OVERVIEW")
	fmt.Fprintln(w, line)
	fmt.Fprintf(w, "Total Customers: %s\n", numfmt.Int(overview.Customers))
	fmt.Fprintf(w, "Total Transactions: %s\n", numfmt.Int(overview.Transactions))
	fmt.Fprintf(w, "Total Revenue: %s\n", numfmt.Money(overview.Revenue, 2))
	fmt.Fprintf(w, "Date Range: %s to %s\n", formatDate(overview.FirstDate), formatDate(overview.LastDate))
	fmt.Fprintln(w)

	fmt.Fprintln(w, "RFM STATISTICS")
	fmt.Fprintln(w, line)
	printStats(w, "Recency (days)", summary.RFM.Recency, "")
	printStats(w, "Frequency (purchases)", summary.RFM.Frequency, "")
	printStats(w, "Monetary ($)", summary.RFM.Monetary, "$")

	fmt.Fprintln(w, "SEGMENTATION RESULTS")
	fmt.Fprintln(w, line)
	if len(summary.Segments) == 0 {
		fmt.Fprintln(w, "No segments found.")
		fmt.Fprintln(w)
	}
	for _, entry := range summary.Segments {
		fmt.Fprintf(w, "%s:\n", entry.Segment)
		fmt.Fprintf(w, "  - Customers: %s (%.1f%%)\n", numfmt.Int(entry.Count), entry.Percent)
		fmt.Fprintf(w, "  - Avg Value: %s\n", avgValue(entry.Mean))
		fmt.Fprintf(w, "  - Total Value: %s\n", numfmt.Money(entry.Total, 2))
		fmt.Fprintln(w)
	}

	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "Charts created: %d\n", len(saved))
	for _, path := range saved {
		fmt.Fprintf(w, "  - %s\n", filepath.Base(path))
	}
	fmt.Fprintf(w, "Saved to: %s\n", absolute(outputDir))
	fmt.Fprintln(w, rule)
}

func printStats(w io.Writer, title string, stats aggregate.Stats, unit string) {
	precision := 1
	if unit != "" {
		precision = 2
	}
	fmt.Fprintf(w, "%s:\n", title)
	fmt.Fprintf(w, "  - Mean: %s%.*f\n", unit, precision, stats.Mean)
	fmt.Fprintf(w, "  - Median: %s%.*f\n", unit, precision, stats.Median)
	fmt.Fprintf(w, "  - Min: %s%.*f, Max: %s%.*f\n", unit, precision, stats.Min, unit, precision, stats.Max)
	fmt.Fprintln(w)
}

func avgValue(mean float64) string {
	if math.IsNaN(mean) {
		return "n/a"
	}
	return fmt.Sprintf("$%.2f", mean)
}

func formatDate(value time.Time) string {
	if value.IsZero() {
		return "n/a"
	}
	return value.Format(time.DateOnly)
}

func absolute(dir string) string {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return dir
	}
	return abs
}

func WriteJSON(summary aggregate.Summary, path string) error {
	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encode summary")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrapf(err, "write summary to %s", path)
	}
	return nil
}
