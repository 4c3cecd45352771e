package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ecommerce-clv-report/internal/chart"
	"ecommerce-clv-report/internal/config"
	"ecommerce-clv-report/internal/dataset"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

// fixture writes a small input set. withCluster and withCLV control whether
// the optional Cluster and predicted_clv columns are present.
func fixture(t *testing.T, withCluster, withCLV bool) *config.Config {
	t.Helper()
	dir := t.TempDir()
	segments := []string{"Champions", "Loyal", "At Risk", "Lost"}

	var rfm, clv, seg, tx strings.Builder
	rfm.WriteString("CustomerID,Recency,Frequency,Monetary\n")
	clv.WriteString("CustomerID,Recency,Frequency,Monetary")
	if withCLV {
		clv.WriteString(",predicted_clv")
	}
	clv.WriteString("\n")
	seg.WriteString("CustomerID,Recency,Frequency,Monetary,Segment")
	if withCluster {
		seg.WriteString(",Cluster")
	}
	seg.WriteString("\n")
	tx.WriteString("CustomerID,Amount,TransactionDate\n")

	for i := 0; i < 40; i++ {
		id := fmt.Sprintf("C%03d", i)
		recency, frequency, monetary := (i*17)%200, 1+i%9, 25+(i*41)%700
		base := fmt.Sprintf("%s,%d,%d,%d", id, recency, frequency, monetary)
		fmt.Fprintln(&rfm, base)
		if withCLV {
			fmt.Fprintf(&clv, "%s,%.2f\n", base, float64(monetary)*1.3)
		} else {
			fmt.Fprintln(&clv, base)
		}
		if withCluster {
			fmt.Fprintf(&seg, "%s,%s,%d\n", base, segments[i%len(segments)], i%3)
		} else {
			fmt.Fprintf(&seg, "%s,%s\n", base, segments[i%len(segments)])
		}
		fmt.Fprintf(&tx, "%s,%d.50,2024-02-%02d 10:00:00\n", id, 10+i, 1+i%20)
	}

	cfg := &config.Config{
		RFMPath:          filepath.Join(dir, "rfm.csv"),
		CLVPath:          filepath.Join(dir, "clv.csv"),
		SegmentsPath:     filepath.Join(dir, "segments.csv"),
		TransactionsPath: filepath.Join(dir, "transactions.csv"),
		OutputDir:        filepath.Join(dir, "reports", "figures"),
		SampleSize:       25,
		SampleSeed:       42,
		TopN:             20,
		DPI:              24,
		RenderWorkers:    3,
		DBSchema:         "clv_report",
	}
	writeFile(t, cfg.RFMPath, rfm.String())
	writeFile(t, cfg.CLVPath, clv.String())
	writeFile(t, cfg.SegmentsPath, seg.String())
	writeFile(t, cfg.TransactionsPath, tx.String())
	return cfg
}

func TestRunSkipsOptionalCharts(t *testing.T) {
	cfg := fixture(t, false, false)
	var out bytes.Buffer

	result, err := Run(context.Background(), cfg, &out)
	require.NoError(t, err)

	present := []string{
		chart.FileRFMDistribution,
		chart.FileSegments,
		chart.FileSegmentCharacteristic,
		chart.FileRFMScatter,
		chart.FileSegmentValue,
		chart.FileTimeline,
	}
	for _, name := range present {
		assert.FileExists(t, filepath.Join(cfg.OutputDir, name))
	}
	for _, name := range []string{chart.FileClusters, chart.FileTopCustomers} {
		assert.NoFileExists(t, filepath.Join(cfg.OutputDir, name))
	}
	assert.ElementsMatch(t, []string{chart.FileClusters, chart.FileTopCustomers}, result.Skipped)
	require.Len(t, result.Saved, len(present))
	for i, name := range present {
		assert.Equal(t, name, filepath.Base(result.Saved[i]), "saved charts stay in file order")
	}

	assert.Contains(t, out.String(), "Total Customers: 40")
	assert.Contains(t, out.String(), "Charts created: 6")
	assert.Empty(t, result.RunID)
}

func TestRunAllCharts(t *testing.T) {
	cfg := fixture(t, true, true)
	cfg.RenderWorkers = 1
	cfg.JSONOut = filepath.Join(t.TempDir(), "summary.json")
	var out bytes.Buffer

	result, err := Run(context.Background(), cfg, &out)
	require.NoError(t, err)
	assert.Len(t, result.Saved, 8)
	assert.Empty(t, result.Skipped)
	assert.FileExists(t, cfg.JSONOut)

	total := 0
	for _, entry := range result.Summary.Segments {
		total += entry.Count
	}
	assert.Equal(t, 40, total)
	for i := 1; i < len(result.Summary.Segments); i++ {
		assert.GreaterOrEqual(t, result.Summary.Segments[i-1].Count, result.Summary.Segments[i].Count)
	}
}

func TestRunMissingInput(t *testing.T) {
	cfg := fixture(t, true, true)
	require.NoError(t, os.Remove(cfg.TransactionsPath))
	var out bytes.Buffer

	_, err := Run(context.Background(), cfg, &out)
	var accessErr *dataset.AccessError
	require.True(t, errors.As(err, &accessErr))
	assert.Empty(t, out.String())
	assert.NoDirExists(t, cfg.OutputDir)
}

func TestRunCancelled(t *testing.T) {
	cfg := fixture(t, true, true)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Run(ctx, cfg, &bytes.Buffer{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunSkipsEachOptionalChartIndependently(t *testing.T) {
	cases := []struct {
		name                string
		withCluster, withCLV bool
		skipped             string
	}{
		{"no cluster column", false, true, chart.FileClusters},
		{"no predicted clv column", true, false, chart.FileTopCustomers},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := fixture(t, tc.withCluster, tc.withCLV)

			result, err := Run(context.Background(), cfg, &bytes.Buffer{})
			require.NoError(t, err)
			assert.Equal(t, []string{tc.skipped}, result.Skipped)
			assert.Len(t, result.Saved, 7)
			assert.NoFileExists(t, filepath.Join(cfg.OutputDir, tc.skipped))
		})
	}
}

func TestRunToleratesBlankNumericCells(t *testing.T) {
	cfg := fixture(t, true, true)

	tx, err := os.ReadFile(cfg.TransactionsPath)
	require.NoError(t, err)
	tx = append(tx, []byte("C000,,2024-02-01 10:00:00\nC001,,2024-03-15 08:00:00\n")...)
	writeFile(t, cfg.TransactionsPath, string(tx))

	seg, err := os.ReadFile(cfg.SegmentsPath)
	require.NoError(t, err)
	seg = append(seg, []byte("C900,12,2,,Champions,1\n")...)
	writeFile(t, cfg.SegmentsPath, string(seg))
	cfg.JSONOut = filepath.Join(t.TempDir(), "summary.json")

	var out bytes.Buffer
	result, err := Run(context.Background(), cfg, &out)
	require.NoError(t, err)
	assert.Len(t, result.Saved, 8)
	assert.Equal(t, 42, result.Summary.Overview.Transactions)

	last := result.Summary.Daily[len(result.Summary.Daily)-1]
	assert.Equal(t, 0, last.Count)
	assert.Equal(t, 0.0, last.Revenue)
	assert.Contains(t, out.String(), "Total Transactions: 42")
	assert.FileExists(t, cfg.JSONOut)
}
