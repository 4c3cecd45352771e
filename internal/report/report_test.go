package report

import (
	"bytes"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ecommerce-clv-report/internal/aggregate"
)

func testSummary() aggregate.Summary {
	return aggregate.Summary{
		Overview: aggregate.Overview{
			Customers:    1234,
			Transactions: 56789,
			Revenue:      1234567.891,
			FirstDate:    time.Date(2023, 1, 2, 9, 30, 0, 0, time.UTC),
			LastDate:     time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC),
		},
		RFM: aggregate.RFMStats{
			Recency:   aggregate.Stats{Mean: 45.24, Median: 30, Min: 1, Max: 365},
			Frequency: aggregate.Stats{Mean: 4.5, Median: 3, Min: 1, Max: 40},
			Monetary:  aggregate.Stats{Mean: 512.346, Median: 250, Min: 5.5, Max: 9000},
		},
		Segments: []aggregate.SegmentBreakdown{
			{Segment: "VIP", Count: 2, Percent: 66.666, Mean: 150, Total: 300},
			{Segment: "New", Count: 1, Percent: 33.333, Mean: 50, Total: 50},
		},
	}
}

func TestPrintSections(t *testing.T) {
	var buf bytes.Buffer
	Print(&buf, testSummary(), "reports/figures", []string{"reports/figures/01_rfm_distribution.png"})
	out := buf.String()

	for _, want := range []string{
		"E-COMMERCE CLV ANALYSIS",
		"DATASET OVERVIEW",
		"Total Customers: 1,234",
		"Total Transactions: 56,789",
		"Total Revenue: $1,234,567.89",
		"Date Range: 2023-01-02 to 2024-06-30",
		"RFM STATISTICS",
		"  - Mean: 45.2",
		"  - Mean: $512.35",
		"  - Min: $5.50, Max: $9000.00",
		"SEGMENTATION RESULTS",
		"  - Customers: 2 (66.7%)",
		"  - Avg Value: $150.00",
		"  - Total Value: $300.00",
		"Charts created: 1",
		"  - 01_rfm_distribution.png",
	} {
		assert.Contains(t, out, want)
	}

	overview := strings.Index(out, "DATASET OVERVIEW")
	stats := strings.Index(out, "RFM STATISTICS")
	segments := strings.Index(out, "SEGMENTATION RESULTS")
	assert.True(t, overview < stats && stats < segments, "sections out of order")
	assert.Less(t, strings.Index(out, "VIP:"), strings.Index(out, "New:"), "segments must follow count order")
}

func TestPrintEmptyDataset(t *testing.T) {
	var buf bytes.Buffer
	Print(&buf, aggregate.Summary{}, t.TempDir(), nil)
	out := buf.String()

	assert.Contains(t, out, "Date Range: n/a to n/a")
	assert.Contains(t, out, "No segments found.")
	assert.Contains(t, out, "Charts created: 0")
}

func TestWriteJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "summary.json")
	require.NoError(t, WriteJSON(testSummary(), path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var decoded aggregate.Summary
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, 1234, decoded.Overview.Customers)
	require.Len(t, decoded.Segments, 2)
	assert.Equal(t, "VIP", decoded.Segments[0].Segment)
	assert.Contains(t, string(data), `"total_revenue"`)
}

func TestWriteJSONBadPath(t *testing.T) {
	err := WriteJSON(testSummary(), filepath.Join(t.TempDir(), "missing", "summary.json"))
	assert.Error(t, err)
}

func TestSegmentWithoutValues(t *testing.T) {
	summary := testSummary()
	summary.Segments = append(summary.Segments, aggregate.SegmentBreakdown{Segment: "Lost", Count: 1, Mean: math.NaN()})

	var buf bytes.Buffer
	Print(&buf, summary, t.TempDir(), nil)
	assert.Contains(t, buf.String(), "  - Avg Value: n/a")

	path := filepath.Join(t.TempDir(), "summary.json")
	require.NoError(t, WriteJSON(summary, path))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"avg_value": null`)
	assert.Contains(t, string(data), `"avg_value": 150`)
}
