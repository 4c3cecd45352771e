package aggregate

import (
	"math"
	"sort"
	"time"

	"github.com/goccy/go-json"

	"ecommerce-clv-report/internal/dataset"
)

type Stats struct {
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
}

// Describe computes mean, median, min and max. NaN cells are ignored.
func Describe(values []float64) Stats {
	clean := make([]float64, 0, len(values))
	for _, value := range values {
		if !math.IsNaN(value) {
			clean = append(clean, value)
		}
	}
	if len(clean) == 0 {
		return Stats{}
	}
	sort.Float64s(clean)
	sum := 0.0
	for _, value := range clean {
		sum += value
	}
	median := 0.0
	mid := len(clean) / 2
	if len(clean)%2 == 0 {
		median = (clean[mid-1] + clean[mid]) / 2
	} else {
		median = clean[mid]
	}
	return Stats{
		Mean:   sum / float64(len(clean)),
		Median: median,
		Min:    clean[0],
		Max:    clean[len(clean)-1],
	}
}

type Overview struct {
	Customers    int       `json:"total_customers"`
	Transactions int       `json:"total_transactions"`
	Revenue      float64   `json:"total_revenue"`
	FirstDate    time.Time `json:"first_date"`
	LastDate     time.Time `json:"last_date"`
}

type RFMStats struct {
	Recency   Stats `json:"recency"`
	Frequency Stats `json:"frequency"`
	Monetary  Stats `json:"monetary"`
}

type SegmentBreakdown struct {
	Segment string  `json:"segment"`
	Count   int     `json:"customers"`
	Percent float64 `json:"percent"`
	Mean    float64 `json:"avg_value"`
	Total   float64 `json:"total_value"`
}

// MarshalJSON writes a segment with no present values as avg_value null.
func (b SegmentBreakdown) MarshalJSON() ([]byte, error) {
	type plain SegmentBreakdown
	var mean *float64
	if valid(b.Mean) {
		mean = &b.Mean
	}
	return json.Marshal(struct {
		plain
		Mean *float64 `json:"avg_value"`
	}{plain(b), mean})
}

// Summary is everything the console report prints, computed up front.
type Summary struct {
	Overview Overview           `json:"overview"`
	RFM      RFMStats           `json:"rfm"`
	Segments []SegmentBreakdown `json:"segments"`
	Daily    Timeline           `json:"daily"`
}

// Summarize builds the report summary. Segments follow the order of counts;
// percentages are relative to the segmented customer total.
func Summarize(ds *dataset.Dataset, counts SegmentCounts, values SegmentValues, daily Timeline) Summary {
	summary := Summary{
		Overview: overview(ds, daily),
		RFM:      rfmStats(ds.Metrics),
		Segments: make([]SegmentBreakdown, 0, len(counts)),
		Daily:    daily,
	}

	total := len(ds.Segments.Rows)
	for _, entry := range counts {
		breakdown := SegmentBreakdown{Segment: entry.Segment, Count: entry.Count}
		if total > 0 {
			breakdown.Percent = float64(entry.Count) / float64(total) * 100
		}
		if value, ok := values.Get(entry.Segment); ok {
			breakdown.Mean = value.Mean
			breakdown.Total = value.Total
		}
		summary.Segments = append(summary.Segments, breakdown)
	}
	return summary
}

// overview takes revenue from the daily timeline so blank amounts are skipped
// the same way in both.
func overview(ds *dataset.Dataset, daily Timeline) Overview {
	out := Overview{
		Customers:    len(ds.Metrics),
		Transactions: len(ds.Transactions),
		Revenue:      daily.Revenue(),
	}
	for i, tx := range ds.Transactions {
		if i == 0 || tx.Date.Before(out.FirstDate) {
			out.FirstDate = tx.Date
		}
		if i == 0 || tx.Date.After(out.LastDate) {
			out.LastDate = tx.Date
		}
	}
	return out
}

func rfmStats(metrics []dataset.CustomerMetrics) RFMStats {
	recency := make([]float64, len(metrics))
	frequency := make([]float64, len(metrics))
	monetary := make([]float64, len(metrics))
	for i, row := range metrics {
		recency[i] = row.Recency
		frequency[i] = row.Frequency
		monetary[i] = row.Monetary
	}
	return RFMStats{
		Recency:   Describe(recency),
		Frequency: Describe(frequency),
		Monetary:  Describe(monetary),
	}
}
