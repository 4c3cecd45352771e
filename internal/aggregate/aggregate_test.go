package aggregate

import (
	"fmt"
	"math"
	"reflect"
	"testing"
	"time"

	"ecommerce-clv-report/internal/dataset"
)

func segmented(segments []string, monetary []float64) []dataset.SegmentedCustomer {
	rows := make([]dataset.SegmentedCustomer, len(segments))
	for i := range segments {
		rows[i] = dataset.SegmentedCustomer{
			CustomerID: fmt.Sprintf("C%d", i+1),
			Recency:    float64(10 * (i + 1)),
			Frequency:  float64(i + 1),
			Monetary:   monetary[i],
			Segment:    segments[i],
		}
	}
	return rows
}

func TestSegmentScenario(t *testing.T) {
	rows := segmented([]string{"VIP", "VIP", "New"}, []float64{100, 200, 50})

	counts := CountSegments(rows)
	expected := SegmentCounts{{Segment: "VIP", Count: 2}, {Segment: "New", Count: 1}}
	if !reflect.DeepEqual(counts, expected) {
		t.Fatalf("expected counts %v, got %v", expected, counts)
	}

	values := ValueBySegment(rows)
	if len(values) != 2 || values[0].Segment != "VIP" || values[1].Segment != "New" {
		t.Fatalf("expected order [VIP New], got %v", values)
	}
	vip, _ := values.Get("VIP")
	if !floatEqual(vip.Total, 300) || !floatEqual(vip.Mean, 150) || vip.Count != 2 {
		t.Fatalf("unexpected VIP value %+v", vip)
	}
	newcomer, _ := values.Get("New")
	if !floatEqual(newcomer.Total, 50) || !floatEqual(newcomer.Mean, 50) || newcomer.Count != 1 {
		t.Fatalf("unexpected New value %+v", newcomer)
	}
}

func TestSegmentCountsConsistency(t *testing.T) {
	rows := segmented(
		[]string{"Lost", "VIP", "At Risk", "Lost", "New", "VIP", "Lost", "At Risk"},
		[]float64{5, 900, 40, 12, 60, 700, 3, 80},
	)

	counts := CountSegments(rows)
	if counts.Total() != len(rows) {
		t.Fatalf("expected total %d, got %d", len(rows), counts.Total())
	}
	if got := counts.Labels(); !reflect.DeepEqual(got, []string{"Lost", "VIP", "At Risk", "New"}) {
		t.Fatalf("expected first-observation order, got %v", got)
	}

	values := ValueBySegment(rows)
	for _, entry := range counts {
		value, ok := values.Get(entry.Segment)
		if !ok || value.Count != entry.Count {
			t.Fatalf("segment %s: count %d vs value %+v", entry.Segment, entry.Count, value)
		}
	}
	for i := 1; i < len(values); i++ {
		if values[i-1].Total < values[i].Total {
			t.Fatalf("values not sorted by total: %v", values)
		}
	}

	sorted := counts.SortedByCount()
	if got := sorted.Labels(); !reflect.DeepEqual(got, []string{"Lost", "VIP", "At Risk", "New"}) {
		t.Fatalf("expected stable count order, got %v", got)
	}
	if counts[1].Segment != "VIP" {
		t.Fatalf("SortedByCount must not reorder the receiver")
	}
}

func TestStatsBySegment(t *testing.T) {
	rows := segmented([]string{"VIP", "New", "VIP"}, []float64{100, 50, 300})
	stats := StatsBySegment(rows)
	if len(stats) != 2 || stats[0].Segment != "New" || stats[1].Segment != "VIP" {
		t.Fatalf("expected alphabetical segments, got %v", stats)
	}
	vip := stats[1]
	if !floatEqual(vip.Recency, 20) || !floatEqual(vip.Frequency, 2) || !floatEqual(vip.Monetary, 200) {
		t.Fatalf("unexpected VIP means %+v", vip)
	}
}

func TestDailyTimelineScenario(t *testing.T) {
	txs := []dataset.Transaction{
		{Amount: 10, Date: time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)},
		{Amount: 5, Date: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)},
		{Amount: 20, Date: time.Date(2024, 1, 1, 23, 30, 0, 0, time.UTC)},
	}

	timeline := DailyTimeline(txs)
	expected := Timeline{
		{Date: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), Revenue: 30, Count: 2},
		{Date: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), Revenue: 5, Count: 1},
	}
	if !reflect.DeepEqual(timeline, expected) {
		t.Fatalf("expected %v, got %v", expected, timeline)
	}
	if !floatEqual(timeline.Revenue(), 35) {
		t.Fatalf("expected revenue 35, got %.2f", timeline.Revenue())
	}
	for i := 1; i < len(timeline); i++ {
		if !timeline[i-1].Date.Before(timeline[i].Date) {
			t.Fatalf("dates not strictly increasing: %v", timeline)
		}
	}
}

func TestTopByCLV(t *testing.T) {
	rows := make([]dataset.CustomerCLV, 0, 30)
	for i := 0; i < 30; i++ {
		rows = append(rows, dataset.CustomerCLV{CustomerID: fmt.Sprintf("C%02d", i), PredictedCLV: float64(i % 7)})
	}

	top := TopByCLV(rows, DefaultTopN)
	if len(top) != DefaultTopN {
		t.Fatalf("expected %d rows, got %d", DefaultTopN, len(top))
	}
	threshold := top[len(top)-1].PredictedCLV
	returned := map[string]bool{}
	for i, row := range top {
		returned[row.CustomerID] = true
		if i > 0 && top[i-1].PredictedCLV < row.PredictedCLV {
			t.Fatalf("top customers not descending: %v", top)
		}
	}
	for _, row := range rows {
		if !returned[row.CustomerID] && row.PredictedCLV > threshold {
			t.Fatalf("customer %s (%.0f) should have been returned", row.CustomerID, row.PredictedCLV)
		}
	}
	// C06 and C13 both hold 6; original order wins.
	if top[0].CustomerID != "C06" || top[1].CustomerID != "C13" {
		t.Fatalf("expected stable tie order, got %s, %s", top[0].CustomerID, top[1].CustomerID)
	}

	if got := TopByCLV(rows[:3], DefaultTopN); len(got) != 3 {
		t.Fatalf("expected all 3 rows, got %d", len(got))
	}
}

func TestSampleDeterministic(t *testing.T) {
	rows := make([]int, 2500)
	for i := range rows {
		rows[i] = i
	}

	first := Sample(rows, 1000, NewRand(42))
	second := Sample(rows, 1000, NewRand(42))
	if len(first) != 1000 {
		t.Fatalf("expected 1000 rows, got %d", len(first))
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("samples with the same seed differ")
	}
	seen := map[int]bool{}
	for _, v := range first {
		if seen[v] {
			t.Fatalf("row %d sampled twice", v)
		}
		seen[v] = true
	}

	small := rows[:10]
	if got := Sample(small, 1000, NewRand(42)); !reflect.DeepEqual(got, small) {
		t.Fatalf("small tables must be returned unchanged")
	}
}

func TestOptionalAggregates(t *testing.T) {
	table := dataset.SegmentTable{Rows: []dataset.SegmentedCustomer{
		{Segment: "A", Cluster: 2}, {Segment: "A", Cluster: 0}, {Segment: "B", Cluster: 2},
	}}
	if Clusters(table).Present() {
		t.Fatalf("clusters must be absent without a Cluster column")
	}

	table.HasCluster = true
	clusters, ok := Clusters(table).Get()
	if !ok {
		t.Fatalf("clusters must be present")
	}
	expected := ClusterCounts{{Cluster: 0, Count: 1}, {Cluster: 2, Count: 2}}
	if !reflect.DeepEqual(clusters, expected) {
		t.Fatalf("expected %v, got %v", expected, clusters)
	}

	if TopCustomers(dataset.CLVTable{Rows: []dataset.CustomerCLV{{CustomerID: "C1"}}}, 20).Present() {
		t.Fatalf("top customers must be absent without predicted_clv")
	}
}

func TestDescribe(t *testing.T) {
	odd := Describe([]float64{5, 1, 3})
	if !floatEqual(odd.Median, 3) || !floatEqual(odd.Mean, 3) || odd.Min != 1 || odd.Max != 5 {
		t.Fatalf("unexpected odd stats %+v", odd)
	}
	even := Describe([]float64{4, 1, 3, 2})
	if !floatEqual(even.Median, 2.5) {
		t.Fatalf("expected median 2.5, got %.2f", even.Median)
	}
	if empty := Describe(nil); empty != (Stats{}) {
		t.Fatalf("expected zero stats, got %+v", empty)
	}
}

func TestSummarize(t *testing.T) {
	rows := segmented([]string{"VIP", "VIP", "New"}, []float64{100, 200, 50})
	ds := &dataset.Dataset{
		Metrics:  []dataset.CustomerMetrics{{Recency: 1, Frequency: 2, Monetary: 100}, {Recency: 3, Frequency: 4, Monetary: 200}},
		Segments: dataset.SegmentTable{Rows: rows},
		Transactions: []dataset.Transaction{
			{Amount: 12.5, Date: time.Date(2024, 2, 3, 0, 0, 0, 0, time.UTC)},
			{Amount: 7.5, Date: time.Date(2024, 1, 9, 0, 0, 0, 0, time.UTC)},
		},
	}

	summary := Summarize(ds, CountSegments(rows), ValueBySegment(rows), DailyTimeline(ds.Transactions))
	if summary.Overview.Customers != 2 || summary.Overview.Transactions != 2 {
		t.Fatalf("unexpected overview %+v", summary.Overview)
	}
	if !floatEqual(summary.Overview.Revenue, 20) {
		t.Fatalf("expected revenue 20, got %.2f", summary.Overview.Revenue)
	}
	if summary.Overview.FirstDate.Month() != time.January || summary.Overview.LastDate.Month() != time.February {
		t.Fatalf("unexpected date range %v - %v", summary.Overview.FirstDate, summary.Overview.LastDate)
	}
	if !floatEqual(summary.RFM.Monetary.Mean, 150) {
		t.Fatalf("expected monetary mean 150, got %.2f", summary.RFM.Monetary.Mean)
	}
	if len(summary.Segments) != 2 || summary.Segments[0].Segment != "VIP" {
		t.Fatalf("unexpected segments %+v", summary.Segments)
	}
	if !floatEqual(summary.Segments[0].Percent, 66.67) || !floatEqual(summary.Segments[0].Total, 300) {
		t.Fatalf("unexpected VIP breakdown %+v", summary.Segments[0])
	}
}

func TestBlankNumericCellsAreSkipped(t *testing.T) {
	day := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	txs := []dataset.Transaction{
		{Amount: 10, Date: day},
		{Amount: math.NaN(), Date: day.Add(2 * time.Hour)},
		{Amount: math.NaN(), Date: day.AddDate(0, 0, 1)},
		{Amount: 4, Date: day.AddDate(0, 0, 2)},
	}

	timeline := DailyTimeline(txs)
	expected := Timeline{
		{Date: day, Revenue: 10, Count: 1},
		{Date: day.AddDate(0, 0, 1), Revenue: 0, Count: 0},
		{Date: day.AddDate(0, 0, 2), Revenue: 4, Count: 1},
	}
	if !reflect.DeepEqual(timeline, expected) {
		t.Fatalf("expected %v, got %v", expected, timeline)
	}

	rows := segmented([]string{"VIP", "VIP", "New", "Lost"}, []float64{100, math.NaN(), 50, math.NaN()})
	values := ValueBySegment(rows)
	vip, _ := values.Get("VIP")
	if !floatEqual(vip.Total, 100) || !floatEqual(vip.Mean, 100) || vip.Count != 2 {
		t.Fatalf("unexpected VIP value %+v", vip)
	}
	lost, _ := values.Get("Lost")
	if lost.Total != 0 || !math.IsNaN(lost.Mean) || lost.Count != 1 {
		t.Fatalf("unexpected Lost value %+v", lost)
	}
	for i := 1; i < len(values); i++ {
		if values[i-1].Total < values[i].Total {
			t.Fatalf("values not sorted by total: %v", values)
		}
	}

	stats := StatsBySegment(rows)
	if stats[2].Segment != "VIP" || !floatEqual(stats[2].Monetary, 100) {
		t.Fatalf("unexpected VIP means %+v", stats[2])
	}

	ds := &dataset.Dataset{Segments: dataset.SegmentTable{Rows: rows}, Transactions: txs}
	summary := Summarize(ds, CountSegments(rows), values, timeline)
	if !floatEqual(summary.Overview.Revenue, 14) || summary.Overview.Transactions != 4 {
		t.Fatalf("unexpected overview %+v", summary.Overview)
	}

	clv := []dataset.CustomerCLV{{CustomerID: "A", PredictedCLV: math.NaN()}, {CustomerID: "B", PredictedCLV: 3}}
	if top := TopByCLV(clv, DefaultTopN); len(top) != 1 || top[0].CustomerID != "B" {
		t.Fatalf("expected only B ranked, got %v", top)
	}
}

func floatEqual(a float64, b float64) bool {
	diff := a - b
	if diff < 0 {
		diff = -diff
	}
	return diff < 0.01
}
