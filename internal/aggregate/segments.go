package aggregate

import (
	"cmp"
	"slices"
	"sort"

	"github.com/samber/lo"

	"ecommerce-clv-report/internal/dataset"
)

type SegmentCount struct {
	Segment string `json:"segment"`
	Count   int    `json:"count"`
}

// SegmentCounts lists segments in the order they were first observed unless
// re-ordered with SortedByCount.
type SegmentCounts []SegmentCount

func CountSegments(rows []dataset.SegmentedCustomer) SegmentCounts {
	counts := SegmentCounts{}
	position := map[string]int{}
	for _, row := range rows {
		idx, ok := position[row.Segment]
		if !ok {
			idx = len(counts)
			position[row.Segment] = idx
			counts = append(counts, SegmentCount{Segment: row.Segment})
		}
		counts[idx].Count++
	}
	return counts
}

func (c SegmentCounts) Total() int {
	return lo.SumBy(c, func(entry SegmentCount) int { return entry.Count })
}

func (c SegmentCounts) Labels() []string {
	return lo.Map(c, func(entry SegmentCount, _ int) string { return entry.Segment })
}

// SortedByCount returns a copy ordered by count descending. Equal counts keep
// their first-observation order.
func (c SegmentCounts) SortedByCount() SegmentCounts {
	sorted := slices.Clone(c)
	slices.SortStableFunc(sorted, func(a, b SegmentCount) int {
		return cmp.Compare(b.Count, a.Count)
	})
	return sorted
}

type SegmentMeans struct {
	Segment   string  `json:"segment"`
	Recency   float64 `json:"recency"`
	Frequency float64 `json:"frequency"`
	Monetary  float64 `json:"monetary"`
}

// SegmentStats holds per-segment RFM means, segments in alphabetical order.
type SegmentStats []SegmentMeans

// StatsBySegment averages Recency, Frequency and Monetary within each segment,
// ignoring blank cells.
func StatsBySegment(rows []dataset.SegmentedCustomer) SegmentStats {
	groups := lo.GroupBy(rows, func(row dataset.SegmentedCustomer) string { return row.Segment })
	segments := lo.Keys(groups)
	sort.Strings(segments)

	stats := make(SegmentStats, 0, len(segments))
	for _, segment := range segments {
		members := groups[segment]
		stats = append(stats, SegmentMeans{
			Segment:   segment,
			Recency:   meanValid(members, func(row dataset.SegmentedCustomer) float64 { return row.Recency }),
			Frequency: meanValid(members, func(row dataset.SegmentedCustomer) float64 { return row.Frequency }),
			Monetary:  meanValid(members, func(row dataset.SegmentedCustomer) float64 { return row.Monetary }),
		})
	}
	return stats
}

func (s SegmentStats) Labels() []string {
	return lo.Map(s, func(entry SegmentMeans, _ int) string { return entry.Segment })
}

type SegmentValue struct {
	Segment string  `json:"segment"`
	Total   float64 `json:"total_value"`
	Mean    float64 `json:"avg_value"`
	Count   int     `json:"customer_count"`
}

// SegmentValues is ordered by total Monetary descending.
type SegmentValues []SegmentValue

// ValueBySegment sums and averages Monetary per segment, skipping blank cells,
// and counts every customer. Segments with equal totals stay in alphabetical
// order.
func ValueBySegment(rows []dataset.SegmentedCustomer) SegmentValues {
	groups := lo.GroupBy(rows, func(row dataset.SegmentedCustomer) string { return row.Segment })
	segments := lo.Keys(groups)
	sort.Strings(segments)

	values := make(SegmentValues, 0, len(segments))
	for _, segment := range segments {
		members := groups[segment]
		monetary := func(row dataset.SegmentedCustomer) float64 { return row.Monetary }
		total, _ := sumValid(members, monetary)
		values = append(values, SegmentValue{
			Segment: segment,
			Total:   total,
			Mean:    meanValid(members, monetary),
			Count:   len(members),
		})
	}
	slices.SortStableFunc(values, func(a, b SegmentValue) int {
		return cmp.Compare(b.Total, a.Total)
	})
	return values
}

func (v SegmentValues) Get(segment string) (SegmentValue, bool) {
	return lo.Find(v, func(entry SegmentValue) bool { return entry.Segment == segment })
}

func (v SegmentValues) Labels() []string {
	return lo.Map(v, func(entry SegmentValue, _ int) string { return entry.Segment })
}
