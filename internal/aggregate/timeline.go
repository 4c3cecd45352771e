package aggregate

import (
	"slices"
	"time"

	"github.com/samber/lo"

	"ecommerce-clv-report/internal/dataset"
)

type DailyPoint struct {
	Date    time.Time `json:"date"`
	Revenue float64   `json:"revenue"`
	Count   int       `json:"transaction_count"`
}

// Timeline is ordered by date with one point per calendar day that has at
// least one transaction.
type Timeline []DailyPoint

// DailyTimeline sums and counts transaction amounts per calendar date. The
// time of day is discarded. Blank amounts are neither summed nor counted, so
// a day holding only blank amounts keeps a zero point.
func DailyTimeline(txs []dataset.Transaction) Timeline {
	byDay := lo.GroupBy(txs, func(tx dataset.Transaction) time.Time { return dataset.DateOnly(tx.Date) })

	timeline := make(Timeline, 0, len(byDay))
	for day, members := range byDay {
		amounts := lo.FilterMap(members, func(tx dataset.Transaction, _ int) (float64, bool) {
			return tx.Amount, valid(tx.Amount)
		})
		timeline = append(timeline, DailyPoint{
			Date:    day,
			Revenue: lo.Sum(amounts),
			Count:   len(amounts),
		})
	}
	slices.SortFunc(timeline, func(a, b DailyPoint) int { return a.Date.Compare(b.Date) })
	return timeline
}

func (t Timeline) Revenue() float64 {
	return lo.SumBy(t, func(point DailyPoint) float64 { return point.Revenue })
}
