package aggregate

import (
	"cmp"
	"math/rand/v2"
	"slices"

	"github.com/samber/lo"

	"ecommerce-clv-report/internal/dataset"
)

const DefaultTopN = 20

// TopByCLV returns the n rows with the largest predicted CLV, largest first.
// Ties keep their original row order and rows without a prediction are
// never ranked.
func TopByCLV(rows []dataset.CustomerCLV, n int) []dataset.CustomerCLV {
	if n < 0 {
		n = 0
	}
	sorted := lo.Filter(rows, func(row dataset.CustomerCLV, _ int) bool { return valid(row.PredictedCLV) })
	slices.SortStableFunc(sorted, func(a, b dataset.CustomerCLV) int {
		return cmp.Compare(b.PredictedCLV, a.PredictedCLV)
	})
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

// TopCustomers ranks the CLV table, or returns None when the table carries no
// predictions.
func TopCustomers(table dataset.CLVTable, n int) Optional[[]dataset.CustomerCLV] {
	if !table.HasCLV {
		return None[[]dataset.CustomerCLV]()
	}
	return Some(TopByCLV(table.Rows, n))
}

// NewRand returns the generator used for sampling. Two generators built from
// the same seed yield the same samples.
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed))
}

// Sample draws at most n rows without replacement. When rows already fit in n
// the input is returned as is.
func Sample[T any](rows []T, n int, rng *rand.Rand) []T {
	if n < 0 {
		n = 0
	}
	if len(rows) <= n {
		return rows
	}
	picked := rng.Perm(len(rows))[:n]
	out := make([]T, 0, n)
	for _, idx := range picked {
		out = append(out, rows[idx])
	}
	return out
}

type ClusterCount struct {
	Cluster int `json:"cluster"`
	Count   int `json:"count"`
}

// ClusterCounts is ordered by cluster id ascending.
type ClusterCounts []ClusterCount

func CountClusters(rows []dataset.SegmentedCustomer) ClusterCounts {
	byCluster := lo.CountValuesBy(rows, func(row dataset.SegmentedCustomer) int { return row.Cluster })
	counts := make(ClusterCounts, 0, len(byCluster))
	for cluster, count := range byCluster {
		counts = append(counts, ClusterCount{Cluster: cluster, Count: count})
	}
	slices.SortFunc(counts, func(a, b ClusterCount) int { return cmp.Compare(a.Cluster, b.Cluster) })
	return counts
}

// Clusters returns cluster counts, or None when no clustering was run.
func Clusters(table dataset.SegmentTable) Optional[ClusterCounts] {
	if !table.HasCluster {
		return None[ClusterCounts]()
	}
	return Some(CountClusters(table.Rows))
}
