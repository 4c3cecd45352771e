package aggregate

import "math"

// Blank numeric cells load as NaN. Sums skip them and means divide by the
// number of present values, leaving NaN when none are present.

func valid(v float64) bool {
	return !math.IsNaN(v)
}

func sumValid[T any](rows []T, value func(T) float64) (sum float64, n int) {
	for _, row := range rows {
		if v := value(row); valid(v) {
			sum += v
			n++
		}
	}
	return sum, n
}

func meanValid[T any](rows []T, value func(T) float64) float64 {
	sum, n := sumValid(rows, value)
	if n == 0 {
		return math.NaN()
	}
	return sum / float64(n)
}
