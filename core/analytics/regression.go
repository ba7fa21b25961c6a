// Package analytics implements the two non-trivial algorithms built on the
// merged telemetry: tyre-degradation regression and track-outline
// reconstruction.
package analytics

import "sort"

// Median returns the middle value of the series, averaging the two middle
// values for even lengths. Zero for an empty series.
func Median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}

// OLS fits y = slope*x + intercept by ordinary least squares. ok is false
// for fewer than three points or a degenerate x spread, in which case no
// trend should be reported.
func OLS(xs, ys []float64) (slope, intercept float64, ok bool) {
	n := len(xs)
	if n < 3 || n != len(ys) {
		return 0, 0, false
	}
	var sumX, sumY, sumXY, sumXX float64
	for i := 0; i < n; i++ {
		sumX += xs[i]
		sumY += ys[i]
		sumXY += xs[i] * ys[i]
		sumXX += xs[i] * xs[i]
	}
	fn := float64(n)
	denom := fn*sumXX - sumX*sumX
	if denom == 0 {
		return 0, 0, false
	}
	slope = (fn*sumXY - sumX*sumY) / denom
	intercept = (sumY - slope*sumX) / fn
	return slope, intercept, true
}
