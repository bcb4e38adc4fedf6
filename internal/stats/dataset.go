// Package stats computes dataset-wide statistics over one snapshot of products.
package stats

import (
	"math"
	"slices"

	"livescore/internal/product"
)

// Dataset holds statistics of a whole snapshot. It is recomputed for every
// analysis pass and is the zero value for an empty snapshot.
type Dataset struct {
	Count           int     `json:"count"`
	MaxExposure     int64   `json:"max_exposure"`
	MedianClicks    float64 `json:"median_clicks"`
	MeanClickRate   float64 `json:"mean_click_rate"`
	ClickRateStdDev float64 `json:"click_rate_std_dev"`
	MeanConvRate    float64 `json:"mean_conv_rate"`
	ConvRateStdDev  float64 `json:"conv_rate_std_dev"`
}

// Compute aggregates the metrics. Means and standard deviations are population
// statistics: the snapshot is every product the source returned, not a sample.
func Compute(metrics []product.Metric) Dataset {
	if len(metrics) == 0 {
		return Dataset{}
	}

	clicks := make([]float64, len(metrics))
	clickRates := make([]float64, len(metrics))
	convRates := make([]float64, len(metrics))

	ds := Dataset{Count: len(metrics)}
	for i, m := range metrics {
		if m.Exposure > ds.MaxExposure {
			ds.MaxExposure = m.Exposure
		}
		clicks[i] = float64(m.Clicks)
		clickRates[i] = m.ClickRate
		convRates[i] = m.ConvRate
	}

	ds.MedianClicks = Median(clicks)
	ds.MeanClickRate, ds.ClickRateStdDev = MeanStdDev(clickRates)
	ds.MeanConvRate, ds.ConvRateStdDev = MeanStdDev(convRates)
	return ds
}

// Median returns the median of values without modifying them. Even-length inputs
// average the two middle elements; an empty input yields 0.
func Median(values []float64) float64 {
	n := len(values)
	if n == 0 {
		return 0
	}
	sorted := slices.Clone(values)
	slices.Sort(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

// MeanStdDev returns the mean and population standard deviation of values.
// A statistic that overflows is reported as 0.
func MeanStdDev(values []float64) (mean, stdDev float64) {
	n := float64(len(values))
	if n == 0 {
		return 0, 0
	}
	for _, v := range values {
		mean += v
	}
	mean /= n
	if !isFinite(mean) {
		return 0, 0
	}

	var sq float64
	for _, v := range values {
		d := v - mean
		sq += d * d
	}
	stdDev = math.Sqrt(sq / n)
	if !isFinite(stdDev) {
		stdDev = 0
	}
	return mean, stdDev
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
