package stats

import (
	"math"
	"testing"

	"livescore/internal/product"

	"github.com/stretchr/testify/assert"
)

func TestCompute_Empty(t *testing.T) {
	assert.Equal(t, Dataset{}, Compute(nil))
	assert.Equal(t, Dataset{}, Compute([]product.Metric{}))
}

func TestCompute(t *testing.T) {
	metrics := []product.Metric{
		{Exposure: 500, Clicks: 40, ClickRate: 0.1, ConvRate: 0.2},
		{Exposure: 3000, Clicks: 10, ClickRate: 0.3, ConvRate: 0.0},
		{Exposure: 0, Clicks: 25, ClickRate: 0.2, ConvRate: 0.1},
		{Exposure: 1200, Clicks: 5, ClickRate: 0.0, ConvRate: 0.3},
	}

	ds := Compute(metrics)

	assert.Equal(t, 4, ds.Count)
	assert.Equal(t, int64(3000), ds.MaxExposure)
	assert.Equal(t, 17.5, ds.MedianClicks, "even length averages 10 and 25")
	assert.InDelta(t, 0.15, ds.MeanClickRate, 1e-12)
	assert.InDelta(t, 0.15, ds.MeanConvRate, 1e-12)
	// population variance of {0.2, 0, 0.1, 0.3} around 0.15 is 0.0125
	assert.InDelta(t, 0.111803398875, ds.ConvRateStdDev, 1e-9)
	assert.InDelta(t, 0.111803398875, ds.ClickRateStdDev, 1e-9)
}

func TestCompute_SingleProduct(t *testing.T) {
	ds := Compute([]product.Metric{{Exposure: 42, Clicks: 7, ClickRate: 0.5, ConvRate: 0.25}})

	assert.Equal(t, int64(42), ds.MaxExposure)
	assert.Equal(t, 7.0, ds.MedianClicks)
	assert.Equal(t, 0.5, ds.MeanClickRate)
	assert.Equal(t, 0.0, ds.ConvRateStdDev)
}

func TestMedian(t *testing.T) {
	assert.Equal(t, 0.0, Median(nil))
	assert.Equal(t, 3.0, Median([]float64{5, 1, 3}))
	assert.Equal(t, 2.5, Median([]float64{4, 1, 3, 2}))

	input := []float64{3, 1, 2}
	Median(input)
	assert.Equal(t, []float64{3, 1, 2}, input, "input must not be reordered")
}

func TestMeanStdDev(t *testing.T) {
	mean, sd := MeanStdDev([]float64{2, 4, 4, 4, 5, 5, 7, 9})
	assert.Equal(t, 5.0, mean)
	assert.Equal(t, 2.0, sd, "population standard deviation divides by N")

	mean, sd = MeanStdDev(nil)
	assert.Zero(t, mean)
	assert.Zero(t, sd)
}

func TestMeanStdDev_Overflow(t *testing.T) {
	mean, sd := MeanStdDev([]float64{1e200, 0.1})
	assert.InEpsilon(t, 5e199, mean, 1e-12)
	assert.Zero(t, sd, "overflowing deviation falls back to 0")

	mean, sd = MeanStdDev([]float64{math.MaxFloat64, math.MaxFloat64})
	assert.Zero(t, mean)
	assert.Zero(t, sd)
}

func TestCompute_OutOfRangeRates(t *testing.T) {
	ds := Compute([]product.Metric{{ClickRate: 1e200}, {ClickRate: 0.1}})

	assert.False(t, math.IsInf(ds.MeanClickRate, 0) || math.IsNaN(ds.MeanClickRate))
	assert.False(t, math.IsInf(ds.ClickRateStdDev, 0) || math.IsNaN(ds.ClickRateStdDev))
}
