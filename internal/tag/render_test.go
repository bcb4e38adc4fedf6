package tag

import (
	"math"
	"testing"

	"livescore/internal/product"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderer_Render(t *testing.T) {
	rules, err := DefaultRules()
	require.NoError(t, err)
	r := NewRenderer(rules, DefaultCurrency)

	m := product.Metric{
		Exposure:   2000,
		Clicks:     300,
		ClickRate:  0.15,
		ConvRate:   0.1333,
		PayCount:   40,
		PriceCents: 10000,
		GPMCents:   150000,
	}.WithDerived()

	tests := map[string]string{
		HighExposure:         "Exposure: 2000",
		HighClicks:           "Clicks: 300",
		GoodClickRate:        "Click rate: 15.00%",
		GoodConversionRate:   "Conversion rate: 13.33%",
		HighGPM:              "GPM: ¥1500.00",
		HighSales:            "Sales: 40",
		HighTransactionValue: "Transaction amount: ¥4000.00",
		"custom-tag":         "custom-tag",
	}
	for tag, want := range tests {
		assert.Equal(t, want, r.Render(tag, m), tag)
	}
}

func TestRenderer_Labels(t *testing.T) {
	rules, err := DefaultRules()
	require.NoError(t, err)
	r := NewRenderer(rules, "$")

	m := product.Metric{GPMCents: 1999, PriceCents: 1999, PayCount: 3}.WithDerived()
	labels := r.Labels([]string{HighGPM, HighTransactionValue}, m)

	assert.Equal(t, []Label{
		{Tag: HighGPM, Kind: "gpm", Tooltip: "GPM: $19.99"},
		{Tag: HighTransactionValue, Kind: "transaction", Tooltip: "Transaction amount: $59.97"},
	}, labels)
}

func TestRenderer_NonFinite(t *testing.T) {
	r := NewRenderer(nil, DefaultCurrency)

	assert.Equal(t, "Click rate: 0.00%", r.Render(GoodClickRate, product.Metric{ClickRate: math.NaN()}))
	assert.Equal(t, "Transaction amount: ¥0.00",
		r.Render(HighTransactionValue, product.Metric{TransactionAmount: math.Inf(1)}))
}

func TestRenderer_RenderTier(t *testing.T) {
	assert.Equal(t, "Score: 92", NewRenderer(nil, DefaultCurrency).RenderTier(92))
}
