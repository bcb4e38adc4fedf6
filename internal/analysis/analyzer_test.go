package analysis

import (
	"testing"
	"time"

	"livescore/internal/classify"
	"livescore/internal/product"
	"livescore/internal/score"
	"livescore/internal/tag"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAnalyzer(t *testing.T) *Analyzer {
	t.Helper()
	rules, err := tag.DefaultRules()
	require.NoError(t, err)

	thresholds := score.DefaultThresholds()
	thresholds.ClickRateGood = 0.1
	thresholds.ConvRateGood = 0.08

	a := NewAnalyzer(thresholds, score.DefaultWeights(), rules)
	a.now = func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) }
	return a
}

func TestAnalyzer_Empty(t *testing.T) {
	snap := newAnalyzer(t).Analyze("room-1", nil)

	assert.NotEmpty(t, snap.ID)
	assert.Equal(t, "room-1", snap.Room)
	assert.Empty(t, snap.Products)
	assert.Empty(t, snap.Hot)
	assert.Empty(t, snap.Potential)
	assert.Zero(t, snap.Dataset.MaxExposure)
}

func TestAnalyzer_Analyze(t *testing.T) {
	metrics := []product.Metric{
		{ID: "tiny", Exposure: 50, Clicks: 5, PayCount: 1, PriceCents: 100},
		// golden product, TransactionAmount is derived by the analyzer
		{ID: "golden", Exposure: 2000, Clicks: 300, ClickRate: 0.15, ConvRate: 0.1333, PayCount: 40, PriceCents: 10000, GPMCents: 150000},
		{ID: "steady", Exposure: 800, Clicks: 90, ClickRate: 0.11, ConvRate: 0.1, PayCount: 9, PriceCents: 5000},
	}

	snap := newAnalyzer(t).Analyze("room-1", metrics)

	require.Len(t, snap.Products, 3)
	assert.Equal(t, time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC), snap.CreatedAt)
	assert.Equal(t, int64(2000), snap.Dataset.MaxExposure)
	assert.Equal(t, 90.0, snap.Dataset.MedianClicks)

	golden := snap.Products[0]
	assert.Equal(t, "golden", golden.ID)
	assert.Equal(t, 92, golden.Score)
	assert.Equal(t, classify.TierHot, golden.Tier)
	assert.Equal(t, "Score: 92", golden.TierTooltip)
	assert.Equal(t, 4000.0, golden.TransactionAmount)
	assert.Equal(t, 92, golden.Breakdown.Total)
	assert.Equal(t, []string{tag.HighExposure, tag.GoodClickRate, tag.GoodConversionRate, tag.HighGPM}, golden.Tags)
	require.Len(t, golden.Labels, 4)
	assert.Equal(t, "GPM: ¥1500.00", golden.Labels[3].Tooltip)

	tiny, found := snap.Find("tiny")
	require.True(t, found)
	assert.Equal(t, 0, tiny.Score, "below the eligibility gate")
	assert.Equal(t, classify.TierNone, tiny.Tier)
	assert.Empty(t, tiny.TierTooltip)
	assert.Equal(t, "tiny", snap.Products[2].ID)

	require.Len(t, snap.Hot, 1)
	assert.Equal(t, "golden", snap.Hot[0].ID)
	for _, p := range snap.Potential {
		assert.NotEqual(t, "golden", p.ID)
	}

	_, found = snap.Find("absent")
	assert.False(t, found)
}

func TestAnalyzer_AnalyzeBatch(t *testing.T) {
	batch, err := product.Decode([]byte(`{"data": {
		"data_head": [{"index_name": "gpm", "index_display": "GPM"}],
		"data_result": [
			{"product_id": 1, "product_show_ucnt": {"value": 2000}, "product_click_ucnt": {"value": 300},
			 "pay_combo_cnt": {"value": 40}, "market_price": {"value": 10000}, "gpm": {"value": 150000}},
			{"product_id": 2, "product_show_ucnt": {"value": null}}
		]}}`))
	require.NoError(t, err)

	snap := newAnalyzer(t).AnalyzeBatch("room-2", batch)

	require.Len(t, snap.Products, 2)
	assert.Equal(t, "1", snap.Products[0].ID)
	assert.Equal(t, 92, snap.Products[0].Score)
	assert.Equal(t, "2", snap.Products[1].ID)
	assert.Equal(t, 0, snap.Products[1].Score)
	assert.Equal(t, []product.Column{{IndexName: "gpm", IndexDisplay: "GPM"}}, snap.Columns)
}

func TestAnalyzer_RepeatedCallsAreIndependent(t *testing.T) {
	a := newAnalyzer(t)
	metrics := []product.Metric{{ID: "x", Exposure: 2000, Clicks: 300, PayCount: 40, PriceCents: 10000}}

	first := a.Analyze("r", metrics)
	second := a.Analyze("r", metrics)

	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, first.Products, second.Products)
}
