package tag

import (
	"livescore/internal/product"
	"livescore/internal/score"
	"livescore/internal/stats"

	"github.com/google/cel-go/cel"
)

// NewProductEnv declares the variables a tag rule may reference: the product's
// metrics, the configured thresholds and the statistics of the current snapshot.
// Counts are CEL ints, ratios and money amounts in major units are doubles.
func NewProductEnv() (*cel.Env, error) {
	env, err := cel.NewEnv(
		// --- Product ---
		cel.Variable("id", cel.StringType),
		cel.Variable("title", cel.StringType),
		cel.Variable("price", cel.IntType),
		cel.Variable("exposure", cel.IntType),
		cel.Variable("clicks", cel.IntType),
		cel.Variable("clickRate", cel.DoubleType),
		cel.Variable("sales", cel.IntType),
		cel.Variable("convRate", cel.DoubleType),
		cel.Variable("gpm", cel.IntType),
		cel.Variable("transactionAmount", cel.DoubleType),

		// --- Thresholds ---
		cel.Variable("minExposure", cel.IntType),
		cel.Variable("minClicks", cel.IntType),
		cel.Variable("exposureHigh", cel.IntType),
		cel.Variable("clicksHigh", cel.IntType),
		cel.Variable("clickRateGood", cel.DoubleType),
		cel.Variable("convRateGood", cel.DoubleType),
		cel.Variable("gpmHigh", cel.IntType),
		cel.Variable("salesHigh", cel.IntType),
		cel.Variable("transactionAmountHigh", cel.DoubleType),

		// --- Dataset ---
		cel.Variable("productCount", cel.IntType),
		cel.Variable("maxExposure", cel.IntType),
		cel.Variable("medianClicks", cel.DoubleType),
		cel.Variable("meanClickRate", cel.DoubleType),
		cel.Variable("clickRateStdDev", cel.DoubleType),
		cel.Variable("meanConvRate", cel.DoubleType),
		cel.Variable("convRateStdDev", cel.DoubleType),
	)
	if err != nil {
		return nil, err
	}
	return env, nil
}

func thresholdVars(t score.Thresholds) map[string]any {
	return map[string]any{
		"minExposure":           t.MinExposure,
		"minClicks":             t.MinClicks,
		"exposureHigh":          t.ExposureHigh,
		"clicksHigh":            t.ClicksHigh,
		"clickRateGood":         t.ClickRateGood,
		"convRateGood":          t.ConvRateGood,
		"gpmHigh":               t.GPMHigh,
		"salesHigh":             t.SalesHigh,
		"transactionAmountHigh": t.TransactionAmountHigh,
	}
}

// activation builds the variable bindings for one product. base holds the
// threshold bindings and is copied, not modified.
func activation(base map[string]any, m product.Metric, ds stats.Dataset) map[string]any {
	vars := make(map[string]any, len(base)+17)
	for k, v := range base {
		vars[k] = v
	}

	vars["id"] = m.ID
	vars["title"] = m.Title
	vars["price"] = m.PriceCents
	vars["exposure"] = m.Exposure
	vars["clicks"] = m.Clicks
	vars["clickRate"] = m.ClickRate
	vars["sales"] = m.PayCount
	vars["convRate"] = m.ConvRate
	vars["gpm"] = m.GPMCents
	vars["transactionAmount"] = m.TransactionAmount

	vars["productCount"] = int64(ds.Count)
	vars["maxExposure"] = ds.MaxExposure
	vars["medianClicks"] = ds.MedianClicks
	vars["meanClickRate"] = ds.MeanClickRate
	vars["clickRateStdDev"] = ds.ClickRateStdDev
	vars["meanConvRate"] = ds.MeanConvRate
	vars["convRateStdDev"] = ds.ConvRateStdDev
	return vars
}
