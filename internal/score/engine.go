package score

import (
	"fmt"
	"math"

	"livescore/internal/product"
)

// VirtualSamples is the number of synthetic observations at the "good" benchmark
// rate added to every product before its rates are computed.
const VirtualSamples = 20

// Weights are the multipliers of the score terms.
type Weights struct {
	ClickRate float64 `mapstructure:"click_rate" json:"click_rate"`
	ConvRate  float64 `mapstructure:"conv_rate" json:"conv_rate"`
	GPM       float64 `mapstructure:"gpm" json:"gpm"`
	Orders    float64 `mapstructure:"orders" json:"orders"`
	Sales     float64 `mapstructure:"sales" json:"sales"`
	Revenue   float64 `mapstructure:"revenue" json:"revenue"`
}

// DefaultWeights values purchase conversion at twice the click-through conversion;
// the log-compressed volume terms are secondary differentiators.
func DefaultWeights() Weights {
	return Weights{
		ClickRate: 60,
		ConvRate:  120,
		GPM:       20,
		Orders:    5,
		Sales:     15,
		Revenue:   15,
	}
}

// Validate rejects negative or non-finite weights.
func (w *Weights) Validate() error {
	for name, v := range map[string]float64{
		"click_rate": w.ClickRate,
		"conv_rate":  w.ConvRate,
		"gpm":        w.GPM,
		"orders":     w.Orders,
		"sales":      w.Sales,
		"revenue":    w.Revenue,
	} {
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("weights.%s: %v must be a finite non-negative number", name, v)
		}
	}
	return nil
}

// Breakdown lists the weighted contribution of every term of a product's score.
type Breakdown struct {
	Eligible  bool    `json:"eligible"`
	ClickRate float64 `json:"click_rate"`
	ConvRate  float64 `json:"conv_rate"`
	GPM       float64 `json:"gpm"`
	Orders    float64 `json:"orders"`
	Sales     float64 `json:"sales"`
	Revenue   float64 `json:"revenue"`
	Total     int     `json:"total"`
}

// Engine scores products against fixed thresholds and weights. It is stateless and
// safe for concurrent use.
type Engine struct {
	thresholds Thresholds
	weights    Weights
}

// NewEngine creates an engine. Thresholds are expected to be validated already.
func NewEngine(thresholds Thresholds, weights Weights) *Engine {
	return &Engine{thresholds: thresholds, weights: weights}
}

// Score returns the rounded, non-negative score of m.
func (e *Engine) Score(m product.Metric) int {
	return e.Breakdown(m).Total
}

// Breakdown computes the score of m term by term.
//
// Products below MinExposure or MinClicks are not eligible and score 0: their
// sample is too small to rank. Rates are smoothed towards the configured "good"
// benchmarks with VirtualSamples prior observations. Volume and revenue terms are
// compressed with log10(1+x) so a single large seller cannot dominate.
// A term that would divide by zero or become non-finite contributes 0.
func (e *Engine) Breakdown(m product.Metric) Breakdown {
	t, w := e.thresholds, e.weights
	if m.Exposure < t.MinExposure || m.Clicks < t.MinClicks {
		return Breakdown{}
	}

	exposure := float64(m.Exposure)
	clicks := float64(m.Clicks)
	pays := float64(m.PayCount)

	smoothedCTR := ratio(clicks+VirtualSamples*t.ClickRateGood, exposure+VirtualSamples)
	smoothedCVR := ratio(pays+VirtualSamples*t.ConvRateGood, clicks+VirtualSamples)

	gpmPerMille := ratio(m.TransactionAmount, exposure/1000)
	ordersPerMille := ratio(pays, exposure/1000)

	b := Breakdown{
		Eligible:  true,
		ClickRate: finite(smoothedCTR * w.ClickRate),
		ConvRate:  finite(smoothedCVR * w.ConvRate),
		GPM:       finite(math.Log10(gpmPerMille/100+1) * w.GPM),
		Orders:    finite(math.Log10(ordersPerMille+1) * w.Orders),
		Sales:     finite(math.Log10(pays+1) * w.Sales),
		Revenue:   finite(math.Log10(m.TransactionAmount/1000+1) * w.Revenue),
	}

	total := math.Round(b.ClickRate + b.ConvRate + b.GPM + b.Orders + b.Sales + b.Revenue)
	switch {
	case total >= math.MaxInt:
		b.Total = math.MaxInt
	case total > 0:
		b.Total = int(total)
	}
	return b
}

// Score computes a product score with the default weights.
func Score(m product.Metric, thresholds Thresholds) int {
	return NewEngine(thresholds, DefaultWeights()).Score(m)
}

func ratio(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return finite(num / den)
}

func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
