package score

import (
	"errors"
	"fmt"
)

// Thresholds holds the named cutoffs shared by scoring, tagging and classification.
// It is read-only for the duration of a run.
type Thresholds struct {
	// MinExposure is the minimal exposure for a product to be scored and for the
	// click-rate tag to be considered.
	MinExposure int64 `mapstructure:"min_exposure" json:"min_exposure"`
	// MinClicks is the minimal click count for a product to be scored and for the
	// conversion-rate tag to be considered.
	MinClicks int64 `mapstructure:"min_clicks" json:"min_clicks"`

	ExposureHigh          int64   `mapstructure:"exposure_high" json:"exposure_high"`
	ClicksHigh            int64   `mapstructure:"clicks_high" json:"clicks_high"`
	ClickRateGood         float64 `mapstructure:"click_rate_good" json:"click_rate_good"`
	ConvRateGood          float64 `mapstructure:"conv_rate_good" json:"conv_rate_good"`
	GPMHigh               int64   `mapstructure:"gpm_high" json:"gpm_high"` // minor units
	SalesHigh             int64   `mapstructure:"sales_high" json:"sales_high"`
	TransactionAmountHigh float64 `mapstructure:"transaction_amount_high" json:"transaction_amount_high"` // major units

	// HotScoreMin and PotentialScoreMin are the tier cutoffs on the score scale.
	HotScoreMin       int `mapstructure:"hot_score_min" json:"hot_score_min"`
	PotentialScoreMin int `mapstructure:"potential_score_min" json:"potential_score_min"`
}

// DefaultThresholds returns the cutoffs the dashboard ships with.
func DefaultThresholds() Thresholds {
	return Thresholds{
		MinExposure:           100,
		MinClicks:             20,
		ExposureHigh:          1000,
		ClicksHigh:            500,
		ClickRateGood:         0.15,
		ConvRateGood:          0.1,
		GPMHigh:               1000,
		SalesHigh:             50,
		TransactionAmountHigh: 5000,
		HotScoreMin:           90,
		PotentialScoreMin:     70,
	}
}

// Validate checks the thresholds. Scoring functions assume valid thresholds and do
// not call it themselves; it runs once when configuration is loaded.
func (t *Thresholds) Validate() error {
	if t.MinExposure < 0 || t.MinClicks < 0 || t.ExposureHigh < 0 || t.ClicksHigh < 0 ||
		t.GPMHigh < 0 || t.SalesHigh < 0 || t.TransactionAmountHigh < 0 {
		return errors.New("thresholds: volume cutoffs must not be negative")
	}
	if t.ClickRateGood < 0 || t.ClickRateGood > 1 {
		return fmt.Errorf("thresholds.click_rate_good: %v is outside [0, 1]", t.ClickRateGood)
	}
	if t.ConvRateGood < 0 || t.ConvRateGood > 1 {
		return fmt.Errorf("thresholds.conv_rate_good: %v is outside [0, 1]", t.ConvRateGood)
	}
	if t.PotentialScoreMin >= t.HotScoreMin {
		return fmt.Errorf("thresholds: potential_score_min (%d) must be lower than hot_score_min (%d)",
			t.PotentialScoreMin, t.HotScoreMin)
	}
	return nil
}
