package product

// Metric is one livestream product's measured facts for a reporting window.
// Counts and money amounts are never negative; absent upstream values are 0.
type Metric struct {
	// ID is the opaque upstream product identifier, unique within a snapshot.
	ID string `json:"id"`
	// Title and ImageURL are display only.
	Title    string `json:"title"`
	ImageURL string `json:"image_url"`

	// PriceCents is the market price in currency minor units.
	PriceCents int64 `json:"price_cents"`
	// Exposure is the number of unique viewers shown the product (product_show_ucnt).
	Exposure int64 `json:"exposure"`
	// Clicks is the number of unique viewers who clicked the product (product_click_ucnt).
	// It may exceed Exposure when upstream counters drift.
	Clicks int64 `json:"clicks"`
	// ClickRate is the exposure to click ratio (product_show_click_ucnt_ratio).
	ClickRate float64 `json:"click_rate"`
	// PayCount is the number of completed purchase combos (pay_combo_cnt).
	PayCount int64 `json:"pay_count"`
	// ConvRate is the click to pay ratio (product_click_pay_ucnt_ratio).
	ConvRate float64 `json:"conv_rate"`
	// GPMCents is revenue per thousand exposures in minor units (gpm).
	GPMCents int64 `json:"gpm_cents"`

	// TransactionAmount is PriceCents*PayCount/100 in major currency units.
	// Filled by WithDerived.
	TransactionAmount float64 `json:"transaction_amount"`
}

// WithDerived returns a copy of m with TransactionAmount computed from price and pay count.
func (m Metric) WithDerived() Metric {
	m.TransactionAmount = float64(m.PriceCents) * float64(m.PayCount) / 100
	return m
}
