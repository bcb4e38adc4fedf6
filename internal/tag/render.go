package tag

import (
	"math"
	"strconv"

	"livescore/internal/product"

	"github.com/shopspring/decimal"
)

// DefaultCurrency prefixes money amounts in tooltips.
const DefaultCurrency = "¥"

// Label is a tag prepared for display.
type Label struct {
	Tag     string `json:"tag"`
	Kind    string `json:"kind,omitempty"`
	Tooltip string `json:"tooltip"`
}

// Renderer formats tags. It does not evaluate rules: callers pass only tags that
// are already in the product's tag set.
type Renderer struct {
	currency string
	kinds    map[string]string
}

// NewRenderer creates a renderer that knows the styling kind of every rule.
func NewRenderer(rules []Rule, currency string) *Renderer {
	kinds := make(map[string]string, len(rules))
	for _, r := range rules {
		kinds[r.Tag] = r.Kind
	}
	return &Renderer{currency: currency, kinds: kinds}
}

// Render returns the tooltip for tag filled with the metric that triggers it.
// Tags without a template render as their name.
func (r *Renderer) Render(tag string, m product.Metric) string {
	switch tag {
	case HighExposure:
		return "Exposure: " + strconv.FormatInt(m.Exposure, 10)
	case HighClicks:
		return "Clicks: " + strconv.FormatInt(m.Clicks, 10)
	case GoodClickRate:
		return "Click rate: " + percent(m.ClickRate)
	case GoodConversionRate:
		return "Conversion rate: " + percent(m.ConvRate)
	case HighGPM:
		return "GPM: " + r.currency + decimal.New(m.GPMCents, -2).StringFixed(2)
	case HighSales:
		return "Sales: " + strconv.FormatInt(m.PayCount, 10)
	case HighTransactionValue:
		return "Transaction amount: " + r.currency + fromFloat(m.TransactionAmount).StringFixed(2)
	default:
		return tag
	}
}

// Labels renders every tag of a product.
func (r *Renderer) Labels(tags []string, m product.Metric) []Label {
	labels := make([]Label, 0, len(tags))
	for _, t := range tags {
		labels = append(labels, Label{Tag: t, Kind: r.kinds[t], Tooltip: r.Render(t, m)})
	}
	return labels
}

// RenderTier formats the tooltip of a tier badge.
func (r *Renderer) RenderTier(score int) string {
	return "Score: " + strconv.Itoa(score)
}

func percent(ratio float64) string {
	return fromFloat(ratio).Shift(2).StringFixed(2) + "%"
}

// fromFloat maps non-finite values to zero; decimal panics on them.
func fromFloat(v float64) decimal.Decimal {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return decimal.Zero
	}
	return decimal.NewFromFloat(v)
}
