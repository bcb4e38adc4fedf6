package product

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"strings"
)

// ErrInvalidEnvelope is returned by Decode when the payload is neither an analytics
// envelope with data.data_result nor a bare array of records.
var ErrInvalidEnvelope = errors.New("invalid analytics payload: data.data_result is missing")

// ID is an upstream product identifier. The analytics source sends it either as a
// string or as a JSON number; numbers are kept as their literal text so that large
// identifiers survive without float rounding.
type ID string

// UnmarshalJSON accepts strings, number literals and null.
func (id *ID) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	switch {
	case s == "null":
		*id = ""
	case strings.HasPrefix(s, `"`):
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*id = ID(v)
	default:
		*id = ID(s)
	}
	return nil
}

// Field is an upstream metric wrapped as {"value": ...}.
// Null, missing, non-numeric and non-finite values decode to 0 without error.
type Field struct {
	Value float64
}

// UnmarshalJSON decodes the wrapped form and, for robustness, a bare scalar.
func (f *Field) UnmarshalJSON(data []byte) error {
	f.Value = 0
	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] != '{' {
		f.Value = parseNumber(data)
		return nil
	}

	var wrapped struct {
		Value json.RawMessage `json:"value"`
	}
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return nil
	}
	f.Value = parseNumber(wrapped.Value)
	return nil
}

// parseNumber turns a raw JSON scalar into a finite float, falling back to 0.
func parseNumber(raw json.RawMessage) float64 {
	s := strings.TrimSpace(string(raw))
	if s == "" || s == "null" {
		return 0
	}
	if strings.HasPrefix(s, `"`) {
		if unquoted, err := strconv.Unquote(s); err == nil {
			s = strings.TrimSpace(unquoted)
		}
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// Record is one element of the upstream data_result array.
type Record struct {
	ProductID      ID     `json:"product_id"`
	Title          string `json:"title"`
	ImageURI       string `json:"image_uri"`
	MarketPrice    Field  `json:"market_price"`
	ShowUcnt       Field  `json:"product_show_ucnt"`
	ClickUcnt      Field  `json:"product_click_ucnt"`
	ShowClickRatio Field  `json:"product_show_click_ucnt_ratio"`
	ClickPayRatio  Field  `json:"product_click_pay_ucnt_ratio"`
	GPM            Field  `json:"gpm"`
	PayComboCnt    Field  `json:"pay_combo_cnt"`
}

// Column describes one metric column of the upstream report (data_head).
type Column struct {
	IndexName    string `json:"index_name"`
	IndexDisplay string `json:"index_display"`
}

// Batch is a decoded upstream report.
type Batch struct {
	Columns []Column `json:"columns"`
	Records []Record `json:"records"`
}

type envelope struct {
	Data *struct {
		DataHead   []Column  `json:"data_head"`
		DataResult *[]Record `json:"data_result"`
	} `json:"data"`
}

// Decode parses either the analytics envelope {"data":{"data_head":[...],"data_result":[...]}}
// or a bare JSON array of records.
func Decode(body []byte) (*Batch, error) {
	body = bytes.TrimSpace(body)
	if len(body) > 0 && body[0] == '[' {
		var records []Record
		if err := json.Unmarshal(body, &records); err != nil {
			return nil, err
		}
		return &Batch{Records: records}, nil
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, err
	}
	if env.Data == nil || env.Data.DataResult == nil {
		return nil, ErrInvalidEnvelope
	}
	return &Batch{Columns: env.Data.DataHead, Records: *env.Data.DataResult}, nil
}

// Normalize converts upstream records into metrics. Negative counts and ratios are
// treated as malformed and become 0, ratios above 1 are clamped to 1.
// TransactionAmount is derived.
func Normalize(records []Record) []Metric {
	metrics := make([]Metric, 0, len(records))
	for _, r := range records {
		m := Metric{
			ID:         string(r.ProductID),
			Title:      r.Title,
			ImageURL:   r.ImageURI,
			PriceCents: count(r.MarketPrice.Value),
			Exposure:   count(r.ShowUcnt.Value),
			Clicks:     count(r.ClickUcnt.Value),
			ClickRate:  rate(r.ShowClickRatio.Value),
			PayCount:   count(r.PayComboCnt.Value),
			ConvRate:   rate(r.ClickPayRatio.Value),
			GPMCents:   count(r.GPM.Value),
		}
		metrics = append(metrics, m.WithDerived())
	}
	return metrics
}

func count(v float64) int64 {
	if v <= 0 {
		return 0
	}
	if v >= math.MaxInt64 {
		return math.MaxInt64
	}
	return int64(math.Round(v))
}

func rate(v float64) float64 {
	switch {
	case v <= 0 || math.IsNaN(v):
		return 0
	case v > 1:
		return 1
	}
	return v
}
