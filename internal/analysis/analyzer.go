// Package analysis runs the full scoring pass over one snapshot of products.
package analysis

import (
	"time"

	"livescore/internal/classify"
	"livescore/internal/product"
	"livescore/internal/score"
	"livescore/internal/stats"
	"livescore/internal/tag"

	"github.com/google/uuid"
)

// Product is a scored product together with its rendered tags and score terms.
type Product struct {
	classify.Scored
	Labels      []tag.Label     `json:"labels"`
	TierTooltip string          `json:"tier_tooltip,omitempty"`
	Breakdown   score.Breakdown `json:"breakdown"`
}

// Snapshot is the immutable result of one analysis pass.
type Snapshot struct {
	ID        string           `json:"id"`
	Room      string           `json:"room"`
	CreatedAt time.Time        `json:"created_at"`
	Columns   []product.Column `json:"columns,omitempty"`
	Dataset   stats.Dataset    `json:"dataset"`
	// Products holds every product ranked by descending score.
	Products  []Product `json:"products"`
	Hot       []Product `json:"hot"`
	Potential []Product `json:"potential"`
}

// Find returns the product with the given id.
func (s *Snapshot) Find(id string) (Product, bool) {
	for _, p := range s.Products {
		if p.ID == id {
			return p, true
		}
	}
	return Product{}, false
}

// Analyzer wires the scoring components together. It holds no state between calls.
type Analyzer struct {
	thresholds score.Thresholds
	engine     score.Scorer
	evaluator  *tag.Evaluator
	renderer   *tag.Renderer
	now        func() time.Time
}

// NewAnalyzer creates an analyzer over a compiled rule table.
func NewAnalyzer(thresholds score.Thresholds, weights score.Weights, rules []tag.Rule) *Analyzer {
	return &Analyzer{
		thresholds: thresholds,
		engine:     score.NewEngine(thresholds, weights),
		evaluator:  tag.NewEvaluator(rules, thresholds),
		renderer:   tag.NewRenderer(rules, tag.DefaultCurrency),
		now:        time.Now,
	}
}

// Analyze scores, tags and classifies metrics. Derived fields are recomputed, so
// callers may pass metrics straight from product.Normalize or built by hand.
func (a *Analyzer) Analyze(room string, metrics []product.Metric) *Snapshot {
	derived := make([]product.Metric, len(metrics))
	for i, m := range metrics {
		derived[i] = m.WithDerived()
	}

	ds := stats.Compute(derived)

	scored := make([]classify.Scored, len(derived))
	for i, m := range derived {
		scored[i] = classify.Scored{
			Metric: m,
			Score:  a.engine.Score(m),
			Tags:   a.evaluator.Evaluate(m, ds),
		}
	}

	res := classify.Classify(scored, a.thresholds)

	return &Snapshot{
		ID:        uuid.NewString(),
		Room:      room,
		CreatedAt: a.now().UTC(),
		Dataset:   ds,
		Products:  a.present(res.Ranked),
		Hot:       a.present(res.Hot),
		Potential: a.present(res.Potential),
	}
}

// AnalyzeBatch normalizes an upstream batch and analyzes it.
func (a *Analyzer) AnalyzeBatch(room string, batch *product.Batch) *Snapshot {
	snap := a.Analyze(room, product.Normalize(batch.Records))
	snap.Columns = batch.Columns
	return snap
}

func (a *Analyzer) present(scored []classify.Scored) []Product {
	out := make([]Product, 0, len(scored))
	for _, s := range scored {
		p := Product{
			Scored:    s,
			Labels:    a.renderer.Labels(s.Tags, s.Metric),
			Breakdown: a.engine.Breakdown(s.Metric),
		}
		if s.Tier != classify.TierNone {
			p.TierTooltip = a.renderer.RenderTier(s.Score)
		}
		out = append(out, p)
	}
	return out
}
