package tag

import (
	"log/slog"

	"livescore/internal/product"
	"livescore/internal/score"
	"livescore/internal/stats"
)

// Evaluator applies a rule table to products. Rules are independent of each other,
// so changing one threshold never affects another tag's outcome.
type Evaluator struct {
	rules      []Rule
	thresholds map[string]any
}

// NewEvaluator binds compiled rules to thresholds.
func NewEvaluator(rules []Rule, thresholds score.Thresholds) *Evaluator {
	return &Evaluator{
		rules:      rules,
		thresholds: thresholdVars(thresholds),
	}
}

// Evaluate returns the tags whose predicate holds for m, in rule-table order.
// Each tag appears at most once. A rule that fails to evaluate is logged and
// treated as not matching.
func (e *Evaluator) Evaluate(m product.Metric, ds stats.Dataset) []string {
	vars := activation(e.thresholds, m, ds)

	tags := make([]string, 0, len(e.rules))
	for i := range e.rules {
		matched, err := e.rules[i].Eval(vars)
		if err != nil {
			slog.Error("tag rule eval", "error", err, "tag", e.rules[i].Tag, "product", m.ID)
			continue
		}
		if matched {
			tags = append(tags, e.rules[i].Tag)
		}
	}
	return tags
}

// Rules returns the rule table in evaluation order.
func (e *Evaluator) Rules() []Rule {
	return e.rules
}
