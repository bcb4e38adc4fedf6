// Package classify ranks scored products and partitions them into tiers.
package classify

import (
	"slices"

	"livescore/internal/product"
	"livescore/internal/score"
)

// Tier is a coarse classification bucket.
type Tier string

const (
	TierHot       Tier = "hot"
	TierPotential Tier = "potential"
	TierNone      Tier = "none"
)

// Scored is a product with the results of one scoring pass.
type Scored struct {
	product.Metric
	Score int      `json:"score"`
	Tags  []string `json:"tags"`
	Tier  Tier     `json:"tier"`
}

// HasTag reports whether tag is in the product's tag set.
func (s Scored) HasTag(tag string) bool {
	return slices.Contains(s.Tags, tag)
}

// Result is the outcome of Classify. Ranked holds every product, best first;
// Hot and Potential are disjoint subsequences of Ranked.
type Result struct {
	Ranked    []Scored `json:"ranked"`
	Hot       []Scored `json:"hot"`
	Potential []Scored `json:"potential"`
}

// Classify sorts products by descending score and assigns tiers:
//
//   - hot: score >= HotScoreMin
//   - potential: PotentialScoreMin <= score < HotScoreMin and exposure >= MinExposure
//   - none: everything else
//
// Products with equal scores keep their input order. The input slice is not modified.
func Classify(products []Scored, t score.Thresholds) Result {
	ranked := slices.Clone(products)
	slices.SortStableFunc(ranked, func(a, b Scored) int {
		return b.Score - a.Score
	})

	res := Result{
		Ranked:    ranked,
		Hot:       make([]Scored, 0),
		Potential: make([]Scored, 0),
	}
	for i := range ranked {
		ranked[i].Tier = tierOf(ranked[i], t)
		switch ranked[i].Tier {
		case TierHot:
			res.Hot = append(res.Hot, ranked[i])
		case TierPotential:
			res.Potential = append(res.Potential, ranked[i])
		}
	}
	return res
}

func tierOf(p Scored, t score.Thresholds) Tier {
	switch {
	case p.Score >= t.HotScoreMin:
		return TierHot
	case p.Score >= t.PotentialScoreMin && p.Exposure >= t.MinExposure:
		return TierPotential
	default:
		return TierNone
	}
}
