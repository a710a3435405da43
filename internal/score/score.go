// Package score aggregates factor results into a single page score.
package score

import (
	"math"

	"github.com/pagefactor/pagefactor/internal/analysis"
)

// Overall computes the confidence-weighted, weight-normalized mean:
//
//	round( sum(score_i * confidence_i/100 * weight_i) / sum(weight_i) )
//
// Confidence discounting is intentional: a low-confidence zero should not
// drag the aggregate down as hard as a high-confidence zero. Returns 0 for
// an empty factor list.
func Overall(results []analysis.FactorResult) int {
	if len(results) == 0 {
		return 0
	}
	var weighted, totalWeight float64
	for _, r := range results {
		weighted += float64(r.Score) * (float64(r.Confidence) / 100.0) * r.Weight
		totalWeight += r.Weight
	}
	if totalWeight == 0 {
		return 0
	}
	overall := int(math.Round(weighted / totalWeight))
	if overall < 0 {
		return 0
	}
	if overall > 100 {
		return 100
	}
	return overall
}
