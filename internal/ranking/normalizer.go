// Package ranking expresses each product score relative to the group median.
package ranking

import (
	"math"
	"slices"

	"github.com/hyperjump/ecorank/internal/apperr"
	"github.com/hyperjump/ecorank/internal/models"
)

// Median returns the median of values: the middle value for an odd count and
// the mean of the two middle values for an even count. values is not modified.
// The median of an empty slice is NaN.
func Median(values []float64) float64 {
	n := len(values)
	if n == 0 {
		return math.NaN()
	}
	sorted := slices.Clone(values)
	slices.Sort(sorted)
	mid := n / 2
	if n%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}

// Normalize sets each product's Percentage to its deviation from the group
// median, (RawIndex/median - 1) * 100, and returns the products in input order.
//
// With zero or one product there is no meaningful group, so the products are
// returned unchanged and Percentage stays nil. A zero median, or a median so
// small that a percentage overflows, fails with apperr.DegenerateScoreSet
// instead of producing Inf or NaN.
func Normalize(products []models.ScoredProduct) ([]models.ScoredProduct, error) {
	out := models.CloneProducts(products)
	if len(out) <= 1 {
		for i := range out {
			out[i].Percentage = nil
		}
		return out, nil
	}

	indices := make([]float64, len(out))
	for i, p := range out {
		indices[i] = p.RawIndex
	}
	median := Median(indices)
	if median == 0 || math.IsNaN(median) || math.IsInf(median, 0) {
		return nil, apperr.New(apperr.DegenerateScoreSet, "ranking.Normalize",
			"median score is %v across %d products", median, len(out))
	}

	for i := range out {
		pct := (out[i].RawIndex/median - 1) * 100
		if math.IsNaN(pct) || math.IsInf(pct, 0) {
			return nil, apperr.New(apperr.DegenerateScoreSet, "ranking.Normalize",
				"percentage for product %d overflows (index %v, median %v)", i, out[i].RawIndex, median)
		}
		out[i].Percentage = &pct
	}
	return out, nil
}
