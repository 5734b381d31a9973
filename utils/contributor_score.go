package utils

import "math"

// CalculateContributorScore ranks community members. Recipes dominate,
// received votes grow sub-linearly so a single viral recipe doesn't bury
// everyone else, reviews count a little.
func CalculateContributorScore(recipeCount, voteCount, reviewCount int) float64 {
	recipeScore := float64(recipeCount) * 3.0
	voteScore := math.Sqrt(float64(voteCount))
	reviewScore := float64(reviewCount) * 0.5

	return recipeScore + voteScore + reviewScore
}
