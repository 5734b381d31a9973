package utils

import (
	"math"
	"testing"
)

func TestCalculateContributorScore(t *testing.T) {
	if got := CalculateContributorScore(0, 0, 0); got != 0 {
		t.Errorf("empty contributor scored %v, want 0", got)
	}

	// 2 recipes, 9 votes, 4 reviews: 6 + 3 + 2.
	if got := CalculateContributorScore(2, 9, 4); math.Abs(got-11) > 1e-9 {
		t.Errorf("score = %v, want 11", got)
	}

	// Votes grow sub-linearly: 100x the votes is only 10x the vote score.
	small := CalculateContributorScore(0, 1, 0)
	big := CalculateContributorScore(0, 100, 0)
	if math.Abs(big-10*small) > 1e-9 {
		t.Errorf("vote scaling: %v vs %v", big, small)
	}

	// A prolific author outranks a one-hit wonder.
	author := CalculateContributorScore(10, 25, 0)
	viral := CalculateContributorScore(1, 400, 0)
	if author <= viral {
		t.Errorf("author score %v should beat viral score %v", author, viral)
	}
}
