package services

import (
	"math"
	"testing"

	"cookNestAPI/internal/types/recipe"
)

func reviewsWithRatings(ratings ...int) []*recipe.Review {
	reviews := make([]*recipe.Review, 0, len(ratings))
	for _, r := range ratings {
		reviews = append(reviews, &recipe.Review{Rating: r})
	}
	return reviews
}

func TestAverageRating(t *testing.T) {
	tests := []struct {
		name    string
		ratings []int
		want    float64
	}{
		{"no reviews", nil, 0},
		{"single review", []int{4}, 4},
		{"whole average", []int{5, 3}, 4},
		{"rounds to one decimal", []int{5, 4, 4}, 4.3},
		{"rounds down", []int{3, 3, 4}, 3.3},
		{"all fives", []int{5, 5, 5, 5}, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := averageRating(reviewsWithRatings(tt.ratings...))
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("averageRating(%v) = %v, want %v", tt.ratings, got, tt.want)
			}
		})
	}
}
