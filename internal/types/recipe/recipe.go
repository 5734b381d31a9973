package recipe

import "time"

type Recipe struct {
	ID          string    `json:"id"`
	AuthorID    string    `json:"authorId"`
	AuthorName  string    `json:"authorName,omitempty"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Ingredients []Ingredient `json:"ingredients"`
	Method      string    `json:"method"`
	Cuisine     string    `json:"cuisine,omitempty"`
	Country     string    `json:"country,omitempty"`
	Servings    int       `json:"servings"`
	PrepMinutes int       `json:"prepMinutes"`
	CookMinutes int       `json:"cookMinutes"`
	Difficulty  string    `json:"difficulty,omitempty"`
	ImageURL    string    `json:"imageUrl,omitempty"`
	IsPublic    bool      `json:"isPublic"`
	IsFeatured  bool      `json:"isFeatured"`
	VoteCount   int       `json:"voteCount"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Ingredient is stored as part of the recipe's jsonb ingredients column.
type Ingredient struct {
	Name     string  `json:"name"`
	Quantity float64 `json:"quantity"`
	Unit     string  `json:"unit,omitempty"`
}

type CreateRecipeRequest struct {
	Title       string       `json:"title" validate:"required"`
	Description string       `json:"description"`
	Ingredients []Ingredient `json:"ingredients"`
	Method      string       `json:"method"`
	Cuisine     string       `json:"cuisine,omitempty"`
	Country     string       `json:"country,omitempty"`
	Servings    int          `json:"servings"`
	PrepMinutes int          `json:"prepMinutes"`
	CookMinutes int          `json:"cookMinutes"`
	Difficulty  string       `json:"difficulty,omitempty"`
	ImageURL    string       `json:"imageUrl,omitempty"`
	IsPublic    bool         `json:"isPublic"`
}

type UpdateRecipeRequest struct {
	Title       string       `json:"title,omitempty"`
	Description string       `json:"description,omitempty"`
	Ingredients []Ingredient `json:"ingredients,omitempty"`
	Method      string       `json:"method,omitempty"`
	Cuisine     string       `json:"cuisine,omitempty"`
	Country     string       `json:"country,omitempty"`
	Servings    int          `json:"servings,omitempty"`
	PrepMinutes int          `json:"prepMinutes,omitempty"`
	CookMinutes int          `json:"cookMinutes,omitempty"`
	Difficulty  string       `json:"difficulty,omitempty"`
	ImageURL    string       `json:"imageUrl,omitempty"`
	IsPublic    *bool        `json:"isPublic,omitempty"`
}

type Review struct {
	ID        string    `json:"id"`
	RecipeID  string    `json:"recipeId"`
	UserID    string    `json:"userId"`
	Username  string    `json:"username,omitempty"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// ReviewSummary bundles a recipe's reviews with their average rating,
// rounded to one decimal place. AverageRating is 0 when there are no reviews.
type ReviewSummary struct {
	RecipeID      string    `json:"recipeId"`
	AverageRating float64   `json:"averageRating"`
	ReviewCount   int       `json:"reviewCount"`
	Reviews       []*Review `json:"reviews"`
}

type AddReviewRequest struct {
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
	Comment string `json:"comment,omitempty"`
}

// VoteSummary reports a recipe's vote standing for the requesting user.
type VoteSummary struct {
	RecipeID  string `json:"recipeId"`
	VoteCount int    `json:"voteCount"`
	HasVoted  bool   `json:"hasVoted"`
}
