package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math"
	"time"

	"cookNestAPI/internal/types/notification"
	"cookNestAPI/internal/types/recipe"
	"cookNestAPI/utils"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type RecipeService struct {
	db           *pgxpool.Pool
	notifService *NotificationService
}

func NewRecipeService(db *pgxpool.Pool, notifService *NotificationService) *RecipeService {
	return &RecipeService{
		db:           db,
		notifService: notifService,
	}
}

func (s *RecipeService) resolveUserID(ctx context.Context, clerkID string) (uuid.UUID, error) {
	var userID uuid.UUID
	err := s.db.QueryRow(ctx, `SELECT id FROM users WHERE clerk_id = $1`, clerkID).Scan(&userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return uuid.Nil, fmt.Errorf("user not found")
		}
		return uuid.Nil, fmt.Errorf("failed to resolve user: %w", err)
	}
	return userID, nil
}

func (s *RecipeService) CreateRecipe(ctx context.Context, clerkID string, req *recipe.CreateRecipeRequest) (*recipe.Recipe, error) {
	authorID, err := s.resolveUserID(ctx, clerkID)
	if err != nil {
		return nil, err
	}

	// Tier gate: free members have a recipe cap.
	var plan, authorName string
	var count int
	err = s.db.QueryRow(ctx, `
		SELECT current_plan, username, (SELECT COUNT(*) FROM recipes WHERE author_id = users.id)
		FROM users WHERE id = $1
	`, authorID).Scan(&plan, &authorName, &count)
	if err != nil {
		return nil, fmt.Errorf("failed to check recipe quota: %w", err)
	}
	if max := MaxRecipesForPlan(plan); max >= 0 && count >= max {
		return nil, fmt.Errorf("recipe limit reached for the %s plan", plan)
	}

	ingredientsJSON, err := json.Marshal(req.Ingredients)
	if err != nil {
		return nil, fmt.Errorf("failed to encode ingredients: %w", err)
	}

	r := &recipe.Recipe{
		ID:          uuid.New().String(),
		AuthorID:    authorID.String(),
		Title:       req.Title,
		Description: req.Description,
		Ingredients: req.Ingredients,
		Method:      req.Method,
		Cuisine:     req.Cuisine,
		Country:     req.Country,
		Servings:    req.Servings,
		PrepMinutes: req.PrepMinutes,
		CookMinutes: req.CookMinutes,
		Difficulty:  req.Difficulty,
		ImageURL:    req.ImageURL,
		IsPublic:    req.IsPublic,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}

	query := `
	INSERT INTO recipes (id, author_id, title, description, ingredients, method, cuisine, country, servings, prep_minutes, cook_minutes, difficulty, image_url, is_public, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`

	_, err = s.db.Exec(ctx, query,
		r.ID, authorID, r.Title, r.Description, ingredientsJSON, r.Method, r.Cuisine, r.Country,
		r.Servings, r.PrepMinutes, r.CookMinutes, r.Difficulty, r.ImageURL, r.IsPublic, r.CreatedAt, r.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create recipe: %w", err)
	}

	if r.IsPublic {
		go utils.AuthorPublishedRecipe(s.db, s.notifService, authorID, authorName, r.ID, r.Title)
	}

	return r, nil
}

const recipeColumns = `
	r.id, r.author_id, u.username, r.title, r.description, r.ingredients, r.method,
	COALESCE(r.cuisine, ''), COALESCE(r.country, ''), r.servings, r.prep_minutes, r.cook_minutes,
	COALESCE(r.difficulty, ''), COALESCE(r.image_url, ''), r.is_public, r.is_featured,
	(SELECT COUNT(*) FROM recipe_votes v WHERE v.recipe_id = r.id),
	r.created_at, r.updated_at
`

func scanRecipe(row pgx.Row) (*recipe.Recipe, error) {
	r := &recipe.Recipe{}
	var ingredientsJSON []byte
	err := row.Scan(
		&r.ID, &r.AuthorID, &r.AuthorName, &r.Title, &r.Description, &ingredientsJSON, &r.Method,
		&r.Cuisine, &r.Country, &r.Servings, &r.PrepMinutes, &r.CookMinutes,
		&r.Difficulty, &r.ImageURL, &r.IsPublic, &r.IsFeatured,
		&r.VoteCount,
		&r.CreatedAt, &r.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(ingredientsJSON) > 0 {
		if err := json.Unmarshal(ingredientsJSON, &r.Ingredients); err != nil {
			return nil, fmt.Errorf("failed to decode ingredients: %w", err)
		}
	}
	return r, nil
}

func (s *RecipeService) GetRecipe(ctx context.Context, recipeID string) (*recipe.Recipe, error) {
	query := `SELECT ` + recipeColumns + ` FROM recipes r JOIN users u ON u.id = r.author_id WHERE r.id = $1`

	r, err := scanRecipe(s.db.QueryRow(ctx, query, recipeID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("recipe not found")
		}
		return nil, fmt.Errorf("failed to get recipe: %w", err)
	}
	return r, nil
}

func (s *RecipeService) UpdateRecipe(ctx context.Context, clerkID string, recipeID string, req *recipe.UpdateRecipeRequest) (*recipe.Recipe, error) {
	authorID, err := s.resolveUserID(ctx, clerkID)
	if err != nil {
		return nil, err
	}

	var ingredientsJSON []byte
	if req.Ingredients != nil {
		ingredientsJSON, err = json.Marshal(req.Ingredients)
		if err != nil {
			return nil, fmt.Errorf("failed to encode ingredients: %w", err)
		}
	}

	query := `
	UPDATE recipes
	SET
		title = COALESCE(NULLIF($3, ''), title),
		description = COALESCE(NULLIF($4, ''), description),
		ingredients = COALESCE($5, ingredients),
		method = COALESCE(NULLIF($6, ''), method),
		cuisine = COALESCE(NULLIF($7, ''), cuisine),
		country = COALESCE(NULLIF($8, ''), country),
		servings = CASE WHEN $9 != 0 THEN $9 ELSE servings END,
		prep_minutes = CASE WHEN $10 != 0 THEN $10 ELSE prep_minutes END,
		cook_minutes = CASE WHEN $11 != 0 THEN $11 ELSE cook_minutes END,
		difficulty = COALESCE(NULLIF($12, ''), difficulty),
		image_url = COALESCE(NULLIF($13, ''), image_url),
		is_public = COALESCE($14, is_public),
		updated_at = NOW()
	WHERE id = $1 AND author_id = $2
	`

	result, err := s.db.Exec(ctx, query,
		recipeID, authorID, req.Title, req.Description, ingredientsJSON, req.Method,
		req.Cuisine, req.Country, req.Servings, req.PrepMinutes, req.CookMinutes,
		req.Difficulty, req.ImageURL, req.IsPublic,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update recipe: %w", err)
	}
	if result.RowsAffected() == 0 {
		return nil, fmt.Errorf("recipe not found or not owned by user")
	}

	return s.GetRecipe(ctx, recipeID)
}

func (s *RecipeService) DeleteRecipe(ctx context.Context, clerkID string, recipeID string) error {
	authorID, err := s.resolveUserID(ctx, clerkID)
	if err != nil {
		return err
	}

	result, err := s.db.Exec(ctx, `DELETE FROM recipes WHERE id = $1 AND author_id = $2`, recipeID, authorID)
	if err != nil {
		return fmt.Errorf("failed to delete recipe: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("recipe not found or not owned by user")
	}
	return nil
}

// ListPublicRecipes returns the community feed, newest first.
func (s *RecipeService) ListPublicRecipes(ctx context.Context, search string, limit, offset int) ([]*recipe.Recipe, error) {
	if limit <= 0 || limit > 100 {
		limit = 25
	}

	query := `
	SELECT ` + recipeColumns + `
	FROM recipes r
	JOIN users u ON u.id = r.author_id
	WHERE r.is_public
	  AND ($1 = '' OR r.title ILIKE '%' || $1 || '%' OR r.cuisine ILIKE '%' || $1 || '%' OR r.country ILIKE '%' || $1 || '%')
	ORDER BY r.created_at DESC
	LIMIT $2 OFFSET $3
	`

	return s.queryRecipes(ctx, query, search, limit, offset)
}

func (s *RecipeService) ListUserRecipes(ctx context.Context, clerkID string) ([]*recipe.Recipe, error) {
	query := `
	SELECT ` + recipeColumns + `
	FROM recipes r
	JOIN users u ON u.id = r.author_id
	WHERE r.author_id = (SELECT id FROM users WHERE clerk_id = $1)
	ORDER BY r.created_at DESC
	`

	return s.queryRecipes(ctx, query, clerkID)
}

func (s *RecipeService) ListFeaturedRecipes(ctx context.Context) ([]*recipe.Recipe, error) {
	query := `
	SELECT ` + recipeColumns + `
	FROM recipes r
	JOIN users u ON u.id = r.author_id
	WHERE r.is_public AND r.is_featured
	ORDER BY r.updated_at DESC
	LIMIT 20
	`

	return s.queryRecipes(ctx, query)
}

func (s *RecipeService) queryRecipes(ctx context.Context, query string, args ...any) ([]*recipe.Recipe, error) {
	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list recipes: %w", err)
	}
	defer rows.Close()

	recipes := []*recipe.Recipe{}
	for rows.Next() {
		r, err := scanRecipe(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan recipe: %w", err)
		}
		recipes = append(recipes, r)
	}

	return recipes, rows.Err()
}

// VoteRecipe casts a positive vote. The voting system has no downvotes; a
// second vote from the same user is a no-op reported as an error.
func (s *RecipeService) VoteRecipe(ctx context.Context, clerkID string, recipeID string) (*recipe.VoteSummary, error) {
	userID, err := s.resolveUserID(ctx, clerkID)
	if err != nil {
		return nil, err
	}

	var authorID uuid.UUID
	err = s.db.QueryRow(ctx, `SELECT author_id FROM recipes WHERE id = $1`, recipeID).Scan(&authorID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("recipe not found")
		}
		return nil, fmt.Errorf("failed to get recipe: %w", err)
	}

	result, err := s.db.Exec(ctx, `
		INSERT INTO recipe_votes (user_id, recipe_id, created_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (user_id, recipe_id) DO NOTHING
	`, userID, recipeID)
	if err != nil {
		return nil, fmt.Errorf("failed to vote: %w", err)
	}
	if result.RowsAffected() == 0 {
		return nil, fmt.Errorf("already voted for this recipe")
	}

	if s.notifService != nil && authorID != userID {
		var voterName string
		if err := s.db.QueryRow(ctx, `SELECT username FROM users WHERE id = $1`, userID).Scan(&voterName); err == nil {
			_, err = s.notifService.CreateNotification(ctx, &notification.CreateNotificationRequest{
				UserID:   authorID,
				Type:     notification.TypeRecipeVote,
				Priority: notification.PriorityLow,
				ActorID:  &userID,
				Data:     map[string]any{"username": voterName, "recipe_id": recipeID},
			})
			if err != nil {
				log.Printf("VoteRecipe: failed to create notification: %v", err)
			}
		}
	}

	return s.GetVoteSummary(ctx, clerkID, recipeID)
}

func (s *RecipeService) UnvoteRecipe(ctx context.Context, clerkID string, recipeID string) (*recipe.VoteSummary, error) {
	userID, err := s.resolveUserID(ctx, clerkID)
	if err != nil {
		return nil, err
	}

	result, err := s.db.Exec(ctx, `DELETE FROM recipe_votes WHERE user_id = $1 AND recipe_id = $2`, userID, recipeID)
	if err != nil {
		return nil, fmt.Errorf("failed to remove vote: %w", err)
	}
	if result.RowsAffected() == 0 {
		return nil, fmt.Errorf("no vote to remove")
	}

	return s.GetVoteSummary(ctx, clerkID, recipeID)
}

func (s *RecipeService) GetVoteSummary(ctx context.Context, clerkID string, recipeID string) (*recipe.VoteSummary, error) {
	summary := &recipe.VoteSummary{RecipeID: recipeID}

	err := s.db.QueryRow(ctx, `
		SELECT
			(SELECT COUNT(*) FROM recipe_votes WHERE recipe_id = $1),
			EXISTS(
				SELECT 1 FROM recipe_votes
				WHERE recipe_id = $1 AND user_id = (SELECT id FROM users WHERE clerk_id = $2)
			)
	`, recipeID, clerkID).Scan(&summary.VoteCount, &summary.HasVoted)
	if err != nil {
		return nil, fmt.Errorf("failed to get vote summary: %w", err)
	}

	return summary, nil
}

func (s *RecipeService) AddFavourite(ctx context.Context, clerkID string, recipeID string) error {
	userID, err := s.resolveUserID(ctx, clerkID)
	if err != nil {
		return err
	}

	result, err := s.db.Exec(ctx, `
		INSERT INTO user_favourites (user_id, recipe_id, created_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (user_id, recipe_id) DO NOTHING
	`, userID, recipeID)
	if err != nil {
		return fmt.Errorf("failed to add favourite: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("already in favourites")
	}
	return nil
}

func (s *RecipeService) RemoveFavourite(ctx context.Context, clerkID string, recipeID string) error {
	userID, err := s.resolveUserID(ctx, clerkID)
	if err != nil {
		return err
	}

	result, err := s.db.Exec(ctx, `DELETE FROM user_favourites WHERE user_id = $1 AND recipe_id = $2`, userID, recipeID)
	if err != nil {
		return fmt.Errorf("failed to remove favourite: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("not in favourites")
	}
	return nil
}

func (s *RecipeService) ListFavourites(ctx context.Context, clerkID string) ([]*recipe.Recipe, error) {
	query := `
	SELECT ` + recipeColumns + `
	FROM user_favourites f
	JOIN recipes r ON r.id = f.recipe_id
	JOIN users u ON u.id = r.author_id
	WHERE f.user_id = (SELECT id FROM users WHERE clerk_id = $1)
	ORDER BY f.created_at DESC
	`

	return s.queryRecipes(ctx, query, clerkID)
}

// AddReview records a rating + comment. One review per user per recipe.
func (s *RecipeService) AddReview(ctx context.Context, clerkID string, recipeID string, req *recipe.AddReviewRequest) (*recipe.Review, error) {
	if req.Rating < 1 || req.Rating > 5 {
		return nil, fmt.Errorf("rating must be between 1 and 5")
	}

	userID, err := s.resolveUserID(ctx, clerkID)
	if err != nil {
		return nil, err
	}

	var authorID uuid.UUID
	err = s.db.QueryRow(ctx, `SELECT author_id FROM recipes WHERE id = $1`, recipeID).Scan(&authorID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("recipe not found")
		}
		return nil, fmt.Errorf("failed to get recipe: %w", err)
	}

	review := &recipe.Review{
		ID:       uuid.New().String(),
		RecipeID: recipeID,
		UserID:   userID.String(),
		Rating:   req.Rating,
		Comment:  req.Comment,
	}

	query := `
	INSERT INTO recipe_reviews (id, recipe_id, user_id, rating, comment, created_at)
	VALUES ($1, $2, $3, $4, $5, NOW())
	ON CONFLICT (recipe_id, user_id)
	DO UPDATE SET rating = EXCLUDED.rating, comment = EXCLUDED.comment
	RETURNING id, created_at
	`

	err = s.db.QueryRow(ctx, query, review.ID, recipeID, userID, req.Rating, req.Comment).Scan(&review.ID, &review.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to add review: %w", err)
	}

	if s.notifService != nil && authorID != userID {
		_, err = s.notifService.CreateNotification(ctx, &notification.CreateNotificationRequest{
			UserID:   authorID,
			Type:     notification.TypeRecipeReview,
			Priority: notification.PriorityNormal,
			ActorID:  &userID,
			Data:     map[string]any{"recipe_id": recipeID, "rating": req.Rating},
		})
		if err != nil {
			log.Printf("AddReview: failed to create notification: %v", err)
		}
	}

	return review, nil
}

// averageRating rounds to one decimal so clients get "4.3" rather than a
// long float tail. Zero reviews average to 0.
func averageRating(reviews []*recipe.Review) float64 {
	if len(reviews) == 0 {
		return 0
	}
	total := 0
	for _, rv := range reviews {
		total += rv.Rating
	}
	avg := float64(total) / float64(len(reviews))
	return math.Round(avg*10) / 10
}

func (s *RecipeService) ListReviews(ctx context.Context, recipeID string) (*recipe.ReviewSummary, error) {
	query := `
	SELECT rv.id, rv.recipe_id, rv.user_id, u.username, rv.rating, COALESCE(rv.comment, ''), rv.created_at
	FROM recipe_reviews rv
	JOIN users u ON u.id = rv.user_id
	WHERE rv.recipe_id = $1
	ORDER BY rv.created_at DESC
	`

	rows, err := s.db.Query(ctx, query, recipeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}
	defer rows.Close()

	reviews := []*recipe.Review{}
	for rows.Next() {
		rv := &recipe.Review{}
		if err := rows.Scan(&rv.ID, &rv.RecipeID, &rv.UserID, &rv.Username, &rv.Rating, &rv.Comment, &rv.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan review: %w", err)
		}
		reviews = append(reviews, rv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}

	return &recipe.ReviewSummary{
		RecipeID:      recipeID,
		AverageRating: averageRating(reviews),
		ReviewCount:   len(reviews),
		Reviews:       reviews,
	}, nil
}
