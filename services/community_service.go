package services

import (
	"context"
	"fmt"
	"time"

	"cookNestAPI/utils"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Contributor struct {
	UserID      uuid.UUID `json:"user_id"`
	Username    string    `json:"username"`
	ImageURL    string    `json:"image_url,omitempty"`
	RecipeCount int       `json:"recipe_count"`
	VoteCount   int       `json:"vote_count"`
	ReviewCount int       `json:"review_count"`
	Score       float64   `json:"score"`
}

type CommunityStats struct {
	TotalUsers     int       `json:"total_users"`
	TotalRecipes   int       `json:"total_recipes"`
	PublicRecipes  int       `json:"public_recipes"`
	TotalVotes     int       `json:"total_votes"`
	TotalReviews   int       `json:"total_reviews"`
	NewRecipesWeek int       `json:"new_recipes_week"`
	GeneratedAt    time.Time `json:"generated_at"`
}

type CommunityService struct {
	db *pgxpool.Pool
}

func NewCommunityService(db *pgxpool.Pool) *CommunityService {
	return &CommunityService{db: db}
}

// TopContributors ranks members by their public activity. The score blends
// recipes, received votes and written reviews; the SQL handles the counting
// and the ranking formula lives in utils so it is testable on its own.
func (s *CommunityService) TopContributors(ctx context.Context, limit int) ([]Contributor, error) {
	if limit <= 0 || limit > 50 {
		limit = 10
	}

	query := `
		SELECT u.id, u.username, COALESCE(u.image_url, ''),
		       COUNT(DISTINCT r.id) AS recipe_count,
		       COUNT(DISTINCT v.user_id || v.recipe_id) AS vote_count,
		       COUNT(DISTINCT rv.id) AS review_count
		FROM users u
		LEFT JOIN recipes r ON r.author_id = u.id AND r.is_public
		LEFT JOIN recipe_votes v ON v.recipe_id = r.id
		LEFT JOIN recipe_reviews rv ON rv.user_id = u.id
		GROUP BY u.id, u.username, u.image_url
		HAVING COUNT(DISTINCT r.id) > 0 OR COUNT(DISTINCT rv.id) > 0
	`

	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query contributors: %w", err)
	}
	defer rows.Close()

	contributors := []Contributor{}
	for rows.Next() {
		var c Contributor
		if err := rows.Scan(&c.UserID, &c.Username, &c.ImageURL, &c.RecipeCount, &c.VoteCount, &c.ReviewCount); err != nil {
			return nil, fmt.Errorf("failed to scan contributor: %w", err)
		}
		c.Score = utils.CalculateContributorScore(c.RecipeCount, c.VoteCount, c.ReviewCount)
		contributors = append(contributors, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Sort by score in Go; the score function is not expressible in the query.
	for i := 1; i < len(contributors); i++ {
		for j := i; j > 0 && contributors[j].Score > contributors[j-1].Score; j-- {
			contributors[j], contributors[j-1] = contributors[j-1], contributors[j]
		}
	}
	if len(contributors) > limit {
		contributors = contributors[:limit]
	}

	return contributors, nil
}

func (s *CommunityService) GetCommunityStats(ctx context.Context) (*CommunityStats, error) {
	stats := &CommunityStats{GeneratedAt: time.Now().UTC()}

	query := `
		SELECT
			(SELECT COUNT(*) FROM users),
			(SELECT COUNT(*) FROM recipes),
			(SELECT COUNT(*) FROM recipes WHERE is_public),
			(SELECT COUNT(*) FROM recipe_votes),
			(SELECT COUNT(*) FROM recipe_reviews),
			(SELECT COUNT(*) FROM recipes WHERE created_at > NOW() - INTERVAL '7 days')
	`

	err := s.db.QueryRow(ctx, query).Scan(
		&stats.TotalUsers,
		&stats.TotalRecipes,
		&stats.PublicRecipes,
		&stats.TotalVotes,
		&stats.TotalReviews,
		&stats.NewRecipesWeek,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get community stats: %w", err)
	}

	return stats, nil
}
