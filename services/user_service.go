package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"cookNestAPI/internal/types/notification"
	"cookNestAPI/internal/types/user"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type UserService struct {
	db           *pgxpool.Pool
	notifService *NotificationService
}

func NewUserService(db *pgxpool.Pool, notifService *NotificationService) *UserService {
	return &UserService{
		db:           db,
		notifService: notifService,
	}
}

func (s *UserService) CreateUser(ctx context.Context, req *user.CreateUserRequest) (*user.User, error) {
	u := &user.User{
		ID:          uuid.New().String(),
		ClerkID:     req.ClerkID,
		Email:       req.Email,
		Username:    req.Username,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		ImageURL:    req.ImageURL,
		CurrentPlan: "Free",
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}

	query := `
	INSERT INTO users (id, clerk_id, email, username, first_name, last_name, image_url, current_plan, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	RETURNING id, clerk_id, email, username, first_name, last_name, image_url, email_verified, current_plan, created_at, updated_at
	`

	err := s.db.QueryRow(
		ctx,
		query,
		u.ID,
		u.ClerkID,
		u.Email,
		u.Username,
		u.FirstName,
		u.LastName,
		u.ImageURL,
		u.CurrentPlan,
		u.CreatedAt,
		u.UpdatedAt,
	).Scan(
		&u.ID,
		&u.ClerkID,
		&u.Email,
		&u.Username,
		&u.FirstName,
		&u.LastName,
		&u.ImageURL,
		&u.EmailVerified,
		&u.CurrentPlan,
		&u.CreatedAt,
		&u.UpdatedAt,
	)

	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return u, nil
}

func (s *UserService) GetUserByClerkID(ctx context.Context, clerkID string) (*user.User, error) {
	query := `
	SELECT u.id, u.clerk_id, u.email, u.username, u.first_name, u.last_name, u.image_url,
	       COALESCE(u.bio, ''), u.email_verified, u.current_plan, COALESCE(u.subscription_status, 'inactive'),
	       (SELECT COUNT(*) FROM recipes r WHERE r.author_id = u.id),
	       u.created_at, u.updated_at
	FROM users u
	WHERE u.clerk_id = $1
	`

	u := &user.User{}
	err := s.db.QueryRow(ctx, query, clerkID).Scan(
		&u.ID,
		&u.ClerkID,
		&u.Email,
		&u.Username,
		&u.FirstName,
		&u.LastName,
		&u.ImageURL,
		&u.Bio,
		&u.EmailVerified,
		&u.CurrentPlan,
		&u.SubscriptionStatus,
		&u.RecipeCount,
		&u.CreatedAt,
		&u.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("user not found")
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return u, nil
}

func (s *UserService) UpdateProfileByClerkID(ctx context.Context, clerkID string, req *user.UpdateProfileRequest) (*user.User, error) {
	query := `
	UPDATE users
	SET
		username = COALESCE(NULLIF($2, ''), username),
		first_name = COALESCE(NULLIF($3, ''), first_name),
		last_name = COALESCE(NULLIF($4, ''), last_name),
		image_url = COALESCE(NULLIF($5, ''), image_url),
		bio = COALESCE(NULLIF($6, ''), bio),
		updated_at = NOW()
	WHERE clerk_id = $1
	RETURNING id, clerk_id, email, username, first_name, last_name, image_url, COALESCE(bio, ''), email_verified, current_plan, created_at, updated_at
	`

	u := &user.User{}
	err := s.db.QueryRow(
		ctx,
		query,
		clerkID,
		req.Username,
		req.FirstName,
		req.LastName,
		req.ImageURL,
		req.Bio,
	).Scan(
		&u.ID,
		&u.ClerkID,
		&u.Email,
		&u.Username,
		&u.FirstName,
		&u.LastName,
		&u.ImageURL,
		&u.Bio,
		&u.EmailVerified,
		&u.CurrentPlan,
		&u.CreatedAt,
		&u.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("user not found")
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	return u, nil
}

func (s *UserService) DeleteUserByClerkID(ctx context.Context, clerkID string) error {
	result, err := s.db.Exec(ctx, `DELETE FROM users WHERE clerk_id = $1`, clerkID)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("user not found")
	}
	return nil
}

// MarkEmailVerified flips the verification flag after Clerk confirms the address.
func (s *UserService) MarkEmailVerified(ctx context.Context, clerkID string) error {
	_, err := s.db.Exec(ctx, `UPDATE users SET email_verified = TRUE, updated_at = NOW() WHERE clerk_id = $1`, clerkID)
	if err != nil {
		return fmt.Errorf("failed to mark email verified: %w", err)
	}
	return nil
}

func (s *UserService) UpdateUserFromClerk(ctx context.Context, clerkID string, req *user.UpdateProfileRequest, email string, emailVerified bool) error {
	query := `
	UPDATE users
	SET
		username = COALESCE(NULLIF($2, ''), username),
		first_name = $3,
		last_name = $4,
		image_url = COALESCE(NULLIF($5, ''), image_url),
		email = COALESCE(NULLIF($6, ''), email),
		email_verified = $7,
		updated_at = NOW()
	WHERE clerk_id = $1
	`

	_, err := s.db.Exec(ctx, query, clerkID, req.Username, req.FirstName, req.LastName, req.ImageURL, email, emailVerified)
	if err != nil {
		return fmt.Errorf("failed to sync user from clerk: %w", err)
	}
	return nil
}

func (s *UserService) SearchUsers(ctx context.Context, searchQuery string, limit int) ([]*user.User, error) {
	if limit <= 0 || limit > 50 {
		limit = 20
	}

	query := `
	SELECT id, clerk_id, email, username, first_name, last_name, image_url, COALESCE(bio, ''), email_verified, current_plan, created_at, updated_at
	FROM users
	WHERE username ILIKE '%' || $1 || '%'
	   OR first_name ILIKE '%' || $1 || '%'
	   OR last_name ILIKE '%' || $1 || '%'
	ORDER BY username
	LIMIT $2
	`

	rows, err := s.db.Query(ctx, query, searchQuery, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search users: %w", err)
	}
	defer rows.Close()

	users := []*user.User{}
	for rows.Next() {
		u := &user.User{}
		err := rows.Scan(
			&u.ID,
			&u.ClerkID,
			&u.Email,
			&u.Username,
			&u.FirstName,
			&u.LastName,
			&u.ImageURL,
			&u.Bio,
			&u.EmailVerified,
			&u.CurrentPlan,
			&u.CreatedAt,
			&u.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, u)
	}

	return users, rows.Err()
}

// FollowUser creates a follow edge. Self-follows and duplicates are rejected
// by the unique and check constraints on the follows table; both cases are
// surfaced as domain errors rather than raw pg errors.
func (s *UserService) FollowUser(ctx context.Context, clerkID string, targetUserID string) error {
	var followerID uuid.UUID
	err := s.db.QueryRow(ctx, `SELECT id FROM users WHERE clerk_id = $1`, clerkID).Scan(&followerID)
	if err != nil {
		return fmt.Errorf("user not found")
	}

	targetUUID, err := uuid.Parse(targetUserID)
	if err != nil {
		return fmt.Errorf("invalid user id")
	}

	if followerID == targetUUID {
		return fmt.Errorf("cannot follow yourself")
	}

	var exists bool
	err = s.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE id = $1)`, targetUUID).Scan(&exists)
	if err != nil || !exists {
		return fmt.Errorf("user to follow not found")
	}

	query := `
	INSERT INTO follows (follower_id, followed_id, created_at)
	VALUES ($1, $2, NOW())
	ON CONFLICT (follower_id, followed_id) DO NOTHING
	`

	result, err := s.db.Exec(ctx, query, followerID, targetUUID)
	if err != nil {
		return fmt.Errorf("failed to follow user: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("already following this user")
	}

	// Notify the followed user. Failure here must not fail the follow.
	if s.notifService != nil {
		var followerName string
		if err := s.db.QueryRow(ctx, `SELECT username FROM users WHERE id = $1`, followerID).Scan(&followerName); err == nil {
			_, err = s.notifService.CreateNotification(ctx, &notification.CreateNotificationRequest{
				UserID:   targetUUID,
				Type:     notification.TypeNewFollower,
				Priority: notification.PriorityNormal,
				ActorID:  &followerID,
				Data:     map[string]any{"username": followerName},
			})
			if err != nil {
				log.Printf("FollowUser: failed to create notification: %v", err)
			}
		}
	}

	return nil
}

func (s *UserService) UnfollowUser(ctx context.Context, clerkID string, targetUserID string) error {
	targetUUID, err := uuid.Parse(targetUserID)
	if err != nil {
		return fmt.Errorf("invalid user id")
	}

	query := `
	DELETE FROM follows
	WHERE follower_id = (SELECT id FROM users WHERE clerk_id = $1)
	  AND followed_id = $2
	`

	result, err := s.db.Exec(ctx, query, clerkID, targetUUID)
	if err != nil {
		return fmt.Errorf("failed to unfollow user: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("not following this user")
	}
	return nil
}

func (s *UserService) GetFollowers(ctx context.Context, clerkID string) ([]*user.FollowEntry, error) {
	query := `
	SELECT u.id, u.username, u.image_url, f.created_at
	FROM follows f
	JOIN users u ON u.id = f.follower_id
	WHERE f.followed_id = (SELECT id FROM users WHERE clerk_id = $1)
	ORDER BY f.created_at DESC
	`
	return s.queryFollowEntries(ctx, query, clerkID)
}

func (s *UserService) GetFollowing(ctx context.Context, clerkID string) ([]*user.FollowEntry, error) {
	query := `
	SELECT u.id, u.username, u.image_url, f.created_at
	FROM follows f
	JOIN users u ON u.id = f.followed_id
	WHERE f.follower_id = (SELECT id FROM users WHERE clerk_id = $1)
	ORDER BY f.created_at DESC
	`
	return s.queryFollowEntries(ctx, query, clerkID)
}

func (s *UserService) queryFollowEntries(ctx context.Context, query string, clerkID string) ([]*user.FollowEntry, error) {
	rows, err := s.db.Query(ctx, query, clerkID)
	if err != nil {
		return nil, fmt.Errorf("failed to get follow list: %w", err)
	}
	defer rows.Close()

	entries := []*user.FollowEntry{}
	for rows.Next() {
		e := &user.FollowEntry{}
		if err := rows.Scan(&e.UserID, &e.Username, &e.ImageURL, &e.FollowedAt); err != nil {
			return nil, fmt.Errorf("failed to scan follow entry: %w", err)
		}
		entries = append(entries, e)
	}

	return entries, rows.Err()
}

// GetPublicProfile assembles another member's profile as seen by the caller.
func (s *UserService) GetPublicProfile(ctx context.Context, clerkID string, profileUserID string) (*user.ProfileResponse, error) {
	profileUUID, err := uuid.Parse(profileUserID)
	if err != nil {
		return nil, fmt.Errorf("invalid user id")
	}

	query := `
	SELECT id, clerk_id, email, username, first_name, last_name, image_url, COALESCE(bio, ''), email_verified, current_plan,
	       (SELECT COUNT(*) FROM recipes r WHERE r.author_id = users.id AND r.is_public),
	       created_at, updated_at
	FROM users
	WHERE id = $1
	`

	u := &user.User{}
	err = s.db.QueryRow(ctx, query, profileUUID).Scan(
		&u.ID,
		&u.ClerkID,
		&u.Email,
		&u.Username,
		&u.FirstName,
		&u.LastName,
		&u.ImageURL,
		&u.Bio,
		&u.EmailVerified,
		&u.CurrentPlan,
		&u.RecipeCount,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("user not found")
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	resp := &user.ProfileResponse{User: u}

	err = s.db.QueryRow(ctx, `SELECT COUNT(*) FROM follows WHERE followed_id = $1`, profileUUID).Scan(&resp.FollowerCount)
	if err != nil {
		return nil, fmt.Errorf("failed to count followers: %w", err)
	}

	err = s.db.QueryRow(ctx, `SELECT COUNT(*) FROM follows WHERE follower_id = $1`, profileUUID).Scan(&resp.FollowingCount)
	if err != nil {
		return nil, fmt.Errorf("failed to count following: %w", err)
	}

	err = s.db.QueryRow(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM follows
			WHERE follower_id = (SELECT id FROM users WHERE clerk_id = $1)
			  AND followed_id = $2
		)
	`, clerkID, profileUUID).Scan(&resp.IsFollowing)
	if err != nil {
		// Not fatal for the profile view.
		log.Printf("GetPublicProfile: failed to check follow state: %v", err)
		resp.IsFollowing = false
	}

	return resp, nil
}
