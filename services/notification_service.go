package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"cookNestAPI/internal/types/notification"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type NotificationService struct {
	db         *pgxpool.Pool
	dispatcher *NotificationDispatcher
}

func NewNotificationService(db *pgxpool.Pool) *NotificationService {
	s := &NotificationService{db: db}
	s.dispatcher = NewNotificationDispatcher(s)
	return s
}

// SetPushProvider wires the real FCM client in from main.go. Tests and local
// runs without credentials keep the mock.
func (s *NotificationService) SetPushProvider(provider PushNotificationProvider) {
	s.dispatcher.SetPushProvider(provider)
}

func (s *NotificationService) Stop() {
	s.dispatcher.Stop()
}

// renderNotification produces the title/body for a notification type from its
// data payload.
func renderNotification(t notification.NotificationType, data map[string]any) (string, string) {
	username, _ := data["username"].(string)

	switch t {
	case notification.TypeNewFollower:
		return "New follower", fmt.Sprintf("%s started following you", username)
	case notification.TypeRecipeVote:
		return "Your recipe got a vote", fmt.Sprintf("%s voted for your recipe", username)
	case notification.TypeRecipeReview:
		return "New review", "Someone reviewed your recipe"
	case notification.TypeFollowedPosted:
		title, _ := data["recipe_title"].(string)
		return "New recipe from " + username, fmt.Sprintf("%s published %q", username, title)
	case notification.TypeChallengeEndingSoon:
		title, _ := data["challenge_title"].(string)
		return "Challenge ending soon", fmt.Sprintf("%q closes at the end of its period. Log your dishes!", title)
	default:
		return "CookNest", "You have a new notification"
	}
}

func (s *NotificationService) CreateNotification(ctx context.Context, req *notification.CreateNotificationRequest) (*notification.Notification, error) {
	title, body := renderNotification(req.Type, req.Data)

	dataJSON, err := json.Marshal(req.Data)
	if err != nil {
		return nil, fmt.Errorf("failed to encode notification data: %w", err)
	}

	notif := &notification.Notification{
		ID:           uuid.New(),
		UserID:       req.UserID,
		Type:         req.Type,
		Priority:     req.Priority,
		Status:       notification.StatusPending,
		Title:        title,
		Body:         body,
		Data:         req.Data,
		ActorID:      req.ActorID,
		ScheduledFor: req.ScheduledFor,
		ActionURL:    req.ActionURL,
		ExpiresAt:    req.ExpiresAt,
	}

	query := `
	INSERT INTO notifications (id, user_id, type, priority, status, title, body, data, actor_id, scheduled_for, action_url, expires_at, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, NOW())
	RETURNING created_at
	`

	err = s.db.QueryRow(ctx, query,
		notif.ID, notif.UserID, notif.Type, notif.Priority, notif.Status,
		notif.Title, notif.Body, dataJSON, notif.ActorID, notif.ScheduledFor,
		notif.ActionURL, notif.ExpiresAt,
	).Scan(&notif.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create notification: %w", err)
	}

	// Scheduled notifications wait for the dispatcher's ticker.
	if notif.ScheduledFor == nil {
		prefs, err := s.GetUserPreferencesByUUID(ctx, notif.UserID)
		if err != nil {
			log.Printf("CreateNotification: failed to load preferences for %s: %v", notif.UserID, err)
			return notif, nil
		}
		if s.typeEnabled(prefs, notif.Type) {
			s.dispatcher.DispatchNotification(ctx, notif, prefs)
		} else {
			s.markSkipped(ctx, notif.ID)
		}
	}

	return notif, nil
}

func (s *NotificationService) typeEnabled(prefs *notification.NotificationPreferences, t notification.NotificationType) bool {
	switch t {
	case notification.TypeNewFollower:
		return prefs.Followers
	case notification.TypeRecipeVote:
		return prefs.Votes
	case notification.TypeRecipeReview:
		return prefs.Reviews
	case notification.TypeChallengeEndingSoon:
		return prefs.Challenges
	default:
		return true
	}
}

func (s *NotificationService) markSkipped(ctx context.Context, id uuid.UUID) {
	// Preference-muted notifications still show in the in-app list, they just
	// never go out as a push.
	_, err := s.db.Exec(ctx, `UPDATE notifications SET status = 'sent', sent_at = NOW() WHERE id = $1`, id)
	if err != nil {
		log.Printf("Failed to mark notification %s as skipped: %v", id, err)
	}
}

func (s *NotificationService) GetNotifications(ctx context.Context, clerkID string, limit int) ([]*notification.Notification, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	query := `
	SELECT n.id, n.user_id, n.type, n.priority, n.status, n.title, n.body, n.data,
	       n.actor_id, n.scheduled_for, n.action_url, n.created_at, n.expires_at, n.read_at
	FROM notifications n
	JOIN users u ON u.id = n.user_id
	WHERE u.clerk_id = $1
	  AND (n.expires_at IS NULL OR n.expires_at > NOW())
	ORDER BY n.created_at DESC
	LIMIT $2
	`

	rows, err := s.db.Query(ctx, query, clerkID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get notifications: %w", err)
	}
	defer rows.Close()

	notifications := []*notification.Notification{}
	for rows.Next() {
		n := &notification.Notification{}
		var dataJSON []byte
		err := rows.Scan(
			&n.ID, &n.UserID, &n.Type, &n.Priority, &n.Status, &n.Title, &n.Body, &dataJSON,
			&n.ActorID, &n.ScheduledFor, &n.ActionURL, &n.CreatedAt, &n.ExpiresAt, &n.ReadAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		if len(dataJSON) > 0 {
			if err := json.Unmarshal(dataJSON, &n.Data); err != nil {
				log.Printf("GetNotifications: bad data payload on %s: %v", n.ID, err)
			}
		}
		notifications = append(notifications, n)
	}

	return notifications, rows.Err()
}

func (s *NotificationService) GetUnreadCount(ctx context.Context, clerkID string) (int, error) {
	var count int
	query := `
	SELECT COUNT(*)
	FROM notifications n
	JOIN users u ON u.id = n.user_id
	WHERE u.clerk_id = $1
	  AND n.read_at IS NULL
	  AND (n.expires_at IS NULL OR n.expires_at > NOW())
	`

	err := s.db.QueryRow(ctx, query, clerkID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get unread count: %w", err)
	}
	return count, nil
}

func (s *NotificationService) MarkAsRead(ctx context.Context, notificationID uuid.UUID, clerkID string) error {
	query := `
	UPDATE notifications n
	SET status = 'read', read_at = NOW()
	FROM users u
	WHERE n.id = $1 AND n.user_id = u.id AND u.clerk_id = $2
	`

	result, err := s.db.Exec(ctx, query, notificationID, clerkID)
	if err != nil {
		return fmt.Errorf("failed to mark as read: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("notification not found")
	}
	return nil
}

func (s *NotificationService) MarkAllAsRead(ctx context.Context, clerkID string) (int64, error) {
	query := `
	UPDATE notifications n
	SET status = 'read', read_at = NOW()
	FROM users u
	WHERE n.user_id = u.id AND u.clerk_id = $1 AND n.read_at IS NULL
	`

	result, err := s.db.Exec(ctx, query, clerkID)
	if err != nil {
		return 0, fmt.Errorf("failed to mark all as read: %w", err)
	}
	return result.RowsAffected(), nil
}

func (s *NotificationService) DeleteNotification(ctx context.Context, notificationID uuid.UUID, clerkID string) error {
	query := `
	DELETE FROM notifications n
	USING users u
	WHERE n.id = $1 AND n.user_id = u.id AND u.clerk_id = $2
	`

	result, err := s.db.Exec(ctx, query, notificationID, clerkID)
	if err != nil {
		return fmt.Errorf("failed to delete notification: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("notification not found")
	}
	return nil
}

func (s *NotificationService) GetUserPreferencesByUUID(ctx context.Context, userID uuid.UUID) (*notification.NotificationPreferences, error) {
	prefs := &notification.NotificationPreferences{UserID: userID}

	query := `
	SELECT push_enabled, followers, votes, reviews, challenges
	FROM notification_preferences
	WHERE user_id = $1
	`

	err := s.db.QueryRow(ctx, query, userID).Scan(
		&prefs.PushEnabled, &prefs.Followers, &prefs.Votes, &prefs.Reviews, &prefs.Challenges,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Default: everything on until the user says otherwise.
			prefs.PushEnabled = true
			prefs.Followers = true
			prefs.Votes = true
			prefs.Reviews = true
			prefs.Challenges = true
		} else {
			return nil, fmt.Errorf("failed to get preferences: %w", err)
		}
	}

	tokenRows, err := s.db.Query(ctx, `SELECT token, COALESCE(platform, '') FROM device_tokens WHERE user_id = $1`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get device tokens: %w", err)
	}
	defer tokenRows.Close()

	for tokenRows.Next() {
		var t notification.DeviceToken
		if err := tokenRows.Scan(&t.Token, &t.Platform); err != nil {
			return nil, fmt.Errorf("failed to scan device token: %w", err)
		}
		prefs.DeviceTokens = append(prefs.DeviceTokens, t)
	}

	return prefs, tokenRows.Err()
}

func (s *NotificationService) GetPreferences(ctx context.Context, clerkID string) (*notification.NotificationPreferences, error) {
	var userID uuid.UUID
	err := s.db.QueryRow(ctx, `SELECT id FROM users WHERE clerk_id = $1`, clerkID).Scan(&userID)
	if err != nil {
		return nil, fmt.Errorf("user not found")
	}
	return s.GetUserPreferencesByUUID(ctx, userID)
}

func (s *NotificationService) UpdatePreferences(ctx context.Context, clerkID string, req *notification.UpdatePreferencesRequest) (*notification.NotificationPreferences, error) {
	var userID uuid.UUID
	err := s.db.QueryRow(ctx, `SELECT id FROM users WHERE clerk_id = $1`, clerkID).Scan(&userID)
	if err != nil {
		return nil, fmt.Errorf("user not found")
	}

	current, err := s.GetUserPreferencesByUUID(ctx, userID)
	if err != nil {
		return nil, err
	}

	apply := func(target *bool, v *bool) {
		if v != nil {
			*target = *v
		}
	}
	apply(&current.PushEnabled, req.PushEnabled)
	apply(&current.Followers, req.Followers)
	apply(&current.Votes, req.Votes)
	apply(&current.Reviews, req.Reviews)
	apply(&current.Challenges, req.Challenges)

	query := `
	INSERT INTO notification_preferences (user_id, push_enabled, followers, votes, reviews, challenges)
	VALUES ($1, $2, $3, $4, $5, $6)
	ON CONFLICT (user_id)
	DO UPDATE SET push_enabled = $2, followers = $3, votes = $4, reviews = $5, challenges = $6
	`

	_, err = s.db.Exec(ctx, query, userID, current.PushEnabled, current.Followers, current.Votes, current.Reviews, current.Challenges)
	if err != nil {
		return nil, fmt.Errorf("failed to update preferences: %w", err)
	}

	return current, nil
}

func (s *NotificationService) RegisterDevice(ctx context.Context, clerkID string, req *notification.RegisterDeviceRequest) error {
	query := `
	INSERT INTO device_tokens (user_id, token, platform, registered_at)
	SELECT id, $2, $3, NOW() FROM users WHERE clerk_id = $1
	ON CONFLICT (token) DO UPDATE SET user_id = EXCLUDED.user_id, platform = EXCLUDED.platform, registered_at = NOW()
	`

	result, err := s.db.Exec(ctx, query, clerkID, req.Token, req.Platform)
	if err != nil {
		return fmt.Errorf("failed to register device: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("user not found")
	}
	return nil
}
