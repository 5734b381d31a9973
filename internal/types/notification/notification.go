package notification

import (
	"time"

	"github.com/google/uuid"
)

type NotificationType string
type NotificationPriority string
type NotificationStatus string

const (
	TypeNewFollower         NotificationType = "new_follower"
	TypeRecipeVote          NotificationType = "recipe_vote"
	TypeRecipeReview        NotificationType = "recipe_review"
	TypeFollowedPosted      NotificationType = "followed_posted_recipe"
	TypeChallengeEndingSoon NotificationType = "challenge_ending_soon"

	PriorityLow    NotificationPriority = "low"
	PriorityNormal NotificationPriority = "normal"
	PriorityHigh   NotificationPriority = "high"
	PriorityUrgent NotificationPriority = "urgent"

	StatusPending NotificationStatus = "pending"
	StatusSent    NotificationStatus = "sent"
	StatusRead    NotificationStatus = "read"
	StatusFailed  NotificationStatus = "failed"
)

type Notification struct {
	ID           uuid.UUID            `json:"id" db:"id"`
	UserID       uuid.UUID            `json:"user_id" db:"user_id"`
	Type         NotificationType     `json:"type" db:"type"`
	Priority     NotificationPriority `json:"priority" db:"priority"`
	Status       NotificationStatus   `json:"status" db:"status"`
	Title        string               `json:"title" db:"title"`
	Body         string               `json:"body" db:"body"`
	Data         map[string]any       `json:"data" db:"data"`
	ActorID      *uuid.UUID           `json:"actor_id,omitempty" db:"actor_id"`
	ScheduledFor *time.Time           `json:"scheduled_for,omitempty" db:"scheduled_for"`
	ActionURL    *string              `json:"action_url,omitempty" db:"action_url"`
	CreatedAt    time.Time            `json:"created_at" db:"created_at"`
	ExpiresAt    *time.Time           `json:"expires_at,omitempty" db:"expires_at"`
	ReadAt       *time.Time           `json:"read_at,omitempty" db:"read_at"`
}

type CreateNotificationRequest struct {
	UserID       uuid.UUID            `json:"user_id"`
	Type         NotificationType     `json:"type"`
	Priority     NotificationPriority `json:"priority"`
	ActorID      *uuid.UUID           `json:"actor_id,omitempty"`
	Data         map[string]any       `json:"data,omitempty"`
	ScheduledFor *time.Time           `json:"scheduled_for,omitempty"`
	ActionURL    *string              `json:"action_url,omitempty"`
	ExpiresAt    *time.Time           `json:"expires_at,omitempty"`
}

type DeviceToken struct {
	Token    string `json:"token" db:"token"`
	Platform string `json:"platform" db:"platform"`
}

type NotificationPreferences struct {
	UserID       uuid.UUID     `json:"user_id" db:"user_id"`
	PushEnabled  bool          `json:"push_enabled" db:"push_enabled"`
	Followers    bool          `json:"followers" db:"followers"`
	Votes        bool          `json:"votes" db:"votes"`
	Reviews      bool          `json:"reviews" db:"reviews"`
	Challenges   bool          `json:"challenges" db:"challenges"`
	DeviceTokens []DeviceToken `json:"device_tokens" db:"device_tokens"`
}

type UpdatePreferencesRequest struct {
	PushEnabled *bool `json:"push_enabled,omitempty"`
	Followers   *bool `json:"followers,omitempty"`
	Votes       *bool `json:"votes,omitempty"`
	Reviews     *bool `json:"reviews,omitempty"`
	Challenges  *bool `json:"challenges,omitempty"`
}

type RegisterDeviceRequest struct {
	Token    string `json:"token" validate:"required"`
	Platform string `json:"platform,omitempty"`
}
