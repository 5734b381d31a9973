package utils

import (
	"context"
	"log"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"cookNestAPI/internal/types/notification"
)

// NotificationCreator is the one method the triggers need from the
// notification service; the interface keeps utils free of a services import.
type NotificationCreator interface {
	CreateNotification(ctx context.Context, req *notification.CreateNotificationRequest) (*notification.Notification, error)
}

// AuthorPublishedRecipe fans a "new recipe" notification out to everyone
// following the author. Runs best-effort in the background; a failed
// notification never fails the publish.
func AuthorPublishedRecipe(db *pgxpool.Pool, notifier NotificationCreator, authorID uuid.UUID, authorName string, recipeID string, recipeTitle string) {
	bgCtx := context.Background()

	rows, err := db.Query(bgCtx, `SELECT follower_id FROM follows WHERE followed_id = $1`, authorID)
	if err != nil {
		log.Printf("Failed to get followers for notification: %v", err)
		return
	}
	defer rows.Close()

	for rows.Next() {
		var followerID uuid.UUID
		if err := rows.Scan(&followerID); err != nil {
			continue
		}

		req := &notification.CreateNotificationRequest{
			UserID:   followerID,
			Type:     notification.TypeFollowedPosted,
			Priority: notification.PriorityLow,
			ActorID:  &authorID,
			Data: map[string]any{
				"username":     authorName,
				"recipe_id":    recipeID,
				"recipe_title": recipeTitle,
			},
		}

		if _, err := notifier.CreateNotification(bgCtx, req); err != nil {
			log.Printf("Failed to create notification for follower %s: %v", followerID, err)
		}
	}
}
