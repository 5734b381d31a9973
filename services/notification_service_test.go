package services

import (
	"strings"
	"testing"

	"cookNestAPI/internal/types/notification"
)

func TestRenderNotification(t *testing.T) {
	title, body := renderNotification(notification.TypeNewFollower, map[string]any{"username": "sous"})
	if title != "New follower" || !strings.Contains(body, "sous") {
		t.Errorf("unexpected render: %q / %q", title, body)
	}

	title, body = renderNotification(notification.TypeFollowedPosted, map[string]any{
		"username":     "chef",
		"recipe_title": "Pho",
	})
	if !strings.Contains(title, "chef") || !strings.Contains(body, "Pho") {
		t.Errorf("unexpected render: %q / %q", title, body)
	}

	title, _ = renderNotification(notification.TypeChallengeEndingSoon, map[string]any{
		"challenge_title": "Global Cuisine - Weekly",
	})
	if title != "Challenge ending soon" {
		t.Errorf("unexpected title: %q", title)
	}

	// Unknown types fall back to a generic message rather than failing.
	title, body = renderNotification(notification.NotificationType("mystery"), nil)
	if title == "" || body == "" {
		t.Error("fallback render should never be empty")
	}
}

func TestTypeEnabledRespectsPreferences(t *testing.T) {
	s := &NotificationService{}
	prefs := &notification.NotificationPreferences{
		PushEnabled: true,
		Followers:   false,
		Votes:       true,
		Reviews:     true,
		Challenges:  true,
	}

	if s.typeEnabled(prefs, notification.TypeNewFollower) {
		t.Error("follower notifications should be off")
	}
	if !s.typeEnabled(prefs, notification.TypeRecipeVote) {
		t.Error("vote notifications should be on")
	}
	if !s.typeEnabled(prefs, notification.TypeChallengeEndingSoon) {
		t.Error("challenge notifications should be on")
	}
}
