package services

import (
	"context"
	"log"
	"time"

	"cookNestAPI/internal/types/notification"

	"github.com/google/uuid"
)

// ChallengeReminder nudges participants shortly before their challenge's
// period closes. It recomputes period ends from the engine on every tick, so
// reminders always track the live window rather than a stored copy.
type ChallengeReminder struct {
	challenges *ChallengeService
	notifs     *NotificationService
	interval   time.Duration
	window     time.Duration
	stopChan   chan struct{}
}

func NewChallengeReminder(challenges *ChallengeService, notifs *NotificationService) *ChallengeReminder {
	return &ChallengeReminder{
		challenges: challenges,
		notifs:     notifs,
		interval:   time.Hour,
		window:     24 * time.Hour,
		stopChan:   make(chan struct{}),
	}
}

func (r *ChallengeReminder) Start() {
	go func() {
		ticker := time.NewTicker(r.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				r.remindEndingChallenges()
			case <-r.stopChan:
				return
			}
		}
	}()
}

func (r *ChallengeReminder) Stop() {
	close(r.stopChan)
}

func (r *ChallengeReminder) remindEndingChallenges() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	now := time.Now().UTC()
	for _, live := range r.challenges.CurrentChallenges() {
		remaining := live.EndDate.Sub(now)
		if remaining < 0 || remaining > r.window {
			continue
		}
		r.remindParticipants(ctx, live.Title, live.EndDate)
	}
}

func (r *ChallengeReminder) remindParticipants(ctx context.Context, title string, periodEnd time.Time) {
	// One reminder per participant per cycle: skip anyone who already has a
	// reminder for this challenge in this period.
	query := `
		SELECT cp.user_id
		FROM challenge_participants cp
		WHERE cp.challenge_title = $1 AND cp.period_end = $2
		  AND NOT EXISTS (
			SELECT 1 FROM notifications n
			WHERE n.user_id = cp.user_id
			  AND n.type = 'challenge_ending_soon'
			  AND n.data->>'challenge_title' = $1
			  AND n.created_at > $2 - INTERVAL '7 days'
		  )
	`

	rows, err := r.notifs.db.Query(ctx, query, title, periodEnd)
	if err != nil {
		log.Printf("ChallengeReminder: failed to list participants for %q: %v", title, err)
		return
	}
	defer rows.Close()

	userIDs := []uuid.UUID{}
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			continue
		}
		userIDs = append(userIDs, id)
	}
	rows.Close()

	expires := periodEnd
	for _, userID := range userIDs {
		_, err := r.notifs.CreateNotification(ctx, &notification.CreateNotificationRequest{
			UserID:   userID,
			Type:     notification.TypeChallengeEndingSoon,
			Priority: notification.PriorityHigh,
			Data: map[string]any{
				"challenge_title": title,
				"period_end":      periodEnd.Format(time.RFC3339),
			},
			ExpiresAt: &expires,
		})
		if err != nil {
			log.Printf("ChallengeReminder: failed to notify %s about %q: %v", userID, title, err)
		}
	}

	if len(userIDs) > 0 {
		log.Printf("ChallengeReminder: reminded %d participants of %q (ends %s)", len(userIDs), title, periodEnd.Format(time.RFC3339))
	}
}
