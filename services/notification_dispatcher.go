package services

import (
	"context"
	"log"
	"sync"
	"time"

	"cookNestAPI/internal/types/notification"

	"github.com/google/uuid"
)

type PushNotificationProvider interface {
	SendPush(ctx context.Context, tokens []notification.DeviceToken, title, body string, data map[string]any) error
}

// NotificationDispatcher moves pending notifications out to devices. All work
// is in-process: a small worker pool drains the job queue, one ticker promotes
// scheduled notifications and one ticker deletes expired ones.
type NotificationDispatcher struct {
	service      *NotificationService
	pushProvider PushNotificationProvider
	workers      int
	jobQueue     chan *DispatchJob
	stopChan     chan struct{}
	wg           sync.WaitGroup
}

type DispatchJob struct {
	Notification *notification.Notification
	Preferences  *notification.NotificationPreferences
}

func NewNotificationDispatcher(service *NotificationService) *NotificationDispatcher {
	dispatcher := &NotificationDispatcher{
		service:      service,
		pushProvider: &MockPushProvider{},
		workers:      5,
		jobQueue:     make(chan *DispatchJob, 100),
		stopChan:     make(chan struct{}),
	}

	dispatcher.startWorkers()

	go dispatcher.processScheduledNotifications()
	go dispatcher.cleanupExpiredNotifications()

	return dispatcher
}

func (d *NotificationDispatcher) SetPushProvider(provider PushNotificationProvider) {
	d.pushProvider = provider
}

func (d *NotificationDispatcher) startWorkers() {
	for i := 0; i < d.workers; i++ {
		d.wg.Add(1)
		go d.worker()
	}
}

func (d *NotificationDispatcher) worker() {
	defer d.wg.Done()
	for {
		select {
		case job := <-d.jobQueue:
			d.processJob(job)
		case <-d.stopChan:
			return
		}
	}
}

func (d *NotificationDispatcher) processJob(job *DispatchJob) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	notif := job.Notification
	prefs := job.Preferences

	if prefs.PushEnabled && len(prefs.DeviceTokens) > 0 && d.pushProvider != nil {
		err := d.pushProvider.SendPush(ctx, prefs.DeviceTokens, notif.Title, notif.Body, notif.Data)
		if err != nil {
			log.Printf("Push failed for user %s: %v", notif.UserID, err)
			d.markAsFailed(ctx, notif.ID, err)
			return
		}
	}

	d.markAsSent(ctx, notif.ID)
}

// DispatchNotification queues a notification for delivery. A full queue drops
// the push after 5 seconds; the row stays pending and the scheduled-ticker
// will retry it.
func (d *NotificationDispatcher) DispatchNotification(ctx context.Context, notif *notification.Notification, prefs *notification.NotificationPreferences) {
	job := &DispatchJob{
		Notification: notif,
		Preferences:  prefs,
	}

	select {
	case d.jobQueue <- job:
	case <-time.After(5 * time.Second):
		log.Printf("Failed to queue notification %s: queue full", notif.ID)
	}
}

func (d *NotificationDispatcher) processScheduledNotifications() {
	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			d.processDueNotifications()
		case <-d.stopChan:
			return
		}
	}
}

func (d *NotificationDispatcher) processDueNotifications() {
	ctx := context.Background()

	query := `
		SELECT id, user_id, type, priority, status, title, body,
		       actor_id, scheduled_for, action_url, created_at, expires_at
		FROM notifications
		WHERE status = 'pending'
		  AND scheduled_for IS NOT NULL
		  AND scheduled_for <= NOW()
		  AND (expires_at IS NULL OR expires_at > NOW())
		LIMIT 100
	`

	rows, err := d.service.db.Query(ctx, query)
	if err != nil {
		log.Printf("Failed to fetch scheduled notifications: %v", err)
		return
	}
	defer rows.Close()

	due := []*notification.Notification{}
	for rows.Next() {
		notif := &notification.Notification{}
		err := rows.Scan(
			&notif.ID, &notif.UserID, &notif.Type, &notif.Priority, &notif.Status,
			&notif.Title, &notif.Body, &notif.ActorID, &notif.ScheduledFor,
			&notif.ActionURL, &notif.CreatedAt, &notif.ExpiresAt,
		)
		if err != nil {
			log.Printf("Failed to scan scheduled notification: %v", err)
			continue
		}
		due = append(due, notif)
	}
	rows.Close()

	for _, notif := range due {
		prefs, err := d.service.GetUserPreferencesByUUID(ctx, notif.UserID)
		if err != nil {
			log.Printf("Failed to get preferences for user %s: %v", notif.UserID, err)
			continue
		}
		d.DispatchNotification(ctx, notif, prefs)
	}

	if len(due) > 0 {
		log.Printf("Processed %d scheduled notifications", len(due))
	}
}

func (d *NotificationDispatcher) cleanupExpiredNotifications() {
	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			d.performCleanup()
		case <-d.stopChan:
			return
		}
	}
}

func (d *NotificationDispatcher) performCleanup() {
	ctx := context.Background()

	result, err := d.service.db.Exec(ctx, `
		DELETE FROM notifications
		WHERE expires_at < NOW()
		  AND status IN ('sent', 'read')
	`)
	if err != nil {
		log.Printf("Failed to cleanup expired notifications: %v", err)
		return
	}
	if n := result.RowsAffected(); n > 0 {
		log.Printf("Cleaned up %d expired notifications", n)
	}

	result, err = d.service.db.Exec(ctx, `
		DELETE FROM notifications
		WHERE read_at < NOW() - INTERVAL '90 days'
		  AND status = 'read'
	`)
	if err != nil {
		log.Printf("Failed to cleanup old read notifications: %v", err)
		return
	}
	if n := result.RowsAffected(); n > 0 {
		log.Printf("Cleaned up %d old read notifications", n)
	}
}

func (d *NotificationDispatcher) markAsSent(ctx context.Context, notificationID uuid.UUID) {
	_, err := d.service.db.Exec(ctx, `
		UPDATE notifications SET status = 'sent', sent_at = NOW() WHERE id = $1
	`, notificationID)
	if err != nil {
		log.Printf("Failed to mark notification %s as sent: %v", notificationID, err)
	}
}

func (d *NotificationDispatcher) markAsFailed(ctx context.Context, notificationID uuid.UUID, cause error) {
	_, err := d.service.db.Exec(ctx, `
		UPDATE notifications
		SET status = 'failed', failed_at = NOW(), failure_reason = $2, retry_count = retry_count + 1
		WHERE id = $1
	`, notificationID, cause.Error())
	if err != nil {
		log.Printf("Failed to mark notification %s as failed: %v", notificationID, err)
	}

	// High-priority pushes get up to 3 retries, 5 minutes apart.
	var retryCount int
	var priority notification.NotificationPriority
	d.service.db.QueryRow(ctx, `SELECT retry_count, priority FROM notifications WHERE id = $1`, notificationID).Scan(&retryCount, &priority)

	if retryCount < 3 && (priority == notification.PriorityHigh || priority == notification.PriorityUrgent) {
		retryTime := time.Now().Add(5 * time.Minute)
		d.service.db.Exec(ctx, `UPDATE notifications SET scheduled_for = $2, status = 'pending' WHERE id = $1`, notificationID, retryTime)
		log.Printf("Scheduled retry for notification %s at %s", notificationID, retryTime)
	}
}

func (d *NotificationDispatcher) Stop() {
	log.Println("Stopping notification dispatcher...")
	close(d.stopChan)
	d.wg.Wait()
	log.Println("Notification dispatcher stopped")
}

// MockPushProvider is the default provider until main wires FCM in.
type MockPushProvider struct{}

func (m *MockPushProvider) SendPush(ctx context.Context, tokens []notification.DeviceToken, title, body string, data map[string]any) error {
	log.Printf("MOCK PUSH: Sending to %d devices: %s - %s", len(tokens), title, body)
	return nil
}
