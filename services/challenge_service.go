package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"cookNestAPI/internal/types/challenge"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// challengeCatalog is the fixed set of community challenges. Order matters:
// clients render the list as-is.
var challengeCatalog = []challenge.Template{
	{
		Title:             "Global Cuisine - Weekly",
		Description:       "Cook dishes from the most countries this week!",
		ParticipantsCount: 12,
		Difficulty:        "Intermediate",
		Recurrence:        challenge.RecurrenceWeekly,
	},
	{
		Title:             "Global Cuisine - Monthly",
		Description:       "Cook and log dishes from the most countries this month!",
		ParticipantsCount: 45,
		Difficulty:        "Advanced",
		Recurrence:        challenge.RecurrenceMonthly,
	},
	{
		Title:             "Global Cuisine - Annually",
		Description:       "Cook and log dishes from the most countries this year!",
		ParticipantsCount: 45,
		Difficulty:        "Advanced",
		Recurrence:        challenge.RecurrenceAnnual,
	},
	{
		Title:             "Recipe Master",
		Description:       "Upload the most recipes this week and earn the Recipe Master title.",
		ParticipantsCount: 30,
		Difficulty:        "Beginner",
		Recurrence:        challenge.RecurrenceWeekly,
	},
	{
		Title:             "Recipe Sharer",
		Description:       "Share the most publicly viewable recipes in a week!",
		ParticipantsCount: 18,
		Difficulty:        "All Levels",
		Recurrence:        challenge.RecurrenceWeekly,
	},
	{
		Title:             "Ultimate Chef",
		Description:       "Cook the most unique dishes this year!",
		ParticipantsCount: 5,
		Difficulty:        "Expert",
		Recurrence:        challenge.RecurrenceAnnual,
	},
}

type ChallengeService struct {
	db        *pgxpool.Pool
	templates []challenge.Template
	now       func() time.Time
}

func NewChallengeService(db *pgxpool.Pool) *ChallengeService {
	return &ChallengeService{
		db:        db,
		templates: challengeCatalog,
		now:       time.Now,
	}
}

// SetClock overrides the time source. Tests use this to pin "now".
func (s *ChallengeService) SetClock(now func() time.Time) {
	s.now = now
}

// PeriodEnd returns the inclusive end of the recurrence period containing ref.
// All arithmetic is done in UTC.
//
// weekly periods run Monday through Sunday and close at Sunday 23:59:59.
// monthly periods close on the last day of ref's month at 23:59:59.
// annual periods close on December 31 of ref's year at 23:59:59, even when
// ref already is that instant.
// Any other recurrence tag falls back to ref + 7 days with the time of day
// left untouched. That is deliberate: an unknown tag degrades, it never fails.
func PeriodEnd(recurrence challenge.Recurrence, ref time.Time) time.Time {
	ref = ref.UTC()

	switch recurrence {
	case challenge.RecurrenceWeekly:
		// time.Weekday counts Sunday as 0; the week here is Monday-anchored.
		daysAhead := 6 - (int(ref.Weekday())+6)%7
		end := ref.AddDate(0, 0, daysAhead)
		return time.Date(end.Year(), end.Month(), end.Day(), 23, 59, 59, 0, time.UTC)
	case challenge.RecurrenceMonthly:
		// time.Date normalizes month 13 to January of the next year, so the
		// December rollover needs no special case.
		firstOfNext := time.Date(ref.Year(), ref.Month()+1, 1, 0, 0, 0, 0, time.UTC)
		end := firstOfNext.Add(-time.Second)
		return time.Date(end.Year(), end.Month(), end.Day(), 23, 59, 59, 0, time.UTC)
	case challenge.RecurrenceAnnual:
		return time.Date(ref.Year(), time.December, 31, 23, 59, 59, 0, time.UTC)
	default:
		return ref.AddDate(0, 0, 7)
	}
}

// CurrentChallenges materializes the catalog against a single sampled "now",
// so every entry in one batch shares the same reference instant. The result
// is rebuilt on every call; nothing is cached, because a cached list would
// keep serving period ends that have already passed.
func (s *ChallengeService) CurrentChallenges() []challenge.LiveChallenge {
	now := s.now().UTC().Truncate(time.Second)

	live := make([]challenge.LiveChallenge, 0, len(s.templates))
	for _, tmpl := range s.templates {
		live = append(live, challenge.LiveChallenge{
			Template: tmpl,
			EndDate:  PeriodEnd(tmpl.Recurrence, now),
		})
	}
	return live
}

// findTemplate looks a template up by title. Titles are unique in the catalog.
func (s *ChallengeService) findTemplate(title string) (challenge.Template, bool) {
	for _, tmpl := range s.templates {
		if tmpl.Title == title {
			return tmpl, true
		}
	}
	return challenge.Template{}, false
}

// JoinChallenge enrolls a user in the current cycle of a challenge. The
// participation row is keyed by the computed period end, so joining the same
// challenge again next week/month/year creates a fresh row.
func (s *ChallengeService) JoinChallenge(ctx context.Context, clerkID string, title string) (*challenge.Participation, error) {
	tmpl, ok := s.findTemplate(title)
	if !ok {
		return nil, fmt.Errorf("challenge not found")
	}

	var userID uuid.UUID
	var plan string
	err := s.db.QueryRow(ctx, `SELECT id, current_plan FROM users WHERE clerk_id = $1`, clerkID).Scan(&userID, &plan)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("user not found")
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if !CanJoinChallenges(plan) {
		return nil, fmt.Errorf("free members can view challenges but cannot join")
	}

	now := s.now().UTC().Truncate(time.Second)
	periodEnd := PeriodEnd(tmpl.Recurrence, now)

	p := &challenge.Participation{
		ID:             uuid.New().String(),
		UserID:         userID.String(),
		ChallengeTitle: tmpl.Title,
		PeriodEnd:      periodEnd,
		JoinedAt:       now,
	}

	query := `
	INSERT INTO challenge_participants (id, user_id, challenge_title, period_end, joined_at)
	VALUES ($1, $2, $3, $4, $5)
	ON CONFLICT (user_id, challenge_title, period_end) DO NOTHING
	RETURNING id
	`

	err = s.db.QueryRow(ctx, query, p.ID, p.UserID, p.ChallengeTitle, p.PeriodEnd, p.JoinedAt).Scan(&p.ID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("already joined this challenge")
		}
		return nil, fmt.Errorf("failed to join challenge: %w", err)
	}

	log.Printf("ChallengeService: user %s joined %q until %s", clerkID, tmpl.Title, periodEnd.Format(time.RFC3339))
	return p, nil
}

// GetParticipants returns everyone enrolled in the current cycle of a challenge.
func (s *ChallengeService) GetParticipants(ctx context.Context, title string) ([]challenge.Participation, error) {
	tmpl, ok := s.findTemplate(title)
	if !ok {
		return nil, fmt.Errorf("challenge not found")
	}

	periodEnd := PeriodEnd(tmpl.Recurrence, s.now().UTC().Truncate(time.Second))

	rows, err := s.db.Query(ctx, `
		SELECT id, user_id, challenge_title, period_end, joined_at
		FROM challenge_participants
		WHERE challenge_title = $1 AND period_end = $2
		ORDER BY joined_at ASC
	`, tmpl.Title, periodEnd)
	if err != nil {
		return nil, fmt.Errorf("failed to get participants: %w", err)
	}
	defer rows.Close()

	participants := []challenge.Participation{}
	for rows.Next() {
		var p challenge.Participation
		if err := rows.Scan(&p.ID, &p.UserID, &p.ChallengeTitle, &p.PeriodEnd, &p.JoinedAt); err != nil {
			return nil, fmt.Errorf("failed to scan participant: %w", err)
		}
		participants = append(participants, p)
	}

	return participants, rows.Err()
}
