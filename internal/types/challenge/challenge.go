package challenge

import (
	"time"
)

type Recurrence string

const (
	RecurrenceWeekly  Recurrence = "weekly"
	RecurrenceMonthly Recurrence = "monthly"
	RecurrenceAnnual  Recurrence = "annual"
)

// Template is a static challenge definition. The catalog is fixed at startup
// and never mutated; live challenges are derived from it on every request.
type Template struct {
	Title             string     `json:"title"`
	Description       string     `json:"description"`
	ParticipantsCount int        `json:"participants_count"`
	Difficulty        string     `json:"difficulty"`
	Recurrence        Recurrence `json:"recurrence"`
}

// LiveChallenge is a Template plus the end of its current recurrence period.
// It is valid only for the instant it was computed and is never persisted.
type LiveChallenge struct {
	Template
	EndDate time.Time `json:"end_date"`
}

// Participation records that a user joined a specific cycle of a challenge.
// The same user may rejoin the same challenge in a later period.
type Participation struct {
	ID             string    `json:"id" db:"id"`
	UserID         string    `json:"user_id" db:"user_id"`
	ChallengeTitle string    `json:"challenge_title" db:"challenge_title"`
	PeriodEnd      time.Time `json:"period_end" db:"period_end"`
	JoinedAt       time.Time `json:"joined_at" db:"joined_at"`
}

type JoinChallengeRequest struct {
	Title string `json:"title"`
}
