package models

import (
	"time"
)

// MatchStatus represents the lifecycle state of a match.
// Transitions: scheduled -> in_progress -> completed.
type MatchStatus string

const (
	MatchStatusScheduled  MatchStatus = "scheduled"
	MatchStatusInProgress MatchStatus = "in_progress"
	MatchStatusCompleted  MatchStatus = "completed"
)

// Valid reports whether the status is a known lifecycle state.
func (s MatchStatus) Valid() bool {
	return s == MatchStatusScheduled || s == MatchStatusInProgress || s == MatchStatusCompleted
}

// Match is the local read-model of a match. The match feed owns the
// lifecycle; the betting engine only reacts to it.
type Match struct {
	ID            string      `db:"id"`
	TeamA         string      `db:"team_a"`
	TeamB         string      `db:"team_b"`
	Venue         string      `db:"venue"`
	Status        MatchStatus `db:"status"`
	WinnerOutcome *Outcome    `db:"winner_outcome"`
	KickoffAt     *time.Time  `db:"kickoff_at"`
	SettledAt     *time.Time  `db:"settled_at"`
	CreatedAt     time.Time   `db:"created_at"`
	UpdatedAt     time.Time   `db:"updated_at"`
}

// IsOpenForBetting checks if new wagers may be placed on the match.
// Wagers are accepted only while the match is in progress.
func (m *Match) IsOpenForBetting() bool {
	return m.Status == MatchStatusInProgress
}

// IsCompleted checks if the match has finished.
func (m *Match) IsCompleted() bool {
	return m.Status == MatchStatusCompleted
}

// IsSettled checks if settlement has already been recorded for the match.
func (m *Match) IsSettled() bool {
	return m.SettledAt != nil
}

// CanSettle checks the settlement preconditions: the match must be completed
// with a declared winner. A completed match without a winner is a feed
// inconsistency and must not be guessed at.
func (m *Match) CanSettle() bool {
	return m.IsCompleted() && m.WinnerOutcome != nil && m.WinnerOutcome.Valid()
}
