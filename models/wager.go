package models

import (
	"fmt"
	"time"
)

// Outcome is one of the three possible results a wager can be placed against.
type Outcome string

const (
	OutcomeHome Outcome = "home"
	OutcomeAway Outcome = "away"
	OutcomeDraw Outcome = "draw"
)

// Valid reports whether the outcome is one of the three known values.
func (o Outcome) Valid() bool {
	return o == OutcomeHome || o == OutcomeAway || o == OutcomeDraw
}

// ParseOutcome converts an external outcome string into an Outcome.
func ParseOutcome(s string) (Outcome, error) {
	o := Outcome(s)
	if !o.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidOutcome, s)
	}
	return o, nil
}

// WagerStatus represents the state of a wager.
// Transitions: placed -> won | lost. Won and lost are terminal.
type WagerStatus string

const (
	WagerStatusPlaced WagerStatus = "placed"
	WagerStatusWon    WagerStatus = "won"
	WagerStatusLost   WagerStatus = "lost"
)

// Wager represents a single stake on a match outcome.
// Stake is fixed at creation. EffectiveOdds and PotentialPayout are frozen at
// placement time for display; settlement recomputes against final pool state.
type Wager struct {
	ID              int64       `db:"id"`
	MatchID         string      `db:"match_id"`
	OwnerID         int64       `db:"owner_id"`
	Outcome         Outcome     `db:"outcome"`
	Stake           int64       `db:"stake"`
	EffectiveOdds   float64     `db:"effective_odds"`
	PotentialPayout int64       `db:"potential_payout"`
	Status          WagerStatus `db:"status"`
	Reward          int64       `db:"reward"`
	Fee             int64       `db:"fee"`
	TotalReturn     int64       `db:"total_return"`
	CreatedAt       time.Time   `db:"created_at"`
	SettledAt       *time.Time  `db:"settled_at"`
}

// IsSettled checks if the wager has reached a terminal state
func (w *Wager) IsSettled() bool {
	return w.Status == WagerStatusWon || w.Status == WagerStatusLost
}

// MarkWon transitions the wager to won with the given reward and fee.
// TotalReturn is the amount credited back to the owner (stake + reward).
func (w *Wager) MarkWon(reward, fee int64, at time.Time) {
	w.Status = WagerStatusWon
	w.Reward = reward
	w.Fee = fee
	w.TotalReturn = w.Stake + reward
	w.SettledAt = &at
}

// MarkLost transitions the wager to lost. The stake was already debited at
// placement; losing simply means it is not returned.
func (w *Wager) MarkLost(at time.Time) {
	w.Status = WagerStatusLost
	w.Reward = 0
	w.Fee = 0
	w.TotalReturn = 0
	w.SettledAt = &at
}

// Pool holds the amounts staked per outcome for a single match. It is always
// derived by summing wagers, never stored on its own.
type Pool struct {
	Home int64
	Away int64
	Draw int64
}

// Total returns the combined amount staked across all outcomes.
func (p Pool) Total() int64 {
	return p.Home + p.Away + p.Draw
}

// ForOutcome returns the amount staked on a single outcome.
func (p Pool) ForOutcome(o Outcome) int64 {
	switch o {
	case OutcomeHome:
		return p.Home
	case OutcomeAway:
		return p.Away
	case OutcomeDraw:
		return p.Draw
	}
	return 0
}

// LosingTotal returns the combined pool of the two outcomes other than winner.
func (p Pool) LosingTotal(winner Outcome) int64 {
	return p.Total() - p.ForOutcome(winner)
}
