package repository

import (
	"context"
	"fmt"
	"time"

	"fiveaside/database"
	"fiveaside/models"

	"github.com/jackc/pgx/v5"
)

// MatchRepository implements the MatchRepository interface
type MatchRepository struct {
	q queryable
}

// NewMatchRepository creates a new match repository
func NewMatchRepository(db *database.DB) *MatchRepository {
	return &MatchRepository{q: db.Pool}
}

// newMatchRepositoryWithTx creates a new match repository with a transaction
func newMatchRepositoryWithTx(tx queryable) *MatchRepository {
	return &MatchRepository{q: tx}
}

// GetByID retrieves a match by its feed identifier
func (r *MatchRepository) GetByID(ctx context.Context, id string) (*models.Match, error) {
	query := `
		SELECT id, team_a, team_b, venue, status, winner_outcome, kickoff_at, settled_at, created_at, updated_at
		FROM matches
		WHERE id = $1
	`

	var m models.Match
	err := r.q.QueryRow(ctx, query, id).Scan(
		&m.ID,
		&m.TeamA,
		&m.TeamB,
		&m.Venue,
		&m.Status,
		&m.WinnerOutcome,
		&m.KickoffAt,
		&m.SettledAt,
		&m.CreatedAt,
		&m.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get match %s: %w", id, err)
	}

	return &m, nil
}

// Upsert inserts or refreshes the local read-model row for a match. The feed
// owns the lifecycle, so later events simply overwrite status and winner.
// A match that has already been settled keeps its settled_at marker.
func (r *MatchRepository) Upsert(ctx context.Context, match *models.Match) error {
	query := `
		INSERT INTO matches (id, team_a, team_b, venue, status, winner_outcome, kickoff_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE
		SET team_a = EXCLUDED.team_a,
		    team_b = EXCLUDED.team_b,
		    venue = EXCLUDED.venue,
		    status = EXCLUDED.status,
		    winner_outcome = EXCLUDED.winner_outcome,
		    kickoff_at = EXCLUDED.kickoff_at,
		    updated_at = NOW()
		RETURNING settled_at, created_at, updated_at
	`

	err := r.q.QueryRow(ctx, query,
		match.ID,
		match.TeamA,
		match.TeamB,
		match.Venue,
		match.Status,
		match.WinnerOutcome,
		match.KickoffAt,
	).Scan(&match.SettledAt, &match.CreatedAt, &match.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to upsert match %s: %w", match.ID, err)
	}

	return nil
}

// MarkSettled records that settlement ran for the match
func (r *MatchRepository) MarkSettled(ctx context.Context, id string, at time.Time) error {
	query := `
		UPDATE matches
		SET settled_at = $1, updated_at = NOW()
		WHERE id = $2
	`

	result, err := r.q.Exec(ctx, query, at, id)
	if err != nil {
		return fmt.Errorf("failed to mark match %s settled: %w", id, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("mark settled %s: %w", id, models.ErrMatchNotFound)
	}

	return nil
}

// ListRecent returns the most recently updated matches
func (r *MatchRepository) ListRecent(ctx context.Context, limit int) ([]*models.Match, error) {
	query := `
		SELECT id, team_a, team_b, venue, status, winner_outcome, kickoff_at, settled_at, created_at, updated_at
		FROM matches
		ORDER BY updated_at DESC
		LIMIT $1
	`

	rows, err := r.q.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches: %w", err)
	}
	defer rows.Close()

	var matches []*models.Match
	for rows.Next() {
		var m models.Match
		err := rows.Scan(
			&m.ID,
			&m.TeamA,
			&m.TeamB,
			&m.Venue,
			&m.Status,
			&m.WinnerOutcome,
			&m.KickoffAt,
			&m.SettledAt,
			&m.CreatedAt,
			&m.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan match: %w", err)
		}
		matches = append(matches, &m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate matches: %w", err)
	}

	return matches, nil
}
