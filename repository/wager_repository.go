package repository

import (
	"context"
	"fmt"

	"fiveaside/database"
	"fiveaside/models"

	"github.com/jackc/pgx/v5"
)

// WagerRepository implements the WagerRepository interface
type WagerRepository struct {
	q queryable
}

// NewWagerRepository creates a new wager repository
func NewWagerRepository(db *database.DB) *WagerRepository {
	return &WagerRepository{q: db.Pool}
}

// newWagerRepositoryWithTx creates a new wager repository with a transaction
func newWagerRepositoryWithTx(tx queryable) *WagerRepository {
	return &WagerRepository{q: tx}
}

const wagerColumns = `
	id, match_id, owner_id, outcome, stake, effective_odds, potential_payout,
	status, reward, fee, total_return, created_at, settled_at
`

func scanWager(row pgx.Row) (*models.Wager, error) {
	var w models.Wager
	err := row.Scan(
		&w.ID,
		&w.MatchID,
		&w.OwnerID,
		&w.Outcome,
		&w.Stake,
		&w.EffectiveOdds,
		&w.PotentialPayout,
		&w.Status,
		&w.Reward,
		&w.Fee,
		&w.TotalReturn,
		&w.CreatedAt,
		&w.SettledAt,
	)
	if err != nil {
		return nil, err
	}
	return &w, nil
}

func collectWagers(rows pgx.Rows) ([]*models.Wager, error) {
	defer rows.Close()

	var wagers []*models.Wager
	for rows.Next() {
		w, err := scanWager(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan wager: %w", err)
		}
		wagers = append(wagers, w)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate wagers: %w", err)
	}

	return wagers, nil
}

// Create persists a new wager in placed status
func (r *WagerRepository) Create(ctx context.Context, wager *models.Wager) error {
	query := `
		INSERT INTO wagers (match_id, owner_id, outcome, stake, effective_odds, potential_payout, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`

	err := r.q.QueryRow(ctx, query,
		wager.MatchID,
		wager.OwnerID,
		wager.Outcome,
		wager.Stake,
		wager.EffectiveOdds,
		wager.PotentialPayout,
		models.WagerStatusPlaced,
	).Scan(&wager.ID, &wager.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create wager for user %d on match %s: %w", wager.OwnerID, wager.MatchID, err)
	}

	wager.Status = models.WagerStatusPlaced
	return nil
}

// GetByID retrieves a wager by its ID
func (r *WagerRepository) GetByID(ctx context.Context, id int64) (*models.Wager, error) {
	query := `SELECT ` + wagerColumns + ` FROM wagers WHERE id = $1`

	w, err := scanWager(r.q.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get wager %d: %w", id, err)
	}

	return w, nil
}

// GetByMatch returns all wagers for a match regardless of status
func (r *WagerRepository) GetByMatch(ctx context.Context, matchID string) ([]*models.Wager, error) {
	query := `SELECT ` + wagerColumns + ` FROM wagers WHERE match_id = $1 ORDER BY created_at`

	rows, err := r.q.Query(ctx, query, matchID)
	if err != nil {
		return nil, fmt.Errorf("failed to get wagers for match %s: %w", matchID, err)
	}

	return collectWagers(rows)
}

// GetByOwner returns the most recent wagers for a user
func (r *WagerRepository) GetByOwner(ctx context.Context, ownerID int64, limit int) ([]*models.Wager, error) {
	query := `SELECT ` + wagerColumns + ` FROM wagers WHERE owner_id = $1 ORDER BY created_at DESC LIMIT $2`

	rows, err := r.q.Query(ctx, query, ownerID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get wagers for user %d: %w", ownerID, err)
	}

	return collectWagers(rows)
}

// GetPoolByMatch sums stakes per outcome over every wager on the match,
// regardless of status. The pool is always derived from the ledger; it is
// never stored, so it cannot drift. A match with no wagers yields an
// all-zero pool, not an error.
func (r *WagerRepository) GetPoolByMatch(ctx context.Context, matchID string) (models.Pool, error) {
	query := `
		SELECT
			COALESCE(SUM(stake) FILTER (WHERE outcome = 'home'), 0),
			COALESCE(SUM(stake) FILTER (WHERE outcome = 'away'), 0),
			COALESCE(SUM(stake) FILTER (WHERE outcome = 'draw'), 0)
		FROM wagers
		WHERE match_id = $1
	`

	var pool models.Pool
	err := r.q.QueryRow(ctx, query, matchID).Scan(&pool.Home, &pool.Away, &pool.Draw)
	if err != nil {
		return models.Pool{}, fmt.Errorf("failed to get pool for match %s: %w", matchID, err)
	}

	return pool, nil
}

// GetPlacedByMatchForUpdate loads every wager still in placed status for a
// match, row-locked for the duration of the enclosing transaction. Two
// concurrent settlement attempts serialize here: the second blocks until the
// first commits and then sees no placed wagers left.
func (r *WagerRepository) GetPlacedByMatchForUpdate(ctx context.Context, matchID string) ([]*models.Wager, error) {
	query := `SELECT ` + wagerColumns + ` FROM wagers WHERE match_id = $1 AND status = 'placed' ORDER BY id FOR UPDATE`

	rows, err := r.q.Query(ctx, query, matchID)
	if err != nil {
		return nil, fmt.Errorf("failed to lock placed wagers for match %s: %w", matchID, err)
	}

	return collectWagers(rows)
}

// Settle writes a wager's terminal state. The status guard in the WHERE
// clause re-verifies the wager is still placed immediately before mutating;
// a false return means another settlement got there first and the caller
// must not credit anything for this wager.
func (r *WagerRepository) Settle(ctx context.Context, wager *models.Wager) (bool, error) {
	query := `
		UPDATE wagers
		SET status = $1, reward = $2, fee = $3, total_return = $4, settled_at = $5
		WHERE id = $6 AND status = 'placed'
	`

	result, err := r.q.Exec(ctx, query,
		wager.Status,
		wager.Reward,
		wager.Fee,
		wager.TotalReturn,
		wager.SettledAt,
		wager.ID,
	)
	if err != nil {
		return false, fmt.Errorf("failed to settle wager %d: %w", wager.ID, err)
	}

	return result.RowsAffected() == 1, nil
}
