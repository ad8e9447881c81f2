package service

import (
	"context"
	"time"

	"fiveaside/events"
	"fiveaside/models"
)

// UserRepository defines the interface for user data access
type UserRepository interface {
	// GetByID retrieves a user by ID
	GetByID(ctx context.Context, id int64) (*models.User, error)

	// GetByUsername retrieves a user by username
	GetByUsername(ctx context.Context, username string) (*models.User, error)

	// Create creates a new user with the initial balance
	Create(ctx context.Context, username string, initialBalance int64) (*models.User, error)

	// Credit adds to a user's balance atomically (relative adjustment)
	Credit(ctx context.Context, id int64, amount int64) error

	// Debit deducts from a user's balance atomically, failing if insufficient funds
	Debit(ctx context.Context, id int64, amount int64) error
}

// WagerRepository defines the interface for wager data access
type WagerRepository interface {
	// Create persists a new wager in placed status
	Create(ctx context.Context, wager *models.Wager) error

	// GetByID retrieves a wager by its ID
	GetByID(ctx context.Context, id int64) (*models.Wager, error)

	// GetByMatch returns all wagers for a match regardless of status
	GetByMatch(ctx context.Context, matchID string) ([]*models.Wager, error)

	// GetByOwner returns the most recent wagers for a user
	GetByOwner(ctx context.Context, ownerID int64, limit int) ([]*models.Wager, error)

	// GetPoolByMatch derives the per-outcome pool by summing wagers
	GetPoolByMatch(ctx context.Context, matchID string) (models.Pool, error)

	// GetPlacedByMatchForUpdate row-locks every placed wager for a match
	GetPlacedByMatchForUpdate(ctx context.Context, matchID string) ([]*models.Wager, error)

	// Settle conditionally writes a wager's terminal state; false means the
	// wager was no longer in placed status
	Settle(ctx context.Context, wager *models.Wager) (bool, error)
}

// MatchRepository defines the interface for the local match read-model
type MatchRepository interface {
	// GetByID retrieves a match by its feed identifier
	GetByID(ctx context.Context, id string) (*models.Match, error)

	// Upsert inserts or refreshes a match from the feed
	Upsert(ctx context.Context, match *models.Match) error

	// MarkSettled records that settlement ran for the match
	MarkSettled(ctx context.Context, id string, at time.Time) error

	// ListRecent returns the most recently updated matches
	ListRecent(ctx context.Context, limit int) ([]*models.Match, error)
}

// BalanceHistoryRepository defines the interface for balance history tracking
type BalanceHistoryRepository interface {
	// Record creates a new balance history entry
	Record(ctx context.Context, history *models.BalanceHistory) error

	// GetByUser returns balance history for a specific user
	GetByUser(ctx context.Context, userID int64, limit int) ([]*models.BalanceHistory, error)
}

// EventPublisher defines the interface for publishing events
type EventPublisher interface {
	Publish(event events.Event)
}

// PoolCache defines a display-only cache for pool totals. Implementations
// must be safe to skip entirely; the betting paths that matter always read
// the ledger inside their transaction.
type PoolCache interface {
	// Get returns a cached pool and whether it was present
	Get(ctx context.Context, matchID string) (models.Pool, bool)

	// Set caches a pool with the implementation's TTL
	Set(ctx context.Context, matchID string, pool models.Pool)

	// Invalidate drops the cached pool after a write
	Invalidate(ctx context.Context, matchID string)
}

// BettingService defines the interface for the wager ledger operations
type BettingService interface {
	// PlaceWager validates, persists and debits a new wager in one transaction
	PlaceWager(ctx context.Context, matchID string, ownerID int64, outcome models.Outcome, stake int64) (*models.Wager, error)

	// GetPool returns the current per-outcome totals for a match
	GetPool(ctx context.Context, matchID string) (models.Pool, error)

	// PreviewPayout computes the payout a hypothetical stake would receive
	// against the current pool, and the implied odds
	PreviewPayout(ctx context.Context, matchID string, outcome models.Outcome, stake int64) (int64, float64, error)

	// GetWagersByUser returns the most recent wagers for a user
	GetWagersByUser(ctx context.Context, ownerID int64, limit int) ([]*models.Wager, error)

	// GetWagersByMatch returns all wagers for a match
	GetWagersByMatch(ctx context.Context, matchID string) ([]*models.Wager, error)
}

// SettlementService defines the interface for resolving completed matches
type SettlementService interface {
	// Settle resolves every placed wager for a completed match exactly once
	Settle(ctx context.Context, matchID string, winner models.Outcome) (*models.SettlementResult, error)
}

// MatchService defines the interface for maintaining the match read-model
type MatchService interface {
	// RecordMatchUpdate upserts a match from a feed event
	RecordMatchUpdate(ctx context.Context, match *models.Match) error

	// GetMatch retrieves a match by ID
	GetMatch(ctx context.Context, id string) (*models.Match, error)

	// ListMatches returns the most recently updated matches
	ListMatches(ctx context.Context, limit int) ([]*models.Match, error)
}

// UserService defines the interface for user operations
type UserService interface {
	// GetOrCreateUser retrieves an existing user or creates a new one with
	// the configured starting balance
	GetOrCreateUser(ctx context.Context, username string) (*models.User, error)

	// GetUser retrieves a user by ID
	GetUser(ctx context.Context, id int64) (*models.User, error)

	// GetBalanceHistory returns the most recent balance changes for a user
	GetBalanceHistory(ctx context.Context, id int64, limit int) ([]*models.BalanceHistory, error)
}

// UnitOfWork defines the interface for transactional repository operations
type UnitOfWork interface {
	// Begin starts a new transaction
	Begin(ctx context.Context) error

	// Commit commits the transaction
	Commit() error

	// Rollback rolls back the transaction
	Rollback() error

	// Repository getters
	UserRepository() UserRepository
	WagerRepository() WagerRepository
	MatchRepository() MatchRepository
	BalanceHistoryRepository() BalanceHistoryRepository
	EventBus() EventPublisher
}

// UnitOfWorkFactory defines the interface for creating UnitOfWork instances
type UnitOfWorkFactory interface {
	// Create creates a new UnitOfWork instance
	Create() UnitOfWork
}
