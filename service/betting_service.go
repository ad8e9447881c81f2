package service

import (
	"context"
	"fmt"

	"fiveaside/events"
	"fiveaside/metrics"
	"fiveaside/models"

	log "github.com/sirupsen/logrus"
)

type bettingService struct {
	uowFactory UnitOfWorkFactory
	poolCache  PoolCache // optional, display reads only
}

// NewBettingService creates a new betting service. poolCache may be nil.
func NewBettingService(uowFactory UnitOfWorkFactory, poolCache PoolCache) BettingService {
	return &bettingService{
		uowFactory: uowFactory,
		poolCache:  poolCache,
	}
}

// PlaceWager validates and persists a new wager. The wager insert, the
// balance debit and the balance-history record all commit in one
// transaction: either the stake is debited and the wager exists, or neither.
func (s *bettingService) PlaceWager(ctx context.Context, matchID string, ownerID int64, outcome models.Outcome, stake int64) (*models.Wager, error) {
	// Validate before touching anything
	if stake <= 0 {
		return nil, models.ErrInvalidStake
	}
	if !outcome.Valid() {
		return nil, fmt.Errorf("%w: %q", models.ErrInvalidOutcome, outcome)
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	match, err := uow.MatchRepository().GetByID(ctx, matchID)
	if err != nil {
		return nil, fmt.Errorf("failed to get match: %w", err)
	}
	if match == nil {
		return nil, models.ErrMatchNotFound
	}
	if !match.IsOpenForBetting() {
		return nil, fmt.Errorf("match %s (state: %s): %w", matchID, match.Status, models.ErrMatchNotOpen)
	}

	user, err := uow.UserRepository().GetByID(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, models.ErrUserNotFound
	}
	if !user.CanAfford(stake) {
		return nil, fmt.Errorf("have %d, need %d: %w", user.Balance, stake, models.ErrInsufficientBalance)
	}

	// Odds are quoted against the pool as it stands before this wager joins
	// it. They are informational; settlement recomputes from final state.
	pool, err := uow.WagerRepository().GetPoolByMatch(ctx, matchID)
	if err != nil {
		return nil, fmt.Errorf("failed to get pool: %w", err)
	}

	payout := models.PotentialPayout(outcome, stake, pool)
	wager := &models.Wager{
		MatchID:         matchID,
		OwnerID:         ownerID,
		Outcome:         outcome,
		Stake:           stake,
		EffectiveOdds:   models.EffectiveOdds(stake, payout),
		PotentialPayout: payout,
	}

	if err := uow.WagerRepository().Create(ctx, wager); err != nil {
		return nil, fmt.Errorf("failed to create wager: %w", err)
	}

	// The SQL guard in Debit is the backstop for a concurrent spend between
	// the balance check above and here.
	if err := uow.UserRepository().Debit(ctx, ownerID, stake); err != nil {
		return nil, fmt.Errorf("failed to debit stake: %w", err)
	}

	history := &models.BalanceHistory{
		UserID:          ownerID,
		BalanceBefore:   user.Balance,
		BalanceAfter:    user.Balance - stake,
		ChangeAmount:    -stake,
		TransactionType: models.TransactionTypeWagerStake,
		TransactionMetadata: map[string]any{
			"match_id": matchID,
			"outcome":  string(outcome),
			"stake":    stake,
		},
		RelatedID:   &wager.ID,
		RelatedType: relatedTypePtr(models.RelatedTypeWager),
	}
	if err := RecordBalanceChange(ctx, uow, history); err != nil {
		return nil, fmt.Errorf("failed to record stake debit: %w", err)
	}

	uow.EventBus().Publish(events.WagerPlacedEvent{
		WagerID:         wager.ID,
		MatchID:         matchID,
		OwnerID:         ownerID,
		Outcome:         outcome,
		Stake:           stake,
		PotentialPayout: payout,
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	if s.poolCache != nil {
		s.poolCache.Invalidate(ctx, matchID)
	}
	metrics.WagersPlaced.Inc()

	log.WithFields(log.Fields{
		"wagerID": wager.ID,
		"matchID": matchID,
		"ownerID": ownerID,
		"outcome": outcome,
		"stake":   stake,
	}).Info("Wager placed")

	return wager, nil
}

// GetPool returns the current per-outcome totals for a match. Display reads
// may be served from the cache; the pool is still always derived from the
// wager ledger, never stored.
func (s *bettingService) GetPool(ctx context.Context, matchID string) (models.Pool, error) {
	if s.poolCache != nil {
		if pool, ok := s.poolCache.Get(ctx, matchID); ok {
			return pool, nil
		}
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return models.Pool{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	pool, err := uow.WagerRepository().GetPoolByMatch(ctx, matchID)
	if err != nil {
		return models.Pool{}, fmt.Errorf("failed to get pool: %w", err)
	}

	if s.poolCache != nil {
		s.poolCache.Set(ctx, matchID, pool)
	}

	return pool, nil
}

// PreviewPayout computes the payout a hypothetical stake would receive on an
// outcome against the current pool, and the implied effective odds.
func (s *bettingService) PreviewPayout(ctx context.Context, matchID string, outcome models.Outcome, stake int64) (int64, float64, error) {
	if stake <= 0 {
		return 0, 0, models.ErrInvalidStake
	}
	if !outcome.Valid() {
		return 0, 0, fmt.Errorf("%w: %q", models.ErrInvalidOutcome, outcome)
	}

	pool, err := s.GetPool(ctx, matchID)
	if err != nil {
		return 0, 0, err
	}

	payout := models.PotentialPayout(outcome, stake, pool)
	return payout, models.EffectiveOdds(stake, payout), nil
}

// GetWagersByUser returns the most recent wagers for a user
func (s *bettingService) GetWagersByUser(ctx context.Context, ownerID int64, limit int) ([]*models.Wager, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	wagers, err := uow.WagerRepository().GetByOwner(ctx, ownerID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get wagers: %w", err)
	}

	return wagers, nil
}

// GetWagersByMatch returns all wagers for a match
func (s *bettingService) GetWagersByMatch(ctx context.Context, matchID string) ([]*models.Wager, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	wagers, err := uow.WagerRepository().GetByMatch(ctx, matchID)
	if err != nil {
		return nil, fmt.Errorf("failed to get wagers: %w", err)
	}

	return wagers, nil
}
