package service

import (
	"context"
	"fmt"
	"time"

	"fiveaside/events"
	"fiveaside/metrics"
	"fiveaside/models"

	log "github.com/sirupsen/logrus"
)

type settlementService struct {
	uowFactory UnitOfWorkFactory
	poolCache  PoolCache // optional
}

// NewSettlementService creates a new settlement service. poolCache may be nil.
func NewSettlementService(uowFactory UnitOfWorkFactory, poolCache PoolCache) SettlementService {
	return &settlementService{
		uowFactory: uowFactory,
		poolCache:  poolCache,
	}
}

// Settle resolves every placed wager for a completed match in one
// transaction. Placed wagers are row-locked for the duration, and each
// terminal write is conditional on the wager still being placed, so a
// concurrent or repeated settlement resolves each wager at most once. A
// repeat invocation finds no placed wagers and returns an empty result.
func (s *settlementService) Settle(ctx context.Context, matchID string, winner models.Outcome) (*models.SettlementResult, error) {
	if !winner.Valid() {
		metrics.SettlementPreconditionFailures.Inc()
		return nil, fmt.Errorf("match %s: %w: %q", matchID, models.ErrInvalidOutcome, winner)
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
		metrics.SettlementPreconditionFailures.Inc()
		return nil, fmt.Errorf("match %s: %w", matchID, models.ErrMatchNotFound)
	}
	if !match.IsCompleted() {
		metrics.SettlementPreconditionFailures.Inc()
		return nil, fmt.Errorf("match %s (state: %s): %w", matchID, match.Status, models.ErrMatchNotCompleted)
	}

	wagers, err := uow.WagerRepository().GetPlacedByMatchForUpdate(ctx, matchID)
	if err != nil {
		return nil, fmt.Errorf("failed to lock placed wagers: %w", err)
	}

	result := &models.SettlementResult{
		MatchID: matchID,
		Winner:  winner,
		Payouts: make(map[int64]int64),
	}

	if len(wagers) == 0 {
		// Nothing left to settle. Commit so MarkSettled below sticks.
		if err := uow.MatchRepository().MarkSettled(ctx, matchID, time.Now()); err != nil {
			return nil, fmt.Errorf("failed to mark match settled: %w", err)
		}
		if err := uow.Commit(); err != nil {
			return nil, fmt.Errorf("failed to commit transaction: %w", err)
		}
		log.WithField("matchID", matchID).Info("Settlement found no open wagers")
		return result, nil
	}

	// Partition and total from the wagers themselves. The pool used for
	// payouts is the final ledger state, not the display snapshot.
	var winners, losers []*models.Wager
	for _, w := range wagers {
		if w.Outcome == winner {
			winners = append(winners, w)
			result.TotalWinningStake += w.Stake
		} else {
			losers = append(losers, w)
			result.TotalLosingStake += w.Stake
		}
	}
	result.TotalPool = result.TotalWinningStake + result.TotalLosingStake

	settledAt := time.Now()

	for _, w := range winners {
		reward, fee := models.SettlementReward(w.Stake, result.TotalWinningStake, result.TotalLosingStake)
		w.MarkWon(reward, fee, settledAt)

		applied, err := uow.WagerRepository().Settle(ctx, w)
		if err != nil {
			metrics.SettlementFailures.Inc()
			return nil, fmt.Errorf("failed to settle wager %d: %w", w.ID, err)
		}
		if !applied {
			// Resolved by a competing settlement after our lock released it.
			// With FOR UPDATE held this should not happen; skip defensively
			// rather than pay twice.
			log.WithField("wagerID", w.ID).Warn("Wager no longer placed at settlement")
			continue
		}

		owner, err := uow.UserRepository().GetByID(ctx, w.OwnerID)
		if err != nil {
			metrics.SettlementFailures.Inc()
			return nil, fmt.Errorf("failed to get winner %d: %w", w.OwnerID, err)
		}
		if owner == nil {
			metrics.SettlementFailures.Inc()
			return nil, fmt.Errorf("wager %d owner %d: %w", w.ID, w.OwnerID, models.ErrUserNotFound)
		}

		if err := uow.UserRepository().Credit(ctx, w.OwnerID, w.TotalReturn); err != nil {
			metrics.SettlementFailures.Inc()
			return nil, fmt.Errorf("failed to credit winner %d: %w", w.OwnerID, err)
		}

		history := &models.BalanceHistory{
			UserID:          w.OwnerID,
			BalanceBefore:   owner.Balance,
			BalanceAfter:    owner.Balance + w.TotalReturn,
			ChangeAmount:    w.TotalReturn,
			TransactionType: models.TransactionTypeWagerPayout,
			TransactionMetadata: map[string]any{
				"match_id": matchID,
				"outcome":  string(w.Outcome),
				"stake":    w.Stake,
				"reward":   w.Reward,
				"fee":      w.Fee,
			},
			RelatedID:   &w.ID,
			RelatedType: relatedTypePtr(models.RelatedTypeWager),
		}
		if err := RecordBalanceChange(ctx, uow, history); err != nil {
			metrics.SettlementFailures.Inc()
			return nil, fmt.Errorf("failed to record payout: %w", err)
		}

		result.Winners = append(result.Winners, w)
		result.TotalPaidOut += w.TotalReturn
		result.FeeCollected += w.Fee
		result.Payouts[w.OwnerID] += w.TotalReturn
	}

	// Losers get no balance change and no history row; the stake left their
	// balance at placement.
	for _, w := range losers {
		w.MarkLost(settledAt)

		applied, err := uow.WagerRepository().Settle(ctx, w)
		if err != nil {
			metrics.SettlementFailures.Inc()
			return nil, fmt.Errorf("failed to settle wager %d: %w", w.ID, err)
		}
		if !applied {
			log.WithField("wagerID", w.ID).Warn("Wager no longer placed at settlement")
			continue
		}

		result.Losers = append(result.Losers, w)
	}

	if err := uow.MatchRepository().MarkSettled(ctx, matchID, settledAt); err != nil {
		return nil, fmt.Errorf("failed to mark match settled: %w", err)
	}

	uow.EventBus().Publish(events.MatchSettledEvent{
		MatchID:      matchID,
		Winner:       winner,
		WinnerCount:  len(result.Winners),
		LoserCount:   len(result.Losers),
		TotalPaidOut: result.TotalPaidOut,
		FeeCollected: result.FeeCollected,
		Payouts:      result.Payouts,
	})

	if err := uow.Commit(); err != nil {
		metrics.SettlementFailures.Inc()
		return nil, fmt.Errorf("failed to commit settlement: %w", err)
	}

	if s.poolCache != nil {
		s.poolCache.Invalidate(ctx, matchID)
	}
	metrics.SettlementsCompleted.Inc()
	metrics.PayoutTotal.Add(float64(result.TotalPaidOut))
	metrics.FeeTotal.Add(float64(result.FeeCollected))

	log.WithFields(log.Fields{
		"matchID":      matchID,
		"winner":       winner,
		"winners":      len(result.Winners),
		"losers":       len(result.Losers),
		"totalPaidOut": result.TotalPaidOut,
		"feeCollected": result.FeeCollected,
	}).Info("Match settled")

	return result, nil
}
