package models

// PlatformFeePercent is the percentage deducted from net winnings at
// settlement. The fee is levied on winnings only, never on the returned stake.
const PlatformFeePercent = 20

// PotentialPayout computes the payout a stake would receive on an outcome
// under the pari-mutuel formula, net of the platform fee, given the current
// pool. All divisions floor toward zero so no fractional currency units are
// ever created.
func PotentialPayout(outcome Outcome, stake int64, pool Pool) int64 {
	if stake <= 0 {
		return 0
	}
	// First bet establishes the market at 1:1.
	if pool.Total() == 0 {
		return stake
	}
	side := pool.ForOutcome(outcome)
	// First bettor on a side gets their stake back; there is no pool on
	// their side to take a share of yet.
	if side == 0 {
		return stake
	}
	losing := pool.Total() - side
	// No opposing stakes: nothing to redistribute and no fee to charge.
	if losing == 0 {
		return stake
	}
	raw := stake + stake*losing/side
	winnings := raw - stake
	if winnings < 0 {
		winnings = 0
	}
	fee := winnings * PlatformFeePercent / 100
	return raw - fee
}

// EffectiveOdds returns the stake-to-payout ratio for display purposes.
func EffectiveOdds(stake, payout int64) float64 {
	if stake <= 0 {
		return 0
	}
	return float64(payout) / float64(stake)
}

// SettlementReward computes the reward and fee for a single winning wager at
// settlement time. The combined losing pool is distributed proportionally to
// each winner's share of the winning pool, then the platform fee is taken
// from the reward. A zero losing pool means stake-back only: zero reward,
// zero fee.
func SettlementReward(stake, totalWinningStake, totalLosingStake int64) (reward, fee int64) {
	if totalWinningStake <= 0 || totalLosingStake <= 0 {
		return 0, 0
	}
	raw := stake * totalLosingStake / totalWinningStake
	fee = raw * PlatformFeePercent / 100
	return raw - fee, fee
}
