package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPotentialPayout_EmptyPool(t *testing.T) {
	// First wager into an empty market pays 1:1.
	pool := Pool{}
	assert.Equal(t, int64(100), PotentialPayout(OutcomeHome, 100, pool))
	assert.Equal(t, int64(100), PotentialPayout(OutcomeAway, 100, pool))
	assert.Equal(t, int64(100), PotentialPayout(OutcomeDraw, 100, pool))
}

func TestPotentialPayout_EmptyOwnSide(t *testing.T) {
	// First bettor on a side gets stake back, no divide-by-zero.
	pool := Pool{Home: 0, Away: 500, Draw: 200}
	assert.Equal(t, int64(100), PotentialPayout(OutcomeHome, 100, pool))
}

func TestPotentialPayout_GeneralCase(t *testing.T) {
	// stake=50 on home against {home:100, away:200, draw:0}:
	// raw = 50 + floor(50*200/100) = 150, winnings = 100, fee = 20 -> 130
	pool := Pool{Home: 100, Away: 200, Draw: 0}
	assert.Equal(t, int64(130), PotentialPayout(OutcomeHome, 50, pool))
}

func TestPotentialPayout_FlooringOrder(t *testing.T) {
	// Divisions floor before the fee is applied.
	// stake=33 on home against {home:100, away:50, draw:25}:
	// raw = 33 + floor(33*75/100) = 33 + 24 = 57, winnings = 24,
	// fee = floor(24*0.2) = 4 -> 53
	pool := Pool{Home: 100, Away: 50, Draw: 25}
	assert.Equal(t, int64(53), PotentialPayout(OutcomeHome, 33, pool))
}

func TestPotentialPayout_DegeneratePoolEqualsGeneralFormula(t *testing.T) {
	// When the losing pools are empty the dedicated stake-back path and the
	// general formula must agree exactly: stake back, zero fee.
	pool := Pool{Home: 400, Away: 0, Draw: 0}
	stake := int64(150)

	got := PotentialPayout(OutcomeHome, stake, pool)
	assert.Equal(t, stake, got)

	// General formula evaluated by hand for the same inputs.
	raw := stake + stake*pool.LosingTotal(OutcomeHome)/pool.Home
	fee := (raw - stake) * PlatformFeePercent / 100
	assert.Equal(t, raw-fee, got)
}

func TestPotentialPayout_MonotonicInStake(t *testing.T) {
	pool := Pool{Home: 1000, Away: 3000, Draw: 500}
	prev := int64(-1)
	for stake := int64(1); stake <= 500; stake++ {
		payout := PotentialPayout(OutcomeHome, stake, pool)
		assert.GreaterOrEqual(t, payout, prev, "payout decreased at stake %d", stake)
		prev = payout
	}
}

func TestPotentialPayout_ZeroStake(t *testing.T) {
	assert.Equal(t, int64(0), PotentialPayout(OutcomeHome, 0, Pool{Home: 100, Away: 100}))
}

func TestEffectiveOdds(t *testing.T) {
	assert.Equal(t, 2.6, EffectiveOdds(50, 130))
	assert.Equal(t, 1.0, EffectiveOdds(100, 100))
	assert.Equal(t, 0.0, EffectiveOdds(0, 100))
}

func TestSettlementReward_GeneralCase(t *testing.T) {
	// Sole winner with stake 100 against a losing pool of 200:
	// raw = 200, fee = 40, reward = 160
	reward, fee := SettlementReward(100, 100, 200)
	assert.Equal(t, int64(160), reward)
	assert.Equal(t, int64(40), fee)
}

func TestSettlementReward_ProportionalSplit(t *testing.T) {
	// Two winners staking 100 and 300 share a losing pool of 400.
	r1, f1 := SettlementReward(100, 400, 400)
	r2, f2 := SettlementReward(300, 400, 400)
	assert.Equal(t, int64(80), r1)
	assert.Equal(t, int64(20), f1)
	assert.Equal(t, int64(240), r2)
	assert.Equal(t, int64(60), f2)
}

func TestSettlementReward_NoLosingPool(t *testing.T) {
	reward, fee := SettlementReward(100, 100, 0)
	assert.Equal(t, int64(0), reward)
	assert.Equal(t, int64(0), fee)
}

func TestSettlementReward_NeverExceedsLosingPool(t *testing.T) {
	// Integer flooring means the sum of raw rewards never exceeds the
	// losing pool; the house never pays out more than it collected.
	stakes := []int64{17, 23, 101, 359}
	var totalWinning int64
	for _, s := range stakes {
		totalWinning += s
	}
	totalLosing := int64(997)

	var paid int64
	for _, s := range stakes {
		reward, fee := SettlementReward(s, totalWinning, totalLosing)
		paid += reward + fee
	}
	assert.LessOrEqual(t, paid, totalLosing)
}
