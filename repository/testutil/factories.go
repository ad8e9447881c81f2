package testutil

import (
	"time"

	"fiveaside/models"
)

// CreateTestMatch creates an in-progress match open for betting
func CreateTestMatch(id string) *models.Match {
	kickoff := time.Now().Add(-10 * time.Minute)
	return &models.Match{
		ID:        id,
		TeamA:     "Thunder FC",
		TeamB:     "Lightning SC",
		Venue:     "Lekki Astro Pitch",
		Status:    models.MatchStatusInProgress,
		KickoffAt: &kickoff,
	}
}

// CreateTestCompletedMatch creates a completed match with a declared winner
func CreateTestCompletedMatch(id string, winner models.Outcome) *models.Match {
	match := CreateTestMatch(id)
	match.Status = models.MatchStatusCompleted
	match.WinnerOutcome = &winner
	return match
}

// CreateTestWager creates a wager in placed status
func CreateTestWager(matchID string, ownerID int64, outcome models.Outcome, stake int64) *models.Wager {
	return &models.Wager{
		MatchID: matchID,
		OwnerID: ownerID,
		Outcome: outcome,
		Stake:   stake,
	}
}

// CreateTestBalanceHistory creates a balance history entry
func CreateTestBalanceHistory(userID int64, transactionType models.TransactionType) *models.BalanceHistory {
	return &models.BalanceHistory{
		UserID:          userID,
		BalanceBefore:   10000,
		BalanceAfter:    9000,
		ChangeAmount:    -1000,
		TransactionType: transactionType,
		TransactionMetadata: map[string]interface{}{
			"test": true,
		},
	}
}
