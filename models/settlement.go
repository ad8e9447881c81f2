package models

// SettlementResult represents the outcome of settling a match. A result with
// zero winners and zero losers means there was nothing left to settle (the
// match had no open wagers, e.g. a duplicate settlement attempt).
type SettlementResult struct {
	MatchID           string
	Winner            Outcome
	Winners           []*Wager
	Losers            []*Wager
	TotalPool         int64
	TotalWinningStake int64
	TotalLosingStake  int64
	TotalPaidOut      int64
	FeeCollected      int64
	Payouts           map[int64]int64 // owner ID -> total credited
}

// Settled reports whether this settlement run actually resolved any wagers.
func (r *SettlementResult) Settled() bool {
	return len(r.Winners) > 0 || len(r.Losers) > 0
}
