package httpapi

import (
	"time"

	"fiveaside/models"
)

type placeWagerRequest struct {
	MatchID string `json:"match_id"`
	UserID  int64  `json:"user_id"`
	Outcome string `json:"outcome"` // "home" | "away" | "draw"
	Stake   int64  `json:"stake"`
}

type wagerResponse struct {
	ID              int64      `json:"id"`
	MatchID         string     `json:"match_id"`
	OwnerID         int64      `json:"owner_id"`
	Outcome         string     `json:"outcome"`
	Stake           int64      `json:"stake"`
	EffectiveOdds   float64    `json:"effective_odds"`
	PotentialPayout int64      `json:"potential_payout"`
	Status          string     `json:"status"`
	TotalReturn     int64      `json:"total_return"`
	CreatedAt       time.Time  `json:"created_at"`
	SettledAt       *time.Time `json:"settled_at,omitempty"`
}

func toWagerResponse(w *models.Wager) wagerResponse {
	return wagerResponse{
		ID:              w.ID,
		MatchID:         w.MatchID,
		OwnerID:         w.OwnerID,
		Outcome:         string(w.Outcome),
		Stake:           w.Stake,
		EffectiveOdds:   w.EffectiveOdds,
		PotentialPayout: w.PotentialPayout,
		Status:          string(w.Status),
		TotalReturn:     w.TotalReturn,
		CreatedAt:       w.CreatedAt,
		SettledAt:       w.SettledAt,
	}
}

type poolResponse struct {
	MatchID string `json:"match_id"`
	Home    int64  `json:"home"`
	Away    int64  `json:"away"`
	Draw    int64  `json:"draw"`
	Total   int64  `json:"total"`
}

type payoutPreviewResponse struct {
	MatchID       string  `json:"match_id"`
	Outcome       string  `json:"outcome"`
	Stake         int64   `json:"stake"`
	Payout        int64   `json:"payout"`
	EffectiveOdds float64 `json:"effective_odds"`
	Display       string  `json:"display"`
}

type matchResponse struct {
	ID        string     `json:"id"`
	TeamA     string     `json:"team_a"`
	TeamB     string     `json:"team_b"`
	Venue     string     `json:"venue,omitempty"`
	Status    string     `json:"status"`
	Winner    *string    `json:"winner,omitempty"`
	KickoffAt *time.Time `json:"kickoff_at,omitempty"`
	SettledAt *time.Time `json:"settled_at,omitempty"`
}

func toMatchResponse(m *models.Match) matchResponse {
	resp := matchResponse{
		ID:        m.ID,
		TeamA:     m.TeamA,
		TeamB:     m.TeamB,
		Venue:     m.Venue,
		Status:    string(m.Status),
		KickoffAt: m.KickoffAt,
		SettledAt: m.SettledAt,
	}
	if m.WinnerOutcome != nil {
		winner := string(*m.WinnerOutcome)
		resp.Winner = &winner
	}
	return resp
}

type createUserRequest struct {
	Username string `json:"username"`
}

type userResponse struct {
	ID             int64  `json:"id"`
	Username       string `json:"username"`
	Balance        int64  `json:"balance"`
	BalanceDisplay string `json:"balance_display"`
}

func toUserResponse(u *models.User) userResponse {
	return userResponse{
		ID:             u.ID,
		Username:       u.Username,
		Balance:        u.Balance,
		BalanceDisplay: models.FormatNaira(u.Balance),
	}
}

type balanceHistoryResponse struct {
	ID              int64          `json:"id"`
	BalanceBefore   int64          `json:"balance_before"`
	BalanceAfter    int64          `json:"balance_after"`
	ChangeAmount    int64          `json:"change_amount"`
	TransactionType string         `json:"transaction_type"`
	Metadata        map[string]any `json:"metadata,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
}

func toBalanceHistoryResponse(h *models.BalanceHistory) balanceHistoryResponse {
	return balanceHistoryResponse{
		ID:              h.ID,
		BalanceBefore:   h.BalanceBefore,
		BalanceAfter:    h.BalanceAfter,
		ChangeAmount:    h.ChangeAmount,
		TransactionType: string(h.TransactionType),
		Metadata:        h.TransactionMetadata,
		CreatedAt:       h.CreatedAt,
	}
}

type errorResponse struct {
	Error string `json:"error"`
}
