package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"fiveaside/models"
	"fiveaside/service"

	log "github.com/sirupsen/logrus"
)

const defaultListLimit = 50

// Server exposes the betting engine over JSON HTTP.
type Server struct {
	betting service.BettingService
	users   service.UserService
	matches service.MatchService
}

// NewServer creates a new HTTP API server.
func NewServer(betting service.BettingService, users service.UserService, matches service.MatchService) *Server {
	return &Server{
		betting: betting,
		users:   users,
		matches: matches,
	}
}

// Router builds the HTTP routes.
func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /wagers", s.placeWager)
	mux.HandleFunc("POST /users", s.createUser)
	mux.HandleFunc("GET /users/{id}", s.getUser)
	mux.HandleFunc("GET /users/{id}/wagers", s.getUserWagers)
	mux.HandleFunc("GET /users/{id}/history", s.getUserHistory)
	mux.HandleFunc("GET /matches", s.listMatches)
	mux.HandleFunc("GET /matches/{id}", s.getMatch)
	mux.HandleFunc("GET /matches/{id}/pool", s.getPool)
	mux.HandleFunc("GET /matches/{id}/payout", s.previewPayout)
	mux.HandleFunc("GET /matches/{id}/wagers", s.getMatchWagers)
	return mux
}

func (s *Server) placeWager(w http.ResponseWriter, r *http.Request) {
	var req placeWagerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	wager, err := s.betting.PlaceWager(r.Context(), req.MatchID, req.UserID, models.Outcome(req.Outcome), req.Stake)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toWagerResponse(wager))
}

func (s *Server) createUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.Username == "" {
		writeError(w, http.StatusBadRequest, "username required")
		return
	}

	user, err := s.users.GetOrCreateUser(r.Context(), req.Username)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toUserResponse(user))
}

func (s *Server) getUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	user, err := s.users.GetUser(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toUserResponse(user))
}

func (s *Server) getUserWagers(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	wagers, err := s.betting.GetWagersByUser(r.Context(), id, queryLimit(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	resp := make([]wagerResponse, 0, len(wagers))
	for _, wg := range wagers {
		resp = append(resp, toWagerResponse(wg))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) getUserHistory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	history, err := s.users.GetBalanceHistory(r.Context(), id, queryLimit(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	resp := make([]balanceHistoryResponse, 0, len(history))
	for _, h := range history {
		resp = append(resp, toBalanceHistoryResponse(h))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) listMatches(w http.ResponseWriter, r *http.Request) {
	matches, err := s.matches.ListMatches(r.Context(), queryLimit(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	resp := make([]matchResponse, 0, len(matches))
	for _, m := range matches {
		resp = append(resp, toMatchResponse(m))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) getMatch(w http.ResponseWriter, r *http.Request) {
	match, err := s.matches.GetMatch(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toMatchResponse(match))
}

func (s *Server) getPool(w http.ResponseWriter, r *http.Request) {
	matchID := r.PathValue("id")

	pool, err := s.betting.GetPool(r.Context(), matchID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, poolResponse{
		MatchID: matchID,
		Home:    pool.Home,
		Away:    pool.Away,
		Draw:    pool.Draw,
		Total:   pool.Total(),
	})
}

func (s *Server) previewPayout(w http.ResponseWriter, r *http.Request) {
	matchID := r.PathValue("id")
	outcome := r.URL.Query().Get("outcome")

	stake, err := strconv.ParseInt(r.URL.Query().Get("stake"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "stake must be a whole number")
		return
	}

	payout, odds, err := s.betting.PreviewPayout(r.Context(), matchID, models.Outcome(outcome), stake)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, payoutPreviewResponse{
		MatchID:       matchID,
		Outcome:       outcome,
		Stake:         stake,
		Payout:        payout,
		EffectiveOdds: odds,
		Display:       models.FormatNaira(payout),
	})
}

func (s *Server) getMatchWagers(w http.ResponseWriter, r *http.Request) {
	wagers, err := s.betting.GetWagersByMatch(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	resp := make([]wagerResponse, 0, len(wagers))
	for _, wg := range wagers {
		resp = append(resp, toWagerResponse(wg))
	}
	writeJSON(w, http.StatusOK, resp)
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return 0, false
	}
	return id, true
}

func queryLimit(r *http.Request) int {
	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit <= 0 || limit > 500 {
		return defaultListLimit
	}
	return limit
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, models.ErrInvalidStake), errors.Is(err, models.ErrInvalidOutcome):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, models.ErrMatchNotFound), errors.Is(err, models.ErrUserNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, models.ErrMatchNotOpen), errors.Is(err, models.ErrInsufficientBalance):
		writeError(w, http.StatusConflict, err.Error())
	default:
		log.WithError(err).Error("Request failed")
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.WithError(err).Error("Failed to encode response")
	}
}
