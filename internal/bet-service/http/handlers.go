package http

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/radieske/squares-wager-platform/internal/bet-service/dto"
	"github.com/radieske/squares-wager-platform/internal/wager"
)

// POST /v1/games/{gameId}/bets
func (s *Server) placeBet(w http.ResponseWriter, r *http.Request) {
	var req dto.PlaceBetRequest
	if !s.decode(w, r, &req) {
		return
	}
	in := req.ToPlaceRequest(chi.URLParam(r, "gameId"))

	if s.odds != nil {
		if err := s.odds.Check(r.Context(), in.GameID, in.Selection, in.Legs); err != nil {
			s.writeError(w, r, err)
			return
		}
	}

	b, err := s.bets.PlaceBet(r.Context(), in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, b)
}

// GET /v1/games/{gameId}/bets?playerId=&status=
func (s *Server) listBets(w http.ResponseWriter, r *http.Request) {
	gameID := chi.URLParam(r, "gameId")
	f := wager.BetFilter{PlayerID: r.URL.Query().Get("playerId")}
	if raw := r.URL.Query().Get("status"); raw != "" {
		f.Status = wager.Status(raw)
		if !f.Status.Valid() {
			writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "unknown status " + raw, Code: "invalid_request"})
			return
		}
	}

	bets, err := s.bets.ListBets(r.Context(), gameID, f)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if bets == nil {
		bets = []wager.Bet{}
	}
	writeJSON(w, http.StatusOK, dto.BetListResponse{GameID: gameID, Count: len(bets), Bets: bets})
}

// POST /v1/games/{gameId}/bets/settle
func (s *Server) bulkSettle(w http.ResponseWriter, r *http.Request) {
	outcome, ok := s.outcome(w, r)
	if !ok {
		return
	}
	res, err := s.bets.BulkSettle(r.Context(), chi.URLParam(r, "gameId"), outcome)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// GET /v1/games/{gameId}/stats
func (s *Server) gameStats(w http.ResponseWriter, r *http.Request) {
	st, err := s.bets.GameStats(r.Context(), chi.URLParam(r, "gameId"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// POST /v1/games/{gameId}/parlay/preview
// Estourar o teto não é erro aqui: a cotação volta com withinCap=false.
func (s *Server) previewParlay(w http.ResponseWriter, r *http.Request) {
	var req dto.ParlayPreviewRequest
	if !s.decode(w, r, &req) {
		return
	}
	q, err := s.bets.PreviewParlay(r.Context(), chi.URLParam(r, "gameId"), dto.ToLegs(req.Legs), req.Wager)
	var capErr *wager.CapError
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, dto.ParlayPreviewResponse{ParlayQuote: q, WithinCap: true})
	case errors.As(err, &capErr):
		writeJSON(w, http.StatusOK, dto.ParlayPreviewResponse{ParlayQuote: q, WithinCap: false})
	default:
		s.writeError(w, r, err)
	}
}

// GET /v1/bets/{betId}
func (s *Server) getBet(w http.ResponseWriter, r *http.Request) {
	b, err := s.bets.GetBet(r.Context(), chi.URLParam(r, "betId"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

// POST /v1/bets/{betId}/settle
func (s *Server) settleBet(w http.ResponseWriter, r *http.Request) {
	outcome, ok := s.outcome(w, r)
	if !ok {
		return
	}
	b, err := s.bets.SettleBet(r.Context(), chi.URLParam(r, "betId"), outcome)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

// POST /v1/bets/{betId}/cancel
func (s *Server) cancelBet(w http.ResponseWriter, r *http.Request) {
	var req dto.CancelRequest
	if !s.decode(w, r, &req) {
		return
	}
	b, err := s.bets.CancelBet(r.Context(), chi.URLParam(r, "betId"), req.PlayerID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

// GET /v1/settlement
func (s *Server) settlementReport(w http.ResponseWriter, r *http.Request) {
	rep, err := s.settle.Report(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

// PUT /v1/settlement/{initials}
func (s *Server) markSettled(w http.ResponseWriter, r *http.Request) {
	var req dto.MarkSettledRequest
	if r.ContentLength != 0 && !s.decode(w, r, &req) {
		return
	}
	m, err := s.settle.Mark(r.Context(), chi.URLParam(r, "initials"), req.Amount)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

// DELETE /v1/settlement/{initials}
func (s *Server) unmarkSettled(w http.ResponseWriter, r *http.Request) {
	if err := s.settle.Unmark(r.Context(), chi.URLParam(r, "initials")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// outcome lê o corpo {"outcome": "..."} e normaliza o resultado
func (s *Server) outcome(w http.ResponseWriter, r *http.Request) (wager.Status, bool) {
	var req dto.SettleRequest
	if !s.decode(w, r, &req) {
		return "", false
	}
	st, err := wager.ParseOutcome(req.Outcome)
	if err != nil {
		s.writeError(w, r, err)
		return "", false
	}
	return st, true
}
