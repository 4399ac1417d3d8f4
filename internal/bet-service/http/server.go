package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/radieske/squares-wager-platform/internal/bet-service/dto"
	"github.com/radieske/squares-wager-platform/internal/bet-service/odds"
	"github.com/radieske/squares-wager-platform/internal/settlement"
	"github.com/radieske/squares-wager-platform/internal/wager"
)

// OddsChecker confere as odds enviadas contra a cotação atual. nil desliga a checagem.
type OddsChecker interface {
	Check(ctx context.Context, gameID string, sel *wager.Selection, legs []wager.Leg) error
}

type Server struct {
	log      *zap.Logger
	bets     *wager.Service
	settle   *settlement.Service
	odds     OddsChecker
	validate *validator.Validate
}

func NewServer(log *zap.Logger, bets *wager.Service, settle *settlement.Service, oc OddsChecker) *Server {
	return &Server{log: log, bets: bets, settle: settle, odds: oc, validate: validator.New()}
}

// Router retorna o roteador HTTP com os endpoints de apostas e acerto
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Route("/v1/games/{gameId}", func(r chi.Router) {
		r.Post("/bets", s.placeBet)          // coloca aposta
		r.Get("/bets", s.listBets)           // ?playerId=&status=
		r.Post("/bets/settle", s.bulkSettle) // settle de todas as pending
		r.Get("/stats", s.gameStats)         // ledger do jogo
		r.Post("/parlay/preview", s.previewParlay)
	})
	r.Route("/v1/bets/{betId}", func(r chi.Router) {
		r.Get("/", s.getBet)
		r.Post("/settle", s.settleBet)
		r.Post("/cancel", s.cancelBet)
	})
	r.Get("/v1/settlement", s.settlementReport)
	r.Put("/v1/settlement/{initials}", s.markSettled)
	r.Delete("/v1/settlement/{initials}", s.unmarkSettled)
	return r
}

// writeJSON serializa a resposta em JSON e define o status HTTP
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// decode lê o corpo e roda as regras de validação do DTO
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "bad json: " + err.Error(), Code: "bad_json"})
		return false
	}
	if err := s.validate.Struct(v); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]dto.FieldError, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, dto.FieldError{Field: fe.Namespace(), Rule: fe.Tag()})
			}
			writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "invalid payload", Code: "invalid_request", Details: fields})
			return false
		}
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: err.Error(), Code: "invalid_request"})
		return false
	}
	return true
}

// writeError traduz erros do domínio em status HTTP
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		capErr *wager.CapError
		moved  *odds.MovedError
	)
	resp := dto.ErrorResponse{Error: err.Error(), Code: wager.Code(err)}
	status := http.StatusInternalServerError

	switch {
	case errors.As(err, &moved):
		status = http.StatusConflict
		resp.Code = "odds_moved"
		resp.Details = dto.OddsMovedDetails{Quoted: moved.Quoted, Current: moved.Current}
	case errors.Is(err, wager.ErrNeedMoreLegs):
		status = http.StatusUnprocessableEntity
	case errors.As(err, &capErr):
		status = http.StatusUnprocessableEntity
		resp.Details = dto.CapDetails{
			Payout:   capErr.Payout.StringFixed(2),
			Cap:      capErr.Cap.StringFixed(2),
			MaxWager: capErr.MaxWager.StringFixed(2),
		}
	case errors.Is(err, wager.ErrInvalidBet), errors.Is(err, wager.ErrInvalidOutcome):
		status = http.StatusBadRequest
	case errors.Is(err, settlement.ErrInvalidMarker):
		status = http.StatusBadRequest
		resp.Code = "invalid_marker"
	case errors.Is(err, wager.ErrNotFound), errors.Is(err, settlement.ErrMarkerNotFound):
		status = http.StatusNotFound
		resp.Code = "not_found"
	case errors.Is(err, wager.ErrAlreadySettled):
		status = http.StatusConflict
	case errors.Is(err, wager.ErrForbidden):
		status = http.StatusForbidden
	}

	if status == http.StatusInternalServerError {
		s.log.Error("request failed",
			zap.String("path", r.URL.Path),
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.Error(err),
		)
		resp = dto.ErrorResponse{Error: "internal error", Code: "internal"}
	}
	writeJSON(w, status, resp)
}
