package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"advent-calendar/internal/domain"
	"advent-calendar/internal/domain/model"
	"advent-calendar/internal/infra/logging"
	"advent-calendar/internal/render"
	"advent-calendar/internal/usecase"

	"github.com/go-chi/chi/v5"
)

type pageData struct {
	Lang           string
	Banner         string
	RefreshSeconds int
	Cards          []*render.CardView
}

type openResponse struct {
	Result usecase.OpenResult `json:"result"`
	Board  *model.Board       `json:"board"`
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

func (s *Server) pageHandler(w http.ResponseWriter, r *http.Request) {
	board := s.calendarUC.Board(r.Context(), VisitorID(r.Context()))
	views := render.NewCardViews()
	render.Render(views, board.Cards)

	data := pageData{
		Lang:           s.labels.Lang(),
		Banner:         board.Banner,
		RefreshSeconds: int(s.refresh.Seconds()),
		Cards:          views,
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.page.Execute(w, data); err != nil {
		logging.With(r.Context(), s.log).Error().Err(err).Msg("render page failed")
	}
}

func (s *Server) calendarHandler(w http.ResponseWriter, r *http.Request) {
	board := s.calendarUC.Board(r.Context(), VisitorID(r.Context()))
	writeJSON(w, http.StatusOK, board)
}

func (s *Server) todayHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.tracker.Snapshot())
}

// openFormHandler backs the HTML button: open, then show the page again.
func (s *Server) openFormHandler(w http.ResponseWriter, r *http.Request) {
	day, ok := model.ParseDay(chi.URLParam(r, "day"))
	if !ok {
		http.Error(w, "invalid day", http.StatusBadRequest)
		return
	}
	_, _, err := s.calendarUC.Open(r.Context(), VisitorID(r.Context()), day)
	if err != nil && !errors.Is(err, domain.ErrLocked) {
		http.Error(w, http.StatusText(statusFor(err)), statusFor(err))
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) openAPIHandler(w http.ResponseWriter, r *http.Request) {
	day, ok := model.ParseDay(chi.URLParam(r, "day"))
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid day")
		return
	}
	res, board, err := s.calendarUC.Open(r.Context(), VisitorID(r.Context()), day)
	if err != nil {
		code := statusFor(err)
		writeError(w, code, http.StatusText(code))
		return
	}
	writeJSON(w, http.StatusOK, openResponse{Result: res, Board: board})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidDay):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrLocked):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}
