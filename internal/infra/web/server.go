package web

import (
	"context"
	"embed"
	"html/template"
	"net/http"
	"time"

	"advent-calendar/internal/usecase"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

//go:embed templates
var templatesFS embed.FS

// Labels supplies translated page strings.
type Labels interface {
	T(key string, args ...interface{}) string
	Lang() string
}

// Snapshotter exposes the latest anonymous calendar evaluation.
type Snapshotter interface {
	Snapshot() usecase.TodaySnapshot
}

type Server struct {
	calendarUC usecase.CalendarUseCase
	tracker    Snapshotter
	sessions   *VisitorSessions
	labels     Labels
	refresh    time.Duration
	dev        bool
	page       *template.Template
	log        *zerolog.Logger
}

func NewServer(
	calendarUC usecase.CalendarUseCase,
	tracker Snapshotter,
	sessions *VisitorSessions,
	labels Labels,
	refresh time.Duration,
	dev bool,
	logger *zerolog.Logger,
) (*Server, error) {
	l := logger.With().Str("component", "web").Logger()
	s := &Server{
		calendarUC: calendarUC,
		tracker:    tracker,
		sessions:   sessions,
		labels:     labels,
		refresh:    refresh,
		dev:        dev,
		log:        &l,
	}
	page, err := template.New("calendar.html").Funcs(template.FuncMap{
		"t": labels.T,
	}).ParseFS(templatesFS, "templates/calendar.html")
	if err != nil {
		return nil, err
	}
	s.page = page
	return s, nil
}

// Routes builds the router for the public calendar and its JSON API.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(trace)
	r.Use(accessLog(s.log, s.dev))
	r.Use(middleware.Recoverer)

	r.Get("/health", healthHandler)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/api/v1/today", s.todayHandler)

	r.Group(func(r chi.Router) {
		r.Use(s.sessions.Middleware)
		r.Get("/", s.pageHandler)
		r.Post("/days/{day}/open", s.openFormHandler)
		r.Get("/api/v1/calendar", s.calendarHandler)
		r.Post("/api/v1/days/{day}/open", s.openAPIHandler)
	})
	return r
}

// ListenAndServe serves Routes on addr until ctx is cancelled, then shuts
// down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", addr).Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s.log.Info().Msg("http server shutting down")
	return srv.Shutdown(shutdownCtx)
}
