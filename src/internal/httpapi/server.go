// Package httpapi exposes the watch store to a rendering layer over local
// HTTP.
package httpapi

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/yaffw/watchstore/src/internal/services"
	"github.com/yaffw/watchstore/src/internal/store"
)

type Server struct {
	store  *store.Store
	logger zerolog.Logger
	limit  int

	mu       sync.Mutex
	sessions map[string]*services.PlaybackSession
}

type Option func(*Server)

func WithLogger(l zerolog.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithRateLimit sets the per-IP request budget per minute. Zero disables it.
func WithRateLimit(perMinute int) Option {
	return func(s *Server) { s.limit = perMinute }
}

func New(st *store.Store, opts ...Option) *Server {
	s := &Server{
		store:    st,
		logger:   zerolog.Nop(),
		limit:    600,
		sessions: make(map[string]*services.PlaybackSession),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler builds the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(s.logRequests)

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	r.Route("/api/v1", func(r chi.Router) {
		if s.limit > 0 {
			r.Use(rateLimit(s.limit, time.Minute))
		}

		r.Get("/catalog", s.handleCatalog)
		r.Get("/videos", s.handleListVideos)
		r.Post("/videos/refresh", s.handleRefresh)

		r.Route("/videos/{id}", func(r chi.Router) {
			r.Post("/watched", s.handleMarkWatched)
			r.Delete("/watched", s.handleUnmarkWatched)
			r.Get("/progress", s.handleGetProgress)
			r.Post("/progress", s.handleUpdateProgress)
			r.Get("/comments", s.handleListComments)
			r.Post("/comments", s.handleAddComment)

			r.Post("/play", s.handlePlay)
			r.Post("/playback/load", s.handlePlaybackLoad)
			r.Post("/playback/progress", s.handlePlaybackProgress)
			r.Post("/playback/end", s.handlePlaybackEnd)
		})

		r.Patch("/comments/{id}", s.handleEditComment)
		r.Delete("/comments/{id}", s.handleDeleteComment)

		r.Get("/playing", s.handleGetPlaying)
		r.Put("/playing", s.handleSetPlaying)
		r.Delete("/playing", s.handleClearPlaying)

		r.Get("/profile", s.handleProfile)
	})
	return r
}

func rateLimit(limit int, window time.Duration) func(http.Handler) http.Handler {
	return httprate.Limit(
		limit,
		window,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Retry-After", fmt.Sprintf("%d", int(window.Seconds())))
			writeError(w, http.StatusTooManyRequests, "too many requests")
		}),
	)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		event := s.logger.Debug()
		if status >= http.StatusInternalServerError {
			event = s.logger.Error()
		}
		event.
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", status).
			Dur("duration", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("http request")
	})
}
