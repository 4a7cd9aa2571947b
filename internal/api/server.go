// Package api serves duels over HTTP as JSON for the browser client.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/tatianab/duelul-ideilor/internal/duel"
	"github.com/tatianab/duelul-ideilor/internal/models"
)

// Server exposes the duel registry, the catalogs and the saved preferences.
type Server struct {
	reg   *Registry
	store *models.Store
	log   *slog.Logger
	now   func() time.Time
}

// NewServer creates a server over reg. store may be nil, in which case
// preference endpoints report 404.
func NewServer(reg *Registry, store *models.Store, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{reg: reg, store: store, log: log, now: time.Now}
}

// Routes builds the router with the standard middleware stack.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Heartbeat("/health"))

	r.Route("/api", func(r chi.Router) {
		r.Get("/catalog", s.handleCatalog)
		r.Get("/rules", s.handleRules)
		r.Get("/preferences", s.handleGetPreferences)
		r.Put("/preferences", s.handlePutPreferences)

		r.Post("/duels", s.handleCreateDuel)
		r.Route("/duels/{duelID}", func(r chi.Router) {
			r.Get("/", s.handleGetDuel)
			r.Delete("/", s.handleDeleteDuel)
			r.Put("/draft", s.handleDraft)
			r.Post("/turns", s.handleTurn)
			r.Post("/end", s.handleEnd)
			r.Get("/challenge", s.handleOpenChallenge)
			r.Post("/challenges", s.handleSubmitChallenge)
			r.Get("/report", s.handleReport)

			r.Route("/messages/{messageID}", func(r chi.Router) {
				r.Post("/like", s.handleLike)
				r.Post("/too-complex", s.handleTooComplex)
				r.Post("/explanation", s.handleExplain)
				r.Post("/image", s.handleVisualize)
				r.Get("/image", s.handleGetImage)
			})
		})
	})
	return r
}

// requestLogger logs each request once it completes.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.log.Info("request completed",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"error": "failed to encode response"}`, http.StatusInternalServerError)
	}
}

// Error writes a JSON error response.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"error": message})
}

// statusFor maps session errors to HTTP statuses. Anything unrecognized is
// an upstream oracle or storage failure.
func statusFor(err error) int {
	switch {
	case errors.Is(err, errUnknownDuel):
		return http.StatusNotFound
	case errors.Is(err, duel.ErrRejected):
		return http.StatusUnprocessableEntity
	case errors.Is(err, duel.ErrBusy), errors.Is(err, duel.ErrEnded):
		return http.StatusConflict
	case errors.Is(err, duel.ErrClosed):
		return http.StatusGone
	}
	return http.StatusBadGateway
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	level := slog.LevelInfo
	if status >= http.StatusInternalServerError {
		level = slog.LevelWarn
	}
	s.log.Log(r.Context(), level, "request failed",
		"path", r.URL.Path,
		"status", status,
		"error", err,
		"request_id", middleware.GetReqID(r.Context()),
	)
	Error(w, status, err.Error())
}

func decode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}
