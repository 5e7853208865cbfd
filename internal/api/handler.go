// Package api provides HTTP handlers for the maps tutor API.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/ashureev/gomaps-tutor/internal/checker"
	"github.com/ashureev/gomaps-tutor/internal/identity"
	"github.com/ashureev/gomaps-tutor/internal/page"
	"github.com/ashureev/gomaps-tutor/internal/quiz"
	"github.com/ashureev/gomaps-tutor/internal/store"
	"github.com/ashureev/gomaps-tutor/internal/stream"
	"github.com/go-chi/chi/v5"
)

const maxBodyBytes = 1 << 20

// Handler serves the page, grading and history endpoints.
type Handler struct {
	pages   *page.Manager
	repo    store.Repository
	grader  *checker.Grader
	catalog *quiz.Catalog
	sockets *stream.SessionManager
	limiter *RateLimiter
}

// NewHandler creates a new Handler. sockets and limiter may be nil.
func NewHandler(pages *page.Manager, repo store.Repository, grader *checker.Grader, catalog *quiz.Catalog, sockets *stream.SessionManager, limiter *RateLimiter) *Handler {
	return &Handler{
		pages:   pages,
		repo:    repo,
		grader:  grader,
		catalog: catalog,
		sockets: sockets,
		limiter: limiter,
	}
}

// RegisterRoutes registers the API routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Get("/page", h.GetPage)
		r.Post("/page/reset", h.ResetPage)
		r.Post("/components", h.LoadComponent)
		r.Post("/components/reload", h.ReloadComponents)
		r.Post("/toggle/{kind}/{id}", h.Toggle)
		r.Post("/tabs/{name}", h.ShowTab)
		r.Get("/progress", h.GetProgress)
		r.Get("/tasks", h.ListTasks)
		r.Get("/attempts", h.ListAttempts)

		r.Post("/quiz/{quizID}/select", h.SelectOption)
		r.Group(func(r chi.Router) {
			if h.limiter != nil {
				r.Use(h.limiter.Middleware)
			}
			r.Post("/quiz/{quizID}/check", h.CheckQuiz)
			r.Post("/mapquiz/{quizID}/check", h.CheckMapQuiz)
			r.Post("/code/{taskID}/check", h.CheckCode)
			r.Post("/dbcode/{taskID}/check", h.CheckDatabase)
		})
	})
}

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, v interface{}) {
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

// errEmptyBody is returned by decodeJSON for a request without a body.
var errEmptyBody = errors.New("empty request body")

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return errEmptyBody
		}
		return fmt.Errorf("decode request: %w", err)
	}
	return nil
}

func pageKey(r *http.Request) page.Key {
	return page.Key{
		UserID:    identity.UserIDFromContext(r.Context()),
		SessionID: identity.SessionIDFromContext(r.Context()),
	}
}

// openPage returns the caller's page, creating it on first use. It writes a
// 401 and returns nil when the request carries no identity.
func (h *Handler) openPage(w http.ResponseWriter, r *http.Request) *page.Page {
	key := pageKey(r)
	if key.UserID == "" {
		Error(w, http.StatusUnauthorized, "unauthorized")
		return nil
	}
	return h.pages.Open(r.Context(), key)
}
