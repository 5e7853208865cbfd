package api

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/ashureev/gomaps-tutor/internal/domain"
	"github.com/ashureev/gomaps-tutor/internal/identity"
)

type taskSummary struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

type tasksResponse struct {
	Code       []taskSummary    `json:"code"`
	Database   []taskSummary    `json:"database"`
	Quizzes    []domain.Quiz    `json:"quizzes"`
	MapQuizzes []domain.MapQuiz `json:"map_quizzes"`
}

// ListTasks lists the gradable tasks and quizzes. Answers are never part of
// the listing.
func (h *Handler) ListTasks(w http.ResponseWriter, r *http.Request) {
	resp := tasksResponse{
		Code:       []taskSummary{},
		Database:   []taskSummary{},
		Quizzes:    []domain.Quiz{},
		MapQuizzes: []domain.MapQuiz{},
	}
	for _, t := range h.grader.CodeTasks() {
		resp.Code = append(resp.Code, taskSummary{ID: t.ID, Title: t.Title})
	}
	for _, typ := range h.grader.DatabaseTypes() {
		t, _ := h.grader.DatabaseTask(typ)
		resp.Database = append(resp.Database, taskSummary{ID: t.Type, Title: t.Title})
	}
	if h.catalog != nil {
		resp.Quizzes = append(resp.Quizzes, h.catalog.Quizzes...)
		resp.MapQuizzes = append(resp.MapQuizzes, h.catalog.MapQuizzes...)
	}
	JSON(w, http.StatusOK, resp)
}

// ListAttempts returns the caller's recent graded attempts.
func (h *Handler) ListAttempts(w http.ResponseWriter, r *http.Request) {
	userID := identity.UserIDFromContext(r.Context())
	if userID == "" {
		Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			Error(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}

	attempts, err := h.repo.ListAttempts(r.Context(), userID, limit)
	if err != nil {
		slog.Error("Failed to list attempts", "error", err, "user_id", userID)
		Error(w, http.StatusInternalServerError, "failed to list attempts")
		return
	}
	if attempts == nil {
		attempts = []*domain.Attempt{}
	}
	JSON(w, http.StatusOK, map[string]any{"attempts": attempts})
}
