package api

import (
	"errors"
	"net/http"

	"github.com/ashureev/gomaps-tutor/internal/page"
	"github.com/ashureev/gomaps-tutor/internal/quiz"
	"github.com/go-chi/chi/v5"
)

// gradeResponse wraps a grading outcome with the resulting progress.
type gradeResponse struct {
	Result   any           `json:"result"`
	Progress page.Snapshot `json:"progress"`
}

func writeQuizError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, quiz.ErrUnknownQuiz):
		Error(w, http.StatusNotFound, err.Error())
	case errors.Is(err, page.ErrNoCatalog):
		Error(w, http.StatusServiceUnavailable, err.Error())
	default:
		Error(w, http.StatusBadRequest, err.Error())
	}
}

type selectRequest struct {
	Option  string `json:"option"`
	Checked bool   `json:"checked"`
}

// SelectOption checks or unchecks one option of a multiple-choice quiz.
func (h *Handler) SelectOption(w http.ResponseWriter, r *http.Request) {
	quizID := chi.URLParam(r, "quizID")
	var req selectRequest
	if err := decodeJSON(r, &req); err != nil {
		Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	p := h.openPage(w, r)
	if p == nil {
		return
	}
	if err := p.SelectOption(quizID, req.Option, req.Checked); err != nil {
		writeQuizError(w, err)
		return
	}
	checked := p.View().Checked[quizID]
	if checked == nil {
		checked = []string{}
	}
	JSON(w, http.StatusOK, map[string]any{"quiz_id": quizID, "checked": checked})
}

type checkQuizRequest struct {
	Checked []string `json:"checked"`
}

// CheckQuiz grades a multiple-choice quiz. An optional body replaces the
// current selection before grading.
func (h *Handler) CheckQuiz(w http.ResponseWriter, r *http.Request) {
	quizID := chi.URLParam(r, "quizID")
	var req checkQuizRequest
	if err := decodeJSON(r, &req); err != nil && !errors.Is(err, errEmptyBody) {
		Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	p := h.openPage(w, r)
	if p == nil {
		return
	}
	if req.Checked != nil {
		if err := p.ReplaceSelection(quizID, req.Checked); err != nil {
			writeQuizError(w, err)
			return
		}
	}
	out, snap, err := p.CheckQuiz(r.Context(), quizID)
	if err != nil {
		writeQuizError(w, err)
		return
	}
	JSON(w, http.StatusOK, gradeResponse{Result: out, Progress: snap})
}

type checkMapQuizRequest struct {
	Selected    string `json:"selected"`
	Expected    string `json:"expected"`
	Explanation string `json:"explanation"`
}

// CheckMapQuiz grades a single-choice quiz.
func (h *Handler) CheckMapQuiz(w http.ResponseWriter, r *http.Request) {
	quizID := chi.URLParam(r, "quizID")
	var req checkMapQuizRequest
	if err := decodeJSON(r, &req); err != nil && !errors.Is(err, errEmptyBody) {
		Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	p := h.openPage(w, r)
	if p == nil {
		return
	}
	out, snap, err := p.CheckMapQuiz(r.Context(), quizID, req.Selected, req.Expected, req.Explanation)
	if err != nil {
		writeQuizError(w, err)
		return
	}
	JSON(w, http.StatusOK, gradeResponse{Result: out, Progress: snap})
}

type checkCodeRequest struct {
	Code string `json:"code"`
}

// CheckCode grades a map-code submission. Empty and unknown-task
// submissions are reported in the result, not as HTTP errors.
func (h *Handler) CheckCode(w http.ResponseWriter, r *http.Request) {
	taskID := chi.URLParam(r, "taskID")
	var req checkCodeRequest
	if err := decodeJSON(r, &req); err != nil && !errors.Is(err, errEmptyBody) {
		Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	p := h.openPage(w, r)
	if p == nil {
		return
	}
	res, snap := p.CheckMapCode(r.Context(), taskID, req.Code)
	JSON(w, http.StatusOK, gradeResponse{Result: res, Progress: snap})
}

type checkDatabaseRequest struct {
	Type string `json:"type"`
	Code string `json:"code"`
}

// CheckDatabase grades a database-task submission.
func (h *Handler) CheckDatabase(w http.ResponseWriter, r *http.Request) {
	taskID := chi.URLParam(r, "taskID")
	var req checkDatabaseRequest
	if err := decodeJSON(r, &req); err != nil && !errors.Is(err, errEmptyBody) {
		Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	p := h.openPage(w, r)
	if p == nil {
		return
	}
	res, snap := p.CheckDatabaseCode(r.Context(), taskID, req.Type, req.Code)
	JSON(w, http.StatusOK, gradeResponse{Result: res, Progress: snap})
}
