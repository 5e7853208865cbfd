package api

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/ashureev/gomaps-tutor/internal/domain"
	"github.com/ashureev/gomaps-tutor/internal/identity"
	"github.com/ashureev/gomaps-tutor/internal/page"
	"github.com/go-chi/chi/v5"
)

type pageResponse struct {
	Username string `json:"username"`
	page.View
}

// GetPage returns the full page view.
func (h *Handler) GetPage(w http.ResponseWriter, r *http.Request) {
	p := h.openPage(w, r)
	if p == nil {
		return
	}
	JSON(w, http.StatusOK, pageResponse{
		Username: identity.UsernameFromContext(r.Context()),
		View:     p.View(),
	})
}

// ResetPage drops the caller's page session, like a full browser reload.
func (h *Handler) ResetPage(w http.ResponseWriter, r *http.Request) {
	key := pageKey(r)
	if key.UserID == "" {
		Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	reset := h.pages.Reset(key)
	if h.sockets != nil {
		h.sockets.CloseSession(key.UserID, key.SessionID)
	}
	JSON(w, http.StatusOK, map[string]bool{"reset": reset})
}

type componentRequest struct {
	Source string `json:"source"`
	CSS    string `json:"css"`
}

// LoadComponent attaches and loads a new include element. Fetch failures
// are rendered into the element, not returned as errors.
func (h *Handler) LoadComponent(w http.ResponseWriter, r *http.Request) {
	var req componentRequest
	if err := decodeJSON(r, &req); err != nil {
		Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.Source = strings.TrimSpace(req.Source)
	if req.Source == "" {
		Error(w, http.StatusBadRequest, "source is required")
		return
	}

	p := h.openPage(w, r)
	if p == nil {
		return
	}
	el := p.LoadComponent(r.Context(), domain.FragmentRef{Source: req.Source, CSS: strings.TrimSpace(req.CSS)})
	JSON(w, http.StatusCreated, el)
}

// ReloadComponents reloads every include element of the page.
func (h *Handler) ReloadComponents(w http.ResponseWriter, r *http.Request) {
	p := h.openPage(w, r)
	if p == nil {
		return
	}
	n := p.ReloadAll(r.Context())
	JSON(w, http.StatusOK, map[string]int{"reloaded": n})
}

type toggleResponse struct {
	ID       string `json:"id"`
	Kind     string `json:"kind"`
	Open     bool   `json:"open"`
	Progress any    `json:"progress,omitempty"`
}

// Toggle flips a task, hint, solution or theory section.
func (h *Handler) Toggle(w http.ResponseWriter, r *http.Request) {
	kind := chi.URLParam(r, "kind")
	id := chi.URLParam(r, "id")

	p := h.openPage(w, r)
	if p == nil {
		return
	}

	resp := toggleResponse{ID: id, Kind: kind}
	switch kind {
	case "task":
		resp.Open = p.ToggleTask(id)
	case "hint":
		open, snap := p.ToggleHint(id)
		resp.Open, resp.Progress = open, snap
	case "solution":
		open, snap := p.ToggleSolution(id)
		resp.Open, resp.Progress = open, snap
	case "theory":
		resp.Open = p.ToggleTheory(id)
	default:
		Error(w, http.StatusNotFound, "unknown toggle kind")
		return
	}

	slog.Debug("Toggled", "kind", kind, "id", id, "open", resp.Open, "user_id", p.Key().UserID)
	JSON(w, http.StatusOK, resp)
}

// ShowTab activates one tab.
func (h *Handler) ShowTab(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	p := h.openPage(w, r)
	if p == nil {
		return
	}
	p.ShowTab(name)
	JSON(w, http.StatusOK, map[string]string{"active_tab": name})
}

// GetProgress returns the progress counters and bar.
func (h *Handler) GetProgress(w http.ResponseWriter, r *http.Request) {
	p := h.openPage(w, r)
	if p == nil {
		return
	}
	JSON(w, http.StatusOK, p.Progress())
}
