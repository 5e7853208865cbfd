package stream

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/ashureev/gomaps-tutor/internal/identity"
	"github.com/ashureev/gomaps-tutor/internal/page"
)

// ServeSSE streams the banner lifecycle of the caller's page. The stream
// ends when the client leaves or the page session is dropped.
func (h *Handler) ServeSSE(w http.ResponseWriter, r *http.Request) {
	userID := identity.UserIDFromContext(r.Context())
	sessionID := identity.SessionIDFromContext(r.Context())
	if userID == "" {
		http.Error(w, `{"error": "unauthorized"}`, http.StatusUnauthorized)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, `{"error": "streaming not supported"}`, http.StatusInternalServerError)
		return
	}

	p := h.pages.Open(r.Context(), page.Key{UserID: userID, SessionID: sessionID})
	updates, cancel := p.Notifier().Subscribe(subscribeBuffer)
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	if _, err := io.WriteString(w, fmt.Sprintf("retry: %d\n\n", h.retry.Milliseconds())); err != nil {
		slog.Warn("failed to write SSE retry header", "error", err, "user_id", userID)
		return
	}

	connected, err := json.Marshal(map[string]any{
		"status":  "connected",
		"banners": p.Notifier().Banners(),
	})
	if err != nil {
		slog.Error("failed to encode SSE connected event", "error", err)
		return
	}
	if err := writeSSE(w, "connected", string(connected)); err != nil {
		slog.Warn("failed to write SSE connected event", "error", err, "user_id", userID)
		return
	}
	flusher.Flush()
	slog.Info("Notification stream connected", "user_id", userID, "username", identity.UsernameFromContext(r.Context()), "session_id", sessionID)

	keepalive := time.NewTicker(h.keepalive)
	defer keepalive.Stop()

	for {
		select {
		case <-r.Context().Done():
			slog.Info("Notification stream disconnected", "user_id", userID, "session_id", sessionID)
			return
		case u, ok := <-updates:
			if !ok {
				_ = writeSSE(w, "closed", `{"status":"page reset"}`)
				flusher.Flush()
				return
			}
			data, err := json.Marshal(u)
			if err != nil {
				slog.Error("failed to encode notification", "error", err)
				continue
			}
			if err := writeSSE(w, "notification", string(data)); err != nil {
				slog.Warn("failed to write SSE notification", "error", err, "user_id", userID)
				return
			}
			flusher.Flush()
		case <-keepalive.C:
			if err := writeSSE(w, "ping", `{"status":"alive"}`); err != nil {
				slog.Warn("failed to write SSE keepalive ping", "error", err, "user_id", userID)
				return
			}
			flusher.Flush()
		}
	}
}

func writeSSE(w io.Writer, event, data string) error {
	_, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data)
	return err
}
