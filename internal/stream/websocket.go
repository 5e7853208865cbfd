package stream

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/ashureev/gomaps-tutor/internal/identity"
	"github.com/ashureev/gomaps-tutor/internal/notify"
	"github.com/ashureev/gomaps-tutor/internal/page"
	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
)

const writeTimeout = 5 * time.Second

// wsMessage is one frame sent to the client.
type wsMessage struct {
	Type    string          `json:"type"`
	Update  *notify.Update  `json:"update,omitempty"`
	Banners []notify.Banner `json:"banners,omitempty"`
}

// ServeWebSocket upgrades the request and pushes banner updates of the
// caller's page. Client frames are ignored.
func (h *Handler) ServeWebSocket(w http.ResponseWriter, r *http.Request) {
	userID := identity.UserIDFromContext(r.Context())
	sessionID := identity.SessionIDFromContext(r.Context())
	slog.Info("WebSocket connection request", "user_id", userID, "session_id", sessionID, "ip", r.RemoteAddr)

	if userID == "" {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	if !h.checkOrigin(r) {
		http.Error(w, "origin not allowed", http.StatusForbidden)
		return
	}

	ws, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		slog.Error("Failed to accept WebSocket", "error", err, "user_id", userID)
		return
	}
	defer func() {
		if closeErr := ws.Close(websocket.StatusNormalClosure, "session ended"); closeErr != nil {
			slog.Debug("Failed to close websocket", "error", closeErr, "user_id", userID)
		}
	}()

	h.sockets.Register(userID, sessionID, ws)
	defer h.sockets.Unregister(userID, sessionID, ws)

	p := h.pages.Open(r.Context(), page.Key{UserID: userID, SessionID: sessionID})
	updates, cancel := p.Notifier().Subscribe(subscribeBuffer)
	defer cancel()

	// CloseRead drains client frames and cancels ctx once the peer goes away.
	ctx := ws.CloseRead(r.Context())

	if err := h.writeJSON(ctx, ws, wsMessage{Type: "connected", Banners: p.Notifier().Banners()}); err != nil {
		slog.Debug("Failed to send connected frame", "error", err, "user_id", userID)
		return
	}

	keepalive := time.NewTicker(h.keepalive)
	defer keepalive.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("Notification socket closed", "user_id", userID, "session_id", sessionID)
			return
		case u, ok := <-updates:
			if !ok {
				_ = h.writeJSON(ctx, ws, wsMessage{Type: "closed"})
				return
			}
			if err := h.writeJSON(ctx, ws, wsMessage{Type: "notification", Update: &u}); err != nil {
				slog.Warn("WebSocket write error", "error", err, "user_id", userID)
				return
			}
		case <-keepalive.C:
			pingCtx, cancelPing := context.WithTimeout(ctx, writeTimeout)
			err := ws.Ping(pingCtx)
			cancelPing()
			if err != nil {
				slog.Debug("WebSocket ping failed", "error", err, "user_id", userID)
				return
			}
		}
	}
}

func (h *Handler) writeJSON(ctx context.Context, ws *websocket.Conn, v any) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	return wsjson.Write(ctx, ws, v)
}

func (h *Handler) checkOrigin(r *http.Request) bool {
	if h.isDev {
		return true
	}
	origin := r.Header.Get("Origin")
	if origin == "" || h.allowedOrigin == "*" || origin == h.allowedOrigin {
		return true
	}
	slog.Warn("WebSocket origin rejected", "origin", origin, "allowed", h.allowedOrigin)
	return false
}
