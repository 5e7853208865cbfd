// Package stream pushes notification banner updates to the browser over
// Server-Sent Events or a WebSocket.
package stream

import (
	"time"

	"github.com/ashureev/gomaps-tutor/internal/page"
)

const (
	defaultRetry     = 5 * time.Second
	defaultKeepalive = 15 * time.Second
	subscribeBuffer  = 32
)

// Handler serves the notification streams of page sessions.
type Handler struct {
	pages         *page.Manager
	sockets       *SessionManager
	retry         time.Duration
	keepalive     time.Duration
	allowedOrigin string
	isDev         bool
}

// Option configures a Handler.
type Option func(*Handler)

// WithRetry sets the reconnect delay advertised to SSE clients.
func WithRetry(d time.Duration) Option {
	return func(h *Handler) { h.retry = d }
}

// WithKeepalive sets the ping interval.
func WithKeepalive(d time.Duration) Option {
	return func(h *Handler) { h.keepalive = d }
}

// WithOrigin restricts WebSocket origins outside development.
func WithOrigin(allowedOrigin string, isDev bool) Option {
	return func(h *Handler) {
		h.allowedOrigin = allowedOrigin
		h.isDev = isDev
	}
}

// NewHandler creates a stream handler over the page manager.
func NewHandler(pages *page.Manager, sockets *SessionManager, opts ...Option) *Handler {
	h := &Handler{
		pages:     pages,
		sockets:   sockets,
		retry:     defaultRetry,
		keepalive: defaultKeepalive,
		isDev:     true,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}
