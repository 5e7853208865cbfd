package page

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Manager owns the live pages, keyed by user and tab session.
type Manager struct {
	deps Deps
	now  func() time.Time

	mu    sync.RWMutex
	pages map[string]map[string]*Page
}

// NewManager creates a page manager sharing deps across pages.
func NewManager(deps Deps) *Manager {
	return &Manager{
		deps:  deps,
		now:   time.Now,
		pages: make(map[string]map[string]*Page),
	}
}

// Open returns the page for key, creating and booting it on first use. The
// page is marked active.
func (m *Manager) Open(ctx context.Context, key Key) *Page {
	p := m.getOrCreate(key)
	p.Touch(m.now())
	p.Boot(ctx)
	return p
}

// Get returns an existing page without creating one.
func (m *Manager) Get(key Key) *Page {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if sessions, ok := m.pages[key.UserID]; ok {
		return sessions[key.SessionID]
	}
	return nil
}

func (m *Manager) getOrCreate(key Key) *Page {
	if p := m.Get(key); p != nil {
		return p
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.pages[key.UserID]; !ok {
		m.pages[key.UserID] = make(map[string]*Page)
	}
	if p, ok := m.pages[key.UserID][key.SessionID]; ok {
		return p
	}
	p := New(key, m.deps)
	m.pages[key.UserID][key.SessionID] = p
	slog.Info("Page session opened", "user_id", key.UserID, "session_id", key.SessionID)
	return p
}

// Reset drops the page for key, the equivalent of a full page reload: the
// next Open starts from empty progress.
func (m *Manager) Reset(key Key) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	sessions, ok := m.pages[key.UserID]
	if !ok {
		return false
	}
	p, ok := sessions[key.SessionID]
	if !ok {
		return false
	}
	p.Close()
	delete(sessions, key.SessionID)
	if len(sessions) == 0 {
		delete(m.pages, key.UserID)
	}
	slog.Info("Page session reset", "user_id", key.UserID, "session_id", key.SessionID)
	return true
}

// Len returns the number of live pages.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, sessions := range m.pages {
		n += len(sessions)
	}
	return n
}

// Sweep drops pages idle for longer than ttl and returns how many were
// dropped.
func (m *Manager) Sweep(ttl time.Duration) int {
	threshold := m.now().Add(-ttl)

	m.mu.Lock()
	defer m.mu.Unlock()
	dropped := 0
	for userID, sessions := range m.pages {
		for sid, p := range sessions {
			if p.LastSeen().Before(threshold) {
				p.Close()
				delete(sessions, sid)
				dropped++
			}
		}
		if len(sessions) == 0 {
			delete(m.pages, userID)
		}
	}
	return dropped
}
