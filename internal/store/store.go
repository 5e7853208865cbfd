// Package store provides data persistence interfaces and implementations.
package store

import (
	"context"
	"time"

	"github.com/ashureev/gomaps-tutor/internal/domain"
)

// Repository defines the interface for persisting learners and their
// graded attempts.
type Repository interface {
	// GetUser retrieves a user by their user ID. A missing user is (nil, nil).
	GetUser(ctx context.Context, userID string) (*domain.User, error)

	// UpsertUser creates or updates a user record.
	UpsertUser(ctx context.Context, user *domain.User) error

	// UpdateLastSeen updates the last_seen_at timestamp for a user.
	UpdateLastSeen(ctx context.Context, userID string, lastSeen time.Time) error

	// RecordAttempt appends a graded attempt and sets its ID.
	RecordAttempt(ctx context.Context, attempt *domain.Attempt) error

	// ListAttempts returns the most recent attempts of a user, newest first.
	ListAttempts(ctx context.Context, userID string, limit int) ([]*domain.Attempt, error)

	// PruneAttempts removes attempts older than the retention window.
	PruneAttempts(ctx context.Context, retention time.Duration) (int64, error)

	// Ping verifies database connectivity and returns an error if the database is unreachable.
	Ping(ctx context.Context) error

	// Close closes the database connection.
	Close() error
}
