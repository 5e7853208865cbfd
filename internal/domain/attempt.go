package domain

import (
	"time"
)

// AttemptKind identifies which grader produced an attempt.
type AttemptKind string

// Attempt kinds, one per grader.
const (
	AttemptQuiz     AttemptKind = "quiz"
	AttemptMapQuiz  AttemptKind = "map_quiz"
	AttemptCode     AttemptKind = "code"
	AttemptDatabase AttemptKind = "database"
)

// Attempt is one graded submission. Attempts are an audit trail only;
// page progress is never rebuilt from them.
type Attempt struct {
	ID        int64       `json:"id"`
	UserID    string      `json:"user_id"`
	SessionID string      `json:"session_id"`
	Kind      AttemptKind `json:"kind"`
	Target    string      `json:"target"`
	Correct   bool        `json:"correct"`
	CreatedAt time.Time   `json:"created_at"`
}
