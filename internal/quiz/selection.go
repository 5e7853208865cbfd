package quiz

import (
	"fmt"
	"sort"

	"github.com/ashureev/gomaps-tutor/internal/domain"
)

// Selection holds the checkbox state of the multiple-choice quizzes on a
// page. It is not safe for concurrent use; the owning page serializes access.
type Selection struct {
	checked map[string]map[string]bool
}

// NewSelection creates an empty selection.
func NewSelection() *Selection {
	return &Selection{checked: make(map[string]map[string]bool)}
}

// Set checks or unchecks one option. Checking an option unchecks every other
// option of the same quiz.
func (s *Selection) Set(q *domain.Quiz, optionID string, checked bool) error {
	if _, ok := q.Option(optionID); !ok {
		return fmt.Errorf("quiz %q: unknown option %q", q.ID, optionID)
	}
	if !checked {
		delete(s.checked[q.ID], optionID)
		return nil
	}
	s.checked[q.ID] = map[string]bool{optionID: true}
	return nil
}

// Force marks options checked without mutual exclusion. It models markup
// that bypasses the change handler.
func (s *Selection) Force(quizID string, optionIDs ...string) {
	if s.checked[quizID] == nil {
		s.checked[quizID] = make(map[string]bool)
	}
	for _, id := range optionIDs {
		s.checked[quizID][id] = true
	}
}

// Checked returns the checked option ids of a quiz, sorted.
func (s *Selection) Checked(quizID string) []string {
	ids := make([]string, 0, len(s.checked[quizID]))
	for id := range s.checked[quizID] {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Clear unchecks every option of a quiz.
func (s *Selection) Clear(quizID string) {
	delete(s.checked, quizID)
}
