// Package progress computes the page progress bar from learner state.
package progress

import (
	"strconv"

	"github.com/ashureev/gomaps-tutor/internal/domain"
)

// TotalTasks is the fixed denominator of the progress percentage.
const TotalTasks = 60

// Bar is the rendered progress bar.
type Bar struct {
	Completed int     `json:"completed"`
	Total     int     `json:"total"`
	Percent   float64 `json:"percent"`
	Width     string  `json:"width"`
}

// Recompute derives the bar from state. The percentage is not capped: more
// completions than TotalTasks yield a bar wider than 100%.
func Recompute(p *domain.Progress) Bar {
	completed := p.CompletedTasks + p.PassedQuizzes()
	percent := float64(completed) * 100 / TotalTasks
	return Bar{
		Completed: completed,
		Total:     TotalTasks,
		Percent:   percent,
		Width:     strconv.FormatFloat(percent, 'f', -1, 64) + "%",
	}
}

// CompleteTask counts one more completed task. There is no decrement.
func CompleteTask(p *domain.Progress) {
	p.CompletedTasks++
}

// UseHint counts one more opened hint.
func UseHint(p *domain.Progress) {
	p.HintsUsed++
}

// RecordQuiz stores the outcome of a multiple-choice quiz, replacing any
// earlier outcome for the same quiz.
func RecordQuiz(p *domain.Progress, quizID string, correct bool) {
	if p.QuizResults == nil {
		p.QuizResults = make(map[string]bool)
	}
	p.QuizResults[quizID] = correct
}
