package domain

// Progress is the per-page learner state: completed tasks, opened hints and
// multiple-choice quiz outcomes keyed by quiz id.
type Progress struct {
	CompletedTasks int             `json:"completed_tasks"`
	HintsUsed      int             `json:"hints_used"`
	QuizResults    map[string]bool `json:"quiz_results"`
}

// NewProgress returns an empty progress state.
func NewProgress() *Progress {
	return &Progress{QuizResults: make(map[string]bool)}
}

// PassedQuizzes counts quiz results recorded as correct.
func (p *Progress) PassedQuizzes() int {
	n := 0
	for _, ok := range p.QuizResults {
		if ok {
			n++
		}
	}
	return n
}

// Clone returns a deep copy safe to hand to callers outside the page lock.
func (p *Progress) Clone() *Progress {
	out := &Progress{
		CompletedTasks: p.CompletedTasks,
		HintsUsed:      p.HintsUsed,
		QuizResults:    make(map[string]bool, len(p.QuizResults)),
	}
	for k, v := range p.QuizResults {
		out.QuizResults[k] = v
	}
	return out
}
