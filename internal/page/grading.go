package page

import (
	"context"
	"errors"
	"fmt"

	"github.com/ashureev/gomaps-tutor/internal/checker"
	"github.com/ashureev/gomaps-tutor/internal/domain"
	"github.com/ashureev/gomaps-tutor/internal/highlight"
	"github.com/ashureev/gomaps-tutor/internal/notify"
	"github.com/ashureev/gomaps-tutor/internal/progress"
	"github.com/ashureev/gomaps-tutor/internal/quiz"
	"golang.org/x/net/html"
)

// Notifications shown after successful grading.
const (
	NotifyCodeSolved     = "Task solved correctly!"
	NotifyDatabaseSolved = "Database task solved correctly!"
)

// ErrNoCatalog is returned when a quiz operation needs the catalog and the
// page has none.
var ErrNoCatalog = errors.New("quiz catalog not configured")

func (p *Page) lookupQuiz(id string) (*domain.Quiz, error) {
	if p.deps.Catalog == nil {
		return nil, ErrNoCatalog
	}
	q, ok := p.deps.Catalog.Quiz(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", quiz.ErrUnknownQuiz, id)
	}
	return q, nil
}

// SelectOption checks or unchecks a quiz option. Checking one option
// unchecks the others of the same quiz.
func (p *Page) SelectOption(quizID, optionID string, checked bool) error {
	q, err := p.lookupQuiz(quizID)
	if err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.selection.Set(q, optionID, checked)
}

// ReplaceSelection sets the checked options of a quiz as given, without
// mutual exclusion.
func (p *Page) ReplaceSelection(quizID string, optionIDs []string) error {
	q, err := p.lookupQuiz(quizID)
	if err != nil {
		return err
	}
	for _, id := range optionIDs {
		if _, ok := q.Option(id); !ok {
			return fmt.Errorf("quiz %q: unknown option %q", quizID, id)
		}
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.selection.Clear(quizID)
	p.selection.Force(quizID, optionIDs...)
	return nil
}

// CheckQuiz grades the current selection of a multiple-choice quiz. Alerts
// leave the recorded results untouched; multiple selections are cleared.
func (p *Page) CheckQuiz(ctx context.Context, quizID string) (quiz.Outcome, Snapshot, error) {
	q, err := p.lookupQuiz(quizID)
	if err != nil {
		return quiz.Outcome{}, Snapshot{}, err
	}

	p.mu.Lock()
	out := quiz.Grade(q, p.selection.Checked(quizID))
	if out.Cleared {
		p.selection.Clear(quizID)
	}
	if out.Graded {
		progress.RecordQuiz(p.progress, quizID, out.Correct)
	}
	snap := p.snapshotLocked()
	p.mu.Unlock()

	if out.Graded {
		p.record(ctx, domain.AttemptQuiz, quizID, out.Correct)
	}
	return out, snap, nil
}

// CheckMapQuiz grades a single-choice quiz. Empty expected and explanation
// values are taken from the catalog; an unknown quiz is an error only when
// the caller did not supply the expected value.
func (p *Page) CheckMapQuiz(ctx context.Context, quizID, selected, expected, explanation string) (quiz.ChoiceOutcome, Snapshot, error) {
	if expected == "" || explanation == "" {
		var mq *domain.MapQuiz
		if p.deps.Catalog != nil {
			mq, _ = p.deps.Catalog.MapQuiz(quizID)
		}
		if mq == nil && expected == "" {
			return quiz.ChoiceOutcome{}, Snapshot{}, fmt.Errorf("%w: %s", quiz.ErrUnknownQuiz, quizID)
		}
		if mq != nil {
			if expected == "" {
				expected = mq.Expected
			}
			if explanation == "" {
				explanation = mq.Explanation
			}
		}
	}

	out := quiz.GradeChoice(quizID, selected, expected, explanation)

	p.mu.Lock()
	if out.Correct {
		progress.CompleteTask(p.progress)
	}
	snap := p.snapshotLocked()
	p.mu.Unlock()

	if out.Correct {
		p.notifier.Show(quiz.MsgChoiceNotify, notify.SeveritySuccess)
	}
	if out.Graded {
		p.record(ctx, domain.AttemptMapQuiz, quizID, out.Correct)
	}
	return out, snap, nil
}

// CheckMapCode grades a map-code submission.
func (p *Page) CheckMapCode(ctx context.Context, taskID, code string) (checker.Result, Snapshot) {
	res := p.deps.Grader.CheckCode(taskID, code)
	snap := p.afterCheck(res, NotifyCodeSolved)
	if res.Graded() {
		p.record(ctx, domain.AttemptCode, taskID, res.Correct)
	}
	return res, snap
}

// CheckDatabaseCode grades a database submission. On success the submitted
// code is echoed back highlighted.
func (p *Page) CheckDatabaseCode(ctx context.Context, taskID, taskType, code string) (checker.Result, Snapshot) {
	res := p.deps.Grader.CheckDatabase(taskID, taskType, code)
	if res.Correct {
		block := `<pre><code class="language-go">` + html.EscapeString(res.Submitted) + `</code></pre>`
		res.SubmittedHTML = highlight.Apply(p.deps.Highlighter, block)
	}
	snap := p.afterCheck(res, NotifyDatabaseSolved)
	if res.Graded() {
		p.record(ctx, domain.AttemptDatabase, taskID, res.Correct)
	}
	return res, snap
}

func (p *Page) afterCheck(res checker.Result, notice string) Snapshot {
	p.mu.Lock()
	if res.Correct {
		progress.CompleteTask(p.progress)
	}
	snap := p.snapshotLocked()
	p.mu.Unlock()

	if res.Correct {
		p.notifier.Show(notice, notify.SeveritySuccess)
	}
	return snap
}
