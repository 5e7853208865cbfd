package quiz

import (
	"github.com/ashureev/gomaps-tutor/internal/domain"
)

// Messages shown by the graders.
const (
	AlertChooseOne   = "Please choose an answer!"
	AlertOnlyOne     = "Choose only one answer!"
	MsgQuizCorrect   = "Correct! Great understanding of how slices work!"
	MsgQuizWrong     = "Wrong. Study the explanation below."
	MsgChoiceMissing = "Please choose an answer"
	MsgChoiceWrong   = "Wrong. Try again!"
	MsgChoiceNotify  = "Quiz solved correctly!"
)

// Mark is the visual state of an option after grading.
type Mark string

// Option marks. MarkNone leaves the option unstyled.
const (
	MarkNone    Mark = ""
	MarkCorrect Mark = "correct"
	MarkWrong   Mark = "wrong"
)

// Outcome is the result of grading a multiple-choice quiz.
type Outcome struct {
	QuizID      string          `json:"quiz_id"`
	Alert       string          `json:"alert,omitempty"`
	Cleared     bool            `json:"cleared,omitempty"`
	Graded      bool            `json:"graded"`
	Correct     bool            `json:"correct"`
	Message     string          `json:"message,omitempty"`
	Marks       map[string]Mark `json:"marks,omitempty"`
	Explanation string          `json:"explanation,omitempty"`
}

// Grade grades the checked options of q. Zero selections and multiple
// selections produce an alert instead of a grade; for multiple selections
// Cleared tells the caller to uncheck every option.
func Grade(q *domain.Quiz, checked []string) Outcome {
	switch {
	case len(checked) == 0:
		return Outcome{QuizID: q.ID, Alert: AlertChooseOne}
	case len(checked) > 1:
		return Outcome{QuizID: q.ID, Alert: AlertOnlyOne, Cleared: true}
	}

	selected := checked[0]
	var tag string
	if opt, ok := q.Option(selected); ok {
		tag = opt.Answer
	}
	correct := tag == domain.AnswerCorrect

	marks := make(map[string]Mark, len(q.Options))
	for _, o := range q.Options {
		switch {
		case o.IsCorrect():
			marks[o.ID] = MarkCorrect
		case o.ID == selected:
			marks[o.ID] = MarkWrong
		default:
			marks[o.ID] = MarkNone
		}
	}

	out := Outcome{
		QuizID:      q.ID,
		Graded:      true,
		Correct:     correct,
		Marks:       marks,
		Explanation: q.Explanation,
	}
	if correct {
		out.Message = MsgQuizCorrect
	} else {
		out.Message = MsgQuizWrong
	}
	return out
}

// ChoiceOutcome is the result of grading a single-choice quiz.
type ChoiceOutcome struct {
	QuizID  string `json:"quiz_id"`
	Graded  bool   `json:"graded"`
	Correct bool   `json:"correct"`
	Message string `json:"message"`
}

// GradeChoice compares the selected radio value with expected. An empty
// selection is not graded. A wrong answer carries no penalty.
func GradeChoice(quizID, selected, expected, explanation string) ChoiceOutcome {
	if selected == "" {
		return ChoiceOutcome{QuizID: quizID, Message: MsgChoiceMissing}
	}
	if selected == expected {
		return ChoiceOutcome{QuizID: quizID, Graded: true, Correct: true, Message: explanation}
	}
	return ChoiceOutcome{QuizID: quizID, Graded: true, Message: MsgChoiceWrong}
}
