package domain

// AnswerCorrect is the option tag that marks the right answer of a
// multiple-choice quiz.
const AnswerCorrect = "correct"

// QuizOption is one selectable answer of a multiple-choice quiz.
type QuizOption struct {
	ID     string `json:"id" yaml:"id"`
	Label  string `json:"label" yaml:"label"`
	Answer string `json:"-" yaml:"answer"`
}

// IsCorrect reports whether the option carries the correct tag.
func (o QuizOption) IsCorrect() bool {
	return o.Answer == AnswerCorrect
}

// Quiz is a checkbox-style quiz where exactly one option may be chosen.
type Quiz struct {
	ID          string       `json:"id" yaml:"id"`
	Question    string       `json:"question" yaml:"question"`
	Options     []QuizOption `json:"options" yaml:"options"`
	Explanation string       `json:"-" yaml:"explanation"`
}

// Option returns the option with the given id.
func (q *Quiz) Option(id string) (QuizOption, bool) {
	for _, o := range q.Options {
		if o.ID == id {
			return o, true
		}
	}
	return QuizOption{}, false
}

// ChoiceOption is one radio button of a map quiz.
type ChoiceOption struct {
	Value string `json:"value" yaml:"value"`
	Label string `json:"label" yaml:"label"`
}

// MapQuiz is a radio-style quiz graded against an expected value.
type MapQuiz struct {
	ID          string         `json:"id" yaml:"id"`
	Question    string         `json:"question" yaml:"question"`
	Options     []ChoiceOption `json:"options" yaml:"options"`
	Expected    string         `json:"-" yaml:"expected"`
	Explanation string         `json:"-" yaml:"explanation"`
}

// FragmentRef points at an HTML fragment and an optional stylesheet.
type FragmentRef struct {
	Source string `json:"source" yaml:"source"`
	CSS    string `json:"css,omitempty" yaml:"css"`
}
