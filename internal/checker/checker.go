// Package checker grades free-text code submissions.
//
// Checks are lexical heuristics: a predicate looks for required fragments
// (a type declaration, a built-in call) and never parses or runs the code.
// A submission with the right keywords in the wrong arrangement passes, and a
// correct one written with different constructs can fail. That is the
// intended precision of these exercises.
package checker

import (
	"regexp"
	"strings"
)

// Checker decides whether a submission looks like a solution.
type Checker interface {
	Check(code string) bool
}

// CheckFunc adapts a plain function to Checker.
type CheckFunc func(code string) bool

// Check implements Checker.
func (f CheckFunc) Check(code string) bool { return f(code) }

// Contains passes when code contains every fragment.
func Contains(fragments ...string) Checker {
	return CheckFunc(func(code string) bool {
		for _, f := range fragments {
			if !strings.Contains(code, f) {
				return false
			}
		}
		return true
	})
}

// Matches passes when code matches the pattern.
func Matches(pattern string) Checker {
	re := regexp.MustCompile(pattern)
	return CheckFunc(re.MatchString)
}

// All passes when every checker passes.
func All(checkers ...Checker) Checker {
	return CheckFunc(func(code string) bool {
		for _, c := range checkers {
			if !c.Check(code) {
				return false
			}
		}
		return true
	})
}

// Any passes when at least one checker passes.
func Any(checkers ...Checker) Checker {
	return CheckFunc(func(code string) bool {
		for _, c := range checkers {
			if c.Check(code) {
				return true
			}
		}
		return false
	})
}

// Task is a free-text exercise with its checker and reference solution.
type Task struct {
	ID       string
	Title    string
	Checker  Checker
	Solution string
}

// Status is the outcome category of a check.
type Status string

const (
	// StatusSuccess means the submission passed.
	StatusSuccess Status = "success"
	// StatusFailure means the submission was graded and failed.
	StatusFailure Status = "failure"
	// StatusError means the submission could not be graded (empty input,
	// unknown task).
	StatusError Status = "error"
)

// Result is a rendered grading outcome.
type Result struct {
	TaskID        string   `json:"task_id"`
	Status        Status   `json:"status"`
	Correct       bool     `json:"correct"`
	Message       string   `json:"message"`
	Errors        []string `json:"errors,omitempty"`
	Solution      string   `json:"solution,omitempty"`
	SolutionLabel string   `json:"solution_label,omitempty"`
	Submitted     string   `json:"submitted,omitempty"`
	SubmittedHTML string   `json:"submitted_html,omitempty"`
}

// Graded reports whether the result counts as an attempt.
func (r Result) Graded() bool {
	return r.Status != StatusError
}

// Messages shown by the map-code checker.
const (
	MsgEnterCode       = "Please enter code"
	MsgSolutionMissing = "Error: solution not found"
	MsgCodeCorrect     = "Great! Your solution looks correct."
	MsgCodeIncomplete  = "The solution is incomplete or contains errors. Check:"
	LabelReference     = "Show reference solution"
	LabelHint          = "Show hint"
)

// GenericHints is the fallback remediation list for failed submissions.
var GenericHints = []string{
	"Go syntax is correct",
	"Required constructs are used (range, make, etc.)",
	"Algorithm logic",
}

// Registry holds code tasks by id.
type Registry struct {
	tasks map[string]Task
	order []string
}

// NewRegistry creates a registry. Later tasks replace earlier ones with the
// same id.
func NewRegistry(tasks ...Task) *Registry {
	r := &Registry{tasks: make(map[string]Task, len(tasks))}
	for _, t := range tasks {
		if _, exists := r.tasks[t.ID]; !exists {
			r.order = append(r.order, t.ID)
		}
		r.tasks[t.ID] = t
	}
	return r
}

// Get returns the task with the given id.
func (r *Registry) Get(id string) (Task, bool) {
	t, ok := r.tasks[id]
	return t, ok
}

// Tasks returns all tasks in registration order.
func (r *Registry) Tasks() []Task {
	out := make([]Task, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.tasks[id])
	}
	return out
}

// Check grades code against the task with the given id. Input is trimmed
// first; the reference solution is disclosed both on success and as a hint
// on failure.
func (r *Registry) Check(taskID, code string) Result {
	code = strings.TrimSpace(code)
	if code == "" {
		return Result{TaskID: taskID, Status: StatusError, Message: MsgEnterCode}
	}

	task, ok := r.Get(taskID)
	if !ok {
		return Result{TaskID: taskID, Status: StatusError, Message: MsgSolutionMissing}
	}

	if task.Checker.Check(code) {
		return Result{
			TaskID:        taskID,
			Status:        StatusSuccess,
			Correct:       true,
			Message:       MsgCodeCorrect,
			Solution:      task.Solution,
			SolutionLabel: LabelReference,
		}
	}

	return Result{
		TaskID:        taskID,
		Status:        StatusFailure,
		Message:       MsgCodeIncomplete,
		Errors:        append([]string(nil), GenericHints...),
		Solution:      task.Solution,
		SolutionLabel: LabelHint,
	}
}
