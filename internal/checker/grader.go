package checker

import (
	"sort"
	"strings"
)

// Grader grades map-code and database-code submissions.
type Grader struct {
	code     *Registry
	database map[string]DatabaseTask
}

// NewGrader creates a grader over the given task tables.
func NewGrader(code []Task, database []DatabaseTask) *Grader {
	g := &Grader{
		code:     NewRegistry(code...),
		database: make(map[string]DatabaseTask, len(database)),
	}
	for _, t := range database {
		g.database[t.Type] = t
	}
	return g
}

// Default returns a grader over the built-in exercises.
func Default() *Grader {
	return NewGrader(MapTasks(), DatabaseTasks())
}

// CheckCode grades a map-code submission.
func (g *Grader) CheckCode(taskID, code string) Result {
	return g.code.Check(taskID, code)
}

// CheckDatabase grades a database submission for the task scope taskID using
// the exercise selected by taskType. Every keyword and every rule must pass;
// failed rules are listed individually.
func (g *Grader) CheckDatabase(taskID, taskType, code string) Result {
	code = strings.TrimSpace(code)
	if code == "" {
		return Result{TaskID: taskID, Status: StatusError, Message: MsgEnterDatabaseCode}
	}

	task, ok := g.database[taskType]
	if !ok {
		return Result{TaskID: taskID, Status: StatusError, Message: MsgTypeMissing}
	}

	hasKeywords, failed := task.Check(code)
	if hasKeywords && len(failed) == 0 {
		return Result{
			TaskID:    taskID,
			Status:    StatusSuccess,
			Correct:   true,
			Message:   MsgDatabaseCorrect,
			Submitted: code,
		}
	}

	errs := failed
	if len(errs) == 0 {
		errs = append([]string(nil), GenericDatabaseHints...)
	}
	return Result{
		TaskID:        taskID,
		Status:        StatusFailure,
		Message:       MsgDatabaseErrors,
		Errors:        errs,
		Solution:      task.Solution,
		SolutionLabel: LabelCorrectSolution,
	}
}

// CodeTask returns a map-code task.
func (g *Grader) CodeTask(id string) (Task, bool) {
	return g.code.Get(id)
}

// CodeTasks lists the map-code tasks in order.
func (g *Grader) CodeTasks() []Task {
	return g.code.Tasks()
}

// DatabaseTask returns the database exercise for a type tag.
func (g *Grader) DatabaseTask(taskType string) (DatabaseTask, bool) {
	t, ok := g.database[taskType]
	return t, ok
}

// DatabaseTypes lists the known database type tags, sorted.
func (g *Grader) DatabaseTypes() []string {
	types := make([]string, 0, len(g.database))
	for t := range g.database {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}
