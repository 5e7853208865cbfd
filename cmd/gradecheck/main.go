// Command gradecheck grades a Go source file against a tutor task from the
// command line, using the same checkers as the server.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ashureev/gomaps-tutor/internal/checker"
	"github.com/spf13/cobra"
)

// errNotPassed makes the process exit non-zero when a submission fails.
var errNotPassed = errors.New("submission did not pass")

func main() {
	if err := newRootCmd(checker.Default()).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(grader *checker.Grader) *cobra.Command {
	root := &cobra.Command{
		Use:          "gradecheck",
		Short:        "Grade Go map exercises offline",
		SilenceUsage: true,
	}
	root.AddCommand(newCodeCmd(grader), newDBCmd(grader), newTasksCmd(grader))
	return root
}

func newCodeCmd(grader *checker.Grader) *cobra.Command {
	return &cobra.Command{
		Use:   "code <task-id> <file|->",
		Short: "Grade a map-code task",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			code, err := readSource(cmd.InOrStdin(), args[1])
			if err != nil {
				return err
			}
			return report(cmd.OutOrStdout(), grader.CheckCode(args[0], code))
		},
	}
}

func newDBCmd(grader *checker.Grader) *cobra.Command {
	var taskID string
	cmd := &cobra.Command{
		Use:   "db <type> <file|->",
		Short: "Grade a database task",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			code, err := readSource(cmd.InOrStdin(), args[1])
			if err != nil {
				return err
			}
			return report(cmd.OutOrStdout(), grader.CheckDatabase(taskID, args[0], code))
		},
	}
	cmd.Flags().StringVar(&taskID, "task", "cli", "task id echoed in the result")
	return cmd
}

func newTasksCmd(grader *checker.Grader) *cobra.Command {
	return &cobra.Command{
		Use:   "tasks",
		Short: "List gradable tasks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Map code tasks:")
			for _, t := range grader.CodeTasks() {
				fmt.Fprintf(out, "  %-10s  %s\n", t.ID, t.Title)
			}
			fmt.Fprintln(out, "Database tasks:")
			for _, typ := range grader.DatabaseTypes() {
				t, _ := grader.DatabaseTask(typ)
				fmt.Fprintf(out, "  %-10s  %s\n", t.Type, t.Title)
			}
			return nil
		},
	}
}

func readSource(stdin io.Reader, name string) (string, error) {
	var data []byte
	var err error
	if name == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(name)
	}
	if err != nil {
		return "", fmt.Errorf("read source: %w", err)
	}
	return string(data), nil
}

func report(w io.Writer, res checker.Result) error {
	mark := "✓"
	if !res.Correct {
		mark = "✗"
	}
	fmt.Fprintf(w, "%s %s\n", mark, res.Message)
	for _, e := range res.Errors {
		fmt.Fprintf(w, "  - %s\n", e)
	}
	if res.Solution != "" {
		fmt.Fprintf(w, "\n%s:\n%s\n", res.SolutionLabel, indent(res.Solution))
	}
	if !res.Correct {
		return errNotPassed
	}
	return nil
}

func indent(s string) string {
	return "    " + strings.ReplaceAll(s, "\n", "\n    ")
}
