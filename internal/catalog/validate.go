package catalog

import (
	"fmt"
	"slices"
	"strings"
)

// Severity classifies a validation issue.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Issue is a single problem found while validating a catalog.
type Issue struct {
	Severity   Severity
	QuestionID string
	Message    string
}

func (i Issue) String() string {
	return fmt.Sprintf("%s: %s", i.Severity, i.Message)
}

// Errors filters issues down to those with error severity.
func Errors(issues []Issue) []Issue {
	var out []Issue
	for _, is := range issues {
		if is.Severity == SeverityError {
			out = append(out, is)
		}
	}
	return out
}

// validateQuestions performs all structural checks on the given questions.
// Dangling successor ids are reported as warnings: traversal simply stops
// at such a reference.
func validateQuestions(questions []Question) []Issue {
	var issues []Issue
	errorf := func(id, format string, args ...any) {
		issues = append(issues, Issue{Severity: SeverityError, QuestionID: id, Message: fmt.Sprintf(format, args...)})
	}
	warnf := func(id, format string, args ...any) {
		issues = append(issues, Issue{Severity: SeverityWarning, QuestionID: id, Message: fmt.Sprintf(format, args...)})
	}

	if len(questions) == 0 {
		errorf("", "catalog has no questions")
		return issues
	}

	idSet := make(map[string]bool, len(questions))
	for _, q := range questions {
		if q.ID == "" {
			errorf("", "question with text %q has an empty id", q.Text)
			continue
		}
		if idSet[q.ID] {
			errorf(q.ID, "duplicate question id: %q", q.ID)
		}
		idSet[q.ID] = true
	}

	for _, q := range questions {
		switch q.Type {
		case TypeText:
		case TypeRadio:
			if len(q.Options) == 0 {
				warnf(q.ID, "radio question %q has no options", q.ID)
			}
			for _, c := range q.Conditionals {
				if len(q.Options) > 0 && !slices.Contains(q.Options, c.Value) {
					warnf(q.ID, "question %q has a conditional on %q which is not one of its options", q.ID, c.Value)
				}
			}
		default:
			errorf(q.ID, "question %q has unknown type %q", q.ID, q.Type)
		}

		if q.Next != "" && !idSet[q.Next] {
			warnf(q.ID, "question %q references nonexistent next question %q", q.ID, q.Next)
		}
		for _, c := range q.Conditionals {
			if c.Next != "" && !idSet[c.Next] {
				warnf(q.ID, "question %q conditional %q references nonexistent question %q", q.ID, c.Value, c.Next)
			}
		}
		if q.FollowUpOf != "" && !idSet[q.FollowUpOf] {
			warnf(q.ID, "follow-up %q references nonexistent parent %q", q.ID, q.FollowUpOf)
		}
	}

	if cycle := findCycle(questions, idSet); len(cycle) > 0 {
		errorf(cycle[0], "cycle detected involving questions: %s", strings.Join(cycle, " -> "))
	}

	return issues
}

// findCycle runs a depth-first search over successor edges and returns the
// first cycle found, or nil.
func findCycle(questions []Question, idSet map[string]bool) []string {
	const (
		unvisited = iota
		inProgress
		done
	)

	edges := make(map[string][]string, len(questions))
	for _, q := range questions {
		for _, next := range q.Successors() {
			if idSet[next] {
				edges[q.ID] = append(edges[q.ID], next)
			}
		}
	}

	state := make(map[string]int, len(questions))
	var stack []string
	var cycle []string

	var visit func(id string) bool
	visit = func(id string) bool {
		state[id] = inProgress
		stack = append(stack, id)
		for _, next := range edges[id] {
			switch state[next] {
			case inProgress:
				start := slices.Index(stack, next)
				cycle = append(append([]string(nil), stack[start:]...), next)
				return true
			case unvisited:
				if visit(next) {
					return true
				}
			}
		}
		stack = stack[:len(stack)-1]
		state[id] = done
		return false
	}

	for _, q := range questions {
		if state[q.ID] == unvisited && visit(q.ID) {
			return cycle
		}
	}
	return nil
}
