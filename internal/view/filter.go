package view

import (
	"strings"

	"github.com/CaptainBerkay35/taskmanager/internal/domain"
)

// TaskCriteria selects tasks by the logical AND of its fields. Zero
// values act as wildcards: an empty search matches everything, the zero
// Status/Priority/CategoryID disable their predicate.
type TaskCriteria struct {
	Search     string
	Status     domain.Status
	Priority   domain.Priority
	CategoryID string
}

// Match reports whether the task satisfies every non-wildcard criterion.
// Search is a case-insensitive substring test over title and description.
func (c TaskCriteria) Match(t domain.Task) bool {
	if c.Search != "" {
		q := strings.ToLower(c.Search)
		if !strings.Contains(strings.ToLower(t.Title), q) &&
			!strings.Contains(strings.ToLower(t.Description), q) {
			return false
		}
	}
	if c.Status != "" && t.Status != c.Status {
		return false
	}
	if c.Priority != 0 && t.Priority != c.Priority {
		return false
	}
	if c.CategoryID != "" && t.CategoryID != c.CategoryID {
		return false
	}
	return true
}

// FilterTasks returns the tasks matching the criteria, preserving input
// order. Pure; safe to call on every render.
func FilterTasks(tasks []domain.Task, c TaskCriteria) []domain.Task {
	out := make([]domain.Task, 0, len(tasks))
	for _, t := range tasks {
		if c.Match(t) {
			out = append(out, t)
		}
	}
	return out
}

// TaskView memoizes FilterTasks keyed on the task collection identity and
// the criteria.
type TaskView struct {
	tasks sliceID
	crit  TaskCriteria
	out   []domain.Task
	ok    bool
}

func (v *TaskView) Filter(tasks []domain.Task, c TaskCriteria) []domain.Task {
	id := idOf(tasks)
	if v.ok && v.tasks == id && v.crit == c {
		return v.out
	}
	v.tasks, v.crit = id, c
	v.out = FilterTasks(tasks, c)
	v.ok = true
	return v.out
}
