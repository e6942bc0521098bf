package view

import (
	"testing"
	"time"

	"github.com/CaptainBerkay35/taskmanager/internal/domain"
)

var now = time.Date(2025, 1, 10, 12, 0, 0, 0, time.UTC)

func TestCompletionRateOnEmptyList(t *testing.T) {
	s := Summarize(nil, nil, nil, now)
	if s.CompletionRate != 0 {
		t.Fatalf("completion rate on empty tasks must be 0, got %d", s.CompletionRate)
	}
}

func TestCompletionRateRounds(t *testing.T) {
	tasks := []domain.Task{
		{Status: domain.StatusCompleted},
		{Status: domain.StatusPending},
		{Status: domain.StatusPending},
	}
	s := Summarize(tasks, nil, nil, now)
	if s.CompletionRate != 33 {
		t.Fatalf("1/3 should round to 33, got %d", s.CompletionRate)
	}
	tasks = append(tasks, domain.Task{Status: domain.StatusCompleted})
	s = Summarize(tasks, nil, nil, now)
	if s.CompletionRate != 50 {
		t.Fatalf("2/4 should be 50, got %d", s.CompletionRate)
	}
}

func TestCompletedProjectNeedsAtLeastOneTask(t *testing.T) {
	projects := []domain.Project{
		{ID: "empty"},
		{ID: "done", Tasks: []domain.Task{{Status: domain.StatusCompleted}}},
		{ID: "open", Tasks: []domain.Task{{Status: domain.StatusPending}}},
	}
	s := Summarize(nil, projects, nil, now)
	if s.CompletedProjects != 1 {
		t.Fatalf("expected 1 completed project, got %d", s.CompletedProjects)
	}
	if s.ActiveProjects != 2 {
		t.Fatalf("expected 2 active projects, got %d", s.ActiveProjects)
	}
	if s.TotalProjects != 3 {
		t.Fatalf("expected 3 total projects, got %d", s.TotalProjects)
	}
}

func TestOverdueDefinition(t *testing.T) {
	past := datePtr(2025, 1, 5)
	projects := []domain.Project{
		// past deadline, all tasks done: NOT overdue
		{ID: "finished", Deadline: past, Tasks: []domain.Task{{Status: domain.StatusCompleted}}},
		// past deadline, one open task: overdue
		{ID: "late", Deadline: past, Tasks: []domain.Task{{Status: domain.StatusCompleted}, {Status: domain.StatusPending}}},
		// past deadline, zero tasks: still overdue
		{ID: "abandoned", Deadline: past},
		// future deadline: never overdue
		{ID: "future", Deadline: datePtr(2025, 2, 1)},
	}
	s := Summarize(nil, projects, nil, now)
	if len(s.OverdueProjects) != 2 {
		t.Fatalf("expected 2 overdue projects, got %+v", s.OverdueProjects)
	}
	ids := map[string]bool{}
	for _, p := range s.OverdueProjects {
		ids[p.ID] = true
	}
	if !ids["late"] || !ids["abandoned"] {
		t.Fatalf("unexpected overdue set: %v", ids)
	}
}

func TestUpcomingDeadlinesWindowAndOrder(t *testing.T) {
	projects := []domain.Project{
		{ID: "today", Deadline: datePtr(2025, 1, 10)},
		{ID: "week", Deadline: datePtr(2025, 1, 17)},
		{ID: "tooFar", Deadline: datePtr(2025, 1, 18)},
		{ID: "past", Deadline: datePtr(2025, 1, 9)},
		{ID: "soon", Deadline: datePtr(2025, 1, 12)},
	}
	s := Summarize(nil, projects, nil, now)
	if len(s.UpcomingDeadlines) != 3 {
		t.Fatalf("expected 3 upcoming, got %+v", s.UpcomingDeadlines)
	}
	for i, want := range []string{"today", "soon", "week"} {
		if s.UpcomingDeadlines[i].ID != want {
			t.Fatalf("upcoming order: want %s at %d, got %s", want, i, s.UpcomingDeadlines[i].ID)
		}
	}
}

func TestTopProjectsExcludeEmptyAndCapAtFive(t *testing.T) {
	var projects []domain.Project
	projects = append(projects, domain.Project{ID: "empty"})
	for i := 0; i < 6; i++ {
		projects = append(projects, domain.Project{
			ID: string(rune('a' + i)),
			Tasks: append(make([]domain.Task, i),
				domain.Task{Status: domain.StatusCompleted}),
		})
	}
	s := Summarize(nil, projects, nil, now)
	if len(s.TopProjects) != 5 {
		t.Fatalf("expected top 5, got %d", len(s.TopProjects))
	}
	if s.TopProjects[0].TaskCount != 6 {
		t.Fatalf("expected biggest project first, got %+v", s.TopProjects[0])
	}
	for _, st := range s.TopProjects {
		if st.Project.ID == "empty" {
			t.Fatalf("zero-task project must be excluded before ranking")
		}
		if st.CompletedCount != 1 {
			t.Fatalf("completed count: got %d", st.CompletedCount)
		}
	}
}

func TestProjectsByCategoryDropsZeroCounts(t *testing.T) {
	categories := []domain.Category{{ID: "home"}, {ID: "work"}, {ID: "idle"}}
	projects := []domain.Project{
		{ID: "1", CategoryIDs: []string{"home", "work"}},
		{ID: "2", CategoryIDs: []string{"home"}},
	}
	s := Summarize(nil, projects, categories, now)
	if len(s.ProjectsByCategory) != 2 {
		t.Fatalf("expected 2 category rows, got %+v", s.ProjectsByCategory)
	}
	if s.ProjectsByCategory[0].Category.ID != "home" || s.ProjectsByCategory[0].ProjectCount != 2 {
		t.Fatalf("home count: %+v", s.ProjectsByCategory[0])
	}
}
