package view

import (
	"testing"

	"github.com/CaptainBerkay35/taskmanager/internal/domain"
)

func TestFilterTasksANDComposition(t *testing.T) {
	tasks := []domain.Task{
		{ID: "1", Title: "Buy milk", Status: domain.StatusPending, Priority: domain.PriorityMedium, CategoryID: "c1"},
		{ID: "2", Title: "Buy bread", Status: domain.StatusCompleted, Priority: domain.PriorityMedium, CategoryID: "c1"},
		{ID: "3", Title: "Call plumber", Status: domain.StatusPending, Priority: domain.PriorityUrgent, CategoryID: "c2"},
	}

	got := FilterTasks(tasks, TaskCriteria{Search: "buy", Status: domain.StatusPending})
	if len(got) != 1 || got[0].ID != "1" {
		t.Fatalf("expected only task 1, got %+v", got)
	}

	// every criterion must hold independently
	got = FilterTasks(tasks, TaskCriteria{Search: "buy", Priority: domain.PriorityUrgent})
	if len(got) != 0 {
		t.Fatalf("expected no match for buy+urgent, got %+v", got)
	}

	got = FilterTasks(tasks, TaskCriteria{CategoryID: "c2"})
	if len(got) != 1 || got[0].ID != "3" {
		t.Fatalf("category filter: got %+v", got)
	}
}

func TestFilterTasksWildcardsAndOrder(t *testing.T) {
	tasks := []domain.Task{{ID: "b"}, {ID: "a"}, {ID: "c"}}
	got := FilterTasks(tasks, TaskCriteria{})
	if len(got) != len(tasks) {
		t.Fatalf("empty criteria must match everything, got %d", len(got))
	}
	for i := range got {
		if got[i].ID != tasks[i].ID {
			t.Fatalf("input order not preserved: %v", got)
		}
	}
}

func TestFilterTasksSearchMatchesDescription(t *testing.T) {
	tasks := []domain.Task{
		{ID: "1", Title: "Errands", Description: "pick up the DRY cleaning"},
		{ID: "2", Title: "Dry run"},
	}
	got := FilterTasks(tasks, TaskCriteria{Search: "dry"})
	if len(got) != 2 {
		t.Fatalf("case-insensitive title|description search failed: %+v", got)
	}
}

func TestTaskViewMemoization(t *testing.T) {
	tasks := []domain.Task{{ID: "1", Title: "x"}, {ID: "2", Title: "y"}}
	var v TaskView
	first := v.Filter(tasks, TaskCriteria{Search: "x"})
	second := v.Filter(tasks, TaskCriteria{Search: "x"})
	if &first[0] != &second[0] {
		t.Fatalf("same inputs must return the cached slice")
	}
	changed := v.Filter(tasks, TaskCriteria{Search: "y"})
	if len(changed) != 1 || changed[0].ID != "2" {
		t.Fatalf("criteria change must recompute, got %+v", changed)
	}
	refetched := append([]domain.Task(nil), tasks...)
	again := v.Filter(refetched, TaskCriteria{Search: "y"})
	if len(again) != 1 || again[0].ID != "2" {
		t.Fatalf("new backing array must recompute, got %+v", again)
	}
}
