package engine_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/CaptainBerkay35/taskmanager/internal/db"
	"github.com/CaptainBerkay35/taskmanager/internal/domain"
	"github.com/CaptainBerkay35/taskmanager/internal/engine"
	"github.com/CaptainBerkay35/taskmanager/internal/migrate"
	"github.com/CaptainBerkay35/taskmanager/internal/repo"
)

type testEnv struct {
	Engine engine.Engine
	Ctx    context.Context
}

func newTestEnv(t *testing.T) testEnv {
	t.Helper()
	conn, err := db.Open(db.Config{Workspace: t.TempDir()})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	if err := migrate.Migrate(conn); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	eng := engine.New(conn)
	eng.Now = func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) }
	return testEnv{Engine: eng, Ctx: context.Background()}
}

func TestCreateTaskDefaults(t *testing.T) {
	env := newTestEnv(t)
	task, err := env.Engine.CreateTask(env.Ctx, engine.TaskCreateOptions{Title: "Write report"})
	if err != nil {
		t.Fatalf("create task: %v", err)
	}
	if task.ID == "" {
		t.Fatalf("expected generated id")
	}
	if task.Status != domain.StatusPending {
		t.Fatalf("status = %q, want pending", task.Status)
	}
	if task.Priority != domain.PriorityMedium {
		t.Fatalf("priority = %d, want medium", task.Priority)
	}
	if task.IsCompleted || task.CompletedDate != nil {
		t.Fatalf("new task must not be completed")
	}
}

func TestCreateTaskRejectsBadInput(t *testing.T) {
	env := newTestEnv(t)
	if _, err := env.Engine.CreateTask(env.Ctx, engine.TaskCreateOptions{}); err == nil {
		t.Fatalf("expected error for missing title")
	}
	if _, err := env.Engine.CreateTask(env.Ctx, engine.TaskCreateOptions{Title: "x", Priority: 9}); err == nil {
		t.Fatalf("expected error for invalid priority")
	}
	if _, err := env.Engine.CreateTask(env.Ctx, engine.TaskCreateOptions{Title: "x", Status: "done"}); err == nil {
		t.Fatalf("expected error for unknown status literal")
	}
	if _, err := env.Engine.CreateTask(env.Ctx, engine.TaskCreateOptions{Title: "x", ProjectID: "nope"}); !errors.Is(err, repo.ErrNotFound) {
		t.Fatalf("expected not found for missing project, got %v", err)
	}
}

func TestReplaceTaskCompletionTransitions(t *testing.T) {
	env := newTestEnv(t)
	task, err := env.Engine.CreateTask(env.Ctx, engine.TaskCreateOptions{Title: "Ship"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	firstDone := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)
	env.Engine.Now = func() time.Time { return firstDone }
	task, err = env.Engine.ReplaceTask(env.Ctx, task.ID, engine.TaskReplaceOptions{
		Title: "Ship", Priority: task.Priority, Status: domain.StatusCompleted,
	})
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if !task.IsCompleted || task.CompletedDate == nil || !task.CompletedDate.Equal(firstDone) {
		t.Fatalf("entering completed must stamp completedDate, got %+v", task)
	}

	// staying completed keeps the original stamp
	env.Engine.Now = func() time.Time { return firstDone.Add(48 * time.Hour) }
	task, err = env.Engine.ReplaceTask(env.Ctx, task.ID, engine.TaskReplaceOptions{
		Title: "Ship v2", Priority: task.Priority, Status: domain.StatusCompleted,
	})
	if err != nil {
		t.Fatalf("re-save: %v", err)
	}
	if task.CompletedDate == nil || !task.CompletedDate.Equal(firstDone) {
		t.Fatalf("completedDate moved on re-save: %v", task.CompletedDate)
	}

	task, err = env.Engine.ReplaceTask(env.Ctx, task.ID, engine.TaskReplaceOptions{
		Title: "Ship v2", Priority: task.Priority, Status: domain.StatusInProgress,
	})
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if task.IsCompleted || task.CompletedDate != nil {
		t.Fatalf("leaving completed must clear completion fields")
	}

	got, err := env.Engine.Repo.GetTask(env.Ctx, task.ID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if got.IsCompleted || got.CompletedDate != nil {
		t.Fatalf("stored row out of sync: %+v", got)
	}
}

func TestCompleteTaskShortcut(t *testing.T) {
	env := newTestEnv(t)
	task, err := env.Engine.CreateTask(env.Ctx, engine.TaskCreateOptions{Title: "Quick"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	task, err = env.Engine.CompleteTask(env.Ctx, task.ID)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if task.Status != domain.StatusCompleted || !task.IsCompleted || task.CompletedDate == nil {
		t.Fatalf("complete shortcut did not finish the task: %+v", task)
	}
}

func TestCategoryDeleteGuard(t *testing.T) {
	env := newTestEnv(t)
	cat, err := env.Engine.CreateCategory(env.Ctx, "Work", "#3b82f6")
	if err != nil {
		t.Fatalf("create category: %v", err)
	}
	if _, err := env.Engine.CreateTask(env.Ctx, engine.TaskCreateOptions{Title: "t", CategoryID: cat.ID}); err != nil {
		t.Fatalf("create task: %v", err)
	}

	err = env.Engine.DeleteCategory(env.Ctx, cat.ID)
	var inUse engine.CategoryInUseError
	if !errors.As(err, &inUse) {
		t.Fatalf("expected CategoryInUseError, got %v", err)
	}
	if inUse.Tasks != 1 {
		t.Fatalf("tasks = %d, want 1", inUse.Tasks)
	}

	// referencing project blocks too
	cat2, err := env.Engine.CreateCategory(env.Ctx, "Home", "#22c55e")
	if err != nil {
		t.Fatalf("create category: %v", err)
	}
	if _, err := env.Engine.CreateProject(env.Ctx, engine.ProjectCreateOptions{
		Name: "p", Color: "#ef4444", CategoryIDs: []string{cat2.ID},
	}); err != nil {
		t.Fatalf("create project: %v", err)
	}
	if err := env.Engine.DeleteCategory(env.Ctx, cat2.ID); !errors.As(err, &inUse) {
		t.Fatalf("expected CategoryInUseError for project reference, got %v", err)
	}

	cat3, err := env.Engine.CreateCategory(env.Ctx, "Empty", "#f97316")
	if err != nil {
		t.Fatalf("create category: %v", err)
	}
	if err := env.Engine.DeleteCategory(env.Ctx, cat3.ID); err != nil {
		t.Fatalf("unreferenced category should delete: %v", err)
	}
}

func TestCategoryColorValidation(t *testing.T) {
	env := newTestEnv(t)
	for _, bad := range []string{"", "red", "#fff", "#12345g"} {
		if _, err := env.Engine.CreateCategory(env.Ctx, "c", bad); err == nil {
			t.Fatalf("color %q should be rejected", bad)
		}
	}
}

func TestProjectRequiresCategory(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.Engine.CreateProject(env.Ctx, engine.ProjectCreateOptions{Name: "p", Color: "#ef4444"})
	if err == nil {
		t.Fatalf("project without categories should be rejected")
	}
	_, err = env.Engine.CreateProject(env.Ctx, engine.ProjectCreateOptions{
		Name: "p", Color: "#ef4444", CategoryIDs: []string{"ghost"},
	})
	if !errors.Is(err, repo.ErrNotFound) {
		t.Fatalf("unknown category should surface not found, got %v", err)
	}
}

func TestDeleteProjectCascade(t *testing.T) {
	env := newTestEnv(t)
	cat, err := env.Engine.CreateCategory(env.Ctx, "Work", "#3b82f6")
	if err != nil {
		t.Fatalf("create category: %v", err)
	}
	p, err := env.Engine.CreateProject(env.Ctx, engine.ProjectCreateOptions{
		Name: "Yeni Site", Color: "#ef4444", CategoryIDs: []string{cat.ID},
	})
	if err != nil {
		t.Fatalf("create project: %v", err)
	}
	for i := 0; i < 3; i++ {
		if _, err := env.Engine.CreateTask(env.Ctx, engine.TaskCreateOptions{Title: "t", ProjectID: p.ID}); err != nil {
			t.Fatalf("create task: %v", err)
		}
	}

	res, err := env.Engine.DeleteProjectCascade(env.Ctx, p.ID)
	if err != nil {
		t.Fatalf("cascade delete: %v", err)
	}
	if res.ProjectName != "Yeni Site" || res.DeletedTasksCount != 3 {
		t.Fatalf("result = %+v, want Yeni Site / 3", res)
	}
	if _, err := env.Engine.Repo.GetProject(env.Ctx, p.ID); !errors.Is(err, repo.ErrNotFound) {
		t.Fatalf("project should be gone, got %v", err)
	}
	tasks, err := env.Engine.Repo.ListTasks(env.Ctx)
	if err != nil {
		t.Fatalf("list tasks: %v", err)
	}
	if len(tasks) != 0 {
		t.Fatalf("tasks should cascade, %d left", len(tasks))
	}
}

func TestSubTaskDueDateBound(t *testing.T) {
	env := newTestEnv(t)
	due := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)
	parent, err := env.Engine.CreateTask(env.Ctx, engine.TaskCreateOptions{Title: "parent", DueDate: &due})
	if err != nil {
		t.Fatalf("create parent: %v", err)
	}

	late := due.Add(24 * time.Hour)
	_, err = env.Engine.CreateSubTask(env.Ctx, engine.SubTaskCreateOptions{
		TaskID: parent.ID, Title: "late", DueDate: &late,
	})
	if err == nil {
		t.Fatalf("sub-task due after parent due should be rejected")
	}

	early := due.Add(-24 * time.Hour)
	st, err := env.Engine.CreateSubTask(env.Ctx, engine.SubTaskCreateOptions{
		TaskID: parent.ID, Title: "early", DueDate: &early,
	})
	if err != nil {
		t.Fatalf("create sub-task: %v", err)
	}
	list, err := env.Engine.Repo.ListSubTasksByTask(env.Ctx, parent.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 || list[0].ID != st.ID {
		t.Fatalf("expected the one sub-task, got %+v", list)
	}
}
