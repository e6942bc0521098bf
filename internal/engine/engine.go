package engine

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"

	"github.com/CaptainBerkay35/taskmanager/internal/domain"
	"github.com/CaptainBerkay35/taskmanager/internal/repo"
)

// Engine applies business rules on top of the repo layer. Now is
// injectable for tests.
type Engine struct {
	DB   *sql.DB
	Repo repo.Repo
	Now  func() time.Time
}

func New(db *sql.DB) Engine {
	return Engine{
		DB:   db,
		Repo: repo.Repo{DB: db},
		Now:  time.Now,
	}
}

func (e Engine) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}

var hexColor = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// CategoryInUseError is returned when a category delete is blocked by
// tasks or projects still referencing it.
type CategoryInUseError struct {
	CategoryID string
	Tasks      int
	Projects   int
}

func (e CategoryInUseError) Error() string {
	return fmt.Sprintf("category %s in use by %d task(s) and %d project(s)", e.CategoryID, e.Tasks, e.Projects)
}

// TaskCreateOptions are parameters for creating a task.
type TaskCreateOptions struct {
	Title       string
	Description string
	Priority    domain.Priority
	Status      domain.Status
	DueDate     *time.Time
	ProjectID   string
	CategoryID  string
}

func (e Engine) CreateTask(ctx context.Context, opts TaskCreateOptions) (domain.Task, error) {
	if opts.Title == "" {
		return domain.Task{}, errors.New("title is required")
	}
	if opts.Priority == 0 {
		opts.Priority = domain.PriorityMedium
	}
	if !opts.Priority.Valid() {
		return domain.Task{}, fmt.Errorf("invalid priority %d", opts.Priority)
	}
	if opts.Status == "" {
		opts.Status = domain.StatusPending
	}
	if !opts.Status.Valid() {
		return domain.Task{}, fmt.Errorf("invalid status %q", opts.Status)
	}
	if opts.ProjectID != "" {
		if _, err := e.Repo.GetProject(ctx, opts.ProjectID); err != nil {
			return domain.Task{}, fmt.Errorf("project %s: %w", opts.ProjectID, err)
		}
	}
	if opts.CategoryID != "" {
		if _, err := e.Repo.GetCategory(ctx, opts.CategoryID); err != nil {
			return domain.Task{}, fmt.Errorf("category %s: %w", opts.CategoryID, err)
		}
	}
	now := e.now().UTC()
	t := domain.Task{
		ID:          uuid.New().String(),
		Title:       opts.Title,
		Description: opts.Description,
		Priority:    opts.Priority,
		DueDate:     opts.DueDate,
		ProjectID:   opts.ProjectID,
		CategoryID:  opts.CategoryID,
		CreatedDate: now,
	}
	t.SetStatus(opts.Status, now)
	if err := e.Repo.InsertTask(ctx, t); err != nil {
		return domain.Task{}, err
	}
	return t, nil
}

// TaskReplaceOptions carries the full new state of a task; the update is
// a full replace, not a patch.
type TaskReplaceOptions struct {
	Title       string
	Description string
	Priority    domain.Priority
	Status      domain.Status
	DueDate     *time.Time
	ProjectID   string
	CategoryID  string
}

// ReplaceTask overwrites every mutable field. The completion fields are
// driven by the status transition: entering completed stamps
// CompletedDate, leaving clears it, staying completed keeps the original
// stamp.
func (e Engine) ReplaceTask(ctx context.Context, id string, opts TaskReplaceOptions) (domain.Task, error) {
	if opts.Title == "" {
		return domain.Task{}, errors.New("title is required")
	}
	if !opts.Priority.Valid() {
		return domain.Task{}, fmt.Errorf("invalid priority %d", opts.Priority)
	}
	if !opts.Status.Valid() {
		return domain.Task{}, fmt.Errorf("invalid status %q", opts.Status)
	}
	t, err := e.Repo.GetTask(ctx, id)
	if err != nil {
		return domain.Task{}, err
	}
	if opts.ProjectID != "" && opts.ProjectID != t.ProjectID {
		if _, err := e.Repo.GetProject(ctx, opts.ProjectID); err != nil {
			return domain.Task{}, fmt.Errorf("project %s: %w", opts.ProjectID, err)
		}
	}
	if opts.CategoryID != "" && opts.CategoryID != t.CategoryID {
		if _, err := e.Repo.GetCategory(ctx, opts.CategoryID); err != nil {
			return domain.Task{}, fmt.Errorf("category %s: %w", opts.CategoryID, err)
		}
	}
	t.Title = opts.Title
	t.Description = opts.Description
	t.Priority = opts.Priority
	t.DueDate = opts.DueDate
	t.ProjectID = opts.ProjectID
	t.CategoryID = opts.CategoryID
	t.SetStatus(opts.Status, e.now().UTC())
	if err := e.Repo.ReplaceTask(ctx, t); err != nil {
		return domain.Task{}, err
	}
	return t, nil
}

// CompleteTask is the shortcut transition into the completed status.
func (e Engine) CompleteTask(ctx context.Context, id string) (domain.Task, error) {
	t, err := e.Repo.GetTask(ctx, id)
	if err != nil {
		return domain.Task{}, err
	}
	t.SetStatus(domain.StatusCompleted, e.now().UTC())
	if err := e.Repo.ReplaceTask(ctx, t); err != nil {
		return domain.Task{}, err
	}
	return t, nil
}

func (e Engine) DeleteTask(ctx context.Context, id string) error {
	return e.Repo.DeleteTask(ctx, id)
}

func (e Engine) CreateCategory(ctx context.Context, name, color string) (domain.Category, error) {
	if name == "" {
		return domain.Category{}, errors.New("name is required")
	}
	if !hexColor.MatchString(color) {
		return domain.Category{}, fmt.Errorf("invalid color %q: expected #RRGGBB", color)
	}
	c := domain.Category{ID: uuid.New().String(), Name: name, Color: color}
	if err := e.Repo.InsertCategory(ctx, c); err != nil {
		return domain.Category{}, err
	}
	return c, nil
}

func (e Engine) UpdateCategory(ctx context.Context, id, name, color string) (domain.Category, error) {
	if name == "" {
		return domain.Category{}, errors.New("name is required")
	}
	if !hexColor.MatchString(color) {
		return domain.Category{}, fmt.Errorf("invalid color %q: expected #RRGGBB", color)
	}
	c := domain.Category{ID: id, Name: name, Color: color}
	if err := e.Repo.UpdateCategory(ctx, c); err != nil {
		return domain.Category{}, err
	}
	return c, nil
}

// DeleteCategory refuses while any task or project still references the
// category.
func (e Engine) DeleteCategory(ctx context.Context, id string) error {
	if _, err := e.Repo.GetCategory(ctx, id); err != nil {
		return err
	}
	tasks, err := e.Repo.CountTasksByCategory(ctx, id)
	if err != nil {
		return err
	}
	projects, err := e.Repo.CountProjectsByCategory(ctx, id)
	if err != nil {
		return err
	}
	if tasks > 0 || projects > 0 {
		return CategoryInUseError{CategoryID: id, Tasks: tasks, Projects: projects}
	}
	return e.Repo.DeleteCategory(ctx, id)
}

// ProjectCreateOptions are parameters for creating a project.
type ProjectCreateOptions struct {
	Name        string
	Description string
	Color       string
	Deadline    *time.Time
	CategoryIDs []string
}

func (e Engine) CreateProject(ctx context.Context, opts ProjectCreateOptions) (domain.Project, error) {
	if err := e.validateProject(ctx, opts.Name, opts.Color, opts.CategoryIDs); err != nil {
		return domain.Project{}, err
	}
	p := domain.Project{
		ID:          uuid.New().String(),
		Name:        opts.Name,
		Description: opts.Description,
		Color:       opts.Color,
		Deadline:    opts.Deadline,
		CategoryIDs: opts.CategoryIDs,
		CreatedDate: e.now().UTC(),
	}
	if err := e.Repo.InsertProject(ctx, p); err != nil {
		return domain.Project{}, err
	}
	return p, nil
}

func (e Engine) ReplaceProject(ctx context.Context, id string, opts ProjectCreateOptions) (domain.Project, error) {
	if err := e.validateProject(ctx, opts.Name, opts.Color, opts.CategoryIDs); err != nil {
		return domain.Project{}, err
	}
	p, err := e.Repo.GetProject(ctx, id)
	if err != nil {
		return domain.Project{}, err
	}
	p.Name = opts.Name
	p.Description = opts.Description
	p.Color = opts.Color
	p.Deadline = opts.Deadline
	p.CategoryIDs = opts.CategoryIDs
	if err := e.Repo.ReplaceProject(ctx, p); err != nil {
		return domain.Project{}, err
	}
	return p, nil
}

func (e Engine) validateProject(ctx context.Context, name, color string, categoryIDs []string) error {
	if name == "" {
		return errors.New("name is required")
	}
	if !hexColor.MatchString(color) {
		return fmt.Errorf("invalid color %q: expected #RRGGBB", color)
	}
	if len(categoryIDs) == 0 {
		return errors.New("at least one category is required")
	}
	for _, cid := range categoryIDs {
		if _, err := e.Repo.GetCategory(ctx, cid); err != nil {
			return fmt.Errorf("category %s: %w", cid, err)
		}
	}
	return nil
}

// DeleteProjectResult reports what a cascade delete removed.
type DeleteProjectResult struct {
	ProjectName       string `json:"projectName"`
	DeletedTasksCount int    `json:"deletedTasksCount"`
}

// DeleteProjectCascade removes the project and every task in it, and
// reports the name and task count for the confirmation message.
func (e Engine) DeleteProjectCascade(ctx context.Context, id string) (DeleteProjectResult, error) {
	p, err := e.Repo.GetProject(ctx, id)
	if err != nil {
		return DeleteProjectResult{}, err
	}
	count, err := e.Repo.CountTasksByProject(ctx, id)
	if err != nil {
		return DeleteProjectResult{}, err
	}
	if err := e.Repo.DeleteProject(ctx, id); err != nil {
		return DeleteProjectResult{}, err
	}
	return DeleteProjectResult{ProjectName: p.Name, DeletedTasksCount: count}, nil
}

// SubTaskCreateOptions are parameters for creating a sub-task.
type SubTaskCreateOptions struct {
	TaskID   string
	Title    string
	Priority domain.Priority
	DueDate  *time.Time
}

// CreateSubTask validates against the parent: a sub-task due date may
// not fall after the parent task's due date.
func (e Engine) CreateSubTask(ctx context.Context, opts SubTaskCreateOptions) (domain.SubTask, error) {
	if opts.Title == "" {
		return domain.SubTask{}, errors.New("title is required")
	}
	if opts.Priority == 0 {
		opts.Priority = domain.PriorityMedium
	}
	if !opts.Priority.Valid() {
		return domain.SubTask{}, fmt.Errorf("invalid priority %d", opts.Priority)
	}
	parent, err := e.Repo.GetTask(ctx, opts.TaskID)
	if err != nil {
		return domain.SubTask{}, fmt.Errorf("task %s: %w", opts.TaskID, err)
	}
	if opts.DueDate != nil && parent.DueDate != nil && opts.DueDate.After(*parent.DueDate) {
		return domain.SubTask{}, errors.New("invalid due date: after parent task due date")
	}
	st := domain.SubTask{
		ID:       uuid.New().String(),
		TaskID:   opts.TaskID,
		Title:    opts.Title,
		Priority: opts.Priority,
		DueDate:  opts.DueDate,
	}
	if err := e.Repo.InsertSubTask(ctx, st); err != nil {
		return domain.SubTask{}, err
	}
	return st, nil
}

// SubTaskReplaceOptions carries the full new state of a sub-task.
type SubTaskReplaceOptions struct {
	Title       string
	Priority    domain.Priority
	DueDate     *time.Time
	IsCompleted bool
}

func (e Engine) ReplaceSubTask(ctx context.Context, id string, opts SubTaskReplaceOptions) (domain.SubTask, error) {
	if opts.Title == "" {
		return domain.SubTask{}, errors.New("title is required")
	}
	if !opts.Priority.Valid() {
		return domain.SubTask{}, fmt.Errorf("invalid priority %d", opts.Priority)
	}
	st, err := e.Repo.GetSubTask(ctx, id)
	if err != nil {
		return domain.SubTask{}, err
	}
	st.Title = opts.Title
	st.Priority = opts.Priority
	st.DueDate = opts.DueDate
	st.IsCompleted = opts.IsCompleted
	if err := e.Repo.ReplaceSubTask(ctx, st); err != nil {
		return domain.SubTask{}, err
	}
	return st, nil
}

func (e Engine) DeleteSubTask(ctx context.Context, id string) error {
	return e.Repo.DeleteSubTask(ctx, id)
}
