package server

import (
	"time"

	"github.com/CaptainBerkay35/taskmanager/internal/domain"
)

type LoginRequest struct {
	Username string `json:"username" example:"berkay"`
	Password string `json:"password" example:"secret"`
}

type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	FullName string `json:"fullName,omitempty"`
	Password string `json:"password"`
}

// AuthResponse is the shared login/register payload.
type AuthResponse struct {
	Token    string `json:"token"`
	Username string `json:"username"`
	Email    string `json:"email"`
	FullName string `json:"fullName"`
}

// TaskRequest is the create/replace body; field names follow the wire
// shape of domain.Task.
type TaskRequest struct {
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Priority    int        `json:"priority,omitempty"`
	Status      string     `json:"status,omitempty"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
	ProjectID   string     `json:"projectId,omitempty"`
	CategoryID  string     `json:"categoryId,omitempty"`
}

type CategoryRequest struct {
	Name  string `json:"name"`
	Color string `json:"color" example:"#3b82f6"`
}

type ProjectRequest struct {
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	Color       string     `json:"color" example:"#ef4444"`
	Deadline    *time.Time `json:"deadline,omitempty"`
	CategoryIDs []string   `json:"categoryIds"`
}

// DeleteProjectResponse reports what the cascade removed.
type DeleteProjectResponse struct {
	ProjectName       string `json:"projectName"`
	DeletedTasksCount int    `json:"deletedTasksCount"`
}

type SubTaskRequest struct {
	TaskID      string     `json:"taskId,omitempty"`
	Title       string     `json:"title"`
	Priority    int        `json:"priority,omitempty"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
	IsCompleted bool       `json:"isCompleted,omitempty"`
}

// taskResponse re-derives the completion fields so a stale isCompleted
// can never leave the server.
func taskResponse(t domain.Task) domain.Task {
	t.Normalize()
	return t
}

func mapTasks(tasks []domain.Task) []domain.Task {
	out := make([]domain.Task, len(tasks))
	for i, t := range tasks {
		out[i] = taskResponse(t)
	}
	return out
}

func projectResponse(p domain.Project) domain.Project {
	p.Tasks = mapTasks(p.Tasks)
	if p.CategoryIDs == nil {
		p.CategoryIDs = []string{}
	}
	return p
}

func mapProjects(projects []domain.Project) []domain.Project {
	out := make([]domain.Project, len(projects))
	for i, p := range projects {
		out[i] = projectResponse(p)
	}
	return out
}
