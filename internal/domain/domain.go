package domain

import "time"

// Status is the task lifecycle state. The wire literals are the fixed
// Turkish strings the original web client shipped with; they are part of
// the API contract and must not be translated.
type Status string

const (
	StatusPending    Status = "Beklemede"
	StatusInProgress Status = "Devam Ediyor"
	StatusCompleted  Status = "Tamamlandı"
)

// Statuses lists every valid status in display order.
func Statuses() []Status {
	return []Status{StatusPending, StatusInProgress, StatusCompleted}
}

// Valid reports whether s is one of the closed set of statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

// Priority is an ordinal urgency, 1 (low) through 4 (urgent).
type Priority int

const (
	PriorityLow    Priority = 1
	PriorityMedium Priority = 2
	PriorityHigh   Priority = 3
	PriorityUrgent Priority = 4
)

func (p Priority) Valid() bool { return p >= PriorityLow && p <= PriorityUrgent }

func (p Priority) String() string {
	switch p {
	case PriorityLow:
		return "low"
	case PriorityMedium:
		return "medium"
	case PriorityHigh:
		return "high"
	case PriorityUrgent:
		return "urgent"
	}
	return "unknown"
}

type Task struct {
	ID            string     `json:"id"`
	Title         string     `json:"title"`
	Description   string     `json:"description,omitempty"`
	Priority      Priority   `json:"priority"`
	Status        Status     `json:"status"`
	IsCompleted   bool       `json:"isCompleted"`
	DueDate       *time.Time `json:"dueDate,omitempty"`
	CompletedDate *time.Time `json:"completedDate,omitempty"`
	ProjectID     string     `json:"projectId,omitempty"`
	CategoryID    string     `json:"categoryId,omitempty"`
	CreatedDate   time.Time  `json:"createdDate"`
}

// SetStatus moves the task to status and keeps the completion fields in
// sync: CompletedDate is set exactly on the transition into completed and
// cleared on any transition out of it. Status is the single source of
// truth; IsCompleted is recomputed, never written independently.
func (t *Task) SetStatus(status Status, now time.Time) {
	entering := status == StatusCompleted && t.Status != StatusCompleted
	t.Status = status
	t.IsCompleted = status == StatusCompleted
	switch {
	case entering:
		ts := now
		t.CompletedDate = &ts
	case status != StatusCompleted:
		t.CompletedDate = nil
	}
}

// Normalize recomputes the derived completion fields from status. Applied
// to records read from storage or the wire so a disagreeing isCompleted
// flag cannot survive a round trip.
func (t *Task) Normalize() {
	t.IsCompleted = t.Status == StatusCompleted
	if !t.IsCompleted {
		t.CompletedDate = nil
	}
}

type SubTask struct {
	ID          string     `json:"id"`
	TaskID      string     `json:"taskId"`
	Title       string     `json:"title"`
	Priority    Priority   `json:"priority"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
	IsCompleted bool       `json:"isCompleted"`
}

type Project struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	Color       string     `json:"color"`
	Deadline    *time.Time `json:"deadline,omitempty"`
	CategoryIDs []string   `json:"categoryIds"`
	CreatedDate time.Time  `json:"createdDate"`
	Tasks       []Task     `json:"tasks,omitempty"`
}

// HasCategory reports whether the project references the category.
func (p Project) HasCategory(categoryID string) bool {
	for _, id := range p.CategoryIDs {
		if id == categoryID {
			return true
		}
	}
	return false
}

// Completed reports whether the project has at least one task and every
// task is completed. A project with zero tasks is never completed.
func (p Project) Completed() bool {
	if len(p.Tasks) == 0 {
		return false
	}
	for _, t := range p.Tasks {
		if t.Status != StatusCompleted {
			return false
		}
	}
	return true
}

type Category struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

// User is the authenticated account profile returned by login/register.
type User struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	FullName string `json:"fullName"`
}

// DaysUntil returns the signed whole-day difference from now to date.
// Both instants are truncated to their calendar day first, so "later
// today" is 0 and "any time tomorrow" is 1 regardless of clock time.
func DaysUntil(now, date time.Time) int {
	y1, m1, d1 := now.Date()
	y2, m2, d2 := date.Date()
	a := time.Date(y1, m1, d1, 0, 0, 0, 0, time.UTC)
	b := time.Date(y2, m2, d2, 0, 0, 0, 0, time.UTC)
	return int(b.Sub(a) / (24 * time.Hour))
}
