package view

import (
	"time"

	"github.com/CaptainBerkay35/taskmanager/internal/domain"
)

// EventKind discriminates calendar events by their source record.
type EventKind string

const (
	EventTask    EventKind = "task"
	EventProject EventKind = "project"
)

// Task event backgrounds keyed by priority; completed tasks go neutral.
const (
	colorUrgent    = "#ef4444"
	colorHigh      = "#f97316"
	colorMedium    = "#3b82f6"
	colorLow       = "#22c55e"
	colorCompleted = "#9ca3af"
)

const dimmedOpacity = 0.6

// EventStyle carries the presentation attributes the calendar widget
// applies to an event block.
type EventStyle struct {
	Background  string  `json:"backgroundColor"`
	BorderColor string  `json:"borderColor,omitempty"`
	BorderWidth int     `json:"borderWidth,omitempty"`
	Opacity     float64 `json:"opacity"`
	Bold        bool    `json:"bold,omitempty"`
}

// Event is a single all-day calendar entry projected from a task due date
// or a project deadline, with a back-reference to the source record.
type Event struct {
	Kind   EventKind       `json:"kind"`
	ID     string          `json:"id"`
	Title  string          `json:"title"`
	Date   time.Time       `json:"date"`
	AllDay bool            `json:"allDay"`
	Style  EventStyle      `json:"style"`
	Task   *domain.Task    `json:"task,omitempty"`
	Proj   *domain.Project `json:"project,omitempty"`
}

// Events projects dated tasks and active deadlined projects into one
// event sequence. Active means at least one associated task, the same
// definition Summarize uses; an empty project's deadline never reaches
// the calendar. When selectedProjectID is non-empty both collections are
// restricted to that project before projection. Pure function of its
// inputs; output order is tasks (input order) then projects.
func Events(tasks []domain.Task, projects []domain.Project, selectedProjectID string) []Event {
	var out []Event
	for _, t := range tasks {
		if t.DueDate == nil {
			continue
		}
		if selectedProjectID != "" && t.ProjectID != selectedProjectID {
			continue
		}
		tt := t
		out = append(out, Event{
			Kind:   EventTask,
			ID:     t.ID,
			Title:  t.Title,
			Date:   *t.DueDate,
			AllDay: true,
			Style:  taskStyle(t),
			Task:   &tt,
		})
	}
	for _, p := range projects {
		if p.Deadline == nil || len(p.Tasks) == 0 {
			continue
		}
		if selectedProjectID != "" && p.ID != selectedProjectID {
			continue
		}
		pp := p
		out = append(out, Event{
			Kind:   EventProject,
			ID:     p.ID,
			Title:  p.Name,
			Date:   *p.Deadline,
			AllDay: true,
			Style:  projectStyle(p),
			Proj:   &pp,
		})
	}
	return out
}

func taskStyle(t domain.Task) EventStyle {
	if t.Status == domain.StatusCompleted {
		return EventStyle{Background: colorCompleted, Opacity: dimmedOpacity}
	}
	return EventStyle{Background: PriorityColor(t.Priority), Opacity: 1}
}

// projectStyle makes project deadlines visually distinct from tasks: the
// project's own color dimmed, a solid 3px border of the same color, bold.
func projectStyle(p domain.Project) EventStyle {
	return EventStyle{
		Background:  p.Color,
		BorderColor: p.Color,
		BorderWidth: 3,
		Opacity:     dimmedOpacity,
		Bold:        true,
	}
}

// PriorityColor maps a priority to its display color.
func PriorityColor(p domain.Priority) string {
	switch p {
	case domain.PriorityUrgent:
		return colorUrgent
	case domain.PriorityHigh:
		return colorHigh
	case domain.PriorityMedium:
		return colorMedium
	default:
		return colorLow
	}
}

// CalendarView memoizes Events keyed on both collection identities and
// the project filter.
type CalendarView struct {
	tasks    sliceID
	projects sliceID
	selected string
	out      []Event
	ok       bool
}

func (v *CalendarView) Events(tasks []domain.Task, projects []domain.Project, selectedProjectID string) []Event {
	tid, pid := idOf(tasks), idOf(projects)
	if v.ok && v.tasks == tid && v.projects == pid && v.selected == selectedProjectID {
		return v.out
	}
	v.tasks, v.projects, v.selected = tid, pid, selectedProjectID
	v.out = Events(tasks, projects, selectedProjectID)
	v.ok = true
	return v.out
}
