package view

import (
	"math"
	"sort"
	"time"

	"github.com/CaptainBerkay35/taskmanager/internal/domain"
)

// upcomingWindowDays bounds the "deadline soon" list: today through one
// week out, inclusive.
const upcomingWindowDays = 7

const topProjectCount = 5

// ProjectStats is a project annotated with its task totals for ranking.
type ProjectStats struct {
	Project        domain.Project `json:"project"`
	TaskCount      int            `json:"taskCount"`
	CompletedCount int            `json:"completedCount"`
}

// CategoryCount is a category with the number of projects referencing it.
type CategoryCount struct {
	Category     domain.Category `json:"category"`
	ProjectCount int             `json:"projectCount"`
}

// Summary is the dashboard aggregate over the three raw collections.
type Summary struct {
	TotalProjects     int `json:"totalProjects"`
	ActiveProjects    int `json:"activeProjects"`
	CompletedProjects int `json:"completedProjects"`

	TotalTasks     int `json:"totalTasks"`
	CompletedTasks int `json:"completedTasks"`
	CompletionRate int `json:"completionRate"`

	UpcomingDeadlines  []domain.Project `json:"upcomingDeadlines"`
	OverdueProjects    []domain.Project `json:"overdueProjects"`
	TopProjects        []ProjectStats   `json:"projectsWithTaskCount"`
	ProjectsByCategory []CategoryCount  `json:"projectsByCategory"`
}

// Summarize computes every dashboard figure in a handful of cheap passes.
// The collections are tens to low hundreds of records; recompute eagerly
// whenever any of them changes.
func Summarize(tasks []domain.Task, projects []domain.Project, categories []domain.Category, now time.Time) Summary {
	s := Summary{TotalProjects: len(projects), TotalTasks: len(tasks)}

	for _, t := range tasks {
		if t.Status == domain.StatusCompleted {
			s.CompletedTasks++
		}
	}
	if s.TotalTasks > 0 {
		s.CompletionRate = int(math.Round(float64(s.CompletedTasks) / float64(s.TotalTasks) * 100))
	}

	var ranked []ProjectStats
	for _, p := range projects {
		if len(p.Tasks) > 0 {
			s.ActiveProjects++
		}
		if p.Completed() {
			s.CompletedProjects++
		}
		if p.Deadline != nil {
			days := domain.DaysUntil(now, *p.Deadline)
			if days >= 0 && days <= upcomingWindowDays {
				s.UpcomingDeadlines = append(s.UpcomingDeadlines, p)
			}
			// an empty project past its deadline is still overdue
			if days < 0 && !p.Completed() {
				s.OverdueProjects = append(s.OverdueProjects, p)
			}
		}
		if len(p.Tasks) > 0 {
			st := ProjectStats{Project: p, TaskCount: len(p.Tasks)}
			for _, t := range p.Tasks {
				if t.Status == domain.StatusCompleted {
					st.CompletedCount++
				}
			}
			ranked = append(ranked, st)
		}
	}

	sort.SliceStable(s.UpcomingDeadlines, func(i, j int) bool {
		return s.UpcomingDeadlines[i].Deadline.Before(*s.UpcomingDeadlines[j].Deadline)
	})

	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].TaskCount > ranked[j].TaskCount })
	if len(ranked) > topProjectCount {
		ranked = ranked[:topProjectCount]
	}
	s.TopProjects = ranked

	for _, c := range categories {
		n := 0
		for _, p := range projects {
			if p.HasCategory(c.ID) {
				n++
			}
		}
		if n > 0 {
			s.ProjectsByCategory = append(s.ProjectsByCategory, CategoryCount{Category: c, ProjectCount: n})
		}
	}
	return s
}
