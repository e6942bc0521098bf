package view

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/CaptainBerkay35/taskmanager/internal/domain"
)

// ProjectSort is the closed set of project orderings.
type ProjectSort string

const (
	SortCreatedNewest ProjectSort = "createdDate" // default
	SortCreatedOldest ProjectSort = "createdDateOld"
	SortDeadlineNear  ProjectSort = "deadline"
	SortDeadlineFar   ProjectSort = "deadlineFar"
	SortNameAsc       ProjectSort = "name"
	SortNameDesc      ProjectSort = "nameDesc"
	SortTaskCountHigh ProjectSort = "taskCount"
	SortTaskCountLow  ProjectSort = "taskCountLow"
)

// ParseProjectSort validates a sort key from user input, defaulting to
// newest-first when empty.
func ParseProjectSort(s string) (ProjectSort, error) {
	switch ProjectSort(s) {
	case "":
		return SortCreatedNewest, nil
	case SortCreatedNewest, SortCreatedOldest, SortDeadlineNear, SortDeadlineFar,
		SortNameAsc, SortNameDesc, SortTaskCountHigh, SortTaskCountLow:
		return ProjectSort(s), nil
	}
	return "", fmt.Errorf("unknown sort key %q", s)
}

// ProjectCriteria filters projects before sorting. Zero values are
// wildcards, mirroring TaskCriteria.
type ProjectCriteria struct {
	Search     string
	CategoryID string
	Sort       ProjectSort
}

// Name ordering follows Turkish collation so dotted/dotless i and the
// other diacritics sort the way users expect.
var nameCollator = collate.New(language.Turkish)

// Match reports whether the project passes the text and category filters.
func (c ProjectCriteria) Match(p domain.Project) bool {
	if c.Search != "" {
		q := strings.ToLower(c.Search)
		if !strings.Contains(strings.ToLower(p.Name), q) &&
			!strings.Contains(strings.ToLower(p.Description), q) {
			return false
		}
	}
	if c.CategoryID != "" && !p.HasCategory(c.CategoryID) {
		return false
	}
	return true
}

// FilterSortProjects filters then stably sorts a copy of the project
// collection. Ties keep their original relative order; projects without a
// deadline sort last under both deadline orders.
func FilterSortProjects(projects []domain.Project, c ProjectCriteria) []domain.Project {
	out := make([]domain.Project, 0, len(projects))
	for _, p := range projects {
		if c.Match(p) {
			out = append(out, p)
		}
	}
	key := c.Sort
	if key == "" {
		key = SortCreatedNewest
	}
	sort.SliceStable(out, func(i, j int) bool { return projectLess(out[i], out[j], key) })
	return out
}

func projectLess(a, b domain.Project, key ProjectSort) bool {
	switch key {
	case SortCreatedOldest:
		return a.CreatedDate.Before(b.CreatedDate)
	case SortDeadlineNear:
		return deadlineLess(a, b, false)
	case SortDeadlineFar:
		return deadlineLess(a, b, true)
	case SortNameAsc:
		return nameCollator.CompareString(a.Name, b.Name) < 0
	case SortNameDesc:
		return nameCollator.CompareString(a.Name, b.Name) > 0
	case SortTaskCountHigh:
		return len(a.Tasks) > len(b.Tasks)
	case SortTaskCountLow:
		return len(a.Tasks) < len(b.Tasks)
	default: // SortCreatedNewest
		return a.CreatedDate.After(b.CreatedDate)
	}
}

// deadlineLess orders by deadline, keeping nil deadlines last regardless
// of direction.
func deadlineLess(a, b domain.Project, far bool) bool {
	switch {
	case a.Deadline == nil && b.Deadline == nil:
		return false
	case a.Deadline == nil:
		return false
	case b.Deadline == nil:
		return true
	case far:
		return a.Deadline.After(*b.Deadline)
	default:
		return a.Deadline.Before(*b.Deadline)
	}
}

// ProjectView memoizes FilterSortProjects keyed on the project collection
// identity and the criteria.
type ProjectView struct {
	projects sliceID
	crit     ProjectCriteria
	out      []domain.Project
	ok       bool
}

func (v *ProjectView) FilterSort(projects []domain.Project, c ProjectCriteria) []domain.Project {
	id := idOf(projects)
	if v.ok && v.projects == id && v.crit == c {
		return v.out
	}
	v.projects, v.crit = id, c
	v.out = FilterSortProjects(projects, c)
	v.ok = true
	return v.out
}
