package access

import (
	"studyboard/internal/domain"
)

// VisibleProjects keeps the projects whose access list holds actor.
func VisibleProjects(actor domain.Actor, projects []domain.Project) []domain.Project {
	out := make([]domain.Project, 0, len(projects))
	for _, p := range projects {
		if p.HasAccess(actor.ID) {
			out = append(out, p)
		}
	}
	return out
}

// VisibleActivities keeps activities with no project, or whose project is visible to actor.
func VisibleActivities(actor domain.Actor, activities []domain.Activity, projects []domain.Project) []domain.Activity {
	reachable := make(map[string]struct{})
	for _, p := range VisibleProjects(actor, projects) {
		reachable[p.ID] = struct{}{}
	}
	out := make([]domain.Activity, 0, len(activities))
	for _, a := range activities {
		if a.ProjectID == "" {
			out = append(out, a)
			continue
		}
		if _, ok := reachable[a.ProjectID]; ok {
			out = append(out, a)
		}
	}
	return out
}

// SortPinnedFirst is a stable partition: pinned activities first, input order kept in each group.
func SortPinnedFirst(activities []domain.Activity) []domain.Activity {
	out := make([]domain.Activity, 0, len(activities))
	for _, a := range activities {
		if a.Pinned {
			out = append(out, a)
		}
	}
	for _, a := range activities {
		if !a.Pinned {
			out = append(out, a)
		}
	}
	return out
}

// DefaultSelection picks the first pinned activity, else the first one. Empty means none.
func DefaultSelection(sorted []domain.Activity) string {
	for _, a := range sorted {
		if a.Pinned {
			return a.ID
		}
	}
	if len(sorted) > 0 {
		return sorted[0].ID
	}
	return ""
}

// Reselect keeps selected while it is still in sorted, otherwise falls back to DefaultSelection.
func Reselect(selected string, sorted []domain.Activity) string {
	if selected != "" {
		for _, a := range sorted {
			if a.ID == selected {
				return selected
			}
		}
	}
	return DefaultSelection(sorted)
}

// Board holds a project's tasks bucketed by status.
type Board struct {
	Todo     []domain.Task `json:"todo"`
	Progress []domain.Task `json:"progress"`
	Done     []domain.Task `json:"done"`
}

// KanbanBuckets partitions tasks by status, preserving relative order.
// Tasks with an unknown status are left out.
func KanbanBuckets(tasks []domain.Task) Board {
	b := Board{Todo: []domain.Task{}, Progress: []domain.Task{}, Done: []domain.Task{}}
	for _, t := range tasks {
		switch t.Status {
		case domain.TaskTodo:
			b.Todo = append(b.Todo, t)
		case domain.TaskProgress:
			b.Progress = append(b.Progress, t)
		case domain.TaskDone:
			b.Done = append(b.Done, t)
		}
	}
	return b
}

// DueOn keeps activities whose due date is day. Activities without a due date never match.
func DueOn(activities []domain.Activity, day domain.Date) []domain.Activity {
	out := make([]domain.Activity, 0)
	for _, a := range activities {
		if a.DueDate != nil && a.DueDate.Equal(day) {
			out = append(out, a)
		}
	}
	return out
}

// ActiveProjects drops finished projects.
func ActiveProjects(projects []domain.Project) []domain.Project {
	out := make([]domain.Project, 0, len(projects))
	for _, p := range projects {
		if p.Status != domain.ProjectFinished {
			out = append(out, p)
		}
	}
	return out
}
