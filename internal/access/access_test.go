package access

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studyboard/internal/domain"
)

var (
	admin  = domain.Actor{ID: "1", Name: "Lucas", Role: domain.RoleAdmin}
	member = domain.Actor{ID: "3", Name: "Guilherme", Role: domain.RoleMember}
	viewer = domain.Actor{ID: "6", Name: "Italo", Role: domain.RoleViewer}

	proj1 = domain.Project{ID: "proj1", Access: []string{"1", "2", "3", "4", "5"}}
	proj2 = domain.Project{ID: "proj2", Access: []string{"3", "5", "6"}}
)

func activityIDs(as []domain.Activity) []string {
	out := []string{}
	for _, a := range as {
		out = append(out, a.ID)
	}
	return out
}

func TestCan(t *testing.T) {
	cases := []struct {
		actor  domain.Actor
		action Action
		want   bool
	}{
		{admin, CreateProject, true},
		{admin, DeleteProject, true},
		{admin, AccessSettings, true},
		{member, CreateProject, true},
		{member, EditProjectContents, true},
		{member, DeleteProject, false},
		{member, AccessSettings, false},
		{viewer, CreateProject, false},
		{viewer, CreateActivity, false},
		{viewer, DeleteProject, false},
		{viewer, PinActivity, false},
		{viewer, EditProjectContents, false},
		{viewer, DeleteActivity, false},
		{viewer, Comment, true},
		{admin, Action("launch-rocket"), false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Can(tc.actor, tc.action), "%s %s", tc.actor.Role, tc.action)
	}
}

func TestAdminMayDeleteEveryProject(t *testing.T) {
	for _, p := range []domain.Project{proj1, proj2} {
		assert.True(t, Can(admin, DeleteProject), p.ID)
		assert.False(t, Can(member, DeleteProject), p.ID)
		assert.False(t, Can(viewer, DeleteProject), p.ID)
		assert.False(t, Can(viewer, CreateProject), p.ID)
	}
}

func TestAuthorize(t *testing.T) {
	require.NoError(t, Authorize(member, PinActivity))
	err := Authorize(viewer, PinActivity)
	var forbidden ForbiddenError
	require.True(t, errors.As(err, &forbidden))
	assert.Equal(t, PinActivity, forbidden.Action)
	assert.Equal(t, "action pin-activity not permitted", err.Error())
}

func TestCapabilities(t *testing.T) {
	caps := Capabilities(viewer)
	assert.Len(t, caps, len(Actions))
	assert.True(t, caps[Comment])
	assert.False(t, caps[EditProject])
}

func TestViewerScenario(t *testing.T) {
	projects := []domain.Project{proj1, proj2}
	visible := VisibleProjects(viewer, projects)
	require.Len(t, visible, 1)
	assert.Equal(t, "proj2", visible[0].ID)

	activities := []domain.Activity{
		{ID: "a1", ProjectID: "proj1"},
		{ID: "a2", ProjectID: "proj2"},
		{ID: "a3"},
		{ID: "a4", ProjectID: "deleted"},
	}
	assert.Equal(t, []string{"a2", "a3"}, activityIDs(VisibleActivities(viewer, activities, projects)))
	assert.Equal(t, []string{"a1", "a2", "a3"}, activityIDs(VisibleActivities(member, activities, projects)))
	assert.Equal(t, []string{"a1", "a3"}, activityIDs(VisibleActivities(admin, activities, projects)))
}

func TestSortPinnedFirstIsStable(t *testing.T) {
	in := []domain.Activity{
		{ID: "a"}, {ID: "b", Pinned: true}, {ID: "c"}, {ID: "d", Pinned: true}, {ID: "e"},
	}
	out := SortPinnedFirst(in)
	assert.Equal(t, []string{"b", "d", "a", "c", "e"}, activityIDs(out))
	assert.Equal(t, "a", in[0].ID, "input must not be reordered")
	assert.Empty(t, SortPinnedFirst(nil))
}

func TestSelection(t *testing.T) {
	sorted := SortPinnedFirst([]domain.Activity{{ID: "a"}, {ID: "b", Pinned: true}})
	assert.Equal(t, "b", DefaultSelection(sorted))
	assert.Equal(t, "a", DefaultSelection([]domain.Activity{{ID: "a"}, {ID: "c"}}))
	assert.Equal(t, "", DefaultSelection(nil))

	assert.Equal(t, "a", Reselect("a", sorted))
	assert.Equal(t, "b", Reselect("gone", sorted))
	assert.Equal(t, "b", Reselect("", sorted))
	assert.Equal(t, "", Reselect("gone", nil))
}

func TestKanbanBuckets(t *testing.T) {
	tasks := []domain.Task{
		{ID: "t1", Status: domain.TaskDone},
		{ID: "t2", Status: domain.TaskTodo},
		{ID: "t3", Status: domain.TaskProgress},
		{ID: "t4", Status: domain.TaskTodo},
		{ID: "t5", Status: "blocked"},
	}
	b := KanbanBuckets(tasks)
	require.Len(t, b.Todo, 2)
	assert.Equal(t, "t2", b.Todo[0].ID)
	assert.Equal(t, "t4", b.Todo[1].ID)
	assert.Len(t, b.Progress, 1)
	assert.Len(t, b.Done, 1)

	empty := KanbanBuckets(nil)
	assert.NotNil(t, empty.Todo)
}

func TestDueOn(t *testing.T) {
	today := domain.Date{Year: 2024, Month: time.May, Day: 1}
	activities := []domain.Activity{
		{ID: "a", DueDate: domain.DatePtr(today)},
		{ID: "b", DueDate: domain.DatePtr(today.AddDays(1))},
		{ID: "c"},
	}
	assert.Equal(t, []string{"a"}, activityIDs(DueOn(activities, today)))
}

func TestActiveProjects(t *testing.T) {
	projects := []domain.Project{
		{ID: "a", Status: domain.ProjectInProgress},
		{ID: "b", Status: domain.ProjectFinished},
		{ID: "c", Status: domain.ProjectLate},
	}
	out := ActiveProjects(projects)
	require.Len(t, out, 2)
	assert.Equal(t, "c", out[1].ID)
}
