package store

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studyboard/internal/domain"
	"studyboard/internal/validation"
)

var due = domain.Date{Year: 2024, Month: time.June, Day: 1}

func project(id string, access ...string) domain.Project {
	return domain.Project{
		ID:         id,
		Name:       "Projeto " + id,
		Discipline: "Engenharia",
		DueDate:    due,
		Status:     domain.ProjectInProgress,
		Access:     access,
	}
}

func activity(id, projectID string) domain.Activity {
	return domain.Activity{
		ID:          id,
		Discipline:  "Banco de Dados",
		Description: "ajuda com join",
		Status:      domain.ActivityInProgress,
		User:        "Davi",
		ProjectID:   projectID,
	}
}

func newStore(t *testing.T) *Store {
	t.Helper()
	s, err := New()
	require.NoError(t, err)
	return s
}

func ids[T any](items []T, id func(T) string) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, id(it))
	}
	return out
}

func projectIDs(ps []domain.Project) []string {
	return ids(ps, func(p domain.Project) string { return p.ID })
}

func activityIDs(as []domain.Activity) []string {
	return ids(as, func(a domain.Activity) string { return a.ID })
}

func TestAddProjectPrepends(t *testing.T) {
	s := newStore(t)
	require.NoError(t, s.AddProject(project("a", "1")))
	require.NoError(t, s.AddProject(project("b", "1")))
	require.NoError(t, s.AddProject(project("c", "1")))

	ps, err := s.Projects()
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "b", "a"}, projectIDs(ps))

	err = s.AddProject(project("b"))
	assert.ErrorIs(t, err, ErrAlreadyExists)
}

func TestAddProjectKeepsCreatorInAccess(t *testing.T) {
	s := newStore(t)
	p := project("p", "2", "3")
	p.CreatedBy = "1"
	require.NoError(t, s.AddProject(p))

	got, err := s.Project("p")
	require.NoError(t, err)
	assert.True(t, got.HasAccess("1"))

	// an update that drops the creator still keeps them on the list
	got.Access = []string{"2"}
	got.CreatedBy = ""
	require.NoError(t, s.UpdateProject(got))
	got, err = s.Project("p")
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2"}, got.Access)
	assert.Equal(t, "1", got.CreatedBy)
}

func TestAddProjectValidates(t *testing.T) {
	s := newStore(t)
	p := project("p")
	p.Name = ""
	p.Status = "Pausado"
	err := s.AddProject(p)
	var verr *validation.Error
	require.True(t, errors.As(err, &verr))
	assert.Len(t, verr.Fields, 2)

	p = project("p")
	p.DueDate = domain.Date{}
	assert.Error(t, s.AddProject(p))

	ps, err := s.Projects()
	require.NoError(t, err)
	assert.Empty(t, ps)
}

func TestUpdateProject(t *testing.T) {
	s := newStore(t)
	require.NoError(t, s.AddProject(project("a", "1")))
	require.NoError(t, s.AddProject(project("b", "1")))

	p := project("a", "1")
	p.Name = "Renomeado"
	require.NoError(t, s.UpdateProject(p))
	first, err := s.Projects()
	require.NoError(t, err)
	require.NoError(t, s.UpdateProject(p))
	second, err := s.Projects()
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, []string{"b", "a"}, projectIDs(second))
	assert.Equal(t, "Renomeado", second[1].Name)

	assert.ErrorIs(t, s.UpdateProject(project("missing")), ErrNotFound)
}

func TestReadsAreIsolated(t *testing.T) {
	s := newStore(t)
	require.NoError(t, s.AddProject(project("a", "1")))
	got, err := s.Project("a")
	require.NoError(t, err)
	got.Access[0] = "9"
	again, err := s.Project("a")
	require.NoError(t, err)
	assert.Equal(t, []string{"1"}, again.Access)
}

func TestDeleteProject(t *testing.T) {
	s := newStore(t)
	require.NoError(t, s.AddProject(project("a", "1")))
	require.NoError(t, s.DeleteProject("a"))
	assert.ErrorIs(t, s.DeleteProject("a"), ErrNotFound)
	_, err := s.Project("a")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestActivities(t *testing.T) {
	s := newStore(t)
	require.NoError(t, s.AddActivity(activity("x", "")))
	require.NoError(t, s.AddActivity(activity("y", "p1")))
	require.NoError(t, s.AddActivity(activity("z", "p1")))
	assert.ErrorIs(t, s.AddActivity(activity("x", "")), ErrAlreadyExists)

	as, err := s.Activities()
	require.NoError(t, err)
	assert.Equal(t, []string{"z", "y", "x"}, activityIDs(as))

	owned, err := s.ActivitiesOfProject("p1")
	require.NoError(t, err)
	assert.Equal(t, []string{"z", "y"}, activityIDs(owned))

	y := as[1]
	y.Pinned = true
	y.Comments = append(y.Comments, domain.Comment{User: "Lucas", Text: "vou olhar"})
	require.NoError(t, s.UpdateActivity(y))
	got, err := s.Activity("y")
	require.NoError(t, err)
	assert.True(t, got.Pinned)
	assert.Len(t, got.Comments, 1)

	bad := activity("x", "")
	bad.Description = ""
	assert.Error(t, s.UpdateActivity(bad))
	assert.ErrorIs(t, s.UpdateActivity(activity("nope", "")), ErrNotFound)

	require.NoError(t, s.DeleteActivity("y"))
	assert.ErrorIs(t, s.DeleteActivity("y"), ErrNotFound)
	as, err = s.Activities()
	require.NoError(t, err)
	assert.Equal(t, []string{"z", "x"}, activityIDs(as))
}

func TestSeedKeepsOrder(t *testing.T) {
	s := newStore(t)
	require.NoError(t, s.Seed(
		[]domain.Project{project("proj1", "1"), project("proj2", "6")},
		[]domain.Activity{activity("act1", "proj1"), activity("act2", "proj1"), activity("act3", "proj2")},
	))
	ps, err := s.Projects()
	require.NoError(t, err)
	assert.Equal(t, []string{"proj1", "proj2"}, projectIDs(ps))
	as, err := s.Activities()
	require.NoError(t, err)
	assert.Equal(t, []string{"act1", "act2", "act3"}, activityIDs(as))

	require.NoError(t, s.AddProject(project("new", "1")))
	ps, err = s.Projects()
	require.NoError(t, err)
	assert.Equal(t, "new", ps[0].ID)
}
