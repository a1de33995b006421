package engine

import (
	"context"
	"strings"

	"studyboard/internal/access"
	"studyboard/internal/domain"
	"studyboard/internal/validation"
)

// ActivityInput carries the fields of a new activity.
type ActivityInput struct {
	Discipline  string
	Description string
	DueDate     *domain.Date
	Status      domain.ActivityStatus
	ProjectID   string
}

// CreateActivity posts an activity authored by the current actor. It starts
// unpinned with no comments. A project-owned activity needs access to that project.
func (e Engine) CreateActivity(ctx context.Context, in ActivityInput) (a domain.Activity, err error) {
	defer func() { e.record("create-activity", err) }()
	actor, err := e.actor()
	if err != nil {
		return domain.Activity{}, err
	}
	in.ProjectID = strings.TrimSpace(in.ProjectID)
	if in.ProjectID != "" {
		if _, err := e.visibleProject(actor, in.ProjectID); err != nil {
			return domain.Activity{}, err
		}
	}
	if err := e.authorize(actor, access.CreateActivity); err != nil {
		return domain.Activity{}, err
	}
	if in.Status == "" {
		in.Status = domain.ActivityInProgress
	}
	a = domain.Activity{
		ID:          e.newID(),
		Discipline:  strings.TrimSpace(in.Discipline),
		Description: strings.TrimSpace(in.Description),
		DueDate:     in.DueDate,
		Status:      in.Status,
		User:        actor.Name,
		Comments:    []domain.Comment{},
		ProjectID:   in.ProjectID,
	}
	unlock := e.lock()
	defer unlock()
	if err := e.Store.AddActivity(a); err != nil {
		return domain.Activity{}, err
	}
	return a, nil
}

// TogglePin flips an activity's pinned flag.
func (e Engine) TogglePin(ctx context.Context, id string) (domain.Activity, error) {
	return e.mutateActivity("toggle-pin", id, access.PinActivity, func(_ domain.Actor, a *domain.Activity) error {
		a.Pinned = !a.Pinned
		return nil
	})
}

// AddComment appends a comment by the current actor. Every role may comment.
func (e Engine) AddComment(ctx context.Context, id, text string) (domain.Activity, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return domain.Activity{}, validation.Required("text")
	}
	return e.mutateActivity("add-comment", id, access.Comment, func(actor domain.Actor, a *domain.Activity) error {
		a.Comments = append(a.Comments, domain.Comment{User: actor.Name, Text: text})
		return nil
	})
}

// SetActivityStatus moves an activity between precisa de ajuda, em andamento and resolvida.
func (e Engine) SetActivityStatus(ctx context.Context, id string, status domain.ActivityStatus) (domain.Activity, error) {
	return e.mutateActivity("set-activity-status", id, access.CreateActivity, func(_ domain.Actor, a *domain.Activity) error {
		a.Status = status
		return nil
	})
}

// DeleteActivity removes an activity. A removed selection falls back on next read.
func (e Engine) DeleteActivity(ctx context.Context, id string) (err error) {
	defer func() { e.record("delete-activity", err) }()
	actor, err := e.actor()
	if err != nil {
		return err
	}
	unlock := e.lock()
	defer unlock()
	if _, err := e.visibleActivity(actor, id); err != nil {
		return err
	}
	if err := e.authorize(actor, access.DeleteActivity); err != nil {
		return err
	}
	return e.Store.DeleteActivity(id)
}

// Activities lists visible activities, pinned first.
func (e Engine) Activities(ctx context.Context) ([]domain.Activity, error) {
	actor, err := e.actor()
	if err != nil {
		return nil, err
	}
	return e.sortedVisible(actor)
}

func (e Engine) sortedVisible(actor domain.Actor) ([]domain.Activity, error) {
	projects, err := e.Store.Projects()
	if err != nil {
		return nil, err
	}
	activities, err := e.Store.Activities()
	if err != nil {
		return nil, err
	}
	return access.SortPinnedFirst(access.VisibleActivities(actor, activities, projects)), nil
}

// ProjectActivities lists the activities attached to a visible project, pinned first.
func (e Engine) ProjectActivities(ctx context.Context, projectID string) ([]domain.Activity, error) {
	actor, err := e.actor()
	if err != nil {
		return nil, err
	}
	if _, err := e.visibleProject(actor, projectID); err != nil {
		return nil, err
	}
	owned, err := e.Store.ActivitiesOfProject(projectID)
	if err != nil {
		return nil, err
	}
	return access.SortPinnedFirst(owned), nil
}

func (e Engine) Activity(ctx context.Context, id string) (domain.Activity, error) {
	actor, err := e.actor()
	if err != nil {
		return domain.Activity{}, err
	}
	return e.visibleActivity(actor, id)
}

// SelectActivity focuses a visible activity.
func (e Engine) SelectActivity(ctx context.Context, id string) (domain.Activity, error) {
	a, err := e.Activity(ctx, id)
	if err != nil {
		return domain.Activity{}, err
	}
	e.selection.set(a.ID)
	return a, nil
}

// SelectedActivity returns the focused activity, falling back to the first pinned
// then the first visible one when the previous choice is gone. ok is false when
// nothing is visible.
func (e Engine) SelectedActivity(ctx context.Context) (domain.Activity, bool, error) {
	actor, err := e.actor()
	if err != nil {
		return domain.Activity{}, false, err
	}
	sorted, err := e.sortedVisible(actor)
	if err != nil {
		return domain.Activity{}, false, err
	}
	id := access.Reselect(e.selection.get(), sorted)
	e.selection.set(id)
	for _, a := range sorted {
		if a.ID == id {
			return a, true, nil
		}
	}
	return domain.Activity{}, false, nil
}
