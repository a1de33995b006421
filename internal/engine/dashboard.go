package engine

import (
	"context"

	"studyboard/internal/access"
	"studyboard/internal/domain"
)

// DailyActivities lists visible activities due today in the configured location.
func (e Engine) DailyActivities(ctx context.Context) ([]domain.Activity, error) {
	actor, err := e.actor()
	if err != nil {
		return nil, err
	}
	sorted, err := e.sortedVisible(actor)
	if err != nil {
		return nil, err
	}
	return access.DueOn(sorted, e.Today()), nil
}

type Dashboard struct {
	Actor           domain.Actor      `json:"actor"`
	Today           domain.Date       `json:"today"`
	ActiveProjects  []domain.Project  `json:"active_projects"`
	DailyActivities []domain.Activity `json:"daily_activities"`
}

// Dashboard summarizes unfinished visible projects and today's activities.
func (e Engine) Dashboard(ctx context.Context) (Dashboard, error) {
	actor, err := e.actor()
	if err != nil {
		return Dashboard{}, err
	}
	projects, err := e.Projects(ctx)
	if err != nil {
		return Dashboard{}, err
	}
	daily, err := e.DailyActivities(ctx)
	if err != nil {
		return Dashboard{}, err
	}
	actor.Password = ""
	return Dashboard{
		Actor:           actor,
		Today:           e.Today(),
		ActiveProjects:  access.ActiveProjects(projects),
		DailyActivities: daily,
	}, nil
}
