package engine

import (
	"context"
	"slices"
	"strings"

	"studyboard/internal/access"
	"studyboard/internal/domain"
	"studyboard/internal/validation"
)

// ProjectInput carries the editable fields of a project.
type ProjectInput struct {
	Name        string
	Description string
	Discipline  string
	DueDate     domain.Date
	Status      domain.ProjectStatus
	Access      []string
}

// CreateProject builds a new project owned by the current actor and places it first.
// Members are derived from the access list.
func (e Engine) CreateProject(ctx context.Context, in ProjectInput) (p domain.Project, err error) {
	defer func() { e.record("create-project", err) }()
	actor, err := e.actor()
	if err != nil {
		return domain.Project{}, err
	}
	if err := e.authorize(actor, access.CreateProject); err != nil {
		return domain.Project{}, err
	}
	if in.Status == "" {
		in.Status = domain.ProjectInProgress
	}
	grant := normalizeAccess(actor.ID, in.Access)
	p = domain.Project{
		ID:          e.newID(),
		Name:        strings.TrimSpace(in.Name),
		Description: strings.TrimSpace(in.Description),
		Discipline:  strings.TrimSpace(in.Discipline),
		DueDate:     in.DueDate,
		Status:      in.Status,
		Members:     e.Identity.Registry().NamesFor(grant),
		Tasks:       []domain.Task{},
		Documents:   []domain.Document{},
		Checklist:   []domain.ChecklistItem{},
		Access:      grant,
		CreatedBy:   actor.ID,
	}
	unlock := e.lock()
	defer unlock()
	if err := e.Store.AddProject(p); err != nil {
		return domain.Project{}, err
	}
	e.Logger.Infof("actor %s created project %s", actor.ID, p.ID)
	return e.Store.Project(p.ID)
}

// UpdateProject edits a project's fields. Changing the access list requires the
// access-settings capability and re-derives members.
func (e Engine) UpdateProject(ctx context.Context, id string, in ProjectInput) (domain.Project, error) {
	return e.mutateProject("update-project", id, access.EditProject, func(actor domain.Actor, p *domain.Project) error {
		p.Name = strings.TrimSpace(in.Name)
		p.Description = strings.TrimSpace(in.Description)
		p.Discipline = strings.TrimSpace(in.Discipline)
		p.DueDate = in.DueDate
		if in.Status != "" {
			p.Status = in.Status
		}
		if in.Access == nil {
			return nil
		}
		grant := normalizeAccess(p.CreatedBy, in.Access)
		if slices.Equal(grant, p.Access) {
			return nil
		}
		if err := e.authorize(actor, access.AccessSettings); err != nil {
			return err
		}
		if !slices.Contains(grant, actor.ID) {
			return &validation.Error{Fields: []validation.FieldError{{Field: "Project.Access", Tag: "contains", Param: actor.ID}}}
		}
		p.Access = grant
		p.Members = e.Identity.Registry().NamesFor(grant)
		return nil
	})
}

// SetProjectStatus moves a project through its lifecycle.
func (e Engine) SetProjectStatus(ctx context.Context, id string, status domain.ProjectStatus) (domain.Project, error) {
	return e.mutateProject("set-project-status", id, access.EditProject, func(_ domain.Actor, p *domain.Project) error {
		p.Status = status
		return nil
	})
}

// DeleteProject removes a project and its stored attachments.
func (e Engine) DeleteProject(ctx context.Context, id string) (err error) {
	defer func() { e.record("delete-project", err) }()
	actor, err := e.actor()
	if err != nil {
		return err
	}
	unlock := e.lock()
	defer unlock()
	p, err := e.visibleProject(actor, id)
	if err != nil {
		return err
	}
	if err := e.authorize(actor, access.DeleteProject); err != nil {
		return err
	}
	if err := e.Store.DeleteProject(id); err != nil {
		return err
	}
	for _, d := range p.Documents {
		if d.BlobKey == "" {
			continue
		}
		if _, err := e.Blobs.Delete(ctx, d.BlobKey); err != nil {
			e.Logger.Warnf("drop attachment %s of project %s: %v", d.BlobKey, id, err)
		}
	}
	e.Logger.Infof("actor %s deleted project %s", actor.ID, id)
	return nil
}

// Projects lists the projects visible to the current actor, newest first.
func (e Engine) Projects(ctx context.Context) ([]domain.Project, error) {
	actor, err := e.actor()
	if err != nil {
		return nil, err
	}
	all, err := e.Store.Projects()
	if err != nil {
		return nil, err
	}
	return access.VisibleProjects(actor, all), nil
}

func (e Engine) Project(ctx context.Context, id string) (domain.Project, error) {
	actor, err := e.actor()
	if err != nil {
		return domain.Project{}, err
	}
	return e.visibleProject(actor, id)
}

// Board buckets a project's tasks by status.
func (e Engine) Board(ctx context.Context, id string) (access.Board, error) {
	p, err := e.Project(ctx, id)
	if err != nil {
		return access.Board{}, err
	}
	return access.KanbanBuckets(p.Tasks), nil
}

// Capabilities evaluates every action for the current actor. A projectID that is
// set must name a project the actor can see.
func (e Engine) Capabilities(ctx context.Context, projectID string) (map[access.Action]bool, error) {
	actor, err := e.actor()
	if err != nil {
		return nil, err
	}
	if projectID != "" {
		if _, err := e.visibleProject(actor, projectID); err != nil {
			return nil, err
		}
	}
	return access.Capabilities(actor), nil
}

// normalizeAccess puts owner first and drops blanks and duplicates.
func normalizeAccess(owner string, ids []string) []string {
	seen := map[string]bool{}
	out := make([]string, 0, len(ids)+1)
	add := func(id string) {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			return
		}
		seen[id] = true
		out = append(out, id)
	}
	add(owner)
	for _, id := range ids {
		add(id)
	}
	return out
}
