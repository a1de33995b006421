// Package store keeps the mutable Project and Activity collections of a session.
// Iteration order is newest first. The store validates entities but does not
// authorize callers.
package store

import (
	"errors"
	"fmt"
	"sort"
	"sync/atomic"

	"github.com/hashicorp/go-memdb"

	"studyboard/internal/domain"
	"studyboard/internal/validation"
)

var (
	ErrNotFound      = errors.New("entity not found")
	ErrAlreadyExists = errors.New("entity already exists")
)

type Store struct {
	db  *memdb.MemDB
	seq atomic.Uint64
}

func New() (*Store, error) {
	db, err := memdb.NewMemDB(schema)
	if err != nil {
		return nil, fmt.Errorf("new memdb: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) next() string {
	return seqKey(s.seq.Add(1))
}

func validateProject(p domain.Project) error {
	if err := validation.Struct(p); err != nil {
		return err
	}
	if p.DueDate.IsZero() {
		return validation.Required("Project.DueDate")
	}
	return nil
}

func validateActivity(a domain.Activity) error {
	return validation.Struct(a)
}

// withCreator keeps the creating actor on the access list.
func withCreator(p domain.Project) domain.Project {
	if p.CreatedBy != "" && !p.HasAccess(p.CreatedBy) {
		p.Access = append([]string{p.CreatedBy}, p.Access...)
	}
	return p
}

// AddProject places p first in the collection. The caller supplies the id.
func (s *Store) AddProject(p domain.Project) error {
	p = withCreator(p.DeepCopy())
	if err := validateProject(p); err != nil {
		return err
	}
	txn := s.db.Txn(true)
	defer txn.Abort()
	raw, err := txn.First(tblProjects, "id", p.ID)
	if err != nil {
		return fmt.Errorf("find project %s: %w", p.ID, err)
	}
	if raw != nil {
		return fmt.Errorf("project %s: %w", p.ID, ErrAlreadyExists)
	}
	if err := txn.Insert(tblProjects, &projectRow{ID: p.ID, Seq: s.next(), Project: p}); err != nil {
		return fmt.Errorf("insert project %s: %w", p.ID, err)
	}
	txn.Commit()
	return nil
}

// UpdateProject replaces the project with the same id, keeping its position.
func (s *Store) UpdateProject(p domain.Project) error {
	txn := s.db.Txn(true)
	defer txn.Abort()
	raw, err := txn.First(tblProjects, "id", p.ID)
	if err != nil {
		return fmt.Errorf("find project %s: %w", p.ID, err)
	}
	if raw == nil {
		return fmt.Errorf("project %s: %w", p.ID, ErrNotFound)
	}
	prev := raw.(*projectRow)
	p = p.DeepCopy()
	if p.CreatedBy == "" {
		p.CreatedBy = prev.Project.CreatedBy
	}
	p = withCreator(p)
	if err := validateProject(p); err != nil {
		return err
	}
	if err := txn.Insert(tblProjects, &projectRow{ID: p.ID, Seq: prev.Seq, Project: p}); err != nil {
		return fmt.Errorf("update project %s: %w", p.ID, err)
	}
	txn.Commit()
	return nil
}

func (s *Store) DeleteProject(id string) error {
	txn := s.db.Txn(true)
	defer txn.Abort()
	raw, err := txn.First(tblProjects, "id", id)
	if err != nil {
		return fmt.Errorf("find project %s: %w", id, err)
	}
	if raw == nil {
		return fmt.Errorf("project %s: %w", id, ErrNotFound)
	}
	if err := txn.Delete(tblProjects, raw); err != nil {
		return fmt.Errorf("delete project %s: %w", id, err)
	}
	txn.Commit()
	return nil
}

func (s *Store) Project(id string) (domain.Project, error) {
	txn := s.db.Txn(false)
	defer txn.Abort()
	raw, err := txn.First(tblProjects, "id", id)
	if err != nil {
		return domain.Project{}, fmt.Errorf("find project %s: %w", id, err)
	}
	if raw == nil {
		return domain.Project{}, fmt.Errorf("project %s: %w", id, ErrNotFound)
	}
	return raw.(*projectRow).Project.DeepCopy(), nil
}

// Projects returns every project, most recently created first.
func (s *Store) Projects() ([]domain.Project, error) {
	txn := s.db.Txn(false)
	defer txn.Abort()
	it, err := txn.Get(tblProjects, "seq")
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	var out []domain.Project
	for raw := it.Next(); raw != nil; raw = it.Next() {
		out = append(out, raw.(*projectRow).Project.DeepCopy())
	}
	reverse(out)
	return out, nil
}

// AddActivity places a first in the collection. The caller supplies the id.
func (s *Store) AddActivity(a domain.Activity) error {
	a = a.DeepCopy()
	if err := validateActivity(a); err != nil {
		return err
	}
	txn := s.db.Txn(true)
	defer txn.Abort()
	raw, err := txn.First(tblActivities, "id", a.ID)
	if err != nil {
		return fmt.Errorf("find activity %s: %w", a.ID, err)
	}
	if raw != nil {
		return fmt.Errorf("activity %s: %w", a.ID, ErrAlreadyExists)
	}
	row := &activityRow{ID: a.ID, Seq: s.next(), ProjectID: a.ProjectID, Activity: a}
	if err := txn.Insert(tblActivities, row); err != nil {
		return fmt.Errorf("insert activity %s: %w", a.ID, err)
	}
	txn.Commit()
	return nil
}

// UpdateActivity replaces the activity with the same id, keeping its position.
func (s *Store) UpdateActivity(a domain.Activity) error {
	a = a.DeepCopy()
	if err := validateActivity(a); err != nil {
		return err
	}
	txn := s.db.Txn(true)
	defer txn.Abort()
	raw, err := txn.First(tblActivities, "id", a.ID)
	if err != nil {
		return fmt.Errorf("find activity %s: %w", a.ID, err)
	}
	if raw == nil {
		return fmt.Errorf("activity %s: %w", a.ID, ErrNotFound)
	}
	prev := raw.(*activityRow)
	row := &activityRow{ID: a.ID, Seq: prev.Seq, ProjectID: a.ProjectID, Activity: a}
	if err := txn.Insert(tblActivities, row); err != nil {
		return fmt.Errorf("update activity %s: %w", a.ID, err)
	}
	txn.Commit()
	return nil
}

func (s *Store) DeleteActivity(id string) error {
	txn := s.db.Txn(true)
	defer txn.Abort()
	raw, err := txn.First(tblActivities, "id", id)
	if err != nil {
		return fmt.Errorf("find activity %s: %w", id, err)
	}
	if raw == nil {
		return fmt.Errorf("activity %s: %w", id, ErrNotFound)
	}
	if err := txn.Delete(tblActivities, raw); err != nil {
		return fmt.Errorf("delete activity %s: %w", id, err)
	}
	txn.Commit()
	return nil
}

func (s *Store) Activity(id string) (domain.Activity, error) {
	txn := s.db.Txn(false)
	defer txn.Abort()
	raw, err := txn.First(tblActivities, "id", id)
	if err != nil {
		return domain.Activity{}, fmt.Errorf("find activity %s: %w", id, err)
	}
	if raw == nil {
		return domain.Activity{}, fmt.Errorf("activity %s: %w", id, ErrNotFound)
	}
	return raw.(*activityRow).Activity.DeepCopy(), nil
}

// Activities returns every activity, most recently created first.
func (s *Store) Activities() ([]domain.Activity, error) {
	txn := s.db.Txn(false)
	defer txn.Abort()
	it, err := txn.Get(tblActivities, "seq")
	if err != nil {
		return nil, fmt.Errorf("list activities: %w", err)
	}
	var out []domain.Activity
	for raw := it.Next(); raw != nil; raw = it.Next() {
		out = append(out, raw.(*activityRow).Activity.DeepCopy())
	}
	reverse(out)
	return out, nil
}

// ActivitiesOfProject returns the activities owned by projectID, most recent first.
func (s *Store) ActivitiesOfProject(projectID string) ([]domain.Activity, error) {
	txn := s.db.Txn(false)
	defer txn.Abort()
	it, err := txn.Get(tblActivities, "project_id", projectID)
	if err != nil {
		return nil, fmt.Errorf("list activities of %s: %w", projectID, err)
	}
	var rows []*activityRow
	for raw := it.Next(); raw != nil; raw = it.Next() {
		rows = append(rows, raw.(*activityRow))
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Seq > rows[j].Seq })
	out := make([]domain.Activity, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.Activity.DeepCopy())
	}
	return out, nil
}

// Seed loads the initial collections so that the first element of each slice
// ends up first in iteration order.
func (s *Store) Seed(projects []domain.Project, activities []domain.Activity) error {
	for i := len(projects) - 1; i >= 0; i-- {
		if err := s.AddProject(projects[i]); err != nil {
			return fmt.Errorf("seed: %w", err)
		}
	}
	for i := len(activities) - 1; i >= 0; i-- {
		if err := s.AddActivity(activities[i]); err != nil {
			return fmt.Errorf("seed: %w", err)
		}
	}
	return nil
}

func reverse[T any](items []T) {
	for i, j := 0, len(items)-1; i < j; i, j = i+1, j-1 {
		items[i], items[j] = items[j], items[i]
	}
}

