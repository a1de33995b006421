// Package engine is the single entry point for every studyboard operation.
// It resolves the current actor, consults the capability gate, and only then
// touches the entity store.
package engine

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"studyboard/internal/access"
	"studyboard/internal/assistant"
	"studyboard/internal/blob"
	"studyboard/internal/domain"
	"studyboard/internal/identity"
	"studyboard/internal/logging"
	"studyboard/internal/metrics"
	"studyboard/internal/store"
)

var (
	ErrUnauthenticated = errors.New("no actor logged in")
	ErrNoPayload       = errors.New("document has no stored payload")
)

type Engine struct {
	Identity  *identity.Store
	Store     *store.Store
	Blobs     blob.Store
	Assistant *assistant.Assistant
	Metrics   *metrics.Metrics
	Logger    logging.Logger
	Location  *time.Location
	Now       func() time.Time
	NewID     func() string

	// writes serializes read-modify-write cycles on the store.
	writes    *sync.Mutex
	selection *selection
}

type Options struct {
	Identity  *identity.Store
	Store     *store.Store
	Blobs     blob.Store
	Assistant *assistant.Assistant
	Metrics   *metrics.Metrics
	Logger    logging.Logger
	Location  *time.Location
}

func New(opts Options) Engine {
	e := Engine{
		Identity:  opts.Identity,
		Store:     opts.Store,
		Blobs:     opts.Blobs,
		Assistant: opts.Assistant,
		Metrics:   opts.Metrics,
		Logger:    opts.Logger,
		Location:  opts.Location,
		Now:       time.Now,
		NewID:     func() string { return uuid.NewString() },
		writes:    &sync.Mutex{},
		selection: &selection{},
	}
	if e.Logger == nil {
		e.Logger = logging.Nop()
	}
	if e.Blobs == nil {
		e.Blobs = blob.NewMemory()
	}
	if e.Assistant == nil {
		e.Assistant = assistant.New(nil, assistant.Options{Logger: e.Logger, Metrics: e.Metrics})
	}
	if e.Location == nil {
		e.Location = time.UTC
	}
	return e
}

func (e Engine) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}

// Today is the current calendar day in the configured location.
func (e Engine) Today() domain.Date {
	return domain.Today(e.now(), e.Location)
}

func (e Engine) newID() string {
	if e.NewID != nil {
		return e.NewID()
	}
	return uuid.NewString()
}

func (e Engine) actor() (domain.Actor, error) {
	a, ok := e.Identity.Current()
	if !ok {
		return domain.Actor{}, ErrUnauthenticated
	}
	return a, nil
}

// authorize consults the capability gate and counts denials.
func (e Engine) authorize(actor domain.Actor, action access.Action) error {
	if err := access.Authorize(actor, action); err != nil {
		e.Metrics.AddDenied(string(action))
		e.Logger.Debugf("actor %s denied %s", actor.ID, action)
		return err
	}
	return nil
}

// record counts a mutation outcome.
func (e Engine) record(op string, err error) {
	var forbidden access.ForbiddenError
	switch {
	case err == nil:
		e.Metrics.AddMutation(op, metrics.ResultOK)
	case errors.As(err, &forbidden):
		e.Metrics.AddMutation(op, metrics.ResultForbidden)
	case errors.Is(err, store.ErrNotFound):
		e.Metrics.AddMutation(op, metrics.ResultNotFound)
	default:
		e.Metrics.AddMutation(op, metrics.ResultError)
	}
}

func (e Engine) lock() func() {
	if e.writes == nil {
		return func() {}
	}
	e.writes.Lock()
	return e.writes.Unlock
}

// visibleProject loads id and hides it as not found when the actor lacks access.
func (e Engine) visibleProject(actor domain.Actor, id string) (domain.Project, error) {
	p, err := e.Store.Project(id)
	if err != nil {
		return domain.Project{}, err
	}
	if !p.HasAccess(actor.ID) {
		return domain.Project{}, store.ErrNotFound
	}
	return p, nil
}

// mutateProject runs fn on a visible project after authorizing action, then stores the result.
func (e Engine) mutateProject(op, projectID string, action access.Action, fn func(actor domain.Actor, p *domain.Project) error) (p domain.Project, err error) {
	defer func() { e.record(op, err) }()
	actor, err := e.actor()
	if err != nil {
		return domain.Project{}, err
	}
	unlock := e.lock()
	defer unlock()
	p, err = e.visibleProject(actor, projectID)
	if err != nil {
		return domain.Project{}, err
	}
	if err := e.authorize(actor, action); err != nil {
		return domain.Project{}, err
	}
	if err := fn(actor, &p); err != nil {
		return domain.Project{}, err
	}
	if err := e.Store.UpdateProject(p); err != nil {
		return domain.Project{}, err
	}
	return e.visibleProject(actor, p.ID)
}

// visibleActivity loads id and hides it when its project is out of the actor's reach.
func (e Engine) visibleActivity(actor domain.Actor, id string) (domain.Activity, error) {
	a, err := e.Store.Activity(id)
	if err != nil {
		return domain.Activity{}, err
	}
	if a.ProjectID == "" {
		return a, nil
	}
	if _, err := e.visibleProject(actor, a.ProjectID); err != nil {
		return domain.Activity{}, store.ErrNotFound
	}
	return a, nil
}

// mutateActivity runs fn on a visible activity after authorizing action, then stores the result.
func (e Engine) mutateActivity(op, id string, action access.Action, fn func(actor domain.Actor, a *domain.Activity) error) (a domain.Activity, err error) {
	defer func() { e.record(op, err) }()
	actor, err := e.actor()
	if err != nil {
		return domain.Activity{}, err
	}
	unlock := e.lock()
	defer unlock()
	a, err = e.visibleActivity(actor, id)
	if err != nil {
		return domain.Activity{}, err
	}
	if err := e.authorize(actor, action); err != nil {
		return domain.Activity{}, err
	}
	if err := fn(actor, &a); err != nil {
		return domain.Activity{}, err
	}
	if err := e.Store.UpdateActivity(a); err != nil {
		return domain.Activity{}, err
	}
	return a, nil
}

// Ask forwards prompt to the assistant. The answer is always user-facing text.
func (e Engine) Ask(ctx context.Context, prompt string) (string, error) {
	if _, err := e.actor(); err != nil {
		return "", err
	}
	return e.Assistant.Ask(ctx, prompt), nil
}
