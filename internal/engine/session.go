package engine

import (
	"context"
	"sync"

	"studyboard/internal/domain"
	"studyboard/internal/metrics"
)

// selection remembers the activity the session has focused.
type selection struct {
	mu sync.Mutex
	id string
}

func (s *selection) get() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.id
}

func (s *selection) set(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.id = id
}

// Login authenticates name/secret. A rejected login returns ok=false with no error.
func (e Engine) Login(ctx context.Context, name, secret string) (domain.Actor, bool, error) {
	ok, err := e.Identity.Login(ctx, name, secret)
	if err != nil {
		e.Metrics.AddLogin(metrics.ResultError)
		return domain.Actor{}, false, err
	}
	if !ok {
		e.Metrics.AddLogin(metrics.ResultRejected)
		return domain.Actor{}, false, nil
	}
	e.Metrics.AddLogin(metrics.ResultOK)
	e.selection.set("")
	actor, _ := e.Identity.Current()
	return actor, true, nil
}

func (e Engine) Logout(ctx context.Context) error {
	e.selection.set("")
	return e.Identity.Logout(ctx)
}

// Restore resumes a persisted session, if any.
func (e Engine) Restore(ctx context.Context) (domain.Actor, bool, error) {
	ok, err := e.Identity.Restore(ctx)
	if err != nil || !ok {
		return domain.Actor{}, false, err
	}
	actor, _ := e.Identity.Current()
	return actor, true, nil
}

// Me returns the current actor.
func (e Engine) Me() (domain.Actor, error) {
	return e.actor()
}

func (e Engine) UpdateProfile(ctx context.Context, name, avatarURL string) (domain.Actor, error) {
	if _, err := e.actor(); err != nil {
		return domain.Actor{}, err
	}
	err := e.Identity.UpdateProfile(ctx, name, avatarURL)
	e.record("update-profile", err)
	if err != nil {
		return domain.Actor{}, err
	}
	return e.actor()
}

func (e Engine) UpdatePassword(ctx context.Context, secret string) error {
	if _, err := e.actor(); err != nil {
		return err
	}
	err := e.Identity.UpdatePassword(ctx, secret)
	e.record("update-password", err)
	return err
}

// Directory lists known actors without their secrets.
func (e Engine) Directory() ([]domain.Actor, error) {
	if _, err := e.actor(); err != nil {
		return nil, err
	}
	actors := e.Identity.Registry().All()
	for i := range actors {
		actors[i].Password = ""
	}
	return actors, nil
}
