// Package identity tracks the current actor of a session and persists it.
package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"studyboard/internal/domain"
	"studyboard/internal/logging"
	"studyboard/internal/repo"
	"studyboard/internal/validation"
)

const MinPasswordLength = 3

var (
	ErrNameTaken    = errors.New("name already in use")
	ErrWeakPassword = fmt.Errorf("password must have at least %d characters", MinPasswordLength)
)

// Persister stores the current actor under a session key.
type Persister interface {
	SaveSession(ctx context.Context, key string, actor domain.Actor) error
	LoadSession(ctx context.Context, key string) (domain.Actor, error)
	DeleteSession(ctx context.Context, key string) error
}

// Store holds at most one current actor per session.
type Store struct {
	mu        sync.RWMutex
	registry  *Registry
	persister Persister
	key       string
	current   *domain.Actor
	logger    logging.Logger
}

func NewStore(registry *Registry, persister Persister, sessionKey string, logger logging.Logger) *Store {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Store{registry: registry, persister: persister, key: sessionKey, logger: logger}
}

func (s *Store) Registry() *Registry {
	return s.registry
}

// Current returns the logged-in actor.
func (s *Store) Current() (domain.Actor, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return domain.Actor{}, false
	}
	return *s.current, true
}

// Login looks name up case-insensitively. Actors without a password accept any secret.
// A wrong name or secret returns false and leaves the session untouched.
func (s *Store) Login(ctx context.Context, name, secret string) (bool, error) {
	actor, ok := s.registry.ByName(strings.TrimSpace(name))
	if !ok || (actor.Password != "" && actor.Password != secret) {
		s.logger.Debugf("login rejected for %q", name)
		return false, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.persister.SaveSession(ctx, s.key, actor); err != nil {
		return false, fmt.Errorf("persist session: %w", err)
	}
	s.current = &actor
	s.logger.Infof("actor %s logged in", actor.ID)
	return true, nil
}

// Logout clears the current actor and the persisted session.
func (s *Store) Logout(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = nil
	if err := s.persister.DeleteSession(ctx, s.key); err != nil {
		return fmt.Errorf("erase session: %w", err)
	}
	return nil
}

// UpdateProfile renames the current actor and changes the avatar, in the session and in the registry.
func (s *Store) UpdateProfile(ctx context.Context, name, avatarURL string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return nil
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return validation.Required("name")
	}
	if s.registry.nameTaken(name, s.current.ID) {
		return ErrNameTaken
	}
	updated := *s.current
	updated.Name = name
	updated.AvatarURL = strings.TrimSpace(avatarURL)
	return s.apply(ctx, updated)
}

// UpdatePassword changes the current actor's secret, in the session and in the registry.
func (s *Store) UpdatePassword(ctx context.Context, secret string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return nil
	}
	if len([]rune(secret)) < MinPasswordLength {
		return ErrWeakPassword
	}
	updated := *s.current
	updated.Password = secret
	return s.apply(ctx, updated)
}

func (s *Store) apply(ctx context.Context, updated domain.Actor) error {
	if err := s.persister.SaveSession(ctx, s.key, updated); err != nil {
		return fmt.Errorf("persist session: %w", err)
	}
	if !s.registry.update(updated) {
		s.logger.Warnf("actor %s missing from registry; session updated only", updated.ID)
	}
	s.current = &updated
	return nil
}

// Restore loads a persisted session verbatim, without checking it against the registry.
func (s *Store) Restore(ctx context.Context) (bool, error) {
	actor, err := s.persister.LoadSession(ctx, s.key)
	if errors.Is(err, repo.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("load session: %w", err)
	}
	s.mu.Lock()
	s.current = &actor
	s.mu.Unlock()
	s.logger.Infof("restored session for actor %s", actor.ID)
	return true, nil
}
