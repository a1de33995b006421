package identity

import (
	"strings"
	"sync"

	"studyboard/internal/domain"
)

// Registry is the ordered set of known actors used for logins.
type Registry struct {
	mu     sync.RWMutex
	actors []domain.Actor
}

// NewRegistry copies actors into a new registry, preserving order.
func NewRegistry(actors []domain.Actor) *Registry {
	return &Registry{actors: append([]domain.Actor(nil), actors...)}
}

// ByName finds an actor by display name, ignoring case.
func (r *Registry) ByName(name string) (domain.Actor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, a := range r.actors {
		if strings.EqualFold(a.Name, name) {
			return a, true
		}
	}
	return domain.Actor{}, false
}

func (r *Registry) ByID(id string) (domain.Actor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, a := range r.actors {
		if a.ID == id {
			return a, true
		}
	}
	return domain.Actor{}, false
}

// All returns a snapshot of every actor in registry order.
func (r *Registry) All() []domain.Actor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]domain.Actor(nil), r.actors...)
}

// NamesFor maps actor ids to display names, skipping unknown ids.
func (r *Registry) NamesFor(ids []string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(ids))
	for _, id := range ids {
		for _, a := range r.actors {
			if a.ID == id {
				names = append(names, a.Name)
				break
			}
		}
	}
	return names
}

// update replaces the actor with the same id. It reports false when absent.
func (r *Registry) update(actor domain.Actor) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.actors {
		if r.actors[i].ID == actor.ID {
			r.actors[i] = actor
			return true
		}
	}
	return false
}

// nameTaken reports whether another actor already uses name.
func (r *Registry) nameTaken(name, exceptID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, a := range r.actors {
		if a.ID != exceptID && strings.EqualFold(a.Name, name) {
			return true
		}
	}
	return false
}
