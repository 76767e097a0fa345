package actor

import (
	"fmt"
	"sync"

	"github.com/yaoapp/kun/log"
)

// Actor the entity a script runs on behalf of
type Actor interface {
	ID() string
	Name() string
	Online() bool
	SendMessage(message string) error
}

// Registry the online actors
type Registry struct {
	actors    map[string]Actor
	listeners []func(id string)
	mutex     sync.RWMutex
}

// NewRegistry create an actor registry
func NewRegistry() *Registry {
	return &Registry{actors: map[string]Actor{}}
}

// Join register an actor
func (r *Registry) Join(a Actor) error {
	if a == nil || a.ID() == "" {
		return fmt.Errorf("actor id is required")
	}
	r.mutex.Lock()
	r.actors[a.ID()] = a
	r.mutex.Unlock()
	log.Trace("[ACTOR] %s joined", a.ID())
	return nil
}

// Leave remove an actor and notify the leave listeners
func (r *Registry) Leave(id string) bool {
	r.mutex.Lock()
	_, has := r.actors[id]
	delete(r.actors, id)
	listeners := append([]func(string){}, r.listeners...)
	r.mutex.Unlock()

	if !has {
		return false
	}

	log.Trace("[ACTOR] %s left", id)
	for _, fn := range listeners {
		fn(id)
	}
	return true
}

// OnLeave add a leave listener
func (r *Registry) OnLeave(fn func(id string)) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.listeners = append(r.listeners, fn)
}

// Get an actor by id
func (r *Registry) Get(id string) (Actor, bool) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	a, has := r.actors[id]
	return a, has
}

// Online check if the actor is registered and connected, the empty id is the
// actor-less owner and always online
func (r *Registry) Online(id string) bool {
	if id == "" {
		return true
	}
	a, has := r.Get(id)
	return has && a.Online()
}

// List the ids of the registered actors
func (r *Registry) List() []string {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	ids := make([]string, 0, len(r.actors))
	for id := range r.actors {
		ids = append(ids, id)
	}
	return ids
}
