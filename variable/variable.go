package variable

import (
	"fmt"
	"hash/fnv"
	"strings"
	"sync"

	"github.com/yaoapp/blocks/errs"
	"github.com/yaoapp/blocks/store"
	"github.com/yaoapp/blocks/store/memory"
	"github.com/yaoapp/blocks/value"
	"github.com/yaoapp/kun/log"
)

// New create a variable store
func New(option Option) *Store {
	backends := map[Scope]store.Store{
		Player:     option.Player,
		Global:     option.Global,
		Server:     option.Server,
		Persistent: option.Persistent,
	}

	for scope, backend := range backends {
		if backend == nil {
			backends[scope] = memory.New()
		}
	}

	return &Store{
		locals:   &frames{data: map[string]map[string]value.Value{}},
		backends: backends,
	}
}

// Key qualify a reference for writing, unscoped names are written to LOCAL
func (s *Store) Key(frame Frame, ref Ref) (Key, error) {
	scope := ref.Scope
	if scope == 0 {
		scope = Local
	}
	if ref.Name == "" {
		return Key{}, errs.New(errs.Parameter, "variable name is required")
	}

	owner, err := ownerOf(frame, scope)
	if err != nil {
		return Key{}, err
	}
	return Key{Scope: scope, Owner: owner, Name: ref.Name}, nil
}

// Lookup find the current value of a reference, unscoped names are searched
// in Lookup order and the first defined one wins
func (s *Store) Lookup(frame Frame, ref Ref) (value.Value, Key, bool, error) {
	scopes := []Scope{ref.Scope}
	if ref.Scope == 0 {
		scopes = Lookup
	}

	for _, scope := range scopes {
		owner, err := ownerOf(frame, scope)
		if err != nil {
			if ref.Scope == 0 {
				continue
			}
			return value.Nil, Key{}, false, err
		}

		key := Key{Scope: scope, Owner: owner, Name: ref.Name}
		v, ok, err := s.Get(key)
		if err != nil {
			return value.Nil, key, false, err
		}
		if ok {
			return v, key, true, nil
		}
	}
	return value.Nil, Key{}, false, nil
}

// Get the value of a key
func (s *Store) Get(key Key) (value.Value, bool, error) {
	if key.Scope == Local {
		v, ok := s.locals.get(key.Owner, key.Name)
		return v, ok, nil
	}

	backend, err := s.backend(key.Scope)
	if err != nil {
		return value.Nil, false, err
	}

	raw, ok := backend.Get(key.String())
	if !ok {
		return value.Nil, false, nil
	}

	text, ok := raw.(string)
	if !ok {
		return value.Nil, false, fmt.Errorf("variable %s: unexpected stored type %T", key, raw)
	}

	v, err := value.Decode(text)
	if err != nil {
		return value.Nil, false, fmt.Errorf("variable %s: %w", key, err)
	}
	return v, true, nil
}

// Set the value of a key, last writer wins
func (s *Store) Set(key Key, v value.Value) error {
	mu := s.stripe(key)
	mu.Lock()
	defer mu.Unlock()
	return s.set(key, v)
}

// Delete a key
func (s *Store) Delete(key Key) error {
	mu := s.stripe(key)
	mu.Lock()
	defer mu.Unlock()
	return s.del(key)
}

// Update an atomic read-modify-write of one key
func (s *Store) Update(key Key, fn func(old value.Value, ok bool) (value.Value, error)) (value.Value, error) {
	mu := s.stripe(key)
	mu.Lock()
	defer mu.Unlock()

	old, ok, err := s.Get(key)
	if err != nil {
		return value.Nil, err
	}

	v, err := fn(old, ok)
	if err != nil {
		return value.Nil, err
	}
	return v, s.set(key, v)
}

// Add increment a numeric variable, an absent variable counts as 0
func (s *Store) Add(key Key, delta float64) (value.Value, error) {
	return s.Update(key, func(old value.Value, ok bool) (value.Value, error) {
		n, err := old.AsNumber()
		if err != nil {
			return value.Nil, errs.Wrap(errs.Parameter, err, "variable %s is not a number", key.Name)
		}
		return value.NewNumber(n + delta), nil
	})
}

// Snapshot copy every variable of one owner in one scope
func (s *Store) Snapshot(scope Scope, owner string) map[string]value.Value {
	if scope == Local {
		return s.locals.snapshot(owner)
	}

	res := map[string]value.Value{}
	backend, err := s.backend(scope)
	if err != nil {
		return res
	}

	prefix := Key{Scope: scope, Owner: owner}.String()
	for _, k := range backend.Keys() {
		if !strings.HasPrefix(k, prefix) {
			continue
		}
		name := strings.TrimPrefix(k, prefix)
		v, ok, err := s.Get(Key{Scope: scope, Owner: owner, Name: name})
		if err != nil {
			log.Warn("variable snapshot %s: %s", k, err.Error())
			continue
		}
		if ok {
			res[name] = v
		}
	}
	return res
}

// Fork copy the LOCAL variables of one invocation into another
func (s *Store) Fork(from string, to string) {
	for name, v := range s.locals.snapshot(from) {
		s.locals.set(to, name, v)
	}
}

// Release drop every variable of one owner in one scope
func (s *Store) Release(scope Scope, owner string) {
	if scope == Local {
		s.locals.release(owner)
		return
	}

	backend, err := s.backend(scope)
	if err != nil {
		return
	}

	prefix := Key{Scope: scope, Owner: owner}.String()
	for _, k := range backend.Keys() {
		if strings.HasPrefix(k, prefix) {
			backend.Del(k)
		}
	}
}

// Locals the number of live LOCAL frames
func (s *Store) Locals() int {
	s.locals.mu.RLock()
	defer s.locals.mu.RUnlock()
	return len(s.locals.data)
}

// Close every backend
func (s *Store) Close() error {
	var first error
	closed := map[store.Store]bool{}
	for scope, backend := range s.backends {
		if closed[backend] {
			continue
		}
		closed[backend] = true
		if err := backend.Close(); err != nil {
			log.Error("variable store close %s: %s", scope, err.Error())
			if first == nil {
				first = err
			}
		}
	}
	return first
}

func (s *Store) set(key Key, v value.Value) error {
	if key.Scope == Local {
		s.locals.set(key.Owner, key.Name, v)
		return nil
	}

	backend, err := s.backend(key.Scope)
	if err != nil {
		return err
	}

	text, err := value.Encode(v)
	if err != nil {
		return err
	}
	return backend.Set(key.String(), text, 0)
}

func (s *Store) del(key Key) error {
	if key.Scope == Local {
		s.locals.del(key.Owner, key.Name)
		return nil
	}

	backend, err := s.backend(key.Scope)
	if err != nil {
		return err
	}
	return backend.Del(key.String())
}

func (s *Store) backend(scope Scope) (store.Store, error) {
	backend, has := s.backends[scope]
	if !has {
		return nil, fmt.Errorf("unknown variable scope %d", int(scope))
	}
	return backend, nil
}

func (s *Store) stripe(key Key) *sync.Mutex {
	h := fnv.New32a()
	h.Write([]byte(key.String()))
	return &s.stripes[h.Sum32()%uint32(len(s.stripes))]
}

func ownerOf(frame Frame, scope Scope) (string, error) {
	switch scope {
	case Local:
		if frame.Invocation == "" {
			return "", errs.New(errs.Resolution, "local scope requires an invocation")
		}
		return frame.Invocation, nil
	case Player:
		if frame.Actor == "" {
			return "", errs.New(errs.Resolution, "player scope requires an actor")
		}
		return frame.Actor, nil
	case Global, Server, Persistent:
		return "", nil
	}
	return "", fmt.Errorf("unknown variable scope %d", int(scope))
}

func (f *frames) get(owner, name string) (value.Value, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	vars, has := f.data[owner]
	if !has {
		return value.Nil, false
	}
	v, has := vars[name]
	return v, has
}

func (f *frames) set(owner, name string, v value.Value) {
	f.mu.Lock()
	defer f.mu.Unlock()
	vars, has := f.data[owner]
	if !has {
		vars = map[string]value.Value{}
		f.data[owner] = vars
	}
	vars[name] = v
}

func (f *frames) del(owner, name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if vars, has := f.data[owner]; has {
		delete(vars, name)
	}
}

func (f *frames) snapshot(owner string) map[string]value.Value {
	f.mu.RLock()
	defer f.mu.RUnlock()
	res := map[string]value.Value{}
	for name, v := range f.data[owner] {
		res[name] = v
	}
	return res
}

func (f *frames) release(owner string) {
	f.mu.Lock()
	delete(f.data, owner)
	f.mu.Unlock()
}
