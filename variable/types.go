package variable

import (
	"fmt"
	"strings"
	"sync"

	"github.com/yaoapp/blocks/store"
	"github.com/yaoapp/blocks/value"
)

// Scope the variable scope
type Scope int

const (
	// Local per script invocation, released when the invocation ends
	Local Scope = iota + 1

	// Player per actor, cleared when the actor leaves
	Player

	// Global process-wide
	Global

	// Server process-wide, separate namespace from Global
	Server

	// Persistent survives restarts
	Persistent
)

// Lookup the order unscoped names are searched in
var Lookup = []Scope{Local, Player, Global, Server, Persistent}

var scopeNames = map[Scope]string{
	Local:      "local",
	Player:     "player",
	Global:     "global",
	Server:     "server",
	Persistent: "persistent",
}

// String the scope name
func (scope Scope) String() string {
	if name, has := scopeNames[scope]; has {
		return name
	}
	return "unscoped"
}

// ParseScope parse a scope name
func ParseScope(name string) (Scope, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for scope, n := range scopeNames {
		if n == name {
			return scope, nil
		}
	}
	return 0, fmt.Errorf("unknown variable scope %q", name)
}

// Ref a reference to a variable, Scope 0 searches every scope in Lookup order
type Ref struct {
	Scope Scope
	Name  string
}

// ParseRef parse "scope.name" or a bare "name"
func ParseRef(s string) Ref {
	s = strings.TrimSpace(s)
	if i := strings.Index(s, "."); i > 0 {
		if scope, err := ParseScope(s[:i]); err == nil {
			return Ref{Scope: scope, Name: s[i+1:]}
		}
	}
	return Ref{Name: s}
}

// String the reference text
func (ref Ref) String() string {
	if ref.Scope == 0 {
		return ref.Name
	}
	return ref.Scope.String() + "." + ref.Name
}

// Key a fully qualified variable: at most one value per key
type Key struct {
	Scope Scope
	Owner string
	Name  string
}

var ownerEscaper = strings.NewReplacer("%", "%25", ":", "%3A")

// String the storage key. The owner is escaped so that one owner's keys never
// share a prefix with another owner's.
func (key Key) String() string {
	return fmt.Sprintf("%s:%s:%s", key.Scope, ownerEscaper.Replace(key.Owner), key.Name)
}

// Frame the owners of the per-invocation and per-actor scopes
type Frame struct {
	Invocation string
	Actor      string
}

// Store the scoped variable store
type Store struct {
	locals   *frames
	backends map[Scope]store.Store
	stripes  [64]sync.Mutex
}

// Option the store backends, missing scopes use the memory driver
type Option struct {
	Player     store.Store
	Global     store.Store
	Server     store.Store
	Persistent store.Store
}

type frames struct {
	mu   sync.RWMutex
	data map[string]map[string]value.Value
}
