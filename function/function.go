package function

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/yaoapp/blocks/engine"
	"github.com/yaoapp/blocks/errs"
	"github.com/yaoapp/blocks/value"
	"github.com/yaoapp/kun/log"
)

// New create a function registry
func New(option Option) *Registry {
	if option.MaxRecursionDepth <= 0 {
		option.MaxRecursionDepth = 16
	}
	if option.MaxExecutionTime <= 0 {
		option.MaxExecutionTime = 5 * time.Second
	}
	return &Registry{functions: map[key]*Definition{}, option: option}
}

// String the scope name
func (scope Scope) String() string {
	return scopeNames[scope]
}

// ParseScope parse a scope name, the empty name is World
func ParseScope(name string) (Scope, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return World, nil
	}
	for scope, n := range scopeNames {
		if n == name {
			return scope, nil
		}
	}
	return 0, fmt.Errorf("unknown function scope %q", name)
}

// Register a definition, false when the name is taken within its scope
func (r *Registry) Register(def *Definition) bool {
	if def.MaxRecursionDepth <= 0 {
		def.MaxRecursionDepth = r.option.MaxRecursionDepth
	}
	if def.MaxExecutionTime <= 0 {
		def.MaxExecutionTime = r.option.MaxExecutionTime
	}

	k := keyOf(def.Scope, def.Owner, def.Name)
	r.mutex.Lock()
	defer r.mutex.Unlock()
	if _, has := r.functions[k]; has {
		return false
	}
	r.functions[k] = def
	log.Trace("[FUNCTION] %s %s registered", def.Scope, def.Name)
	return true
}

// Find the definition a caller sees: its own PLAYER functions first, then
// WORLD functions of its namespace, then GLOBAL and SHARED
func (r *Registry) Find(name string, caller Caller) (*Definition, bool) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	candidates := []key{
		keyOf(Player, caller.Actor, name),
		keyOf(World, caller.Namespace, name),
		keyOf(Global, "", name),
		keyOf(Shared, "", name),
	}
	for i, k := range candidates {
		if i == 0 && caller.Actor == "" {
			continue
		}
		if def, has := r.functions[k]; has {
			return def, true
		}
	}
	return nil, false
}

// Unregister a definition
func (r *Registry) Unregister(scope Scope, owner string, name string) bool {
	k := keyOf(scope, owner, name)
	r.mutex.Lock()
	defer r.mutex.Unlock()
	if _, has := r.functions[k]; has {
		delete(r.functions, k)
		return true
	}
	return false
}

// UnregisterScript drop the definitions of a script
func (r *Registry) UnregisterScript(scriptID string) int {
	return r.unregisterWhere(func(def *Definition) bool { return def.ScriptID == scriptID })
}

// UnregisterOwner drop the PLAYER definitions of an actor
func (r *Registry) UnregisterOwner(actorID string) int {
	return r.unregisterWhere(func(def *Definition) bool { return def.Scope == Player && def.Owner == actorID })
}

// List the registered functions, sorted by scope and name
func (r *Registry) List() []Info {
	r.mutex.RLock()
	infos := make([]Info, 0, len(r.functions))
	for _, def := range r.functions {
		infos = append(infos, Info{
			Name:     def.Name,
			Scope:    def.Scope.String(),
			Owner:    def.Owner,
			Params:   len(def.Params),
			Enabled:  def.Enabled,
			ScriptID: def.ScriptID,
		})
	}
	r.mutex.RUnlock()

	sort.Slice(infos, func(i, j int) bool {
		if infos[i].Scope != infos[j].Scope {
			return infos[i].Scope < infos[j].Scope
		}
		return infos[i].Name < infos[j].Name
	})
	return infos
}

// Call a function: the body runs in an isolated context seeded with the bound
// parameters. A return value comes back as Terminated.
func (r *Registry) Call(ctx *engine.Context, name string, args Arguments) engine.Result {
	def, has := r.Find(name, Caller{Actor: ctx.ActorID(), Namespace: ctx.Namespace})
	if !has {
		return engine.Failf(errs.UnknownKind, "unknown function: %s", name)
	}

	if !def.Enabled {
		return engine.Failf(errs.Parameter, "function %s is disabled", name)
	}

	callee := ctx.Isolate()
	if callee.CallDepth > def.MaxRecursionDepth {
		return engine.Failf(errs.Quota, "max recursion depth exceeded")
	}

	bound, err := Bind(def, args)
	if err != nil {
		return engine.Fail(err)
	}

	c, cancel := context.WithTimeout(ctx.Context, def.MaxExecutionTime)
	defer cancel()
	callee.Context = c
	callee.ScriptID = def.ScriptID
	defer callee.Release()

	for pname, v := range bound {
		callee.SetLocal(pname, v)
	}

	res := engine.Settle(callee, callee.ExecuteBody(def.Body))
	if errors.Is(c.Err(), context.DeadlineExceeded) && !res.IsError() {
		return engine.Failf(errs.Timeout, "execution timeout")
	}
	return res
}

// Bind the arguments to the declared parameters: positional first, then
// named. Declared types are coerced, missing optional parameters take their
// default and missing required parameters fail.
func Bind(def *Definition, args Arguments) (map[string]value.Value, error) {
	if len(args.Positional) > len(def.Params) {
		return nil, errs.New(errs.Parameter, "%s takes %d arguments, %d given", def.Name, len(def.Params), len(args.Positional))
	}

	declared := map[string]bool{}
	for _, p := range def.Params {
		declared[p.Name] = true
	}
	for name := range args.Named {
		if !declared[name] {
			return nil, errs.New(errs.Parameter, "%s has no parameter %s", def.Name, name)
		}
	}

	bound := map[string]value.Value{}
	for i, p := range def.Params {
		v, given := value.Nil, false
		if i < len(args.Positional) {
			v, given = args.Positional[i], true
		}
		if named, has := args.Named[p.Name]; has {
			if given {
				return nil, errs.New(errs.Parameter, "%s: argument %s given twice", def.Name, p.Name)
			}
			v, given = named, true
		}

		if !given {
			if p.Required {
				return nil, errs.New(errs.Parameter, "%s: missing required argument %s", def.Name, p.Name)
			}
			v = p.Default
		}

		converted, err := value.Convert(v, p.Type)
		if err != nil {
			return nil, errs.Wrap(errs.Parameter, err, "%s: argument %s", def.Name, p.Name)
		}
		bound[p.Name] = converted
	}
	return bound, nil
}

func (r *Registry) unregisterWhere(match func(def *Definition) bool) int {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	n := 0
	for k, def := range r.functions {
		if match(def) {
			delete(r.functions, k)
			n++
		}
	}
	return n
}

func keyOf(scope Scope, owner string, name string) key {
	if scope != Player && scope != World {
		owner = ""
	}
	return key{scope: scope, owner: owner, name: strings.ToLower(name)}
}
