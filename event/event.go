package event

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/yaoapp/blocks/engine"
	"github.com/yaoapp/blocks/errs"
	"github.com/yaoapp/blocks/json"
	"github.com/yaoapp/blocks/task"
	"github.com/yaoapp/blocks/value"
	"github.com/yaoapp/kun/log"
	"github.com/yaoapp/kun/maps"
)

// New create a dispatcher. The coordinator runs asynchronous triggers and
// may be nil when only synchronous triggers are used.
func New(e *engine.Engine, c *task.Coordinator, option Option) *Dispatcher {
	if option.MaxDepth <= 0 {
		option.MaxDepth = 16
	}
	return &Dispatcher{
		engine:      e,
		coordinator: c,
		handlers:    map[string][]*Registration{},
		schemas:     map[string]*schema{},
		option:      option,
	}
}

// GlobalFilter accept every trigger
func GlobalFilter() Filter { return Filter{Kind: Global} }

// WorldFilter accept the triggers of one scope key
func WorldFilter(key string) Filter { return Filter{Kind: World, Key: key} }

// ActorFilter accept the triggers of one actor
func ActorFilter(id string) Filter { return Filter{Kind: Actor, Key: id} }

// ParseFilter parse a filter kind name, empty is global
func ParseFilter(name string) (FilterKind, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return Global, nil
	}
	for kind, n := range filterNames {
		if n == name {
			return kind, nil
		}
	}
	return Global, fmt.Errorf("unknown filter %s", name)
}

func (kind FilterKind) String() string {
	return filterNames[kind]
}

// Accepts reports whether a trigger by actorID in scopeKey reaches the handler
func (f Filter) Accepts(actorID string, scopeKey string) bool {
	switch f.Kind {
	case World:
		return f.Key == scopeKey
	case Actor:
		return actorID != "" && f.Key == actorID
	}
	return true
}

// RegisterHandler add a handler; handlers run by descending priority, then
// in registration order
func (d *Dispatcher) RegisterHandler(reg *Registration) (string, error) {
	if reg == nil || strings.TrimSpace(reg.Event) == "" {
		return "", errs.New(errs.Parameter, "event name is required")
	}
	if reg.Filter.Kind != Global && reg.Filter.Key == "" {
		return "", errs.New(errs.Parameter, "%s filter of %s needs a key", reg.Filter.Kind, reg.Event)
	}

	name := strings.ToLower(reg.Event)
	if reg.ID == "" {
		reg.ID = uuid.NewString()
	}

	d.mutex.Lock()
	defer d.mutex.Unlock()

	d.seq++
	reg.seq = d.seq
	reg.Event = name

	handlers := append(d.handlers[name], reg)
	sort.SliceStable(handlers, func(i, j int) bool {
		if handlers[i].Priority != handlers[j].Priority {
			return handlers[i].Priority > handlers[j].Priority
		}
		return handlers[i].seq < handlers[j].seq
	})
	d.handlers[name] = handlers

	log.Trace("[EVENT] %s handler %s registered (priority %d)", name, reg.ID, reg.Priority)
	return reg.ID, nil
}

// Unregister remove a handler by id
func (d *Dispatcher) Unregister(id string) bool {
	return d.remove(func(reg *Registration) bool { return reg.ID == id }) > 0
}

// UnregisterScript remove the handlers a script registered
func (d *Dispatcher) UnregisterScript(scriptID string) int {
	return d.remove(func(reg *Registration) bool { return reg.ScriptID == scriptID })
}

// UnregisterActor remove the handlers filtered on an actor
func (d *Dispatcher) UnregisterActor(id string) int {
	return d.remove(func(reg *Registration) bool {
		return reg.Filter.Kind == Actor && reg.Filter.Key == id
	})
}

func (d *Dispatcher) remove(match func(reg *Registration) bool) int {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	removed := 0
	for name, handlers := range d.handlers {
		kept := handlers[:0]
		for _, reg := range handlers {
			if match(reg) {
				removed++
				continue
			}
			kept = append(kept, reg)
		}
		if len(kept) == 0 {
			delete(d.handlers, name)
			continue
		}
		d.handlers[name] = kept
	}
	return removed
}

// Define declare the payload schema of an event, replacing the previous one
func (d *Dispatcher) Define(name string, s Schema) error {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return errs.New(errs.Parameter, "event name is required")
	}

	compiled := &schema{fields: s.Fields}
	if s.JSON != nil {
		validator, err := json.NewValidator(s.JSON)
		if err != nil {
			return errs.Wrap(errs.Parameter, err, "event %s schema", name)
		}
		compiled.validator = validator
	}

	d.mutex.Lock()
	d.schemas[name] = compiled
	d.mutex.Unlock()
	return nil
}

// Undefine drop the payload schema of an event
func (d *Dispatcher) Undefine(name string) {
	d.mutex.Lock()
	delete(d.schemas, strings.ToLower(name))
	d.mutex.Unlock()
}

// Validate check a payload against the schema of the event. The returned
// payload carries the fields converted to their declared types.
func (d *Dispatcher) Validate(name string, payload map[string]value.Value) (map[string]value.Value, error) {
	name = strings.ToLower(name)
	d.mutex.RLock()
	s, has := d.schemas[name]
	d.mutex.RUnlock()

	res := make(map[string]value.Value, len(payload))
	for key, v := range payload {
		res[key] = v
	}
	if !has {
		return res, nil
	}

	for _, field := range s.fields {
		v, ok := res[field.Name]
		if !ok || v.IsNull() {
			if field.Required {
				return nil, errs.New(errs.Validation, "event %s: field %s is required", name, field.Name)
			}
			continue
		}
		if field.Type == value.Null {
			continue
		}
		converted, err := value.Convert(v, field.Type)
		if err != nil {
			return nil, errs.Wrap(errs.Validation, err, "event %s: field %s expects %s", name, field.Name, field.Type)
		}
		res[field.Name] = converted
	}

	if s.validator != nil {
		if err := s.validator.Validate(plain(res)); err != nil {
			return nil, errs.Wrap(errs.Validation, err, "event %s", name)
		}
	}
	return res, nil
}

// Trigger run the handlers of an event synchronously, in priority order. A
// handler failure does not stop the handlers after it.
func (d *Dispatcher) Trigger(c context.Context, ev Event) ([]Outcome, error) {
	if ev.Depth > d.option.MaxDepth {
		return nil, errs.New(errs.Quota, "event %s: max trigger depth exceeded", ev.Name)
	}

	payload, err := d.Validate(ev.Name, ev.Payload)
	if err != nil {
		return nil, err
	}
	ev.Payload = payload

	handlers := d.matching(ev)
	outcomes := make([]Outcome, 0, len(handlers))
	for _, reg := range handlers {
		outcomes = append(outcomes, Outcome{
			Registration: reg.ID,
			ScriptID:     reg.ScriptID,
			Priority:     reg.Priority,
			Result:       d.run(c, reg, ev),
		})
	}

	log.Trace("[EVENT] %s triggered, %d handlers", strings.ToLower(ev.Name), len(outcomes))
	return outcomes, nil
}

// TriggerAsync validate the payload now and run the handlers later as a
// one-shot task of the actor
func (d *Dispatcher) TriggerAsync(ev Event) (*task.Handle, error) {
	if d.coordinator == nil {
		return nil, errs.New(errs.Parameter, "event %s: no task coordinator", ev.Name)
	}

	payload, err := d.Validate(ev.Name, ev.Payload)
	if err != nil {
		return nil, err
	}
	ev.Payload = payload

	owner := ""
	if ev.Actor != nil {
		owner = ev.Actor.ID()
	}

	return d.coordinator.Schedule(task.Request{
		Kind:     task.Async,
		Owner:    owner,
		ScriptID: ev.ScriptID,
		Fire: func(int) bool {
			if _, err := d.Trigger(context.Background(), ev); err != nil {
				log.Error("[EVENT] %s: %s", ev.Name, err.Error())
			}
			return false
		},
	})
}

// Handlers the registrations of an event in execution order
func (d *Dispatcher) Handlers(name string) []Info {
	d.mutex.RLock()
	defer d.mutex.RUnlock()

	handlers := d.handlers[strings.ToLower(name)]
	res := make([]Info, 0, len(handlers))
	for _, reg := range handlers {
		res = append(res, reg.Info())
	}
	return res
}

// Events the names having handlers
func (d *Dispatcher) Events() []string {
	d.mutex.RLock()
	defer d.mutex.RUnlock()

	names := make([]string, 0, len(d.handlers))
	for name := range d.handlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Info the summary of a registration
func (reg *Registration) Info() Info {
	return Info{
		ID:       reg.ID,
		Event:    reg.Event,
		Filter:   reg.Filter.Kind.String(),
		Key:      reg.Filter.Key,
		Priority: reg.Priority,
		ScriptID: reg.ScriptID,
	}
}

func (d *Dispatcher) matching(ev Event) []*Registration {
	actorID := ""
	if ev.Actor != nil {
		actorID = ev.Actor.ID()
	}

	d.mutex.RLock()
	defer d.mutex.RUnlock()

	res := []*Registration{}
	for _, reg := range d.handlers[strings.ToLower(ev.Name)] {
		if reg.Filter.Accepts(actorID, ev.Scope) {
			res = append(res, reg)
		}
	}
	return res
}

func (d *Dispatcher) run(c context.Context, reg *Registration, ev Event) engine.Result {
	ctx := d.engine.NewContext(engine.Invocation{
		Context:    c,
		Actor:      ev.Actor,
		ScriptID:   reg.ScriptID,
		Namespace:  reg.Namespace,
		Debug:      ev.Debug,
		EventDepth: ev.Depth,
		Data:       map[string]interface{}{"event": reg.Event, "registration": reg.ID},
		Locals:     Seed(reg.Event, ev.Payload),
	})
	defer ctx.Release()
	return engine.Settle(ctx, ctx.ExecuteBody(reg.Body))
}

// Seed the LOCAL variables of a handler: every payload field, nested map
// fields under dotted names, and the event name as "event"
func Seed(name string, payload map[string]value.Value) map[string]value.Value {
	locals := make(map[string]value.Value, len(payload)+1)
	for key, v := range payload {
		locals[key] = v
	}

	for key, v := range maps.MapStr(plain(payload)).Dot() {
		if !strings.Contains(key, ".") {
			continue
		}
		if _, has := locals[key]; !has {
			locals[key] = value.Of(v)
		}
	}

	locals["event"] = value.NewText(name)
	return locals
}

func plain(payload map[string]value.Value) map[string]interface{} {
	res := make(map[string]interface{}, len(payload))
	for key, v := range payload {
		res[key] = v.Interface()
	}
	return res
}
