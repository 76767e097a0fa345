package blocks

import (
	"context"
	"fmt"
	"time"

	"github.com/yaoapp/blocks/actor"
	"github.com/yaoapp/blocks/block"
	"github.com/yaoapp/blocks/config"
	"github.com/yaoapp/blocks/engine"
	"github.com/yaoapp/blocks/event"
	"github.com/yaoapp/blocks/function"
	"github.com/yaoapp/blocks/json"
	"github.com/yaoapp/blocks/schedule"
	"github.com/yaoapp/blocks/task"
	"github.com/yaoapp/blocks/value"
	"github.com/yaoapp/blocks/variable"
	"github.com/yaoapp/kun/log"
)

// New create a runtime from a configuration: opens the stores, starts the
// task workers, registers the configured schedules and loads the script
// directory. The scheduler starts with Start.
func New(cfg config.Config, options ...Option) (*Runtime, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	option := Option{}
	if len(options) > 0 {
		option = options[0]
	}

	closeLog, err := cfg.SetLogger()
	if err != nil {
		return nil, err
	}

	stores, err := OpenStores(cfg)
	if err != nil {
		closeLog()
		return nil, err
	}

	policy, _ := engine.ParsePolicy(cfg.Engine.Policy)
	r := &Runtime{
		config:   cfg,
		vars:     variable.New(stores),
		actors:   actor.NewRegistry(),
		scripts:  map[string]*block.Script{},
		closeLog: closeLog,
	}

	r.engine = engine.New(r.vars, engine.Option{
		Policy:       policy,
		ResolveDepth: cfg.Engine.ResolveDepth,
		RepeatLimit:  cfg.Engine.RepeatLimit,
		WhileLimit:   cfg.Engine.WhileLimit,
		ForeachLimit: cfg.Engine.ForeachLimit,
	})

	r.tasks = task.New(task.Option{
		Quota:          cfg.Task.Quota,
		WorkerNums:     cfg.Task.Workers,
		JobQueueLength: cfg.Task.Queue,
		Executor:       option.Executor,
		Online:         r.actors.Online,
	})

	r.functions = function.New(function.Option{
		MaxRecursionDepth: cfg.Function.MaxDepth,
		MaxExecutionTime:  time.Duration(cfg.Function.MaxTime) * time.Millisecond,
	})

	r.events = event.New(r.engine, r.tasks, event.Option{MaxDepth: cfg.Event.MaxDepth})
	r.scheduler = schedule.New(r.events)

	task.Register(r.engine, r.tasks)
	function.Register(r.engine, r.functions)
	event.Register(r.engine, r.events)
	schedule.Register(r.engine, r.scheduler)
	json.Register(r.engine)

	r.actors.OnLeave(r.release)
	r.tasks.Start()

	for _, sch := range cfg.Schedules {
		if err := r.scheduler.Add(sch); err != nil {
			r.Close()
			return nil, err
		}
	}

	if cfg.Scripts != "" {
		loaded, err := r.LoadDir(cfg.Scripts)
		if err != nil {
			log.Error("[Runtime] %s: %d scripts loaded, %s", cfg.Scripts, len(loaded), err.Error())
		}
	}
	return r, nil
}

// Start the scheduler, and the script watcher when the configuration asks
// for it
func (r *Runtime) Start() {
	r.scheduler.Start()
	if r.config.Watch && r.config.Scripts != "" {
		r.mutex.Lock()
		if r.interrupt == nil {
			r.interrupt = make(chan uint8, 1)
			go func(interrupt chan uint8) {
				if err := r.Watch(r.config.Scripts, interrupt); err != nil {
					log.Error("[Runtime] watch %s: %s", r.config.Scripts, err.Error())
				}
			}(r.interrupt)
		}
		r.mutex.Unlock()
	}
	log.Info("[Runtime] started, %d scripts", len(r.Scripts()))
}

// Close stop the scheduler, cancel every task and close the stores
func (r *Runtime) Close() error {
	r.mutex.Lock()
	if r.closed {
		r.mutex.Unlock()
		return nil
	}
	r.closed = true
	if r.interrupt != nil {
		r.interrupt <- 0
	}
	r.mutex.Unlock()

	r.scheduler.Stop()
	r.tasks.Shutdown()

	err := r.vars.Close()
	if e := r.closeLog(); err == nil {
		err = e
	}
	log.Info("[Runtime] closed")
	return err
}

// Join register an online actor
func (r *Runtime) Join(a actor.Actor) error {
	return r.actors.Join(a)
}

// Leave remove an actor: its tasks are cancelled, its PLAYER variables
// cleared and its functions and actor-filtered handlers dropped
func (r *Runtime) Leave(id string) bool {
	return r.actors.Leave(id)
}

func (r *Runtime) release(id string) {
	tasks := r.tasks.CancelAll(id)
	r.vars.Release(variable.Player, id)
	functions := r.functions.UnregisterOwner(id)
	handlers := r.events.UnregisterActor(id)
	log.Trace("[Runtime] %s released: %d tasks, %d functions, %d handlers", id, tasks, functions, handlers)
}

// Execute run a chain as a new invocation of the actor, nil for the server
func (r *Runtime) Execute(start *block.Block, a actor.Actor) engine.Result {
	return r.engine.Run(start, engine.Invocation{Actor: a, Debug: r.config.Debug})
}

// Trigger run the handlers of an event now
func (r *Runtime) Trigger(c context.Context, name string, payload map[string]value.Value, a actor.Actor, scopeKey string) ([]event.Outcome, error) {
	return r.events.Trigger(c, event.Event{Name: name, Payload: payload, Actor: a, Scope: scopeKey, Debug: r.config.Debug})
}

// TriggerAsync run the handlers of an event as a task of the actor
func (r *Runtime) TriggerAsync(name string, payload map[string]value.Value, a actor.Actor, scopeKey string) (*task.Handle, error) {
	return r.events.TriggerAsync(event.Event{Name: name, Payload: payload, Actor: a, Scope: scopeKey, Debug: r.config.Debug})
}

// Call a function for the actor in a namespace. A function that returns a
// value comes back as Terminated with the value.
func (r *Runtime) Call(c context.Context, name string, a actor.Actor, namespace string, args function.Arguments) engine.Result {
	ctx := r.engine.NewContext(engine.Invocation{Context: c, Actor: a, Namespace: namespace, Debug: r.config.Debug})
	defer ctx.Release()
	return r.functions.Call(ctx, name, args)
}

// Engine the interpreter
func (r *Runtime) Engine() *engine.Engine { return r.engine }

// Vars the variable store
func (r *Runtime) Vars() *variable.Store { return r.vars }

// Actors the actor registry
func (r *Runtime) Actors() *actor.Registry { return r.actors }

// Tasks the task coordinator
func (r *Runtime) Tasks() *task.Coordinator { return r.tasks }

// Functions the function registry
func (r *Runtime) Functions() *function.Registry { return r.functions }

// Events the event dispatcher
func (r *Runtime) Events() *event.Dispatcher { return r.events }

// Scheduler the cron scheduler
func (r *Runtime) Scheduler() *schedule.Scheduler { return r.scheduler }

// Register a block handler
func (r *Runtime) Register(kind string, handler engine.Handler) {
	r.engine.Register(kind, handler)
}

func (r *Runtime) check() error {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	if r.closed {
		return fmt.Errorf("runtime is closed")
	}
	return nil
}
