package blocks

import (
	"sync"

	"github.com/yaoapp/blocks/actor"
	"github.com/yaoapp/blocks/block"
	"github.com/yaoapp/blocks/config"
	"github.com/yaoapp/blocks/engine"
	"github.com/yaoapp/blocks/event"
	"github.com/yaoapp/blocks/function"
	"github.com/yaoapp/blocks/schedule"
	"github.com/yaoapp/blocks/task"
	"github.com/yaoapp/blocks/variable"
)

// Runtime wires the interpreter, the variable stores, the task coordinator,
// the function registry, the event dispatcher and the scheduler
type Runtime struct {
	config    config.Config
	vars      *variable.Store
	engine    *engine.Engine
	actors    *actor.Registry
	tasks     *task.Coordinator
	functions *function.Registry
	events    *event.Dispatcher
	scheduler *schedule.Scheduler
	scripts   map[string]*block.Script
	closeLog  func() error
	interrupt chan uint8
	closed    bool
	mutex     sync.RWMutex
}

// Option the host hooks of a runtime
type Option struct {
	// Executor runs task fires on the host main step, task.Inline by default
	Executor task.Executor
}

// ScriptInfo a loaded script
type ScriptInfo struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Namespace string `json:"namespace,omitempty"`
	File      string `json:"file,omitempty"`
	Roots     int    `json:"roots"`
	Blocks    int    `json:"blocks"`
}
