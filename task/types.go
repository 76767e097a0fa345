package task

import (
	"context"
	"sync"
	"time"
)

// Kind the kind of an async request
type Kind int

const (
	// Async run once, now, off the main step
	Async Kind = iota + 1

	// Delay run once after a delay
	Delay

	// Loop run repeatedly at an interval
	Loop
)

var kinds = map[Kind]string{
	Async: "async",
	Delay: "delay",
	Loop:  "loop",
}

func (kind Kind) String() string {
	return kinds[kind]
}

const (
	// WAITING the handle waits for its next fire
	WAITING = iota + 1

	// RUNNING the handle is firing
	RUNNING

	// COMPLETED the handle ran out of fires
	COMPLETED

	// CANCELLED the handle was cancelled
	CANCELLED
)

var status = map[int]string{
	WAITING:   "WAITING",
	RUNNING:   "RUNNING",
	COMPLETED: "COMPLETED",
	CANCELLED: "CANCELLED",
}

// Fire the work of one fire, it returns false to stop a loop
type Fire func(iteration int) bool

// Request an async scheduling request
type Request struct {
	Kind     Kind
	Owner    string
	ScriptID string
	Delay    time.Duration
	Interval time.Duration
	Count    int // Loop fires, 0 is infinite
	Fire     Fire
	Done     func() // called once when the handle is removed
}

// Handle a live async task
type Handle struct {
	ID        string
	Owner     string
	ScriptID  string
	Kind      Kind
	Created   time.Time
	request   Request
	iteration int
	status    int
	timer     *time.Timer
	mutex     sync.Mutex
}

// Info a snapshot of a handle
type Info struct {
	ID        string    `json:"id"`
	Owner     string    `json:"owner"`
	ScriptID  string    `json:"script"`
	Kind      string    `json:"kind"`
	Status    string    `json:"status"`
	Iteration int       `json:"iteration"`
	Created   time.Time `json:"created"`
}

// Option the coordinator option
type Option struct {
	Name           string
	Quota          int
	WorkerNums     int
	JobQueueLength int
	Executor       Executor
	Online         func(owner string) bool
}

// Coordinator the async task coordinator
type Coordinator struct {
	name     string
	quota    int
	handles  map[string]*Handle
	owners   map[string]map[string]*Handle
	jobque   chan *Handle
	executor Executor
	online   func(owner string) bool
	workers  int
	started  bool
	closed   bool
	mutex    sync.Mutex
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
}

// Executor the host main step, every fire is handed to it
type Executor interface {
	Do(fn func())
}
