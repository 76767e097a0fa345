package config

import (
	"github.com/yaoapp/blocks/schedule"
	"github.com/yaoapp/blocks/store"
)

// Config the runtime configuration
type Config struct {
	Debug     bool                 `json:"debug,omitempty"`
	Log       Log                  `json:"log"`
	Engine    Engine               `json:"engine"`
	Task      Task                 `json:"task"`
	Function  Function             `json:"function"`
	Event     Event                `json:"event"`
	Stores    map[string]Store     `json:"stores"`
	Scripts   string               `json:"scripts,omitempty"`
	Watch     bool                 `json:"watch,omitempty"`
	Schedules []*schedule.Schedule `json:"schedules,omitempty"`
}

// Log the log setting
type Log struct {
	Level string `json:"level"`
	File  string `json:"file,omitempty"`
}

// Engine the interpreter limits
type Engine struct {
	Policy       string `json:"policy"`
	ResolveDepth int    `json:"resolveDepth"`
	RepeatLimit  int    `json:"repeatLimit"`
	WhileLimit   int    `json:"whileLimit"`
	ForeachLimit int    `json:"foreachLimit"`
}

// Task the async task coordinator setting
type Task struct {
	Quota   int `json:"quota"`
	Workers int `json:"workers"`
	Queue   int `json:"queue"`
}

// Function the default function limits, MaxTime in milliseconds
type Function struct {
	MaxDepth int `json:"maxDepth"`
	MaxTime  int `json:"maxTime"`
}

// Event the dispatcher setting
type Event struct {
	MaxDepth int `json:"maxDepth"`
}

// Store the backend of a variable scope. Cache sizes an LRU read cache in
// front of the driver, 0 for none.
type Store struct {
	Driver string       `json:"driver"`
	Cache  int          `json:"cache,omitempty"`
	Option store.Option `json:"option,omitempty"`
}
