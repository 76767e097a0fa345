package schedule

import (
	"sync"

	"github.com/robfig/cron/v3"
	"github.com/yaoapp/blocks/event"
)

// Schedule a cron trigger of a named event
type Schedule struct {
	Name     string                 `json:"name" yaml:"name" toml:"name"`
	Spec     string                 `json:"schedule" yaml:"schedule" toml:"schedule"`
	Event    string                 `json:"event" yaml:"event" toml:"event"`
	Payload  map[string]interface{} `json:"payload,omitempty" yaml:"payload,omitempty" toml:"payload,omitempty"`
	Scope    string                 `json:"scope,omitempty" yaml:"scope,omitempty" toml:"scope,omitempty"`
	Disabled bool                   `json:"disabled,omitempty" yaml:"disabled,omitempty" toml:"disabled,omitempty"`
	id       cron.EntryID
	enabled  bool
}

// Scheduler fires the schedules through the event dispatcher
type Scheduler struct {
	cron       *cron.Cron
	dispatcher *event.Dispatcher
	schedules  map[string]*Schedule
	running    bool
	mutex      sync.RWMutex
}

// Info a schedule summary
type Info struct {
	Name    string `json:"name"`
	Spec    string `json:"schedule"`
	Event   string `json:"event"`
	Enabled bool   `json:"enabled"`
	Next    int64  `json:"next,omitempty"`
}
