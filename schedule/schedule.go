package schedule

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/robfig/cron/v3"
	"github.com/yaoapp/blocks/event"
	"github.com/yaoapp/blocks/helper"
	"github.com/yaoapp/blocks/json"
	"github.com/yaoapp/blocks/value"
	"github.com/yaoapp/kun/log"
)

var parser = cron.NewParser(cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// New create a scheduler
func New(d *event.Dispatcher) *Scheduler {
	return &Scheduler{
		cron:       cron.New(cron.WithParser(parser)),
		dispatcher: d,
		schedules:  map[string]*Schedule{},
	}
}

// Load read a schedule file (json, jsonc, yaml or toml). The name defaults
// to the file name.
func Load(file string) (*Schedule, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, err
	}
	return Parse(file, data)
}

// Parse a schedule definition by the file extension
func Parse(file string, data []byte) (*Schedule, error) {
	sch := &Schedule{}
	if err := json.ParseFile(file, data, sch); err != nil {
		return nil, fmt.Errorf("schedule %s: %w", file, err)
	}
	if sch.Name == "" {
		sch.Name = name(file)
	}
	return sch, nil
}

// Add register a schedule, replacing one of the same name. Disabled
// schedules are registered but never fire until enabled.
func (s *Scheduler) Add(sch *Schedule) error {
	if sch == nil || sch.Name == "" {
		return fmt.Errorf("schedule name is required")
	}
	if sch.Event == "" {
		return fmt.Errorf("schedule %s: event is required", sch.Name)
	}

	if _, err := parser.Parse(sch.Spec); err != nil {
		return fmt.Errorf("schedule %s: %w", sch.Name, err)
	}

	sch.Payload = envPayload(sch.Payload)
	sch.enabled = !sch.Disabled

	s.Remove(sch.Name)

	s.mutex.Lock()
	defer s.mutex.Unlock()

	id, err := s.cron.AddFunc(sch.Spec, func() { s.fire(sch.Name) })
	if err != nil {
		return fmt.Errorf("schedule %s: %w", sch.Name, err)
	}
	sch.id = id
	s.schedules[sch.Name] = sch
	log.Trace("[Schedule] %s added (%s -> %s)", sch.Name, sch.Spec, sch.Event)
	return nil
}

// Remove drop a schedule
func (s *Scheduler) Remove(name string) bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	sch, has := s.schedules[name]
	if !has {
		return false
	}
	s.cron.Remove(sch.id)
	delete(s.schedules, name)
	return true
}

// Enable let a schedule fire
func (s *Scheduler) Enable(name string) error {
	return s.toggle(name, true)
}

// Disable keep a schedule from firing
func (s *Scheduler) Disable(name string) error {
	return s.toggle(name, false)
}

func (s *Scheduler) toggle(name string, enabled bool) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	sch, has := s.schedules[name]
	if !has {
		return fmt.Errorf("schedule %s does not load", name)
	}
	sch.enabled = enabled
	return nil
}

// Start run the cron loop
func (s *Scheduler) Start() {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if s.running {
		return
	}
	s.running = true
	s.cron.Start()
}

// Stop the cron loop and wait for running fires
func (s *Scheduler) Stop() {
	s.mutex.Lock()
	if !s.running {
		s.mutex.Unlock()
		return
	}
	s.running = false
	s.mutex.Unlock()
	<-s.cron.Stop().Done()
}

// Fire trigger the event of a schedule now
func (s *Scheduler) Fire(name string) error {
	s.mutex.RLock()
	sch, has := s.schedules[name]
	s.mutex.RUnlock()
	if !has {
		return fmt.Errorf("schedule %s does not load", name)
	}

	payload := map[string]value.Value{}
	for key, v := range sch.Payload {
		payload[key] = value.Of(v)
	}

	_, err := s.dispatcher.TriggerAsync(event.Event{
		Name:    sch.Event,
		Payload: payload,
		Scope:   sch.Scope,
	})
	return err
}

// List the schedules sorted by name
func (s *Scheduler) List() []Info {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	res := make([]Info, 0, len(s.schedules))
	for _, sch := range s.schedules {
		info := Info{Name: sch.Name, Spec: sch.Spec, Event: sch.Event, Enabled: sch.enabled}
		if next := s.cron.Entry(sch.id).Next; !next.IsZero() {
			info.Next = next.Unix()
		}
		res = append(res, info)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].Name < res[j].Name })
	return res
}

func (s *Scheduler) fire(name string) {
	s.mutex.RLock()
	sch, has := s.schedules[name]
	enabled := has && sch.enabled
	s.mutex.RUnlock()
	if !enabled {
		return
	}

	if err := s.Fire(name); err != nil {
		log.Error("[Schedule] %s %s %s", name, sch.Event, err.Error())
	}
}

func envPayload(payload map[string]interface{}) map[string]interface{} {
	res := make(map[string]interface{}, len(payload))
	for key, v := range payload {
		if text, ok := v.(string); ok {
			res[key] = helper.EnvString(text)
			continue
		}
		res[key] = v
	}
	return res
}

func name(file string) string {
	base := file
	if i := strings.LastIndexAny(base, `/\`); i >= 0 {
		base = base[i+1:]
	}
	if i := strings.Index(base, "."); i > 0 {
		base = base[:i]
	}
	return base
}
