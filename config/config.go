package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"github.com/yaoapp/blocks/engine"
	"github.com/yaoapp/blocks/helper"
	"github.com/yaoapp/blocks/json"
	"github.com/yaoapp/blocks/store"
	"github.com/yaoapp/blocks/variable"
	"github.com/yaoapp/kun/log"
)

var levels = map[string]log.Level{
	"trace": log.TraceLevel,
	"debug": log.DebugLevel,
	"info":  log.InfoLevel,
	"warn":  log.WarnLevel,
	"error": log.ErrorLevel,
	"fatal": log.FatalLevel,
}

// Default the default configuration
func Default() Config {
	return Config{
		Log: Log{Level: "info"},
		Engine: Engine{
			Policy:       string(engine.PolicyStop),
			ResolveDepth: 16,
			RepeatLimit:  1000,
			WhileLimit:   10000,
			ForeachLimit: 10000,
		},
		Task:     Task{Quota: 20, Workers: 8, Queue: 1024},
		Function: Function{MaxDepth: 16, MaxTime: 5000},
		Event:    Event{MaxDepth: 16},
		Stores: map[string]Store{
			"player":     {Driver: "memory"},
			"global":     {Driver: "memory"},
			"server":     {Driver: "memory"},
			"persistent": {Driver: "badger", Cache: 1024, Option: store.Option{"path": "./data/variables"}},
		},
	}
}

// Load read a configuration file (json, jsonc, yaml or toml) over the
// defaults. String values of the form $ENV.NAME are replaced by the
// environment; numeric and boolean variables keep their type.
func Load(file string) (Config, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return Config{}, err
	}
	return Parse(file, data)
}

// Parse a configuration document by the file extension
func Parse(file string, data []byte) (Config, error) {
	cfg := Default()

	var raw interface{}
	if err := json.ParseFile(file, data, &raw); err != nil {
		return cfg, fmt.Errorf("config %s: %w", file, err)
	}

	text, err := jsoniter.Marshal(env(raw))
	if err != nil {
		return cfg, fmt.Errorf("config %s: %w", file, err)
	}

	if err := jsoniter.Unmarshal(text, &cfg); err != nil {
		return cfg, fmt.Errorf("config %s: %w", file, err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", file, err)
	}
	return cfg, nil
}

// Validate check the names the configuration refers to
func (cfg Config) Validate() error {
	if _, err := engine.ParsePolicy(cfg.Engine.Policy); err != nil {
		return err
	}

	if _, has := levels[strings.ToLower(cfg.Log.Level)]; cfg.Log.Level != "" && !has {
		return fmt.Errorf("unknown log level %s", cfg.Log.Level)
	}

	for name, s := range cfg.Stores {
		scope, err := variable.ParseScope(name)
		if err != nil {
			return err
		}
		if scope == variable.Local {
			return fmt.Errorf("the local scope has no store")
		}
		if !supported(s.Driver) {
			return fmt.Errorf("the store driver %s does not support", s.Driver)
		}
	}
	return nil
}

// SetLogger apply the log setting. The returned closer releases the log file.
func (cfg Config) SetLogger() (func() error, error) {
	level, has := levels[strings.ToLower(cfg.Log.Level)]
	if !has {
		level = log.InfoLevel
	}
	if cfg.Debug {
		level = log.TraceLevel
	}
	log.SetLevel(level)

	if cfg.Log.File == "" {
		return func() error { return nil }, nil
	}

	file, err := os.OpenFile(cfg.Log.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, err
	}
	log.SetOutput(file)
	return func() error {
		log.SetOutput(os.Stdout)
		return file.Close()
	}, nil
}

func supported(driver string) bool {
	if driver == "" {
		return true
	}
	for _, name := range store.Drivers {
		if strings.EqualFold(name, driver) {
			return true
		}
	}
	return false
}

func env(v interface{}) interface{} {
	switch val := v.(type) {
	case map[string]interface{}:
		for key, item := range val {
			val[key] = env(item)
		}
		return val

	case map[interface{}]interface{}:
		m := make(map[string]interface{}, len(val))
		for key, item := range val {
			m[fmt.Sprintf("%v", key)] = env(item)
		}
		return m

	case []interface{}:
		for i, item := range val {
			val[i] = env(item)
		}
		return val

	case string:
		if !strings.HasPrefix(val, "$ENV.") {
			return val
		}
		s := helper.EnvString(val)
		if n, err := strconv.ParseFloat(s, 64); err == nil {
			return n
		}
		if b, err := strconv.ParseBool(s); err == nil {
			return b
		}
		return s
	}
	return v
}
