package blocks

import (
	"fmt"
	"path/filepath"
	"sort"

	"github.com/yaoapp/blocks/block"
	"github.com/yaoapp/blocks/engine"
	"github.com/yaoapp/blocks/loader"
	"github.com/yaoapp/kun/log"
)

// Load run the roots of a script so its functions and handlers register. A
// script with the same id is unloaded first. A failing root unloads the
// script again.
func (r *Runtime) Load(script *block.Script) error {
	if err := r.check(); err != nil {
		return err
	}

	if err := script.Validate(); err != nil {
		return err
	}

	r.mutex.RLock()
	_, has := r.scripts[script.ID]
	r.mutex.RUnlock()
	if has {
		r.Unload(script.ID)
	}

	r.mutex.Lock()
	r.scripts[script.ID] = script
	r.mutex.Unlock()

	for _, root := range script.Roots {
		res := r.engine.Run(root, engine.Invocation{
			ScriptID:  script.ID,
			Namespace: script.Namespace,
			Debug:     r.config.Debug,
		})
		if res.IsError() {
			r.Unload(script.ID)
			return fmt.Errorf("script %s: %w", script.ID, res.Err)
		}
	}

	log.Info("[Runtime] script %s loaded, %d blocks", script.ID, script.Count())
	return nil
}

// LoadFile compile and load a script file
func (r *Runtime) LoadFile(file string) (*block.Script, error) {
	script, err := loader.LoadFile(file)
	if err != nil {
		return nil, err
	}
	return script, r.Load(script)
}

// LoadDir compile and load every script under root. A script that fails is
// logged and skipped, the first error is returned.
func (r *Runtime) LoadDir(root string) ([]*block.Script, error) {
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}

	scripts, first := loader.LoadDir(root)
	loaded := []*block.Script{}
	for _, script := range scripts {
		if err := r.Load(script); err != nil {
			log.Error("[Runtime] %s", err.Error())
			if first == nil {
				first = err
			}
			continue
		}
		loaded = append(loaded, script)
	}
	return loaded, first
}

// Unload remove a script: its tasks are cancelled, its functions and
// handlers dropped
func (r *Runtime) Unload(id string) bool {
	r.mutex.Lock()
	_, has := r.scripts[id]
	delete(r.scripts, id)
	r.mutex.Unlock()
	if !has {
		return false
	}

	tasks := r.tasks.CancelScript(id)
	functions := r.functions.UnregisterScript(id)
	handlers := r.events.UnregisterScript(id)
	log.Info("[Runtime] script %s unloaded: %d tasks, %d functions, %d handlers", id, tasks, functions, handlers)
	return true
}

// Script get a loaded script
func (r *Runtime) Script(id string) (*block.Script, bool) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	script, has := r.scripts[id]
	return script, has
}

// Scripts the loaded scripts, sorted by id
func (r *Runtime) Scripts() []ScriptInfo {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	infos := []ScriptInfo{}
	for _, script := range r.scripts {
		infos = append(infos, ScriptInfo{
			ID:        script.ID,
			Name:      script.Name,
			Namespace: script.Namespace,
			File:      script.File,
			Roots:     len(script.Roots),
			Blocks:    script.Count(),
		})
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].ID < infos[j].ID })
	return infos
}

// Watch reload the scripts under root when they change, until interrupt
// receives a value
func (r *Runtime) Watch(root string, interrupt chan uint8) error {
	root, err := filepath.Abs(root)
	if err != nil {
		return err
	}

	return loader.Watch(root, func(event string, file string) {
		switch event {
		case loader.Create, loader.Write:
			script, err := loader.LoadIn(root, file)
			if err != nil {
				log.Error("[Runtime] reload %s: %s", file, err.Error())
				return
			}
			if err := r.Load(script); err != nil {
				log.Error("[Runtime] reload %s: %s", file, err.Error())
			}

		case loader.Remove, loader.Rename:
			r.unloadFile(file)
		}
	}, interrupt)
}

func (r *Runtime) unloadFile(file string) {
	ids := []string{}
	r.mutex.RLock()
	for id, script := range r.scripts {
		if script.File == file {
			ids = append(ids, id)
		}
	}
	r.mutex.RUnlock()

	for _, id := range ids {
		r.Unload(id)
	}
}
