package loader

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/fsnotify/fsnotify"
	"github.com/yaoapp/blocks/json"
	"github.com/yaoapp/kun/log"
)

// Watch events passed to the handler
const (
	Create = "CREATE"
	Write  = "WRITE"
	Remove = "REMOVE"
	Rename = "RENAME"
)

// Watch call the handler for every change of a script file under root until
// interrupt receives a code. New directories are watched as they appear.
func Watch(root string, handler func(event string, file string), interrupt chan uint8) error {
	root, err := filepath.Abs(root)
	if err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	err = filepath.Walk(root, func(file string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			return nil
		}
		if file != root && strings.HasPrefix(info.Name(), ".") {
			return filepath.SkipDir
		}
		log.Info("[Watch] Watching: %s", file)
		return watcher.Add(file)
	})
	if err != nil {
		return err
	}

	shutdown := make(chan bool, 1)
	go func() {
		for {
			select {
			case <-shutdown:
				log.Info("[Watch] handler exit")
				return

			case event, ok := <-watcher.Events:
				if !ok {
					interrupt <- 1
					return
				}
				dispatch(watcher, root, event, handler)

			case err, ok := <-watcher.Errors:
				if !ok {
					interrupt <- 2
					return
				}
				log.Error("[Watch] Error: %s", err.Error())
			}
		}
	}()

	code := <-interrupt
	shutdown <- true
	log.Info("[Watch] Exit(%d)", code)
	fmt.Fprintln(color.Output, color.YellowString("[Watch] Exit(%d)", code))
	return nil
}

func dispatch(watcher *fsnotify.Watcher, root string, event fsnotify.Event, handler func(event string, file string)) {
	name := strings.TrimPrefix(event.Name, root)

	if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
		if event.Has(fsnotify.Create) {
			log.Info("[Watch] Watching: %s", name)
			watcher.Add(event.Name)
		}
		return
	}

	if !json.Supported(event.Name) {
		log.Trace("[Watch] IGNORE %s", name)
		return
	}

	for _, op := range []fsnotify.Op{fsnotify.Create, fsnotify.Write, fsnotify.Remove, fsnotify.Rename} {
		if event.Has(op) {
			log.Info("[Watch] %s %s", op.String(), name)
			handler(op.String(), event.Name)
		}
	}
}
