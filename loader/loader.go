package loader

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/yaoapp/blocks/block"
	"github.com/yaoapp/blocks/json"
	"github.com/yaoapp/kun/log"
)

// Parse compile a script document. The name selects the format by its
// extension and is the default script id.
func Parse(name string, data []byte) (*block.Script, error) {
	def := block.ScriptDefinition{}
	if err := json.ParseFile(name, data, &def); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}

	if def.ID == "" && def.Name == "" {
		def.ID = ID(name)
	}

	script, err := block.Compile(def)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	script.File = name
	return script, nil
}

// LoadFile read and compile a script file, the default id is the file name
func LoadFile(file string) (*block.Script, error) {
	return load(file, filepath.Base(file))
}

// LoadIn read and compile a script file under root, the default id is the
// path relative to root
func LoadIn(root string, file string) (*block.Script, error) {
	return load(file, rel(root, file))
}

func load(file string, name string) (*block.Script, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, err
	}
	script, err := Parse(name, data)
	if err != nil {
		return nil, err
	}
	script.File = file
	return script, nil
}

// LoadDir compile every script under root, sorted by path. The default id
// is the path relative to root. A file that fails to compile is logged and
// skipped; the first error is returned with the scripts that did load.
func LoadDir(root string) ([]*block.Script, error) {
	files, err := Files(root)
	if err != nil {
		return nil, err
	}

	var first error
	scripts := []*block.Script{}
	for _, file := range files {
		script, err := LoadIn(root, file)
		if err != nil {
			log.Error("[Loader] %s", err.Error())
			if first == nil {
				first = err
			}
			continue
		}
		scripts = append(scripts, script)
	}
	return scripts, first
}

// Files the script files under root, sorted
func Files(root string) ([]string, error) {
	files := []string{}
	err := filepath.Walk(root, func(file string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			if file != root && strings.HasPrefix(info.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if json.Supported(file) {
			files = append(files, file)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

// ID the script id of a path: the slash separated path without the
// extensions, "quests/intro.blk.yml" is "quests/intro"
func ID(file string) string {
	file = filepath.ToSlash(file)
	dir, base := "", file
	if i := strings.LastIndex(file, "/"); i >= 0 {
		dir, base = file[:i+1], file[i+1:]
	}
	if i := strings.Index(base, "."); i > 0 {
		base = base[:i]
	}
	return strings.TrimPrefix(dir+base, "/")
}

func rel(root, file string) string {
	r, err := filepath.Rel(root, file)
	if err != nil {
		return file
	}
	return r
}
