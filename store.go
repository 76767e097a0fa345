package blocks

import (
	"fmt"
	"strings"

	"github.com/yaoapp/blocks/config"
	"github.com/yaoapp/blocks/store"
	"github.com/yaoapp/blocks/variable"
)

// OpenStore open the backend of one scope, wrapped by an LRU read cache when
// the setting has a cache size
func OpenStore(scope string, setting config.Store) (store.Store, error) {
	s, err := store.New(setting.Driver, setting.Option)
	if err != nil {
		return nil, fmt.Errorf("store %s: %w", scope, err)
	}

	if setting.Cache <= 0 {
		return s, nil
	}

	cached, err := store.NewCached(s, setting.Cache)
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("store %s: %w", scope, err)
	}
	return cached, nil
}

// OpenStores open the scope backends of a configuration, scopes without a
// setting stay in memory
func OpenStores(cfg config.Config) (variable.Option, error) {
	option := variable.Option{}
	opened := []store.Store{}

	targets := map[string]*store.Store{
		"player":     &option.Player,
		"global":     &option.Global,
		"server":     &option.Server,
		"persistent": &option.Persistent,
	}

	for scope, setting := range cfg.Stores {
		target, has := targets[strings.ToLower(scope)]
		if !has {
			continue
		}
		s, err := OpenStore(scope, setting)
		if err != nil {
			for _, o := range opened {
				o.Close()
			}
			return variable.Option{}, err
		}
		*target = s
		opened = append(opened, s)
	}
	return option, nil
}
