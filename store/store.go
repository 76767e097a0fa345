package store

import (
	"fmt"
	"strings"

	"github.com/yaoapp/blocks/helper"
	"github.com/yaoapp/blocks/store/badger"
	"github.com/yaoapp/blocks/store/buntdb"
	"github.com/yaoapp/blocks/store/lru"
	"github.com/yaoapp/blocks/store/memory"
	"github.com/yaoapp/blocks/store/mongo"
	"github.com/yaoapp/blocks/store/redis"
)

// New create a store via the driver name
func New(driver string, option Option) (Store, error) {
	if option == nil {
		option = Option{}
	}

	switch strings.ToLower(driver) {
	case "", "memory":
		return memory.New(), nil

	case "lru":
		return lru.New(helper.EnvInt(option["size"], 10240))

	case "badger":
		path := helper.EnvString(option["path"])
		if path == "" {
			return nil, fmt.Errorf("store badger: option.path is required")
		}
		return badger.New(path)

	case "buntdb":
		return buntdb.New(helper.EnvString(option["path"], ":memory:"))

	case "redis":
		return redis.New(redis.Option{
			Host:    helper.EnvString(option["host"]),
			Port:    helper.EnvString(option["port"], "6379"),
			User:    helper.EnvString(option["user"]),
			Pass:    helper.EnvString(option["pass"]),
			DB:      helper.EnvInt(option["db"], 0),
			Timeout: helper.EnvInt(option["timeout"], 5),
			Prefix:  helper.EnvString(option["prefix"], "blocks:"),
		})

	case "mongo":
		return mongo.New(mongo.Option{
			URI:        helper.EnvString(option["uri"]),
			Database:   helper.EnvString(option["database"], "blocks"),
			Collection: helper.EnvString(option["collection"], "variables"),
			Timeout:    helper.EnvInt(option["timeout"], 5),
		})
	}

	return nil, fmt.Errorf("the store driver %s does not support", driver)
}
