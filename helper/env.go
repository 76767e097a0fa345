package helper

import (
	"fmt"
	"os"
	"strings"

	"github.com/yaoapp/kun/any"
)

// EnvString replace $ENV.xxx with the env, scalars are formatted
func EnvString(key interface{}, defaults ...string) string {
	k, ok := key.(string)
	if !ok && key != nil {
		k = fmt.Sprintf("%v", key)
	}
	if k == "" {
		if len(defaults) > 0 {
			return defaults[0]
		}
		return ""
	}

	if strings.HasPrefix(k, "$ENV.") {
		v := os.Getenv(strings.TrimPrefix(k, "$ENV."))
		if v == "" && len(defaults) > 0 {
			return defaults[0]
		}
		return v
	}
	return k
}

// EnvInt replace $ENV.xxx with the env and cast to the integer
func EnvInt(key interface{}, defaults ...int) int {
	if key == nil {
		if len(defaults) > 0 {
			return defaults[0]
		}
		return 0
	}

	if k, ok := key.(string); ok && strings.HasPrefix(k, "$ENV.") {
		v := os.Getenv(strings.TrimPrefix(k, "$ENV."))
		if v == "" {
			if len(defaults) > 0 {
				return defaults[0]
			}
			return 0
		}
		return any.Of(v).CInt()
	}

	v, ok := key.(int)
	if !ok {
		return any.Of(key).CInt()
	}
	return v
}

// EnvBool replace $ENV.xxx with the env and cast to the boolean
func EnvBool(key interface{}, defaults ...bool) bool {
	if key == nil {
		if len(defaults) > 0 {
			return defaults[0]
		}
		return false
	}

	if k, ok := key.(string); ok && strings.HasPrefix(k, "$ENV.") {
		v := os.Getenv(strings.TrimPrefix(k, "$ENV."))
		if v == "" {
			if len(defaults) > 0 {
				return defaults[0]
			}
			return false
		}
		return any.Of(v).CBool()
	}

	v, ok := key.(bool)
	if !ok {
		return any.Of(key).CBool()
	}
	return v
}
