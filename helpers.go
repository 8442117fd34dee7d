package sdk

import (
	"fmt"
	"strings"

	sdkErrors "github.com/reglet-dev/zendext-sdk/domain/errors"
)

// Lookup returns the value at key. A dotted key such as "cache.ttl" descends
// into nested sections when no top-level key of that exact name exists.
func Lookup(config Config, key string) (interface{}, bool) {
	if v, ok := config[key]; ok {
		return v, true
	}

	var current interface{} = map[string]interface{}(config)
	for _, part := range strings.Split(key, ".") {
		section, ok := asSection(current)
		if !ok {
			return nil, false
		}
		if current, ok = section[part]; !ok {
			return nil, false
		}
	}
	return current, true
}

func asSection(v interface{}) (map[string]interface{}, bool) {
	switch m := v.(type) {
	case map[string]interface{}:
		return m, true
	case Config:
		return m, true
	default:
		return nil, false
	}
}

// GetString returns the value at key when it is a string.
func GetString(config Config, key string) (string, bool) {
	v, ok := Lookup(config, key)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// GetInt returns the value at key when it is numeric. YAML yields int,
// JSON yields float64; fractional floats are rejected.
func GetInt(config Config, key string) (int, bool) {
	v, ok := Lookup(config, key)
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case uint64:
		return int(n), true
	case float64:
		if n != float64(int(n)) {
			return 0, false
		}
		return int(n), true
	default:
		return 0, false
	}
}

// GetBool returns the value at key when it is a bool.
func GetBool(config Config, key string) (bool, bool) {
	v, ok := Lookup(config, key)
	if !ok {
		return false, false
	}
	b, ok := v.(bool)
	return b, ok
}

// GetStringSlice returns the value at key when it is a list of strings.
func GetStringSlice(config Config, key string) ([]string, bool) {
	v, ok := Lookup(config, key)
	if !ok {
		return nil, false
	}
	switch arr := v.(type) {
	case []string:
		return arr, true
	case []interface{}:
		result := make([]string, 0, len(arr))
		for _, item := range arr {
			s, ok := item.(string)
			if !ok {
				return nil, false
			}
			result = append(result, s)
		}
		return result, true
	default:
		return nil, false
	}
}

func missing(key, kind string) error {
	return &sdkErrors.ConfigError{
		Field: key,
		Err:   fmt.Errorf("required %s field '%s' is missing or not a %s", kind, key, kind),
	}
}

// MustGetString is GetString for required fields.
func MustGetString(config Config, key string) (string, error) {
	if s, ok := GetString(config, key); ok {
		return s, nil
	}
	return "", missing(key, "string")
}

// MustGetInt is GetInt for required fields.
func MustGetInt(config Config, key string) (int, error) {
	if i, ok := GetInt(config, key); ok {
		return i, nil
	}
	return 0, missing(key, "int")
}

// MustGetBool is GetBool for required fields.
func MustGetBool(config Config, key string) (bool, error) {
	if b, ok := GetBool(config, key); ok {
		return b, nil
	}
	return false, missing(key, "bool")
}

func GetStringDefault(config Config, key, defaultValue string) string {
	if s, ok := GetString(config, key); ok {
		return s
	}
	return defaultValue
}

func GetIntDefault(config Config, key string, defaultValue int) int {
	if i, ok := GetInt(config, key); ok {
		return i
	}
	return defaultValue
}

func GetBoolDefault(config Config, key string, defaultValue bool) bool {
	if b, ok := GetBool(config, key); ok {
		return b
	}
	return defaultValue
}
