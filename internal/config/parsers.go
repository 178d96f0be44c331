package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// settings is one decoded section of a config file. Viper lowercases keys,
// so lookups fall back to the lowercase spelling.
type settings map[string]interface{}

func (s settings) lookup(keys ...string) (interface{}, bool) {
	for _, key := range keys {
		if val, ok := s[key]; ok {
			return val, true
		}
		if val, ok := s[strings.ToLower(key)]; ok {
			return val, true
		}
	}
	return nil, false
}

func (s settings) section(key string) (settings, bool, error) {
	raw, ok := s.lookup(key)
	if !ok {
		return nil, false, nil
	}
	m, isMap := raw.(map[string]interface{})
	if !isMap {
		return nil, true, fmt.Errorf("%s: expected map, got %T", key, raw)
	}
	return settings(m), true, nil
}

// settingReader copies typed values out of settings and keeps the first
// conversion error, reported under the key's first spelling.
type settingReader struct {
	s   settings
	err error
}

func (r *settingReader) read(keys []string, convert func(interface{}) error) bool {
	if r.err != nil {
		return false
	}
	raw, ok := r.s.lookup(keys...)
	if !ok {
		return false
	}
	if err := convert(raw); err != nil {
		r.fail(keys[0], err)
		return false
	}
	return true
}

func (r *settingReader) fail(key string, err error) {
	if r.err == nil {
		r.err = fmt.Errorf("%s: %w", key, err)
	}
}

func (r *settingReader) str(dst *string, keys ...string) bool {
	return r.read(keys, func(raw interface{}) error {
		*dst = asString(raw)
		return nil
	})
}

func (r *settingReader) integer(dst *int, keys ...string) bool {
	return r.read(keys, func(raw interface{}) (err error) {
		*dst, err = asInt(raw)
		return err
	})
}

func (r *settingReader) float(dst *float64, keys ...string) bool {
	return r.read(keys, func(raw interface{}) (err error) {
		*dst, err = asFloat64(raw)
		return err
	})
}

func (r *settingReader) boolean(dst *bool, keys ...string) bool {
	return r.read(keys, func(raw interface{}) (err error) {
		*dst, err = asBool(raw)
		return err
	})
}

func (r *settingReader) duration(dst *time.Duration, keys ...string) bool {
	return r.read(keys, func(raw interface{}) (err error) {
		*dst, err = asDuration(raw)
		return err
	})
}

func asString(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}

// asInt accepts int from YAML, float64 from JSON and numeric strings.
func asInt(value interface{}) (int, error) {
	switch v := value.(type) {
	case nil:
		return 0, nil
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case uint64:
		return int(v), nil
	case float64:
		if v != float64(int(v)) {
			return 0, fmt.Errorf("expected whole number, got %g", v)
		}
		return int(v), nil
	case string:
		if s := strings.TrimSpace(v); s != "" {
			return strconv.Atoi(s)
		}
		return 0, nil
	default:
		return 0, fmt.Errorf("unsupported numeric type %T", value)
	}
}

func asFloat64(value interface{}) (float64, error) {
	switch v := value.(type) {
	case nil:
		return 0, nil
	case float64:
		return v, nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case string:
		if s := strings.TrimSpace(v); s != "" {
			return strconv.ParseFloat(s, 64)
		}
		return 0, nil
	default:
		return 0, fmt.Errorf("unsupported float type %T", value)
	}
}

func asBool(value interface{}) (bool, error) {
	switch v := value.(type) {
	case nil:
		return false, nil
	case bool:
		return v, nil
	case string:
		if s := strings.TrimSpace(v); s != "" {
			return strconv.ParseBool(s)
		}
		return false, nil
	default:
		return false, fmt.Errorf("unsupported boolean type %T", value)
	}
}

// asDuration parses Go duration strings; bare numbers are seconds.
func asDuration(value interface{}) (time.Duration, error) {
	switch v := value.(type) {
	case nil:
		return 0, nil
	case string:
		if s := strings.TrimSpace(v); s != "" {
			return time.ParseDuration(s)
		}
		return 0, nil
	case int, int64, float64:
		secs, err := asFloat64(v)
		if err != nil {
			return 0, err
		}
		return time.Duration(secs * float64(time.Second)), nil
	default:
		return 0, fmt.Errorf("unsupported duration type %T", value)
	}
}
