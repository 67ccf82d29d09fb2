package remem

import "strings"

// Config is a map[string]interface{}-backed settings bag, following
// the teacher's lib.Settings (lib/settings.go) exactly: the teacher's
// own doc.go states that package is deliberately dependency-free, and
// remem keeps that policy for its own config surface rather than
// reaching for a settings library the rest of the pack never needed.
type Config map[string]interface{}

// DefaultConfig returns remem's default settings, mirroring the shape
// of malloc.Defaultsettings / lib.Settings defaults elsewhere in the
// teacher.
func DefaultConfig() Config {
	return Config{
		"growth.factor":    1.5,
		"free.memory":      false,
		"scan.stack":       false,
		"log.level":        "info",
		"index.initialcap": int64(128),
		"roots.compact":    true,
	}
}

// Section returns a new Config with only the keys starting with prefix.
func (c Config) Section(prefix string) Config {
	out := make(Config)
	for k, v := range c {
		if strings.HasPrefix(k, prefix) {
			out[k] = v
		}
	}
	return out
}

// Trim returns a new Config with prefix stripped from every key.
func (c Config) Trim(prefix string) Config {
	out := make(Config)
	for k, v := range c {
		out[strings.TrimPrefix(k, prefix)] = v
	}
	return out
}

// Mixin overrides c's keys with those from each of settings, in order.
func (c Config) Mixin(settings ...Config) Config {
	for _, s := range settings {
		for k, v := range s {
			c[k] = v
		}
	}
	return c
}

func (c Config) Bool(key string) bool {
	v, ok := c[key]
	if !ok {
		return false
	}
	b, _ := v.(bool)
	return b
}

func (c Config) Int64(key string, def int64) int64 {
	v, ok := c[key]
	if !ok {
		return def
	}
	switch n := v.(type) {
	case int64:
		return n
	case int:
		return int64(n)
	case float64:
		return int64(n)
	default:
		return def
	}
}

func (c Config) Float64(key string, def float64) float64 {
	v, ok := c[key]
	if !ok {
		return def
	}
	switch n := v.(type) {
	case float64:
		return n
	case int64:
		return float64(n)
	case int:
		return float64(n)
	default:
		return def
	}
}

func (c Config) String(key, def string) string {
	v, ok := c[key]
	if !ok {
		return def
	}
	s, ok := v.(string)
	if !ok {
		return def
	}
	return s
}
