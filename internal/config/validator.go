package config

import (
	"fmt"
	"net"
	"slices"
	"strings"

	"github.com/matzehuels/layerstack/pkg/store"
)

// ValidationError is a single invalid configuration value.
type ValidationError struct {
	Field   string
	Value   any
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (got: %v)", e.Field, e.Message, e.Value)
}

// ValidationErrors collects every invalid value found by [Config.Validate].
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 1 {
		return e[0].Error()
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d validation errors:\n", len(e))
	for i, err := range e {
		fmt.Fprintf(&sb, "  %d. %s\n", i+1, err.Error())
	}
	return sb.String()
}

// ValidBackends lists the accepted store.backend values.
func ValidBackends() []string {
	return []string{store.BackendMemory, store.BackendFile, store.BackendRedis, store.BackendMongo}
}

// ValidLogLevels lists the accepted log.level values.
func ValidLogLevels() []string {
	return []string{"debug", "info", "warn", "error"}
}

// Validate returns all invalid values, or nil.
func (c *Config) Validate() ValidationErrors {
	var errs ValidationErrors
	add := func(field string, value any, msg string) {
		errs = append(errs, ValidationError{Field: field, Value: value, Message: msg})
	}

	if _, _, err := net.SplitHostPort(c.Server.Addr); err != nil {
		add("server.addr", c.Server.Addr, "must be host:port")
	}
	if !slices.Contains(ValidLogLevels(), c.Log.Level) {
		add("log.level", c.Log.Level, "must be one of "+strings.Join(ValidLogLevels(), ", "))
	}

	switch c.Store.Backend {
	case store.BackendMemory:
	case store.BackendFile:
		if c.Store.Dir == "" {
			add("store.dir", c.Store.Dir, "required for the file backend")
		}
	case store.BackendRedis:
		if c.Redis.Addr == "" {
			add("redis.addr", c.Redis.Addr, "required for the redis backend")
		}
		if c.Redis.DB < 0 {
			add("redis.db", c.Redis.DB, "must not be negative")
		}
	case store.BackendMongo:
		if c.Mongo.URI == "" {
			add("mongo.uri", c.Mongo.URI, "required for the mongo backend")
		}
	default:
		add("store.backend", c.Store.Backend, "must be one of "+strings.Join(ValidBackends(), ", "))
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}
